package model

// Score is the root of the document model: metadata, the ordered part
// roster (insertion order = display order) and the ordered parts
// themselves. Every Part.ID is expected to appear exactly once among the
// score-part entries of PartList; that is checked by the validators, not
// enforced here.
type Score struct {
	Work     string `yaml:"work,omitempty" json:"work,omitempty"`
	Movement string `yaml:"movement,omitempty" json:"movement,omitempty"`
	Composer string `yaml:"composer,omitempty" json:"composer,omitempty"`

	PartList []PartListEntry `yaml:"partList,omitempty" json:"partList,omitempty"`
	Parts    []Part          `yaml:"parts" json:"parts"`
}

// PartListEntry is one roster entry: either a score-part or a part-group
// marker. Exactly one of the two fields is set.
type PartListEntry struct {
	ScorePart *ScorePart `yaml:"scorePart,omitempty" json:"scorePart,omitempty"`
	PartGroup *PartGroup `yaml:"partGroup,omitempty" json:"partGroup,omitempty"`
}

type ScorePart struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// PartGroup is a bracket start/stop marker keyed by a small integer
// number. A start must be paired with exactly one later stop of the same
// number.
type PartGroup struct {
	Type   string `yaml:"type" json:"type"` // "start" or "stop"
	Number int    `yaml:"number,omitempty" json:"number,omitempty"`
}

// GroupNumber returns the group key, defaulting to 1 when absent.
func (g PartGroup) GroupNumber() int {
	if g.Number == 0 {
		return 1
	}
	return g.Number
}

type Part struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name,omitempty" json:"name,omitempty"`
	Measures []Measure `yaml:"measures" json:"measures"`
}

// Measure has a number string (may be non-numeric for pickup measures),
// optional attributes, the ordered entry list and optional trailing
// barlines carrying repeat markers.
type Measure struct {
	Number     string      `yaml:"number,omitempty" json:"number,omitempty"`
	Implicit   bool        `yaml:"implicit,omitempty" json:"implicit,omitempty"`
	Attributes *Attributes `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Entries    []Entry     `yaml:"entries,omitempty" json:"entries,omitempty"`
	Barlines   []Barline   `yaml:"barlines,omitempty" json:"barlines,omitempty"`
}

// ForwardRepeat reports whether any barline of the measure opens a repeat
// region.
func (m Measure) ForwardRepeat() bool {
	for _, b := range m.Barlines {
		if b.Repeat != nil && b.Repeat.Direction == RepeatForward {
			return true
		}
	}
	return false
}

// BackwardRepeat returns the backward repeat marker of the measure, or nil.
func (m Measure) BackwardRepeat() *Repeat {
	for _, b := range m.Barlines {
		if b.Repeat != nil && b.Repeat.Direction == RepeatBackward {
			return b.Repeat
		}
	}
	return nil
}

// Attributes carries the measure-scoped declarations that accumulate
// forward through a part until redefined. Pointer fields distinguish
// "not declared here" from a declared zero.
type Attributes struct {
	Divisions *int           `yaml:"divisions,omitempty" json:"divisions,omitempty"`
	Key       *Key           `yaml:"key,omitempty" json:"key,omitempty"`
	Time      *TimeSignature `yaml:"time,omitempty" json:"time,omitempty"`
	Staves    *int           `yaml:"staves,omitempty" json:"staves,omitempty"`
	Clefs     []Clef         `yaml:"clefs,omitempty" json:"clefs,omitempty"`
	Transpose *Transpose     `yaml:"transpose,omitempty" json:"transpose,omitempty"`
}

type Key struct {
	Fifths int    `yaml:"fifths" json:"fifths"`
	Mode   string `yaml:"mode,omitempty" json:"mode,omitempty"`
}

type TimeSignature struct {
	Beats       int  `yaml:"beats,omitempty" json:"beats,omitempty"`
	BeatType    int  `yaml:"beatType,omitempty" json:"beatType,omitempty"`
	SenzaMisura bool `yaml:"senzaMisura,omitempty" json:"senzaMisura,omitempty"`
}

type Clef struct {
	Sign  string `yaml:"sign" json:"sign"`
	Line  int    `yaml:"line,omitempty" json:"line,omitempty"`
	Staff int    `yaml:"staff,omitempty" json:"staff,omitempty"`
}

// ClefStaff returns the staff the clef applies to, defaulting to 1.
func (c Clef) ClefStaff() int {
	if c.Staff == 0 {
		return 1
	}
	return c.Staff
}

type Transpose struct {
	Diatonic     int `yaml:"diatonic,omitempty" json:"diatonic,omitempty"`
	Chromatic    int `yaml:"chromatic" json:"chromatic"`
	OctaveChange int `yaml:"octaveChange,omitempty" json:"octaveChange,omitempty"`
}

// Barline sits at a measure edge. Location is "left" or "right".
type Barline struct {
	Location string  `yaml:"location,omitempty" json:"location,omitempty"`
	Style    string  `yaml:"style,omitempty" json:"style,omitempty"`
	Repeat   *Repeat `yaml:"repeat,omitempty" json:"repeat,omitempty"`
}

const (
	RepeatForward  = "forward"
	RepeatBackward = "backward"
)

type Repeat struct {
	Direction string `yaml:"direction" json:"direction"`
	Times     int    `yaml:"times,omitempty" json:"times,omitempty"`
}

// Count returns how many times the repeated region plays, defaulting to 2.
func (r Repeat) Count() int {
	if r.Times <= 0 {
		return 2
	}
	return r.Times
}
