package model

// Entry is one element of a measure's content stream. It is a tagged
// union: exactly one of the pointer fields is set.
type Entry struct {
	Note        *Note        `yaml:"note,omitempty" json:"note,omitempty"`
	Backup      *Backup      `yaml:"backup,omitempty" json:"backup,omitempty"`
	Forward     *Forward     `yaml:"forward,omitempty" json:"forward,omitempty"`
	Direction   *Direction   `yaml:"direction,omitempty" json:"direction,omitempty"`
	Harmony     *Harmony     `yaml:"harmony,omitempty" json:"harmony,omitempty"`
	FiguredBass *FiguredBass `yaml:"figuredBass,omitempty" json:"figuredBass,omitempty"`
}

// Note is a sounding note, rest or unpitched event. Exactly one of
// Pitch/Rest/Unpitched is set on a non-grace note. Duration is in
// division units (see Attributes.Divisions). A chord note shares the
// position of the preceding note and does not advance the cursor.
type Note struct {
	Pitch     *Pitch     `yaml:"pitch,omitempty" json:"pitch,omitempty"`
	Rest      bool       `yaml:"rest,omitempty" json:"rest,omitempty"`
	Unpitched *Unpitched `yaml:"unpitched,omitempty" json:"unpitched,omitempty"`

	Duration int    `yaml:"duration,omitempty" json:"duration,omitempty"`
	Voice    string `yaml:"voice,omitempty" json:"voice,omitempty"`
	Staff    int    `yaml:"staff,omitempty" json:"staff,omitempty"`

	Chord bool `yaml:"chord,omitempty" json:"chord,omitempty"`
	Grace bool `yaml:"grace,omitempty" json:"grace,omitempty"`

	Ties      []Tie      `yaml:"ties,omitempty" json:"ties,omitempty"`
	Beams     []Beam     `yaml:"beams,omitempty" json:"beams,omitempty"`
	Notations *Notations `yaml:"notations,omitempty" json:"notations,omitempty"`
	Lyrics    []Lyric    `yaml:"lyrics,omitempty" json:"lyrics,omitempty"`
}

// HasTie reports whether the note carries a tie of the given type
// ("start" or "stop").
func (n Note) HasTie(typ string) bool {
	for _, t := range n.Ties {
		if t.Type == typ {
			return true
		}
	}
	return false
}

type Pitch struct {
	Step   string `yaml:"step" json:"step"`
	Alter  int    `yaml:"alter,omitempty" json:"alter,omitempty"`
	Octave int    `yaml:"octave" json:"octave"`
}

var stepSemitones = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// MIDINote maps the pitch to a MIDI key number (C4 = 60). The second
// return is false for an unknown step letter.
func (p Pitch) MIDINote() (uint8, bool) {
	semis, ok := stepSemitones[p.Step]
	if !ok {
		return 0, false
	}
	n := (p.Octave+1)*12 + semis + p.Alter
	if n < 0 || n > 127 {
		return 0, false
	}
	return uint8(n), true
}

type Unpitched struct {
	DisplayStep   string `yaml:"displayStep,omitempty" json:"displayStep,omitempty"`
	DisplayOctave int    `yaml:"displayOctave,omitempty" json:"displayOctave,omitempty"`
}

const (
	SpannerStart = "start"
	SpannerStop  = "stop"
)

type Tie struct {
	Type string `yaml:"type" json:"type"` // "start" or "stop"
}

const (
	BeamBegin    = "begin"
	BeamContinue = "continue"
	BeamEnd      = "end"
)

// Beam is one beam level on a note; simultaneous levels are tracked
// independently by Number.
type Beam struct {
	Number int    `yaml:"number,omitempty" json:"number,omitempty"`
	Value  string `yaml:"value" json:"value"`
}

// BeamLevel returns the beam level, defaulting to 1.
func (b Beam) BeamLevel() int {
	if b.Number == 0 {
		return 1
	}
	return b.Number
}

type Notations struct {
	Slurs         []Slur   `yaml:"slurs,omitempty" json:"slurs,omitempty"`
	Tuplets       []Tuplet `yaml:"tuplets,omitempty" json:"tuplets,omitempty"`
	Articulations []string `yaml:"articulations,omitempty" json:"articulations,omitempty"`
}

type Slur struct {
	Type   string `yaml:"type" json:"type"` // "start", "stop" or "continue"
	Number int    `yaml:"number,omitempty" json:"number,omitempty"`
}

func (s Slur) SlurNumber() int {
	if s.Number == 0 {
		return 1
	}
	return s.Number
}

type Tuplet struct {
	Type   string `yaml:"type" json:"type"` // "start" or "stop"
	Number int    `yaml:"number,omitempty" json:"number,omitempty"`
}

func (t Tuplet) TupletNumber() int {
	if t.Number == 0 {
		return 1
	}
	return t.Number
}

type Lyric struct {
	Number   int    `yaml:"number,omitempty" json:"number,omitempty"`
	Syllabic string `yaml:"syllabic,omitempty" json:"syllabic,omitempty"`
	Text     string `yaml:"text" json:"text"`
}

// Backup rewinds the position cursor by Duration division units without
// producing sound.
type Backup struct {
	Duration int `yaml:"duration" json:"duration"`
}

// Forward advances the position cursor by Duration division units
// without producing sound.
type Forward struct {
	Duration int    `yaml:"duration" json:"duration"`
	Voice    string `yaml:"voice,omitempty" json:"voice,omitempty"`
	Staff    int    `yaml:"staff,omitempty" json:"staff,omitempty"`
}

// Direction is a performance marking. Sound, when present, carries a
// tempo hint in quarter notes per minute.
type Direction struct {
	Words    string `yaml:"words,omitempty" json:"words,omitempty"`
	Dynamics string `yaml:"dynamics,omitempty" json:"dynamics,omitempty"`
	Wedge    string `yaml:"wedge,omitempty" json:"wedge,omitempty"`
	Pedal    string `yaml:"pedal,omitempty" json:"pedal,omitempty"`
	Staff    int    `yaml:"staff,omitempty" json:"staff,omitempty"`
	Sound    *Sound `yaml:"sound,omitempty" json:"sound,omitempty"`
}

type Sound struct {
	Tempo float64 `yaml:"tempo,omitempty" json:"tempo,omitempty"`
}

type Harmony struct {
	Root string `yaml:"root,omitempty" json:"root,omitempty"`
	Kind string `yaml:"kind,omitempty" json:"kind,omitempty"`
}

type FiguredBass struct {
	Figures  []string `yaml:"figures,omitempty" json:"figures,omitempty"`
	Duration int      `yaml:"duration,omitempty" json:"duration,omitempty"`
}
