// Package diag defines the diagnostic vocabulary shared by all
// validators. The code strings are a stable contract: external tooling
// matches on them, so they must not be renamed without a migration note.
package diag

import "fmt"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

type Code string

const (
	MissingDivisions         Code = "MISSING_DIVISIONS"
	InvalidDivisions         Code = "INVALID_DIVISIONS"
	MeasureDurationOverflow  Code = "MEASURE_DURATION_OVERFLOW"
	MeasureDurationUnderflow Code = "MEASURE_DURATION_UNDERFLOW"
	BackupExceedsPosition    Code = "BACKUP_EXCEEDS_POSITION"
	InvalidVoiceNumber       Code = "INVALID_VOICE_NUMBER"
	InvalidStaffNumber       Code = "INVALID_STAFF_NUMBER"
	StaffExceedsStaves       Code = "STAFF_EXCEEDS_STAVES"
	InvalidDuration          Code = "INVALID_DURATION"
	VoiceIncomplete          Code = "VOICE_INCOMPLETE"
	VoiceGap                 Code = "VOICE_GAP"

	BeamBeginWithoutEnd    Code = "BEAM_BEGIN_WITHOUT_END"
	BeamEndWithoutBegin    Code = "BEAM_END_WITHOUT_BEGIN"
	TieStopWithoutStart    Code = "TIE_STOP_WITHOUT_START"
	TieStartWithoutStop    Code = "TIE_START_WITHOUT_STOP"
	SlurStopWithoutStart   Code = "SLUR_STOP_WITHOUT_START"
	SlurStartWithoutStop   Code = "SLUR_START_WITHOUT_STOP"
	TupletStopWithoutStart Code = "TUPLET_STOP_WITHOUT_START"
	TupletStartWithoutStop Code = "TUPLET_START_WITHOUT_STOP"

	PartIDNotInPartList       Code = "PART_ID_NOT_IN_PART_LIST"
	PartListIDNotInParts      Code = "PART_LIST_ID_NOT_IN_PARTS"
	PartMeasureCountMismatch  Code = "PART_MEASURE_COUNT_MISMATCH"
	PartMeasureNumberMismatch Code = "PART_MEASURE_NUMBER_MISMATCH"
	DuplicatePartID           Code = "DUPLICATE_PART_ID"
	PartGroupStartWithoutStop Code = "PART_GROUP_START_WITHOUT_STOP"
	PartGroupStopWithoutStart Code = "PART_GROUP_STOP_WITHOUT_START"

	MissingClefForStaff       Code = "MISSING_CLEF_FOR_STAFF"
	ClefStaffExceedsStaves    Code = "CLEF_STAFF_EXCEEDS_STAVES"
	MissingStavesDeclaration  Code = "MISSING_STAVES_DECLARATION"
	StavesDeclarationMismatch Code = "STAVES_DECLARATION_MISMATCH"
)

// Location pins a diagnostic to a place in the document. Index fields
// are -1 when not applicable.
type Location struct {
	PartID        string `json:"partId,omitempty" yaml:"partId,omitempty"`
	PartIndex     int    `json:"partIndex" yaml:"partIndex"`
	MeasureNumber string `json:"measureNumber,omitempty" yaml:"measureNumber,omitempty"`
	MeasureIndex  int    `json:"measureIndex" yaml:"measureIndex"`
	EntryIndex    int    `json:"entryIndex" yaml:"entryIndex"`
	Voice         string `json:"voice,omitempty" yaml:"voice,omitempty"`
	Staff         int    `json:"staff,omitempty" yaml:"staff,omitempty"`
}

// NoLocation is the zero-information location.
func NoLocation() Location {
	return Location{PartIndex: -1, MeasureIndex: -1, EntryIndex: -1}
}

func (l Location) String() string {
	s := ""
	if l.PartID != "" {
		s += fmt.Sprintf("part %s", l.PartID)
	} else if l.PartIndex >= 0 {
		s += fmt.Sprintf("part #%d", l.PartIndex)
	}
	if l.MeasureIndex >= 0 {
		if s != "" {
			s += ", "
		}
		if l.MeasureNumber != "" {
			s += fmt.Sprintf("measure %s", l.MeasureNumber)
		} else {
			s += fmt.Sprintf("measure #%d", l.MeasureIndex)
		}
	}
	if l.EntryIndex >= 0 {
		s += fmt.Sprintf(", entry %d", l.EntryIndex)
	}
	if l.Voice != "" {
		s += fmt.Sprintf(", voice %s", l.Voice)
	}
	return s
}

// Diagnostic is a single finding. Details carries structured,
// code-specific values (e.g. the shortfall for VOICE_INCOMPLETE).
type Diagnostic struct {
	Code     Code           `json:"code" yaml:"code"`
	Severity Severity       `json:"severity" yaml:"severity"`
	Message  string         `json:"message" yaml:"message"`
	Location Location       `json:"location" yaml:"location"`
	Details  map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

func (d Diagnostic) String() string {
	loc := d.Location.String()
	if loc == "" {
		return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s (%s)", d.Severity, d.Code, d.Message, loc)
}

// Errors filters to error severity.
func Errors(ds []Diagnostic) []Diagnostic {
	var res []Diagnostic
	for _, d := range ds {
		if d.Severity == SeverityError {
			res = append(res, d)
		}
	}
	return res
}

// Advisories filters to warning and info severity.
func Advisories(ds []Diagnostic) []Diagnostic {
	var res []Diagnostic
	for _, d := range ds {
		if d.Severity != SeverityError {
			res = append(res, d)
		}
	}
	return res
}
