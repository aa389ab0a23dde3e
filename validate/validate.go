// Package validate orchestrates the measure-local, spanner and
// structural checks over a whole score, accumulating diagnostics into a
// single result. Checks never abort early: callers always get the
// complete picture.
package validate

import (
	"fmt"

	"github.com/quaverlabs/partita/diag"
	"github.com/quaverlabs/partita/measure"
	"github.com/quaverlabs/partita/model"
	"github.com/quaverlabs/partita/spanner"
	"github.com/quaverlabs/partita/structure"
)

// Options toggles every check independently. DurationTolerance is in
// quarter-note units.
type Options struct {
	Divisions           bool
	MeasureDuration     bool
	MeasureFullness     bool
	BackupForward       bool
	Ties                bool
	Beams               bool
	Slurs               bool
	Tuplets             bool
	PartReferences      bool
	PartStructure       bool
	StaffStructure      bool
	VoiceStaffNumbering bool
	DurationTolerance   float64
}

// DefaultOptions enables every check except the opt-in measure-fullness
// check.
func DefaultOptions() Options {
	return Options{
		Divisions:           true,
		MeasureDuration:     true,
		BackupForward:       true,
		Ties:                true,
		Beams:               true,
		Slurs:               true,
		Tuplets:             true,
		PartReferences:      true,
		PartStructure:       true,
		StaffStructure:      true,
		VoiceStaffNumbering: true,
	}
}

func (o Options) measureOptions() measure.Options {
	return measure.Options{
		Divisions:           o.Divisions,
		MeasureDuration:     o.MeasureDuration,
		MeasureFullness:     o.MeasureFullness,
		BackupForward:       o.BackupForward,
		VoiceStaffNumbering: o.VoiceStaffNumbering,
		DurationTolerance:   o.DurationTolerance,
	}
}

// Result partitions the accumulated diagnostics by severity. Warnings
// holds both warning and info severity; only Errors affect Valid.
type Result struct {
	Valid    bool              `json:"valid"`
	Errors   []diag.Diagnostic `json:"errors"`
	Warnings []diag.Diagnostic `json:"warnings"`
}

// Validate runs every enabled check over the score. The score is
// treated as read-only.
func Validate(score model.Score, opts Options) Result {
	var all []diag.Diagnostic

	if opts.PartReferences {
		all = append(all, structure.ValidatePartReferences(score)...)
	}
	if opts.PartStructure {
		all = append(all, structure.ValidatePartStructure(score)...)
	}
	if opts.StaffStructure {
		all = append(all, structure.ValidateStaffStructure(score)...)
	}

	mopts := opts.measureOptions()
	for pi, part := range score.Parts {
		contexts := measure.AccumulateContexts(part, pi)
		for mi, m := range part.Measures {
			all = append(all, measure.ValidateMeasure(m, contexts[mi], mopts)...)
			if opts.Beams {
				all = append(all, spanner.ValidateBeams(m, contexts[mi])...)
			}
		}
		if opts.Ties {
			all = append(all, spanner.ValidateTiesAcrossMeasures(part, pi)...)
		}
		if opts.Slurs {
			all = append(all, spanner.ValidateSlursAcrossMeasures(part, pi)...)
		}
		if opts.Tuplets {
			all = append(all, spanner.ValidateTupletsAcrossMeasures(part, pi)...)
		}
	}

	errors := diag.Errors(all)
	return Result{
		Valid:    len(errors) == 0,
		Errors:   errors,
		Warnings: diag.Advisories(all),
	}
}

// IsValid is the boolean convenience form of Validate with defaults.
func IsValid(score model.Score) bool {
	return Validate(score, DefaultOptions()).Valid
}

// Error aggregates the full diagnostic list of a failed validation.
type Error struct {
	Diagnostics []diag.Diagnostic
}

func (e *Error) Error() string {
	errs := diag.Errors(e.Diagnostics)
	if len(errs) == 0 {
		return "score validation failed"
	}
	return fmt.Sprintf("score validation failed with %d error(s), first: %s", len(errs), errs[0])
}

// AssertValid validates with defaults and returns a *Error carrying
// every diagnostic (errors and advisories) when any error-severity
// diagnostic exists. Diagnostics are collected in full before the error
// is built, never cut short at the first finding.
func AssertValid(score model.Score) error {
	res := Validate(score, DefaultOptions())
	if res.Valid {
		return nil
	}
	return &Error{Diagnostics: append(res.Errors, res.Warnings...)}
}

// GetMeasureContext accumulates attributes from all measures preceding
// the addressed one and returns the context needed to validate it in
// isolation.
func GetMeasureContext(score model.Score, partIndex, measureIndex int) (measure.Context, error) {
	if partIndex < 0 || partIndex >= len(score.Parts) {
		return measure.Context{}, fmt.Errorf("part index %d out of range (%d parts)", partIndex, len(score.Parts))
	}
	part := score.Parts[partIndex]
	if measureIndex < 0 || measureIndex >= len(part.Measures) {
		return measure.Context{}, fmt.Errorf("measure index %d out of range in part %q (%d measures)", measureIndex, part.ID, len(part.Measures))
	}
	return measure.AccumulateContexts(part, partIndex)[measureIndex], nil
}

// ValidateMeasureLocal validates exactly one measure given a
// pre-computed context: the measure-local checks plus the intra-measure
// spanner checks. Cross-measure spanner findings are out of its reach
// by construction.
func ValidateMeasureLocal(m model.Measure, ctx measure.Context, opts Options) []diag.Diagnostic {
	ds := measure.ValidateMeasure(m, ctx, opts.measureOptions())
	if opts.Ties {
		ds = append(ds, spanner.ValidateTies(m, ctx)...)
	}
	if opts.Slurs {
		ds = append(ds, spanner.ValidateSlurs(m, ctx)...)
	}
	if opts.Tuplets {
		ds = append(ds, spanner.ValidateTuplets(m, ctx)...)
	}
	if opts.Beams {
		ds = append(ds, spanner.ValidateBeams(m, ctx)...)
	}
	return ds
}

// AssertMeasureValid is the assertion form of ValidateMeasureLocal with
// default options, addressing the measure by indices.
func AssertMeasureValid(score model.Score, partIndex, measureIndex int) error {
	ctx, err := GetMeasureContext(score, partIndex, measureIndex)
	if err != nil {
		return err
	}
	ds := ValidateMeasureLocal(score.Parts[partIndex].Measures[measureIndex], ctx, DefaultOptions())
	if len(diag.Errors(ds)) == 0 {
		return nil
	}
	return &Error{Diagnostics: ds}
}
