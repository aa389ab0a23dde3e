package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quaverlabs/partita/diag"
	"github.com/quaverlabs/partita/model"
)

func intp(v int) *int { return &v }

func quarter(step string, octave int) model.Entry {
	return model.Entry{Note: &model.Note{
		Pitch:    &model.Pitch{Step: step, Octave: octave},
		Duration: 1,
		Voice:    "1",
	}}
}

func fullMeasure(withAttrs bool) model.Measure {
	m := model.Measure{Entries: []model.Entry{
		quarter("C", 4), quarter("D", 4), quarter("E", 4), quarter("F", 4),
	}}
	if withAttrs {
		m.Attributes = &model.Attributes{
			Divisions: intp(1),
			Time:      &model.TimeSignature{Beats: 4, BeatType: 4},
		}
	}
	return m
}

func validScore() model.Score {
	m1 := fullMeasure(true)
	m1.Number = "1"
	m2 := fullMeasure(false)
	m2.Number = "2"
	return model.Score{
		PartList: []model.PartListEntry{
			{ScorePart: &model.ScorePart{ID: "P1", Name: "Flute"}},
		},
		Parts: []model.Part{{ID: "P1", Measures: []model.Measure{m1, m2}}},
	}
}

func TestValidScoreHasNoDiagnostics(t *testing.T) {
	res := Validate(validScore(), DefaultOptions())

	assert := assert.New(t)
	assert.True(res.Valid)
	assert.Empty(res.Errors)
	assert.Empty(res.Warnings)
	assert.True(IsValid(validScore()))
	assert.NoError(AssertValid(validScore()))
}

func TestUnreferencedPartReportedExactlyOnce(t *testing.T) {
	score := validScore()
	score.PartList = nil
	res := Validate(score, DefaultOptions())

	assert := assert.New(t)
	assert.False(res.Valid)
	assert.Len(res.Errors, 1)
	assert.Equal(diag.PartIDNotInPartList, res.Errors[0].Code)
}

func TestAssertValidCarriesFullDiagnosticList(t *testing.T) {
	score := validScore()
	score.PartList = nil
	// add an advisory on top of the error
	score.Parts[0].Measures[1].Entries = score.Parts[0].Measures[1].Entries[:3]

	err := AssertValid(score)
	assert := assert.New(t)
	assert.Error(err)

	var verr *Error
	assert.True(errors.As(err, &verr))
	assert.Len(diag.Errors(verr.Diagnostics), 1)
	assert.Len(diag.Advisories(verr.Diagnostics), 1)
}

func TestChecksAreIndependentlyToggleable(t *testing.T) {
	score := validScore()
	score.PartList = nil

	opts := DefaultOptions()
	opts.PartReferences = false
	res := Validate(score, opts)
	assert.True(t, res.Valid)
}

func TestDurationToleranceIsForwarded(t *testing.T) {
	score := validScore()
	score.Parts[0].Measures[1].Entries = score.Parts[0].Measures[1].Entries[:3]

	res := Validate(score, DefaultOptions())
	if assert.Len(t, res.Warnings, 1) {
		assert.Equal(t, diag.MeasureDurationUnderflow, res.Warnings[0].Code)
	}

	opts := DefaultOptions()
	opts.DurationTolerance = 1
	assert.Empty(t, Validate(score, opts).Warnings)
}

func TestGetMeasureContext(t *testing.T) {
	score := validScore()

	assert := assert.New(t)

	ctx0, err := GetMeasureContext(score, 0, 0)
	assert.NoError(err)
	assert.False(ctx0.DivisionsSet)

	ctx1, err := GetMeasureContext(score, 0, 1)
	assert.NoError(err)
	assert.True(ctx1.DivisionsSet)
	assert.Equal(1, ctx1.Divisions)
	assert.Equal("P1", ctx1.PartID)
	assert.Equal(1, ctx1.MeasureIndex)

	_, err = GetMeasureContext(score, 0, 5)
	assert.Error(err)
	_, err = GetMeasureContext(score, 2, 0)
	assert.Error(err)
}

func TestValidateMeasureLocal(t *testing.T) {
	score := validScore()
	ctx, err := GetMeasureContext(score, 0, 1)
	assert.NoError(t, err)

	m := score.Parts[0].Measures[1]
	assert.Empty(t, ValidateMeasureLocal(m, ctx, DefaultOptions()))

	// a tie stop with nothing open is caught locally
	m.Entries[0].Note.Ties = []model.Tie{{Type: model.SpannerStop}}
	ds := ValidateMeasureLocal(m, ctx, DefaultOptions())
	if assert.Len(t, ds, 1) {
		assert.Equal(t, diag.TieStopWithoutStart, ds[0].Code)
	}
}

func TestValidateMeasureLocalDefersOpenSpanners(t *testing.T) {
	score := validScore()
	ctx, err := GetMeasureContext(score, 0, 0)
	assert.NoError(t, err)

	m := score.Parts[0].Measures[0]
	m.Entries[3].Note.Ties = []model.Tie{{Type: model.SpannerStart}}
	assert.Empty(t, ValidateMeasureLocal(m, ctx, DefaultOptions()))
}

func TestAssertMeasureValid(t *testing.T) {
	score := validScore()
	assert.NoError(t, AssertMeasureValid(score, 0, 1))

	score.Parts[0].Measures[1].Entries = append(
		score.Parts[0].Measures[1].Entries, quarter("G", 4))

	err := AssertMeasureValid(score, 0, 1)
	assert.Error(t, err)

	var verr *Error
	if assert.True(t, errors.As(err, &verr)) {
		assert.Equal(t, diag.MeasureDurationOverflow, verr.Diagnostics[0].Code)
	}
}
