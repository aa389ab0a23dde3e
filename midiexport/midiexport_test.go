package midiexport

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/quaverlabs/partita/diag"
	"github.com/quaverlabs/partita/model"
	"github.com/quaverlabs/partita/playback"
	"github.com/quaverlabs/partita/validate"
)

func intp(v int) *int { return &v }

func testScore(noteDuration int) model.Score {
	return model.Score{
		PartList: []model.PartListEntry{{ScorePart: &model.ScorePart{ID: "P1"}}},
		Parts: []model.Part{{ID: "P1", Measures: []model.Measure{{
			Number: "1",
			Attributes: &model.Attributes{
				Divisions: intp(1),
				Time:      &model.TimeSignature{Beats: 4, BeatType: 4},
			},
			Entries: []model.Entry{{Note: &model.Note{
				Pitch:    &model.Pitch{Step: "C", Octave: 4},
				Duration: noteDuration,
				Voice:    "1",
			}}},
		}}}},
	}
}

func roundTrip(t *testing.T, score model.Score, opts Options) *smf.SMF {
	var buf bytes.Buffer
	err := Export(&buf, score, opts)
	assert.NoError(t, err)

	mf, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	assert.NoError(t, err)
	return mf
}

func TestExportWritesMetaAndNoteTracks(t *testing.T) {
	mf := roundTrip(t, testScore(4), Options{TicksPerQuarter: 480})

	assert := assert.New(t)
	assert.Len(mf.Tracks, 2)

	var sawMeter, sawTempo bool
	for _, ev := range mf.Tracks[0] {
		var num, denom uint8
		if ev.Message.GetMetaMeter(&num, &denom) {
			assert.Equal(uint8(4), num)
			assert.Equal(uint8(4), denom)
			sawMeter = true
		}
		var bpm float64
		if ev.Message.GetMetaTempo(&bpm) {
			sawTempo = true
		}
	}
	assert.True(sawMeter)
	assert.True(sawTempo)

	var absTicks uint64
	var onTick, offTick uint64
	var sawOn, sawOff bool
	for _, ev := range mf.Tracks[1] {
		absTicks += uint64(ev.Delta)
		var ch, key, vel uint8
		switch {
		case ev.Message.GetNoteOn(&ch, &key, &vel):
			assert.Equal(uint8(60), key)
			onTick = absTicks
			sawOn = true
		case ev.Message.GetNoteOff(&ch, &key, &vel):
			assert.Equal(uint8(60), key)
			offTick = absTicks
			sawOff = true
		}
	}
	assert.True(sawOn)
	assert.True(sawOff)
	assert.Equal(uint64(0), onTick)
	assert.Equal(uint64(1920), offTick)
}

func TestStrictModeRefusesInvalidScore(t *testing.T) {
	var buf bytes.Buffer
	// 5 quarters in a 4/4 measure
	err := Export(&buf, testScore(5), Options{Mode: ValidateStrict})

	assert := assert.New(t)
	assert.Error(err)
	assert.Zero(buf.Len())

	var verr *validate.Error
	assert.True(errors.As(err, &verr))
}

func TestReportModeHandsOverDiagnosticsAndProceeds(t *testing.T) {
	var reported []diag.Diagnostic
	var buf bytes.Buffer
	err := Export(&buf, testScore(5), Options{
		Mode:          ValidateReport,
		OnDiagnostics: func(ds []diag.Diagnostic) { reported = ds },
	})

	assert := assert.New(t)
	assert.NoError(err)
	assert.NotZero(buf.Len())
	if assert.Len(reported, 1) {
		assert.Equal(diag.MeasureDurationOverflow, reported[0].Code)
	}
}

func TestRenderEmitsDefaultTempoWhenScoreHasNone(t *testing.T) {
	mf := Render(playback.Schedule{TicksPerQuarter: 480})

	var buf bytes.Buffer
	_, err := mf.WriteTo(&buf)
	assert.NoError(t, err)

	back, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	assert.NoError(t, err)

	var bpm float64
	found := false
	for _, ev := range back.Tracks[0] {
		if ev.Message.GetMetaTempo(&bpm) {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, float64(defaultBPM), bpm)
}
