// Package midiexport renders a playback schedule into a standard MIDI
// file: one meta track carrying the shared tempo and meter changes,
// then one note track per part, all delta-encoded from the schedule's
// absolute ticks.
package midiexport

import (
	"fmt"
	"io"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/quaverlabs/partita/diag"
	"github.com/quaverlabs/partita/model"
	"github.com/quaverlabs/partita/playback"
	"github.com/quaverlabs/partita/validate"
)

// ValidateMode selects what Export does with validation diagnostics
// before serializing.
type ValidateMode int

const (
	// ValidateSkip exports without validating.
	ValidateSkip ValidateMode = iota
	// ValidateStrict validates first and refuses to export on any
	// error-severity diagnostic.
	ValidateStrict
	// ValidateReport validates, hands every diagnostic to the callback
	// and proceeds regardless.
	ValidateReport
)

type Options struct {
	TicksPerQuarter uint16
	Mode            ValidateMode
	// OnDiagnostics receives the full diagnostic list under
	// ValidateReport. Never called in the other modes.
	OnDiagnostics func([]diag.Diagnostic)
}

func DefaultOptions() Options {
	return Options{TicksPerQuarter: 480}
}

const defaultBPM = 120

// Render converts a schedule into an SMF document.
func Render(s playback.Schedule) *smf.SMF {
	mf := smf.New()
	mf.TimeFormat = smf.MetricTicks(s.TicksPerQuarter)

	mf.Add(metaTrack(s))
	for _, ts := range s.Tracks {
		mf.Add(noteTrack(ts))
	}
	return mf
}

func metaTrack(s playback.Schedule) smf.Track {
	var tr smf.Track

	// (tick, message) pairs merged from both change streams, already
	// sorted per stream; a two-finger merge keeps ticks monotonic.
	type metaEvent struct {
		tick uint64
		msg  smf.Message
	}
	var evs []metaEvent
	ti, mi := 0, 0
	for ti < len(s.Tempos) || mi < len(s.Meters) {
		takeTempo := mi >= len(s.Meters) ||
			(ti < len(s.Tempos) && s.Tempos[ti].Tick <= s.Meters[mi].Tick)
		if takeTempo {
			evs = append(evs, metaEvent{s.Tempos[ti].Tick, smf.MetaTempo(s.Tempos[ti].BPM)})
			ti++
		} else {
			evs = append(evs, metaEvent{s.Meters[mi].Tick, smf.MetaMeter(s.Meters[mi].Beats, s.Meters[mi].BeatType)})
			mi++
		}
	}

	if len(s.Tempos) == 0 || s.Tempos[0].Tick > 0 {
		tr.Add(0, smf.MetaTempo(defaultBPM))
	}
	var last uint64
	for _, ev := range evs {
		tr.Add(uint32(ev.tick-last), ev.msg)
		last = ev.tick
	}
	tr.Close(0)
	return tr
}

func noteTrack(ts playback.TrackSchedule) smf.Track {
	var tr smf.Track
	if ts.PartID != "" {
		tr.Add(0, smf.MetaTrackSequenceName(ts.PartID))
	}
	var last uint64
	for _, ev := range ts.Events {
		delta := uint32(ev.Tick - last)
		last = ev.Tick
		switch ev.Kind {
		case playback.NoteOn:
			tr.Add(delta, midi.NoteOn(ts.Channel, ev.Key, ev.Velocity))
		case playback.NoteOff:
			tr.Add(delta, midi.NoteOff(ts.Channel, ev.Key))
		}
	}
	tr.Close(0)
	return tr
}

// Export schedules the score and writes it as SMF, applying the
// requested validate-before-serialize policy. Diagnostics are never
// silently dropped: strict mode returns them inside *validate.Error,
// report mode hands them to the callback.
func Export(w io.Writer, score model.Score, opts Options) error {
	if opts.TicksPerQuarter == 0 {
		opts.TicksPerQuarter = DefaultOptions().TicksPerQuarter
	}

	switch opts.Mode {
	case ValidateStrict:
		if err := validate.AssertValid(score); err != nil {
			return fmt.Errorf("refusing to export: %w", err)
		}
	case ValidateReport:
		res := validate.Validate(score, validate.DefaultOptions())
		if opts.OnDiagnostics != nil {
			opts.OnDiagnostics(append(res.Errors, res.Warnings...))
		}
	}

	mf := Render(playback.ScheduleScore(score, opts.TicksPerQuarter))
	_, err := mf.WriteTo(w)
	return err
}
