// Package measure validates a single measure against the attribute
// context accumulated from the measures before it: divisions and
// duration arithmetic, cursor (backup/forward) consistency, voice and
// staff numbering, and the opt-in fullness check. Nothing here mutates
// its input and nothing looks outside the one measure it is given.
package measure

import (
	"fmt"
	"strconv"

	"github.com/quaverlabs/partita/diag"
	"github.com/quaverlabs/partita/model"
	"github.com/quaverlabs/partita/util"
)

// Options selects the measure-local checks. DurationTolerance is in
// quarter-note units and applies to both overflow and underflow.
type Options struct {
	Divisions           bool
	MeasureDuration     bool
	MeasureFullness     bool
	BackupForward       bool
	VoiceStaffNumbering bool
	DurationTolerance   float64
}

// DefaultOptions enables everything except the fullness check, which is
// opt-in.
func DefaultOptions() Options {
	return Options{
		Divisions:           true,
		MeasureDuration:     true,
		BackupForward:       true,
		VoiceStaffNumbering: true,
	}
}

const floatSlack = 1e-9

// ValidateMeasure runs the measure-local checks for one measure given
// the context carried forward from the part's earlier measures.
func ValidateMeasure(m model.Measure, ctx Context, opts Options) []diag.Diagnostic {
	var ds []diag.Diagnostic

	if m.Attributes != nil && m.Attributes.Divisions != nil && *m.Attributes.Divisions <= 0 {
		ds = append(ds, diag.Diagnostic{
			Code:     diag.InvalidDivisions,
			Severity: diag.SeverityError,
			Message:  fmt.Sprintf("divisions must be a positive integer, got %d", *m.Attributes.Divisions),
			Location: baseLoc(ctx, m),
			Details:  map[string]any{"divisions": *m.Attributes.Divisions},
		})
	}

	eff := ctx.Apply(m.Attributes)

	if opts.Divisions {
		ds = append(ds, checkDivisions(m, ctx, eff)...)
	}
	if opts.VoiceStaffNumbering {
		ds = append(ds, checkVoiceStaff(m, ctx, eff)...)
	}
	if opts.BackupForward {
		ds = append(ds, checkCursor(m, ctx)...)
	}
	if opts.MeasureDuration || opts.MeasureFullness {
		ds = append(ds, checkVoiceDurations(m, ctx, eff, opts)...)
	}
	return ds
}

func baseLoc(ctx Context, m model.Measure) diag.Location {
	return diag.Location{
		PartID:        ctx.PartID,
		PartIndex:     ctx.PartIndex,
		MeasureNumber: m.Number,
		MeasureIndex:  ctx.MeasureIndex,
		EntryIndex:    -1,
	}
}

func entryLoc(ctx Context, m model.Measure, entryIndex int) diag.Location {
	loc := baseLoc(ctx, m)
	loc.EntryIndex = entryIndex
	return loc
}

// voiceKey maps an absent voice to "1": notes without an explicit voice
// share the default voice.
func voiceKey(v string) string {
	if v == "" {
		return "1"
	}
	return v
}

// needsDuration reports whether an entry participates in duration
// arithmetic. Grace notes carry no duration and are exempt.
func needsDuration(e model.Entry) bool {
	switch {
	case e.Note != nil:
		return !e.Note.Grace
	case e.Backup != nil, e.Forward != nil:
		return true
	case e.FiguredBass != nil:
		return e.FiguredBass.Duration > 0
	}
	return false
}

func checkDivisions(m model.Measure, ctx Context, eff Context) []diag.Diagnostic {
	if eff.DivisionsSet {
		return nil
	}
	for i, e := range m.Entries {
		if needsDuration(e) {
			return []diag.Diagnostic{{
				Code:     diag.MissingDivisions,
				Severity: diag.SeverityError,
				Message:  "duration arithmetic before any divisions declaration in the part",
				Location: entryLoc(ctx, m, i),
			}}
		}
	}
	return nil
}

func checkVoiceStaff(m model.Measure, ctx Context, eff Context) []diag.Diagnostic {
	var ds []diag.Diagnostic

	badVoice := func(i int, raw string) {
		loc := entryLoc(ctx, m, i)
		loc.Voice = raw
		ds = append(ds, diag.Diagnostic{
			Code:     diag.InvalidVoiceNumber,
			Severity: diag.SeverityError,
			Message:  fmt.Sprintf("voice must be a positive integer, got %q", raw),
			Location: loc,
		})
	}
	checkVoice := func(i int, raw string) {
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badVoice(i, raw)
		}
	}
	checkStaff := func(i int, staff int) {
		if staff == 0 {
			return
		}
		loc := entryLoc(ctx, m, i)
		loc.Staff = staff
		if staff < 0 {
			ds = append(ds, diag.Diagnostic{
				Code:     diag.InvalidStaffNumber,
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("staff must be a positive integer, got %d", staff),
				Location: loc,
			})
			return
		}
		if eff.StavesSet && staff > eff.Staves {
			ds = append(ds, diag.Diagnostic{
				Code:     diag.StaffExceedsStaves,
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("staff %d exceeds declared staff count %d", staff, eff.Staves),
				Location: loc,
				Details:  map[string]any{"staff": staff, "staves": eff.Staves},
			})
		}
	}
	checkDur := func(i int, dur int) {
		if dur >= 0 {
			return
		}
		ds = append(ds, diag.Diagnostic{
			Code:     diag.InvalidDuration,
			Severity: diag.SeverityError,
			Message:  fmt.Sprintf("duration must be non-negative, got %d", dur),
			Location: entryLoc(ctx, m, i),
			Details:  map[string]any{"duration": dur},
		})
	}

	for i, e := range m.Entries {
		switch {
		case e.Note != nil:
			checkVoice(i, e.Note.Voice)
			checkStaff(i, e.Note.Staff)
			checkDur(i, e.Note.Duration)
		case e.Forward != nil:
			checkVoice(i, e.Forward.Voice)
			checkStaff(i, e.Forward.Staff)
			checkDur(i, e.Forward.Duration)
		case e.Backup != nil:
			checkDur(i, e.Backup.Duration)
		}
	}
	return ds
}

// checkCursor walks the entries in order maintaining the shared position
// cursor. A backup rewinding past the measure start is reported as
// BACKUP_EXCEEDS_POSITION and the position clamps to zero so one bad
// backup does not cascade into the rest of the walk.
func checkCursor(m model.Measure, ctx Context) []diag.Diagnostic {
	var ds []diag.Diagnostic
	pos := 0
	for i, e := range m.Entries {
		switch {
		case e.Note != nil:
			if !e.Note.Chord && !e.Note.Grace && e.Note.Duration > 0 {
				pos += e.Note.Duration
			}
		case e.Forward != nil:
			if e.Forward.Duration > 0 {
				pos += e.Forward.Duration
			}
		case e.Backup != nil:
			d := e.Backup.Duration
			if d > pos {
				ds = append(ds, diag.Diagnostic{
					Code:     diag.BackupExceedsPosition,
					Severity: diag.SeverityError,
					Message:  fmt.Sprintf("backup of %d at position %d rewinds past measure start", d, pos),
					Location: entryLoc(ctx, m, i),
					Details:  map[string]any{"position": pos, "duration": d},
				})
				pos = 0
			} else {
				pos -= d
			}
		}
	}
	return ds
}

// voiceSpan tracks one voice through the cursor walk: the furthest
// position its note/forward content reaches and the furthest point it
// has filled contiguously.
type voiceSpan struct {
	max        int
	filled     int
	firstEntry int
	gaps       []voiceGap
}

type voiceGap struct {
	entryIndex int
	from, to   int
}

func walkVoices(m model.Measure) map[string]*voiceSpan {
	voices := make(map[string]*voiceSpan)
	span := func(v string, entryIndex int) *voiceSpan {
		key := voiceKey(v)
		vs, ok := voices[key]
		if !ok {
			vs = &voiceSpan{firstEntry: entryIndex}
			voices[key] = vs
		}
		return vs
	}

	pos := 0
	lastNoteStart := 0
	for i, e := range m.Entries {
		switch {
		case e.Note != nil:
			n := e.Note
			if n.Grace {
				continue
			}
			vs := span(n.Voice, i)
			if n.Chord {
				// shares the preceding note's position
				end := lastNoteStart + n.Duration
				vs.max = util.Max(vs.max, end)
				continue
			}
			start := pos
			if start > vs.filled {
				vs.gaps = append(vs.gaps, voiceGap{entryIndex: i, from: vs.filled, to: start})
			}
			if n.Duration > 0 {
				pos += n.Duration
			}
			lastNoteStart = start
			vs.max = util.Max(vs.max, pos)
			vs.filled = util.Max(vs.filled, pos)
		case e.Forward != nil:
			vs := span(e.Forward.Voice, i)
			if e.Forward.Duration > 0 {
				pos += e.Forward.Duration
			}
			vs.max = util.Max(vs.max, pos)
			vs.filled = util.Max(vs.filled, pos)
		case e.Backup != nil:
			pos -= e.Backup.Duration
			if pos < 0 {
				pos = 0
			}
		}
	}
	return voices
}

// checkVoiceDurations compares each voice's reached duration against the
// time-signature target. Overflow is an error; underflow is only a
// warning since short final and pickup measures are common in fully
// valid scores. Unmetered (senza misura) signatures skip the comparison.
func checkVoiceDurations(m model.Measure, ctx Context, eff Context, opts Options) []diag.Diagnostic {
	if !eff.DivisionsSet || eff.Divisions <= 0 {
		return nil
	}
	if eff.Time == nil || eff.Time.SenzaMisura || eff.Time.BeatType <= 0 {
		return nil
	}

	voices := walkVoices(m)
	if len(voices) == 0 {
		return nil
	}

	targetQuarters := float64(eff.Time.Beats) * 4 / float64(eff.Time.BeatType)
	targetDiv := eff.Time.Beats * 4 * eff.Divisions / eff.Time.BeatType

	var ds []diag.Diagnostic
	for _, v := range util.GetKeysSorted(voices) {
		vs := voices[v]
		quarters := float64(vs.max) / float64(eff.Divisions)
		loc := baseLoc(ctx, m)
		loc.Voice = v

		if opts.MeasureDuration {
			switch {
			case quarters > targetQuarters+opts.DurationTolerance+floatSlack:
				ds = append(ds, diag.Diagnostic{
					Code:     diag.MeasureDurationOverflow,
					Severity: diag.SeverityError,
					Message:  fmt.Sprintf("voice %s spans %.4g quarters, exceeding the %d/%d target of %.4g", v, quarters, eff.Time.Beats, eff.Time.BeatType, targetQuarters),
					Location: loc,
					Details:  map[string]any{"quarters": quarters, "target": targetQuarters},
				})
			case quarters < targetQuarters-opts.DurationTolerance-floatSlack:
				ds = append(ds, diag.Diagnostic{
					Code:     diag.MeasureDurationUnderflow,
					Severity: diag.SeverityWarning,
					Message:  fmt.Sprintf("voice %s spans %.4g quarters, short of the %d/%d target of %.4g", v, quarters, eff.Time.Beats, eff.Time.BeatType, targetQuarters),
					Location: loc,
					Details:  map[string]any{"quarters": quarters, "target": targetQuarters},
				})
			}
		}

		if opts.MeasureFullness {
			if vs.max < targetDiv {
				ds = append(ds, diag.Diagnostic{
					Code:     diag.VoiceIncomplete,
					Severity: diag.SeverityWarning,
					Message:  fmt.Sprintf("voice %s fills %d of %d duration units", v, vs.max, targetDiv),
					Location: loc,
					Details:  map[string]any{"missing": targetDiv - vs.max},
				})
			}
			for _, g := range vs.gaps {
				gloc := entryLoc(ctx, m, g.entryIndex)
				gloc.Voice = v
				ds = append(ds, diag.Diagnostic{
					Code:     diag.VoiceGap,
					Severity: diag.SeverityWarning,
					Message:  fmt.Sprintf("voice %s has an unfilled span from %d to %d not covered by a forward", v, g.from, g.to),
					Location: gloc,
					Details:  map[string]any{"from": g.from, "to": g.to},
				})
			}
		}
	}
	return ds
}
