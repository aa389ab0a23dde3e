// Package spanner matches open/close pairs of notation elements that
// span notes: ties, slurs, tuplets and beams. Each kind keeps an open
// set keyed by its identity (pitch for ties, number for the rest). A
// stop with nothing open is always an error; a start still open at the
// end of a part is only a warning, since ties and slurs may continue
// into staves this model does not see.
package spanner

import (
	"fmt"

	"github.com/quaverlabs/partita/diag"
	"github.com/quaverlabs/partita/measure"
	"github.com/quaverlabs/partita/model"
	"github.com/quaverlabs/partita/util"
)

func noteLoc(ctx measure.Context, m model.Measure, entryIndex int, voice string) diag.Location {
	return diag.Location{
		PartID:        ctx.PartID,
		PartIndex:     ctx.PartIndex,
		MeasureNumber: m.Number,
		MeasureIndex:  ctx.MeasureIndex,
		EntryIndex:    entryIndex,
		Voice:         voice,
	}
}

// tieKey is the pitch identity ties are matched by: step and octave.
func tieKey(p model.Pitch) string {
	return fmt.Sprintf("%s%d", p.Step, p.Octave)
}

// tieWalk matches ties within one measure, carrying the open set in and
// out so the cross-measure pass can thread it through a whole part. A
// stop against an empty set is reported immediately; starts left open at
// the end of the measure stay in the set for the caller.
func tieWalk(m model.Measure, ctx measure.Context, open map[string]diag.Location) []diag.Diagnostic {
	var ds []diag.Diagnostic
	for i, e := range m.Entries {
		n := e.Note
		if n == nil || n.Pitch == nil {
			continue
		}
		key := tieKey(*n.Pitch)
		if n.HasTie(model.SpannerStop) {
			if _, ok := open[key]; ok {
				delete(open, key)
			} else {
				ds = append(ds, diag.Diagnostic{
					Code:     diag.TieStopWithoutStart,
					Severity: diag.SeverityError,
					Message:  fmt.Sprintf("tie stop on %s with no open tie at that pitch", key),
					Location: noteLoc(ctx, m, i, n.Voice),
					Details:  map[string]any{"pitch": key},
				})
			}
		}
		if n.HasTie(model.SpannerStart) {
			open[key] = noteLoc(ctx, m, i, n.Voice)
		}
	}
	return ds
}

// ValidateTies checks one measure in isolation. Ties still open at the
// measure end are not reported here: they may legally resolve in a
// later measure and belong to the cross-measure pass.
func ValidateTies(m model.Measure, ctx measure.Context) []diag.Diagnostic {
	return tieWalk(m, ctx, make(map[string]diag.Location))
}

// ValidateTiesAcrossMeasures walks a whole part carrying open ties
// across measure boundaries, matching them by pitch identity.
func ValidateTiesAcrossMeasures(part model.Part, partIndex int) []diag.Diagnostic {
	var ds []diag.Diagnostic
	open := make(map[string]diag.Location)
	ctx := measure.Context{PartID: part.ID, PartIndex: partIndex}
	for i, m := range part.Measures {
		ctx.MeasureIndex = i
		ctx.MeasureNumber = m.Number
		ds = append(ds, tieWalk(m, ctx, open)...)
	}
	for _, key := range util.GetKeysSorted(open) {
		ds = append(ds, diag.Diagnostic{
			Code:     diag.TieStartWithoutStop,
			Severity: diag.SeverityWarning,
			Message:  fmt.Sprintf("tie on %s is still open at the end of the part", key),
			Location: open[key],
			Details:  map[string]any{"pitch": key},
		})
	}
	return ds
}

// numbered is a start/stop event keyed by a spanner number, the shared
// shape of slurs and tuplets.
type numbered struct {
	typ    string
	number int
}

func slurEvents(n *model.Note) []numbered {
	if n.Notations == nil {
		return nil
	}
	var evs []numbered
	for _, s := range n.Notations.Slurs {
		evs = append(evs, numbered{typ: s.Type, number: s.SlurNumber()})
	}
	return evs
}

func tupletEvents(n *model.Note) []numbered {
	if n.Notations == nil {
		return nil
	}
	var evs []numbered
	for _, t := range n.Notations.Tuplets {
		evs = append(evs, numbered{typ: t.Type, number: t.TupletNumber()})
	}
	return evs
}

// numberedWalk matches numbered start/stop pairs within one measure
// using a stack per number, carrying the stacks in and out.
func numberedWalk(m model.Measure, ctx measure.Context, open map[int][]diag.Location,
	events func(*model.Note) []numbered, kind string, stopCode diag.Code) []diag.Diagnostic {

	var ds []diag.Diagnostic
	for i, e := range m.Entries {
		if e.Note == nil {
			continue
		}
		for _, ev := range events(e.Note) {
			switch ev.typ {
			case model.SpannerStop:
				stack := open[ev.number]
				if len(stack) == 0 {
					ds = append(ds, diag.Diagnostic{
						Code:     stopCode,
						Severity: diag.SeverityError,
						Message:  fmt.Sprintf("%s stop with number %d has no matching start", kind, ev.number),
						Location: noteLoc(ctx, m, i, e.Note.Voice),
						Details:  map[string]any{"number": ev.number},
					})
					continue
				}
				open[ev.number] = stack[:len(stack)-1]
			case model.SpannerStart:
				open[ev.number] = append(open[ev.number], noteLoc(ctx, m, i, e.Note.Voice))
			}
		}
	}
	return ds
}

func leftOpen(open map[int][]diag.Location, kind string, startCode diag.Code) []diag.Diagnostic {
	var ds []diag.Diagnostic
	for _, num := range util.GetKeysSorted(open) {
		for _, loc := range open[num] {
			ds = append(ds, diag.Diagnostic{
				Code:     startCode,
				Severity: diag.SeverityWarning,
				Message:  fmt.Sprintf("%s with number %d is still open at the end of the part", kind, num),
				Location: loc,
				Details:  map[string]any{"number": num},
			})
		}
	}
	return ds
}

// ValidateSlurs checks one measure in isolation; open slurs at the
// measure end are deferred to the cross-measure pass.
func ValidateSlurs(m model.Measure, ctx measure.Context) []diag.Diagnostic {
	return numberedWalk(m, ctx, make(map[int][]diag.Location), slurEvents, "slur", diag.SlurStopWithoutStart)
}

func ValidateSlursAcrossMeasures(part model.Part, partIndex int) []diag.Diagnostic {
	var ds []diag.Diagnostic
	open := make(map[int][]diag.Location)
	ctx := measure.Context{PartID: part.ID, PartIndex: partIndex}
	for i, m := range part.Measures {
		ctx.MeasureIndex = i
		ctx.MeasureNumber = m.Number
		ds = append(ds, numberedWalk(m, ctx, open, slurEvents, "slur", diag.SlurStopWithoutStart)...)
	}
	return append(ds, leftOpen(open, "slur", diag.SlurStartWithoutStop)...)
}

// ValidateTuplets checks one measure in isolation; open tuplets at the
// measure end are deferred to the cross-measure pass.
func ValidateTuplets(m model.Measure, ctx measure.Context) []diag.Diagnostic {
	return numberedWalk(m, ctx, make(map[int][]diag.Location), tupletEvents, "tuplet", diag.TupletStopWithoutStart)
}

func ValidateTupletsAcrossMeasures(part model.Part, partIndex int) []diag.Diagnostic {
	var ds []diag.Diagnostic
	open := make(map[int][]diag.Location)
	ctx := measure.Context{PartID: part.ID, PartIndex: partIndex}
	for i, m := range part.Measures {
		ctx.MeasureIndex = i
		ctx.MeasureNumber = m.Number
		ds = append(ds, numberedWalk(m, ctx, open, tupletEvents, "tuplet", diag.TupletStopWithoutStart)...)
	}
	return append(ds, leftOpen(open, "tuplet", diag.TupletStartWithoutStop)...)
}

// ValidateBeams matches beam begin/end pairs per numeric level within
// one measure. Beams never cross barlines, so both directions of
// mismatch are errors and are reported locally.
func ValidateBeams(m model.Measure, ctx measure.Context) []diag.Diagnostic {
	var ds []diag.Diagnostic
	open := make(map[int]diag.Location)
	for i, e := range m.Entries {
		if e.Note == nil {
			continue
		}
		for _, b := range e.Note.Beams {
			level := b.BeamLevel()
			loc := noteLoc(ctx, m, i, e.Note.Voice)
			switch b.Value {
			case model.BeamBegin:
				if prev, ok := open[level]; ok {
					ds = append(ds, beamBeginWithoutEnd(prev, level))
				}
				open[level] = loc
			case model.BeamEnd:
				if _, ok := open[level]; ok {
					delete(open, level)
				} else {
					ds = append(ds, diag.Diagnostic{
						Code:     diag.BeamEndWithoutBegin,
						Severity: diag.SeverityError,
						Message:  fmt.Sprintf("beam end at level %d with no open beam", level),
						Location: loc,
						Details:  map[string]any{"level": level},
					})
				}
			}
		}
	}
	for _, level := range util.GetKeysSorted(open) {
		ds = append(ds, beamBeginWithoutEnd(open[level], level))
	}
	return ds
}

func beamBeginWithoutEnd(loc diag.Location, level int) diag.Diagnostic {
	return diag.Diagnostic{
		Code:     diag.BeamBeginWithoutEnd,
		Severity: diag.SeverityError,
		Message:  fmt.Sprintf("beam begun at level %d is never ended in the measure", level),
		Location: loc,
		Details:  map[string]any{"level": level},
	}
}
