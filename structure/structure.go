// Package structure cross-checks the score-level skeleton: the part
// roster against the parts, measure alignment between parts, part-group
// bracket pairing, and staff/clef declarations.
package structure

import (
	"fmt"

	"github.com/quaverlabs/partita/diag"
	"github.com/quaverlabs/partita/model"
	"github.com/quaverlabs/partita/util"
)

func partLoc(id string, index int) diag.Location {
	return diag.Location{PartID: id, PartIndex: index, MeasureIndex: -1, EntryIndex: -1}
}

// ValidatePartReferences checks that every part id appears in the
// roster as a score-part and every roster score-part has a part.
func ValidatePartReferences(score model.Score) []diag.Diagnostic {
	var ds []diag.Diagnostic

	listed := make(map[string]bool)
	for _, e := range score.PartList {
		if e.ScorePart != nil {
			listed[e.ScorePart.ID] = true
		}
	}
	present := make(map[string]bool)
	for i, p := range score.Parts {
		present[p.ID] = true
		if !listed[p.ID] {
			ds = append(ds, diag.Diagnostic{
				Code:     diag.PartIDNotInPartList,
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("part %q has no score-part entry in the part list", p.ID),
				Location: partLoc(p.ID, i),
			})
		}
	}
	for _, e := range score.PartList {
		if e.ScorePart != nil && !present[e.ScorePart.ID] {
			ds = append(ds, diag.Diagnostic{
				Code:     diag.PartListIDNotInParts,
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("score-part %q has no corresponding part", e.ScorePart.ID),
				Location: partLoc(e.ScorePart.ID, -1),
			})
		}
	}
	return ds
}

// ValidatePartStructure checks duplicate part ids, measure count and
// number alignment across parts, and part-group start/stop pairing.
func ValidatePartStructure(score model.Score) []diag.Diagnostic {
	var ds []diag.Diagnostic

	seen := make(map[string]bool)
	for i, p := range score.Parts {
		if seen[p.ID] {
			ds = append(ds, diag.Diagnostic{
				Code:     diag.DuplicatePartID,
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("part id %q appears more than once", p.ID),
				Location: partLoc(p.ID, i),
			})
		}
		seen[p.ID] = true
	}

	if len(score.Parts) > 1 {
		ref := score.Parts[0]
		for i := 1; i < len(score.Parts); i++ {
			p := score.Parts[i]
			if len(p.Measures) != len(ref.Measures) {
				ds = append(ds, diag.Diagnostic{
					Code:     diag.PartMeasureCountMismatch,
					Severity: diag.SeverityError,
					Message:  fmt.Sprintf("part %q has %d measures, part %q has %d", p.ID, len(p.Measures), ref.ID, len(ref.Measures)),
					Location: partLoc(p.ID, i),
					Details:  map[string]any{"measures": len(p.Measures), "reference": len(ref.Measures)},
				})
			}
			limit := util.Min(len(p.Measures), len(ref.Measures))
			for mi := 0; mi < limit; mi++ {
				if p.Measures[mi].Number != ref.Measures[mi].Number {
					loc := partLoc(p.ID, i)
					loc.MeasureIndex = mi
					loc.MeasureNumber = p.Measures[mi].Number
					ds = append(ds, diag.Diagnostic{
						Code:     diag.PartMeasureNumberMismatch,
						Severity: diag.SeverityWarning,
						Message:  fmt.Sprintf("measure %d is numbered %q in part %q but %q in part %q", mi, p.Measures[mi].Number, p.ID, ref.Measures[mi].Number, ref.ID),
						Location: loc,
					})
				}
			}
		}
	}

	ds = append(ds, checkPartGroups(score.PartList)...)
	return ds
}

func checkPartGroups(entries []model.PartListEntry) []diag.Diagnostic {
	var ds []diag.Diagnostic
	open := make(map[int]int) // group number -> roster index of the open start

	startWithoutStop := func(num int) diag.Diagnostic {
		return diag.Diagnostic{
			Code:     diag.PartGroupStartWithoutStop,
			Severity: diag.SeverityError,
			Message:  fmt.Sprintf("part-group %d is started but never stopped", num),
			Location: diag.NoLocation(),
			Details:  map[string]any{"number": num},
		}
	}

	for i, e := range entries {
		g := e.PartGroup
		if g == nil {
			continue
		}
		num := g.GroupNumber()
		switch g.Type {
		case model.SpannerStart:
			if _, ok := open[num]; ok {
				ds = append(ds, startWithoutStop(num))
			}
			open[num] = i
		case model.SpannerStop:
			if _, ok := open[num]; ok {
				delete(open, num)
			} else {
				ds = append(ds, diag.Diagnostic{
					Code:     diag.PartGroupStopWithoutStart,
					Severity: diag.SeverityError,
					Message:  fmt.Sprintf("part-group %d is stopped but never started", num),
					Location: diag.NoLocation(),
					Details:  map[string]any{"number": num},
				})
			}
		}
	}
	for _, num := range util.GetKeysSorted(open) {
		ds = append(ds, startWithoutStop(num))
	}
	return ds
}

// ValidateStaffStructure checks per part that staff references stay
// within the declared staff count, that multi-staff parts declare a
// clef for each staff before its first use, and that staff-count
// declarations are consistent.
func ValidateStaffStructure(score model.Score) []diag.Diagnostic {
	var ds []diag.Diagnostic
	for pi, part := range score.Parts {
		ds = append(ds, staffChecksForPart(part, pi)...)
	}
	return ds
}

func staffChecksForPart(part model.Part, partIndex int) []diag.Diagnostic {
	var ds []diag.Diagnostic

	staves := 0
	stavesSet := false
	clefSeen := make(map[int]bool)
	missingClefReported := make(map[int]bool)
	missingStavesReported := false

	for mi, m := range part.Measures {
		loc := func(entryIndex int) diag.Location {
			return diag.Location{
				PartID:        part.ID,
				PartIndex:     partIndex,
				MeasureNumber: m.Number,
				MeasureIndex:  mi,
				EntryIndex:    entryIndex,
			}
		}

		if m.Attributes != nil {
			if m.Attributes.Staves != nil {
				n := *m.Attributes.Staves
				if stavesSet && n != staves {
					ds = append(ds, diag.Diagnostic{
						Code:     diag.StavesDeclarationMismatch,
						Severity: diag.SeverityInfo,
						Message:  fmt.Sprintf("staff count changes from %d to %d mid-part", staves, n),
						Location: loc(-1),
						Details:  map[string]any{"previous": staves, "declared": n},
					})
				}
				staves = n
				stavesSet = true
			}
			for _, c := range m.Attributes.Clefs {
				cs := c.ClefStaff()
				if stavesSet && cs > staves {
					l := loc(-1)
					l.Staff = cs
					ds = append(ds, diag.Diagnostic{
						Code:     diag.ClefStaffExceedsStaves,
						Severity: diag.SeverityError,
						Message:  fmt.Sprintf("clef for staff %d exceeds declared staff count %d", cs, staves),
						Location: l,
						Details:  map[string]any{"staff": cs, "staves": staves},
					})
				}
				clefSeen[cs] = true
			}
		}

		for ei, e := range m.Entries {
			if e.Note == nil {
				continue
			}
			s := e.Note.Staff
			if s == 0 {
				s = 1
			}
			if s > 1 && !stavesSet && !missingStavesReported {
				l := loc(ei)
				l.Staff = s
				ds = append(ds, diag.Diagnostic{
					Code:     diag.MissingStavesDeclaration,
					Severity: diag.SeverityWarning,
					Message:  fmt.Sprintf("staff %d is used but the part never declares a staff count", s),
					Location: l,
					Details:  map[string]any{"staff": s},
				})
				missingStavesReported = true
			}
			if stavesSet && staves > 1 && s <= staves && !clefSeen[s] && !missingClefReported[s] {
				l := loc(ei)
				l.Staff = s
				l.Voice = e.Note.Voice
				ds = append(ds, diag.Diagnostic{
					Code:     diag.MissingClefForStaff,
					Severity: diag.SeverityWarning,
					Message:  fmt.Sprintf("staff %d is used before any clef is declared for it", s),
					Location: l,
					Details:  map[string]any{"staff": s},
				})
				missingClefReported[s] = true
			}
		}
	}
	return ds
}
