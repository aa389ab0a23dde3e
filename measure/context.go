package measure

import "github.com/quaverlabs/partita/model"

// Context is the attribute state carried forward from all measures
// preceding the one being validated: divisions, time signature and staff
// count accumulate through a part until redefined. A Context never
// includes the declarations of the measure it is the context *for*;
// ValidateMeasure applies those itself via Apply.
type Context struct {
	PartID        string
	PartIndex     int
	MeasureIndex  int
	MeasureNumber string

	Divisions     int
	DivisionsSet  bool
	Time          *model.TimeSignature
	Staves        int
	StavesSet     bool
}

// Apply returns the context with a measure's own declarations folded in.
// The receiver is not modified.
func (c Context) Apply(attrs *model.Attributes) Context {
	if attrs == nil {
		return c
	}
	if attrs.Divisions != nil {
		c.Divisions = *attrs.Divisions
		c.DivisionsSet = true
	}
	if attrs.Time != nil {
		c.Time = attrs.Time
	}
	if attrs.Staves != nil {
		c.Staves = *attrs.Staves
		c.StavesSet = true
	}
	return c
}

// AccumulateContexts folds a part's measures front to back and returns
// the context in effect *before* each measure, one entry per measure.
// The fold keeps the local validator pure and resumable: validating
// measure i only needs contexts[i], never the whole part.
func AccumulateContexts(part model.Part, partIndex int) []Context {
	contexts := make([]Context, len(part.Measures))
	ctx := Context{PartID: part.ID, PartIndex: partIndex}
	for i, m := range part.Measures {
		ctx.MeasureIndex = i
		ctx.MeasureNumber = m.Number
		contexts[i] = ctx
		ctx = ctx.Apply(m.Attributes)
	}
	return contexts
}
