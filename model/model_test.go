package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMIDINote(t *testing.T) {
	cases := []struct {
		pitch Pitch
		key   uint8
	}{
		{Pitch{Step: "C", Octave: 4}, 60},
		{Pitch{Step: "A", Octave: 4}, 69},
		{Pitch{Step: "C", Alter: 1, Octave: 4}, 61},
		{Pitch{Step: "B", Alter: -1, Octave: 3}, 58},
		{Pitch{Step: "C", Octave: -1}, 0},
		{Pitch{Step: "G", Octave: 9}, 127},
	}
	for _, c := range cases {
		key, ok := c.pitch.MIDINote()
		assert.True(t, ok)
		assert.Equal(t, c.key, key)
	}
}

func TestMIDINoteRejectsUnknownStepAndRange(t *testing.T) {
	assert := assert.New(t)

	_, ok := Pitch{Step: "H", Octave: 4}.MIDINote()
	assert.False(ok)

	_, ok = Pitch{Step: "A", Octave: 9}.MIDINote()
	assert.False(ok)
}

func TestRepeatCountDefaultsToTwo(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(2, Repeat{Direction: RepeatBackward}.Count())
	assert.Equal(4, Repeat{Direction: RepeatBackward, Times: 4}.Count())
}

func TestSpannerNumberDefaults(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(1, Slur{Type: SpannerStart}.SlurNumber())
	assert.Equal(1, Tuplet{Type: SpannerStart}.TupletNumber())
	assert.Equal(1, Beam{Value: BeamBegin}.BeamLevel())
	assert.Equal(1, PartGroup{Type: SpannerStart}.GroupNumber())
	assert.Equal(1, Clef{Sign: "G"}.ClefStaff())
}

func TestMeasureRepeatAccessors(t *testing.T) {
	m := Measure{Barlines: []Barline{
		{Location: "left", Repeat: &Repeat{Direction: RepeatForward}},
		{Location: "right", Repeat: &Repeat{Direction: RepeatBackward, Times: 3}},
	}}

	assert := assert.New(t)
	assert.True(m.ForwardRepeat())
	if assert.NotNil(m.BackwardRepeat()) {
		assert.Equal(3, m.BackwardRepeat().Count())
	}
	assert.False(Measure{}.ForwardRepeat())
	assert.Nil(Measure{}.BackwardRepeat())
}

func TestHasTie(t *testing.T) {
	n := Note{Ties: []Tie{{Type: SpannerStart}}}
	assert := assert.New(t)
	assert.True(n.HasTie(SpannerStart))
	assert.False(n.HasTie(SpannerStop))
}
