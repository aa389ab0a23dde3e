package scoreio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quaverlabs/partita/model"
)

func intp(v int) *int { return &v }

func TestRoundTrip(t *testing.T) {
	score := &model.Score{
		Work: "Suite No. 1",
		PartList: []model.PartListEntry{
			{PartGroup: &model.PartGroup{Type: "start", Number: 1}},
			{ScorePart: &model.ScorePart{ID: "P1", Name: "Violin"}},
			{PartGroup: &model.PartGroup{Type: "stop", Number: 1}},
		},
		Parts: []model.Part{{ID: "P1", Measures: []model.Measure{{
			Number: "1",
			Attributes: &model.Attributes{
				Divisions: intp(2),
				Time:      &model.TimeSignature{Beats: 3, BeatType: 4},
				Clefs:     []model.Clef{{Sign: "G", Line: 2}},
			},
			Entries: []model.Entry{
				{Note: &model.Note{Pitch: &model.Pitch{Step: "C", Alter: 1, Octave: 4}, Duration: 6, Voice: "1"}},
			},
			Barlines: []model.Barline{{Location: "right", Repeat: &model.Repeat{Direction: "backward", Times: 3}}},
		}}}},
	}

	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, score))

	back, err := Read(&buf)
	assert.NoError(t, err)
	assert.Equal(t, score, back)
}

func TestReadScoreFromYAML(t *testing.T) {
	doc := `
partList:
  - scorePart: {id: P1, name: Flute}
parts:
  - id: P1
    measures:
      - number: "1"
        attributes:
          divisions: 1
          time: {beats: 4, beatType: 4}
        entries:
          - note: {pitch: {step: C, octave: 4}, duration: 4, voice: "1"}
`
	score, err := Read(strings.NewReader(doc))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(score.Parts, 1)
	assert.Equal("P1", score.Parts[0].ID)
	m := score.Parts[0].Measures[0]
	assert.Equal(1, *m.Attributes.Divisions)
	assert.Equal(4, m.Entries[0].Note.Duration)
}

func TestReadRejectsUnknownFields(t *testing.T) {
	_, err := Read(strings.NewReader("parts: []\nbogus: 1\n"))
	assert.Error(t, err)
}

func TestAssignPartIDs(t *testing.T) {
	score := &model.Score{Parts: []model.Part{
		{ID: "P1"},
		{Name: "Cello"},
	}}
	AssignPartIDs(score)

	assert := assert.New(t)
	assert.NotEmpty(score.Parts[1].ID)
	assert.Len(score.PartList, 2)
	assert.Equal("P1", score.PartList[0].ScorePart.ID)
	assert.Equal(score.Parts[1].ID, score.PartList[1].ScorePart.ID)
	assert.Equal("Cello", score.PartList[1].ScorePart.Name)
}

func TestAssignPartIDsIsStableForListedParts(t *testing.T) {
	score := &model.Score{
		PartList: []model.PartListEntry{{ScorePart: &model.ScorePart{ID: "P1"}}},
		Parts:    []model.Part{{ID: "P1"}},
	}
	AssignPartIDs(score)

	assert.Len(t, score.PartList, 1)
}
