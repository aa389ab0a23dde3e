// Package scoreio reads and writes the YAML score files the CLI and
// tests work with. It stands in for the external reader collaborator:
// it only populates the document model and never interprets it.
package scoreio

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/quaverlabs/partita/model"
)

// Read decodes a score from YAML. The document model is returned as
// given; call AssignPartIDs to synthesize missing identifiers.
func Read(r io.Reader) (*model.Score, error) {
	var s model.Score
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding score: %w", err)
	}
	return &s, nil
}

func ReadFile(path string) (*model.Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func Write(w io.Writer, s *model.Score) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(s)
}

func WriteFile(path string, s *model.Score) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Write(f, s)
}

// AssignPartIDs synthesizes identifiers for parts that lack one and
// appends roster entries for parts the part list does not mention.
// This is the one mutation the serializer layer is licensed to make:
// identifiers may be invented, musical content may not.
func AssignPartIDs(s *model.Score) {
	listed := make(map[string]bool)
	for _, e := range s.PartList {
		if e.ScorePart != nil {
			listed[e.ScorePart.ID] = true
		}
	}
	for i := range s.Parts {
		p := &s.Parts[i]
		if p.ID == "" {
			p.ID = "P-" + uuid.NewString()[:8]
		}
		if !listed[p.ID] {
			s.PartList = append(s.PartList, model.PartListEntry{
				ScorePart: &model.ScorePart{ID: p.ID, Name: p.Name},
			})
			listed[p.ID] = true
		}
	}
}
