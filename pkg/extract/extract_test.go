package extract

import (
	"context"
	"reflect"
	"testing"

	"github.com/bioastra/spacekg/pkg/common"
)

type stubRecognizer struct {
	mentions map[string][]common.Mention
}

func (s *stubRecognizer) Recognize(_ context.Context, paperID string, _ string) ([]common.Mention, error) {
	return s.mentions[paperID], nil
}

func mention(paperID, name, entityType string) common.Mention {
	return common.Mention{
		PaperID:        paperID,
		SurfaceForm:    name,
		NormalizedName: name,
		Type:           entityType,
	}
}

func TestRunAssignsSequentialIDs(t *testing.T) {
	recognizer := &stubRecognizer{mentions: map[string][]common.Mention{
		"P001": {mention("P001", "microgravity", "condition"), mention("P001", "bone loss", "disease")},
		"P002": {mention("P002", "microgravity", "condition")},
	}}
	extractor := NewExtractor(NewExtractorParams{Recognizer: recognizer})

	result, err := extractor.Run(context.Background(), []common.Paper{{ID: "P001"}, {ID: "P002"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(result.Entities))
	}
	if result.Entities[0].ID != "E00001" || result.Entities[1].ID != "E00002" {
		t.Fatalf("unexpected entity ids: %s, %s", result.Entities[0].ID, result.Entities[1].ID)
	}
	if !reflect.DeepEqual(result.Entities[0].Papers, []string{"P001", "P002"}) {
		t.Fatalf("unexpected papers for merged entity: %v", result.Entities[0].Papers)
	}
	if !reflect.DeepEqual(result.PaperEntities["P001"], []string{"E00001", "E00002"}) {
		t.Fatalf("unexpected paper entities: %v", result.PaperEntities["P001"])
	}
}

func TestRunMergesFuzzyVariants(t *testing.T) {
	recognizer := &stubRecognizer{mentions: map[string][]common.Mention{
		"P001": {mention("P001", "osteoblast differentiation", "process")},
		"P002": {mention("P002", "osteoblast differentiations", "process")},
	}}
	extractor := NewExtractor(NewExtractorParams{Recognizer: recognizer})

	result, err := extractor.Run(context.Background(), []common.Paper{{ID: "P001"}, {ID: "P002"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Entities) != 1 {
		t.Fatalf("expected fuzzy variants to merge, got %d entities", len(result.Entities))
	}
	entity := result.Entities[0]
	if entity.Name != "osteoblast differentiation" {
		t.Fatalf("unexpected canonical name %q", entity.Name)
	}
	if !reflect.DeepEqual(entity.Synonyms, []string{"osteoblast differentiations"}) {
		t.Fatalf("unexpected synonyms: %v", entity.Synonyms)
	}
	if !reflect.DeepEqual(entity.Papers, []string{"P001", "P002"}) {
		t.Fatalf("unexpected papers: %v", entity.Papers)
	}
}

func TestRunKeepsTypesSeparate(t *testing.T) {
	recognizer := &stubRecognizer{mentions: map[string][]common.Mention{
		"P001": {
			mention("P001", "radiation", "condition"),
			mention("P001", "radiation", "process"),
		},
	}}
	extractor := NewExtractor(NewExtractorParams{Recognizer: recognizer})

	result, err := extractor.Run(context.Background(), []common.Paper{{ID: "P001"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entities) != 2 {
		t.Fatalf("expected same name with different types to stay separate, got %d", len(result.Entities))
	}
}

func TestRunCountsPaperOnce(t *testing.T) {
	recognizer := &stubRecognizer{mentions: map[string][]common.Mention{
		"P001": {
			mention("P001", "microgravity", "condition"),
			mention("P001", "microgravity", "condition"),
		},
	}}
	extractor := NewExtractor(NewExtractorParams{Recognizer: recognizer})

	result, err := extractor.Run(context.Background(), []common.Paper{{ID: "P001"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Entities[0].Papers; len(got) != 1 {
		t.Fatalf("expected paper listed once, got %v", got)
	}
}
