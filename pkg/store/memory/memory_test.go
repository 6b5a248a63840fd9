package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/bioastra/spacekg/pkg/common"
	"github.com/bioastra/spacekg/pkg/store"
)

func seeded(t *testing.T) *MemoryStorage {
	t.Helper()
	s := NewMemoryStorage()
	ctx := context.Background()

	entities := []common.Entity{
		{ID: "E00001", Name: "microgravity", Type: "condition", Papers: []string{"P002", "P001"}, ImportanceScore: 50, RelationCount: 3},
		{ID: "E00002", Name: "bone loss", Type: "disease", Papers: []string{"P001"}, ImportanceScore: 30, RelationCount: 2},
		{ID: "E00003", Name: "RUNX2", Type: "gene", Papers: []string{"P002"}, ImportanceScore: 22, RelationCount: 1},
	}
	relations := []common.Relation{
		{ID: "R00001", Source: "E00001", Type: "induces", Target: "E00002", EvidenceCount: 5},
		{ID: "R00002", Source: "E00003", Type: "regulates", Target: "E00002", EvidenceCount: 2},
	}
	if err := s.SaveEntities(ctx, entities); err != nil {
		t.Fatalf("SaveEntities: %v", err)
	}
	if err := s.SaveRelations(ctx, relations); err != nil {
		t.Fatalf("SaveRelations: %v", err)
	}
	return s
}

func TestStats(t *testing.T) {
	s := seeded(t)
	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entities != 3 || stats.Relations != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.ByType["condition"] != 1 || stats.ByType["disease"] != 1 || stats.ByType["gene"] != 1 {
		t.Fatalf("unexpected type counts %+v", stats.ByType)
	}
}

func TestSaveRelationsSkipsMissingEndpoints(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	err := s.SaveRelations(ctx, []common.Relation{
		{ID: "R00099", Source: "E00001", Type: "affects", Target: "E09999"},
	})
	if err != nil {
		t.Fatalf("SaveRelations: %v", err)
	}
	stats, _ := s.Stats(ctx)
	if stats.Relations != 2 {
		t.Fatalf("expected dangling relation to be skipped, got %d relations", stats.Relations)
	}
}

func TestEntitiesOrderAndFilter(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	all, err := s.Entities(ctx, "", 0)
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if len(all) != 3 || all[0].ID != "E00001" || all[2].ID != "E00003" {
		t.Fatalf("expected importance order, got %+v", all)
	}

	genes, err := s.Entities(ctx, "gene", 0)
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if len(genes) != 1 || genes[0].ID != "E00003" {
		t.Fatalf("unexpected gene filter result %+v", genes)
	}

	limited, err := s.Entities(ctx, "", 1)
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestEntityByName(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	entity, err := s.EntityByName(ctx, "runx2")
	if err != nil {
		t.Fatalf("EntityByName: %v", err)
	}
	if entity.ID != "E00003" {
		t.Fatalf("unexpected entity %+v", entity)
	}

	_, err = s.EntityByName(ctx, "unknown")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRelatedPapers(t *testing.T) {
	s := seeded(t)
	papers, err := s.RelatedPapers(context.Background(), "E00001", 0)
	if err != nil {
		t.Fatalf("RelatedPapers: %v", err)
	}
	if !reflect.DeepEqual(papers, []string{"P001", "P002"}) {
		t.Fatalf("expected sorted papers, got %v", papers)
	}

	_, err = s.RelatedPapers(context.Background(), "E09999", 0)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEntityRelations(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	relations, err := s.EntityRelations(ctx, "E00002", "")
	if err != nil {
		t.Fatalf("EntityRelations: %v", err)
	}
	if len(relations) != 2 || relations[0].ID != "R00001" {
		t.Fatalf("expected both relations by evidence, got %+v", relations)
	}

	regulates, err := s.EntityRelations(ctx, "E00002", "regulates")
	if err != nil {
		t.Fatalf("EntityRelations: %v", err)
	}
	if len(regulates) != 1 || regulates[0].ID != "R00002" {
		t.Fatalf("unexpected filtered relations %+v", regulates)
	}
}

func TestClear(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	stats, _ := s.Stats(ctx)
	if stats.Entities != 0 || stats.Relations != 0 {
		t.Fatalf("expected empty store, got %+v", stats)
	}
}
