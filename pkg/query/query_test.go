package query

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bioastra/spacekg/pkg/common"
	"github.com/bioastra/spacekg/pkg/sqlstore"
	"github.com/bioastra/spacekg/pkg/store/memory"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		question string
		want     Kind
	}{
		{"What is related to microgravity?", KindGraph},
		{"Which genes does spaceflight affect?", KindGraph},
		{"List papers published since 2020", KindSQL},
		{"How many papers are in cluster 3?", KindSQL},
		{"Which papers published after 2020 mention entities related to bone loss?", KindHybrid},
		// No signal either way falls through to the catalog.
		{"microgravity bone loss", KindSQL},
	}

	for _, tt := range tests {
		if got := Classify(tt.question); got != tt.want {
			t.Fatalf("Classify(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestFindYear(t *testing.T) {
	if year, ok := findYear("papers since 2021"); !ok || year != 2021 {
		t.Fatalf("findYear = %d, %v", year, ok)
	}
	if _, ok := findYear("recent papers"); ok {
		t.Fatalf("expected no year")
	}
}

func TestCandidateTerms(t *testing.T) {
	terms := candidateTerms("What affects bone loss?")
	found := make(map[string]bool)
	for _, term := range terms {
		found[term] = true
	}
	if !found["bone loss"] {
		t.Fatalf("expected bigram 'bone loss' in %v", terms)
	}
	if found["what"] {
		t.Fatalf("stopword leaked into terms %v", terms)
	}
}

func testRouter(t *testing.T) *Router {
	t.Helper()
	ctx := context.Background()

	graph := memory.NewMemoryStorage()
	entities := []common.Entity{
		{ID: "E00001", Name: "microgravity", Type: "condition", Papers: []string{"P001", "P002"}, ImportanceScore: 40},
		{ID: "E00002", Name: "bone loss", Type: "disease", Papers: []string{"P001"}, ImportanceScore: 25},
	}
	relations := []common.Relation{
		{ID: "R00001", Source: "E00001", Type: "induces", Target: "E00002", EvidenceCount: 3},
	}
	if err := graph.SaveEntities(ctx, entities); err != nil {
		t.Fatalf("SaveEntities: %v", err)
	}
	if err := graph.SaveRelations(ctx, relations); err != nil {
		t.Fatalf("SaveRelations: %v", err)
	}

	sqldb, err := sqlstore.NewStore(filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	papers := []common.Paper{
		{ID: "P001", Title: "t1", Year: 2019, Abstract: "a1"},
		{ID: "P002", Title: "t2", Year: 2022, Abstract: "a2"},
	}
	if err := sqldb.ImportPapers(ctx, papers); err != nil {
		t.Fatalf("ImportPapers: %v", err)
	}
	clusters := []sqlstore.Cluster{
		{ID: 2, Label: "bone", Papers: []string{"P001"}},
	}
	if err := sqldb.ImportClusters(ctx, clusters); err != nil {
		t.Fatalf("ImportClusters: %v", err)
	}

	return NewRouter(NewRouterParams{Graph: graph, SQL: sqldb})
}

func TestExecuteGraph(t *testing.T) {
	router := testRouter(t)

	result, err := router.Execute(context.Background(), "What is related to bone loss?")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Kind != KindGraph {
		t.Fatalf("unexpected kind %v", result.Kind)
	}
	if len(result.Entities) != 1 || result.Entities[0].ID != "E00002" {
		t.Fatalf("unexpected entities %+v", result.Entities)
	}
	if len(result.Relations) != 1 || result.Relations[0].ID != "R00001" {
		t.Fatalf("unexpected relations %+v", result.Relations)
	}
	if !reflect.DeepEqual(result.PaperIDs, []string{"P001"}) {
		t.Fatalf("unexpected paper ids %v", result.PaperIDs)
	}
}

func TestExecuteSQL(t *testing.T) {
	router := testRouter(t)

	result, err := router.Execute(context.Background(), "List papers published since 2020")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Kind != KindSQL {
		t.Fatalf("unexpected kind %v", result.Kind)
	}
	if len(result.Papers) != 1 || result.Papers[0].ID != "P002" {
		t.Fatalf("unexpected papers %+v", result.Papers)
	}
}

func TestFindCluster(t *testing.T) {
	if id, ok := findCluster("papers in Cluster 2"); !ok || id != 2 {
		t.Fatalf("findCluster = %d, %v", id, ok)
	}
	if _, ok := findCluster("clustered papers"); ok {
		t.Fatalf("expected no cluster id")
	}
}

func TestExecuteSQLCluster(t *testing.T) {
	router := testRouter(t)

	result, err := router.Execute(context.Background(), "Which papers are in cluster 2?")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Kind != KindSQL {
		t.Fatalf("unexpected kind %v", result.Kind)
	}
	if len(result.Papers) != 1 || result.Papers[0].ID != "P001" {
		t.Fatalf("unexpected papers %+v", result.Papers)
	}
	if !reflect.DeepEqual(result.PaperIDs, []string{"P001"}) {
		t.Fatalf("unexpected paper ids %v", result.PaperIDs)
	}
}

func TestExecuteHybridIntersects(t *testing.T) {
	router := testRouter(t)

	result, err := router.Execute(context.Background(), "Which papers published since 2019 are related to microgravity?")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Kind != KindHybrid {
		t.Fatalf("unexpected kind %v", result.Kind)
	}
	// Graph side: P001, P002 (microgravity). SQL side: year >= 2019 → both.
	if !reflect.DeepEqual(result.PaperIDs, []string{"P001", "P002"}) {
		t.Fatalf("unexpected intersection %v", result.PaperIDs)
	}
}
