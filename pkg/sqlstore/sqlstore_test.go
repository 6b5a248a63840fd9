package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bioastra/spacekg/pkg/common"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

var testPapers = []common.Paper{
	{ID: "P001", Title: "Bone loss in orbit", Year: 2019, Abstract: "a1"},
	{ID: "P002", Title: "Muscle atrophy after flight", Year: 2021, Abstract: "a2"},
	{ID: "P003", Title: "Plant growth on the station", Year: 2022, Abstract: "a3"},
}

func seed(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()
	if err := store.ImportPapers(ctx, testPapers); err != nil {
		t.Fatalf("ImportPapers: %v", err)
	}
	err := store.ImportKeywords(ctx, map[string][]Keyword{
		"P001": {{Keyword: "Bone Loss", Score: 0.9}, {Keyword: "microgravity", Score: 0.7}},
		"P002": {{Keyword: "microgravity", Score: 0.8}},
	})
	if err != nil {
		t.Fatalf("ImportKeywords: %v", err)
	}
	err = store.ImportClusters(ctx, []Cluster{
		{ID: 1, Label: "musculoskeletal", Papers: []string{"P001", "P002"}},
		{ID: 2, Label: "plants", Papers: []string{"P003"}},
	})
	if err != nil {
		t.Fatalf("ImportClusters: %v", err)
	}
	err = store.ImportSummaries(ctx, map[string]Summary{
		"P001": {Text: "Bones weaken in orbit.", Method: "extractive"},
	})
	if err != nil {
		t.Fatalf("ImportSummaries: %v", err)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	store := testStore(t)
	seed(t, store)
	seed(t, store)

	counts, err := store.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	want := Counts{Papers: 3, Keywords: 2, Clusters: 2, Summaries: 1}
	if counts != want {
		t.Fatalf("Counts = %+v, want %+v", counts, want)
	}
}

func TestListPapers(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	papers, err := store.ListPapers(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("ListPapers: %v", err)
	}
	if len(papers) != 2 || papers[0].ID != "P001" || papers[1].ID != "P002" {
		t.Fatalf("unexpected page %+v", papers)
	}

	rest, err := store.ListPapers(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("ListPapers: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != "P003" {
		t.Fatalf("unexpected second page %+v", rest)
	}
}

func TestPaperDetails(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	details, err := store.PaperDetails(context.Background(), "P001")
	if err != nil {
		t.Fatalf("PaperDetails: %v", err)
	}
	if details.Title != "Bone loss in orbit" || details.Summary != "Bones weaken in orbit." {
		t.Fatalf("unexpected details %+v", details)
	}
	if len(details.Keywords) != 2 || details.Keywords[0].Keyword != "bone loss" {
		t.Fatalf("unexpected keywords %+v", details.Keywords)
	}
	if len(details.Clusters) != 1 || details.Clusters[0].Label != "musculoskeletal" {
		t.Fatalf("unexpected clusters %+v", details.Clusters)
	}

	_, err = store.PaperDetails(context.Background(), "P999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPapersAfterYear(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	papers, err := store.PapersAfterYear(context.Background(), 2021)
	if err != nil {
		t.Fatalf("PapersAfterYear: %v", err)
	}
	if len(papers) != 2 || papers[0].ID != "P002" || papers[1].ID != "P003" {
		t.Fatalf("unexpected papers %+v", papers)
	}
}

func TestPapersInCluster(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	papers, err := store.PapersInCluster(context.Background(), 1)
	if err != nil {
		t.Fatalf("PapersInCluster: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %+v", papers)
	}
}

func TestSearchByKeyword(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	papers, err := store.SearchByKeyword(context.Background(), "Microgravity")
	if err != nil {
		t.Fatalf("SearchByKeyword: %v", err)
	}
	// Scores 0.8 (P002) before 0.7 (P001).
	if len(papers) != 2 || papers[0].ID != "P002" || papers[1].ID != "P001" {
		t.Fatalf("unexpected search result %+v", papers)
	}

	none, err := store.SearchByKeyword(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("SearchByKeyword: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no results, got %+v", none)
	}
}

func TestClusters(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	clusters, err := store.Clusters(context.Background())
	if err != nil {
		t.Fatalf("Clusters: %v", err)
	}
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %+v", clusters)
	}
	if !reflect.DeepEqual(clusters[0].Papers, []string{"P001", "P002"}) {
		t.Fatalf("unexpected cluster papers %v", clusters[0].Papers)
	}
}
