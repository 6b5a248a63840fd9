package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `paper_id,title,authors,year,journal,doi_url,abstract
PMC0001,Microgravity effects on bone,"Smith J; Doe A",2014,J Space Biol,https://doi.org/10.1/x,"Microgravity induces bone loss in mice."
PMC0002,Radiation and muscle atrophy,,2016,,,Radiation exposure decreases muscle mass.
PMC0003,No abstract paper,Jones B,2018,,,
,Missing id,Jones B,2018,,,Some abstract text.
`

func TestParse(t *testing.T) {
	papers, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers after dropping invalid rows, got %d", len(papers))
	}
	if papers[0].ID != "PMC0001" {
		t.Errorf("expected PMC0001, got %s", papers[0].ID)
	}
	if papers[0].Year != 2014 {
		t.Errorf("expected year 2014, got %d", papers[0].Year)
	}
	if papers[1].Abstract != "Radiation exposure decreases muscle mass." {
		t.Errorf("unexpected abstract: %s", papers[1].Abstract)
	}
}

func TestParse_MissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("paper_id,title\nPMC0001,Title only\n"))
	if err == nil {
		t.Fatal("expected error for missing abstract column, got nil")
	}
	if !strings.Contains(err.Error(), "abstract") {
		t.Fatalf("expected error to name the missing column, got %v", err)
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error for empty CSV, got nil")
	}
}

func TestPaperText(t *testing.T) {
	papers, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	want := "Microgravity effects on bone. Microgravity induces bone loss in mice."
	if papers[0].Text() != want {
		t.Fatalf("expected %q, got %q", want, papers[0].Text())
	}
}

func TestLoader_Cache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "papers.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader()
	first, err := loader.Load(path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	// Remove the file; the cached parse must still serve the second load.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	second, err := loader.Load(path)
	if err != nil {
		t.Fatalf("expected cached load, got %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("cache returned different results: %d vs %d", len(first), len(second))
	}
}
