package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names inside the pipeline output directory.
const (
	EntitiesFile          = "entities.json"
	PaperEntitiesFile     = "paper_entities.json"
	RawMentionsFile       = "raw_entities_per_paper.jsonl"
	RelationsFile         = "relations.json"
	RawRelationsFile      = "raw_relations.jsonl"
	FilteredEntitiesFile  = "filtered_entities.json"
	FilteredRelationsFile = "filtered_relations.json"
	FilterReportFile      = "filtering_report.json"
	AnalysisFile          = "analysis.json"
	GraphPageFile         = "knowledge_graph.html"
)

func (p *Pipeline) artifactPath(name string) string {
	return filepath.Join(p.outputDir, name)
}

func writeJSON(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

func readJSON(path string, out any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(content, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// writeJSONL writes one JSON document per line.
func writeJSONL[T any](path string, items []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, item := range items {
		if err := encoder.Encode(item); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	return file.Close()
}
