// Package viz renders the knowledge graph as a self-contained
// interactive HTML page.
package viz

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"sort"

	"github.com/bioastra/spacekg/pkg/common"
	"github.com/bioastra/spacekg/pkg/store"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFiles, "templates/graph.html.tmpl"))

// typeColors assigns one color per entity type; unknown types fall
// back to grey.
var typeColors = map[string]string{
	"gene":      "#4c78a8",
	"chemical":  "#f58518",
	"disease":   "#e45756",
	"cell_type": "#72b7b2",
	"tissue":    "#54a24b",
	"organism":  "#eeca3b",
	"condition": "#b279a2",
	"assay":     "#ff9da6",
	"process":   "#9d755d",
}

const defaultColor = "#bab0ac"

type node struct {
	ID            string   `json:"id"`
	Label         string   `json:"label"`
	Title         string   `json:"title"`
	Color         string   `json:"color"`
	Value         float64  `json:"value"`
	EntityType    string   `json:"entityType"`
	Importance    float64  `json:"importance"`
	RelationCount int      `json:"relationCount"`
	Papers        []string `json:"papers"`
}

type edge struct {
	From       string   `json:"from"`
	To         string   `json:"to"`
	Label      string   `json:"label"`
	Width      float64  `json:"width"`
	Evidence   int      `json:"evidence"`
	Confidence float64  `json:"confidence"`
	Papers     []string `json:"papers"`
	Samples    []string `json:"samples"`
}

type legendEntry struct {
	Type  string
	Color string
	Count int
}

type pageData struct {
	Title         string
	EntityCount   int
	RelationCount int
	Nodes         []node
	Edges         []edge
	Legend        []legendEntry
}

// Render writes the interactive HTML page for the given graph.
func Render(w io.Writer, title string, entities []common.Entity, relations []common.Relation) error {
	data := pageData{
		Title:         title,
		EntityCount:   len(entities),
		RelationCount: len(relations),
		Nodes:         make([]node, 0, len(entities)),
		Edges:         make([]edge, 0, len(relations)),
	}

	typeCounts := make(map[string]int)
	for _, entity := range entities {
		typeCounts[entity.Type]++
		color, ok := typeColors[entity.Type]
		if !ok {
			color = defaultColor
		}
		papers := entity.Papers
		if papers == nil {
			papers = []string{}
		}
		data.Nodes = append(data.Nodes, node{
			ID:            entity.ID,
			Label:         entity.Name,
			Title:         fmt.Sprintf("%s (%s)", entity.Name, entity.Type),
			Color:         color,
			Value:         nodeValue(entity.ImportanceScore),
			EntityType:    entity.Type,
			Importance:    entity.ImportanceScore,
			RelationCount: entity.RelationCount,
			Papers:        papers,
		})
	}

	for _, relation := range relations {
		papers := relation.Papers
		if papers == nil {
			papers = []string{}
		}
		samples := relation.SampleSentences
		if samples == nil {
			samples = []string{}
		}
		data.Edges = append(data.Edges, edge{
			From:       relation.Source,
			To:         relation.Target,
			Label:      relation.Type,
			Width:      edgeWidth(relation.EvidenceCount),
			Evidence:   relation.EvidenceCount,
			Confidence: relation.Confidence,
			Papers:     papers,
			Samples:    samples,
		})
	}

	for entityType, count := range typeCounts {
		color, ok := typeColors[entityType]
		if !ok {
			color = defaultColor
		}
		data.Legend = append(data.Legend, legendEntry{Type: entityType, Color: color, Count: count})
	}
	sort.Slice(data.Legend, func(i, j int) bool { return data.Legend[i].Type < data.Legend[j].Type })

	return pageTemplate.Execute(w, data)
}

// RenderFile renders the graph held by a storage backend into a file.
func RenderFile(ctx context.Context, storage store.GraphStorage, path string, title string) error {
	entities, err := storage.Entities(ctx, "", math.MaxInt32)
	if err != nil {
		return fmt.Errorf("loading entities: %w", err)
	}

	seen := make(map[string]bool)
	var relations []common.Relation
	for _, entity := range entities {
		entityRelations, err := storage.EntityRelations(ctx, entity.ID, "")
		if err != nil {
			return fmt.Errorf("loading relations for %s: %w", entity.ID, err)
		}
		for _, relation := range entityRelations {
			key := relation.Source + "|" + relation.Type + "|" + relation.Target
			if seen[key] {
				continue
			}
			seen[key] = true
			relations = append(relations, relation)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	if err := Render(file, title, entities, relations); err != nil {
		return err
	}
	return file.Close()
}

// nodeValue scales node size with importance, dampened so hubs do not
// dwarf the rest of the graph.
func nodeValue(score float64) float64 {
	if score <= 0 {
		return 1
	}
	return math.Sqrt(score)
}

func edgeWidth(evidence int) float64 {
	width := 1 + float64(evidence)/2
	if width > 8 {
		width = 8
	}
	return width
}
