// Package extract builds the deduplicated entity catalog from raw
// per-paper mentions.
package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/bioastra/spacekg/pkg/common"
	"github.com/bioastra/spacekg/pkg/logger"
	"github.com/bioastra/spacekg/pkg/ner"
)

// similarityThreshold is the percentage above which two normalized
// names of the same type are merged into one entity.
const similarityThreshold = 85

// Result holds the outcome of an extraction run.
type Result struct {
	Entities      []common.Entity             `json:"entities"`
	PaperEntities map[string][]string         `json:"paper_entities"`
	RawMentions   map[string][]common.Mention `json:"-"`
}

// Extractor runs a recognizer over every paper and merges the mentions
// into a canonical entity catalog.
type Extractor struct {
	recognizer ner.Recognizer
}

type NewExtractorParams struct {
	Recognizer ner.Recognizer
}

func NewExtractor(params NewExtractorParams) *Extractor {
	return &Extractor{recognizer: params.Recognizer}
}

// Run recognizes mentions in every paper and returns the merged
// catalog. Entity ids are assigned sequentially in the order entities
// are first seen across the papers.
func (e *Extractor) Run(ctx context.Context, papers []common.Paper) (*Result, error) {
	result := &Result{
		PaperEntities: make(map[string][]string, len(papers)),
		RawMentions:   make(map[string][]common.Mention, len(papers)),
	}

	var entities []*common.Entity
	index := make(map[string]*common.Entity)

	for i, paper := range papers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mentions, err := e.recognizer.Recognize(ctx, paper.ID, paper.Text())
		if err != nil {
			return nil, fmt.Errorf("recognize paper %s: %w", paper.ID, err)
		}
		result.RawMentions[paper.ID] = mentions

		seenInPaper := make(map[string]bool)
		for _, mention := range mentions {
			entity := resolveEntity(index, &entities, mention)
			if !seenInPaper[entity.ID] {
				seenInPaper[entity.ID] = true
				entity.Papers = append(entity.Papers, paper.ID)
				result.PaperEntities[paper.ID] = append(result.PaperEntities[paper.ID], entity.ID)
			}
		}

		if (i+1)%20 == 0 || i+1 == len(papers) {
			logger.Info("entity extraction progress", "papers", i+1, "entities", len(entities))
		}
	}

	result.Entities = make([]common.Entity, len(entities))
	for i, entity := range entities {
		sort.Strings(entity.Synonyms)
		result.Entities[i] = *entity
	}
	return result, nil
}

// resolveEntity returns the catalog entity for a mention, creating it
// when neither an exact nor a fuzzy match exists. Fuzzy matching only
// considers entities of the same type.
func resolveEntity(index map[string]*common.Entity, entities *[]*common.Entity, mention common.Mention) *common.Entity {
	key := mention.NormalizedName + "|" + mention.Type
	if entity, ok := index[key]; ok {
		addSynonym(entity, mention.SurfaceForm)
		return entity
	}

	for _, entity := range *entities {
		if entity.Type != mention.Type {
			continue
		}
		if similarity(entity.Name, mention.NormalizedName) > similarityThreshold {
			addSynonym(entity, mention.NormalizedName)
			addSynonym(entity, mention.SurfaceForm)
			index[key] = entity
			return entity
		}
	}

	entity := &common.Entity{
		ID:   fmt.Sprintf("E%05d", len(*entities)+1),
		Name: mention.NormalizedName,
		Type: mention.Type,
	}
	addSynonym(entity, mention.SurfaceForm)
	*entities = append(*entities, entity)
	index[key] = entity
	return entity
}

func addSynonym(entity *common.Entity, surface string) {
	surface = strings.TrimSpace(surface)
	if surface == "" || strings.EqualFold(surface, entity.Name) {
		return
	}
	for _, existing := range entity.Synonyms {
		if strings.EqualFold(existing, surface) {
			return
		}
	}
	entity.Synonyms = append(entity.Synonyms, surface)
}

// similarity is the Levenshtein ratio between two names in percent.
func similarity(a, b string) int {
	if a == b {
		return 100
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 100
	}
	distance := levenshtein.ComputeDistance(a, b)
	return (longest - distance) * 100 / longest
}
