// Package filter scores entities by their structural importance in
// the extracted graph and prunes the long tail.
package filter

import (
	"math"
	"sort"

	"github.com/bioastra/spacekg/pkg/common"
	"github.com/bioastra/spacekg/pkg/logger"
)

// Scoring weights and the retention threshold.
const (
	PaperWeight     = 1.0
	RelationWeight  = 2.0
	DiversityWeight = 1.5

	ScoreThreshold = 20.0
)

// CalculateScores computes the importance score of every entity:
//
//	score = papers*1.0 + relations*2.0 + diversity*1.5
//
// where diversity is the number of distinct relation types the entity
// participates in, on either end.
func CalculateScores(entities []common.Entity, relations []common.Relation) map[string]common.EntityScore {
	relationCounts := make(map[string]int)
	relationTypes := make(map[string]map[string]bool)
	for _, relation := range relations {
		for _, entityID := range []string{relation.Source, relation.Target} {
			relationCounts[entityID]++
			if relationTypes[entityID] == nil {
				relationTypes[entityID] = make(map[string]bool)
			}
			relationTypes[entityID][relation.Type] = true
		}
	}

	scores := make(map[string]common.EntityScore, len(entities))
	for _, entity := range entities {
		paperCount := len(entity.Papers)
		relationCount := relationCounts[entity.ID]
		diversity := len(relationTypes[entity.ID])

		score := float64(paperCount)*PaperWeight +
			float64(relationCount)*RelationWeight +
			float64(diversity)*DiversityWeight
		score = math.Round(score*100) / 100

		scores[entity.ID] = common.EntityScore{
			Score:           score,
			PaperCount:      paperCount,
			RelationCount:   relationCount,
			Diversity:       diversity,
			PassesThreshold: score >= ScoreThreshold,
		}
	}
	return scores
}

// FilterEntities keeps the entities whose score meets the threshold,
// with score and relation count filled in, ordered by score descending.
func FilterEntities(entities []common.Entity, scores map[string]common.EntityScore) []common.Entity {
	kept := make([]common.Entity, 0, len(entities))
	for _, entity := range entities {
		score, ok := scores[entity.ID]
		if !ok || !score.PassesThreshold {
			continue
		}
		entity.ImportanceScore = score.Score
		entity.RelationCount = score.RelationCount
		kept = append(kept, entity)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].ImportanceScore > kept[j].ImportanceScore
	})
	return kept
}

// FilterRelations keeps the relations whose endpoints both survived
// entity filtering.
func FilterRelations(relations []common.Relation, kept []common.Entity) []common.Relation {
	surviving := make(map[string]bool, len(kept))
	for _, entity := range kept {
		surviving[entity.ID] = true
	}

	filtered := make([]common.Relation, 0, len(relations))
	for _, relation := range relations {
		if surviving[relation.Source] && surviving[relation.Target] {
			filtered = append(filtered, relation)
		}
	}
	return filtered
}

// Report summarizes a filtering run.
type Report struct {
	Original struct {
		Entities  int `json:"entities"`
		Relations int `json:"relations"`
	} `json:"original"`
	Filtered struct {
		Entities  int `json:"entities"`
		Relations int `json:"relations"`
	} `json:"filtered"`
	EntityReduction    float64     `json:"entity_reduction_pct"`
	RelationReduction  float64     `json:"relation_reduction_pct"`
	GraphDensity       float64     `json:"graph_density"`
	AvgRelationsEntity float64     `json:"avg_relations_per_entity"`
	TopEntities        []TopEntity `json:"top_entities"`
}

// TopEntity is one row of the report's ranking.
type TopEntity struct {
	ID    string  `json:"entity_id"`
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Score float64 `json:"importance_score"`
}

// BuildReport compares the graph before and after filtering. The top
// ranking covers at most the twenty highest-scoring kept entities.
func BuildReport(entities []common.Entity, relations []common.Relation, kept []common.Entity, keptRelations []common.Relation) Report {
	var report Report
	report.Original.Entities = len(entities)
	report.Original.Relations = len(relations)
	report.Filtered.Entities = len(kept)
	report.Filtered.Relations = len(keptRelations)
	report.EntityReduction = reductionPct(len(entities), len(kept))
	report.RelationReduction = reductionPct(len(relations), len(keptRelations))

	if n := len(kept); n > 1 {
		// Density of a directed graph without self loops.
		density := float64(len(keptRelations)) / float64(n*(n-1))
		report.GraphDensity = math.Round(density*10000) / 10000
	}
	if len(kept) > 0 {
		// Each relation touches two entities.
		avg := float64(len(keptRelations)*2) / float64(len(kept))
		report.AvgRelationsEntity = math.Round(avg*100) / 100
	}

	limit := 20
	if len(kept) < limit {
		limit = len(kept)
	}
	report.TopEntities = make([]TopEntity, 0, limit)
	for _, entity := range kept[:limit] {
		report.TopEntities = append(report.TopEntities, TopEntity{
			ID:    entity.ID,
			Name:  entity.Name,
			Type:  entity.Type,
			Score: entity.ImportanceScore,
		})
	}
	return report
}

func reductionPct(before, after int) float64 {
	if before == 0 {
		return 0
	}
	pct := float64(before-after) / float64(before) * 100
	return math.Round(pct*100) / 100
}

// Run applies the full filtering stage and logs the outcome.
func Run(entities []common.Entity, relations []common.Relation) ([]common.Entity, []common.Relation, Report) {
	scores := CalculateScores(entities, relations)
	kept := FilterEntities(entities, scores)
	keptRelations := FilterRelations(relations, kept)
	report := BuildReport(entities, relations, kept, keptRelations)

	logger.Info("importance filtering finished",
		"entities_before", len(entities),
		"entities_after", len(kept),
		"relations_before", len(relations),
		"relations_after", len(keptRelations),
	)
	return kept, keptRelations, report
}
