// Package analyze computes descriptive statistics over the filtered
// knowledge graph.
package analyze

import (
	"sort"

	"github.com/bioastra/spacekg/pkg/common"
)

// Degree holds the connectivity of one entity.
type Degree struct {
	EntityID string `json:"entity_id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	In       int    `json:"in_degree"`
	Out      int    `json:"out_degree"`
	Total    int    `json:"degree"`
}

// Summary is the full analysis of a graph.
type Summary struct {
	Entities      int             `json:"entities"`
	Relations     int             `json:"relations"`
	EntityTypes   map[string]int  `json:"entity_types"`
	RelationTypes map[string]int  `json:"relation_types"`
	TopByDegree   []Degree        `json:"top_by_degree"`
	TopByScore    []common.Entity `json:"top_by_score"`
	IsolatedCount int             `json:"isolated_entities"`
	AvgDegree     float64         `json:"avg_degree"`
	MaxEvidence   int             `json:"max_evidence"`
	TotalEvidence int             `json:"total_evidence"`
}

// topN bounds the ranking lists.
const topN = 10

// Analyze computes degree metrics and distributions for the graph.
func Analyze(entities []common.Entity, relations []common.Relation) Summary {
	summary := Summary{
		Entities:      len(entities),
		Relations:     len(relations),
		EntityTypes:   make(map[string]int),
		RelationTypes: make(map[string]int),
	}

	degrees := make(map[string]*Degree, len(entities))
	for _, entity := range entities {
		summary.EntityTypes[entity.Type]++
		degrees[entity.ID] = &Degree{
			EntityID: entity.ID,
			Name:     entity.Name,
			Type:     entity.Type,
		}
	}

	for _, relation := range relations {
		summary.RelationTypes[relation.Type]++
		summary.TotalEvidence += relation.EvidenceCount
		if relation.EvidenceCount > summary.MaxEvidence {
			summary.MaxEvidence = relation.EvidenceCount
		}
		if d, ok := degrees[relation.Source]; ok {
			d.Out++
			d.Total++
		}
		if d, ok := degrees[relation.Target]; ok {
			d.In++
			d.Total++
		}
	}

	ranked := make([]Degree, 0, len(degrees))
	totalDegree := 0
	for _, degree := range degrees {
		if degree.Total == 0 {
			summary.IsolatedCount++
		}
		totalDegree += degree.Total
		ranked = append(ranked, *degree)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		return ranked[i].EntityID < ranked[j].EntityID
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	summary.TopByDegree = ranked

	if len(entities) > 0 {
		summary.AvgDegree = float64(totalDegree) / float64(len(entities))
	}

	byScore := make([]common.Entity, len(entities))
	copy(byScore, entities)
	sort.SliceStable(byScore, func(i, j int) bool {
		return byScore[i].ImportanceScore > byScore[j].ImportanceScore
	})
	if len(byScore) > topN {
		byScore = byScore[:topN]
	}
	summary.TopByScore = byScore

	return summary
}
