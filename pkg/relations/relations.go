// Package relations extracts typed relations between catalog entities
// from paper text and aggregates them with their supporting evidence.
package relations

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/bioastra/spacekg/pkg/common"
	"github.com/bioastra/spacekg/pkg/logger"
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+\s+`)

// SplitSentences breaks text into sentences on terminal punctuation
// followed by whitespace.
func SplitSentences(text string) []string {
	parts := sentenceBoundary.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// Extractor finds relation mentions across a corpus and merges them
// into aggregated relations.
type Extractor struct {
	matcher *Matcher
}

type NewExtractorParams struct {
	Entities []common.Entity
}

func NewExtractor(params NewExtractorParams) *Extractor {
	return &Extractor{matcher: NewMatcher(params.Entities)}
}

// ExtractPaper returns the relation mentions found in one paper. Each
// adjacent pair of entity mentions in a sentence is tested against the
// phrase patterns first and the verb lexicon second.
func (e *Extractor) ExtractPaper(paperID string, text string) []common.RelationMention {
	var found []common.RelationMention
	for _, sentence := range SplitSentences(text) {
		matches := e.matcher.Find(sentence)
		if len(matches) < 2 {
			continue
		}
		for i := 0; i < len(matches)-1; i++ {
			source, target := matches[i], matches[i+1]
			if source.EntityID == target.EntityID {
				continue
			}
			between := sentence[source.End:target.Start]

			relation, confidence, swap := classify(between)
			if relation == "" {
				continue
			}
			sourceID, targetID := source.EntityID, target.EntityID
			if swap {
				sourceID, targetID = targetID, sourceID
			}
			found = append(found, common.RelationMention{
				PaperID:    paperID,
				Source:     sourceID,
				Type:       relation,
				Target:     targetID,
				Sentence:   sentence,
				Confidence: confidence,
			})
		}
	}
	return found
}

func classify(between string) (relation string, confidence float64, swap bool) {
	if relation, swap, ok := matchPhrase(between); ok {
		return relation, patternConfidence, swap
	}
	if relation, ok := matchVerb(between); ok {
		return relation, verbConfidence, false
	}
	return "", 0, false
}

// Run extracts relation mentions from every paper and aggregates them.
func (e *Extractor) Run(ctx context.Context, papers []common.Paper) ([]common.Relation, []common.RelationMention, error) {
	var mentions []common.RelationMention
	for i, paper := range papers {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		mentions = append(mentions, e.ExtractPaper(paper.ID, paper.Text())...)
		if (i+1)%20 == 0 || i+1 == len(papers) {
			logger.Info("relation extraction progress", "papers", i+1, "mentions", len(mentions))
		}
	}
	return Aggregate(mentions), mentions, nil
}

// Aggregate merges relation mentions that share source, type and
// target into one relation carrying the supporting papers, the
// evidence count (distinct supporting papers), the mean confidence
// over all mentions, and up to three sample sentences. Relations are
// ordered by evidence count, ids assigned after ordering.
func Aggregate(mentions []common.RelationMention) []common.Relation {
	type bucket struct {
		relation   common.Relation
		papers     map[string]bool
		confidence float64
		mentions   int
	}

	buckets := make(map[string]*bucket)
	var order []string
	for _, mention := range mentions {
		key := mention.Source + "|" + mention.Type + "|" + mention.Target
		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				relation: common.Relation{
					Source: mention.Source,
					Type:   mention.Type,
					Target: mention.Target,
				},
				papers: make(map[string]bool),
			}
			buckets[key] = b
			order = append(order, key)
		}
		b.mentions++
		b.confidence += mention.Confidence
		b.papers[mention.PaperID] = true
		if len(b.relation.SampleSentences) < 3 {
			b.relation.SampleSentences = append(b.relation.SampleSentences, mention.Sentence)
		}
	}

	relations := make([]common.Relation, 0, len(buckets))
	for _, key := range order {
		b := buckets[key]
		for paper := range b.papers {
			b.relation.Papers = append(b.relation.Papers, paper)
		}
		sort.Strings(b.relation.Papers)
		b.relation.EvidenceCount = len(b.relation.Papers)
		mean := b.confidence / float64(b.mentions)
		b.relation.Confidence = math.Round(mean*1000) / 1000
		relations = append(relations, b.relation)
	}

	sort.SliceStable(relations, func(i, j int) bool {
		return relations[i].EvidenceCount > relations[j].EvidenceCount
	})
	for i := range relations {
		relations[i].ID = fmt.Sprintf("R%05d", i+1)
	}
	return relations
}
