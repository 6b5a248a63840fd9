// Package query routes natural-language questions to the relational
// store, the graph store, or both.
package query

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/bioastra/spacekg/pkg/common"
	"github.com/bioastra/spacekg/pkg/sqlstore"
	"github.com/bioastra/spacekg/pkg/store"
)

// Kind is the execution target of a classified question.
type Kind string

const (
	KindSQL    Kind = "sql"
	KindGraph  Kind = "graph"
	KindHybrid Kind = "hybrid"
)

// graphSignals hint at questions about entities and their connections.
var graphSignals = []string{
	"related", "relation", "relationship", "connect", "connected",
	"interact", "affect", "cause", "induce", "inhibit", "regulate",
	"increase", "decrease", "associated", "entity", "entities",
	"pathway", "mechanism", "express",
}

// sqlSignals hint at questions about the paper catalog itself.
var sqlSignals = []string{
	"year", "published", "publication", "author", "journal",
	"cluster", "keyword", "summary", "summaries", "how many papers",
	"list papers", "recent", "since", "between", "count",
}

// Classify decides which store a question should run against.
// Questions carrying both kinds of signal become hybrid; questions
// carrying neither default to the catalog.
func Classify(question string) Kind {
	lower := strings.ToLower(question)

	graph := containsAny(lower, graphSignals)
	relational := containsAny(lower, sqlSignals)

	switch {
	case graph && relational:
		return KindHybrid
	case graph:
		return KindGraph
	default:
		return KindSQL
	}
}

func containsAny(text string, signals []string) bool {
	for _, signal := range signals {
		if strings.Contains(text, signal) {
			return true
		}
	}
	return false
}

// Result is the answer material a routed question produced.
type Result struct {
	Kind      Kind              `json:"kind"`
	Entities  []common.Entity   `json:"entities,omitempty"`
	Relations []common.Relation `json:"relations,omitempty"`
	Papers    []common.Paper    `json:"papers,omitempty"`
	PaperIDs  []string          `json:"paper_ids,omitempty"`
}

// Router executes classified questions.
type Router struct {
	graph store.GraphStorage
	sql   *sqlstore.Store
}

type NewRouterParams struct {
	Graph store.GraphStorage
	SQL   *sqlstore.Store
}

func NewRouter(params NewRouterParams) *Router {
	return &Router{graph: params.Graph, sql: params.SQL}
}

// Execute classifies the question and runs it against the matching
// stores. Hybrid questions intersect the papers both sides produce.
func (r *Router) Execute(ctx context.Context, question string) (Result, error) {
	kind := Classify(question)
	result := Result{Kind: kind}

	var graphPapers, sqlPapers []string
	if kind == KindGraph || kind == KindHybrid {
		entities, relations, papers, err := r.runGraph(ctx, question)
		if err != nil {
			return Result{}, err
		}
		result.Entities = entities
		result.Relations = relations
		graphPapers = papers
	}
	if kind == KindSQL || kind == KindHybrid {
		papers, err := r.runSQL(ctx, question)
		if err != nil {
			return Result{}, err
		}
		result.Papers = papers
		for _, paper := range papers {
			sqlPapers = append(sqlPapers, paper.ID)
		}
	}

	switch kind {
	case KindGraph:
		result.PaperIDs = graphPapers
	case KindSQL:
		result.PaperIDs = sqlPapers
	case KindHybrid:
		result.PaperIDs = intersect(graphPapers, sqlPapers)
	}
	return result, nil
}

// runGraph resolves catalog entities mentioned in the question and
// collects their relations and supporting papers.
func (r *Router) runGraph(ctx context.Context, question string) ([]common.Entity, []common.Relation, []string, error) {
	terms := candidateTerms(question)

	var entities []common.Entity
	var relations []common.Relation
	paperSet := make(map[string]bool)
	seen := make(map[string]bool)

	for _, term := range terms {
		entity, err := r.graph.EntityByName(ctx, term)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, nil, err
		}
		if seen[entity.ID] {
			continue
		}
		seen[entity.ID] = true
		entities = append(entities, entity)
		for _, paper := range entity.Papers {
			paperSet[paper] = true
		}

		entityRelations, err := r.graph.EntityRelations(ctx, entity.ID, "")
		if err != nil {
			return nil, nil, nil, err
		}
		relations = append(relations, entityRelations...)
	}

	papers := make([]string, 0, len(paperSet))
	for paper := range paperSet {
		papers = append(papers, paper)
	}
	sort.Strings(papers)
	return entities, relations, papers, nil
}

// runSQL answers catalog questions. A "cluster N" phrase returns that
// cluster's papers; a year restricts by publication year; otherwise
// significant words are tried as keywords.
func (r *Router) runSQL(ctx context.Context, question string) ([]common.Paper, error) {
	if r.sql == nil {
		return nil, nil
	}
	if clusterID, ok := findCluster(question); ok {
		return r.sql.PapersInCluster(ctx, clusterID)
	}
	if year, ok := findYear(question); ok {
		return r.sql.PapersAfterYear(ctx, year)
	}

	seen := make(map[string]bool)
	var papers []common.Paper
	for _, term := range candidateTerms(question) {
		matches, err := r.sql.SearchByKeyword(ctx, term)
		if err != nil {
			return nil, err
		}
		for _, paper := range matches {
			if seen[paper.ID] {
				continue
			}
			seen[paper.ID] = true
			papers = append(papers, paper)
		}
	}
	if papers == nil {
		return r.sql.ListPapers(ctx, 0, 0)
	}
	return papers, nil
}

var clusterPattern = regexp.MustCompile(`(?i)\bcluster\s+(\d+)\b`)

func findCluster(question string) (int, bool) {
	match := clusterPattern.FindStringSubmatch(question)
	if match == nil {
		return 0, false
	}
	id := 0
	for _, c := range match[1] {
		id = id*10 + int(c-'0')
	}
	return id, true
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

func findYear(question string) (int, bool) {
	match := yearPattern.FindString(question)
	if match == "" {
		return 0, false
	}
	year := 0
	for _, c := range match {
		year = year*10 + int(c-'0')
	}
	return year, true
}

// stopwords are skipped when deriving candidate lookup terms.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true,
	"on": true, "to": true, "and": true, "or": true, "is": true,
	"are": true, "was": true, "were": true, "what": true, "which": true,
	"how": true, "does": true, "do": true, "with": true, "by": true,
	"for": true, "about": true, "papers": true, "paper": true,
	"show": true, "find": true, "list": true, "me": true, "all": true,
}

var wordPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9-]+`)

// candidateTerms derives lookup terms from a question: single words
// plus adjacent word bigrams, stopwords removed.
func candidateTerms(question string) []string {
	words := wordPattern.FindAllString(strings.ToLower(question), -1)

	var kept []string
	for _, word := range words {
		if !stopwords[word] {
			kept = append(kept, word)
		}
	}

	terms := make([]string, 0, len(kept)*2)
	for i := 0; i < len(kept)-1; i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	terms = append(terms, kept...)
	return terms
}

func intersect(a, b []string) []string {
	inA := make(map[string]bool, len(a))
	for _, item := range a {
		inA[item] = true
	}
	var both []string
	for _, item := range b {
		if inA[item] {
			both = append(both, item)
			inA[item] = false
		}
	}
	sort.Strings(both)
	return both
}
