// Package pipeline orchestrates the knowledge graph construction
// stages. Each stage reads the artifacts of the previous one from the
// output directory and writes its own, so stages can be re-run
// independently.
package pipeline

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/bioastra/spacekg/pkg/analyze"
	"github.com/bioastra/spacekg/pkg/common"
	"github.com/bioastra/spacekg/pkg/corpus"
	"github.com/bioastra/spacekg/pkg/extract"
	"github.com/bioastra/spacekg/pkg/filter"
	"github.com/bioastra/spacekg/pkg/logger"
	"github.com/bioastra/spacekg/pkg/ner"
	"github.com/bioastra/spacekg/pkg/relations"
	"github.com/bioastra/spacekg/pkg/sqlstore"
	"github.com/bioastra/spacekg/pkg/store"
	"github.com/bioastra/spacekg/pkg/viz"
)

// Pipeline wires the stages to their inputs and stores.
type Pipeline struct {
	corpusPath string
	outputDir  string
	recognizer ner.Recognizer
	graph      store.GraphStorage
	sql        *sqlstore.Store
	loader     *corpus.Loader
}

type NewPipelineParams struct {
	CorpusPath string
	OutputDir  string
	Recognizer ner.Recognizer
	Graph      store.GraphStorage
	SQL        *sqlstore.Store
}

func NewPipeline(params NewPipelineParams) *Pipeline {
	return &Pipeline{
		corpusPath: params.CorpusPath,
		outputDir:  params.OutputDir,
		recognizer: params.Recognizer,
		graph:      params.Graph,
		sql:        params.SQL,
		loader:     corpus.NewLoader(),
	}
}

func (p *Pipeline) papers(ctx context.Context) ([]common.Paper, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.loader.Load(p.corpusPath)
}

// ExtractEntities runs entity recognition over the corpus and writes
// the entity catalog artifacts.
func (p *Pipeline) ExtractEntities(ctx context.Context) error {
	papers, err := p.papers(ctx)
	if err != nil {
		return err
	}

	extractor := extract.NewExtractor(extract.NewExtractorParams{Recognizer: p.recognizer})
	result, err := extractor.Run(ctx, papers)
	if err != nil {
		return err
	}

	if err := writeJSON(p.artifactPath(EntitiesFile), result.Entities); err != nil {
		return err
	}
	if err := writeJSON(p.artifactPath(PaperEntitiesFile), result.PaperEntities); err != nil {
		return err
	}
	var mentions []common.Mention
	for _, paper := range papers {
		mentions = append(mentions, result.RawMentions[paper.ID]...)
	}
	if err := writeJSONL(p.artifactPath(RawMentionsFile), mentions); err != nil {
		return err
	}

	logger.Info("entity extraction stage finished",
		"papers", len(papers), "entities", len(result.Entities))
	return nil
}

// ExtractRelations reads the entity catalog and extracts aggregated
// relations from the corpus.
func (p *Pipeline) ExtractRelations(ctx context.Context) error {
	papers, err := p.papers(ctx)
	if err != nil {
		return err
	}
	var entities []common.Entity
	if err := readJSON(p.artifactPath(EntitiesFile), &entities); err != nil {
		return err
	}

	extractor := relations.NewExtractor(relations.NewExtractorParams{Entities: entities})
	aggregated, mentions, err := extractor.Run(ctx, papers)
	if err != nil {
		return err
	}

	if err := writeJSON(p.artifactPath(RelationsFile), aggregated); err != nil {
		return err
	}
	if err := writeJSONL(p.artifactPath(RawRelationsFile), mentions); err != nil {
		return err
	}

	logger.Info("relation extraction stage finished",
		"relations", len(aggregated), "mentions", len(mentions))
	return nil
}

// Filter applies importance filtering and writes the filtered catalog
// and the report.
func (p *Pipeline) Filter(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var entities []common.Entity
	if err := readJSON(p.artifactPath(EntitiesFile), &entities); err != nil {
		return err
	}
	var rels []common.Relation
	if err := readJSON(p.artifactPath(RelationsFile), &rels); err != nil {
		return err
	}

	kept, keptRelations, report := filter.Run(entities, rels)

	if err := writeJSON(p.artifactPath(FilteredEntitiesFile), kept); err != nil {
		return err
	}
	if err := writeJSON(p.artifactPath(FilteredRelationsFile), keptRelations); err != nil {
		return err
	}
	if err := writeJSON(p.artifactPath(FilterReportFile), report); err != nil {
		return err
	}

	summary := analyze.Analyze(kept, keptRelations)
	return writeJSON(p.artifactPath(AnalysisFile), summary)
}

// LoadGraph clears the graph store and loads the filtered catalog,
// then verifies the stored counts match the artifacts.
func (p *Pipeline) LoadGraph(ctx context.Context) error {
	var entities []common.Entity
	if err := readJSON(p.artifactPath(FilteredEntitiesFile), &entities); err != nil {
		return err
	}
	var rels []common.Relation
	if err := readJSON(p.artifactPath(FilteredRelationsFile), &rels); err != nil {
		return err
	}

	if err := p.graph.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := p.graph.Clear(ctx); err != nil {
		return err
	}
	if err := p.graph.SaveEntities(ctx, entities); err != nil {
		return err
	}
	if err := p.graph.SaveRelations(ctx, rels); err != nil {
		return err
	}

	stats, err := p.graph.Stats(ctx)
	if err != nil {
		return err
	}
	if stats.Entities != len(entities) {
		return fmt.Errorf("graph verification failed: %d entities stored, %d expected",
			stats.Entities, len(entities))
	}
	if stats.Relations != len(rels) {
		return fmt.Errorf("graph verification failed: %d relations stored, %d expected",
			stats.Relations, len(rels))
	}
	logger.Info("graph load verified", "entities", stats.Entities, "relations", stats.Relations)
	return nil
}

// LoadSQL imports the corpus into the relational store.
func (p *Pipeline) LoadSQL(ctx context.Context) error {
	if p.sql == nil {
		logger.Warn("relational store not configured, skipping import")
		return nil
	}
	papers, err := p.papers(ctx)
	if err != nil {
		return err
	}
	return p.sql.ImportPapers(ctx, papers)
}

// Visualize renders the interactive graph page from the graph store.
func (p *Pipeline) Visualize(ctx context.Context) error {
	path := p.artifactPath(GraphPageFile)
	if err := viz.RenderFile(ctx, p.graph, path, "Space Biology Knowledge Graph"); err != nil {
		return err
	}
	logger.Info("visualization rendered", "path", path)
	return nil
}

// Stage names accepted by Run.
const (
	StageEntities  = "extract-entities"
	StageRelations = "extract-relations"
	StageFilter    = "filter"
	StageLoad      = "load-graph"
	StageSQL       = "load-sql"
	StageVisualize = "visualize"
	StageAll       = "all"
)

// Run executes one named stage, or every stage in order for "all".
// Every run gets a short id so log lines of concurrent runs can be
// told apart.
func (p *Pipeline) Run(ctx context.Context, stage string) error {
	runID, err := gonanoid.New(8)
	if err != nil {
		return fmt.Errorf("generating run id: %w", err)
	}
	logger.Info("pipeline run starting", "run", runID, "stage", stage)

	stages := map[string]func(context.Context) error{
		StageEntities:  p.ExtractEntities,
		StageRelations: p.ExtractRelations,
		StageFilter:    p.Filter,
		StageLoad:      p.LoadGraph,
		StageSQL:       p.LoadSQL,
		StageVisualize: p.Visualize,
	}

	if stage == StageAll {
		for _, name := range []string{StageEntities, StageRelations, StageFilter, StageLoad, StageSQL, StageVisualize} {
			logger.Info("running stage", "run", runID, "stage", name)
			if err := stages[name](ctx); err != nil {
				return fmt.Errorf("stage %s: %w", name, err)
			}
		}
		return nil
	}

	run, ok := stages[stage]
	if !ok {
		return fmt.Errorf("unknown stage %q", stage)
	}
	return run(ctx)
}
