package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bioastra/spacekg/internal/pipeline"
	"github.com/bioastra/spacekg/internal/storage"
	"github.com/bioastra/spacekg/internal/util"
	"github.com/bioastra/spacekg/pkg/ai"
	"github.com/bioastra/spacekg/pkg/ai/ollama"
	"github.com/bioastra/spacekg/pkg/ai/openai"
	"github.com/bioastra/spacekg/pkg/logger"
	"github.com/bioastra/spacekg/pkg/logger/console"
	"github.com/bioastra/spacekg/pkg/ner"
	"github.com/bioastra/spacekg/pkg/sqlstore"
	"github.com/bioastra/spacekg/pkg/store"
	"github.com/bioastra/spacekg/pkg/store/memory"
	"github.com/bioastra/spacekg/pkg/store/neo4j"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	stage := flag.String("stage", pipeline.StageAll, "pipeline stage to run")
	corpusPath := flag.String("corpus", util.GetEnvString("CORPUS_PATH", "data/papers.csv"), "path to the cleaned papers CSV")
	outputDir := flag.String("out", util.GetEnvString("OUTPUT_DIR", "output"), "artifact output directory")
	publish := flag.Bool("publish", false, "publish artifacts to object storage after the run")
	flag.Parse()

	graph, err := newGraphStorage(ctx)
	if err != nil {
		logger.Fatal("Failed to connect to graph store", "err", err)
	}
	defer graph.Close(context.Background())

	var sqldb *sqlstore.Store
	if path := util.GetEnv("SQLITE_PATH"); path != "" {
		sqldb, err = sqlstore.NewStore(path)
		if err != nil {
			logger.Fatal("Failed to open relational store", "err", err)
		}
		defer sqldb.Close()
	}

	p := pipeline.NewPipeline(pipeline.NewPipelineParams{
		CorpusPath: *corpusPath,
		OutputDir:  *outputDir,
		Recognizer: newRecognizer(),
		Graph:      graph,
		SQL:        sqldb,
	})

	if err := p.Run(ctx, *stage); err != nil {
		logger.Fatal("Pipeline failed", "stage", *stage, "err", err)
	}

	if *publish {
		client := storage.NewS3Client(ctx)
		if client == nil {
			logger.Fatal("Failed to create S3 client")
		}
		artifacts := []string{
			pipeline.EntitiesFile, pipeline.PaperEntitiesFile,
			pipeline.RelationsFile,
			pipeline.FilteredEntitiesFile, pipeline.FilteredRelationsFile,
			pipeline.FilterReportFile, pipeline.AnalysisFile,
			pipeline.GraphPageFile,
		}
		paths := make([]string, 0, len(artifacts))
		for _, name := range artifacts {
			paths = append(paths, *outputDir+"/"+name)
		}
		prefix := util.GetEnvString("ARTIFACT_PREFIX", "spacekg")
		if err := storage.PublishArtifacts(ctx, client, prefix, paths); err != nil {
			logger.Fatal("Failed to publish artifacts", "err", err)
		}
	}

	logger.Info("Pipeline finished", "stage", *stage)
}

// newRecognizer builds the entity recognizer. The rule-based
// recognizer always runs; a model-backed one is layered on when an AI
// adapter is configured.
func newRecognizer() ner.Recognizer {
	rules := ner.NewRulesRecognizer()

	adapter := util.GetEnv("AI_ADAPTER")
	var aiClient ai.Client

	switch adapter {
	case "ollama":
		client, err := ollama.NewOllamaClient(ollama.NewOllamaClientParams{
			ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),
			BaseURL:         util.GetEnv("AI_BASE_URL"),
			APIKey:          util.GetEnv("AI_API_KEY"),
		})
		if err != nil {
			logger.Fatal("Failed to create ollama client", "err", err)
		}
		aiClient = client
	case "openai":
		aiClient = openai.NewOpenAIClient(openai.NewOpenAIClientParams{
			ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),
			BaseURL:         util.GetEnv("AI_BASE_URL"),
			APIKey:          util.GetEnv("AI_API_KEY"),
		})
	default:
		return rules
	}

	model := ner.NewModelRecognizer(ner.NewModelRecognizerParams{
		Client:   aiClient,
		MaxTries: util.GetEnvInt("AI_MAX_TRIES", 3),
	})
	return ner.NewCombinedRecognizer(model, rules)
}

func newGraphStorage(ctx context.Context) (store.GraphStorage, error) {
	uri := util.GetEnv("NEO4J_URI")
	if uri == "" {
		logger.Warn("NEO4J_URI not set, using in-memory graph store")
		return memory.NewMemoryStorage(), nil
	}
	return neo4j.NewNeo4jStorage(ctx, neo4j.NewNeo4jStorageParams{
		URI:      uri,
		Username: util.GetEnv("NEO4J_USER"),
		Password: util.GetEnv("NEO4J_PASSWORD"),
		Database: util.GetEnv("NEO4J_DATABASE"),
	})
}
