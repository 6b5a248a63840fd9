package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	mid "github.com/bioastra/spacekg/internal/server/middleware"
	"github.com/bioastra/spacekg/internal/storage"
	"github.com/bioastra/spacekg/internal/util"
	"github.com/bioastra/spacekg/pkg/logger"
	"github.com/bioastra/spacekg/pkg/query"
	"github.com/bioastra/spacekg/pkg/sqlstore"
	"github.com/bioastra/spacekg/pkg/store"
	"github.com/bioastra/spacekg/pkg/store/memory"
	"github.com/bioastra/spacekg/pkg/store/neo4j"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// Init starts the read facade and blocks until interrupted.
func Init() {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	router := query.NewRouter(query.NewRouterParams{Graph: graph, SQL: sqldb})

	s3Client := storage.NewS3Client(ctx)

	app := &mid.App{Graph: graph, SQL: sqldb, Router: router, S3: s3Client}
	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// newGraphStorage connects to Neo4j when NEO4J_URI is set and falls
// back to the in-memory store otherwise.
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
