package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	mid "github.com/bioastra/spacekg/internal/server/middleware"
	"github.com/bioastra/spacekg/pkg/common"
	"github.com/bioastra/spacekg/pkg/query"
	"github.com/bioastra/spacekg/pkg/sqlstore"
	"github.com/bioastra/spacekg/pkg/store/memory"
)

func testServer(t *testing.T) *echo.Echo {
	t.Helper()
	ctx := context.Background()

	graph := memory.NewMemoryStorage()
	entities := []common.Entity{
		{ID: "E00001", Name: "microgravity", Type: "condition", Papers: []string{"P001", "P002"}, ImportanceScore: 40, RelationCount: 1},
		{ID: "E00002", Name: "bone loss", Type: "disease", Papers: []string{"P001"}, ImportanceScore: 25, RelationCount: 1},
	}
	relations := []common.Relation{
		{ID: "R00001", Source: "E00001", Type: "induces", Target: "E00002", EvidenceCount: 3, Confidence: 0.65, Papers: []string{"P001"}},
	}
	if err := graph.SaveEntities(ctx, entities); err != nil {
		t.Fatalf("SaveEntities: %v", err)
	}
	if err := graph.SaveRelations(ctx, relations); err != nil {
		t.Fatalf("SaveRelations: %v", err)
	}

	sqldb, err := sqlstore.NewStore(filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	papers := []common.Paper{
		{ID: "P001", Title: "Bone loss in orbit", Year: 2019, Abstract: "a1"},
		{ID: "P002", Title: "Muscle atrophy after flight", Year: 2021, Abstract: "a2"},
	}
	if err := sqldb.ImportPapers(ctx, papers); err != nil {
		t.Fatalf("ImportPapers: %v", err)
	}
	clusters := []sqlstore.Cluster{
		{ID: 1, Label: "bone", Papers: []string{"P001"}},
	}
	if err := sqldb.ImportClusters(ctx, clusters); err != nil {
		t.Fatalf("ImportClusters: %v", err)
	}

	router := query.NewRouter(query.NewRouterParams{Graph: graph, SQL: sqldb})

	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Use(mid.AppContextMiddleware(&mid.App{Graph: graph, SQL: sqldb, Router: router}))
	RegisterRoutes(e)
	return e
}

func request(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoute(t *testing.T) {
	e := testServer(t)
	rec := request(t, e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestGetEntities(t *testing.T) {
	e := testServer(t)

	rec := request(t, e, http.MethodGet, "/api/entities", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var entities []common.Entity
	if err := json.Unmarshal(rec.Body.Bytes(), &entities); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(entities) != 2 || entities[0].ID != "E00001" {
		t.Fatalf("unexpected entities %+v", entities)
	}

	rec = request(t, e, http.MethodGet, "/api/entities?type=disease", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &entities); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(entities) != 1 || entities[0].ID != "E00002" {
		t.Fatalf("unexpected filtered entities %+v", entities)
	}

	rec = request(t, e, http.MethodGet, "/api/entities?limit=bogus", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestGetEntityByName(t *testing.T) {
	e := testServer(t)

	rec := request(t, e, http.MethodGet, "/api/entities/by-name/microgravity", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var entity common.Entity
	if err := json.Unmarshal(rec.Body.Bytes(), &entity); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if entity.ID != "E00001" {
		t.Fatalf("unexpected entity %+v", entity)
	}

	rec = request(t, e, http.MethodGet, "/api/entities/by-name/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetEntityPapersAndRelations(t *testing.T) {
	e := testServer(t)

	rec := request(t, e, http.MethodGet, "/api/entities/E00001/papers", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var papersBody struct {
		Papers []string `json:"papers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &papersBody); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(papersBody.Papers) != 2 {
		t.Fatalf("unexpected papers %+v", papersBody.Papers)
	}

	rec = request(t, e, http.MethodGet, "/api/entities/E00001/relations", "")
	var relationsBody struct {
		Relations []common.Relation `json:"relations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &relationsBody); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(relationsBody.Relations) != 1 || relationsBody.Relations[0].ID != "R00001" {
		t.Fatalf("unexpected relations %+v", relationsBody.Relations)
	}

	rec = request(t, e, http.MethodGet, "/api/entities/E09999/papers", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetGraphStats(t *testing.T) {
	e := testServer(t)

	rec := request(t, e, http.MethodGet, "/api/graph/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var stats struct {
		Entities  int `json:"entities"`
		Relations int `json:"relations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if stats.Entities != 2 || stats.Relations != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestGetGraphPage(t *testing.T) {
	e := testServer(t)

	rec := request(t, e, http.MethodGet, "/api/graph/page", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "vis.Network") {
		t.Fatalf("expected rendered visualization page")
	}
}

func TestGetPapers(t *testing.T) {
	e := testServer(t)

	rec := request(t, e, http.MethodGet, "/api/papers", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var papers []common.Paper
	if err := json.Unmarshal(rec.Body.Bytes(), &papers); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("unexpected papers %+v", papers)
	}

	rec = request(t, e, http.MethodGet, "/api/papers/P001", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	rec = request(t, e, http.MethodGet, "/api/papers/P999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetClusterPapers(t *testing.T) {
	e := testServer(t)

	rec := request(t, e, http.MethodGet, "/api/clusters/1/papers", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var papers []common.Paper
	if err := json.Unmarshal(rec.Body.Bytes(), &papers); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(papers) != 1 || papers[0].ID != "P001" {
		t.Fatalf("unexpected cluster papers %+v", papers)
	}

	rec = request(t, e, http.MethodGet, "/api/clusters/bogus/papers", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad cluster id, got %d", rec.Code)
	}
}

func TestPostQuery(t *testing.T) {
	e := testServer(t)

	rec := request(t, e, http.MethodPost, "/api/query", `{"question": "What is related to bone loss?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var result query.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if result.Kind != query.KindGraph || len(result.Entities) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	rec = request(t, e, http.MethodPost, "/api/query", `{"question": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty question, got %d", rec.Code)
	}
}
