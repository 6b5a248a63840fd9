package routes

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bioastra/spacekg/internal/server/middleware"
	"github.com/bioastra/spacekg/pkg/common"
	"github.com/bioastra/spacekg/pkg/viz"
)

func GetGraphStatsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	stats, err := app.Graph.Stats(c.Request().Context())
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

// GetGraphPageHandler renders the interactive visualization straight
// from the graph store.
func GetGraphPageHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	entities, err := app.Graph.Entities(ctx, "", 1<<20)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	seen := make(map[string]bool)
	var relations []common.Relation
	for _, entity := range entities {
		entityRelations, err := app.Graph.EntityRelations(ctx, entity.ID, "")
		if err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
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

	var buf bytes.Buffer
	if err := viz.Render(&buf, "Space Biology Knowledge Graph", entities, relations); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.HTML(http.StatusOK, buf.String())
}
