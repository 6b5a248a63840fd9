package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bioastra/spacekg/internal/server/middleware"
	"github.com/bioastra/spacekg/pkg/store"
)

func GetEntityRelationsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	entityID := c.Param("id")
	relationType := c.QueryParam("relation")

	relations, err := app.Graph.EntityRelations(ctx, entityID, relationType)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "entity not found"})
	}
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"entity_id": entityID,
		"relations": relations,
	})
}
