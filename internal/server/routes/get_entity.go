package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bioastra/spacekg/internal/server/middleware"
	"github.com/bioastra/spacekg/pkg/store"
)

func GetEntityByNameHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	name := c.Param("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing entity name"})
	}

	entity, err := app.Graph.EntityByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "entity not found"})
	}
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entity)
}
