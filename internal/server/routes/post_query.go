package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bioastra/spacekg/internal/server/middleware"
)

func PostQueryHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	type queryRequest struct {
		Question string `json:"question" validate:"required,min=3"`
	}

	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := app.Router.Execute(c.Request().Context(), req.Question)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
