package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bioastra/spacekg/internal/server/middleware"
	"github.com/bioastra/spacekg/pkg/sqlstore"
)

func GetPapersHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	if app.SQL == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "relational store not configured"})
	}
	ctx := c.Request().Context()

	limit, offset := 0, 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = parsed
	}
	if raw := c.QueryParam("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid offset"})
		}
		offset = parsed
	}

	if keyword := c.QueryParam("keyword"); keyword != "" {
		papers, err := app.SQL.SearchByKeyword(ctx, keyword)
		if err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, papers)
	}
	if raw := c.QueryParam("since"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid year"})
		}
		papers, err := app.SQL.PapersAfterYear(ctx, year)
		if err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, papers)
	}

	papers, err := app.SQL.ListPapers(ctx, limit, offset)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, papers)
}

func GetPaperHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	if app.SQL == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "relational store not configured"})
	}

	details, err := app.SQL.PaperDetails(c.Request().Context(), c.Param("id"))
	if errors.Is(err, sqlstore.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "paper not found"})
	}
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, details)
}

func GetClustersHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	if app.SQL == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "relational store not configured"})
	}

	clusters, err := app.SQL.Clusters(c.Request().Context())
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, clusters)
}

func GetClusterPapersHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	if app.SQL == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "relational store not configured"})
	}

	clusterID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid cluster id"})
	}

	papers, err := app.SQL.PapersInCluster(c.Request().Context(), clusterID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, papers)
}
