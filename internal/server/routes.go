package server

import (
	"github.com/labstack/echo/v4"

	"github.com/bioastra/spacekg/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Graph routes
	apiRoutes.GET("/graph/stats", routes.GetGraphStatsHandler)
	apiRoutes.GET("/graph/page", routes.GetGraphPageHandler)

	// Entity routes
	apiRoutes.GET("/entities", routes.GetEntitiesHandler)
	apiRoutes.GET("/entities/by-name/:name", routes.GetEntityByNameHandler)
	apiRoutes.GET("/entities/:id/papers", routes.GetEntityPapersHandler)
	apiRoutes.GET("/entities/:id/relations", routes.GetEntityRelationsHandler)

	// Paper catalog routes
	apiRoutes.GET("/papers", routes.GetPapersHandler)
	apiRoutes.GET("/papers/:id", routes.GetPaperHandler)
	apiRoutes.GET("/clusters", routes.GetClustersHandler)
	apiRoutes.GET("/clusters/:id/papers", routes.GetClusterPapersHandler)

	// Query routes
	apiRoutes.POST("/query", routes.PostQueryHandler)
}
