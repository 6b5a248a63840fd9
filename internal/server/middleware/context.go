package middleware

import (
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"

	"github.com/bioastra/spacekg/pkg/query"
	"github.com/bioastra/spacekg/pkg/sqlstore"
	"github.com/bioastra/spacekg/pkg/store"
)

// App carries the shared backends every route handler needs.
type App struct {
	Graph  store.GraphStorage
	SQL    *sqlstore.Store
	Router *query.Router
	S3     *s3.Client
}

// AppContext wraps the echo context with the application backends.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware attaches the App to every request context.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{Context: c, App: app})
		}
	}
}
