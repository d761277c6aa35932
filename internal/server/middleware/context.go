package middleware

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/uet-rag/prospectus/pkg/ai"
	"github.com/uet-rag/prospectus/pkg/query"
	"github.com/uet-rag/prospectus/pkg/store"
)

// App bundles the long-lived application components. All of them are built
// once at startup and shared across requests.
type App struct {
	DBConn   *pgxpool.Pool
	AiClient ai.Client
	Store    store.GraphStore
	Engine   *query.Engine
	Version  string
}

type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware wraps every request context with the shared App so
// handlers can reach the query engine and storage.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
