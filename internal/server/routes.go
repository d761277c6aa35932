package server

import (
	"github.com/uet-rag/prospectus/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	apiRoutes := e.Group("/api/v1")

	apiRoutes.GET("/health", routes.HealthHandler)
	apiRoutes.POST("/chat", routes.ChatHandler)
}
