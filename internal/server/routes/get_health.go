package routes

import (
	"net/http"

	"github.com/uet-rag/prospectus/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports service health and version.
func HealthHandler(c echo.Context) error {
	type healthResponse struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}

	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Version: app.Version,
	})
}
