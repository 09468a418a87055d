package server

import (
	"github.com/OFFIS-RIT/migrascope/internal/server/middleware"
	"github.com/OFFIS-RIT/migrascope/internal/server/routes"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	apiRoutes.GET("/report/schema", routes.GetReportSchemaHandler)

	// Assessment routes
	apiRoutes.GET("/assessments/:id/report", routes.GetReportHandler)
	apiRoutes.POST("/assessments/:id/report", routes.EnqueueReportHandler)
	apiRoutes.GET("/assessments/:id/report/latest", routes.GetLatestReportHandler)
	apiRoutes.GET("/assessments/:id/hierarchy", routes.GetHierarchyHandler)
}
