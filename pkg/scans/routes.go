package scans

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/shelforg/shelforg/pkg/jobs"
	"github.com/shelforg/shelforg/pkg/scanner"
	"github.com/shelforg/shelforg/pkg/settings"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, registry *scanner.Registry) {
	h := &handler{
		scanService:     NewService(db),
		jobService:      jobs.NewService(db),
		settingsService: settings.NewService(db),
		registry:        registry,
	}

	e.POST("/scans", h.create)
	e.GET("/scans", h.list)
	e.GET("/scans/:id", h.retrieve)
}
