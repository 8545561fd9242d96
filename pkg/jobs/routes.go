package jobs

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		jobService: NewService(db),
	}

	e.GET("/jobs", h.list)
	e.GET("/jobs/:id", h.retrieve)
}
