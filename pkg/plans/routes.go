package plans

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/shelforg/shelforg/pkg/config"
	"github.com/shelforg/shelforg/pkg/jobs"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, cfg *config.OrganizerConfig) {
	h := &handler{
		planService: NewService(db),
		jobService:  jobs.NewService(db),
		planner:     NewPlanner(db, cfg),
		rollbacker:  NewRollbacker(db),
	}

	e.POST("/plans", h.create)
	e.GET("/plans", h.list)
	e.GET("/plans/:id", h.retrieve)
	e.POST("/plans/:id/apply", h.apply)
	e.POST("/plans/:id/rollback", h.rollback)
	e.DELETE("/plans/:id", h.delete)
}
