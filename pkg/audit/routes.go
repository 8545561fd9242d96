package audit

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		auditService: NewService(db),
	}

	e.GET("/audit-logs", h.list)
}
