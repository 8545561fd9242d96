package filesystem

import (
	"github.com/labstack/echo/v4"

	"github.com/shelforg/shelforg/pkg/config"
)

func RegisterRoutes(e *echo.Echo, cfg *config.OrganizerConfig) {
	h := &handler{
		filesystemService: NewService(cfg),
	}

	e.GET("/filesystem/browse", h.browse)
}
