package mediafiles

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		mediaFileService: NewService(db),
	}

	e.GET("/media-files", h.list)
	e.GET("/media-files/:id", h.retrieve)
	e.POST("/media-files/:id", h.update)

	e.GET("/audiobook-groups", h.listGroups)
	e.GET("/audiobook-groups/:id", h.retrieveGroup)
	e.POST("/audiobook-groups/:id", h.updateGroup)
}
