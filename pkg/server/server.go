package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"

	"github.com/shelforg/shelforg/pkg/audit"
	"github.com/shelforg/shelforg/pkg/binder"
	"github.com/shelforg/shelforg/pkg/config"
	"github.com/shelforg/shelforg/pkg/errcodes"
	"github.com/shelforg/shelforg/pkg/filesystem"
	"github.com/shelforg/shelforg/pkg/jobs"
	"github.com/shelforg/shelforg/pkg/mediafiles"
	"github.com/shelforg/shelforg/pkg/plans"
	"github.com/shelforg/shelforg/pkg/scanner"
	"github.com/shelforg/shelforg/pkg/scans"
	"github.com/shelforg/shelforg/pkg/settings"
)

func New(cfg *config.Config, db *bun.DB, registry *scanner.Registry) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	scans.RegisterRoutes(e, db, registry)
	jobs.RegisterRoutes(e, db)
	mediafiles.RegisterRoutes(e, db)
	plans.RegisterRoutes(e, db, cfg.Organizer)
	settings.RegisterRoutes(e, db)
	audit.RegisterRoutes(e, db)
	filesystem.RegisterRoutes(e, cfg.Organizer)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
