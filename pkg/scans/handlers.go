package scans

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shelforg/shelforg/pkg/errcodes"
	"github.com/shelforg/shelforg/pkg/jobs"
	"github.com/shelforg/shelforg/pkg/models"
	"github.com/shelforg/shelforg/pkg/scanner"
	"github.com/shelforg/shelforg/pkg/settings"
)

type handler struct {
	scanService     *Service
	jobService      *jobs.Service
	settingsService *settings.Service
	registry        *scanner.Registry
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateScanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	rootPath := ""
	if params.RootPath != nil {
		rootPath = *params.RootPath
	}
	if rootPath == "" {
		stored, err := h.settingsService.Retrieve(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		rootPath = stored.LibraryRoot
	}
	if rootPath == "" {
		return errcodes.ValidationError("root_path is required when no library root is configured")
	}

	hasActive, err := h.jobService.HasActiveJobByType(ctx, models.JobTypeScan)
	if err != nil {
		return errors.WithStack(err)
	}
	if hasActive {
		return errcodes.Conflict("A scan is already running.")
	}

	scan := &models.Scan{
		RootPath: rootPath,
		Status:   models.ScanStatusPending,
	}
	if err := h.scanService.CreateScan(ctx, scan); err != nil {
		return errors.WithStack(err)
	}

	job := &models.Job{
		Type:   models.JobTypeScan,
		Status: models.JobStatusPending,
		DataParsed: &models.JobScanData{
			ScanID:   scan.ID,
			RootPath: rootPath,
		},
	}
	if err := h.jobService.CreateJob(ctx, job); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, scan))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListScansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListScansOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	}
	if params.Status != nil {
		opts.Statuses = []string{*params.Status}
	}

	scans, total, err := h.scanService.ListScansWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, scan := range scans {
		mergeProgress(scan, h.registry)
	}

	resp := struct {
		Scans []*models.Scan `json:"scans"`
		Total int            `json:"total"`
	}{scans, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	scan, err := h.scanService.RetrieveScan(ctx, RetrieveScanOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	mergeProgress(scan, h.registry)

	return errors.WithStack(c.JSON(http.StatusOK, scan))
}

// mergeProgress overlays the live in-memory progress of a running scan on
// top of the persisted row. Finished scans have no registry entry, so the
// stored row is returned untouched.
func mergeProgress(scan *models.Scan, registry *scanner.Registry) {
	if registry == nil {
		return
	}
	progress, ok := registry.Get(scan.ID)
	if !ok {
		return
	}

	scan.Status = progress.Status
	scan.CurrentFolder = progress.CurrentFolder
	scan.FilesDiscovered = progress.FilesFound
	scan.GroupsDiscovered = progress.GroupsCreated
}
