package mediafiles

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shelforg/shelforg/pkg/errcodes"
	"github.com/shelforg/shelforg/pkg/models"
)

type handler struct {
	mediaFileService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListMediaFilesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListMediaFilesOptions{
		Limit:   &params.Limit,
		Offset:  &params.Offset,
		ScanID:  params.ScanID,
		GroupID: params.GroupID,
	}
	if params.MediaType != nil {
		opts.MediaTypes = []string{*params.MediaType}
	}
	if params.Status != nil {
		opts.Statuses = []string{*params.Status}
	}

	files, total, err := h.mediaFileService.ListMediaFilesWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		MediaFiles []*models.MediaFile `json:"media_files"`
		Total      int                 `json:"total"`
	}{files, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	file, err := h.mediaFileService.RetrieveMediaFile(ctx, RetrieveMediaFileOptions{
		ID:           &id,
		IncludeGroup: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, file))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	// Bind params.
	params := UpdateMediaFilePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Fetch the media file.
	file, err := h.mediaFileService.RetrieveMediaFile(ctx, RetrieveMediaFileOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	if file.Status == models.MediaFileStatusApplied {
		return errcodes.Conflict("Media file has already been applied.")
	}

	// Keep track of what's been changed.
	opts := UpdateMediaFileOptions{Columns: []string{}}

	if params.FinalTitle != nil {
		file.FinalTitle = params.FinalTitle
		opts.Columns = append(opts.Columns, "final_title")
	}
	if params.FinalAuthor != nil {
		file.FinalAuthor = params.FinalAuthor
		opts.Columns = append(opts.Columns, "final_author")
	}
	if params.FinalNarrator != nil {
		file.FinalNarrator = params.FinalNarrator
		opts.Columns = append(opts.Columns, "final_narrator")
	}
	if params.FinalSeries != nil {
		file.FinalSeries = params.FinalSeries
		opts.Columns = append(opts.Columns, "final_series")
	}
	if params.FinalSeriesIndex != nil {
		file.FinalSeriesIndex = params.FinalSeriesIndex
		opts.Columns = append(opts.Columns, "final_series_index")
	}
	if params.FinalYear != nil {
		file.FinalYear = params.FinalYear
		opts.Columns = append(opts.Columns, "final_year")
	}
	if params.Status != nil && *params.Status != file.Status {
		if !validStatusTransition(file.Status, *params.Status) {
			return errcodes.Conflict("Cannot change status from " + file.Status + " to " + *params.Status + ".")
		}
		file.Status = *params.Status
		opts.Columns = append(opts.Columns, "status")
	}

	// Update the model.
	if err := h.mediaFileService.UpdateMediaFile(ctx, file, opts); err != nil {
		return errors.WithStack(err)
	}

	// Reload the model.
	file, err = h.mediaFileService.RetrieveMediaFile(ctx, RetrieveMediaFileOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, file))
}

func (h *handler) listGroups(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListGroupsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListGroupsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		ScanID: params.ScanID,
	}
	if params.Status != nil {
		opts.Statuses = []string{*params.Status}
	}

	groups, total, err := h.mediaFileService.ListGroupsWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Groups []*models.AudiobookGroup `json:"groups"`
		Total  int                      `json:"total"`
	}{groups, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieveGroup(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	group, err := h.mediaFileService.RetrieveGroup(ctx, RetrieveGroupOptions{
		ID:           &id,
		IncludeFiles: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, group))
}

func (h *handler) updateGroup(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	// Bind params.
	params := UpdateGroupPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Fetch the group.
	group, err := h.mediaFileService.RetrieveGroup(ctx, RetrieveGroupOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	if group.Status == models.AudiobookGroupStatusApplied {
		return errcodes.Conflict("Audiobook group has already been applied.")
	}

	// Keep track of what's been changed.
	opts := UpdateGroupOptions{Columns: []string{}}

	if params.Title != nil {
		group.Title = params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.Author != nil {
		group.Author = params.Author
		opts.Columns = append(opts.Columns, "author")
	}
	if params.Narrator != nil {
		group.Narrator = params.Narrator
		opts.Columns = append(opts.Columns, "narrator")
	}
	if params.Series != nil {
		group.Series = params.Series
		opts.Columns = append(opts.Columns, "series")
	}
	if params.SeriesIndex != nil {
		group.SeriesIndex = params.SeriesIndex
		opts.Columns = append(opts.Columns, "series_index")
	}
	if params.Year != nil {
		group.Year = params.Year
		opts.Columns = append(opts.Columns, "year")
	}
	if params.Status != nil && *params.Status != group.Status {
		if !validStatusTransition(group.Status, *params.Status) {
			return errcodes.Conflict("Cannot change status from " + group.Status + " to " + *params.Status + ".")
		}
		group.Status = *params.Status
		opts.Columns = append(opts.Columns, "status")
	}

	// Update the model.
	if err := h.mediaFileService.UpdateGroup(ctx, group, opts); err != nil {
		return errors.WithStack(err)
	}

	// Reload the model.
	group, err = h.mediaFileService.RetrieveGroup(ctx, RetrieveGroupOptions{
		ID:           &id,
		IncludeFiles: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, group))
}

// validStatusTransition allows the review flow to move forward only:
// pending to reviewed or approved, reviewed to approved. Applied is set by
// the plan executor, never through the API.
func validStatusTransition(current, next string) bool {
	switch current {
	case models.MediaFileStatusPending:
		return next == models.MediaFileStatusReviewed || next == models.MediaFileStatusApproved
	case models.MediaFileStatusReviewed:
		return next == models.MediaFileStatusApproved
	default:
		return false
	}
}
