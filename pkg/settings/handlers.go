package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shelforg/shelforg/pkg/models"
)

type handler struct {
	settingsService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	settings, err := h.settingsService.Retrieve(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, settings))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := UpdateSettingsPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if params.LibraryRoot != nil {
		if err := h.settingsService.Set(ctx, models.SettingLibraryRoot, *params.LibraryRoot); err != nil {
			return errors.WithStack(err)
		}
	}
	if params.OutputRoot != nil {
		if err := h.settingsService.Set(ctx, models.SettingOutputRoot, *params.OutputRoot); err != nil {
			return errors.WithStack(err)
		}
	}
	if params.AudiobookFolderTemplate != nil {
		if err := h.settingsService.Set(ctx, models.SettingAudiobookFolderTemplate, *params.AudiobookFolderTemplate); err != nil {
			return errors.WithStack(err)
		}
	}
	if params.AudiobookFileTemplate != nil {
		if err := h.settingsService.Set(ctx, models.SettingAudiobookFileTemplate, *params.AudiobookFileTemplate); err != nil {
			return errors.WithStack(err)
		}
	}
	if params.ExcludedPaths != nil {
		if err := h.settingsService.SetExcludedPaths(ctx, *params.ExcludedPaths); err != nil {
			return errors.WithStack(err)
		}
	}

	settings, err := h.settingsService.Retrieve(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, settings))
}
