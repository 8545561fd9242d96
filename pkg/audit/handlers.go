package audit

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shelforg/shelforg/pkg/models"
)

type handler struct {
	auditService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListAuditLogsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListEntriesOptions{
		Limit:       &params.Limit,
		Offset:      &params.Offset,
		PlanID:      params.PlanID,
		OperationID: params.OperationID,
	}
	if params.Result != nil {
		opts.Results = []string{*params.Result}
	}

	entries, total, err := h.auditService.ListEntriesWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		AuditLogs []*models.AuditLog `json:"audit_logs"`
		Total     int                `json:"total"`
	}{entries, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
