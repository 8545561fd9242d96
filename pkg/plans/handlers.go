package plans

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shelforg/shelforg/pkg/errcodes"
	"github.com/shelforg/shelforg/pkg/jobs"
	"github.com/shelforg/shelforg/pkg/models"
)

type handler struct {
	planService *Service
	jobService  *jobs.Service
	planner     *Planner
	rollbacker  *Rollbacker
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreatePlanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	plan, err := h.planner.GeneratePlan(ctx, GeneratePlanOptions{
		ScanID:   params.ScanID,
		FileIDs:  params.FileIDs,
		GroupIDs: params.GroupIDs,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, plan))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListPlansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListPlansOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		ScanID: params.ScanID,
	}
	if params.Status != nil {
		opts.Statuses = []string{*params.Status}
	}

	plans, total, err := h.planService.ListPlansWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Plans []*models.Plan `json:"plans"`
		Total int            `json:"total"`
	}{plans, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	plan, err := h.planService.RetrievePlan(ctx, RetrievePlanOptions{ID: &id, IncludeOperations: true})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, plan))
}

// apply queues a background job for the plan. The ready to applying
// transition itself happens in the worker so two apply requests can't both
// run the same plan.
func (h *handler) apply(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	plan, err := h.planService.RetrievePlan(ctx, RetrievePlanOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	if plan.Status != models.PlanStatusReady {
		return errcodes.Conflict("Plan is not ready to be applied.")
	}

	hasActive, err := h.jobService.HasActiveJobByType(ctx, models.JobTypeApplyPlan)
	if err != nil {
		return errors.WithStack(err)
	}
	if hasActive {
		return errcodes.Conflict("Another plan is already being applied.")
	}

	job := &models.Job{
		Type:       models.JobTypeApplyPlan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobApplyPlanData{PlanID: plan.ID},
	}
	if err := h.jobService.CreateJob(ctx, job); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, plan))
}

func (h *handler) rollback(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	result, err := h.rollbacker.RollbackPlan(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, result))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := h.planService.DeletePlan(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
