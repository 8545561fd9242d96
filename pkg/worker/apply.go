package worker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/shelforg/shelforg/pkg/models"
)

// ProcessApplyPlanJob executes a plan's file operations in the background.
func (w *Worker) ProcessApplyPlanJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	log.Info("processing apply plan job")

	data, ok := job.DataParsed.(*models.JobApplyPlanData)
	if !ok {
		return errors.New("unexpected data payload for apply plan job")
	}

	result, err := w.executor.ExecutePlan(ctx, data.PlanID)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("apply plan job complete", logger.Data{
		"plan_id":   result.PlanID,
		"completed": result.Completed,
		"failed":    result.Failed,
	})
	return nil
}
