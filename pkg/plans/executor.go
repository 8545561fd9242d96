package plans

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/uptrace/bun"

	"github.com/shelforg/shelforg/pkg/audit"
	"github.com/shelforg/shelforg/pkg/fileutils"
	"github.com/shelforg/shelforg/pkg/models"
)

// ExecuteResult summarizes one apply run.
type ExecuteResult struct {
	PlanID    string `json:"plan_id"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
}

// Executor applies a plan's pending operations in execution order. Every
// attempt, including verification failures, lands in the audit log.
type Executor struct {
	db           *bun.DB
	planService  *Service
	auditService *audit.Service
}

func NewExecutor(db *bun.DB) *Executor {
	return &Executor{
		db:           db,
		planService:  NewService(db),
		auditService: audit.NewService(db),
	}
}

// ExecutePlan transitions a ready plan to applying, runs its operations, and
// finishes the plan as completed or failed. A single failed operation does
// not halt the run; the remaining operations still execute.
func (e *Executor) ExecutePlan(ctx context.Context, planID string) (*ExecuteResult, error) {
	if err := e.planService.MarkApplying(ctx, planID); err != nil {
		return nil, errors.WithStack(err)
	}

	plan, err := e.planService.RetrievePlan(ctx, RetrievePlanOptions{ID: &planID, IncludeOperations: true})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	result := &ExecuteResult{PlanID: planID}
	for _, op := range plan.Operations {
		if op.Status != models.OperationStatusPending {
			continue
		}
		if err := e.executeOperation(ctx, plan, op); err != nil {
			result.Failed++
			continue
		}
		result.Completed++
	}

	status := models.PlanStatusCompleted
	if result.Failed > 0 {
		status = models.PlanStatusFailed
	}
	plan.Status = status
	plan.CompletedCount = result.Completed
	err = e.planService.UpdatePlan(ctx, plan, UpdatePlanOptions{Columns: []string{"status", "completed_count"}})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := e.markApplied(ctx, planID); err != nil {
		return nil, errors.WithStack(err)
	}

	return result, nil
}

// executeOperation verifies the source file, performs the move, and records
// the outcome on both the operation row and the audit log.
func (e *Executor) executeOperation(ctx context.Context, plan *models.Plan, op *models.PlannedOperation) error {
	sourceHash, err := e.verifySource(op)
	if err != nil {
		if auditErr := e.recordAttempt(ctx, plan, op, "verify", err); auditErr != nil {
			return errors.WithStack(auditErr)
		}
		return e.failOperation(ctx, op, err)
	}

	run, ok := strategies[op.Type]
	if !ok {
		err = errors.Errorf("unknown operation type: %s", op.Type)
	} else {
		err = run(op, sourceHash)
	}

	if auditErr := e.recordAttempt(ctx, plan, op, op.Type, err); auditErr != nil {
		return errors.WithStack(auditErr)
	}
	if err != nil {
		return e.failOperation(ctx, op, err)
	}

	op.Status = models.OperationStatusCompleted
	op.ErrorMessage = nil
	updateErr := e.planService.UpdateOperation(ctx, op, "status", "error_message")
	if updateErr != nil {
		return errors.WithStack(updateErr)
	}
	return nil
}

// verifySource checks that the source still exists, is a regular file, and
// still matches the hash captured at scan time. It returns the verified
// hash so cross volume copies don't read the file twice.
func (e *Executor) verifySource(op *models.PlannedOperation) (string, error) {
	info, err := os.Stat(op.SourcePath)
	if err != nil {
		return "", errors.Errorf("File does not exist: %s", op.SourcePath)
	}
	if !info.Mode().IsRegular() {
		return "", errors.Errorf("Path is not a file: %s", op.SourcePath)
	}

	actual, err := fileutils.HashFile(op.SourcePath)
	if err != nil {
		return "", errors.WithStack(err)
	}
	if op.SourceHash != nil && actual != *op.SourceHash {
		return "", errors.Errorf("Hash mismatch: expected %.16s..., got %.16s...", *op.SourceHash, actual)
	}
	return actual, nil
}

func (e *Executor) recordAttempt(ctx context.Context, plan *models.Plan, op *models.PlannedOperation, action string, opErr error) error {
	entry := &models.AuditLog{
		PlanID:      plan.ID,
		OperationID: pointerutil.String(op.ID),
		Action:      action,
		SourcePath:  op.SourcePath,
		TargetPath:  op.TargetPath,
		Result:      models.AuditResultSuccess,
	}
	if opErr != nil {
		entry.Result = models.AuditResultFailure
		entry.ErrorMessage = pointerutil.String(opErr.Error())
	}
	return errors.WithStack(e.auditService.Record(ctx, entry))
}

func (e *Executor) failOperation(ctx context.Context, op *models.PlannedOperation, opErr error) error {
	op.Status = models.OperationStatusFailed
	op.ErrorMessage = pointerutil.String(opErr.Error())
	if err := e.planService.UpdateOperation(ctx, op, "status", "error_message"); err != nil {
		return errors.WithStack(err)
	}
	return fmt.Errorf("operation failed: %s", opErr.Error())
}

// markApplied flips every media file and group touched by a completed
// operation to applied so they can't be planned twice.
func (e *Executor) markApplied(ctx context.Context, planID string) error {
	_, err := e.db.NewUpdate().
		Model((*models.MediaFile)(nil)).
		Set("status = ?", models.MediaFileStatusApplied).
		Where("id IN (SELECT media_file_id FROM planned_operations WHERE plan_id = ? AND status = ? AND media_file_id IS NOT NULL)", planID, models.OperationStatusCompleted).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = e.db.NewUpdate().
		Model((*models.AudiobookGroup)(nil)).
		Set("status = ?", models.AudiobookGroupStatusApplied).
		Where("id IN (SELECT group_id FROM planned_operations WHERE plan_id = ? AND status = ? AND group_id IS NOT NULL)", planID, models.OperationStatusCompleted).
		Exec(ctx)
	return errors.WithStack(err)
}
