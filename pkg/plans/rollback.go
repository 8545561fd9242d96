package plans

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/uptrace/bun"

	"github.com/shelforg/shelforg/pkg/audit"
	"github.com/shelforg/shelforg/pkg/errcodes"
	"github.com/shelforg/shelforg/pkg/fileutils"
	"github.com/shelforg/shelforg/pkg/models"
)

// RollbackResult summarizes one rollback run, including any conflicts where
// a file could not be returned to its original location.
type RollbackResult struct {
	PlanID     string   `json:"plan_id"`
	Success    bool     `json:"success"`
	RolledBack int      `json:"operations_rolled_back"`
	Failed     int      `json:"operations_failed"`
	Conflicts  []string `json:"conflicts"`
}

// Rollbacker returns a plan's completed operations to their original
// locations, newest first.
type Rollbacker struct {
	db           *bun.DB
	planService  *Service
	auditService *audit.Service
}

func NewRollbacker(db *bun.DB) *Rollbacker {
	return &Rollbacker{
		db:           db,
		planService:  NewService(db),
		auditService: audit.NewService(db),
	}
}

// RollbackPlan reverses every completed operation of a completed or failed
// plan. Conflicts are recorded and skipped rather than aborting the run, and
// the plan always ends up rolled_back so a partially reverted plan can't be
// applied again.
func (r *Rollbacker) RollbackPlan(ctx context.Context, planID string) (*RollbackResult, error) {
	plan, err := r.planService.RetrievePlan(ctx, RetrievePlanOptions{ID: &planID, IncludeOperations: true})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if plan.Status != models.PlanStatusCompleted && plan.Status != models.PlanStatusFailed {
		return nil, errcodes.Conflict(fmt.Sprintf("Plan cannot be rolled back (status: %s).", plan.Status))
	}

	result := &RollbackResult{PlanID: planID, Conflicts: []string{}}

	for i := len(plan.Operations) - 1; i >= 0; i-- {
		op := plan.Operations[i]
		if op.Status != models.OperationStatusCompleted {
			continue
		}

		err := r.rollbackOperation(ctx, plan, op)
		if err != nil {
			result.Failed++
			if isConflict(err) {
				result.Conflicts = append(result.Conflicts, err.Error())
			}
			continue
		}
		result.RolledBack++
	}

	plan.Status = models.PlanStatusRolledBack
	err = r.planService.UpdatePlan(ctx, plan, UpdatePlanOptions{Columns: []string{"status"}})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := r.markReverted(ctx, planID); err != nil {
		return nil, errors.WithStack(err)
	}

	result.Success = result.Failed == 0
	return result, nil
}

// rollbackOperation moves a file from its applied target back to its
// original source path.
func (r *Rollbacker) rollbackOperation(ctx context.Context, plan *models.Plan, op *models.PlannedOperation) error {
	err := r.revertFile(op)
	if auditErr := r.recordAttempt(ctx, plan, op, err); auditErr != nil {
		return errors.WithStack(auditErr)
	}
	if err != nil {
		op.ErrorMessage = pointerutil.String(err.Error())
		if updateErr := r.planService.UpdateOperation(ctx, op, "error_message"); updateErr != nil {
			return errors.WithStack(updateErr)
		}
		return err
	}

	op.Status = models.OperationStatusRolledBack
	op.ErrorMessage = nil
	return errors.WithStack(r.planService.UpdateOperation(ctx, op, "status", "error_message"))
}

func (r *Rollbacker) revertFile(op *models.PlannedOperation) error {
	if _, err := os.Stat(op.TargetPath); err != nil {
		return errors.Errorf("Cannot rollback: file not found at %s", op.TargetPath)
	}
	if fileutils.PathExists(op.SourcePath) {
		return errors.Errorf("Cannot rollback: original location occupied at %s", op.SourcePath)
	}

	switch op.Type {
	case models.OperationTypeCopyDelete:
		// The file may have been rewritten since it was applied, so the
		// reverse copy is verified against a fresh hash.
		hash, err := fileutils.HashFile(op.TargetPath)
		if err != nil {
			return errors.WithStack(err)
		}
		return errors.WithStack(fileutils.SafeCopyDelete(op.TargetPath, op.SourcePath, hash))
	default:
		return errors.WithStack(fileutils.SafeRename(op.TargetPath, op.SourcePath))
	}
}

func (r *Rollbacker) recordAttempt(ctx context.Context, plan *models.Plan, op *models.PlannedOperation, opErr error) error {
	entry := &models.AuditLog{
		PlanID:      plan.ID,
		OperationID: pointerutil.String(op.ID),
		Action:      "rollback",
		SourcePath:  op.TargetPath,
		TargetPath:  op.SourcePath,
		Result:      models.AuditResultSuccess,
	}
	if opErr != nil {
		entry.Result = models.AuditResultFailure
		entry.ErrorMessage = pointerutil.String(opErr.Error())
	}
	return errors.WithStack(r.auditService.Record(ctx, entry))
}

// markReverted returns rolled back media files and groups to approved so
// they are eligible for a new plan.
func (r *Rollbacker) markReverted(ctx context.Context, planID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.MediaFile)(nil)).
		Set("status = ?", models.MediaFileStatusApproved).
		Where("id IN (SELECT media_file_id FROM planned_operations WHERE plan_id = ? AND status = ? AND media_file_id IS NOT NULL)", planID, models.OperationStatusRolledBack).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = r.db.NewUpdate().
		Model((*models.AudiobookGroup)(nil)).
		Set("status = ?", models.AudiobookGroupStatusApproved).
		Where("id IN (SELECT group_id FROM planned_operations WHERE plan_id = ? AND status = ? AND group_id IS NOT NULL)", planID, models.OperationStatusRolledBack).
		Exec(ctx)
	return errors.WithStack(err)
}

// isConflict picks out the occupied-target case, the only rollback failure
// that needs manual resolution. A missing file is a plain failure.
func isConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "occupied")
}
