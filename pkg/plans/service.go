package plans

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/shelforg/shelforg/pkg/errcodes"
	"github.com/shelforg/shelforg/pkg/models"
)

type RetrievePlanOptions struct {
	ID                *string
	IncludeOperations bool
}

type ListPlansOptions struct {
	Limit    *int
	Offset   *int
	ScanID   *string
	Statuses []string

	includeTotal bool
}

type UpdatePlanOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreatePlan persists a generated plan and its operations in one
// transaction.
func (svc *Service) CreatePlan(ctx context.Context, plan *models.Plan) error {
	now := time.Now()
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = plan.CreatedAt

	if err := plan.MarshalLists(); err != nil {
		return errors.WithStack(err)
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(plan).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		for _, op := range plan.Operations {
			if op.ID == "" {
				op.ID = uuid.NewString()
			}
			op.PlanID = plan.ID
			op.CreatedAt = plan.CreatedAt
			op.UpdatedAt = plan.CreatedAt
		}

		if len(plan.Operations) > 0 {
			_, err := tx.
				NewInsert().
				Model(&plan.Operations).
				Returning("*").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrievePlan(ctx context.Context, opts RetrievePlanOptions) (*models.Plan, error) {
	plan := &models.Plan{}

	q := svc.db.
		NewSelect().
		Model(plan)

	if opts.IncludeOperations {
		q = q.Relation("Operations", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("execution_order ASC")
		})
	}
	if opts.ID != nil {
		q = q.Where("p.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Plan")
		}
		return nil, errors.WithStack(err)
	}

	if err := plan.UnmarshalLists(); err != nil {
		return nil, errors.WithStack(err)
	}

	return plan, nil
}

func (svc *Service) ListPlans(ctx context.Context, opts ListPlansOptions) ([]*models.Plan, error) {
	p, _, err := svc.listPlansWithTotal(ctx, opts)
	return p, errors.WithStack(err)
}

func (svc *Service) ListPlansWithTotal(ctx context.Context, opts ListPlansOptions) ([]*models.Plan, int, error) {
	opts.includeTotal = true
	return svc.listPlansWithTotal(ctx, opts)
}

func (svc *Service) listPlansWithTotal(ctx context.Context, opts ListPlansOptions) ([]*models.Plan, int, error) {
	plans := []*models.Plan{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&plans).
		Order("p.created_at DESC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.ScanID != nil {
		q = q.Where("p.scan_id = ?", *opts.ScanID)
	}
	if opts.Statuses != nil {
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			for _, s := range opts.Statuses {
				sq = sq.WhereOr("p.status = ?", s)
			}
			return sq
		})
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	for _, plan := range plans {
		if err := plan.UnmarshalLists(); err != nil {
			return nil, 0, errors.WithStack(err)
		}
	}

	return plans, total, nil
}

func (svc *Service) UpdatePlan(ctx context.Context, plan *models.Plan, opts UpdatePlanOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	plan.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(plan).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Plan")
		}
		return errors.WithStack(err)
	}

	return nil
}

// MarkApplying flips a ready plan to applying in a single guarded update,
// so two concurrent apply jobs can't both start executing it.
func (svc *Service) MarkApplying(ctx context.Context, planID string) error {
	res, err := svc.db.
		NewUpdate().
		Model((*models.Plan)(nil)).
		Set("status = ?", models.PlanStatusApplying).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", planID).
		Where("status = ?", models.PlanStatusReady).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return errcodes.Conflict("Plan is not ready to be applied.")
	}

	return nil
}

// DeletePlan removes a plan that hasn't touched the filesystem yet.
func (svc *Service) DeletePlan(ctx context.Context, planID string) error {
	plan, err := svc.RetrievePlan(ctx, RetrievePlanOptions{ID: &planID})
	if err != nil {
		return errors.WithStack(err)
	}

	switch plan.Status {
	case models.PlanStatusApplying, models.PlanStatusCompleted:
		return errcodes.Conflict("Cannot delete an applied or running plan.")
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewDelete().
			Model((*models.PlannedOperation)(nil)).
			Where("plan_id = ?", planID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewDelete().
			Model((*models.Plan)(nil)).
			Where("id = ?", planID).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// UpdateOperation writes an operation's status and error message.
func (svc *Service) UpdateOperation(ctx context.Context, op *models.PlannedOperation, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}

	op.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(op).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
