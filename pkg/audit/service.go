package audit

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/shelforg/shelforg/pkg/models"
)

type ListEntriesOptions struct {
	Limit       *int
	Offset      *int
	PlanID      *string
	OperationID *string
	Results     []string

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Record appends one audit row. Every attempted file operation gets one,
// whether it succeeded or not.
func (svc *Service) Record(ctx context.Context, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := svc.db.
		NewInsert().
		Model(entry).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) ListEntries(ctx context.Context, opts ListEntriesOptions) ([]*models.AuditLog, error) {
	e, _, err := svc.listEntriesWithTotal(ctx, opts)
	return e, errors.WithStack(err)
}

func (svc *Service) ListEntriesWithTotal(ctx context.Context, opts ListEntriesOptions) ([]*models.AuditLog, int, error) {
	opts.includeTotal = true
	return svc.listEntriesWithTotal(ctx, opts)
}

func (svc *Service) listEntriesWithTotal(ctx context.Context, opts ListEntriesOptions) ([]*models.AuditLog, int, error) {
	entries := []*models.AuditLog{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&entries).
		Order("al.created_at DESC", "al.id DESC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.PlanID != nil {
		q = q.Where("al.plan_id = ?", *opts.PlanID)
	}
	if opts.OperationID != nil {
		q = q.Where("al.operation_id = ?", *opts.OperationID)
	}
	if opts.Results != nil {
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			for _, r := range opts.Results {
				sq = sq.WhereOr("al.result = ?", r)
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

	return entries, total, nil
}
