package scans

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/uptrace/bun"

	"github.com/shelforg/shelforg/pkg/errcodes"
	"github.com/shelforg/shelforg/pkg/models"
	"github.com/shelforg/shelforg/pkg/scanner"
)

type RetrieveScanOptions struct {
	ID *string
}

type ListScansOptions struct {
	Limit    *int
	Offset   *int
	Statuses []string

	includeTotal bool
}

type UpdateScanOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateScan(ctx context.Context, scan *models.Scan) error {
	if scan.ID == "" {
		scan.ID = uuid.NewString()
	}
	now := time.Now()
	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = now
	}
	scan.UpdatedAt = scan.CreatedAt

	if scan.Errors == "" && scan.ErrorsParsed != nil {
		if err := scan.MarshalErrors(); err != nil {
			return errors.WithStack(err)
		}
	}

	_, err := svc.db.
		NewInsert().
		Model(scan).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveScan(ctx context.Context, opts RetrieveScanOptions) (*models.Scan, error) {
	scan := &models.Scan{}

	q := svc.db.
		NewSelect().
		Model(scan)

	if opts.ID != nil {
		q = q.Where("s.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Scan")
		}
		return nil, errors.WithStack(err)
	}

	if err := scan.UnmarshalErrors(); err != nil {
		return nil, errors.WithStack(err)
	}

	return scan, nil
}

func (svc *Service) ListScans(ctx context.Context, opts ListScansOptions) ([]*models.Scan, error) {
	s, _, err := svc.listScansWithTotal(ctx, opts)
	return s, errors.WithStack(err)
}

func (svc *Service) ListScansWithTotal(ctx context.Context, opts ListScansOptions) ([]*models.Scan, int, error) {
	opts.includeTotal = true
	return svc.listScansWithTotal(ctx, opts)
}

func (svc *Service) listScansWithTotal(ctx context.Context, opts ListScansOptions) ([]*models.Scan, int, error) {
	scans := []*models.Scan{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&scans).
		Order("s.created_at DESC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.Statuses != nil {
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			for _, s := range opts.Statuses {
				sq = sq.WhereOr("s.status = ?", s)
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

	for _, scan := range scans {
		if err := scan.UnmarshalErrors(); err != nil {
			return nil, 0, errors.WithStack(err)
		}
	}

	return scans, total, nil
}

func (svc *Service) UpdateScan(ctx context.Context, scan *models.Scan, opts UpdateScanOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	scan.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(scan).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Scan")
		}
		return errors.WithStack(err)
	}

	return nil
}

// SaveResult persists everything a finished scan produced in one
// transaction: group rows, media file rows, and the final scan row state.
func (svc *Service) SaveResult(ctx context.Context, scan *models.Scan, result *scanner.Result, status string) error {
	now := time.Now()

	groups := make([]*models.AudiobookGroup, 0, len(result.Groups))
	primaryByGroup := map[string]string{}
	for _, f := range result.Files {
		if f.GroupID != nil && f.IsGroupPrimary {
			primaryByGroup[*f.GroupID] = f.ID
		}
	}
	for _, g := range result.Groups {
		group := &models.AudiobookGroup{
			ID:          g.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
			ScanID:      scan.ID,
			FolderPath:  g.FolderPath,
			Status:      models.AudiobookGroupStatusPending,
			FileCount:   g.FileCount(),
			Title:       g.Title,
			Author:      g.Author,
			Narrator:    g.Narrator,
			Series:      g.Series,
			SeriesIndex: g.SeriesIndex,
			Year:        g.Year,
			Confidence:  g.Confidence,
		}
		if total := g.TotalDurationSeconds(); total > 0 {
			group.TotalDurationSeconds = &total
		}
		if primaryID, ok := primaryByGroup[g.ID]; ok {
			group.PrimaryFileID = pointerutil.String(primaryID)
		}
		groups = append(groups, group)
	}

	files := make([]*models.MediaFile, 0, len(result.Files))
	for _, f := range result.Files {
		file := &models.MediaFile{
			ID:              f.ID,
			CreatedAt:       now,
			UpdatedAt:       now,
			ScanID:          scan.ID,
			GroupID:         f.GroupID,
			Filepath:        f.Path,
			Filename:        f.Filename,
			Extension:       f.Extension,
			MediaType:       f.MediaType,
			Status:          models.MediaFileStatusPending,
			FilesizeBytes:   f.Size,
			Hash:            f.Hash,
			TrackNumber:     f.TrackNumber,
			Title:           f.Title,
			Author:          f.Author,
			Narrator:        f.Narrator,
			Series:          f.Series,
			SeriesIndex:     f.SeriesIndex,
			Year:            f.Year,
			Quality:         f.Quality,
			ParseConfidence: f.Confidence,
		}
		if f.DurationSeconds > 0 {
			file.DurationSeconds = pointerutil.Float64(f.DurationSeconds)
		}
		files = append(files, file)
	}

	scan.Status = status
	scan.FilesDiscovered = len(result.Files)
	scan.GroupsDiscovered = len(result.Groups)
	scan.ErrorsParsed = result.Errors
	scan.StartedAt = pointerutil.Time(result.StartedAt)
	scan.CompletedAt = pointerutil.Time(result.CompletedAt)
	scan.CurrentFolder = nil
	if err := scan.MarshalErrors(); err != nil {
		return errors.WithStack(err)
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if len(groups) > 0 {
			_, err := tx.
				NewInsert().
				Model(&groups).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		if len(files) > 0 {
			_, err := tx.
				NewInsert().
				Model(&files).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		scan.UpdatedAt = now
		_, err := tx.
			NewUpdate().
			Model(scan).
			Column("status", "files_discovered", "groups_discovered", "errors", "started_at", "completed_at", "current_folder", "updated_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
