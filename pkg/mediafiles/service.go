package mediafiles

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/shelforg/shelforg/pkg/errcodes"
	"github.com/shelforg/shelforg/pkg/models"
)

type RetrieveMediaFileOptions struct {
	ID           *string
	IncludeGroup bool
}

type ListMediaFilesOptions struct {
	Limit      *int
	Offset     *int
	ScanID     *string
	GroupID    *string
	MediaTypes []string
	Statuses   []string

	includeTotal bool
}

type UpdateMediaFileOptions struct {
	Columns []string
}

type RetrieveGroupOptions struct {
	ID           *string
	IncludeFiles bool
}

type ListGroupsOptions struct {
	Limit    *int
	Offset   *int
	ScanID   *string
	Statuses []string

	includeTotal bool
}

type UpdateGroupOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveMediaFile(ctx context.Context, opts RetrieveMediaFileOptions) (*models.MediaFile, error) {
	file := &models.MediaFile{}

	q := svc.db.
		NewSelect().
		Model(file)

	if opts.IncludeGroup {
		q = q.Relation("Group")
	}
	if opts.ID != nil {
		q = q.Where("mf.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Media file")
		}
		return nil, errors.WithStack(err)
	}

	return file, nil
}

func (svc *Service) ListMediaFiles(ctx context.Context, opts ListMediaFilesOptions) ([]*models.MediaFile, error) {
	f, _, err := svc.listMediaFilesWithTotal(ctx, opts)
	return f, errors.WithStack(err)
}

func (svc *Service) ListMediaFilesWithTotal(ctx context.Context, opts ListMediaFilesOptions) ([]*models.MediaFile, int, error) {
	opts.includeTotal = true
	return svc.listMediaFilesWithTotal(ctx, opts)
}

func (svc *Service) listMediaFilesWithTotal(ctx context.Context, opts ListMediaFilesOptions) ([]*models.MediaFile, int, error) {
	files := []*models.MediaFile{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&files).
		Order("mf.filepath ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.ScanID != nil {
		q = q.Where("mf.scan_id = ?", *opts.ScanID)
	}
	if opts.GroupID != nil {
		q = q.Where("mf.group_id = ?", *opts.GroupID)
	}
	if opts.MediaTypes != nil {
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			for _, mt := range opts.MediaTypes {
				sq = sq.WhereOr("mf.media_type = ?", mt)
			}
			return sq
		})
	}
	if opts.Statuses != nil {
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			for _, s := range opts.Statuses {
				sq = sq.WhereOr("mf.status = ?", s)
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

	return files, total, nil
}

func (svc *Service) UpdateMediaFile(ctx context.Context, file *models.MediaFile, opts UpdateMediaFileOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	file.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(file).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Media file")
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveGroup(ctx context.Context, opts RetrieveGroupOptions) (*models.AudiobookGroup, error) {
	group := &models.AudiobookGroup{}

	q := svc.db.
		NewSelect().
		Model(group)

	if opts.IncludeFiles {
		q = q.Relation("Files", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("track_number ASC", "filename ASC")
		})
	}
	if opts.ID != nil {
		q = q.Where("ag.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Audiobook group")
		}
		return nil, errors.WithStack(err)
	}

	return group, nil
}

func (svc *Service) ListGroups(ctx context.Context, opts ListGroupsOptions) ([]*models.AudiobookGroup, error) {
	g, _, err := svc.listGroupsWithTotal(ctx, opts)
	return g, errors.WithStack(err)
}

func (svc *Service) ListGroupsWithTotal(ctx context.Context, opts ListGroupsOptions) ([]*models.AudiobookGroup, int, error) {
	opts.includeTotal = true
	return svc.listGroupsWithTotal(ctx, opts)
}

func (svc *Service) listGroupsWithTotal(ctx context.Context, opts ListGroupsOptions) ([]*models.AudiobookGroup, int, error) {
	groups := []*models.AudiobookGroup{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&groups).
		Order("ag.folder_path ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.ScanID != nil {
		q = q.Where("ag.scan_id = ?", *opts.ScanID)
	}
	if opts.Statuses != nil {
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			for _, s := range opts.Statuses {
				sq = sq.WhereOr("ag.status = ?", s)
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

	return groups, total, nil
}

func (svc *Service) UpdateGroup(ctx context.Context, group *models.AudiobookGroup, opts UpdateGroupOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	group.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(group).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Audiobook group")
		}
		return errors.WithStack(err)
	}

	return nil
}
