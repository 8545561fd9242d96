package plans

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/shelforg/shelforg/pkg/config"
	"github.com/shelforg/shelforg/pkg/errcodes"
	"github.com/shelforg/shelforg/pkg/fileutils"
	"github.com/shelforg/shelforg/pkg/models"
	"github.com/shelforg/shelforg/pkg/settings"
)

type GeneratePlanOptions struct {
	ScanID   string
	FileIDs  []string
	GroupIDs []string
}

// Planner turns approved catalog entries into a persisted plan of file
// operations. Nothing touches the filesystem here; the planner only reads
// it for collision detection.
type Planner struct {
	db              *bun.DB
	cfg             *config.OrganizerConfig
	planService     *Service
	settingsService *settings.Service
}

func NewPlanner(db *bun.DB, cfg *config.OrganizerConfig) *Planner {
	return &Planner{
		db:              db,
		cfg:             cfg,
		planService:     NewService(db),
		settingsService: settings.NewService(db),
	}
}

// itemMetadata is the effective metadata a target path is built from, after
// user overrides have been applied.
type itemMetadata struct {
	Title       *string
	Author      *string
	Narrator    *string
	Series      *string
	SeriesIndex *float64
	Year        *int
	Extension   string
	PartNum     int
	TotalParts  int
}

// planBuilder accumulates operations and warnings while tracking every
// target claimed so far, both raw and resolved.
type planBuilder struct {
	plan           *models.Plan
	rawTargets     map[string]bool
	claimedTargets map[string]bool
	executionOrder int
}

func (b *planBuilder) addOperation(mediaFileID, groupID *string, sourcePath, targetPath string, sourceHash *string) {
	op := &models.PlannedOperation{
		ID:             uuid.NewString(),
		MediaFileID:    mediaFileID,
		GroupID:        groupID,
		Type:           determineOperationType(sourcePath, targetPath),
		Status:         models.OperationStatusPending,
		SourcePath:     sourcePath,
		TargetPath:     targetPath,
		SourceHash:     sourceHash,
		ExecutionOrder: b.executionOrder,
	}
	b.plan.Operations = append(b.plan.Operations, op)
	b.executionOrder++
}

// determineOperationType picks the cheapest safe primitive: a rename within
// the same directory, an atomic move on the same volume, or a verified
// copy-then-delete across volumes.
func determineOperationType(sourcePath, targetPath string) string {
	if filepath.Dir(sourcePath) == filepath.Dir(targetPath) {
		return models.OperationTypeRename
	}
	if fileutils.SameVolume(sourcePath, targetPath) {
		return models.OperationTypeMove
	}
	return models.OperationTypeCopyDelete
}

func mediaTypeFolder(mediaType string) string {
	switch mediaType {
	case models.MediaTypeEbook:
		return "Ebooks"
	case models.MediaTypeComic:
		return "Comics"
	default:
		return "Audiobooks"
	}
}

// GeneratePlan builds and persists a plan for a scan's approved standalone
// files and audiobook groups. A plan that would contain no operations is
// rejected before anything is written.
func (p *Planner) GeneratePlan(ctx context.Context, opts GeneratePlanOptions) (*models.Plan, error) {
	stored, err := p.settingsService.Retrieve(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if stored.OutputRoot == "" {
		return nil, errcodes.ValidationError("No output root is configured. Set output_root in settings first.")
	}

	builder := &planBuilder{
		plan: &models.Plan{
			ID:               uuid.NewString(),
			ScanID:           opts.ScanID,
			OutputRoot:       stored.OutputRoot,
			Status:           models.PlanStatusDraft,
			WarningsParsed:   []string{},
			CollisionsParsed: []string{},
			DuplicatesParsed: []string{},
			Operations:       []*models.PlannedOperation{},
		},
		rawTargets:     map[string]bool{},
		claimedTargets: map[string]bool{},
	}

	files, err := p.eligibleStandaloneFiles(ctx, opts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, file := range files {
		md := itemMetadata{
			Title:       file.EffectiveTitle(),
			Author:      file.EffectiveAuthor(),
			Narrator:    file.EffectiveNarrator(),
			Series:      file.EffectiveSeries(),
			SeriesIndex: file.EffectiveSeriesIndex(),
			Year:        file.EffectiveYear(),
			Extension:   file.Extension,
		}
		if err := p.planItem(builder, stored, md, file.Filepath, file.MediaType, &file.ID, nil, file.Hash); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	groups, err := p.eligibleGroups(ctx, opts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, group := range groups {
		groupFiles := []*models.MediaFile{}
		err := p.db.NewSelect().
			Model(&groupFiles).
			Where("mf.group_id = ?", group.ID).
			Order("mf.track_number ASC", "mf.filepath ASC").
			Scan(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		totalParts := len(groupFiles)
		for partNum, file := range groupFiles {
			md := itemMetadata{
				Title:       group.Title,
				Author:      group.Author,
				Narrator:    group.Narrator,
				Series:      group.Series,
				SeriesIndex: group.SeriesIndex,
				Year:        group.Year,
				Extension:   file.Extension,
			}
			if totalParts > 1 {
				md.PartNum = partNum + 1
				md.TotalParts = totalParts
			}
			groupID := group.ID
			if err := p.planItem(builder, stored, md, file.Filepath, models.MediaTypeAudiobook, &file.ID, &groupID, file.Hash); err != nil {
				return nil, errors.WithStack(err)
			}
		}
	}

	if len(builder.plan.Operations) == 0 {
		return nil, errcodes.BadRequest("No eligible items to include in the plan.")
	}

	builder.plan.Status = models.PlanStatusReady
	builder.plan.OperationCount = len(builder.plan.Operations)

	if err := p.planService.CreatePlan(ctx, builder.plan); err != nil {
		return nil, errors.WithStack(err)
	}

	return builder.plan, nil
}

// planItem resolves one file's target path, records collision and duplicate
// warnings, and adds the operation. Files already sitting at their target
// are skipped with a warning instead of producing a no-op rename.
func (p *Planner) planItem(builder *planBuilder, stored *settings.Settings, md itemMetadata, sourcePath, mediaType string, mediaFileID, groupID *string, sourceHash *string) error {
	rawTarget := p.buildTargetPath(stored, md, mediaType)

	if rawTarget == sourcePath {
		builder.plan.WarningsParsed = append(builder.plan.WarningsParsed, fmt.Sprintf("Already organized: %s", sourcePath))
		return nil
	}

	if fileutils.PathExists(rawTarget) {
		builder.plan.CollisionsParsed = append(builder.plan.CollisionsParsed, fmt.Sprintf("Target exists: %s", rawTarget))
	}
	if builder.rawTargets[rawTarget] {
		builder.plan.DuplicatesParsed = append(builder.plan.DuplicatesParsed, fmt.Sprintf("Duplicate target: %s", rawTarget))
	}
	builder.rawTargets[rawTarget] = true

	target, err := fileutils.UniqueTargetPath(rawTarget, func(candidate string) bool {
		if builder.claimedTargets[candidate] {
			return true
		}
		return candidate != sourcePath && fileutils.PathExists(candidate)
	})
	if err != nil {
		return errors.WithStack(err)
	}
	builder.claimedTargets[target] = true

	builder.addOperation(mediaFileID, groupID, sourcePath, target, sourceHash)
	return nil
}

func (p *Planner) buildTargetPath(stored *settings.Settings, md itemMetadata, mediaType string) string {
	hasSeries := md.Series != nil && *md.Series != ""
	multiPart := md.PartNum > 0

	folderTemplate := stored.AudiobookFolderTemplate
	if folderTemplate == "" {
		if hasSeries {
			folderTemplate = p.cfg.Naming.FolderTemplate
		} else {
			folderTemplate = p.cfg.Naming.FolderTemplateNoSeries
		}
	}

	fileTemplate := stored.AudiobookFileTemplate
	if fileTemplate == "" {
		switch {
		case multiPart:
			fileTemplate = p.cfg.Naming.MultiPartFileTemplate
		case hasSeries:
			fileTemplate = p.cfg.Naming.FileTemplate
		default:
			fileTemplate = p.cfg.Naming.FileTemplateNoSeries
		}
	}

	values := fileutils.TemplateValues{
		Title:    orEmpty(md.Title),
		Author:   orEmpty(md.Author),
		Narrator: orEmpty(md.Narrator),
		Series:   orEmpty(md.Series),
		Ext:      trimDot(md.Extension),
	}
	if md.Author != nil {
		values.AuthorSort = fileutils.AuthorSort(*md.Author)
	}
	if md.SeriesIndex != nil {
		values.SeriesIndex = fileutils.FormatSeriesIndex(*md.SeriesIndex)
	}
	if md.Year != nil {
		values.Year = strconv.Itoa(*md.Year)
	}
	if md.PartNum > 0 {
		values.PartNum = strconv.Itoa(md.PartNum)
		values.TotalParts = strconv.Itoa(md.TotalParts)
	}

	folderPath := fileutils.ApplyTemplate(folderTemplate, values)
	fileName := fileutils.ApplyTemplate(fileTemplate, values)

	target := filepath.Join(stored.OutputRoot, mediaTypeFolder(mediaType))
	if folderPath != "" {
		target = filepath.Join(target, filepath.FromSlash(folderPath))
	}
	return filepath.Join(target, filepath.FromSlash(fileName))
}

func (p *Planner) eligibleStandaloneFiles(ctx context.Context, opts GeneratePlanOptions) ([]*models.MediaFile, error) {
	files := []*models.MediaFile{}

	q := p.db.NewSelect().
		Model(&files).
		Order("mf.filepath ASC")

	if len(opts.FileIDs) > 0 {
		q = q.Where("mf.id IN (?)", bun.In(opts.FileIDs))
	} else {
		q = q.
			Where("mf.scan_id = ?", opts.ScanID).
			Where("mf.group_id IS NULL").
			Where("mf.status = ?", models.MediaFileStatusApproved)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	return files, nil
}

func (p *Planner) eligibleGroups(ctx context.Context, opts GeneratePlanOptions) ([]*models.AudiobookGroup, error) {
	groups := []*models.AudiobookGroup{}

	q := p.db.NewSelect().
		Model(&groups).
		Order("ag.folder_path ASC")

	if len(opts.GroupIDs) > 0 {
		q = q.Where("ag.id IN (?)", bun.In(opts.GroupIDs))
	} else {
		q = q.
			Where("ag.scan_id = ?", opts.ScanID).
			Where("ag.status = ?", models.AudiobookGroupStatusApproved)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	return groups, nil
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimDot(ext string) string {
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}
