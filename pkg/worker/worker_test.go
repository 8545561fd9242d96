package worker

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/shelforg/shelforg/pkg/config"
	"github.com/shelforg/shelforg/pkg/fileutils"
	"github.com/shelforg/shelforg/pkg/migrations"
	"github.com/shelforg/shelforg/pkg/models"
	"github.com/shelforg/shelforg/pkg/plans"
	"github.com/shelforg/shelforg/pkg/scanner"
	"github.com/shelforg/shelforg/pkg/scans"
	"github.com/shelforg/shelforg/pkg/settings"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func newTestWorker(t *testing.T, db *bun.DB) (*Worker, *scanner.Registry) {
	t.Helper()
	registry := scanner.NewRegistry()
	return New(config.NewForTest(), db, registry), registry
}

func TestProcessScanJob(t *testing.T) {
	db := newTestDB(t)
	w, registry := newTestWorker(t, db)
	ctx := context.Background()

	root := t.TempDir()
	bookDir := filepath.Join(root, "Andy Weir - Project Hail Mary (2021)")
	require.NoError(t, os.MkdirAll(bookDir, 0o755))
	for _, name := range []string{"01.mp3", "02.mp3"} {
		require.NoError(t, os.WriteFile(filepath.Join(bookDir, name), []byte(name), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "Dune.epub"), []byte("dune"), 0o644))

	scanService := scans.NewService(db)
	scan := &models.Scan{RootPath: root, Status: models.ScanStatusPending}
	require.NoError(t, scanService.CreateScan(ctx, scan))

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusInProgress,
		DataParsed: &models.JobScanData{ScanID: scan.ID, RootPath: root},
	}

	require.NoError(t, w.ProcessScanJob(ctx, job))

	saved, err := scanService.RetrieveScan(ctx, scans.RetrieveScanOptions{ID: &scan.ID})
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusCompleted, saved.Status)
	assert.Equal(t, 3, saved.FilesDiscovered)
	assert.Equal(t, 1, saved.GroupsDiscovered)

	count, err := db.NewSelect().Model((*models.MediaFile)(nil)).Where("scan_id = ?", scan.ID).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// The live progress entry is cleared once the result is persisted.
	_, ok := registry.Get(scan.ID)
	assert.False(t, ok)
}

func TestProcessScanJobMissingRoot(t *testing.T) {
	db := newTestDB(t)
	w, _ := newTestWorker(t, db)
	ctx := context.Background()

	root := filepath.Join(t.TempDir(), "missing")
	scanService := scans.NewService(db)
	scan := &models.Scan{RootPath: root, Status: models.ScanStatusPending}
	require.NoError(t, scanService.CreateScan(ctx, scan))

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusInProgress,
		DataParsed: &models.JobScanData{ScanID: scan.ID, RootPath: root},
	}

	// A failed scan is a recorded outcome, not a job error.
	require.NoError(t, w.ProcessScanJob(ctx, job))

	saved, err := scanService.RetrieveScan(ctx, scans.RetrieveScanOptions{ID: &scan.ID})
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusFailed, saved.Status)
	require.Len(t, saved.ErrorsParsed, 1)
	assert.Contains(t, saved.ErrorsParsed[0].Message, "does not exist")
}

func TestProcessScanJobHonorsExclusions(t *testing.T) {
	db := newTestDB(t)
	w, _ := newTestWorker(t, db)
	ctx := context.Background()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.epub"), []byte("keep"), 0o644))
	skipDir := filepath.Join(root, "skipme")
	require.NoError(t, os.MkdirAll(skipDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skipDir, "drop.epub"), []byte("drop"), 0o644))

	require.NoError(t, settings.NewService(db).SetExcludedPaths(ctx, []string{skipDir}))

	scanService := scans.NewService(db)
	scan := &models.Scan{RootPath: root, Status: models.ScanStatusPending}
	require.NoError(t, scanService.CreateScan(ctx, scan))

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusInProgress,
		DataParsed: &models.JobScanData{ScanID: scan.ID, RootPath: root},
	}
	require.NoError(t, w.ProcessScanJob(ctx, job))

	files := []*models.MediaFile{}
	require.NoError(t, db.NewSelect().Model(&files).Where("scan_id = ?", scan.ID).Scan(ctx))
	require.Len(t, files, 1)
	assert.Equal(t, "keep.epub", files[0].Filename)
}

func TestProcessApplyPlanJob(t *testing.T) {
	db := newTestDB(t)
	w, _ := newTestWorker(t, db)
	ctx := context.Background()

	srcDir := t.TempDir()
	outDir := t.TempDir()
	source := filepath.Join(srcDir, "Dune.epub")
	require.NoError(t, os.WriteFile(source, []byte("dune"), 0o644))
	hash, err := fileutils.HashFile(source)
	require.NoError(t, err)

	scanService := scans.NewService(db)
	scan := &models.Scan{RootPath: srcDir, Status: models.ScanStatusCompleted}
	require.NoError(t, scanService.CreateScan(ctx, scan))

	target := filepath.Join(outDir, "Dune.epub")
	planService := plans.NewService(db)
	plan := &models.Plan{
		ScanID:         scan.ID,
		OutputRoot:     outDir,
		Status:         models.PlanStatusReady,
		OperationCount: 1,
		Operations: []*models.PlannedOperation{{
			Type:       models.OperationTypeMove,
			SourcePath: source,
			TargetPath: target,
			SourceHash: &hash,
		}},
	}
	require.NoError(t, planService.CreatePlan(ctx, plan))

	job := &models.Job{
		Type:       models.JobTypeApplyPlan,
		Status:     models.JobStatusInProgress,
		DataParsed: &models.JobApplyPlanData{PlanID: plan.ID},
	}
	require.NoError(t, w.ProcessApplyPlanJob(ctx, job))

	assert.NoFileExists(t, source)
	assert.FileExists(t, target)

	saved, err := planService.RetrievePlan(ctx, plans.RetrievePlanOptions{ID: &plan.ID})
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusCompleted, saved.Status)
}

func TestProcessUnknownJobData(t *testing.T) {
	db := newTestDB(t)
	w, _ := newTestWorker(t, db)

	err := w.ProcessApplyPlanJob(context.Background(), &models.Job{Type: models.JobTypeApplyPlan})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected data payload")
}
