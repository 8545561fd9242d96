package plans

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelforg/shelforg/pkg/audit"
	"github.com/shelforg/shelforg/pkg/models"
)

func TestExecutePlan(t *testing.T) {
	db := newTestDB(t)
	executor := NewExecutor(db)
	svc := NewService(db)
	ctx := context.Background()

	srcDir := t.TempDir()
	outDir := t.TempDir()

	scan := seedScan(t, db)
	source := filepath.Join(srcDir, "Dune.epub")
	hash := writeSourceFile(t, source)
	file := seedFile(t, db, &models.MediaFile{
		ScanID:    scan.ID,
		Filepath:  source,
		Extension: ".epub",
		MediaType: models.MediaTypeEbook,
	})

	target := filepath.Join(outDir, "Dune.epub")
	plan := newTestPlan(scan.ID, &models.PlannedOperation{
		MediaFileID: &file.ID,
		Type:        models.OperationTypeMove,
		SourcePath:  source,
		TargetPath:  target,
		SourceHash:  &hash,
	})
	require.NoError(t, svc.CreatePlan(ctx, plan))

	result, err := executor.ExecutePlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Completed)
	assert.Equal(t, 0, result.Failed)

	assert.NoFileExists(t, source)
	assert.FileExists(t, target)

	fetched, err := svc.RetrievePlan(ctx, RetrievePlanOptions{ID: &plan.ID, IncludeOperations: true})
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusCompleted, fetched.Status)
	assert.Equal(t, 1, fetched.CompletedCount)
	assert.Equal(t, models.OperationStatusCompleted, fetched.Operations[0].Status)

	// The moved file is now applied.
	applied := &models.MediaFile{}
	require.NoError(t, db.NewSelect().Model(applied).Where("id = ?", file.ID).Scan(ctx))
	assert.Equal(t, models.MediaFileStatusApplied, applied.Status)

	entries, err := audit.NewService(db).ListEntries(ctx, audit.ListEntriesOptions{PlanID: &plan.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.OperationTypeMove, entries[0].Action)
	assert.Equal(t, models.AuditResultSuccess, entries[0].Result)
}

func TestExecutePlanMissingSource(t *testing.T) {
	db := newTestDB(t)
	executor := NewExecutor(db)
	svc := NewService(db)
	ctx := context.Background()

	srcDir := t.TempDir()
	outDir := t.TempDir()

	scan := seedScan(t, db)
	goodSource := filepath.Join(srcDir, "good.epub")
	goodHash := writeSourceFile(t, goodSource)
	goneSource := filepath.Join(srcDir, "gone.epub")

	plan := newTestPlan(scan.ID,
		&models.PlannedOperation{
			Type:       models.OperationTypeMove,
			SourcePath: goneSource,
			TargetPath: filepath.Join(outDir, "gone.epub"),
		},
		&models.PlannedOperation{
			Type:       models.OperationTypeMove,
			SourcePath: goodSource,
			TargetPath: filepath.Join(outDir, "good.epub"),
			SourceHash: &goodHash,
		},
	)
	require.NoError(t, svc.CreatePlan(ctx, plan))

	result, err := executor.ExecutePlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Completed)
	assert.Equal(t, 1, result.Failed)

	// The failure doesn't stop the remaining operations.
	assert.FileExists(t, filepath.Join(outDir, "good.epub"))

	fetched, err := svc.RetrievePlan(ctx, RetrievePlanOptions{ID: &plan.ID, IncludeOperations: true})
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusFailed, fetched.Status)
	assert.Equal(t, 1, fetched.CompletedCount)

	failedOp := fetched.Operations[0]
	assert.Equal(t, models.OperationStatusFailed, failedOp.Status)
	require.NotNil(t, failedOp.ErrorMessage)
	assert.Contains(t, *failedOp.ErrorMessage, "File does not exist")

	entries, err := audit.NewService(db).ListEntries(ctx, audit.ListEntriesOptions{
		PlanID:  &plan.ID,
		Results: []string{models.AuditResultFailure},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "verify", entries[0].Action)
}

func TestExecutePlanHashMismatch(t *testing.T) {
	db := newTestDB(t)
	executor := NewExecutor(db)
	svc := NewService(db)
	ctx := context.Background()

	srcDir := t.TempDir()
	outDir := t.TempDir()

	scan := seedScan(t, db)
	source := filepath.Join(srcDir, "changed.epub")
	writeSourceFile(t, source)
	staleHash := "0000000000000000000000000000000000000000000000000000000000000000"

	plan := newTestPlan(scan.ID, &models.PlannedOperation{
		Type:       models.OperationTypeMove,
		SourcePath: source,
		TargetPath: filepath.Join(outDir, "changed.epub"),
		SourceHash: &staleHash,
	})
	require.NoError(t, svc.CreatePlan(ctx, plan))

	result, err := executor.ExecutePlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)

	// The file stays put when verification fails.
	assert.FileExists(t, source)

	fetched, err := svc.RetrievePlan(ctx, RetrievePlanOptions{ID: &plan.ID, IncludeOperations: true})
	require.NoError(t, err)
	require.NotNil(t, fetched.Operations[0].ErrorMessage)
	assert.Contains(t, *fetched.Operations[0].ErrorMessage, "Hash mismatch")
}

func TestExecutePlanNotReady(t *testing.T) {
	db := newTestDB(t)
	executor := NewExecutor(db)
	svc := NewService(db)
	ctx := context.Background()

	scan := seedScan(t, db)
	plan := newTestPlan(scan.ID, &models.PlannedOperation{
		Type:       models.OperationTypeMove,
		SourcePath: "/library/a.mp3",
		TargetPath: "/organized/a.mp3",
	})
	plan.Status = models.PlanStatusDraft
	require.NoError(t, svc.CreatePlan(ctx, plan))

	_, err := executor.ExecutePlan(ctx, plan.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready")
}

func TestExecutePlanCopyThenDelete(t *testing.T) {
	db := newTestDB(t)
	executor := NewExecutor(db)
	svc := NewService(db)
	ctx := context.Background()

	srcDir := t.TempDir()
	outDir := t.TempDir()

	scan := seedScan(t, db)
	source := filepath.Join(srcDir, "book.m4b")
	hash := writeSourceFile(t, source)
	contents, err := os.ReadFile(source)
	require.NoError(t, err)

	target := filepath.Join(outDir, "book.m4b")
	plan := newTestPlan(scan.ID, &models.PlannedOperation{
		Type:       models.OperationTypeCopyDelete,
		SourcePath: source,
		TargetPath: target,
		SourceHash: &hash,
	})
	require.NoError(t, svc.CreatePlan(ctx, plan))

	result, err := executor.ExecutePlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Completed)

	assert.NoFileExists(t, source)
	moved, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, contents, moved)
}
