package audit

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/shelforg/shelforg/pkg/migrations"
	"github.com/shelforg/shelforg/pkg/models"
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

func strPtr(s string) *string {
	return &s
}

func TestRecordAndList(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	entries := []*models.AuditLog{
		{PlanID: "plan-1", Action: models.OperationTypeMove, SourcePath: "/a", TargetPath: "/b", Result: models.AuditResultSuccess},
		{PlanID: "plan-1", Action: models.OperationTypeMove, SourcePath: "/c", TargetPath: "/d", Result: models.AuditResultFailure, ErrorMessage: strPtr("source missing")},
		{PlanID: "plan-2", Action: "rollback", SourcePath: "/b", TargetPath: "/a", Result: models.AuditResultSuccess},
	}
	for _, entry := range entries {
		require.NoError(t, svc.Record(ctx, entry))
		assert.NotZero(t, entry.ID)
	}

	t.Run("filters by plan", func(tt *testing.T) {
		planID := "plan-1"
		got, total, err := svc.ListEntriesWithTotal(ctx, ListEntriesOptions{PlanID: &planID})
		require.NoError(tt, err)
		assert.Equal(tt, 2, total)
		require.Len(tt, got, 2)
	})

	t.Run("filters by result", func(tt *testing.T) {
		got, total, err := svc.ListEntriesWithTotal(ctx, ListEntriesOptions{Results: []string{models.AuditResultFailure}})
		require.NoError(tt, err)
		assert.Equal(tt, 1, total)
		require.Len(tt, got, 1)
		require.NotNil(tt, got[0].ErrorMessage)
		assert.Equal(tt, "source missing", *got[0].ErrorMessage)
	})
}
