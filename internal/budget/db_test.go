package budget

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xint-dev/xint/internal/common/cnst"
	"github.com/xint-dev/xint/internal/common/config"
)

func newTestDBTracker(t *testing.T) *DBTracker {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "budget.db")
	tr, err := NewDBTracker(zap.NewNop(), SQLite, dsn, 1)
	require.NoError(t, err)
	tr.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestDBTracker_SpendAndCheck(t *testing.T) {
	ctx := context.Background()
	tr := newTestDBTracker(t)

	snap, err := tr.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, NewSnapshot(0, 1), snap)

	require.NoError(t, tr.Spend(ctx, Entry{Operation: "search", CostUSD: 0.6}))
	require.NoError(t, tr.Spend(ctx, Entry{Operation: "search", CostUSD: 3, At: fixedNow.Add(-24 * time.Hour)}))

	snap, err = tr.Check(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, snap.Spent, 1e-9)
	assert.True(t, snap.Allowed)

	require.NoError(t, tr.Spend(ctx, Entry{Operation: "analyze", CostUSD: 0.6}))
	snap, err = tr.Check(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Allowed)
}

func TestDBTracker_SetLimitUpserts(t *testing.T) {
	ctx := context.Background()
	tr := newTestDBTracker(t)

	require.NoError(t, tr.SetLimit(ctx, 3))
	require.NoError(t, tr.SetLimit(ctx, 4))

	snap, err := tr.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4.0, snap.Limit)

	var n int64
	require.NoError(t, tr.db.Model(&BudgetSetting{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestDBTracker_Summary(t *testing.T) {
	ctx := context.Background()
	tr := newTestDBTracker(t)

	require.NoError(t, tr.Spend(ctx, Entry{Operation: "search", CostUSD: 0.1}))
	require.NoError(t, tr.Spend(ctx, Entry{Operation: "search", CostUSD: 0.2, At: fixedNow.AddDate(0, 0, -2)}))
	require.NoError(t, tr.Spend(ctx, Entry{Operation: "report", CostUSD: 0.5, At: fixedNow.AddDate(0, 0, -60)}))

	week, err := tr.Summary(ctx, PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, 2, week.Calls)
	assert.InDelta(t, 0.3, week.TotalUSD, 1e-9)
	assert.NotContains(t, week.ByOperation, "report")

	all, err := tr.Summary(ctx, PeriodAll)
	require.NoError(t, err)
	assert.Equal(t, 3, all.Calls)
	assert.Equal(t, 1, all.ByOperation["report"].Calls)
}

func TestNewDBTracker_InvalidType(t *testing.T) {
	_, err := NewDBTracker(zap.NewNop(), DatabaseType("oracle"), "", 1)
	assert.ErrorIs(t, err, cnst.ErrUnknownDatabaseType)
}

func TestNewTracker(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tr, err := NewTracker(ctx, zap.NewNop(), config.BudgetConfig{
		Storage: config.BudgetStorageConfig{
			Type: "file",
			File: config.FileStorageConfig{Path: filepath.Join(dir, "costs.json")},
		},
	})
	require.NoError(t, err)
	assert.IsType(t, &FileTracker{}, tr)
	snap, err := tr.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, cnst.DefaultDailyBudgetUSD, snap.Limit)

	tr, err = NewTracker(ctx, zap.NewNop(), config.BudgetConfig{
		DailyLimitUSD: 2,
		Storage: config.BudgetStorageConfig{
			Type: "db",
			Database: config.DatabaseConfig{
				Type:   "sqlite",
				DBName: filepath.Join(dir, "nested", "xint.db"),
			},
		},
	})
	require.NoError(t, err)
	assert.IsType(t, &DBTracker{}, tr)
	require.NoError(t, tr.Close())

	_, err = NewTracker(ctx, zap.NewNop(), config.BudgetConfig{
		Storage: config.BudgetStorageConfig{Type: "s3"},
	})
	assert.ErrorIs(t, err, cnst.ErrUnknownStorageType)
}
