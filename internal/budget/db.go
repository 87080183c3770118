package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/xint-dev/xint/internal/common/cnst"
)

// CostEntry is one recorded spend row
type CostEntry struct {
	ID        uint      `gorm:"primaryKey"`
	Operation string    `gorm:"size:128;index"`
	CostUSD   float64   `gorm:"column:cost_usd"`
	CreatedAt time.Time `gorm:"index"`
}

func (CostEntry) TableName() string { return "cost_entries" }

// BudgetSetting stores tracker overrides such as the daily limit
type BudgetSetting struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value float64
}

func (BudgetSetting) TableName() string { return "budget_settings" }

const settingDailyLimit = "daily_limit_usd"

// DatabaseType represents the supported database types
type DatabaseType string

const (
	PostgreSQL DatabaseType = "postgres"
	MySQL      DatabaseType = "mysql"
	SQLite     DatabaseType = "sqlite"
)

// DBTracker keeps spend entries in a SQL database
type DBTracker struct {
	logger       *zap.Logger
	db           *gorm.DB
	defaultLimit float64
	now          func() time.Time
}

var _ Tracker = (*DBTracker)(nil)

// NewDBTracker opens the database and migrates the budget tables
func NewDBTracker(logger *zap.Logger, dbType DatabaseType, dsn string, defaultLimit float64) (*DBTracker, error) {
	logger = logger.Named("budget.db")

	var dialector gorm.Dialector
	switch dbType {
	case PostgreSQL:
		dialector = postgres.Open(dsn)
	case MySQL:
		dialector = mysql.Open(dsn)
	case SQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %s", cnst.ErrUnknownDatabaseType, dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto migrate the schema
	if err := db.AutoMigrate(&CostEntry{}, &BudgetSetting{}); err != nil {
		return nil, err
	}

	return &DBTracker{
		logger:       logger,
		db:           db,
		defaultLimit: defaultLimit,
		now:          time.Now,
	}, nil
}

func (t *DBTracker) Check(ctx context.Context) (Snapshot, error) {
	limit, err := t.limit(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	spent, err := t.spentSince(ctx, DayStart(t.now()))
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(spent, limit), nil
}

func (t *DBTracker) Spend(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = t.now()
	}
	row := &CostEntry{
		Operation: e.Operation,
		CostUSD:   e.CostUSD,
		CreatedAt: e.At.UTC(),
	}
	return t.db.WithContext(ctx).Create(row).Error
}

func (t *DBTracker) SetLimit(ctx context.Context, limitUSD float64) error {
	return t.db.WithContext(ctx).Save(&BudgetSetting{Name: settingDailyLimit, Value: limitUSD}).Error
}

func (t *DBTracker) Summary(ctx context.Context, p Period) (Summary, error) {
	snap, err := t.Check(ctx)
	if err != nil {
		return Summary{}, err
	}

	var rows []struct {
		Operation string
		Calls     int
		CostUSD   float64
	}
	q := t.db.WithContext(ctx).Model(&CostEntry{})
	if since := p.Since(t.now()); !since.IsZero() {
		q = q.Where("created_at >= ?", since.UTC())
	}
	err = q.Select("operation, COUNT(*) AS calls, COALESCE(SUM(cost_usd), 0) AS cost_usd").
		Group("operation").
		Scan(&rows).Error
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Period: p, ByOperation: map[string]OperationTotal{}, Today: snap}
	for _, r := range rows {
		sum.add(r.Operation, r.Calls, r.CostUSD)
	}
	return sum, nil
}

func (t *DBTracker) Close() error {
	sqlDB, err := t.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (t *DBTracker) limit(ctx context.Context) (float64, error) {
	var s BudgetSetting
	err := t.db.WithContext(ctx).Where("name = ?", settingDailyLimit).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t.defaultLimit, nil
	}
	if err != nil {
		return 0, err
	}
	return s.Value, nil
}

func (t *DBTracker) spentSince(ctx context.Context, since time.Time) (float64, error) {
	var spent float64
	err := t.db.WithContext(ctx).Model(&CostEntry{}).
		Where("created_at >= ?", since.UTC()).
		Select("COALESCE(SUM(cost_usd), 0)").
		Scan(&spent).Error
	return spent, err
}
