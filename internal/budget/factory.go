package budget

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/xint-dev/xint/internal/common/cnst"
	"github.com/xint-dev/xint/internal/common/config"
)

// StorageType selects the Tracker implementation
type StorageType string

const (
	StorageFile  StorageType = "file"
	StorageRedis StorageType = "redis"
	StorageDB    StorageType = "db"
)

// NewTracker builds the tracker selected by cfg.Storage.Type
func NewTracker(ctx context.Context, logger *zap.Logger, cfg config.BudgetConfig) (Tracker, error) {
	limit := cfg.DailyLimitUSD
	if limit <= 0 {
		limit = cnst.DefaultDailyBudgetUSD
	}

	switch StorageType(cfg.Storage.Type) {
	case StorageFile, "":
		return NewFileTracker(logger, cfg.Storage.File.Path, limit), nil
	case StorageRedis:
		return NewRedisTracker(ctx, logger, cfg.Storage.Redis, limit)
	case StorageDB:
		db := cfg.Storage.Database
		if DatabaseType(db.Type) == SQLite {
			if err := os.MkdirAll(filepath.Dir(db.DBName), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		return NewDBTracker(logger, DatabaseType(db.Type), db.GetDSN(), limit)
	default:
		return nil, fmt.Errorf("%w: %s", cnst.ErrUnknownStorageType, cfg.Storage.Type)
	}
}
