package budget

import (
	"context"

	"go.uber.org/zap"

	"github.com/xint-dev/xint/internal/common/errorx"
	"github.com/xint-dev/xint/internal/tools"
)

// guarded lists tools that spend money upstream. Listing, cache and
// bookkeeping tools are exempt.
var guarded = map[tools.Name]struct{}{
	tools.Search:            {},
	tools.Profile:           {},
	tools.Thread:            {},
	tools.Tweet:             {},
	tools.Trends:            {},
	tools.XSearch:           {},
	tools.CollectionsSearch: {},
	tools.Analyze:           {},
	tools.Article:           {},
	tools.Bookmarks:         {},
	tools.Watch:             {},
	tools.Diff:              {},
	tools.Report:            {},
	tools.Sentiment:         {},
	tools.PackageCreate:     {},
	tools.PackageQuery:      {},
	tools.PackageRefresh:    {},
	tools.PackageSearch:     {},
	tools.PackagePublish:    {},
}

// Guarded reports whether calls to tool are budget checked
func Guarded(tool tools.Name) bool {
	_, ok := guarded[tool]
	return ok
}

// Gate refuses guarded calls once the daily budget is spent. The check is
// not a reservation: concurrent calls may all pass before any cost is
// recorded.
type Gate struct {
	logger  *zap.Logger
	tracker Tracker
	enforce bool
}

func NewGate(logger *zap.Logger, tracker Tracker, enforce bool) *Gate {
	return &Gate{
		logger:  logger.Named("budget.gate"),
		tracker: tracker,
		enforce: enforce,
	}
}

// Enforced reports whether the gate checks anything at all
func (g *Gate) Enforced() bool {
	return g.enforce
}

// Check returns nil when tool may run
func (g *Gate) Check(ctx context.Context, tool tools.Name) error {
	if !g.enforce || !Guarded(tool) {
		return nil
	}
	snap, err := g.tracker.Check(ctx)
	if err != nil {
		g.logger.Warn("budget check failed", zap.String("tool", tool.String()), zap.Error(err))
		return errorx.Wrap(errorx.KindBudgetUnavailable, err, "Budget check failed: %v", err)
	}
	if snap.Allowed {
		return nil
	}
	return errorx.NewBudgetDenied(tool.String(), snap.Spent, snap.Limit, snap.Remaining)
}
