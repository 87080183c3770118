// Package budget tracks daily spend and refuses guarded tool calls once the
// daily limit is used up.
package budget

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xint-dev/xint/internal/common/cnst"
)

// Snapshot is the budget state at one instant
type Snapshot struct {
	Spent     float64 `json:"spent_usd"`
	Limit     float64 `json:"limit_usd"`
	Remaining float64 `json:"remaining_usd"`
	Allowed   bool    `json:"allowed"`
}

// NewSnapshot derives remaining and allowed from spent and limit
func NewSnapshot(spent, limit float64) Snapshot {
	remaining := limit - spent
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		Spent:     spent,
		Limit:     limit,
		Remaining: remaining,
		Allowed:   spent < limit,
	}
}

// Entry is one spend event
type Entry struct {
	Operation string    `json:"operation"`
	CostUSD   float64   `json:"cost_usd"`
	At        time.Time `json:"timestamp"`
}

// Period selects the window of a Summary
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod accepts today, week, month and all. Empty means today.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodToday, nil
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q (expected today, week, month or all)", cnst.ErrInvalidPeriod, s)
}

// Since returns the first instant covered by p. The zero time means no bound.
func (p Period) Since(now time.Time) time.Time {
	today := DayStart(now)
	switch p {
	case PeriodWeek:
		return today.AddDate(0, 0, -6)
	case PeriodMonth:
		return today.AddDate(0, 0, -29)
	case PeriodAll:
		return time.Time{}
	}
	return today
}

// OperationTotal aggregates spend of one operation
type OperationTotal struct {
	Calls   int     `json:"calls"`
	CostUSD float64 `json:"cost_usd"`
}

// Summary reports spend over a period next to today's budget state
type Summary struct {
	Period      Period                    `json:"period"`
	TotalUSD    float64                   `json:"total_usd"`
	Calls       int                       `json:"calls"`
	ByOperation map[string]OperationTotal `json:"by_operation"`
	Today       Snapshot                  `json:"today"`
}

func (s *Summary) add(operation string, calls int, cost float64) {
	if s.ByOperation == nil {
		s.ByOperation = make(map[string]OperationTotal)
	}
	t := s.ByOperation[operation]
	t.Calls += calls
	t.CostUSD += cost
	s.ByOperation[operation] = t
	s.Calls += calls
	s.TotalUSD += cost
}

// Tracker is the external spend ledger the gate consults
type Tracker interface {
	// Check computes today's snapshot from current state
	Check(ctx context.Context) (Snapshot, error)
	// Spend appends a spend entry
	Spend(ctx context.Context, e Entry) error
	// SetLimit overrides the configured daily limit
	SetLimit(ctx context.Context, limitUSD float64) error
	// Summary aggregates spend over a period
	Summary(ctx context.Context, p Period) (Summary, error)
	Close() error
}

// DayStart returns midnight of t's day in t's location
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var usdPrinter = message.NewPrinter(language.English)

// FormatUSD renders an amount as dollars with two decimals and grouping
func FormatUSD(v float64) string {
	return usdPrinter.Sprintf("$%.2f", v)
}
