package budget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xint-dev/xint/pkg/utils"
)

// costsFile is the on-disk layout of the file tracker
type costsFile struct {
	DailyLimitUSD *float64 `json:"daily_limit_usd,omitempty"`
	Entries       []Entry  `json:"entries"`
}

// FileTracker keeps spend entries in a JSON file. Writes go through a
// temporary file and rename so readers never see a partial file.
type FileTracker struct {
	logger       *zap.Logger
	path         string
	defaultLimit float64
	now          func() time.Time
	mu           sync.Mutex
}

var _ Tracker = (*FileTracker)(nil)

func NewFileTracker(logger *zap.Logger, path string, defaultLimit float64) *FileTracker {
	return &FileTracker{
		logger:       logger.Named("budget.file"),
		path:         path,
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
}

func (t *FileTracker) Check(_ context.Context) (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := t.load()
	if err != nil {
		return Snapshot{}, err
	}
	since := DayStart(t.now())
	var spent float64
	for _, e := range data.Entries {
		if !e.At.Before(since) {
			spent += e.CostUSD
		}
	}
	return NewSnapshot(spent, t.limit(data)), nil
}

func (t *FileTracker) Spend(_ context.Context, e Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := t.load()
	if err != nil {
		return err
	}
	if e.At.IsZero() {
		e.At = t.now()
	}
	data.Entries = append(data.Entries, e)
	return t.save(data)
}

func (t *FileTracker) SetLimit(_ context.Context, limitUSD float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := t.load()
	if err != nil {
		return err
	}
	data.DailyLimitUSD = &limitUSD
	return t.save(data)
}

func (t *FileTracker) Summary(_ context.Context, p Period) (Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := t.load()
	if err != nil {
		return Summary{}, err
	}
	now := t.now()
	since := p.Since(now)
	today := DayStart(now)
	sum := Summary{Period: p, ByOperation: map[string]OperationTotal{}}
	var spentToday float64
	for _, e := range data.Entries {
		if !e.At.Before(today) {
			spentToday += e.CostUSD
		}
		if !e.At.Before(since) {
			sum.add(e.Operation, 1, e.CostUSD)
		}
	}
	sum.Today = NewSnapshot(spentToday, t.limit(data))
	return sum, nil
}

func (t *FileTracker) Close() error { return nil }

func (t *FileTracker) limit(data *costsFile) float64 {
	if data.DailyLimitUSD != nil {
		return *data.DailyLimitUSD
	}
	return t.defaultLimit
}

func (t *FileTracker) load() (*costsFile, error) {
	raw, err := os.ReadFile(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &costsFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read costs file: %w", err)
	}
	var data costsFile
	if len(raw) == 0 {
		return &data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse costs file %s: %w", t.path, err)
	}
	return &data, nil
}

func (t *FileTracker) save(data *costsFile) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(t.path, raw)
}
