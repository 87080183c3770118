package reliability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xint-dev/xint/pkg/utils"
)

// OperationStats aggregates results of one operation
type OperationStats struct {
	Total     int            `json:"total"`
	Success   int            `json:"success"`
	Failure   int            `json:"failure"`
	Fallback  int            `json:"fallback"`
	TotalMs   int64          `json:"total_ms"`
	LastRunAt time.Time      `json:"last_run_at"`
	LastOK    bool           `json:"last_ok"`
	Modes     map[string]int `json:"modes,omitempty"`
}

// SuccessRate is the share of successful runs in [0, 1]
func (s OperationStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Total)
}

// AvgMs is the mean elapsed time per run
func (s OperationStats) AvgMs() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.TotalMs) / float64(s.Total)
}

type reliabilityFile struct {
	Operations map[string]*OperationStats `json:"operations"`
}

// FileRecorder aggregates results into a JSON file
type FileRecorder struct {
	logger *zap.Logger
	path   string
	now    func() time.Time
	mu     sync.Mutex
}

var _ Recorder = (*FileRecorder)(nil)

func NewFileRecorder(logger *zap.Logger, path string) *FileRecorder {
	return &FileRecorder{
		logger: logger.Named("reliability.file"),
		path:   path,
		now:    time.Now,
	}
}

func (r *FileRecorder) Record(_ context.Context, res Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.load()
	if err != nil {
		return err
	}
	st, ok := data.Operations[res.Operation]
	if !ok {
		st = &OperationStats{}
		data.Operations[res.Operation] = st
	}
	st.Total++
	if res.Success {
		st.Success++
	} else {
		st.Failure++
	}
	if res.Fallback {
		st.Fallback++
	}
	st.TotalMs += res.ElapsedMs
	st.LastOK = res.Success
	st.LastRunAt = res.At
	if st.LastRunAt.IsZero() {
		st.LastRunAt = r.now()
	}
	if res.Mode != "" {
		if st.Modes == nil {
			st.Modes = make(map[string]int)
		}
		st.Modes[res.Mode]++
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(r.path, raw); err != nil {
		return fmt.Errorf("write reliability file: %w", err)
	}
	return nil
}

// NamedStats pairs an operation with its stats
type NamedStats struct {
	Operation string
	OperationStats
}

// Report returns the stats of every operation sorted by name
func (r *FileRecorder) Report(_ context.Context) ([]NamedStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]NamedStats, 0, len(data.Operations))
	for op, st := range data.Operations {
		out = append(out, NamedStats{Operation: op, OperationStats: *st})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out, nil
}

func (r *FileRecorder) load() (*reliabilityFile, error) {
	data := &reliabilityFile{Operations: map[string]*OperationStats{}}
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read reliability file: %w", err)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("parse reliability file %s: %w", r.path, err)
	}
	if data.Operations == nil {
		data.Operations = map[string]*OperationStats{}
	}
	return data, nil
}
