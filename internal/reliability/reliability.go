// Package reliability records the outcome of every executed operation.
package reliability

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xint-dev/xint/internal/common/config"
	"github.com/xint-dev/xint/pkg/metrics"
)

// Result is the outcome of one operation
type Result struct {
	Operation string
	Success   bool
	ElapsedMs int64
	Mode      string
	Fallback  bool
	At        time.Time
}

// Recorder persists results. Callers treat a failure as non-fatal.
type Recorder interface {
	Record(ctx context.Context, r Result) error
}

// MetricsRecorder forwards results to Prometheus
type MetricsRecorder struct {
	m *metrics.Metrics
}

func NewMetricsRecorder(m *metrics.Metrics) *MetricsRecorder {
	return &MetricsRecorder{m: m}
}

func (r *MetricsRecorder) Record(_ context.Context, res Result) error {
	r.m.ObserveCommand(res.Operation, res.Mode, res.Success, res.Fallback, time.Duration(res.ElapsedMs)*time.Millisecond)
	return nil
}

type multiRecorder []Recorder

// Multi fans a result out to every recorder and joins their errors
func Multi(recorders ...Recorder) Recorder {
	var out multiRecorder
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multiRecorder) Record(ctx context.Context, res Result) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewRecorder builds the recorder chain from configuration. m may be nil.
func NewRecorder(logger *zap.Logger, cfg config.ReliabilityConfig, m *metrics.Metrics) Recorder {
	var recorders []Recorder
	if cfg.Enabled && cfg.Path != "" {
		recorders = append(recorders, NewFileRecorder(logger, cfg.Path))
	}
	if m != nil {
		recorders = append(recorders, NewMetricsRecorder(m))
	}
	return Multi(recorders...)
}
