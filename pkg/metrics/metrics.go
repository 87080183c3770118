package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xint-dev/xint/internal/common/config"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Metrics struct {
	registry     *prometheus.Registry
	namespace    string
	httpReqCnt   *prometheus.CounterVec
	httpDur      *prometheus.HistogramVec
	httpInfl     *prometheus.GaugeVec
	mcpReqCnt    *prometheus.CounterVec
	mcpReqDur    *prometheus.HistogramVec
	mcpReqInfl   *prometheus.GaugeVec
	toolExecCnt  *prometheus.CounterVec
	toolExecDur  *prometheus.HistogramVec
	toolExecInfl *prometheus.GaugeVec
	gateDenials  *prometheus.CounterVec
	commandCnt   *prometheus.CounterVec
	commandDur   *prometheus.HistogramVec
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	r := prometheus.NewRegistry()
	// Register standard process and Go collectors
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	mcpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "mcp_requests_total"}, []string{"method"})
	mcpReqDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "mcp_request_duration_seconds", Buckets: buckets}, []string{"method"})
	mcpReqInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "mcp_requests_inflight"}, []string{"method"})
	r.MustRegister(mcpReqDur, mcpReqCnt, mcpReqInfl)

	toolExecCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "tool_execution_total"}, []string{"tool_name", "status"})
	toolExecDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "tool_execution_duration_seconds", Buckets: buckets}, []string{"tool_name", "status"})
	toolExecInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "tool_execution_inflight_requests"}, []string{"tool_name"})
	r.MustRegister(toolExecCnt, toolExecDur, toolExecInfl)

	gateDenials := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "gate_denials_total"}, []string{"gate", "tool_name"})
	r.MustRegister(gateDenials)

	commandCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "command_results_total"}, []string{"operation", "mode", "status", "fallback"})
	commandDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "command_duration_seconds", Buckets: buckets}, []string{"operation", "mode"})
	r.MustRegister(commandCnt, commandDur)

	return &Metrics{
		registry:     r,
		namespace:    ns,
		httpReqCnt:   httpReqCnt,
		httpDur:      httpDur,
		httpInfl:     httpInfl,
		mcpReqCnt:    mcpReqCnt,
		mcpReqDur:    mcpReqDur,
		mcpReqInfl:   mcpReqInfl,
		toolExecCnt:  toolExecCnt,
		toolExecDur:  toolExecDur,
		toolExecInfl: toolExecInfl,
		gateDenials:  gateDenials,
		commandCnt:   commandCnt,
		commandDur:   commandDur,
	}
}

func (m *Metrics) McpReqStart(method string) {
	m.mcpReqInfl.WithLabelValues(method).Inc()
}

func (m *Metrics) McpReqDone(method string, since time.Time) {
	m.mcpReqCnt.WithLabelValues(method).Inc()
	m.mcpReqDur.WithLabelValues(method).Observe(time.Since(since).Seconds())
	m.mcpReqInfl.WithLabelValues(method).Dec()
}

func (m *Metrics) ToolExecStart(toolName string) {
	m.toolExecInfl.WithLabelValues(toolName).Inc()
}

func (m *Metrics) ToolExecDone(toolName string, since time.Time, status string) {
	m.toolExecCnt.WithLabelValues(toolName, status).Inc()
	m.toolExecDur.WithLabelValues(toolName, status).Observe(time.Since(since).Seconds())
	m.toolExecInfl.WithLabelValues(toolName).Dec()
}

// GateDenied counts a call refused by the policy or budget gate
func (m *Metrics) GateDenied(gate, toolName string) {
	m.gateDenials.WithLabelValues(gate, toolName).Inc()
}

// ObserveCommand records the outcome of one recorded operation
func (m *Metrics) ObserveCommand(operation, mode string, success, fallback bool, elapsed time.Duration) {
	status := StatusSuccess
	if !success {
		status = StatusError
	}
	m.commandCnt.WithLabelValues(operation, mode, status, strconv.FormatBool(fallback)).Inc()
	m.commandDur.WithLabelValues(operation, mode).Observe(elapsed.Seconds())
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
