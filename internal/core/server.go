package core

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xint-dev/xint/internal/budget"
	"github.com/xint-dev/xint/internal/packageapi"
	"github.com/xint-dev/xint/internal/policy"
	"github.com/xint-dev/xint/internal/reliability"
	"github.com/xint-dev/xint/internal/template"
	"github.com/xint-dev/xint/internal/tools"
	"github.com/xint-dev/xint/pkg/metrics"
)

type (
	// PackageAPI is the subset of the package API client used by tools
	PackageAPI interface {
		Create(ctx context.Context, req packageapi.CreateRequest) (json.RawMessage, error)
		Status(ctx context.Context, packageID string) (json.RawMessage, error)
		Query(ctx context.Context, req packageapi.QueryRequest) (json.RawMessage, error)
		Refresh(ctx context.Context, packageID, reason string) (json.RawMessage, error)
		Search(ctx context.Context, query string, limit uint64) (json.RawMessage, error)
		Publish(ctx context.Context, packageID string, snapshotVersion uint64) (json.RawMessage, error)
	}

	// WebhookValidator admits callback URLs and returns their canonical form
	WebhookValidator interface {
		Validate(rawURL string) (string, error)
	}

	// Deps are the collaborators of a Server. Metrics may be nil.
	Deps struct {
		Policy   *policy.Gate
		Budget   *budget.Gate
		Tracker  budget.Tracker
		Recorder reliability.Recorder
		Packages PackageAPI
		Webhooks WebhookValidator
		Metrics  *metrics.Metrics
	}

	// Server answers MCP messages for one session
	Server struct {
		logger      *zap.Logger
		sessionID   string
		policy      *policy.Gate
		budget      *budget.Gate
		tracker     budget.Tracker
		recorder    reliability.Recorder
		packages    PackageAPI
		webhooks    WebhookValidator
		metrics     *metrics.Metrics
		renderer    *template.Renderer
		handlers    map[tools.Name]toolHandler
		initialized atomic.Bool
		now         func() time.Time
	}
)

// NewServer creates a new MCP server
func NewServer(logger *zap.Logger, deps Deps) *Server {
	s := &Server{
		logger:    logger.Named("core"),
		sessionID: uuid.NewString(),
		policy:    deps.Policy,
		budget:    deps.Budget,
		tracker:   deps.Tracker,
		recorder:  deps.Recorder,
		packages:  deps.Packages,
		webhooks:  deps.Webhooks,
		metrics:   deps.Metrics,
		renderer: template.NewRenderer(map[string]any{
			"usd": budget.FormatUSD,
		}),
		now: time.Now,
	}
	s.handlers = s.toolHandlers()
	for _, tmpl := range toolTemplates {
		s.renderer.MustParse(tmpl)
	}
	s.logger.Debug("server created",
		zap.String("session_id", s.sessionID),
		zap.String("policy_mode", s.policy.Mode().String()),
		zap.Bool("budget_guard", s.budget.Enforced()))
	return s
}

// SessionID identifies this server instance in logs and spans
func (s *Server) SessionID() string {
	return s.sessionID
}

// Initialized reports whether the client has sent initialize
func (s *Server) Initialized() bool {
	return s.initialized.Load()
}
