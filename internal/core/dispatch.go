package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xint-dev/xint/internal/common/cnst"
	"github.com/xint-dev/xint/internal/common/errorx"
	"github.com/xint-dev/xint/internal/reliability"
	"github.com/xint-dev/xint/internal/tools"
	"github.com/xint-dev/xint/pkg/mcp"
	"github.com/xint-dev/xint/pkg/metrics"
	apptrace "github.com/xint-dev/xint/pkg/trace"
	"github.com/xint-dev/xint/pkg/version"
)

// HandleMessage answers one JSON-RPC message. It returns nil for
// notifications. An error means the message could not be parsed far enough
// to build a response; the caller reports it without an id.
func (s *Server) HandleMessage(ctx context.Context, line []byte) ([]byte, error) {
	var probe json.RawMessage
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil, errorx.Wrap(errorx.KindProtocolParse, err, "Failed to parse JSON: %v", err)
	}
	root := gjson.ParseBytes(line)
	method := root.Get("method")
	if method.Type != gjson.String {
		return nil, errorx.New(errorx.KindProtocolParse, "Missing method field")
	}
	req := mcp.JSONRPCRequest{
		JSONRPC: mcp.JSPNRPCVersion,
		Method:  method.Str,
	}
	if id := root.Get("id"); id.Exists() {
		req.ID = json.RawMessage(id.Raw)
	}
	if params := root.Get("params"); params.Exists() {
		req.Params = json.RawMessage(params.Raw)
	}

	// Create a span per MCP method to group downstream work
	scope := apptrace.Tracer(cnst.TraceCore).
		Start(ctx, cnst.SpanMCPMethodPrefix+req.Method, oteltrace.WithSpanKind(oteltrace.SpanKindInternal)).
		WithAttrs(
			attribute.String(cnst.AttrMCPSessionID, s.sessionID),
			attribute.String("mcp.method", req.Method),
		)
	ctx = scope.Ctx
	defer scope.End()

	if s.metrics != nil {
		reqStartTime := time.Now()
		s.metrics.McpReqStart(req.Method)
		defer s.metrics.McpReqDone(req.Method, reqStartTime)
	}

	switch {
	case req.Method == mcp.Initialize:
		s.initialized.Store(true)
		return s.encode(mcp.NewResponse(req.ID, mcp.InitializedResult{
			ProtocolVersion: mcp.LatestProtocolVersion,
			ServerInfo: mcp.ImplementationSchema{
				Name:    cnst.ServerName,
				Version: version.Protocol(),
			},
		}))
	case req.IsNotification():
		return nil, nil
	case req.Method == mcp.Ping:
		return s.encode(mcp.NewResponse(req.ID, struct{}{}))
	case req.Method == mcp.ToolsList:
		return s.encode(mcp.NewResponse(req.ID, mcp.ListToolsResult{Tools: tools.Descriptors()}))
	case req.Method == mcp.ToolsCall:
		return s.handleToolsCall(ctx, req)
	default:
		s.logger.Debug("method not found", zap.String("method", req.Method))
		return s.encode(mcp.NewErrorResponse(req.ID, mcp.ErrorCodeMethodNotFound,
			fmt.Sprintf(mcp.MessageMethodNotFound, req.Method)))
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req mcp.JSONRPCRequest) ([]byte, error) {
	startedAt := time.Now()
	if req.Params == nil {
		return nil, errorx.New(errorx.KindProtocolParse, "Missing params")
	}
	params := gjson.ParseBytes(req.Params)
	name := params.Get("name")
	if !params.IsObject() || name.Type != gjson.String {
		return nil, errorx.New(errorx.KindProtocolParse, "Missing tool name")
	}
	args := newArguments("{}")
	if raw := params.Get("arguments"); raw.Exists() {
		args = newArguments(raw.Raw)
	}

	text, err := s.callTool(ctx, name.Str, args)
	s.record(ctx, name.Str, err == nil, time.Since(startedAt))
	if err != nil {
		return s.encode(mcp.NewErrorResponse(req.ID, mcp.ErrorCodeInternalError, errorx.RPCMessage(err)))
	}
	return s.encode(mcp.NewResponse(req.ID, mcp.CallToolResult{
		Content: []mcp.TextContent{mcp.NewTextContent(text)},
	}))
}

// callTool runs the policy gate, the budget gate and the handler in order
func (s *Server) callTool(ctx context.Context, name string, args arguments) (string, error) {
	tool := tools.Name(name)
	scope := apptrace.Tracer(cnst.TraceCore).
		Start(ctx, cnst.SpanToolExecute).
		WithAttrs(
			attribute.String(cnst.AttrMCPTool, name),
			attribute.String(cnst.AttrMCPPolicyMode, s.policy.Mode().String()),
		)
	ctx = scope.Ctx
	defer scope.End()

	status := metrics.StatusSuccess
	if s.metrics != nil {
		toolStartTime := time.Now()
		s.metrics.ToolExecStart(name)
		defer func() { s.metrics.ToolExecDone(name, toolStartTime, status) }()
	}

	text, err := s.gateAndRun(ctx, tool, args)
	if err != nil {
		status = metrics.StatusError
		scope.Fail(err, attribute.String(cnst.AttrErrorKind, string(errorx.KindOf(err))))
		s.logger.Info("tool call failed",
			zap.String("tool", name),
			zap.String("kind", string(errorx.KindOf(err))),
			zap.Error(err))
	}
	return text, err
}

func (s *Server) gateAndRun(ctx context.Context, tool tools.Name, args arguments) (string, error) {
	if err := s.policy.Check(tool); err != nil {
		s.gateDenied("policy", tool)
		return "", err
	}
	if err := s.budget.Check(ctx, tool); err != nil {
		s.gateDenied("budget", tool)
		return "", err
	}
	h, ok := s.handlers[tool]
	if !ok {
		return "", errorx.New(errorx.KindUnknownTool, "Unknown tool: %s", tool)
	}
	return h(ctx, args)
}

func (s *Server) gateDenied(gate string, tool tools.Name) {
	if s.metrics != nil {
		s.metrics.GateDenied(gate, tool.String())
	}
}

// record stores the outcome of a tool call. Failures are only logged.
func (s *Server) record(ctx context.Context, name string, success bool, elapsed time.Duration) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.Record(ctx, reliability.Result{
		Operation: cnst.OperationKeyPrefixMCP + name,
		Success:   success,
		ElapsedMs: elapsed.Milliseconds(),
		Mode:      cnst.ModeMCP,
		Fallback:  false,
		At:        s.now(),
	})
	if err != nil {
		s.logger.Warn("failed to record tool result", zap.String("tool", name), zap.Error(err))
	}
}

func (s *Server) encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// ParseErrorResponse renders the envelope sent for a message that could not
// be parsed. It carries no id.
func ParseErrorResponse(err error) []byte {
	out, _ := json.Marshal(struct {
		JSONRPC string           `json:"jsonrpc"`
		Error   mcp.JSONRPCError `json:"error"`
	}{
		JSONRPC: mcp.JSPNRPCVersion,
		Error: mcp.JSONRPCError{
			Code:    mcp.ErrorCodeInternalError,
			Message: errorx.RPCMessage(err),
		},
	})
	return out
}
