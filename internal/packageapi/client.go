// Package packageapi talks to the xint-cloud package service and checks
// that query answers are backed by citations.
package packageapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xint-dev/xint/internal/common/cnst"
	"github.com/xint-dev/xint/internal/common/config"
	"github.com/xint-dev/xint/internal/common/errorx"
	"github.com/xint-dev/xint/pkg/trace"
	"github.com/xint-dev/xint/pkg/utils"
)

const (
	errorPreviewLen = 300
	defaultTimeout  = 30 * time.Second
)

// billingCodes are upstream error codes that get an upgrade hint
var billingCodes = map[string]struct{}{
	"PLAN_REQUIRED":       {},
	"QUOTA_EXCEEDED":      {},
	"FEATURE_NOT_IN_PLAN": {},
}

// Client calls the package API. Endpoint and credentials are resolved from
// settings on every call.
type Client struct {
	logger     *zap.Logger
	settings   config.Settings
	httpClient *http.Client
}

func NewClient(logger *zap.Logger, settings config.Settings, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		logger:   logger.Named("packageapi"),
		settings: settings,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Call sends one request and returns the JSON response body. body may be nil.
func (c *Client) Call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	base, ok := c.settings.Get(cnst.EnvPackageAPIBaseURL)
	if !ok {
		return nil, errorx.New(errorx.KindConfigurationMissing,
			"%s not set. Start xint-cloud service on :8787 and set %s=http://localhost:8787/v1",
			cnst.EnvPackageAPIBaseURL, cnst.EnvPackageAPIBaseURL)
	}
	url := strings.TrimRight(base, "/") + path

	scope := trace.Tracer(cnst.TracePackageAPI).Start(ctx, cnst.SpanPackageAPICall)
	defer scope.End()
	scope.WithAttrs(
		attribute.String(cnst.AttrHTTPMethod, method),
		attribute.String(cnst.AttrHTTPPath, path),
	)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode package API request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(scope.Ctx, method, url, reader)
	if err != nil {
		return nil, errorx.Wrap(errorx.KindUpstreamRequestFailed, err, "Package API request failed: %v", err)
	}
	if key, ok := c.settings.Get(cnst.EnvPackageAPIKey); ok {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	if ws, ok := c.settings.Get(cnst.EnvWorkspaceID); ok {
		req.Header.Set("x-workspace-id", ws)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		scope.Fail(err, attribute.String(cnst.AttrErrorKind, string(errorx.KindUpstreamRequestFailed)))
		c.logger.Warn("package API request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, errorx.Wrap(errorx.KindUpstreamRequestFailed, err, "Package API request failed: %v", err)
	}
	defer resp.Body.Close()
	scope.WithAttrs(attribute.Int(cnst.AttrHTTPStatusCode, resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		scope.Fail(err)
		return nil, errorx.Wrap(errorx.KindUpstreamRequestFailed, err, "Package API body read failed: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := c.statusError(resp.StatusCode, raw)
		scope.Fail(statusErr, attribute.String(cnst.AttrHTTPErrorPreview, utils.TruncateRunes(string(raw), 256)))
		c.logger.Debug("package API returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, statusErr
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return json.RawMessage(`{}`), nil
	}
	var out json.RawMessage
	if err := json.Unmarshal(trimmed, &out); err != nil {
		scope.Fail(err)
		return nil, errorx.Wrap(errorx.KindResponseDecodeFailed, err, "Package API JSON decode failed: %v", err)
	}
	return out, nil
}

func (c *Client) statusError(status int, raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return errorx.New(errorx.KindUpstreamStatus, "Package API %d: %s",
			status, utils.TruncateRunes(string(raw), errorPreviewLen))
	}

	code, msg := "UNKNOWN", "Package API request failed"
	if v := gjson.GetBytes(raw, "code"); v.Type == gjson.String {
		code = v.Str
	}
	if v := gjson.GetBytes(raw, "error"); v.Type == gjson.String {
		msg = v.Str
	}
	message := fmt.Sprintf("Package API %d [%s]: %s", status, code, msg)
	if _, ok := billingCodes[code]; ok {
		message += ". Upgrade: " + c.settings.GetOr(cnst.EnvBillingUpgradeURL, cnst.DefaultBillingUpgradeURL)
	}
	return &errorx.Error{Kind: errorx.KindUpstreamStatus, Message: message}
}
