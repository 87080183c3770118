package packageapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xint-dev/xint/internal/common/config"
	"github.com/xint-dev/xint/internal/common/errorx"
)

type captured struct {
	method string
	uri    string
	header http.Header
	body   string
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		got.method = r.Method
		got.uri = r.URL.RequestURI()
		got.header = r.Header.Clone()
		got.body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newTestClient(settings map[string]string) *Client {
	return NewClient(zap.NewNop(), config.MapSettings(settings), 5*time.Second)
}

func TestClient_CreateSendsHeadersAndPayload(t *testing.T) {
	srv, got := newTestServer(t, http.StatusAccepted, `{"package_id":"pkg_123","status":"queued"}`)
	c := newTestClient(map[string]string{
		"XINT_PACKAGE_API_BASE_URL": srv.URL + "/v1/",
		"XINT_PACKAGE_API_KEY":      "xck_contract",
		"XINT_WORKSPACE_ID":         " ws_contract ",
	})

	res, err := c.Create(context.Background(), CreateRequest{
		Name:            "Contract package",
		TopicQuery:      "ai agents",
		Sources:         []any{"x_api_v2"},
		TimeWindow:      json.RawMessage(`{"from":"2026-01-01T00:00:00.000Z","to":"2026-01-02T00:00:00.000Z"}`),
		Policy:          "private",
		AnalysisProfile: "summary",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"package_id":"pkg_123","status":"queued"}`, string(res))

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/v1/packages", got.uri)
	assert.Equal(t, "Bearer xck_contract", got.header.Get("Authorization"))
	assert.Equal(t, "ws_contract", got.header.Get("x-workspace-id"))
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.JSONEq(t, `{
		"name":"Contract package",
		"topic_query":"ai agents",
		"sources":["x_api_v2"],
		"time_window":{"from":"2026-01-01T00:00:00.000Z","to":"2026-01-02T00:00:00.000Z"},
		"policy":"private",
		"analysis_profile":"summary"
	}`, got.body)
}

func TestClient_OptionalHeadersOmitted(t *testing.T) {
	srv, got := newTestServer(t, http.StatusOK, `{"id":"p1"}`)
	c := newTestClient(map[string]string{
		"XINT_PACKAGE_API_BASE_URL": srv.URL,
		"XINT_PACKAGE_API_KEY":      "   ",
	})

	_, err := c.Status(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/packages/p1", got.uri)
	assert.Empty(t, got.header.Get("Authorization"))
	assert.Empty(t, got.header.Get("x-workspace-id"))
	assert.Empty(t, got.header.Get("Content-Type"))
}

func TestClient_QuotaErrorIncludesUpgradeURL(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusPaymentRequired, `{"code":"QUOTA_EXCEEDED","error":"Package limit reached."}`)

	c := newTestClient(map[string]string{
		"XINT_PACKAGE_API_BASE_URL": srv.URL,
		"XINT_BILLING_UPGRADE_URL":  "https://billing.example/upgrade",
	})
	_, err := c.Call(context.Background(), http.MethodPost, "/packages", map[string]string{})
	require.Error(t, err)
	assert.Equal(t, "Package API 402 [QUOTA_EXCEEDED]: Package limit reached.. Upgrade: https://billing.example/upgrade", err.Error())
	assert.True(t, errorx.IsKind(err, errorx.KindUpstreamStatus))

	c = newTestClient(map[string]string{"XINT_PACKAGE_API_BASE_URL": srv.URL})
	_, err = c.Call(context.Background(), http.MethodPost, "/packages", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Upgrade: https://xint.dev/pricing")
}

func TestClient_JSONErrorDefaults(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, `{"detail":"nope"}`)
	c := newTestClient(map[string]string{"XINT_PACKAGE_API_BASE_URL": srv.URL})

	_, err := c.Status(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "Package API 404 [UNKNOWN]: Package API request failed", err.Error())
}

func TestClient_NonJSONErrorTruncated(t *testing.T) {
	body := strings.Repeat("x", 500)
	srv, _ := newTestServer(t, http.StatusInternalServerError, body)
	c := newTestClient(map[string]string{"XINT_PACKAGE_API_BASE_URL": srv.URL})

	_, err := c.Status(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, "Package API 500: "+strings.Repeat("x", 300), err.Error())
	assert.True(t, errorx.IsKind(err, errorx.KindUpstreamStatus))
}

func TestClient_EmptyBodyIsEmptyObject(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, "  \n")
	c := newTestClient(map[string]string{"XINT_PACKAGE_API_BASE_URL": srv.URL})

	res, err := c.Refresh(context.Background(), "p1", "stale")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(res))
}

func TestClient_DecodeFailure(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, "<html>")
	c := newTestClient(map[string]string{"XINT_PACKAGE_API_BASE_URL": srv.URL})

	_, err := c.Status(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, errorx.IsKind(err, errorx.KindResponseDecodeFailed))
	assert.True(t, strings.HasPrefix(err.Error(), "Package API JSON decode failed: "))
}

func TestClient_MissingBaseURL(t *testing.T) {
	c := newTestClient(map[string]string{"XINT_PACKAGE_API_BASE_URL": ""})

	_, err := c.Status(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, errorx.IsKind(err, errorx.KindConfigurationMissing))
	assert.Equal(t, "XINT_PACKAGE_API_BASE_URL not set. Start xint-cloud service on :8787 and set XINT_PACKAGE_API_BASE_URL=http://localhost:8787/v1", err.Error())
}

func TestClient_RequestFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := newTestClient(map[string]string{"XINT_PACKAGE_API_BASE_URL": base})
	_, err := c.Status(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, errorx.IsKind(err, errorx.KindUpstreamRequestFailed))
	assert.True(t, strings.HasPrefix(err.Error(), "Package API request failed: "))
}

func TestClient_EndpointPaths(t *testing.T) {
	srv, got := newTestServer(t, http.StatusOK, `{"ok":true}`)
	c := newTestClient(map[string]string{"XINT_PACKAGE_API_BASE_URL": srv.URL})
	ctx := context.Background()

	_, err := c.Search(ctx, "ai agents & tools", 20)
	require.NoError(t, err)
	assert.Equal(t, "/packages/search?q=ai%20agents%20%26%20tools&limit=20", got.uri)

	_, err = c.Publish(ctx, "pkg 1", 3)
	require.NoError(t, err)
	assert.Equal(t, "/packages/pkg%201/publish", got.uri)
	assert.JSONEq(t, `{"snapshot_version":3}`, got.body)

	_, err = c.Refresh(ctx, "pkg_1", "new data")
	require.NoError(t, err)
	assert.Equal(t, "/packages/pkg_1/refresh", got.uri)
	assert.JSONEq(t, `{"reason":"new data"}`, got.body)
}

func TestClient_QueryVerifiesCitations(t *testing.T) {
	srv, got := newTestServer(t, http.StatusOK, `{"answer":"No citations","claims":[{"claim_id":"claim_1","text":"example"}],"citations":[]}`)
	c := newTestClient(map[string]string{"XINT_PACKAGE_API_BASE_URL": srv.URL})

	req := QueryRequest{Query: "q", PackageIDs: []any{"pkg_1"}, MaxClaims: 10, RequireCitations: true}
	_, err := c.Query(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing citations")
	assert.Equal(t, "/query", got.uri)
	assert.JSONEq(t, `{"query":"q","package_ids":["pkg_1"],"max_claims":10,"require_citations":true}`, got.body)

	req.RequireCitations = false
	res, err := c.Query(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, string(res), "claim_1")
}
