package core

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xint-dev/xint/internal/common/cnst"
	"github.com/xint-dev/xint/internal/common/config"
	"github.com/xint-dev/xint/pkg/metrics"
)

func newTestHTTPServer(t *testing.T, m *metrics.Metrics) (*HTTPServer, *testEnv) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := newTestEnv(t, cnst.PolicyReadOnly, 0)
	return NewHTTPServer(zap.NewNop(), env.server, m, "127.0.0.1:0"), env
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func TestHTTPServer_MCP(t *testing.T) {
	h, _ := newTestHTTPServer(t, nil)

	w := post(h.Handler(), `{"jsonrpc":"2.0","id":5,"method":"ping"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":5,"result":{}}`, w.Body.String())

	w = post(h.Handler(), `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Empty(t, w.Body.String())

	w = post(h.Handler(), `{"jsonrpc":"2.0","id":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"jsonrpc":"2.0","error":{"code":-32603,"message":"Missing method field"}}`, w.Body.String())

	w = post(h.Handler(), `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"xint_bookmarks"}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "POLICY_DENIED")
}

func TestHTTPServer_Healthz(t *testing.T) {
	h, env := newTestHTTPServer(t, nil)
	post(h.Handler(), `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)

	w := httptest.NewRecorder()
	h.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, env.server.SessionID(), body["session_id"])
	assert.Equal(t, true, body["initialized"])
}

func TestHTTPServer_Metrics(t *testing.T) {
	m := metrics.New(config.MetricsConfig{Namespace: "httptest"})
	h, _ := newTestHTTPServer(t, m)
	post(h.Handler(), `{"jsonrpc":"2.0","id":1,"method":"ping"}`)

	w := httptest.NewRecorder()
	h.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `httptest_http_requests_total{method="POST",route="/mcp",status="200"} 1`)
}

func TestNewHTTPServer_KeepsStdoutClean(t *testing.T) {
	prevMode := gin.Mode()
	prevStdout := os.Stdout
	t.Cleanup(func() {
		os.Stdout = prevStdout
		gin.SetMode(prevMode)
	})
	gin.SetMode(gin.DebugMode)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	env := newTestEnv(t, cnst.PolicyReadOnly, 0)
	h := NewHTTPServer(zap.NewNop(), env.server, nil, "127.0.0.1:0")
	post(h.Handler(), `{"jsonrpc":"2.0","id":1,"method":"ping"}`)

	require.NoError(t, w.Close())
	os.Stdout = prevStdout
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, string(out))
	assert.NotEqual(t, gin.DebugMode, gin.Mode())
}

func TestHTTPServer_BodyErrors(t *testing.T) {
	h, _ := newTestHTTPServer(t, nil)

	w := post(h.Handler(), strings.Repeat("a", maxLineSize+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "-32603")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mcp", iotest.ErrReader(errors.New("connection reset")))
	h.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "-32603")
}
