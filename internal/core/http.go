package core

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/xint-dev/xint/internal/common/cnst"
	"github.com/xint-dev/xint/pkg/metrics"
)

// HTTPServer exposes a Server on POST /mcp next to health and metrics routes
type HTTPServer struct {
	logger     *zap.Logger
	server     *Server
	router     *gin.Engine
	httpServer *http.Server
}

// NewHTTPServer builds the router. m may be nil, in which case /metrics is
// not served.
func NewHTTPServer(logger *zap.Logger, server *Server, m *metrics.Metrics, addr string) *HTTPServer {
	// stdout carries the stdio protocol stream, gin must not print there
	gin.DefaultWriter = os.Stderr
	gin.DefaultErrorWriter = os.Stderr
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	h := &HTTPServer{
		logger: logger.Named("core.http"),
		server: server,
		router: gin.New(),
	}

	h.router.Use(otelgin.Middleware(cnst.AppName))
	h.router.Use(h.loggerMiddleware())
	h.router.Use(h.recoveryMiddleware())
	if m != nil {
		h.router.Use(m.Middleware())
		h.router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	h.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"session_id":  server.SessionID(),
			"initialized": server.Initialized(),
		})
	})
	h.router.POST("/mcp", h.handleMCP)

	h.httpServer = &http.Server{
		Addr:    addr,
		Handler: h.router,
	}
	return h
}

// Handler returns the router, mainly for tests
func (h *HTTPServer) Handler() http.Handler {
	return h.router
}

func (h *HTTPServer) handleMCP(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxLineSize))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.Data(status, "application/json", ParseErrorResponse(err))
		return
	}

	resp, err := h.server.HandleMessage(c.Request.Context(), body)
	if err != nil {
		c.Data(http.StatusBadRequest, "application/json", ParseErrorResponse(err))
		return
	}
	if resp == nil {
		c.Status(http.StatusAccepted)
		return
	}
	c.Data(http.StatusOK, "application/json", resp)
}

// Start serves in the background until Shutdown
func (h *HTTPServer) Start() {
	go func() {
		h.logger.Info("serving MCP over HTTP", zap.String("addr", h.httpServer.Addr))
		if err := h.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("failed to start server", zap.Error(err))
		}
	}()
}

// Shutdown gracefully shuts down the server
func (h *HTTPServer) Shutdown(ctx context.Context, timeout time.Duration) error {
	h.logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return h.httpServer.Shutdown(ctx)
}
