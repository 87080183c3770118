package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/xint-dev/xint/internal/budget"
	"github.com/xint-dev/xint/internal/common/cnst"
	"github.com/xint-dev/xint/internal/common/config"
	"github.com/xint-dev/xint/internal/core"
	"github.com/xint-dev/xint/internal/packageapi"
	"github.com/xint-dev/xint/internal/policy"
	"github.com/xint-dev/xint/internal/reliability"
	"github.com/xint-dev/xint/internal/webhook"
	"github.com/xint-dev/xint/pkg/metrics"
	"github.com/xint-dev/xint/pkg/trace"
	"github.com/xint-dev/xint/pkg/version"
)

var (
	mcpPolicy        string
	mcpNoBudgetGuard bool
	mcpHTTP          bool
	mcpAddr          string

	mcpCmd = &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP over stdio",
		Long:  `Serve the xint tools to an MCP client over stdio, optionally also on POST /mcp`,
		RunE:  runMCP,
	}
)

func init() {
	mcpCmd.Flags().StringVar(&mcpPolicy, "policy", "", "policy mode: read_only, engagement or moderation (overrides config)")
	mcpCmd.Flags().BoolVar(&mcpNoBudgetGuard, "no-budget-guard", false, "do not check the daily budget before tool calls")
	mcpCmd.Flags().BoolVar(&mcpHTTP, "http", false, "also serve MCP over HTTP")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", "", "HTTP listen address (overrides config)")
}

// policyMode picks the --policy flag over the configured mode
func policyMode(cfg *config.XintConfig) (cnst.PolicyMode, error) {
	if mcpPolicy != "" {
		return cnst.ParsePolicyMode(mcpPolicy)
	}
	return cnst.ParsePolicyMode(cfg.Policy.Mode)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	mode, err := policyMode(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdownTracing, err := trace.InitTracing(ctx, &cfg.Tracing, logger)
		if err != nil {
			logger.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					logger.Warn("failed to shutdown tracing", zap.Error(err))
				}
			}()
		}
	}

	m := metrics.New(cfg.Metrics)
	tracker, err := budget.NewTracker(ctx, logger, cfg.Budget)
	if err != nil {
		return fmt.Errorf("failed to initialize budget tracker: %w", err)
	}
	defer tracker.Close()

	settings := config.EnvSettings()
	server := core.NewServer(logger, core.Deps{
		Policy:   policy.NewGate(mode),
		Budget:   budget.NewGate(logger, tracker, cfg.Budget.Enforce && !mcpNoBudgetGuard),
		Tracker:  tracker,
		Recorder: reliability.NewRecorder(logger, cfg.Reliability, m),
		Packages: packageapi.NewClient(logger, settings, cfg.PackageAPI.Timeout),
		Webhooks: webhook.NewChecker(settings),
		Metrics:  m,
	})

	logger.Info("starting xint MCP server",
		zap.String("version", version.Get()),
		zap.String("policy_mode", mode.String()),
		zap.Bool("budget_guard", cfg.Budget.Enforce && !mcpNoBudgetGuard))
	if term.IsTerminal(int(os.Stdin.Fd())) {
		logger.Warn("stdin is a terminal; xint mcp expects an MCP client to write JSON-RPC lines")
	}

	var httpServer *core.HTTPServer
	if mcpHTTP || cfg.HTTP.Enabled {
		addr := cfg.HTTP.Addr
		if mcpAddr != "" {
			addr = mcpAddr
		}
		httpServer = core.NewHTTPServer(logger, server, m, addr)
		httpServer.Start()
	}

	stdioDone := make(chan error, 1)
	go func() {
		stdioDone <- server.RunStdio(ctx, os.Stdin, os.Stdout)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-stdioDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("stdio loop failed", zap.Error(err))
			runErr = err
		}
		if httpServer != nil {
			logger.Info("stdin closed, serving HTTP until shutdown signal")
			<-ctx.Done()
		}
	}

	if httpServer != nil {
		if err := httpServer.Shutdown(context.Background(), cfg.HTTP.ShutdownTimeout); err != nil {
			logger.Error("failed to shutdown server", zap.Error(err))
		}
	}
	return runErr
}
