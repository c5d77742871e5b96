// Command api runs the HTTP API server for Beyond Compare operations.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bcompare-mcp/bcompare-go/internal/api"
	"github.com/bcompare-mcp/bcompare-go/internal/app"
	"github.com/bcompare-mcp/bcompare-go/internal/config"
	"github.com/bcompare-mcp/bcompare-go/internal/observability"
	"github.com/bcompare-mcp/bcompare-go/internal/ratelimit"
)

var version = "dev"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, "bcompare-api", version)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	opts := api.Options{
		CORSOrigins: cfg.CORSOrigins,
		OIDC: api.OIDCConfig{
			IssuerURL: cfg.OIDCIssuer,
			Audience:  cfg.OIDCAudience,
			Enabled:   cfg.OIDCEnabled(),
		},
		Catalog: cfg.Catalog,
		Version: version,
	}
	if cfg.ClientBudget > 0 {
		opts.Budget = ratelimit.NewClientBudget(cfg.ClientBudget, time.Minute)
	}

	srv, err := api.New(ctx, a.Service, opts)
	if err != nil {
		logger.Error("api init failed", "error", err)
		os.Exit(1)
	}

	var handler http.Handler = srv
	if cfg.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "bcompare-api")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting API server", "addr", httpServer.Addr, "oidc_enabled", opts.OIDC.Enabled)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}
