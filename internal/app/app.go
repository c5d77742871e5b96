// Package app assembles the comparison service from configuration. Each
// binary under cmd/ builds one App and closes it on exit.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bcompare-mcp/bcompare-go/internal/config"
	"github.com/bcompare-mcp/bcompare-go/internal/connectors/bcompare"
	"github.com/bcompare-mcp/bcompare-go/internal/observability"
	"github.com/bcompare-mcp/bcompare-go/internal/operations"
	"github.com/bcompare-mcp/bcompare-go/internal/ratelimit"
	"github.com/bcompare-mcp/bcompare-go/internal/reportstore"
)

// App is a wired service plus the telemetry it must flush on exit.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Service *operations.Service

	shutdown func(context.Context) error
}

// New wires the locator, runner, limiter, optional report publisher and
// telemetry described by cfg.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, serviceName, version string) (*App, error) {
	shutdown := observability.Setup(ctx, cfg.OTelEnabled, serviceName, version)

	metrics, err := observability.NewMetrics(nil)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("app: metrics: %w", err)
	}

	var publisher operations.Publisher
	if cfg.ReportBucket != "" {
		p, err := reportstore.New(ctx, reportstore.Settings{
			Bucket:  cfg.ReportBucket,
			Prefix:  cfg.ReportPrefix,
			Region:  cfg.AWSRegion,
			Profile: cfg.AWSProfile,
			RoleARN: cfg.ReportRoleARN,
		})
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("app: %w", err)
		}
		publisher = p
		logger.Info("report publishing enabled", "bucket", cfg.ReportBucket, "prefix", cfg.ReportPrefix)
	}

	svc := operations.New(
		bcompare.NewLocator(cfg.Executable),
		bcompare.NewRunner(cfg.MaxConcurrent),
		operations.Options{
			Timeout:     cfg.Timeout,
			MaxFileSize: cfg.MaxFileSize,
			ReportDir:   cfg.ReportDir,
			Catalog:     cfg.Catalog,
			Limiter:     ratelimit.NewLaunchLimiter(cfg.RateLimit),
			Publisher:   publisher,
			Metrics:     metrics,
			Logger:      logger,
		},
	)

	return &App{Config: cfg, Logger: logger, Service: svc, shutdown: shutdown}, nil
}

// Close flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	return a.shutdown(ctx)
}
