// Command mcp-bcompare runs the MCP tool server for Beyond Compare.
// Uses stdio transport for integration with AI assistants; logs go to stderr.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bcompare-mcp/bcompare-go/internal/app"
	"github.com/bcompare-mcp/bcompare-go/internal/config"
	"github.com/bcompare-mcp/bcompare-go/internal/mcpserver"
	"github.com/bcompare-mcp/bcompare-go/internal/observability"
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

	a, err := app.New(ctx, cfg, logger, "mcp-bcompare", version)
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

	if path, err := a.Service.Executable(); err != nil {
		logger.Warn("Beyond Compare not found; tools will report tool_not_found", "error", err)
	} else {
		logger.Info("using Beyond Compare", "executable", path)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "beyond-compare",
		Version: version,
	}, nil)
	mcpserver.RegisterTools(server, a.Service, cfg.Catalog)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
