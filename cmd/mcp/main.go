package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/vlasenko/incident-analyst/internal/adapters/mcp"
	"github.com/vlasenko/incident-analyst/internal/bootstrap"
	"github.com/vlasenko/incident-analyst/internal/config"
	"github.com/vlasenko/incident-analyst/internal/observability/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	// Stdout carries the MCP protocol; logs must stay on stderr.
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, "mcp", cfg)
	if err != nil {
		slog.Error("bootstrap error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	mcpServer := mcpadapter.NewServer(mcpadapter.Deps{
		Extraction:    app.ExtractUC,
		Generation:    app.GenerateUC,
		History:       app.HistoryUC,
		ServiceUserID: cfg.MCPServiceUserID,
	})

	stdioServer := server.NewStdioServer(mcpServer)
	slog.Info("mcp stdio server started", "service_user", cfg.MCPServiceUserID)
	if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("mcp stdio server error", "error", err)
		os.Exit(1)
	}
}
