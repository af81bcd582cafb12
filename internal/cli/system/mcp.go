package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/wellkept/internal/cli"
	"github.com/julianstephens/wellkept/internal/logger"
	"github.com/julianstephens/wellkept/internal/mcp"
)

// McpCmd serves the ledger as MCP tools over stdio. Logs go to the log
// file only since stdout carries the protocol.
type McpCmd struct{}

func (c *McpCmd) Run(ctx *cli.Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting MCP server", "owner", ctx.Owner)
	if err := mcp.NewServer(ctx.Service, ctx.Owner).Serve(sigCtx); err != nil && sigCtx.Err() == nil {
		return err
	}
	logger.Info("MCP server stopped")
	return nil
}
