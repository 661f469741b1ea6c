// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents like Claude to use esgos tools via stdio
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	esgmcp "github.com/harper/esgos/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs esgos as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to chat with the ESG assistant, score
suppliers, manage webhooks, and read the wallet via stdio.

The server never prompts for an API key; select one first with
'esgos auth select' or set GEMINI_API_KEY.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  esgos mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "esgos": {
  #       "command": "esgos",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("error closing storage", "err", err)
		}
	}()

	// stdin belongs to the protocol, so no interactive key prompt
	assistant, err := newAssistant(cmd, store, false)
	if err != nil {
		logger.Warn("AI tools disabled", "err", err)
		assistant = nil
	}

	server, handlers := esgmcp.NewServer(versionInfo.Version, store, assistant, newDispatcher(store), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("ESG OS MCP server starting on stdio...")
	return esgmcp.ServeStdio(ctx, server, handlers)
}
