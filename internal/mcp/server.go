// ABOUTME: MCP server construction and stdio lifecycle shared by the CLI and standalone binary
// ABOUTME: Drains pending webhook deliveries before returning on shutdown
package mcp

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/esgos/internal/storage"
)

// ServerName is reported to MCP clients
const ServerName = "ESG OS"

// NewServer creates an MCP server with every esgos tool registered
func NewServer(version string, store *storage.Storage, assistant Assistant, notifier Notifier, logger *log.Logger) (*mcpserver.MCPServer, *Handlers) {
	server := mcpserver.NewMCPServer(ServerName, version)
	handlers := RegisterTools(server, store, assistant, notifier, logger)
	return server, handlers
}

// ServeStdio serves on stdin/stdout until the client disconnects or ctx is
// cancelled, then waits for in-flight webhook deliveries
func ServeStdio(ctx context.Context, server *mcpserver.MCPServer, handlers *Handlers) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		handlers.logger.Info("Shutdown signal received, gracefully shutting down...")
		handlers.Shutdown()
		return nil
	case err := <-serverErr:
		handlers.Shutdown()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
