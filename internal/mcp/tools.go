// ABOUTME: MCP tool definitions and registration for the esgos server
// ABOUTME: Exposes the assistant, supplier CRM, webhooks, wallet, and cards as tools
package mcp

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/esgos/internal/models"
	"github.com/harper/esgos/internal/storage"
)

// RegisterTools registers all MCP tools with the server. A nil assistant
// disables the AI tools; a nil notifier skips webhook delivery.
func RegisterTools(server *mcpserver.MCPServer, store *storage.Storage, assistant Assistant, notifier Notifier, logger *log.Logger) *Handlers {
	handlers := NewHandlers(store, assistant, notifier, logger)

	// 1. esg_chat
	server.AddTool(mcp.Tool{
		Name:        "esg_chat",
		Description: "Ask the ESG assistant a question. Conversation history is kept per session.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "Question or message for the assistant",
				},
				"session": map[string]interface{}{
					"type":        "string",
					"description": "Conversation session name (default: " + storage.DefaultSession + ")",
				},
			},
			Required: []string{"message"},
		},
	}, handlers.EsgChat)

	// 2. esg_research
	server.AddTool(mcp.Tool{
		Name:        "esg_research",
		Description: "Generate a structured research brief on an ESG topic: summary, key findings, frameworks, and risks.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"topic": map[string]interface{}{
					"type":        "string",
					"description": "Topic to research (e.g. 'CSRD double materiality')",
				},
			},
			Required: []string{"topic"},
		},
	}, handlers.EsgResearch)

	// 3. add_supplier
	server.AddTool(mcp.Tool{
		Name:        "add_supplier",
		Description: "Add a supplier to the CRM.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Supplier name",
				},
				"country": map[string]interface{}{
					"type":        "string",
					"description": "Country of operation",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Sector or spend category",
				},
				"contact": map[string]interface{}{
					"type":        "string",
					"description": "Contact email or name",
				},
			},
			Required: []string{"name"},
		},
	}, handlers.AddSupplier)

	// 4. list_suppliers
	server.AddTool(mcp.Tool{
		Name:        "list_suppliers",
		Description: "List all suppliers with their latest ESG assessment.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListSuppliers)

	// 5. assess_supplier
	server.AddTool(mcp.Tool{
		Name:        "assess_supplier",
		Description: "Score a supplier on environmental, social, and governance risk. Fires supplier.assessed webhooks.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"supplier_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the supplier to assess",
				},
			},
			Required: []string{"supplier_id"},
		},
	}, handlers.AssessSupplier)

	// 6. create_webhook
	events := make([]string, 0, len(models.KnownEvents))
	for _, e := range models.KnownEvents {
		events = append(events, string(e))
	}
	server.AddTool(mcp.Tool{
		Name:        "create_webhook",
		Description: "Register a webhook that receives dashboard events as JSON POSTs.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Display name",
				},
				"url": map[string]interface{}{
					"type":        "string",
					"description": "http(s) endpoint to POST to",
				},
				"events": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string", "enum": events},
					"description": "Events to subscribe to",
				},
			},
			Required: []string{"name", "url", "events"},
		},
	}, handlers.CreateWebhook)

	// 7. list_webhooks
	server.AddTool(mcp.Tool{
		Name:        "list_webhooks",
		Description: "List registered webhooks with their last delivery status.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListWebhooks)

	// 8. delete_webhook
	server.AddTool(mcp.Tool{
		Name:        "delete_webhook",
		Description: "Delete a webhook by ID.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"webhook_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the webhook to delete",
				},
			},
			Required: []string{"webhook_id"},
		},
	}, handlers.DeleteWebhook)

	// 9. wallet_balance
	server.AddTool(mcp.Tool{
		Name:        "wallet_balance",
		Description: "Show carbon credit holdings: active and retired tonnes, optionally with every asset.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"include_assets": map[string]interface{}{
					"type":        "boolean",
					"description": "Include the asset list (default: false)",
					"default":     false,
				},
			},
		},
	}, handlers.WalletBalance)

	// 10. list_cards
	server.AddTool(mcp.Tool{
		Name:        "list_cards",
		Description: "List unlocked collectible cards, rarest first.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListCards)

	return handlers
}

// NewHandlers builds handlers without registering them, mainly for tests
func NewHandlers(store *storage.Storage, assistant Assistant, notifier Notifier, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.Default()
	}
	return &Handlers{
		storage:    store,
		assistant:  assistant,
		notifier:   notifier,
		logger:     logger,
		shutdownWg: &sync.WaitGroup{},
	}
}
