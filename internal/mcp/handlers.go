// ABOUTME: MCP tool handler implementations for the esgos server
// ABOUTME: User errors come back as tool results; webhook fan-out runs in tracked goroutines
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/esgos/internal/models"
	"github.com/harper/esgos/internal/storage"
	"github.com/harper/esgos/internal/webhook"
)

// Assistant is the AI surface the tools need
type Assistant interface {
	Chat(ctx context.Context, history []models.ChatTurn, message string) (string, error)
	Research(ctx context.Context, topic string) (*models.ResearchBrief, error)
	AssessSupplier(ctx context.Context, sup *models.Supplier) (*models.SupplierAssessment, error)
}

// Notifier delivers an event to subscribed webhooks
type Notifier interface {
	DeliverAll(ctx context.Context, hooks []models.Webhook, event models.Event, payload any) ([]webhook.Result, error)
}

var errNoAssistant = errors.New("AI features are unavailable: no Gemini API key configured (run 'esgos auth select')")

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	storage    *storage.Storage
	assistant  Assistant
	notifier   Notifier
	logger     *log.Logger
	shutdownWg *sync.WaitGroup // Track pending webhook deliveries
}

// EsgChat handles the esg_chat tool
func (h *Handlers) EsgChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}
	if h.assistant == nil {
		return mcp.NewToolResultError(errNoAssistant.Error()), nil
	}
	session := request.GetString("session", storage.DefaultSession)

	history, err := h.storage.ChatHistory(session)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load chat history: %v", err)), nil
	}

	reply, err := h.assistant.Chat(ctx, history, message)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("assistant failed: %v", err)), nil
	}

	userTurn, err := models.NewChatTurn(models.RoleUser, message)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	turns := []models.ChatTurn{*userTurn}
	if replyTurn, err := models.NewChatTurn(models.RoleAssistant, reply); err == nil {
		turns = append(turns, *replyTurn)
	}
	if err := h.storage.AppendChat(session, turns...); err != nil {
		h.logger.Warn("failed to save chat history", "session", session, "err", err)
	}

	return jsonResult(map[string]interface{}{
		"session": session,
		"reply":   reply,
	})
}

// EsgResearch handles the esg_research tool
func (h *Handlers) EsgResearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := request.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError("topic argument is required and must be a string"), nil
	}
	if h.assistant == nil {
		return mcp.NewToolResultError(errNoAssistant.Error()), nil
	}

	brief, err := h.assistant.Research(ctx, topic)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("research failed: %v", err)), nil
	}

	h.notify(ctx, models.EventReportGenerated, brief)
	return jsonResult(brief)
}

// AddSupplier handles the add_supplier tool
func (h *Handlers) AddSupplier(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name argument is required and must be a string"), nil
	}

	sup, err := models.NewSupplier(
		name,
		request.GetString("country", ""),
		request.GetString("category", ""),
		request.GetString("contact", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := h.storage.AddSupplier(sup); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add supplier: %v", err)), nil
	}
	return jsonResult(sup)
}

// ListSuppliers handles the list_suppliers tool
func (h *Handlers) ListSuppliers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	suppliers, err := h.storage.ListSuppliers()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list suppliers: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"suppliers": suppliers,
	})
}

// AssessSupplier handles the assess_supplier tool
func (h *Handlers) AssessSupplier(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("supplier_id")
	if err != nil {
		return mcp.NewToolResultError("supplier_id argument is required and must be a string"), nil
	}
	if h.assistant == nil {
		return mcp.NewToolResultError(errNoAssistant.Error()), nil
	}

	sup, err := h.storage.GetSupplier(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get supplier: %v", err)), nil
	}

	assessment, err := h.assistant.AssessSupplier(ctx, sup)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("assessment failed: %v", err)), nil
	}

	sup, err = h.storage.SaveAssessment(id, assessment)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save assessment: %v", err)), nil
	}

	h.notify(ctx, models.EventSupplierAssessed, sup)
	return jsonResult(sup)
}

// CreateWebhook handles the create_webhook tool
func (h *Handlers) CreateWebhook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name argument is required and must be a string"), nil
	}
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url argument is required and must be a string"), nil
	}

	var raw []string
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		raw = stringArray(args["events"])
	}
	events, err := models.ParseEvents(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	hook, err := models.NewWebhook(name, url, events)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := h.storage.CreateWebhook(hook); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create webhook: %v", err)), nil
	}
	return jsonResult(hook)
}

// ListWebhooks handles the list_webhooks tool
func (h *Handlers) ListWebhooks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hooks, err := h.storage.ListWebhooks()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list webhooks: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"webhooks": hooks,
	})
}

// DeleteWebhook handles the delete_webhook tool
func (h *Handlers) DeleteWebhook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("webhook_id")
	if err != nil {
		return mcp.NewToolResultError("webhook_id argument is required and must be a string"), nil
	}
	if err := h.storage.DeleteWebhook(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete webhook: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"success":    true,
		"webhook_id": id,
	})
}

// WalletBalance handles the wallet_balance tool
func (h *Handlers) WalletBalance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	assets, err := h.storage.ListAssets()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list assets: %v", err)), nil
	}

	response := map[string]interface{}{
		"balance": models.Balance(assets),
	}
	if request.GetBool("include_assets", false) {
		response["assets"] = assets
	}
	return jsonResult(response)
}

// ListCards handles the list_cards tool
func (h *Handlers) ListCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cards, err := h.storage.ListCards()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list cards: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"cards": cards,
	})
}

// Shutdown waits for all pending webhook deliveries to complete
func (h *Handlers) Shutdown() {
	h.logger.Info("Waiting for pending webhook deliveries to complete...")
	h.shutdownWg.Wait()
	h.logger.Info("All webhook deliveries completed")
}

// notify fans event out to subscribers in the background. The delivery
// outlives the tool call, so it detaches from the request's cancellation.
func (h *Handlers) notify(ctx context.Context, event models.Event, payload any) {
	if h.notifier == nil {
		return
	}
	hooks, err := h.storage.ListWebhooks()
	if err != nil {
		h.logger.Warn("failed to load webhooks", "event", event, "err", err)
		return
	}
	if len(hooks) == 0 {
		return
	}

	deliverCtx := context.WithoutCancel(ctx)
	h.shutdownWg.Add(1)
	go func() {
		defer h.shutdownWg.Done()
		results, err := h.notifier.DeliverAll(deliverCtx, hooks, event, payload)
		if err != nil {
			h.logger.Warn("webhook delivery failed", "event", event, "err", err)
		}
		h.logger.Debug("webhooks notified", "event", event, "deliveries", len(results))
	}()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// stringArray extracts strings from a decoded JSON array, or splits a comma list
func stringArray(raw any) []string {
	switch v := raw.(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		return strings.Split(v, ",")
	}
	return nil
}
