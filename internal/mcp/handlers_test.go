// ABOUTME: Tests for MCP tool handlers with fake assistant and notifier
// ABOUTME: Verifies argument validation, persistence, and async webhook fan-out
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/esgos/internal/models"
	"github.com/harper/esgos/internal/storage"
	"github.com/harper/esgos/internal/webhook"
)

type fakeAssistant struct {
	reply      string
	err        error
	gotHistory []models.ChatTurn
}

func (f *fakeAssistant) Chat(ctx context.Context, history []models.ChatTurn, message string) (string, error) {
	f.gotHistory = history
	return f.reply, f.err
}

func (f *fakeAssistant) Research(ctx context.Context, topic string) (*models.ResearchBrief, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ResearchBrief{Topic: topic, Summary: "brief"}, nil
}

func (f *fakeAssistant) AssessSupplier(ctx context.Context, sup *models.Supplier) (*models.SupplierAssessment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.SupplierAssessment{Environmental: 80, Social: 75, Governance: 90, Risk: models.RiskLow, Summary: "fine"}, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []models.Event
	hooks  int
}

func (f *fakeNotifier) DeliverAll(ctx context.Context, hooks []models.Webhook, event models.Event, payload any) ([]webhook.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	f.hooks = len(hooks)
	return nil, nil
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return text.Text
}

func newTestHandlers(assistant Assistant, notifier Notifier) (*Handlers, *storage.Storage) {
	store := storage.NewStorageInMemory()
	return NewHandlers(store, assistant, notifier, nil), store
}

func TestEsgChat(t *testing.T) {
	assistant := &fakeAssistant{reply: "Scope 2 is purchased energy."}
	h, store := newTestHandlers(assistant, nil)
	ctx := context.Background()

	res, err := h.EsgChat(ctx, callRequest("esg_chat", map[string]any{"message": "What is scope 2?"}))
	if err != nil {
		t.Fatalf("EsgChat() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), "purchased energy") {
		t.Errorf("reply missing from %s", resultText(t, res))
	}

	history, _ := store.ChatHistory(storage.DefaultSession)
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}

	// Second call replays the stored history
	if _, err := h.EsgChat(ctx, callRequest("esg_chat", map[string]any{"message": "And scope 3?"})); err != nil {
		t.Fatalf("EsgChat() error = %v", err)
	}
	if len(assistant.gotHistory) != 2 {
		t.Errorf("assistant saw %d history turns, want 2", len(assistant.gotHistory))
	}
}

func TestEsgChat_Errors(t *testing.T) {
	tests := []struct {
		name      string
		assistant Assistant
		args      map[string]any
		want      string
	}{
		{"missing message", &fakeAssistant{}, map[string]any{}, "message argument is required"},
		{"no assistant", nil, map[string]any{"message": "hi"}, "AI features are unavailable"},
		{"assistant failure", &fakeAssistant{err: errors.New("quota")}, map[string]any{"message": "hi"}, "quota"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandlers(tt.assistant, nil)
			res, err := h.EsgChat(context.Background(), callRequest("esg_chat", tt.args))
			if err != nil {
				t.Fatalf("EsgChat() error = %v", err)
			}
			if !res.IsError {
				t.Fatal("expected tool error")
			}
			if !strings.Contains(resultText(t, res), tt.want) {
				t.Errorf("error %q does not contain %q", resultText(t, res), tt.want)
			}
		})
	}
}

func TestSupplierFlow_FiresWebhooks(t *testing.T) {
	notifier := &fakeNotifier{}
	h, store := newTestHandlers(&fakeAssistant{}, notifier)
	ctx := context.Background()

	hook, _ := models.NewWebhook("crm", "https://example.com/hook", []models.Event{models.EventSupplierAssessed})
	if err := store.CreateWebhook(hook); err != nil {
		t.Fatalf("CreateWebhook() error = %v", err)
	}

	res, _ := h.AddSupplier(ctx, callRequest("add_supplier", map[string]any{"name": "Acme", "country": "DE"}))
	if res.IsError {
		t.Fatalf("AddSupplier failed: %s", resultText(t, res))
	}
	var sup models.Supplier
	if err := json.Unmarshal([]byte(resultText(t, res)), &sup); err != nil {
		t.Fatalf("failed to decode supplier: %v", err)
	}

	res, _ = h.AssessSupplier(ctx, callRequest("assess_supplier", map[string]any{"supplier_id": sup.ID}))
	if res.IsError {
		t.Fatalf("AssessSupplier failed: %s", resultText(t, res))
	}

	h.Shutdown()

	if len(notifier.events) != 1 || notifier.events[0] != models.EventSupplierAssessed {
		t.Errorf("events = %v, want [supplier.assessed]", notifier.events)
	}
	if notifier.hooks != 1 {
		t.Errorf("notifier saw %d hooks, want 1", notifier.hooks)
	}

	saved, err := store.GetSupplier(sup.ID)
	if err != nil {
		t.Fatalf("GetSupplier() error = %v", err)
	}
	if saved.Assessment == nil || saved.Assessment.Risk != models.RiskLow {
		t.Errorf("assessment not saved: %+v", saved.Assessment)
	}
}

func TestAssessSupplier_UnknownSupplier(t *testing.T) {
	h, _ := newTestHandlers(&fakeAssistant{}, nil)
	res, _ := h.AssessSupplier(context.Background(), callRequest("assess_supplier", map[string]any{"supplier_id": "nope"}))
	if !res.IsError {
		t.Error("expected tool error for unknown supplier")
	}
}

func TestEsgResearch_NoWebhooksNoNotify(t *testing.T) {
	notifier := &fakeNotifier{}
	h, _ := newTestHandlers(&fakeAssistant{}, notifier)

	res, _ := h.EsgResearch(context.Background(), callRequest("esg_research", map[string]any{"topic": "TNFD"}))
	if res.IsError {
		t.Fatalf("EsgResearch failed: %s", resultText(t, res))
	}
	h.Shutdown()
	if len(notifier.events) != 0 {
		t.Errorf("notifier called without webhooks: %v", notifier.events)
	}
}

func TestWebhookTools(t *testing.T) {
	h, store := newTestHandlers(nil, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{"valid", map[string]any{"name": "ops", "url": "https://example.com/a", "events": []any{"asset.retired", "card.unlocked"}}, false},
		{"comma list", map[string]any{"name": "ops2", "url": "https://example.com/b", "events": "supplier.assessed"}, false},
		{"unknown event", map[string]any{"name": "bad", "url": "https://example.com/c", "events": []any{"nope"}}, true},
		{"no events", map[string]any{"name": "bad", "url": "https://example.com/d", "events": []any{}}, true},
		{"bad url", map[string]any{"name": "bad", "url": "ftp://example.com", "events": []any{"asset.retired"}}, true},
		{"missing url", map[string]any{"name": "bad"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.CreateWebhook(ctx, callRequest("create_webhook", tt.args))
			if err != nil {
				t.Fatalf("CreateWebhook() error = %v", err)
			}
			if res.IsError != tt.wantErr {
				t.Errorf("IsError = %v, want %v (%s)", res.IsError, tt.wantErr, resultText(t, res))
			}
		})
	}

	hooks, _ := store.ListWebhooks()
	if len(hooks) != 2 {
		t.Fatalf("stored %d webhooks, want 2", len(hooks))
	}

	res, _ := h.ListWebhooks(ctx, callRequest("list_webhooks", nil))
	if !strings.Contains(resultText(t, res), hooks[0].ID) {
		t.Errorf("list_webhooks missing %s", hooks[0].ID)
	}

	res, _ = h.DeleteWebhook(ctx, callRequest("delete_webhook", map[string]any{"webhook_id": hooks[0].ID}))
	if res.IsError {
		t.Fatalf("DeleteWebhook failed: %s", resultText(t, res))
	}
	res, _ = h.DeleteWebhook(ctx, callRequest("delete_webhook", map[string]any{"webhook_id": hooks[0].ID}))
	if !res.IsError {
		t.Error("deleting twice should fail")
	}
}

func TestWalletBalanceAndCards(t *testing.T) {
	h, store := newTestHandlers(nil, nil)
	ctx := context.Background()

	asset, _ := models.NewCarbonAsset("Mangrove Restoration", "", 2022, 12.5)
	_ = store.AddAsset(asset)
	card := models.DrawCard(func(n int) int { return 0 })
	_ = store.GrantCard(&card)

	res, _ := h.WalletBalance(ctx, callRequest("wallet_balance", map[string]any{"include_assets": true}))
	var got struct {
		Balance models.WalletBalance `json:"balance"`
		Assets  []models.CarbonAsset `json:"assets"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Balance.ActiveTonnes != 12.5 || len(got.Assets) != 1 {
		t.Errorf("unexpected wallet %+v", got)
	}

	res, _ = h.WalletBalance(ctx, callRequest("wallet_balance", nil))
	if strings.Contains(resultText(t, res), "assets\":[") {
		t.Error("assets should be omitted by default")
	}

	res, _ = h.ListCards(ctx, callRequest("list_cards", nil))
	if !strings.Contains(resultText(t, res), card.ID) {
		t.Errorf("list_cards missing %s", card.ID)
	}
}
