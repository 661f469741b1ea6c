// ABOUTME: Webhook notification helper shared by commands that emit events
// ABOUTME: Delivery failures are logged, never returned, so the primary action still succeeds
package commands

import (
	"github.com/spf13/cobra"

	"github.com/harper/esgos/internal/models"
	"github.com/harper/esgos/internal/storage"
)

// notify delivers event to every subscribed webhook and waits for the results
func notify(cmd *cobra.Command, store *storage.Storage, event models.Event, payload any) {
	hooks, err := store.ListWebhooks()
	if err != nil {
		logger.Warn("failed to load webhooks", "event", event, "err", err)
		return
	}

	results, err := newDispatcher(store).DeliverAll(cmd.Context(), hooks, event, payload)
	for _, r := range results {
		if r.OK() {
			logger.Debug("webhook delivered", "webhook", r.WebhookID, "status", r.Status, "attempts", r.Attempts)
		}
	}
	if err != nil {
		logger.Warn("webhook delivery failed", "event", event, "err", err)
	}
}
