// ABOUTME: Webhook CRUD over the KV store
// ABOUTME: Validates on every write and records delivery outcomes
package storage

import (
	"fmt"
	"slices"
	"time"

	"github.com/harper/esgos/internal/charm"
	"github.com/harper/esgos/internal/models"
)

// CreateWebhook stores a new webhook
func (s *Storage) CreateWebhook(hook *models.Webhook) error {
	if err := hook.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.exists(charm.WebhookKey(hook.ID))
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("webhook %s already exists", hook.ID)
	}
	return s.putJSON(charm.WebhookKey(hook.ID), hook)
}

// GetWebhook returns a webhook by ID
func (s *Storage) GetWebhook(id string) (*models.Webhook, error) {
	var hook models.Webhook
	if err := s.getJSON(charm.WebhookKey(id), &hook); err != nil {
		return nil, err
	}
	return &hook, nil
}

// ListWebhooks returns all webhooks, oldest first
func (s *Storage) ListWebhooks() ([]models.Webhook, error) {
	hooks, err := listJSON[models.Webhook](s, charm.WebhookPrefix)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(hooks, func(a, b models.Webhook) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return hooks, nil
}

// UpdateWebhook replaces an existing webhook
func (s *Storage) UpdateWebhook(hook *models.Webhook) error {
	if err := hook.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.exists(charm.WebhookKey(hook.ID))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("webhook %s: %w", hook.ID, ErrNotFound)
	}
	return s.putJSON(charm.WebhookKey(hook.ID), hook)
}

// DeleteWebhook removes a webhook
func (s *Storage) DeleteWebhook(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove(charm.WebhookKey(id))
}

// SetWebhookActive enables or disables a webhook
func (s *Storage) SetWebhookActive(id string, active bool) (*models.Webhook, error) {
	return s.modifyWebhook(id, func(h *models.Webhook) {
		h.Active = active
	})
}

// RecordDelivery stores the status code of the latest delivery attempt
func (s *Storage) RecordDelivery(id string, status int, at time.Time) (*models.Webhook, error) {
	return s.modifyWebhook(id, func(h *models.Webhook) {
		h.LastStatus = status
		h.LastDeliveredAt = at.UTC()
	})
}

func (s *Storage) modifyWebhook(id string, fn func(*models.Webhook)) (*models.Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hook models.Webhook
	if err := s.getJSON(charm.WebhookKey(id), &hook); err != nil {
		return nil, err
	}
	fn(&hook)
	if err := s.putJSON(charm.WebhookKey(id), &hook); err != nil {
		return nil, err
	}
	return &hook, nil
}
