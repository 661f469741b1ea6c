// ABOUTME: Webhook is an outbound HTTP subscription to dashboard events
// ABOUTME: Validates target URLs and the set of events a hook may subscribe to
package models

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Event names a dashboard event that webhooks can subscribe to
type Event string

const (
	EventReportGenerated  Event = "esg.report.generated"
	EventSupplierAssessed Event = "supplier.assessed"
	EventAssetRetired     Event = "asset.retired"
	EventCardUnlocked     Event = "card.unlocked"
)

// KnownEvents lists every event a webhook may subscribe to
var KnownEvents = []Event{EventReportGenerated, EventSupplierAssessed, EventAssetRetired, EventCardUnlocked}

// ErrInvalidWebhook is returned when a webhook fails validation
var ErrInvalidWebhook = errors.New("invalid webhook")

// Webhook represents an outbound event subscription
type Webhook struct {
	ID              string    `json:"id" yaml:"id"`
	Name            string    `json:"name" yaml:"name"`
	URL             string    `json:"url" yaml:"url"`
	Events          []Event   `json:"events" yaml:"events"`
	Active          bool      `json:"active" yaml:"active"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
	LastStatus      int       `json:"last_status,omitempty" yaml:"last_status,omitempty"`
	LastDeliveredAt time.Time `json:"last_delivered_at,omitempty" yaml:"last_delivered_at,omitempty"`
}

// NewWebhook creates an active webhook after validating its URL and events
func NewWebhook(name, rawURL string, events []Event) (*Webhook, error) {
	hook := &Webhook{
		ID:        newID("wh"),
		Name:      strings.TrimSpace(name),
		URL:       strings.TrimSpace(rawURL),
		Events:    events,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := hook.Validate(); err != nil {
		return nil, err
	}
	return hook, nil
}

// Validate checks the name, URL, and subscribed events
func (w *Webhook) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidWebhook)
	}

	u, err := url.Parse(w.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: url must be http(s), got %q", ErrInvalidWebhook, w.URL)
	}

	if len(w.Events) == 0 {
		return fmt.Errorf("%w: at least one event is required", ErrInvalidWebhook)
	}
	for _, e := range w.Events {
		if !e.Known() {
			return fmt.Errorf("%w: unknown event %q", ErrInvalidWebhook, e)
		}
	}
	return nil
}

// Subscribes reports whether the webhook is active and listens for event
func (w *Webhook) Subscribes(event Event) bool {
	return w.Active && slices.Contains(w.Events, event)
}

// Known reports whether e is one of KnownEvents
func (e Event) Known() bool {
	return slices.Contains(KnownEvents, e)
}

// ParseEvents converts raw strings into events, rejecting unknown names
func ParseEvents(raw []string) ([]Event, error) {
	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		e := Event(strings.TrimSpace(r))
		if e == "" {
			continue
		}
		if !e.Known() {
			return nil, fmt.Errorf("%w: unknown event %q", ErrInvalidWebhook, r)
		}
		if !slices.Contains(events, e) {
			events = append(events, e)
		}
	}
	return events, nil
}
