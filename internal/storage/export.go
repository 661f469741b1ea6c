// ABOUTME: Snapshot export of all dashboard data
// ABOUTME: Produces a single document for YAML or JSON backups
package storage

import (
	"time"

	"github.com/harper/esgos/internal/models"
)

// Snapshot is a point-in-time copy of all dashboard data
type Snapshot struct {
	ExportedAt time.Time            `json:"exported_at" yaml:"exported_at"`
	Webhooks   []models.Webhook     `json:"webhooks" yaml:"webhooks"`
	Suppliers  []models.Supplier    `json:"suppliers" yaml:"suppliers"`
	Assets     []models.CarbonAsset `json:"assets" yaml:"assets"`
	Balance    models.WalletBalance `json:"balance" yaml:"balance"`
	Cards      []models.Card        `json:"cards" yaml:"cards"`
}

// Snapshot collects every entity into one document
func (s *Storage) Snapshot() (*Snapshot, error) {
	hooks, err := s.ListWebhooks()
	if err != nil {
		return nil, err
	}
	suppliers, err := s.ListSuppliers()
	if err != nil {
		return nil, err
	}
	assets, err := s.ListAssets()
	if err != nil {
		return nil, err
	}
	cards, err := s.ListCards()
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ExportedAt: time.Now().UTC(),
		Webhooks:   hooks,
		Suppliers:  suppliers,
		Assets:     assets,
		Balance:    models.Balance(assets),
		Cards:      cards,
	}, nil
}
