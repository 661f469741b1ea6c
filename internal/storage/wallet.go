// ABOUTME: Carbon asset wallet storage over the KV store
// ABOUTME: Retirement is a one-way transition guarded by the storage lock
package storage

import (
	"fmt"
	"slices"
	"time"

	"github.com/harper/esgos/internal/charm"
	"github.com/harper/esgos/internal/models"
)

// AddAsset stores a newly acquired carbon asset
func (s *Storage) AddAsset(asset *models.CarbonAsset) error {
	if asset.Tonnes <= 0 {
		return fmt.Errorf("tonnes must be positive, got %v", asset.Tonnes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.putJSON(charm.AssetKey(asset.ID), asset)
}

// ListAssets returns all assets, most recently acquired first
func (s *Storage) ListAssets() ([]models.CarbonAsset, error) {
	assets, err := listJSON[models.CarbonAsset](s, charm.AssetPrefix)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(assets, func(a, b models.CarbonAsset) int {
		return b.AcquiredAt.Compare(a.AcquiredAt)
	})
	return assets, nil
}

// RetireAsset retires an active asset
func (s *Storage) RetireAsset(id string) (*models.CarbonAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var asset models.CarbonAsset
	if err := s.getJSON(charm.AssetKey(id), &asset); err != nil {
		return nil, err
	}
	if err := asset.Retire(time.Now()); err != nil {
		return nil, err
	}
	if err := s.putJSON(charm.AssetKey(id), &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// WalletBalance totals the wallet
func (s *Storage) WalletBalance() (models.WalletBalance, error) {
	assets, err := s.ListAssets()
	if err != nil {
		return models.WalletBalance{}, err
	}
	return models.Balance(assets), nil
}
