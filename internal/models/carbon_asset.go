// ABOUTME: CarbonAsset is a verified carbon credit held in the wallet
// ABOUTME: Assets move from active to retired exactly once
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AssetStatus tracks whether a credit can still be retired
type AssetStatus string

const (
	AssetActive  AssetStatus = "active"
	AssetRetired AssetStatus = "retired"
)

// ErrAlreadyRetired is returned when retiring an asset twice
var ErrAlreadyRetired = errors.New("asset already retired")

// CarbonAsset represents a block of carbon credits from one project vintage
type CarbonAsset struct {
	ID         string      `json:"id" yaml:"id"`
	Project    string      `json:"project" yaml:"project"`
	Standard   string      `json:"standard" yaml:"standard"`
	Vintage    int         `json:"vintage" yaml:"vintage"`
	Tonnes     float64     `json:"tonnes" yaml:"tonnes"`
	Status     AssetStatus `json:"status" yaml:"status"`
	AcquiredAt time.Time   `json:"acquired_at" yaml:"acquired_at"`
	RetiredAt  time.Time   `json:"retired_at,omitempty" yaml:"retired_at,omitempty"`
}

// WalletBalance totals tonnes by status
type WalletBalance struct {
	ActiveTonnes  float64 `json:"active_tonnes" yaml:"active_tonnes"`
	RetiredTonnes float64 `json:"retired_tonnes" yaml:"retired_tonnes"`
	Assets        int     `json:"assets" yaml:"assets"`
}

// NewCarbonAsset creates an active asset with validation
func NewCarbonAsset(project, standard string, vintage int, tonnes float64) (*CarbonAsset, error) {
	if strings.TrimSpace(project) == "" {
		return nil, errors.New("project cannot be empty")
	}
	if tonnes <= 0 {
		return nil, fmt.Errorf("tonnes must be positive, got %v", tonnes)
	}
	if vintage < 1990 || vintage > time.Now().Year() {
		return nil, fmt.Errorf("vintage must be between 1990 and %d, got %d", time.Now().Year(), vintage)
	}
	if strings.TrimSpace(standard) == "" {
		standard = "VCS"
	}
	return &CarbonAsset{
		ID:         newID("co2"),
		Project:    strings.TrimSpace(project),
		Standard:   strings.TrimSpace(standard),
		Vintage:    vintage,
		Tonnes:     tonnes,
		Status:     AssetActive,
		AcquiredAt: time.Now().UTC(),
	}, nil
}

// Retire marks the asset retired
func (a *CarbonAsset) Retire(at time.Time) error {
	if a.Status == AssetRetired {
		return fmt.Errorf("%w: %s", ErrAlreadyRetired, a.ID)
	}
	a.Status = AssetRetired
	a.RetiredAt = at.UTC()
	return nil
}

// Balance totals a set of assets
func Balance(assets []CarbonAsset) WalletBalance {
	var b WalletBalance
	for _, a := range assets {
		switch a.Status {
		case AssetActive:
			b.ActiveTonnes += a.Tonnes
		case AssetRetired:
			b.RetiredTonnes += a.Tonnes
		}
		b.Assets++
	}
	return b
}
