// ABOUTME: Supplier CRM storage over the KV store
// ABOUTME: Suppliers are listed alphabetically and carry their latest assessment
package storage

import (
	"fmt"
	"slices"
	"strings"

	"github.com/harper/esgos/internal/charm"
	"github.com/harper/esgos/internal/models"
)

// AddSupplier stores a new supplier
func (s *Storage) AddSupplier(sup *models.Supplier) error {
	if strings.TrimSpace(sup.Name) == "" {
		return fmt.Errorf("supplier name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.putJSON(charm.SupplierKey(sup.ID), sup)
}

// GetSupplier returns a supplier by ID
func (s *Storage) GetSupplier(id string) (*models.Supplier, error) {
	var sup models.Supplier
	if err := s.getJSON(charm.SupplierKey(id), &sup); err != nil {
		return nil, err
	}
	return &sup, nil
}

// ListSuppliers returns all suppliers sorted by name
func (s *Storage) ListSuppliers() ([]models.Supplier, error) {
	suppliers, err := listJSON[models.Supplier](s, charm.SupplierPrefix)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(suppliers, func(a, b models.Supplier) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return suppliers, nil
}

// DeleteSupplier removes a supplier
func (s *Storage) DeleteSupplier(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove(charm.SupplierKey(id))
}

// SaveAssessment attaches an assessment to a supplier, replacing any previous one
func (s *Storage) SaveAssessment(id string, assessment *models.SupplierAssessment) (*models.Supplier, error) {
	if err := assessment.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assessment: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var sup models.Supplier
	if err := s.getJSON(charm.SupplierKey(id), &sup); err != nil {
		return nil, err
	}
	sup.Assessment = assessment
	if err := s.putJSON(charm.SupplierKey(id), &sup); err != nil {
		return nil, err
	}
	return &sup, nil
}
