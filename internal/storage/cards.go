// ABOUTME: Card collection storage over the KV store
// ABOUTME: Collections are returned rarest first
package storage

import (
	"github.com/harper/esgos/internal/charm"
	"github.com/harper/esgos/internal/models"
)

// GrantCard adds a card to the collection
func (s *Storage) GrantCard(card *models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.putJSON(charm.CardKey(card.ID), card)
}

// ListCards returns the collection sorted by rarity
func (s *Storage) ListCards() ([]models.Card, error) {
	cards, err := listJSON[models.Card](s, charm.CardPrefix)
	if err != nil {
		return nil, err
	}
	models.SortCards(cards)
	return cards, nil
}
