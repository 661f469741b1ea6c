// ABOUTME: Card is a collectible achievement in the gamified dashboard
// ABOUTME: Handles rarity ordering and weighted random draws from a fixed deck
package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Rarity ranks a card; higher values are rarer
type Rarity int

const (
	Common Rarity = iota
	Uncommon
	Rare
	Epic
	Legendary
)

// String returns the lowercase rarity name
func (r Rarity) String() string {
	switch r {
	case Common:
		return "common"
	case Uncommon:
		return "uncommon"
	case Rare:
		return "rare"
	case Epic:
		return "epic"
	case Legendary:
		return "legendary"
	default:
		return "unknown"
	}
}

// MarshalText encodes the rarity by name
func (r Rarity) MarshalText() ([]byte, error) {
	if r < Common || r > Legendary {
		return nil, fmt.Errorf("unknown rarity %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rarity name
func (r *Rarity) UnmarshalText(text []byte) error {
	parsed, err := ParseRarity(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRarity converts a name into a Rarity
func ParseRarity(s string) (Rarity, error) {
	for r := Common; r <= Legendary; r++ {
		if strings.EqualFold(s, r.String()) {
			return r, nil
		}
	}
	return Common, fmt.Errorf("unknown rarity %q", s)
}

// Card represents an unlocked collectible
type Card struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Rarity     Rarity    `json:"rarity" yaml:"rarity"`
	Category   string    `json:"category" yaml:"category"`
	UnlockedAt time.Time `json:"unlocked_at" yaml:"unlocked_at"`
}

// CardTemplate describes a card that can be drawn
type CardTemplate struct {
	Name     string
	Rarity   Rarity
	Category string
}

// rarityWeights are relative draw odds per rarity
var rarityWeights = [...]int{Common: 60, Uncommon: 25, Rare: 10, Epic: 4, Legendary: 1}

// Deck is the fixed set of drawable cards
var Deck = []CardTemplate{
	{"Recycled Paper Trail", Common, "environmental"},
	{"LED Retrofit", Common, "environmental"},
	{"Volunteer Day", Common, "social"},
	{"Board Minutes", Common, "governance"},
	{"Supplier Code of Conduct", Uncommon, "governance"},
	{"Green Commute", Uncommon, "environmental"},
	{"Pay Equity Audit", Uncommon, "social"},
	{"Scope 3 Mapping", Rare, "environmental"},
	{"Independent Chair", Rare, "governance"},
	{"Living Wage Certified", Epic, "social"},
	{"Science-Based Target", Epic, "environmental"},
	{"Net Zero Pioneer", Legendary, "environmental"},
}

// SortCards orders cards by rarity (rarest first), then name, then unlock time
func SortCards(cards []Card) {
	slices.SortStableFunc(cards, func(a, b Card) int {
		if a.Rarity != b.Rarity {
			return int(b.Rarity) - int(a.Rarity)
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return a.UnlockedAt.Compare(b.UnlockedAt)
	})
}

// DrawCard picks a rarity by weight, then a card of that rarity from the deck.
// intn must return a value in [0, n).
func DrawCard(intn func(n int) int) Card {
	total := 0
	for _, w := range rarityWeights {
		total += w
	}

	roll := intn(total)
	rarity := Common
	for r, w := range rarityWeights {
		if roll < w {
			rarity = Rarity(r)
			break
		}
		roll -= w
	}

	var pool []CardTemplate
	for _, tmpl := range Deck {
		if tmpl.Rarity == rarity {
			pool = append(pool, tmpl)
		}
	}
	tmpl := pool[intn(len(pool))]

	return Card{
		ID:         newID("card"),
		Name:       tmpl.Name,
		Rarity:     tmpl.Rarity,
		Category:   tmpl.Category,
		UnlockedAt: time.Now().UTC(),
	}
}
