// ABOUTME: Tests for snapshot export
// ABOUTME: Verifies the snapshot collects every entity and survives a YAML round trip
package storage

import (
	"testing"

	"github.com/harper/esgos/internal/models"
	"gopkg.in/yaml.v3"
)

func TestSnapshot(t *testing.T) {
	store := NewStorageInMemory()

	hook, _ := models.NewWebhook("ops", "https://example.com/hook", []models.Event{models.EventCardUnlocked})
	_ = store.CreateWebhook(hook)
	sup, _ := models.NewSupplier("Acme", "DE", "metals", "")
	_ = store.AddSupplier(sup)
	asset, _ := models.NewCarbonAsset("Kasigau", "VCS", 2021, 12.5)
	_ = store.AddAsset(asset)
	_ = store.GrantCard(&models.Card{ID: "card_1", Name: "LED Retrofit", Rarity: models.Uncommon})

	snap, err := store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap.Webhooks) != 1 || len(snap.Suppliers) != 1 || len(snap.Assets) != 1 || len(snap.Cards) != 1 {
		t.Fatalf("snapshot missing entities: %+v", snap)
	}
	if snap.Balance.ActiveTonnes != 12.5 {
		t.Errorf("balance = %+v", snap.Balance)
	}

	out, err := yaml.Marshal(snap)
	if err != nil {
		t.Fatalf("yaml.Marshal failed: %v", err)
	}

	var decoded Snapshot
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("yaml.Unmarshal failed: %v", err)
	}
	if decoded.Cards[0].Rarity != models.Uncommon {
		t.Errorf("rarity after YAML = %s, want uncommon", decoded.Cards[0].Rarity)
	}
	if decoded.Webhooks[0].Events[0] != models.EventCardUnlocked {
		t.Errorf("events after YAML = %v", decoded.Webhooks[0].Events)
	}
}
