// ABOUTME: Tests for supplier records and ESG assessments
// ABOUTME: Verifies score validation, overall averaging, and risk derivation
package models

import (
	"strings"
	"testing"
)

func TestNewSupplier(t *testing.T) {
	s, err := NewSupplier("  Acme Metals ", "DE", "raw materials", "ops@acme.example")
	if err != nil {
		t.Fatalf("NewSupplier failed: %v", err)
	}
	if s.Name != "Acme Metals" {
		t.Errorf("Name = %q, want trimmed", s.Name)
	}
	if !strings.HasPrefix(s.ID, "sup_") {
		t.Errorf("ID = %q, want sup_ prefix", s.ID)
	}
	if s.Assessment != nil {
		t.Error("new suppliers have no assessment")
	}

	if _, err := NewSupplier(" ", "", "", ""); err == nil {
		t.Error("empty name should fail")
	}
}

func TestSupplierAssessment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		a       SupplierAssessment
		wantErr bool
	}{
		{"valid", SupplierAssessment{Environmental: 80, Social: 70, Governance: 90, Risk: RiskLow}, false},
		{"boundaries", SupplierAssessment{Environmental: 0, Social: 100, Governance: 50, Risk: RiskMedium}, false},
		{"score too high", SupplierAssessment{Environmental: 101, Social: 70, Governance: 90, Risk: RiskLow}, true},
		{"negative score", SupplierAssessment{Environmental: 80, Social: -1, Governance: 90, Risk: RiskLow}, true},
		{"unknown risk", SupplierAssessment{Environmental: 80, Social: 70, Governance: 90, Risk: "severe"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.a.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSupplierAssessment_Overall(t *testing.T) {
	a := SupplierAssessment{Environmental: 60, Social: 70, Governance: 80}
	if got := a.Overall(); got != 70 {
		t.Errorf("Overall() = %v, want 70", got)
	}
}

func TestRiskFor(t *testing.T) {
	tests := []struct {
		overall float64
		want    RiskLevel
	}{
		{95, RiskLow},
		{70, RiskLow},
		{69.9, RiskMedium},
		{45, RiskMedium},
		{44.9, RiskHigh},
		{0, RiskHigh},
	}

	for _, tt := range tests {
		if got := RiskFor(tt.overall); got != tt.want {
			t.Errorf("RiskFor(%v) = %s, want %s", tt.overall, got, tt.want)
		}
	}
}
