// ABOUTME: Supplier is a CRM record with an optional AI-generated ESG assessment
// ABOUTME: Assessments carry per-pillar scores and a derived risk level
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RiskLevel grades a supplier's overall ESG risk
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Supplier represents a supply-chain partner tracked in the CRM
type Supplier struct {
	ID         string              `json:"id" yaml:"id"`
	Name       string              `json:"name" yaml:"name"`
	Country    string              `json:"country,omitempty" yaml:"country,omitempty"`
	Category   string              `json:"category,omitempty" yaml:"category,omitempty"`
	Contact    string              `json:"contact,omitempty" yaml:"contact,omitempty"`
	Assessment *SupplierAssessment `json:"assessment,omitempty" yaml:"assessment,omitempty"`
	CreatedAt  time.Time           `json:"created_at" yaml:"created_at"`
}

// SupplierAssessment is the structured ESG scoring returned by the model
type SupplierAssessment struct {
	Environmental   int       `json:"environmental" yaml:"environmental"`
	Social          int       `json:"social" yaml:"social"`
	Governance      int       `json:"governance" yaml:"governance"`
	Risk            RiskLevel `json:"risk" yaml:"risk"`
	Summary         string    `json:"summary" yaml:"summary"`
	Recommendations []string  `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	AssessedAt      time.Time `json:"assessed_at" yaml:"assessed_at"`
}

// NewSupplier creates a supplier record with validation
func NewSupplier(name, country, category, contact string) (*Supplier, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("supplier name cannot be empty")
	}
	return &Supplier{
		ID:        newID("sup"),
		Name:      strings.TrimSpace(name),
		Country:   strings.TrimSpace(country),
		Category:  strings.TrimSpace(category),
		Contact:   strings.TrimSpace(contact),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Validate checks that scores are within 0-100 and the risk level is known
func (a *SupplierAssessment) Validate() error {
	for name, score := range map[string]int{
		"environmental": a.Environmental,
		"social":        a.Social,
		"governance":    a.Governance,
	} {
		if score < 0 || score > 100 {
			return fmt.Errorf("%s score must be 0-100, got %d", name, score)
		}
	}
	switch a.Risk {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		return fmt.Errorf("unknown risk level %q", a.Risk)
	}
	return nil
}

// Overall returns the unweighted mean of the three pillar scores
func (a *SupplierAssessment) Overall() float64 {
	return float64(a.Environmental+a.Social+a.Governance) / 3
}

// RiskFor derives a risk level from an overall score
func RiskFor(overall float64) RiskLevel {
	switch {
	case overall >= 70:
		return RiskLow
	case overall >= 45:
		return RiskMedium
	default:
		return RiskHigh
	}
}
