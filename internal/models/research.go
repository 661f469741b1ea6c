// ABOUTME: ResearchBrief is a structured summary produced by the research hub
// ABOUTME: Returned by the model in JSON mode and shown as-is to the user
package models

import "time"

// ResearchBrief summarises an ESG topic
type ResearchBrief struct {
	Topic       string    `json:"topic" yaml:"topic"`
	Summary     string    `json:"summary" yaml:"summary"`
	KeyFindings []string  `json:"key_findings" yaml:"key_findings"`
	Frameworks  []string  `json:"frameworks,omitempty" yaml:"frameworks,omitempty"`
	Risks       []string  `json:"risks,omitempty" yaml:"risks,omitempty"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}
