// ABOUTME: ESG assistant operations: chat, research briefs, and supplier assessments
// ABOUTME: JSON responses are parsed once; malformed output is a terminal error
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/esgos/internal/models"
	"github.com/harper/esgos/internal/retry"
)

const assistantPrompt = `You are the assistant inside ESG OS, a sustainability operations dashboard.
Answer questions about environmental, social, and governance reporting, carbon accounting,
supplier risk, and frameworks such as CSRD, ISSB, GRI, SASB, TCFD, and the GHG Protocol.
Be concise and concrete. When you are unsure, say so rather than inventing figures.`

const researchPrompt = `You are an ESG research analyst. Given a topic, produce a brief.

Return ONLY a JSON object with these fields:
- summary: two or three sentence overview (string)
- key_findings: the most important points (array of strings)
- frameworks: relevant reporting frameworks or standards (array of strings)
- risks: material risks a company should watch (array of strings)

No additional text.`

const supplierPrompt = `You are a supply-chain ESG auditor. Given a supplier profile, score it.

Return ONLY a JSON object with these fields:
- environmental: 0-100 (integer)
- social: 0-100 (integer)
- governance: 0-100 (integer)
- risk: one of "low", "medium", "high"
- summary: one paragraph justification (string)
- recommendations: concrete follow-up actions (array of strings)

Base scores only on the information given and typical sector and country risk.`

// Chat sends a message with prior history and returns the assistant's reply
func (c *GeminiClient) Chat(ctx context.Context, history []models.ChatTurn, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message cannot be empty")
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: assistantPrompt},
	}
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	reply, err := c.complete(ctx, "chat", openai.ChatCompletionRequest{
		Messages:    messages,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// Research produces a structured brief on an ESG topic
func (c *GeminiClient) Research(ctx context.Context, topic string) (*models.ResearchBrief, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	content, err := c.complete(ctx, "research", jsonRequest(researchPrompt, "Topic: "+topic, 0.3))
	if err != nil {
		return nil, err
	}

	var brief models.ResearchBrief
	if err := decodeJSON(content, &brief); err != nil {
		return nil, retry.Permanent(fmt.Errorf("research: %w", err))
	}
	brief.Topic = topic
	brief.GeneratedAt = time.Now().UTC()
	return &brief, nil
}

// AssessSupplier scores a supplier on the three ESG pillars
func (c *GeminiClient) AssessSupplier(ctx context.Context, sup *models.Supplier) (*models.SupplierAssessment, error) {
	if sup == nil {
		return nil, fmt.Errorf("supplier is required")
	}

	profile := fmt.Sprintf("Name: %s\nCountry: %s\nCategory: %s", sup.Name, orUnknown(sup.Country), orUnknown(sup.Category))
	content, err := c.complete(ctx, "assess_supplier", jsonRequest(supplierPrompt, profile, 0.1))
	if err != nil {
		return nil, err
	}

	var assessment models.SupplierAssessment
	if err := decodeJSON(content, &assessment); err != nil {
		return nil, retry.Permanent(fmt.Errorf("assess_supplier: %w", err))
	}
	assessment.Risk = models.RiskLevel(strings.ToLower(string(assessment.Risk)))
	if assessment.Risk == "" {
		assessment.Risk = models.RiskFor(assessment.Overall())
	}
	if err := assessment.Validate(); err != nil {
		return nil, retry.Permanent(fmt.Errorf("assess_supplier: model returned %w", err))
	}
	assessment.AssessedAt = time.Now().UTC()
	return &assessment, nil
}

func jsonRequest(system, user string, temperature float32) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
}

// decodeJSON parses model output, tolerating a markdown code fence around it
func decodeJSON(content string, dest any) error {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	if err := json.Unmarshal([]byte(content), dest); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
