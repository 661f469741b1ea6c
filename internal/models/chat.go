// ABOUTME: ChatTurn is one message in an assistant conversation
// ABOUTME: Histories are stored per session and replayed to the model
package models

import (
	"errors"
	"strings"
	"time"
)

// Role identifies who authored a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn represents a single chat message
type ChatTurn struct {
	Role      Role      `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// NewChatTurn creates a chat message with validation
func NewChatTurn(role Role, content string) (*ChatTurn, error) {
	if role != RoleUser && role != RoleAssistant {
		return nil, errors.New("role must be user or assistant")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("content cannot be empty")
	}
	return &ChatTurn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}, nil
}
