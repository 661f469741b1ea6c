// ABOUTME: Chat history storage keyed by session
// ABOUTME: Histories are capped so replayed context stays bounded
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harper/esgos/internal/charm"
	"github.com/harper/esgos/internal/models"
)

// MaxChatHistory is the number of turns kept per session
const MaxChatHistory = 50

// DefaultSession is used when no session name is given
const DefaultSession = "default"

// AppendChat adds turns to a session, dropping the oldest beyond MaxChatHistory
func (s *Storage) AppendChat(session string, turns ...models.ChatTurn) error {
	session = normalizeSession(session)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.chatHistory(session)
	if err != nil {
		return err
	}
	history = append(history, turns...)
	if len(history) > MaxChatHistory {
		history = history[len(history)-MaxChatHistory:]
	}
	return s.putJSON(charm.ChatKey(session), history)
}

// ChatHistory returns the stored turns for a session, oldest first
func (s *Storage) ChatHistory(session string) ([]models.ChatTurn, error) {
	return s.chatHistory(normalizeSession(session))
}

// ClearChat deletes a session's history
func (s *Storage) ClearChat(session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.kv.Delete(charm.ChatKey(normalizeSession(session)))
}

func (s *Storage) chatHistory(session string) ([]models.ChatTurn, error) {
	var history []models.ChatTurn
	if err := s.getJSON(charm.ChatKey(session), &history); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []models.ChatTurn{}, nil
		}
		return nil, fmt.Errorf("failed to load chat %s: %w", session, err)
	}
	return history, nil
}

func normalizeSession(session string) string {
	session = strings.TrimSpace(session)
	if session == "" {
		return DefaultSession
	}
	return session
}
