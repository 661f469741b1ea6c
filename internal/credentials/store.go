// ABOUTME: Credential store for the Gemini API key
// ABOUTME: Persists the selected key in KV, falls back to env vars, and prompts on refresh
package credentials

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/harper/esgos/internal/charm"
)

// Provider is the KV suffix the Gemini key is stored under
const Provider = "gemini"

// Source describes where the active key came from
type Source string

const (
	SourceStored Source = "stored"
	SourceEnv    Source = "env"
	SourceNone   Source = "none"
)

// EnvKeys are checked in order when no key has been selected
var EnvKeys = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// ErrNoCredential is returned when no key is stored or set in the environment
var ErrNoCredential = errors.New("no Gemini API key selected; run 'esgos auth select' or set GEMINI_API_KEY")

// KV is the subset of the storage KV the store needs
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Prompter asks the user for a new key
type Prompter interface {
	PromptKey(ctx context.Context) (string, error)
}

// Status summarises the active credential without revealing it
type Status struct {
	Source Source `json:"source" yaml:"source"`
	Masked string `json:"masked,omitempty" yaml:"masked,omitempty"`
}

// Store resolves, selects, and persists the API key
type Store struct {
	kv       KV
	prompter Prompter
	getenv   func(string) string
	mu       sync.Mutex
}

// NewStore creates a store. A nil prompter makes SelectCredential fail.
func NewStore(kv KV, prompter Prompter) *Store {
	return &Store{kv: kv, prompter: prompter, getenv: os.Getenv}
}

// APIKey returns the key to use for the next request
func (s *Store) APIKey(ctx context.Context) (string, error) {
	key, _, err := s.resolve()
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", ErrNoCredential
	}
	return key, nil
}

// HasSelectedCredential reports whether any key is available
func (s *Store) HasSelectedCredential(ctx context.Context) (bool, error) {
	key, _, err := s.resolve()
	if err != nil {
		return false, err
	}
	return key != "", nil
}

// SelectCredential prompts for a new key and stores it
func (s *Store) SelectCredential(ctx context.Context) error {
	if s.prompter == nil {
		return errors.New("no prompter configured for credential selection")
	}

	key, err := s.prompter.PromptKey(ctx)
	if err != nil {
		return fmt.Errorf("credential prompt failed: %w", err)
	}
	return s.Save(key)
}

// Save stores key as the selected credential
func (s *Store) Save(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(charm.CredentialKey(Provider), []byte(key)); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// Clear removes the stored key; env fallbacks still apply
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.kv.Delete(charm.CredentialKey(Provider))
}

// Status reports where the active key comes from
func (s *Store) Status() (Status, error) {
	key, source, err := s.resolve()
	if err != nil {
		return Status{}, err
	}
	return Status{Source: source, Masked: Mask(key)}, nil
}

func (s *Store) resolve() (string, Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(charm.CredentialKey(Provider))
	if err != nil {
		return "", SourceNone, fmt.Errorf("failed to read credential: %w", err)
	}
	if key := strings.TrimSpace(string(data)); key != "" {
		return key, SourceStored, nil
	}

	for _, name := range EnvKeys {
		if key := strings.TrimSpace(s.getenv(name)); key != "" {
			return key, SourceEnv, nil
		}
	}
	return "", SourceNone, nil
}

// Mask hides all but the last four characters of a key
func Mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}

// ReaderPrompter reads a key from a line of input
type ReaderPrompter struct {
	In  io.Reader
	Out io.Writer
}

// PromptKey writes a prompt and reads one line
func (p *ReaderPrompter) PromptKey(ctx context.Context) (string, error) {
	if p.Out != nil {
		fmt.Fprint(p.Out, "Enter Gemini API key (https://aistudio.google.com/apikey): ")
	}

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		ch <- result{strings.TrimSpace(line), err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", r.err
		}
		if r.line == "" {
			return "", errors.New("no key entered")
		}
		return r.line, nil
	}
}
