// ABOUTME: Tests for the credential store
// ABOUTME: Verifies resolution order, selection via prompter, masking, and the retry selector contract
package credentials

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harper/esgos/internal/retry"
	"github.com/harper/esgos/internal/storage"
)

// Compile-time check that Store can refresh credentials for retry.Do
var _ retry.CredentialSelector = (*Store)(nil)

type staticPrompter struct {
	key   string
	err   error
	calls int
}

func (p *staticPrompter) PromptKey(ctx context.Context) (string, error) {
	p.calls++
	return p.key, p.err
}

func newTestStore(prompter Prompter, env map[string]string) *Store {
	s := NewStore(storage.NewMemoryKV(), prompter)
	s.getenv = func(k string) string { return env[k] }
	return s
}

func TestAPIKey_ResolutionOrder(t *testing.T) {
	ctx := context.Background()

	s := newTestStore(nil, nil)
	if _, err := s.APIKey(ctx); !errors.Is(err, ErrNoCredential) {
		t.Errorf("expected ErrNoCredential, got %v", err)
	}

	s = newTestStore(nil, map[string]string{"GOOGLE_API_KEY": "google-key"})
	if key, _ := s.APIKey(ctx); key != "google-key" {
		t.Errorf("APIKey = %q, want GOOGLE_API_KEY fallback", key)
	}

	s = newTestStore(nil, map[string]string{"GOOGLE_API_KEY": "google-key", "GEMINI_API_KEY": "gemini-key"})
	if key, _ := s.APIKey(ctx); key != "gemini-key" {
		t.Errorf("APIKey = %q, want GEMINI_API_KEY first", key)
	}

	if err := s.Save("stored-key"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if key, _ := s.APIKey(ctx); key != "stored-key" {
		t.Errorf("APIKey = %q, want stored key to win", key)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if key, _ := s.APIKey(ctx); key != "gemini-key" {
		t.Errorf("APIKey = %q, want env fallback after clear", key)
	}
}

func TestSelectCredential(t *testing.T) {
	ctx := context.Background()
	prompter := &staticPrompter{key: "  fresh-key \n"}
	s := newTestStore(prompter, nil)

	has, err := s.HasSelectedCredential(ctx)
	if err != nil || has {
		t.Fatalf("HasSelectedCredential = %v, %v; want false, nil", has, err)
	}

	if err := s.SelectCredential(ctx); err != nil {
		t.Fatalf("SelectCredential failed: %v", err)
	}
	if prompter.calls != 1 {
		t.Errorf("expected 1 prompt, got %d", prompter.calls)
	}

	has, _ = s.HasSelectedCredential(ctx)
	if !has {
		t.Error("credential should be selected after prompt")
	}
	if key, _ := s.APIKey(ctx); key != "fresh-key" {
		t.Errorf("APIKey = %q, want trimmed prompt value", key)
	}
}

func TestSelectCredential_Failures(t *testing.T) {
	ctx := context.Background()

	if err := newTestStore(nil, nil).SelectCredential(ctx); err == nil {
		t.Error("selection without a prompter should fail")
	}

	dismissed := errors.New("dismissed")
	if err := newTestStore(&staticPrompter{err: dismissed}, nil).SelectCredential(ctx); !errors.Is(err, dismissed) {
		t.Errorf("expected prompt error, got %v", err)
	}

	if err := newTestStore(&staticPrompter{key: "   "}, nil).SelectCredential(ctx); err == nil {
		t.Error("blank key should be rejected")
	}
}

func TestStatus(t *testing.T) {
	s := newTestStore(nil, map[string]string{"GEMINI_API_KEY": "AIzaSyExample1234"})

	status, err := s.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Source != SourceEnv {
		t.Errorf("Source = %s, want env", status.Source)
	}
	if strings.Contains(status.Masked, "AIza") || !strings.HasSuffix(status.Masked, "1234") {
		t.Errorf("Masked = %q should only reveal the last four characters", status.Masked)
	}

	none, _ := newTestStore(nil, nil).Status()
	if none.Source != SourceNone || none.Masked != "" {
		t.Errorf("empty status = %+v", none)
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"abcdefgh", "********efgh"},
	}
	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReaderPrompter(t *testing.T) {
	var out bytes.Buffer
	p := &ReaderPrompter{In: strings.NewReader("typed-key\n"), Out: &out}

	key, err := p.PromptKey(context.Background())
	if err != nil {
		t.Fatalf("PromptKey failed: %v", err)
	}
	if key != "typed-key" {
		t.Errorf("key = %q, want typed-key", key)
	}
	if !strings.Contains(out.String(), "Gemini API key") {
		t.Errorf("prompt not written: %q", out.String())
	}

	// Missing trailing newline still counts as a line
	key, err = (&ReaderPrompter{In: strings.NewReader("no-newline")}).PromptKey(context.Background())
	if err != nil || key != "no-newline" {
		t.Errorf("PromptKey = %q, %v", key, err)
	}

	if _, err := (&ReaderPrompter{In: strings.NewReader("")}).PromptKey(context.Background()); err == nil {
		t.Error("empty input should fail")
	}
}

func TestStoreRefreshesInsideRetry(t *testing.T) {
	ctx := context.Background()
	prompter := &staticPrompter{key: "new-key"}
	s := newTestStore(prompter, nil)
	_ = s.Save("revoked-key")

	var keysSeen []string
	got, err := retry.Do(ctx, func(ctx context.Context) (string, error) {
		key, err := s.APIKey(ctx)
		if err != nil {
			return "", err
		}
		keysSeen = append(keysSeen, key)
		if key == "revoked-key" {
			return "", &retry.StatusError{Status: 404, Err: errors.New("Requested entity was not found.")}
		}
		return "ok", nil
	},
		retry.WithCredentialSelector(s),
		retry.WithRetryAfterCredentialRefresh(true),
		retry.WithSleep(func(ctx context.Context, d time.Duration) error { return nil }),
	)
	if err != nil {
		t.Fatalf("retry.Do failed: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want ok", got)
	}
	if prompter.calls != 1 {
		t.Errorf("expected 1 prompt, got %d", prompter.calls)
	}
	if len(keysSeen) != 2 || keysSeen[0] != "revoked-key" || keysSeen[1] != "new-key" {
		t.Errorf("keys seen = %v, want revoked then new", keysSeen)
	}
}
