// ABOUTME: Gemini client for the ESG assistant, research hub, and supplier scoring
// ABOUTME: Talks to Gemini's OpenAI-compatible endpoint via go-openai, every call wrapped in retry.Do
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/esgos/internal/config"
	"github.com/harper/esgos/internal/retry"
)

const (
	// DefaultModel is the default Gemini model for chat and extraction
	DefaultModel = "gemini-2.5-flash"
)

// KeySource resolves the API key before each attempt
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// ClientConfig holds configuration for the Gemini client
type ClientConfig struct {
	BaseURL           string
	Model             string
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RetryJitter       time.Duration
	RetryAfterRefresh bool

	// Keys supplies the API key; required
	Keys KeySource
	// Selector refreshes the key when Gemini rejects it; nil disables refresh
	Selector retry.CredentialSelector
	// Logger receives attempt diagnostics at debug level; nil discards them
	Logger *log.Logger
	// HTTPClient overrides the transport, mainly for tests
	HTTPClient *http.Client
	// RetryOptions are appended after the options derived from the fields above
	RetryOptions []retry.Option
}

// DefaultConfig returns the default client configuration
func DefaultConfig(keys KeySource) *ClientConfig {
	return &ClientConfig{
		BaseURL:     config.DefaultGeminiBaseURL,
		Model:       DefaultModel,
		Timeout:     30 * time.Second,
		MaxRetries:  retry.DefaultRetries,
		RetryDelay:  retry.DefaultInitialDelay,
		RetryJitter: retry.DefaultJitter,
		Keys:        keys,
	}
}

// ConfigFrom builds a client configuration from loaded application config
func ConfigFrom(cfg *config.Config, keys KeySource, selector retry.CredentialSelector) *ClientConfig {
	return &ClientConfig{
		BaseURL:           cfg.BaseURL,
		Model:             cfg.Model,
		Timeout:           cfg.Timeout,
		MaxRetries:        cfg.MaxRetries,
		RetryDelay:        cfg.RetryDelay,
		RetryJitter:       cfg.RetryJitter,
		RetryAfterRefresh: cfg.RetryAfterRefresh,
		Keys:              keys,
		Selector:          selector,
	}
}

// GeminiClient wraps go-openai with retry and credential refresh
type GeminiClient struct {
	cfg     ClientConfig
	mu      sync.Mutex
	clients map[string]*openai.Client // keyed by API key
}

// NewGeminiClient creates a new client with the given configuration
func NewGeminiClient(cfg *ClientConfig) (*GeminiClient, error) {
	if cfg == nil || cfg.Keys == nil {
		return nil, fmt.Errorf("a key source is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultGeminiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &GeminiClient{
		cfg:     *cfg,
		clients: make(map[string]*openai.Client),
	}, nil
}

// Model returns the configured model name
func (c *GeminiClient) Model() string {
	return c.cfg.Model
}

// clientFor returns a go-openai client bound to key, reusing one per key
func (c *GeminiClient) clientFor(key string) *openai.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[key]; ok {
		return client
	}

	oc := openai.DefaultConfig(key)
	oc.BaseURL = c.cfg.BaseURL
	if c.cfg.HTTPClient != nil {
		oc.HTTPClient = c.cfg.HTTPClient
	}
	client := openai.NewClientWithConfig(oc)
	c.clients[key] = client
	return client
}

func (c *GeminiClient) retryOptions(op string) []retry.Option {
	opts := []retry.Option{
		retry.WithRetries(c.cfg.MaxRetries),
		retry.WithInitialDelay(c.cfg.RetryDelay),
		retry.WithJitter(c.cfg.RetryJitter),
		retry.WithRetryAfterCredentialRefresh(c.cfg.RetryAfterRefresh),
		retry.WithObserver(func(a retry.Attempt) {
			if c.cfg.Logger == nil || a.Err == nil {
				return
			}
			c.cfg.Logger.Debug("gemini attempt failed", "op", op, "attempt", a.Index+1, "delay", a.Delay, "class", a.Class, "err", a.Err)
		}),
	}
	if c.cfg.Selector != nil {
		opts = append(opts, retry.WithCredentialSelector(c.cfg.Selector))
	}
	return append(opts, c.cfg.RetryOptions...)
}

// ensureCredential prompts for a key up front when none is selected
func (c *GeminiClient) ensureCredential(ctx context.Context) {
	if c.cfg.Selector == nil {
		return
	}
	has, err := c.cfg.Selector.HasSelectedCredential(ctx)
	if err == nil && !has {
		_ = c.cfg.Selector.SelectCredential(ctx)
	}
}

// complete runs one chat completion through retry.Do and returns the first choice
func (c *GeminiClient) complete(ctx context.Context, op string, req openai.ChatCompletionRequest) (string, error) {
	c.ensureCredential(ctx)

	req.Model = c.cfg.Model
	return retry.Do(ctx, func(ctx context.Context) (string, error) {
		key, err := c.cfg.Keys.APIKey(ctx)
		if err != nil {
			return "", retry.Permanent(err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		resp, err := c.clientFor(key).CreateChatCompletion(attemptCtx, req)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, remoteError(err))
		}
		if len(resp.Choices) == 0 {
			return "", retry.Permanent(fmt.Errorf("%s: no completion choices returned", op))
		}
		return resp.Choices[0].Message.Content, nil
	}, c.retryOptions(op)...)
}

// remoteError exposes go-openai's status and type so retry.Classify can read them
func remoteError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &retry.StatusError{Status: apiErr.HTTPStatusCode, Name: apiErr.Type, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &retry.StatusError{Status: reqErr.HTTPStatusCode, Err: err}
	}
	return err
}
