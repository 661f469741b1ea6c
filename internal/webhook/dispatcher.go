// ABOUTME: Outbound webhook delivery with retries and per-hook outcome recording
// ABOUTME: Fans an event out to every active subscriber concurrently via errgroup
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/harper/esgos/internal/models"
	"github.com/harper/esgos/internal/retry"
)

const (
	// DefaultTimeout bounds each POST attempt
	DefaultTimeout = 10 * time.Second
	// DefaultConcurrency is how many hooks DeliverAll posts to at once
	DefaultConcurrency = 4

	userAgent = "esgos-webhook/1"
)

// Recorder persists the outcome of a delivery
type Recorder interface {
	RecordDelivery(id string, status int, at time.Time) (*models.Webhook, error)
}

// Envelope is the JSON body posted to subscribers
type Envelope struct {
	ID        string       `json:"id"`
	Event     models.Event `json:"event"`
	Timestamp time.Time    `json:"timestamp"`
	Data      any          `json:"data"`
}

// Result is the outcome of delivering one event to one hook
type Result struct {
	WebhookID string `json:"webhook_id"`
	Status    int    `json:"status"`
	Attempts  int    `json:"attempts"`
	Err       error  `json:"-"`
}

// OK reports whether the subscriber accepted the event
func (r Result) OK() bool {
	return r.Err == nil
}

// Config holds dispatcher settings; zero values fall back to defaults
type Config struct {
	HTTPClient   *http.Client
	Timeout      time.Duration
	Concurrency  int
	Logger       *log.Logger
	RetryOptions []retry.Option
}

// Dispatcher posts events to webhook subscribers
type Dispatcher struct {
	client   *http.Client
	recorder Recorder
	cfg      Config
}

// NewDispatcher creates a dispatcher. A nil recorder skips outcome recording.
func NewDispatcher(recorder Recorder, cfg Config) *Dispatcher {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Dispatcher{client: client, recorder: recorder, cfg: cfg}
}

// Deliver posts one event to hook, retrying 429 and 5xx responses
func (d *Dispatcher) Deliver(ctx context.Context, hook *models.Webhook, event models.Event, payload any) (Result, error) {
	result := Result{WebhookID: hook.ID}

	body, err := json.Marshal(Envelope{
		ID:        uuid.New().String(),
		Event:     event,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	})
	if err != nil {
		result.Err = fmt.Errorf("failed to encode %s payload: %w", event, err)
		return result, result.Err
	}

	opts := append([]retry.Option{
		retry.WithObserver(func(a retry.Attempt) {
			result.Attempts = a.Index + 1
			if a.Err != nil && d.cfg.Logger != nil {
				d.cfg.Logger.Debug("webhook attempt failed", "webhook", hook.ID, "attempt", a.Index+1, "class", a.Class, "err", a.Err)
			}
		}),
	}, d.cfg.RetryOptions...)

	status, err := retry.Do(ctx, func(ctx context.Context) (int, error) {
		return d.post(ctx, hook, event, body)
	}, opts...)

	result.Status = status
	if err != nil {
		var se *retry.StatusError
		if errors.As(err, &se) {
			result.Status = se.Status
		}
		result.Err = fmt.Errorf("webhook %s: %w", hook.ID, err)
	}

	d.record(hook.ID, result.Status)
	return result, result.Err
}

// DeliverAll sends event to every active hook subscribed to it. Results are
// returned in hook order; the error joins every failed delivery.
func (d *Dispatcher) DeliverAll(ctx context.Context, hooks []models.Webhook, event models.Event, payload any) ([]Result, error) {
	var targets []*models.Webhook
	for i := range hooks {
		if hooks[i].Active && hooks[i].Subscribes(event) {
			targets = append(targets, &hooks[i])
		}
	}

	results := make([]Result, len(targets))
	var g errgroup.Group
	g.SetLimit(d.cfg.Concurrency)
	for i, hook := range targets {
		g.Go(func() error {
			// One failing subscriber must not cancel the others
			results[i], _ = d.Deliver(ctx, hook, event, payload)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}

func (d *Dispatcher) post(ctx context.Context, hook *models.Webhook, event models.Event, body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
	if err != nil {
		return 0, retry.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Esgos-Event", string(event))
	req.Header.Set("X-Esgos-Webhook", hook.ID)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &retry.StatusError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("subscriber responded %s", resp.Status),
		}
	}
	return resp.StatusCode, nil
}

func (d *Dispatcher) record(id string, status int) {
	if d.recorder == nil {
		return
	}
	if _, err := d.recorder.RecordDelivery(id, status, time.Now()); err != nil && d.cfg.Logger != nil {
		d.cfg.Logger.Warn("failed to record webhook delivery", "webhook", id, "err", err)
	}
}
