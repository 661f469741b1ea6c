// ABOUTME: Tests for webhook delivery against httptest subscribers
// ABOUTME: Covers retries on 5xx, terminal 4xx, fan-out filtering, and outcome recording
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harper/esgos/internal/models"
	"github.com/harper/esgos/internal/retry"
)

type recorded struct {
	status int
	at     time.Time
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen map[string]recorded
}

func (f *fakeRecorder) RecordDelivery(id string, status int, at time.Time) (*models.Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]recorded)
	}
	f.seen[id] = recorded{status: status, at: at}
	return &models.Webhook{ID: id, LastStatus: status}, nil
}

func noSleep(context.Context, time.Duration) error { return nil }

// subscriber replies with statuses in order, then 200
func subscriber(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n < len(statuses) {
			w.WriteHeader(statuses[n])
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newHook(t *testing.T, url string, events ...models.Event) *models.Webhook {
	t.Helper()
	hook, err := models.NewWebhook("test", url, events)
	if err != nil {
		t.Fatalf("NewWebhook() error = %v", err)
	}
	return hook
}

func newTestDispatcher(rec Recorder) *Dispatcher {
	return NewDispatcher(rec, Config{
		Timeout:      time.Second,
		RetryOptions: []retry.Option{retry.WithSleep(noSleep), retry.WithRetries(2)},
	})
}

func TestDeliver_PostsEnvelope(t *testing.T) {
	var got Envelope
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	hook := newHook(t, srv.URL, models.EventSupplierAssessed)
	res, err := newTestDispatcher(rec).Deliver(context.Background(), hook, models.EventSupplierAssessed, map[string]string{"supplier": "acme"})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if !res.OK() || res.Status != 200 || res.Attempts != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if got.Event != models.EventSupplierAssessed || got.ID == "" {
		t.Errorf("unexpected envelope %+v", got)
	}
	if headers.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", headers.Get("Content-Type"))
	}
	if headers.Get("X-Esgos-Event") != string(models.EventSupplierAssessed) {
		t.Errorf("X-Esgos-Event = %q", headers.Get("X-Esgos-Event"))
	}
	if rec.seen[hook.ID].status != 200 {
		t.Errorf("recorded status = %d, want 200", rec.seen[hook.ID].status)
	}
}

func TestDeliver_StatusHandling(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantErr   bool
		wantCalls int32
		wantCode  int
	}{
		{"retries 503 then succeeds", []int{503}, false, 2, 204},
		{"retries 429 then succeeds", []int{429, 502}, false, 3, 204},
		{"400 is terminal", []int{400}, true, 1, 400},
		{"410 is terminal", []int{410}, true, 1, 410},
		{"gives up after retries", []int{500, 500, 500, 500}, true, 3, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := subscriber(t, tt.statuses...)
			rec := &fakeRecorder{}
			hook := newHook(t, srv.URL, models.EventAssetRetired)

			res, err := newTestDispatcher(rec).Deliver(context.Background(), hook, models.EventAssetRetired, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Deliver() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
			if res.Status != tt.wantCode {
				t.Errorf("Status = %d, want %d", res.Status, tt.wantCode)
			}
			if int32(res.Attempts) != tt.wantCalls {
				t.Errorf("Attempts = %d, want %d", res.Attempts, tt.wantCalls)
			}
			if rec.seen[hook.ID].status != tt.wantCode {
				t.Errorf("recorded %d, want %d", rec.seen[hook.ID].status, tt.wantCode)
			}
		})
	}
}

func TestDeliver_UnreachableSubscriber(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := &fakeRecorder{}
	hook := newHook(t, url, models.EventCardUnlocked)
	res, err := newTestDispatcher(rec).Deliver(context.Background(), hook, models.EventCardUnlocked, nil)
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if res.Attempts != 3 {
		t.Errorf("network errors should be retried, attempts = %d", res.Attempts)
	}
	if rec.seen[hook.ID].status != 0 {
		t.Errorf("recorded status = %d, want 0", rec.seen[hook.ID].status)
	}
}

func TestDeliverAll_FiltersAndJoinsErrors(t *testing.T) {
	okSrv, okCalls := subscriber(t)
	badSrv, badCalls := subscriber(t, 400)
	otherSrv, otherCalls := subscriber(t)

	ok := newHook(t, okSrv.URL, models.EventSupplierAssessed)
	bad := newHook(t, badSrv.URL, models.EventSupplierAssessed, models.EventAssetRetired)
	other := newHook(t, otherSrv.URL, models.EventAssetRetired)
	inactive := newHook(t, okSrv.URL, models.EventSupplierAssessed)
	inactive.Active = false

	rec := &fakeRecorder{}
	hooks := []models.Webhook{*ok, *bad, *other, *inactive}
	results, err := newTestDispatcher(rec).DeliverAll(context.Background(), hooks, models.EventSupplierAssessed, "payload")

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].WebhookID != ok.ID || !results[0].OK() {
		t.Errorf("first result = %+v", results[0])
	}
	if results[1].WebhookID != bad.ID || results[1].OK() {
		t.Errorf("second result = %+v", results[1])
	}
	if err == nil {
		t.Fatal("expected joined error for the failing hook")
	}
	var se *retry.StatusError
	if !errors.As(err, &se) || se.Status != 400 {
		t.Errorf("expected StatusError 400 in %v", err)
	}
	if okCalls.Load() != 1 || badCalls.Load() != 1 || otherCalls.Load() != 0 {
		t.Errorf("calls ok=%d bad=%d other=%d", okCalls.Load(), badCalls.Load(), otherCalls.Load())
	}
}

func TestDeliverAll_NoSubscribers(t *testing.T) {
	results, err := newTestDispatcher(nil).DeliverAll(context.Background(), nil, models.EventReportGenerated, nil)
	if err != nil || len(results) != 0 {
		t.Errorf("DeliverAll() = %v, %v; want empty, nil", results, err)
	}
}

func TestNewDispatcher_Defaults(t *testing.T) {
	d := NewDispatcher(nil, Config{})
	if d.cfg.Timeout != DefaultTimeout || d.cfg.Concurrency != DefaultConcurrency {
		t.Errorf("defaults not applied: %+v", d.cfg)
	}
	if d.client == nil {
		t.Error("expected a default http client")
	}
}
