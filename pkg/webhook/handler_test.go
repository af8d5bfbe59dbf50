package webhook_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/magpie/pkg/clientip"
	"github.com/dmitrymomot/magpie/pkg/webhook"
)

func newWebhookRequest(t *testing.T, payload []byte, signature string, ts int64) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/magpie", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("X-Magpie-Signature", signature)
	}
	if ts != 0 {
		req.Header.Set("X-Magpie-Timestamp", strconv.FormatInt(ts, 10))
	}
	return req
}

func TestHandler(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	payload := []byte(chargeEvent)
	validSig := "v1=" + sign(t, payload, testSecret)

	tests := []struct {
		name       string
		method     string
		payload    []byte
		signature  string
		ts         int64
		handlerErr error
		wantStatus int
		wantCalled bool
	}{
		{name: "valid", payload: payload, signature: validSig, ts: now.Unix(), wantStatus: http.StatusOK, wantCalled: true},
		{name: "valid without timestamp", payload: payload, signature: validSig, wantStatus: http.StatusOK, wantCalled: true},
		{name: "missing signature", payload: payload, ts: now.Unix(), wantStatus: http.StatusBadRequest},
		{name: "stale timestamp", payload: payload, signature: validSig, ts: now.Unix() - 301, wantStatus: http.StatusUnauthorized},
		{name: "wrong signature", payload: payload, signature: "v1=deadbeef", ts: now.Unix(), wantStatus: http.StatusUnauthorized},
		{
			name:       "invalid payload",
			payload:    []byte(`{"id":"evt_1"}`),
			signature:  "v1=" + sign(t, []byte(`{"id":"evt_1"}`), testSecret),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "handler failure",
			payload:    payload,
			signature:  validSig,
			handlerErr: errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantCalled: true,
		},
		{name: "wrong method", method: http.MethodGet, payload: payload, signature: validSig, wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var called atomic.Bool
			h := webhook.NewHandler(testSecret, func(ctx context.Context, ev *webhook.Event) error {
				called.Store(true)
				assert.Equal(t, "evt_123", ev.ID)
				return tt.handlerErr
			}, webhook.WithClock(func() time.Time { return now }))

			req := newWebhookRequest(t, tt.payload, tt.signature, tt.ts)
			if tt.method != "" {
				req.Method = tt.method
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called.Load())
		})
	}
}

func TestHandler_Replay(t *testing.T) {
	t.Parallel()

	payload := []byte(chargeEvent)
	sig := "v1=" + sign(t, payload, testSecret)

	var calls atomic.Int32
	h := webhook.NewHandler(testSecret, func(context.Context, *webhook.Event) error {
		calls.Add(1)
		return nil
	}, webhook.WithReplayGuard(webhook.NewMemoryReplayGuard(100)))

	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newWebhookRequest(t, payload, sig, 0))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestHandler_RedeliveryAfterFailure(t *testing.T) {
	t.Parallel()

	payload := []byte(chargeEvent)
	sig := "v1=" + sign(t, payload, testSecret)

	var calls atomic.Int32
	h := webhook.NewHandler(testSecret, func(context.Context, *webhook.Event) error {
		if calls.Add(1) == 1 {
			return errors.New("db down")
		}
		return nil
	}, webhook.WithReplayGuard(webhook.NewMemoryReplayGuard(10)))

	wantStatus := []int{http.StatusInternalServerError, http.StatusOK, http.StatusOK}
	for i, want := range wantStatus {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newWebhookRequest(t, payload, sig, 0))
		assert.Equal(t, want, rec.Code, "delivery %d", i+1)
	}
	// The third delivery is a replay of the successful second one.
	assert.Equal(t, int32(2), calls.Load())
}

type failingGuard struct{}

func (failingGuard) Seen(context.Context, string, time.Duration) (bool, error) {
	return false, webhook.ErrReplayStore
}

func (failingGuard) Forget(context.Context, string) error {
	return webhook.ErrReplayStore
}

func TestHandler_ReplayStoreDown(t *testing.T) {
	t.Parallel()

	payload := []byte(chargeEvent)
	h := webhook.NewHandler(testSecret, func(context.Context, *webhook.Event) error {
		t.Error("handler must not run")
		return nil
	}, webhook.WithReplayGuard(failingGuard{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newWebhookRequest(t, payload, "v1="+sign(t, payload, testSecret), 0))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_PayloadTooLarge(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"id":"evt_1","type":"charge.created","data":{"note":"` + strings.Repeat("x", 2048) + `"}}`)
	h := webhook.NewHandler(testSecret, func(context.Context, *webhook.Event) error {
		return nil
	}, webhook.WithMaxPayloadSize(1024))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newWebhookRequest(t, payload, "v1="+sign(t, payload, testSecret), 0))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_AllowedSources(t *testing.T) {
	t.Parallel()

	payload := []byte(chargeEvent)
	sig := "v1=" + sign(t, payload, testSecret)

	list, err := clientip.ParseAllowlist("203.0.113.0/24")
	require.NoError(t, err)

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		opts       []webhook.Option
		wantStatus int
	}{
		{name: "allowed peer", remoteAddr: "203.0.113.5:5000", wantStatus: http.StatusOK},
		{name: "foreign peer", remoteAddr: "198.51.100.5:5000", wantStatus: http.StatusForbidden},
		{
			name:       "forwarded header ignored by default",
			remoteAddr: "10.0.0.1:5000",
			forwarded:  "203.0.113.5",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "forwarded header behind trusted proxy",
			remoteAddr: "10.0.0.1:5000",
			forwarded:  "203.0.113.5",
			opts:       []webhook.Option{webhook.WithTrustedProxy()},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := append([]webhook.Option{webhook.WithAllowedSources(list)}, tt.opts...)
			h := webhook.NewHandler(testSecret, func(context.Context, *webhook.Event) error {
				return nil
			}, opts...)

			req := newWebhookRequest(t, payload, sig, 0)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
