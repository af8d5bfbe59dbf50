package magpie_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/magpie"
	"github.com/dmitrymomot/magpie/pkg/apierror"
)

var chargeJSON = map[string]any{
	"id":              "ch_123",
	"object":          "charge",
	"amount":          10000,
	"amount_refunded": 2500,
	"captured":        true,
	"currency":        "php",
	"status":          "succeeded",
	"livemode":        false,
	"metadata":        map[string]any{"order_id": "42"},
	"refunds":         []any{map[string]any{"id": "re_1", "amount": 2500, "currency": "php", "status": "succeeded"}},
}

func TestCharges_Create(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/charges", r.URL.Path)
		assert.Equal(t, "order-42", r.Header.Get("X-Idempotency-Key"))
		assert.Equal(t, testSecretKey, username(r))

		body := readBody(t, r)
		assert.EqualValues(t, 10000, body["amount"])
		assert.Equal(t, "php", body["currency"])
		assert.Equal(t, "src_1", body["source"])
		assert.Equal(t, false, body["capture"])
		assert.NotContains(t, body, "description")

		writeJSON(t, w, http.StatusCreated, chargeJSON)
	})

	capture := false
	charge, err := client.Charges.Create(context.Background(), &magpie.ChargeParams{
		Amount:   10000,
		Currency: "php",
		Source:   "src_1",
		Capture:  &capture,
	}, magpie.WithIdempotencyKey("order-42"))
	require.NoError(t, err)

	assert.Equal(t, "ch_123", charge.ID)
	assert.True(t, charge.Succeeded())
	assert.Equal(t, int64(7500), charge.Refundable())
	assert.Equal(t, "PHP 100.00", charge.FormattedAmount())
	assert.Equal(t, "42", charge.Metadata["order_id"])
	require.Len(t, charge.Refunds, 1)
	assert.Equal(t, "re_1", charge.Refunds[0].ID)
	assert.Contains(t, string(charge.Raw()), `"ch_123"`)
}

func TestCharges_Actions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		call     func(*magpie.Client) (*magpie.Charge, error)
		method   string
		path     string
		wantBody map[string]any
	}{
		{
			name: "retrieve",
			call: func(c *magpie.Client) (*magpie.Charge, error) {
				return c.Charges.Retrieve(context.Background(), "ch_123")
			},
			method: http.MethodGet,
			path:   "/v2/charges/ch_123",
		},
		{
			name: "capture partial",
			call: func(c *magpie.Client) (*magpie.Charge, error) {
				return c.Charges.Capture(context.Background(), "ch_123", &magpie.CaptureParams{Amount: 5000})
			},
			method:   http.MethodPost,
			path:     "/v2/charges/ch_123/capture",
			wantBody: map[string]any{"amount": float64(5000)},
		},
		{
			name: "capture full",
			call: func(c *magpie.Client) (*magpie.Charge, error) {
				return c.Charges.Capture(context.Background(), "ch_123", nil)
			},
			method:   http.MethodPost,
			path:     "/v2/charges/ch_123/capture",
			wantBody: map[string]any{},
		},
		{
			name: "verify",
			call: func(c *magpie.Client) (*magpie.Charge, error) {
				return c.Charges.Verify(context.Background(), "ch_123", &magpie.VerifyParams{ConfirmationID: "c1", OTP: "123456"})
			},
			method:   http.MethodPost,
			path:     "/v2/charges/ch_123/verify",
			wantBody: map[string]any{"confirmation_id": "c1", "otp": "123456"},
		},
		{
			name:   "void",
			call:   func(c *magpie.Client) (*magpie.Charge, error) { return c.Charges.Void(context.Background(), "ch_123") },
			method: http.MethodPost,
			path:   "/v2/charges/ch_123/void",
		},
		{
			name: "refund",
			call: func(c *magpie.Client) (*magpie.Charge, error) {
				return c.Charges.Refund(context.Background(), "ch_123", &magpie.RefundParams{Amount: 100, Reason: "requested_by_customer"})
			},
			method:   http.MethodPost,
			path:     "/v2/charges/ch_123/refund",
			wantBody: map[string]any{"amount": float64(100), "reason": "requested_by_customer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.method, r.Method)
				assert.Equal(t, tt.path, r.URL.Path)
				body := readBody(t, r)
				if tt.wantBody != nil {
					assert.Equal(t, tt.wantBody, body)
				} else {
					assert.Nil(t, body)
				}
				writeJSON(t, w, http.StatusOK, chargeJSON)
			})

			charge, err := tt.call(client)
			require.NoError(t, err)
			assert.Equal(t, "ch_123", charge.ID)
		})
	}
}

func TestCharges_MissingID(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	ctx := context.Background()
	_, err := client.Charges.Retrieve(ctx, "")
	assert.ErrorIs(t, err, magpie.ErrMissingID)
	_, err = client.Charges.Capture(ctx, " ", nil)
	assert.ErrorIs(t, err, magpie.ErrMissingID)
	_, err = client.Charges.Refund(ctx, "", nil)
	assert.ErrorIs(t, err, magpie.ErrMissingID)
	assert.Zero(t, calls.Load())
}

func TestCharges_APIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("request-id", "req_9")
		writeJSON(t, w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"message": "No such charge", "code": "resource_missing"},
		})
	})

	_, err := client.Charges.Retrieve(context.Background(), "ch_missing")
	require.ErrorIs(t, err, apierror.ErrNotFound)

	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, "No such charge", apiErr.Message)
	assert.Equal(t, "resource_missing", apiErr.Code)
	assert.Equal(t, "req_9", apiErr.RequestID)
}

func TestCharges_TypeMismatch(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("request-id", "req_bad")
		writeJSON(t, w, http.StatusCreated, map[string]any{"id": 123})
	})

	_, err := client.Charges.Retrieve(context.Background(), "ch_1")
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, "invalid_json", apiErr.Code)
	assert.Equal(t, http.StatusCreated, apiErr.StatusCode)
	assert.Equal(t, "req_bad", apiErr.RequestID)
}

func TestCharge_Helpers(t *testing.T) {
	t.Parallel()

	pending := &magpie.Charge{Status: magpie.ChargeStatusPending, Amount: 500, Currency: "php"}
	assert.False(t, pending.Succeeded())
	assert.Zero(t, pending.Refundable())
	assert.False(t, pending.RequiresAction())

	pending.Action = &magpie.ChargeAction{Type: "redirect", URL: "https://auth.example/3ds"}
	assert.True(t, pending.RequiresAction())

	unknown := &magpie.Charge{Amount: 1, Currency: "???"}
	assert.Empty(t, unknown.FormattedAmount())
}
