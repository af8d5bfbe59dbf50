package magpie_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/magpie"
)

var sessionJSON = map[string]any{
	"id":              "cs_1",
	"object":          "checkout_session",
	"amount_subtotal": 20000,
	"amount_total":    20000,
	"currency":        "php",
	"mode":            "payment",
	"payment_status":  "paid",
	"payment_url":     "https://checkout.magpie.im/cs_1",
	"line_items":      []any{map[string]any{"name": "Shirt", "amount": 10000, "quantity": 2}},
	"payment_details": map[string]any{"id": "ch_1", "amount": 20000, "status": "succeeded"},
}

func TestCheckoutSessions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		call     func(*magpie.Client) (*magpie.CheckoutSession, error)
		method   string
		path     string
		wantBody map[string]any
	}{
		{
			name: "create",
			call: func(c *magpie.Client) (*magpie.CheckoutSession, error) {
				return c.CheckoutSessions.Create(context.Background(), &magpie.CheckoutSessionParams{
					CancelURL:          "https://shop.example/cancel",
					SuccessURL:         "https://shop.example/ok",
					Currency:           "php",
					Mode:               magpie.SessionModePayment,
					PaymentMethodTypes: []string{"card"},
					LineItems:          []magpie.LineItem{{Name: "Shirt", Amount: 10000, Quantity: 2}},
				})
			},
			method: http.MethodPost,
			path:   "/checkout/",
			wantBody: map[string]any{
				"cancel_url":           "https://shop.example/cancel",
				"success_url":          "https://shop.example/ok",
				"currency":             "php",
				"mode":                 "payment",
				"payment_method_types": []any{"card"},
				"line_items":           []any{map[string]any{"name": "Shirt", "amount": float64(10000), "quantity": float64(2)}},
			},
		},
		{
			name: "retrieve",
			call: func(c *magpie.Client) (*magpie.CheckoutSession, error) {
				return c.CheckoutSessions.Retrieve(context.Background(), "cs_1")
			},
			method: http.MethodGet,
			path:   "/checkout/cs_1",
		},
		{
			name: "capture",
			call: func(c *magpie.Client) (*magpie.CheckoutSession, error) {
				return c.CheckoutSessions.Capture(context.Background(), "cs_1", &magpie.CaptureParams{Amount: 20000})
			},
			method:   http.MethodPost,
			path:     "/checkout/cs_1/capture",
			wantBody: map[string]any{"amount": float64(20000)},
		},
		{
			name: "expire",
			call: func(c *magpie.Client) (*magpie.CheckoutSession, error) {
				return c.CheckoutSessions.Expire(context.Background(), "cs_1")
			},
			method: http.MethodPost,
			path:   "/checkout/cs_1/expire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.method, r.Method)
				assert.Equal(t, tt.path, r.URL.Path)
				b := readBody(t, r)
				if tt.wantBody != nil {
					assert.Equal(t, tt.wantBody, b)
				}
				writeJSON(t, w, http.StatusOK, sessionJSON)
			})

			session, err := tt.call(client)
			require.NoError(t, err)
			assert.Equal(t, "cs_1", session.ID)
			assert.True(t, session.Paid())
			require.NotNil(t, session.PaymentDetails)
			assert.Equal(t, "ch_1", session.PaymentDetails.ID)
			require.Len(t, session.LineItems, 1)
			assert.Equal(t, 2, session.LineItems[0].Quantity)
		})
	}
}

func TestCheckoutSession_QRCode(t *testing.T) {
	t.Parallel()

	png, err := (&magpie.CheckoutSession{PaymentURL: "https://checkout.magpie.im/cs_1"}).QRCode()
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	_, err = (&magpie.CheckoutSession{}).QRCode()
	assert.Error(t, err)
}
