package magpie

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/magpie/pkg/apierror"
	"github.com/dmitrymomot/magpie/pkg/webhook"
)

// WebhookService binds the webhook helpers to the configured secret and
// verification options. Per-call options are applied after the defaults.
type WebhookService struct {
	secret string
	opts   []webhook.Option
}

func (s *WebhookService) options(extra []webhook.Option) []webhook.Option {
	if len(extra) == 0 {
		return s.opts
	}
	opts := make([]webhook.Option, 0, len(s.opts)+len(extra))
	opts = append(opts, s.opts...)
	return append(opts, extra...)
}

func (s *WebhookService) requireSecret() error {
	if s.secret != "" {
		return nil
	}
	err := apierror.Configuration("Webhook secret is not configured")
	err.Err = ErrMissingWebhookSecret
	return err
}

// VerifySignature reports whether header carries a valid signature of payload.
// It is always false when no secret is configured.
func (s *WebhookService) VerifySignature(payload []byte, header string, opts ...webhook.Option) bool {
	if s.secret == "" {
		return false
	}
	return webhook.VerifySignature(payload, header, s.secret, s.options(opts)...)
}

// VerifySignatureWithTimestamp also rejects deliveries outside the tolerance window.
func (s *WebhookService) VerifySignatureWithTimestamp(payload []byte, headers http.Header, opts ...webhook.Option) (bool, error) {
	if err := s.requireSecret(); err != nil {
		return false, err
	}
	return webhook.VerifySignatureWithTimestamp(payload, headers, s.secret, s.options(opts)...)
}

// ConstructEvent verifies payload and decodes it into an Event.
func (s *WebhookService) ConstructEvent(ctx context.Context, payload []byte, header string, opts ...webhook.Option) (*webhook.Event, error) {
	if err := s.requireSecret(); err != nil {
		return nil, err
	}
	return webhook.ConstructEventContext(ctx, payload, header, s.secret, s.options(opts)...)
}

// GenerateTestSignature builds a signature header for local testing.
func (s *WebhookService) GenerateTestSignature(payload []byte, opts ...webhook.Option) string {
	return webhook.GenerateTestSignature(payload, s.secret, s.options(opts)...)
}

// Handler returns an http.Handler that verifies deliveries and passes events to fn.
func (s *WebhookService) Handler(fn webhook.EventHandler, opts ...webhook.Option) http.Handler {
	return webhook.NewHandler(s.secret, fn, s.options(opts)...)
}

// EventObject decodes the object an event carries into one of the typed models.
//
//	charge, err := magpie.EventObject[magpie.Charge](ev)
func EventObject[T Charge | Customer | Source | CheckoutSession | PaymentLink | PaymentRequest](ev *webhook.Event) (*T, error) {
	v := new(T)
	if err := ev.DataObject(v); err != nil {
		return nil, err
	}
	return v, nil
}
