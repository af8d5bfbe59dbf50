package magpie

import (
	"log/slog"

	"github.com/dmitrymomot/magpie/pkg/transport"
	"github.com/dmitrymomot/magpie/pkg/webhook"
)

type clientOptions struct {
	transport              []transport.Option
	webhook                []webhook.Option
	webhookSecret          string
	checkoutBaseURL        string
	paymentLinksBaseURL    string
	paymentRequestsBaseURL string
	resolver               CredentialResolver
	logger                 *slog.Logger
	skipValidation         bool
}

func newClientOptions(opts []Option) *clientOptions {
	o := &clientOptions{
		checkoutBaseURL:        DefaultCheckoutBaseURL,
		paymentLinksBaseURL:    DefaultPaymentLinksBaseURL,
		paymentRequestsBaseURL: DefaultPaymentRequestsBaseURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Option configures a Client.
type Option func(*clientOptions)

// WithTransportOptions passes options through to the underlying transport.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(o *clientOptions) {
		o.transport = append(o.transport, opts...)
	}
}

// WithWebhookSecret sets the secret used by Client.Webhooks.
func WithWebhookSecret(secret string) Option {
	return func(o *clientOptions) {
		o.webhookSecret = secret
	}
}

// WithWebhookOptions sets default verification options for Client.Webhooks.
func WithWebhookOptions(opts ...webhook.Option) Option {
	return func(o *clientOptions) {
		o.webhook = append(o.webhook, opts...)
	}
}

// WithoutParamValidation sends params to the API without checking their
// validate tags first.
func WithoutParamValidation() Option {
	return func(o *clientOptions) {
		o.skipValidation = true
	}
}

// WithCheckoutBaseURL overrides the checkout sessions origin.
func WithCheckoutBaseURL(u string) Option {
	return func(o *clientOptions) {
		if u != "" {
			o.checkoutBaseURL = u
		}
	}
}

// WithPaymentLinksBaseURL overrides the payment links origin.
func WithPaymentLinksBaseURL(u string) Option {
	return func(o *clientOptions) {
		if u != "" {
			o.paymentLinksBaseURL = u
		}
	}
}

// WithPaymentRequestsBaseURL overrides the payment requests origin.
func WithPaymentRequestsBaseURL(u string) Option {
	return func(o *clientOptions) {
		if u != "" {
			o.paymentRequestsBaseURL = u
		}
	}
}

// WithCredentialResolver replaces the resolver that supplies the public key
// for source calls.
func WithCredentialResolver(r CredentialResolver) Option {
	return func(o *clientOptions) {
		o.resolver = r
	}
}

// WithLogger sets the logger shared by the transport and the webhook handler.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// RequestOption customizes a single API call.
type RequestOption = transport.RequestOption

// WithIdempotencyKey lets the server deduplicate a create call and makes
// it eligible for automatic retries.
func WithIdempotencyKey(key string) RequestOption {
	return transport.WithIdempotencyKey(key)
}

// WithExpand asks the API to inline related objects.
func WithExpand(fields ...string) RequestOption {
	return transport.WithExpand(fields...)
}

// WithHeader adds a header to a single call.
func WithHeader(key, value string) RequestOption {
	return transport.WithHeader(key, value)
}
