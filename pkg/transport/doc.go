// Package transport is the HTTP layer of the Magpie client.
//
// A Client owns one pooled *http.Client and one credential. It authenticates
// every request with HTTP Basic auth (API key as username, empty password),
// sends the fixed header set (Content-Type, Accept, User-Agent, X-API-Version
// plus configured defaults), retries transient failures and converts every
// terminal failure into an *apierror.Error.
//
// # Basic Usage
//
//	client, err := transport.New("sk_test_123")
//	if err != nil {
//	    return err
//	}
//
//	charge, err := client.Post(ctx, "charges", map[string]any{
//	    "amount":   10000,
//	    "currency": "php",
//	    "source":   "src_123",
//	}, transport.WithIdempotencyKey("order-42"))
//
// # Retries
//
// After a failed attempt the RetryPolicy decides whether to try again:
// connection failures, 5xx and 429 responses are retried up to MaxRetries
// times. A POST is only worth retrying when it carries an idempotency key;
// WithAutoIdempotency generates one per logical request. Delays grow
// exponentially with up to 10% jitter and are capped at MaxRetryDelay:
//
//	client, _ := transport.New(key,
//	    transport.WithMaxRetries(5),
//	    transport.WithRetryDelay(500*time.Millisecond),
//	    transport.WithMaxRetryDelay(10*time.Second),
//	)
//
// Attempts of one request are strictly sequential and the wait between them
// honours context cancellation.
//
// # Debug Logging
//
// WithDebug(true) logs every request and response at debug level on the
// configured *slog.Logger. Authorization and X-API-Key values are replaced by
// "[REDACTED]" before anything is emitted.
//
// # Concurrency
//
// Requests may be issued from multiple goroutines. Rotate swaps the
// credential under a lock; requests already in flight keep the old key.
package transport
