package transport

import (
	"net/http"
	"time"
)

// RetryPolicy decides whether a failed attempt is retried and how long to
// wait before the next one.
type RetryPolicy struct {
	MaxRetries int
	Backoff    BackoffStrategy
}

// ShouldRetry reports whether another attempt should follow attempt number
// attempt (0 for the first one). Exactly one of resp and err is usually set;
// both may be nil when the request never reached the network.
//
// The first matching rule wins:
//  1. the retry budget is exhausted
//  2. connection-level failure: retry
//  3. no response: stop
//  4. POST without idempotency key: stop
//  5. 5xx or 429: retry
//  6. anything else: stop
//
// A POST that reached the server may already have been applied, so it is only
// repeated when the server can deduplicate it by key. Rule 4 is checked before
// rule 5 on purpose: a keyless POST answered 503 is sent exactly once, where
// other Magpie SDKs retry it.
func (p RetryPolicy) ShouldRetry(attempt int, req *http.Request, resp *http.Response, err error) bool {
	if attempt >= p.MaxRetries {
		return false
	}

	if err != nil && isConnectionError(req, err) {
		return true
	}

	if resp == nil {
		return false
	}

	if req != nil && req.Method == http.MethodPost && req.Header.Get(HeaderIdempotencyKey) == "" {
		return false
	}

	return resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
}

// Delay returns the wait before retry number attempt (1 for the first retry).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff.NextInterval(attempt)
}

// isConnectionError treats every transport failure as connection-level unless
// the caller's own context ended, in which case retrying is pointless.
func isConnectionError(req *http.Request, err error) bool {
	if err == nil {
		return false
	}
	if req != nil && req.Context().Err() != nil {
		return false
	}
	return true
}
