package transport

import (
	"math/rand/v2"
	"time"
)

// BackoffStrategy calculates the delay before a retry.
// Implementations should be safe for concurrent use.
type BackoffStrategy interface {
	// NextInterval returns the delay before retry number attempt.
	// Attempt starts at 1 for the first retry.
	NextInterval(attempt int) time.Duration
}

// maxShift bounds the exponent so that the base delay cannot overflow.
const maxShift = 30

// ExponentialBackoff doubles the delay on every retry and adds up to
// JitterFactor of random extra delay, capped at MaxDelay.
//
// Formula, in whole milliseconds:
//
//	exp   = BaseDelay * 2^(attempt-1)
//	delay = min(exp + rand[0, JitterFactor*exp], MaxDelay)
type ExponentialBackoff struct {
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	JitterFactor float64
}

// NextInterval implements BackoffStrategy.
func (e ExponentialBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	base := e.BaseDelay
	if base <= 0 {
		base = DefaultRetryDelay
	}
	ceiling := e.MaxDelay
	if ceiling <= 0 {
		ceiling = DefaultMaxRetryDelay
	}

	shift := min(attempt-1, maxShift)
	expMs := base.Milliseconds() << shift

	var jitterMs int64
	if e.JitterFactor > 0 {
		if span := int64(float64(expMs) * e.JitterFactor); span > 0 {
			jitterMs = rand.Int64N(span + 1)
		}
	}

	delay := time.Duration(expMs+jitterMs) * time.Millisecond
	if delay > ceiling || delay < 0 {
		return ceiling
	}
	return delay
}

// FixedBackoff implements a constant delay between retries.
type FixedBackoff struct {
	Interval time.Duration
}

// NextInterval always returns the same interval regardless of attempt number.
func (f FixedBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return f.Interval
}

// DefaultBackoff returns exponential backoff with 10% jitter built from cfg.
func DefaultBackoff(cfg Config) BackoffStrategy {
	return ExponentialBackoff{
		BaseDelay:    cfg.RetryDelay,
		MaxDelay:     cfg.MaxRetryDelay,
		JitterFactor: 0.1,
	}
}
