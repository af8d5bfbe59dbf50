package webhook

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/magpie/pkg/clientip"
	"github.com/dmitrymomot/magpie/pkg/logger"
)

// Defaults used when no option overrides them.
const (
	DefaultAlgorithm       = "sha256"
	DefaultTolerance       = 300 * time.Second
	DefaultPrefix          = "v1="
	DefaultSignatureHeader = "x-magpie-signature"
	DefaultTimestampHeader = "x-magpie-timestamp"
	DefaultReplayWindow    = 24 * time.Hour
)

// options holds the verification settings shared by every entry point.
type options struct {
	algorithm       string
	tolerance       time.Duration
	prefix          string
	signatureHeader string
	timestampHeader string
	now             func() time.Time

	replayGuard  ReplayGuard
	replayWindow time.Duration

	maxPayloadSize int64
	logger         *slog.Logger
	allowedSources clientip.Allowlist
	trustProxy     bool
}

func defaultOptions() *options {
	return &options{
		algorithm:       DefaultAlgorithm,
		tolerance:       DefaultTolerance,
		prefix:          DefaultPrefix,
		signatureHeader: DefaultSignatureHeader,
		timestampHeader: DefaultTimestampHeader,
		now:             time.Now,
		replayWindow:    DefaultReplayWindow,
		maxPayloadSize:  1 << 20,
		logger:          logger.Discard(),
	}
}

func newOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Option configures signature verification.
type Option func(*options)

// WithAlgorithm sets the HMAC hash: sha256 (default), sha1, sha384 or sha512.
func WithAlgorithm(algorithm string) Option {
	return func(o *options) {
		if algorithm != "" {
			o.algorithm = algorithm
		}
	}
}

// WithTolerance sets the maximum allowed distance between the signed
// timestamp and the current time. Default is 300 seconds.
func WithTolerance(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.tolerance = d
		}
	}
}

// WithPrefix sets the prefix marking a signature element, "v1=" by default.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithSignatureHeader sets the header carrying the signature.
func WithSignatureHeader(name string) Option {
	return func(o *options) {
		if name != "" {
			o.signatureHeader = name
		}
	}
}

// WithTimestampHeader sets the header carrying the unix timestamp.
func WithTimestampHeader(name string) Option {
	return func(o *options) {
		if name != "" {
			o.timestampHeader = name
		}
	}
}

// WithClock overrides the time source used for tolerance checks and test signatures.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithReplayGuard rejects events whose ID was already accepted within the replay window.
func WithReplayGuard(g ReplayGuard) Option {
	return func(o *options) {
		o.replayGuard = g
	}
}

// WithReplayWindow sets how long accepted event IDs are remembered. Default is 24h.
func WithReplayWindow(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.replayWindow = d
		}
	}
}

// WithMaxPayloadSize limits the body size accepted by the HTTP handler. Default is 1MB.
func WithMaxPayloadSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPayloadSize = n
		}
	}
}

// WithLogger sets the logger used by the HTTP handler.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithAllowedSources makes the HTTP handler answer 403 to senders outside
// the given networks. See clientip.ParseAllowlist.
func WithAllowedSources(list clientip.Allowlist) Option {
	return func(o *options) {
		o.allowedSources = list
	}
}

// WithTrustedProxy resolves the sender from forwarding headers instead of
// the TCP peer. Use it only behind a proxy that overwrites those headers.
func WithTrustedProxy() Option {
	return func(o *options) {
		o.trustProxy = true
	}
}
