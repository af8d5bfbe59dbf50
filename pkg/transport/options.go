package transport

import (
	"log/slog"
	"maps"
	"net/http"
	"time"
)

// options contains everything configurable at client construction
type options struct {
	cfg             Config
	httpClient      *http.Client
	backoff         BackoffStrategy
	breaker         *CircuitBreaker
	logger          *slog.Logger
	autoIdempotency bool
}

func defaultOptions() *options {
	return &options{cfg: DefaultConfig()}
}

// Option is a functional option for configuring a Client
type Option func(*options)

// WithConfig replaces the whole configuration. Zero-valued fields fall back
// to DefaultConfig values, so a partial Config keeps TLS verification and
// retries on. A negative MaxRetries disables retries.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		def := DefaultConfig()
		if cfg.BaseURL == "" {
			cfg.BaseURL = def.BaseURL
		}
		if cfg.APIVersion == "" {
			cfg.APIVersion = def.APIVersion
		}
		if cfg.Timeout <= 0 {
			cfg.Timeout = def.Timeout
		}
		if cfg.ConnectTimeout <= 0 {
			cfg.ConnectTimeout = def.ConnectTimeout
		}
		switch {
		case cfg.MaxRetries == 0:
			cfg.MaxRetries = def.MaxRetries
		case cfg.MaxRetries < 0:
			cfg.MaxRetries = 0
		}
		if cfg.RetryDelay <= 0 {
			cfg.RetryDelay = def.RetryDelay
		}
		if cfg.MaxRetryDelay <= 0 {
			cfg.MaxRetryDelay = def.MaxRetryDelay
		}
		if cfg.UserAgent == "" {
			cfg.UserAgent = def.UserAgent
		}
		headers := make(map[string]string, len(cfg.DefaultHeaders))
		maps.Copy(headers, cfg.DefaultHeaders)
		cfg.DefaultHeaders = headers
		o.cfg = cfg
	}
}

// WithBaseURL sets the API host, e.g. https://api.magpie.im
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		if baseURL != "" {
			o.cfg.BaseURL = baseURL
		}
	}
}

// WithAPIVersion sets the version path segment appended to the base URL.
func WithAPIVersion(version string) Option {
	return func(o *options) {
		if version != "" {
			o.cfg.APIVersion = version
		}
	}
}

// WithTimeout sets the overall timeout of a single attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.cfg.Timeout = timeout
		}
	}
}

// WithConnectTimeout sets the timeout for establishing a connection.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.cfg.ConnectTimeout = timeout
		}
	}
}

// WithMaxRetries sets the maximum number of retries after the first attempt.
// Set to 0 to disable retries.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.cfg.MaxRetries = n
		}
	}
}

// WithRetryDelay sets the base delay used by the default exponential backoff.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cfg.RetryDelay = d
		}
	}
}

// WithMaxRetryDelay caps any single retry delay.
func WithMaxRetryDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cfg.MaxRetryDelay = d
		}
	}
}

// WithRateLimit caps outgoing attempts at perSecond with the given burst.
// Attempts wait for a slot or fail when the context ends.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		if perSecond > 0 {
			o.cfg.RequestsPerSecond = perSecond
			o.cfg.Burst = burst
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
// Only meant for testing against self-signed endpoints.
func WithInsecureSkipVerify() Option {
	return func(o *options) {
		o.cfg.InsecureSkipVerify = true
	}
}

// WithDebug toggles request/response logging at debug level.
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.cfg.Debug = debug
	}
}

// WithDefaultHeader adds a header sent with every request.
func WithDefaultHeader(key, value string) Option {
	return func(o *options) {
		if key != "" && value != "" {
			o.cfg.DefaultHeaders[key] = value
		}
	}
}

// WithDefaultHeaders adds multiple headers sent with every request.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(o *options) {
		for k, v := range headers {
			if k != "" && v != "" {
				o.cfg.DefaultHeaders[k] = v
			}
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.cfg.UserAgent = ua
		}
	}
}

// WithLogger sets the sink for debug logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
// Timeouts and TLS settings from Config are not applied to it.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithBackoff replaces the default exponential backoff.
func WithBackoff(strategy BackoffStrategy) Option {
	return func(o *options) {
		if strategy != nil {
			o.backoff = strategy
		}
	}
}

// WithCircuitBreaker enables circuit breaker protection.
// Reuse the same instance across clients talking to the same host.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(o *options) {
		o.breaker = cb
	}
}

// WithAutoIdempotency attaches a generated idempotency key to every POST
// that does not carry one, which makes such requests eligible for retries.
func WithAutoIdempotency() Option {
	return func(o *options) {
		o.autoIdempotency = true
	}
}

// requestOptions holds per-call settings
type requestOptions struct {
	idempotencyKey string
	expand         []string
	baseURL        string
	credential     string
	headers        map[string]string
}

// RequestOption customizes a single request
type RequestOption func(*requestOptions)

// WithIdempotencyKey sets the X-Idempotency-Key header.
func WithIdempotencyKey(key string) RequestOption {
	return func(o *requestOptions) {
		o.idempotencyKey = key
	}
}

// WithExpand requests expansion of related objects via expand[] query parameters.
func WithExpand(fields ...string) RequestOption {
	return func(o *requestOptions) {
		for _, f := range fields {
			if f != "" {
				o.expand = append(o.expand, f)
			}
		}
	}
}

// WithRequestBaseURL sends the request to an alternate origin instead of the
// versioned API URL.
func WithRequestBaseURL(baseURL string) RequestOption {
	return func(o *requestOptions) {
		o.baseURL = baseURL
	}
}

// WithCredential authenticates this request with a different API key.
func WithCredential(key string) RequestOption {
	return func(o *requestOptions) {
		o.credential = key
	}
}

// WithHeader adds a header to this request only.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if key == "" || value == "" {
			return
		}
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

func newRequestOptions(opts []RequestOption) *requestOptions {
	o := &requestOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
