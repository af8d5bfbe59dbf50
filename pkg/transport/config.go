package transport

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Version is reported in the User-Agent header.
const Version = "1.0.0"

// Default connection settings.
const (
	DefaultBaseURL        = "https://api.magpie.im"
	DefaultAPIVersion     = "v2"
	DefaultTimeout        = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = time.Second
	DefaultMaxRetryDelay  = 30 * time.Second
)

// Standard request headers.
const (
	HeaderIdempotencyKey = "X-Idempotency-Key"
	HeaderAPIVersion     = "X-API-Version"
	HeaderAPIKey         = "X-API-Key"
)

// Config holds the connection settings of a Client.
// It is copied into the client at construction and not shared afterwards.
type Config struct {
	BaseURL        string
	APIVersion     string
	Timeout        time.Duration
	ConnectTimeout time.Duration

	MaxRetries    int           // negative disables retries; zero means DefaultMaxRetries in WithConfig
	RetryDelay    time.Duration // base delay of the first retry
	MaxRetryDelay time.Duration // upper bound for any single retry delay

	// RequestsPerSecond throttles outgoing attempts, retries included.
	// Zero disables throttling.
	RequestsPerSecond float64
	Burst             int

	// InsecureSkipVerify disables TLS certificate verification. The zero
	// value verifies.
	InsecureSkipVerify bool
	Debug              bool
	DefaultHeaders     map[string]string
	UserAgent          string
}

// DefaultConfig returns the production defaults of the Magpie API.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		APIVersion:     DefaultAPIVersion,
		Timeout:        DefaultTimeout,
		ConnectTimeout: DefaultConnectTimeout,
		MaxRetries:     DefaultMaxRetries,
		RetryDelay:     DefaultRetryDelay,
		MaxRetryDelay:  DefaultMaxRetryDelay,
		DefaultHeaders: map[string]string{},
		UserAgent:      DefaultUserAgent(),
	}
}

// APIURL returns the versioned origin every non-overridden request is sent to.
// The result always ends with exactly one slash.
func (c Config) APIURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.Trim(c.APIVersion, "/") + "/"
}

// DefaultUserAgent builds the User-Agent string sent with every request.
func DefaultUserAgent() string {
	return fmt.Sprintf("magpie-go/%s (Go/%s; %s/%s)", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
