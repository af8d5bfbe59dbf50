package magpie

import (
	"time"

	"github.com/dmitrymomot/magpie/pkg/pg"
	"github.com/dmitrymomot/magpie/pkg/redis"
)

// EnvPrefix is prepended to every variable read by NewFromEnv.
const EnvPrefix = "MAGPIE_"

// Alternate origins of the hosted products.
const (
	DefaultCheckoutBaseURL        = "https://api.pay.magpie.im/"
	DefaultPaymentLinksBaseURL    = "https://buy.magpie.im/api/v1"
	DefaultPaymentRequestsBaseURL = "https://request.magpie.im/api/v1/"
)

// Config is the complete client configuration. Tags name the variables read
// by NewFromEnv, relative to EnvPrefix.
type Config struct {
	SecretKey      string        `env:"SECRET_KEY,required"`
	BaseURL        string        `env:"BASE_URL" envDefault:"https://api.magpie.im"`
	APIVersion     string        `env:"API_VERSION" envDefault:"v2"`
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
	MaxRetries     int           `env:"MAX_RETRIES" envDefault:"3"` // zero means 3, negative disables retries
	RetryDelay     time.Duration `env:"RETRY_DELAY" envDefault:"1s"`
	MaxRetryDelay  time.Duration `env:"MAX_RETRY_DELAY" envDefault:"30s"`
	// InsecureSkipVerify turns TLS certificate checks off. The zero value verifies.
	InsecureSkipVerify bool              `env:"INSECURE_SKIP_VERIFY" envDefault:"false"`
	Debug              bool              `env:"DEBUG" envDefault:"false"`
	DefaultHeaders     map[string]string `env:"DEFAULT_HEADERS"` // Key1:Value1,Key2:Value2

	// RequestsPerSecond throttles outgoing requests; zero disables it.
	RequestsPerSecond float64 `env:"REQUESTS_PER_SECOND" envDefault:"0"`
	RateBurst         int     `env:"RATE_BURST" envDefault:"1"`

	// AutoIdempotency attaches a generated key to every POST so that
	// create calls can be retried safely.
	AutoIdempotency bool `env:"AUTO_IDEMPOTENCY" envDefault:"false"`
	// ValidateParams checks request params locally before sending them.
	ValidateParams bool `env:"VALIDATE_PARAMS" envDefault:"true"`

	CheckoutBaseURL        string `env:"CHECKOUT_BASE_URL" envDefault:"https://api.pay.magpie.im/"`
	PaymentLinksBaseURL    string `env:"PAYMENT_LINKS_BASE_URL" envDefault:"https://buy.magpie.im/api/v1"`
	PaymentRequestsBaseURL string `env:"PAYMENT_REQUESTS_BASE_URL" envDefault:"https://request.magpie.im/api/v1/"`

	WebhookSecret    string        `env:"WEBHOOK_SECRET"`
	WebhookTolerance time.Duration `env:"WEBHOOK_TOLERANCE" envDefault:"300s"`
	// WebhookAllowedSources lists addresses or CIDR prefixes allowed to
	// deliver webhooks; empty allows everyone.
	WebhookAllowedSources []string `env:"WEBHOOK_ALLOWED_SOURCES" envSeparator:","`
	WebhookTrustProxy     bool     `env:"WEBHOOK_TRUST_PROXY" envDefault:"false"`

	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis backs webhook replay protection when Redis.URL is set.
	Redis redis.Config `envPrefix:"REDIS_"`
	// Postgres is used for replay protection when Redis is not configured.
	Postgres pg.Config `envPrefix:"PG_"`
}
