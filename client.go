package magpie

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/magpie/pkg/clientip"
	"github.com/dmitrymomot/magpie/pkg/config"
	"github.com/dmitrymomot/magpie/pkg/logger"
	"github.com/dmitrymomot/magpie/pkg/pg"
	"github.com/dmitrymomot/magpie/pkg/redis"
	"github.com/dmitrymomot/magpie/pkg/transport"
	"github.com/dmitrymomot/magpie/pkg/webhook"
)

// Client is the entry point to the Magpie API. Resource services are safe
// for concurrent use.
type Client struct {
	transport *transport.Client
	resolver  CredentialResolver

	closeOnce sync.Once
	closers   []func() error
	checks    []func(context.Context) error

	Charges          *ChargeService
	Customers        *CustomerService
	Sources          *SourceService
	CheckoutSessions *CheckoutSessionService
	PaymentLinks     *PaymentLinkService
	PaymentRequests  *PaymentRequestService
	Organization     *OrganizationService
	Webhooks         *WebhookService
}

// New returns a client authenticated with secretKey, which must start with "sk_".
func New(secretKey string, opts ...Option) (*Client, error) {
	return newClient(secretKey, newClientOptions(opts))
}

func newClient(secretKey string, o *clientOptions) (*Client, error) {
	topts := o.transport
	wopts := o.webhook
	if o.logger != nil {
		topts = append([]transport.Option{transport.WithLogger(o.logger)}, topts...)
		wopts = append([]webhook.Option{webhook.WithLogger(o.logger)}, wopts...)
	}

	t, err := transport.New(secretKey, topts...)
	if err != nil {
		return nil, err
	}

	svc := func(base, origin string) service {
		return newService(t, base, origin, !o.skipValidation)
	}

	c := &Client{
		transport:        t,
		Charges:          &ChargeService{service: svc("charges", "")},
		Customers:        &CustomerService{service: svc("customers", "")},
		CheckoutSessions: &CheckoutSessionService{service: svc("", o.checkoutBaseURL)},
		PaymentLinks:     &PaymentLinkService{service: svc("links", o.paymentLinksBaseURL)},
		PaymentRequests:  &PaymentRequestService{service: svc("requests", o.paymentRequestsBaseURL)},
		Organization:     &OrganizationService{service: svc("me", "")},
		Webhooks:         &WebhookService{secret: o.webhookSecret, opts: wopts},
	}

	c.resolver = o.resolver
	if c.resolver == nil {
		c.resolver = NewOrganizationKeyResolver(c.Organization, t.Credential)
	}
	c.Sources = &SourceService{service: svc("sources", ""), resolver: c.resolver}

	return c, nil
}

// LoadConfig reads Config from MAGPIE_* environment variables and an
// optional .env file.
func LoadConfig(opts ...config.Option) (Config, error) {
	var cfg Config
	opts = append([]config.Option{config.WithPrefix(EnvPrefix)}, opts...)
	if err := config.Load(&cfg, opts...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewFromEnv builds a client from LoadConfig.
func NewFromEnv(ctx context.Context, opts ...Option) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewFromConfig(ctx, cfg, opts...)
}

// NewFromConfig builds a client from cfg. When cfg.Redis.URL or
// cfg.Postgres.URL is set it connects to that store and protects the webhook
// handler against replays; Close releases the connection. Options override cfg.
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	o := newClientOptions(nil)
	o.checkoutBaseURL = firstNonEmpty(cfg.CheckoutBaseURL, o.checkoutBaseURL)
	o.paymentLinksBaseURL = firstNonEmpty(cfg.PaymentLinksBaseURL, o.paymentLinksBaseURL)
	o.paymentRequestsBaseURL = firstNonEmpty(cfg.PaymentRequestsBaseURL, o.paymentRequestsBaseURL)
	o.webhookSecret = cfg.WebhookSecret

	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	o.logger = log

	o.transport = []transport.Option{transport.WithConfig(transport.Config{
		BaseURL:            cfg.BaseURL,
		APIVersion:         cfg.APIVersion,
		Timeout:            cfg.Timeout,
		ConnectTimeout:     cfg.ConnectTimeout,
		MaxRetries:         cfg.MaxRetries,
		RetryDelay:         cfg.RetryDelay,
		MaxRetryDelay:      cfg.MaxRetryDelay,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		Debug:              cfg.Debug,
		DefaultHeaders:     cfg.DefaultHeaders,
		RequestsPerSecond:  cfg.RequestsPerSecond,
		Burst:              cfg.RateBurst,
	})}
	o.skipValidation = !cfg.ValidateParams
	if cfg.AutoIdempotency {
		o.transport = append(o.transport, transport.WithAutoIdempotency())
	}
	if cfg.WebhookTolerance > 0 {
		o.webhook = append(o.webhook, webhook.WithTolerance(cfg.WebhookTolerance))
	}
	if len(cfg.WebhookAllowedSources) > 0 {
		list, err := clientip.ParseAllowlist(cfg.WebhookAllowedSources...)
		if err != nil {
			return nil, err
		}
		o.webhook = append(o.webhook, webhook.WithAllowedSources(list))
	}
	if cfg.WebhookTrustProxy {
		o.webhook = append(o.webhook, webhook.WithTrustedProxy())
	}

	store, err := connectReplayStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if store != nil {
		o.webhook = append(o.webhook, webhook.WithReplayGuard(store.guard))
	}

	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	c, err := newClient(cfg.SecretKey, o)
	if err != nil {
		if store != nil {
			_ = store.close()
		}
		return nil, err
	}
	if store != nil {
		c.closers = append(c.closers, store.close)
		c.checks = append(c.checks, store.check)
	}
	return c, nil
}

// replayStore is a connected webhook replay store.
type replayStore struct {
	guard webhook.ReplayGuard
	close func() error
	check func(context.Context) error
}

// connectReplayStore opens the store configured for webhook replay
// protection, or returns nil when none is. Redis wins when both stores are
// configured.
func connectReplayStore(ctx context.Context, cfg Config, log *slog.Logger) (*replayStore, error) {
	switch {
	case cfg.Redis.Enabled():
		rdb, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &replayStore{
			guard: webhook.NewRedisReplayGuard(rdb, cfg.Redis.KeyPrefix),
			close: rdb.Close,
			check: func(ctx context.Context) error { return redis.Healthcheck(ctx, rdb) },
		}, nil

	case cfg.Postgres.Enabled():
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.AutoMigrate {
			if err := pg.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &replayStore{
			guard: pg.NewReplayGuard(pool),
			close: func() error { pool.Close(); return nil },
			check: func(ctx context.Context) error { return pg.Healthcheck(ctx, pool) },
		}, nil
	}
	return nil, nil
}

func newLogger(cfg Config) (*slog.Logger, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		level = slog.LevelDebug
	}
	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return logger.New(logger.WithLevel(level), logger.WithFormat(format)), nil
}

// Transport exposes the underlying HTTP client for endpoints without a
// typed service.
func (c *Client) Transport() *transport.Client {
	return c.transport
}

// Rotate switches to another API key. The cached public key is dropped so
// the next source call fetches the one matching the new key.
func (c *Client) Rotate(key string) error {
	if err := c.transport.Rotate(key); err != nil {
		return err
	}
	c.resolver.Reset()
	return nil
}

// Ping reports whether the API is reachable and healthy.
func (c *Client) Ping(ctx context.Context) bool {
	return c.transport.Ping(ctx)
}

// Healthcheck reports whether the stores opened by NewFromConfig answer.
// It returns nil when there are none.
func (c *Client) Healthcheck(ctx context.Context) error {
	var errs []error
	for _, check := range c.checks {
		if err := check(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases connections opened by NewFromConfig. It is safe to call
// more than once.
func (c *Client) Close() error {
	var errs []error
	c.closeOnce.Do(func() {
		for _, fn := range c.closers {
			if err := fn(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
