package magpie_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/magpie"
	"github.com/dmitrymomot/magpie/pkg/apierror"
	"github.com/dmitrymomot/magpie/pkg/clientip"
	"github.com/dmitrymomot/magpie/pkg/config"
	"github.com/dmitrymomot/magpie/pkg/pg"
	"github.com/dmitrymomot/magpie/pkg/redis"
)

// testConfig returns a configuration equal to the env defaults.
func testConfig() magpie.Config {
	return magpie.Config{
		SecretKey:        testSecretKey,
		BaseURL:          "https://api.magpie.im",
		APIVersion:       "v2",
		Timeout:          30 * time.Second,
		ConnectTimeout:   10 * time.Second,
		MaxRetries:       3,
		RetryDelay:       time.Second,
		MaxRetryDelay:    30 * time.Second,
		ValidateParams:   true,
		WebhookTolerance: 300 * time.Second,
		LogFormat:        "json",
		LogLevel:         "info",
		Redis:            redis.Config{RetryAttempts: 1, ConnectTimeout: time.Second},
	}
}

func TestNew_RejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"", "pk_test_123", "secret"} {
		_, err := magpie.New(key)
		assert.ErrorIs(t, err, apierror.ErrConfiguration, key)
	}
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		_, _ = w.Write([]byte("healthy"))
	})
	assert.True(t, client.Ping(context.Background()))
}

func TestClient_Rotate(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, username(r))
		mu.Unlock()
		writeJSON(t, w, http.StatusOK, chargeJSON)
	})

	ctx := context.Background()
	_, err := client.Charges.Retrieve(ctx, "ch_1")
	require.NoError(t, err)

	require.NoError(t, client.Rotate("sk_live_999"))
	_, err = client.Charges.Retrieve(ctx, "ch_1")
	require.NoError(t, err)

	assert.ErrorIs(t, client.Rotate("bad"), apierror.ErrConfiguration)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{testSecretKey, "sk_live_999"}, seen)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cfg, err := magpie.LoadConfig(
		config.WithoutDotEnv(),
		config.WithEnvironment(map[string]string{
			"MAGPIE_SECRET_KEY":              "sk_test_env",
			"MAGPIE_TIMEOUT":                 "5s",
			"MAGPIE_MAX_RETRIES":             "1",
			"MAGPIE_DEBUG":                   "true",
			"MAGPIE_DEFAULT_HEADERS":         "X-Team:payments,X-Env:ci",
			"MAGPIE_WEBHOOK_SECRET":          "whsec_env",
			"MAGPIE_REDIS_URL":               "redis://localhost:6379/1",
			"MAGPIE_WEBHOOK_ALLOWED_SOURCES": "203.0.113.0/24,198.51.100.7",
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, "sk_test_env", cfg.SecretKey)
	assert.Equal(t, "https://api.magpie.im", cfg.BaseURL)
	assert.Equal(t, "v2", cfg.APIVersion)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.False(t, cfg.InsecureSkipVerify)
	assert.True(t, cfg.Debug)
	assert.Equal(t, map[string]string{"X-Team": "payments", "X-Env": "ci"}, cfg.DefaultHeaders)
	assert.Equal(t, "whsec_env", cfg.WebhookSecret)
	assert.Equal(t, 300*time.Second, cfg.WebhookTolerance)
	assert.Equal(t, []string{"203.0.113.0/24", "198.51.100.7"}, cfg.WebhookAllowedSources)
	assert.True(t, cfg.ValidateParams)
	assert.Equal(t, magpie.DefaultCheckoutBaseURL, cfg.CheckoutBaseURL)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Redis.URL)
	assert.Equal(t, "magpie:webhook:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 3, cfg.Redis.RetryAttempts)
}

func TestLoadConfig_MissingSecretKey(t *testing.T) {
	t.Parallel()

	_, err := magpie.LoadConfig(config.WithoutDotEnv(), config.WithEnvironment(map[string]string{}))
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "payments", r.Header.Get("X-Team"))
		assert.Equal(t, "v3", r.Header.Get("X-API-Version"))
		assert.Equal(t, "/v3/charges/ch_1", r.URL.Path)
		writeJSON(t, w, http.StatusOK, chargeJSON)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.BaseURL = srv.URL
	cfg.APIVersion = "v3"
	cfg.DefaultHeaders = map[string]string{"X-Team": "payments"}

	client, err := magpie.NewFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = client.Charges.Retrieve(context.Background(), "ch_1")
	require.NoError(t, err)

	got := client.Transport().Config()
	assert.Equal(t, 3, got.MaxRetries)
	assert.Equal(t, 30*time.Second, got.Timeout)
	assert.False(t, got.InsecureSkipVerify, "a Config without the flag verifies TLS")
}

func TestNewFromConfig_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid log level", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.LogLevel = "loud"
		_, err := magpie.NewFromConfig(context.Background(), cfg)
		assert.Error(t, err)
	})

	t.Run("invalid secret key", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.SecretKey = "nope"
		_, err := magpie.NewFromConfig(context.Background(), cfg)
		assert.ErrorIs(t, err, apierror.ErrConfiguration)
	})

	t.Run("invalid webhook allowlist", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.WebhookAllowedSources = []string{"10.0.0.0/99"}
		_, err := magpie.NewFromConfig(context.Background(), cfg)
		assert.ErrorIs(t, err, clientip.ErrInvalidPrefix)
	})

	t.Run("postgres unreachable", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Postgres = pg.Config{URL: "postgres://magpie@127.0.0.1:1/magpie?connect_timeout=1", RetryAttempts: 1}
		_, err := magpie.NewFromConfig(context.Background(), cfg)
		assert.ErrorIs(t, err, pg.ErrFailedToOpenDBConnection)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		t.Parallel()
		srv := miniredis.RunT(t)
		addr := srv.Addr()
		srv.Close()

		cfg := testConfig()
		cfg.Redis.URL = "redis://" + addr
		_, err := magpie.NewFromConfig(context.Background(), cfg)
		assert.ErrorIs(t, err, redis.ErrNotReady)
	})
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	srv := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis.URL = "redis://" + srv.Addr()

	client, err := magpie.NewFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}

func TestClient_Healthcheck(t *testing.T) {
	t.Parallel()

	t.Run("no store", func(t *testing.T) {
		t.Parallel()
		client, err := magpie.NewFromConfig(context.Background(), testConfig())
		require.NoError(t, err)
		assert.NoError(t, client.Healthcheck(context.Background()))
	})

	t.Run("redis store", func(t *testing.T) {
		t.Parallel()
		srv := miniredis.RunT(t)
		cfg := testConfig()
		cfg.Redis.URL = "redis://" + srv.Addr()

		client, err := magpie.NewFromConfig(context.Background(), cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		require.NoError(t, client.Healthcheck(context.Background()))

		srv.Close()
		assert.ErrorIs(t, client.Healthcheck(context.Background()), redis.ErrHealthcheckFailed)
	})
}
