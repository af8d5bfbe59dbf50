package magpie_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/magpie"
	"github.com/dmitrymomot/magpie/pkg/transport"
)

const testSecretKey = "sk_test_123"

// newTestClient points every service at srv: the versioned API at /v2/,
// checkout at /checkout/, links at /links-api and requests at /requests-api/.
func newTestClient(t *testing.T, h http.HandlerFunc, opts ...magpie.Option) *magpie.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	base := []magpie.Option{
		magpie.WithTransportOptions(
			transport.WithBaseURL(srv.URL),
			transport.WithBackoff(transport.FixedBackoff{Interval: time.Millisecond}),
		),
		magpie.WithCheckoutBaseURL(srv.URL + "/checkout/"),
		magpie.WithPaymentLinksBaseURL(srv.URL + "/links-api"),
		magpie.WithPaymentRequestsBaseURL(srv.URL + "/requests-api/"),
	}
	client, err := magpie.New(testSecretKey, append(base, opts...)...)
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func readBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	assert.NoError(t, err)
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	assert.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func username(r *http.Request) string {
	user, _, _ := r.BasicAuth()
	return user
}
