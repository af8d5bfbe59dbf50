package magpie_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/magpie"
	"github.com/dmitrymomot/magpie/pkg/apierror"
	"github.com/dmitrymomot/magpie/pkg/transport"
)

var organizationJSON = map[string]any{
	"object":      "organization",
	"id":          "org_1",
	"title":       "Acme",
	"pk_test_key": "pk_test_abc",
	"pk_live_key": "pk_live_abc",
	"payment_method_settings": map[string]any{
		"card":  map[string]any{"status": "approved"},
		"gcash": map[string]any{"status": "pending"},
	},
}

// sourceServer serves /v2/me and /v2/sources and counts organization lookups.
func sourceServer(t *testing.T, meCalls *atomic.Int32, org map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/me":
			meCalls.Add(1)
			assert.True(t, strings.HasPrefix(username(r), "sk_"))
			writeJSON(t, w, http.StatusOK, org)
		case "/v2/sources", "/v2/sources/src_1":
			writeJSON(t, w, http.StatusOK, map[string]any{
				"id":   "src_1",
				"type": "card",
				"card": map[string]any{"last4": "4242", "exp_month": "12", "exp_year": "2030"},
				// echo the credential so tests can check it
				"metadata": map[string]any{"key": username(r)},
			})
		default:
			http.NotFound(w, r)
		}
	}
}

func TestSources_UsePublicKey(t *testing.T) {
	t.Parallel()

	var meCalls atomic.Int32
	client := newTestClient(t, sourceServer(t, &meCalls, organizationJSON))
	ctx := context.Background()

	src, err := client.Sources.Create(ctx, &magpie.SourceParams{
		Type: magpie.SourceCard,
		Card: &magpie.CardParams{Name: "Jane", Number: "4242424242424242", ExpMonth: "12", ExpYear: "2030", CVC: "123"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pk_test_abc", src.Metadata["key"])
	assert.Equal(t, "4242", src.Card.Last4)

	src, err = client.Sources.Retrieve(ctx, "src_1")
	require.NoError(t, err)
	assert.Equal(t, "pk_test_abc", src.Metadata["key"])

	assert.Equal(t, int32(1), meCalls.Load(), "public key is fetched once")

	// other services keep the secret key
	assert.Equal(t, testSecretKey, client.Transport().Credential())
}

func TestSources_ConcurrentFirstUse(t *testing.T) {
	t.Parallel()

	var meCalls atomic.Int32
	client := newTestClient(t, sourceServer(t, &meCalls, organizationJSON))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Sources.Retrieve(context.Background(), "src_1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), meCalls.Load())
}

func TestSources_RotateRefetchesKey(t *testing.T) {
	t.Parallel()

	var meCalls atomic.Int32
	client := newTestClient(t, sourceServer(t, &meCalls, organizationJSON))
	ctx := context.Background()

	_, err := client.Sources.Retrieve(ctx, "src_1")
	require.NoError(t, err)

	require.NoError(t, client.Rotate("sk_live_456"))

	src, err := client.Sources.Retrieve(ctx, "src_1")
	require.NoError(t, err)
	assert.Equal(t, "pk_live_abc", src.Metadata["key"])
	assert.Equal(t, int32(2), meCalls.Load())
}

func TestSources_PublicKeyCredentialUsedAsIs(t *testing.T) {
	t.Parallel()

	var meCalls atomic.Int32
	client := newTestClient(t, sourceServer(t, &meCalls, organizationJSON))
	require.NoError(t, client.Rotate("pk_test_direct"))

	src, err := client.Sources.Retrieve(context.Background(), "src_1")
	require.NoError(t, err)
	assert.Equal(t, "pk_test_direct", src.Metadata["key"])
	assert.Zero(t, meCalls.Load())
}

func TestSources_MissingPublicKey(t *testing.T) {
	t.Parallel()

	var meCalls atomic.Int32
	client := newTestClient(t, sourceServer(t, &meCalls, map[string]any{"id": "org_1", "pk_live_key": "pk_live_abc"}))

	_, err := client.Sources.Retrieve(context.Background(), "src_1")
	require.ErrorIs(t, err, apierror.ErrAPI)

	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, "missing_public_key", apiErr.Code)
	assert.Equal(t, apierror.TypeAPI, apiErr.Type)
	assert.Equal(t, "No test public key available for organization", apiErr.Message)
}

func TestSources_LookupFailureNotCached(t *testing.T) {
	t.Parallel()

	var meCalls atomic.Int32
	var fail atomic.Bool
	fail.Store(true)

	ok := sourceServer(t, &meCalls, organizationJSON)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/me" && fail.Load() {
			meCalls.Add(1)
			writeJSON(t, w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"message": "bad key"}})
			return
		}
		ok(w, r)
	})

	_, err := client.Sources.Retrieve(context.Background(), "src_1")
	require.ErrorIs(t, err, apierror.ErrAuthentication)

	fail.Store(false)
	src, err := client.Sources.Retrieve(context.Background(), "src_1")
	require.NoError(t, err)
	assert.Equal(t, "pk_test_abc", src.Metadata["key"])
	assert.Equal(t, int32(2), meCalls.Load())
}

func TestSources_CustomResolver(t *testing.T) {
	t.Parallel()

	var meCalls atomic.Int32
	client := newTestClient(t, sourceServer(t, &meCalls, organizationJSON),
		magpie.WithCredentialResolver(magpie.StaticKeyResolver("pk_test_static")),
		magpie.WithTransportOptions(transport.WithMaxRetries(0)),
	)

	src, err := client.Sources.Retrieve(context.Background(), "src_1")
	require.NoError(t, err)
	assert.Equal(t, "pk_test_static", src.Metadata["key"])
	assert.Zero(t, meCalls.Load())
}
