package magpie_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/magpie"
	"github.com/dmitrymomot/magpie/pkg/apierror"
)

func TestOrganization_Me(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2/me", r.URL.Path)
		writeJSON(t, w, http.StatusOK, organizationJSON)
	})

	org, err := client.Organization.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "org_1", org.ID)
	assert.Equal(t, "Acme", org.Title)
	assert.True(t, org.PaymentMethodEnabled("card"))
	assert.False(t, org.PaymentMethodEnabled("gcash"))
	assert.False(t, org.PaymentMethodEnabled("maya"))
	assert.Equal(t, "approved", org.PaymentMethodSettings["card"].Status())
}

func TestOrganization_PublicKey(t *testing.T) {
	t.Parallel()

	org := &magpie.Organization{PKTestKey: "pk_test_1", PKLiveKey: "pk_live_1"}

	key, err := org.PublicKey("sk_test_abc")
	require.NoError(t, err)
	assert.Equal(t, "pk_test_1", key)

	key, err = org.PublicKey("sk_live_abc")
	require.NoError(t, err)
	assert.Equal(t, "pk_live_1", key)

	_, err = (&magpie.Organization{PKTestKey: "pk_test_1"}).PublicKey("sk_live_abc")
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, "missing_public_key", apiErr.Code)
	assert.Equal(t, "No live public key available for organization", apiErr.Message)
}

func TestIsTestKey(t *testing.T) {
	t.Parallel()

	assert.True(t, magpie.IsTestKey("sk_test_123"))
	assert.True(t, magpie.IsTestKey("pk_test_123"))
	assert.False(t, magpie.IsTestKey("sk_live_123"))
	assert.False(t, magpie.IsTestKey("sk_testing"))
}
