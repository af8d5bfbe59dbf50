package magpie

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrymomot/magpie/pkg/apierror"
)

// PaymentMethodApproved is the status of a payment method that can be used.
const PaymentMethodApproved = "approved"

// Organization is the account that owns the API keys.
type Organization struct {
	rawJSON `json:"-"`

	Object                string                          `json:"object"`
	ID                    string                          `json:"id"`
	Title                 string                          `json:"title"`
	AccountName           string                          `json:"account_name"`
	StatementDescriptor   string                          `json:"statement_descriptor"`
	PKTestKey             string                          `json:"pk_test_key"`
	SKTestKey             string                          `json:"sk_test_key"`
	PKLiveKey             string                          `json:"pk_live_key"`
	SKLiveKey             string                          `json:"sk_live_key"`
	Branding              Metadata                        `json:"branding,omitempty"`
	Status                string                          `json:"status"`
	CreatedAt             string                          `json:"created_at"`
	UpdatedAt             string                          `json:"updated_at"`
	PaymentMethodSettings map[string]PaymentMethodSetting `json:"payment_method_settings,omitempty"`
	Rates                 Metadata                        `json:"rates,omitempty"`
	PayoutSettings        Metadata                        `json:"payout_settings,omitempty"`
	Metadata              Metadata                        `json:"metadata,omitempty"`
	BusinessAddress       string                          `json:"business_address,omitempty"`
}

// PaymentMethodSetting is the per-method configuration of an organization.
type PaymentMethodSetting map[string]any

// Status returns the approval status, empty if none is reported.
func (s PaymentMethodSetting) Status() string {
	v, _ := s["status"].(string)
	return v
}

// IsTestKey reports whether key belongs to the test environment.
func IsTestKey(key string) bool {
	return strings.Contains(key, "_test_")
}

// PublicKey returns the public key matching the mode of secretKey.
// It fails with code missing_public_key when the organization has none.
func (o *Organization) PublicKey(secretKey string) (string, error) {
	mode, key := "live", o.PKLiveKey
	if IsTestKey(secretKey) {
		mode, key = "test", o.PKTestKey
	}
	if key == "" {
		return "", &apierror.Error{
			Kind:    apierror.KindAPI,
			Message: "No " + mode + " public key available for organization",
			Type:    apierror.TypeAPI,
			Code:    "missing_public_key",
		}
	}
	return key, nil
}

// PaymentMethodEnabled reports whether the method is approved for use.
func (o *Organization) PaymentMethodEnabled(method string) bool {
	return o.PaymentMethodSettings[method].Status() == PaymentMethodApproved
}

type OrganizationService struct {
	service
}

// Me returns the organization of the current secret key.
func (s *OrganizationService) Me(ctx context.Context, opts ...RequestOption) (*Organization, error) {
	return call[Organization](ctx, s.service, http.MethodGet, s.path(), nil, opts)
}
