package magpie

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/magpie/pkg/qrcode"
)

// PaymentLink is a reusable URL that accepts payments for fixed line items.
type PaymentLink struct {
	rawJSON `json:"-"`

	ID                        string                     `json:"id"`
	Object                    string                     `json:"object"`
	Active                    bool                       `json:"active"`
	AllowAdjustableQuantity   bool                       `json:"allow_adjustable_quantity"`
	Branding                  *Branding                  `json:"branding,omitempty"`
	Created                   int64                      `json:"created"`
	Updated                   int64                      `json:"updated"`
	Currency                  string                     `json:"currency"`
	InternalName              string                     `json:"internal_name"`
	LineItems                 []LineItem                 `json:"line_items"`
	Livemode                  bool                       `json:"livemode"`
	Metadata                  Metadata                   `json:"metadata,omitempty"`
	PaymentMethodTypes        []string                   `json:"payment_method_types"`
	RequireAuth               bool                       `json:"require_auth"`
	URL                       string                     `json:"url"`
	Description               string                     `json:"description,omitempty"`
	Expiry                    string                     `json:"expiry,omitempty"`
	MaximumPayments           *int                       `json:"maximum_payments,omitempty"`
	PhoneNumberCollection     bool                       `json:"phone_number_collection,omitempty"`
	RedirectURL               string                     `json:"redirect_url,omitempty"`
	ShippingAddressCollection *ShippingAddressCollection `json:"shipping_address_collection,omitempty"`
}

// QRCode renders URL as a PNG QR code.
func (l *PaymentLink) QRCode(opts ...qrcode.Option) ([]byte, error) {
	return qrcode.Generate(l.URL, opts...)
}

// PaymentLinkParams creates or updates a payment link.
type PaymentLinkParams struct {
	AllowAdjustableQuantity   bool                       `json:"allow_adjustable_quantity"`
	Currency                  string                     `json:"currency" validate:"required,len=3"`
	InternalName              string                     `json:"internal_name" validate:"required"`
	LineItems                 []LineItem                 `json:"line_items" validate:"required,min=1,dive"`
	PaymentMethodTypes        []string                   `json:"payment_method_types" validate:"required,min=1"`
	Branding                  *Branding                  `json:"branding,omitempty"`
	Description               string                     `json:"description,omitempty"`
	Expiry                    string                     `json:"expiry,omitempty"`
	MaximumPayments           *int                       `json:"maximum_payments,omitempty"`
	Metadata                  Metadata                   `json:"metadata,omitempty"`
	PhoneNumberCollection     *bool                      `json:"phone_number_collection,omitempty"`
	RedirectURL               string                     `json:"redirect_url,omitempty" validate:"omitempty,url"`
	RequireAuth               *bool                      `json:"require_auth,omitempty"`
	ShippingAddressCollection *ShippingAddressCollection `json:"shipping_address_collection,omitempty"`
}

type PaymentLinkService struct {
	service
}

func (s *PaymentLinkService) Create(ctx context.Context, params *PaymentLinkParams, opts ...RequestOption) (*PaymentLink, error) {
	return call[PaymentLink](ctx, s.service, http.MethodPost, s.path(), body(params), opts)
}

func (s *PaymentLinkService) Retrieve(ctx context.Context, id string, opts ...RequestOption) (*PaymentLink, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return call[PaymentLink](ctx, s.service, http.MethodGet, s.path(id), nil, opts)
}

func (s *PaymentLinkService) Update(ctx context.Context, id string, params *PaymentLinkParams, opts ...RequestOption) (*PaymentLink, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return call[PaymentLink](ctx, s.service, http.MethodPatch, s.path(id), body(params), opts)
}

func (s *PaymentLinkService) Activate(ctx context.Context, id string, opts ...RequestOption) (*PaymentLink, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return call[PaymentLink](ctx, s.service, http.MethodPost, s.path(id, "activate"), nil, opts)
}

// Deactivate stops the link from accepting new payments.
func (s *PaymentLinkService) Deactivate(ctx context.Context, id string, opts ...RequestOption) (*PaymentLink, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return call[PaymentLink](ctx, s.service, http.MethodPost, s.path(id, "deactivate"), nil, opts)
}
