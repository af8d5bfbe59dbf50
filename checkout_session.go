package magpie

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/magpie/pkg/qrcode"
)

type SessionMode string

const (
	SessionModePayment      SessionMode = "payment"
	SessionModeSetup        SessionMode = "setup"
	SessionModeSubscription SessionMode = "subscription"
)

type PaymentStatus string

const (
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusUnpaid     PaymentStatus = "unpaid"
	PaymentStatusExpired    PaymentStatus = "expired"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusVoided     PaymentStatus = "voided"
)

// SubmitType sets the label of the pay button on the hosted page.
type SubmitType string

const (
	SubmitPay    SubmitType = "pay"
	SubmitBook   SubmitType = "book"
	SubmitDonate SubmitType = "donate"
	SubmitSend   SubmitType = "send"
)

type BillingAddressCollection string

const (
	BillingAddressAuto     BillingAddressCollection = "auto"
	BillingAddressRequired BillingAddressCollection = "required"
)

// Branding customizes hosted pages.
type Branding struct {
	Icon           string `json:"icon,omitempty"`
	Logo           string `json:"logo,omitempty"`
	UseLogo        bool   `json:"use_logo,omitempty"`
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
}

// LineItem is one purchased item. Amount is the unit price in minor units.
type LineItem struct {
	Name        string `json:"name" validate:"required"`
	Amount      int64  `json:"amount" validate:"gte=0"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Remaining   *int   `json:"remaining,omitempty"`
}

type Merchant struct {
	Name         string `json:"name"`
	SupportEmail string `json:"support_email,omitempty"`
	SupportPhone string `json:"support_phone,omitempty"`
}

type ShippingAddressCollection struct {
	AllowedCountries []string `json:"allowed_countries"`
}

// CheckoutSession is a hosted payment page.
type CheckoutSession struct {
	rawJSON `json:"-"`

	ID                        string                     `json:"id"`
	Object                    string                     `json:"object"`
	AmountSubtotal            int64                      `json:"amount_subtotal"`
	AmountTotal               int64                      `json:"amount_total"`
	Branding                  *Branding                  `json:"branding,omitempty"`
	BillingAddressCollection  BillingAddressCollection   `json:"billing_address_collection,omitempty"`
	CancelURL                 string                     `json:"cancel_url"`
	SuccessURL                string                     `json:"success_url"`
	CreatedAt                 string                     `json:"created_at"`
	ExpiresAt                 string                     `json:"expires_at"`
	LastUpdated               string                     `json:"last_updated"`
	Currency                  string                     `json:"currency"`
	CustomerNameCollection    bool                       `json:"customer_name_collection"`
	LineItems                 []LineItem                 `json:"line_items"`
	Livemode                  bool                       `json:"livemode"`
	Locale                    string                     `json:"locale,omitempty"`
	Merchant                  *Merchant                  `json:"merchant,omitempty"`
	Metadata                  Metadata                   `json:"metadata,omitempty"`
	Mode                      SessionMode                `json:"mode"`
	PaymentMethodTypes        []string                   `json:"payment_method_types"`
	PaymentStatus             PaymentStatus              `json:"payment_status"`
	PaymentURL                string                     `json:"payment_url"`
	PhoneNumberCollection     bool                       `json:"phone_number_collection"`
	RequireAuth               bool                       `json:"require_auth"`
	SubmitType                SubmitType                 `json:"submit_type,omitempty"`
	BankCode                  string                     `json:"bank_code,omitempty"`
	BillingAddress            *Address                   `json:"billing_address,omitempty"`
	ShippingAddress           *Address                   `json:"shipping_address,omitempty"`
	ShippingAddressCollection *ShippingAddressCollection `json:"shipping_address_collection,omitempty"`
	ClientReferenceID         string                     `json:"client_reference_id,omitempty"`
	Customer                  string                     `json:"customer,omitempty"`
	CustomerEmail             string                     `json:"customer_email,omitempty"`
	CustomerName              string                     `json:"customer_name,omitempty"`
	CustomerPhone             string                     `json:"customer_phone,omitempty"`
	Description               string                     `json:"description,omitempty"`
	PaymentDetails            *Charge                    `json:"payment_details,omitempty"`
}

// Paid reports whether the session collected its payment.
func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// QRCode renders PaymentURL as a PNG QR code.
func (s *CheckoutSession) QRCode(opts ...qrcode.Option) ([]byte, error) {
	return qrcode.Generate(s.PaymentURL, opts...)
}

// CheckoutSessionParams creates a checkout session.
type CheckoutSessionParams struct {
	CancelURL                 string                     `json:"cancel_url" validate:"required,url"`
	SuccessURL                string                     `json:"success_url" validate:"required,url"`
	Currency                  string                     `json:"currency" validate:"required,len=3"`
	LineItems                 []LineItem                 `json:"line_items" validate:"required,min=1,dive"`
	Mode                      SessionMode                `json:"mode" validate:"required,oneof=payment setup subscription"`
	PaymentMethodTypes        []string                   `json:"payment_method_types" validate:"required,min=1"`
	BankCode                  string                     `json:"bank_code,omitempty"`
	Branding                  *Branding                  `json:"branding,omitempty"`
	BillingAddressCollection  BillingAddressCollection   `json:"billing_address_collection,omitempty"`
	ClientReferenceID         string                     `json:"client_reference_id,omitempty"`
	Customer                  string                     `json:"customer,omitempty"`
	CustomerEmail             string                     `json:"customer_email,omitempty"`
	CustomerName              string                     `json:"customer_name,omitempty"`
	CustomerNameCollection    *bool                      `json:"customer_name_collection,omitempty"`
	CustomerPhone             string                     `json:"customer_phone,omitempty"`
	Description               string                     `json:"description,omitempty"`
	Locale                    string                     `json:"locale,omitempty"`
	Metadata                  Metadata                   `json:"metadata,omitempty"`
	PhoneNumberCollection     *bool                      `json:"phone_number_collection,omitempty"`
	RequireAuth               *bool                      `json:"require_auth,omitempty"`
	ShippingAddressCollection *ShippingAddressCollection `json:"shipping_address_collection,omitempty"`
	SubmitType                SubmitType                 `json:"submit_type,omitempty"`
}

// CheckoutSessionService manages checkout sessions, which live on their own origin.
type CheckoutSessionService struct {
	service
}

func (s *CheckoutSessionService) Create(ctx context.Context, params *CheckoutSessionParams, opts ...RequestOption) (*CheckoutSession, error) {
	return call[CheckoutSession](ctx, s.service, http.MethodPost, s.path(), body(params), opts)
}

func (s *CheckoutSessionService) Retrieve(ctx context.Context, id string, opts ...RequestOption) (*CheckoutSession, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return call[CheckoutSession](ctx, s.service, http.MethodGet, s.path(id), nil, opts)
}

// Capture collects an authorized session payment.
func (s *CheckoutSessionService) Capture(ctx context.Context, id string, params *CaptureParams, opts ...RequestOption) (*CheckoutSession, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if params == nil {
		params = &CaptureParams{}
	}
	return call[CheckoutSession](ctx, s.service, http.MethodPost, s.path(id, "capture"), body(params), opts)
}

// Expire closes the session so its payment URL stops accepting payments.
func (s *CheckoutSessionService) Expire(ctx context.Context, id string, opts ...RequestOption) (*CheckoutSession, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return call[CheckoutSession](ctx, s.service, http.MethodPost, s.path(id, "expire"), nil, opts)
}
