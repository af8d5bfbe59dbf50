package magpie

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/magpie/pkg/qrcode"
)

// PaymentRequest is an invoice delivered to a customer by email or SMS.
type PaymentRequest struct {
	rawJSON `json:"-"`

	ID                  string     `json:"id"`
	Object              string     `json:"object"`
	AccountName         string     `json:"account_name"`
	AccountSupportEmail string     `json:"account_support_email,omitempty"`
	Branding            *Branding  `json:"branding,omitempty"`
	Created             int64      `json:"created"`
	Updated             int64      `json:"updated"`
	Currency            string     `json:"currency"`
	Customer            string     `json:"customer"`
	CustomerEmail       string     `json:"customer_email"`
	CustomerName        string     `json:"customer_name"`
	CustomerPhone       string     `json:"customer_phone,omitempty"`
	DeliveryMethods     []string   `json:"delivery_methods"`
	Delivered           Delivered  `json:"delivered"`
	LineItems           []LineItem `json:"line_items"`
	Livemode            bool       `json:"livemode"`
	Message             string     `json:"message,omitempty"`
	Metadata            Metadata   `json:"metadata,omitempty"`
	Number              string     `json:"number"`
	Paid                bool       `json:"paid"`
	PaidAt              *int64     `json:"paid_at,omitempty"`
	PaymentDetails      Metadata   `json:"payment_details,omitempty"`
	PaymentMethodTypes  []string   `json:"payment_method_types"`
	PaymentRequestURL   string     `json:"payment_request_url"`
	RequireAuth         bool       `json:"require_auth"`
	Subtotal            int64      `json:"subtotal"`
	Total               int64      `json:"total"`
	Voided              bool       `json:"voided"`
	VoidedAt            *int64     `json:"voided_at,omitempty"`
	VoidReason          string     `json:"void_reason,omitempty"`
}

// Delivered records which channels reached the customer.
type Delivered struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

// QRCode renders PaymentRequestURL as a PNG QR code.
func (r *PaymentRequest) QRCode(opts ...qrcode.Option) ([]byte, error) {
	return qrcode.Generate(r.PaymentRequestURL, opts...)
}

// PaymentRequestParams creates a payment request.
type PaymentRequestParams struct {
	Currency           string     `json:"currency" validate:"required,len=3"`
	Customer           string     `json:"customer" validate:"required"`
	DeliveryMethods    []string   `json:"delivery_methods" validate:"required,min=1,dive,oneof=email sms"`
	LineItems          []LineItem `json:"line_items" validate:"required,min=1,dive"`
	PaymentMethodTypes []string   `json:"payment_method_types" validate:"required,min=1"`
	Branding           *Branding  `json:"branding,omitempty"`
	Message            string     `json:"message,omitempty"`
	Metadata           Metadata   `json:"metadata,omitempty"`
	RequireAuth        *bool      `json:"require_auth,omitempty"`
}

type VoidPaymentRequestParams struct {
	Reason string `json:"reason" validate:"required"`
}

type PaymentRequestService struct {
	service
}

func (s *PaymentRequestService) Create(ctx context.Context, params *PaymentRequestParams, opts ...RequestOption) (*PaymentRequest, error) {
	return call[PaymentRequest](ctx, s.service, http.MethodPost, s.path(), body(params), opts)
}

func (s *PaymentRequestService) Retrieve(ctx context.Context, id string, opts ...RequestOption) (*PaymentRequest, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return call[PaymentRequest](ctx, s.service, http.MethodGet, s.path(id), nil, opts)
}

// Resend delivers the request to the customer again.
func (s *PaymentRequestService) Resend(ctx context.Context, id string, opts ...RequestOption) (*PaymentRequest, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return call[PaymentRequest](ctx, s.service, http.MethodPost, s.path(id, "resend"), nil, opts)
}

// Void cancels an unpaid request. The API wraps the result as
// {"message": ..., "data": {...}}; the inner object is returned.
func (s *PaymentRequestService) Void(ctx context.Context, id string, params *VoidPaymentRequestParams, opts ...RequestOption) (*PaymentRequest, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	res, err := s.do(ctx, http.MethodPost, s.path(id, "void"), body(params), opts)
	if err != nil {
		return nil, err
	}
	raw := res.Body

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		raw = envelope.Data
	}
	return decode[PaymentRequest](res, raw)
}
