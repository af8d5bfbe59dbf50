package magpie

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/magpie/pkg/transport"
)

// SourceType is the payment method behind a source.
type SourceType string

const (
	SourceCard    SourceType = "card"
	SourceBPI     SourceType = "bpi"
	SourceQRPH    SourceType = "qrph"
	SourceGCash   SourceType = "gcash"
	SourceMaya    SourceType = "maya"
	SourcePayMaya SourceType = "paymaya"
)

// Source is a tokenized payment instrument.
type Source struct {
	rawJSON `json:"-"`

	ID          string       `json:"id"`
	Object      string       `json:"object"`
	Type        SourceType   `json:"type"`
	Redirect    *Redirect    `json:"redirect,omitempty"`
	Card        *Card        `json:"card,omitempty"`
	BankAccount *BankAccount `json:"bank_account,omitempty"`
	Owner       *SourceOwner `json:"owner,omitempty"`
	Vaulted     bool         `json:"vaulted"`
	Used        bool         `json:"used"`
	Livemode    bool         `json:"livemode"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
	Metadata    Metadata     `json:"metadata,omitempty"`
}

// Redirect holds the URLs the payer returns to after authorization.
type Redirect struct {
	Success string `json:"success"`
	Fail    string `json:"fail"`
	Notify  string `json:"notify,omitempty"`
}

type Card struct {
	ID             string `json:"id"`
	Object         string `json:"object"`
	Name           string `json:"name"`
	Last4          string `json:"last4"`
	ExpMonth       string `json:"exp_month"`
	ExpYear        string `json:"exp_year"`
	Brand          string `json:"brand"`
	Country        string `json:"country"`
	CVCChecked     string `json:"cvc_checked"`
	Funding        string `json:"funding"`
	IssuingBank    string `json:"issuing_bank"`
	AddressLine1   string `json:"address_line1,omitempty"`
	AddressLine2   string `json:"address_line2,omitempty"`
	AddressCity    string `json:"address_city,omitempty"`
	AddressState   string `json:"address_state,omitempty"`
	AddressZip     string `json:"address_zip,omitempty"`
	AddressCountry string `json:"address_country,omitempty"`
}

type BankAccount struct {
	ReferenceID   string   `json:"reference_id"`
	BankType      string   `json:"bank_type"`
	BankCode      string   `json:"bank_code"`
	AccountName   string   `json:"account_name"`
	AccountNumber string   `json:"account_number"`
	AccountType   string   `json:"account_type"`
	ExpiresAt     string   `json:"expires_at"`
	Metadata      Metadata `json:"metadata,omitempty"`
}

type SourceOwner struct {
	Name           string           `json:"name,omitempty"`
	AddressCountry string           `json:"address_country,omitempty"`
	Billing        *OwnerAddressing `json:"billing,omitempty"`
	Shipping       *OwnerAddressing `json:"shipping,omitempty"`
}

type OwnerAddressing struct {
	Name        string   `json:"name,omitempty"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	Email       string   `json:"email,omitempty"`
	Address     *Address `json:"address,omitempty"`
}

// Address is a postal address. Barangay is the Philippine district level.
type Address struct {
	Name     string `json:"name,omitempty"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	Barangay string `json:"barangay,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	Country  string `json:"country"`
}

// SourceParams creates a source.
type SourceParams struct {
	Type     SourceType   `json:"type" validate:"required,oneof=card bpi qrph gcash maya paymaya"`
	Card     *CardParams  `json:"card,omitempty"`
	Redirect *Redirect    `json:"redirect,omitempty"`
	Owner    *SourceOwner `json:"owner,omitempty"`
	Metadata Metadata     `json:"metadata,omitempty"`
}

type CardParams struct {
	Name           string `json:"name" validate:"required"`
	Number         string `json:"number" validate:"required"`
	ExpMonth       string `json:"exp_month" validate:"required"`
	ExpYear        string `json:"exp_year" validate:"required"`
	CVC            string `json:"cvc" validate:"required"`
	AddressLine1   string `json:"address_line1,omitempty"`
	AddressLine2   string `json:"address_line2,omitempty"`
	AddressCity    string `json:"address_city,omitempty"`
	AddressState   string `json:"address_state,omitempty"`
	AddressZip     string `json:"address_zip,omitempty"`
	AddressCountry string `json:"address_country,omitempty"`
}

// SourceService manages sources. Sources are created with the organization's
// public key, which the resolver obtains from the secret key on first use.
type SourceService struct {
	service
	resolver CredentialResolver
}

func (s *SourceService) Create(ctx context.Context, params *SourceParams, opts ...RequestOption) (*Source, error) {
	// Bad params must fail before the key exchange talks to the API.
	if err := s.check(body(params)); err != nil {
		return nil, err
	}
	opts, err := s.withPublicKey(ctx, opts)
	if err != nil {
		return nil, err
	}
	return call[Source](ctx, s.service, http.MethodPost, s.path(), body(params), opts)
}

func (s *SourceService) Retrieve(ctx context.Context, id string, opts ...RequestOption) (*Source, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	opts, err := s.withPublicKey(ctx, opts)
	if err != nil {
		return nil, err
	}
	return call[Source](ctx, s.service, http.MethodGet, s.path(id), nil, opts)
}

func (s *SourceService) withPublicKey(ctx context.Context, opts []RequestOption) ([]RequestOption, error) {
	key, err := s.resolver.PublicKey(ctx)
	if err != nil {
		return nil, err
	}
	return append([]RequestOption{transport.WithCredential(key)}, opts...), nil
}
