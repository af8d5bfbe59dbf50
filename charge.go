package magpie

import (
	"context"
	"net/http"
)

// ChargeStatus is the lifecycle state of a charge.
type ChargeStatus string

const (
	ChargeStatusPending   ChargeStatus = "pending"
	ChargeStatusSucceeded ChargeStatus = "succeeded"
	ChargeStatusFailed    ChargeStatus = "failed"
)

// Charge is a payment against a source. Amounts are in minor units.
type Charge struct {
	rawJSON `json:"-"`

	ID                  string        `json:"id"`
	Object              string        `json:"object"`
	Amount              int64         `json:"amount"`
	AmountRefunded      int64         `json:"amount_refunded"`
	Authorized          bool          `json:"authorized"`
	Captured            bool          `json:"captured"`
	Currency            string        `json:"currency"`
	StatementDescriptor string        `json:"statement_descriptor"`
	Description         string        `json:"description"`
	Source              *Source       `json:"source,omitempty"`
	RequireAuth         bool          `json:"require_auth"`
	Owner               *SourceOwner  `json:"owner,omitempty"`
	Action              *ChargeAction `json:"action,omitempty"`
	Refunds             []Refund      `json:"refunds"`
	Status              ChargeStatus  `json:"status"`
	Livemode            bool          `json:"livemode"`
	CreatedAt           string        `json:"created_at"`
	UpdatedAt           string        `json:"updated_at"`
	Metadata            Metadata      `json:"metadata,omitempty"`
	FailureData         *FailureData  `json:"failure_data,omitempty"`
}

// ChargeAction tells the payer where to complete authentication.
type ChargeAction struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// FailureData explains why a charge failed.
type FailureData struct {
	Reason           string            `json:"reason"`
	Code             string            `json:"code"`
	NextSteps        string            `json:"next_steps"`
	ProviderResponse *ProviderResponse `json:"provider_response,omitempty"`
}

type ProviderResponse struct {
	Links   []Link `json:"links"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Logref  string `json:"logref"`
}

type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

// Succeeded reports whether the charge completed.
func (c *Charge) Succeeded() bool {
	return c.Status == ChargeStatusSucceeded
}

// RequiresAction reports whether the payer must visit Action.URL.
func (c *Charge) RequiresAction() bool {
	return c.Action != nil && c.Action.URL != ""
}

// Refundable returns the amount that can still be refunded.
func (c *Charge) Refundable() int64 {
	if !c.Captured {
		return 0
	}
	return max(c.Amount-c.AmountRefunded, 0)
}

// FormattedAmount renders Amount in major units, e.g. "PHP 100.00".
func (c *Charge) FormattedAmount() string {
	s, err := FormatAmount(c.Amount, c.Currency)
	if err != nil {
		return ""
	}
	return s
}

// Refund returns part or all of a captured charge.
type Refund struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ChargeParams creates a charge.
type ChargeParams struct {
	Amount              int64    `json:"amount" validate:"gt=0"`
	Currency            string   `json:"currency" validate:"required,len=3"`
	Source              string   `json:"source" validate:"required"`
	Description         string   `json:"description,omitempty"`
	StatementDescriptor string   `json:"statement_descriptor,omitempty"`
	Capture             *bool    `json:"capture,omitempty"` // defaults to true server side
	CVC                 string   `json:"cvc,omitempty"`
	RequireAuth         *bool    `json:"require_auth,omitempty"`
	RedirectURL         string   `json:"redirect_url,omitempty" validate:"omitempty,url"`
	Metadata            Metadata `json:"metadata,omitempty"`
}

// CaptureParams captures an authorized charge. A zero Amount captures in full.
type CaptureParams struct {
	Amount int64 `json:"amount,omitempty" validate:"gte=0"`
}

// VerifyParams carries the confirmation a bank sent to the payer.
type VerifyParams struct {
	ConfirmationID string `json:"confirmation_id,omitempty"`
	OTP            string `json:"otp,omitempty"`
}

// RefundParams refunds a charge. A zero Amount refunds in full.
type RefundParams struct {
	Amount int64  `json:"amount,omitempty" validate:"gte=0"`
	Reason string `json:"reason,omitempty"`
}

// ChargeService manages charges.
type ChargeService struct {
	service
}

func (s *ChargeService) Create(ctx context.Context, params *ChargeParams, opts ...RequestOption) (*Charge, error) {
	return call[Charge](ctx, s.service, http.MethodPost, s.path(), body(params), opts)
}

func (s *ChargeService) Retrieve(ctx context.Context, id string, opts ...RequestOption) (*Charge, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return call[Charge](ctx, s.service, http.MethodGet, s.path(id), nil, opts)
}

// Capture settles a charge created with Capture set to false.
func (s *ChargeService) Capture(ctx context.Context, id string, params *CaptureParams, opts ...RequestOption) (*Charge, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if params == nil {
		params = &CaptureParams{}
	}
	return call[Charge](ctx, s.service, http.MethodPost, s.path(id, "capture"), body(params), opts)
}

// Verify completes a direct bank payment with the payer's confirmation data.
func (s *ChargeService) Verify(ctx context.Context, id string, params *VerifyParams, opts ...RequestOption) (*Charge, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return call[Charge](ctx, s.service, http.MethodPost, s.path(id, "verify"), body(params), opts)
}

// Void releases an uncaptured authorization.
func (s *ChargeService) Void(ctx context.Context, id string, opts ...RequestOption) (*Charge, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return call[Charge](ctx, s.service, http.MethodPost, s.path(id, "void"), nil, opts)
}

func (s *ChargeService) Refund(ctx context.Context, id string, params *RefundParams, opts ...RequestOption) (*Charge, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if params == nil {
		params = &RefundParams{}
	}
	return call[Charge](ctx, s.service, http.MethodPost, s.path(id, "refund"), body(params), opts)
}
