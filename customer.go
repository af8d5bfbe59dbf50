package magpie

import (
	"context"
	"net/http"
)

// Customer groups payment sources under one payer.
type Customer struct {
	rawJSON `json:"-"`

	ID           string   `json:"id"`
	Object       string   `json:"object"`
	Email        string   `json:"email"`
	Description  string   `json:"description"`
	MobileNumber string   `json:"mobile_number"`
	Name         string   `json:"name"`
	Livemode     bool     `json:"livemode"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
	Metadata     Metadata `json:"metadata,omitempty"`
	Sources      []Source `json:"sources,omitempty"`
}

// CustomerParams creates a customer.
type CustomerParams struct {
	Email        string   `json:"email" validate:"required,email"`
	Description  string   `json:"description"`
	Name         string   `json:"name,omitempty"`
	MobileNumber string   `json:"mobile_number,omitempty"`
	Metadata     Metadata `json:"metadata,omitempty"`
}

// CustomerUpdateParams changes only the fields that are set.
type CustomerUpdateParams struct {
	Email        *string  `json:"email,omitempty" validate:"omitempty,email"`
	Description  *string  `json:"description,omitempty"`
	Name         *string  `json:"name,omitempty"`
	MobileNumber *string  `json:"mobile_number,omitempty"`
	Metadata     Metadata `json:"metadata,omitempty"`
}

type CustomerService struct {
	service
}

func (s *CustomerService) Create(ctx context.Context, params *CustomerParams, opts ...RequestOption) (*Customer, error) {
	return call[Customer](ctx, s.service, http.MethodPost, s.path(), body(params), opts)
}

func (s *CustomerService) Retrieve(ctx context.Context, id string, opts ...RequestOption) (*Customer, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return call[Customer](ctx, s.service, http.MethodGet, s.path(id), nil, opts)
}

func (s *CustomerService) Update(ctx context.Context, id string, params *CustomerUpdateParams, opts ...RequestOption) (*Customer, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return call[Customer](ctx, s.service, http.MethodPatch, s.path(id), body(params), opts)
}

// RetrieveByEmail looks a customer up by email address.
func (s *CustomerService) RetrieveByEmail(ctx context.Context, email string, opts ...RequestOption) (*Customer, error) {
	if err := requireID(email); err != nil {
		return nil, err
	}
	return call[Customer](ctx, s.service, http.MethodGet, s.path("by_email", email), nil, opts)
}

// AttachSource saves a source on the customer for later charges.
func (s *CustomerService) AttachSource(ctx context.Context, id, sourceID string, opts ...RequestOption) (*Customer, error) {
	if err := requireID(id, sourceID); err != nil {
		return nil, err
	}
	data := map[string]string{"source": sourceID}
	return call[Customer](ctx, s.service, http.MethodPost, s.path(id, "sources"), data, opts)
}

func (s *CustomerService) DetachSource(ctx context.Context, id, sourceID string, opts ...RequestOption) (*Customer, error) {
	if err := requireID(id, sourceID); err != nil {
		return nil, err
	}
	return call[Customer](ctx, s.service, http.MethodDelete, s.path(id, "sources", sourceID), nil, opts)
}
