package magpie

import "errors"

var (
	ErrMissingID            = errors.New("magpie: resource id is required")
	ErrMissingWebhookSecret = errors.New("magpie: webhook secret is not configured")
	ErrUnknownCurrency      = errors.New("magpie: unknown currency code")
)
