package webhook

import "errors"

// Error codes carried by the *apierror.Error values this package returns.
const (
	CodeSignatureMissing = "webhook_signature_missing"
	CodeTimestampInvalid = "webhook_timestamp_invalid"
	CodeSignatureInvalid = "webhook_signature_invalid"
	CodeInvalidPayload   = "webhook_invalid_payload"
	CodeEventReplayed    = "webhook_event_replayed"
)

var (
	ErrMalformedHeader      = errors.New("malformed webhook signature header")
	ErrUnsupportedAlgorithm = errors.New("unsupported webhook signature algorithm")
	ErrEmptySecret          = errors.New("webhook secret is required")
	ErrEventReplayed        = errors.New("webhook event already processed")
	ErrReplayStore          = errors.New("webhook replay store unavailable")
)
