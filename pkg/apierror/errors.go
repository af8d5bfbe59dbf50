package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind identifies the category of a failed API interaction.
// Callers switch on Kind (or use errors.Is with the sentinel values below)
// instead of type-asserting on a hierarchy of error types.
type Kind int

const (
	KindAPI Kind = iota
	KindAuthentication
	KindPermission
	KindNotFound
	KindValidation
	KindRateLimit
	KindNetwork
	KindWebhook
	KindConfiguration
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindAuthentication:
		return "authentication"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindRateLimit:
		return "rate_limit"
	case KindNetwork:
		return "network"
	case KindWebhook:
		return "webhook"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error types as reported by the API in the "type" field of an error body.
const (
	TypeAPI            = "api_error"
	TypeAuthentication = "authentication_error"
	TypePermission     = "permission_error"
	TypeNotFound       = "not_found_error"
	TypeInvalidRequest = "invalid_request_error"
	TypeRateLimit      = "rate_limit_error"
	TypeNetwork        = "network_error"
	TypeWebhook        = "webhook_error"
	TypeConfiguration  = "configuration_error"
)

// Sentinel errors, one per kind. An *Error matches the sentinel of its Kind
// through errors.Is.
var (
	ErrAPI            = errors.New("magpie api error")
	ErrAuthentication = errors.New("magpie authentication failed")
	ErrPermission     = errors.New("magpie permission denied")
	ErrNotFound       = errors.New("magpie resource not found")
	ErrValidation     = errors.New("magpie request validation failed")
	ErrRateLimit      = errors.New("magpie rate limit exceeded")
	ErrNetwork        = errors.New("magpie network error")
	ErrWebhook        = errors.New("magpie webhook verification failed")
	ErrConfiguration  = errors.New("magpie client misconfigured")
)

var sentinels = map[Kind]error{
	KindAPI:            ErrAPI,
	KindAuthentication: ErrAuthentication,
	KindPermission:     ErrPermission,
	KindNotFound:       ErrNotFound,
	KindValidation:     ErrValidation,
	KindRateLimit:      ErrRateLimit,
	KindNetwork:        ErrNetwork,
	KindWebhook:        ErrWebhook,
	KindConfiguration:  ErrConfiguration,
}

// Error is the single error type produced by the client.
// All kinds share the same field set; FieldErrors is only populated for
// KindValidation. Values are immutable once returned to the caller.
type Error struct {
	Kind       Kind
	Message    string
	Type       string
	Code       string
	StatusCode int
	RequestID  string
	Details    map[string]any

	// FieldErrors maps a request field to its validation messages.
	FieldErrors map[string][]string

	// Headers holds the raw response headers, nil for non-HTTP failures.
	Headers http.Header

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	parts := []string{e.Type, e.Message}
	if e.Code != "" {
		parts = append(parts, "code="+e.Code)
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if e.RequestID != "" {
		parts = append(parts, "request_id="+e.RequestID)
	}
	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Err))
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel error of e's kind.
func (e *Error) Is(target error) bool {
	if s, ok := sentinels[e.Kind]; ok && s == target {
		return true
	}
	return false
}

// IsType checks if the error carries the given API error type.
func (e *Error) IsType(t string) bool {
	return e.Type == t
}

// IsRetryable reports whether the caller may reasonably retry the operation.
// Rate limiting, network failures and server-side errors are retryable.
func (e *Error) IsRetryable() bool {
	switch e.Type {
	case TypeRateLimit, TypeNetwork:
		return true
	}
	return e.StatusCode >= 500
}

// FieldErrorsFor returns the validation messages reported for a single field.
func (e *Error) FieldErrorsFor(field string) []string {
	return e.FieldErrors[field]
}

// HasFieldErrors reports whether the field has at least one validation message.
func (e *Error) HasFieldErrors(field string) bool {
	return len(e.FieldErrors[field]) > 0
}

// UserMessage returns a short, human readable description suitable for end users.
func (e *Error) UserMessage() string {
	switch e.Type {
	case TypeAuthentication:
		return "Authentication failed. Please check your API key."
	case TypePermission:
		return "You do not have permission to perform this action."
	case TypeRateLimit:
		return "Too many requests. Please try again later."
	case TypeNotFound:
		return "The requested resource was not found."
	case TypeInvalidRequest:
		return "The request was invalid. Please check your parameters."
	case TypeNetwork:
		return "Network error occurred. Please check your connection."
	default:
		return "An error occurred while processing your request."
	}
}

// As is a convenience wrapper around errors.As for *Error.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind checks if err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// Network wraps a transport failure (connection refused, timeout, reset).
func Network(cause error) *Error {
	msg := "network error"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Kind:    KindNetwork,
		Message: msg,
		Type:    TypeNetwork,
		Code:    "network_error",
		Err:     cause,
	}
}

// Configuration reports invalid client setup detected at construction time.
func Configuration(msg string) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: msg,
		Type:    TypeConfiguration,
		Code:    "configuration_error",
	}
}

// Webhook reports a webhook verification or decoding failure.
func Webhook(code, msg string, cause error) *Error {
	return &Error{
		Kind:    KindWebhook,
		Message: msg,
		Type:    TypeWebhook,
		Code:    code,
		Err:     cause,
	}
}

// InvalidJSON reports a successful HTTP response whose body could not be decoded.
func InvalidJSON(status int, headers http.Header, cause error) *Error {
	return &Error{
		Kind:       KindAPI,
		Message:    "Invalid JSON response from API",
		Type:       TypeAPI,
		Code:       "invalid_json",
		StatusCode: status,
		RequestID:  RequestID(headers),
		Details:    map[string]any{},
		Headers:    headers,
		Err:        cause,
	}
}
