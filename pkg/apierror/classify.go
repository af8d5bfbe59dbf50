package apierror

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Classify builds the typed error for a non-2xx HTTP response.
// It never fails: unparseable bodies fall back to a generic message and
// missing fields are derived from the status code.
func Classify(status int, body []byte, headers http.Header) *Error {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil || data == nil {
		data = map[string]any{"error": map[string]any{"message": "Invalid JSON response"}}
	}

	obj := data
	if nested, ok := data["error"].(map[string]any); ok {
		obj = nested
	}

	e := &Error{
		Kind:       KindForStatus(status),
		Message:    extractMessage(obj, data, status),
		Type:       stringField(obj, "type"),
		Code:       stringField(obj, "code"),
		StatusCode: status,
		RequestID:  RequestID(headers),
		Details:    map[string]any{},
		Headers:    headers,
	}
	if e.Type == "" {
		e.Type = TypeForStatus(status)
	}
	if e.Code == "" {
		e.Code = fmt.Sprintf("http_%d", status)
	}
	if details, ok := obj["details"].(map[string]any); ok {
		e.Details = details
	}
	if e.Kind == KindValidation {
		e.FieldErrors = extractFieldErrors(obj)
	}

	return e
}

// KindForStatus selects the error kind surfaced to the caller for an HTTP status.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindPermission
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindAPI
	}
}

// TypeForStatus maps a status code to the API error type used when the
// response body does not carry one.
func TypeForStatus(status int) string {
	switch {
	case status >= 500:
		return TypeAPI
	case status == http.StatusTooManyRequests:
		return TypeRateLimit
	case status == http.StatusUnauthorized:
		return TypeAuthentication
	case status == http.StatusForbidden:
		return TypePermission
	case status == http.StatusNotFound:
		return TypeNotFound
	case status >= 400:
		return TypeInvalidRequest
	default:
		return TypeAPI
	}
}

// RequestID extracts the request identifier from response headers.
// Header names are matched case-insensitively.
func RequestID(h http.Header) string {
	if h == nil {
		return ""
	}
	if v := h.Get("Request-Id"); v != "" {
		return v
	}
	for k, vs := range h {
		if strings.EqualFold(k, "request-id") && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

func extractMessage(obj, data map[string]any, status int) string {
	fallback := fmt.Sprintf("HTTP %d Error", status)

	raw, ok := obj["message"]
	if !ok || raw == nil {
		raw, ok = data["message"]
	}
	if !ok || raw == nil {
		return fallback
	}

	switch v := raw.(type) {
	case string:
		return v
	case []any:
		msgs := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				msgs = append(msgs, s)
			}
		}
		if len(msgs) == 0 {
			return fallback
		}
		return strings.Join(msgs, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// extractFieldErrors reads per-field messages from error.errors, falling back
// to error.details. Values may be a single string or a list of strings.
func extractFieldErrors(obj map[string]any) map[string][]string {
	src, ok := obj["errors"].(map[string]any)
	if !ok {
		src, ok = obj["details"].(map[string]any)
	}
	if !ok {
		return map[string][]string{}
	}

	out := make(map[string][]string, len(src))
	for field, v := range src {
		switch msgs := v.(type) {
		case string:
			out[field] = []string{msgs}
		case []any:
			for _, m := range msgs {
				if s, ok := m.(string); ok {
					out[field] = append(out[field], s)
				}
			}
		}
	}
	return out
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
