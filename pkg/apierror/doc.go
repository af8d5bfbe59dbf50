// Package apierror defines the error type returned by every Magpie client
// operation and the classifier that derives it from HTTP responses.
//
// Instead of one Go type per HTTP status, the package exposes a single *Error
// tagged with a Kind. Kind-specific data (for example per-field validation
// messages) lives in optional fields of the same struct.
//
// # Classification
//
// Classify maps a status code and response body to an *Error:
//
//	401        -> KindAuthentication
//	403        -> KindPermission
//	404        -> KindNotFound
//	422        -> KindValidation (FieldErrors populated)
//	429        -> KindRateLimit
//	other 4xx  -> KindValidation
//	otherwise  -> KindAPI
//
// The Type field follows the API's own "type" when the body provides one and
// otherwise falls back to the fixed status table in TypeForStatus.
//
// # Usage
//
//	_, err := client.Charges.Retrieve(ctx, "ch_123")
//	if errors.Is(err, apierror.ErrNotFound) {
//	    // unknown charge
//	}
//	if e, ok := apierror.As(err); ok && e.IsRetryable() {
//	    // back off and try later
//	}
package apierror
