package webhook

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // selectable for legacy endpoints
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/magpie/pkg/apierror"
)

// SignatureHeader is the parsed form of a signature header value.
type SignatureHeader struct {
	// Timestamp is the value of the "t=" element, zero when absent.
	Timestamp int64
	// Signatures holds every hex signature carrying the configured prefix.
	Signatures []string
}

// ParseSignatureHeader splits a header such as "t=1700000000,v1=abc,v1=def".
// A bare "v1=abc" is accepted as well. It fails when no element carries prefix.
func ParseSignatureHeader(value, prefix string) (SignatureHeader, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	var sh SignatureHeader
	for part := range strings.SplitSeq(value, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, prefix):
			if sig := part[len(prefix):]; sig != "" {
				sh.Signatures = append(sh.Signatures, sig)
			}
		case strings.HasPrefix(part, "t="):
			ts, err := strconv.ParseInt(part[2:], 10, 64)
			if err != nil {
				return SignatureHeader{}, fmt.Errorf("%w: invalid timestamp %q", ErrMalformedHeader, part[2:])
			}
			sh.Timestamp = ts
		}
	}

	if len(sh.Signatures) == 0 {
		return SignatureHeader{}, fmt.Errorf("%w: expected prefix %q", ErrMalformedHeader, prefix)
	}
	return sh, nil
}

func hasher(algorithm string) (func() hash.Hash, error) {
	switch strings.ToLower(algorithm) {
	case "sha256":
		return sha256.New, nil
	case "sha1":
		return sha1.New, nil
	case "sha384":
		return sha512.New384, nil
	case "sha512":
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
}

// ComputeSignature returns the hex HMAC of payload keyed with secret.
func ComputeSignature(payload []byte, secret, algorithm string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	h, err := hasher(algorithm)
	if err != nil {
		return "", err
	}
	mac := hmac.New(h, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifySignature reports whether header carries a valid HMAC of payload.
// The HMAC covers the payload bytes only. When the header lists several
// signatures, one match is enough. It never returns an error: any parse or
// configuration problem is a failed verification.
func VerifySignature(payload []byte, header, secret string, opts ...Option) bool {
	return verify(payload, header, secret, newOptions(opts))
}

func verify(payload []byte, header, secret string, o *options) bool {
	sh, err := ParseSignatureHeader(header, o.prefix)
	if err != nil {
		return false
	}
	expected, err := ComputeSignature(payload, secret, o.algorithm)
	if err != nil {
		return false
	}

	ok := false
	for _, sig := range sh.Signatures {
		if secureCompare(expected, sig) {
			ok = true
		}
	}
	return ok
}

// secureCompare compares two hex strings in constant time.
// Unequal lengths are rejected up front; the length of a hex HMAC is public.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return hmac.Equal([]byte(a), []byte(b))
}

// VerifySignatureWithTimestamp reads the signature and timestamp headers
// and verifies both. A missing signature header and a timestamp outside the
// tolerance window are reported as errors; a present but wrong signature
// returns false with a nil error.
//
// The timestamp header takes precedence over a "t=" element in the
// signature header.
func VerifySignatureWithTimestamp(payload []byte, headers http.Header, secret string, opts ...Option) (bool, error) {
	return verifyHeaders(payload, headers, secret, newOptions(opts))
}

func verifyHeaders(payload []byte, headers http.Header, secret string, o *options) (bool, error) {
	sig := headerValue(headers, o.signatureHeader)
	if sig == "" {
		return false, apierror.Webhook(CodeSignatureMissing, "Missing signature header: "+o.signatureHeader, nil)
	}

	var (
		ts      int64
		present bool
	)
	if raw := headerValue(headers, o.timestampHeader); raw != "" {
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return false, timestampError(err)
		}
		ts, present = v, true
	} else if sh, err := ParseSignatureHeader(sig, o.prefix); err == nil && sh.Timestamp != 0 {
		ts, present = sh.Timestamp, true
	}

	if present && !IsValidTimestamp(ts, o.tolerance, o.now()) {
		return false, timestampError(nil)
	}

	return verify(payload, sig, secret, o), nil
}

func timestampError(cause error) error {
	return apierror.Webhook(CodeTimestampInvalid, "Webhook timestamp is outside tolerance window", cause)
}

// IsValidTimestamp reports whether ts (unix seconds) lies within tolerance of now,
// in either direction. The boundary itself is inside the window.
func IsValidTimestamp(ts int64, tolerance time.Duration, now time.Time) bool {
	diff := now.Unix() - ts
	if diff < 0 {
		diff = -diff
	}
	return diff <= int64(tolerance/time.Second)
}

// GenerateTestSignature builds a header value for local testing:
// "t={now},{prefix}{HMAC(now + "." + payload)}".
//
// Unlike VerifySignature this signs the timestamp together with the payload,
// matching the timestamp-bound scheme.
func GenerateTestSignature(payload []byte, secret string, opts ...Option) string {
	o := newOptions(opts)
	ts := o.now().Unix()

	signed := make([]byte, 0, len(payload)+21)
	signed = strconv.AppendInt(signed, ts, 10)
	signed = append(signed, '.')
	signed = append(signed, payload...)

	sig, err := ComputeSignature(signed, secret, o.algorithm)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("t=%d,%s%s", ts, o.prefix, sig)
}

// headerValue looks a header up by name regardless of case, returning the
// first value. Maps built by hand with non-canonical keys are covered too.
func headerValue(h http.Header, name string) string {
	if v := h.Get(name); v != "" {
		return v
	}
	for k, vs := range h {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}
