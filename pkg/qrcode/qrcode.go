package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent   = errors.New("qrcode: content cannot be empty")
	ErrGenerateFailed = errors.New("qrcode: failed to generate image")
)

// DefaultSize is the image edge in pixels when no size is given.
const DefaultSize = 256

// RecoveryLevel controls how much of the symbol may be damaged and still scan.
type RecoveryLevel = skipqrcode.RecoveryLevel

const (
	RecoveryLow     = skipqrcode.Low
	RecoveryMedium  = skipqrcode.Medium
	RecoveryHigh    = skipqrcode.High
	RecoveryHighest = skipqrcode.Highest
)

type options struct {
	size     int
	recovery RecoveryLevel
	border   bool
}

// Option tunes the generated image.
type Option func(*options)

// WithSize sets the image edge in pixels. Non-positive values keep the default.
func WithSize(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.size = px
		}
	}
}

// WithRecoveryLevel sets the error correction level. Medium by default.
func WithRecoveryLevel(l RecoveryLevel) Option {
	return func(o *options) {
		o.recovery = l
	}
}

// WithoutBorder drops the quiet zone around the symbol.
func WithoutBorder() Option {
	return func(o *options) {
		o.border = false
	}
}

// Generate encodes content as a PNG QR code.
func Generate(content string, opts ...Option) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	o := options{size: DefaultSize, recovery: RecoveryMedium, border: true}
	for _, opt := range opts {
		opt(&o)
	}

	q, err := skipqrcode.New(content, o.recovery)
	if err != nil {
		return nil, errors.Join(ErrGenerateFailed, err)
	}
	q.DisableBorder = !o.border

	png, err := q.PNG(o.size)
	if err != nil {
		return nil, errors.Join(ErrGenerateFailed, err)
	}
	return png, nil
}

// DataURI returns the PNG as a data:image/png;base64 URI, ready for an
// <img src> attribute.
func DataURI(content string, opts ...Option) (string, error) {
	png, err := Generate(content, opts...)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
