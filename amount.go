package magpie

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// MinorUnits returns the number of decimal places of an ISO 4217 currency,
// e.g. 2 for PHP and 0 for JPY.
func MinorUnits(code string) (int, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return 0, errors.Join(ErrUnknownCurrency, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale, nil
}

// FormatAmount renders an amount in minor units as "PHP 1,234.50".
func FormatAmount(minor int64, code string) (string, error) {
	scale, err := MinorUnits(code)
	if err != nil {
		return "", err
	}

	neg := minor < 0
	if neg {
		minor = -minor
	}

	divisor := int64(1)
	for range scale {
		divisor *= 10
	}
	whole, frac := minor/divisor, minor%divisor

	var b strings.Builder
	b.WriteString(strings.ToUpper(strings.TrimSpace(code)))
	b.WriteByte(' ')
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(groupThousands(strconv.FormatInt(whole, 10)))
	if scale > 0 {
		f := strconv.FormatInt(frac, 10)
		b.WriteByte('.')
		b.WriteString(strings.Repeat("0", scale-len(f)))
		b.WriteString(f)
	}
	return b.String(), nil
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
