// Package phone normalizes client phone numbers for matching and wa.me links.
package phone

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

const DefaultRegion = "MX"

// NormalizeE164 formats input as E.164. If parsing fails it returns the trimmed input.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	if region == "" {
		region = DefaultRegion
	}

	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// Digits keeps only the decimal digits of s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WhatsAppDigits returns the number as wa.me expects it: country code and
// national number, digits only. Unparseable input falls back to its digits.
func WhatsAppDigits(input, region string) string {
	return Digits(NormalizeE164(input, region))
}

// Same reports whether a and b denote the same phone number.
func Same(a, b, region string) bool {
	da := WhatsAppDigits(a, region)
	db := WhatsAppDigits(b, region)
	return da != "" && da == db
}
