// Package phone canonicalizes raw phone strings into comparable identity keys.
package phone

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Mode selects the acceptance policy applied after cleanup.
type Mode string

const (
	// ModeStrict accepts exactly 11 digits beginning with the mobile prefix digit.
	ModeStrict Mode = "strict"
	// ModeLenient accepts any digit sequence of at least LenientMinDigits.
	ModeLenient Mode = "lenient"
)

const (
	countryCode      = "86"
	nationalLength   = 11
	mobilePrefix     = '1'
	LenientMinDigits = 7
)

// ParseMode maps configuration text onto a Mode. Empty input selects strict.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeStrict:
		return ModeStrict, nil
	case ModeLenient:
		return ModeLenient, nil
	default:
		return "", fmt.Errorf("unknown phone mode %q", raw)
	}
}

// Normalize returns the canonical key for raw. ok is false when raw cannot be
// turned into a key under the given mode.
func Normalize(raw string, mode Mode) (string, bool) {
	cleaned := strings.TrimSpace(width.Narrow.String(raw))
	if cleaned == "" {
		return "", false
	}
	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, cleaned)

	if mode == ModeLenient {
		digits := digitsOnly(strings.ReplaceAll(cleaned, "+"+countryCode, ""))
		if len(digits) < LenientMinDigits {
			return "", false
		}
		return digits, true
	}

	if strings.HasPrefix(cleaned, "+"+countryCode) {
		cleaned = cleaned[len(countryCode)+1:]
	}
	digits := digitsOnly(cleaned)
	if len(digits) > nationalLength && strings.HasPrefix(digits, countryCode) {
		digits = digits[len(countryCode):]
	}
	if len(digits) != nationalLength || digits[0] != mobilePrefix {
		return "", false
	}
	return digits, true
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
