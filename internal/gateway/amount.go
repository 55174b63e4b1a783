package gateway

import (
	"errors"
	"strings"
)

// ErrInvalidAmount is returned when an amount string cannot be normalized.
var ErrInvalidAmount = errors.New("invalid amount")

// NormalizeAmount converts an amount string to the canonical two-decimal form
// used everywhere a money value is hashed or stored ("100" -> "100.00").
// Digits beyond the second fractional place are truncated toward zero, never
// rounded ("10.005" -> "10.00"). Signing and verification both go through
// this function, so the two sides can never disagree on formatting.
func NormalizeAmount(amount string) (string, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return "", ErrInvalidAmount
	}

	intPart := amount
	fracPart := ""
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		intPart = amount[:i]
		fracPart = amount[i+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return "", ErrInvalidAmount
		}
	}

	if intPart == "" && fracPart == "" {
		return "", ErrInvalidAmount
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return "", ErrInvalidAmount
	}

	// Truncate or right-pad the fraction to exactly two digits.
	switch {
	case len(fracPart) > 2:
		fracPart = fracPart[:2]
	case len(fracPart) < 2:
		fracPart = fracPart + strings.Repeat("0", 2-len(fracPart))
	}

	// Collapse leading zeros ("007" -> "7", "000" -> "0").
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}

	return intPart + "." + fracPart, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
