package domain

import (
	"fmt"
	"strings"
)

const (
	PhoneDigits = 10
	OTPDigits   = 6
)

// NormalizePhone strips separators and an optional +91 country prefix and
// requires exactly ten digits.
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	if strings.HasPrefix(cleaned, "+91") {
		cleaned = strings.TrimPrefix(cleaned, "+91")
	} else if len(cleaned) == PhoneDigits+2 && strings.HasPrefix(cleaned, "91") {
		cleaned = cleaned[2:]
	}
	if len(cleaned) != PhoneDigits || !allDigits(cleaned) {
		return "", fmt.Errorf("%w: please enter a valid %d-digit phone number", ErrValidation, PhoneDigits)
	}
	return cleaned, nil
}

// ValidateOTPCode requires a six digit numeric code.
func ValidateOTPCode(code string) error {
	if len(code) != OTPDigits || !allDigits(code) {
		return fmt.Errorf("%w: please enter a valid %d-digit otp", ErrValidation, OTPDigits)
	}
	return nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
