package otpAuth

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxEmailLength = 254

// emailRules is shared; a validator caches its parsed tags and is safe for
// concurrent use.
var emailRules = validator.New()

// normalizeEmail trims and lower-cases raw and rejects anything that is not a
// bare address with a dotted domain.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrMissingFields
	}
	if len(email) > maxEmailLength {
		return "", ErrInvalidEmail
	}
	if err := emailRules.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	// The email rule tolerates a fully qualified trailing dot.
	if strings.HasSuffix(email, ".") {
		return "", ErrInvalidEmail
	}
	return email, nil
}
