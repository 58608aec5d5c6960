package otpAuth

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingFields is returned when a required input is empty.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when a password scores below the configured tier.
	ErrWeakPassword = errors.New("password is too weak")
	// ErrAccountExists is returned when the email already belongs to an account.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidCredentials is the single login failure for unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned for a missing, invalid or expired session token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUserNotFound is returned when a user id or email cannot be resolved.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyVerified is returned when a verify code is requested for a verified account.
	ErrAlreadyVerified = errors.New("account already verified")
	// ErrOTPNoChallenge is returned when no code is outstanding for the purpose.
	ErrOTPNoChallenge = errors.New("no outstanding otp")
	// ErrOTPMismatch is returned when the supplied code differs from the outstanding one.
	ErrOTPMismatch = errors.New("otp mismatch")
	// ErrOTPExpired is returned when the outstanding code has expired.
	ErrOTPExpired = errors.New("otp expired")
	// ErrRateLimited is wrapped by [RateLimitError].
	ErrRateLimited = errors.New("rate limited")
	// ErrStoreUnavailable wraps unexpected failures of the user store.
	ErrStoreUnavailable = errors.New("user store unavailable")
	// ErrEngineNotReady is returned by methods called on a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// RateLimitError is returned when the rate gate denies a request.
type RateLimitError struct {
	Class      RateClass
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: %s, retry after %s", e.Class, e.RetryAfter)
}

// Unwrap lets errors.Is(err, ErrRateLimited) match.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// ErrorKind is the coarse category a boundary layer maps to a status code.
type ErrorKind uint8

const (
	// KindInternal covers unexpected failures.
	KindInternal ErrorKind = iota
	// KindValidation covers malformed or missing input and failed OTP checks.
	KindValidation
	// KindConflict covers duplicate accounts.
	KindConflict
	// KindUnauthorized covers bad credentials and bad sessions.
	KindUnauthorized
	// KindNotFound covers unresolvable users.
	KindNotFound
	// KindRateLimited covers gate denials.
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// KindOf classifies err. Errors outside the package taxonomy are internal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrAlreadyVerified),
		errors.Is(err, ErrOTPNoChallenge),
		errors.Is(err, ErrOTPMismatch),
		errors.Is(err, ErrOTPExpired):
		return KindValidation
	case errors.Is(err, ErrAccountExists):
		return KindConflict
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	default:
		return KindInternal
	}
}
