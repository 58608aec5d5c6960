package otpAuth

import (
	"context"
	"time"
)

// OTPPurpose selects one of the two independent challenge slots on a user
// record.
type OTPPurpose uint8

const (
	// PurposeVerify authorizes marking the account's email as verified.
	PurposeVerify OTPPurpose = iota + 1
	// PurposeReset authorizes overwriting the account's password.
	PurposeReset
)

func (p OTPPurpose) String() string {
	switch p {
	case PurposeVerify:
		return "verify"
	case PurposeReset:
		return "reset"
	default:
		return "unknown"
	}
}

// OTPChallenge is an outstanding code and its absolute expiry. Code and
// ExpiresAt are set together and cleared together; the zero value means no
// challenge is outstanding.
type OTPChallenge struct {
	Code      string
	ExpiresAt time.Time
}

// Outstanding reports whether a code is set.
func (c OTPChallenge) Outstanding() bool {
	return c.Code != ""
}

// Clear removes the code and its expiry.
func (c *OTPChallenge) Clear() {
	*c = OTPChallenge{}
}

// UserRecord is the persisted account. The store owns it; every other
// component refers to it by UserID.
//
// IsVerified only ever moves from false to true.
type UserRecord struct {
	UserID       string
	Name         string
	Email        string
	PasswordHash string
	IsVerified   bool
	VerifyOTP    OTPChallenge
	ResetOTP     OTPChallenge
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Challenge returns the slot for purpose, or nil for an unknown purpose.
func (u *UserRecord) Challenge(purpose OTPPurpose) *OTPChallenge {
	switch purpose {
	case PurposeVerify:
		return &u.VerifyOTP
	case PurposeReset:
		return &u.ResetOTP
	default:
		return nil
	}
}

// CreateUserInput carries the fields of a new account. Email is already
// normalized and PasswordHash already derived.
type CreateUserInput struct {
	Name         string
	Email        string
	PasswordHash string
}

// UserStore persists user records.
//
// FindByEmail and FindByID return ErrUserNotFound for unknown keys. Create
// assigns UserID and returns ErrAccountExists when the email is taken.
//
// Update loads the record, applies mutate, and persists the result as one
// atomic read-modify-write: concurrent Updates of the same record never lose
// writes, and when mutate returns an error nothing is written and that error
// is returned unchanged. mutate may run more than once if the store retries an
// optimistic transaction, so it must not have side effects beyond the record.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (UserRecord, error)
	FindByID(ctx context.Context, userID string) (UserRecord, error)
	Create(ctx context.Context, input CreateUserInput) (UserRecord, error)
	Update(ctx context.Context, userID string, mutate func(*UserRecord) error) (UserRecord, error)
}

// Notifier delivers email. Delivery errors are logged and counted by the
// Engine but never returned to the caller of a lifecycle operation.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// RegisterRequest is the input of [Engine.Register].
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by [Engine.Register] and [Engine.Login]. Token is
// meant for the session cookie only and never for a response body.
type AuthResult struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// RateClass names an independently throttled group of endpoints.
type RateClass string

const (
	// RateOTPSend covers send-verify-otp and send-reset-otp.
	RateOTPSend RateClass = "otp-send"
	// RateOTPVerify covers verify-account and reset-password.
	RateOTPVerify RateClass = "otp-verify"
	// RateLogin covers login.
	RateLogin RateClass = "login"
)
