package otpAuth

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/otpAuth/internal/otp"
)

// issueChallenge overwrites the slot for purpose with a fresh code and
// returns it. It must run inside UserStore.Update.
func (e *Engine) issueChallenge(u *UserRecord, purpose OTPPurpose) (string, error) {
	slot := u.Challenge(purpose)
	if slot == nil {
		return "", fmt.Errorf("unknown otp purpose %d", purpose)
	}

	now := e.now()
	ch, err := e.codes.Issue(now, e.config.OTP.TTL, e.config.OTP.Digits)
	if err != nil {
		return "", fmt.Errorf("issue otp: %w", err)
	}

	*slot = OTPChallenge{Code: ch.Code, ExpiresAt: ch.ExpiresAt}
	u.UpdatedAt = now
	return ch.Code, nil
}

// checkChallenge validates code against the slot for purpose without
// changing the record.
func (e *Engine) checkChallenge(u *UserRecord, purpose OTPPurpose, code string) error {
	slot := u.Challenge(purpose)
	if slot == nil {
		return fmt.Errorf("unknown otp purpose %d", purpose)
	}
	return mapOTPError(otp.Check(otp.Challenge{Code: slot.Code, ExpiresAt: slot.ExpiresAt}, code, e.now()))
}

// consumeChallenge validates code and clears the slot. It must run inside
// the same UserStore.Update as the state change it authorizes.
func (e *Engine) consumeChallenge(u *UserRecord, purpose OTPPurpose, code string) error {
	if err := e.checkChallenge(u, purpose, code); err != nil {
		return err
	}
	u.Challenge(purpose).Clear()
	u.UpdatedAt = e.now()
	return nil
}

func mapOTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, otp.ErrNoChallenge):
		return ErrOTPNoChallenge
	case errors.Is(err, otp.ErrMismatch):
		return ErrOTPMismatch
	case errors.Is(err, otp.ErrExpired):
		return ErrOTPExpired
	default:
		return err
	}
}

func (e *Engine) countOTPFailure(err error, failure MetricID) {
	if errors.Is(err, ErrOTPExpired) {
		e.metricInc(MetricOTPExpired)
	}
	if KindOf(err) == KindValidation {
		e.metricInc(failure)
	}
}
