package otpAuth

import (
	"context"
	"strings"
)

// SendVerifyOTP describes the sendverifyotp operation and its observable behavior.
//
// SendVerifyOTP issues a verification code for an authenticated user and
// queues it by mail. Any outstanding verification code is replaced. It fails
// with ErrUserNotFound when the account is gone and ErrAlreadyVerified when
// there is nothing to verify.
func (e *Engine) SendVerifyOTP(ctx context.Context, userID string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if userID == "" {
		return ErrUserNotFound
	}

	var code string
	user, err := e.store.Update(ctx, userID, func(u *UserRecord) error {
		if u.IsVerified {
			return ErrAlreadyVerified
		}
		c, err := e.issueChallenge(u, PurposeVerify)
		code = c
		return err
	})
	if err != nil {
		return storeError("send verify otp", err)
	}

	e.metricInc(MetricOTPIssuedVerify)
	e.sendMail(ctx, verifyOTPMessage(e.config.Mail.AppName, user, code, e.config.OTP.TTL))
	return nil
}

// VerifyEmail describes the verifyemail operation and its observable behavior.
//
// VerifyEmail consumes the verification code and marks the account verified
// in one atomic update. Replaying an accepted code fails with
// ErrOTPNoChallenge; a correct code past its expiry fails with ErrOTPExpired.
func (e *Engine) VerifyEmail(ctx context.Context, userID, code string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(code) == "" {
		return ErrMissingFields
	}
	if userID == "" {
		return ErrUserNotFound
	}

	_, err := e.store.Update(ctx, userID, func(u *UserRecord) error {
		if err := e.consumeChallenge(u, PurposeVerify, code); err != nil {
			return err
		}
		u.IsVerified = true
		return nil
	})
	if err != nil {
		e.countOTPFailure(err, MetricEmailVerificationFailure)
		return storeError("verify email", err)
	}

	e.metricInc(MetricEmailVerificationSuccess)
	e.logger.InfoContext(ctx, "email verified", "user_id", userID)
	return nil
}
