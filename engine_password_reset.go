package otpAuth

import (
	"context"
	"strings"
)

// SendResetOTP describes the sendresetotp operation and its observable behavior.
//
// SendResetOTP issues a reset code for the account owning email and queues it
// by mail. Unknown emails fail with ErrUserNotFound.
func (e *Engine) SendResetOTP(ctx context.Context, email string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(email) == "" {
		return ErrMissingFields
	}

	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	found, err := e.store.FindByEmail(ctx, normalized)
	if err != nil {
		return storeError("send reset otp lookup", err)
	}

	var code string
	user, err := e.store.Update(ctx, found.UserID, func(u *UserRecord) error {
		c, err := e.issueChallenge(u, PurposeReset)
		code = c
		return err
	})
	if err != nil {
		return storeError("send reset otp", err)
	}

	e.metricInc(MetricOTPIssuedReset)
	e.sendMail(ctx, resetOTPMessage(e.config.Mail.AppName, user, code, e.config.OTP.TTL))
	return nil
}

// ResetPassword describes the resetpassword operation and its observable behavior.
//
// ResetPassword consumes the reset code and stores a hash of newPassword in
// one atomic update. The code is checked once before hashing so a wrong code
// costs no hashing work, and again inside the update so a concurrent reset
// with the same code cannot also succeed.
func (e *Engine) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(email) == "" || strings.TrimSpace(code) == "" || newPassword == "" {
		return ErrMissingFields
	}

	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := e.store.FindByEmail(ctx, normalized)
	if err != nil {
		return storeError("reset password lookup", err)
	}

	if err := e.checkChallenge(&user, PurposeReset, code); err != nil {
		e.countOTPFailure(err, MetricPasswordResetFailure)
		return err
	}

	if e.config.Password.EnforceOnReset && !e.strongEnough(newPassword) {
		return ErrWeakPassword
	}

	hash, err := e.hashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = e.store.Update(ctx, user.UserID, func(u *UserRecord) error {
		if err := e.consumeChallenge(u, PurposeReset, code); err != nil {
			return err
		}
		u.PasswordHash = hash
		return nil
	})
	if err != nil {
		e.countOTPFailure(err, MetricPasswordResetFailure)
		return storeError("reset password", err)
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.logger.InfoContext(ctx, "password reset", "user_id", user.UserID)
	return nil
}
