package otpAuth

import (
	"context"
	"errors"
	"strings"
)

// Login describes the login operation and its observable behavior.
//
// Login returns ErrInvalidCredentials for an unknown email and for a wrong
// password alike. Unknown emails still pay for one hash verification so the
// two cases take comparable time.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (*AuthResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(email) == "" || plaintext == "" {
		return nil, ErrMissingFields
	}

	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := e.store.FindByEmail(ctx, normalized)
	if errors.Is(err, ErrUserNotFound) {
		e.hasher.Verify(plaintext, e.dummyHash)
		e.metricInc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storeError("login lookup", err)
	}

	if !e.hasher.Verify(plaintext, user.PasswordHash) {
		e.metricInc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	e.upgradeHash(ctx, user, plaintext)

	result, err := e.issueSession(user.UserID)
	if err != nil {
		return nil, err
	}
	e.metricInc(MetricLoginSuccess)
	return result, nil
}

// upgradeHash re-hashes plaintext when the stored hash predates the current
// work factor. Failures are logged and never fail the login.
func (e *Engine) upgradeHash(ctx context.Context, user UserRecord, plaintext string) {
	upgrade, err := e.hasher.NeedsUpgrade(user.PasswordHash)
	if err != nil || !upgrade {
		return
	}

	hash, err := e.hashPassword(plaintext)
	if err != nil {
		e.logger.WarnContext(ctx, "password rehash failed", "user_id", user.UserID, "err", err)
		return
	}

	old := user.PasswordHash
	_, err = e.store.Update(ctx, user.UserID, func(u *UserRecord) error {
		// A concurrent reset wins over the upgrade.
		if u.PasswordHash != old {
			return nil
		}
		u.PasswordHash = hash
		u.UpdatedAt = e.now()
		return nil
	})
	if err != nil {
		e.logger.WarnContext(ctx, "password rehash not stored", "user_id", user.UserID, "err", err)
	}
}

// Logout records the logout. Tokens are stateless, so the caller clears the
// session cookie; Logout never fails.
func (e *Engine) Logout(ctx context.Context) {
	if e == nil {
		return
	}
	e.metricInc(MetricLogout)
}

// Authenticate returns the user id bound to token. Every token failure is
// reported as ErrUnauthorized.
func (e *Engine) Authenticate(ctx context.Context, token string) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}

	userID, err := e.tokens.Verify(token)
	if err != nil {
		e.metricInc(MetricSessionRejected)
		return "", ErrUnauthorized
	}
	return userID, nil
}

// IsAuthenticated reports whether token is present and valid.
func (e *Engine) IsAuthenticated(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	_, err := e.Authenticate(ctx, token)
	return err == nil
}
