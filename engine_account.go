package otpAuth

import (
	"context"
	"errors"
	"strings"
)

// Register describes the register operation and its observable behavior.
//
// Register creates an unverified account and signs the caller in. Checks run
// in a fixed order: required fields, email format, existing account, password
// strength. The welcome mail is queued after the account exists and its
// delivery never affects the result.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		e.metricInc(MetricRegisterRejected)
		return nil, ErrMissingFields
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		e.metricInc(MetricRegisterRejected)
		return nil, err
	}

	_, err = e.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		e.metricInc(MetricRegisterDuplicate)
		return nil, ErrAccountExists
	case !errors.Is(err, ErrUserNotFound):
		return nil, storeError("register lookup", err)
	}

	if !e.strongEnough(req.Password) {
		e.metricInc(MetricRegisterRejected)
		return nil, ErrWeakPassword
	}

	hash, err := e.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := e.store.Create(ctx, CreateUserInput{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if errors.Is(err, ErrAccountExists) {
		// Lost a race with a concurrent registration of the same email.
		e.metricInc(MetricRegisterDuplicate)
		return nil, ErrAccountExists
	}
	if err != nil {
		return nil, storeError("register create", err)
	}

	result, err := e.issueSession(user.UserID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.logger.InfoContext(ctx, "account registered", "user_id", user.UserID)
	e.sendMail(ctx, welcomeMessage(e.config.Mail.AppName, user))

	return result, nil
}
