package otpAuth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "Ann", "ANN@X.COM", "Tr0ub4dor&3")

	res, err := env.engine.Login(context.Background(), " Ann@x.com ", "Tr0ub4dor&3")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.UserID != reg.UserID || res.Token == "" {
		t.Fatalf("unexpected login result %+v", res)
	}
	if !env.engine.IsAuthenticated(context.Background(), res.Token) {
		t.Fatal("login token must authenticate")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ann", "ann@x.com", "Tr0ub4dor&3")

	_, wrongPassword := env.engine.Login(context.Background(), "ann@x.com", "wrong")
	_, unknownEmail := env.engine.Login(context.Background(), "nobody@x.com", "Tr0ub4dor&3")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongPassword, unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("error text must not differ: %q vs %q", wrongPassword, unknownEmail)
	}
	if KindOf(wrongPassword) != KindUnauthorized {
		t.Fatalf("expected unauthorized kind, got %v", KindOf(wrongPassword))
	}
	if got := env.engine.metrics.Value(MetricLoginFailure); got != 2 {
		t.Fatalf("expected 2 login failures, got %d", got)
	}
}

func TestLoginInputValidation(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.engine.Login(context.Background(), "", "x"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := env.engine.Login(context.Background(), "a@x.com", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := env.engine.Login(context.Background(), "a@", "x"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestLoginUpgradesWeakHash(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "Ann", "ann@x.com", "Tr0ub4dor&3")
	before := env.store.get(t, reg.UserID).PasswordHash

	stronger := newTestEnv(t, func(c *Config) { c.Password.Time = 2 })
	stronger.store = env.store
	stronger.engine.store = env.store

	if _, err := stronger.engine.Login(context.Background(), "ann@x.com", "Tr0ub4dor&3"); err != nil {
		t.Fatalf("login: %v", err)
	}
	after := env.store.get(t, reg.UserID).PasswordHash
	if after == before || !strings.Contains(after, ",t=2,") {
		t.Fatalf("expected upgraded hash, got %q", after)
	}
	if _, err := stronger.engine.Login(context.Background(), "ann@x.com", "Tr0ub4dor&3"); err != nil {
		t.Fatalf("login after upgrade: %v", err)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "Ann", "ann@x.com", "Tr0ub4dor&3")

	for _, tok := range []string{"", "garbage", reg.Token + "x"} {
		if _, err := env.engine.Authenticate(context.Background(), tok); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for %q, got %v", tok, err)
		}
		if env.engine.IsAuthenticated(context.Background(), tok) {
			t.Fatalf("IsAuthenticated(%q) = true", tok)
		}
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "Ann", "ann@x.com", "Tr0ub4dor&3")

	env.clock.Advance(7*24*time.Hour + time.Second)
	if _, err := env.engine.Authenticate(context.Background(), reg.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestLogoutCounts(t *testing.T) {
	env := newTestEnv(t)
	env.engine.Logout(context.Background())
	if got := env.engine.metrics.Value(MetricLogout); got != 1 {
		t.Fatalf("expected logout metric 1, got %d", got)
	}
}
