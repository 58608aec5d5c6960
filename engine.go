package otpAuth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/otpAuth/internal/mailq"
	"github.com/MrEthical07/otpAuth/internal/otp"
	"github.com/MrEthical07/otpAuth/internal/rate"
	"github.com/MrEthical07/otpAuth/jwt"
	"github.com/MrEthical07/otpAuth/password"
)

// Engine runs the account lifecycle: register, login, logout, email
// verification and password reset. Build one with [New].
type Engine struct {
	config    Config
	store     UserStore
	notifier  Notifier
	hasher    *password.Argon2
	tokens    *jwt.Manager
	codes     *otp.Generator
	gate      rate.Gate
	mail      *mailq.Dispatcher
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
	dummyHash string
}

// Close describes the close operation and its observable behavior.
//
// Close drains queued notifications. It is safe to call more than once.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.mail.Close()
}

// MailDropped returns the number of notifications dropped by a full queue.
func (e *Engine) MailDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.mail.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot copies all counters; it returns empty maps when metrics are
// disabled.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// SessionTTL is the lifetime of issued session tokens and of the cookie that
// carries them.
func (e *Engine) SessionTTL() time.Duration {
	if e == nil {
		return 0
	}
	return e.tokens.TTL()
}

func (e *Engine) metricInc(id MetricID) {
	if e.metrics != nil {
		e.metrics.Inc(id)
	}
}

func (e *Engine) ready() error {
	if e == nil || e.store == nil || e.tokens == nil {
		return ErrEngineNotReady
	}
	return nil
}

func (e *Engine) issueSession(userID string) (*AuthResult, error) {
	token, err := e.tokens.Issue(userID)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &AuthResult{
		UserID:    userID,
		Token:     token,
		ExpiresAt: e.now().Add(e.tokens.TTL()),
	}, nil
}

func (e *Engine) hashPassword(plaintext string) (string, error) {
	start := time.Now()
	hash, err := e.hasher.Hash(plaintext)
	e.metrics.Observe(MetricHashLatency, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func (e *Engine) strongEnough(plaintext string) bool {
	return password.Assess(plaintext) >= e.config.Password.MinStrength
}

// storeError keeps taxonomy errors intact and wraps everything else as an
// internal store failure.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindInternal || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
