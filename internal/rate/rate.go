package rate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownClass     = errors.New("rate: unknown class")
	ErrRedisUnavailable = errors.New("rate: redis unavailable")
)

// Class names an independently throttled group of endpoints.
type Class string

const (
	ClassOTPSend   Class = "otp-send"
	ClassOTPVerify Class = "otp-verify"
	ClassLogin     Class = "login"
)

// Rule is the capacity of one class.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Rules maps every class to its rule.
type Rules map[Class]Rule

// DefaultRules returns the stock capacities: 3 sends and 5 verifications per
// 10 minutes, 10 logins per 15 minutes.
func DefaultRules() Rules {
	return Rules{
		ClassOTPSend:   {Limit: 3, Window: 10 * time.Minute},
		ClassOTPVerify: {Limit: 5, Window: 10 * time.Minute},
		ClassLogin:     {Limit: 10, Window: 15 * time.Minute},
	}
}

// Validate rejects non-positive limits or windows.
func (r Rules) Validate() error {
	for class, rule := range r {
		if rule.Limit <= 0 {
			return fmt.Errorf("rate: %s limit must be > 0", class)
		}
		if rule.Window <= 0 {
			return fmt.Errorf("rate: %s window must be > 0", class)
		}
	}
	return nil
}

// Decision is the outcome of one admission.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	// Reset is the time left in the current window.
	Reset time.Duration
}

// Gate admits or denies a request for a client key in a class.
type Gate interface {
	Admit(ctx context.Context, class Class, key string) (Decision, error)
}

func decide(rule Rule, count int64, ttl time.Duration) Decision {
	if ttl <= 0 {
		ttl = rule.Window
	}
	d := Decision{Limit: rule.Limit, Reset: ttl}
	if count > int64(rule.Limit) {
		d.RetryAfter = ttl
		return d
	}
	d.Allowed = true
	d.Remaining = rule.Limit - int(count)
	return d
}
