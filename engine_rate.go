package otpAuth

import (
	"context"
	"time"

	"github.com/MrEthical07/otpAuth/internal/rate"
)

// RateStatus reports the state of a client's window after an admission.
type RateStatus struct {
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	Reset      time.Duration
}

// Admit describes the admit operation and its observable behavior.
//
// Admit counts one request for key in class. When the window is exhausted it
// returns a *RateLimitError carrying the retry hint. An empty key falls back
// to the client IP in ctx. When the gate is disabled, or its backend is
// unreachable, every request is admitted; throttling is advisory.
func (e *Engine) Admit(ctx context.Context, class RateClass, key string) (RateStatus, error) {
	if e == nil || e.gate == nil {
		return RateStatus{}, nil
	}
	if key == "" {
		key = ClientIPFromContext(ctx)
	}
	if key == "" {
		key = "unknown"
	}

	decision, err := e.gate.Admit(ctx, rate.Class(class), key)
	if err != nil {
		e.logger.WarnContext(ctx, "rate gate unavailable, admitting request", "class", string(class), "err", err)
		return RateStatus{}, nil
	}

	status := RateStatus{
		Limit:      decision.Limit,
		Remaining:  decision.Remaining,
		RetryAfter: decision.RetryAfter,
		Reset:      decision.Reset,
	}
	if !decision.Allowed {
		e.metricInc(MetricRateLimitHit)
		e.logger.InfoContext(ctx, "rate limited", "class", string(class), "client", key, "retry_after", decision.RetryAfter)
		return status, &RateLimitError{Class: class, Limit: decision.Limit, RetryAfter: decision.RetryAfter}
	}
	return status, nil
}
