package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	otpAuth "github.com/MrEthical07/otpAuth"
)

// Per-class rejection messages.
var rateMessages = map[otpAuth.RateClass]string{
	otpAuth.RateOTPSend:   "Too many OTP requests. Please try again after 10 minutes.",
	otpAuth.RateOTPVerify: "Too many verification attempts. Please try again after 10 minutes.",
	otpAuth.RateLogin:     "Too many login attempts. Please try again after 15 minutes.",
}

// RateLimitMessage returns the 429 message for class.
func RateLimitMessage(class otpAuth.RateClass) string {
	if msg, ok := rateMessages[class]; ok {
		return msg
	}
	return "Too many requests. Please try again later."
}

// RateLimit admits each request through engine for class, keyed by the
// client IP stored by ClientIP. Rejections get 429 and a Retry-After header;
// every admitted or rejected request carries RateLimit-Limit,
// RateLimit-Remaining and RateLimit-Reset.
func RateLimit(engine *otpAuth.Engine, class otpAuth.RateClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			status, err := engine.Admit(r.Context(), class, "")
			writeRateHeaders(w.Header(), status)

			var rl *otpAuth.RateLimitError
			if errors.As(err, &rl) {
				w.Header().Set("Retry-After", strconv.Itoa(seconds(rl.RetryAfter)))
				Fail(w, http.StatusTooManyRequests, RateLimitMessage(class))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeRateHeaders(h http.Header, s otpAuth.RateStatus) {
	if s.Limit <= 0 {
		return
	}
	h.Set("RateLimit-Limit", strconv.Itoa(s.Limit))
	h.Set("RateLimit-Remaining", strconv.Itoa(s.Remaining))
	h.Set("RateLimit-Reset", strconv.Itoa(seconds(s.Reset)))
}

// seconds rounds d up to whole seconds, never below one.
func seconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
