package httpapi

import (
	"log/slog"
	"net/http"

	otpAuth "github.com/MrEthical07/otpAuth"
	"github.com/MrEthical07/otpAuth/middleware"
)

// Options configures the router.
type Options struct {
	// Production switches the session cookie to Secure and SameSite=None.
	Production bool
	// TrustProxy takes the client IP from X-Forwarded-For.
	TrustProxy bool
	// Metrics, when set, is served at GET /metrics.
	Metrics http.Handler
	Logger  *slog.Logger
}

// NewRouter returns the HTTP handler for every auth endpoint.
func NewRouter(engine *otpAuth.Engine, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{
		engine:  engine,
		cookies: cookieConfig{production: opts.Production, maxAge: engine.SessionTTL()},
		logger:  logger,
	}

	session := middleware.RequireSession(engine)
	limit := func(class otpAuth.RateClass) func(http.Handler) http.Handler {
		return middleware.RateLimit(engine, class)
	}
	chain := func(f http.HandlerFunc, mws ...func(http.Handler) http.Handler) http.Handler {
		var out http.Handler = f
		for i := len(mws) - 1; i >= 0; i-- {
			out = mws[i](out)
		}
		return out
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/auth/register", chain(h.register))
	mux.Handle("POST /api/auth/login", chain(h.login, limit(otpAuth.RateLogin)))
	mux.Handle("POST /api/auth/logout", chain(h.logout))
	mux.Handle("POST /api/auth/send-verify-otp", chain(h.sendVerifyOTP, session, limit(otpAuth.RateOTPSend)))
	mux.Handle("POST /api/auth/verify-account", chain(h.verifyAccount, session, limit(otpAuth.RateOTPVerify)))
	mux.Handle("POST /api/auth/is-auth", chain(h.isAuth, session))
	mux.Handle("POST /api/auth/send-reset-otp", chain(h.sendResetOTP, limit(otpAuth.RateOTPSend)))
	mux.Handle("POST /api/auth/reset-password", chain(h.resetPassword, limit(otpAuth.RateOTPVerify)))
	mux.HandleFunc("GET /healthz", healthz)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	return middleware.ClientIP(opts.TrustProxy)(mux)
}
