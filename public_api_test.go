package otpAuth_test

import (
	"context"
	"net/http"
	"testing"

	otpAuth "github.com/MrEthical07/otpAuth"
	"github.com/MrEthical07/otpAuth/middleware"
	"github.com/MrEthical07/otpAuth/store/pgstore"
	"github.com/MrEthical07/otpAuth/store/redisstore"
)

// This test guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = otpAuth.New

	var _ *otpAuth.Engine
	var _ otpAuth.Config
	var _ otpAuth.AuthResult
	var _ otpAuth.RegisterRequest
	var _ otpAuth.UserStore = (*redisstore.Store)(nil)
	var _ otpAuth.UserStore = (*pgstore.Store)(nil)
	var _ otpAuth.Notifier

	var _ error = otpAuth.ErrUnauthorized
	var _ error = otpAuth.ErrInvalidCredentials
	var _ error = otpAuth.ErrAccountExists
	var _ error = otpAuth.ErrOTPExpired
	var _ error = &otpAuth.RateLimitError{}

	var _ func(*otpAuth.Engine) func(http.Handler) http.Handler = middleware.RequireSession
	var _ func(*otpAuth.Engine, otpAuth.RateClass) func(http.Handler) http.Handler = middleware.RateLimit
	var _ func(bool) func(http.Handler) http.Handler = middleware.ClientIP

	var _ func(*otpAuth.Engine, context.Context, otpAuth.RegisterRequest) (*otpAuth.AuthResult, error) = (*otpAuth.Engine).Register
	var _ func(*otpAuth.Engine, context.Context, string, string) (*otpAuth.AuthResult, error) = (*otpAuth.Engine).Login
	var _ func(*otpAuth.Engine, context.Context) = (*otpAuth.Engine).Logout
	var _ func(*otpAuth.Engine, context.Context, string) error = (*otpAuth.Engine).SendVerifyOTP
	var _ func(*otpAuth.Engine, context.Context, string, string) error = (*otpAuth.Engine).VerifyEmail
	var _ func(*otpAuth.Engine, context.Context, string) (string, error) = (*otpAuth.Engine).Authenticate
	var _ func(*otpAuth.Engine, context.Context, string) bool = (*otpAuth.Engine).IsAuthenticated
	var _ func(*otpAuth.Engine, context.Context, string) error = (*otpAuth.Engine).SendResetOTP
	var _ func(*otpAuth.Engine, context.Context, string, string, string) error = (*otpAuth.Engine).ResetPassword
}
