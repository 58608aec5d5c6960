package middleware

import (
	"context"
	"net/http"
	"strings"

	otpAuth "github.com/MrEthical07/otpAuth"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "token"

const notAuthorized = "Not authorized. Login again"

type userIDContextKey struct{}

// UserIDFromContext returns the id resolved by RequireSession.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey{}).(string)
	return id, ok && id != ""
}

// WithUserID stores a resolved user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// RequireSession rejects requests without a valid session with 401. The token
// is read from the session cookie, or from an Authorization bearer header for
// non-browser clients.
func RequireSession(engine *otpAuth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				Fail(w, http.StatusUnauthorized, notAuthorized)
				return
			}

			token, ok := SessionToken(r)
			if !ok {
				Fail(w, http.StatusUnauthorized, notAuthorized)
				return
			}

			userID, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				Fail(w, http.StatusUnauthorized, notAuthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// SessionToken extracts the token from the cookie or the bearer header.
func SessionToken(r *http.Request) (string, bool) {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
