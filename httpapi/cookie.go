package httpapi

import (
	"net/http"
	"time"

	"github.com/MrEthical07/otpAuth/middleware"
)

type cookieConfig struct {
	production bool
	maxAge     time.Duration
}

// base returns the session cookie attributes. Production deployments serve
// the frontend from another origin, so the cookie must be Secure and
// SameSite=None there; everywhere else it is SameSite=Strict.
func (c cookieConfig) base() *http.Cookie {
	ck := &http.Cookie{
		Name:     middleware.SessionCookie,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.production,
		SameSite: http.SameSiteStrictMode,
	}
	if c.production {
		ck.SameSite = http.SameSiteNoneMode
	}
	return ck
}

func (c cookieConfig) set(w http.ResponseWriter, token string) {
	ck := c.base()
	ck.Value = token
	ck.MaxAge = int(c.maxAge / time.Second)
	http.SetCookie(w, ck)
}

func (c cookieConfig) clear(w http.ResponseWriter) {
	ck := c.base()
	ck.MaxAge = -1
	http.SetCookie(w, ck)
}
