package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	otpAuth "github.com/MrEthical07/otpAuth"
	"github.com/MrEthical07/otpAuth/middleware"
	"github.com/MrEthical07/otpAuth/store/redisstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

type mailbox struct {
	ch chan string
}

func (m *mailbox) Send(_ context.Context, _, _, body string) error {
	m.ch <- body
	return nil
}

// nextCode waits for the next mail carrying a one-time code.
func (m *mailbox) nextCode(t *testing.T) string {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case body := <-m.ch:
			if code := codePattern.FindString(body); code != "" {
				return code
			}
		case <-deadline:
			t.Fatal("no otp mail delivered")
		}
	}
}

type testServer struct {
	handler http.Handler
	store   *redisstore.Store
	mail    *mailbox
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := otpAuth.DefaultConfig()
	cfg.JWT.Secret = []byte("httpapi-test-secret-0123456789abc")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	store := redisstore.New(rdb)
	mail := &mailbox{ch: make(chan string, 16)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := otpAuth.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(store).
		WithNotifier(mail).
		WithLogger(logger).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	opts.Logger = logger
	return &testServer{handler: NewRouter(engine, opts), store: store, mail: mail}
}

func (s *testServer) post(t *testing.T, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.10:40000"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) middleware.Envelope {
	t.Helper()
	var env middleware.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestRegisterThenWrongPassword(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.post(t, "/api/auth/register", map[string]string{
		"name": "Ann", "email": "ANN@X.COM", "password": "Tr0ub4dor&3",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, middleware.Envelope{Success: true, Message: "User registered successfully"}, envelope(t, rec))

	c := sessionCookie(t, rec)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, 7*24*60*60, c.MaxAge)

	u, err := s.store.FindByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", u.Email)

	rec = s.post(t, "/api/auth/login", map[string]string{"email": "ann@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid email or password"}`, rec.Body.String())
}

func TestRegisterErrors(t *testing.T) {
	s := newTestServer(t, Options{})
	require.Equal(t, http.StatusCreated, s.post(t, "/api/auth/register", map[string]string{
		"name": "Ann", "email": "ann@x.com", "password": "Tr0ub4dor&3",
	}).Code)

	tests := []struct {
		name   string
		body   any
		status int
		msg    string
	}{
		{"missing fields", map[string]string{"email": "b@x.com"}, http.StatusBadRequest, "All fields are required"},
		{"bad email", map[string]string{"name": "B", "email": "nope", "password": "Tr0ub4dor&3"}, http.StatusBadRequest, "Invalid email format"},
		{"duplicate", map[string]string{"name": "B", "email": "Ann@x.com", "password": "Tr0ub4dor&3"}, http.StatusConflict, "Account already exists"},
		{"weak", map[string]string{"name": "B", "email": "b@x.com", "password": "abc"}, http.StatusBadRequest, "Password is too weak"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.post(t, "/api/auth/register", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, envelope(t, rec).Message)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", envelope(t, rec).Message)
}

func TestEmailVerificationFlow(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := s.post(t, "/api/auth/register", map[string]string{
		"name": "Ann", "email": "ann@x.com", "password": "Tr0ub4dor&3",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	cookie := sessionCookie(t, rec)

	rec = s.post(t, "/api/auth/is-auth", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = s.post(t, "/api/auth/send-verify-otp", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized. Login again", envelope(t, rec).Message)

	rec = s.post(t, "/api/auth/send-verify-otp", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Verification OTP sent on email", envelope(t, rec).Message)
	code := s.mail.nextCode(t)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	rec = s.post(t, "/api/auth/verify-account", map[string]string{"otp": wrong}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid OTP", envelope(t, rec).Message)

	rec = s.post(t, "/api/auth/verify-account", map[string]string{"otp": code}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Email verified successfully", envelope(t, rec).Message)

	rec = s.post(t, "/api/auth/verify-account", map[string]string{"otp": code}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.post(t, "/api/auth/send-verify-otp", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Account already verified", envelope(t, rec).Message)
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t, Options{})
	require.Equal(t, http.StatusCreated, s.post(t, "/api/auth/register", map[string]string{
		"name": "Ann", "email": "ann@x.com", "password": "Tr0ub4dor&3",
	}).Code)

	rec := s.post(t, "/api/auth/send-reset-otp", map[string]string{"email": "ghost@x.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", envelope(t, rec).Message)

	rec = s.post(t, "/api/auth/send-reset-otp", map[string]string{"email": "ann@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OTP sent to your email", envelope(t, rec).Message)
	code := s.mail.nextCode(t)

	rec = s.post(t, "/api/auth/reset-password", map[string]string{
		"email": "ann@x.com", "otp": code, "newPassword": "N3w&Better!pw",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password has been reset successfully", envelope(t, rec).Message)

	rec = s.post(t, "/api/auth/login", map[string]string{"email": "ann@x.com", "password": "Tr0ub4dor&3"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.post(t, "/api/auth/login", map[string]string{"email": "ann@x.com", "password": "N3w&Better!pw"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", envelope(t, rec).Message)

	rec = s.post(t, "/api/auth/reset-password", map[string]string{"email": "ann@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email, OTP, and new password are required", envelope(t, rec).Message)
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t, Options{Production: true})
	rec := s.post(t, "/api/auth/register", map[string]string{
		"name": "Ann", "email": "ann@x.com", "password": "Tr0ub4dor&3",
	})
	c := sessionCookie(t, rec)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)

	rec = s.post(t, "/api/auth/logout", nil, c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out", envelope(t, rec).Message)
	cleared := sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestLoginRateLimited(t *testing.T) {
	s := newTestServer(t, Options{})
	for i := 0; i < 10; i++ {
		rec := s.post(t, "/api/auth/login", map[string]string{"email": "ann@x.com", "password": "x"})
		require.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i+1)
	}
	rec := s.post(t, "/api/auth/login", map[string]string{"email": "ann@x.com", "password": "x"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many login attempts. Please try again after 15 minutes.", envelope(t, rec).Message)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestOperationalRoutes(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "otpauth_up 1\n")
	})
	s := newTestServer(t, Options{Metrics: metrics})

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "otpauth_up 1\n", rec.Body.String())

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatusAndMessageOf(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(io.ErrUnexpectedEOF))
	assert.Equal(t, "Internal server error", MessageOf(io.ErrUnexpectedEOF))
	assert.Equal(t, http.StatusBadRequest, StatusOf(otpAuth.ErrOTPExpired))
	assert.Equal(t, "OTP expired", MessageOf(otpAuth.ErrOTPExpired))
	assert.Equal(t, http.StatusTooManyRequests, StatusOf(&otpAuth.RateLimitError{Class: otpAuth.RateLogin}))
}
