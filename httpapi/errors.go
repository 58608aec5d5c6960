package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	otpAuth "github.com/MrEthical07/otpAuth"
	"github.com/MrEthical07/otpAuth/middleware"
)

const (
	msgMissingFields = "Missing details"
	msgBadBody       = "Invalid request body"
	msgInternal      = "Internal server error"
)

var messages = []struct {
	err error
	msg string
}{
	{otpAuth.ErrMissingFields, msgMissingFields},
	{otpAuth.ErrInvalidEmail, "Invalid email format"},
	{otpAuth.ErrWeakPassword, "Password is too weak"},
	{otpAuth.ErrAccountExists, "Account already exists"},
	{otpAuth.ErrInvalidCredentials, "Invalid email or password"},
	{otpAuth.ErrUnauthorized, "Not authorized. Login again"},
	{otpAuth.ErrUserNotFound, "User not found"},
	{otpAuth.ErrAlreadyVerified, "Account already verified"},
	{otpAuth.ErrOTPNoChallenge, "Invalid OTP"},
	{otpAuth.ErrOTPMismatch, "Invalid OTP"},
	{otpAuth.ErrOTPExpired, "OTP expired"},
	{otpAuth.ErrRateLimited, "Too many requests. Please try again later."},
}

var statuses = map[otpAuth.ErrorKind]int{
	otpAuth.KindValidation:   http.StatusBadRequest,
	otpAuth.KindConflict:     http.StatusConflict,
	otpAuth.KindUnauthorized: http.StatusUnauthorized,
	otpAuth.KindNotFound:     http.StatusNotFound,
	otpAuth.KindRateLimited:  http.StatusTooManyRequests,
	otpAuth.KindInternal:     http.StatusInternalServerError,
}

// StatusOf maps an Engine error to an HTTP status.
func StatusOf(err error) int {
	return statuses[otpAuth.KindOf(err)]
}

// MessageOf returns the client-facing message for err. Errors outside the
// taxonomy never leak their text.
func MessageOf(err error) string {
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return msgInternal
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.failWith(w, r, err, "")
}

// failWith writes err, replacing the missing-fields message with
// missingFields when it is set.
func (h *handler) failWith(w http.ResponseWriter, r *http.Request, err error, missingFields string) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("client_ip", otpAuth.ClientIPFromContext(r.Context())),
			slog.Any("err", err),
		)
	}

	msg := MessageOf(err)
	if missingFields != "" && errors.Is(err, otpAuth.ErrMissingFields) {
		msg = missingFields
	}
	middleware.Fail(w, status, msg)
}
