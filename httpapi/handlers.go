package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	otpAuth "github.com/MrEthical07/otpAuth"
	"github.com/MrEthical07/otpAuth/middleware"
)

const maxBodyBytes = 1 << 20

type handler struct {
	engine  *otpAuth.Engine
	cookies cookieConfig
	logger  *slog.Logger
}

type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyBody struct {
	OTP string `json:"otp"`
}

type emailBody struct {
	Email string `json:"email"`
}

type resetBody struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// decode reads a JSON body into v. An empty body leaves v zero so that the
// Engine reports the missing fields.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	middleware.Fail(w, http.StatusBadRequest, msgBadBody)
	return false
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if !decode(w, r, &body) {
		return
	}

	res, err := h.engine.Register(r.Context(), otpAuth.RegisterRequest{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		h.failWith(w, r, err, "All fields are required")
		return
	}

	h.cookies.set(w, res.Token)
	middleware.OK(w, http.StatusCreated, "User registered successfully")
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decode(w, r, &body) {
		return
	}

	res, err := h.engine.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		h.failWith(w, r, err, "Email and password are required")
		return
	}

	h.cookies.set(w, res.Token)
	middleware.OK(w, http.StatusOK, "Login successful")
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	h.engine.Logout(r.Context())
	h.cookies.clear(w)
	middleware.OK(w, http.StatusOK, "Logged out")
}

func (h *handler) sendVerifyOTP(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	if err := h.engine.SendVerifyOTP(r.Context(), userID); err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.OK(w, http.StatusOK, "Verification OTP sent on email")
}

func (h *handler) verifyAccount(w http.ResponseWriter, r *http.Request) {
	var body verifyBody
	if !decode(w, r, &body) {
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	if err := h.engine.VerifyEmail(r.Context(), userID, body.OTP); err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.OK(w, http.StatusOK, "Email verified successfully")
}

func (h *handler) isAuth(w http.ResponseWriter, r *http.Request) {
	middleware.JSON(w, http.StatusOK, middleware.Envelope{Success: true})
}

func (h *handler) sendResetOTP(w http.ResponseWriter, r *http.Request) {
	var body emailBody
	if !decode(w, r, &body) {
		return
	}

	if err := h.engine.SendResetOTP(r.Context(), body.Email); err != nil {
		h.failWith(w, r, err, "Email is required")
		return
	}
	middleware.OK(w, http.StatusOK, "OTP sent to your email")
}

func (h *handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var body resetBody
	if !decode(w, r, &body) {
		return
	}

	if err := h.engine.ResetPassword(r.Context(), body.Email, body.OTP, body.NewPassword); err != nil {
		h.failWith(w, r, err, "Email, OTP, and new password are required")
		return
	}
	middleware.OK(w, http.StatusOK, "Password has been reset successfully")
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	middleware.OK(w, http.StatusOK, "ok")
}
