package handler

import (
	"net/http"

	"github.com/go-referral-api/internal/application/auth"
	"github.com/go-referral-api/internal/application/session"
	"github.com/go-referral-api/internal/domain"
	"github.com/go-referral-api/internal/transport/http/middleware"
)

// AuthHandler serves registration, OTP and sign-in endpoints.
type AuthHandler struct {
	auth     auth.Service
	sessions session.Service
}

func NewAuthHandler(a auth.Service, s session.Service) *AuthHandler {
	return &AuthHandler{auth: a, sessions: s}
}

type meEnvelope struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.auth.Register(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{
		Success: true,
		Message: "OTP sent to your email. Please verify to complete registration.",
	})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyOTPRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	res, err := h.auth.VerifyOTP(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{
		Success: true,
		Message: "Registration completed successfully",
		Token:   res.Token,
		User:    res.User.Summary(),
	})
}

func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.EmailRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.auth.ResendOTP(r.Context(), req.Email); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "A new OTP has been sent to your email"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.EmailRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Password reset OTP sent to your email"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetPasswordRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.auth.ResetPassword(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Password reset successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	h.writeLogin(w, r)(h.sessions.Login(r.Context(), req))
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	h.writeLogin(w, r)(h.sessions.AdminLogin(r.Context(), req))
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req session.GoogleLoginRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	h.writeLogin(w, r)(h.sessions.GoogleLogin(r.Context(), req))
}

func (h *AuthHandler) writeLogin(w http.ResponseWriter, r *http.Request) func(*session.LoginResult, error) {
	return func(res *session.LoginResult, err error) {
		if err != nil {
			httpError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, AuthEnvelope{
			Success: true,
			Message: "Login successful",
			Token:   res.Token,
			User:    res.User.Summary(),
		})
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tok, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}
	if err := h.sessions.Logout(r.Context(), tok); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}
	writeJSON(w, http.StatusOK, meEnvelope{Success: true, User: u})
}
