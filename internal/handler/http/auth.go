package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yvoloshyn/contactsgo/pkg/validator"

	"github.com/yvoloshyn/contactsgo/internal/service"
)

// AuthHandler handles HTTP requests for session endpoints.
type AuthHandler struct {
	sessions *service.SessionService
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(sessions *service.SessionService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, logger: logger}
}

// --- Request DTOs ---

// SignupRequest is the JSON request body for account registration.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the JSON request body for token refresh. The token may
// also arrive via the refresh_token cookie, in which case the body is empty.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RequestConfirmationRequest is the JSON request body for re-sending the
// confirmation email.
type RequestConfirmationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// --- Response types ---

// AuthResponse wraps user data with tokens.
type AuthResponse struct {
	User   any `json:"user"`
	Tokens any `json:"tokens"`
}

// --- Handlers ---

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.sessions.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: user})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, tokens, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	setAuthCookies(w, tokens)
	writeJSON(w, http.StatusOK, response{
		Data: AuthResponse{
			User:   user,
			Tokens: tokens,
		},
	})
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req RefreshRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, response{
				Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
			})
			return
		}
	}

	token := req.RefreshToken
	if token == "" {
		if c, err := r.Cookie(refreshTokenCookie); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHENTICATED", Message: "refresh token is required"},
		})
		return
	}

	tokens, err := h.sessions.Refresh(r.Context(), token)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	setAuthCookies(w, tokens)
	writeJSON(w, http.StatusOK, response{Data: tokens})
}

// Confirm handles GET /api/v1/auth/confirm/{token}
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "confirmation token is required"},
		})
		return
	}

	alreadyConfirmed, err := h.sessions.ConfirmEmail(r.Context(), token)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	message := "email confirmed"
	if alreadyConfirmed {
		message = "email already confirmed"
	}
	writeJSON(w, http.StatusOK, response{Data: map[string]string{"message": message}})
}

// RequestConfirmation handles POST /api/v1/auth/request-confirmation
func (h *AuthHandler) RequestConfirmation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req RequestConfirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.sessions.RequestConfirmation(r.Context(), req.Email); err != nil {
		writeAppError(w, r, err)
		return
	}

	// The message is identical whether or not the email exists.
	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "if the email exists and is unconfirmed, a confirmation link has been sent"},
	})
}
