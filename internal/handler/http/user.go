package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/yvoloshyn/contactsgo/pkg/errors"
	"github.com/yvoloshyn/contactsgo/pkg/validator"

	"github.com/yvoloshyn/contactsgo/internal/service"
)

// UserHandler handles HTTP requests for user profile endpoints.
type UserHandler struct {
	sessions *service.SessionService
	logger   *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(sessions *service.SessionService, logger *slog.Logger) *UserHandler {
	return &UserHandler{sessions: sessions, logger: logger}
}

// --- Request DTOs ---

// UpdateAvatarRequest is the JSON request body for replacing the avatar URL.
type UpdateAvatarRequest struct {
	AvatarURL string `json:"avatar_url" validate:"required,url"`
}

// --- Handlers ---

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeAppError(w, r, apperrors.Unauthenticated())
		return
	}

	writeJSON(w, http.StatusOK, response{Data: user})
}

// UpdateAvatar handles PATCH /api/v1/users/me/avatar
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeAppError(w, r, apperrors.Unauthenticated())
		return
	}

	var req UpdateAvatarRequest
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

	updated, err := h.sessions.UpdateAvatar(r.Context(), user, req.AvatarURL)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: updated})
}

// AdminListUsers handles GET /api/v1/admin/users
func (h *UserHandler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagingParams(r)

	users, err := h.sessions.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: users})
}

// pagingParams reads limit/offset query parameters, tolerating absence and
// garbage; the service clamps the values.
func pagingParams(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// --- Shared response helpers ---

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

func writeAppError(w http.ResponseWriter, _ *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, response{
			Error: &errorResponse{Code: appErr.Code, Message: appErr.Message},
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code = "NOT_FOUND"
		message = "resource not found"
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrAlreadyExists):
		code = "ALREADY_EXISTS"
		message = "resource already exists"
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidInput):
		code = "INVALID_INPUT"
		message = err.Error()
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrTokenExpired):
		code = "TOKEN_EXPIRED"
		message = "token expired"
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrTokenScope), errors.Is(err, apperrors.ErrTokenSignature):
		code = "INVALID_TOKEN"
		message = "verification error"
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrUnauthorized), errors.Is(err, apperrors.ErrUnauthenticated):
		code = "UNAUTHENTICATED"
		message = "not authenticated"
		status = http.StatusUnauthorized
	}

	writeJSON(w, status, response{
		Error: &errorResponse{Code: code, Message: message},
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}
