package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/yvoloshyn/contactsgo/pkg/errors"
	"github.com/yvoloshyn/contactsgo/pkg/validator"

	"github.com/yvoloshyn/contactsgo/internal/service"
)

// ContactHandler handles HTTP requests for contact-book endpoints.
type ContactHandler struct {
	contacts *service.ContactService
	logger   *slog.Logger
}

// NewContactHandler creates a new contact HTTP handler.
func NewContactHandler(contacts *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, logger: logger}
}

// --- Request DTOs ---

// ContactRequest is the JSON request body for creating or updating a contact.
type ContactRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Birthday  string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Comments  string `json:"comments" validate:"omitempty,max=1000"`
}

// SetFavoriteRequest is the JSON request body for toggling the favorite flag.
type SetFavoriteRequest struct {
	Favorite *bool `json:"favorite" validate:"required"`
}

func (req ContactRequest) toInput() (service.ContactInput, error) {
	input := service.ContactInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Comments:  req.Comments,
	}
	if req.Birthday != "" {
		birthday, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			return service.ContactInput{}, apperrors.InvalidInput("birthday must be in YYYY-MM-DD format")
		}
		input.Birthday = birthday
	}
	return input, nil
}

// --- Handlers ---

// Create handles POST /api/v1/contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeAppError(w, r, apperrors.Unauthenticated())
		return
	}

	var req ContactRequest
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

	input, err := req.toInput()
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	contact, err := h.contacts.Create(r.Context(), user.ID, input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: contact})
}

// List handles GET /api/v1/contacts
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeAppError(w, r, apperrors.Unauthenticated())
		return
	}

	limit, offset := pagingParams(r)
	input := service.ListContactsInput{Limit: limit, Offset: offset}

	if raw := r.URL.Query().Get("favorite"); raw != "" {
		favorite, err := strconv.ParseBool(raw)
		if err != nil {
			writeAppError(w, r, apperrors.InvalidInput("favorite must be true or false"))
			return
		}
		input.Favorite = &favorite
	}

	contacts, err := h.contacts.List(r.Context(), user.ID, input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: contacts})
}

// Get handles GET /api/v1/contacts/{id}
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeAppError(w, r, apperrors.Unauthenticated())
		return
	}

	id, err := contactID(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	contact, err := h.contacts.Get(r.Context(), user.ID, id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: contact})
}

// Update handles PUT /api/v1/contacts/{id}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeAppError(w, r, apperrors.Unauthenticated())
		return
	}

	id, err := contactID(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	var req ContactRequest
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

	input, err := req.toInput()
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	contact, err := h.contacts.Update(r.Context(), user.ID, id, input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: contact})
}

// SetFavorite handles PATCH /api/v1/contacts/{id}/favorite
func (h *ContactHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeAppError(w, r, apperrors.Unauthenticated())
		return
	}

	id, err := contactID(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	var req SetFavoriteRequest
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

	if err := h.contacts.SetFavorite(r.Context(), user.ID, id, *req.Favorite); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]any{"id": id, "favorite": *req.Favorite}})
}

// Delete handles DELETE /api/v1/contacts/{id}
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeAppError(w, r, apperrors.Unauthenticated())
		return
	}

	id, err := contactID(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	if err := h.contacts.Delete(r.Context(), user.ID, id); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]any{"id": id, "status": "deleted"}})
}

// Search handles GET /api/v1/contacts/search?q=
func (h *ContactHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeAppError(w, r, apperrors.Unauthenticated())
		return
	}

	limit, offset := pagingParams(r)

	contacts, err := h.contacts.Search(r.Context(), user.ID, r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: contacts})
}

// Birthdays handles GET /api/v1/contacts/birthdays?days=7
func (h *ContactHandler) Birthdays(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeAppError(w, r, apperrors.Unauthenticated())
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeAppError(w, r, apperrors.InvalidInput("days must be an integer"))
			return
		}
		days = parsed
	}

	contacts, err := h.contacts.UpcomingBirthdays(r.Context(), user.ID, days)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: contacts})
}

func contactID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.InvalidInput("contact id must be a positive integer")
	}
	return id, nil
}
