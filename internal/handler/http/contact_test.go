package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yvoloshyn/contactsgo/pkg/errors"

	"github.com/yvoloshyn/contactsgo/internal/domain"
	"github.com/yvoloshyn/contactsgo/internal/service"
)

// ============================================================================
// Mock Contact Repository
// ============================================================================

type mockContactRepo struct {
	mock.Mock
}

func (m *mockContactRepo) Create(ctx context.Context, contact *domain.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *mockContactRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Contact, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *mockContactRepo) ListByOwner(ctx context.Context, userID int64, limit, offset int, favorite *bool) ([]domain.Contact, error) {
	args := m.Called(ctx, userID, limit, offset, favorite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

func (m *mockContactRepo) Update(ctx context.Context, contact *domain.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *mockContactRepo) SetFavorite(ctx context.Context, userID, id int64, favorite bool) error {
	args := m.Called(ctx, userID, id, favorite)
	return args.Error(0)
}

func (m *mockContactRepo) Delete(ctx context.Context, userID, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *mockContactRepo) Search(ctx context.Context, userID int64, query string, limit, offset int) ([]domain.Contact, error) {
	args := m.Called(ctx, userID, query, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

func (m *mockContactRepo) ListByBirthdayMonths(ctx context.Context, userID int64, months []int) ([]domain.Contact, error) {
	args := m.Called(ctx, userID, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

// ============================================================================
// Test Helpers
// ============================================================================

// withUser injects a resolved user directly, standing in for Authenticate.
func withUser(user *domain.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func setupContactRouter(repo *mockContactRepo, user *domain.User) *chi.Mux {
	handler := NewContactHandler(service.NewContactService(repo, handlerTestLogger()), handlerTestLogger())

	r := chi.NewRouter()
	r.Route("/api/v1/contacts", func(r chi.Router) {
		if user != nil {
			r.Use(withUser(user))
		}

		r.Post("/", handler.Create)
		r.Get("/", handler.List)
		r.Get("/search", handler.Search)
		r.Get("/birthdays", handler.Birthdays)
		r.Get("/{id}", handler.Get)
		r.Put("/{id}", handler.Update)
		r.Patch("/{id}/favorite", handler.SetFavorite)
		r.Delete("/{id}", handler.Delete)
	})
	return r
}

func sampleContactRecord() *domain.Contact {
	return &domain.Contact{
		ID:        3,
		UserID:    42,
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Phone:     "+1-555-0100",
		Birthday:  time.Date(1906, time.December, 9, 0, 0, 0, 0, time.UTC),
		Favorite:  true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

// ============================================================================
// Create Tests
// ============================================================================

func TestCreateContactEndpoint_Success(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Contact")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Contact).ID = 3
		}).
		Return(nil)

	rec := postJSON(t, router, "/api/v1/contacts/", map[string]string{
		"first_name": "Grace",
		"last_name":  "Hopper",
		"email":      "grace@example.com",
		"birthday":   "1906-12-09",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(3), data["id"])
	assert.Equal(t, "Grace", data["first_name"])
	repo.AssertExpectations(t)
}

func TestCreateContactEndpoint_MalformedBirthday(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	rec := postJSON(t, router, "/api/v1/contacts/", map[string]string{
		"first_name": "Grace",
		"last_name":  "Hopper",
		"email":      "grace@example.com",
		"birthday":   "12/09/1906",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateContactEndpoint_MissingRequiredFields(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	rec := postJSON(t, router, "/api/v1/contacts/", map[string]string{
		"first_name": "Grace",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestCreateContactEndpoint_Unauthenticated(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, nil)

	rec := postJSON(t, router, "/api/v1/contacts/", map[string]string{
		"first_name": "Grace",
		"last_name":  "Hopper",
		"email":      "grace@example.com",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================================================
// Get / List Tests
// ============================================================================

func TestGetContactEndpoint_Success(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	repo.On("GetByID", mock.Anything, int64(42), int64(3)).Return(sampleContactRecord(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Grace", data["first_name"])
}

func TestGetContactEndpoint_NotFound(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	repo.On("GetByID", mock.Anything, int64(42), int64(99)).
		Return(nil, apperrors.NotFound("contact", "99"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetContactEndpoint_NonNumericID(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListContactsEndpoint_FavoriteFilter(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	fav := true
	repo.On("ListByOwner", mock.Anything, int64(42), 20, 0, &fav).
		Return([]domain.Contact{*sampleContactRecord()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/?favorite=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestListContactsEndpoint_BadFavoriteValue(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/?favorite=maybe", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================================================
// Update / Favorite / Delete Tests
// ============================================================================

func TestUpdateContactEndpoint_Success(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	repo.On("GetByID", mock.Anything, int64(42), int64(3)).Return(sampleContactRecord(), nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Contact")).Return(nil)

	payload := map[string]string{
		"first_name": "Grace",
		"last_name":  "Hopper-Murray",
		"email":      "grace@example.com",
	}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/contacts/3", jsonBody(t, payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Hopper-Murray", data["last_name"])
}

func TestSetFavoriteEndpoint_Success(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	repo.On("SetFavorite", mock.Anything, int64(42), int64(3), false).Return(nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/contacts/3/favorite", jsonBody(t, map[string]bool{"favorite": false}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestSetFavoriteEndpoint_MissingFlag(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/contacts/3/favorite", jsonBody(t, map[string]any{}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "SetFavorite", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteContactEndpoint_Success(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	repo.On("Delete", mock.Anything, int64(42), int64(3)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/contacts/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deleted")
}

// ============================================================================
// Search / Birthdays Tests
// ============================================================================

func TestSearchContactsEndpoint_Success(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	repo.On("Search", mock.Anything, int64(42), "grace", 20, 0).
		Return([]domain.Contact{*sampleContactRecord()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/search?q=grace", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestSearchContactsEndpoint_MissingQuery(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBirthdaysEndpoint_Success(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	repo.On("ListByBirthdayMonths", mock.Anything, int64(42), mock.AnythingOfType("[]int")).
		Return([]domain.Contact{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/birthdays", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestBirthdaysEndpoint_CustomDays(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	repo.On("ListByBirthdayMonths", mock.Anything, int64(42), mock.AnythingOfType("[]int")).
		Return([]domain.Contact{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/birthdays?days=30", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestBirthdaysEndpoint_DaysOutOfRange(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/birthdays?days=31", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "ListByBirthdayMonths", mock.Anything, mock.Anything, mock.Anything)
}

func TestBirthdaysEndpoint_DaysNotAnInteger(t *testing.T) {
	repo := new(mockContactRepo)
	router := setupContactRouter(repo, storedUser())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/birthdays?days=soon", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "ListByBirthdayMonths", mock.Anything, mock.Anything, mock.Anything)
}
