package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yvoloshyn/contactsgo/pkg/errors"

	"github.com/yvoloshyn/contactsgo/internal/domain"
)

// --- Mock Contact Repository ---

type mockContactRepository struct {
	mock.Mock
}

func (m *mockContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *mockContactRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Contact, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *mockContactRepository) ListByOwner(ctx context.Context, userID int64, limit, offset int, favorite *bool) ([]domain.Contact, error) {
	args := m.Called(ctx, userID, limit, offset, favorite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

func (m *mockContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *mockContactRepository) SetFavorite(ctx context.Context, userID, id int64, favorite bool) error {
	args := m.Called(ctx, userID, id, favorite)
	return args.Error(0)
}

func (m *mockContactRepository) Delete(ctx context.Context, userID, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *mockContactRepository) Search(ctx context.Context, userID int64, query string, limit, offset int) ([]domain.Contact, error) {
	args := m.Called(ctx, userID, query, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

func (m *mockContactRepository) ListByBirthdayMonths(ctx context.Context, userID int64, months []int) ([]domain.Contact, error) {
	args := m.Called(ctx, userID, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

// --- Test Helpers ---

func newContactService(repo *mockContactRepository) *ContactService {
	return NewContactService(repo, newTestLogger())
}

func validContactInput() ContactInput {
	return ContactInput{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Phone:     "+1-555-0100",
		Birthday:  time.Date(1906, time.December, 9, 0, 0, 0, 0, time.UTC),
		Comments:  "compilers",
	}
}

func birthdayContact(id int64, month time.Month, day int) domain.Contact {
	return domain.Contact{
		ID:        id,
		UserID:    42,
		FirstName: "C",
		LastName:  "Contact",
		Email:     "c@example.com",
		Birthday:  time.Date(1990, month, day, 0, 0, 0, 0, time.UTC),
	}
}

// --- Create Tests ---

func TestContactCreate_Success(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Contact")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Contact).ID = 3
		}).
		Return(nil)

	contact, err := svc.Create(ctx, 42, validContactInput())

	require.NoError(t, err)
	assert.Equal(t, int64(3), contact.ID)
	assert.Equal(t, int64(42), contact.UserID)
	assert.Equal(t, "Grace", contact.FirstName)
	repo.AssertExpectations(t)
}

func TestContactCreate_TrimsWhitespace(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Contact")).Return(nil)

	input := validContactInput()
	input.FirstName = "  Grace "
	input.Email = " grace@example.com "

	contact, err := svc.Create(ctx, 42, input)

	require.NoError(t, err)
	assert.Equal(t, "Grace", contact.FirstName)
	assert.Equal(t, "grace@example.com", contact.Email)
}

func TestContactCreate_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ContactInput)
	}{
		{"missing first name", func(in *ContactInput) { in.FirstName = " " }},
		{"missing last name", func(in *ContactInput) { in.LastName = "" }},
		{"missing email", func(in *ContactInput) { in.Email = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockContactRepository)
			svc := newContactService(repo)

			input := validContactInput()
			tt.mutate(&input)

			contact, err := svc.Create(context.Background(), 42, input)

			assert.Nil(t, contact)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

// --- Get Tests ---

func TestContactGet_NotFound(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(42), int64(99)).
		Return(nil, apperrors.NotFound("contact", "99"))

	contact, err := svc.Get(ctx, 42, 99)

	assert.Nil(t, contact)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- List Tests ---

func TestContactList_DefaultPaging(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	ctx := context.Background()

	repo.On("ListByOwner", ctx, int64(42), defaultPageSize, 0, (*bool)(nil)).
		Return([]domain.Contact{}, nil)

	_, err := svc.List(ctx, 42, ListContactsInput{Limit: 0, Offset: -5})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestContactList_ClampsOversizedPage(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	ctx := context.Background()

	repo.On("ListByOwner", ctx, int64(42), maxPageSize, 10, (*bool)(nil)).
		Return([]domain.Contact{}, nil)

	_, err := svc.List(ctx, 42, ListContactsInput{Limit: 500, Offset: 10})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestContactList_FavoriteFilterPassedThrough(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	ctx := context.Background()

	fav := true
	repo.On("ListByOwner", ctx, int64(42), defaultPageSize, 0, &fav).
		Return([]domain.Contact{birthdayContact(1, time.May, 1)}, nil)

	contacts, err := svc.List(ctx, 42, ListContactsInput{Favorite: &fav})

	require.NoError(t, err)
	assert.Len(t, contacts, 1)
}

// --- Update Tests ---

func TestContactUpdate_Success(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	ctx := context.Background()

	existing := birthdayContact(3, time.May, 1)
	repo.On("GetByID", ctx, int64(42), int64(3)).Return(&existing, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*domain.Contact")).Return(nil)

	input := validContactInput()
	contact, err := svc.Update(ctx, 42, 3, input)

	require.NoError(t, err)
	assert.Equal(t, int64(3), contact.ID)
	assert.Equal(t, "Grace", contact.FirstName)
	assert.Equal(t, input.Birthday, contact.Birthday)
	repo.AssertExpectations(t)
}

func TestContactUpdate_NotFound(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(42), int64(99)).
		Return(nil, apperrors.NotFound("contact", "99"))

	contact, err := svc.Update(ctx, 42, 99, validContactInput())

	assert.Nil(t, contact)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// --- SetFavorite / Delete Tests ---

func TestContactSetFavorite(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	ctx := context.Background()

	repo.On("SetFavorite", ctx, int64(42), int64(3), true).Return(nil)

	assert.NoError(t, svc.SetFavorite(ctx, 42, 3, true))
	repo.AssertExpectations(t)
}

func TestContactDelete_NotFound(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	ctx := context.Background()

	repo.On("Delete", ctx, int64(42), int64(99)).
		Return(apperrors.NotFound("contact", "99"))

	assert.ErrorIs(t, svc.Delete(ctx, 42, 99), apperrors.ErrNotFound)
}

// --- Search Tests ---

func TestContactSearch_Success(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	ctx := context.Background()

	repo.On("Search", ctx, int64(42), "grace", defaultPageSize, 0).
		Return([]domain.Contact{birthdayContact(1, time.May, 1)}, nil)

	contacts, err := svc.Search(ctx, 42, "  grace ", 0, 0)

	require.NoError(t, err)
	assert.Len(t, contacts, 1)
	repo.AssertExpectations(t)
}

func TestContactSearch_EmptyQuery(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)

	contacts, err := svc.Search(context.Background(), 42, "   ", 0, 0)

	assert.Nil(t, contacts)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- UpcomingBirthdays Tests ---

func TestUpcomingBirthdays_WindowAndOrdering(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	svc.now = func() time.Time {
		return time.Date(2026, time.June, 10, 13, 30, 0, 0, time.UTC)
	}
	ctx := context.Background()

	candidates := []domain.Contact{
		birthdayContact(1, time.June, 20), // beyond the window
		birthdayContact(2, time.June, 14), // inside
		birthdayContact(3, time.June, 10), // today
		birthdayContact(4, time.June, 9),  // already passed this year
		birthdayContact(5, time.June, 16), // last day inside
	}
	repo.On("ListByBirthdayMonths", ctx, int64(42), []int{6}).Return(candidates, nil)

	upcoming, err := svc.UpcomingBirthdays(ctx, 42, 0)

	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	assert.Equal(t, int64(3), upcoming[0].ID)
	assert.Equal(t, int64(2), upcoming[1].ID)
	assert.Equal(t, int64(5), upcoming[2].ID)
}

func TestUpcomingBirthdays_CustomWindow(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	svc.now = func() time.Time {
		return time.Date(2026, time.June, 10, 13, 30, 0, 0, time.UTC)
	}
	ctx := context.Background()

	candidates := []domain.Contact{
		birthdayContact(1, time.June, 20), // outside 7 days, inside 14
		birthdayContact(2, time.June, 23), // last day inside 14
		birthdayContact(3, time.June, 24), // first day outside
	}
	repo.On("ListByBirthdayMonths", ctx, int64(42), []int{6}).Return(candidates, nil)

	upcoming, err := svc.UpcomingBirthdays(ctx, 42, 14)

	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, int64(1), upcoming[0].ID)
	assert.Equal(t, int64(2), upcoming[1].ID)
}

func TestUpcomingBirthdays_WindowOutOfRange(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)

	for _, days := range []int{-1, 31} {
		_, err := svc.UpcomingBirthdays(context.Background(), 42, days)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "days=%d", days)
	}
	repo.AssertNotCalled(t, "ListByBirthdayMonths", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpcomingBirthdays_YearEndWraparound(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	svc.now = func() time.Time {
		return time.Date(2026, time.December, 28, 8, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	candidates := []domain.Contact{
		birthdayContact(1, time.December, 30), // this year
		birthdayContact(2, time.January, 2),   // next year, inside
		birthdayContact(3, time.January, 15),  // next year, beyond
		birthdayContact(4, time.December, 27), // passed, next occurrence is a year out
	}
	repo.On("ListByBirthdayMonths", ctx, int64(42), []int{12, 1}).Return(candidates, nil)

	upcoming, err := svc.UpcomingBirthdays(ctx, 42, 0)

	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, int64(1), upcoming[0].ID)
	assert.Equal(t, int64(2), upcoming[1].ID)
	repo.AssertExpectations(t)
}

func TestUpcomingBirthdays_NoCandidates(t *testing.T) {
	repo := new(mockContactRepository)
	svc := newContactService(repo)
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	repo.On("ListByBirthdayMonths", ctx, int64(42), []int{3}).Return([]domain.Contact{}, nil)

	upcoming, err := svc.UpcomingBirthdays(context.Background(), 42, 0)

	require.NoError(t, err)
	assert.Empty(t, upcoming)
}
