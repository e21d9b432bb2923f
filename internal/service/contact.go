package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	apperrors "github.com/yvoloshyn/contactsgo/pkg/errors"

	"github.com/yvoloshyn/contactsgo/internal/domain"
	"github.com/yvoloshyn/contactsgo/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// Look-ahead bounds for upcoming birthdays, in days.
	defaultBirthdayDays = 7
	maxBirthdayDays     = 30
)

// ContactService manages a user's contact book.
type ContactService struct {
	contacts repository.ContactRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewContactService creates a new contact service.
func NewContactService(contacts repository.ContactRepository, logger *slog.Logger) *ContactService {
	return &ContactService{
		contacts: contacts,
		logger:   logger,
		now:      time.Now,
	}
}

// --- Input types ---

// ContactInput holds the caller-supplied fields for creating or updating a
// contact.
type ContactInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  time.Time
	Comments  string
}

// ListContactsInput holds the paging and filter parameters for listing.
type ListContactsInput struct {
	Limit    int
	Offset   int
	Favorite *bool
}

// --- Operations ---

// Create adds a contact to the user's book.
func (s *ContactService) Create(ctx context.Context, userID int64, input ContactInput) (*domain.Contact, error) {
	if err := validateContactInput(input); err != nil {
		return nil, err
	}

	contact := &domain.Contact{
		UserID:    userID,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Birthday:  input.Birthday,
		Comments:  input.Comments,
	}

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	s.logger.InfoContext(ctx, "contact created",
		slog.Int64("contact_id", contact.ID),
		slog.Int64("user_id", userID),
	)

	return contact, nil
}

// Get retrieves one of the user's contacts.
func (s *ContactService) Get(ctx context.Context, userID, id int64) (*domain.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// List returns a page of the user's contacts, optionally filtered to
// favorites.
func (s *ContactService) List(ctx context.Context, userID int64, input ListContactsInput) ([]domain.Contact, error) {
	limit, offset := clampPage(input.Limit, input.Offset)

	contacts, err := s.contacts.ListByOwner(ctx, userID, limit, offset, input.Favorite)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// Update replaces the editable fields of one of the user's contacts.
func (s *ContactService) Update(ctx context.Context, userID, id int64, input ContactInput) (*domain.Contact, error) {
	if err := validateContactInput(input); err != nil {
		return nil, err
	}

	contact, err := s.contacts.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	contact.FirstName = strings.TrimSpace(input.FirstName)
	contact.LastName = strings.TrimSpace(input.LastName)
	contact.Email = strings.TrimSpace(input.Email)
	contact.Phone = strings.TrimSpace(input.Phone)
	contact.Birthday = input.Birthday
	contact.Comments = input.Comments

	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}

	s.logger.InfoContext(ctx, "contact updated",
		slog.Int64("contact_id", contact.ID),
		slog.Int64("user_id", userID),
	)

	return contact, nil
}

// SetFavorite toggles the favorite flag on one of the user's contacts.
func (s *ContactService) SetFavorite(ctx context.Context, userID, id int64, favorite bool) error {
	if err := s.contacts.SetFavorite(ctx, userID, id, favorite); err != nil {
		return err
	}
	return nil
}

// Delete removes one of the user's contacts.
func (s *ContactService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.contacts.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "contact deleted",
		slog.Int64("contact_id", id),
		slog.Int64("user_id", userID),
	)

	return nil
}

// Search returns the user's contacts matching the query by name or email.
func (s *ContactService) Search(ctx context.Context, userID int64, query string, limit, offset int) ([]domain.Contact, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.InvalidInput("search query is required")
	}

	limit, offset = clampPage(limit, offset)

	contacts, err := s.contacts.Search(ctx, userID, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	return contacts, nil
}

// UpcomingBirthdays returns the user's contacts whose birthday falls within
// the next days days (default 7, at most 30), ordered by how soon the
// birthday occurs. The month filter is pushed to the store; exact day
// matching happens here so that year-end wraparound and Feb 29 clamping stay
// in one place.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, userID int64, days int) ([]domain.Contact, error) {
	if days == 0 {
		days = defaultBirthdayDays
	}
	if days < 1 || days > maxBirthdayDays {
		return nil, apperrors.InvalidInput(fmt.Sprintf("days must be between 1 and %d", maxBirthdayDays))
	}

	from := s.now().UTC().Truncate(24 * time.Hour)
	until := from.AddDate(0, 0, days)

	months := monthsInWindow(from, until)
	contacts, err := s.contacts.ListByBirthdayMonths(ctx, userID, months)
	if err != nil {
		return nil, fmt.Errorf("list birthday candidates: %w", err)
	}

	upcoming := make([]domain.Contact, 0, len(contacts))
	for _, c := range contacts {
		next := c.NextBirthday(from)
		if !next.Before(from) && next.Before(until) {
			upcoming = append(upcoming, c)
		}
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].NextBirthday(from).Before(upcoming[j].NextBirthday(from))
	})

	return upcoming, nil
}

// --- Helpers ---

func validateContactInput(input ContactInput) error {
	if strings.TrimSpace(input.FirstName) == "" {
		return apperrors.InvalidInput("first name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		return apperrors.InvalidInput("last name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return apperrors.InvalidInput("email is required")
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// monthsInWindow lists the calendar months the window touches, 1-12.
func monthsInWindow(from, until time.Time) []int {
	months := []int{int(from.Month())}
	for d := from; d.Before(until); d = d.AddDate(0, 0, 1) {
		m := int(d.Month())
		if m != months[len(months)-1] {
			months = append(months, m)
		}
	}
	return months
}
