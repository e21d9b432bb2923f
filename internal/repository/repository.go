package repository

import (
	"context"

	"github.com/yvoloshyn/contactsgo/internal/domain"
)

// UserRepository defines the durable-store contract for user identities.
// The store is authoritative; the identity cache is only ever a copy.
type UserRepository interface {
	// FindByEmail retrieves a user by their unique email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByUsername retrieves a user by their display name.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// Insert creates a new user and fills in its generated ID and timestamps.
	Insert(ctx context.Context, user *domain.User) error

	// UpdateRefreshToken overwrites the single live refresh-token slot for the
	// user. A nil token clears the slot.
	UpdateRefreshToken(ctx context.Context, email string, token *string) error

	// SetConfirmed marks the user's email as confirmed.
	SetConfirmed(ctx context.Context, email string) error

	// UpdateAvatar replaces the user's avatar URL.
	UpdateAvatar(ctx context.Context, email, avatarURL string) error

	// List returns a page of users ordered by creation time.
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

// ContactRepository defines the persistence contract for contact records.
// Every operation is scoped to the owning user.
type ContactRepository interface {
	// Create inserts a new contact and fills in its generated ID and timestamps.
	Create(ctx context.Context, contact *domain.Contact) error

	// GetByID retrieves one of the user's contacts by ID.
	GetByID(ctx context.Context, userID, id int64) (*domain.Contact, error)

	// ListByOwner returns a page of the user's contacts. A non-nil favorite
	// filters by the favorite flag.
	ListByOwner(ctx context.Context, userID int64, limit, offset int, favorite *bool) ([]domain.Contact, error)

	// Update modifies an existing contact owned by the user.
	Update(ctx context.Context, contact *domain.Contact) error

	// SetFavorite toggles the favorite flag on one of the user's contacts.
	SetFavorite(ctx context.Context, userID, id int64, favorite bool) error

	// Delete removes one of the user's contacts.
	Delete(ctx context.Context, userID, id int64) error

	// Search returns the user's contacts whose first name, last name, or
	// email matches the query, case-insensitively.
	Search(ctx context.Context, userID int64, query string, limit, offset int) ([]domain.Contact, error)

	// ListByBirthdayMonths returns the user's contacts whose birthday falls
	// in any of the given months. Callers narrow the result to exact days.
	ListByBirthdayMonths(ctx context.Context, userID int64, months []int) ([]domain.Contact, error)
}
