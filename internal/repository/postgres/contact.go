package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/yvoloshyn/contactsgo/pkg/errors"

	"github.com/yvoloshyn/contactsgo/internal/domain"
)

// ContactRepository implements repository.ContactRepository using PostgreSQL.
type ContactRepository struct {
	db DB
}

// NewContactRepository creates a new PostgreSQL-backed contact repository.
func NewContactRepository(db DB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = `id, user_id, first_name, last_name, email, phone, birthday, comments, favorite, created_at, updated_at`

// Create inserts a new contact row and fills in the generated ID and timestamps.
func (r *ContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO contacts (user_id, first_name, last_name, email, phone, birthday, comments, favorite, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		c.UserID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Birthday,
		c.Comments,
		c.Favorite,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}

	return nil
}

// GetByID retrieves one of the user's contacts by ID.
func (r *ContactRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE id = $1 AND user_id = $2`

	var c domain.Contact
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&c.ID,
		&c.UserID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Birthday,
		&c.Comments,
		&c.Favorite,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}

	return &c, nil
}

// ListByOwner returns a page of the user's contacts, optionally filtered by
// the favorite flag.
func (r *ContactRepository) ListByOwner(ctx context.Context, userID int64, limit, offset int, favorite *bool) ([]domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1`
	args := []any{userID}

	if favorite != nil {
		query += ` AND favorite = $2`
		args = append(args, *favorite)
	}

	query += fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	return r.queryContacts(ctx, query, args...)
}

// Update modifies an existing contact owned by the user.
func (r *ContactRepository) Update(ctx context.Context, c *domain.Contact) error {
	c.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE contacts
		SET first_name = $1, last_name = $2, email = $3, phone = $4, birthday = $5,
		    comments = $6, favorite = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10`

	ct, err := r.db.Exec(ctx, query,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Birthday,
		c.Comments,
		c.Favorite,
		c.UpdatedAt,
		c.ID,
		c.UserID,
	)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("contact", fmt.Sprintf("%d", c.ID))
	}

	return nil
}

// SetFavorite toggles the favorite flag on one of the user's contacts.
func (r *ContactRepository) SetFavorite(ctx context.Context, userID, id int64, favorite bool) error {
	query := `UPDATE contacts SET favorite = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`

	ct, err := r.db.Exec(ctx, query, favorite, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("set favorite: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("contact", fmt.Sprintf("%d", id))
	}

	return nil
}

// Delete removes one of the user's contacts.
func (r *ContactRepository) Delete(ctx context.Context, userID, id int64) error {
	query := `DELETE FROM contacts WHERE id = $1 AND user_id = $2`

	ct, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("contact", fmt.Sprintf("%d", id))
	}

	return nil
}

// Search returns the user's contacts matching the query on first name,
// last name, or email, case-insensitively.
func (r *ContactRepository) Search(ctx context.Context, userID int64, q string, limit, offset int) ([]domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2)
		ORDER BY id
		LIMIT $3 OFFSET $4`

	return r.queryContacts(ctx, query, userID, "%"+q+"%", limit, offset)
}

// ListByBirthdayMonths returns the user's contacts whose birthday falls in
// any of the given months. Day-level narrowing happens in the service.
func (r *ContactRepository) ListByBirthdayMonths(ctx context.Context, userID int64, months []int) ([]domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		  AND EXTRACT(MONTH FROM birthday) = ANY($2)
		ORDER BY id`

	return r.queryContacts(ctx, query, userID, months)
}

func (r *ContactRepository) queryContacts(ctx context.Context, query string, args ...any) ([]domain.Contact, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.FirstName,
			&c.LastName,
			&c.Email,
			&c.Phone,
			&c.Birthday,
			&c.Comments,
			&c.Favorite,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan contact row: %w", err)
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact rows: %w", err)
	}

	if contacts == nil {
		contacts = []domain.Contact{}
	}

	return contacts, nil
}
