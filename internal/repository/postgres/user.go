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

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail retrieves a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, confirmed, avatar, refresh_token, created_at, updated_at
		FROM users
		WHERE email = $1`

	return r.scanUser(ctx, query, email)
}

// FindByUsername retrieves a user by their display name.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, confirmed, avatar, refresh_token, created_at, updated_at
		FROM users
		WHERE username = $1`

	return r.scanUser(ctx, query, username)
}

// Insert creates a new user row and fills in the generated ID and timestamps.
func (r *UserRepository) Insert(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `
		INSERT INTO users (username, email, password_hash, role, confirmed, avatar, refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.Confirmed,
		u.Avatar,
		u.RefreshToken,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// UpdateRefreshToken overwrites the user's single refresh-token slot.
// A nil token clears the slot.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, email string, token *string) error {
	query := `UPDATE users SET refresh_token = $1, updated_at = $2 WHERE email = $3`

	ct, err := r.db.Exec(ctx, query, token, time.Now().UTC(), email)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", email)
	}

	return nil
}

// SetConfirmed marks the user's email as confirmed.
func (r *UserRepository) SetConfirmed(ctx context.Context, email string) error {
	query := `UPDATE users SET confirmed = true, updated_at = $1 WHERE email = $2`

	ct, err := r.db.Exec(ctx, query, time.Now().UTC(), email)
	if err != nil {
		return fmt.Errorf("set confirmed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", email)
	}

	return nil
}

// UpdateAvatar replaces the user's avatar URL.
func (r *UserRepository) UpdateAvatar(ctx context.Context, email, avatarURL string) error {
	query := `UPDATE users SET avatar = $1, updated_at = $2 WHERE email = $3`

	ct, err := r.db.Exec(ctx, query, avatarURL, time.Now().UTC(), email)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", email)
	}

	return nil
}

// List returns a page of users ordered by creation time.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, confirmed, avatar, refresh_token, created_at, updated_at
		FROM users
		ORDER BY created_at
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUserRow(rows, &u); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	if users == nil {
		users = []domain.User{}
	}

	return users, nil
}

// scanUser is a helper that executes a query expected to return a single user row.
func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Confirmed,
		&u.Avatar,
		&u.RefreshToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

func scanUserRow(rows pgx.Rows, u *domain.User) error {
	return rows.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Confirmed,
		&u.Avatar,
		&u.RefreshToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}
