package service

import (
	"context"
	"crypto/md5" // #nosec G501 -- gravatar addressing, not credential hashing
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yvoloshyn/contactsgo/pkg/errors"

	"github.com/yvoloshyn/contactsgo/internal/auth"
	"github.com/yvoloshyn/contactsgo/internal/domain"
	"github.com/yvoloshyn/contactsgo/internal/repository"
)

// IdentityCache is the cache-aside surface the session service needs. Lookups
// may be served from it; every identity write is followed by a Put so the
// cache never diverges from the durable store past the call boundary.
type IdentityCache interface {
	Get(ctx context.Context, email string) (*domain.User, bool)
	Put(ctx context.Context, user *domain.User)
}

// EventPublisher hands confirmation emails off to the notification pipeline.
// Publishing is fire-and-forget: a failure never fails the triggering request.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User, token string) error
	PublishConfirmationRequested(ctx context.Context, user *domain.User, token string) error
	PublishUserConfirmed(ctx context.Context, user *domain.User) error
}

// TokenTTL holds the default lifetimes for each token scope.
type TokenTTL struct {
	Access  time.Duration
	Refresh time.Duration
	Email   time.Duration
}

// SessionService orchestrates signup, login, token refresh, email
// confirmation, and request-identity resolution.
type SessionService struct {
	users    repository.UserRepository
	cache    IdentityCache
	codec    *auth.Codec
	hasher   *auth.Hasher
	producer EventPublisher
	ttl      TokenTTL
	logger   *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(
	users repository.UserRepository,
	cache IdentityCache,
	codec *auth.Codec,
	hasher *auth.Hasher,
	producer EventPublisher,
	ttl TokenTTL,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		users:    users,
		cache:    cache,
		codec:    codec,
		hasher:   hasher,
		producer: producer,
		ttl:      ttl,
		logger:   logger,
	}
}

// --- Input types ---

// SignupInput holds the parameters for registering a new account.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Credential is one bearer value from an ordered chain of request credential
// sources (header first, then cookies). Scope tells the resolver how to try it.
type Credential struct {
	Scope auth.Scope
	Value string
}

// --- Operations ---

// Signup registers a new unconfirmed account. The confirmation email is
// delegated to the notification pipeline via a user.registered event carrying
// a freshly minted email token; signup succeeds even if publishing fails.
func (s *SessionService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	if _, err := s.users.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperrors.AlreadyExists("user", "username", input.Username)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Confirmed:    false,
		Avatar:       gravatarURL(input.Email),
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.cache.Put(ctx, user)

	if token, _, err := s.codec.Mint(user.Email, auth.ScopeEmail, s.ttl.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to mint confirmation token",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
	} else if err := s.producer.PublishUserRegistered(ctx, user, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login authenticates by email and password and rotates the refresh slot.
// Unknown email and wrong password both yield ErrInvalidCredentials so the
// response cannot be used to enumerate accounts.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.InvalidCredentials()
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if !user.Confirmed {
		return nil, nil, apperrors.NotConfirmed()
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil, apperrors.InvalidCredentials()
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, pair, nil
}

// Refresh exchanges a live refresh token for a new access/refresh pair. A
// token that verifies but no longer matches the stored slot was superseded by
// a later rotation; the slot is cleared defensively and the caller gets
// ErrTokenReused.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	pair, _, err := s.refresh(ctx, refreshToken)
	return pair, err
}

func (s *SessionService) refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, *domain.User, error) {
	email, err := s.codec.Verify(refreshToken, auth.ScopeRefresh)
	if err != nil {
		return nil, nil, err
	}

	// The slot compare reads the durable store directly; cached snapshots
	// never carry the refresh token.
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.Unauthenticated()
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		if err := s.users.UpdateRefreshToken(ctx, user.Email, nil); err != nil {
			s.logger.ErrorContext(ctx, "failed to clear superseded refresh slot",
				slog.Int64("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
		user.RefreshToken = nil
		s.cache.Put(ctx, user)

		s.logger.WarnContext(ctx, "superseded refresh token presented",
			slog.Int64("user_id", user.ID),
		)
		return nil, nil, apperrors.TokenReused()
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.Int64("user_id", user.ID),
	)

	return pair, user, nil
}

// Resolve identifies the user behind a request by trying each credential in
// order. Access-scope credentials resolve through the cache; a refresh-scope
// credential triggers a transparent rotation, and the minted pair is returned
// alongside the user so the boundary can reissue cookies. If nothing
// resolves, the request is unauthenticated.
func (s *SessionService) Resolve(ctx context.Context, creds []Credential) (*domain.User, *domain.TokenPair, error) {
	for _, cred := range creds {
		if cred.Value == "" {
			continue
		}

		switch cred.Scope {
		case auth.ScopeAccess:
			email, err := s.codec.Verify(cred.Value, auth.ScopeAccess)
			if err != nil {
				continue
			}
			user, err := s.lookupIdentity(ctx, email)
			if err != nil {
				// Only an unknown subject moves the chain along; a directory
				// outage is not an authentication verdict.
				if errors.Is(err, apperrors.ErrNotFound) {
					continue
				}
				return nil, nil, fmt.Errorf("resolve identity: %w", err)
			}
			return user, nil, nil

		case auth.ScopeRefresh:
			pair, user, err := s.refresh(ctx, cred.Value)
			if err != nil {
				if isCredentialRejection(err) {
					continue
				}
				return nil, nil, err
			}
			return user, pair, nil
		}
	}

	return nil, nil, apperrors.Unauthenticated()
}

// ConfirmEmail flips the confirmed flag for the account named by an
// email-scope token. Confirming an already-confirmed account is a no-op;
// the returned flag tells the two cases apart.
func (s *SessionService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	email, err := s.codec.Verify(token, auth.ScopeEmail)
	if err != nil {
		return false, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, apperrors.Unauthenticated()
		}
		return false, fmt.Errorf("find user: %w", err)
	}

	if user.Confirmed {
		return true, nil
	}

	if err := s.users.SetConfirmed(ctx, user.Email); err != nil {
		return false, fmt.Errorf("set confirmed: %w", err)
	}
	user.Confirmed = true
	s.cache.Put(ctx, user)

	if err := s.producer.PublishUserConfirmed(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.confirmed event",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "email confirmed",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return false, nil
}

// RequestConfirmation re-sends the confirmation email for an unconfirmed
// account. It succeeds regardless of whether the email exists or is already
// confirmed, so the response reveals nothing about the account base.
func (s *SessionService) RequestConfirmation(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.InfoContext(ctx, "confirmation requested for unknown email",
				slog.String("email", email),
			)
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	if user.Confirmed {
		return nil
	}

	token, _, err := s.codec.Mint(user.Email, auth.ScopeEmail, s.ttl.Email)
	if err != nil {
		return fmt.Errorf("mint confirmation token: %w", err)
	}

	if err := s.producer.PublishConfirmationRequested(ctx, user, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.confirmation-requested event",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// UpdateAvatar replaces the user's avatar URL and refreshes the cache
// snapshot in the same logical operation.
func (s *SessionService) UpdateAvatar(ctx context.Context, user *domain.User, avatarURL string) (*domain.User, error) {
	if err := s.users.UpdateAvatar(ctx, user.Email, avatarURL); err != nil {
		return nil, fmt.Errorf("update avatar: %w", err)
	}

	user.Avatar = avatarURL
	s.cache.Put(ctx, user)

	s.logger.InfoContext(ctx, "avatar updated",
		slog.Int64("user_id", user.ID),
	)

	return user, nil
}

// ListUsers returns a page of accounts for the admin directory.
func (s *SessionService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// --- Helpers ---

// issueTokens mints a fresh access/refresh pair, persists the new refresh
// slot, and refreshes the cache snapshot.
func (s *SessionService) issueTokens(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	access, accessExp, err := s.codec.Mint(user.Email, auth.ScopeAccess, s.ttl.Access)
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}

	refresh, refreshExp, err := s.codec.Mint(user.Email, auth.ScopeRefresh, s.ttl.Refresh)
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.Email, &refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	user.RefreshToken = &refresh
	s.cache.Put(ctx, user)

	return &domain.TokenPair{
		AccessToken:        access,
		RefreshToken:       refresh,
		TokenType:          domain.TokenTypeBearer,
		AccessTokenExpiry:  accessExp,
		RefreshTokenExpiry: refreshExp,
	}, nil
}

// isCredentialRejection reports whether err is a verdict about the presented
// credential rather than an infrastructure failure. Rejections let the
// resolver try the next credential in the chain; anything else propagates.
func isCredentialRejection(err error) bool {
	return errors.Is(err, apperrors.ErrUnauthenticated) ||
		errors.Is(err, apperrors.ErrTokenReused) ||
		errors.Is(err, apperrors.ErrTokenExpired) ||
		errors.Is(err, apperrors.ErrTokenScope) ||
		errors.Is(err, apperrors.ErrTokenSignature)
}

// lookupIdentity resolves an email to a user, cache first, repopulating the
// cache on a durable-store hit.
func (s *SessionService) lookupIdentity(ctx context.Context, email string) (*domain.User, error) {
	if user, ok := s.cache.Get(ctx, email); ok {
		return user, nil
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, user)
	return user, nil
}

// gravatarURL derives the default avatar for an email address.
func gravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	digest := md5.Sum([]byte(normalized)) // #nosec G401 -- gravatar addressing
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(digest[:]) + "?s=250&d=robohash"
}
