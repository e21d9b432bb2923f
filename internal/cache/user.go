package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yvoloshyn/contactsgo/internal/domain"
)

// DefaultUserTTL bounds how long a cached identity snapshot is served before
// the durable store is consulted again.
const DefaultUserTTL = 900 * time.Second

// UserCache is a cache-aside store of identity snapshots keyed by email. The
// durable store stays authoritative: every failure here degrades to a miss
// and is logged, never propagated to the caller.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewUserCache creates a user cache over the given redis client. A zero ttl
// falls back to DefaultUserTTL.
func NewUserCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *UserCache {
	if ttl <= 0 {
		ttl = DefaultUserTTL
	}
	return &UserCache{client: client, ttl: ttl, logger: logger}
}

func userKey(email string) string {
	return "user:" + email
}

// Get returns the cached snapshot for the email, or false on a miss. Backend
// errors and undecodable payloads count as misses.
func (c *UserCache) Get(ctx context.Context, email string) (*domain.User, bool) {
	data, err := c.client.Get(ctx, userKey(email)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "user cache read failed",
				slog.String("key", userKey(email)),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.logger.WarnContext(ctx, "user cache snapshot undecodable, treating as miss",
			slog.String("key", userKey(email)),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	return &user, true
}

// Put overwrites the snapshot for the user. Write failures are logged and
// swallowed. Secrets never reach the cache: the snapshot excludes the
// password hash and refresh token through the domain type's JSON tags.
func (c *UserCache) Put(ctx context.Context, user *domain.User) {
	data, err := json.Marshal(user)
	if err != nil {
		c.logger.WarnContext(ctx, "user cache snapshot marshal failed",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := c.client.Set(ctx, userKey(user.Email), data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "user cache write failed",
			slog.String("key", userKey(user.Email)),
			slog.String("error", err.Error()),
		)
	}
}

// Invalidate deletes the snapshot for the email. Write paths generally prefer
// Put over Invalidate so a read right after a write sees fresh data instead
// of a widened miss window.
func (c *UserCache) Invalidate(ctx context.Context, email string) {
	if err := c.client.Del(ctx, userKey(email)).Err(); err != nil {
		c.logger.WarnContext(ctx, "user cache delete failed",
			slog.String("key", userKey(email)),
			slog.String("error", err.Error()),
		)
	}
}
