package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/yvoloshyn/contactsgo/pkg/errors"
)

// Scope discriminates what a token may be used for. A token minted with one
// scope is rejected where another scope is expected.
type Scope string

const (
	ScopeAccess  Scope = "access_token"
	ScopeRefresh Scope = "refresh_token"
	ScopeEmail   Scope = "email_token"
)

// sessionClaims is the payload of every token the codec mints.
type sessionClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Codec mints and verifies signed, expiring, scope-tagged tokens over a
// shared secret. Deterministic given a fixed clock.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithClock overrides the codec's time source. Used in tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec creates a codec signing with HS256 over the given secret.
func NewCodec(secret string, opts ...CodecOption) *Codec {
	c := &Codec{
		secret: []byte(secret),
		issuer: "contacts-api",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mint produces a signed token for the subject with the given scope and ttl.
// The returned expiry is the exact exp claim embedded in the token.
func (c *Codec) Mint(subject string, scope Scope, ttl time.Duration) (string, time.Time, error) {
	now := c.now().UTC()
	expiresAt := now.Add(ttl)

	claims := &sessionClaims{
		Scope: string(scope),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    c.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", scope, err)
	}

	return signed, expiresAt, nil
}

// Verify parses and validates a token, returning its subject. It fails with
// ErrTokenExpired when the token is past its exp claim, ErrTokenScope when
// the embedded scope does not match the expected one, and ErrTokenSignature
// for any other validation failure.
func (c *Codec) Verify(tokenString string, want Scope) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{},
		func(token *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.ErrTokenExpired
		}
		return "", apperrors.ErrTokenSignature
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return "", apperrors.ErrTokenSignature
	}

	if claims.Scope != string(want) {
		return "", apperrors.ErrTokenScope
	}

	return claims.Subject, nil
}
