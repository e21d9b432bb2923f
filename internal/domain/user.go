package domain

import (
	"time"
)

// User represents a registered account in the directory.
//
// Email is the identity key: unique, case-preserved. RefreshToken holds the
// single live refresh credential for the account; a later rotation overwrites
// it, which is what makes reuse of a superseded token detectable.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Confirmed    bool      `json:"confirmed"`
	Avatar       string    `json:"avatar,omitempty"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenTypeBearer is the token_type value returned with every token pair.
const TokenTypeBearer = "bearer"

// TokenPair holds a freshly minted access and refresh token with their expiries.
type TokenPair struct {
	AccessToken        string    `json:"access_token"`
	RefreshToken       string    `json:"refresh_token"`
	TokenType          string    `json:"token_type"`
	AccessTokenExpiry  time.Time `json:"expire_access_token"`
	RefreshTokenExpiry time.Time `json:"expire_refresh_token"`
}
