package pasetotoken

import (
	"time"

	"github.com/google/uuid"
)

// Claims is the app-facing token payload of a self-issued access token.
type Claims struct {
	UserID uuid.UUID
	Email  string

	Issuer   string
	Audience string

	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
	TokenID   string // jti
}

// GetUserID implements reqctx.AuthClaims.
func (c *Claims) GetUserID() uuid.UUID {
	return c.UserID
}

// GetEmail implements reqctx.AuthClaims.
func (c *Claims) GetEmail() string {
	return c.Email
}

// IsExpired implements reqctx.AuthClaims.
func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
