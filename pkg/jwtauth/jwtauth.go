// Package jwtauth verifies access tokens issued by the hosted identity
// provider (Supabase-style JWTs: HS256 with a shared secret, or RS256 with
// keys published at a JWKS endpoint).
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/config"
	"github.com/equidadeplus/equidade_backend/pkg/reqctx"
)

var ErrInvalidToken = errors.New("jwtauth: invalid token")

// Claims are the provider claims the API relies on.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GetUserID implements reqctx.AuthClaims. A non-UUID subject yields uuid.Nil.
func (c *Claims) GetUserID() uuid.UUID {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func (c *Claims) GetEmail() string { return c.Email }

func (c *Claims) IsExpired() bool {
	return c.ExpiresAt != nil && time.Now().After(c.ExpiresAt.Time)
}

type Config struct {
	Secret   []byte
	JWKSURL  string
	Issuer   string
	Audience string
	// JWKSTTL bounds how long fetched keys are trusted. Zero means five minutes.
	JWKSTTL time.Duration
}

// Verifier validates bearer tokens.
type Verifier struct {
	cfg     Config
	keyFunc jwt.Keyfunc
	parser  *jwt.Parser
}

func New(cfg Config) (*Verifier, error) {
	var (
		keyFunc jwt.Keyfunc
		methods []string
	)
	switch {
	case cfg.JWKSURL != "":
		ttl := cfg.JWKSTTL
		if ttl <= 0 {
			ttl = defaultJWKSCacheTTL
		}
		cache := NewJWKSCache(cfg.JWKSURL, ttl)
		keyFunc = func(token *jwt.Token) (any, error) {
			kid, ok := token.Header["kid"].(string)
			if !ok || kid == "" {
				return nil, fmt.Errorf("token has no kid header")
			}
			return cache.GetKey(kid)
		}
		methods = []string{jwt.SigningMethodRS256.Alg()}
	case len(cfg.Secret) > 0:
		secret := cfg.Secret
		keyFunc = func(*jwt.Token) (any, error) { return secret, nil }
		methods = []string{jwt.SigningMethodHS256.Alg()}
	default:
		return nil, errors.New("jwtauth: secret or jwks url required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &Verifier{cfg: cfg, keyFunc: keyFunc, parser: jwt.NewParser(opts...)}, nil
}

// NewFromConfig builds a Verifier from the central configuration.
func NewFromConfig(cfg *config.Config) (*Verifier, error) {
	j := cfg.Authentication.JWT
	return New(Config{
		Secret:   []byte(j.Secret),
		JWKSURL:  j.JWKSURL,
		Issuer:   j.Issuer,
		Audience: j.Audience,
	})
}

// Verify parses and validates a raw token.
func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tok, err := v.parser.ParseWithClaims(strings.TrimSpace(tokenStr), claims, v.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.GetUserID() == uuid.Nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	return claims, nil
}

// VerifyToken adapts Verify to the HTTP auth middleware.
func (v *Verifier) VerifyToken(_ context.Context, token string) (reqctx.AuthClaims, error) {
	c, err := v.Verify(token)
	if err != nil {
		return nil, err
	}
	return c, nil
}
