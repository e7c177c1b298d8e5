package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/pkg/reqctx"
)

const LocalClaims = "auth_claims"

// TokenVerifier is satisfied by both identity providers (jwtauth, paseto).
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (reqctx.AuthClaims, error)
}

// AuthRequired validates the Bearer token issued by the identity provider.
// On success the claims are stored in locals and on the request context.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		h := c.Get("Authorization")
		if h == "" {
			return unauthorized(c)
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c)
		}

		claims, err := verifier.VerifyToken(c.Context(), strings.TrimSpace(parts[1]))
		if err != nil || claims == nil || claims.IsExpired() {
			return unauthorized(c)
		}

		c.Locals(LocalClaims, claims)
		c.SetContext(reqctx.WithClaims(c.Context(), claims))
		return c.Next()
	}
}

// ClaimsFromFiber returns the verified claims set by AuthRequired.
func ClaimsFromFiber(c fiber.Ctx) (reqctx.AuthClaims, bool) {
	claims, ok := c.Locals(LocalClaims).(reqctx.AuthClaims)
	return claims, ok && claims != nil
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}

func forbidden(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": msg})
}
