package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

// RequirePermission checks the actor resolved by LoadActor against the
// permission matrix and, when a unit is selected, the caller's membership
// in that unit.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, ok := ActorFromFiber(c)
		if !ok {
			return unauthorized(c)
		}

		if err := auth.MustEnforce(c.Context(), actor, resource, action); err != nil {
			if errors.Is(err, authorize.ErrForbidden) {
				return forbidden(c, "forbidden")
			}
			slog.ErrorContext(c.Context(), "middleware: enforce",
				"user_id", actor.UserID, "resource", resource, "action", action, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}

		return c.Next()
	}
}
