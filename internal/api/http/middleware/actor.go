package middleware

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	entprofile "github.com/equidadeplus/equidade_backend/internal/repo/profile"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	"github.com/equidadeplus/equidade_backend/pkg/reqctx"
)

const (
	LocalActor   = "actor"
	LocalProfile = "profile"
)

type ProfileGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Profile, error)
}

// ActorResolver turns a stored profile into the per-request actor.
type ActorResolver interface {
	Actor(ctx context.Context, p *repo.Profile) (authorize.Actor, error)
}

// LoadActor runs after AuthRequired. It loads the caller's profile, rejects
// accounts that are not active and resolves the selected unit once per
// request. Handlers read the result with ActorFromFiber.
func LoadActor(profiles ProfileGetter, resolver ActorResolver) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := ClaimsFromFiber(c)
		if !ok {
			return unauthorized(c)
		}

		ctx := c.Context()
		p, err := profiles.Get(ctx, claims.GetUserID())
		if repo.IsNotFound(err) {
			return forbidden(c, "no profile for this account")
		}
		if err != nil {
			slog.ErrorContext(ctx, "middleware: load profile", "user_id", claims.GetUserID(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
		if p.Status != entprofile.StatusActive {
			return forbidden(c, "account is "+p.Status.String())
		}

		actor, err := resolver.Actor(ctx, p)
		if err != nil {
			slog.ErrorContext(ctx, "middleware: resolve scope", "user_id", p.ID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}

		SetActor(c, p, actor)
		return c.Next()
	}
}

// SetActor stores the profile and actor for the rest of the chain.
func SetActor(c fiber.Ctx, p *repo.Profile, actor authorize.Actor) {
	c.Locals(LocalProfile, p)
	c.Locals(LocalActor, actor)
	c.SetContext(reqctx.WithActor(c.Context(), actor))
}

func ActorFromFiber(c fiber.Ctx) (authorize.Actor, bool) {
	actor, ok := c.Locals(LocalActor).(authorize.Actor)
	return actor, ok && actor.UserID != uuid.Nil
}

func ProfileFromFiber(c fiber.Ctx) (*repo.Profile, bool) {
	p, ok := c.Locals(LocalProfile).(*repo.Profile)
	return p, ok && p != nil
}
