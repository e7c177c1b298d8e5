package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/api/http/middleware"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

var errBadTime = errors.New("expected RFC 3339 or YYYY-MM-DD")

func actorOf(c fiber.Ctx) (authorize.Actor, bool) {
	return middleware.ActorFromFiber(c)
}

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

// optionalUUID parses a query value; empty means not set.
func optionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseTime accepts full timestamps and plain dates (midnight UTC).
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, errBadTime
}

// parsePeriod reads ?from=&to= into times, collecting field errors.
func parsePeriod(c fiber.Ctx) (from, to time.Time, err error) {
	fe := fielderr.New()
	if from, err = parseTime(c.Query("from")); err != nil {
		fe.Add("from", err.Error())
	}
	if to, err = parseTime(c.Query("to")); err != nil {
		fe.Add("to", err.Error())
	}
	return from, to, fe.Err()
}
