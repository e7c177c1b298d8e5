package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/internal/service/paging"
)

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func page[T any](c fiber.Ctx, result *paging.Result[T]) error {
	return c.JSON(fiber.Map{
		"data": result.Data,
		"meta": fiber.Map{
			"total":       result.Total,
			"page":        result.Page,
			"per_page":    result.PerPage,
			"total_pages": result.TotalPages,
		},
	})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}

func forbidden(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": msg})
}

func notFound(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}

func conflict(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msg})
}

func tooLarge(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": msg})
}

func unavailable(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": msg})
}

// unprocessable reports field-level validation errors.
func unprocessable(c fiber.Ctx, fe *fielderr.Error) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":  "validation failed",
		"fields": fe.Fields,
	})
}

func internalError(c fiber.Ctx, err error) error {
	slog.ErrorContext(c.Context(), "http: unhandled error",
		"method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

func asFieldErr(err error) (*fielderr.Error, bool) {
	var fe *fielderr.Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
