package handler

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/service/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	svc report.Service
}

func NewReportHandler(svc report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func mapReportError(c fiber.Ctx, err error) error {
	if fe, isField := asFieldErr(err); isField {
		return unprocessable(c, fe)
	}
	switch {
	case errors.Is(err, report.ErrForbidden):
		return forbidden(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// GET /reports/dashboard?from=&to=
func (h *ReportHandler) Dashboard(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	from, to, err := parsePeriod(c)
	if err != nil {
		return mapReportError(c, err)
	}

	d, err := h.svc.Dashboard(c.Context(), actor, from, to)
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, d)
}

// GET /reports/export?from=&to=
func (h *ReportHandler) Export(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	from, to, err := parsePeriod(c)
	if err != nil {
		return mapReportError(c, err)
	}

	// Buffered so a failure halfway still produces a JSON error response.
	var buf bytes.Buffer
	if err := h.svc.ExportXLSX(c.Context(), actor, from, to, &buf); err != nil {
		return mapReportError(c, err)
	}

	c.Attachment(fmt.Sprintf("relatorio-%s.xlsx", time.Now().UTC().Format("20060102")))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}
