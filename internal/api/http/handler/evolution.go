package handler

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	entevolution "github.com/equidadeplus/equidade_backend/internal/repo/evolution"
	"github.com/equidadeplus/equidade_backend/internal/service/evolution"
	svcfile "github.com/equidadeplus/equidade_backend/internal/service/file"
)

type EvolutionHandler struct {
	svc   evolution.Service
	files svcfile.Service
}

func NewEvolutionHandler(svc evolution.Service, files svcfile.Service) *EvolutionHandler {
	return &EvolutionHandler{svc: svc, files: files}
}

func mapEvolutionError(c fiber.Ctx, err error) error {
	if fe, isField := asFieldErr(err); isField {
		return unprocessable(c, fe)
	}
	switch {
	case errors.Is(err, evolution.ErrNotFound), errors.Is(err, svcfile.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, evolution.ErrForbidden), errors.Is(err, evolution.ErrSelfSupervision):
		return forbidden(c, err.Error())
	case errors.Is(err, evolution.ErrAlreadyExists),
		errors.Is(err, evolution.ErrInvalidTransition),
		errors.Is(err, evolution.ErrNotEditable),
		errors.Is(err, evolution.ErrConflict),
		errors.Is(err, evolution.ErrNotFinalized),
		errors.Is(err, evolution.ErrTooManyAttachments):
		return conflict(c, err.Error())
	case errors.Is(err, svcfile.ErrTooLarge):
		return tooLarge(c, err.Error())
	case errors.Is(err, svcfile.ErrUnsupportedType):
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, svcfile.ErrDisabled):
		return unavailable(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// GET /evolutions
func (h *EvolutionHandler) List(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Page      int    `query:"page"`
		PerPage   int    `query:"per_page"`
		Status    string `query:"status"`
		PatientID string `query:"patient_id"`
	}
	_ = c.Bind().Query(&q)

	patientID, err := optionalUUID(q.PatientID)
	if err != nil {
		return badRequest(c, "invalid patient_id")
	}

	result, err := h.svc.List(c.Context(), actor, evolution.ListFilter{
		Status:    entevolution.Status(q.Status),
		PatientID: patientID,
		Page:      q.Page,
		PerPage:   q.PerPage,
	})
	if err != nil {
		return mapEvolutionError(c, err)
	}
	return page(c, result)
}

// GET /evolutions/:id
func (h *EvolutionHandler) Get(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evolution id")
	}

	e, err := h.svc.Get(c.Context(), actor, id)
	if err != nil {
		return mapEvolutionError(c, err)
	}
	return ok(c, e)
}

// POST /evolutions
func (h *EvolutionHandler) Create(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	var body evolution.CreateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	e, err := h.svc.Create(c.Context(), actor, body)
	if err != nil {
		return mapEvolutionError(c, err)
	}
	return created(c, e)
}

// PUT /evolutions/:id
func (h *EvolutionHandler) Update(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evolution id")
	}

	var body evolution.UpdateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	e, err := h.svc.UpdateDraft(c.Context(), actor, id, body)
	if err != nil {
		return mapEvolutionError(c, err)
	}
	return ok(c, e)
}

// POST /evolutions/:id/approve
func (h *EvolutionHandler) Approve(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evolution id")
	}

	var body struct {
		Version int `json:"version"`
	}
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	e, err := h.svc.Approve(c.Context(), actor, id, body.Version)
	if err != nil {
		return mapEvolutionError(c, err)
	}
	return ok(c, e)
}

// POST /evolutions/:id/request-revision
func (h *EvolutionHandler) RequestRevision(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evolution id")
	}

	var body struct {
		Feedback string `json:"feedback"`
		Version  int    `json:"version"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	e, err := h.svc.RequestRevision(c.Context(), actor, id, body.Feedback, body.Version)
	if err != nil {
		return mapEvolutionError(c, err)
	}
	return ok(c, e)
}

// GET /evolutions/:id/addenda
func (h *EvolutionHandler) ListAddenda(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evolution id")
	}

	addenda, err := h.svc.ListAddenda(c.Context(), actor, id)
	if err != nil {
		return mapEvolutionError(c, err)
	}
	return ok(c, addenda)
}

// POST /evolutions/:id/addenda
func (h *EvolutionHandler) AddAddendum(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evolution id")
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	a, err := h.svc.AddAddendum(c.Context(), actor, id, body.Content)
	if err != nil {
		return mapEvolutionError(c, err)
	}
	return created(c, a)
}

// POST /evolutions/:id/attachments
// Multipart upload in the "file" field.
func (h *EvolutionHandler) Upload(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evolution id")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file field is required")
	}

	result, err := h.files.Upload(c.Context(), actor, id, fh)
	if err != nil {
		return mapEvolutionError(c, err)
	}
	return created(c, result)
}

// GET /evolutions/:id/attachments/url?key=
func (h *EvolutionHandler) AttachmentURL(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evolution id")
	}
	key := c.Query("key")
	if key == "" {
		return badRequest(c, "key is required")
	}

	url, err := h.files.PresignDownload(c.Context(), actor, id, key)
	if err != nil {
		return mapEvolutionError(c, err)
	}
	return ok(c, fiber.Map{"url": url})
}

// GET /evolutions/:id/pdf
func (h *EvolutionHandler) PDF(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evolution id")
	}

	var buf bytes.Buffer
	if err := h.svc.ExportPDF(c.Context(), actor, id, &buf); err != nil {
		return mapEvolutionError(c, err)
	}

	c.Attachment(fmt.Sprintf("evolucao-%s.pdf", id))
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(buf.Bytes())
}
