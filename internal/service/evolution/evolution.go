// Package evolution implements the clinical evolution lifecycle: drafts,
// submission for supervision, co-signature, revision requests and addenda.
package evolution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	evo "github.com/equidadeplus/equidade_backend/internal/repo/evolution"
	"github.com/equidadeplus/equidade_backend/internal/repo/notification"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/internal/service/paging"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	"github.com/equidadeplus/equidade_backend/pkg/events"
	"github.com/equidadeplus/equidade_backend/pkg/observability"
)

// Mode is the submit button the author pressed.
type Mode string

const (
	ModeDraft    Mode = "draft"
	ModeFinalize Mode = "finalize"
)

const maxAttachments = 20

// eventDraftSaved labels transitions that publish nothing.
const eventDraftSaved = "draft_saved"

type CreateRequest struct {
	AppointmentID         uuid.UUID `json:"appointment_id"`
	PatientID             uuid.UUID `json:"patient_id"`
	Content               string    `json:"content"`
	InappropriateBehavior bool      `json:"inappropriate_behavior"`
	BehaviorDescription   string    `json:"behavior_description"`
	Mode                  Mode      `json:"mode"`
}

type UpdateRequest struct {
	Content               string `json:"content"`
	InappropriateBehavior bool   `json:"inappropriate_behavior"`
	BehaviorDescription   string `json:"behavior_description"`
	Mode                  Mode   `json:"mode"`
	// Version is the version the client edited. Zero skips the check.
	Version int `json:"version"`
}

type ListFilter struct {
	Status    evo.Status
	PatientID *uuid.UUID
	Page      int
	PerPage   int
}

// EventData is the payload of every evolution event.
type EventData struct {
	AuthorID  uuid.UUID `json:"author_id"`
	PatientID uuid.UUID `json:"patient_id"`
	Status    string    `json:"status"`
	Feedback  string    `json:"feedback,omitempty"`
}

type Service interface {
	Create(ctx context.Context, actor authorize.Actor, req CreateRequest) (*repo.Evolution, error)
	UpdateDraft(ctx context.Context, actor authorize.Actor, id uuid.UUID, req UpdateRequest) (*repo.Evolution, error)
	Approve(ctx context.Context, actor authorize.Actor, id uuid.UUID, version int) (*repo.Evolution, error)
	RequestRevision(ctx context.Context, actor authorize.Actor, id uuid.UUID, feedback string, version int) (*repo.Evolution, error)
	AddAddendum(ctx context.Context, actor authorize.Actor, id uuid.UUID, content string) (*repo.Addendum, error)
	ListAddenda(ctx context.Context, actor authorize.Actor, id uuid.UUID) ([]*repo.Addendum, error)
	Get(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Evolution, error)
	List(ctx context.Context, actor authorize.Actor, f ListFilter) (*paging.Result[*repo.Evolution], error)
	AttachFile(ctx context.Context, actor authorize.Actor, id uuid.UUID, key string) (*repo.Evolution, error)
	ExportPDF(ctx context.Context, actor authorize.Actor, id uuid.UUID, w io.Writer) error
}

type evolutionService struct {
	store     Store
	publisher events.Publisher
	metrics   *observability.Workflow
	now       func() time.Time
}

func New(store Store, publisher events.Publisher, metrics *observability.Workflow) Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &evolutionService{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func validateSubmission(fe *fielderr.Error, content string, inappropriate bool, description string, mode Mode) {
	switch mode {
	case ModeDraft, ModeFinalize:
	default:
		fe.Add("mode", "must be draft or finalize")
	}
	if inappropriate && strings.TrimSpace(description) == "" {
		fe.Add("behavior_description", "describe the inappropriate behavior observed")
	}
	if mode == ModeFinalize && strings.TrimSpace(content) == "" {
		fe.Add("content", "is required to finalize")
	}
}

// submit moves e to the status the mode and the author's supervision flag
// call for and returns the event to publish.
func (s *evolutionService) submit(e *repo.Evolution, author *repo.Profile, mode Mode) string {
	switch {
	case mode == ModeDraft:
		e.Status = evo.StatusDraft
		e.SignedAt = nil
		return eventDraftSaved
	case author.RequiresSupervision:
		e.Status = evo.StatusPendingSupervision
		e.SignedAt = nil
		return events.EventSubmitted
	default:
		now := s.now()
		e.Status = evo.StatusFinalized
		e.SignedAt = &now
		return events.EventFinalized
	}
}

func (s *evolutionService) Create(ctx context.Context, actor authorize.Actor, req CreateRequest) (*repo.Evolution, error) {
	fe := fielderr.New()
	if req.AppointmentID == uuid.Nil {
		fe.Add("appointment_id", "is required")
	}
	if req.PatientID == uuid.Nil {
		fe.Add("patient_id", "is required")
	}
	validateSubmission(fe, req.Content, req.InappropriateBehavior, req.BehaviorDescription, req.Mode)
	if err := fe.Err(); err != nil {
		return nil, err
	}
	if !actor.Can(authorize.ResourceEvolutions, authorize.ActionCreate) {
		return nil, ErrForbidden
	}
	if !actor.HasUnit() {
		return nil, fielderr.Single("unit_id", "select a unit first")
	}

	appt, err := s.store.Appointments().Get(ctx, req.AppointmentID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fielderr.Single("appointment_id", "appointment not found")
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if appt.UnitID != actor.Unit() {
		return nil, fielderr.Single("appointment_id", "appointment not found")
	}
	if appt.PatientID != req.PatientID {
		return nil, fielderr.Single("patient_id", "does not match the appointment")
	}

	_, err = s.store.Evolutions().GetByAppointment(ctx, appt.ID)
	switch {
	case err == nil:
		return nil, ErrAlreadyExists
	case !repo.IsNotFound(err):
		return nil, fmt.Errorf("check existing evolution: %w", err)
	}

	author, err := s.author(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	e := &repo.Evolution{
		UnitID:                appt.UnitID,
		AppointmentID:         appt.ID,
		PatientID:             appt.PatientID,
		AuthorID:              actor.UserID,
		Content:               req.Content,
		InappropriateBehavior: req.InappropriateBehavior,
		BehaviorDescription:   strings.TrimSpace(req.BehaviorDescription),
		Attachments:           []string{},
	}
	event := s.submit(e, author, req.Mode)

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.Evolutions().Create(ctx, e); err != nil {
			if repo.IsConstraintError(err) {
				return ErrAlreadyExists
			}
			return err
		}
		if e.Status == evo.StatusPendingSupervision {
			return notifySupervisors(ctx, tx, e, author)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event == eventDraftSaved {
		event = events.EventCreated
	}
	s.publish(ctx, actor, e, event, "")
	return e, nil
}

func (s *evolutionService) UpdateDraft(ctx context.Context, actor authorize.Actor, id uuid.UUID, req UpdateRequest) (*repo.Evolution, error) {
	fe := fielderr.New()
	validateSubmission(fe, req.Content, req.InappropriateBehavior, req.BehaviorDescription, req.Mode)
	if err := fe.Err(); err != nil {
		return nil, err
	}
	if !actor.Can(authorize.ResourceEvolutions, authorize.ActionEdit) {
		return nil, ErrForbidden
	}

	e, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if e.AuthorID != actor.UserID {
		return nil, ErrForbidden
	}
	if e.Status != evo.StatusDraft {
		return nil, ErrNotEditable
	}
	if err := checkVersion(e, req.Version); err != nil {
		return nil, err
	}

	author, err := s.author(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	expected := e.Version
	e.Content = req.Content
	e.InappropriateBehavior = req.InappropriateBehavior
	e.BehaviorDescription = strings.TrimSpace(req.BehaviorDescription)
	event := s.submit(e, author, req.Mode)
	if req.Mode == ModeFinalize {
		e.RevisionFeedback = nil
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := update(ctx, tx, e, expected); err != nil {
			return err
		}
		if e.Status == evo.StatusPendingSupervision {
			return notifySupervisors(ctx, tx, e, author)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event != eventDraftSaved {
		s.publish(ctx, actor, e, event, "")
	} else {
		s.metrics.Transition(ctx, event, string(e.Status))
	}
	return e, nil
}

func (s *evolutionService) Approve(ctx context.Context, actor authorize.Actor, id uuid.UUID, version int) (*repo.Evolution, error) {
	if !actor.Can(authorize.ResourceEvolutions, authorize.ActionApprove) {
		return nil, ErrForbidden
	}
	e, err := s.reviewable(ctx, actor, id, version)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expected := e.Version
	e.Status = evo.StatusFinalized
	e.SignedAt = &now
	e.CoSignature = &repo.CoSignature{SupervisorID: actor.UserID, ApprovedAt: now}
	e.RevisionFeedback = nil

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := update(ctx, tx, e, expected); err != nil {
			return err
		}
		return tx.Notifications().CreateBulk(ctx, &repo.Notification{
			UserID: e.AuthorID,
			Type:   notification.TypeEvolutionApproved,
			Title:  "Evolução aprovada",
			Body:   "Sua evolução foi revisada e assinada pelo supervisor.",
			Data:   notificationData(e),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, actor, e, events.EventApproved, "")
	return e, nil
}

func (s *evolutionService) RequestRevision(ctx context.Context, actor authorize.Actor, id uuid.UUID, feedback string, version int) (*repo.Evolution, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, fielderr.Single("feedback", "is required")
	}
	if !actor.Can(authorize.ResourceEvolutions, authorize.ActionRequestRevision) {
		return nil, ErrForbidden
	}
	e, err := s.reviewable(ctx, actor, id, version)
	if err != nil {
		return nil, err
	}

	expected := e.Version
	e.Status = evo.StatusDraft
	e.SignedAt = nil
	e.Content = appendFeedback(e.Content, feedback, s.now())
	e.RevisionFeedback = &feedback

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := update(ctx, tx, e, expected); err != nil {
			return err
		}
		return tx.Notifications().CreateBulk(ctx, &repo.Notification{
			UserID: e.AuthorID,
			Type:   notification.TypeEvolutionRevisionRequest,
			Title:  "Revisão solicitada",
			Body:   feedback,
			Data:   notificationData(e),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, actor, e, events.EventRevisionRequested, feedback)
	return e, nil
}

// reviewable loads a record a supervisor is about to approve or send back.
func (s *evolutionService) reviewable(ctx context.Context, actor authorize.Actor, id uuid.UUID, version int) (*repo.Evolution, error) {
	e, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if e.AuthorID == actor.UserID {
		return nil, ErrSelfSupervision
	}
	if e.Status != evo.StatusPendingSupervision {
		return nil, ErrInvalidTransition
	}
	if err := checkVersion(e, version); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *evolutionService) AddAddendum(ctx context.Context, actor authorize.Actor, id uuid.UUID, content string) (*repo.Addendum, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fielderr.Single("content", "is required")
	}
	if !actor.Can(authorize.ResourceEvolutions, authorize.ActionView) {
		return nil, ErrForbidden
	}
	e, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if e.Status != evo.StatusFinalized {
		return nil, ErrInvalidTransition
	}

	a := &repo.Addendum{EvolutionID: e.ID, AuthorID: actor.UserID, Content: content}
	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.Evolutions().CreateAddendum(ctx, a); err != nil {
			return err
		}
		if e.AuthorID == actor.UserID {
			return nil
		}
		return tx.Notifications().CreateBulk(ctx, &repo.Notification{
			UserID: e.AuthorID,
			Type:   notification.TypeEvolutionAddendum,
			Title:  "Adendo registrado",
			Body:   "Um adendo foi adicionado a uma evolução sua.",
			Data:   notificationData(e),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, actor, e, events.EventAddendum, "")
	return a, nil
}

func (s *evolutionService) ListAddenda(ctx context.Context, actor authorize.Actor, id uuid.UUID) ([]*repo.Addendum, error) {
	if !actor.Can(authorize.ResourceEvolutions, authorize.ActionView) {
		return nil, ErrForbidden
	}
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	addenda, err := s.store.Evolutions().ListAddenda(ctx, id)
	if err != nil {
		return nil, err
	}
	if addenda == nil {
		addenda = []*repo.Addendum{}
	}
	return addenda, nil
}

func (s *evolutionService) Get(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Evolution, error) {
	if !actor.Can(authorize.ResourceEvolutions, authorize.ActionView) {
		return nil, ErrForbidden
	}
	return s.load(ctx, actor, id)
}

func (s *evolutionService) List(ctx context.Context, actor authorize.Actor, f ListFilter) (*paging.Result[*repo.Evolution], error) {
	page, perPage := paging.Normalize(f.Page, f.PerPage)
	if !actor.Can(authorize.ResourceEvolutions, authorize.ActionView) {
		return nil, ErrForbidden
	}
	if f.Status != "" {
		if err := evo.StatusValidator(f.Status); err != nil {
			return nil, fielderr.Single("status", "unknown status")
		}
	}
	if !actor.HasUnit() {
		return paging.Empty[*repo.Evolution](page, perPage), nil
	}

	rf := repo.EvolutionFilter{
		UnitID:    actor.Unit(),
		PatientID: f.PatientID,
		Status:    f.Status,
		Limit:     perPage,
		Offset:    paging.Offset(page, perPage),
	}
	// Therapists and interns only ever see what they wrote.
	if !actor.IsSupervisor() {
		uid := actor.UserID
		rf.AuthorID = &uid
	}

	rows, err := s.store.Evolutions().List(ctx, rf)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Evolutions().Count(ctx, rf)
	if err != nil {
		return nil, err
	}
	return paging.New(rows, total, page, perPage), nil
}

func (s *evolutionService) AttachFile(ctx context.Context, actor authorize.Actor, id uuid.UUID, key string) (*repo.Evolution, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fielderr.Single("key", "is required")
	}
	if !actor.Can(authorize.ResourceEvolutions, authorize.ActionEdit) {
		return nil, ErrForbidden
	}
	e, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if e.AuthorID != actor.UserID {
		return nil, ErrForbidden
	}
	if e.Status != evo.StatusDraft {
		return nil, ErrNotEditable
	}
	if slices.Contains(e.Attachments, key) {
		return e, nil
	}
	if len(e.Attachments) >= maxAttachments {
		return nil, ErrTooManyAttachments
	}

	expected := e.Version
	e.Attachments = append(e.Attachments, key)
	if err := update(ctx, s.store, e, expected); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *evolutionService) ExportPDF(ctx context.Context, actor authorize.Actor, id uuid.UUID, w io.Writer) error {
	if !actor.Can(authorize.ResourceEvolutions, authorize.ActionView) {
		return ErrForbidden
	}
	e, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if e.Status != evo.StatusFinalized {
		return ErrNotFinalized
	}

	addenda, err := s.store.Evolutions().ListAddenda(ctx, e.ID)
	if err != nil {
		return err
	}
	patient, err := s.store.Patients().Get(ctx, e.PatientID)
	if err != nil {
		return fmt.Errorf("load patient: %w", err)
	}

	ids := []uuid.UUID{e.AuthorID}
	if e.CoSignature != nil {
		ids = append(ids, e.CoSignature.SupervisorID)
	}
	for _, a := range addenda {
		ids = append(ids, a.AuthorID)
	}
	profiles, err := s.store.Profiles().GetMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("load signers: %w", err)
	}
	names := make(map[uuid.UUID]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.DisplayName
	}

	return renderPDF(w, e, patient, addenda, names)
}

// load fetches an evolution the actor may see. Records of another unit are
// reported as missing.
func (s *evolutionService) load(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Evolution, error) {
	e, err := s.store.Evolutions().Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load evolution: %w", err)
	}
	if !actor.IsAdmin() && (!actor.HasUnit() || e.UnitID != actor.Unit()) {
		return nil, ErrNotFound
	}
	if e.AuthorID != actor.UserID && !actor.IsSupervisor() {
		return nil, ErrForbidden
	}
	return e, nil
}

func (s *evolutionService) author(ctx context.Context, id uuid.UUID) (*repo.Profile, error) {
	p, err := s.store.Profiles().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load author profile: %w", err)
	}
	return p, nil
}

func (s *evolutionService) publish(ctx context.Context, actor authorize.Actor, e *repo.Evolution, event, feedback string) {
	s.metrics.Transition(ctx, event, string(e.Status))

	unitID := e.UnitID
	env, err := events.New(ctx, events.EntityEvolution, event, e.ID, actor.UserID, &unitID, EventData{
		AuthorID:  e.AuthorID,
		PatientID: e.PatientID,
		Status:    string(e.Status),
		Feedback:  feedback,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.metrics.SideEffectFailed(ctx, "event")
		slog.WarnContext(ctx, "evolution: publish event",
			slog.String("event", event),
			slog.String("evolution_id", e.ID.String()),
			slog.Any("error", err),
		)
	}
}

func checkVersion(e *repo.Evolution, version int) error {
	if version != 0 && version != e.Version {
		return ErrConflict
	}
	return nil
}

func update(ctx context.Context, st Store, e *repo.Evolution, expected int) error {
	err := st.Evolutions().Update(ctx, e, expected)
	if errors.Is(err, repo.ErrStaleVersion) {
		return ErrConflict
	}
	return err
}

func notifySupervisors(ctx context.Context, tx Store, e *repo.Evolution, author *repo.Profile) error {
	supervisors, err := tx.Profiles().ListSupervisors(ctx, e.UnitID)
	if err != nil {
		return fmt.Errorf("list supervisors: %w", err)
	}
	ns := make([]*repo.Notification, 0, len(supervisors))
	for _, sup := range supervisors {
		if sup.ID == e.AuthorID {
			continue
		}
		ns = append(ns, &repo.Notification{
			UserID: sup.ID,
			Type:   notification.TypeEvolutionPending,
			Title:  "Evolução aguardando supervisão",
			Body:   fmt.Sprintf("%s enviou uma evolução para revisão.", author.DisplayName),
			Data:   notificationData(e),
		})
	}
	return tx.Notifications().CreateBulk(ctx, ns...)
}

func notificationData(e *repo.Evolution) map[string]any {
	return map[string]any{
		"evolution_id": e.ID.String(),
		"patient_id":   e.PatientID.String(),
	}
}

// appendFeedback keeps the reviewer's note inside the text the author edits
// next, under a dated marker.
func appendFeedback(content, feedback string, at time.Time) string {
	marker := fmt.Sprintf("[Revisão solicitada em %s]", at.UTC().Format("02/01/2006 15:04 UTC"))
	if strings.TrimSpace(content) == "" {
		return marker + "\n" + feedback
	}
	return strings.TrimRight(content, "\n") + "\n\n" + marker + "\n" + feedback
}
