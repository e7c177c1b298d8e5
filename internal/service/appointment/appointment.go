// Package appointment schedules therapy sessions inside a unit.
package appointment

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	entappointment "github.com/equidadeplus/equidade_backend/internal/repo/appointment"
	"github.com/equidadeplus/equidade_backend/internal/repo/notification"
	entprofile "github.com/equidadeplus/equidade_backend/internal/repo/profile"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/internal/service/paging"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	"github.com/equidadeplus/equidade_backend/pkg/events"
	"github.com/equidadeplus/equidade_backend/pkg/observability"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type ListFilter struct {
	From        *time.Time
	To          *time.Time
	TherapistID *uuid.UUID
	Status      entappointment.Status
	Page        int
	PerPage     int
}

type CreateRequest struct {
	PatientID   uuid.UUID `json:"patient_id"`
	TherapistID uuid.UUID `json:"therapist_id"`
	Room        string    `json:"room"`
	Specialty   string    `json:"specialty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Notes       string    `json:"notes"`
}

// EventData is the payload of appointment events.
type EventData struct {
	PatientID   uuid.UUID `json:"patient_id"`
	TherapistID uuid.UUID `json:"therapist_id"`
	StartsAt    time.Time `json:"starts_at"`
	Status      string    `json:"status"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context, actor authorize.Actor, f ListFilter) (*paging.Result[*repo.Appointment], error)
	Get(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Appointment, error)
	Create(ctx context.Context, actor authorize.Actor, req CreateRequest) (*repo.Appointment, error)
	UpdateStatus(ctx context.Context, actor authorize.Actor, id uuid.UUID, status entappointment.Status) (*repo.Appointment, error)
}

type service struct {
	store     Store
	publisher events.Publisher
	metrics   *observability.Workflow
}

func New(store Store, publisher events.Publisher, metrics *observability.Workflow) Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &service{store: store, publisher: publisher, metrics: metrics}
}

func (s *service) List(ctx context.Context, actor authorize.Actor, f ListFilter) (*paging.Result[*repo.Appointment], error) {
	page, perPage := paging.Normalize(f.Page, f.PerPage)
	if !actor.Can(authorize.ResourceAgenda, authorize.ActionView) {
		return nil, ErrForbidden
	}
	fe := fielderr.New()
	if f.Status != "" && entappointment.StatusValidator(f.Status) != nil {
		fe.Add("status", "unknown status")
	}
	if f.From != nil && f.To != nil && !f.To.After(*f.From) {
		fe.Add("to", "must be after from")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}
	if !actor.HasUnit() {
		return paging.Empty[*repo.Appointment](page, perPage), nil
	}

	rf := repo.AppointmentFilter{
		UnitID:      actor.Unit(),
		From:        f.From,
		To:          f.To,
		TherapistID: f.TherapistID,
		Status:      f.Status,
		Limit:       perPage,
		Offset:      paging.Offset(page, perPage),
	}
	if actor.Role == authorize.RoleGuardian {
		ids, err := s.store.Patients().PatientIDsForGuardian(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		rf.PatientIDs = ids
	}

	rows, err := s.store.Appointments().List(ctx, rf)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Appointments().Count(ctx, rf)
	if err != nil {
		return nil, err
	}
	return paging.New(rows, total, page, perPage), nil
}

func (s *service) Get(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Appointment, error) {
	if !actor.Can(authorize.ResourceAgenda, authorize.ActionView) {
		return nil, ErrForbidden
	}
	return s.load(ctx, actor, id)
}

func (s *service) Create(ctx context.Context, actor authorize.Actor, req CreateRequest) (*repo.Appointment, error) {
	fe := fielderr.New()
	if req.PatientID == uuid.Nil {
		fe.Add("patient_id", "is required")
	}
	if req.TherapistID == uuid.Nil {
		fe.Add("therapist_id", "is required")
	}
	if req.StartsAt.IsZero() {
		fe.Add("starts_at", "is required")
	}
	if req.EndsAt.IsZero() {
		fe.Add("ends_at", "is required")
	} else if !req.EndsAt.After(req.StartsAt) {
		fe.Add("ends_at", "must be after starts_at")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}
	if !actor.Can(authorize.ResourceAgenda, authorize.ActionCreate) {
		return nil, ErrForbidden
	}
	if !actor.HasUnit() {
		return nil, fielderr.Single("unit_id", "select a unit first")
	}
	unitID := actor.Unit()

	patient, err := s.store.Patients().Get(ctx, req.PatientID)
	if err != nil && !repo.IsNotFound(err) {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if err != nil || patient.UnitID != unitID {
		return nil, fielderr.Single("patient_id", "patient not found in this unit")
	}
	if err := s.checkTherapist(ctx, req.TherapistID, unitID); err != nil {
		return nil, err
	}

	start, end := req.StartsAt.UTC(), req.EndsAt.UTC()
	createdBy := actor.UserID
	a := &repo.Appointment{
		UnitID:      unitID,
		PatientID:   patient.ID,
		TherapistID: req.TherapistID,
		Room:        strings.TrimSpace(req.Room),
		Specialty:   strings.TrimSpace(req.Specialty),
		StartsAt:    start,
		EndsAt:      end,
		Status:      entappointment.StatusScheduled,
		Notes:       req.Notes,
		CreatedBy:   &createdBy,
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		taken, err := tx.Appointments().HasOverlap(ctx, a.TherapistID, start, end, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotTaken
		}
		if err := tx.Appointments().Create(ctx, a); err != nil {
			return err
		}
		if a.TherapistID == actor.UserID {
			return nil
		}
		return tx.Notifications().CreateBulk(ctx, &repo.Notification{
			UserID: a.TherapistID,
			Type:   notification.TypeAppointmentCreated,
			Title:  "Novo agendamento",
			Body:   fmt.Sprintf("%s em %s.", patient.FullName, start.Format("02/01/2006 15:04")),
			Data:   map[string]any{"appointment_id": a.ID.String(), "patient_id": patient.ID.String()},
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, actor, a, events.EventCreated)
	return a, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor authorize.Actor, id uuid.UUID, status entappointment.Status) (*repo.Appointment, error) {
	if entappointment.StatusValidator(status) != nil {
		return nil, fielderr.Single("status", "unknown status")
	}
	if !actor.Can(authorize.ResourceAgenda, authorize.ActionUpdate) {
		return nil, ErrForbidden
	}
	a, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if a.Status == status {
		return a, nil
	}
	// Cancelled is terminal.
	if a.Status == entappointment.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	previous := a.Status
	err = s.store.WithTx(ctx, func(tx Store) error {
		if !previous.Blocking() && status.Blocking() {
			taken, err := tx.Appointments().HasOverlap(ctx, a.TherapistID, a.StartsAt, a.EndsAt, a.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlotTaken
			}
		}
		if err := tx.Appointments().UpdateStatus(ctx, a.ID, status); err != nil {
			return err
		}
		if a.TherapistID == actor.UserID {
			return nil
		}
		return tx.Notifications().CreateBulk(ctx, &repo.Notification{
			UserID: a.TherapistID,
			Type:   notification.TypeAppointmentStatusChanged,
			Title:  "Agendamento atualizado",
			Body:   fmt.Sprintf("Atendimento de %s: %s.", a.StartsAt.Format("02/01/2006 15:04"), status),
			Data:   map[string]any{"appointment_id": a.ID.String(), "status": string(status)},
		})
	})
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	a.Status = status
	s.publish(ctx, actor, a, events.EventStatusChanged)
	return a, nil
}

func (s *service) checkTherapist(ctx context.Context, id, unitID uuid.UUID) error {
	p, err := s.store.Profiles().Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return fielderr.Single("therapist_id", "user not found")
		}
		return fmt.Errorf("load therapist: %w", err)
	}
	switch p.Role {
	case authorize.RoleTherapist, authorize.RoleIntern, authorize.RoleCoordinator:
	default:
		return fielderr.Single("therapist_id", "user is not a clinical professional")
	}
	if p.Status != entprofile.StatusActive {
		return fielderr.Single("therapist_id", "user is not active")
	}
	memberships, err := s.store.Memberships().ListByUser(ctx, id)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(memberships, func(m *repo.Membership) bool { return m.UnitID == unitID }) {
		return fielderr.Single("therapist_id", "user does not work in this unit")
	}
	return nil
}

func (s *service) load(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Appointment, error) {
	a, err := s.store.Appointments().Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if !actor.IsAdmin() && (!actor.HasUnit() || a.UnitID != actor.Unit()) {
		return nil, ErrNotFound
	}
	if actor.Role == authorize.RoleGuardian {
		ids, err := s.store.Patients().PatientIDsForGuardian(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(ids, a.PatientID) {
			return nil, ErrNotFound
		}
	}
	return a, nil
}

func (s *service) publish(ctx context.Context, actor authorize.Actor, a *repo.Appointment, event string) {
	unitID := a.UnitID
	env, err := events.New(ctx, events.EntityAppointment, event, a.ID, actor.UserID, &unitID, EventData{
		PatientID:   a.PatientID,
		TherapistID: a.TherapistID,
		StartsAt:    a.StartsAt,
		Status:      string(a.Status),
	})
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.metrics.SideEffectFailed(ctx, "event")
		slog.WarnContext(ctx, "appointment: publish event",
			slog.String("event", event),
			slog.String("appointment_id", a.ID.String()),
			slog.Any("error", err),
		)
	}
}
