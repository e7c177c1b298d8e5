package repo

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo/appointment"
)

// Appointment is a scheduled slot linking a patient and a therapist.
type Appointment struct {
	ID          uuid.UUID          `json:"id"`
	UnitID      uuid.UUID          `json:"unit_id"`
	PatientID   uuid.UUID          `json:"patient_id"`
	TherapistID uuid.UUID          `json:"therapist_id"`
	Room        string             `json:"room"`
	Specialty   string             `json:"specialty"`
	StartsAt    time.Time          `json:"starts_at"`
	EndsAt      time.Time          `json:"ends_at"`
	Status      appointment.Status `json:"status"`
	Notes       string             `json:"notes"`
	CreatedBy   *uuid.UUID         `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// AppointmentFilter narrows appointment listings to one unit.
type AppointmentFilter struct {
	UnitID      uuid.UUID
	From        *time.Time
	To          *time.Time
	TherapistID *uuid.UUID
	PatientIDs  []uuid.UUID
	Status      appointment.Status
	Limit       int
	Offset      int
}

// StatusCount is one row of a per-status aggregate.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type AppointmentClient struct {
	conn dialect.ExecQuerier
}

func (c *AppointmentClient) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = newID()
	}
	if a.Status == "" {
		a.Status = appointment.StatusScheduled
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	q := builder.Insert(appointment.Table).
		Columns(appointment.Columns...).
		Values(a.ID, a.UnitID, a.PatientID, a.TherapistID, a.Room, a.Specialty, a.StartsAt, a.EndsAt,
			string(a.Status), a.Notes, a.CreatedBy, a.CreatedAt, a.UpdatedAt)
	if _, err := exec(ctx, c.conn, q); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

func (c *AppointmentClient) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	sel := builder.Select(appointment.Columns...).
		From(builder.Table(appointment.Table)).
		Where(entsql.EQ(appointment.FieldID, id))
	return first[Appointment](ctx, c.conn, sel, appointment.Table)
}

func (c *AppointmentClient) UpdateStatus(ctx context.Context, id uuid.UUID, status appointment.Status) error {
	q := builder.Update(appointment.Table).
		Set(appointment.FieldStatus, string(status)).
		Set(appointment.FieldUpdatedAt, time.Now().UTC()).
		Where(entsql.EQ(appointment.FieldID, id))
	n, err := exec(ctx, c.conn, q)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: appointment.Table}
	}
	return nil
}

func (c *AppointmentClient) List(ctx context.Context, f AppointmentFilter) ([]*Appointment, error) {
	if f.PatientIDs != nil && len(f.PatientIDs) == 0 {
		return nil, nil
	}
	sel := c.filtered(f).OrderBy(appointment.FieldStartsAt)
	var out []*Appointment
	if err := query(ctx, c.conn, page(sel, f.Limit, f.Offset), &out); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

func (c *AppointmentClient) Count(ctx context.Context, f AppointmentFilter) (int, error) {
	if f.PatientIDs != nil && len(f.PatientIDs) == 0 {
		return 0, nil
	}
	n, err := count(ctx, c.conn, c.filtered(f))
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}

// CountByStatus aggregates the filtered appointments per status.
func (c *AppointmentClient) CountByStatus(ctx context.Context, f AppointmentFilter) ([]StatusCount, error) {
	sel := c.filtered(f)
	sel.Select(appointment.FieldStatus, entsql.As(entsql.Count("*"), "count")).
		GroupBy(appointment.FieldStatus).
		OrderBy(appointment.FieldStatus)
	var out []StatusCount
	if err := query(ctx, c.conn, sel, &out); err != nil {
		return nil, fmt.Errorf("count appointments by status: %w", err)
	}
	return out, nil
}

// HasOverlap reports whether the therapist holds another slot-occupying
// appointment intersecting [start, end).
func (c *AppointmentClient) HasOverlap(ctx context.Context, therapistID uuid.UUID, start, end time.Time, exclude uuid.UUID) (bool, error) {
	sel := builder.Select(appointment.FieldID).
		From(builder.Table(appointment.Table)).
		Where(entsql.And(
			entsql.EQ(appointment.FieldTherapistID, therapistID),
			entsql.LT(appointment.FieldStartsAt, end),
			entsql.GT(appointment.FieldEndsAt, start),
			entsql.NotIn(appointment.FieldStatus,
				string(appointment.StatusCancelled), string(appointment.StatusNoShow)),
		))
	if exclude != uuid.Nil {
		sel.Where(entsql.NEQ(appointment.FieldID, exclude))
	}
	n, err := count(ctx, c.conn, sel)
	if err != nil {
		return false, fmt.Errorf("check appointment overlap: %w", err)
	}
	return n > 0, nil
}

func (c *AppointmentClient) filtered(f AppointmentFilter) *entsql.Selector {
	sel := builder.Select(appointment.Columns...).
		From(builder.Table(appointment.Table)).
		Where(entsql.EQ(appointment.FieldUnitID, f.UnitID))
	if f.From != nil {
		sel.Where(entsql.GTE(appointment.FieldStartsAt, *f.From))
	}
	if f.To != nil {
		sel.Where(entsql.LT(appointment.FieldStartsAt, *f.To))
	}
	if f.TherapistID != nil {
		sel.Where(entsql.EQ(appointment.FieldTherapistID, *f.TherapistID))
	}
	if len(f.PatientIDs) > 0 {
		sel.Where(entsql.In(appointment.FieldPatientID, uuidArgs(f.PatientIDs)...))
	}
	if f.Status != "" {
		sel.Where(entsql.EQ(appointment.FieldStatus, string(f.Status)))
	}
	return sel
}
