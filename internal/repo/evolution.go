package repo

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo/evolution"
)

// CoSignature is the supervisor stamp attached when a supervised evolution is approved.
type CoSignature struct {
	SupervisorID uuid.UUID `json:"supervisor_id"`
	ApprovedAt   time.Time `json:"approved_at"`
}

// Evolution is the clinical note of one appointment.
type Evolution struct {
	ID                    uuid.UUID        `json:"id"`
	UnitID                uuid.UUID        `json:"unit_id"`
	AppointmentID         uuid.UUID        `json:"appointment_id"`
	PatientID             uuid.UUID        `json:"patient_id"`
	AuthorID              uuid.UUID        `json:"author_id"`
	Content               string           `json:"content"`
	InappropriateBehavior bool             `json:"inappropriate_behavior"`
	BehaviorDescription   string           `json:"behavior_description"`
	Attachments           []string         `json:"attachments"`
	Status                evolution.Status `json:"status"`
	CoSignature           *CoSignature     `json:"cosignature"`
	SignedAt              *time.Time       `json:"signed_at"`
	RevisionFeedback      *string          `json:"revision_feedback"`
	Version               int              `json:"version"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// Addendum is an append-only note on a finalized evolution.
type Addendum struct {
	ID          uuid.UUID `json:"id"`
	EvolutionID uuid.UUID `json:"evolution_id"`
	AuthorID    uuid.UUID `json:"author_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// EvolutionFilter narrows evolution listings to one unit. AwaitingRevision
// keeps only drafts sent back by a supervisor.
type EvolutionFilter struct {
	UnitID           uuid.UUID
	AuthorID         *uuid.UUID
	PatientID        *uuid.UUID
	Status           evolution.Status
	AwaitingRevision bool
	Limit            int
	Offset           int
}

type EvolutionClient struct {
	conn dialect.ExecQuerier
}

func (c *EvolutionClient) Create(ctx context.Context, e *Evolution) error {
	if e.ID == uuid.Nil {
		e.ID = newID()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	e.Version = 1

	attachments, cosig, err := evolutionJSON(e)
	if err != nil {
		return err
	}

	q := builder.Insert(evolution.Table).
		Columns(evolution.Columns...).
		Values(e.ID, e.UnitID, e.AppointmentID, e.PatientID, e.AuthorID, e.Content,
			e.InappropriateBehavior, e.BehaviorDescription, attachments, string(e.Status),
			cosig, e.SignedAt, e.RevisionFeedback, e.Version, e.CreatedAt, e.UpdatedAt)
	if _, err := exec(ctx, c.conn, q); err != nil {
		return fmt.Errorf("create evolution: %w", err)
	}
	return nil
}

// Update writes every mutable field if the stored row is still at
// expectedVersion, then bumps the version. ErrStaleVersion reports a lost race.
func (c *EvolutionClient) Update(ctx context.Context, e *Evolution, expectedVersion int) error {
	attachments, cosig, err := evolutionJSON(e)
	if err != nil {
		return err
	}
	updatedAt := time.Now().UTC()

	q := builder.Update(evolution.Table).
		Set(evolution.FieldContent, e.Content).
		Set(evolution.FieldInappropriateBehavior, e.InappropriateBehavior).
		Set(evolution.FieldBehaviorDescription, e.BehaviorDescription).
		Set(evolution.FieldAttachments, attachments).
		Set(evolution.FieldStatus, string(e.Status)).
		Set(evolution.FieldCoSignature, cosig).
		Set(evolution.FieldSignedAt, e.SignedAt).
		Set(evolution.FieldRevisionFeedback, e.RevisionFeedback).
		Set(evolution.FieldVersion, expectedVersion+1).
		Set(evolution.FieldUpdatedAt, updatedAt).
		Where(entsql.And(
			entsql.EQ(evolution.FieldID, e.ID),
			entsql.EQ(evolution.FieldVersion, expectedVersion),
		))
	n, err := exec(ctx, c.conn, q)
	if err != nil {
		return fmt.Errorf("update evolution: %w", err)
	}
	if n == 0 {
		return ErrStaleVersion
	}
	e.Version = expectedVersion + 1
	e.UpdatedAt = updatedAt
	return nil
}

func (c *EvolutionClient) Get(ctx context.Context, id uuid.UUID) (*Evolution, error) {
	sel := builder.Select(evolution.Columns...).
		From(builder.Table(evolution.Table)).
		Where(entsql.EQ(evolution.FieldID, id))
	return first[Evolution](ctx, c.conn, sel, evolution.Table)
}

func (c *EvolutionClient) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Evolution, error) {
	sel := builder.Select(evolution.Columns...).
		From(builder.Table(evolution.Table)).
		Where(entsql.EQ(evolution.FieldAppointmentID, appointmentID))
	return first[Evolution](ctx, c.conn, sel, evolution.Table)
}

func (c *EvolutionClient) List(ctx context.Context, f EvolutionFilter) ([]*Evolution, error) {
	sel := c.filtered(f).OrderBy(entsql.Desc(evolution.FieldCreatedAt))
	var out []*Evolution
	if err := query(ctx, c.conn, page(sel, f.Limit, f.Offset), &out); err != nil {
		return nil, fmt.Errorf("list evolutions: %w", err)
	}
	return out, nil
}

func (c *EvolutionClient) Count(ctx context.Context, f EvolutionFilter) (int, error) {
	n, err := count(ctx, c.conn, c.filtered(f))
	if err != nil {
		return 0, fmt.Errorf("count evolutions: %w", err)
	}
	return n, nil
}

func (c *EvolutionClient) filtered(f EvolutionFilter) *entsql.Selector {
	sel := builder.Select(evolution.Columns...).
		From(builder.Table(evolution.Table)).
		Where(entsql.EQ(evolution.FieldUnitID, f.UnitID))
	if f.AuthorID != nil {
		sel.Where(entsql.EQ(evolution.FieldAuthorID, *f.AuthorID))
	}
	if f.PatientID != nil {
		sel.Where(entsql.EQ(evolution.FieldPatientID, *f.PatientID))
	}
	if f.Status != "" {
		sel.Where(entsql.EQ(evolution.FieldStatus, string(f.Status)))
	}
	if f.AwaitingRevision {
		sel.Where(entsql.And(
			entsql.EQ(evolution.FieldStatus, string(evolution.StatusDraft)),
			entsql.NotNull(evolution.FieldRevisionFeedback),
		))
	}
	return sel
}

func (c *EvolutionClient) CreateAddendum(ctx context.Context, a *Addendum) error {
	if a.ID == uuid.Nil {
		a.ID = newID()
	}
	a.CreatedAt = time.Now().UTC()
	q := builder.Insert(evolution.AddendaTable).
		Columns(evolution.AddendumColumns...).
		Values(a.ID, a.EvolutionID, a.AuthorID, a.Content, a.CreatedAt)
	if _, err := exec(ctx, c.conn, q); err != nil {
		return fmt.Errorf("create addendum: %w", err)
	}
	return nil
}

func (c *EvolutionClient) ListAddenda(ctx context.Context, evolutionID uuid.UUID) ([]*Addendum, error) {
	sel := builder.Select(evolution.AddendumColumns...).
		From(builder.Table(evolution.AddendaTable)).
		Where(entsql.EQ(evolution.AddendumFieldEvolutionID, evolutionID)).
		OrderBy(evolution.AddendumFieldCreatedAt)
	var out []*Addendum
	if err := query(ctx, c.conn, sel, &out); err != nil {
		return nil, fmt.Errorf("list addenda: %w", err)
	}
	return out, nil
}

// evolutionJSON encodes the jsonb columns. A missing co-signature is a NULL
// argument, not an empty byte slice.
func evolutionJSON(e *Evolution) (attachments []byte, cosig any, err error) {
	atts := e.Attachments
	if atts == nil {
		atts = []string{}
	}
	if attachments, err = jsonb(atts); err != nil {
		return nil, nil, err
	}
	if e.CoSignature != nil {
		b, err := jsonb(e.CoSignature)
		if err != nil {
			return nil, nil, err
		}
		cosig = b
	}
	return attachments, cosig, nil
}
