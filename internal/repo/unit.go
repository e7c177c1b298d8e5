package repo

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo/unit"
)

// DayHours is the opening window of a unit on one weekday, in HH:MM.
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// WorkingHours maps a lowercase English weekday to its opening window.
type WorkingHours map[string]DayHours

// Unit is a clinic location, the tenancy boundary for data visibility.
type Unit struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	Phone        string       `json:"phone"`
	Email        string       `json:"email"`
	WorkingHours WorkingHours `json:"working_hours"`
	Specialties  []string     `json:"specialties"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type UnitClient struct {
	conn dialect.ExecQuerier
}

func (c *UnitClient) Create(ctx context.Context, u *Unit) error {
	if u.ID == uuid.Nil {
		u.ID = newID()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	hours, specs, err := unitJSON(u)
	if err != nil {
		return err
	}

	q := builder.Insert(unit.Table).
		Columns(unit.Columns...).
		Values(u.ID, u.Name, u.Address, u.Phone, u.Email, hours, specs, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if _, err := exec(ctx, c.conn, q); err != nil {
		return fmt.Errorf("create unit: %w", err)
	}
	return nil
}

func (c *UnitClient) Update(ctx context.Context, u *Unit) error {
	hours, specs, err := unitJSON(u)
	if err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()

	q := builder.Update(unit.Table).
		Set(unit.FieldName, u.Name).
		Set(unit.FieldAddress, u.Address).
		Set(unit.FieldPhone, u.Phone).
		Set(unit.FieldEmail, u.Email).
		Set(unit.FieldWorkingHours, hours).
		Set(unit.FieldSpecialties, specs).
		Set(unit.FieldIsActive, u.IsActive).
		Set(unit.FieldUpdatedAt, u.UpdatedAt).
		Where(entsql.EQ(unit.FieldID, u.ID))
	n, err := exec(ctx, c.conn, q)
	if err != nil {
		return fmt.Errorf("update unit: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: unit.Table}
	}
	return nil
}

func (c *UnitClient) Get(ctx context.Context, id uuid.UUID) (*Unit, error) {
	sel := builder.Select(unit.Columns...).
		From(builder.Table(unit.Table)).
		Where(entsql.EQ(unit.FieldID, id))
	return first[Unit](ctx, c.conn, sel, unit.Table)
}

// List returns every unit ordered by name.
func (c *UnitClient) List(ctx context.Context, onlyActive bool) ([]*Unit, error) {
	sel := builder.Select(unit.Columns...).
		From(builder.Table(unit.Table)).
		OrderBy(unit.FieldName)
	if onlyActive {
		sel.Where(entsql.EQ(unit.FieldIsActive, true))
	}
	var out []*Unit
	if err := query(ctx, c.conn, sel, &out); err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return out, nil
}

// ListByIDs returns the units among ids ordered by name. Unknown ids are skipped.
func (c *UnitClient) ListByIDs(ctx context.Context, ids []uuid.UUID, onlyActive bool) ([]*Unit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sel := builder.Select(unit.Columns...).
		From(builder.Table(unit.Table)).
		Where(entsql.In(unit.FieldID, uuidArgs(ids)...)).
		OrderBy(unit.FieldName)
	if onlyActive {
		sel.Where(entsql.EQ(unit.FieldIsActive, true))
	}
	var out []*Unit
	if err := query(ctx, c.conn, sel, &out); err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return out, nil
}

func unitJSON(u *Unit) (hours, specs []byte, err error) {
	wh := u.WorkingHours
	if wh == nil {
		wh = WorkingHours{}
	}
	sp := u.Specialties
	if sp == nil {
		sp = []string{}
	}
	if hours, err = jsonb(wh); err != nil {
		return nil, nil, err
	}
	if specs, err = jsonb(sp); err != nil {
		return nil, nil, err
	}
	return hours, specs, nil
}
