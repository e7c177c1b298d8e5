package repo

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo/membership"
	"github.com/equidadeplus/equidade_backend/internal/repo/profile"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

// Profile is the application-side record of an identity from the provider.
// Its ID is the provider's subject.
type Profile struct {
	ID                  uuid.UUID      `json:"id"`
	DisplayName         string         `json:"display_name"`
	Email               string         `json:"email"`
	Phone               string         `json:"phone"`
	Role                authorize.Role `json:"role"`
	HomeUnitID          *uuid.UUID     `json:"home_unit_id"`
	RequiresSupervision bool           `json:"requires_supervision"`
	Status              profile.Status `json:"status"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// ProfileFilter narrows profile listings. A nil UnitID lists across units.
type ProfileFilter struct {
	UnitID *uuid.UUID
	Roles  []authorize.Role
	Status profile.Status
	Search string
	Limit  int
	Offset int
}

type ProfileClient struct {
	conn dialect.ExecQuerier
}

func (c *ProfileClient) Create(ctx context.Context, p *Profile) error {
	if p.ID == uuid.Nil {
		p.ID = newID()
	}
	if p.Status == "" {
		p.Status = profile.StatusActive
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	q := builder.Insert(profile.Table).
		Columns(profile.Columns...).
		Values(p.ID, p.DisplayName, p.Email, p.Phone, string(p.Role), p.HomeUnitID,
			p.RequiresSupervision, string(p.Status), p.CreatedAt, p.UpdatedAt)
	if _, err := exec(ctx, c.conn, q); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (c *ProfileClient) Update(ctx context.Context, p *Profile) error {
	p.UpdatedAt = time.Now().UTC()
	q := builder.Update(profile.Table).
		Set(profile.FieldDisplayName, p.DisplayName).
		Set(profile.FieldEmail, p.Email).
		Set(profile.FieldPhone, p.Phone).
		Set(profile.FieldRole, string(p.Role)).
		Set(profile.FieldHomeUnitID, p.HomeUnitID).
		Set(profile.FieldRequiresSupervision, p.RequiresSupervision).
		Set(profile.FieldUpdatedAt, p.UpdatedAt).
		Where(entsql.EQ(profile.FieldID, p.ID))
	n, err := exec(ctx, c.conn, q)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: profile.Table}
	}
	return nil
}

func (c *ProfileClient) SetStatus(ctx context.Context, id uuid.UUID, status profile.Status) error {
	q := builder.Update(profile.Table).
		Set(profile.FieldStatus, string(status)).
		Set(profile.FieldUpdatedAt, time.Now().UTC()).
		Where(entsql.EQ(profile.FieldID, id))
	n, err := exec(ctx, c.conn, q)
	if err != nil {
		return fmt.Errorf("set profile status: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: profile.Table}
	}
	return nil
}

func (c *ProfileClient) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	sel := builder.Select(profile.Columns...).
		From(builder.Table(profile.Table)).
		Where(entsql.EQ(profile.FieldID, id))
	return first[Profile](ctx, c.conn, sel, profile.Table)
}

// GetMany returns the profiles among ids; unknown ids are skipped.
func (c *ProfileClient) GetMany(ctx context.Context, ids []uuid.UUID) ([]*Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sel := builder.Select(profile.Columns...).
		From(builder.Table(profile.Table)).
		Where(entsql.In(profile.FieldID, uuidArgs(ids)...))
	var out []*Profile
	if err := query(ctx, c.conn, sel, &out); err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	return out, nil
}

func (c *ProfileClient) List(ctx context.Context, f ProfileFilter) ([]*Profile, error) {
	sel := c.filtered(f).OrderBy(profile.FieldDisplayName)
	var out []*Profile
	if err := query(ctx, c.conn, page(sel, f.Limit, f.Offset), &out); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

func (c *ProfileClient) Count(ctx context.Context, f ProfileFilter) (int, error) {
	n, err := count(ctx, c.conn, c.filtered(f))
	if err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

// ListSupervisors returns who can co-sign in the unit: active admins,
// who act everywhere, and the active coordinators who are members of it.
func (c *ProfileClient) ListSupervisors(ctx context.Context, unitID uuid.UUID) ([]*Profile, error) {
	members := builder.Select(membership.FieldUserID).
		From(builder.Table(membership.Table)).
		Where(entsql.EQ(membership.FieldUnitID, unitID))
	sel := builder.Select(profile.Columns...).
		From(builder.Table(profile.Table)).
		Where(entsql.And(
			entsql.EQ(profile.FieldStatus, string(profile.StatusActive)),
			entsql.Or(
				entsql.EQ(profile.FieldRole, string(authorize.RoleAdmin)),
				entsql.And(
					entsql.EQ(profile.FieldRole, string(authorize.RoleCoordinator)),
					entsql.In(profile.FieldID, members),
				),
			),
		)).
		OrderBy(profile.FieldDisplayName)
	var out []*Profile
	if err := query(ctx, c.conn, sel, &out); err != nil {
		return nil, fmt.Errorf("list supervisors: %w", err)
	}
	return out, nil
}

func (c *ProfileClient) filtered(f ProfileFilter) *entsql.Selector {
	sel := builder.Select(profile.Columns...).From(builder.Table(profile.Table))
	if f.UnitID != nil {
		members := builder.Select(membership.FieldUserID).
			From(builder.Table(membership.Table)).
			Where(entsql.EQ(membership.FieldUnitID, *f.UnitID))
		sel.Where(entsql.In(profile.FieldID, members))
	}
	if len(f.Roles) > 0 {
		roles := make([]any, len(f.Roles))
		for i, r := range f.Roles {
			roles[i] = string(r)
		}
		sel.Where(entsql.In(profile.FieldRole, roles...))
	}
	if f.Status != "" {
		sel.Where(entsql.EQ(profile.FieldStatus, string(f.Status)))
	}
	if f.Search != "" {
		sel.Where(entsql.Or(
			entsql.ContainsFold(profile.FieldDisplayName, f.Search),
			entsql.ContainsFold(profile.FieldEmail, f.Search),
		))
	}
	return sel
}
