package repo

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo/membership"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

// Membership associates a user with a unit under a role.
type Membership struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	UnitID    uuid.UUID      `json:"unit_id"`
	Role      authorize.Role `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

type MembershipClient struct {
	conn dialect.ExecQuerier
}

// Add inserts the membership, or updates the role if the user already
// belongs to the unit.
func (c *MembershipClient) Add(ctx context.Context, m *Membership) error {
	if m.ID == uuid.Nil {
		m.ID = newID()
	}
	m.CreatedAt = time.Now().UTC()

	q := builder.Insert(membership.Table).
		Columns(membership.Columns...).
		Values(m.ID, m.UserID, m.UnitID, string(m.Role), m.CreatedAt).
		OnConflict(
			entsql.ConflictColumns(membership.FieldUserID, membership.FieldUnitID),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded(membership.FieldRole)
			}),
		)
	if _, err := exec(ctx, c.conn, q); err != nil {
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}

// Remove deletes the membership and reports whether one existed.
func (c *MembershipClient) Remove(ctx context.Context, userID, unitID uuid.UUID) (bool, error) {
	q := builder.Delete(membership.Table).
		Where(entsql.And(
			entsql.EQ(membership.FieldUserID, userID),
			entsql.EQ(membership.FieldUnitID, unitID),
		))
	n, err := exec(ctx, c.conn, q)
	if err != nil {
		return false, fmt.Errorf("remove membership: %w", err)
	}
	return n > 0, nil
}

// SetRole rewrites the role of every membership held by the user.
func (c *MembershipClient) SetRole(ctx context.Context, userID uuid.UUID, role authorize.Role) error {
	q := builder.Update(membership.Table).
		Set(membership.FieldRole, string(role)).
		Where(entsql.EQ(membership.FieldUserID, userID))
	if _, err := exec(ctx, c.conn, q); err != nil {
		return fmt.Errorf("set membership role: %w", err)
	}
	return nil
}

func (c *MembershipClient) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Membership, error) {
	return c.list(ctx, entsql.EQ(membership.FieldUserID, userID))
}

func (c *MembershipClient) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*Membership, error) {
	return c.list(ctx, entsql.EQ(membership.FieldUnitID, unitID))
}

// All returns every membership; used to rebuild the authorization policy.
func (c *MembershipClient) All(ctx context.Context) ([]*Membership, error) {
	return c.list(ctx, nil)
}

func (c *MembershipClient) list(ctx context.Context, p *entsql.Predicate) ([]*Membership, error) {
	sel := builder.Select(membership.Columns...).
		From(builder.Table(membership.Table)).
		OrderBy(membership.FieldCreatedAt)
	if p != nil {
		sel.Where(p)
	}
	var out []*Membership
	if err := query(ctx, c.conn, sel, &out); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return out, nil
}

// Grants implements authorize.GrantSource over every membership.
func (c *MembershipClient) Grants(ctx context.Context) ([]authorize.Grant, error) {
	ms, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]authorize.Grant, 0, len(ms))
	for _, m := range ms {
		out = append(out, authorize.Grant{
			Subject: authorize.GroupSubject(m.UserID.String()),
			Role:    m.Role,
			Domain:  authorize.UnitDomain(m.UnitID),
		})
	}
	return out, nil
}
