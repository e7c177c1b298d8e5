// Package scope resolves which clinic unit a user is working in and which
// units they may switch to.
package scope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

var ErrUnitNotPermitted = errors.New("unit is not available to this user")

type Units interface {
	List(ctx context.Context, onlyActive bool) ([]*repo.Unit, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID, onlyActive bool) ([]*repo.Unit, error)
}

type Memberships interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*repo.Membership, error)
}

type Selections interface {
	Get(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
	Set(ctx context.Context, userID, unitID uuid.UUID) error
}

// View is what the unit switcher renders. Current is nil when no unit is
// selected; lists then come back empty.
type View struct {
	Current   *repo.Unit   `json:"current"`
	Available []*repo.Unit `json:"available"`
	CanSwitch bool         `json:"can_switch"`
}

type Service interface {
	Resolve(ctx context.Context, p *repo.Profile) (*View, error)
	Switch(ctx context.Context, p *repo.Profile, unitID uuid.UUID) (*View, error)
	// Actor resolves the request context every core operation takes.
	Actor(ctx context.Context, p *repo.Profile) (authorize.Actor, error)
}

type scopeService struct {
	units       Units
	memberships Memberships
	selections  Selections
}

func New(units Units, memberships Memberships, selections Selections) Service {
	return &scopeService{units: units, memberships: memberships, selections: selections}
}

func (s *scopeService) available(ctx context.Context, p *repo.Profile) ([]*repo.Unit, error) {
	if p.Role.IsAdmin() {
		units, err := s.units.List(ctx, true)
		if err != nil {
			return nil, fmt.Errorf("list units: %w", err)
		}
		return units, nil
	}

	ms, err := s.memberships.ListByUser(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.UnitID)
	}
	units, err := s.units.ListByIDs(ctx, ids, true)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return units, nil
}

func (s *scopeService) Resolve(ctx context.Context, p *repo.Profile) (*View, error) {
	avail, err := s.available(ctx, p)
	if err != nil {
		return nil, err
	}
	if avail == nil {
		avail = []*repo.Unit{}
	}

	view := &View{
		Available: avail,
		CanSwitch: p.Role.IsAdmin() || len(avail) > 1,
	}

	selected, err := s.selections.Get(ctx, p.ID)
	if err != nil {
		slog.WarnContext(ctx, "scope: read unit selection", "user_id", p.ID, "err", err)
		selected = nil
	}

	if selected != nil {
		view.Current = find(avail, *selected)
	}
	if view.Current == nil && p.HomeUnitID != nil {
		view.Current = find(avail, *p.HomeUnitID)
	}
	return view, nil
}

func (s *scopeService) Switch(ctx context.Context, p *repo.Profile, unitID uuid.UUID) (*View, error) {
	avail, err := s.available(ctx, p)
	if err != nil {
		return nil, err
	}
	if find(avail, unitID) == nil {
		return nil, ErrUnitNotPermitted
	}
	if err := s.selections.Set(ctx, p.ID, unitID); err != nil {
		return nil, err
	}
	return s.Resolve(ctx, p)
}

func (s *scopeService) Actor(ctx context.Context, p *repo.Profile) (authorize.Actor, error) {
	view, err := s.Resolve(ctx, p)
	if err != nil {
		return authorize.Actor{}, err
	}
	actor := authorize.Actor{UserID: p.ID, Role: p.Role}
	if view.Current != nil {
		id := view.Current.ID
		actor.UnitID = &id
	}
	return actor, nil
}

func find(units []*repo.Unit, id uuid.UUID) *repo.Unit {
	for _, u := range units {
		if u.ID == id {
			return u
		}
	}
	return nil
}
