// Package unit manages clinic locations and who works in each of them.
package unit

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	entprofile "github.com/equidadeplus/equidade_backend/internal/repo/profile"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	"github.com/equidadeplus/equidade_backend/pkg/events"
	"github.com/equidadeplus/equidade_backend/pkg/observability"
	"github.com/equidadeplus/equidade_backend/pkg/util/phone"
)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// PolicySyncer refreshes unit-scoped authorization after memberships change.
type PolicySyncer interface {
	MembershipsChanged(ctx context.Context)
}

type nopPolicy struct{}

func (nopPolicy) MembershipsChanged(context.Context) {}

// Selections is the remembered active unit of each user.
type Selections interface {
	Get(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type nopSelections struct{}

func (nopSelections) Get(context.Context, uuid.UUID) (*uuid.UUID, error) { return nil, nil }
func (nopSelections) Clear(context.Context, uuid.UUID) error             { return nil }

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Name         string            `json:"name"`
	Address      string            `json:"address"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email"`
	WorkingHours repo.WorkingHours `json:"working_hours"`
	Specialties  []string          `json:"specialties"`
}

type UpdateRequest struct {
	Name         *string            `json:"name"`
	Address      *string            `json:"address"`
	Phone        *string            `json:"phone"`
	Email        *string            `json:"email"`
	WorkingHours *repo.WorkingHours `json:"working_hours"`
	Specialties  *[]string          `json:"specialties"`
	IsActive     *bool              `json:"is_active"`
}

// AddMemberRequest grants a user access to a unit. Role defaults to the
// user's profile role.
type AddMemberRequest struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   authorize.Role `json:"role"`
}

// MemberEvent is the payload of members_changed events.
type MemberEvent struct {
	UserID  uuid.UUID      `json:"user_id"`
	Role    authorize.Role `json:"role,omitempty"`
	Removed bool           `json:"removed"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context, actor authorize.Actor) ([]*repo.Unit, error)
	Get(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Unit, error)
	Create(ctx context.Context, actor authorize.Actor, req CreateRequest) (*repo.Unit, error)
	Update(ctx context.Context, actor authorize.Actor, id uuid.UUID, req UpdateRequest) (*repo.Unit, error)
	AddMember(ctx context.Context, actor authorize.Actor, unitID uuid.UUID, req AddMemberRequest) (*repo.Membership, error)
	RemoveMember(ctx context.Context, actor authorize.Actor, unitID, userID uuid.UUID) error
}

type service struct {
	store      Store
	policy     PolicySyncer
	selections Selections
	publisher  events.Publisher
	metrics    *observability.Workflow
}

func New(store Store, policy PolicySyncer, selections Selections, publisher events.Publisher, metrics *observability.Workflow) Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if policy == nil {
		policy = nopPolicy{}
	}
	if selections == nil {
		selections = nopSelections{}
	}
	return &service{store: store, policy: policy, selections: selections, publisher: publisher, metrics: metrics}
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

// List returns every unit to admins, inactive ones included, and the active
// units the actor belongs to otherwise.
func (s *service) List(ctx context.Context, actor authorize.Actor) ([]*repo.Unit, error) {
	if !actor.Can(authorize.ResourceUnits, authorize.ActionView) {
		return nil, ErrForbidden
	}
	var (
		units []*repo.Unit
		err   error
	)
	if actor.IsAdmin() {
		units, err = s.store.Units().List(ctx, false)
	} else {
		var ms []*repo.Membership
		ms, err = s.store.Memberships().ListByUser(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, 0, len(ms))
		for _, m := range ms {
			ids = append(ids, m.UnitID)
		}
		units, err = s.store.Units().ListByIDs(ctx, ids, true)
	}
	if err != nil {
		return nil, err
	}
	if units == nil {
		units = []*repo.Unit{}
	}
	return units, nil
}

func (s *service) Get(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Unit, error) {
	if !actor.Can(authorize.ResourceUnits, authorize.ActionView) {
		return nil, ErrForbidden
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return u, nil
	}
	ms, err := s.store.Memberships().ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive || !slices.ContainsFunc(ms, func(m *repo.Membership) bool { return m.UnitID == id }) {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *service) Create(ctx context.Context, actor authorize.Actor, req CreateRequest) (*repo.Unit, error) {
	u := &repo.Unit{
		Name:         req.Name,
		Address:      req.Address,
		Phone:        req.Phone,
		Email:        req.Email,
		WorkingHours: req.WorkingHours,
		Specialties:  req.Specialties,
		IsActive:     true,
	}
	if err := normalize(u); err != nil {
		return nil, err
	}
	if !actor.Can(authorize.ResourceUnits, authorize.ActionManage) {
		return nil, ErrForbidden
	}
	if err := s.store.Units().Create(ctx, u); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "unit created", "unit_id", u.ID, "actor_id", actor.UserID)
	return u, nil
}

func (s *service) Update(ctx context.Context, actor authorize.Actor, id uuid.UUID, req UpdateRequest) (*repo.Unit, error) {
	if !actor.Can(authorize.ResourceUnits, authorize.ActionManage) {
		return nil, ErrForbidden
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Address != nil {
		u.Address = *req.Address
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.WorkingHours != nil {
		u.WorkingHours = *req.WorkingHours
	}
	if req.Specialties != nil {
		u.Specialties = *req.Specialties
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if err := normalize(u); err != nil {
		return nil, err
	}
	if err := s.store.Units().Update(ctx, u); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *service) AddMember(ctx context.Context, actor authorize.Actor, unitID uuid.UUID, req AddMemberRequest) (*repo.Membership, error) {
	if req.UserID == uuid.Nil {
		return nil, fielderr.Single("user_id", "is required")
	}
	if req.Role != "" && !req.Role.IsValid() {
		return nil, fielderr.Single("role", "unknown role")
	}
	if !actor.Can(authorize.ResourceUnits, authorize.ActionManage) {
		return nil, ErrForbidden
	}
	u, err := s.load(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fielderr.Single("unit_id", "unit is inactive")
	}
	p, err := s.store.Profiles().Get(ctx, req.UserID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fielderr.Single("user_id", "user not found")
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p.Status != entprofile.StatusActive {
		return nil, fielderr.Single("user_id", "user is not active")
	}

	role := req.Role
	if role == "" {
		role = p.Role
	}
	m := &repo.Membership{UserID: p.ID, UnitID: u.ID, Role: role}
	if err := s.store.Memberships().Add(ctx, m); err != nil {
		return nil, err
	}

	s.policy.MembershipsChanged(ctx)
	s.publish(ctx, actor, u.ID, MemberEvent{UserID: p.ID, Role: role})
	return m, nil
}

func (s *service) RemoveMember(ctx context.Context, actor authorize.Actor, unitID, userID uuid.UUID) error {
	if !actor.Can(authorize.ResourceUnits, authorize.ActionManage) {
		return ErrForbidden
	}
	if _, err := s.load(ctx, unitID); err != nil {
		return err
	}
	removed, err := s.store.Memberships().Remove(ctx, userID, unitID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrMemberNotFound
	}

	s.policy.MembershipsChanged(ctx)
	s.forgetSelection(ctx, userID, unitID)
	s.publish(ctx, actor, unitID, MemberEvent{UserID: userID, Removed: true})
	return nil
}

// forgetSelection drops the user's remembered unit when it is the one they
// just left. Failures only cost a fallback on the next request.
func (s *service) forgetSelection(ctx context.Context, userID, unitID uuid.UUID) {
	selected, err := s.selections.Get(ctx, userID)
	if err == nil && (selected == nil || *selected != unitID) {
		return
	}
	if err == nil {
		err = s.selections.Clear(ctx, userID)
	}
	if err != nil {
		slog.WarnContext(ctx, "unit: clear selection",
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)
	}
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*repo.Unit, error) {
	u, err := s.store.Units().Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load unit: %w", err)
	}
	return u, nil
}

func (s *service) publish(ctx context.Context, actor authorize.Actor, unitID uuid.UUID, data MemberEvent) {
	env, err := events.New(ctx, events.EntityUnit, events.EventMembersChanged, unitID, actor.UserID, &unitID, data)
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.metrics.SideEffectFailed(ctx, "event")
		slog.WarnContext(ctx, "unit: publish event",
			slog.String("unit_id", unitID.String()),
			slog.Any("error", err),
		)
	}
}

// normalize trims and validates u in place.
func normalize(u *repo.Unit) error {
	fe := fielderr.New()

	u.Name = strings.TrimSpace(u.Name)
	fe.Require("name", u.Name, "is required")
	u.Address = strings.TrimSpace(u.Address)

	normalized, err := phone.Normalize(u.Phone)
	if err != nil {
		fe.Add("phone", "invalid phone number")
	}
	u.Phone = normalized

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email != "" {
		if addr, err := mail.ParseAddress(u.Email); err != nil || addr.Address != u.Email {
			fe.Add("email", "invalid email address")
		}
	}

	for day, h := range u.WorkingHours {
		if !slices.Contains(weekdays, day) {
			fe.Add("working_hours", fmt.Sprintf("unknown weekday %q", day))
			continue
		}
		open, errOpen := time.Parse("15:04", h.Open)
		closing, errClose := time.Parse("15:04", h.Close)
		if errOpen != nil || errClose != nil {
			fe.Add("working_hours", fmt.Sprintf("%s: hours must be HH:MM", day))
			continue
		}
		if !closing.After(open) {
			fe.Add("working_hours", fmt.Sprintf("%s: close must be after open", day))
		}
	}

	specs := make([]string, 0, len(u.Specialties))
	for _, sp := range u.Specialties {
		sp = strings.TrimSpace(sp)
		if sp != "" && !slices.Contains(specs, sp) {
			specs = append(specs, sp)
		}
	}
	u.Specialties = specs

	return fe.Err()
}
