// Package profile manages staff and guardian accounts: who they are, which
// role they hold and which units they work in. Identities live in the
// external provider; this package only keeps the application-side profile.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	"github.com/equidadeplus/equidade_backend/internal/repo/notification"
	entprofile "github.com/equidadeplus/equidade_backend/internal/repo/profile"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/internal/service/paging"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	"github.com/equidadeplus/equidade_backend/pkg/events"
	"github.com/equidadeplus/equidade_backend/pkg/observability"
	"github.com/equidadeplus/equidade_backend/pkg/util/phone"
)

const maxDisplayName = 120

// PolicySyncer refreshes unit-scoped authorization after memberships change.
type PolicySyncer interface {
	MembershipsChanged(ctx context.Context)
}

type nopPolicy struct{}

func (nopPolicy) MembershipsChanged(context.Context) {}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type ListFilter struct {
	Role    authorize.Role
	Status  entprofile.Status
	Search  string
	Page    int
	PerPage int
}

// ProvisionRequest creates the profile of an identity that already exists in
// the provider. ID is the provider's subject.
type ProvisionRequest struct {
	ID                  uuid.UUID      `json:"id"`
	DisplayName         string         `json:"display_name"`
	Email               string         `json:"email"`
	Phone               string         `json:"phone"`
	Role                authorize.Role `json:"role"`
	HomeUnitID          *uuid.UUID     `json:"home_unit_id"`
	RequiresSupervision *bool          `json:"requires_supervision"`
}

type UpdateRequest struct {
	DisplayName         *string         `json:"display_name"`
	Phone               *string         `json:"phone"`
	Role                *authorize.Role `json:"role"`
	HomeUnitID          *uuid.UUID      `json:"home_unit_id"`
	RequiresSupervision *bool           `json:"requires_supervision"`
}

// Me is what the client needs to render its shell.
type Me struct {
	*repo.Profile
	Memberships []*repo.Membership                       `json:"memberships"`
	Permissions map[authorize.Resource][]authorize.Action `json:"permissions"`
}

// EventData is the payload of profile events.
type EventData struct {
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Role        authorize.Role `json:"role"`
	HomeUnitID  *uuid.UUID     `json:"home_unit_id,omitempty"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Me(ctx context.Context, actor authorize.Actor) (*Me, error)
	List(ctx context.Context, actor authorize.Actor, f ListFilter) (*paging.Result[*repo.Profile], error)
	Get(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Profile, error)
	Provision(ctx context.Context, actor authorize.Actor, req ProvisionRequest) (*repo.Profile, error)
	Update(ctx context.Context, actor authorize.Actor, id uuid.UUID, req UpdateRequest) (*repo.Profile, error)
	SetStatus(ctx context.Context, actor authorize.Actor, id uuid.UUID, status entprofile.Status) (*repo.Profile, error)
}

type service struct {
	store     Store
	policy    PolicySyncer
	publisher events.Publisher
	metrics   *observability.Workflow
}

func New(store Store, policy PolicySyncer, publisher events.Publisher, metrics *observability.Workflow) Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if policy == nil {
		policy = nopPolicy{}
	}
	return &service{store: store, policy: policy, publisher: publisher, metrics: metrics}
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

func (s *service) Me(ctx context.Context, actor authorize.Actor) (*Me, error) {
	p, err := s.store.Profiles().Get(ctx, actor.UserID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	ms, err := s.store.Memberships().ListByUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if ms == nil {
		ms = []*repo.Membership{}
	}
	return &Me{Profile: p, Memberships: ms, Permissions: authorize.Permissions(p.Role)}, nil
}

func (s *service) List(ctx context.Context, actor authorize.Actor, f ListFilter) (*paging.Result[*repo.Profile], error) {
	page, perPage := paging.Normalize(f.Page, f.PerPage)
	if !actor.Can(authorize.ResourceUsers, authorize.ActionView) {
		return nil, ErrForbidden
	}
	fe := fielderr.New()
	if f.Role != "" && !f.Role.IsValid() {
		fe.Add("role", "unknown role")
	}
	if f.Status != "" && entprofile.StatusValidator(f.Status) != nil {
		fe.Add("status", "unknown status")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	rf := repo.ProfileFilter{
		Status: f.Status,
		Search: strings.TrimSpace(f.Search),
		Limit:  perPage,
		Offset: paging.Offset(page, perPage),
	}
	if f.Role != "" {
		rf.Roles = []authorize.Role{f.Role}
	}
	switch {
	case actor.HasUnit():
		unitID := actor.Unit()
		rf.UnitID = &unitID
	case !actor.IsAdmin():
		return paging.Empty[*repo.Profile](page, perPage), nil
	}

	rows, err := s.store.Profiles().List(ctx, rf)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Profiles().Count(ctx, rf)
	if err != nil {
		return nil, err
	}
	return paging.New(rows, total, page, perPage), nil
}

func (s *service) Get(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Profile, error) {
	if id != actor.UserID && !actor.Can(authorize.ResourceUsers, authorize.ActionView) {
		return nil, ErrForbidden
	}
	return s.load(ctx, actor, id)
}

func (s *service) Provision(ctx context.Context, actor authorize.Actor, req ProvisionRequest) (*repo.Profile, error) {
	p, err := s.validateProvision(req)
	if err != nil {
		return nil, err
	}
	if !actor.Can(authorize.ResourceUsers, authorize.ActionCreate) {
		return nil, ErrForbidden
	}
	if !actor.IsAdmin() {
		// Coordinators staff their own unit and cannot mint peers.
		// The supervision flag follows the role unless an admin sets it.
		if p.Role.IsSupervisor() || req.RequiresSupervision != nil {
			return nil, ErrForbidden
		}
		if !actor.HasUnit() {
			return nil, fielderr.Single("unit_id", "select a unit first")
		}
		if p.HomeUnitID == nil {
			unitID := actor.Unit()
			p.HomeUnitID = &unitID
		}
		if *p.HomeUnitID != actor.Unit() {
			return nil, ErrForbidden
		}
	}
	if p.HomeUnitID == nil && !p.Role.IsAdmin() {
		return nil, fielderr.Single("home_unit_id", "is required")
	}
	if p.HomeUnitID != nil {
		if err := s.checkUnit(ctx, *p.HomeUnitID); err != nil {
			return nil, err
		}
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.Profiles().Create(ctx, p); err != nil {
			if repo.IsConstraintError(err) {
				return ErrAlreadyExists
			}
			return err
		}
		if p.HomeUnitID != nil {
			if err := tx.Memberships().Add(ctx, &repo.Membership{UserID: p.ID, UnitID: *p.HomeUnitID, Role: p.Role}); err != nil {
				return err
			}
		}
		return tx.Notifications().CreateBulk(ctx, &repo.Notification{
			UserID: p.ID,
			Type:   notification.TypeAccountProvisioned,
			Title:  "Bem-vindo ao Equidade+",
			Body:   fmt.Sprintf("Sua conta foi criada com o perfil %s.", authorize.RoleDisplayNamesPT[p.Role]),
			Data:   map[string]any{"role": string(p.Role)},
		})
	})
	if err != nil {
		return nil, err
	}

	if p.HomeUnitID != nil {
		s.policy.MembershipsChanged(ctx)
	}
	s.publish(ctx, actor, p, events.EventProvisioned)
	return p, nil
}

func (s *service) Update(ctx context.Context, actor authorize.Actor, id uuid.UUID, req UpdateRequest) (*repo.Profile, error) {
	if !actor.Can(authorize.ResourceUsers, authorize.ActionUpdate) {
		return nil, ErrForbidden
	}
	p, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && (p.Role.IsSupervisor() || req.Role != nil || req.HomeUnitID != nil || req.RequiresSupervision != nil) {
		return nil, ErrForbidden
	}

	fe := fielderr.New()
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" || len(name) > maxDisplayName {
			fe.Add("display_name", fmt.Sprintf("must be between 1 and %d characters", maxDisplayName))
		}
		p.DisplayName = name
	}
	if req.Phone != nil {
		normalized, err := phone.Normalize(*req.Phone)
		if err != nil {
			fe.Add("phone", "invalid phone number")
		}
		p.Phone = normalized
	}
	roleChanged := false
	if req.Role != nil && *req.Role != p.Role {
		if !req.Role.IsValid() {
			fe.Add("role", "unknown role")
		}
		p.Role, roleChanged = *req.Role, true
	}
	if req.RequiresSupervision != nil {
		p.RequiresSupervision = *req.RequiresSupervision
	}
	homeChanged := req.HomeUnitID != nil && (p.HomeUnitID == nil || *p.HomeUnitID != *req.HomeUnitID)
	if homeChanged {
		unitID := *req.HomeUnitID
		p.HomeUnitID = &unitID
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}
	if homeChanged {
		if err := s.checkUnit(ctx, *p.HomeUnitID); err != nil {
			return nil, err
		}
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.Profiles().Update(ctx, p); err != nil {
			return err
		}
		if roleChanged {
			if err := tx.Memberships().SetRole(ctx, p.ID, p.Role); err != nil {
				return err
			}
		}
		if homeChanged {
			return tx.Memberships().Add(ctx, &repo.Membership{UserID: p.ID, UnitID: *p.HomeUnitID, Role: p.Role})
		}
		return nil
	})
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		if repo.IsConstraintError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	if roleChanged || homeChanged {
		s.policy.MembershipsChanged(ctx)
	}
	return p, nil
}

func (s *service) SetStatus(ctx context.Context, actor authorize.Actor, id uuid.UUID, status entprofile.Status) (*repo.Profile, error) {
	if entprofile.StatusValidator(status) != nil {
		return nil, fielderr.Single("status", "unknown status")
	}
	if !actor.Can(authorize.ResourceUsers, authorize.ActionManage) {
		return nil, ErrForbidden
	}
	if id == actor.UserID && status != entprofile.StatusActive {
		return nil, ErrSelfDeactivate
	}
	p, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Status == status {
		return p, nil
	}
	if err := s.store.Profiles().SetStatus(ctx, id, status); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Status = status
	return p, nil
}

func (s *service) validateProvision(req ProvisionRequest) (*repo.Profile, error) {
	fe := fielderr.New()
	if req.ID == uuid.Nil {
		fe.Add("id", "is required")
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" || len(name) > maxDisplayName {
		fe.Add("display_name", fmt.Sprintf("must be between 1 and %d characters", maxDisplayName))
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		fe.Add("email", "invalid email address")
	}
	normalized, err := phone.Normalize(req.Phone)
	if err != nil {
		fe.Add("phone", "invalid phone number")
	}
	if !req.Role.IsValid() {
		fe.Add("role", "unknown role")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	supervised := req.Role == authorize.RoleIntern
	if req.RequiresSupervision != nil {
		supervised = *req.RequiresSupervision
	}
	return &repo.Profile{
		ID:                  req.ID,
		DisplayName:         name,
		Email:               email,
		Phone:               normalized,
		Role:                req.Role,
		HomeUnitID:          req.HomeUnitID,
		RequiresSupervision: supervised,
		Status:              entprofile.StatusActive,
	}, nil
}

func (s *service) checkUnit(ctx context.Context, id uuid.UUID) error {
	u, err := s.store.Units().Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return fielderr.Single("home_unit_id", "unit not found")
		}
		return fmt.Errorf("load unit: %w", err)
	}
	if !u.IsActive {
		return fielderr.Single("home_unit_id", "unit is inactive")
	}
	return nil
}

// load hides profiles outside the actor's unit. Everyone can load themselves.
func (s *service) load(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Profile, error) {
	p, err := s.store.Profiles().Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if actor.IsAdmin() || id == actor.UserID {
		return p, nil
	}
	if !actor.HasUnit() {
		return nil, ErrNotFound
	}
	ms, err := s.store.Memberships().ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	unitID := actor.Unit()
	if !slices.ContainsFunc(ms, func(m *repo.Membership) bool { return m.UnitID == unitID }) {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *service) publish(ctx context.Context, actor authorize.Actor, p *repo.Profile, event string) {
	env, err := events.New(ctx, events.EntityProfile, event, p.ID, actor.UserID, p.HomeUnitID, EventData{
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Role:        p.Role,
		HomeUnitID:  p.HomeUnitID,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.metrics.SideEffectFailed(ctx, "event")
		slog.WarnContext(ctx, "profile: publish event",
			slog.String("event", event),
			slog.String("user_id", p.ID.String()),
			slog.Any("error", err),
		)
	}
}
