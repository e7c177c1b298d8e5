package unit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	entprofile "github.com/equidadeplus/equidade_backend/internal/repo/profile"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	"github.com/equidadeplus/equidade_backend/pkg/events"
)

type memStore struct {
	units       map[uuid.UUID]*repo.Unit
	memberships []*repo.Membership
	profiles    map[uuid.UUID]*repo.Profile
}

func (m *memStore) Units() Units             { return memUnits{m} }
func (m *memStore) Memberships() Memberships { return memMemberships{m} }
func (m *memStore) Profiles() Profiles       { return memProfiles{m} }

type memUnits struct{ m *memStore }

func (r memUnits) Create(_ context.Context, u *repo.Unit) error {
	u.ID = uuid.New()
	cp := *u
	r.m.units[u.ID] = &cp
	return nil
}

func (r memUnits) Update(_ context.Context, u *repo.Unit) error {
	if _, ok := r.m.units[u.ID]; !ok {
		return repo.NewNotFoundError("units")
	}
	cp := *u
	r.m.units[u.ID] = &cp
	return nil
}

func (r memUnits) Get(_ context.Context, id uuid.UUID) (*repo.Unit, error) {
	u, ok := r.m.units[id]
	if !ok {
		return nil, repo.NewNotFoundError("units")
	}
	cp := *u
	return &cp, nil
}

func (r memUnits) List(_ context.Context, onlyActive bool) ([]*repo.Unit, error) {
	var out []*repo.Unit
	for _, u := range r.m.units {
		if onlyActive && !u.IsActive {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r memUnits) ListByIDs(_ context.Context, ids []uuid.UUID, onlyActive bool) ([]*repo.Unit, error) {
	var out []*repo.Unit
	for _, id := range ids {
		u, ok := r.m.units[id]
		if !ok || (onlyActive && !u.IsActive) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

type memMemberships struct{ m *memStore }

func (r memMemberships) Add(_ context.Context, ms *repo.Membership) error {
	for _, o := range r.m.memberships {
		if o.UserID == ms.UserID && o.UnitID == ms.UnitID {
			o.Role = ms.Role
			return nil
		}
	}
	cp := *ms
	r.m.memberships = append(r.m.memberships, &cp)
	return nil
}

func (r memMemberships) Remove(_ context.Context, userID, unitID uuid.UUID) (bool, error) {
	for i, o := range r.m.memberships {
		if o.UserID == userID && o.UnitID == unitID {
			r.m.memberships = append(r.m.memberships[:i], r.m.memberships[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r memMemberships) filter(keep func(*repo.Membership) bool) []*repo.Membership {
	var out []*repo.Membership
	for _, o := range r.m.memberships {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func (r memMemberships) ListByUser(_ context.Context, userID uuid.UUID) ([]*repo.Membership, error) {
	return r.filter(func(o *repo.Membership) bool { return o.UserID == userID }), nil
}

type memProfiles struct{ m *memStore }

func (r memProfiles) Get(_ context.Context, id uuid.UUID) (*repo.Profile, error) {
	p, ok := r.m.profiles[id]
	if !ok {
		return nil, repo.NewNotFoundError("profiles")
	}
	return p, nil
}

type memSelections map[uuid.UUID]uuid.UUID

func (m memSelections) Get(_ context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	id, ok := m[userID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (m memSelections) Clear(_ context.Context, userID uuid.UUID) error {
	delete(m, userID)
	return nil
}

type countingPolicy struct{ calls int }

func (p *countingPolicy) MembershipsChanged(context.Context) { p.calls++ }

type fixture struct {
	store      *memStore
	policy     *countingPolicy
	selections memSelections
	rec        *events.Recorder
	svc        Service
	active     *repo.Unit
	closed     *repo.Unit
	admin      authorize.Actor
	therapist  authorize.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: &memStore{
			units:    map[uuid.UUID]*repo.Unit{},
			profiles: map[uuid.UUID]*repo.Profile{},
		},
		policy:     &countingPolicy{},
		selections: memSelections{},
		rec:        &events.Recorder{},
	}
	f.active = &repo.Unit{ID: uuid.New(), Name: "Centro", IsActive: true}
	f.closed = &repo.Unit{ID: uuid.New(), Name: "Antiga", IsActive: false}
	f.store.units[f.active.ID] = f.active
	f.store.units[f.closed.ID] = f.closed

	f.admin = authorize.Actor{UserID: uuid.New(), Role: authorize.RoleAdmin}
	therapistID := uuid.New()
	f.store.profiles[therapistID] = &repo.Profile{ID: therapistID, Role: authorize.RoleTherapist, Status: entprofile.StatusActive}
	f.store.memberships = []*repo.Membership{
		{UserID: therapistID, UnitID: f.active.ID, Role: authorize.RoleTherapist},
		{UserID: therapistID, UnitID: f.closed.ID, Role: authorize.RoleTherapist},
	}
	f.therapist = authorize.Actor{UserID: therapistID, Role: authorize.RoleTherapist, UnitID: &f.active.ID}

	f.svc = New(f.store, f.policy, f.selections, f.rec, nil)
	return f
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	units, err := f.svc.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, units, 2)

	units, err = f.svc.List(ctx, f.therapist)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, f.active.ID, units[0].ID)

	units, err = f.svc.List(ctx, authorize.Actor{UserID: uuid.New(), Role: authorize.RoleGuardian})
	require.NoError(t, err)
	assert.NotNil(t, units)
	assert.Empty(t, units)
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, f.therapist, f.active.ID)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.therapist, f.closed.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Get(ctx, f.admin, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate(t *testing.T) {
	t.Run("normalizes input", func(t *testing.T) {
		f := newFixture(t)
		u, err := f.svc.Create(context.Background(), f.admin, CreateRequest{
			Name:         "  Unidade Sul ",
			Phone:        "(11) 98765-4321",
			Email:        "Sul@Equidade.com.br",
			WorkingHours: repo.WorkingHours{"monday": {Open: "08:00", Close: "18:00"}},
			Specialties:  []string{" Fonoaudiologia", "ABA", "ABA", ""},
		})
		require.NoError(t, err)
		assert.Equal(t, "Unidade Sul", u.Name)
		assert.Equal(t, "+5511987654321", u.Phone)
		assert.Equal(t, "sul@equidade.com.br", u.Email)
		assert.Equal(t, []string{"Fonoaudiologia", "ABA"}, u.Specialties)
		assert.True(t, u.IsActive)
		assert.Contains(t, f.store.units, u.ID)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(context.Background(), f.admin, CreateRequest{
			Email:        "nope",
			WorkingHours: repo.WorkingHours{"funday": {Open: "08:00", Close: "18:00"}},
		})
		var fe *fielderr.Error
		require.True(t, errors.As(err, &fe))
		assert.Contains(t, fe.Fields, "name")
		assert.Contains(t, fe.Fields, "email")
		assert.Contains(t, fe.Fields, "working_hours")
	})

	t.Run("closing before opening", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(context.Background(), f.admin, CreateRequest{
			Name:         "Sul",
			WorkingHours: repo.WorkingHours{"friday": {Open: "18:00", Close: "08:00"}},
		})
		var fe *fielderr.Error
		require.True(t, errors.As(err, &fe))
		assert.Contains(t, fe.Fields["working_hours"], "close must be after open")
	})

	t.Run("admin only", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(context.Background(), f.therapist, CreateRequest{Name: "Sul"})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inactive := false
	name := "Centro Novo"

	u, err := f.svc.Update(ctx, f.admin, f.active.ID, UpdateRequest{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, name, u.Name)
	assert.False(t, f.store.units[f.active.ID].IsActive)

	_, err = f.svc.Update(ctx, f.therapist, f.active.ID, UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Update(ctx, f.admin, uuid.New(), UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMembers(t *testing.T) {
	t.Run("add defaults to the profile role and syncs policy", func(t *testing.T) {
		f := newFixture(t)
		userID := uuid.New()
		f.store.profiles[userID] = &repo.Profile{ID: userID, Role: authorize.RoleReception, Status: entprofile.StatusActive}

		m, err := f.svc.AddMember(context.Background(), f.admin, f.active.ID, AddMemberRequest{UserID: userID})
		require.NoError(t, err)
		assert.Equal(t, authorize.RoleReception, m.Role)
		assert.Equal(t, 1, f.policy.calls)
		require.Len(t, f.rec.Events, 1)
		assert.Equal(t, events.EventMembersChanged, f.rec.Events[0].Event)
	})

	t.Run("add rejects inactive users and units", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		userID := uuid.New()
		f.store.profiles[userID] = &repo.Profile{ID: userID, Role: authorize.RoleTherapist, Status: entprofile.StatusSuspended}

		_, err := f.svc.AddMember(ctx, f.admin, f.active.ID, AddMemberRequest{UserID: userID})
		var fe *fielderr.Error
		require.True(t, errors.As(err, &fe))
		assert.Contains(t, fe.Fields, "user_id")

		_, err = f.svc.AddMember(ctx, f.admin, f.closed.ID, AddMemberRequest{UserID: f.therapist.UserID})
		require.True(t, errors.As(err, &fe))
		assert.Contains(t, fe.Fields, "unit_id")
		assert.Zero(t, f.policy.calls)
	})

	t.Run("remove", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		require.NoError(t, f.svc.RemoveMember(ctx, f.admin, f.active.ID, f.therapist.UserID))
		assert.Equal(t, 1, f.policy.calls)

		err := f.svc.RemoveMember(ctx, f.admin, f.active.ID, f.therapist.UserID)
		assert.ErrorIs(t, err, ErrMemberNotFound)
		assert.Equal(t, 1, f.policy.calls)
	})

	t.Run("remove forgets the selected unit", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.selections[f.therapist.UserID] = f.active.ID

		require.NoError(t, f.svc.RemoveMember(ctx, f.admin, f.closed.ID, f.therapist.UserID))
		assert.Equal(t, f.active.ID, f.selections[f.therapist.UserID])

		require.NoError(t, f.svc.RemoveMember(ctx, f.admin, f.active.ID, f.therapist.UserID))
		assert.NotContains(t, f.selections, f.therapist.UserID)
	})

	t.Run("non-admins cannot manage members", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.RemoveMember(context.Background(), f.therapist, f.active.ID, f.therapist.UserID)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
