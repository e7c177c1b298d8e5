package patient

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	entpatient "github.com/equidadeplus/equidade_backend/internal/repo/patient"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	"github.com/equidadeplus/equidade_backend/pkg/crypto"
)

type fakePatients struct {
	rows      map[uuid.UUID]*repo.Patient
	guardians []*repo.Guardian
}

func newFakePatients() *fakePatients {
	return &fakePatients{rows: map[uuid.UUID]*repo.Patient{}}
}

func (f *fakePatients) Create(_ context.Context, p *repo.Patient) error {
	p.ID = uuid.New()
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePatients) Update(_ context.Context, p *repo.Patient) error {
	if _, ok := f.rows[p.ID]; !ok {
		return repo.NewNotFoundError("patients")
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePatients) Get(_ context.Context, id uuid.UUID) (*repo.Patient, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, repo.NewNotFoundError("patients")
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatients) FindByCPFHash(_ context.Context, unitID uuid.UUID, hash string) (*repo.Patient, error) {
	for _, p := range f.rows {
		if p.UnitID == unitID && p.CPFHash != nil && *p.CPFHash == hash {
			return p, nil
		}
	}
	return nil, repo.NewNotFoundError("patients")
}

func (f *fakePatients) match(rf repo.PatientFilter) []*repo.Patient {
	if rf.IDs != nil && len(rf.IDs) == 0 {
		return nil
	}
	var out []*repo.Patient
	for _, p := range f.rows {
		if p.UnitID != rf.UnitID {
			continue
		}
		if rf.IDs != nil && !containsID(rf.IDs, p.ID) {
			continue
		}
		if rf.Search != "" && !strings.Contains(strings.ToLower(p.FullName), strings.ToLower(rf.Search)) {
			continue
		}
		if rf.Status != "" && p.Status != rf.Status {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func (f *fakePatients) List(_ context.Context, rf repo.PatientFilter) ([]*repo.Patient, error) {
	return f.match(rf), nil
}

func (f *fakePatients) Count(_ context.Context, rf repo.PatientFilter) (int, error) {
	return len(f.match(rf)), nil
}

func (f *fakePatients) AddGuardian(_ context.Context, g *repo.Guardian) error {
	for _, x := range f.guardians {
		if x.PatientID == g.PatientID && x.GuardianID == g.GuardianID {
			return nil
		}
	}
	f.guardians = append(f.guardians, g)
	return nil
}

func (f *fakePatients) ListGuardians(_ context.Context, patientID uuid.UUID) ([]*repo.Guardian, error) {
	var out []*repo.Guardian
	for _, g := range f.guardians {
		if g.PatientID == patientID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakePatients) PatientIDsForGuardian(_ context.Context, guardianID uuid.UUID) ([]uuid.UUID, error) {
	out := []uuid.UUID{}
	for _, g := range f.guardians {
		if g.GuardianID == guardianID {
			out = append(out, g.PatientID)
		}
	}
	return out, nil
}

type fakeProfiles map[uuid.UUID]*repo.Profile

func (f fakeProfiles) Get(_ context.Context, id uuid.UUID) (*repo.Profile, error) {
	p, ok := f[id]
	if !ok {
		return nil, repo.NewNotFoundError("profiles")
	}
	return p, nil
}

func setup(t *testing.T) (*fakePatients, fakeProfiles, Service, uuid.UUID) {
	t.Helper()
	cipher, err := crypto.NewFieldCipher(strings.Repeat("ab", 32))
	require.NoError(t, err)
	patients := newFakePatients()
	profiles := fakeProfiles{}
	return patients, profiles, New(patients, profiles, cipher), uuid.New()
}

func actor(role authorize.Role, unit uuid.UUID) authorize.Actor {
	return authorize.Actor{UserID: uuid.New(), Role: role, UnitID: &unit}
}

func TestCreate_EncryptsCPF(t *testing.T) {
	patients, _, svc, unit := setup(t)
	ctx := context.Background()
	reception := actor(authorize.RoleReception, unit)

	p, err := svc.Create(ctx, reception, CreateRequest{FullName: " Maria Souza ", CPF: "529.982.247-25"})
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", p.FullName)
	assert.Equal(t, unit, p.UnitID)
	require.NotNil(t, p.CPFEncrypted)
	assert.NotContains(t, *p.CPFEncrypted, "52998224725")
	require.NotNil(t, p.CPFHash)

	d, err := svc.Get(ctx, reception, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "529.982.247-25", d.CPF)

	_, err = svc.Create(ctx, reception, CreateRequest{FullName: "Outra", CPF: "52998224725"})
	assert.ErrorIs(t, err, ErrDuplicateCPF)
	assert.Len(t, patients.rows, 1)
}

func TestCreate_Validation(t *testing.T) {
	_, _, svc, unit := setup(t)

	_, err := svc.Create(context.Background(), actor(authorize.RoleReception, unit), CreateRequest{CPF: "111.111.111-11"})
	fields, ok := fielderr.As(err)
	require.True(t, ok)
	assert.Contains(t, fields, "full_name")
	assert.Contains(t, fields, "cpf")

	noUnit := authorize.Actor{UserID: uuid.New(), Role: authorize.RoleReception}
	_, err = svc.Create(context.Background(), noUnit, CreateRequest{FullName: "Ana"})
	fields, _ = fielderr.As(err)
	assert.Contains(t, fields, "unit_id")

	_, err = svc.Create(context.Background(), actor(authorize.RoleIntern, unit), CreateRequest{FullName: "Ana"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreate_CPFWithoutKey(t *testing.T) {
	cipher, err := crypto.NewFieldCipher("")
	require.NoError(t, err)
	unit := uuid.New()
	svc := New(newFakePatients(), fakeProfiles{}, cipher)

	_, err = svc.Create(context.Background(), actor(authorize.RoleReception, unit), CreateRequest{FullName: "Ana", CPF: "52998224725"})
	assert.ErrorIs(t, err, ErrCPFDisabled)

	_, err = svc.Create(context.Background(), actor(authorize.RoleReception, unit), CreateRequest{FullName: "Ana"})
	assert.NoError(t, err)
}

func TestList_UnitScopeAndGuardians(t *testing.T) {
	patients, profiles, svc, unit := setup(t)
	ctx := context.Background()
	coord := actor(authorize.RoleCoordinator, unit)

	a, err := svc.Create(ctx, coord, CreateRequest{FullName: "Ana"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, coord, CreateRequest{FullName: "Bruno"})
	require.NoError(t, err)
	other := uuid.New()
	_, err = svc.Create(ctx, actor(authorize.RoleCoordinator, other), CreateRequest{FullName: "Carla"})
	require.NoError(t, err)
	assert.Len(t, patients.rows, 3)

	res, err := svc.List(ctx, coord, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	res, err = svc.List(ctx, coord, ListFilter{Search: "bru"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	noUnit := authorize.Actor{UserID: uuid.New(), Role: authorize.RoleCoordinator}
	res, err = svc.List(ctx, noUnit, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)

	guardian := actor(authorize.RoleGuardian, unit)
	profiles[guardian.UserID] = &repo.Profile{ID: guardian.UserID, Role: authorize.RoleGuardian}

	res, err = svc.List(ctx, guardian, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total, "unlinked guardian sees nothing")

	links, err := svc.LinkGuardian(ctx, coord, a.ID, LinkGuardianRequest{GuardianID: guardian.UserID, Relationship: "mãe"})
	require.NoError(t, err)
	assert.Len(t, links, 1)

	res, err = svc.List(ctx, guardian, ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, a.ID, res.Data[0].ID)

	_, err = svc.Get(ctx, guardian, a.ID)
	assert.NoError(t, err)
	for _, p := range patients.rows {
		if p.FullName == "Bruno" {
			_, err = svc.Get(ctx, guardian, p.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		}
	}
}

func TestLinkGuardian_RequiresGuardianRole(t *testing.T) {
	_, profiles, svc, unit := setup(t)
	ctx := context.Background()
	coord := actor(authorize.RoleCoordinator, unit)
	p, err := svc.Create(ctx, coord, CreateRequest{FullName: "Ana"})
	require.NoError(t, err)

	therapist := uuid.New()
	profiles[therapist] = &repo.Profile{ID: therapist, Role: authorize.RoleTherapist}
	_, err = svc.LinkGuardian(ctx, coord, p.ID, LinkGuardianRequest{GuardianID: therapist})
	fields, ok := fielderr.As(err)
	require.True(t, ok)
	assert.Contains(t, fields, "guardian_id")

	_, err = svc.LinkGuardian(ctx, actor(authorize.RoleReception, unit), p.ID, LinkGuardianRequest{GuardianID: therapist})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdate(t *testing.T) {
	_, _, svc, unit := setup(t)
	ctx := context.Background()
	therapist := actor(authorize.RoleTherapist, unit)
	p, err := svc.Create(ctx, therapist, CreateRequest{FullName: "Ana"})
	require.NoError(t, err)

	discharged := entpatient.StatusDischarged
	name := "Ana Lima"
	up, err := svc.Update(ctx, therapist, p.ID, UpdateRequest{FullName: &name, Status: &discharged})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", up.FullName)
	assert.Equal(t, entpatient.StatusDischarged, up.Status)

	bad := entpatient.Status("deleted")
	_, err = svc.Update(ctx, therapist, p.ID, UpdateRequest{Status: &bad})
	fields, _ := fielderr.As(err)
	assert.Contains(t, fields, "status")

	otherUnit := actor(authorize.RoleTherapist, uuid.New())
	_, err = svc.Update(ctx, otherUnit, p.ID, UpdateRequest{FullName: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}
