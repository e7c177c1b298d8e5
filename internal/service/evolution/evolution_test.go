package evolution

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	evo "github.com/equidadeplus/equidade_backend/internal/repo/evolution"
	"github.com/equidadeplus/equidade_backend/internal/repo/notification"
	entprofile "github.com/equidadeplus/equidade_backend/internal/repo/profile"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	"github.com/equidadeplus/equidade_backend/pkg/events"
)

// memStore is an in-memory Store. WithTx works on a copy and keeps it only
// when fn succeeds.
type memStore struct {
	evolutions    map[uuid.UUID]*repo.Evolution
	addenda       []*repo.Addendum
	appointments  map[uuid.UUID]*repo.Appointment
	profiles      map[uuid.UUID]*repo.Profile
	patients      map[uuid.UUID]*repo.Patient
	notifications []*repo.Notification
	notifyErr     error
}

func newMemStore() *memStore {
	return &memStore{
		evolutions:   map[uuid.UUID]*repo.Evolution{},
		appointments: map[uuid.UUID]*repo.Appointment{},
		profiles:     map[uuid.UUID]*repo.Profile{},
		patients:     map[uuid.UUID]*repo.Patient{},
	}
}

func (m *memStore) Evolutions() Evolutions       { return memEvolutions{m} }
func (m *memStore) Appointments() Appointments   { return memAppointments{m} }
func (m *memStore) Profiles() Profiles           { return memProfiles{m} }
func (m *memStore) Patients() Patients           { return memPatients{m} }
func (m *memStore) Notifications() Notifications { return memNotifications{m} }

func (m *memStore) WithTx(_ context.Context, fn func(tx Store) error) error {
	tx := &memStore{
		evolutions:    map[uuid.UUID]*repo.Evolution{},
		addenda:       append([]*repo.Addendum(nil), m.addenda...),
		appointments:  m.appointments,
		profiles:      m.profiles,
		patients:      m.patients,
		notifications: append([]*repo.Notification(nil), m.notifications...),
		notifyErr:     m.notifyErr,
	}
	for id, e := range m.evolutions {
		cp := *e
		tx.evolutions[id] = &cp
	}
	if err := fn(tx); err != nil {
		return err
	}
	m.evolutions, m.addenda, m.notifications = tx.evolutions, tx.addenda, tx.notifications
	return nil
}

type memEvolutions struct{ m *memStore }

func (r memEvolutions) Create(_ context.Context, e *repo.Evolution) error {
	for _, other := range r.m.evolutions {
		if other.AppointmentID == e.AppointmentID {
			return &repo.ConstraintError{}
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Version = 1
	e.CreatedAt = time.Now().UTC()
	cp := *e
	r.m.evolutions[e.ID] = &cp
	return nil
}

func (r memEvolutions) Update(_ context.Context, e *repo.Evolution, expected int) error {
	cur, ok := r.m.evolutions[e.ID]
	if !ok || cur.Version != expected {
		return repo.ErrStaleVersion
	}
	e.Version = expected + 1
	cp := *e
	cp.Attachments = append([]string(nil), e.Attachments...)
	r.m.evolutions[e.ID] = &cp
	return nil
}

func (r memEvolutions) Get(_ context.Context, id uuid.UUID) (*repo.Evolution, error) {
	e, ok := r.m.evolutions[id]
	if !ok {
		return nil, repo.NewNotFoundError(evo.Table)
	}
	cp := *e
	cp.Attachments = append([]string(nil), e.Attachments...)
	return &cp, nil
}

func (r memEvolutions) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*repo.Evolution, error) {
	for _, e := range r.m.evolutions {
		if e.AppointmentID == appointmentID {
			return r.Get(ctx, e.ID)
		}
	}
	return nil, repo.NewNotFoundError(evo.Table)
}

func (r memEvolutions) matching(f repo.EvolutionFilter) []*repo.Evolution {
	var out []*repo.Evolution
	for _, e := range r.m.evolutions {
		if e.UnitID != f.UnitID {
			continue
		}
		if f.AuthorID != nil && e.AuthorID != *f.AuthorID {
			continue
		}
		if f.PatientID != nil && e.PatientID != *f.PatientID {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (r memEvolutions) List(_ context.Context, f repo.EvolutionFilter) ([]*repo.Evolution, error) {
	return r.matching(f), nil
}

func (r memEvolutions) Count(_ context.Context, f repo.EvolutionFilter) (int, error) {
	return len(r.matching(f)), nil
}

func (r memEvolutions) CreateAddendum(_ context.Context, a *repo.Addendum) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	r.m.addenda = append(r.m.addenda, a)
	return nil
}

func (r memEvolutions) ListAddenda(_ context.Context, evolutionID uuid.UUID) ([]*repo.Addendum, error) {
	var out []*repo.Addendum
	for _, a := range r.m.addenda {
		if a.EvolutionID == evolutionID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memAppointments struct{ m *memStore }

func (r memAppointments) Get(_ context.Context, id uuid.UUID) (*repo.Appointment, error) {
	a, ok := r.m.appointments[id]
	if !ok {
		return nil, repo.NewNotFoundError("appointments")
	}
	return a, nil
}

type memProfiles struct{ m *memStore }

func (r memProfiles) Get(_ context.Context, id uuid.UUID) (*repo.Profile, error) {
	p, ok := r.m.profiles[id]
	if !ok {
		return nil, repo.NewNotFoundError("profiles")
	}
	return p, nil
}

func (r memProfiles) GetMany(_ context.Context, ids []uuid.UUID) ([]*repo.Profile, error) {
	var out []*repo.Profile
	for _, id := range ids {
		if p, ok := r.m.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProfiles) ListSupervisors(_ context.Context, unitID uuid.UUID) ([]*repo.Profile, error) {
	var out []*repo.Profile
	for _, p := range r.m.profiles {
		// The home unit stands in for the membership row.
		if p.Status != entprofile.StatusActive {
			continue
		}
		member := p.HomeUnitID != nil && *p.HomeUnitID == unitID
		if p.Role == authorize.RoleAdmin || (p.Role == authorize.RoleCoordinator && member) {
			out = append(out, p)
		}
	}
	return out, nil
}

type memPatients struct{ m *memStore }

func (r memPatients) Get(_ context.Context, id uuid.UUID) (*repo.Patient, error) {
	p, ok := r.m.patients[id]
	if !ok {
		return nil, repo.NewNotFoundError("patients")
	}
	return p, nil
}

type memNotifications struct{ m *memStore }

func (r memNotifications) CreateBulk(_ context.Context, ns ...*repo.Notification) error {
	if r.m.notifyErr != nil {
		return r.m.notifyErr
	}
	r.m.notifications = append(r.m.notifications, ns...)
	return nil
}

type fixture struct {
	store       *memStore
	events      *events.Recorder
	svc         Service
	unitID      uuid.UUID
	patient     *repo.Patient
	appointment *repo.Appointment
	therapist   authorize.Actor
	intern      authorize.Actor
	coordinator authorize.Actor
}

func (f *fixture) addProfile(role authorize.Role, requiresSupervision bool) authorize.Actor {
	id := uuid.New()
	unit := f.unitID
	f.store.profiles[id] = &repo.Profile{
		ID:                  id,
		DisplayName:         string(role) + "-" + id.String()[:4],
		Role:                role,
		HomeUnitID:          &unit,
		RequiresSupervision: requiresSupervision,
		Status:              entprofile.StatusActive,
	}
	return authorize.Actor{UserID: id, Role: role, UnitID: &unit}
}

func (f *fixture) newAppointment() *repo.Appointment {
	a := &repo.Appointment{ID: uuid.New(), UnitID: f.unitID, PatientID: f.patient.ID}
	f.store.appointments[a.ID] = a
	return a
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: newMemStore(), events: &events.Recorder{}, unitID: uuid.New()}
	f.patient = &repo.Patient{ID: uuid.New(), UnitID: f.unitID, FullName: "João Silva"}
	f.store.patients[f.patient.ID] = f.patient
	f.appointment = f.newAppointment()
	f.therapist = f.addProfile(authorize.RoleTherapist, false)
	f.intern = f.addProfile(authorize.RoleIntern, true)
	f.coordinator = f.addProfile(authorize.RoleCoordinator, false)
	f.svc = New(f.store, f.events, nil)
	return f
}

func (f *fixture) create(t *testing.T, actor authorize.Actor, mode Mode) *repo.Evolution {
	t.Helper()
	e, err := f.svc.Create(context.Background(), actor, CreateRequest{
		AppointmentID: f.newAppointment().ID,
		PatientID:     f.patient.ID,
		Content:       "Sessão com boa adesão às atividades.",
		Mode:          mode,
	})
	require.NoError(t, err)
	return e
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	m, ok := fielderr.As(err)
	require.True(t, ok, "expected field errors, got %v", err)
	return m
}

func TestCreate_FinalizeWithoutSupervision(t *testing.T) {
	f := newFixture(t)

	e := f.create(t, f.therapist, ModeFinalize)

	assert.Equal(t, evo.StatusFinalized, e.Status)
	assert.NotNil(t, e.SignedAt)
	assert.Nil(t, e.CoSignature)
	require.Len(t, f.events.Events, 1)
	assert.Equal(t, events.EventFinalized, f.events.Events[0].Event)
	assert.Empty(t, f.store.notifications)
}

func TestCreate_FinalizeRequiresSupervision(t *testing.T) {
	f := newFixture(t)

	e := f.create(t, f.intern, ModeFinalize)

	assert.Equal(t, evo.StatusPendingSupervision, e.Status)
	assert.Nil(t, e.SignedAt)
	assert.Nil(t, e.CoSignature)

	require.Len(t, f.store.notifications, 1)
	n := f.store.notifications[0]
	assert.Equal(t, f.coordinator.UserID, n.UserID)
	assert.Equal(t, notification.TypeEvolutionPending, n.Type)
	assert.Equal(t, events.EventSubmitted, f.events.Events[0].Event)
}

func TestCreate_PendingNotifiesAdminsAndUnitCoordinators(t *testing.T) {
	f := newFixture(t)
	admin := uuid.New()
	f.store.profiles[admin] = &repo.Profile{ID: admin, Role: authorize.RoleAdmin, Status: entprofile.StatusActive}
	other := uuid.New()
	f.store.profiles[other] = &repo.Profile{ID: other, Role: authorize.RoleCoordinator, HomeUnitID: &other, Status: entprofile.StatusActive}
	f.store.profiles[f.addProfile(authorize.RoleCoordinator, false).UserID].Status = entprofile.StatusInactive

	f.create(t, f.intern, ModeFinalize)

	var notified []uuid.UUID
	for _, n := range f.store.notifications {
		notified = append(notified, n.UserID)
	}
	assert.ElementsMatch(t, []uuid.UUID{f.coordinator.UserID, admin}, notified)
}

func TestCreate_InappropriateBehaviorNeedsDescription(t *testing.T) {
	f := newFixture(t)
	req := CreateRequest{
		AppointmentID:         f.appointment.ID,
		PatientID:             f.patient.ID,
		InappropriateBehavior: true,
		Mode:                  ModeDraft,
	}

	_, err := f.svc.Create(context.Background(), f.intern, req)
	assert.Contains(t, fields(t, err), "behavior_description")
	assert.Empty(t, f.store.evolutions)

	req.BehaviorDescription = "Agitação motora ao final da sessão"
	e, err := f.svc.Create(context.Background(), f.intern, req)
	require.NoError(t, err)
	assert.Equal(t, evo.StatusDraft, e.Status)
	assert.Nil(t, e.SignedAt)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.therapist, CreateRequest{Mode: ModeFinalize})
	m := fields(t, err)
	assert.Contains(t, m, "appointment_id")
	assert.Contains(t, m, "patient_id")
	assert.Contains(t, m, "content")

	_, err = f.svc.Create(context.Background(), f.therapist, CreateRequest{
		AppointmentID: f.appointment.ID, PatientID: f.patient.ID, Mode: "publish",
	})
	assert.Contains(t, fields(t, err), "mode")
}

func TestCreate_AppointmentChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &repo.Appointment{ID: uuid.New(), UnitID: uuid.New(), PatientID: f.patient.ID}
	f.store.appointments[other.ID] = other
	_, err := f.svc.Create(ctx, f.therapist, CreateRequest{AppointmentID: other.ID, PatientID: f.patient.ID, Mode: ModeDraft})
	assert.Contains(t, fields(t, err), "appointment_id")

	_, err = f.svc.Create(ctx, f.therapist, CreateRequest{AppointmentID: f.appointment.ID, PatientID: uuid.New(), Mode: ModeDraft})
	assert.Contains(t, fields(t, err), "patient_id")

	req := CreateRequest{AppointmentID: f.appointment.ID, PatientID: f.patient.ID, Mode: ModeDraft}
	_, err = f.svc.Create(ctx, f.therapist, req)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.therapist, req)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreate_NoUnitOrPermission(t *testing.T) {
	f := newFixture(t)
	req := CreateRequest{AppointmentID: f.appointment.ID, PatientID: f.patient.ID, Mode: ModeDraft}

	noUnit := f.therapist
	noUnit.UnitID = nil
	_, err := f.svc.Create(context.Background(), noUnit, req)
	assert.Contains(t, fields(t, err), "unit_id")

	reception := f.addProfile(authorize.RoleReception, false)
	_, err = f.svc.Create(context.Background(), reception, req)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestApprove_FinalizesWithCoSignature(t *testing.T) {
	f := newFixture(t)
	pending := f.create(t, f.intern, ModeFinalize)

	e, err := f.svc.Approve(context.Background(), f.coordinator, pending.ID, pending.Version)
	require.NoError(t, err)

	assert.Equal(t, evo.StatusFinalized, e.Status)
	require.NotNil(t, e.SignedAt)
	require.NotNil(t, e.CoSignature)
	assert.Equal(t, f.coordinator.UserID, e.CoSignature.SupervisorID)
	assert.Equal(t, pending.Version+1, e.Version)

	stored := f.store.evolutions[e.ID]
	assert.Equal(t, evo.StatusFinalized, stored.Status)
	last := f.store.notifications[len(f.store.notifications)-1]
	assert.Equal(t, f.intern.UserID, last.UserID)
	assert.Equal(t, notification.TypeEvolutionApproved, last.Type)
}

func TestApprove_DeniedForNonSupervisors(t *testing.T) {
	f := newFixture(t)
	pending := f.create(t, f.intern, ModeFinalize)

	for _, role := range []authorize.Role{authorize.RoleTherapist, authorize.RoleIntern, authorize.RoleReception, authorize.RoleGuardian} {
		actor := f.addProfile(role, false)
		_, err := f.svc.Approve(context.Background(), actor, pending.ID, 0)
		assert.ErrorIs(t, err, ErrForbidden, role)
		_, err = f.svc.RequestRevision(context.Background(), actor, pending.ID, "mais detalhes", 0)
		assert.ErrorIs(t, err, ErrForbidden, role)
	}
	assert.Equal(t, evo.StatusPendingSupervision, f.store.evolutions[pending.ID].Status)
}

func TestApprove_SelfSupervision(t *testing.T) {
	f := newFixture(t)
	supervisedCoordinator := f.addProfile(authorize.RoleCoordinator, true)
	pending := f.create(t, supervisedCoordinator, ModeFinalize)
	require.Equal(t, evo.StatusPendingSupervision, pending.Status)

	_, err := f.svc.Approve(context.Background(), supervisedCoordinator, pending.ID, 0)
	assert.ErrorIs(t, err, ErrSelfSupervision)
	_, err = f.svc.RequestRevision(context.Background(), supervisedCoordinator, pending.ID, "ok", 0)
	assert.ErrorIs(t, err, ErrSelfSupervision)
}

func TestApprove_ConcurrentApprovers(t *testing.T) {
	f := newFixture(t)
	pending := f.create(t, f.intern, ModeFinalize)
	admin := f.addProfile(authorize.RoleAdmin, false)

	_, err := f.svc.Approve(context.Background(), f.coordinator, pending.ID, pending.Version)
	require.NoError(t, err)

	// The second approver read the same version.
	_, err = f.svc.Approve(context.Background(), admin, pending.ID, pending.Version)
	assert.Error(t, err)
	assert.Equal(t, f.coordinator.UserID, f.store.evolutions[pending.ID].CoSignature.SupervisorID)
}

func TestApprove_StaleVersion(t *testing.T) {
	f := newFixture(t)
	draft := f.create(t, f.intern, ModeDraft)
	_, err := f.svc.UpdateDraft(context.Background(), f.intern, draft.ID, UpdateRequest{Content: "texto", Mode: ModeFinalize})
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), f.coordinator, draft.ID, draft.Version)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestApprove_RollsBackWhenNotificationFails(t *testing.T) {
	f := newFixture(t)
	pending := f.create(t, f.intern, ModeFinalize)
	f.store.notifyErr = errors.New("db down")

	_, err := f.svc.Approve(context.Background(), f.coordinator, pending.ID, 0)
	require.Error(t, err)

	stored := f.store.evolutions[pending.ID]
	assert.Equal(t, evo.StatusPendingSupervision, stored.Status)
	assert.Nil(t, stored.CoSignature)
	assert.Equal(t, pending.Version, stored.Version)
}

func TestApprove_OnlyPending(t *testing.T) {
	f := newFixture(t)
	draft := f.create(t, f.intern, ModeDraft)

	_, err := f.svc.Approve(context.Background(), f.coordinator, draft.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRequestRevision_EmptyFeedbackLeavesRecord(t *testing.T) {
	f := newFixture(t)
	pending := f.create(t, f.intern, ModeFinalize)

	for _, fb := range []string{"", "   \n\t"} {
		_, err := f.svc.RequestRevision(context.Background(), f.coordinator, pending.ID, fb, 0)
		assert.Contains(t, fields(t, err), "feedback")
	}
	stored := f.store.evolutions[pending.ID]
	assert.Equal(t, evo.StatusPendingSupervision, stored.Status)
	assert.Equal(t, pending.Content, stored.Content)
	assert.Equal(t, pending.Version, stored.Version)
}

func TestRequestRevision_ReturnsToDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.create(t, f.intern, ModeFinalize)
	feedback := "add more detail on motor assessment"

	_, err := f.svc.RequestRevision(ctx, f.coordinator, pending.ID, "  "+feedback+" ", 0)
	require.NoError(t, err)

	seen, err := f.svc.Get(ctx, f.intern, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, evo.StatusDraft, seen.Status)
	assert.Contains(t, seen.Content, pending.Content)
	assert.Contains(t, seen.Content, feedback)
	require.NotNil(t, seen.RevisionFeedback)
	assert.Equal(t, feedback, *seen.RevisionFeedback)

	last := f.events.Events[len(f.events.Events)-1]
	assert.Equal(t, events.EventRevisionRequested, last.Event)
	assert.Contains(t, string(last.Data), feedback)

	// The author fixes the text and submits again.
	again, err := f.svc.UpdateDraft(ctx, f.intern, pending.ID, UpdateRequest{
		Content: seen.Content + "\nAvaliação motora detalhada.",
		Mode:    ModeFinalize,
		Version: seen.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, evo.StatusPendingSupervision, again.Status)
	assert.Nil(t, again.RevisionFeedback)
}

func TestUpdateDraft_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := f.create(t, f.therapist, ModeDraft)

	_, err := f.svc.UpdateDraft(ctx, f.coordinator, draft.ID, UpdateRequest{Content: "x", Mode: ModeDraft})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateDraft(ctx, f.therapist, draft.ID, UpdateRequest{Content: "x", Mode: ModeDraft, Version: 42})
	assert.ErrorIs(t, err, ErrConflict)

	pending := f.create(t, f.intern, ModeFinalize)
	_, err = f.svc.UpdateDraft(ctx, f.intern, pending.ID, UpdateRequest{Content: "x", Mode: ModeDraft})
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.create(t, f.therapist, ModeDraft)

	other := f.addProfile(authorize.RoleTherapist, false)
	_, err := f.svc.Get(ctx, other, e.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Get(ctx, f.coordinator, e.ID)
	assert.NoError(t, err)

	elsewhere := f.coordinator
	otherUnit := uuid.New()
	elsewhere.UnitID = &otherUnit
	_, err = f.svc.Get(ctx, elsewhere, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	guardian := f.addProfile(authorize.RoleGuardian, false)
	_, err = f.svc.Get(ctx, guardian, e.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestList_Scope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, f.therapist, ModeDraft)
	f.create(t, f.intern, ModeDraft)

	own, err := f.svc.List(ctx, f.therapist, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, own.Total)

	all, err := f.svc.List(ctx, f.coordinator, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	noUnit := f.coordinator
	noUnit.UnitID = nil
	empty, err := f.svc.List(ctx, noUnit, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.NotNil(t, empty.Data)

	_, err = f.svc.List(ctx, f.coordinator, ListFilter{Status: "archived"})
	assert.Contains(t, fields(t, err), "status")
}

func TestAddAddendum(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := f.create(t, f.therapist, ModeDraft)

	_, err := f.svc.AddAddendum(ctx, f.therapist, draft.ID, "complemento")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	final := f.create(t, f.therapist, ModeFinalize)
	before := *f.store.evolutions[final.ID]

	a, err := f.svc.AddAddendum(ctx, f.coordinator, final.ID, "  Família relatou melhora.  ")
	require.NoError(t, err)
	assert.Equal(t, "Família relatou melhora.", a.Content)

	addenda, err := f.svc.ListAddenda(ctx, f.therapist, final.ID)
	require.NoError(t, err)
	assert.Len(t, addenda, 1)
	assert.Equal(t, before, *f.store.evolutions[final.ID], "finalized record is never mutated")

	_, err = f.svc.AddAddendum(ctx, f.therapist, final.ID, " ")
	assert.Contains(t, fields(t, err), "content")
}

func TestAttachFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := f.create(t, f.therapist, ModeDraft)

	e, err := f.svc.AttachFile(ctx, f.therapist, draft.ID, "evolutions/a/b.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"evolutions/a/b.pdf"}, e.Attachments)

	e, err = f.svc.AttachFile(ctx, f.therapist, draft.ID, "evolutions/a/b.pdf")
	require.NoError(t, err)
	assert.Len(t, e.Attachments, 1)

	final := f.create(t, f.therapist, ModeFinalize)
	_, err = f.svc.AttachFile(ctx, f.therapist, final.ID, "k")
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestExportPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.create(t, f.intern, ModeFinalize)

	var buf bytes.Buffer
	err := f.svc.ExportPDF(ctx, f.intern, pending.ID, &buf)
	assert.ErrorIs(t, err, ErrNotFinalized)

	_, err = f.svc.Approve(ctx, f.coordinator, pending.ID, 0)
	require.NoError(t, err)
	_, err = f.svc.AddAddendum(ctx, f.intern, pending.ID, "Adendo pós-sessão")
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, f.svc.ExportPDF(ctx, f.intern, pending.ID, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	f.events.Err = errors.New("nats down")

	e := f.create(t, f.therapist, ModeFinalize)
	assert.Equal(t, evo.StatusFinalized, e.Status)
	assert.Contains(t, f.store.evolutions, e.ID)
}

func TestAppendFeedback(t *testing.T) {
	at := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "[Revisão solicitada em 04/03/2026 15:30 UTC]\nmais detalhes", appendFeedback("", "mais detalhes", at))
	assert.Equal(t, "relato\n\n[Revisão solicitada em 04/03/2026 15:30 UTC]\nmais detalhes", appendFeedback("relato\n", "mais detalhes", at))
}
