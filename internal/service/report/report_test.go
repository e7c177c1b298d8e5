package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	entappointment "github.com/equidadeplus/equidade_backend/internal/repo/appointment"
	entevolution "github.com/equidadeplus/equidade_backend/internal/repo/evolution"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

type fakeStore struct {
	appointments []*repo.Appointment
	patients     []*repo.Patient
	profiles     []*repo.Profile
	evolutions   map[string]int
	lastFilter   repo.AppointmentFilter
}

func (s *fakeStore) Appointments() Appointments { return fakeAppointments{s} }
func (s *fakeStore) Patients() Patients         { return fakePatients{s} }
func (s *fakeStore) Evolutions() Evolutions     { return fakeEvolutions{s} }
func (s *fakeStore) Profiles() Profiles         { return fakeProfiles{s} }

type fakeAppointments struct{ s *fakeStore }

func (r fakeAppointments) List(_ context.Context, f repo.AppointmentFilter) ([]*repo.Appointment, error) {
	r.s.lastFilter = f
	return r.s.appointments, nil
}

func (r fakeAppointments) CountByStatus(_ context.Context, f repo.AppointmentFilter) ([]repo.StatusCount, error) {
	r.s.lastFilter = f
	byStatus := map[string]int{}
	var order []string
	for _, a := range r.s.appointments {
		if _, ok := byStatus[string(a.Status)]; !ok {
			order = append(order, string(a.Status))
		}
		byStatus[string(a.Status)]++
	}
	var out []repo.StatusCount
	for _, st := range order {
		out = append(out, repo.StatusCount{Status: st, Count: byStatus[st]})
	}
	return out, nil
}

type fakePatients struct{ s *fakeStore }

func (r fakePatients) List(context.Context, repo.PatientFilter) ([]*repo.Patient, error) {
	return r.s.patients, nil
}

func (r fakePatients) Count(context.Context, repo.PatientFilter) (int, error) {
	return len(r.s.patients), nil
}

type fakeEvolutions struct{ s *fakeStore }

func (r fakeEvolutions) Count(_ context.Context, f repo.EvolutionFilter) (int, error) {
	if f.AwaitingRevision {
		return r.s.evolutions["revision"], nil
	}
	return r.s.evolutions[string(f.Status)], nil
}

type fakeProfiles struct{ s *fakeStore }

func (r fakeProfiles) GetMany(context.Context, []uuid.UUID) ([]*repo.Profile, error) {
	return r.s.profiles, nil
}

func newStore(unitID uuid.UUID) *fakeStore {
	patient := &repo.Patient{ID: uuid.New(), UnitID: unitID, FullName: "Ana Lima"}
	therapist := &repo.Profile{ID: uuid.New(), DisplayName: "Tiago"}
	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	appt := func(status entappointment.Status, day int) *repo.Appointment {
		s := start.AddDate(0, 0, day)
		return &repo.Appointment{
			ID: uuid.New(), UnitID: unitID, PatientID: patient.ID, TherapistID: therapist.ID,
			StartsAt: s, EndsAt: s.Add(50 * time.Minute), Status: status, Specialty: "ABA",
		}
	}
	return &fakeStore{
		appointments: []*repo.Appointment{
			appt(entappointment.StatusAttended, 0),
			appt(entappointment.StatusAttended, 1),
			appt(entappointment.StatusCompleted, 2),
			appt(entappointment.StatusNoShow, 3),
			appt(entappointment.StatusCancelled, 4),
			appt(entappointment.StatusScheduled, 5),
		},
		patients: []*repo.Patient{patient},
		profiles: []*repo.Profile{therapist},
		evolutions: map[string]int{
			string(entevolution.StatusPendingSupervision): 4,
			"revision": 1,
		},
	}
}

func TestDashboard(t *testing.T) {
	unitID := uuid.New()
	store := newStore(unitID)
	svc := New(store)
	coordinator := authorize.Actor{UserID: uuid.New(), Role: authorize.RoleCoordinator, UnitID: &unitID}
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	d, err := svc.Dashboard(context.Background(), coordinator, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, d.ActivePatients)
	assert.Equal(t, 6, d.AppointmentsTotal)
	assert.InDelta(t, 0.75, d.AttendanceRate, 1e-9)
	assert.Equal(t, 4, d.PendingSupervision)
	assert.Equal(t, 1, d.AwaitingRevision)
	assert.Equal(t, unitID, store.lastFilter.UnitID)
	require.NotNil(t, store.lastFilter.From)
	assert.Equal(t, from, *store.lastFilter.From)
}

func TestDashboard_NoUnit(t *testing.T) {
	svc := New(newStore(uuid.New()))
	d, err := svc.Dashboard(context.Background(), authorize.Actor{UserID: uuid.New(), Role: authorize.RoleAdmin}, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Nil(t, d.UnitID)
	assert.Zero(t, d.AppointmentsTotal)
	assert.NotNil(t, d.Appointments)
	assert.Equal(t, defaultPeriod, d.Period.To.Sub(d.Period.From))
}

func TestDashboard_Validation(t *testing.T) {
	unitID := uuid.New()
	svc := New(newStore(unitID))
	actor := authorize.Actor{UserID: uuid.New(), Role: authorize.RoleCoordinator, UnitID: &unitID}
	now := time.Now()

	_, err := svc.Dashboard(context.Background(), actor, now, now.Add(-time.Hour))
	var fe *fielderr.Error
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Fields, "to")

	_, err = svc.Dashboard(context.Background(), actor, now.AddDate(-2, 0, 0), now)
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Fields, "from")

	reception := authorize.Actor{UserID: uuid.New(), Role: authorize.RoleReception, UnitID: &unitID}
	_, err = svc.Dashboard(context.Background(), reception, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAttendance(t *testing.T) {
	total, rate := attendance(nil)
	assert.Zero(t, total)
	assert.Zero(t, rate)

	total, rate = attendance([]repo.StatusCount{{Status: "scheduled", Count: 3}})
	assert.Equal(t, 3, total)
	assert.Zero(t, rate, "nothing concluded yet")
}

func TestExportXLSX(t *testing.T) {
	unitID := uuid.New()
	svc := New(newStore(unitID))
	actor := authorize.Actor{UserID: uuid.New(), Role: authorize.RoleTherapist, UnitID: &unitID}
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportXLSX(context.Background(), actor, from, from.AddDate(0, 1, 0), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetAppointments, sheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(sheetAppointments)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, appointmentHeader, rows[0])
	assert.Equal(t, "Ana Lima", rows[1][2])
	assert.Equal(t, "Tiago", rows[1][3])
	assert.Equal(t, "02/03/2026 14:00", rows[1][0])

	v, err := f.GetCellValue(sheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestExportXLSX_NoUnit(t *testing.T) {
	svc := New(newStore(uuid.New()))
	err := svc.ExportXLSX(context.Background(), authorize.Actor{UserID: uuid.New(), Role: authorize.RoleAdmin}, time.Time{}, time.Time{}, &bytes.Buffer{})
	var fe *fielderr.Error
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Fields, "unit_id")
}
