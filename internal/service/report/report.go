// Package report aggregates per-unit activity for the dashboard and the
// spreadsheet export.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	entappointment "github.com/equidadeplus/equidade_backend/internal/repo/appointment"
	entevolution "github.com/equidadeplus/equidade_backend/internal/repo/evolution"
	entpatient "github.com/equidadeplus/equidade_backend/internal/repo/patient"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

const (
	defaultPeriod = 30 * 24 * time.Hour
	maxPeriod     = 366 * 24 * time.Hour
	maxExportRows = 10000
)

type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type Dashboard struct {
	UnitID             *uuid.UUID         `json:"unit_id"`
	Period             Period             `json:"period"`
	ActivePatients     int                `json:"active_patients"`
	Appointments       []repo.StatusCount `json:"appointments"`
	AppointmentsTotal  int                `json:"appointments_total"`
	AttendanceRate     float64            `json:"attendance_rate"`
	PendingSupervision int                `json:"pending_supervision"`
	AwaitingRevision   int                `json:"awaiting_revision"`
}

type Service interface {
	Dashboard(ctx context.Context, actor authorize.Actor, from, to time.Time) (*Dashboard, error)
	// ExportXLSX writes the appointments of the period and the dashboard
	// summary as a two-sheet workbook.
	ExportXLSX(ctx context.Context, actor authorize.Actor, from, to time.Time, w io.Writer) error
}

type service struct {
	store Store
	now   func() time.Time
}

func New(store Store) Service {
	return &service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) Dashboard(ctx context.Context, actor authorize.Actor, from, to time.Time) (*Dashboard, error) {
	p, err := s.period(from, to)
	if err != nil {
		return nil, err
	}
	if !actor.Can(authorize.ResourceReports, authorize.ActionView) {
		return nil, ErrForbidden
	}
	d := &Dashboard{Period: p, Appointments: []repo.StatusCount{}}
	if !actor.HasUnit() {
		return d, nil
	}
	unitID := actor.Unit()
	d.UnitID = &unitID

	if d.ActivePatients, err = s.store.Patients().Count(ctx, repo.PatientFilter{
		UnitID: unitID,
		Status: entpatient.StatusActive,
	}); err != nil {
		return nil, err
	}

	counts, err := s.store.Appointments().CountByStatus(ctx, repo.AppointmentFilter{
		UnitID: unitID,
		From:   &p.From,
		To:     &p.To,
	})
	if err != nil {
		return nil, err
	}
	if counts != nil {
		d.Appointments = counts
	}
	d.AppointmentsTotal, d.AttendanceRate = attendance(counts)

	if d.PendingSupervision, err = s.store.Evolutions().Count(ctx, repo.EvolutionFilter{
		UnitID: unitID,
		Status: entevolution.StatusPendingSupervision,
	}); err != nil {
		return nil, err
	}
	if d.AwaitingRevision, err = s.store.Evolutions().Count(ctx, repo.EvolutionFilter{
		UnitID:           unitID,
		AwaitingRevision: true,
	}); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) ExportXLSX(ctx context.Context, actor authorize.Actor, from, to time.Time, w io.Writer) error {
	d, err := s.Dashboard(ctx, actor, from, to)
	if err != nil {
		return err
	}
	if d.UnitID == nil {
		return fielderr.Single("unit_id", "select a unit first")
	}

	rows, err := s.store.Appointments().List(ctx, repo.AppointmentFilter{
		UnitID: *d.UnitID,
		From:   &d.Period.From,
		To:     &d.Period.To,
		Limit:  maxExportRows,
	})
	if err != nil {
		return err
	}
	names, err := s.names(ctx, *d.UnitID, rows)
	if err != nil {
		return err
	}
	return writeWorkbook(w, d, rows, names)
}

// names resolves patient and therapist display names for the export.
func (s *service) names(ctx context.Context, unitID uuid.UUID, rows []*repo.Appointment) (map[uuid.UUID]string, error) {
	out := map[uuid.UUID]string{}
	if len(rows) == 0 {
		return out, nil
	}
	var patientIDs, profileIDs []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, a := range rows {
		if !seen[a.PatientID] {
			seen[a.PatientID] = true
			patientIDs = append(patientIDs, a.PatientID)
		}
		if !seen[a.TherapistID] {
			seen[a.TherapistID] = true
			profileIDs = append(profileIDs, a.TherapistID)
		}
	}
	patients, err := s.store.Patients().List(ctx, repo.PatientFilter{UnitID: unitID, IDs: patientIDs, Limit: len(patientIDs)})
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	for _, p := range patients {
		out[p.ID] = p.FullName
	}
	profiles, err := s.store.Profiles().GetMany(ctx, profileIDs)
	if err != nil {
		return nil, fmt.Errorf("load therapists: %w", err)
	}
	for _, p := range profiles {
		out[p.ID] = p.DisplayName
	}
	return out, nil
}

func (s *service) period(from, to time.Time) (Period, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-defaultPeriod)
	}
	from, to = from.UTC(), to.UTC()
	fe := fielderr.New()
	if !to.After(from) {
		fe.Add("to", "must be after from")
	} else if to.Sub(from) > maxPeriod {
		fe.Add("from", "period cannot exceed one year")
	}
	return Period{From: from, To: to}, fe.Err()
}

// attendance returns the total and the share of concluded sessions the
// patient showed up to. Sessions still ahead or cancelled do not count.
func attendance(counts []repo.StatusCount) (int, float64) {
	var total, showed, missed int
	for _, c := range counts {
		total += c.Count
		switch entappointment.Status(c.Status) {
		case entappointment.StatusAttended, entappointment.StatusCompleted:
			showed += c.Count
		case entappointment.StatusNoShow:
			missed += c.Count
		}
	}
	if showed+missed == 0 {
		return total, 0
	}
	return total, float64(showed) / float64(showed+missed)
}
