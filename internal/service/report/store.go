package report

import (
	"context"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
)

type Appointments interface {
	List(ctx context.Context, f repo.AppointmentFilter) ([]*repo.Appointment, error)
	CountByStatus(ctx context.Context, f repo.AppointmentFilter) ([]repo.StatusCount, error)
}

type Patients interface {
	List(ctx context.Context, f repo.PatientFilter) ([]*repo.Patient, error)
	Count(ctx context.Context, f repo.PatientFilter) (int, error)
}

type Evolutions interface {
	Count(ctx context.Context, f repo.EvolutionFilter) (int, error)
}

type Profiles interface {
	GetMany(ctx context.Context, ids []uuid.UUID) ([]*repo.Profile, error)
}

type Store interface {
	Appointments() Appointments
	Patients() Patients
	Evolutions() Evolutions
	Profiles() Profiles
}

type repoStore struct {
	c *repo.Client
}

func NewStore(c *repo.Client) Store { return repoStore{c: c} }

func (s repoStore) Appointments() Appointments { return s.c.Appointment }
func (s repoStore) Patients() Patients         { return s.c.Patient }
func (s repoStore) Evolutions() Evolutions     { return s.c.Evolution }
func (s repoStore) Profiles() Profiles         { return s.c.Profile }
