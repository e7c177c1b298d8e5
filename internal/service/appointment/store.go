package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	entappointment "github.com/equidadeplus/equidade_backend/internal/repo/appointment"
)

type Appointments interface {
	Create(ctx context.Context, a *repo.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*repo.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entappointment.Status) error
	List(ctx context.Context, f repo.AppointmentFilter) ([]*repo.Appointment, error)
	Count(ctx context.Context, f repo.AppointmentFilter) (int, error)
	HasOverlap(ctx context.Context, therapistID uuid.UUID, start, end time.Time, exclude uuid.UUID) (bool, error)
}

type Patients interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Patient, error)
	PatientIDsForGuardian(ctx context.Context, guardianID uuid.UUID) ([]uuid.UUID, error)
}

type Profiles interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Profile, error)
}

type Memberships interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*repo.Membership, error)
}

type Notifications interface {
	CreateBulk(ctx context.Context, ns ...*repo.Notification) error
}

type Store interface {
	Appointments() Appointments
	Patients() Patients
	Profiles() Profiles
	Memberships() Memberships
	Notifications() Notifications
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type repoStore struct {
	c *repo.Client
}

func NewStore(c *repo.Client) Store { return repoStore{c: c} }

func (s repoStore) Appointments() Appointments   { return s.c.Appointment }
func (s repoStore) Patients() Patients           { return s.c.Patient }
func (s repoStore) Profiles() Profiles           { return s.c.Profile }
func (s repoStore) Memberships() Memberships     { return s.c.Membership }
func (s repoStore) Notifications() Notifications { return s.c.Notification }

func (s repoStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.c.WithTx(ctx, func(tx *repo.Client) error { return fn(repoStore{c: tx}) })
}
