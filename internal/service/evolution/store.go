package evolution

import (
	"context"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
)

type Evolutions interface {
	Create(ctx context.Context, e *repo.Evolution) error
	Update(ctx context.Context, e *repo.Evolution, expectedVersion int) error
	Get(ctx context.Context, id uuid.UUID) (*repo.Evolution, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*repo.Evolution, error)
	List(ctx context.Context, f repo.EvolutionFilter) ([]*repo.Evolution, error)
	Count(ctx context.Context, f repo.EvolutionFilter) (int, error)
	CreateAddendum(ctx context.Context, a *repo.Addendum) error
	ListAddenda(ctx context.Context, evolutionID uuid.UUID) ([]*repo.Addendum, error)
}

type Appointments interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Appointment, error)
}

type Profiles interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Profile, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]*repo.Profile, error)
	ListSupervisors(ctx context.Context, unitID uuid.UUID) ([]*repo.Profile, error)
}

type Patients interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Patient, error)
}

type Notifications interface {
	CreateBulk(ctx context.Context, ns ...*repo.Notification) error
}

// Store groups the tables the workflow touches. WithTx hands fn a Store
// whose writes commit or roll back together.
type Store interface {
	Evolutions() Evolutions
	Appointments() Appointments
	Profiles() Profiles
	Patients() Patients
	Notifications() Notifications
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type repoStore struct {
	c *repo.Client
}

// NewStore adapts the repository client.
func NewStore(c *repo.Client) Store { return repoStore{c: c} }

func (s repoStore) Evolutions() Evolutions       { return s.c.Evolution }
func (s repoStore) Appointments() Appointments   { return s.c.Appointment }
func (s repoStore) Profiles() Profiles           { return s.c.Profile }
func (s repoStore) Patients() Patients           { return s.c.Patient }
func (s repoStore) Notifications() Notifications { return s.c.Notification }

func (s repoStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.c.WithTx(ctx, func(tx *repo.Client) error {
		return fn(repoStore{c: tx})
	})
}
