package unit

import (
	"context"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
)

type Units interface {
	Create(ctx context.Context, u *repo.Unit) error
	Update(ctx context.Context, u *repo.Unit) error
	Get(ctx context.Context, id uuid.UUID) (*repo.Unit, error)
	List(ctx context.Context, onlyActive bool) ([]*repo.Unit, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID, onlyActive bool) ([]*repo.Unit, error)
}

type Memberships interface {
	Add(ctx context.Context, m *repo.Membership) error
	Remove(ctx context.Context, userID, unitID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*repo.Membership, error)
}

type Profiles interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Profile, error)
}

type Store interface {
	Units() Units
	Memberships() Memberships
	Profiles() Profiles
}

type repoStore struct {
	c *repo.Client
}

func NewStore(c *repo.Client) Store { return repoStore{c: c} }

func (s repoStore) Units() Units             { return s.c.Unit }
func (s repoStore) Memberships() Memberships { return s.c.Membership }
func (s repoStore) Profiles() Profiles       { return s.c.Profile }
