package profile

import (
	"context"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	entprofile "github.com/equidadeplus/equidade_backend/internal/repo/profile"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

type Profiles interface {
	Create(ctx context.Context, p *repo.Profile) error
	Update(ctx context.Context, p *repo.Profile) error
	SetStatus(ctx context.Context, id uuid.UUID, status entprofile.Status) error
	Get(ctx context.Context, id uuid.UUID) (*repo.Profile, error)
	List(ctx context.Context, f repo.ProfileFilter) ([]*repo.Profile, error)
	Count(ctx context.Context, f repo.ProfileFilter) (int, error)
}

type Units interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Unit, error)
}

type Memberships interface {
	Add(ctx context.Context, m *repo.Membership) error
	SetRole(ctx context.Context, userID uuid.UUID, role authorize.Role) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*repo.Membership, error)
}

type Notifications interface {
	CreateBulk(ctx context.Context, ns ...*repo.Notification) error
}

type Store interface {
	Profiles() Profiles
	Units() Units
	Memberships() Memberships
	Notifications() Notifications
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type repoStore struct {
	c *repo.Client
}

func NewStore(c *repo.Client) Store { return repoStore{c: c} }

func (s repoStore) Profiles() Profiles           { return s.c.Profile }
func (s repoStore) Units() Units                 { return s.c.Unit }
func (s repoStore) Memberships() Memberships     { return s.c.Membership }
func (s repoStore) Notifications() Notifications { return s.c.Notification }

func (s repoStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.c.WithTx(ctx, func(tx *repo.Client) error { return fn(repoStore{c: tx}) })
}
