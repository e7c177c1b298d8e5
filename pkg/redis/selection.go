package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/equidadeplus/equidade_backend/pkg/constants"
)

// DefaultSelectionTTL keeps a unit choice for a working month of inactivity.
const DefaultSelectionTTL = 30 * 24 * time.Hour

// SelectionStore remembers which unit each user last switched to.
type SelectionStore struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

func NewSelectionStore(rdb goredis.Cmdable, ttl time.Duration) *SelectionStore {
	if ttl <= 0 {
		ttl = DefaultSelectionTTL
	}
	return &SelectionStore{rdb: rdb, ttl: ttl}
}

func selectionKey(userID uuid.UUID) string {
	return constants.UnitSelectionKeyPrefix + userID.String()
}

// Get returns the stored unit, or nil when nothing (or garbage) is stored.
func (s *SelectionStore) Get(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	v, err := s.rdb.Get(ctx, selectionKey(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get unit selection: %w", err)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, nil
	}
	return &id, nil
}

func (s *SelectionStore) Set(ctx context.Context, userID, unitID uuid.UUID) error {
	if err := s.rdb.Set(ctx, selectionKey(userID), unitID.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("set unit selection: %w", err)
	}
	return nil
}

func (s *SelectionStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.rdb.Del(ctx, selectionKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear unit selection: %w", err)
	}
	return nil
}
