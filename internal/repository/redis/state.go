package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/utafrali/shopfront/pkg/errors"

	"github.com/utafrali/shopfront/internal/domain"
)

const keyPrefix = "session:"

// StateRepository implements repository.StateRepository using Redis. Each
// session's state is a single JSON blob with a sliding TTL.
type StateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStateRepository creates a Redis-backed state repository.
func NewStateRepository(client *redis.Client, ttl time.Duration) *StateRepository {
	return &StateRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the state for a session ID.
func (r *StateRepository) Get(ctx context.Context, sessionID string) (*domain.CartState, error) {
	key := keyPrefix + sessionID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("session state", sessionID)
		}
		return nil, fmt.Errorf("redis get state: %w", err)
	}

	var state domain.CartState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}

	return &state, nil
}

// Save persists the state with the configured TTL.
func (r *StateRepository) Save(ctx context.Context, state *domain.CartState) error {
	key := keyPrefix + state.SessionID

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set state: %w", err)
	}

	return nil
}

// Delete removes the state for a session ID.
func (r *StateRepository) Delete(ctx context.Context, sessionID string) error {
	key := keyPrefix + sessionID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del state: %w", err)
	}

	return nil
}
