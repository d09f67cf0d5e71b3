package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	apperrors "github.com/utafrali/shopfront/pkg/errors"

	"github.com/utafrali/shopfront/internal/domain"
)

// StateRepository implements repository.StateRepository with an in-process
// map. It is the default store; state does not survive a restart.
type StateRepository struct {
	mu     sync.RWMutex
	states map[string][]byte
}

// NewStateRepository creates an empty in-memory state repository.
func NewStateRepository() *StateRepository {
	return &StateRepository{states: make(map[string][]byte)}
}

// Get retrieves the state for a session ID.
func (r *StateRepository) Get(_ context.Context, sessionID string) (*domain.CartState, error) {
	r.mu.RLock()
	data, ok := r.states[sessionID]
	r.mu.RUnlock()

	if !ok {
		return nil, apperrors.NotFound("session state", sessionID)
	}

	var state domain.CartState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}

	return &state, nil
}

// Save persists the state. The state is stored as a JSON snapshot so
// callers cannot mutate stored data through retained pointers.
func (r *StateRepository) Save(_ context.Context, state *domain.CartState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	r.mu.Lock()
	r.states[state.SessionID] = data
	r.mu.Unlock()

	return nil
}

// Delete removes the state for a session ID.
func (r *StateRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.states, sessionID)
	r.mu.Unlock()

	return nil
}
