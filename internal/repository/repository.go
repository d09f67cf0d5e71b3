package repository

import (
	"context"

	"github.com/utafrali/shopfront/internal/domain"
)

// StateRepository defines persistence for per-session storefront state.
type StateRepository interface {
	// Get retrieves the state for a session ID.
	Get(ctx context.Context, sessionID string) (*domain.CartState, error)

	// Save persists the state, overwriting any existing state for the session.
	Save(ctx context.Context, state *domain.CartState) error

	// Delete removes the state for a session ID.
	Delete(ctx context.Context, sessionID string) error
}
