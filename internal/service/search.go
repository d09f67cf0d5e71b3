package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/utafrali/shopfront/pkg/errors"

	"github.com/utafrali/shopfront/internal/catalog"
	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/repository"
)

// SearchService filters the catalog and records the search in session state.
type SearchService struct {
	repo    repository.StateRepository
	catalog *catalog.Service
	locks   *SessionLocks
	logger  *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(
	repo repository.StateRepository,
	cat *catalog.Service,
	locks *SessionLocks,
	logger *slog.Logger,
) *SearchService {
	return &SearchService{
		repo:    repo,
		catalog: cat,
		locks:   locks,
		logger:  logger,
	}
}

// Search returns catalog products matching the query and moves the session
// to the search results page, recording the query as the last search. A
// search never returns an empty list: a blank query or a query that matches
// nothing yields the full catalog.
func (s *SearchService) Search(ctx context.Context, sessionID, query string) ([]domain.Product, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	// A query of only whitespace is the same search as an empty one and is
	// recorded as such.
	query = strings.TrimSpace(query)

	results := Filter(s.catalog.All(), query)

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	state, err := s.getOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	state.CurrentPage = domain.PageSearchResults
	state.LastSearch = query
	state.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	s.logger.InfoContext(ctx, "search executed",
		slog.String("session_id", sessionID),
		slog.String("query", query),
		slog.Int("results", len(results)),
	)

	return results, nil
}

func (s *SearchService) getOrCreate(ctx context.Context, sessionID string) (*domain.CartState, error) {
	state, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCartState(sessionID), nil
		}
		return nil, fmt.Errorf("get state: %w", err)
	}
	return state, nil
}

// Filter returns the products matching the query, preserving catalog order.
// The match is case-insensitive: the whole query as a substring of the
// title or the product ID, or any single query word as a substring of the
// title. A blank query or one with no matches returns everything, so the
// shopper always has something to browse.
func Filter(products []domain.Product, query string) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products
	}

	words := strings.Fields(q)

	var matched []domain.Product
	for _, p := range products {
		title := strings.ToLower(p.Title)
		id := strings.ToLower(p.ID)

		if strings.Contains(title, q) || strings.Contains(id, q) {
			matched = append(matched, p)
			continue
		}

		for _, w := range words {
			if strings.Contains(title, w) {
				matched = append(matched, p)
				break
			}
		}
	}

	if len(matched) == 0 {
		return products
	}
	return matched
}
