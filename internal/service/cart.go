package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/utafrali/shopfront/pkg/errors"

	"github.com/utafrali/shopfront/internal/catalog"
	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/event"
	"github.com/utafrali/shopfront/internal/repository"
)

// Cart operation upper-bound limits.
const (
	// MaxQuantityPerLine is the maximum quantity allowed for a single cart line.
	MaxQuantityPerLine = 100
	// MaxLinesPerCart is the maximum number of distinct lines allowed in a cart.
	MaxLinesPerCart = 50
)

// AddItemInput holds the parameters for adding a product to the cart.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=100"`
}

// CheckoutResult is what a completed checkout returns. Subtotal is captured
// before the cart is emptied; checking out an already empty cart yields 0.
type CheckoutResult struct {
	Subtotal  int64 `json:"subtotal"`
	ItemCount int   `json:"item_count"`
}

// CartService implements the business logic for session cart operations.
// Every mutation runs under the session lock: load state, apply the change,
// save, then publish the matching event.
type CartService struct {
	repo     repository.StateRepository
	catalog  *catalog.Service
	producer *event.Producer
	locks    *SessionLocks
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	repo repository.StateRepository,
	cat *catalog.Service,
	producer *event.Producer,
	locks *SessionLocks,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		repo:     repo,
		catalog:  cat,
		producer: producer,
		locks:    locks,
		logger:   logger,
	}
}

// Get retrieves the state for a session. A session with no stored state
// gets a fresh empty cart on the home page.
func (s *CartService) Get(ctx context.Context, sessionID string) (*domain.CartState, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	state, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCartState(sessionID), nil
		}
		return nil, fmt.Errorf("get state: %w", err)
	}

	return state, nil
}

// AddProduct adds one unit of the given catalog product to the cart.
func (s *CartService) AddProduct(ctx context.Context, sessionID, productID string) (*domain.CartState, error) {
	return s.AddItem(ctx, sessionID, AddItemInput{ProductID: productID, Quantity: 1})
}

// AddItem adds a catalog product to the cart. An existing line for the same
// product is merged by increasing quantity and keeps its original title and
// price snapshot; a new line snapshots the product's current title and price.
// A zero quantity defaults to 1.
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*domain.CartState, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	if input.Quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}
	qty := input.Quantity
	if qty == 0 {
		qty = 1
	}

	product, err := s.catalog.ByID(input.ProductID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if i := state.FindLineIndex(product.ID); i >= 0 {
		newQty := state.Lines[i].Quantity + qty
		if newQty > MaxQuantityPerLine {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerLine))
		}
		state.Lines[i].Quantity = newQty
	} else {
		if len(state.Lines) >= MaxLinesPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d lines", MaxLinesPerCart))
		}
		state.Lines = append(state.Lines, domain.CartLine{
			ProductID: product.ID,
			Title:     product.Title,
			Price:     product.Price,
			Quantity:  qty,
		})
	}

	if err := s.save(ctx, state); err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, state)

	s.logger.InfoContext(ctx, "product added to cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", product.ID),
		slog.Int("quantity", qty),
	)

	return state, nil
}

// RemoveOne decrements the quantity of the given product by one. A line
// reaching zero is deleted. Removing a product that is not in the cart is
// a no-op, not an error; the returned line is nil in that case and a copy
// of the affected line before the mutation otherwise.
func (s *CartService) RemoveOne(ctx context.Context, sessionID, productID string) (*domain.CartState, *domain.CartLine, error) {
	return s.remove(ctx, sessionID, productID, false)
}

// RemoveAllOf deletes the entire line for the given product regardless of
// quantity. Absent products are a no-op, reported by a nil returned line.
func (s *CartService) RemoveAllOf(ctx context.Context, sessionID, productID string) (*domain.CartState, *domain.CartLine, error) {
	return s.remove(ctx, sessionID, productID, true)
}

func (s *CartService) remove(ctx context.Context, sessionID, productID string, all bool) (*domain.CartState, *domain.CartLine, error) {
	if sessionID == "" {
		return nil, nil, apperrors.InvalidInput("session id is required")
	}
	if productID == "" {
		return nil, nil, apperrors.InvalidInput("product id is required")
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	// The presence check happens here, under the session lock, so callers
	// get an answer consistent with the mutation they asked for.
	i := state.FindLineIndex(productID)
	if i < 0 {
		return state, nil, nil
	}
	removed := state.Lines[i]

	if all || state.Lines[i].Quantity <= 1 {
		state.Lines = append(state.Lines[:i], state.Lines[i+1:]...)
	} else {
		state.Lines[i].Quantity--
	}

	if err := s.save(ctx, state); err != nil {
		return nil, nil, err
	}

	s.publishUpdated(ctx, state)

	s.logger.InfoContext(ctx, "product removed from cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
		slog.Bool("all", all),
	)

	return state, &removed, nil
}

// Clear empties the cart. The current page and last search are untouched.
func (s *CartService) Clear(ctx context.Context, sessionID string) (*domain.CartState, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	state.Lines = []domain.CartLine{}

	if err := s.save(ctx, state); err != nil {
		return nil, err
	}

	if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sessionID),
	)

	return state, nil
}

// Checkout captures the subtotal, empties the cart, and moves the session to
// the checkout success page. Checking out an empty cart succeeds with a zero
// subtotal, so a repeated checkout cannot double-charge.
func (s *CartService) Checkout(ctx context.Context, sessionID string) (*CheckoutResult, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Capture before clearing: the order total is what was in the cart at
	// the moment of checkout.
	result := &CheckoutResult{
		Subtotal:  state.Subtotal(),
		ItemCount: state.ItemCount(),
	}

	state.Lines = []domain.CartLine{}
	state.CurrentPage = domain.PageCheckoutSuccess

	if err := s.save(ctx, state); err != nil {
		return nil, err
	}

	if err := s.producer.PublishCheckoutCompleted(ctx, sessionID, result.Subtotal, result.ItemCount); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout.completed event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("session_id", sessionID),
		slog.Int64("subtotal", result.Subtotal),
		slog.Int("item_count", result.ItemCount),
	)

	return result, nil
}

func (s *CartService) save(ctx context.Context, state *domain.CartState) error {
	state.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *CartService) publishUpdated(ctx context.Context, state *domain.CartState) {
	if err := s.producer.PublishCartUpdated(ctx, state); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", state.SessionID),
			slog.String("error", err.Error()),
		)
	}
}
