package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/utafrali/shopfront/pkg/errors"

	"github.com/utafrali/shopfront/internal/assistant"
	"github.com/utafrali/shopfront/internal/catalog"
	"github.com/utafrali/shopfront/internal/domain"
)

// Reply is the assistant's answer to one utterance.
type Reply struct {
	Message   string        `json:"message"`
	Action    domain.Action `json:"action"`
	CartCount int           `json:"cart_count"`
}

// AssistantService interprets chat utterances and executes the resolved
// intent against the cart. The intent is always decided by the local rule
// cascade; the summarizer only rephrases the reply and fails open to the
// locally built message.
type AssistantService struct {
	cart       *CartService
	search     *SearchService
	catalog    *catalog.Service
	summarizer assistant.Summarizer
	logger     *slog.Logger
}

// NewAssistantService creates a new assistant service.
func NewAssistantService(
	cart *CartService,
	search *SearchService,
	cat *catalog.Service,
	summarizer assistant.Summarizer,
	logger *slog.Logger,
) *AssistantService {
	return &AssistantService{
		cart:       cart,
		search:     search,
		catalog:    cat,
		summarizer: summarizer,
		logger:     logger,
	}
}

// HandleMessage runs one utterance through interpret-then-execute and
// returns the reply message plus the updated cart item count.
func (s *AssistantService) HandleMessage(ctx context.Context, sessionID, utterance string) (*Reply, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if strings.TrimSpace(utterance) == "" {
		return nil, apperrors.InvalidInput("message is required")
	}

	state, err := s.cart.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	intent := assistant.Interpret(utterance, state.Lines, s.catalog.All())

	s.logger.InfoContext(ctx, "utterance interpreted",
		slog.String("session_id", sessionID),
		slog.String("action", string(intent.Action)),
		slog.String("product_id", intent.ProductID),
	)

	message, state, err := s.execute(ctx, sessionID, state, intent)
	if err != nil {
		return nil, err
	}

	phrased, err := s.summarizer.Summarize(ctx, assistant.PhrasingContext{
		Utterance: utterance,
		Action:    intent.Action,
		Message:   message,
		CartCount: state.ItemCount(),
	})
	if err != nil {
		// Phrasing is cosmetic; keep the local message.
		phrased = message
	}

	return &Reply{
		Message:   phrased,
		Action:    intent.Action,
		CartCount: state.ItemCount(),
	}, nil
}

// execute applies the intent and returns the reply message plus the state
// the reply should be based on.
func (s *AssistantService) execute(ctx context.Context, sessionID string, state *domain.CartState, intent domain.Intent) (string, *domain.CartState, error) {
	switch intent.Action {
	case domain.ActionAddToCart:
		updated, err := s.cart.AddProduct(ctx, sessionID, intent.ProductID)
		if err != nil {
			return "", nil, err
		}
		product, err := s.catalog.ByID(intent.ProductID)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("Added %s to your cart!", product.Title), updated, nil

	case domain.ActionRemoveOne, domain.ActionRemoveAll:
		var updated *domain.CartState
		var removed *domain.CartLine
		var err error
		if intent.Action == domain.ActionRemoveAll {
			updated, removed, err = s.cart.RemoveAllOf(ctx, sessionID, intent.ProductID)
		} else {
			updated, removed, err = s.cart.RemoveOne(ctx, sessionID, intent.ProductID)
		}
		if err != nil {
			return "", nil, err
		}
		if removed == nil {
			// Resolved against an older snapshot; the line was gone by the
			// time the cart was locked.
			return "That item is not in your cart.", updated, nil
		}

		if intent.Action == domain.ActionRemoveAll {
			return fmt.Sprintf("Completely removed %s from your cart!", removed.Title), updated, nil
		}
		return fmt.Sprintf("Removed one %s from your cart!", removed.Title), updated, nil

	case domain.ActionViewCart:
		return viewCartMessage(intent.Prompt, state), state, nil

	case domain.ActionClearCart:
		updated, err := s.cart.Clear(ctx, sessionID)
		if err != nil {
			return "", nil, err
		}
		return "Cart cleared successfully!", updated, nil

	case domain.ActionSearch:
		results, err := s.search.Search(ctx, sessionID, intent.Query)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("Found %d products for %q.", len(results), intent.Query), state, nil

	default:
		return "I'm not sure what you meant. Try \"add gaming laptop\" or \"show my cart\".", state, nil
	}
}

// viewCartMessage renders the cart as one line per item plus the subtotal.
func viewCartMessage(prompt string, state *domain.CartState) string {
	if len(state.Lines) == 0 {
		if prompt == assistant.PromptNothingToRemove {
			return prompt
		}
		return "Your cart is empty."
	}

	var b strings.Builder
	if prompt != "" {
		b.WriteString(prompt)
		b.WriteString("\n")
	}
	for _, line := range state.Lines {
		fmt.Fprintf(&b, "%s (%d) × %d\n", line.Title, line.Price, line.Quantity)
	}
	fmt.Fprintf(&b, "Subtotal: %d", state.Subtotal())
	return b.String()
}
