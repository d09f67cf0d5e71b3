package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/shopfront/pkg/kafka"

	"github.com/utafrali/shopfront/internal/domain"
)

// Kafka topics for storefront domain events.
const (
	TopicCartUpdated       = "shopfront.cart.updated"
	TopicCartCleared       = "shopfront.cart.cleared"
	TopicCheckoutCompleted = "shopfront.checkout.completed"
)

const AggregateTypeCart = "cart"

const SourceShopfront = "shopfront"

// Publisher abstracts the Kafka producer so tests can capture events and
// the app can run with publishing disabled.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// CartLineData is the line payload within cart events.
type CartLineData struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string         `json:"session_id"`
	Lines     []CartLineData `json:"lines"`
	ItemCount int            `json:"item_count"`
	Subtotal  int64          `json:"subtotal"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// CheckoutCompletedData is the payload for a checkout.completed event.
// Subtotal is the amount captured before the cart was emptied.
type CheckoutCompletedData struct {
	SessionID string `json:"session_id"`
	Subtotal  int64  `json:"subtotal"`
	ItemCount int    `json:"item_count"`
}

// Producer publishes storefront domain events.
type Producer struct {
	pub    Publisher
	logger *slog.Logger
}

// NewProducer creates an event producer backed by the given publisher.
func NewProducer(pub Publisher, logger *slog.Logger) *Producer {
	return &Producer{pub: pub, logger: logger}
}

// NewDisabled creates a producer that drops all events. Used when no Kafka
// brokers are configured.
func NewDisabled(logger *slog.Logger) *Producer {
	return &Producer{pub: noopPublisher{}, logger: logger}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, *pkgkafka.Event) error { return nil }

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, state *domain.CartState) error {
	lines := make([]CartLineData, len(state.Lines))
	for i, line := range state.Lines {
		lines[i] = CartLineData{
			ProductID: line.ProductID,
			Title:     line.Title,
			Price:     line.Price,
			Quantity:  line.Quantity,
		}
	}

	data := CartUpdatedData{
		SessionID: state.SessionID,
		Lines:     lines,
		ItemCount: state.ItemCount(),
		Subtotal:  state.Subtotal(),
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, state.SessionID, AggregateTypeCart, SourceShopfront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.pub.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", state.SessionID),
		slog.Int("item_count", state.ItemCount()),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	data := CartClearedData{SessionID: sessionID}

	event, err := pkgkafka.NewEvent(TopicCartCleared, sessionID, AggregateTypeCart, SourceShopfront, data)
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.pub.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("session_id", sessionID),
	)

	return nil
}

// PublishCheckoutCompleted publishes a checkout.completed event.
func (p *Producer) PublishCheckoutCompleted(ctx context.Context, sessionID string, subtotal int64, itemCount int) error {
	data := CheckoutCompletedData{
		SessionID: sessionID,
		Subtotal:  subtotal,
		ItemCount: itemCount,
	}

	event, err := pkgkafka.NewEvent(TopicCheckoutCompleted, sessionID, AggregateTypeCart, SourceShopfront, data)
	if err != nil {
		return fmt.Errorf("create checkout.completed event: %w", err)
	}

	if err := p.pub.Publish(ctx, TopicCheckoutCompleted, event); err != nil {
		return fmt.Errorf("publish checkout.completed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published checkout.completed event",
		slog.String("session_id", sessionID),
		slog.Int64("subtotal", subtotal),
	)

	return nil
}
