package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/shopfront/pkg/errors"
	pkgkafka "github.com/utafrali/shopfront/pkg/kafka"

	"github.com/utafrali/shopfront/internal/catalog"
	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/event"
	"github.com/utafrali/shopfront/internal/repository/memory"
)

// capturePublisher records every published event for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	topics []string
	events []*pkgkafka.Event
}

func (p *capturePublisher) Publish(_ context.Context, topic string, ev *pkgkafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

func newCartFixture(t *testing.T) (*CartService, *capturePublisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pub := &capturePublisher{}
	svc := NewCartService(
		memory.NewStateRepository(),
		catalog.NewService(catalog.SeedProducts()),
		event.NewProducer(pub, logger),
		NewSessionLocks(),
		logger,
	)
	return svc, pub
}

func TestCartService_Get_EmptySession(t *testing.T) {
	svc, _ := newCartFixture(t)

	state, err := svc.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, state.Lines)
	assert.Equal(t, domain.PageHome, state.CurrentPage)
	assert.Equal(t, int64(0), state.Subtotal())
}

func TestCartService_Get_MissingSessionID(t *testing.T) {
	svc, _ := newCartFixture(t)

	_, err := svc.Get(context.Background(), "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestCartService_AddProduct_SnapshotsTitleAndPrice(t *testing.T) {
	svc, _ := newCartFixture(t)

	state, err := svc.AddProduct(context.Background(), "sess-1", "laptop-2")
	require.NoError(t, err)

	require.Len(t, state.Lines, 1)
	line := state.Lines[0]
	assert.Equal(t, "laptop-2", line.ProductID)
	assert.Equal(t, "Gaming Laptop", line.Title)
	assert.Equal(t, int64(75000), line.Price)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, int64(75000), state.Subtotal())
}

func TestCartService_AddProduct_MergesExistingLine(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, "sess-1", "laptop-2")
	require.NoError(t, err)
	state, err := svc.AddProduct(ctx, "sess-1", "laptop-2")
	require.NoError(t, err)

	require.Len(t, state.Lines, 1)
	assert.Equal(t, 2, state.Lines[0].Quantity)
	assert.Equal(t, int64(150000), state.Subtotal())
}

func TestCartService_AddProduct_UnknownProduct(t *testing.T) {
	svc, _ := newCartFixture(t)

	_, err := svc.AddProduct(context.Background(), "sess-1", "no-such-product")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCartService_AddItem_Validation(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "", AddItemInput{ProductID: "laptop-1"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.AddItem(ctx, "sess-1", AddItemInput{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: "laptop-1", Quantity: -1})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: "laptop-1", Quantity: MaxQuantityPerLine + 1})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestCartService_AddItem_MergedQuantityCapped(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: "laptop-1", Quantity: MaxQuantityPerLine})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: "laptop-1", Quantity: 1})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestCartService_RemoveOne_Decrements(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: "phone-1", Quantity: 2})
	require.NoError(t, err)

	state, removed, err := svc.RemoveOne(ctx, "sess-1", "phone-1")
	require.NoError(t, err)
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 1, state.Lines[0].Quantity)
	require.NotNil(t, removed)
	assert.Equal(t, "Basic Phone", removed.Title)
}

func TestCartService_RemoveOne_DeletesLineAtZero(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, "sess-1", "phone-1")
	require.NoError(t, err)

	state, removed, err := svc.RemoveOne(ctx, "sess-1", "phone-1")
	require.NoError(t, err)
	assert.Empty(t, state.Lines)
	require.NotNil(t, removed)
	assert.Equal(t, 1, removed.Quantity)
}

func TestCartService_RemoveOne_AbsentProductIsNoop(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, "sess-1", "phone-1")
	require.NoError(t, err)

	state, removed, err := svc.RemoveOne(ctx, "sess-1", "tablet-1")
	require.NoError(t, err)
	require.Len(t, state.Lines, 1)
	assert.Equal(t, "phone-1", state.Lines[0].ProductID)
	assert.Nil(t, removed)
}

func TestCartService_RemoveAllOf_DeletesLineRegardlessOfQuantity(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: "laptop-2", Quantity: 5})
	require.NoError(t, err)

	state, removed, err := svc.RemoveAllOf(ctx, "sess-1", "laptop-2")
	require.NoError(t, err)
	assert.Empty(t, state.Lines)
	assert.Equal(t, int64(0), state.Subtotal())
	require.NotNil(t, removed)
	assert.Equal(t, 5, removed.Quantity)
}

func TestCartService_AddRemoveRoundTrip(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()

	const n = 4
	for i := 0; i < n; i++ {
		_, err := svc.AddProduct(ctx, "sess-1", "headphone-2")
		require.NoError(t, err)
	}
	for i := 0; i < n; i++ {
		_, _, err := svc.RemoveOne(ctx, "sess-1", "headphone-2")
		require.NoError(t, err)
	}

	state, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, state.Lines)
	assert.Equal(t, int64(0), state.Subtotal())
}

func TestCartService_Clear_KeepsPage(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, "sess-1", "laptop-1")
	require.NoError(t, err)

	state, err := svc.Clear(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, state.Lines)
	assert.Equal(t, domain.PageHome, state.CurrentPage)
}

func TestCartService_Checkout_CapturesSubtotalBeforeClearing(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: "laptop-2", Quantity: 2})
	require.NoError(t, err)

	result, err := svc.Checkout(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(150000), result.Subtotal)
	assert.Equal(t, 2, result.ItemCount)

	state, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, state.Lines)
	assert.Equal(t, domain.PageCheckoutSuccess, state.CurrentPage)
}

func TestCartService_Checkout_SecondCheckoutReturnsZero(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, "sess-1", "laptop-2")
	require.NoError(t, err)

	first, err := svc.Checkout(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(75000), first.Subtotal)

	second, err := svc.Checkout(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.Subtotal)
	assert.Equal(t, 0, second.ItemCount)
}

func TestCartService_PublishesEvents(t *testing.T) {
	svc, pub := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, "sess-1", "laptop-1")
	require.NoError(t, err)
	_, err = svc.Clear(ctx, "sess-1")
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, "sess-1")
	require.NoError(t, err)

	topics := pub.published()
	assert.Contains(t, topics, event.TopicCartUpdated)
	assert.Contains(t, topics, event.TopicCartCleared)
	assert.Contains(t, topics, event.TopicCheckoutCompleted)
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, "sess-a", "laptop-1")
	require.NoError(t, err)

	state, err := svc.Get(ctx, "sess-b")
	require.NoError(t, err)
	assert.Empty(t, state.Lines)
}

func TestCartService_ConcurrentAdds(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddProduct(ctx, "sess-1", "accessory-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, state.Lines, 1)
	assert.Equal(t, workers, state.Lines[0].Quantity)
}
