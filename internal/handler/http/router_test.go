package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/shopfront/pkg/health"
	"github.com/utafrali/shopfront/pkg/logger"

	"github.com/utafrali/shopfront/internal/assistant"
	"github.com/utafrali/shopfront/internal/catalog"
	"github.com/utafrali/shopfront/internal/event"
	"github.com/utafrali/shopfront/internal/repository/memory"
	"github.com/utafrali/shopfront/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	log := logger.NewWithWriter("shopfront-test", "error", io.Discard)
	repo := memory.NewStateRepository()
	cat := catalog.NewService(catalog.SeedProducts())
	locks := service.NewSessionLocks()

	cartService := service.NewCartService(repo, cat, event.NewDisabled(log), locks, log)
	searchService := service.NewSearchService(repo, cat, locks, log)
	assistantService := service.NewAssistantService(cartService, searchService, cat, &assistant.StaticSummarizer{}, log)

	return NewRouter(cartService, searchService, assistantService, cat, health.NewHandler(), log, 1000, 1000, nil)
}

func doRequest(t *testing.T, router http.Handler, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code, envelope.Error.Message
}

type cartBody struct {
	SessionID   string `json:"session_id"`
	CurrentPage string `json:"current_page"`
	LastSearch  string `json:"last_search"`
	Subtotal    int64  `json:"subtotal"`
	ItemCount   int    `json:"item_count"`
	Lines       []struct {
		ProductID string `json:"product_id"`
		Title     string `json:"title"`
		Price     int64  `json:"price"`
		Quantity  int    `json:"quantity"`
	} `json:"lines"`
}

func TestRouter_SessionHeaderMintedAndEchoed(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	minted := rec.Header().Get("X-Session-ID")
	assert.NotEmpty(t, minted)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/cart", "session-42", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "session-42", rec.Header().Get("X-Session-ID"))

	var cart cartBody
	decodeData(t, rec, &cart)
	assert.Equal(t, "session-42", cart.SessionID)
	assert.Equal(t, "home", cart.CurrentPage)
	assert.Empty(t, cart.Lines)
}

func TestRouter_ListProducts(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Price int64  `json:"price"`
	}
	decodeData(t, rec, &products)
	require.Len(t, products, 14)
	assert.Equal(t, "laptop-1", products[0].ID)
	assert.Equal(t, "accessory-3", products[13].ID)
}

func TestRouter_GetProduct(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/laptop-2", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var product struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Price int64  `json:"price"`
	}
	decodeData(t, rec, &product)
	assert.Equal(t, "Gaming Laptop", product.Title)
	assert.Equal(t, int64(75000), product.Price)
}

func TestRouter_GetProduct_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/no-such-product", "s1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	code, _ := decodeError(t, rec)
	assert.Equal(t, "NOT_FOUND", code)
}

func TestRouter_CartFlow(t *testing.T) {
	router := newTestRouter(t)
	session := "cart-flow"

	// Add two gaming laptops.
	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", session,
		map[string]any{"product_id": "laptop-2", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	var cart cartBody
	decodeData(t, rec, &cart)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "Gaming Laptop", cart.Lines[0].Title)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, int64(150000), cart.Subtotal)
	assert.Equal(t, 2, cart.ItemCount)

	// Decrement one.
	rec = doRequest(t, router, http.MethodDelete, "/api/v1/cart/items/laptop-2", session, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &cart)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity)

	// Add a second product, then delete its whole line.
	rec = doRequest(t, router, http.MethodPost, "/api/v1/cart/items", session,
		map[string]any{"product_id": "phone-1", "quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/cart/items/phone-1?all=true", session, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &cart)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "laptop-2", cart.Lines[0].ProductID)

	// Clear.
	rec = doRequest(t, router, http.MethodDelete, "/api/v1/cart", session, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Lines)
	assert.Zero(t, cart.Subtotal)
}

func TestRouter_Checkout(t *testing.T) {
	router := newTestRouter(t)
	session := "checkout-flow"

	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", session,
		map[string]any{"product_id": "tablet-1", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/cart/checkout", session, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Subtotal  int64 `json:"subtotal"`
		ItemCount int   `json:"item_count"`
	}
	decodeData(t, rec, &result)
	assert.Equal(t, int64(50000), result.Subtotal)
	assert.Equal(t, 2, result.ItemCount)

	// The cart is emptied and the session lands on the confirmation page.
	rec = doRequest(t, router, http.MethodGet, "/api/v1/cart", session, nil)
	var cart cartBody
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, "checkout_success", cart.CurrentPage)

	// A second checkout has nothing left to total.
	rec = doRequest(t, router, http.MethodPost, "/api/v1/cart/checkout", session, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &result)
	assert.Zero(t, result.Subtotal)
	assert.Zero(t, result.ItemCount)
}

func TestRouter_AddItem_ValidationError(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		map[string]any{"quantity": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	code, _ := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", code)
}

func TestRouter_AddItem_UnknownProduct(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		map[string]any{"product_id": "ghost-9"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ContentTypeEnforced(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader([]byte(`{"product_id":"laptop-1"}`)))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-Session-ID", "s1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_Search(t *testing.T) {
	router := newTestRouter(t)
	session := "search-flow"

	rec := doRequest(t, router, http.MethodGet, "/api/v1/search?q=gaming", session, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Query    string `json:"query"`
		Count    int    `json:"count"`
		Products []struct {
			ID string `json:"id"`
		} `json:"products"`
	}
	decodeData(t, rec, &result)
	assert.Equal(t, "gaming", result.Query)
	assert.Equal(t, 1, result.Count)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "laptop-2", result.Products[0].ID)

	// The query is recorded on the session state.
	rec = doRequest(t, router, http.MethodGet, "/api/v1/cart", session, nil)
	var cart cartBody
	decodeData(t, rec, &cart)
	assert.Equal(t, "search_results", cart.CurrentPage)
	assert.Equal(t, "gaming", cart.LastSearch)
}

func TestRouter_Search_NoMatchReturnsFullCatalog(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/search?q=zzzzzz", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Count int `json:"count"`
	}
	decodeData(t, rec, &result)
	assert.Equal(t, 14, result.Count)
}

func TestRouter_AssistantMessage(t *testing.T) {
	router := newTestRouter(t)
	session := "assistant-flow"

	rec := doRequest(t, router, http.MethodPost, "/api/v1/assistant/message", session,
		map[string]any{"message": "buy gaming"})
	require.Equal(t, http.StatusOK, rec.Code)

	var reply struct {
		Message   string `json:"message"`
		Action    string `json:"action"`
		CartCount int    `json:"cart_count"`
	}
	decodeData(t, rec, &reply)
	assert.Equal(t, "add_to_cart", reply.Action)
	assert.Contains(t, reply.Message, "Added Gaming Laptop to your cart!")
	assert.Equal(t, 1, reply.CartCount)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/assistant/message", session,
		map[string]any{"message": "remove gaming laptop completely"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &reply)
	assert.Equal(t, "remove_all", reply.Action)
	assert.Contains(t, reply.Message, "Completely removed Gaming Laptop from your cart!")
	assert.Zero(t, reply.CartCount)
}

func TestRouter_AssistantMessage_FallsBackToSearch(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/assistant/message", "s1",
		map[string]any{"message": "tell me a joke"})
	require.Equal(t, http.StatusOK, rec.Code)

	var reply struct {
		Action string `json:"action"`
	}
	decodeData(t, rec, &reply)
	assert.Equal(t, "search", reply.Action)
}

func TestRouter_AssistantMessage_Validation(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/assistant/message", "s1",
		map[string]any{"message": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	code, _ := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", code)
}

func TestRouter_HealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_PprofDeniedByDefault(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/debug/pprof/cmdline", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
