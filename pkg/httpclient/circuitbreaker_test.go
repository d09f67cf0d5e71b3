package httpclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreakerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBreakerClient(name string, failureRatio float64, minRequests uint32) *CircuitBreakerClient {
	client := New(Config{
		Timeout:         2 * time.Second,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    time.Millisecond,
		MaxConnsPerHost: 10,
	})
	cfg := CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: failureRatio,
		MinRequests:  minRequests,
	}
	return NewCircuitBreakerClient(client, cfg, testBreakerLogger())
}

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	cb := newTestBreakerClient("test-pass", 0.5, 5)

	resp, err := cb.Post(context.Background(), server.URL, "text/plain", strings.NewReader("hi"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cb := newTestBreakerClient("test-open", 0.5, 2)

	for i := 0; i < 3; i++ {
		_, _ = cb.Post(context.Background(), server.URL, "text/plain", strings.NewReader("x"))
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestCircuitBreaker_FallbackWhenOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cb := newTestBreakerClient("test-fallback", 0.5, 2).WithFallback(
		func(ctx context.Context, err error) (*http.Response, error) {
			rec := httptest.NewRecorder()
			rec.WriteString("fallback body")
			return rec.Result(), nil
		},
	)

	// Trip the breaker.
	for i := 0; i < 3; i++ {
		_, _ = cb.Post(context.Background(), server.URL, "text/plain", strings.NewReader("x"))
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	resp, err := cb.Post(context.Background(), server.URL, "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "fallback body", string(body))
}

func TestParseResponseError_StructuredBody(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusNotFound)
	rec.Body.WriteString(`{"error":{"code":"NOT_FOUND","message":"no such product"}}`)

	err := ParseResponseError(rec.Result(), "catalog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such product")
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusBadGateway)
	rec.Body.WriteString("upstream exploded")

	err := ParseResponseError(rec.Result(), "phrasing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phrasing returned status 502")
	assert.Contains(t, err.Error(), "upstream exploded")
}
