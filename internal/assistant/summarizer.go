package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/shopfront/pkg/httpclient"

	"github.com/utafrali/shopfront/internal/domain"
)

// PhrasingContext is what the summarizer sees when asked to phrase a reply.
// The action has already been decided and executed locally; the summarizer
// only produces prose.
type PhrasingContext struct {
	Utterance string        `json:"utterance"`
	Action    domain.Action `json:"action"`
	Message   string        `json:"message"`
	CartCount int           `json:"cart_count"`
}

// Summarizer phrases the reply to an executed command.
type Summarizer interface {
	Summarize(ctx context.Context, pc PhrasingContext) (string, error)
}

// StaticSummarizer returns the locally built message unchanged. It is the
// default and the fallback when the phrasing service is unreachable.
type StaticSummarizer struct{}

func (StaticSummarizer) Summarize(_ context.Context, pc PhrasingContext) (string, error) {
	return pc.Message, nil
}

// HTTPSummarizer asks an external phrasing service to reword the reply.
// Calls run behind a circuit breaker with a bounded timeout. Any failure
// falls back to the local message, so the cart path never stalls or errors
// because of phrasing.
type HTTPSummarizer struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
}

// NewHTTPSummarizer creates a summarizer that POSTs to baseURL/v1/phrase.
func NewHTTPSummarizer(client *httpclient.CircuitBreakerClient, baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPSummarizer {
	return &HTTPSummarizer{
		client:  client,
		baseURL: baseURL,
		timeout: timeout,
		logger:  logger,
	}
}

type phraseResponse struct {
	Message string `json:"message"`
}

// Summarize returns the phrased message, or the local one on any failure.
// The returned error is always nil; failures are logged, not surfaced.
func (s *HTTPSummarizer) Summarize(ctx context.Context, pc PhrasingContext) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := json.Marshal(pc)
	if err != nil {
		return pc.Message, nil
	}

	resp, err := s.client.Post(ctx, s.baseURL+"/v1/phrase", "application/json", bytes.NewReader(payload))
	if err != nil {
		s.logger.WarnContext(ctx, "phrasing service unavailable, using local message",
			slog.String("error", err.Error()),
		)
		return pc.Message, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.WarnContext(ctx, "phrasing service returned non-200, using local message",
			slog.Int("status", resp.StatusCode),
		)
		return pc.Message, nil
	}

	var out phraseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		s.logger.WarnContext(ctx, "invalid phrasing service response, using local message",
			slog.String("error", fmt.Sprintf("decode: %v", err)),
		)
		return pc.Message, nil
	}

	if out.Message == "" {
		return pc.Message, nil
	}
	return out.Message, nil
}
