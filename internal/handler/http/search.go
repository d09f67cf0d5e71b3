package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/shopfront/internal/service"
)

// SearchHandler serves catalog search, recording the query in session state.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

type searchResponse struct {
	Query    string `json:"query"`
	Count    int    `json:"count"`
	Products any    `json:"products"`
}

// Search handles GET /api/v1/search?q=...
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())
	query := r.URL.Query().Get("q")

	products, err := h.service.Search(r.Context(), sessionID, query)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: searchResponse{
		Query:    query,
		Count:    len(products),
		Products: products,
	}})
}
