package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/utafrali/shopfront/pkg/validator"

	"github.com/utafrali/shopfront/internal/service"
)

// AssistantHandler exposes the conversational command endpoint.
type AssistantHandler struct {
	service *service.AssistantService
	logger  *slog.Logger
}

// NewAssistantHandler creates a new assistant HTTP handler.
func NewAssistantHandler(svc *service.AssistantService, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{
		service: svc,
		logger:  logger,
	}
}

// MessageRequest is the JSON request body for an assistant message.
type MessageRequest struct {
	Message string `json:"message" validate:"required,min=1,max=2000"`
}

// HandleMessage handles POST /api/v1/assistant/message
func (h *AssistantHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	reply, err := h.service.HandleMessage(r.Context(), sessionID, req.Message)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: reply})
}
