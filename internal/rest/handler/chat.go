// Package handler implements the REST endpoint handlers.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/outlivehq/mindmitra/internal/chat"
	"github.com/outlivehq/mindmitra/internal/database/types"
	restTypes "github.com/outlivehq/mindmitra/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// maxMessageLength bounds inbound message size so a single request cannot
// blow the classifier's token budget.
const maxMessageLength = 4000

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	orchestrator *chat.Orchestrator
	logger       *zap.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(orchestrator *chat.Orchestrator, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		orchestrator: orchestrator,
		logger:       logger.Named("chat_handler"),
	}
}

// PostChat runs one message through the safety pipeline and returns the reply.
func (h *ChatHandler) PostChat(w http.ResponseWriter, req bunrouter.Request) error {
	var body restTypes.ChatRequest
	if err := sonic.ConfigDefault.NewDecoder(req.Body).Decode(&body); err != nil {
		return writeError(w, http.StatusBadRequest, "invalid request body")
	}

	body.AccessCode = strings.TrimSpace(body.AccessCode)
	body.Message = strings.TrimSpace(body.Message)

	if body.AccessCode == "" || body.Message == "" {
		return writeError(w, http.StatusBadRequest, "accessCode and message are required")
	}

	if len(body.Message) > maxMessageLength {
		return writeError(w, http.StatusBadRequest, "message too long")
	}

	reply, err := h.orchestrator.HandleMessage(req.Context(), body.AccessCode, body.Message)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return writeError(w, http.StatusNotFound, "unknown access code")
		}

		h.logger.Error("Failed to handle message", zap.Error(err))

		return writeError(w, http.StatusInternalServerError, "internal server error")
	}

	response := restTypes.ChatResponse{
		Reply: reply.Content,
		Kind:  string(reply.Kind),
	}

	if reply.Kind == chat.KindRateLimited {
		return writeJSON(w, http.StatusTooManyRequests, response)
	}

	return bunrouter.JSON(w, response)
}

// writeError sends a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, restTypes.ErrorResponse{Error: message})
}

// writeJSON sends a JSON body with an explicit status code.
func writeJSON(w http.ResponseWriter, status int, value any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return sonic.ConfigDefault.NewEncoder(w).Encode(value)
}
