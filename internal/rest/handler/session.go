package handler

import (
	"errors"
	"net/http"

	"github.com/outlivehq/mindmitra/internal/chat"
	"github.com/outlivehq/mindmitra/internal/database/models"
	"github.com/outlivehq/mindmitra/internal/database/types"
	restTypes "github.com/outlivehq/mindmitra/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// SessionHandler handles session inspection and clearing.
type SessionHandler struct {
	sessions *chat.SessionStore
	accounts *models.AccountModel
	logger   *zap.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(
	sessions *chat.SessionStore, accounts *models.AccountModel, logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		accounts: accounts,
		logger:   logger.Named("session_handler"),
	}
}

// GetSession returns the account's retained conversation turns.
func (h *SessionHandler) GetSession(w http.ResponseWriter, req bunrouter.Request) error {
	code := req.Param("code")

	if err := h.checkAccount(req, code); err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return writeError(w, http.StatusNotFound, "unknown access code")
		}

		h.logger.Error("Failed to look up account", zap.Error(err))

		return writeError(w, http.StatusInternalServerError, "internal server error")
	}

	history, err := h.sessions.History(req.Context(), code)
	if err != nil {
		h.logger.Error("Failed to load session", zap.Error(err))
		return writeError(w, http.StatusInternalServerError, "internal server error")
	}

	turns := make([]restTypes.SessionTurn, len(history))
	for i, turn := range history {
		turns[i] = restTypes.SessionTurn{Role: turn.Role, Content: turn.Content}
	}

	return bunrouter.JSON(w, restTypes.GetSessionResponse{
		AccessCode: code,
		Turns:      turns,
	})
}

// DeleteSession clears the account's session so the next message starts a
// fresh conversation.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, req bunrouter.Request) error {
	code := req.Param("code")

	if err := h.checkAccount(req, code); err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return writeError(w, http.StatusNotFound, "unknown access code")
		}

		h.logger.Error("Failed to look up account", zap.Error(err))

		return writeError(w, http.StatusInternalServerError, "internal server error")
	}

	if err := h.sessions.Clear(req.Context(), code); err != nil {
		h.logger.Error("Failed to clear session", zap.Error(err))
		return writeError(w, http.StatusInternalServerError, "internal server error")
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

func (h *SessionHandler) checkAccount(req bunrouter.Request, code string) error {
	_, err := h.accounts.GetByCode(req.Context(), code)
	return err
}
