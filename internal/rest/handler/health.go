package handler

import (
	"net/http"

	"github.com/outlivehq/mindmitra/internal/queue"
	restTypes "github.com/outlivehq/mindmitra/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// HealthHandler handles the liveness endpoint.
type HealthHandler struct {
	queue  *queue.Manager
	logger *zap.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(queue *queue.Manager, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		queue:  queue,
		logger: logger.Named("health_handler"),
	}
}

// GetHealth reports service status and the moderation queue backlog.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, req bunrouter.Request) error {
	return bunrouter.JSON(w, restTypes.HealthResponse{
		Status:      "ok",
		QueueLength: h.queue.Length(req.Context()),
	})
}
