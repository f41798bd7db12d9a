// Package rest assembles the HTTP API.
package rest

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/outlivehq/mindmitra/internal/chat"
	"github.com/outlivehq/mindmitra/internal/database/models"
	"github.com/outlivehq/mindmitra/internal/queue"
	"github.com/outlivehq/mindmitra/internal/rest/handler"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// Server implements the chat API service.
type Server struct {
	chatHandler    *handler.ChatHandler
	sessionHandler *handler.SessionHandler
	healthHandler  *handler.HealthHandler
}

// NewServer creates the HTTP handler for the chat API.
func NewServer(
	orchestrator *chat.Orchestrator,
	sessions *chat.SessionStore,
	accounts *models.AccountModel,
	queue *queue.Manager,
	logger *zap.Logger,
) http.Handler {
	server := &Server{
		chatHandler:    handler.NewChatHandler(orchestrator, logger),
		sessionHandler: handler.NewSessionHandler(sessions, accounts, logger),
		healthHandler:  handler.NewHealthHandler(queue, logger),
	}

	router := bunrouter.New()

	router.WithGroup("/v1", func(g *bunrouter.Group) {
		g.POST("/chat", server.chatHandler.PostChat)
		g.GET("/sessions/:code", server.sessionHandler.GetSession)
		g.DELETE("/sessions/:code", server.sessionHandler.DeleteSession)
	})

	router.GET("/health", server.healthHandler.GetHealth)

	return gzhttp.GzipHandler(router)
}
