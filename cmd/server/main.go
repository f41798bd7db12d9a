package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/outlivehq/mindmitra/internal/ai"
	"github.com/outlivehq/mindmitra/internal/chat"
	"github.com/outlivehq/mindmitra/internal/detection"
	"github.com/outlivehq/mindmitra/internal/guardrails"
	"github.com/outlivehq/mindmitra/internal/policy"
	"github.com/outlivehq/mindmitra/internal/queue"
	"github.com/outlivehq/mindmitra/internal/redis"
	"github.com/outlivehq/mindmitra/internal/rest"
	"github.com/outlivehq/mindmitra/internal/setup"
	"go.uber.org/zap"
)

// Server timeouts.
const (
	ReadTimeout     = 5 * time.Second
	ShutdownTimeout = 30 * time.Second
)

func main() {
	app, err := setup.InitializeApp(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup(context.Background())

	cfg := app.Config
	logger := app.Logger
	repo := app.DB.Model()

	sessionClient, err := app.RedisManager.GetClient(redis.SessionDBIndex)
	if err != nil {
		logger.Fatal("Failed to get session Redis client", zap.Error(err))
	}

	queueClient, err := app.RedisManager.GetClient(redis.QueueDBIndex)
	if err != nil {
		logger.Fatal("Failed to get queue Redis client", zap.Error(err))
	}

	ratelimitClient, err := app.RedisManager.GetClient(redis.RatelimitDBIndex)
	if err != nil {
		logger.Fatal("Failed to get rate limit Redis client", zap.Error(err))
	}

	queueManager := queue.NewManager(queueClient, logger)
	sessions := chat.NewSessionStore(sessionClient, cfg.Server.Session, logger)
	limiter := chat.NewRateLimiter(ratelimitClient, cfg.Server.RateLimit, logger)

	flagPolicy := policy.NewFlagPolicy(repo.Flag(), repo.Account(), cfg.Common.FlagPolicy, logger)
	detector := detection.NewPatternDetector(logger)
	classifier := ai.NewSafetyClassifier(
		app.AIClient.Chat(), cfg.Common.OpenAI.ClassifierModel, cfg.Common.Detection, logger,
	)
	responder := ai.NewResponder(
		app.AIClient.Chat(), cfg.Common.OpenAI, guardrails.FromConfig(cfg.Common.Guardrails), logger,
	)

	orchestrator := chat.NewOrchestrator(
		repo.Account(), repo.Message(), repo.Flag(), flagPolicy,
		detector, classifier, responder, sessions, limiter,
		chat.NewQueueDispatcher(queueManager), cfg.Common.Detection,
		cfg.Common.OpenAI.HistoryLimit, logger,
	)

	handler := rest.NewServer(orchestrator, sessions, repo.Account(), queueManager, logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Millisecond,
	}

	go func() {
		log.Printf("Chat server started on %s", addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down chat server...")

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server gracefully stopped")
}
