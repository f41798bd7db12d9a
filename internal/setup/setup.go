// Package setup bootstraps shared application dependencies.
package setup

import (
	"context"
	"log"

	aiClient "github.com/outlivehq/mindmitra/internal/ai/client"
	"github.com/outlivehq/mindmitra/internal/database"
	"github.com/outlivehq/mindmitra/internal/redis"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"github.com/outlivehq/mindmitra/internal/setup/telemetry"
	"go.uber.org/zap"
)

// App bundles the core dependencies shared by the server and worker.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           database.Client
	RedisManager *redis.Manager
	AIClient     *aiClient.AIClient
	pprofServer  *pprofServer
}

// InitializeApp bootstraps all application dependencies in order, so each
// component has what it needs by construction time.
func InitializeApp(ctx context.Context) (*App, error) {
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := telemetry.NewLogger(&cfg.Common.Debug)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded configuration", zap.String("config_dir", configDir))

	redisManager := redis.NewManager(&cfg.Common.Redis, logger)

	db, err := database.NewConnection(ctx, &cfg.Common.PostgreSQL, logger.Named("database"), true)
	if err != nil {
		return nil, err
	}

	aiCli, err := aiClient.NewClient(&cfg.Common.OpenAI, logger)
	if err != nil {
		return nil, err
	}

	var pprofSrv *pprofServer

	if cfg.Common.Debug.EnablePprof {
		srv, err := startPprofServer(ctx, cfg.Common.Debug.PprofPort, logger)
		if err != nil {
			logger.Error("Failed to start pprof server", zap.Error(err))
		} else {
			pprofSrv = srv

			logger.Warn("pprof debugging endpoint enabled - this should not be used in production!")
		}
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		RedisManager: redisManager,
		AIClient:     aiCli,
		pprofServer:  pprofSrv,
	}, nil
}

// Cleanup shuts components down in reverse initialization order. Errors are
// logged rather than returned so every component gets a cleanup attempt.
func (s *App) Cleanup(ctx context.Context) {
	if s.pprofServer != nil {
		if err := s.pprofServer.srv.Shutdown(ctx); err != nil {
			s.Logger.Error("Failed to shutdown pprof server", zap.Error(err))
		}

		s.pprofServer.listener.Close()
	}

	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := s.DB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}

	s.RedisManager.Close()
}
