package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/outlivehq/mindmitra/internal/ai"
	"github.com/outlivehq/mindmitra/internal/moderation"
	"github.com/outlivehq/mindmitra/internal/policy"
	"github.com/outlivehq/mindmitra/internal/queue"
	"github.com/outlivehq/mindmitra/internal/redis"
	"github.com/outlivehq/mindmitra/internal/setup"
	workerModeration "github.com/outlivehq/mindmitra/internal/worker/moderation"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "worker",
		Usage: "Start the mindmitra background workers",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Value:   1,
				Usage:   "Number of workers to start",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "moderation",
				Usage: "Start moderation workers",
				Action: func(ctx context.Context, c *cli.Command) error {
					runWorkers(ctx, int(c.Int("workers")))
					return nil
				},
			},
		},
	}

	return app.Run(context.Background(), os.Args)
}

// runWorkers starts the requested number of moderation workers and blocks
// until they exit.
func runWorkers(ctx context.Context, count int) {
	app, err := setup.InitializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup(ctx)

	cfg := app.Config
	logger := app.Logger
	repo := app.DB.Model()

	queueClient, err := app.RedisManager.GetClient(redis.QueueDBIndex)
	if err != nil {
		logger.Fatal("Failed to get queue Redis client", zap.Error(err))
	}

	queueManager := queue.NewManager(queueClient, logger)

	categorizer := ai.NewCategorizer(
		app.AIClient.Chat(), cfg.Common.OpenAI.CategoryModel, logger,
	)
	gate := moderation.NewGate(
		app.AIClient.Moderations(), categorizer, cfg.Common.Moderation, logger,
	)
	flagPolicy := policy.NewFlagPolicy(repo.Flag(), repo.Account(), cfg.Common.FlagPolicy, logger)
	processor := workerModeration.NewProcessor(
		gate, repo.Message(), repo.Flag(), flagPolicy, logger,
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		logger.Info("Shutting down workers...")
		cancel()
	}()

	var wg sync.WaitGroup

	for i := range count {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			workerLogger := logger.With(zap.Int("worker_id", id))
			worker := workerModeration.NewWorker(queueManager, processor, cfg.Worker, workerLogger)
			worker.Start(runCtx)
		}(i)
	}

	wg.Wait()
	logger.Info("All workers stopped")
}
