// Package moderation implements the background worker that drains the
// moderation queue and records flags for held messages.
package moderation

import (
	"context"
	"time"

	"github.com/outlivehq/mindmitra/internal/database/types"
	"github.com/outlivehq/mindmitra/internal/database/types/enum"
	"github.com/outlivehq/mindmitra/internal/moderation"
	"github.com/outlivehq/mindmitra/internal/queue"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// moderationFlagConfidence is recorded on flags from the vendor gate, which
// reports booleans rather than scores.
const moderationFlagConfidence = 1.0

// Gate screens text against the vendor moderation endpoint.
type Gate interface {
	Check(ctx context.Context, text string) *moderation.Result
}

// MessageFlagger attaches flag metadata to stored messages.
type MessageFlagger interface {
	AttachFlag(ctx context.Context, messageID, flagType string, confidence float64, analysis map[string]any) error
}

// FlagStore records safety flags.
type FlagStore interface {
	Insert(ctx context.Context, event *types.FlagEvent) error
}

// Restrictor re-evaluates account restriction after a flag is recorded.
type Restrictor interface {
	Evaluate(ctx context.Context, accountCode string) (bool, error)
}

// Processor screens one queued message and records the outcome. Errors are
// logged and swallowed; a failed screen must never stall the queue.
type Processor struct {
	gate       Gate
	messages   MessageFlagger
	flags      FlagStore
	restrictor Restrictor
	logger     *zap.Logger
}

// NewProcessor creates a moderation task processor.
func NewProcessor(
	gate Gate, messages MessageFlagger, flags FlagStore, restrictor Restrictor, logger *zap.Logger,
) *Processor {
	return &Processor{
		gate:       gate,
		messages:   messages,
		flags:      flags,
		restrictor: restrictor,
		logger:     logger.Named("moderation_processor"),
	}
}

// Process screens one task. Messages that pass leave no trace; held
// messages get flag metadata on their stored row, a flag event, and a
// restriction re-evaluation.
func (p *Processor) Process(ctx context.Context, task *queue.ModerationTask) {
	result := p.gate.Check(ctx, task.Text)
	if result.Safe {
		return
	}

	analysis := map[string]any{"vendor_categories": result.Categories}

	if err := p.messages.AttachFlag(ctx,
		task.MessageID, result.Category.String(), moderationFlagConfidence, analysis,
	); err != nil {
		p.logger.Error("Failed to attach flag to message",
			zap.String("message_id", task.MessageID),
			zap.Error(err))
	}

	if err := p.flags.Insert(ctx, types.NewFlagEvent(
		task.AccountCode, result.Category, moderationFlagConfidence,
		enum.FlagSourceModeration, task.Text, analysis,
	)); err != nil {
		p.logger.Error("Failed to record moderation flag",
			zap.String("account_code", task.AccountCode),
			zap.Error(err))

		return
	}

	if _, err := p.restrictor.Evaluate(ctx, task.AccountCode); err != nil {
		p.logger.Error("Failed to evaluate flag policy",
			zap.String("account_code", task.AccountCode),
			zap.Error(err))
	}
}

// Worker polls the moderation queue and processes claimed tasks
// concurrently.
type Worker struct {
	queue     *queue.Manager
	processor *Processor
	cfg       config.WorkerConfig
	logger    *zap.Logger
}

// NewWorker creates a moderation worker.
func NewWorker(queue *queue.Manager, processor *Processor, cfg config.WorkerConfig, logger *zap.Logger) *Worker {
	return &Worker{
		queue:     queue,
		processor: processor,
		cfg:       cfg,
		logger:    logger.Named("moderation_worker"),
	}
}

// Start runs the polling loop until the context is canceled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Moderation worker started",
		zap.Int("batch_size", w.cfg.BatchSize),
		zap.Int("concurrency", w.cfg.Concurrency))

	interval := time.Duration(w.cfg.PollInterval) * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Moderation worker stopped")
			return
		default:
		}

		tasks, err := w.queue.Claim(ctx, w.cfg.BatchSize)
		if err != nil {
			w.logger.Error("Failed to claim moderation tasks", zap.Error(err))
		}

		if len(tasks) == 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}

			continue
		}

		p := pool.New().WithContext(ctx).WithMaxGoroutines(w.cfg.Concurrency)
		for _, task := range tasks {
			p.Go(func(ctx context.Context) error {
				w.processor.Process(ctx, task)
				return nil
			})
		}

		if err := p.Wait(); err != nil {
			w.logger.Error("Moderation batch failed", zap.Error(err))
		}
	}
}

// SyncDispatcher screens messages inline instead of queueing them, for
// deployments that run without a separate worker process.
type SyncDispatcher struct {
	processor *Processor
}

// NewSyncDispatcher creates an inline dispatcher.
func NewSyncDispatcher(processor *Processor) *SyncDispatcher {
	return &SyncDispatcher{processor: processor}
}

// Dispatch processes the task immediately.
func (d *SyncDispatcher) Dispatch(ctx context.Context, task *queue.ModerationTask) error {
	d.processor.Process(ctx, task)
	return nil
}
