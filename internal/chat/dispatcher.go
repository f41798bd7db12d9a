package chat

import (
	"context"

	"github.com/outlivehq/mindmitra/internal/queue"
)

// Dispatcher hands stored messages off for moderation screening. The server
// dispatches to the Redis queue; deployments without a separate worker can
// substitute a dispatcher that screens inline.
type Dispatcher interface {
	Dispatch(ctx context.Context, task *queue.ModerationTask) error
}

// QueueDispatcher enqueues moderation tasks for the background worker.
type QueueDispatcher struct {
	queue *queue.Manager
}

// NewQueueDispatcher creates a queue-backed dispatcher.
func NewQueueDispatcher(queue *queue.Manager) *QueueDispatcher {
	return &QueueDispatcher{queue: queue}
}

// Dispatch pushes the task onto the moderation queue.
func (d *QueueDispatcher) Dispatch(ctx context.Context, task *queue.ModerationTask) error {
	return d.queue.Add(ctx, task)
}
