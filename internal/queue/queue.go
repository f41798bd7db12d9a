// Package queue implements the Redis-backed moderation task queue. Stored
// messages are pushed here after reply delivery and drained by the
// moderation worker.
package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// moderationQueueKey is the sorted set holding pending moderation tasks,
// scored by enqueue time for FIFO processing.
const moderationQueueKey = "queue:moderation"

// ModerationTask describes one stored message awaiting a moderation screen.
type ModerationTask struct {
	AccountCode string    `json:"accountCode"`
	MessageID   string    `json:"messageId"`
	Text        string    `json:"text"`
	QueuedAt    time.Time `json:"queuedAt"`
}

// Manager orchestrates queue operations using a Redis sorted set. Tasks are
// serialized into the set members themselves, so a claim is a range followed
// by a removal of the exact member.
type Manager struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewManager initializes a queue manager on the given Redis client.
func NewManager(client rueidis.Client, logger *zap.Logger) *Manager {
	return &Manager{
		client: client,
		logger: logger.Named("queue"),
	}
}

// Add enqueues a moderation task.
func (m *Manager) Add(ctx context.Context, task *ModerationTask) error {
	payload, err := sonic.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal moderation task: %w", err)
	}

	err = m.client.Do(ctx, m.client.B().Zadd().Key(moderationQueueKey).ScoreMember().
		ScoreMember(float64(task.QueuedAt.Unix()), string(payload)).Build(),
	).Error()
	if err != nil {
		return fmt.Errorf("failed to enqueue moderation task: %w", err)
	}

	m.logger.Debug("Enqueued moderation task",
		zap.String("account_code", task.AccountCode),
		zap.String("message_id", task.MessageID))

	return nil
}

// Claim removes up to batchSize of the oldest tasks from the queue and
// returns them. Members that fail to deserialize are dropped with a log
// entry rather than wedging the queue.
func (m *Manager) Claim(ctx context.Context, batchSize int) ([]*ModerationTask, error) {
	members, err := m.client.Do(ctx,
		m.client.B().Zrange().Key(moderationQueueKey).Min("0").Max(strconv.Itoa(batchSize-1)).Build(),
	).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to read moderation queue: %w", err)
	}

	tasks := make([]*ModerationTask, 0, len(members))

	for _, member := range members {
		err = m.client.Do(ctx,
			m.client.B().Zrem().Key(moderationQueueKey).Member(member).Build(),
		).Error()
		if err != nil {
			return tasks, fmt.Errorf("failed to remove claimed task: %w", err)
		}

		var task ModerationTask
		if err := sonic.Unmarshal([]byte(member), &task); err != nil {
			m.logger.Error("Dropping malformed moderation task", zap.Error(err))
			continue
		}

		tasks = append(tasks, &task)
	}

	return tasks, nil
}

// Length returns the number of pending moderation tasks.
func (m *Manager) Length(ctx context.Context) int {
	count, err := m.client.Do(ctx, m.client.B().Zcard().Key(moderationQueueKey).Build()).ToInt64()
	if err != nil {
		m.logger.Error("Failed to get queue length", zap.Error(err))
		return 0
	}

	return int(count)
}
