// Package chat implements the conversation pipeline: session storage, rate
// limiting, the message orchestrator, and dispatch of moderation work.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/outlivehq/mindmitra/internal/ai"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps the rolling conversation window for each account in
// Redis. Sessions expire after a period of inactivity; the durable record
// lives in PostgreSQL.
type SessionStore struct {
	client rueidis.Client
	ttl    time.Duration
	max    int
	logger *zap.Logger
}

// NewSessionStore creates a session store.
func NewSessionStore(client rueidis.Client, cfg config.Session, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    time.Duration(cfg.TTLMinutes) * time.Minute,
		max:    cfg.MaxTurns,
		logger: logger.Named("session"),
	}
}

// History returns the account's retained conversation turns in order.
// A missing session yields an empty history, not an error.
func (s *SessionStore) History(ctx context.Context, accountCode string) ([]ai.Turn, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(sessionKeyPrefix+accountCode).Build())
	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	payload, err := resp.AsBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var turns []ai.Turn
	if err := sonic.Unmarshal(payload, &turns); err != nil {
		s.logger.Warn("Discarding corrupt session",
			zap.String("account_code", accountCode),
			zap.Error(err))

		return nil, nil
	}

	return turns, nil
}

// Append adds turns to the session, trims it to the retention limit, and
// refreshes the expiry.
func (s *SessionStore) Append(ctx context.Context, accountCode string, turns ...ai.Turn) error {
	history, err := s.History(ctx, accountCode)
	if err != nil {
		return err
	}

	history = append(history, turns...)
	if len(history) > s.max {
		history = history[len(history)-s.max:]
	}

	payload, err := sonic.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	err = s.client.Do(ctx, s.client.B().Set().Key(sessionKeyPrefix+accountCode).
		Value(string(payload)).Ex(s.ttl).Build(),
	).Error()
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	return nil
}

// Clear removes the account's session. Clearing a session that does not
// exist is not an error.
func (s *SessionStore) Clear(ctx context.Context, accountCode string) error {
	err := s.client.Do(ctx, s.client.B().Del().Key(sessionKeyPrefix+accountCode).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return nil
}
