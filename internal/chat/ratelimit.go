package chat

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/outlivehq/mindmitra/internal/setup/config"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const ratelimitKeyPrefix = "ratelimit:"

// RateLimiter enforces a sliding-window request limit per account using a
// Redis sorted set of request timestamps.
type RateLimiter struct {
	client rueidis.Client
	limit  int
	window time.Duration
	logger *zap.Logger
}

// NewRateLimiter creates a sliding-window rate limiter.
func NewRateLimiter(client rueidis.Client, cfg config.RateLimit, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  cfg.Requests,
		window: time.Duration(cfg.WindowMinutes) * time.Minute,
		logger: logger.Named("ratelimit"),
	}
}

// Allow records a request for the account and reports whether it fits in
// the current window. The request is counted even when rejected, so a
// client hammering the endpoint keeps pushing its window forward.
func (r *RateLimiter) Allow(ctx context.Context, accountCode string) (bool, error) {
	key := ratelimitKeyPrefix + accountCode
	now := time.Now()
	cutoff := now.Add(-r.window)

	err := r.client.Do(ctx, r.client.B().Zremrangebyscore().Key(key).
		Min("0").Max(strconv.FormatInt(cutoff.UnixNano(), 10)).Build(),
	).Error()
	if err != nil {
		return false, fmt.Errorf("failed to trim rate limit window: %w", err)
	}

	member := strconv.FormatInt(now.UnixNano(), 10)

	err = r.client.Do(ctx, r.client.B().Zadd().Key(key).ScoreMember().
		ScoreMember(float64(now.UnixNano()), member).Build(),
	).Error()
	if err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	if err := r.client.Do(ctx, r.client.B().Expire().Key(key).Seconds(
		int64(r.window/time.Second) + 1).Build(),
	).Error(); err != nil {
		return false, fmt.Errorf("failed to set rate limit expiry: %w", err)
	}

	count, err := r.client.Do(ctx, r.client.B().Zcard().Key(key).Build()).ToInt64()
	if err != nil {
		return false, fmt.Errorf("failed to count requests: %w", err)
	}

	if int(count) > r.limit {
		r.logger.Debug("Rate limit exceeded",
			zap.String("account_code", accountCode),
			zap.Int64("count", count))

		return false, nil
	}

	return true, nil
}
