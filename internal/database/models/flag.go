package models

import (
	"context"
	"fmt"
	"time"

	"github.com/outlivehq/mindmitra/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// FlagModel handles database operations for flag events.
type FlagModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewFlag creates a FlagModel.
func NewFlag(db *bun.DB, logger *zap.Logger) *FlagModel {
	return &FlagModel{
		db:     db,
		logger: logger.Named("db_flag"),
	}
}

// Insert appends a flag event. Flag events are never updated or deleted.
func (r *FlagModel) Insert(ctx context.Context, event *types.FlagEvent) error {
	_, err := r.db.NewInsert().
		Model(event).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert flag event: %w", err)
	}

	r.logger.Info("Flag event recorded",
		zap.String("accountCode", event.AccountCode),
		zap.String("category", event.Category),
		zap.String("source", event.Source),
		zap.Float64("confidence", event.Confidence))

	return nil
}

// CountSince counts flag events for an account created at or after the given time.
// The window slides at query time; there is no calendar bucketing.
func (r *FlagModel) CountSince(ctx context.Context, accountCode string, since time.Time) (int, error) {
	count, err := r.db.NewSelect().
		Model((*types.FlagEvent)(nil)).
		Where("account_code = ?", accountCode).
		Where("created_at >= ?", since).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count flag events: %w", err)
	}

	return count, nil
}

// GetRecent retrieves the most recent flag events for an account.
func (r *FlagModel) GetRecent(ctx context.Context, accountCode string, limit int) ([]*types.FlagEvent, error) {
	var events []*types.FlagEvent

	err := r.db.NewSelect().
		Model(&events).
		Where("account_code = ?", accountCode).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get flag events: %w", err)
	}

	return events, nil
}
