package models

import (
	"context"
	"fmt"

	"github.com/outlivehq/mindmitra/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// MessageModel handles database operations for chat messages.
type MessageModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewMessage creates a MessageModel.
func NewMessage(db *bun.DB, logger *zap.Logger) *MessageModel {
	return &MessageModel{
		db:     db,
		logger: logger.Named("db_message"),
	}
}

// Save persists a conversation turn.
func (r *MessageModel) Save(ctx context.Context, message *types.ChatMessage) error {
	_, err := r.db.NewInsert().
		Model(message).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}

	return nil
}

// GetHistory retrieves the most recent messages for an account, oldest first.
func (r *MessageModel) GetHistory(ctx context.Context, accountCode string, limit int) ([]*types.ChatMessage, error) {
	var messages []*types.ChatMessage

	err := r.db.NewSelect().
		Model(&messages).
		Where("account_code = ?", accountCode).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// AttachFlag writes flag metadata onto a stored message. The moderation
// worker calls this after the reply has already been delivered, so the row
// is updated in place rather than at save time.
func (r *MessageModel) AttachFlag(
	ctx context.Context, messageID, flagType string, confidence float64, analysis map[string]any,
) error {
	result, err := r.db.NewUpdate().
		Model((*types.ChatMessage)(nil)).
		Set("flag_type = ?", flagType).
		Set("confidence = ?", confidence).
		Set("analysis = ?", analysis).
		Where("id = ?", messageID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to attach flag metadata: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		r.logger.Debug("No message row for flag metadata",
			zap.String("messageID", messageID),
			zap.String("flagType", flagType))
	}

	return nil
}
