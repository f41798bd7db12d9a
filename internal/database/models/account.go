package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/outlivehq/mindmitra/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// AccountModel handles database operations for access-code accounts.
type AccountModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewAccount creates an AccountModel.
func NewAccount(db *bun.DB, logger *zap.Logger) *AccountModel {
	return &AccountModel{
		db:     db,
		logger: logger.Named("db_account"),
	}
}

// GetByCode retrieves an account by its access code.
func (r *AccountModel) GetByCode(ctx context.Context, code string) (*types.Account, error) {
	account := new(types.Account)

	err := r.db.NewSelect().
		Model(account).
		Where("code = ?", code).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrAccountNotFound
		}

		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// IsActive reports whether the account exists and is currently permitted to chat.
func (r *AccountModel) IsActive(ctx context.Context, code string) (bool, error) {
	account, err := r.GetByCode(ctx, code)
	if err != nil {
		return false, err
	}

	return account.IsActive, nil
}

// SetActive flips the account's active state.
func (r *AccountModel) SetActive(ctx context.Context, code string, active bool) error {
	_, err := r.db.NewUpdate().
		Model((*types.Account)(nil)).
		Set("is_active = ?", active).
		Where("code = ?", code).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set account active state: %w", err)
	}

	r.logger.Info("Updated account active state",
		zap.String("code", code),
		zap.Bool("active", active))

	return nil
}

// TouchActivity records the account's last activity time.
func (r *AccountModel) TouchActivity(ctx context.Context, code string) error {
	_, err := r.db.NewUpdate().
		Model((*types.Account)(nil)).
		Set("last_active_at = ?", time.Now().UTC()).
		Where("code = ?", code).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update account activity: %w", err)
	}

	return nil
}
