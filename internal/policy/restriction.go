// Package policy decides when repeated safety flags restrict an account.
package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/outlivehq/mindmitra/internal/database/types"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"go.uber.org/zap"
)

// FlagCounter counts safety flags recorded for an account.
type FlagCounter interface {
	CountSince(ctx context.Context, accountCode string, since time.Time) (int, error)
	GetRecent(ctx context.Context, accountCode string, limit int) ([]*types.FlagEvent, error)
}

// AccountDeactivator toggles account access.
type AccountDeactivator interface {
	SetActive(ctx context.Context, code string, active bool) error
}

// FlagPolicy restricts accounts that accumulate too many safety flags
// inside a sliding window. Flags never expire from storage; the window is
// applied at evaluation time.
type FlagPolicy struct {
	flags    FlagCounter
	accounts AccountDeactivator
	cfg      config.FlagPolicy
	logger   *zap.Logger
}

// NewFlagPolicy creates a flag policy evaluator.
func NewFlagPolicy(
	flags FlagCounter, accounts AccountDeactivator, cfg config.FlagPolicy, logger *zap.Logger,
) *FlagPolicy {
	return &FlagPolicy{
		flags:    flags,
		accounts: accounts,
		cfg:      cfg,
		logger:   logger.Named("flag_policy"),
	}
}

// Evaluate re-counts the account's flags inside the window and deactivates
// the account when the count reaches the limit. It returns whether the
// account is now restricted.
//
// Evaluation runs after every recorded flag, including flags recorded by the
// background moderation worker, so restriction is eventually consistent with
// respect to asynchronous flags.
func (p *FlagPolicy) Evaluate(ctx context.Context, accountCode string) (bool, error) {
	since := time.Now().AddDate(0, 0, -p.cfg.WindowDays)

	count, err := p.flags.CountSince(ctx, accountCode, since)
	if err != nil {
		return false, fmt.Errorf("failed to count flags: %w", err)
	}

	if count < p.cfg.MaxFlags {
		return false, nil
	}

	if err := p.accounts.SetActive(ctx, accountCode, false); err != nil {
		return false, fmt.Errorf("failed to deactivate account: %w", err)
	}

	p.logger.Info("Account restricted for repeated safety flags",
		zap.String("account_code", accountCode),
		zap.Int("flag_count", count),
		zap.Int("window_days", p.cfg.WindowDays),
		zap.Strings("recent_categories", p.recentCategories(ctx, accountCode)))

	return true, nil
}

// recentCategories summarizes the flags that triggered a restriction so the
// restriction log line is reviewable on its own.
func (p *FlagPolicy) recentCategories(ctx context.Context, accountCode string) []string {
	events, err := p.flags.GetRecent(ctx, accountCode, p.cfg.MaxFlags)
	if err != nil {
		p.logger.Warn("Failed to load recent flags",
			zap.String("account_code", accountCode),
			zap.Error(err))

		return nil
	}

	categories := make([]string, len(events))
	for i, event := range events {
		categories[i] = event.Category
	}

	return categories
}
