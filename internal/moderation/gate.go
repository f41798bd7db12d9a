// Package moderation screens stored messages against the vendor moderation
// endpoint and assigns crisis categories to anything it flags.
package moderation

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/openai/openai-go"
	"github.com/outlivehq/mindmitra/internal/ai/client"
	"github.com/outlivehq/mindmitra/internal/database/types/enum"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"go.uber.org/zap"
)

// Categorizer assigns a crisis category to flagged text.
type Categorizer interface {
	Categorize(ctx context.Context, text string) (enum.CrisisCategory, bool, error)
}

// Result is the outcome of screening one message.
type Result struct {
	// Safe is true when the message cleared the screen.
	Safe bool
	// FailedOpen is true when the vendor call failed and the message was
	// passed through unscreened.
	FailedOpen bool
	// Category is the assigned crisis category when Safe is false.
	Category enum.CrisisCategory
	// Categories lists the vendor category names that fired.
	Categories []string
}

// Gate wraps the vendor moderation endpoint. A message is held when the
// vendor flags it outright or when any high-risk category fires even below
// the vendor's own flagging threshold.
type Gate struct {
	moderations client.Moderations
	categorizer Categorizer
	highRisk    map[string]struct{}
	logger      *zap.Logger
}

// NewGate creates a moderation gate.
func NewGate(
	moderations client.Moderations, categorizer Categorizer, cfg config.Moderation, logger *zap.Logger,
) *Gate {
	highRisk := make(map[string]struct{}, len(cfg.HighRiskCategories))
	for _, name := range cfg.HighRiskCategories {
		highRisk[name] = struct{}{}
	}

	return &Gate{
		moderations: moderations,
		categorizer: categorizer,
		highRisk:    highRisk,
		logger:      logger.Named("moderation_gate"),
	}
}

// Check screens text through the vendor endpoint. Vendor failures pass the
// message through unscreened rather than blocking the conversation.
func (g *Gate) Check(ctx context.Context, text string) *Result {
	mod, err := g.moderations.Check(ctx, text)
	if err != nil {
		g.logger.Warn("Moderation check failed, passing message through unscreened",
			zap.Error(err))

		return &Result{Safe: true, FailedOpen: true}
	}

	fired := firedCategories(mod)

	highRisk := false
	for _, name := range fired {
		if _, ok := g.highRisk[name]; ok {
			highRisk = true
			break
		}
	}

	if !mod.Flagged && !highRisk {
		return &Result{Safe: true}
	}

	result := &Result{Category: enum.CategoryModeration, Categories: fired}

	category, ok, err := g.categorizer.Categorize(ctx, text)
	if err != nil {
		g.logger.Warn("Crisis categorization failed, recording generic moderation flag",
			zap.Error(err))
	} else if ok {
		result.Category = category
	}

	g.logger.Info("Message held by moderation screen",
		zap.Bool("vendor_flagged", mod.Flagged),
		zap.Strings("categories", fired),
		zap.String("category", result.Category.String()))

	return result
}

// firedCategories returns the names of every vendor category that fired,
// going through the wire representation so names match the vendor's
// documented identifiers exactly.
func firedCategories(mod *openai.Moderation) []string {
	raw, err := sonic.Marshal(mod.Categories)
	if err != nil {
		return nil
	}

	var categories map[string]bool
	if err := sonic.Unmarshal(raw, &categories); err != nil {
		return nil
	}

	fired := make([]string, 0, len(categories))
	for name, value := range categories {
		if value {
			fired = append(fired, name)
		}
	}

	return fired
}
