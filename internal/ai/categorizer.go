package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/outlivehq/mindmitra/internal/ai/client"
	"github.com/outlivehq/mindmitra/internal/database/types/enum"
	"github.com/outlivehq/mindmitra/pkg/utils"
	"go.uber.org/zap"
)

// Categorizer assigns a crisis category to text the moderation vendor has
// already flagged. It asks the model for a bare category code at temperature
// zero so repeated calls on the same text stay deterministic.
type Categorizer struct {
	chat   client.ChatCompletions
	model  string
	logger *zap.Logger
}

// NewCategorizer creates a crisis categorizer.
func NewCategorizer(chat client.ChatCompletions, model string, logger *zap.Logger) *Categorizer {
	return &Categorizer{
		chat:   chat,
		model:  model,
		logger: logger.Named("ai_categorizer"),
	}
}

// Categorize returns the crisis category for flagged text.
// The boolean reports whether the model produced a recognized category.
func (c *Categorizer) Categorize(ctx context.Context, text string) (enum.CrisisCategory, bool, error) {
	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(CategorizerSystemPrompt),
			openai.UserMessage(fmt.Sprintf(CategorizerPrompt, text)),
		},
		Model:               c.model,
		Temperature:         openai.Float(0),
		MaxCompletionTokens: openai.Int(10),
	})
	if err != nil {
		return enum.CategoryNone, false, fmt.Errorf("categorization request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return enum.CategoryNone, false, fmt.Errorf("%w: no response from model", utils.ErrModelResponse)
	}

	code := strings.ToUpper(strings.TrimSpace(resp.Choices[0].Message.Content))

	category := enum.CrisisCategoryFromString(code)
	if category == enum.CategoryNone || category == enum.CategoryModeration {
		c.logger.Debug("Model returned unrecognized category code", zap.String("code", code))
		return enum.CategoryNone, false, nil
	}

	return category, true, nil
}
