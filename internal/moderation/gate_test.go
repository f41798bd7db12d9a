package moderation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/outlivehq/mindmitra/internal/database/types/enum"
	"github.com/outlivehq/mindmitra/internal/moderation"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errVendorDown = errors.New("moderation endpoint unavailable")

type fakeModerations struct {
	result *openai.Moderation
	err    error
}

func (f *fakeModerations) Check(context.Context, string) (*openai.Moderation, error) {
	return f.result, f.err
}

type fakeCategorizer struct {
	category enum.CrisisCategory
	ok       bool
	err      error
}

func (f *fakeCategorizer) Categorize(context.Context, string) (enum.CrisisCategory, bool, error) {
	return f.category, f.ok, f.err
}

func moderationConfig() config.Moderation {
	return config.Moderation{
		HighRiskCategories: []string{"self-harm", "self-harm/intent", "self-harm/instructions"},
	}
}

func newGate(moderations *fakeModerations, categorizer *fakeCategorizer) *moderation.Gate {
	return moderation.NewGate(moderations, categorizer, moderationConfig(), zap.NewNop())
}

func TestCheckCleanMessage(t *testing.T) {
	t.Parallel()

	gate := newGate(
		&fakeModerations{result: &openai.Moderation{Flagged: false}},
		&fakeCategorizer{},
	)

	result := gate.Check(t.Context(), "had a nice day at school")

	assert.True(t, result.Safe)
	assert.False(t, result.FailedOpen)
}

func TestCheckVendorFlagged(t *testing.T) {
	t.Parallel()

	gate := newGate(
		&fakeModerations{result: &openai.Moderation{
			Flagged:    true,
			Categories: openai.ModerationCategories{Violence: true},
		}},
		&fakeCategorizer{category: enum.CategoryHI, ok: true},
	)

	result := gate.Check(t.Context(), "violent message")

	require.False(t, result.Safe)
	assert.Equal(t, enum.CategoryHI, result.Category)
	assert.Contains(t, result.Categories, "violence")
}

func TestCheckHighRiskCategoryWithoutVendorFlag(t *testing.T) {
	t.Parallel()

	// The vendor's own flag bit is unset, but a high-risk self-harm
	// category fired; the message is still held.
	gate := newGate(
		&fakeModerations{result: &openai.Moderation{
			Flagged:    false,
			Categories: openai.ModerationCategories{SelfHarmIntent: true},
		}},
		&fakeCategorizer{category: enum.CategorySH, ok: true},
	)

	result := gate.Check(t.Context(), "self harm message")

	require.False(t, result.Safe)
	assert.Equal(t, enum.CategorySH, result.Category)
	assert.Contains(t, result.Categories, "self-harm/intent")
}

func TestCheckNonHighRiskCategoryWithoutVendorFlag(t *testing.T) {
	t.Parallel()

	gate := newGate(
		&fakeModerations{result: &openai.Moderation{
			Flagged:    false,
			Categories: openai.ModerationCategories{Harassment: true},
		}},
		&fakeCategorizer{},
	)

	result := gate.Check(t.Context(), "borderline message")

	assert.True(t, result.Safe)
}

func TestCheckFailsOpen(t *testing.T) {
	t.Parallel()

	gate := newGate(
		&fakeModerations{err: errVendorDown},
		&fakeCategorizer{},
	)

	result := gate.Check(t.Context(), "anything")

	assert.True(t, result.Safe)
	assert.True(t, result.FailedOpen)
}

func TestCheckCategorizerUnrecognized(t *testing.T) {
	t.Parallel()

	gate := newGate(
		&fakeModerations{result: &openai.Moderation{Flagged: true}},
		&fakeCategorizer{ok: false},
	)

	result := gate.Check(t.Context(), "flagged message")

	require.False(t, result.Safe)
	assert.Equal(t, enum.CategoryModeration, result.Category)
}

func TestCheckCategorizerError(t *testing.T) {
	t.Parallel()

	gate := newGate(
		&fakeModerations{result: &openai.Moderation{Flagged: true}},
		&fakeCategorizer{err: errVendorDown},
	)

	result := gate.Check(t.Context(), "flagged message")

	require.False(t, result.Safe)
	assert.Equal(t, enum.CategoryModeration, result.Category)
}
