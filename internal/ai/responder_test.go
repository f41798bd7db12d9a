package ai_test

import (
	"strings"
	"testing"

	"github.com/outlivehq/mindmitra/internal/ai"
	"github.com/outlivehq/mindmitra/internal/database/types"
	"github.com/outlivehq/mindmitra/internal/guardrails"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validReply = "That sounds like a lot to carry. What part feels heaviest right now?"

func newResponder(chat *fakeChat) *ai.Responder {
	return ai.NewResponder(chat,
		config.OpenAI{
			ChatModel:       "test-model",
			ChatTemperature: 0.7,
			ChatMaxTokens:   200,
		},
		guardrails.Config{
			MaxWords:             50,
			MaxSentences:         3,
			RequireQuestion:      true,
			MaxRetries:           3,
			RetryTemperature:     0.5,
			TemperatureDecrement: 0.2,
		},
		zap.NewNop(),
	)
}

func history(texts ...string) []ai.Turn {
	turns := make([]ai.Turn, len(texts))
	for i, text := range texts {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}

		turns[i] = ai.Turn{Role: role, Content: text}
	}

	return turns
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{contents: []string{validReply}}
	responder := newResponder(chat)

	reply, err := responder.Generate(t.Context(), history("today was rough"))
	require.NoError(t, err)
	assert.Equal(t, validReply, reply)

	require.Len(t, chat.calls, 1)
	assert.Equal(t, "test-model", chat.calls[0].Model)
	assert.InEpsilon(t, 0.7, chat.calls[0].Temperature.Value, 1e-9)

	// System prompt plus the single user turn
	assert.Len(t, chat.calls[0].Messages, 2)
}

func TestGenerateError(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{errs: []error{errFakeUnavailable}}
	responder := newResponder(chat)

	_, err := responder.Generate(t.Context(), history("hello"))
	require.Error(t, err)
}

func TestEnforceGuardrailsCompliantReply(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{}
	responder := newResponder(chat)

	got := responder.EnforceGuardrails(t.Context(), validReply, history("today was rough"))

	assert.Equal(t, validReply, got)
	assert.Empty(t, chat.calls, "compliant replies must not trigger regeneration")
}

func TestEnforceGuardrailsRegenerates(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{contents: []string{validReply}}
	responder := newResponder(chat)

	bad := strings.Repeat("word ", 60) + "end."

	got := responder.EnforceGuardrails(t.Context(), bad, history("today was rough"))

	assert.Equal(t, validReply, got)
	require.Len(t, chat.calls, 1)

	// Regeneration runs at the retry temperature, not the chat temperature
	assert.InEpsilon(t, 0.5, chat.calls[0].Temperature.Value, 1e-9)

	// The corrective instruction is appended after the conversation
	messages := chat.calls[0].Messages
	require.NotEmpty(t, messages)
}

func TestEnforceGuardrailsTemperatureSchedule(t *testing.T) {
	t.Parallel()

	bad := strings.Repeat("word ", 60) + "end."

	// Every regeneration stays non-compliant
	chat := &fakeChat{contents: []string{bad, bad, bad}}
	responder := newResponder(chat)

	responder.EnforceGuardrails(t.Context(), bad, history("today was rough"))

	require.Len(t, chat.calls, 3)
	assert.InEpsilon(t, 0.5, chat.calls[0].Temperature.Value, 1e-9)
	assert.InEpsilon(t, 0.3, chat.calls[1].Temperature.Value, 1e-9)
	assert.InEpsilon(t, 0.1, chat.calls[2].Temperature.Value, 1e-9)
}

func TestEnforceGuardrailsExhaustionAppendsQuestion(t *testing.T) {
	t.Parallel()

	bad := "I hear you. That must be hard. Stay strong. Keep going."

	chat := &fakeChat{contents: []string{bad, bad, bad}}
	responder := newResponder(chat)

	got := responder.EnforceGuardrails(t.Context(), bad, history("today was rough"))

	assert.True(t, strings.HasSuffix(got, "How does that make you feel?"))
}

func TestEnforceGuardrailsExhaustionKeepsOriginalReply(t *testing.T) {
	t.Parallel()

	original := "Day one was hard. Day two was harder. Day three broke me. Hold on."
	candidate := "Still rambling. Still unfocused. Still no question. Still too long."

	chat := &fakeChat{contents: []string{candidate, candidate, candidate}}
	responder := newResponder(chat)

	got := responder.EnforceGuardrails(t.Context(), original, history("today was rough"))

	// Failed candidates are discarded; the first draft gets the patch.
	assert.Equal(t, original+" How does that make you feel?", got)
	require.Len(t, chat.calls, 3)
}

func TestEnforceGuardrailsSkipsPatchWhenQuestionPresent(t *testing.T) {
	t.Parallel()

	// Too many sentences but already ends with a question
	bad := "One. Two. Three. Four. Is that enough?"

	chat := &fakeChat{contents: []string{bad, bad, bad}}
	responder := newResponder(chat)

	got := responder.EnforceGuardrails(t.Context(), bad, history("today was rough"))

	assert.Equal(t, bad, got)
}

func TestEnforceGuardrailsSurvivesCallErrors(t *testing.T) {
	t.Parallel()

	bad := strings.Repeat("word ", 60) + "end."

	chat := &fakeChat{
		errs:     []error{errFakeUnavailable, nil},
		contents: []string{"", validReply},
	}
	responder := newResponder(chat)

	got := responder.EnforceGuardrails(t.Context(), bad, history("today was rough"))

	assert.Equal(t, validReply, got)
	require.Len(t, chat.calls, 2)

	// A failed attempt does not advance the temperature schedule
	assert.InEpsilon(t, 0.5, chat.calls[1].Temperature.Value, 1e-9)
}
