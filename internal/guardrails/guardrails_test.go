package guardrails_test

import (
	"strings"
	"testing"

	"github.com/outlivehq/mindmitra/internal/guardrails"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() guardrails.Config {
	return guardrails.Config{
		MaxWords:        50,
		MaxSentences:    3,
		RequireQuestion: true,
	}
}

func TestCountWords(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, guardrails.CountWords(""))
	assert.Equal(t, 0, guardrails.CountWords("   "))
	assert.Equal(t, 1, guardrails.CountWords("hello"))
	assert.Equal(t, 5, guardrails.CountWords("that sounds really hard today"))
	assert.Equal(t, 3, guardrails.CountWords("  spaced   out   words  "))
}

func TestCountSentences(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, guardrails.CountSentences(""))
	assert.Equal(t, 1, guardrails.CountSentences("Just one sentence."))
	assert.Equal(t, 2, guardrails.CountSentences("First one. Second one?"))
	assert.Equal(t, 3, guardrails.CountSentences("One. Two! Three?"))

	// Punctuation runs collapse into a single boundary
	assert.Equal(t, 1, guardrails.CountSentences("Really..."))
	assert.Equal(t, 2, guardrails.CountSentences("Wait... what?!"))

	// A missing terminal mark still counts the trailing fragment
	assert.Equal(t, 2, guardrails.CountSentences("Done. And more"))
}

func TestEndsWithQuestion(t *testing.T) {
	t.Parallel()

	assert.True(t, guardrails.EndsWithQuestion("How are you feeling?"))
	assert.True(t, guardrails.EndsWithQuestion("How are you feeling?  "))
	assert.False(t, guardrails.EndsWithQuestion("I hear you."))
	assert.False(t, guardrails.EndsWithQuestion("What? Never mind."))
	assert.False(t, guardrails.EndsWithQuestion(""))
}

func TestValidateCompliantReply(t *testing.T) {
	t.Parallel()

	ok, violations := guardrails.Validate(
		"That sounds exhausting. It makes sense you feel worn down. What part of today drained you the most?",
		testConfig(),
	)

	assert.True(t, ok)
	assert.Empty(t, violations)
}

func TestValidateTooManyWords(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 51) + "ok?"

	ok, violations := guardrails.Validate(long, testConfig())

	assert.False(t, ok)
	assert.Contains(t, violations, "Response has 52 words (max 50)")
}

func TestValidateTooManySentences(t *testing.T) {
	t.Parallel()

	ok, violations := guardrails.Validate("One. Two. Three. Is that four?", testConfig())

	assert.False(t, ok)
	assert.Contains(t, violations, "Response has 4 sentences (max 3)")
}

func TestValidateMissingQuestion(t *testing.T) {
	t.Parallel()

	ok, violations := guardrails.Validate("I hear you. That must be hard.", testConfig())

	assert.False(t, ok)
	assert.Contains(t, violations, "Response must end with a follow-up question")
}

func TestValidateQuestionNotRequired(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RequireQuestion = false

	ok, violations := guardrails.Validate("I hear you. That must be hard.", cfg)

	assert.True(t, ok)
	assert.Empty(t, violations)
}

func TestValidateWordAndQuestionViolations(t *testing.T) {
	t.Parallel()

	// One word over the limit, a single sentence, no trailing question
	long := strings.Repeat("word ", 50) + "end."

	ok, violations := guardrails.Validate(long, testConfig())

	assert.False(t, ok)
	require.Len(t, violations, 2)
	assert.Contains(t, violations, "Response has 51 words (max 50)")
	assert.Contains(t, violations, "Response must end with a follow-up question")
}

func TestValidateReportsAllViolations(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("one two three four five. ", 11)

	ok, violations := guardrails.Validate(long, testConfig())

	assert.False(t, ok)
	assert.Len(t, violations, 3)
}
