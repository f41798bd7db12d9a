package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/outlivehq/mindmitra/internal/ai"
	"github.com/outlivehq/mindmitra/internal/ai/client"
	"github.com/outlivehq/mindmitra/internal/database/types/enum"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errFakeUnavailable = errors.New("model unavailable")

// fakeChat returns scripted completions in order. A nil entry yields an
// error instead of a response.
type fakeChat struct {
	contents []string
	errs     []error
	calls    []openai.ChatCompletionNewParams
}

func (f *fakeChat) New(
	_ context.Context, params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	i := len(f.calls)
	f.calls = append(f.calls, params)

	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}

	content := ""
	if i < len(f.contents) {
		content = f.contents[i]
	}

	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}, nil
}

func (f *fakeChat) NewWithRetry(
	ctx context.Context, params openai.ChatCompletionNewParams, callback client.RetryCallback,
) error {
	resp, err := f.New(ctx, params)
	return callback(resp, err)
}

func detectionConfig() config.Detection {
	return config.Detection{
		AbuseThreshold:    0.6,
		DefaultThreshold:  0.7,
		PatternConfidence: 0.9,
	}
}

func newClassifier(chat *fakeChat) *ai.SafetyClassifier {
	return ai.NewSafetyClassifier(chat, "test-model", detectionConfig(), zap.NewNop())
}

func analysisJSON(concernType string, confidence float64) string {
	return `{"is_concerning":true,"concern_type":"` + concernType + `",` +
		`"confidence":` + formatFloat(confidence) + `,` +
		`"reasoning":"test reasoning","severity":"high","response_needed":true}`
}

func formatFloat(f float64) string {
	switch f {
	case 0.6:
		return "0.6"
	case 0.59:
		return "0.59"
	case 0.7:
		return "0.7"
	case 0.71:
		return "0.71"
	}

	return "0.5"
}

func TestClassifyAbuseAtThreshold(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{contents: []string{analysisJSON("abuse", 0.6)}}
	classifier := newClassifier(chat)

	result := classifier.Classify(t.Context(), "he keeps hurting me at home")

	// The abuse threshold is inclusive
	assert.True(t, result.Concerning)
	assert.Equal(t, ai.ConcernAbuse, result.ConcernType)
	assert.Equal(t, enum.CategoryEA, result.Category)
	assert.False(t, result.FromFallback)
}

func TestClassifyAbuseBelowThreshold(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{contents: []string{analysisJSON("abuse", 0.59)}}
	classifier := newClassifier(chat)

	result := classifier.Classify(t.Context(), "things at home are rough")

	assert.False(t, result.Concerning)
	assert.Equal(t, ai.ConcernNone, result.ConcernType)
	assert.Equal(t, enum.CategoryNone, result.Category)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, "abuse", result.Analysis.ConcernType)
}

func TestClassifySuicideAtDefaultThreshold(t *testing.T) {
	t.Parallel()

	// The default threshold is exclusive, so exactly 0.7 does not flag
	chat := &fakeChat{contents: []string{analysisJSON("suicide", 0.7)}}
	classifier := newClassifier(chat)

	result := classifier.Classify(t.Context(), "I feel low")

	assert.False(t, result.Concerning)
}

func TestClassifySuicideAboveDefaultThreshold(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{contents: []string{analysisJSON("suicide", 0.71)}}
	classifier := newClassifier(chat)

	result := classifier.Classify(t.Context(), "I feel like there is no way out")

	assert.True(t, result.Concerning)
	assert.Equal(t, enum.CategorySI, result.Category)
}

func TestClassifyDistressMapsToSI(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{contents: []string{analysisJSON("distress", 0.71)}}
	classifier := newClassifier(chat)

	result := classifier.Classify(t.Context(), "completely hopeless lately")

	assert.True(t, result.Concerning)
	assert.Equal(t, enum.CategorySI, result.Category)
}

func TestClassifyNotConcerning(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{contents: []string{
		`{"is_concerning":false,"concern_type":"none","confidence":0.1,` +
			`"reasoning":"neutral","severity":"low","response_needed":false}`,
	}}
	classifier := newClassifier(chat)

	result := classifier.Classify(t.Context(), "we won the match today")

	assert.False(t, result.Concerning)
	assert.False(t, result.FromFallback)
}

func TestClassifyFallbackOnError(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{errs: []error{errFakeUnavailable}}
	classifier := newClassifier(chat)

	result := classifier.Classify(t.Context(), "I want to die")

	assert.True(t, result.FromFallback)
	assert.True(t, result.Concerning)
	assert.Equal(t, ai.ConcernSuicide, result.ConcernType)
	require.NotNil(t, result.Analysis)
	assert.InEpsilon(t, 0.8, result.Analysis.Confidence, 1e-9)
}

func TestClassifyFallbackOnGarbageOutput(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{contents: []string{"not json at all"}}
	classifier := newClassifier(chat)

	result := classifier.Classify(t.Context(), "he hit me yesterday")

	assert.True(t, result.FromFallback)
	assert.True(t, result.Concerning)
	assert.Equal(t, ai.ConcernAbuse, result.ConcernType)
}

func TestClassifyFallbackNoKeyword(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{errs: []error{errFakeUnavailable}}
	classifier := newClassifier(chat)

	result := classifier.Classify(t.Context(), "what should I eat for dinner")

	assert.True(t, result.FromFallback)
	assert.False(t, result.Concerning)
}
