// Package guardrails enforces shape constraints on generated replies:
// word budget, sentence budget, and a trailing follow-up question.
package guardrails

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/outlivehq/mindmitra/internal/setup/config"
)

// Config holds the response shape constraints and regeneration settings.
// All values come from deployment configuration.
type Config struct {
	MaxWords             int
	MaxSentences         int
	RequireQuestion      bool
	MaxRetries           int
	RetryTemperature     float64
	TemperatureDecrement float64
}

// FromConfig maps deployment configuration onto validation settings.
func FromConfig(cfg config.Guardrails) Config {
	return Config{
		MaxWords:             cfg.MaxWords,
		MaxSentences:         cfg.MaxSentences,
		RequireQuestion:      cfg.RequireQuestion,
		MaxRetries:           cfg.MaxRetries,
		RetryTemperature:     cfg.RetryTemperature,
		TemperatureDecrement: cfg.TemperatureDecrement,
	}
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CountSentences counts sentences by splitting on terminal punctuation runs
// and discarding empty fragments, so "Trailing..." is one sentence.
func CountSentences(text string) int {
	fragments := sentenceSplit.Split(strings.TrimSpace(text), -1)

	count := 0

	for _, fragment := range fragments {
		if strings.TrimSpace(fragment) != "" {
			count++
		}
	}

	return count
}

// EndsWithQuestion reports whether the last non-whitespace character is '?'.
func EndsWithQuestion(text string) bool {
	text = strings.TrimSpace(text)
	return text != "" && text[len(text)-1] == '?'
}

// Validate checks a reply against the configured constraints and returns
// whether it passes along with a description of each violated rule.
func Validate(text string, cfg Config) (bool, []string) {
	var violations []string

	if words := CountWords(text); words > cfg.MaxWords {
		violations = append(violations,
			fmt.Sprintf("Response has %d words (max %d)", words, cfg.MaxWords))
	}

	if sentences := CountSentences(text); sentences > cfg.MaxSentences {
		violations = append(violations,
			fmt.Sprintf("Response has %d sentences (max %d)", sentences, cfg.MaxSentences))
	}

	if cfg.RequireQuestion && !EndsWithQuestion(text) {
		violations = append(violations, "Response must end with a follow-up question")
	}

	return len(violations) == 0, violations
}
