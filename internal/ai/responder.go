package ai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/outlivehq/mindmitra/internal/ai/client"
	"github.com/outlivehq/mindmitra/internal/database/types"
	"github.com/outlivehq/mindmitra/internal/guardrails"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"github.com/outlivehq/mindmitra/pkg/utils"
	"go.uber.org/zap"
)

// minRetryTemperature floors the regeneration schedule so late attempts
// never reach zero and collapse into repeating the same violation.
const minRetryTemperature = 0.1

// Turn is one prior message in a conversation, passed to the model as context.
type Turn struct {
	Role    string
	Content string
}

// Responder generates companion replies and enforces response rules on them.
type Responder struct {
	chat         client.ChatCompletions
	cfg          config.OpenAI
	guard        guardrails.Config
	systemPrompt string
	logger       *zap.Logger
}

// NewResponder creates a reply generator.
func NewResponder(
	chat client.ChatCompletions, cfg config.OpenAI, guard guardrails.Config, logger *zap.Logger,
) *Responder {
	return &Responder{
		chat:         chat,
		cfg:          cfg,
		guard:        guard,
		systemPrompt: LoadSystemPrompt(cfg.SystemPromptFile, logger),
		logger:       logger.Named("ai_responder"),
	}
}

// Generate produces a reply for the conversation so far.
// The last turn in history is the message being replied to.
func (r *Responder) Generate(ctx context.Context, history []Turn) (string, error) {
	return r.complete(ctx, r.messages(history), r.cfg.ChatTemperature)
}

// EnforceGuardrails validates a reply against the response rules and
// regenerates it with corrective instructions until it passes or the retry
// budget runs out. When every regeneration fails validation, the original
// reply is patched and returned rather than any of the failed candidates.
// The returned reply always ends with a follow-up question.
func (r *Responder) EnforceGuardrails(ctx context.Context, reply string, history []Turn) string {
	ok, violations := guardrails.Validate(reply, r.guard)
	if ok {
		return reply
	}

	temperature := r.guard.RetryTemperature

	for attempt := range r.guard.MaxRetries {
		messages := r.messages(history)
		messages = append(messages, openai.SystemMessage(fmt.Sprintf(
			CorrectivePrompt, strings.Join(violations, "; "), r.guard.MaxWords, r.guard.MaxSentences,
		)))

		candidate, err := r.complete(ctx, messages, temperature)
		if err != nil {
			r.logger.Warn("Regeneration attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err))

			continue
		}

		if ok, violations = guardrails.Validate(candidate, r.guard); ok {
			return candidate
		}

		temperature = max(minRetryTemperature, temperature-r.guard.TemperatureDecrement)
	}

	r.logger.Info("Reply still violates response rules after retries, patching",
		zap.Strings("violations", violations))

	return patchReply(reply)
}

// patchReply makes a non-conforming reply acceptable without another model
// call by appending the follow-up question the rules require.
func patchReply(reply string) string {
	reply = strings.TrimSpace(reply)
	if guardrails.EndsWithQuestion(reply) {
		return reply
	}

	return reply + " How does that make you feel?"
}

func (r *Responder) messages(history []Turn) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(r.systemPrompt))

	for _, turn := range history {
		if turn.Role == types.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}

	return messages
}

func (r *Responder) complete(
	ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, temperature float64,
) (string, error) {
	var reply string

	err := r.chat.NewWithRetry(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               r.cfg.ChatModel,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(int64(r.cfg.ChatMaxTokens)),
	}, func(resp *openai.ChatCompletion, err error) error {
		if err != nil {
			return err
		}

		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return fmt.Errorf("%w: no response from model", utils.ErrModelResponse)
		}

		reply = strings.TrimSpace(resp.Choices[0].Message.Content)

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("reply generation failed: %w", err)
	}

	return reply, nil
}

// LoadSystemPrompt reads the companion system prompt from path, falling back
// to the built-in prompt when the path is empty or unreadable.
func LoadSystemPrompt(path string, logger *zap.Logger) string {
	if path == "" {
		return DefaultSystemPrompt
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Could not read system prompt file, using built-in prompt",
			zap.String("path", path),
			zap.Error(err))

		return DefaultSystemPrompt
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return DefaultSystemPrompt
	}

	return prompt
}
