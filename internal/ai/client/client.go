package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"github.com/outlivehq/mindmitra/pkg/utils"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrNoProvidersAvailable is returned when a model has no configured mapping.
var ErrNoProvidersAvailable = errors.New("no providers available")

// AIClient implements the Client interface.
type AIClient struct {
	client        *openai.Client
	breaker       *gobreaker.CircuitBreaker
	semaphore     *semaphore.Weighted
	modelMappings map[string]string
	logger        *zap.Logger
}

// NewClient creates a new AIClient.
func NewClient(cfg *config.OpenAI, logger *zap.Logger) (*AIClient, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(90 * time.Second),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(opts...)

	settings := gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		Interval:    0,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &AIClient{
		client:        &client,
		breaker:       gobreaker.NewCircuitBreaker(settings),
		semaphore:     semaphore.NewWeighted(cfg.MaxConcurrent),
		modelMappings: cfg.ModelMappings,
		logger:        logger.Named("ai_client"),
	}, nil
}

// Chat returns a ChatCompletions implementation.
func (c *AIClient) Chat() ChatCompletions {
	return &chatCompletions{client: c}
}

// Moderations returns a Moderations implementation.
func (c *AIClient) Moderations() Moderations {
	return &moderations{client: c}
}

// mapModel resolves a logical model name to the provider model. Names without
// a configured mapping pass through unchanged.
func (c *AIClient) mapModel(model string) string {
	if mapped, ok := c.modelMappings[model]; ok {
		return mapped
	}

	return model
}

// chatCompletions implements the ChatCompletions interface.
type chatCompletions struct {
	client *AIClient
}

// New makes a chat completion request.
func (c *chatCompletions) New(
	ctx context.Context, params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	params.Model = c.client.mapModel(params.Model)

	if err := c.client.semaphore.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer c.client.semaphore.Release(1)

	result, err := c.client.breaker.Execute(func() (any, error) {
		return c.client.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		c.client.logger.Warn("Chat completion request failed",
			zap.String("model", params.Model),
			zap.Error(err))

		return nil, err
	}

	return result.(*openai.ChatCompletion), nil
}

// NewWithRetry makes a chat completion request with retry logic.
func (c *chatCompletions) NewWithRetry(
	ctx context.Context, params openai.ChatCompletionNewParams, callback RetryCallback,
) error {
	params.Model = c.client.mapModel(params.Model)

	if err := c.client.semaphore.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer c.client.semaphore.Release(1)

	var attempt uint64

	operation := func() (struct{}, error) {
		if err := ctx.Err(); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}

		attempt++

		result, err := c.client.breaker.Execute(func() (any, error) {
			return c.client.client.Chat.Completions.New(ctx, params)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return struct{}{}, backoff.Permanent(fmt.Errorf("circuit breaker is open: %w", err))
			}

			c.client.logger.Warn("Chat completion request failed",
				zap.String("model", params.Model),
				zap.Uint64("attempt", attempt),
				zap.Error(err))

			return struct{}{}, callbackOrErr(callback, nil, err)
		}

		resp := result.(*openai.ChatCompletion)

		return struct{}{}, callbackOrErr(callback, resp, nil)
	}

	if _, err := utils.WithRetry(ctx, operation, utils.GetAIRetryOptions()); err != nil {
		return fmt.Errorf("all retry attempts failed: %w", err)
	}

	return nil
}

// callbackOrErr invokes the callback and reports the error that should drive
// the retry decision: the callback's error if it returned one, otherwise the
// request error itself.
func callbackOrErr(callback RetryCallback, resp *openai.ChatCompletion, err error) error {
	if cbErr := callback(resp, err); cbErr != nil {
		return cbErr
	}

	return err
}

// moderations implements the Moderations interface.
type moderations struct {
	client *AIClient
}

// Check runs the vendor moderation endpoint over the given text and returns
// the first (and only) result.
func (m *moderations) Check(ctx context.Context, text string) (*openai.Moderation, error) {
	if err := m.client.semaphore.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer m.client.semaphore.Release(1)

	result, err := m.client.breaker.Execute(func() (any, error) {
		return m.client.client.Moderations.New(ctx, openai.ModerationNewParams{
			Input: openai.ModerationNewParamsInputUnion{
				OfString: openai.String(text),
			},
		})
	})
	if err != nil {
		m.client.logger.Warn("Moderation request failed", zap.Error(err))
		return nil, err
	}

	resp := result.(*openai.ModerationNewResponse)
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: moderation returned no results", utils.ErrModelResponse)
	}

	return &resp.Results[0], nil
}
