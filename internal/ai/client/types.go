package client

import (
	"context"

	"github.com/openai/openai-go"
)

// Client provides a unified interface for making AI requests.
type Client interface {
	Chat() ChatCompletions
	Moderations() Moderations
}

// ChatCompletions provides chat completion methods.
type ChatCompletions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
	NewWithRetry(ctx context.Context, params openai.ChatCompletionNewParams, callback RetryCallback) error
}

// Moderations provides content moderation methods.
type Moderations interface {
	Check(ctx context.Context, text string) (*openai.Moderation, error)
}

// RetryCallback processes a chat completion response or its error. Returning
// a non-nil error retries the request unless the error is permanent.
type RetryCallback func(resp *openai.ChatCompletion, err error) error
