// Package types defines the REST API request and response shapes.
package types

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	// AccessCode identifies the account.
	AccessCode string `json:"accessCode"`
	// Message is the user's message text.
	Message string `json:"message"`
}

// ChatResponse is the reply to a chat request.
type ChatResponse struct {
	// Reply is the text to show the user.
	Reply string `json:"reply"`
	// Kind reports which pipeline stage produced the reply: chat, crisis,
	// safety, restricted, or rate_limited.
	Kind string `json:"kind"`
}

// SessionTurn is one conversation turn in a session response.
type SessionTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GetSessionResponse is the body of GET /v1/sessions/{code}.
type GetSessionResponse struct {
	AccessCode string        `json:"accessCode"`
	Turns      []SessionTurn `json:"turns"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	// QueueLength is the number of messages awaiting moderation.
	QueueLength int `json:"queueLength"`
}

// ErrorResponse carries a client-facing error message.
type ErrorResponse struct {
	Error string `json:"error"`
}
