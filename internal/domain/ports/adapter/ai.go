package adapter

import "context"

// Message represents a chat message sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Usage for a single completion call, as reported by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionAdapter is the port for the upstream completion endpoint.
// The endpoint is stateless: the full ordered turn list is the entire
// conversational context and must be resent on every call.
type CompletionAdapter interface {
	// Complete returns the assistant reply plus usage counters.
	Complete(ctx context.Context, messages []Message) (string, Usage, error)

	// CountTokens returns prompt tokens for the provided messages
	// (provider-specific counting; best-effort when exact isn't
	// available).
	CountTokens(ctx context.Context, messages []Message) (int, error)
}
