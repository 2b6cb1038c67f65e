package ai

import (
	"context"
	"fmt"
	"time"

	"ai-chat-relay/internal/domain/ports/adapter"
)

var _ adapter.CompletionAdapter = (*NoopAdapter)(nil)

// NoopAdapter echoes the last user message instead of calling a real
// provider. Used in dev mode so the full gateway flow can be exercised
// offline.
type NoopAdapter struct{}

func NewNoopAdapter() *NoopAdapter { return &NoopAdapter{} }

func (a *NoopAdapter) Complete(ctx context.Context, messages []adapter.Message) (string, adapter.Usage, error) {
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return "", adapter.Usage{}, ctx.Err()
	}
	last := ""
	for _, m := range messages {
		if m.Role == "user" {
			last = m.Content
		}
	}
	reply := fmt.Sprintf("[noop] you said: %s", last)
	tokens, _ := a.CountTokens(ctx, messages)
	return reply, adapter.Usage{
		PromptTokens:     tokens,
		CompletionTokens: len(reply) / 4,
		TotalTokens:      tokens + len(reply)/4,
	}, nil
}

func (a *NoopAdapter) CountTokens(ctx context.Context, messages []adapter.Message) (int, error) {
	total := 0
	for _, m := range messages {
		total += len(m.Content) / 4
	}
	return total, nil
}
