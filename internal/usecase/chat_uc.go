package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-relay/internal/domain"
	"ai-chat-relay/internal/domain/model"
	"ai-chat-relay/internal/domain/ports/adapter"
	"ai-chat-relay/internal/infra/logging"
	"ai-chat-relay/internal/infra/metrics"
	"ai-chat-relay/internal/prompt"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

// ChatUseCase drives a session's conversation against the upstream
// completion endpoint.
type ChatUseCase interface {
	// SendMessage relays one plain-chat turn over the session's full
	// transcript and returns the assistant reply plus usage.
	SendMessage(ctx context.Context, sess *model.Session, incoming []model.Turn) (string, adapter.Usage, error)
	// RoleChat runs a stateless persona exchange; it never touches the
	// plain-chat transcript.
	RoleChat(ctx context.Context, sess *model.Session, role, message string) (string, adapter.Usage, error)
	History(ctx context.Context, sess *model.Session) ([]model.ChatExchange, int)
	ClearHistory(ctx context.Context, sess *model.Session)
}

type chatUC struct {
	relay        adapter.CompletionAdapter
	provider     string
	timeout      time.Duration
	historyLimit int
	log          *zerolog.Logger
}

func NewChatUseCase(relay adapter.CompletionAdapter, provider string, timeout time.Duration, historyLimit int, logger *zerolog.Logger) *chatUC {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &chatUC{
		relay:        relay,
		provider:     provider,
		timeout:      timeout,
		historyLimit: historyLimit,
		log:          logger,
	}
}

func (c *chatUC) SendMessage(ctx context.Context, sess *model.Session, incoming []model.Turn) (string, adapter.Usage, error) {
	defer logging.TraceDuration(c.log, "ChatUC.SendMessage")()

	userText := ""
	for _, t := range incoming {
		switch t.Role {
		case model.RoleSystem:
			// A client-supplied directive is adopted only while the
			// transcript has none; it is never duplicated.
			sess.AdoptSystemTurn(t.Content)
		case model.RoleUser:
			userText = t.Content
		}
	}
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return "", adapter.Usage{}, domain.ErrInvalidArgument
	}

	// The user turn stays appended even when the relay call below
	// fails, so a retried message carries the earlier attempt as
	// context.
	sess.AppendTurn(model.RoleUser, userText)

	reply, usage, err := c.complete(ctx, prompt.Compose(sess.Username, sess.Turns()))
	if err != nil {
		return "", adapter.Usage{}, err
	}

	sess.AppendTurn(model.RoleAssistant, reply)
	sess.RecordExchange("", userText, reply)
	return reply, usage, nil
}

func (c *chatUC) RoleChat(ctx context.Context, sess *model.Session, role, message string) (string, adapter.Usage, error) {
	defer logging.TraceDuration(c.log, "ChatUC.RoleChat")()

	role = strings.TrimSpace(role)
	message = strings.TrimSpace(message)
	if role == "" || message == "" {
		return "", adapter.Usage{}, domain.ErrInvalidArgument
	}

	reply, usage, err := c.complete(ctx, prompt.ComposeRole(role, message))
	if err != nil {
		return "", adapter.Usage{}, err
	}

	sess.RecordExchange(role, message, reply)
	return reply, usage, nil
}

func (c *chatUC) History(ctx context.Context, sess *model.Session) ([]model.ChatExchange, int) {
	return sess.RecentExchanges(c.historyLimit), sess.HistoryCount()
}

func (c *chatUC) ClearHistory(ctx context.Context, sess *model.Session) {
	sess.ClearHistory()
	logging.With(ctx, c.log).Info().Str("username", sess.Username).Msg("history cleared")
}

func (c *chatUC) complete(ctx context.Context, turns []model.Turn) (string, adapter.Usage, error) {
	msgs := make([]adapter.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, adapter.Message{Role: t.Role, Content: t.Content})
	}

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	reply, usage, err := c.relay.Complete(cctx, msgs)
	latency := time.Since(start).Milliseconds()
	metrics.ObserveRelayUsage(c.provider, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens, latency, err == nil)
	if err != nil {
		logging.With(ctx, c.log).Warn().Err(err).Int64("latency_ms", latency).Msg("completion failed")
		return "", adapter.Usage{}, err
	}

	if usage.TotalTokens == 0 {
		// Some gateways omit usage; fall back to a local estimate so
		// metrics and client display stay populated.
		if n, cerr := c.relay.CountTokens(ctx, msgs); cerr == nil {
			usage.PromptTokens = n
			usage.TotalTokens = n
		}
	}
	return reply, usage, nil
}
