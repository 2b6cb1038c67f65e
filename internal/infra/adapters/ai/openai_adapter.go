package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"ai-chat-relay/internal/domain"
	"ai-chat-relay/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter relays a message list to an OpenAI-compatible chat
// completions endpoint. When a model name is configured the request
// body is {"model": ..., "messages": [...]}; with no model the bare
// messages array is posted, which is the contract of proxy gateways
// that pin the model server-side.
type OpenAIAdapter struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
	encoding *tiktoken.Tiktoken
}

func NewOpenAIAdapter(endpoint, apiKey, model string, timeout time.Duration) (*OpenAIAdapter, error) {
	if endpoint == "" {
		return nil, errors.New("completion endpoint empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// cl100k_base covers the gpt-4o family; counting is best-effort.
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &OpenAIAdapter{
		apiKey:   apiKey,
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		client:   &http.Client{Timeout: timeout},
		encoding: enc,
	}, nil
}

func (o *OpenAIAdapter) Complete(ctx context.Context, messages []adapter.Message) (string, adapter.Usage, error) {
	var body []byte
	if o.model != "" {
		req := struct {
			Model    string            `json:"model"`
			Messages []adapter.Message `json:"messages"`
		}{Model: o.model, Messages: messages}
		body, _ = json.Marshal(req)
	} else {
		body, _ = json.Marshal(messages)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", adapter.Usage{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", adapter.Usage{}, mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", adapter.Usage{}, &domain.UpstreamError{
			Status:  resp.StatusCode,
			Message: readErrorDetail(resp.Body),
		}
	}

	var payload struct {
		Choices []struct {
			Message adapter.Message `json:"message"`
		} `json:"choices"`
		Usage adapter.Usage `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", adapter.Usage{}, err
	}
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, payload.Usage, nil
		}
	}
	return "", adapter.Usage{}, errors.New("no choice content")
}

// CountTokens estimates prompt tokens locally; the exact count is
// whatever the provider reports in usage.
func (o *OpenAIAdapter) CountTokens(ctx context.Context, messages []adapter.Message) (int, error) {
	total := 0
	for _, m := range messages {
		total += len(o.encoding.Encode(m.Content, nil, nil))
		// role tag plus message framing overhead
		total += 4
	}
	return total, nil
}

// mapTransportError folds the http.Client failure modes into the two
// relay error classes: timeouts and everything else (connection
// refused, DNS, TLS).
func mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrUpstreamTimeout
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return domain.ErrUpstreamTimeout
	}
	return domain.ErrUpstreamUnreachable
}

// readErrorDetail pulls a human-readable message out of an upstream
// error body, accepting the {"detail": ...} and {"error":{"message":...}}
// shapes before falling back to the raw text.
func readErrorDetail(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	var detail struct {
		Detail string `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(b, &detail); err == nil {
		if detail.Detail != "" {
			return detail.Detail
		}
		if detail.Error.Message != "" {
			return detail.Error.Message
		}
	}
	return strings.TrimSpace(string(b))
}
