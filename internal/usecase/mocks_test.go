package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"ai-chat-relay/internal/domain"
	"ai-chat-relay/internal/domain/model"
	"ai-chat-relay/internal/domain/ports/adapter"
)

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// memCredRepo is a small in-memory credential store used by unit tests.
type memCredRepo struct {
	mu    sync.Mutex
	store map[string]*model.Credential
}

func newMemCredRepo() *memCredRepo {
	return &memCredRepo{store: make(map[string]*model.Credential)}
}

func (m *memCredRepo) Create(ctx context.Context, cred *model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[cred.Username]; ok {
		return domain.ErrDuplicateUser
	}
	cp := *cred
	m.store[cred.Username] = &cp
	return nil
}

func (m *memCredRepo) FindByUsername(ctx context.Context, username string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCredRepo) List(ctx context.Context) ([]model.CredentialInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.CredentialInfo, 0, len(m.store))
	for _, c := range m.store {
		out = append(out, c.Info())
	}
	return out, nil
}

func (m *memCredRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store), nil
}

// stubRelay is a scripted completion adapter. Each call pops the next
// scripted result; when the script is empty the default reply is used.
type stubRelay struct {
	mu      sync.Mutex
	reply   string
	usage   adapter.Usage
	errs    []error
	replies []string

	calls [][]adapter.Message
}

func newStubRelay(reply string, usage adapter.Usage) *stubRelay {
	return &stubRelay{reply: reply, usage: usage}
}

func (s *stubRelay) Complete(ctx context.Context, messages []adapter.Message) (string, adapter.Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]adapter.Message, len(messages))
	copy(cp, messages)
	s.calls = append(s.calls, cp)

	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return "", adapter.Usage{}, err
		}
	}
	if len(s.replies) > 0 {
		r := s.replies[0]
		s.replies = s.replies[1:]
		return r, s.usage, nil
	}
	return s.reply, s.usage, nil
}

func (s *stubRelay) CountTokens(ctx context.Context, messages []adapter.Message) (int, error) {
	n := 0
	for _, m := range messages {
		n += len(m.Content)
	}
	return n, nil
}

func (s *stubRelay) lastCall() []adapter.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

func (s *stubRelay) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
