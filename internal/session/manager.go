// Package session maps opaque tokens to authenticated identities and
// their conversation state. Everything lives in process memory; a
// server restart drops all sessions.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ai-chat-relay/internal/domain"
	"ai-chat-relay/internal/domain/model"
)

// Manager owns the token -> session map. The map is guarded by a
// read-write lock while each session carries its own lock, so resolving
// or mutating one session never blocks the others.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*model.Session)}
}

// Create opens a fresh session for an already-verified identity and
// returns it. Concurrent logins for the same username each get their
// own session; they are not deduplicated.
func (m *Manager) Create(username string) *model.Session {
	s := model.NewSession(uuid.NewString(), username)
	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s
}

// Resolve looks up a token. Missing, unknown, and destroyed tokens are
// indistinguishable: all yield domain.ErrNotLoggedIn.
func (m *Manager) Resolve(token string) (*model.Session, error) {
	if token == "" {
		return nil, domain.ErrNotLoggedIn
	}
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotLoggedIn
	}
	return s, nil
}

// Destroy drops all state bound to the token. Idempotent.
func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// EvictIdle drops every session whose last activity is older than
// maxIdle and reports how many were removed. A maxIdle of zero or less
// disables eviction.
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-maxIdle)

	m.mu.RLock()
	stale := make([]string, 0)
	for token, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, token)
		}
	}
	m.mu.RUnlock()

	if len(stale) == 0 {
		return 0
	}
	m.mu.Lock()
	evicted := 0
	for _, token := range stale {
		s, ok := m.sessions[token]
		if !ok || !s.LastActive().Before(cutoff) {
			continue
		}
		delete(m.sessions, token)
		evicted++
	}
	m.mu.Unlock()
	return evicted
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
