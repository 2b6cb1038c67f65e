package model

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Role values for a conversation turn.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message unit in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatExchange is a denormalized history record derived from one
// user/assistant round trip. It is kept per session for display and is
// distinct from the raw Turn sequence sent upstream. Persona is set only
// for role-based chats.
type ChatExchange struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Persona     string    `json:"role,omitempty"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
}

// Session is the aggregate root for one logged-in client: an
// authenticated identity plus the plain-chat transcript and the history
// log. Turns are appended, never mutated; the history can be wholesale
// cleared without destroying the session. Sessions are independent:
// each one carries its own lock so mutating one never blocks another.
type Session struct {
	Token     string
	Username  string
	LoginTime time.Time

	mu         sync.Mutex
	lastActive time.Time
	transcript []Turn
	history    []ChatExchange
}

func NewSession(token, username string) *Session {
	now := time.Now()
	return &Session{
		Token:      token,
		Username:   username,
		LoginTime:  now,
		lastActive: now,
		transcript: make([]Turn, 0, 8),
	}
}

// Touch marks the session as active now. Called on every authenticated
// request so the idle sweeper only evicts genuinely abandoned sessions.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) AppendTurn(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, Turn{Role: role, Content: content})
}

// AdoptSystemTurn inserts a system directive at the front of the
// transcript, but only when none is present yet. Reports whether the
// turn was adopted.
func (s *Session) AdoptSystemTurn(content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transcript {
		if t.Role == RoleSystem {
			return false
		}
	}
	s.transcript = append([]Turn{{Role: RoleSystem, Content: content}}, s.transcript...)
	return true
}

// Turns returns a copy of the transcript in input order.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

func (s *Session) TurnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcript)
}

// RecordExchange appends a history record for one completed round trip.
func (s *Session) RecordExchange(persona, userMessage, aiResponse string) ChatExchange {
	ex := ChatExchange{
		ID:          ulid.Make().String(),
		Timestamp:   time.Now(),
		Persona:     persona,
		UserMessage: userMessage,
		AIResponse:  aiResponse,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, ex)
	return ex
}

// RecentExchanges returns the most recent n history records, newest
// last.
func (s *Session) RecentExchanges(n int) []ChatExchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if n > 0 && len(s.history) > n {
		start = len(s.history) - n
	}
	out := make([]ChatExchange, len(s.history)-start)
	copy(out, s.history[start:])
	return out
}

func (s *Session) HistoryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// ClearHistory drops all history records. The session itself survives.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}
