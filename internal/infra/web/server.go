// Package web is the HTTP surface of the conversation gateway.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ai-chat-relay/internal/domain/model"
	"ai-chat-relay/internal/infra/logging"
	"ai-chat-relay/internal/usecase"
)

type Server struct {
	userUC usecase.UserUseCase
	chatUC usecase.ChatUseCase
	auth   *AuthManager
	log    *zerolog.Logger
}

func NewServer(userUC usecase.UserUseCase, chatUC usecase.ChatUseCase, auth *AuthManager, logger *zerolog.Logger) *Server {
	return &Server{userUC: userUC, chatUC: chatUC, auth: auth, log: logger}
}

// Router builds the full route tree with the middleware chain applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleRoot)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/user", s.handleRegister)
	r.Post("/user/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Post("/user/logout", s.handleLogout)
		r.Get("/user/profile", s.handleProfile)
		r.Get("/users", s.handleRoster)
		r.Post("/chat/conversation", s.handleConversation)
		r.Post("/chat/role", s.handleRoleChat)
		r.Get("/chat/history", s.handleHistory)
		r.Delete("/chat/history", s.handleClearHistory)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "not found")
	})

	return Chain(r, TraceID(), RequestLog(s.log), Recover(s.log))
}

// ===== session middleware =====

type ctxKey string

const ctxSession ctxKey = "session"

// requireSession verifies the wire token and resolves it to a live
// session. Missing, malformed, and revoked tokens all read the same to
// the caller.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.auth.SessionIDFromRequest(r)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "not logged in")
			return
		}
		sess, err := s.userUC.Resolve(r.Context(), id)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "not logged in")
			return
		}
		sess.Touch()
		ctx := context.WithValue(r.Context(), ctxSession, sess)
		ctx = logging.WithUsername(ctx, sess.Username)
		ctx = logging.WithSessID(ctx, sess.Token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session placed in context by requireSession.
// Only call from handlers behind that middleware.
func sessionFrom(r *http.Request) *model.Session {
	return r.Context().Value(ctxSession).(*model.Session)
}
