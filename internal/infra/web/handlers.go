package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ai-chat-relay/internal/domain"
	"ai-chat-relay/internal/domain/model"
	"ai-chat-relay/internal/domain/ports/adapter"
)

// Error bodies use the {"detail": ...} shape the interactive client
// renders.

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type conversationRequest struct {
	Messages []model.Turn `json:"messages"`
}

type conversationResponse struct {
	Response string        `json:"response"`
	Usage    adapter.Usage `json:"usage"`
}

type roleChatRequest struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type roleChatResponse struct {
	Role        string        `json:"role"`
	User        string        `json:"user"`
	UserMessage string        `json:"user_message"`
	AIResponse  string        `json:"ai_response"`
	Usage       adapter.Usage `json:"usage"`
}

type historyResponse struct {
	User               string               `json:"user"`
	TotalConversations int                  `json:"total_conversations"`
	History            []model.ChatExchange `json:"history"`
}

type profileResponse struct {
	Username  string    `json:"username"`
	LoginTime time.Time `json:"login_time"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "chat relay server is running"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cred, err := s.userUC.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "user created",
		"username": cred.Username,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := s.userUC.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.auth.Mint(w, sess.Token, sess.Username)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "could not mint session token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":       "login successful",
		"username":      sess.Username,
		"session_token": token,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	_ = s.userUC.Logout(r.Context(), sess.Token)
	s.auth.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "logged out",
		"username": sess.Username,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	writeJSON(w, http.StatusOK, profileResponse{
		Username:  sess.Username,
		LoginTime: sess.LoginTime,
	})
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := s.userUC.Roster(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var req conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reply, usage, err := s.chatUC.SendMessage(r.Context(), sess, req.Messages)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conversationResponse{Response: reply, Usage: usage})
}

func (s *Server) handleRoleChat(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var req roleChatRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	// role and message may also arrive as query parameters
	if req.Role == "" {
		req.Role = r.URL.Query().Get("role")
	}
	if req.Message == "" {
		req.Message = r.URL.Query().Get("message")
	}

	reply, usage, err := s.chatUC.RoleChat(r.Context(), sess, req.Role, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roleChatResponse{
		Role:        req.Role,
		User:        sess.Username,
		UserMessage: req.Message,
		AIResponse:  reply,
		Usage:       usage,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	records, total := s.chatUC.History(r.Context(), sess)
	writeJSON(w, http.StatusOK, historyResponse{
		User:               sess.Username,
		TotalConversations: total,
		History:            records,
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.chatUC.ClearHistory(r.Context(), sess)
	writeJSON(w, http.StatusOK, map[string]string{"message": "chat history cleared"})
}

// ===== response helpers =====

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"detail": msg})
}

// writeError maps domain failures onto the HTTP surface. Upstream
// completion statuses pass through unchanged.
func writeError(w http.ResponseWriter, err error) {
	var ue *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateUser):
		writeDetail(w, http.StatusBadRequest, domain.ErrDuplicateUser.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrNotLoggedIn):
		writeDetail(w, http.StatusUnauthorized, domain.ErrNotLoggedIn.Error())
	case errors.Is(err, domain.ErrUpstreamTimeout):
		writeDetail(w, http.StatusRequestTimeout, domain.ErrUpstreamTimeout.Error())
	case errors.Is(err, domain.ErrUpstreamUnreachable):
		writeDetail(w, http.StatusBadGateway, domain.ErrUpstreamUnreachable.Error())
	case errors.As(err, &ue):
		writeDetail(w, ue.Status, "upstream error: "+ue.Message)
	default:
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}
