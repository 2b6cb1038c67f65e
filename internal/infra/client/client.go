// Package client wraps the gateway's HTTP surface for the terminal
// client.
package client

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"ai-chat-relay/internal/domain/model"
	"ai-chat-relay/internal/domain/ports/adapter"
)

// APIError is a non-success gateway response with its detail message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("gateway error: http %d", e.Status)
}

type errorBody struct {
	Detail string `json:"detail"`
}

type LoginResult struct {
	Username     string `json:"username"`
	SessionToken string `json:"session_token"`
}

type Profile struct {
	Username  string    `json:"username"`
	LoginTime time.Time `json:"login_time"`
}

type RosterEntry struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationResult struct {
	Response string        `json:"response"`
	Usage    adapter.Usage `json:"usage"`
}

type RoleChatResult struct {
	Role        string        `json:"role"`
	User        string        `json:"user"`
	UserMessage string        `json:"user_message"`
	AIResponse  string        `json:"ai_response"`
	Usage       adapter.Usage `json:"usage"`
}

type HistoryResult struct {
	User               string               `json:"user"`
	TotalConversations int                  `json:"total_conversations"`
	History            []model.ChatExchange `json:"history"`
}

// Client talks to one gateway and carries the session token after
// login.
type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{http: c}
}

// Ping probes the liveness route. A failure here means the gateway is
// down and the interactive loop should not start.
func (c *Client) Ping() error {
	resp, err := c.http.R().Get("/")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &APIError{Status: resp.StatusCode()}
	}
	return nil
}

func (c *Client) Register(username, password string) error {
	_, err := c.call(c.http.R().
		SetBody(map[string]string{"username": username, "password": password}),
		"POST", "/user", nil)
	return err
}

func (c *Client) Login(username, password string) (*LoginResult, error) {
	out := &LoginResult{}
	_, err := c.call(c.http.R().
		SetBody(map[string]string{"username": username, "password": password}),
		"POST", "/user/login", out)
	if err != nil {
		return nil, err
	}
	c.http.SetAuthToken(out.SessionToken)
	return out, nil
}

func (c *Client) Logout() error {
	_, err := c.call(c.http.R(), "POST", "/user/logout", nil)
	c.http.SetAuthToken("")
	return err
}

func (c *Client) Profile() (*Profile, error) {
	out := &Profile{}
	_, err := c.call(c.http.R(), "GET", "/user/profile", out)
	return out, err
}

func (c *Client) Roster() ([]RosterEntry, error) {
	var out []RosterEntry
	_, err := c.call(c.http.R(), "GET", "/users", &out)
	return out, err
}

// Conversation sends the full local transcript mirror; the gateway
// keeps the canonical one.
func (c *Client) Conversation(messages []model.Turn) (*ConversationResult, error) {
	out := &ConversationResult{}
	_, err := c.call(c.http.R().
		SetBody(map[string]any{"messages": messages}),
		"POST", "/chat/conversation", out)
	return out, err
}

func (c *Client) RoleChat(role, message string) (*RoleChatResult, error) {
	out := &RoleChatResult{}
	_, err := c.call(c.http.R().
		SetBody(map[string]string{"role": role, "message": message}),
		"POST", "/chat/role", out)
	return out, err
}

func (c *Client) History() (*HistoryResult, error) {
	out := &HistoryResult{}
	_, err := c.call(c.http.R(), "GET", "/chat/history", out)
	return out, err
}

func (c *Client) ClearHistory() error {
	_, err := c.call(c.http.R(), "DELETE", "/chat/history", nil)
	return err
}

func (c *Client) call(req *resty.Request, method, path string, out any) (*resty.Response, error) {
	if out != nil {
		req = req.SetResult(out)
	}
	resp, err := req.SetError(&errorBody{}).Execute(method, path)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		detail := ""
		if eb, ok := resp.Error().(*errorBody); ok {
			detail = eb.Detail
		}
		return resp, &APIError{Status: resp.StatusCode(), Detail: detail}
	}
	return resp, nil
}
