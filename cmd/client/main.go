package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"ai-chat-relay/internal/cli"
	"ai-chat-relay/internal/domain/model"
	"ai-chat-relay/internal/infra/client"
)

func main() {
	serverURL := flag.String("server", "http://127.0.0.1:8000", "gateway base URL")
	timeout := flag.Duration("timeout", 60*time.Second, "per-request timeout")
	flag.Parse()

	api := client.New(*serverURL, *timeout)

	cli.Banner()
	if err := api.Ping(); err != nil {
		cli.PrintError(fmt.Errorf("cannot reach the gateway at %s; is the server running?", *serverURL))
		os.Exit(1)
	}

	for {
		choice, err := cli.PromptMainMenu()
		if err != nil {
			// Ctrl-C at the menu ends the program
			return
		}
		switch choice {
		case cli.ActionRegister:
			username, password, err := cli.PromptCredentials()
			if err != nil {
				continue
			}
			if err := api.Register(username, password); err != nil {
				cli.PrintError(err)
				continue
			}
			cli.PrintInfo("registered: " + username)
		case cli.ActionLogin:
			username, password, err := cli.PromptCredentials()
			if err != nil {
				continue
			}
			res, err := api.Login(username, password)
			if err != nil {
				cli.PrintError(err)
				continue
			}
			cli.PrintInfo("welcome, " + res.Username)
			chatLoop(api, res.Username)
		case cli.ActionQuit:
			return
		}
	}
}

// chatLoop drives one login session. It keeps a local mirror of the
// transcript for display and resends it whole on every conversation
// call; the gateway keeps the canonical transcript.
func chatLoop(api *client.Client, username string) {
	var mirror []model.Turn

	defer func() {
		if err := api.Logout(); err != nil {
			var apiErr *client.APIError
			// a destroyed session already means logged out
			if !errors.As(err, &apiErr) {
				cli.PrintError(err)
			}
		}
	}()

	for {
		line, err := cli.PromptChatInput(username)
		if err != nil {
			return
		}
		if line == "" {
			continue
		}

		switch {
		case line == "/quit" || line == "/exit":
			return
		case line == "/logout":
			return
		case line == "/help":
			cli.PrintHelp()
		case line == "/clear":
			if err := api.ClearHistory(); err != nil {
				cli.PrintError(err)
				continue
			}
			mirror = nil
			cli.PrintInfo("chat history cleared")
		case line == "/history":
			res, err := api.History()
			if err != nil {
				cli.PrintError(err)
				continue
			}
			cli.PrintHistory(res.History, res.TotalConversations)
		case strings.HasPrefix(line, "/role "):
			parts := strings.SplitN(strings.TrimPrefix(line, "/role "), " ", 2)
			if len(parts) < 2 {
				cli.PrintInfo("usage: /role <role> <message>")
				continue
			}
			res, err := api.RoleChat(parts[0], parts[1])
			if err != nil {
				cli.PrintError(err)
				continue
			}
			cli.PrintReply(res.Role, res.AIResponse)
		default:
			mirror = append(mirror, model.Turn{Role: model.RoleUser, Content: line})
			res, err := api.Conversation(mirror)
			if err != nil {
				cli.PrintError(err)
				continue
			}
			mirror = append(mirror, model.Turn{Role: model.RoleAssistant, Content: res.Response})
			cli.PrintReply("AI", res.Response)
		}
	}
}
