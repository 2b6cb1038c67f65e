package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// Menu actions for the logged-out loop.
const (
	ActionRegister = "register"
	ActionLogin    = "log in"
	ActionQuit     = "quit"
)

// PromptMainMenu asks what to do before a session exists.
func PromptMainMenu() (string, error) {
	var choice string
	prompt := &survey.Select{
		Message: "What would you like to do?",
		Options: []string{ActionRegister, ActionLogin, ActionQuit},
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

// PromptCredentials collects a username and password, rejecting empty
// values before anything is sent to the gateway.
func PromptCredentials() (string, string, error) {
	var username string
	err := survey.AskOne(&survey.Input{
		Message: "Username:",
	}, &username, survey.WithValidator(func(val interface{}) error {
		if strings.TrimSpace(val.(string)) == "" {
			return fmt.Errorf("username cannot be empty")
		}
		return nil
	}))
	if err != nil {
		return "", "", err
	}

	var password string
	err = survey.AskOne(&survey.Password{
		Message: "Password:",
	}, &password, survey.WithValidator(func(val interface{}) error {
		if val.(string) == "" {
			return fmt.Errorf("password cannot be empty")
		}
		return nil
	}))
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(username), password, nil
}

// PromptChatInput reads one line of the chat loop.
func PromptChatInput(username string) (string, error) {
	var line string
	err := survey.AskOne(&survey.Input{
		Message: fmt.Sprintf("[%s]", username),
	}, &line)
	return strings.TrimSpace(line), err
}
