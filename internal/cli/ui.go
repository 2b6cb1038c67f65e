package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ai-chat-relay/internal/domain/model"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	replyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	personaStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	historyBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F59E0B")).
			Padding(0, 1)
)

func Banner() {
	fmt.Println(titleStyle.Render("ai-chat-relay"))
	fmt.Println(mutedStyle.Render("type /help inside a chat for commands"))
}

func PrintReply(who, text string) {
	fmt.Printf("%s %s\n", personaStyle.Render("["+who+"]"), replyStyle.Render(text))
}

func PrintError(err error) {
	fmt.Println(errorStyle.Render("error: " + err.Error()))
}

func PrintInfo(msg string) {
	fmt.Println(mutedStyle.Render(msg))
}

func PrintHelp() {
	fmt.Println(mutedStyle.Render(strings.Join([]string{
		"/role <role> <message>  chat with a persona",
		"/history                show recent exchanges",
		"/clear                  clear chat history",
		"/logout                 end the session",
		"/quit                   leave the program",
	}, "\n")))
}

func PrintHistory(records []model.ChatExchange, total int) {
	if len(records) == 0 {
		PrintInfo("no conversations yet")
		return
	}
	var b strings.Builder
	for _, rec := range records {
		who := "AI"
		if rec.Persona != "" {
			who = rec.Persona
		}
		fmt.Fprintf(&b, "%s you: %s\n", mutedStyle.Render(rec.Timestamp.Format("15:04:05")), rec.UserMessage)
		fmt.Fprintf(&b, "         %s: %s\n", who, rec.AIResponse)
	}
	fmt.Fprintf(&b, "%d total", total)
	fmt.Println(historyBoxStyle.Render(strings.TrimRight(b.String(), "\n")))
}
