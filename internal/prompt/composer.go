// Package prompt derives the system directive prepended to upstream
// completion calls. Everything here is pure: no clock, no I/O, no
// mutation of the input slice.
package prompt

import (
	"fmt"

	"ai-chat-relay/internal/domain/model"
)

// DefaultDirective is used for plain chat when the transcript carries no
// system turn of its own.
const DefaultDirective = "You are a helpful assistant."

// rolePrompts maps known persona names to curated directives. Unknown
// names fall through to a generated directive, never an error.
var rolePrompts = map[string]string{
	"poet":         "The assistant is a poet. Every answer is expressed in the form of a beautiful poem.",
	"python tutor": "The assistant is a friendly tutor who gives hints for Python algorithm problems.",
	"chef":         "The assistant is an experienced chef who shares delicious recipes.",
	"travel guide": "The assistant is a world travel expert offering sightseeing, food, and transit tips for each city.",
}

// Compose returns the transcript ready to send upstream. If no system
// turn is present a default directive is prepended, optionally naming
// the current identity; an existing system turn is left untouched and
// never duplicated.
func Compose(username string, transcript []model.Turn) []model.Turn {
	for _, t := range transcript {
		if t.Role == model.RoleSystem {
			return transcript
		}
	}
	directive := DefaultDirective
	if username != "" {
		directive = fmt.Sprintf("You are a helpful assistant. You are talking to %s.", username)
	}
	out := make([]model.Turn, 0, len(transcript)+1)
	out = append(out, model.Turn{Role: model.RoleSystem, Content: directive})
	return append(out, transcript...)
}

// ComposeRole builds the two-turn message list for a role-based chat.
// Any prior transcript is ignored; each call stands alone.
func ComposeRole(role, message string) []model.Turn {
	return []model.Turn{
		{Role: model.RoleSystem, Content: RoleDirective(role)},
		{Role: model.RoleUser, Content: message},
	}
}

// RoleDirective resolves a persona name to its directive, falling back
// to a generated one for unknown names.
func RoleDirective(role string) string {
	if d, ok := rolePrompts[role]; ok {
		return d
	}
	return fmt.Sprintf("The assistant is a %s.", role)
}

// KnownRoles lists the curated persona names.
func KnownRoles() []string {
	out := make([]string, 0, len(rolePrompts))
	for r := range rolePrompts {
		out = append(out, r)
	}
	return out
}
