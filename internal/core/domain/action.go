package domain

import "strings"

type ActionKind int

const (
	ActionText ActionKind = iota
	ActionCommand
	ActionCallback
	ActionPhoto
)

func (k ActionKind) String() string {
	switch k {
	case ActionCommand:
		return "command"
	case ActionCallback:
		return "callback"
	case ActionPhoto:
		return "photo"
	default:
		return "text"
	}
}

// Action is one inbound user event, already stripped of transport details.
// MessageID is the message the action arrived on: the user's own message for
// text, or the bot message carrying the pressed button for callbacks.
type Action struct {
	ID        string
	UserID    int64
	ChatID    int64
	MessageID int64
	Kind      ActionKind
	Command   string
	Text      string
	Data      string
	PhotoRef  string
}

// ParseCommand splits "/cmd@bot args" into "cmd". It reports false for text
// that is not a command.
func ParseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.TrimPrefix(strings.Fields(text + " ")[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	if cmd == "" {
		return "", false
	}
	return strings.ToLower(cmd), true
}
