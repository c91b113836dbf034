// Package commands handles slash command parsing for the arena TUI.
package commands

import (
	"strings"
)

// Command interface for all command types
type Command interface {
	Type() string
}

// Help returns help text
type Help struct{}

func (Help) Type() string { return "help" }

// NewConversation starts a new conversation
type NewConversation struct {
	Title string
}

func (NewConversation) Type() string { return "new" }

// Models lists the catalog, or selects models when IDs is set
type Models struct {
	IDs []string
}

func (Models) Type() string { return "models" }

// Compare sends a prompt to every selected model
type Compare struct {
	Prompt string
}

func (Compare) Type() string { return "compare" }

// Battle starts a head-to-head between two models. ModelA, ModelB and
// Prompt are set when at least three words follow the command; Text always
// holds everything after it, for battles between models chosen with /pick.
type Battle struct {
	ModelA string
	ModelB string
	Prompt string
	Text   string
}

func (Battle) Type() string { return "battle" }

// Vote picks the winner of the latest battle
type Vote struct {
	Side string // a, b or draw
}

func (Vote) Type() string { return "vote" }

// Rankings shows the Elo leaderboard, or restores the starting ratings when
// Reset is set.
type Rankings struct {
	Reset bool
}

func (Rankings) Type() string { return "rankings" }

// ShowHistory lists conversations and recent battles
type ShowHistory struct{}

func (ShowHistory) Type() string { return "history" }

// Export exports the current conversation
type Export struct {
	Format string
}

func (Export) Type() string { return "export" }

// Feedback sends a bug report or suggestion
type Feedback struct {
	Kind string
	Text string
}

func (Feedback) Type() string { return "feedback" }

// Pick toggles a model in the battle picker. An empty ModelID clears it.
type Pick struct {
	ModelID string
}

func (Pick) Type() string { return "pick" }

// Attach queues a file to send with the next prompt. An empty Path clears
// the queue.
type Attach struct {
	Path string
}

func (Attach) Type() string { return "attach" }

// Quit exits the program
type Quit struct{}

func (Quit) Type() string { return "quit" }

// ParseError represents a command parsing error
type ParseError struct {
	Message string
}

func (ParseError) Type() string { return "error" }

// Parse parses user input and returns the appropriate Command.
// Returns nil if the input is not a slash command.
func Parse(input string) Command {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	// Split into command and arguments
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "/help", "/?":
		return Help{}

	case "/new":
		return NewConversation{Title: strings.Join(args, " ")}

	case "/models":
		return Models{IDs: args}

	case "/compare":
		prompt := rest(input, 1)
		if prompt == "" {
			return ParseError{Message: "/compare requires a prompt"}
		}
		return Compare{Prompt: prompt}

	case "/battle":
		if len(args) == 0 {
			return ParseError{Message: "/battle requires a prompt"}
		}
		b := Battle{Text: rest(input, 1)}
		if len(args) >= 3 {
			b.ModelA, b.ModelB, b.Prompt = args[0], args[1], rest(input, 3)
		}
		return b

	case "/pick":
		if len(args) > 1 {
			return ParseError{Message: "/pick takes one model id"}
		}
		return Pick{ModelID: strings.Join(args, "")}

	case "/vote":
		if len(args) == 0 {
			return ParseError{Message: "/vote requires a, b, or draw"}
		}
		side := strings.ToLower(args[0])
		switch side {
		case "a", "b", "draw":
			return Vote{Side: side}
		default:
			return ParseError{Message: "unknown vote: " + args[0]}
		}

	case "/rankings", "/leaderboard":
		if len(args) == 0 {
			return Rankings{}
		}
		if strings.ToLower(args[0]) == "reset" && len(args) == 1 {
			return Rankings{Reset: true}
		}
		return ParseError{Message: "unknown /rankings option: " + strings.Join(args, " ")}

	case "/history":
		return ShowHistory{}

	case "/export":
		format := ""
		if len(args) > 0 {
			format = strings.ToLower(args[0])
		}
		return Export{Format: format}

	case "/feedback":
		if len(args) < 2 {
			return ParseError{Message: "/feedback requires a type (bug, feature, other) and a message"}
		}
		return Feedback{Kind: strings.ToLower(args[0]), Text: rest(input, 2)}

	case "/attach":
		return Attach{Path: rest(input, 1)}

	case "/quit", "/exit":
		return Quit{}

	default:
		return ParseError{Message: "unknown command: " + cmd}
	}
}

// rest returns input after its first n fields, with inner spacing kept.
func rest(input string, n int) string {
	s := input
	for range n {
		s = strings.TrimLeft(s, " \t")
		i := strings.IndexAny(s, " \t")
		if i < 0 {
			return ""
		}
		s = s[i:]
	}
	return strings.TrimSpace(s)
}

// HelpText returns the help text for all available commands.
func HelpText() string {
	return `Available commands:
  /help                          - Show this help
  /new [title]                   - Start a new conversation
  /models [ids...]               - List models, or select the ones to chat with
  /compare <prompt>              - Compare the selected models side by side
  /battle <a> <b> <prompt>       - Pit two models against each other
  /pick [id]                     - Pick battle models, then /battle <prompt> (no id clears)
  /vote <a|b|draw>               - Vote on the latest battle
  /rankings [reset]              - Show the Elo leaderboard, or reset it
  /history                       - Show conversations and recent battles
  /export [markdown|json|text]   - Export the current conversation
  /feedback <bug|feature|other> <text> - Send feedback
  /attach [path]                 - Send a file with the next prompt (no path clears)
  /quit                          - Exit`
}
