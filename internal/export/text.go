package export

import (
	"fmt"
	"strings"

	"modelarena/internal/chat"
)

func renderText(conv chat.Conversation) string {
	var sb strings.Builder

	sb.WriteString(conv.Title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", len([]rune(conv.Title))))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "ID: %s\nCreated: %s\n", conv.ID, conv.CreatedAt.Format("2006-01-02 15:04:05"))
	if len(conv.Models) > 0 {
		fmt.Fprintf(&sb, "Models: %s\n", strings.Join(conv.Models, ", "))
	}

	for _, msg := range conv.Messages {
		ts := msg.Timestamp.Format("15:04:05")
		if len(msg.Responses) == 0 {
			fmt.Fprintf(&sb, "\n[%s] %s:\n%s\n", ts, roleName(msg.Role), strings.TrimSpace(msg.Content))
			continue
		}
		for _, r := range msg.Responses {
			fmt.Fprintf(&sb, "\n[%s] %s (%d tokens, $%.4f):\n%s\n", ts, r.ModelID, r.TokenCount, r.Cost, strings.TrimSpace(r.Content))
		}
	}

	return sb.String()
}
