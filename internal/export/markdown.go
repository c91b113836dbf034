// internal/export/markdown.go
package export

import (
	"fmt"
	"strings"
	"time"

	"modelarena/internal/chat"
)

func renderMarkdown(conv chat.Conversation) string {
	var sb strings.Builder

	// Title header
	sb.WriteString("# ")
	sb.WriteString(conv.Title)
	sb.WriteString("\n\n")

	// Metadata section
	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "**Conversation ID:** `%s`\n\n", conv.ID)
	fmt.Fprintf(&sb, "**Created:** %s\n\n", conv.CreatedAt.Format("2006-01-02 15:04:05"))
	if len(conv.Models) > 0 {
		fmt.Fprintf(&sb, "**Models:** %s\n\n", strings.Join(conv.Models, ", "))
	}
	if cost := conv.Cost(); cost > 0 {
		fmt.Fprintf(&sb, "**Total cost:** $%.4f\n\n", cost)
	}
	sb.WriteString("---\n\n")

	sb.WriteString("## Transcript\n\n")

	for i, msg := range conv.Messages {
		ts := msg.Timestamp.Format("15:04:05")

		if len(msg.Responses) == 0 {
			fmt.Fprintf(&sb, "### [%s] %s\n\n", ts, roleName(msg.Role))
			writeQuoted(&sb, msg.Content)
		}
		for _, r := range msg.Responses {
			fmt.Fprintf(&sb, "### [%s] %s\n\n", ts, r.ModelID)
			writeQuoted(&sb, r.Content)
			fmt.Fprintf(&sb, "*%s · %d tokens · $%.4f*\n\n", r.Latency.Round(time.Millisecond), r.TokenCount, r.Cost)
		}

		if i < len(conv.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	// Footer
	sb.WriteString("\n---\n\n")
	fmt.Fprintf(&sb, "*Exported from Model Arena on %s*\n", time.Now().Format("2006-01-02 15:04:05"))

	return sb.String()
}

// writeQuoted writes content as a blockquote unless it already carries code
// blocks, which do not survive quoting.
func writeQuoted(sb *strings.Builder, content string) {
	content = strings.TrimSpace(content)
	if containsCodeBlock(content) {
		sb.WriteString(content)
		sb.WriteString("\n")
	} else {
		for _, line := range strings.Split(content, "\n") {
			sb.WriteString("> ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

func roleName(r chat.Role) string {
	switch r {
	case chat.RoleUser:
		return "User"
	case chat.RoleAssistant:
		return "Assistant"
	case chat.RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// containsCodeBlock checks if content already has markdown code blocks
func containsCodeBlock(content string) bool {
	return strings.Contains(content, "```")
}
