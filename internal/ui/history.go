// internal/ui/history.go
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"modelarena/internal/arena"
	"modelarena/internal/chat"
)

// ViewMode represents the current view state
type ViewMode int

const (
	ViewNormal ViewMode = iota
	ViewHistory
	ViewHelp
	ViewRankings
)

// HistoryState holds the state for the history browser
type HistoryState struct {
	conversations []chat.Conversation
	battles       []arena.Battle
	cursor        int
	scrollTop     int
	maxHeight     int
}

// NewHistoryState creates a new history state
func NewHistoryState() *HistoryState {
	return &HistoryState{maxHeight: 20}
}

// Load replaces the listed conversations and battles.
func (h *HistoryState) Load(convs []chat.Conversation, battles []arena.Battle) {
	h.conversations = convs
	h.battles = battles
	h.cursor = 0
	h.scrollTop = 0
}

// Up moves the cursor up
func (h *HistoryState) Up() {
	if h.cursor > 0 {
		h.cursor--
		if h.cursor < h.scrollTop {
			h.scrollTop = h.cursor
		}
	}
}

// Down moves the cursor down
func (h *HistoryState) Down() {
	if h.cursor < len(h.conversations)-1 {
		h.cursor++
		if h.cursor >= h.scrollTop+h.maxHeight {
			h.scrollTop = h.cursor - h.maxHeight + 1
		}
	}
}

// Selected returns the conversation under the cursor, or nil if none
func (h *HistoryState) Selected() *chat.Conversation {
	if h.cursor >= 0 && h.cursor < len(h.conversations) {
		return &h.conversations[h.cursor]
	}
	return nil
}

// SetMaxHeight updates the max visible height
func (h *HistoryState) SetMaxHeight(height int) {
	h.maxHeight = max(height-16, 5) // header, battles and footer
}

func clipName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-2]) + ".."
}

// Render renders the history browser overlay
func (h *HistoryState) Render(width, height int) string {
	var content strings.Builder

	content.WriteString(TitleStyle.Render("CONVERSATIONS"))
	content.WriteString("\n")
	content.WriteString(DimStyle.Render("Select a conversation to resume"))
	content.WriteString("\n\n")

	if len(h.conversations) == 0 {
		content.WriteString(DimStyle.Render("No conversations yet."))
		content.WriteString("\n")
	} else {
		visibleEnd := min(h.scrollTop+h.maxHeight, len(h.conversations))

		header := fmt.Sprintf("  %-22s  %-16s  %-6s  %s", "Title", "Created", "Turns", "Models")
		content.WriteString(DimStyle.Render(header))
		content.WriteString("\n")
		content.WriteString(DimStyle.Render(strings.Repeat("-", 70)))
		content.WriteString("\n")

		for i := h.scrollTop; i < visibleEnd; i++ {
			c := h.conversations[i]

			timeStr := c.CreatedAt.Format("2006-01-02 15:04")
			if time.Since(c.CreatedAt) < 24*time.Hour {
				timeStr = c.CreatedAt.Format("Today 15:04")
			}

			cursor := "  "
			lineStyle := DimStyle
			if i == h.cursor {
				cursor = "> "
				lineStyle = lipgloss.NewStyle().Foreground(Cyan)
			}

			line := fmt.Sprintf("%-22s  %-16s  %-6d  %s",
				clipName(c.Title, 22), timeStr, len(c.Messages), strings.Join(c.Models, ","))
			content.WriteString(cursor)
			content.WriteString(lineStyle.Render(line))
			content.WriteString("\n")
		}

		if len(h.conversations) > h.maxHeight {
			content.WriteString("\n")
			content.WriteString(DimStyle.Render(fmt.Sprintf("Showing %d-%d of %d",
				h.scrollTop+1, visibleEnd, len(h.conversations))))
			content.WriteString("\n")
		}
	}

	content.WriteString("\n")
	content.WriteString(TitleStyle.Render("RECENT BATTLES"))
	content.WriteString("\n\n")
	if len(h.battles) == 0 {
		content.WriteString(DimStyle.Render("No battles yet. Try /battle <a> <b> <prompt>."))
		content.WriteString("\n")
	}
	for _, b := range h.battles {
		result := "pending"
		switch {
		case b.Draw:
			result = "draw"
		case b.WinnerID != "":
			result = b.WinnerID + " won"
		}
		content.WriteString(fmt.Sprintf("  %s vs %s  %s  %s\n",
			b.Models[0], b.Models[1], DimStyle.Render(clipName(b.Prompt, 30)), StatusOK.Render(result)))
	}

	content.WriteString("\n")
	content.WriteString(DimStyle.Render("Up/Down: Navigate | Enter: Resume | Esc: Cancel"))

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(1, 2).
		MaxWidth(width - 10).
		MaxHeight(height - 4)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlayStyle.Render(content.String()),
	)
}
