package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"modelarena/internal/rating"
)

// RenderRankings draws the leaderboard as a table.
func RenderRankings(board []rating.Standing, width, height int) string {
	var content strings.Builder

	content.WriteString(TitleStyle.Render("ELO RANKINGS"))
	content.WriteString("\n\n")

	header := fmt.Sprintf("%-4s  %-16s  %6s  %4s  %4s  %4s", "#", "Model", "Elo", "W", "L", "D")
	content.WriteString(DimStyle.Render(header))
	content.WriteString("\n")
	content.WriteString(DimStyle.Render(strings.Repeat("-", len(header))))
	content.WriteString("\n")

	for _, s := range board {
		line := fmt.Sprintf("%-4d  %-16s  %6d  %4d  %4d  %4d",
			s.Rank, clipName(s.ModelID, 16), s.Rating, s.Wins, s.Losses, s.Draws)
		if s.Rank == 1 {
			line = StatusOK.Render(line)
		}
		content.WriteString(line)
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(DimStyle.Render("Esc: Close"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		ActiveBox.Padding(1, 3).Render(content.String()))
}
