// internal/ui/help.go
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Help overlay content and rendering

var (
	// Help section title style
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan).
			MarginBottom(1)

	// Help section header style
	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Yellow).
				MarginTop(1)

	// Help key style (for keybindings)
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	// Help command style (for slash commands)
	helpCmdStyle = lipgloss.NewStyle().
			Foreground(Magenta)

	// Help description style
	helpDescStyle = lipgloss.NewStyle().
			Foreground(White)

	// Help dim style (for secondary info)
	helpDimStyle = lipgloss.NewStyle().
			Foreground(Dim)

	// Status indicator styles for help
	helpStatusOK   = lipgloss.NewStyle().Foreground(Green).Bold(true)
	helpStatusWarn = lipgloss.NewStyle().Foreground(Orange).Bold(true)
	helpStatusDim  = lipgloss.NewStyle().Foreground(Dim)
	helpStatusErr  = lipgloss.NewStyle().Foreground(Red).Bold(true)
)

// HelpContent returns the formatted help overlay content
func HelpContent(width, height int) string {
	var content strings.Builder

	// Title
	title := helpTitleStyle.Render("MODEL ARENA HELP")
	content.WriteString(title)
	content.WriteString("\n\n")

	// Keybindings section
	content.WriteString(helpSectionStyle.Render("KEYBINDINGS"))
	content.WriteString("\n\n")

	keybindings := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send the prompt to every selected model"},
		{"PgUp / PgDn", "Scroll the transcript"},
		{"Alt+H", "Browse conversations and battles"},
		{"Alt+R", "Show the Elo rankings"},
		{"F1", "Toggle this help overlay"},
		{"Esc", "Close overlay / Cancel running prompt"},
		{"Ctrl+C", "Quit"},
	}

	for _, kb := range keybindings {
		key := helpKeyStyle.Width(14).Render(kb.key)
		desc := helpDescStyle.Render(kb.desc)
		content.WriteString("  " + key + "  " + desc + "\n")
	}

	// Slash commands section
	content.WriteString("\n")
	content.WriteString(helpSectionStyle.Render("SLASH COMMANDS"))
	content.WriteString("\n\n")

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/new [title]", "Start a new conversation"},
		{"/models [ids...]", "List models, or choose who answers"},
		{"/compare <prompt>", "Side-by-side latency, tokens and cost"},
		{"/battle <a> <b> <prompt>", "Blind head-to-head between two models"},
		{"/pick [id]", "Pick battle models, then /battle <prompt>"},
		{"/vote <a|b|draw>", "Judge the latest battle and update Elo"},
		{"/rankings [reset]", "Show or reset the leaderboard"},
		{"/history", "Browse conversations and battles"},
		{"/export [format]", "Export as markdown, json or text"},
		{"/feedback <type> <text>", "Report a bug or request a feature"},
		{"/attach [path]", "Send a file with the next prompt"},
		{"/quit", "Exit"},
	}

	for _, cmd := range commands {
		cmdStr := helpCmdStyle.Width(26).Render(cmd.cmd)
		desc := helpDescStyle.Render(cmd.desc)
		content.WriteString("  " + cmdStr + "  " + desc + "\n")
	}

	// Model status indicators section
	content.WriteString("\n")
	content.WriteString(helpSectionStyle.Render("MODEL STATUS INDICATORS"))
	content.WriteString("\n\n")

	indicators := []struct {
		symbol string
		style  lipgloss.Style
		desc   string
	}{
		{"●", helpStatusOK, "Idle - Model is ready"},
		{"●", helpStatusWarn, "Responding - Model is generating an answer"},
		{"◌", helpStatusDim, "Timeout - Model response timed out"},
		{"✗", helpStatusErr, "Error - Model encountered an error"},
	}

	for _, ind := range indicators {
		symbol := ind.style.Width(3).Render(ind.symbol)
		desc := helpDescStyle.Render(ind.desc)
		content.WriteString("  " + symbol + "  " + desc + "\n")
	}

	// Rating section
	content.WriteString("\n")
	content.WriteString(helpSectionStyle.Render("RATINGS"))
	content.WriteString("\n\n")

	notes := []string{
		"Every vote updates both models with the Elo formula (K = 32).",
		"Beating a stronger model earns more points than beating a weaker one.",
		"A draw moves both ratings toward each other.",
	}
	for _, line := range notes {
		content.WriteString("  " + helpDimStyle.Render(line) + "\n")
	}

	// Footer
	content.WriteString("\n")
	footer := helpDimStyle.Render("Press F1 or Esc to close this help")
	content.WriteString(lipgloss.PlaceHorizontal(width-8, lipgloss.Center, footer))

	// Build the overlay box
	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(1, 3).
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

// renderHelp renders the help overlay (called from app.go)
func (m Model) renderHelp() string {
	return HelpContent(m.width, m.height)
}
