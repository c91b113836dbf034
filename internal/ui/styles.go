// internal/ui/styles.go
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"modelarena/internal/models"
)

var (
	// Colors
	Cyan     = lipgloss.Color("#00FFFF")
	Green    = lipgloss.Color("#00FF00")
	Yellow   = lipgloss.Color("#FFD700")
	Orange   = lipgloss.Color("#FFA500")
	Red      = lipgloss.Color("#FF6B6B")
	Magenta  = lipgloss.Color("#FF00FF")
	SkyBlue  = lipgloss.Color("#87CEEB")
	Violet   = lipgloss.Color("#B388FF")
	Dim      = lipgloss.Color("#555555")
	White    = lipgloss.Color("#FFFFFF")
	DarkGray = lipgloss.Color("#333333")

	UserColor   = SkyBlue
	SystemColor = Yellow

	// Box styles
	ActiveBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Cyan)

	InactiveBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Dim)

	// Text styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan)

	UserStyle = lipgloss.NewStyle().
			Foreground(UserColor).
			Bold(true)

	SystemStyle = lipgloss.NewStyle().
			Foreground(SystemColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(Dim)

	// Status indicators
	StatusOK   = lipgloss.NewStyle().Foreground(Green).Bold(true)
	StatusWarn = lipgloss.NewStyle().Foreground(Orange).Bold(true)
	StatusCrit = lipgloss.NewStyle().Foreground(Red).Bold(true)

	// Metric bar fill
	BarStyle = lipgloss.NewStyle().Foreground(Cyan)
)

// ProviderColor returns the accent color used for a provider's models
func ProviderColor(p models.Provider) lipgloss.Color {
	switch p {
	case models.ProviderOpenAI, models.ProviderAzureOpenAI:
		return Green
	case models.ProviderAnthropic:
		return Orange
	case models.ProviderGoogle:
		return SkyBlue
	case models.ProviderMeta:
		return Magenta
	case models.ProviderMistral:
		return Violet
	case models.ProviderCohere:
		return Yellow
	default:
		return White
	}
}

// ProviderStyle returns the header style for a provider's models
func ProviderStyle(p models.Provider) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ProviderColor(p)).Bold(true)
}
