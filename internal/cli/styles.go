package cli

import "github.com/charmbracelet/lipgloss"

var (
	primary = lipgloss.Color("#0EA5E9") // sky
	success = lipgloss.Color("#22C55E") // green
	warning = lipgloss.Color("#F59E0B") // amber
	failure = lipgloss.Color("#EF4444") // red
	muted   = lipgloss.Color("#6B7280") // gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	nameStyle = lipgloss.NewStyle().Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(muted).
			Width(12)

	availableStyle   = lipgloss.NewStyle().Foreground(success).Bold(true)
	unavailableStyle = lipgloss.NewStyle().Foreground(failure)
	mutedStyle       = lipgloss.NewStyle().Foreground(muted)
	hintStyle        = lipgloss.NewStyle().Foreground(warning).Italic(true)

	selectedBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 1)
)
