// Package watch implements the live gateway monitor TUI. It follows the
// event stream from /events and polls /healthz, showing queue depth,
// executor connectivity, and the latest commands as they move through
// the pipeline.
package watch

import "github.com/charmbracelet/lipgloss"

// Theme centralizes all styling for the watch TUI.
type Theme struct {
	StatusOK           lipgloss.Style
	StatusDispatched   lipgloss.Style
	StatusFailed       lipgloss.Style
	StatusQueued       lipgloss.Style
	StatusAcknowledged lipgloss.Style

	Border    lipgloss.Style
	Title     lipgloss.Style
	Dim       lipgloss.Style
	Highlight lipgloss.Style

	PulseActive lipgloss.Style
	PulseIdle   lipgloss.Style
}

func NewDefaultTheme() Theme {
	green := lipgloss.Color("#3EC46D")

	return Theme{
		StatusOK:           lipgloss.NewStyle().Foreground(green),
		StatusDispatched:   lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		StatusFailed:       lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75")),
		StatusQueued:       lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		StatusAcknowledged: lipgloss.NewStyle().Foreground(green),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(green),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Padding(0, 1),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")),

		PulseActive: lipgloss.NewStyle().Foreground(green),
		PulseIdle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
	}
}
