package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// HealthState tracks gateway health from /healthz polling.
type HealthState struct {
	Status            string
	UptimeSeconds     int64
	QueueDepth        int
	ExecutorConnected bool
	Reachable         bool
	LastCheck         time.Time
}

func renderHeader(health HealthState, pulse Pulse, theme Theme, width int) string {
	innerWidth := width - 4

	statusText := theme.StatusOK.Render("HEALTHY")
	if !health.Reachable {
		statusText = theme.StatusFailed.Render("UNREACHABLE")
	} else if health.Status != "ok" && health.Status != "" {
		statusText = theme.StatusFailed.Render("DEGRADED")
	}

	executor := theme.StatusFailed.Render("no executor")
	if health.ExecutorConnected {
		executor = theme.StatusOK.Render("executor connected")
	}

	uptime := formatDuration(time.Duration(health.UptimeSeconds) * time.Second)

	clock := theme.Dim.Render(time.Now().Format("15:04:05"))
	title := " BLOCKGATE WATCH"

	pad := innerWidth - lipgloss.Width(title) - lipgloss.Width(clock) - 4
	if pad < 1 {
		pad = 1
	}
	titleLine := title + strings.Repeat(" ", pad) + clock + " "

	statsLine := fmt.Sprintf(" %s  up %s  queue: %d  %s  %s",
		statusText, uptime, health.QueueDepth, executor, pulse.Render(theme))

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, statsLine)
	return theme.Border.Width(innerWidth).Render(content)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
