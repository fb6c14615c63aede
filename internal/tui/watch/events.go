package watch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/blockgate/blockgate/internal/events"
)

func renderEventStream(eventLog []events.Event, theme Theme, width int) string {
	innerWidth := width - 4

	if len(eventLog) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			theme.Title.Render("EVENT STREAM"),
			theme.Dim.Render("  Waiting for events..."),
		)
		return theme.Border.Width(innerWidth).Render(content)
	}

	var lines []string
	for i, e := range eventLog {
		if i >= 8 {
			break
		}
		lines = append(lines, formatEvent(e, theme))
	}

	body := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("EVENT STREAM"),
		body,
	)

	return theme.Border.Width(innerWidth).Render(content)
}

func formatEvent(e events.Event, theme Theme) string {
	ts := theme.Dim.Render(e.At.Format("15:04:05"))

	var typeStyle lipgloss.Style
	switch e.Type {
	case events.CommandAcknowledged, events.ExecutorConnected:
		typeStyle = theme.StatusOK
	case events.CommandFailed, events.CommandDropped, events.ExecutorDisconnected:
		typeStyle = theme.StatusFailed
	case events.CommandDispatched:
		typeStyle = theme.StatusDispatched
	default:
		typeStyle = theme.Dim
	}

	typeName := typeStyle.Render(fmt.Sprintf("%-22s", e.Type))

	return fmt.Sprintf("%s %s %s", ts, typeName, eventDesc(e))
}

func eventDesc(e events.Event) string {
	data := make(map[string]any)
	_ = json.Unmarshal(e.Data, &data)

	var parts []string
	if id, ok := data["command_id"].(string); ok {
		parts = append(parts, id)
	}
	if sid, ok := data["session_id"].(string); ok {
		if len(sid) > 8 {
			sid = sid[:8]
		}
		parts = append(parts, fmt.Sprintf("session %s", sid))
	}
	if reason, ok := data["error"].(string); ok && reason != "" {
		parts = append(parts, reason)
	}

	if len(parts) == 0 {
		raw := string(e.Data)
		if len(raw) > 60 {
			raw = raw[:60] + "..."
		}
		return raw
	}

	return strings.Join(parts, " ")
}
