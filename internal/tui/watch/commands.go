package watch

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/blockgate/blockgate/internal/events"
)

// commandState is the lifecycle of one command as seen on the event stream.
type commandState struct {
	ID        string
	Status    string
	UpdatedAt time.Time
}

func newCommandTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 22},
			{Title: "Status", Width: 14},
			{Title: "Updated", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("22")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// applyCommandEvent updates command state from a pipeline event and returns
// true if the event was command-related.
func applyCommandEvent(cmds map[string]*commandState, order *[]string, e events.Event) bool {
	var status string
	switch e.Type {
	case events.CommandQueued:
		status = "queued"
	case events.CommandDispatched:
		status = "dispatched"
	case events.CommandAcknowledged:
		status = "acknowledged"
	case events.CommandFailed:
		status = "failed"
	case events.CommandDropped:
		status = "dropped"
	default:
		return false
	}

	var payload struct {
		CommandID string `json:"command_id"`
	}
	if err := json.Unmarshal(e.Data, &payload); err != nil || payload.CommandID == "" {
		return false
	}

	if _, ok := cmds[payload.CommandID]; !ok {
		*order = append(*order, payload.CommandID)
	}
	cmds[payload.CommandID] = &commandState{
		ID:        payload.CommandID,
		Status:    status,
		UpdatedAt: e.At,
	}
	return true
}

// commandRows builds table rows, newest command first.
func commandRows(cmds map[string]*commandState, order []string) []table.Row {
	rows := make([]table.Row, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		c, ok := cmds[order[i]]
		if !ok {
			continue
		}
		rows = append(rows, table.Row{c.ID, c.Status, c.UpdatedAt.Format("15:04:05")})
	}
	return rows
}

func renderCommands(t table.Model, theme Theme, width int) string {
	innerWidth := width - 4

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("COMMANDS"),
		t.View(),
	)
	return theme.Border.Width(innerWidth).Render(content)
}
