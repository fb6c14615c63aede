package watch

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blockgate/blockgate/internal/events"
)

const maxEventLog = 50

// Model is the main BubbleTea model for the watch TUI.
type Model struct {
	apiURL string
	apiKey string

	width  int
	height int

	health    HealthState
	commands  map[string]*commandState
	cmdOrder  []string
	cmdTable  table.Model
	eventLog  []events.Event
	pulse     Pulse
	theme     Theme
	hubEvents chan events.Event
	lastError string
}

// New creates a watch TUI model pointed at the gateway API.
func New(apiURL, apiKey string) *Model {
	return &Model{
		apiURL:    apiURL,
		apiKey:    apiKey,
		commands:  make(map[string]*commandState),
		cmdTable:  newCommandTable(),
		eventLog:  make([]events.Event, 0),
		hubEvents: make(chan events.Event, 100),
		theme:     NewDefaultTheme(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		subscribeToEvents(m.apiURL, m.apiKey, m.hubEvents),
		receiveNextEvent(m.hubEvents),
		func() tea.Msg { return fetchHealth(m.apiURL) },
		tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) }),
		tea.EnterAltScreen,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		default:
			var cmd tea.Cmd
			m.cmdTable, cmd = m.cmdTable.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.pulse.Decay()
		return m, tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })

	case eventMsg:
		e := events.Event(msg)

		m.eventLog = append([]events.Event{e}, m.eventLog...)
		if len(m.eventLog) > maxEventLog {
			m.eventLog = m.eventLog[:maxEventLog]
		}

		m.pulse.OnEvent()

		if applyCommandEvent(m.commands, &m.cmdOrder, e) {
			m.cmdTable.SetRows(commandRows(m.commands, m.cmdOrder))
		}

		switch e.Type {
		case events.ExecutorConnected:
			m.health.ExecutorConnected = true
		case events.ExecutorDisconnected:
			m.health.ExecutorConnected = false
		}

		m.health.Reachable = true
		m.lastError = ""

		return m, receiveNextEvent(m.hubEvents)

	case healthMsg:
		m.health.Status = msg.Status
		m.health.UptimeSeconds = msg.UptimeSeconds
		m.health.QueueDepth = msg.QueueDepth
		m.health.ExecutorConnected = msg.ExecutorConnected
		m.health.Reachable = true
		m.health.LastCheck = time.Now()
		m.lastError = ""

		return m, tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
			return fetchHealth(m.apiURL)
		})

	case streamClosedMsg:
		m.health.Reachable = false
		m.lastError = "event stream disconnected, reconnecting..."
		// The receiveNextEvent goroutine keeps waiting on the channel and
		// picks up events from the new subscription.
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return reconnectMsg{}
		})

	case reconnectMsg:
		return m, subscribeToEvents(m.apiURL, m.apiKey, m.hubEvents)

	case errMsg:
		m.lastError = msg.Error()
		return m, tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
			return fetchHealth(m.apiURL)
		})
	}

	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Connecting to gateway..."
	}

	header := renderHeader(m.health, m.pulse, m.theme, m.width)
	commands := renderCommands(m.cmdTable, m.theme, m.width)
	eventStream := renderEventStream(m.eventLog, m.theme, m.width)

	var errBar string
	if m.lastError != "" {
		errBar = m.theme.StatusFailed.Render(fmt.Sprintf(" ! %s", m.lastError))
	}

	help := m.theme.Dim.Render(" [q] quit  [up/down] select command")

	parts := []string{header, commands, eventStream}
	if errBar != "" {
		parts = append(parts, errBar)
	}
	parts = append(parts, help)

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}
