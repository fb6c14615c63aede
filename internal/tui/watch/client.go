package watch

import (
	"bufio"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/blockgate/blockgate/internal/events"
)

type eventMsg events.Event

type healthMsg struct {
	Status            string `json:"status"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
	QueueDepth        int    `json:"queue_depth"`
	ExecutorConnected bool   `json:"executor_connected"`
}

type tickMsg time.Time

type errMsg error

type streamClosedMsg struct{}
type reconnectMsg struct{}

// subscribeToEvents connects to the SSE /events endpoint and feeds parsed
// events into ch. Returns streamClosedMsg when the connection drops.
func subscribeToEvents(apiURL, apiKey string, ch chan<- events.Event) tea.Cmd {
	return func() tea.Msg {
		req, err := http.NewRequest(http.MethodGet, apiURL+"/events", nil)
		if err != nil {
			return errMsg(err)
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return streamClosedMsg{}
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		var id int64
		var typ, data string

		for scanner.Scan() {
			line := scanner.Text()

			// Blank line terminates an SSE frame.
			if line == "" {
				if data != "" {
					ch <- events.Event{ID: id, Type: typ, At: time.Now(), Data: []byte(data)}
					id, typ, data = 0, "", ""
				}
				continue
			}

			switch {
			case strings.HasPrefix(line, "id: "):
				if n, err := strconv.ParseInt(line[4:], 10, 64); err == nil {
					id = n
				}
			case strings.HasPrefix(line, "event: "):
				typ = line[7:]
			case strings.HasPrefix(line, "data: "):
				data = line[6:]
			}
		}

		return streamClosedMsg{}
	}
}

// receiveNextEvent waits for the next event from the channel.
func receiveNextEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-ch)
	}
}

// fetchHealth queries the /healthz endpoint.
func fetchHealth(apiURL string) tea.Msg {
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(apiURL + "/healthz")
	if err != nil {
		return errMsg(err)
	}
	defer resp.Body.Close()

	var h healthMsg
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return errMsg(err)
	}
	return h
}
