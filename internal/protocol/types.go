// Package protocol defines the JSON messages exchanged with a remote
// executor over the bridge connection.
package protocol

import "encoding/json"

// Message types sent to the executor.
const (
	TypeWelcome        = "welcome"
	TypeExecuteCommand = "execute_command"
	TypeAck            = "ack"
)

// Message types received from the executor.
const (
	TypeReady         = "ready"
	TypeCommandResult = "command_result"
	TypeError         = "error"
)

// Message is the single envelope covering every frame on the wire. Type
// decides which of the optional fields are meaningful.
type Message struct {
	Type string `json:"type"`

	// welcome / ack
	Message string `json:"message,omitempty"`

	// execute_command (outbound), command_result (inbound)
	CommandID string         `json:"command_id,omitempty"`
	Command   string         `json:"command,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`

	// command_result
	Success *bool           `json:"success,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`

	// error
	Error string `json:"error,omitempty"`
}

// Welcome builds the greeting sent on connection accept.
func Welcome(text string) Message {
	return Message{Type: TypeWelcome, Message: text}
}

// Ack builds the handshake completion reply to the executor's ready.
func Ack(text string) Message {
	return Message{Type: TypeAck, Message: text}
}

// ExecuteCommand builds an outbound command frame.
func ExecuteCommand(commandID, command string, metadata map[string]any) Message {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Message{
		Type:      TypeExecuteCommand,
		CommandID: commandID,
		Command:   command,
		Metadata:  metadata,
	}
}

// Succeeded reports the command_result outcome, defaulting to false when the
// executor omitted the field.
func (m Message) Succeeded() bool {
	return m.Success != nil && *m.Success
}
