package protocol

import (
	"encoding/json"
	"fmt"
)

// Decode parses a single wire frame. It rejects malformed JSON and frames
// with no type; an unrecognized type is the caller's decision, not an error.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("failed to decode message: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("message missing required field: type")
	}
	return msg, nil
}

// Encode serializes a wire frame.
func Encode(msg Message) ([]byte, error) {
	if msg.Type == "" {
		return nil, fmt.Errorf("message missing required field: type")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}
