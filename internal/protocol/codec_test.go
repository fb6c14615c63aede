package protocol

import (
	"testing"
)

func TestDecodeCommandResult(t *testing.T) {
	t.Parallel()

	raw := `{"type":"command_result","command_id":"cmd_42","success":true,"result":{"blocks":9}}`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Type != TypeCommandResult {
		t.Fatalf("unexpected type %q", msg.Type)
	}
	if msg.CommandID != "cmd_42" {
		t.Fatalf("unexpected command_id %q", msg.CommandID)
	}
	if !msg.Succeeded() {
		t.Fatal("expected success")
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	if _, err := Decode([]byte(`{"type":`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestDecodeRejectsMissingType(t *testing.T) {
	t.Parallel()

	if _, err := Decode([]byte(`{"command_id":"cmd_1"}`)); err == nil {
		t.Fatal("expected error for missing type")
	}
}

func TestSucceededDefaultsFalse(t *testing.T) {
	t.Parallel()

	msg, err := Decode([]byte(`{"type":"command_result","command_id":"cmd_1"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Succeeded() {
		t.Fatal("success must default to false when omitted")
	}
}

func TestEncodeExecuteCommand(t *testing.T) {
	t.Parallel()

	msg := ExecuteCommand("cmd_7", "setblock 0 64 0 minecraft:stone 0", map[string]any{"action": "place_block"})
	data, err := Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Type != TypeExecuteCommand || decoded.CommandID != "cmd_7" {
		t.Fatalf("unexpected round trip: %#v", decoded)
	}
	if decoded.Command != "setblock 0 64 0 minecraft:stone 0" {
		t.Fatalf("unexpected command text: %q", decoded.Command)
	}
}

func TestEncodeRejectsMissingType(t *testing.T) {
	t.Parallel()

	if _, err := Encode(Message{}); err == nil {
		t.Fatal("expected error for missing type")
	}
}
