package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/blockgate/blockgate/internal/world"
)

// World height bounds enforced at the API boundary (the pipeline itself does
// not interpret coordinates).
const (
	minWorldY = -64
	maxWorldY = 320
)

// PositionBody is a 3D coordinate in a request body.
type PositionBody struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (p PositionBody) validate(field string) error {
	if p.Y < minWorldY || p.Y > maxWorldY {
		return fmt.Errorf("%s.y must be between %d and %d", field, minWorldY, maxWorldY)
	}
	return nil
}

func (p PositionBody) toPosition() world.Position {
	return world.Position{X: p.X, Y: p.Y, Z: p.Z}
}

func validateBlockType(blockType string) error {
	if blockType == "" || !strings.Contains(blockType, ":") {
		return fmt.Errorf("block_type must include namespace (e.g. minecraft:stone)")
	}
	return nil
}

// PlaceBlockRequest is the body for POST /api/v1/place_block.
type PlaceBlockRequest struct {
	BlockType string       `json:"block_type"`
	Position  PositionBody `json:"position"`
	DataValue int          `json:"data_value"`
}

func (r PlaceBlockRequest) validate() error {
	if err := validateBlockType(r.BlockType); err != nil {
		return err
	}
	if r.DataValue < 0 || r.DataValue > 15 {
		return fmt.Errorf("data_value must be between 0 and 15")
	}
	return r.Position.validate("position")
}

// RemoveBlockRequest is the body for POST /api/v1/remove_block.
type RemoveBlockRequest struct {
	Position PositionBody `json:"position"`
}

// FillAreaRequest is the body for POST /api/v1/fill_area.
type FillAreaRequest struct {
	FromPos   PositionBody `json:"from_pos"`
	ToPos     PositionBody `json:"to_pos"`
	BlockType string       `json:"block_type"`
	FillMode  string       `json:"fill_mode"`
}

func (r FillAreaRequest) validate() error {
	if err := validateBlockType(r.BlockType); err != nil {
		return err
	}
	if err := r.FromPos.validate("from_pos"); err != nil {
		return err
	}
	return r.ToPos.validate("to_pos")
}

// CloneAreaRequest is the body for POST /api/v1/clone_area.
type CloneAreaRequest struct {
	FromPos     PositionBody `json:"from_pos"`
	ToPos       PositionBody `json:"to_pos"`
	Destination PositionBody `json:"destination"`
	CloneMode   string       `json:"clone_mode"`
}

func (r CloneAreaRequest) validate() error {
	if err := r.FromPos.validate("from_pos"); err != nil {
		return err
	}
	if err := r.ToPos.validate("to_pos"); err != nil {
		return err
	}
	return r.Destination.validate("destination")
}

// DestroyAreaRequest is the body for POST /api/v1/destroy_area.
type DestroyAreaRequest struct {
	FromPos PositionBody `json:"from_pos"`
	ToPos   PositionBody `json:"to_pos"`
}

// ExecuteCommandRequest is the body for POST /api/v1/execute_command.
type ExecuteCommandRequest struct {
	Command string `json:"command"`
}

// CommandResponse is returned for every accepted world operation.
type CommandResponse struct {
	Success   bool   `json:"success"`
	CommandID string `json:"command_id"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// HistoryEntry is one command in the history response.
type HistoryEntry struct {
	ID        string         `json:"id"`
	Command   string         `json:"command"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	Status    string         `json:"status"`
}

// HistoryResponse is returned by GET /api/v1/command_history.
type HistoryResponse struct {
	Commands []HistoryEntry `json:"commands"`
	Total    int            `json:"total"`
}

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status            string `json:"status"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
	QueueDepth        int    `json:"queue_depth"`
	ExecutorConnected bool   `json:"executor_connected"`
	ConfigChecksum    string `json:"config_checksum,omitempty"`
}

