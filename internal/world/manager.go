// Package world translates block-world operations into executor command text.
// Every operation formats one command string plus diagnostic metadata and
// hands it to the ledger; nothing here performs I/O of its own.
package world

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/blockgate/blockgate/internal/log"
)

var (
	// ErrInvalidMode rejects fill/clone modes outside the protocol's vocabulary.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrEmptyCommand rejects raw commands with no text.
	ErrEmptyCommand = errors.New("command is empty")
)

var fillModes = map[string]bool{
	"replace": true,
	"destroy": true,
	"keep":    true,
	"hollow":  true,
	"outline": true,
}

var cloneModes = map[string]bool{
	"replace":  true,
	"masked":   true,
	"filtered": true,
}

// Position is a block coordinate. The y range is the caller's concern.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (p Position) toMap() map[string]any {
	return map[string]any{"x": p.X, "y": p.Y, "z": p.Z}
}

// Enqueuer is the single write path into the command ledger.
type Enqueuer interface {
	Enqueue(text string, metadata map[string]any) (string, error)
}

// Manager builds executor commands for world manipulation operations.
type Manager struct {
	ledger Enqueuer
	logger *slog.Logger
}

// New creates a Manager writing through the given ledger.
func New(ledger Enqueuer) *Manager {
	return &Manager{
		ledger: ledger,
		logger: log.WithComponent("world"),
	}
}

// PlaceBlock places a block of the given type at pos.
func (m *Manager) PlaceBlock(blockType string, pos Position, dataValue int) (string, error) {
	text := fmt.Sprintf("setblock %d %d %d %s %d", pos.X, pos.Y, pos.Z, blockType, dataValue)
	return m.enqueue(text, map[string]any{
		"action":     "place_block",
		"block_type": blockType,
		"position":   pos.toMap(),
	})
}

// RemoveBlock clears the block at pos.
func (m *Manager) RemoveBlock(pos Position) (string, error) {
	text := fmt.Sprintf("setblock %d %d %d air", pos.X, pos.Y, pos.Z)
	return m.enqueue(text, map[string]any{
		"action":   "remove_block",
		"position": pos.toMap(),
	})
}

// FillArea fills the cuboid between from and to with blockType. An empty mode
// defaults to "replace".
func (m *Manager) FillArea(from, to Position, blockType, mode string) (string, error) {
	if mode == "" {
		mode = "replace"
	}
	if !fillModes[mode] {
		return "", fmt.Errorf("%w: fill mode %q", ErrInvalidMode, mode)
	}

	text := fmt.Sprintf("fill %d %d %d %d %d %d %s %s",
		from.X, from.Y, from.Z, to.X, to.Y, to.Z, blockType, mode)
	return m.enqueue(text, map[string]any{
		"action":     "fill_area",
		"from":       from.toMap(),
		"to":         to.toMap(),
		"block_type": blockType,
		"mode":       mode,
	})
}

// CloneArea copies the cuboid between from and to so its lowest corner lands
// at dest. An empty mode defaults to "replace".
func (m *Manager) CloneArea(from, to, dest Position, mode string) (string, error) {
	if mode == "" {
		mode = "replace"
	}
	if !cloneModes[mode] {
		return "", fmt.Errorf("%w: clone mode %q", ErrInvalidMode, mode)
	}

	text := fmt.Sprintf("clone %d %d %d %d %d %d %d %d %d %s",
		from.X, from.Y, from.Z, to.X, to.Y, to.Z, dest.X, dest.Y, dest.Z, mode)
	return m.enqueue(text, map[string]any{
		"action":      "clone_area",
		"from":        from.toMap(),
		"to":          to.toMap(),
		"destination": dest.toMap(),
		"mode":        mode,
	})
}

// DestroyArea clears the cuboid between from and to by filling it with air.
func (m *Manager) DestroyArea(from, to Position) (string, error) {
	return m.FillArea(from, to, "air", "replace")
}

// RunCommand enqueues a raw executor command verbatim.
func (m *Manager) RunCommand(command string) (string, error) {
	if command == "" {
		return "", ErrEmptyCommand
	}
	return m.enqueue(command, map[string]any{
		"action":  "raw_command",
		"command": command,
	})
}

func (m *Manager) enqueue(text string, metadata map[string]any) (string, error) {
	id, err := m.ledger.Enqueue(text, metadata)
	if err != nil {
		return "", err
	}
	m.logger.Info("command queued", "command_id", id, "command", text)
	return id, nil
}
