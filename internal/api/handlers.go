package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/blockgate/blockgate/internal/events"
	"github.com/blockgate/blockgate/internal/ledger"
	"github.com/blockgate/blockgate/internal/world"
)

// maxHistoryLimit caps GET /api/v1/command_history responses.
const maxHistoryLimit = 100

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := HealthzResponse{
		Status:            "ok",
		UptimeSeconds:     int64(time.Since(s.startedAt).Seconds()),
		QueueDepth:        s.history.Depth(),
		ExecutorConnected: s.executor.Connected(),
		ConfigChecksum:    s.config.ConfigChecksum,
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handlePlaceBlock handles POST /api/v1/place_block.
func (s *Server) handlePlaceBlock(w http.ResponseWriter, r *http.Request) {
	var req PlaceBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.manager.PlaceBlock(req.BlockType, req.Position.toPosition(), req.DataValue)
	if err != nil {
		s.writeOperationError(w, err)
		return
	}

	s.publishQueued(id)
	s.writeCommand(w, id, fmt.Sprintf("Block placement command queued: %s at (%d, %d, %d)",
		req.BlockType, req.Position.X, req.Position.Y, req.Position.Z))
}

// handleRemoveBlock handles POST /api/v1/remove_block.
func (s *Server) handleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	var req RemoveBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Position.validate("position"); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.manager.RemoveBlock(req.Position.toPosition())
	if err != nil {
		s.writeOperationError(w, err)
		return
	}

	s.publishQueued(id)
	s.writeCommand(w, id, fmt.Sprintf("Block removal command queued at (%d, %d, %d)",
		req.Position.X, req.Position.Y, req.Position.Z))
}

// handleFillArea handles POST /api/v1/fill_area.
func (s *Server) handleFillArea(w http.ResponseWriter, r *http.Request) {
	var req FillAreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.manager.FillArea(req.FromPos.toPosition(), req.ToPos.toPosition(), req.BlockType, req.FillMode)
	if err != nil {
		s.writeOperationError(w, err)
		return
	}

	s.publishQueued(id)
	s.writeCommand(w, id, fmt.Sprintf("Area fill command queued: %s", req.BlockType))
}

// handleCloneArea handles POST /api/v1/clone_area.
func (s *Server) handleCloneArea(w http.ResponseWriter, r *http.Request) {
	var req CloneAreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.manager.CloneArea(req.FromPos.toPosition(), req.ToPos.toPosition(),
		req.Destination.toPosition(), req.CloneMode)
	if err != nil {
		s.writeOperationError(w, err)
		return
	}

	s.publishQueued(id)
	s.writeCommand(w, id, fmt.Sprintf("Area clone command queued to (%d, %d, %d)",
		req.Destination.X, req.Destination.Y, req.Destination.Z))
}

// handleDestroyArea handles POST /api/v1/destroy_area.
func (s *Server) handleDestroyArea(w http.ResponseWriter, r *http.Request) {
	var req DestroyAreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.FromPos.validate("from_pos"); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.ToPos.validate("to_pos"); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.manager.DestroyArea(req.FromPos.toPosition(), req.ToPos.toPosition())
	if err != nil {
		s.writeOperationError(w, err)
		return
	}

	s.publishQueued(id)
	s.writeCommand(w, id, "Area destroy command queued")
}

// handleExecuteCommand handles POST /api/v1/execute_command.
func (s *Server) handleExecuteCommand(w http.ResponseWriter, r *http.Request) {
	var req ExecuteCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := s.manager.RunCommand(req.Command)
	if err != nil {
		s.writeOperationError(w, err)
		return
	}

	s.publishQueued(id)
	s.writeCommand(w, id, fmt.Sprintf("Command queued: %s", req.Command))
}

// handleCommandHistory handles GET /api/v1/command_history.
func (s *Server) handleCommandHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records := s.history.History(limit)
	entries := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, HistoryEntry{
			ID:        rec.ID,
			Command:   rec.Text,
			Metadata:  rec.Metadata,
			CreatedAt: rec.CreatedAt,
			Status:    string(rec.Status),
		})
	}

	s.writeJSON(w, http.StatusOK, HistoryResponse{
		Commands: entries,
		Total:    len(entries),
	})
}

// publishQueued announces an accepted command on the event hub.
func (s *Server) publishQueued(id string) {
	s.hub.Publish(events.CommandQueued, map[string]string{"command_id": id})
}

// writeOperationError maps pipeline errors onto HTTP status codes.
func (s *Server) writeOperationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, world.ErrInvalidMode), errors.Is(err, world.ErrEmptyCommand):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrQueueFull):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("operation failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "operation failed")
	}
}

func (s *Server) writeCommand(w http.ResponseWriter, id, message string) {
	s.writeJSON(w, http.StatusOK, CommandResponse{
		Success:   true,
		CommandID: id,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}
