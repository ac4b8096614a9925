package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/user/rtc-event-log/internal/domain"
	"github.com/user/rtc-event-log/internal/usecase"
)

// SnapshotHandler serves the in-memory history of a session: configuration
// snapshots first, then the retained runtime events.
type SnapshotHandler struct {
	history *usecase.EventLog
	logger  *slog.Logger
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(history *usecase.EventLog, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{history: history, logger: logger}
}

type snapshotItem struct {
	Type        string          `json:"type"`
	ConfigEvent bool            `json:"config_event"`
	TimestampUS int64           `json:"timestamp_us"`
	Payload     json.RawMessage `json:"payload"`
}

// Sessions lists the session IDs with live history.
// GET /sessions
func (h *SnapshotHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"sessions": h.history.Sessions()})
}

// Snapshot dumps the history of one session.
// GET /sessions/{sessionID}/snapshot
func (h *SnapshotHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	events := h.history.Snapshot(sessionID)
	if events == nil {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	items := make([]snapshotItem, 0, len(events))
	for _, e := range events {
		rec, err := domain.NewRecord(sessionID, e)
		if err != nil {
			h.logger.Error("failed to encode snapshot event", "error", err, "session_id", sessionID)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		items = append(items, snapshotItem{
			Type:        rec.Type,
			ConfigEvent: rec.ConfigEvent,
			TimestampUS: rec.TimestampUS,
			Payload:     rec.Payload,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": sessionID,
		"events":     items,
	})
}
