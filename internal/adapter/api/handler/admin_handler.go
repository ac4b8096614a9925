package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/user/rtc-event-log/internal/usecase"
)

// AdminHandler handles HTTP requests for record stream administration.
type AdminHandler struct {
	uc     *usecase.AdminStreamUseCase
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(uc *usecase.AdminStreamUseCase, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{uc: uc, logger: logger}
}

// HealthCheck is a simple health check endpoint.
func (h *AdminHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// GroupStatus reports consumer group status for a stream.
// GET /admin/streams/{streamName}/groups
func (h *AdminHandler) GroupStatus(w http.ResponseWriter, r *http.Request) {
	streamName := r.PathValue("streamName")
	if streamName == "" {
		http.Error(w, "streamName is required", http.StatusBadRequest)
		return
	}

	groups, err := h.uc.GroupStatus(r.Context(), streamName)
	if err != nil {
		h.logger.Error("failed to get group status", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.respondWithJSON(w, http.StatusOK, groups)
}

// ConsumerStatus reports consumer status for a group.
// GET /admin/streams/{streamName}/groups/{groupName}/consumers
func (h *AdminHandler) ConsumerStatus(w http.ResponseWriter, r *http.Request) {
	streamName := r.PathValue("streamName")
	groupName := r.PathValue("groupName")

	consumers, err := h.uc.ConsumerStatus(r.Context(), streamName, groupName)
	if err != nil {
		h.logger.Error("failed to get consumer status", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.respondWithJSON(w, http.StatusOK, consumers)
}

// PendingSummary summarizes unacknowledged deliveries for a group.
// GET /admin/streams/{streamName}/groups/{groupName}/pending
func (h *AdminHandler) PendingSummary(w http.ResponseWriter, r *http.Request) {
	streamName := r.PathValue("streamName")
	groupName := r.PathValue("groupName")

	summary, err := h.uc.PendingSummary(r.Context(), streamName, groupName)
	if err != nil {
		h.logger.Error("failed to get pending summary", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.respondWithJSON(w, http.StatusOK, summary)
}

// PendingEntries lists unacknowledged deliveries.
// GET /admin/streams/{streamName}/groups/{groupName}/pending/entries?consumer={name}&start={id}&count={n}
func (h *AdminHandler) PendingEntries(w http.ResponseWriter, r *http.Request) {
	streamName := r.PathValue("streamName")
	groupName := r.PathValue("groupName")
	consumerName := r.URL.Query().Get("consumer")
	startID := r.URL.Query().Get("start")
	countStr := r.URL.Query().Get("count")

	var count int64 = 100
	if countStr != "" {
		var err error
		count, err = strconv.ParseInt(countStr, 10, 64)
		if err != nil {
			http.Error(w, "invalid count parameter", http.StatusBadRequest)
			return
		}
	}

	entries, err := h.uc.PendingEntries(r.Context(), streamName, groupName, consumerName, startID, count)
	if err != nil {
		h.logger.Error("failed to get pending entries", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.respondWithJSON(w, http.StatusOK, entries)
}

// ClaimRecords reassigns pending deliveries to another consumer.
// POST /admin/streams/{streamName}/groups/{groupName}/claim
func (h *AdminHandler) ClaimRecords(w http.ResponseWriter, r *http.Request) {
	streamName := r.PathValue("streamName")
	groupName := r.PathValue("groupName")

	var payload struct {
		Consumer    string   `json:"consumer"`
		MinIdleTime string   `json:"min_idle_time"`
		MessageIDs  []string `json:"message_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	minIdle, err := time.ParseDuration(payload.MinIdleTime)
	if err != nil {
		http.Error(w, "invalid min_idle_time format", http.StatusBadRequest)
		return
	}

	claimed, err := h.uc.ClaimRecords(r.Context(), streamName, groupName, payload.Consumer, minIdle, payload.MessageIDs)
	if err != nil {
		h.logger.Error("failed to claim records", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.respondWithJSON(w, http.StatusOK, claimed)
}

// AcknowledgeMessages acknowledges deliveries by message ID.
// POST /admin/streams/{streamName}/groups/{groupName}/ack
func (h *AdminHandler) AcknowledgeMessages(w http.ResponseWriter, r *http.Request) {
	streamName := r.PathValue("streamName")
	groupName := r.PathValue("groupName")

	var payload struct {
		MessageIDs []string `json:"message_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(payload.MessageIDs) == 0 {
		http.Error(w, "message_ids cannot be empty", http.StatusBadRequest)
		return
	}

	count, err := h.uc.AcknowledgeMessages(r.Context(), streamName, groupName, payload.MessageIDs...)
	if err != nil {
		h.logger.Error("failed to acknowledge messages", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]int64{"acknowledged": count})
}

// TrimStream caps the stream length.
// POST /admin/streams/{streamName}/trim
func (h *AdminHandler) TrimStream(w http.ResponseWriter, r *http.Request) {
	streamName := r.PathValue("streamName")

	var payload struct {
		MaxLen int64 `json:"maxlen"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if payload.MaxLen <= 0 {
		http.Error(w, "maxlen must be a positive integer", http.StatusBadRequest)
		return
	}

	trimmedCount, err := h.uc.TrimStream(r.Context(), streamName, payload.MaxLen)
	if err != nil {
		h.logger.Error("failed to trim stream", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]int64{"trimmed": trimmedCount})
}

func (h *AdminHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
