package api

import (
	"log/slog"
	"net/http"

	"github.com/user/rtc-event-log/internal/adapter/api/handler"
	"github.com/user/rtc-event-log/internal/usecase"
)

// NewAdminRouter creates and configures the HTTP router for stream admin
// operations. Uses path patterns (e.g., "/{streamName}/") available in Go 1.22+.
func NewAdminRouter(adminUseCase *usecase.AdminStreamUseCase, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	adminHandler := handler.NewAdminHandler(adminUseCase, logger)

	mux.HandleFunc("GET /health", adminHandler.HealthCheck)

	// Stream Info
	mux.HandleFunc("GET /admin/streams/{streamName}/groups", adminHandler.GroupStatus)
	mux.HandleFunc("GET /admin/streams/{streamName}/groups/{groupName}/consumers", adminHandler.ConsumerStatus)

	// Pending Records
	mux.HandleFunc("GET /admin/streams/{streamName}/groups/{groupName}/pending", adminHandler.PendingSummary)
	mux.HandleFunc("GET /admin/streams/{streamName}/groups/{groupName}/pending/entries", adminHandler.PendingEntries)

	// Stream Operations
	mux.HandleFunc("POST /admin/streams/{streamName}/groups/{groupName}/claim", adminHandler.ClaimRecords)
	mux.HandleFunc("POST /admin/streams/{streamName}/groups/{groupName}/ack", adminHandler.AcknowledgeMessages)
	mux.HandleFunc("POST /admin/streams/{streamName}/trim", adminHandler.TrimStream)

	return mux
}
