package api

import (
	"log/slog"
	"net/http"

	"github.com/user/rtc-event-log/internal/adapter/api/handler"
	"github.com/user/rtc-event-log/internal/adapter/api/middleware"
	"github.com/user/rtc-event-log/internal/adapter/metrics"
	"github.com/user/rtc-event-log/internal/domain"
	"github.com/user/rtc-event-log/internal/pkg/config"
	"github.com/user/rtc-event-log/internal/usecase"
)

// NewRouter creates and configures the main HTTP router for the collector.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	apiKeyRepo domain.APIKeyRepository,
	ingestUseCase *usecase.IngestRecordUseCase,
	history *usecase.EventLog,
	m *metrics.CollectorMetrics,
	sseBroker *handler.SSEBroker,
) http.Handler {
	mux := http.NewServeMux()

	ingestHandler := handler.NewIngestHandler(ingestUseCase, logger, cfg.MaxRecordSize, m, sseBroker)
	snapshotHandler := handler.NewSnapshotHandler(history, logger)

	authMiddleware := middleware.Auth(apiKeyRepo, logger)
	rateLimitMiddleware := middleware.RateLimit(cfg.IngestRateLimit, cfg.IngestRateBurst, logger)

	mux.Handle("POST /events", authMiddleware(rateLimitMiddleware(ingestHandler)))
	mux.Handle("GET /sessions", authMiddleware(http.HandlerFunc(snapshotHandler.Sessions)))
	mux.Handle("GET /sessions/{sessionID}/snapshot", authMiddleware(http.HandlerFunc(snapshotHandler.Snapshot)))
	mux.Handle("GET /stream", sseBroker)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}
