package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/user/rtc-event-log/internal/adapter/metrics"
	"github.com/user/rtc-event-log/internal/domain"
)

// Ingester is the slice of the ingest use case the handler needs.
type Ingester interface {
	Ingest(ctx context.Context, rec *domain.Record) (int, error)
}

// IngestHandler handles HTTP submission of event records.
type IngestHandler struct {
	useCase       Ingester
	logger        *slog.Logger
	maxRecordSize int64
	metrics       *metrics.CollectorMetrics
	broker        *SSEBroker
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(uc Ingester, logger *slog.Logger, maxRecordSize int64, m *metrics.CollectorMetrics, broker *SSEBroker) *IngestHandler {
	return &IngestHandler{
		useCase:       uc,
		logger:        logger,
		maxRecordSize: maxRecordSize,
		metrics:       m,
		broker:        broker,
	}
}

// ServeHTTP accepts a single JSON record or an NDJSON batch of records.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRecordSize)

	var err error
	switch contentType := r.Header.Get("Content-Type"); contentType {
	case "application/json":
		err = h.handleSingleJSON(r.Context(), r)
	case "application/x-ndjson":
		err = h.handleNDJSON(r.Context(), r)
	default:
		h.metrics.RecordsTotal.WithLabelValues("unknown", "error_media_type").Inc()
		http.Error(w, fmt.Sprintf("Unsupported Media Type: %s", contentType), http.StatusUnsupportedMediaType)
		return
	}

	if err != nil {
		var maxBytesErr *http.MaxBytesError
		var decodeErr decodeError
		switch {
		case errors.As(err, &maxBytesErr):
			h.metrics.RecordsTotal.WithLabelValues("unknown", "error_size").Inc()
			http.Error(w, "http: request body too large", http.StatusRequestEntityTooLarge)
		case errors.As(err, &decodeErr):
			h.metrics.RecordsTotal.WithLabelValues("unknown", "error_parse").Inc()
			http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to process ingest request", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// decodeError marks client-side parse failures so they map to 400 rather
// than 500.
type decodeError struct{ msg string }

func (e decodeError) Error() string { return e.msg }

func (h *IngestHandler) handleSingleJSON(ctx context.Context, r *http.Request) error {
	var rec domain.Record
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&rec); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return decodeError{"Failed to decode JSON"}
	}
	return h.ingestOne(ctx, &rec)
}

func (h *IngestHandler) handleNDJSON(ctx context.Context, r *http.Request) error {
	scanner := bufio.NewScanner(r.Body)
	// Lines are capped by the request size limit, not the default 64KiB
	// scanner token limit, so both body formats accept the same records.
	scanner.Buffer(nil, int(h.maxRecordSize))
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec domain.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return decodeError{"Failed to decode NDJSON line"}
		}
		if err := h.ingestOne(ctx, &rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return decodeError{"Failed to read NDJSON body"}
	}
	return nil
}

func (h *IngestHandler) ingestOne(ctx context.Context, rec *domain.Record) error {
	evicted, err := h.useCase.Ingest(ctx, rec)
	if err != nil {
		h.metrics.RecordsTotal.WithLabelValues(rec.Type, "error_buffer").Inc()
		return err
	}

	h.metrics.RecordsTotal.WithLabelValues(rec.Type, "accepted").Inc()
	h.metrics.BytesTotal.Add(float64(len(rec.Payload)))
	if rec.ConfigEvent {
		h.metrics.ConfigEventsTotal.Inc()
	}
	if evicted > 0 {
		h.metrics.HistoryEvictions.Add(float64(evicted))
	}
	if h.broker != nil {
		h.broker.ReportRecord(rec.ConfigEvent)
	}
	return nil
}
