package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/user/rtc-event-log/internal/adapter/metrics"
	"github.com/user/rtc-event-log/internal/domain"
)

// MockIngester is a mock implementation of the Ingester interface.
type MockIngester struct {
	IngestFunc func(ctx context.Context, rec *domain.Record) (int, error)
}

func (m *MockIngester) Ingest(ctx context.Context, rec *domain.Record) (int, error) {
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, rec)
	}
	return 0, nil
}

// testMetrics is shared across tests: promauto registers on the default
// registry, so the constructor can only run once per test binary.
var testMetrics = metrics.NewCollectorMetrics()

func TestIngestHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockSSEBroker := NewSSEBroker(context.Background(), logger)

	configRecord := `{"session_id": "s1", "type": "audio_send_stream_config", "config_event": true, "timestamp_us": 1000, "payload": {"local_ssrc": 42}}`
	rtcpRecord := `{"session_id": "s1", "type": "rtcp_packet_incoming", "timestamp_us": 2000, "payload": {"packet": "gMgABg=="}}`

	tests := []struct {
		name           string
		method         string
		contentType    string
		body           string
		mockIngestErr  error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Valid Single JSON",
			method:         http.MethodPost,
			contentType:    "application/json",
			body:           configRecord,
			expectedStatus: http.StatusAccepted,
			expectedBody:   "",
		},
		{
			name:           "Valid NDJSON",
			method:         http.MethodPost,
			contentType:    "application/x-ndjson",
			body:           configRecord + "\n" + rtcpRecord,
			expectedStatus: http.StatusAccepted,
			expectedBody:   "",
		},
		{
			name:           "Invalid Method",
			method:         http.MethodGet,
			contentType:    "application/json",
			body:           `{}`,
			expectedStatus: http.StatusMethodNotAllowed,
			expectedBody:   "Method Not Allowed\n",
		},
		{
			name:           "Unsupported Content-Type",
			method:         http.MethodPost,
			contentType:    "text/plain",
			body:           `hello`,
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedBody:   "Unsupported Media Type: text/plain\n",
		},
		{
			name:           "Bad JSON",
			method:         http.MethodPost,
			contentType:    "application/json",
			body:           `{"session_id": "s1"`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Bad Request: Failed to decode JSON\n",
		},
		{
			name:           "Bad NDJSON line",
			method:         http.MethodPost,
			contentType:    "application/x-ndjson",
			body:           rtcpRecord + "\n" + `{"session_id": "bad`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Bad Request: Failed to decode NDJSON line\n",
		},
		{
			name:           "Ingest Use Case Error",
			method:         http.MethodPost,
			contentType:    "application/json",
			body:           configRecord,
			mockIngestErr:  errors.New("internal buffer error"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "Internal Server Error\n",
		},
		{
			name:           "Payload Too Large",
			method:         http.MethodPost,
			contentType:    "application/json",
			body:           configRecord,
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedBody:   "http: request body too large\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUseCase := &MockIngester{
				IngestFunc: func(ctx context.Context, rec *domain.Record) (int, error) {
					return 0, tt.mockIngestErr
				},
			}
			// Use a small max size for the "Payload Too Large" test
			maxSize := int64(1024)
			if tt.name == "Payload Too Large" {
				maxSize = 50
			}

			handler := NewIngestHandler(mockUseCase, logger, maxSize, testMetrics, mockSSEBroker)

			req := httptest.NewRequest(tt.method, "/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if status := rr.Code; status != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", status, tt.expectedStatus)
			}

			if body := rr.Body.String(); body != tt.expectedBody {
				t.Errorf("handler returned unexpected body: got %q want %q", body, tt.expectedBody)
			}
		})
	}
}

// A record that fits the configured size limit must be accepted over NDJSON
// as well as single JSON, even when the line is longer than bufio.Scanner's
// default token limit.
func TestIngestHandlerNDJSONLongLine(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockSSEBroker := NewSSEBroker(context.Background(), logger)

	var ingested int
	mockUseCase := &MockIngester{
		IngestFunc: func(ctx context.Context, rec *domain.Record) (int, error) {
			ingested++
			return 0, nil
		},
	}

	handler := NewIngestHandler(mockUseCase, logger, 2*1024*1024, testMetrics, mockSSEBroker)

	packet := strings.Repeat("A", 100*1024)
	body := `{"session_id": "s1", "type": "rtcp_packet_incoming", "timestamp_us": 1000, "payload": {"packet": "` + packet + `"}}`

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/x-ndjson")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d (body %q)", http.StatusAccepted, rr.Code, rr.Body.String())
	}
	if ingested != 1 {
		t.Errorf("expected 1 ingested record, got %d", ingested)
	}
}
