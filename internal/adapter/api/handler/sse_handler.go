package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// SSEMessage is the per-second capture rate pushed to connected dashboards,
// split by event classification.
type SSEMessage struct {
	RecordRate float64 `json:"record_rate"`
	ConfigRate float64 `json:"config_rate"`
}

type recordReport struct {
	configEvent bool
}

// SSEBroker fans captured-record rates out to SSE clients.
type SSEBroker struct {
	logger  *slog.Logger
	clients map[chan []byte]struct{}
	mu      sync.RWMutex
	reports chan recordReport
}

// NewSSEBroker creates a new SSEBroker and starts its aggregation loop.
func NewSSEBroker(ctx context.Context, logger *slog.Logger) *SSEBroker {
	broker := &SSEBroker{
		logger:  logger,
		clients: make(map[chan []byte]struct{}),
		reports: make(chan recordReport, 1000),
	}
	go broker.run(ctx)
	return broker
}

// ServeHTTP handles new client connections for the SSE stream.
func (b *SSEBroker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	messageChan := make(chan []byte)
	b.addClient(messageChan)
	defer b.removeClient(messageChan)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messageChan:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// ReportRecord is called by the ingest handler for every accepted record.
func (b *SSEBroker) ReportRecord(configEvent bool) {
	select {
	case b.reports <- recordReport{configEvent: configEvent}:
	default:
		// Channel is full; drop the report rather than block the ingest path.
		b.logger.Warn("SSE report channel is full, dropping report")
	}
}

func (b *SSEBroker) addClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = struct{}{}
	b.logger.Info("SSE client connected")
}

func (b *SSEBroker) removeClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client)
		b.logger.Info("SSE client disconnected")
	}
}

func (b *SSEBroker) broadcast(msg []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client <- msg:
		default:
			// Slow client; skip it rather than stall the broadcast.
		}
	}
}

func (b *SSEBroker) run(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	var recordCount, configCount int
	lastTimestamp := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case report := <-b.reports:
			recordCount++
			if report.configEvent {
				configCount++
			}
		case <-ticker.C:
			now := time.Now()
			duration := now.Sub(lastTimestamp).Seconds()

			msg := SSEMessage{}
			if duration > 0 {
				msg.RecordRate = float64(recordCount) / duration
				msg.ConfigRate = float64(configCount) / duration
			}

			jsonData, err := json.Marshal(msg)
			if err != nil {
				b.logger.Error("failed to marshal SSE message", "error", err)
				continue
			}
			b.broadcast(jsonData)

			lastTimestamp = now
			recordCount = 0
			configCount = 0
		}
	}
}
