package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/user/rtc-event-log/internal/adapter/scrub"
	"github.com/user/rtc-event-log/internal/domain"
)

// IngestRecordUseCase handles the business logic for accepting an event
// record from a reporting peer.
type IngestRecordUseCase struct {
	repo     domain.RecordRepository
	scrubber *scrub.Scrubber
	history  *EventLog
	logger   *slog.Logger
}

// NewIngestRecordUseCase creates a new IngestRecordUseCase.
func NewIngestRecordUseCase(repo domain.RecordRepository, scrubber *scrub.Scrubber, history *EventLog, logger *slog.Logger) *IngestRecordUseCase {
	return &IngestRecordUseCase{
		repo:     repo,
		scrubber: scrubber,
		history:  history,
		logger:   logger,
	}
}

// Ingest enriches, scrubs, and buffers a record, and feeds the rehydrated
// event into the in-memory history. It returns the number of history
// evictions the record caused alongside any fatal error.
//
// A record whose payload cannot be decoded into a known event variant is
// rejected outright: an unparseable diagnostic record is producer error,
// not data worth archiving.
func (uc *IngestRecordUseCase) Ingest(ctx context.Context, rec *domain.Record) (int, error) {
	rec.ReceivedAt = time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.SessionID == "" {
		return 0, fmt.Errorf("record %s is missing a session id", rec.ID)
	}

	if err := uc.scrubber.Scrub(rec); err != nil {
		// Non-fatal: an unscrubbed but valid record is still worth keeping.
		uc.logger.Warn("failed to scrub record, proceeding with original payload",
			"error", err, "record_id", rec.ID)
	}

	event, err := rec.Event()
	if err != nil {
		return 0, fmt.Errorf("rejecting invalid event record %s: %w", rec.ID, err)
	}

	// The history takes ownership of this instance; the buffered record
	// carries its own encoded copy.
	evicted := uc.history.Log(rec.SessionID, event)

	if err := uc.repo.BufferRecord(ctx, *rec); err != nil {
		uc.logger.Error("failed to buffer event record", "error", err, "record_id", rec.ID)
		return evicted, err
	}

	return evicted, nil
}
