package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/user/rtc-event-log/internal/domain"
)

const defaultArchiveBatchSize = 1000

// ArchiveRecordsUseCase drains the record buffer into the long-term sink:
// read a batch, apply the persist filter, write with bounded retries, and
// acknowledge. Batches that cannot be written after retries are parked on
// the DLQ stream so the buffer keeps moving.
type ArchiveRecordsUseCase struct {
	buffer   domain.RecordRepository
	sink     domain.RecordRepository
	filter   *PersistFilter
	logger   *slog.Logger
	group    string
	consumer string
	retries  int
	backoff  time.Duration
}

// NewArchiveRecordsUseCase creates a new use case for archiving records.
func NewArchiveRecordsUseCase(buffer, sink domain.RecordRepository, filter *PersistFilter, logger *slog.Logger, group, consumer string, retries int, backoff time.Duration) *ArchiveRecordsUseCase {
	return &ArchiveRecordsUseCase{
		buffer:   buffer,
		sink:     sink,
		filter:   filter,
		logger:   logger,
		group:    group,
		consumer: consumer,
		retries:  retries,
		backoff:  backoff,
	}
}

// ProcessBatch reads one batch from the buffer and returns the number of
// records it disposed of (archived, filtered out, or parked on the DLQ).
func (uc *ArchiveRecordsUseCase) ProcessBatch(ctx context.Context) (int, error) {
	recs, err := uc.buffer.ReadRecordBatch(ctx, uc.group, uc.consumer, defaultArchiveBatchSize)
	if err != nil {
		uc.logger.Error("failed to read record batch from buffer", "error", err)
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}

	kept := recs[:0:0]
	for _, rec := range recs {
		if uc.filter.Keep(rec) {
			kept = append(kept, rec)
		}
	}
	if dropped := len(recs) - len(kept); dropped > 0 {
		uc.logger.Debug("persist filter dropped records", "count", dropped)
	}

	messageIDs := make([]string, len(recs))
	for i, rec := range recs {
		messageIDs[i] = rec.StreamMessageID
	}

	if len(kept) > 0 {
		if err := uc.writeWithRetry(ctx, kept); err != nil {
			uc.logger.Error("failed to write record batch to sink after retries, moving to DLQ", "error", err, "count", len(kept))
			if dlqErr := uc.buffer.MoveToDLQ(ctx, kept); dlqErr != nil {
				uc.logger.Error("failed to move records to DLQ", "error", dlqErr)
				return 0, dlqErr
			}
			// Parked on the DLQ: acknowledge so the batch is not redelivered.
			if ackErr := uc.buffer.AcknowledgeRecords(ctx, uc.group, messageIDs...); ackErr != nil {
				uc.logger.Error("failed to acknowledge records after DLQ move", "error", ackErr)
				return 0, ackErr
			}
			return 0, err
		}
	}

	if err := uc.buffer.AcknowledgeRecords(ctx, uc.group, messageIDs...); err != nil {
		// Records are in the sink but unacked; the idempotent sink upsert
		// absorbs the redelivery.
		uc.logger.Error("failed to acknowledge records in buffer", "error", err)
		return 0, err
	}

	uc.logger.Info("archived record batch", "read", len(recs), "persisted", len(kept))
	return len(recs), nil
}

func (uc *ArchiveRecordsUseCase) writeWithRetry(ctx context.Context, recs []domain.Record) error {
	var lastErr error
	for i := 0; i < uc.retries; i++ {
		err := uc.sink.WriteRecordBatch(ctx, recs)
		if err == nil {
			return nil
		}
		lastErr = err
		uc.logger.Warn("failed to write batch to sink, retrying...", "attempt", i+1, "error", err)
		select {
		case <-time.After(uc.backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
