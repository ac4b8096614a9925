package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lib/pq"

	"github.com/user/rtc-event-log/internal/domain"
)

var errNotImplemented = errors.New("method not implemented for this repository type")

// RecordRepository implements the sink side of domain.RecordRepository for
// PostgreSQL.
type RecordRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRecordRepository creates a new PostgreSQL record repository.
func NewRecordRepository(db *sql.DB, logger *slog.Logger) *RecordRepository {
	return &RecordRepository{db: db, logger: logger}
}

// WriteRecordBatch writes a batch of records using the COPY protocol into a
// staging table, then upserts into rtc_events keyed on record_id. Redelivered
// batches land on the conflict branch instead of duplicating rows.
func (r *RecordRepository) WriteRecordBatch(ctx context.Context, recs []domain.Record) error {
	if len(recs) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback() // no-op after Commit

	const tempTableName = "rtc_events_temp_import"
	_, err = txn.ExecContext(ctx, `CREATE TEMP TABLE `+tempTableName+` (LIKE rtc_events INCLUDING DEFAULTS) ON COMMIT DROP;`)
	if err != nil {
		return err
	}

	stmt, err := txn.Prepare(pq.CopyIn(tempTableName,
		"record_id", "session_id", "received_at", "event_type", "config_event", "timestamp_us", "payload", "scrubbed"))
	if err != nil {
		return err
	}

	for _, rec := range recs {
		_, err = stmt.ExecContext(ctx, rec.ID, rec.SessionID, rec.ReceivedAt, rec.Type, rec.ConfigEvent, rec.TimestampUS, []byte(rec.Payload), rec.Scrubbed)
		if err != nil {
			_ = stmt.Close()
			return err
		}
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	upsertQuery := `
		INSERT INTO rtc_events (record_id, session_id, received_at, event_type, config_event, timestamp_us, payload, scrubbed)
		SELECT record_id, session_id, received_at, event_type, config_event, timestamp_us, payload, scrubbed FROM ` + tempTableName + `
		ON CONFLICT (record_id) DO UPDATE SET
			session_id = EXCLUDED.session_id,
			received_at = EXCLUDED.received_at,
			event_type = EXCLUDED.event_type,
			config_event = EXCLUDED.config_event,
			timestamp_us = EXCLUDED.timestamp_us,
			payload = EXCLUDED.payload,
			scrubbed = EXCLUDED.scrubbed;
	`
	if _, err = txn.ExecContext(ctx, upsertQuery); err != nil {
		return err
	}

	return txn.Commit()
}

// The remaining methods belong to the buffer side and are not implemented
// for the PostgreSQL sink.

func (r *RecordRepository) BufferRecord(ctx context.Context, rec domain.Record) error {
	return errNotImplemented
}

func (r *RecordRepository) ReadRecordBatch(ctx context.Context, group, consumer string, count int) ([]domain.Record, error) {
	return nil, errNotImplemented
}

func (r *RecordRepository) AcknowledgeRecords(ctx context.Context, group string, messageIDs ...string) error {
	return errNotImplemented
}

func (r *RecordRepository) MoveToDLQ(ctx context.Context, recs []domain.Record) error {
	return errNotImplemented
}
