package domain

import (
	"context"
	"time"
)

// RecordRepository abstracts buffering and sinking of event records so the
// use cases stay ignorant of the backing store (Redis Streams, PostgreSQL).
type RecordRepository interface {
	// BufferRecord appends a single record to the durable buffer.
	BufferRecord(ctx context.Context, rec Record) error

	// ReadRecordBatch reads up to count records from the buffer on behalf of
	// a consumer in the given group.
	ReadRecordBatch(ctx context.Context, group, consumer string, count int) ([]Record, error)

	// WriteRecordBatch writes a batch of records to the archive sink.
	WriteRecordBatch(ctx context.Context, recs []Record) error

	// AcknowledgeRecords marks buffered records as fully processed.
	AcknowledgeRecords(ctx context.Context, group string, messageIDs ...string) error

	// MoveToDLQ parks records that could not be archived after retries.
	MoveToDLQ(ctx context.Context, recs []Record) error
}

// APIKeyRepository validates collector API keys. Implementations should
// cache to keep the hot ingest path off the database.
type APIKeyRepository interface {
	IsValid(ctx context.Context, key string) (bool, error)
}

// WALRepository is the local write-ahead failover used when the buffer is
// unreachable: records are appended to disk and replayed once the buffer
// recovers.
type WALRepository interface {
	// Write appends a record to the current WAL segment.
	Write(ctx context.Context, rec Record) error

	// Replay feeds every persisted record to the handler, which is expected
	// to re-buffer it.
	Replay(ctx context.Context, handler func(rec Record) error) error

	// Truncate drops segments that have been replayed.
	Truncate(ctx context.Context) error
}

// StreamAdminRepository exposes operational controls over the record buffer
// stream: inspecting consumer groups, reclaiming stuck deliveries, and
// trimming the stream.
type StreamAdminRepository interface {
	GroupStatus(ctx context.Context, stream string) ([]GroupStatus, error)
	ConsumerStatus(ctx context.Context, stream, group string) ([]ConsumerStatus, error)
	PendingSummary(ctx context.Context, stream, group string) (*PendingSummary, error)
	PendingEntries(ctx context.Context, stream, group, consumer, startID string, count int64) ([]PendingEntry, error)
	ClaimRecords(ctx context.Context, stream, group, consumer string, minIdle time.Duration, messageIDs []string) ([]Record, error)
	AcknowledgeMessages(ctx context.Context, stream, group string, messageIDs ...string) (int64, error)
	TrimStream(ctx context.Context, stream string, maxLen int64) (int64, error)
}
