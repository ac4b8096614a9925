package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/user/rtc-event-log/internal/domain"
	"github.com/user/rtc-event-log/internal/domain/mocks"
)

func TestArchiveRecordsUseCase_ProcessBatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	testRecords := []domain.Record{
		{ID: "1", StreamMessageID: "msg1", Type: "audio_send_stream_config", ConfigEvent: true},
		{ID: "2", StreamMessageID: "msg2", Type: "rtcp_packet_incoming"},
	}

	t.Run("Successful Archival", func(t *testing.T) {
		buffer := &mocks.MockRecordRepository{ReadBatchResult: testRecords}
		sink := &mocks.MockRecordRepository{}
		uc := NewArchiveRecordsUseCase(buffer, sink, nil, logger, "group", "consumer", 3, 1*time.Millisecond)

		count, err := uc.ProcessBatch(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != len(testRecords) {
			t.Errorf("expected processed count %d, got %d", len(testRecords), count)
		}
		if len(sink.WrittenRecords) != 2 {
			t.Errorf("expected 2 records written to sink, got %d", len(sink.WrittenRecords))
		}
		if len(buffer.AckedMessageIDs) != 2 {
			t.Errorf("expected 2 messages acked, got %d", len(buffer.AckedMessageIDs))
		}
		if len(buffer.DLQRecords) != 0 {
			t.Errorf("expected 0 records in DLQ, got %d", len(buffer.DLQRecords))
		}
	})

	t.Run("Sink Failure with Retry and DLQ", func(t *testing.T) {
		buffer := &mocks.MockRecordRepository{ReadBatchResult: testRecords}
		sink := &mocks.MockRecordRepository{WriteErr: errors.New("database is down")}
		uc := NewArchiveRecordsUseCase(buffer, sink, nil, logger, "group", "consumer", 2, 1*time.Millisecond)

		count, err := uc.ProcessBatch(context.Background())

		if err == nil {
			t.Fatal("expected an error, got nil")
		}
		if count != 0 {
			t.Errorf("expected processed count 0, got %d", count)
		}
		if len(buffer.DLQRecords) != 2 {
			t.Errorf("expected 2 records in DLQ, got %d", len(buffer.DLQRecords))
		}
		// Records parked on the DLQ are still acknowledged.
		if len(buffer.AckedMessageIDs) != 2 {
			t.Errorf("expected 2 messages acked, got %d", len(buffer.AckedMessageIDs))
		}
	})

	t.Run("Filter Drops Runtime Records", func(t *testing.T) {
		buffer := &mocks.MockRecordRepository{ReadBatchResult: testRecords}
		sink := &mocks.MockRecordRepository{}
		filter := &PersistFilter{
			allowed:      map[domain.EventType]struct{}{domain.EventTypeAudioSendStreamConfig: {}},
			configAlways: true,
		}
		uc := NewArchiveRecordsUseCase(buffer, sink, filter, logger, "group", "consumer", 3, 1*time.Millisecond)

		count, err := uc.ProcessBatch(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 2 {
			t.Errorf("expected processed count 2, got %d", count)
		}
		if len(sink.WrittenRecords) != 1 || sink.WrittenRecords[0].ID != "1" {
			t.Errorf("expected only the config record in the sink, got %+v", sink.WrittenRecords)
		}
		// Filtered records are acked too, otherwise they would loop forever.
		if len(buffer.AckedMessageIDs) != 2 {
			t.Errorf("expected 2 messages acked, got %d", len(buffer.AckedMessageIDs))
		}
	})

	t.Run("Buffer Read Error", func(t *testing.T) {
		buffer := &mocks.MockRecordRepository{ReadErr: errors.New("redis connection failed")}
		sink := &mocks.MockRecordRepository{}
		uc := NewArchiveRecordsUseCase(buffer, sink, nil, logger, "group", "consumer", 3, 1*time.Millisecond)

		count, err := uc.ProcessBatch(context.Background())
		if err == nil {
			t.Fatal("expected an error, got nil")
		}
		if count != 0 {
			t.Errorf("expected processed count 0, got %d", count)
		}
	})

	t.Run("No Records to Process", func(t *testing.T) {
		buffer := &mocks.MockRecordRepository{ReadBatchResult: []domain.Record{}}
		sink := &mocks.MockRecordRepository{}
		uc := NewArchiveRecordsUseCase(buffer, sink, nil, logger, "group", "consumer", 3, 1*time.Millisecond)

		count, err := uc.ProcessBatch(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 0 {
			t.Errorf("expected processed count 0, got %d", count)
		}
		if len(sink.WrittenRecords) != 0 {
			t.Error("sink should not be called with no records")
		}
	})
}
