package mocks

import (
	"context"
	"sync"

	"github.com/user/rtc-event-log/internal/domain"
)

// MockRecordRepository is a mock implementation of domain.RecordRepository
// for testing.
type MockRecordRepository struct {
	mu              sync.Mutex
	BufferedRecords []domain.Record
	WrittenRecords  []domain.Record
	AckedMessageIDs []string
	DLQRecords      []domain.Record
	ReadBatchResult []domain.Record
	BufferErr       error
	ReadErr         error
	WriteErr        error
	AckErr          error
	DLQErr          error
}

func (m *MockRecordRepository) BufferRecord(ctx context.Context, rec domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BufferErr != nil {
		return m.BufferErr
	}
	m.BufferedRecords = append(m.BufferedRecords, rec)
	return nil
}

func (m *MockRecordRepository) ReadRecordBatch(ctx context.Context, group, consumer string, count int) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.ReadBatchResult, nil
}

func (m *MockRecordRepository) WriteRecordBatch(ctx context.Context, recs []domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.WrittenRecords = append(m.WrittenRecords, recs...)
	return nil
}

func (m *MockRecordRepository) AcknowledgeRecords(ctx context.Context, group string, messageIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AckErr != nil {
		return m.AckErr
	}
	m.AckedMessageIDs = append(m.AckedMessageIDs, messageIDs...)
	return nil
}

func (m *MockRecordRepository) MoveToDLQ(ctx context.Context, recs []domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DLQErr != nil {
		return m.DLQErr
	}
	m.DLQRecords = append(m.DLQRecords, recs...)
	return nil
}

// MockAPIKeyRepository is a mock implementation of domain.APIKeyRepository.
type MockAPIKeyRepository struct {
	ValidKeys map[string]bool
	Err       error
}

func (m *MockAPIKeyRepository) IsValid(ctx context.Context, key string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return m.ValidKeys[key], nil
}
