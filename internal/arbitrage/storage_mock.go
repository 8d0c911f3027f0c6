package arbitrage

import (
	"context"
	"sync"
)

// MockStorage is an in-memory record sink for tests. It satisfies
// storage.Storage and lives here because that package imports this one.
type MockStorage struct {
	Records []*Record
	Err     error
	mu      sync.Mutex
}

// NewMockStorage creates a new mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		Records: make([]*Record, 0),
	}
}

// StoreRecord stores a record in memory, or returns Err when set.
func (m *MockStorage) StoreRecord(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	recCopy := *rec
	m.Records = append(m.Records, &recCopy)
	return nil
}

// Close is a no-op for mock storage.
func (m *MockStorage) Close() error {
	return nil
}

// GetRecords returns all stored records.
func (m *MockStorage) GetRecords() []*Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*Record, len(m.Records))
	copy(result, m.Records)
	return result
}
