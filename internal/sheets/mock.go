package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/the-books-must-balance/internal/service"
)

// MockWriter is a mock implementation of service.ReportWriter for testing.
type MockWriter struct {
	WriteFunc func(ctx context.Context, table service.Table) error
	Tables    []service.Table
	mu        sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write records the table and returns WriteFunc's result.
func (m *MockWriter) Write(ctx context.Context, table service.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Tables = append(m.Tables, table)
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, table)
	}
	return nil
}

// Written returns a copy of the recorded tables.
func (m *MockWriter) Written() []service.Table {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]service.Table, len(m.Tables))
	copy(out, m.Tables)
	return out
}

// Reset clears all recorded calls.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tables = nil
}

var _ service.ReportWriter = (*MockWriter)(nil)
