package sheets

import (
	"context"
	"sync"
)

var _ ReportWriter = (*MockWriter)(nil)

// MockWriter records reports instead of sending them to Google.
type MockWriter struct {
	LastReport     *Report
	err            error
	calls          []WriteCall
	WriteCallCount int
	mu             sync.Mutex
}

// WriteCall is one recorded Write and what it returned.
type WriteCall struct {
	Error  error
	Report Report
}

// NewMockWriter creates a mock writer that accepts every report.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write records the report and returns the configured error, if any.
func (m *MockWriter) Write(_ context.Context, report Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastReport = &report
	m.calls = append(m.calls, WriteCall{Report: report, Error: m.err})
	return m.err
}

// SetWriteError makes every subsequent Write fail with err.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// GetWriteCalls returns a copy of the recorded calls.
func (m *MockWriter) GetWriteCalls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]WriteCall(nil), m.calls...)
}

// Reset forgets recorded calls and the configured error.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls, m.err, m.LastReport, m.WriteCallCount = nil, nil, nil, 0
}
