package plaid

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/spacesub/internal/model"
)

// MockClient is a TransactionFetcher for tests. GetTransactionsFn, when set,
// produces the result; otherwise an empty list is returned.
type MockClient struct {
	GetTransactionsFn    func(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	GetTransactionsCalls []GetTransactionsCall
	mu                   sync.Mutex
}

// GetTransactionsCall records the window of one GetTransactions call.
type GetTransactionsCall struct {
	StartDate time.Time
	EndDate   time.Time
}

// NewMockClient creates a new mock Plaid client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// GetTransactions implements TransactionFetcher.
func (m *MockClient) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	m.mu.Lock()
	m.GetTransactionsCalls = append(m.GetTransactionsCalls, GetTransactionsCall{StartDate: startDate, EndDate: endDate})
	fn := m.GetTransactionsFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, startDate, endDate)
	}
	return []model.Transaction{}, nil
}

// Reset clears recorded calls.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetTransactionsCalls = nil
}

var _ TransactionFetcher = (*MockClient)(nil)
