package testutil

import (
	"fmt"
	"time"

	"github.com/Veraticus/spacesub/internal/model"
	"github.com/shopspring/decimal"
)

// HistoryBuilder assembles a user's transaction history for tests.
//
// Example:
//
//	txns := testutil.NewHistory("user-1").
//		Monthly("NETFLIX.COM", "799", "RUB", testutil.Date(2025, 1, 15), 4).
//		Once("PYATEROCHKA 1234", "1250.40", "RUB", testutil.Date(2025, 2, 3)).
//		Build()
type HistoryBuilder struct {
	userID       string
	transactions []model.Transaction
}

// NewHistory starts an empty history for userID.
func NewHistory(userID string) *HistoryBuilder {
	return &HistoryBuilder{userID: userID}
}

// Date is a shorthand for a UTC midnight date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Once adds a single transaction.
func (b *HistoryBuilder) Once(description, amount, currency string, date time.Time) *HistoryBuilder {
	n := len(b.transactions) + 1
	txn := model.Transaction{
		ID:          fmt.Sprintf("%s-txn-%03d", b.userID, n),
		UserID:      b.userID,
		AccountID:   "acc-1",
		Date:        date,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Currency:    currency,
		Source:      "test",
	}
	txn.Hash = txn.GenerateHash()
	b.transactions = append(b.transactions, txn)
	return b
}

// Every adds count transactions spaced step days apart starting at start.
func (b *HistoryBuilder) Every(step int, description, amount, currency string, start time.Time, count int) *HistoryBuilder {
	for i := 0; i < count; i++ {
		b.Once(description, amount, currency, start.AddDate(0, 0, step*i))
	}
	return b
}

// Monthly adds count transactions on the same day of consecutive months.
func (b *HistoryBuilder) Monthly(description, amount, currency string, start time.Time, count int) *HistoryBuilder {
	for i := 0; i < count; i++ {
		b.Once(description, amount, currency, start.AddDate(0, i, 0))
	}
	return b
}

// Build returns a copy of the assembled transactions.
func (b *HistoryBuilder) Build() []model.Transaction {
	return append([]model.Transaction(nil), b.transactions...)
}
