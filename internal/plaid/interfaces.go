package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/spacesub/internal/model"
)

// TransactionFetcher pulls posted transactions for a date window.
// Returned transactions carry no user ID; the importer assigns ownership.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
}
