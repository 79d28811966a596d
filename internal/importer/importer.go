package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/plaid"
	"github.com/Veraticus/spacesub/internal/service"
)

// DefaultBatchSize is how many transactions are written per storage call.
const DefaultBatchSize = 200

// Saver persists transactions.
type Saver interface {
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (service.SaveResult, error)
}

// ProgressFunc is called after every batch with the number of transactions
// processed so far.
type ProgressFunc func(done, total int)

// Importer writes transactions to storage in batches.
type Importer struct {
	saver      Saver
	logger     *slog.Logger
	onProgress ProgressFunc
	batchSize  int
}

// New creates an importer that writes through saver.
func New(saver Saver) *Importer {
	return &Importer{
		saver:     saver,
		batchSize: DefaultBatchSize,
		logger:    slog.Default().With("component", "importer"),
	}
}

// WithProgress registers a progress callback.
func (i *Importer) WithProgress(fn ProgressFunc) *Importer {
	i.onProgress = fn
	return i
}

// WithBatchSize overrides the batch size; values below one are ignored.
func (i *Importer) WithBatchSize(n int) *Importer {
	if n > 0 {
		i.batchSize = n
	}
	return i
}

// Import stores transactions, skipping ones already present.
func (i *Importer) Import(ctx context.Context, transactions []model.Transaction) (service.SaveResult, error) {
	var total service.SaveResult

	for start := 0; start < len(transactions); start += i.batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		end := min(start+i.batchSize, len(transactions))
		result, err := i.saver.SaveTransactions(ctx, transactions[start:end])
		if err != nil {
			return total, fmt.Errorf("failed to save batch %d-%d: %w", start, end, err)
		}
		total.Inserted += result.Inserted
		total.Duplicates += result.Duplicates

		if i.onProgress != nil {
			i.onProgress(end, len(transactions))
		}
	}

	i.logger.Info("Import complete",
		"received", len(transactions),
		"inserted", total.Inserted,
		"duplicates", total.Duplicates)
	return total, nil
}

// FetchPlaid pulls the last days of history from Plaid and assigns the
// transactions to userID. Pending transactions are not returned by the fetcher.
func FetchPlaid(ctx context.Context, fetcher plaid.TransactionFetcher, userID string, days int, defaultCurrency string) ([]model.Transaction, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	fetched, err := fetcher.GetTransactions(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch plaid transactions: %w", err)
	}

	transactions := make([]model.Transaction, 0, len(fetched))
	for _, txn := range fetched {
		plaidID := txn.ID
		txn.UserID = userID
		if txn.Currency == "" {
			txn.Currency = defaultCurrency
		}
		if txn.Description == "" {
			txn.Description = txn.MerchantName
		}
		txn.ID = model.DeriveID(userID, plaid.SourceName, plaidID)
		txn.Hash = txn.GenerateHash()
		transactions = append(transactions, txn)
	}
	return transactions, nil
}
