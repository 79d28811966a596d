package engine

import (
	"context"

	"github.com/Veraticus/spacesub/internal/model"
)

// TransactionSource supplies the transactions an analysis run considers.
// Implementations return only transactions not yet linked to a subscription,
// ordered by date ascending.
type TransactionSource interface {
	GetUnlinkedTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
}
