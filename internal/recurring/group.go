package recurring

import (
	"fmt"

	"github.com/Veraticus/spacesub/internal/model"
)

// Group is a candidate recurring series: transactions sharing the same
// amount, currency and normalized description.
type Group struct {
	Key          string
	Transactions []model.Transaction
}

// Len returns the number of transactions in the group.
func (g Group) Len() int {
	return len(g.Transactions)
}

// GroupKey returns the grouping key for a transaction.
// Amounts compare by exact decimal value, so 799 and 799.00 share a key
// while 799.01 does not.
func GroupKey(txn model.Transaction) string {
	return fmt.Sprintf("%s_%s_%s", txn.Amount.String(), txn.Currency, Normalize(txn.Description))
}

// GroupTransactions partitions transactions into groups. Groups are returned
// in the order their key was first seen and keep encounter order internally.
func GroupTransactions(transactions []model.Transaction) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)

	for _, txn := range transactions {
		key := GroupKey(txn)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Transactions = append(groups[i].Transactions, txn)
	}

	return groups
}
