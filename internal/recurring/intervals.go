package recurring

import (
	"math"
	"sort"

	"github.com/Veraticus/spacesub/internal/model"
)

const hoursPerDay = 24

// SortByDate returns a copy of transactions ordered by date, oldest first.
// Transactions on the same instant keep their relative order.
func SortByDate(transactions []model.Transaction) []model.Transaction {
	sorted := make([]model.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// Intervals returns the whole-day gaps between chronologically adjacent
// transactions. Input order does not matter.
func Intervals(transactions []model.Transaction) []int {
	if len(transactions) < 2 {
		return []int{}
	}

	sorted := SortByDate(transactions)
	gaps := make([]int, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		days := sorted[i].Date.Sub(sorted[i-1].Date).Hours() / hoursPerDay
		gaps = append(gaps, int(math.Round(days)))
	}
	return gaps
}
