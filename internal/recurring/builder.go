package recurring

import (
	"strings"

	"github.com/Veraticus/spacesub/internal/model"
)

// IDFunc produces the identifier of a new suggestion built from a group.
type IDFunc func(Group) string

// PickBestName returns the most frequent description, ignoring surrounding
// whitespace. Ties go to the description seen first.
func PickBestName(descriptions []string) string {
	if len(descriptions) == 0 {
		return ""
	}

	counts := make(map[string]int, len(descriptions))
	order := make([]string, 0, len(descriptions))
	for _, d := range descriptions {
		name := strings.TrimSpace(d)
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	best, bestCount := order[0], 0
	for _, name := range order {
		if counts[name] > bestCount {
			best, bestCount = name, counts[name]
		}
	}
	return best
}

// BuildSuggestion assembles a suggestion from a qualifying group.
// The group must be non-empty; all members share amount and currency.
func BuildSuggestion(group Group, cadence Cadence, score float64, id string) model.Suggestion {
	sorted := SortByDate(group.Transactions)
	last := sorted[len(sorted)-1]

	descriptions := make([]string, 0, len(sorted))
	ids := make([]string, 0, len(sorted))
	for _, txn := range sorted {
		descriptions = append(descriptions, txn.Description)
		ids = append(ids, txn.ID)
	}

	return model.Suggestion{
		SuggestionID:     id,
		Name:             PickBestName(descriptions),
		Amount:           last.Amount,
		Currency:         last.Currency,
		BillingCycle:     cadence.Cycle,
		NextBilling:      last.Date.AddDate(0, 0, cadence.ExpectedDays),
		Score:            RoundScore(score),
		TransactionIDs:   ids,
		TransactionCount: len(ids),
	}
}
