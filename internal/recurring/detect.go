package recurring

import (
	"sort"

	"github.com/Veraticus/spacesub/internal/model"
)

const (
	// MinGroupSize is the smallest series considered for a suggestion.
	MinGroupSize = 3
	// MinIntervals is the smallest number of gaps a series must have.
	MinIntervals = 2
)

// Evaluation records why a group did or did not produce a suggestion.
type Evaluation struct {
	Suggestion *model.Suggestion
	Reason     string
	Group      Group
	Gaps       []int
	Cadence    Cadence
	Score      float64
	HasCycle   bool
}

// Rejection reasons reported by Evaluate.
const (
	ReasonTooFewTransactions = "too few transactions"
	ReasonTooFewIntervals    = "too few intervals"
	ReasonNoCycle            = "no billing cycle detected"
	ReasonLowScore           = "score below threshold"
)

// Evaluate runs one group through the detection pipeline.
func Evaluate(group Group, ids IDFunc) Evaluation {
	eval := Evaluation{Group: group}

	if group.Len() < MinGroupSize {
		eval.Reason = ReasonTooFewTransactions
		return eval
	}

	eval.Gaps = Intervals(group.Transactions)
	if len(eval.Gaps) < MinIntervals {
		eval.Reason = ReasonTooFewIntervals
		return eval
	}

	eval.Cadence, eval.HasCycle = DetectCycle(eval.Gaps)
	if !eval.HasCycle {
		eval.Reason = ReasonNoCycle
		return eval
	}

	eval.Score = Score(eval.Gaps, eval.Cadence.ExpectedDays)
	if eval.Score < MinScore {
		eval.Reason = ReasonLowScore
		return eval
	}

	suggestion := BuildSuggestion(group, eval.Cadence, eval.Score, ids(group))
	eval.Suggestion = &suggestion
	return eval
}

// Detect turns a user's unlinked transactions into suggestions ordered by
// score, highest first. Equal scores keep group encounter order.
func Detect(transactions []model.Transaction, ids IDFunc) []model.Suggestion {
	suggestions := make([]model.Suggestion, 0)
	for _, group := range GroupTransactions(transactions) {
		if eval := Evaluate(group, ids); eval.Suggestion != nil {
			suggestions = append(suggestions, *eval.Suggestion)
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	return suggestions
}
