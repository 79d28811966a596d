package recurring

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/Veraticus/spacesub/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txn(id, amount, currency, description, date string) model.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return model.Transaction{
		ID:          id,
		UserID:      "user-1",
		Amount:      decimal.RequireFromString(amount),
		Currency:    currency,
		Description: description,
		Date:        d,
	}
}

func sequentialIDs() IDFunc {
	n := 0
	return func(Group) string {
		n++
		return fmt.Sprintf("sugg-%d", n)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "punctuation becomes spaces", input: "NETFLIX.COM/payment", want: "netflix com payment"},
		{name: "whitespace collapsed and trimmed", input: "  Spotify   Premium  ", want: "spotify premium"},
		{name: "digits kept", input: "Apple.com/Bill 12345", want: "apple com bill 12345"},
		{name: "cyrillic letters kept", input: "Яндекс.Плюс", want: "яндекс плюс"},
		{name: "yo kept", input: "Ёлка*Подписка", want: "ёлка подписка"},
		{name: "only symbols", input: "*** / ---", want: ""},
		{name: "empty", input: "", want: ""},
		{name: "tabs and newlines", input: "YouTube\tPremium\n", want: "youtube premium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestGroupTransactions(t *testing.T) {
	transactions := []model.Transaction{
		txn("n1", "799", "RUB", "NETFLIX.COM", "2025-01-15"),
		txn("s1", "199", "RUB", "SPOTIFY", "2025-01-10"),
		txn("n2", "799", "RUB", "NETFLIX.COM", "2025-02-15"),
		txn("s2", "199", "RUB", "SPOTIFY", "2025-02-10"),
		txn("n3", "799", "RUB", "NETFLIX.COM", "2025-03-15"),
	}

	groups := GroupTransactions(transactions)
	require.Len(t, groups, 2)
	assert.Equal(t, 3, groups[0].Len())
	assert.Equal(t, 2, groups[1].Len())
	assert.Equal(t, "n1", groups[0].Transactions[0].ID)
	assert.Equal(t, "n3", groups[0].Transactions[2].ID)

	t.Run("one cent difference splits the group", func(t *testing.T) {
		changed := append([]model.Transaction(nil), transactions...)
		changed[4].Amount = decimal.RequireFromString("999")

		groups := GroupTransactions(changed)
		require.Len(t, groups, 3)
		assert.Equal(t, 2, groups[0].Len())
		assert.Equal(t, 2, groups[1].Len())
		assert.Equal(t, 1, groups[2].Len())
	})

	t.Run("equal decimal values share a group", func(t *testing.T) {
		groups := GroupTransactions([]model.Transaction{
			txn("a", "799", "RUB", "NETFLIX.COM", "2025-01-15"),
			txn("b", "799.00", "RUB", "netflix com", "2025-02-15"),
			txn("c", "799.01", "RUB", "NETFLIX.COM", "2025-03-15"),
		})
		require.Len(t, groups, 2)
		assert.Equal(t, 2, groups[0].Len())
	})

	t.Run("currency is part of the key", func(t *testing.T) {
		groups := GroupTransactions([]model.Transaction{
			txn("a", "10", "USD", "SPOTIFY", "2025-01-15"),
			txn("b", "10", "EUR", "SPOTIFY", "2025-02-15"),
		})
		assert.Len(t, groups, 2)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, GroupTransactions(nil))
	})
}

func TestIntervals(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  []int
	}{
		{name: "sorted input", dates: []string{"2025-01-15", "2025-02-14", "2025-03-16"}, want: []int{30, 30}},
		{name: "reversed input", dates: []string{"2025-03-16", "2025-02-14", "2025-01-15"}, want: []int{30, 30}},
		{name: "unsorted input is re-sorted", dates: []string{"2025-03-15", "2025-01-15", "2025-02-14"}, want: []int{30, 29}},
		{name: "single transaction", dates: []string{"2025-01-15"}, want: []int{}},
		{name: "no transactions", dates: nil, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transactions := make([]model.Transaction, 0, len(tt.dates))
			for i, d := range tt.dates {
				transactions = append(transactions, txn(fmt.Sprintf("t%d", i), "1", "RUB", "X", d))
			}
			original := slices.Clone(transactions)

			assert.Equal(t, tt.want, Intervals(transactions))
			assert.Equal(t, original, transactions, "input must not be reordered")
		})
	}

	t.Run("partial days round to nearest", func(t *testing.T) {
		a := txn("a", "1", "RUB", "X", "2025-01-01")
		b := a
		b.ID = "b"
		b.Date = a.Date.Add(29*24*time.Hour + 13*time.Hour)
		assert.Equal(t, []int{30}, Intervals([]model.Transaction{a, b}))
	})
}

func TestDetectCycle(t *testing.T) {
	tests := []struct {
		name      string
		want      model.BillingCycle
		gaps      []int
		wantFound bool
	}{
		{name: "monthly", gaps: []int{30, 31, 29, 30}, want: model.CycleMonthly, wantFound: true},
		{name: "weekly", gaps: []int{7, 7, 8, 7}, want: model.CycleWeekly, wantFound: true},
		{name: "yearly", gaps: []int{365, 366, 364}, want: model.CycleYearly, wantFound: true},
		{name: "quarterly", gaps: []int{90, 92, 89}, want: model.CycleQuarterly, wantFound: true},
		{name: "irregular", gaps: []int{15, 45, 10, 60}, wantFound: false},
		{name: "average fits but too few gaps match", gaps: []int{25, 35, 40, 20}, wantFound: false},
		{name: "two of three gaps match", gaps: []int{28, 32, 40}, want: model.CycleMonthly, wantFound: true},
		{name: "average outside every band", gaps: []int{30, 30, 60}, wantFound: false},
		{name: "weekly band edge", gaps: []int{10, 10, 10}, want: model.CycleWeekly, wantFound: true},
		{name: "empty", gaps: []int{}, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cadence, found := DetectCycle(tt.gaps)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.want, cadence.Cycle)
				expected, ok := CadenceFor(tt.want)
				require.True(t, ok)
				assert.Equal(t, expected.ExpectedDays, cadence.ExpectedDays)
			}
		})
	}
}

func TestCadencesPriorityOrder(t *testing.T) {
	order := make([]model.BillingCycle, 0, len(Cadences))
	for _, c := range Cadences {
		order = append(order, c.Cycle)
	}
	assert.Equal(t, []model.BillingCycle{
		model.CycleWeekly, model.CycleMonthly, model.CycleQuarterly, model.CycleYearly,
	}, order)
}

func TestScore(t *testing.T) {
	t.Run("perfectly regular", func(t *testing.T) {
		assert.Greater(t, Score([]int{30, 30, 30, 30, 30}, 30), 0.9)
	})

	t.Run("some jitter", func(t *testing.T) {
		score := Score([]int{30, 35, 25, 30}, 30)
		assert.Greater(t, score, 0.5)
		assert.Less(t, score, 1.0)
		assert.InDelta(t, 0.8417, score, 0.001)
	})

	t.Run("empty gaps", func(t *testing.T) {
		assert.Equal(t, 0.0, Score([]int{}, 30))
		assert.Equal(t, 0.0, Score(nil, 30))
	})

	t.Run("more samples increase score up to the cap", func(t *testing.T) {
		prev := 0.0
		for n := 1; n <= 6; n++ {
			gaps := make([]int, n)
			for i := range gaps {
				gaps[i] = 30
			}
			score := Score(gaps, 30)
			assert.Greater(t, score, prev, "n=%d", n)
			prev = score
		}
		assert.InDelta(t, 1.0, prev, 1e-9)
		assert.InDelta(t, prev, Score([]int{30, 30, 30, 30, 30, 30, 30, 30}, 30), 1e-9)
	})

	// The bonus counts gaps, not transactions: it saturates at six gaps,
	// i.e. a series of seven payments.
	t.Run("count bonus saturates at six gaps", func(t *testing.T) {
		fiveGaps := Score([]int{30, 30, 30, 30, 30}, 30)
		assert.InDelta(t, 0.7+0.3*5.0/6.0, fiveGaps, 1e-9, "six transactions fall short")
		assert.InDelta(t, 1.0, Score([]int{30, 30, 30, 30, 30, 30}, 30), 1e-9, "seven transactions saturate")
	})

	t.Run("regularity never goes negative", func(t *testing.T) {
		score := Score([]int{1, 1, 1}, 365)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	})
}

func TestRoundScore(t *testing.T) {
	assert.Equal(t, 0.82, RoundScore(0.8189))
	assert.Equal(t, 0.85, RoundScore(0.849999999))
	assert.Equal(t, 1.0, RoundScore(1))
}

func TestPickBestName(t *testing.T) {
	tests := []struct {
		name         string
		want         string
		descriptions []string
	}{
		{name: "most frequent wins", descriptions: []string{"Netflix", "NETFLIX.COM", "NETFLIX.COM"}, want: "NETFLIX.COM"},
		{name: "tie goes to first seen", descriptions: []string{"Spotify AB", "SPOTIFY", "SPOTIFY", "Spotify AB"}, want: "Spotify AB"},
		{name: "exact strings are not normalized", descriptions: []string{"netflix.com", "NETFLIX.COM", "NETFLIX.COM"}, want: "NETFLIX.COM"},
		{name: "surrounding whitespace ignored", descriptions: []string{" Hulu ", "Hulu", "HULU"}, want: "Hulu"},
		{name: "single", descriptions: []string{"Apple"}, want: "Apple"},
		{name: "empty", descriptions: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PickBestName(tt.descriptions))
		})
	}
}

func TestBuildSuggestion(t *testing.T) {
	group := Group{
		Key: "799_RUB_netflix com",
		Transactions: []model.Transaction{
			txn("n3", "799", "RUB", "NETFLIX.COM", "2025-03-15"),
			txn("n1", "799", "RUB", "Netflix", "2025-01-15"),
			txn("n2", "799", "RUB", "NETFLIX.COM", "2025-02-15"),
		},
	}
	cadence, ok := CadenceFor(model.CycleMonthly)
	require.True(t, ok)

	s := BuildSuggestion(group, cadence, 0.81666, "sugg-1")

	assert.Equal(t, "sugg-1", s.SuggestionID)
	assert.Equal(t, "NETFLIX.COM", s.Name)
	assert.True(t, s.Amount.Equal(decimal.NewFromInt(799)))
	assert.Equal(t, "RUB", s.Currency)
	assert.Equal(t, model.CycleMonthly, s.BillingCycle)
	assert.Equal(t, 0.82, s.Score)
	assert.Equal(t, []string{"n1", "n2", "n3"}, s.TransactionIDs)
	assert.Equal(t, 3, s.TransactionCount)
	assert.Equal(t, "2025-04-14", s.NextBilling.Format("2006-01-02"))
}

func TestDetect(t *testing.T) {
	transactions := []model.Transaction{
		txn("n1", "799", "RUB", "NETFLIX.COM", "2025-01-15"),
		txn("n2", "799", "RUB", "NETFLIX.COM", "2025-02-15"),
		txn("n3", "799", "RUB", "NETFLIX.COM", "2025-03-15"),
		txn("n4", "799", "RUB", "NETFLIX.COM", "2025-04-15"),
		txn("x1", "1250.40", "RUB", "PYATEROCHKA 1234", "2025-02-03"),
	}

	suggestions := Detect(transactions, sequentialIDs())
	require.Len(t, suggestions, 1)

	s := suggestions[0]
	assert.Equal(t, "NETFLIX.COM", s.Name)
	assert.True(t, s.Amount.Equal(decimal.NewFromInt(799)))
	assert.Equal(t, model.CycleMonthly, s.BillingCycle)
	assert.Greater(t, s.Score, 0.5)
	assert.Equal(t, 4, s.TransactionCount)
	assert.Equal(t, "2025-05-15", s.NextBilling.Format("2006-01-02"))

	t.Run("no transactions", func(t *testing.T) {
		assert.Empty(t, Detect(nil, sequentialIDs()))
	})

	t.Run("sorted by score descending", func(t *testing.T) {
		mixed := append([]model.Transaction(nil), transactions[:3]...)
		for i := 0; i < 7; i++ {
			d := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*i)
			mixed = append(mixed, txn(fmt.Sprintf("g%d", i), "300", "RUB", "GYM WEEKLY", d.Format("2006-01-02")))
		}

		suggestions := Detect(mixed, sequentialIDs())
		require.Len(t, suggestions, 2)
		assert.Equal(t, "GYM WEEKLY", suggestions[0].Name)
		assert.Equal(t, "NETFLIX.COM", suggestions[1].Name)
		assert.GreaterOrEqual(t, suggestions[0].Score, suggestions[1].Score)
	})

	t.Run("equal scores keep encounter order", func(t *testing.T) {
		var series []model.Transaction
		for _, name := range []string{"AAA", "BBB"} {
			for i := 0; i < 3; i++ {
				d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 30*i)
				series = append(series, txn(fmt.Sprintf("%s%d", name, i), "5", "USD", name, d.Format("2006-01-02")))
			}
		}
		suggestions := Detect(series, sequentialIDs())
		require.Len(t, suggestions, 2)
		assert.Equal(t, "AAA", suggestions[0].Name)
		assert.Equal(t, "BBB", suggestions[1].Name)
	})
}

func TestEvaluateReasons(t *testing.T) {
	ids := sequentialIDs()

	small := GroupTransactions([]model.Transaction{
		txn("a", "1", "RUB", "X", "2025-01-01"),
		txn("b", "1", "RUB", "X", "2025-02-01"),
	})[0]
	assert.Equal(t, ReasonTooFewTransactions, Evaluate(small, ids).Reason)

	irregular := GroupTransactions([]model.Transaction{
		txn("a", "1", "RUB", "X", "2025-01-01"),
		txn("b", "1", "RUB", "X", "2025-01-16"),
		txn("c", "1", "RUB", "X", "2025-03-02"),
		txn("d", "1", "RUB", "X", "2025-03-12"),
		txn("e", "1", "RUB", "X", "2025-05-11"),
	})[0]
	eval := Evaluate(irregular, ids)
	assert.Equal(t, ReasonNoCycle, eval.Reason)
	assert.Nil(t, eval.Suggestion)

	regular := GroupTransactions([]model.Transaction{
		txn("a", "1", "RUB", "X", "2025-01-01"),
		txn("b", "1", "RUB", "X", "2025-01-31"),
		txn("c", "1", "RUB", "X", "2025-03-02"),
	})[0]
	eval = Evaluate(regular, ids)
	assert.Empty(t, eval.Reason)
	require.NotNil(t, eval.Suggestion)
	assert.Equal(t, []int{30, 30}, eval.Gaps)
}
