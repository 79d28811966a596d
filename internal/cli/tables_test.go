package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "799.00 RUB", FormatAmount(decimal.NewFromInt(799), "RUB"))
	assert.Equal(t, "12.99 USD", FormatAmount(decimal.RequireFromString("12.990"), "USD"))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", FormatDate(time.Time{}))
	assert.Equal(t, "2025-05-15", FormatDate(time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)))
}

func TestScoreStyle(t *testing.T) {
	tests := []struct {
		score float64
		want  lipgloss.Style
	}{
		{score: 0.95, want: SuccessStyle},
		{score: HighScore, want: SuccessStyle},
		{score: 0.7, want: WarningStyle},
		{score: 0.5, want: SubtleStyle},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want.GetForeground(), ScoreStyle(tt.score).GetForeground(), "score %.2f", tt.score)
	}
	assert.Contains(t, FormatScore(0.856), "0.86")
}

func TestSuggestionsTable(t *testing.T) {
	out := SuggestionsTable([]model.Suggestion{
		{
			SuggestionID:     "abc-123",
			Name:             "NETFLIX.COM",
			Amount:           decimal.NewFromInt(799),
			Currency:         "RUB",
			BillingCycle:     model.CycleMonthly,
			NextBilling:      time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC),
			Score:            0.82,
			TransactionCount: 4,
		},
	})

	for _, want := range []string{"ID", "Score", "abc-123", "NETFLIX.COM", "799.00 RUB", "MONTHLY", "2025-05-15", "0.82"} {
		assert.Contains(t, out, want)
	}
}

func TestSubscriptionsTable(t *testing.T) {
	out := SubscriptionsTable([]model.Subscription{
		{ID: "sub-1", Name: "Yandex Plus", Amount: decimal.NewFromInt(2990), Currency: "RUB", BillingCycle: model.CycleYearly, IsActive: true},
		{ID: "sub-2", Name: "Old Gym", Amount: decimal.NewFromInt(3000), Currency: "RUB", BillingCycle: model.CycleMonthly},
	})

	assert.Contains(t, out, "249.17 RUB")
	assert.Contains(t, out, "Old Gym")
	lines := strings.Split(out, "\n")
	var gymLine string
	for _, l := range lines {
		if strings.Contains(l, "Old Gym") {
			gymLine = l
		}
	}
	require.NotEmpty(t, gymLine)
	assert.Contains(t, gymLine, "no")
	assert.Contains(t, gymLine, "-")
}

func TestTransactionsTable(t *testing.T) {
	subID := "sub-1"
	out := TransactionsTable([]model.Transaction{
		{Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), Description: "NETFLIX.COM", Amount: decimal.NewFromInt(799), Currency: "RUB", Source: "json", SubscriptionID: &subID},
		{Date: time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), Description: "PYATEROCHKA", Amount: decimal.NewFromInt(1250), Currency: "RUB", Source: "ofx"},
	})

	assert.Contains(t, out, "sub-1")
	assert.Contains(t, out, "PYATEROCHKA")
	assert.Contains(t, out, "1250.00 RUB")
}

func TestSubscriptionDetail(t *testing.T) {
	out := SubscriptionDetail(&model.Subscription{
		ID:           "sub-1",
		Name:         "NETFLIX.COM",
		Amount:       decimal.NewFromInt(799),
		Currency:     "RUB",
		BillingCycle: model.CycleMonthly,
		Category:     "Streaming",
		IsActive:     true,
	})

	assert.Contains(t, out, "NETFLIX.COM")
	assert.Contains(t, out, "Category:     Streaming")
	assert.Contains(t, out, "Next billing: -")
	assert.NotContains(t, out, "Description:")
}

func TestSummaries(t *testing.T) {
	out := ImportSummary("json", 5, service.SaveResult{Inserted: 3, Duplicates: 2})
	assert.Contains(t, out, "Import from json")
	assert.Contains(t, out, "Inserted:   3")
	assert.Contains(t, out, "Duplicates: 2")

	sub := &model.Subscription{Name: "NETFLIX.COM", Amount: decimal.NewFromInt(799), Currency: "RUB", BillingCycle: model.CycleMonthly}
	assert.Contains(t, ConfirmSummary(sub, 4), `Created subscription "NETFLIX.COM" (799.00 RUB, MONTHLY), linked 4 transactions`)
}

func TestProgressBar(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out, 4, "Importing")
	update := ProgressUpdater(bar)

	update(2, 4)
	assert.Equal(t, int64(2), bar.State().CurrentNum)
	update(4, 4)
	assert.True(t, bar.IsFinished())
}
