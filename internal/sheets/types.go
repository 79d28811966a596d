package sheets

import (
	"sort"
	"time"

	"github.com/Veraticus/spacesub/internal/model"
	"github.com/shopspring/decimal"
)

// SubscriptionRow is one line of the Subscriptions section.
type SubscriptionRow struct {
	NextBilling time.Time
	Name        string
	Currency    string
	Cycle       model.BillingCycle
	Category    string
	Amount      decimal.Decimal
	MonthlyCost decimal.Decimal
	IsActive    bool
}

// SuggestionRow is one line of the Pending Suggestions section.
type SuggestionRow struct {
	NextBilling  time.Time
	ID           string
	Name         string
	Currency     string
	Cycle        model.BillingCycle
	Amount       decimal.Decimal
	Score        float64
	Transactions int
}

// Report holds everything written to the spreadsheet.
type Report struct {
	GeneratedAt   time.Time
	MonthlyTotals map[string]decimal.Decimal // active subscriptions only, keyed by currency
	UserID        string
	Subscriptions []SubscriptionRow
	Suggestions   []SuggestionRow
}

// BuildReport assembles a report for one user. Subscriptions keep the order
// they are given in; suggestions are ordered by score.
func BuildReport(userID string, subs []model.Subscription, suggestions []model.Suggestion, now time.Time) Report {
	report := Report{
		GeneratedAt:   now,
		UserID:        userID,
		MonthlyTotals: make(map[string]decimal.Decimal),
		Subscriptions: make([]SubscriptionRow, 0, len(subs)),
		Suggestions:   make([]SuggestionRow, 0, len(suggestions)),
	}

	for i := range subs {
		sub := &subs[i]
		monthly := sub.MonthlyCost()
		report.Subscriptions = append(report.Subscriptions, SubscriptionRow{
			NextBilling: sub.NextBilling,
			Name:        sub.Name,
			Currency:    sub.Currency,
			Cycle:       sub.BillingCycle,
			Category:    sub.Category,
			Amount:      sub.Amount,
			MonthlyCost: monthly,
			IsActive:    sub.IsActive,
		})
		if sub.IsActive {
			report.MonthlyTotals[sub.Currency] = report.MonthlyTotals[sub.Currency].Add(monthly)
		}
	}

	for _, s := range suggestions {
		report.Suggestions = append(report.Suggestions, SuggestionRow{
			NextBilling:  s.NextBilling,
			ID:           s.SuggestionID,
			Name:         s.Name,
			Currency:     s.Currency,
			Cycle:        s.BillingCycle,
			Amount:       s.Amount,
			Score:        s.Score,
			Transactions: s.TransactionCount,
		})
	}
	sort.SliceStable(report.Suggestions, func(i, j int) bool {
		return report.Suggestions[i].Score > report.Suggestions[j].Score
	})

	return report
}

// Currencies returns the currencies with a monthly total, sorted.
func (r Report) Currencies() []string {
	currencies := make([]string, 0, len(r.MonthlyTotals))
	for c := range r.MonthlyTotals {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	return currencies
}
