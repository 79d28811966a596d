package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Suggestion is a detected recurring series awaiting user confirmation.
// Suggestions are ephemeral: every analysis run replaces the previous set.
type Suggestion struct {
	NextBilling      time.Time
	SuggestionID     string
	Name             string
	Currency         string
	BillingCycle     BillingCycle
	TransactionIDs   []string
	Amount           decimal.Decimal
	Score            float64
	TransactionCount int
}

// Clone returns a deep copy of the suggestion.
func (s Suggestion) Clone() Suggestion {
	s.TransactionIDs = append([]string(nil), s.TransactionIDs...)
	return s
}

// ToSubscription converts a confirmed suggestion into a new active subscription.
func (s Suggestion) ToSubscription(userID string) Subscription {
	return Subscription{
		UserID:       userID,
		Name:         s.Name,
		Amount:       s.Amount,
		Currency:     s.Currency,
		BillingCycle: s.BillingCycle,
		NextBilling:  s.NextBilling,
		IsActive:     true,
	}
}
