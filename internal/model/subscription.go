package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BillingCycle is the recurring cadence of a subscription.
type BillingCycle string

const (
	// CycleWeekly bills every 7 days.
	CycleWeekly BillingCycle = "WEEKLY"
	// CycleMonthly bills every 30 days.
	CycleMonthly BillingCycle = "MONTHLY"
	// CycleQuarterly bills every 90 days.
	CycleQuarterly BillingCycle = "QUARTERLY"
	// CycleYearly bills every 365 days.
	CycleYearly BillingCycle = "YEARLY"
)

// Valid reports whether c is one of the known billing cycles.
func (c BillingCycle) Valid() bool {
	switch c {
	case CycleWeekly, CycleMonthly, CycleQuarterly, CycleYearly:
		return true
	}
	return false
}

// MonthlyFactor converts one payment of this cycle into a monthly equivalent.
func (c BillingCycle) MonthlyFactor() decimal.Decimal {
	switch c {
	case CycleWeekly:
		return decimal.NewFromInt(52).Div(decimal.NewFromInt(12))
	case CycleQuarterly:
		return decimal.NewFromInt(1).Div(decimal.NewFromInt(3))
	case CycleYearly:
		return decimal.NewFromInt(1).Div(decimal.NewFromInt(12))
	default:
		return decimal.NewFromInt(1)
	}
}

// ParseBillingCycle parses a billing cycle name, case-insensitively.
func ParseBillingCycle(s string) (BillingCycle, error) {
	c := BillingCycle(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("invalid billing cycle %q: must be one of WEEKLY, MONTHLY, QUARTERLY, YEARLY", s)
	}
	return c, nil
}

// Subscription is a persisted recurring payment, either created manually or
// confirmed from a suggestion.
type Subscription struct {
	NextBilling  time.Time
	CreatedAt    time.Time
	ID           string
	UserID       string
	Name         string
	Description  string
	Currency     string
	Category     string
	BillingCycle BillingCycle
	Amount       decimal.Decimal
	IsActive     bool
}

// MonthlyCost returns the subscription amount normalized to one month.
func (s *Subscription) MonthlyCost() decimal.Decimal {
	return s.Amount.Mul(s.BillingCycle.MonthlyFactor()).Round(2)
}
