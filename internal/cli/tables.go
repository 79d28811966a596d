package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with two decimals and its currency.
func FormatAmount(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(2) + " " + currency
}

// FormatDate renders a date, or a dash when unset.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return BoldStyle.PaddingLeft(1).PaddingRight(1)
			}
			return lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
		}).
		Headers(headers...)
}

// SuggestionsTable renders suggestions in the order given.
func SuggestionsTable(suggestions []model.Suggestion) string {
	t := newTable("ID", "Name", "Amount", "Cycle", "Next billing", "Score", "Txns")
	for _, s := range suggestions {
		t.Row(
			s.SuggestionID,
			s.Name,
			FormatAmount(s.Amount, s.Currency),
			string(s.BillingCycle),
			FormatDate(s.NextBilling),
			FormatScore(s.Score),
			fmt.Sprintf("%d", s.TransactionCount),
		)
	}
	return t.String()
}

// SubscriptionsTable renders subscriptions with their monthly equivalent.
func SubscriptionsTable(subs []model.Subscription) string {
	t := newTable("ID", "Name", "Amount", "Cycle", "Monthly", "Next billing", "Active")
	for i := range subs {
		sub := &subs[i]
		active := "yes"
		if !sub.IsActive {
			active = "no"
		}
		t.Row(
			sub.ID,
			sub.Name,
			FormatAmount(sub.Amount, sub.Currency),
			string(sub.BillingCycle),
			FormatAmount(sub.MonthlyCost(), sub.Currency),
			FormatDate(sub.NextBilling),
			active,
		)
	}
	return t.String()
}

// TransactionsTable renders transactions in the order given.
func TransactionsTable(txns []model.Transaction) string {
	t := newTable("Date", "Description", "Amount", "Source", "Subscription")
	for _, txn := range txns {
		linked := "-"
		if txn.IsLinked() {
			linked = *txn.SubscriptionID
		}
		t.Row(
			FormatDate(txn.Date),
			txn.Description,
			FormatAmount(txn.Amount, txn.Currency),
			txn.Source,
			linked,
		)
	}
	return t.String()
}

// SubscriptionDetail renders one subscription in a box.
func SubscriptionDetail(sub *model.Subscription) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:           %s\n", sub.ID)
	fmt.Fprintf(&b, "Amount:       %s (%s)\n", FormatAmount(sub.Amount, sub.Currency), sub.BillingCycle)
	fmt.Fprintf(&b, "Monthly cost: %s\n", FormatAmount(sub.MonthlyCost(), sub.Currency))
	fmt.Fprintf(&b, "Next billing: %s\n", FormatDate(sub.NextBilling))
	if sub.Category != "" {
		fmt.Fprintf(&b, "Category:     %s\n", sub.Category)
	}
	if sub.Description != "" {
		fmt.Fprintf(&b, "Description:  %s\n", sub.Description)
	}
	fmt.Fprintf(&b, "Active:       %t", sub.IsActive)

	return RenderBox(sub.Name, b.String())
}

// ImportSummary renders the outcome of an import.
func ImportSummary(source string, received int, result service.SaveResult) string {
	content := fmt.Sprintf("%s Received:   %d\n", ChartIcon, received) +
		fmt.Sprintf("%s Inserted:   %d\n", SuccessIcon, result.Inserted) +
		fmt.Sprintf("%s Duplicates: %d", FolderIcon, result.Duplicates)
	return RenderBox("Import from "+source, content)
}

// ConfirmSummary renders the outcome of confirming a suggestion.
func ConfirmSummary(sub *model.Subscription, linked int) string {
	return FormatSuccess(fmt.Sprintf("Created subscription %q (%s, %s), linked %d transactions",
		sub.Name, FormatAmount(sub.Amount, sub.Currency), sub.BillingCycle, linked))
}
