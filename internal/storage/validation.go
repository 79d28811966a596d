// Package storage provides the data persistence layer for spacesub.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spacesub/internal/model"
)

// Validation errors.
var (
	ErrNilContext          = errors.New("context cannot be nil")
	ErrEmptyString         = errors.New("string parameter cannot be empty")
	ErrNilParameter        = errors.New("parameter cannot be nil")
	ErrEmptySlice          = errors.New("slice cannot be empty")
	ErrInvalidDateRange    = errors.New("start date must be before end date")
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrInvalidSubscription = errors.New("invalid subscription")
	ErrInvalidSuggestion   = errors.New("invalid suggestion")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if strings.TrimSpace(txn.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTransaction)
	}
	if txn.Currency == "" {
		return fmt.Errorf("%w: missing currency", ErrInvalidTransaction)
	}
	return nil
}

// validateSubscription validates a subscription before it is persisted.
func validateSubscription(sub *model.Subscription) error {
	if sub == nil {
		return fmt.Errorf("%w: subscription", ErrNilParameter)
	}
	if sub.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidSubscription)
	}
	if strings.TrimSpace(sub.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidSubscription)
	}
	if sub.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidSubscription)
	}
	if sub.Currency == "" {
		return fmt.Errorf("%w: missing currency", ErrInvalidSubscription)
	}
	if !sub.BillingCycle.Valid() {
		return fmt.Errorf("%w: billing cycle %q", ErrInvalidSubscription, sub.BillingCycle)
	}
	return nil
}

// validateSuggestion validates a suggestion before it is persisted.
func validateSuggestion(sugg *model.Suggestion) error {
	if sugg.SuggestionID == "" {
		return fmt.Errorf("%w: missing suggestion ID", ErrInvalidSuggestion)
	}
	if !sugg.BillingCycle.Valid() {
		return fmt.Errorf("%w: billing cycle %q", ErrInvalidSuggestion, sugg.BillingCycle)
	}
	return nil
}
