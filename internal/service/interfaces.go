// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spacesub/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
	UnlinkedOnly bool
}

// SaveResult reports how many transactions were inserted and how many were
// skipped as duplicates.
type SaveResult struct {
	Inserted   int
	Duplicates int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (SaveResult, error)
	GetTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]model.Transaction, error)
	GetUnlinkedTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	LinkTransactions(ctx context.Context, userID string, transactionIDs []string, subscriptionID string) (int, error)

	// Subscription operations
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	CreateSubscriptionFromSuggestion(ctx context.Context, sub *model.Subscription, transactionIDs []string) (int, error)
	GetSubscription(ctx context.Context, userID, id string) (*model.Subscription, error)
	ListSubscriptions(ctx context.Context, userID string) ([]model.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *model.Subscription) error
	DeleteSubscription(ctx context.Context, userID, id string) error

	// Suggestion operations
	ReplaceSuggestions(ctx context.Context, userID string, suggestions []model.Suggestion) error
	GetSuggestion(ctx context.Context, userID, suggestionID string) (*model.Suggestion, error)
	RemoveSuggestion(ctx context.Context, userID, suggestionID string) error
	ListSuggestions(ctx context.Context, userID string) ([]model.Suggestion, error)

	// Database management
	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
