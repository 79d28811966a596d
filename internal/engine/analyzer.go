// Package engine runs subscription detection against stored transactions and
// publishes the result to the suggestion store.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/recurring"
	"github.com/Veraticus/spacesub/internal/suggestion"
)

// Config holds configuration options for the analyzer.
type Config struct {
	// FetchTimeout bounds the transaction fetch. Zero means no limit.
	FetchTimeout time.Duration
	// StableIDs switches from random to signature-derived suggestion IDs.
	StableIDs bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		FetchTimeout: 30 * time.Second,
	}
}

// Analyzer orchestrates one detection run per call. It does not serialize
// concurrent runs for the same user; callers that need that hold their own lock.
type Analyzer struct {
	source TransactionSource
	store  suggestion.Store
	logger *slog.Logger
	config Config
}

// NewAnalyzer creates an analyzer with the default configuration.
func NewAnalyzer(source TransactionSource, store suggestion.Store) *Analyzer {
	return NewAnalyzerWithConfig(source, store, DefaultConfig())
}

// NewAnalyzerWithConfig creates an analyzer with custom configuration.
func NewAnalyzerWithConfig(source TransactionSource, store suggestion.Store, config Config) *Analyzer {
	return &Analyzer{
		source: source,
		store:  store,
		config: config,
		logger: slog.Default().With("component", "analyzer"),
	}
}

// Analyze detects recurring payments among the user's unlinked transactions,
// replaces the user's pending suggestions with the result and returns it,
// highest score first. A failed fetch leaves the store untouched.
func (a *Analyzer) Analyze(ctx context.Context, userID string) ([]model.Suggestion, error) {
	start := time.Now()

	transactions, err := a.fetch(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unlinked transactions: %w", err)
	}

	suggestions := recurring.Detect(transactions, a.ids(userID))

	if err := a.store.Replace(ctx, userID, suggestions); err != nil {
		return nil, fmt.Errorf("failed to store suggestions: %w", err)
	}

	a.logger.Info("Analysis complete",
		"user_id", userID,
		"transactions", len(transactions),
		"suggestions", len(suggestions),
		"duration", time.Since(start))

	return suggestions, nil
}

// Explain runs detection without touching the store and reports the outcome
// for every group, including the ones that were rejected.
func (a *Analyzer) Explain(ctx context.Context, userID string) ([]recurring.Evaluation, error) {
	transactions, err := a.fetch(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unlinked transactions: %w", err)
	}

	ids := a.ids(userID)
	groups := recurring.GroupTransactions(transactions)
	evaluations := make([]recurring.Evaluation, 0, len(groups))
	for _, group := range groups {
		evaluations = append(evaluations, recurring.Evaluate(group, ids))
	}
	return evaluations, nil
}

func (a *Analyzer) fetch(ctx context.Context, userID string) ([]model.Transaction, error) {
	if a.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.FetchTimeout)
		defer cancel()
	}
	return a.source.GetUnlinkedTransactions(ctx, userID)
}

func (a *Analyzer) ids(userID string) recurring.IDFunc {
	if a.config.StableIDs {
		return SignatureIDs(userID)
	}
	return RandomIDs()
}
