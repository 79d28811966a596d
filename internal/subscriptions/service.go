// Package subscriptions implements the user-facing subscription workflow:
// analyzing transactions, confirming or dismissing suggestions, and managing
// confirmed subscriptions.
package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spacesub/internal/common"
	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/suggestion"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a subscription is created without one.
const DefaultCurrency = "RUB"

// ErrInvalidInput is returned for subscription requests that fail validation.
var ErrInvalidInput = errors.New("invalid subscription input")

// Analyzer produces a fresh suggestion set for a user.
type Analyzer interface {
	Analyze(ctx context.Context, userID string) ([]model.Suggestion, error)
}

// Repository persists confirmed subscriptions.
type Repository interface {
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	CreateSubscriptionFromSuggestion(ctx context.Context, sub *model.Subscription, transactionIDs []string) (int, error)
	GetSubscription(ctx context.Context, userID, id string) (*model.Subscription, error)
	ListSubscriptions(ctx context.Context, userID string) ([]model.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *model.Subscription) error
	DeleteSubscription(ctx context.Context, userID, id string) error
}

// ConfirmResult describes what a confirmation produced.
type ConfirmResult struct {
	Subscription       model.Subscription
	Suggestion         model.Suggestion
	LinkedTransactions int
}

// CreateRequest holds the fields of a manually created subscription.
type CreateRequest struct {
	NextBilling  time.Time
	Name         string
	Description  string
	Currency     string
	Category     string
	BillingCycle model.BillingCycle
	Amount       decimal.Decimal
}

// UpdateRequest changes selected fields of a subscription; nil fields are
// left alone. A non-nil zero NextBilling clears the date.
type UpdateRequest struct {
	NextBilling  *time.Time
	Name         *string
	Description  *string
	Currency     *string
	Category     *string
	BillingCycle *model.BillingCycle
	Amount       *decimal.Decimal
	IsActive     *bool
}

// Empty reports whether the request changes nothing.
func (r UpdateRequest) Empty() bool {
	return r == UpdateRequest{}
}

// Service coordinates analysis, confirmation and subscription management.
// Analyze, Confirm and Dismiss for the same user are serialized.
type Service struct {
	analyzer    Analyzer
	suggestions suggestion.Store
	repo        Repository
	locks       *userLocks
	logger      *slog.Logger
}

// NewService wires a service from its collaborators.
func NewService(analyzer Analyzer, suggestions suggestion.Store, repo Repository) *Service {
	return &Service{
		analyzer:    analyzer,
		suggestions: suggestions,
		repo:        repo,
		locks:       newUserLocks(),
		logger:      slog.Default().With("component", "subscriptions"),
	}
}

// Analyze runs detection for the user and returns the new suggestion set.
func (s *Service) Analyze(ctx context.Context, userID string) ([]model.Suggestion, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	return s.analyzer.Analyze(ctx, userID)
}

// Suggestions returns the user's pending suggestions without re-analyzing.
func (s *Service) Suggestions(ctx context.Context, userID string) ([]model.Suggestion, error) {
	return s.suggestions.List(ctx, userID)
}

// Confirm turns a pending suggestion into a subscription and links its
// transactions. An unknown or superseded ID yields common.ErrSuggestionNotFound.
func (s *Service) Confirm(ctx context.Context, userID, suggestionID string) (*ConfirmResult, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	sugg, err := s.suggestions.Get(ctx, userID, suggestionID)
	if err != nil {
		return nil, err
	}

	sub := sugg.ToSubscription(userID)
	linked, err := s.repo.CreateSubscriptionFromSuggestion(ctx, &sub, sugg.TransactionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription from suggestion %s: %w", suggestionID, err)
	}

	if err := s.suggestions.Remove(ctx, userID, suggestionID); err != nil && !errors.Is(err, common.ErrSuggestionNotFound) {
		// The subscription exists at this point; a leftover suggestion is
		// superseded by the next analysis.
		s.logger.Warn("Failed to remove confirmed suggestion",
			"user_id", userID,
			"suggestion_id", suggestionID,
			"error", err)
	}

	s.logger.Info("Confirmed suggestion",
		"user_id", userID,
		"suggestion_id", suggestionID,
		"subscription_id", sub.ID,
		"linked", linked)

	return &ConfirmResult{
		Subscription:       sub,
		Suggestion:         *sugg,
		LinkedTransactions: linked,
	}, nil
}

// Dismiss drops a pending suggestion without creating anything.
func (s *Service) Dismiss(ctx context.Context, userID, suggestionID string) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	if err := s.suggestions.Remove(ctx, userID, suggestionID); err != nil {
		return err
	}

	s.logger.Info("Dismissed suggestion", "user_id", userID, "suggestion_id", suggestionID)
	return nil
}

// Create adds a subscription by hand. Currency defaults to RUB and the
// billing cycle to MONTHLY.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*model.Subscription, error) {
	sub := &model.Subscription{
		UserID:       userID,
		Name:         req.Name,
		Description:  req.Description,
		Amount:       req.Amount,
		Currency:     req.Currency,
		BillingCycle: req.BillingCycle,
		NextBilling:  req.NextBilling,
		Category:     req.Category,
		IsActive:     true,
	}
	if err := normalize(sub); err != nil {
		return nil, err
	}

	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return sub, nil
}

// Update applies a partial change to one of the user's subscriptions and
// returns the result. The merged subscription is validated like Create's
// input; an unknown ID yields common.ErrNotFound.
func (s *Service) Update(ctx context.Context, userID, id string, req UpdateRequest) (*model.Subscription, error) {
	if req.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	sub, err := s.repo.GetSubscription(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		sub.Name = *req.Name
	}
	if req.Description != nil {
		sub.Description = *req.Description
	}
	if req.Amount != nil {
		sub.Amount = *req.Amount
	}
	if req.Currency != nil {
		if strings.TrimSpace(*req.Currency) == "" {
			return nil, fmt.Errorf("%w: currency cannot be blank", ErrInvalidInput)
		}
		sub.Currency = *req.Currency
	}
	if req.BillingCycle != nil {
		if *req.BillingCycle == "" {
			return nil, fmt.Errorf("%w: billing cycle cannot be blank", ErrInvalidInput)
		}
		sub.BillingCycle = *req.BillingCycle
	}
	if req.NextBilling != nil {
		sub.NextBilling = *req.NextBilling
	}
	if req.Category != nil {
		sub.Category = *req.Category
	}
	if req.IsActive != nil {
		sub.IsActive = *req.IsActive
	}

	if err := normalize(sub); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription %s: %w", id, err)
	}
	return sub, nil
}

// normalize trims and defaults sub in place and rejects invalid values.
func normalize(sub *model.Subscription) error {
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if sub.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}

	if sub.BillingCycle == "" {
		sub.BillingCycle = model.CycleMonthly
	}
	if !sub.BillingCycle.Valid() {
		return fmt.Errorf("%w: billing cycle %q", ErrInvalidInput, sub.BillingCycle)
	}

	sub.Currency = strings.ToUpper(strings.TrimSpace(sub.Currency))
	if sub.Currency == "" {
		sub.Currency = DefaultCurrency
	}
	return nil
}

// List returns the user's subscriptions ordered by next billing date.
func (s *Service) List(ctx context.Context, userID string) ([]model.Subscription, error) {
	return s.repo.ListSubscriptions(ctx, userID)
}

// Get returns one subscription or common.ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Subscription, error) {
	return s.repo.GetSubscription(ctx, userID, id)
}

// Delete removes a subscription; its transactions become unlinked again.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.DeleteSubscription(ctx, userID, id)
}
