package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spacesub/internal/common"
	"github.com/Veraticus/spacesub/internal/model"
	"github.com/google/uuid"
)

const subscriptionColumns = `id, user_id, name, description, amount, currency,
	billing_cycle, next_billing, category, is_active, created_at`

// CreateSubscription persists a new subscription. An empty ID is filled with
// a fresh UUID and a zero CreatedAt with the current time.
func (s *SQLiteStorage) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertSubscriptionTx(ctx, tx, sub)
	})
}

// CreateSubscriptionFromSuggestion creates the subscription and links the
// given transactions to it atomically. It returns how many transactions
// were linked. When every transaction is already linked elsewhere nothing is
// created and common.ErrAlreadyLinked is returned.
func (s *SQLiteStorage) CreateSubscriptionFromSuggestion(ctx context.Context, sub *model.Subscription, transactionIDs []string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateSubscription(sub); err != nil {
		return 0, err
	}

	var linked int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertSubscriptionTx(ctx, tx, sub); err != nil {
			return err
		}
		var err error
		linked, err = linkTransactionsTx(ctx, tx, sub.UserID, transactionIDs, sub.ID)
		if err == nil && linked == 0 && len(transactionIDs) > 0 {
			// Another confirmation got there first; don't leave an orphan subscription.
			return fmt.Errorf("%w: none of %d transactions are unlinked", common.ErrAlreadyLinked, len(transactionIDs))
		}
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Created subscription from suggestion",
		"subscription_id", sub.ID,
		"name", sub.Name,
		"linked", linked)
	return linked, nil
}

func insertSubscriptionTx(ctx context.Context, q queryable, sub *model.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	var nextBilling any
	if !sub.NextBilling.IsZero() {
		nextBilling = sub.NextBilling.UTC()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sub.ID,
		sub.UserID,
		sub.Name,
		nullString(sub.Description),
		sub.Amount.String(),
		sub.Currency,
		string(sub.BillingCycle),
		nextBilling,
		nullString(sub.Category),
		sub.IsActive,
		sub.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

// GetSubscription retrieves one of the user's subscriptions.
func (s *SQLiteStorage) GetSubscription(ctx context.Context, userID, id string) (*model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE user_id = ? AND id = ?
	`, userID, id)

	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subscription %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// UpdateSubscription overwrites the editable fields of an existing
// subscription. ID, owner and CreatedAt never change; a subscription that
// does not belong to sub.UserID yields common.ErrNotFound.
func (s *SQLiteStorage) UpdateSubscription(ctx context.Context, sub *model.Subscription) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}
	if err := validateString(sub.ID, "id"); err != nil {
		return err
	}

	var nextBilling any
	if !sub.NextBilling.IsZero() {
		nextBilling = sub.NextBilling.UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions SET
			name = ?, description = ?, amount = ?, currency = ?,
			billing_cycle = ?, next_billing = ?, category = ?, is_active = ?
		WHERE user_id = ? AND id = ?
	`,
		sub.Name,
		nullString(sub.Description),
		sub.Amount.String(),
		sub.Currency,
		string(sub.BillingCycle),
		nextBilling,
		nullString(sub.Category),
		sub.IsActive,
		sub.UserID,
		sub.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("subscription %s: %w", sub.ID, common.ErrNotFound)
	}

	s.logger.Info("Updated subscription", "subscription_id", sub.ID, "active", sub.IsActive)
	return nil
}

// ListSubscriptions returns the user's subscriptions ordered by next billing date.
func (s *SQLiteStorage) ListSubscriptions(ctx context.Context, userID string) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE user_id = ?
		ORDER BY next_billing IS NULL, next_billing ASC, name ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	subs := make([]model.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// DeleteSubscription removes a subscription and returns its transactions to
// the unlinked pool.
func (s *SQLiteStorage) DeleteSubscription(ctx context.Context, userID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM subscriptions WHERE user_id = ? AND id = ?`, userID, id)
		if err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("subscription %s: %w", id, common.ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE transactions SET subscription_id = NULL
			WHERE user_id = ? AND subscription_id = ?
		`, userID, id); err != nil {
			return fmt.Errorf("failed to unlink transactions: %w", err)
		}
		return nil
	})
}

func scanSubscription(row rowScanner) (*model.Subscription, error) {
	var sub model.Subscription
	var description, category sql.NullString
	var cycle string
	var nextBilling sql.NullTime

	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Name,
		&description,
		&sub.Amount,
		&sub.Currency,
		&cycle,
		&nextBilling,
		&category,
		&sub.IsActive,
		&sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.Description = description.String
	sub.Category = category.String
	sub.BillingCycle = model.BillingCycle(cycle)
	if nextBilling.Valid {
		sub.NextBilling = nextBilling.Time
	}
	return &sub, nil
}
