package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/spacesub/internal/common"
	"github.com/Veraticus/spacesub/internal/model"
)

const suggestionColumns = `suggestion_id, name, amount, currency, billing_cycle,
	next_billing, score, transaction_ids, transaction_count`

// ReplaceSuggestions discards the user's pending suggestions and stores the
// new set, preserving its order.
func (s *SQLiteStorage) ReplaceSuggestions(ctx context.Context, userID string, suggestions []model.Suggestion) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	for i := range suggestions {
		if err := validateSuggestion(&suggestions[i]); err != nil {
			return fmt.Errorf("suggestion at index %d: %w", i, err)
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM suggestions WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("failed to clear suggestions: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO suggestions (
				user_id, position, `+suggestionColumns+`
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, sugg := range suggestions {
			ids, err := json.Marshal(sugg.TransactionIDs)
			if err != nil {
				return fmt.Errorf("failed to encode transaction ids: %w", err)
			}

			if _, err := stmt.ExecContext(ctx,
				userID,
				i,
				sugg.SuggestionID,
				sugg.Name,
				sugg.Amount.String(),
				sugg.Currency,
				string(sugg.BillingCycle),
				sugg.NextBilling.UTC(),
				sugg.Score,
				string(ids),
				sugg.TransactionCount,
			); err != nil {
				return fmt.Errorf("failed to insert suggestion %s: %w", sugg.SuggestionID, err)
			}
		}
		return nil
	})
}

// GetSuggestion returns one pending suggestion, or common.ErrSuggestionNotFound.
func (s *SQLiteStorage) GetSuggestion(ctx context.Context, userID, suggestionID string) (*model.Suggestion, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+suggestionColumns+` FROM suggestions
		WHERE user_id = ? AND suggestion_id = ?
	`, userID, suggestionID)

	sugg, err := scanSuggestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", common.ErrSuggestionNotFound, suggestionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}
	return sugg, nil
}

// RemoveSuggestion deletes one pending suggestion.
func (s *SQLiteStorage) RemoveSuggestion(ctx context.Context, userID, suggestionID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM suggestions WHERE user_id = ? AND suggestion_id = ?
	`, userID, suggestionID)
	if err != nil {
		return fmt.Errorf("failed to remove suggestion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", common.ErrSuggestionNotFound, suggestionID)
	}
	return nil
}

// ListSuggestions returns the user's pending suggestions in stored order.
func (s *SQLiteStorage) ListSuggestions(ctx context.Context, userID string) ([]model.Suggestion, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+suggestionColumns+` FROM suggestions
		WHERE user_id = ?
		ORDER BY position ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	suggestions := make([]model.Suggestion, 0)
	for rows.Next() {
		sugg, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, *sugg)
	}
	return suggestions, rows.Err()
}

func scanSuggestion(row rowScanner) (*model.Suggestion, error) {
	var sugg model.Suggestion
	var cycle, ids string

	err := row.Scan(
		&sugg.SuggestionID,
		&sugg.Name,
		&sugg.Amount,
		&sugg.Currency,
		&cycle,
		&sugg.NextBilling,
		&sugg.Score,
		&ids,
		&sugg.TransactionCount,
	)
	if err != nil {
		return nil, err
	}

	sugg.BillingCycle = model.BillingCycle(cycle)
	if err := json.Unmarshal([]byte(ids), &sugg.TransactionIDs); err != nil {
		return nil, fmt.Errorf("failed to decode transaction ids: %w", err)
	}
	return &sugg, nil
}
