package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spacesub/internal/common"
	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/service"
)

const transactionColumns = `id, user_id, hash, date, description, merchant_name,
	amount, currency, account_id, source, subscription_id`

// SaveTransactions saves multiple transactions to the database. Transactions
// whose hash is already stored are skipped and counted as duplicates.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (service.SaveResult, error) {
	var result service.SaveResult

	if err := validateContext(ctx); err != nil {
		return result, err
	}
	if err := validateTransactions(transactions); err != nil {
		return result, err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = s.saveTransactionsTx(ctx, tx, transactions)
		return err
	})
	if err != nil {
		return service.SaveResult{}, err
	}

	s.logger.Debug("Saved transactions",
		"inserted", result.Inserted,
		"duplicates", result.Duplicates)
	return result, nil
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) (service.SaveResult, error) {
	var result service.SaveResult

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, user_id, hash, date, description, merchant_name,
			amount, currency, account_id, source, subscription_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return result, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		res, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.UserID,
			txn.Hash,
			txn.Date.UTC(),
			txn.Description,
			nullString(txn.MerchantName),
			txn.Amount.String(),
			txn.Currency,
			nullString(txn.AccountID),
			nullString(txn.Source),
			txn.SubscriptionID,
		)
		if err != nil {
			return result, fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return result, fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			result.Duplicates++
		} else {
			result.Inserted++
		}
	}

	return result, nil
}

// GetTransactions retrieves a user's transactions in date order.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, userID string, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *filter.EndDate, *filter.StartDate)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if filter.StartDate != nil {
		query += " AND date >= ?"
		args = append(args, filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		query += " AND date <= ?"
		args = append(args, filter.EndDate.UTC())
	}
	if filter.UnlinkedOnly {
		query += " AND subscription_id IS NULL"
	}

	query += " ORDER BY date ASC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	return s.queryTransactions(ctx, s.db, query, args...)
}

// GetUnlinkedTransactions returns every transaction of the user that is not
// yet attributed to a subscription, oldest first.
func (s *SQLiteStorage) GetUnlinkedTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	return s.GetTransactions(ctx, userID, service.TransactionFilter{UnlinkedOnly: true})
}

// GetTransactionByID retrieves a single transaction by ID.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// LinkTransactions attributes the given transactions to a subscription.
// Transactions that belong to another user or are already linked are left
// alone; the number actually linked is returned.
func (s *SQLiteStorage) LinkTransactions(ctx context.Context, userID string, transactionIDs []string, subscriptionID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}
	if err := validateString(subscriptionID, "subscriptionID"); err != nil {
		return 0, err
	}

	var linked int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		linked, err = linkTransactionsTx(ctx, tx, userID, transactionIDs, subscriptionID)
		return err
	})
	return linked, err
}

func linkTransactionsTx(ctx context.Context, q queryable, userID string, transactionIDs []string, subscriptionID string) (int, error) {
	if len(transactionIDs) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(transactionIDs)), ",")
	args := make([]any, 0, len(transactionIDs)+2)
	args = append(args, subscriptionID, userID)
	for _, id := range transactionIDs {
		args = append(args, id)
	}

	res, err := q.ExecContext(ctx, `
		UPDATE transactions SET subscription_id = ?
		WHERE user_id = ? AND subscription_id IS NULL AND id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to link transactions: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(affected), nil
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, q queryable, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions := make([]model.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}

	return transactions, rows.Err()
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var merchant, account, source, subscriptionID sql.NullString

	err := row.Scan(
		&txn.ID,
		&txn.UserID,
		&txn.Hash,
		&txn.Date,
		&txn.Description,
		&merchant,
		&txn.Amount,
		&txn.Currency,
		&account,
		&source,
		&subscriptionID,
	)
	if err != nil {
		return nil, err
	}

	txn.MerchantName = merchant.String
	txn.AccountID = account.String
	txn.Source = source.String
	if subscriptionID.Valid {
		id := subscriptionID.String
		txn.SubscriptionID = &id
	}

	return &txn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
