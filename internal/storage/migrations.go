package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// ExpectedSchemaVersion is the schema version this build reads and writes.
// Migrate fails if the database ends up anywhere else.
const ExpectedSchemaVersion = 3

// Migration is one forward-only schema step, recorded in PRAGMA user_version.
type Migration struct {
	Description string
	Statements  []string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Transactions",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS transactions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				hash TEXT UNIQUE NOT NULL,
				date DATETIME NOT NULL,
				description TEXT NOT NULL,
				merchant_name TEXT,
				amount TEXT NOT NULL,
				currency TEXT NOT NULL,
				account_id TEXT,
				source TEXT,
				subscription_id TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_transactions_user_date ON transactions(user_id, date)`,
			`CREATE INDEX idx_transactions_subscription ON transactions(subscription_id)`,
		},
	},
	{
		Version:     2,
		Description: "Subscriptions",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS subscriptions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				description TEXT,
				amount TEXT NOT NULL,
				currency TEXT NOT NULL,
				billing_cycle TEXT NOT NULL,
				next_billing DATETIME,
				category TEXT,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_subscriptions_user ON subscriptions(user_id, next_billing)`,
		},
	},
	{
		Version:     3,
		Description: "Pending suggestions",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS suggestions (
				user_id TEXT NOT NULL,
				suggestion_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				name TEXT NOT NULL,
				amount TEXT NOT NULL,
				currency TEXT NOT NULL,
				billing_cycle TEXT NOT NULL,
				next_billing DATETIME NOT NULL,
				score REAL NOT NULL,
				transaction_ids TEXT NOT NULL,
				transaction_count INTEGER NOT NULL,
				PRIMARY KEY (user_id, suggestion_id)
			)`,
		},
	},
}

// Migrate applies pending migrations, each in its own transaction together
// with the user_version bump.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		err := s.withTx(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.Statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
				}
			}
			// PRAGMA does not accept bound parameters.
			_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version))
			return err
		})
		if err != nil {
			return err
		}

		s.logger.Info("Applied migration", "version", m.Version, "description", m.Description)
	}

	final, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, final)
	}
	return nil
}
