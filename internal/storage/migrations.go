package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					message_id TEXT PRIMARY KEY,
					type TEXT NOT NULL,
					amount REAL NOT NULL,
					currency TEXT NOT NULL DEFAULT 'COP',
					balance REAL,
					card_last4 TEXT,
					merchant TEXT,
					description TEXT,
					reference TEXT,
					bank_name TEXT,
					timestamp DATETIME NOT NULL,
					raw_message TEXT NOT NULL,
					category TEXT NOT NULL,
					confidence REAL DEFAULT 0,
					match_type TEXT NOT NULL,
					user_corrected INTEGER DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_timestamp ON transactions(timestamp)`,
				`CREATE INDEX idx_transactions_category ON transactions(category)`,

				`CREATE TABLE IF NOT EXISTS learned_patterns (
					id TEXT PRIMARY KEY,
					bank_name TEXT NOT NULL,
					sender_ids TEXT NOT NULL,
					pattern TEXT NOT NULL,
					default_category TEXT,
					enabled INTEGER DEFAULT 1,
					success_count INTEGER DEFAULT 0,
					fail_count INTEGER DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS teaching_examples (
					id TEXT PRIMARY KEY,
					pattern_id TEXT NOT NULL,
					sender_id TEXT,
					body TEXT NOT NULL,
					selections TEXT NOT NULL,
					category TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (pattern_id) REFERENCES learned_patterns(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_teaching_examples_pattern ON teaching_examples(pattern_id)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("failed to execute %q: %w", q[:40], err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "User categorization rules",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS user_rules (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					conditions TEXT NOT NULL,
					category TEXT NOT NULL,
					priority INTEGER DEFAULT 0,
					enabled INTEGER DEFAULT 1,
					source_pattern_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_user_rules_priority ON user_rules(priority)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("failed to execute %q: %w", q[:40], err)
				}
			}
			return nil
		},
	},
}

// runMigrations applies any pending migrations inside transactions.
func runMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		slog.Info("Applying migration", "version", m.Version, "description", m.Description)

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}
		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", m.Version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
