package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a
// fatal error.
const ExpectedSchemaVersion = 3

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
				`CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					email TEXT UNIQUE NOT NULL,
					password_hash TEXT NOT NULL,
					full_name TEXT NOT NULL,
					phone TEXT NOT NULL,
					address TEXT,
					city_tier TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_users_email ON users(email)`,

				`CREATE TABLE IF NOT EXISTS loan_applications (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					amount_requested REAL NOT NULL,
					num_debts INTEGER NOT NULL,
					total_debt_amount REAL NOT NULL,
					monthly_emis REAL NOT NULL,
					total_assets REAL NOT NULL,
					monthly_income REAL NOT NULL,
					city_tier TEXT NOT NULL,
					ml_probability REAL,
					acceptance_rate REAL,
					status TEXT NOT NULL,
					feedback TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (user_id) REFERENCES users(id)
				)`,
				`CREATE INDEX idx_loans_user ON loan_applications(user_id)`,

				`CREATE TABLE IF NOT EXISTS transaction_uploads (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					file_name TEXT NOT NULL,
					transactions TEXT NOT NULL,
					uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (user_id) REFERENCES users(id)
				)`,
				`CREATE INDEX idx_uploads_user ON transaction_uploads(user_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Financial behavior history",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS financial_behaviors (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					upload_id TEXT NOT NULL,
					total_score INTEGER NOT NULL,
					rating TEXT NOT NULL,
					category_scores TEXT NOT NULL,
					cash_inflow_pattern TEXT NOT NULL,
					liquidity_resilience_days INTEGER NOT NULL,
					transaction_depth_days INTEGER NOT NULL,
					has_stable_inflow INTEGER NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (user_id) REFERENCES users(id),
					FOREIGN KEY (upload_id) REFERENCES transaction_uploads(id)
				)`,
				// Latest-wins reads sort on (user_id, created_at).
				`CREATE INDEX idx_behaviors_user_created ON financial_behaviors(user_id, created_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Partner bank catalog",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS banks (
					id TEXT PRIMARY KEY,
					name TEXT UNIQUE NOT NULL,
					logo_url TEXT,
					avg_approval_time TEXT NOT NULL,
					success_rate REAL NOT NULL,
					interest_rate_min REAL NOT NULL,
					interest_rate_max REAL NOT NULL,
					trust_score REAL NOT NULL,
					total_loans INTEGER NOT NULL,
					rating REAL NOT NULL
				)
			`); err != nil {
				return fmt.Errorf("failed to create banks table: %w", err)
			}
			return seedBanks(tx)
		},
	},
}

// Migrate applies all pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
