package database

import (
	"context"
	"fmt"
)

type migration struct {
	sql     string
	version int
}

var migrations = []migration{
	{
		version: 1,
		sql: `
			CREATE TABLE commits (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				engine TEXT NOT NULL,
				group_key TEXT NOT NULL,
				setting_key TEXT NOT NULL DEFAULT '',
				wire TEXT NOT NULL DEFAULT '',
				outcome TEXT NOT NULL,
				error TEXT NOT NULL DEFAULT '',
				created_at INTEGER NOT NULL
			);

			CREATE INDEX idx_commits_engine ON commits(engine);
			CREATE INDEX idx_commits_created ON commits(created_at);
		`,
	},
}

func (m *Manager) version(ctx context.Context) (int, error) {
	var v int
	if err := m.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to get current database version: %w", err)
	}
	return v, nil
}

func (m *Manager) runMigrations(ctx context.Context) error {
	currentVersion, err := m.version(ctx)
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if mig.version <= currentVersion {
			continue
		}
		if err := m.executeMigration(ctx, mig); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) executeMigration(ctx context.Context, mig migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, mig.sql); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to execute migration %d: %w", mig.version, err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", mig.version)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to update database version to %d: %w", mig.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", mig.version, err)
	}
	return nil
}
