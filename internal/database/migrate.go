package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed migrations/postgres/001_kv_store.up.sql
var kvStoreMigrationSQL string

// EnsureSchema creates the kv_store table when it is missing. The SQL is
// idempotent so it is safe on every start.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	var exists bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = 'kv_store'
		)
	`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check kv_store table: %w", err)
	}

	if !exists {
		slog.Info("kv_store table missing; applying migration")
		if _, err := db.Pool.Exec(ctx, kvStoreMigrationSQL); err != nil {
			return fmt.Errorf("apply kv_store migration: %w", err)
		}
	}

	slog.Info("database schema ensured")
	return nil
}
