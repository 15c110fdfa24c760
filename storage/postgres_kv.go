package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"covid-dashboard/utils"
)

// PostgresKV keeps cache entries in a PostgreSQL table.
type PostgresKV struct {
	db *sql.DB
}

// NewPostgresKV opens a connection, waits for the server to answer and runs
// the schema migration.
func NewPostgresKV(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresKV, error) {
	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1}
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	err = retry.Do(ctx, "postgres-ping", func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	pk := &PostgresKV{db: db}
	if err := pk.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pk, nil
}

func (pk *PostgresKV) migrate(ctx context.Context) error {
	_, err := pk.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv_cache (
			key        TEXT        PRIMARY KEY,
			value      TEXT        NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (pk *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := pk.db.QueryRowContext(ctx, `SELECT value FROM kv_cache WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres: get %q: %w", key, err)
	}
	return value, true, nil
}

func (pk *PostgresKV) Set(ctx context.Context, key, value string) error {
	_, err := pk.db.ExecContext(ctx, `
		INSERT INTO kv_cache (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("postgres: set %q: %w", key, err)
	}
	return nil
}

func (pk *PostgresKV) Close() error {
	return pk.db.Close()
}
