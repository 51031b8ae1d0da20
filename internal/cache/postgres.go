package cache

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS debate_cache (
    prompt_hash TEXT PRIMARY KEY,
    result      JSONB NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// PostgresCache stores entries in a single upserted table.
type PostgresCache struct {
	db *sql.DB
}

func NewPostgresCache(ctx context.Context, dsn string) (*PostgresCache, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresCache{db: db}, nil
}

// NewPostgresCacheFromDB wraps an existing connection; used by tests.
func NewPostgresCacheFromDB(db *sql.DB) *PostgresCache {
	return &PostgresCache{db: db}
}

func (c *PostgresCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT result FROM debate_cache WHERE prompt_hash = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *PostgresCache) Put(ctx context.Context, key string, value []byte) error {
	_, err := c.db.ExecContext(ctx, `
INSERT INTO debate_cache (prompt_hash, result, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (prompt_hash) DO UPDATE SET
  result = EXCLUDED.result,
  updated_at = NOW();
`, key, value)
	return err
}
