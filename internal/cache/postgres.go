package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cleared-dev/recon/internal/model"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS classification_cache (
	tenant     TEXT PRIMARY KEY,
	mapping    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres stores classification maps in a shared table, so several
// recon processes can reuse one tenant's classification.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL and creates the cache table if needed.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	config.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	c := NewPostgres(pool)
	if err := c.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return c, nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the cache table.
func (c *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create classification_cache table: %w", err)
	}
	return nil
}

// Close releases the pool.
func (c *Postgres) Close() {
	c.pool.Close()
}

func (c *Postgres) Get(ctx context.Context, tenant string) (model.ClassificationMap, bool, error) {
	var data []byte
	err := c.pool.QueryRow(ctx, `SELECT mapping FROM classification_cache WHERE tenant = $1`, tenant).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read classification cache: %w", err)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (c *Postgres) Put(ctx context.Context, tenant string, m model.ClassificationMap) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	_, err = c.pool.Exec(ctx, `
		INSERT INTO classification_cache (tenant, mapping, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (tenant) DO UPDATE SET mapping = EXCLUDED.mapping, updated_at = EXCLUDED.updated_at`,
		tenant, string(data))
	if err != nil {
		return fmt.Errorf("failed to write classification cache: %w", err)
	}
	return nil
}

func (c *Postgres) Invalidate(ctx context.Context, tenant string) error {
	if _, err := c.pool.Exec(ctx, `DELETE FROM classification_cache WHERE tenant = $1`, tenant); err != nil {
		return fmt.Errorf("failed to invalidate classification cache: %w", err)
	}
	return nil
}
