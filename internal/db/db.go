// Package db provides PostgreSQL storage for optimization records and published prompts.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by writes that target a record that does not exist
var ErrNotFound = errors.New("optimization not found")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Schema is the DDL applied by Migrate
const Schema = `
CREATE TABLE IF NOT EXISTS optimizations (
  id UUID PRIMARY KEY,
  user_id UUID NOT NULL,
  original_prompt TEXT NOT NULL,
  target_model TEXT NOT NULL,
  media_type TEXT NOT NULL,
  optimization_type TEXT NOT NULL,
  optimization_mode TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  questions JSONB NOT NULL DEFAULT '[]',
  user_answers JSONB NOT NULL DEFAULT '{}',
  additional_details TEXT NOT NULL DEFAULT '',
  parsed_details JSONB NOT NULL DEFAULT '{}',
  optimized_prompt TEXT NOT NULL DEFAULT '',
  quality_score JSONB NOT NULL DEFAULT '{}',
  metadata JSONB NOT NULL DEFAULT '{}',
  analysis JSONB NOT NULL DEFAULT '{}',
  feedback JSONB,
  failure_reason TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_optimizations_key
  ON optimizations (user_id, original_prompt, target_model, media_type, optimization_type, status, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_optimizations_user_created ON optimizations (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS prompts (
  id UUID PRIMARY KEY,
  optimization_id UUID REFERENCES optimizations (id) ON DELETE SET NULL,
  user_id UUID NOT NULL,
  content TEXT NOT NULL,
  media_type TEXT NOT NULL,
  target_model TEXT NOT NULL,
  tags TEXT[] NOT NULL DEFAULT '{}',
  visibility TEXT NOT NULL,
  outputs JSONB NOT NULL DEFAULT '[]',
  published_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_prompts_user ON prompts (user_id, published_at DESC);

-- published prompts outlive the optimization they were copied from
ALTER TABLE prompts ALTER COLUMN optimization_id DROP NOT NULL;
ALTER TABLE prompts DROP CONSTRAINT IF EXISTS prompts_optimization_id_fkey;
ALTER TABLE prompts ADD CONSTRAINT prompts_optimization_id_fkey
  FOREIGN KEY (optimization_id) REFERENCES optimizations (id) ON DELETE SET NULL;
`

// Migrate creates the tables and indexes if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
