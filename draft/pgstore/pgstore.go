// Package pgstore keeps drafts in PostgreSQL through a pgx connection pool.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the drafts table.
const Schema = `
CREATE TABLE IF NOT EXISTS formkit_drafts (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store is a draft.Store over a *pgxpool.Pool.
type Store struct {
	pool  *pgxpool.Pool
	owned bool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool for dsn and ensures the table exists.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	s := &Store{pool: pool, owned: true}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create drafts table: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	if s.owned {
		s.pool.Close()
	}
}

// Get retrieves a draft by key
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var b []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM formkit_drafts WHERE key = $1`, key).Scan(&b)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get draft: %w", err)
	}
	return b, true, nil
}

// Put inserts or replaces a draft
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO formkit_drafts (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to upsert draft: %w", err)
	}
	return nil
}

// Delete removes a draft
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM formkit_drafts WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
