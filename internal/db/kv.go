package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// KVStore is a single-table key/document store. The record history lives
// under one key as a JSON document, read once at startup and rewritten
// wholesale on every mutation -- the same contract the front-end previously
// had with browser local storage.
type KVStore struct {
	DB *sql.DB
}

// NewKVStore wraps an existing connection. The caller manages the connection
// lifecycle.
func NewKVStore(db *sql.DB) *KVStore { return &KVStore{DB: db} }

// Migrate creates the backing table if it does not exist.
func (s *KVStore) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS record_store (
            key        text PRIMARY KEY,
            doc        jsonb NOT NULL,
            updated_at timestamptz NOT NULL DEFAULT now()
        )`)
	if err != nil {
		return fmt.Errorf("failed to create record_store table: %w", err)
	}
	return nil
}

// Load reads the document stored under key. A missing key returns nil bytes
// and no error.
func (s *KVStore) Load(ctx context.Context, key string) ([]byte, error) {
	var doc []byte
	err := s.DB.QueryRowContext(ctx,
		`SELECT doc FROM record_store WHERE key = $1`, key,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Save rewrites the document under key.
func (s *KVStore) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO record_store (key, doc, updated_at)
         VALUES ($1, $2, now())
         ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		key, value,
	)
	return err
}
