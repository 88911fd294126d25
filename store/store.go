// Package store persists the pipeline's caches. Each logical cache
// (biographies, enrichment responses, organization dedup, organization
// hierarchy) is a bucket of JSON-encoded values in one SQLite file.
// Every Put is written through immediately so partial progress survives
// interruption; caches are re-derivable from their sources on loss.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cache_entries (
	bucket     TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (bucket, key)
);
`

// Cache is the interface each component receives: name-keyed lookups with
// durable write-through puts. A stored null value is a valid entry (used
// for negative caching) and is distinct from an absent key.
type Cache interface {
	// Get unmarshals the cached value for key into dest and reports
	// whether the key was present.
	Get(key string, dest any) (bool, error)

	// Put stores v under key, replacing any previous value.
	Put(key string, v any) error

	// Contains reports whether key has an entry.
	Contains(key string) (bool, error)
}

// Store wraps the SQLite database holding all cache buckets.
type Store struct {
	db *sql.DB
}

// Open creates or opens the cache database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging cache database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Bucket returns a Cache scoped to the given bucket name.
func (s *Store) Bucket(name string) Cache {
	return &bucket{store: s, name: name}
}

type bucket struct {
	store *Store
	name  string
}

func (b *bucket) Get(key string, dest any) (bool, error) {
	var raw string
	err := b.store.db.QueryRowContext(context.Background(),
		`SELECT value FROM cache_entries WHERE bucket = ? AND key = ?`,
		b.name, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache %s/%s: %w", b.name, key, err)
	}
	if dest != nil {
		if err := json.Unmarshal([]byte(raw), dest); err != nil {
			return false, fmt.Errorf("decoding cache %s/%s: %w", b.name, key, err)
		}
	}
	return true, nil
}

func (b *bucket) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache %s/%s: %w", b.name, key, err)
	}
	_, err = b.store.db.ExecContext(context.Background(), `
		INSERT INTO cache_entries (bucket, key, value) VALUES (?, ?, ?)
		ON CONFLICT(bucket, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP`,
		b.name, key, string(raw))
	if err != nil {
		return fmt.Errorf("writing cache %s/%s: %w", b.name, key, err)
	}
	return nil
}

func (b *bucket) Contains(key string) (bool, error) {
	var one int
	err := b.store.db.QueryRowContext(context.Background(),
		`SELECT 1 FROM cache_entries WHERE bucket = ? AND key = ?`,
		b.name, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking cache %s/%s: %w", b.name, key, err)
	}
	return true, nil
}
