// Package sqlite provides a SQLite-backed implementation of kvstore.Store.
//
// Each participant opens its own database file, so a commit here is atomic
// and durable for that participant only — matching the single-participant
// guarantees the saga protocol assumes. WAL mode is enabled on Open so that
// readers never block writers and vice versa.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/bookstore-sagas/internal/kvstore"

	// Register the pure-Go SQLite driver.
	// We use modernc.org/sqlite instead of mattn/go-sqlite3 to avoid CGO
	// requirements, making it easier to build and run in Docker (Alpine).
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. A single table holds every
// named map; the dict column is the map name (e.g. "books", "reserved_books").
const schema = `
CREATE TABLE IF NOT EXISTS kv (
    dict   TEXT NOT NULL,
    key    TEXT NOT NULL,
    value  BLOB NOT NULL,
    PRIMARY KEY (dict, key)
);
`

// Store is the SQLite implementation of kvstore.Store.
type Store struct {
	db *sql.DB
}

var _ kvstore.Store = (*Store)(nil)

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
//
//	store, err := sqlite.Open("./data/bookstore.db")
func Open(path string) (*Store, error) {
	// The pure-Go driver uses _pragma query parameters to configure connection state.
	// WAL enables concurrent readers. busy_timeout waits for locks instead of
	// failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3" for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection. This also
	// serialises transactions, so two concurrent Begin calls never deadlock
	// on the database-level write lock.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin opens a new local transaction.
func (s *Store) Begin(ctx context.Context) (kvstore.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin: %w", err)
	}
	return &sqliteTx{tx: tx}, nil
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Get(ctx context.Context, dict, key string) ([]byte, bool, error) {
	const q = `SELECT value FROM kv WHERE dict = ? AND key = ?`

	var value []byte
	err := t.tx.QueryRowContext(ctx, q, dict, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: get %s/%s: %w", dict, key, err)
	}
	return value, true, nil
}

func (t *sqliteTx) Set(ctx context.Context, dict, key string, value []byte) error {
	const q = `
		INSERT INTO kv (dict, key, value) VALUES (?, ?, ?)
		ON CONFLICT (dict, key) DO UPDATE SET value = excluded.value`

	if _, err := t.tx.ExecContext(ctx, q, dict, key, value); err != nil {
		return fmt.Errorf("sqlite: set %s/%s: %w", dict, key, err)
	}
	return nil
}

func (t *sqliteTx) Enumerate(ctx context.Context, dict string) ([]kvstore.Entry, error) {
	const q = `SELECT key, value FROM kv WHERE dict = ? ORDER BY key`

	rows, err := t.tx.QueryContext(ctx, q, dict)
	if err != nil {
		return nil, fmt.Errorf("sqlite: enumerate %s: %w", dict, err)
	}
	defer rows.Close()

	var entries []kvstore.Entry
	for rows.Next() {
		var e kvstore.Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("sqlite: enumerate %s: %w", dict, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: enumerate %s: %w", dict, err)
	}
	return entries, nil
}

func (t *sqliteTx) Clear(ctx context.Context, dict string) error {
	const q = `DELETE FROM kv WHERE dict = ?`

	if _, err := t.tx.ExecContext(ctx, q, dict); err != nil {
		return fmt.Errorf("sqlite: clear %s: %w", dict, err)
	}
	return nil
}

func (t *sqliteTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (t *sqliteTx) Rollback() error {
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}
