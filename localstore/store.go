// Package localstore is the offline sandbox database behind the gym
// management demo. It keeps named collections of JSON records in a single
// embedded SQLite file, independent of the hosted Postgres database, with a
// versioned schema so new collections can be added between releases.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SchemaVersion is bumped whenever the declared collection set changes.
// The upgrade step's only duty is to make sure every declared collection
// exists as a table; record-level backfill happens lazily on read.
const SchemaVersion = 2

// SettingsCollection holds the meta/settings singleton. It survives
// ClearAll so configuration outlives a demo-data wipe.
const SettingsCollection = "settings"

// DefaultCollections are the gym demo collections.
var DefaultCollections = []string{
	"members",
	"classes",
	"equipment",
	"payments",
	"attendance",
	SettingsCollection,
}

var (
	// ErrStorageUnavailable wraps failures to open or upgrade the
	// underlying database (missing engine, locked file, bad path).
	ErrStorageUnavailable = errors.New("localstore: storage unavailable")

	// ErrInvalidRecord rejects a put whose record has no id. Caller error;
	// storage is never touched.
	ErrInvalidRecord = errors.New("localstore: record is missing an id")

	// ErrUnknownCollection rejects operations against a collection that
	// was never declared for this store.
	ErrUnknownCollection = errors.New("localstore: collection not declared")
)

// Store is one handle to the sandbox database. Construct it with New and
// pass it to consumers explicitly — there is no package-level singleton.
// All operations are safe for concurrent use; the open/upgrade sequence
// runs once and is shared by every caller that races it.
type Store struct {
	path        string
	version     int
	collections []string

	openOnce sync.Once
	db       *sql.DB
	openErr  error
}

// Option tweaks a Store before first open. Used by tests to model schema
// upgrades with a smaller collection set.
type Option func(*Store)

// WithCollections overrides the declared collection set. The settings
// collection is always declared regardless.
func WithCollections(names ...string) Option {
	return func(s *Store) { s.collections = names }
}

// WithVersion overrides the target schema version.
func WithVersion(v int) Option {
	return func(s *Store) { s.version = v }
}

// New returns an unopened store for the given file path. Opening is lazy
// and memoized: the first operation triggers it, concurrent operations
// share the same attempt.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:        path,
		version:     SchemaVersion,
		collections: DefaultCollections,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.declared(SettingsCollection) {
		s.collections = append(s.collections, SettingsCollection)
	}
	return s
}

func (s *Store) declared(collection string) bool {
	for _, c := range s.collections {
		if c == collection {
			return true
		}
	}
	return false
}

// tableName maps a declared collection to its backing table. Validating
// against the declared set doubles as the guard that keeps collection
// names out of SQL injection territory.
func (s *Store) tableName(collection string) (string, error) {
	if !s.declared(collection) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return `"collection_` + collection + `"`, nil
}

// handle opens the database on first use. Any failure is remembered and
// returned to every subsequent caller rather than retried.
func (s *Store) handle() (*sql.DB, error) {
	s.openOnce.Do(func() {
		s.db, s.openErr = s.open()
	})
	return s.db, s.openErr
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := s.upgrade(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// upgrade runs the schema transition when the stored version is behind the
// target. Creating collection tables is idempotent, so re-running against
// an already-current database is a no-op per collection.
func (s *Store) upgrade(db *sql.DB) error {
	var stored int
	if err := db.QueryRow("PRAGMA user_version").Scan(&stored); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if stored >= s.version {
		// Still ensure tables exist: a fresh file reports version 0 only
		// until the first upgrade, but a custom WithVersion(0) store must
		// work too.
		if stored > 0 {
			return nil
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	for _, collection := range s.collections {
		table, _ := s.tableName(collection)
		ddl := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, data TEXT NOT NULL)",
			table,
		)
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("%w: create %s: %v", ErrStorageUnavailable, collection, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", s.version)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// DeleteByID removes a record if present. Deleting an absent id is a
// successful no-op.
func (s *Store) DeleteByID(ctx context.Context, collection, id string) error {
	table, err := s.tableName(collection)
	if err != nil {
		return err
	}
	db, err := s.handle()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	return err
}

// ClearCollection removes every record from one collection.
func (s *Store) ClearCollection(ctx context.Context, collection string) error {
	table, err := s.tableName(collection)
	if err != nil {
		return err
	}
	db, err := s.handle()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table))
	return err
}

// ClearAll wipes every collection except settings, in one transaction.
func (s *Store) ClearAll(ctx context.Context) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, collection := range s.collections {
		if collection == SettingsCollection {
			continue
		}
		table, _ := s.tableName(collection)
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Count returns the number of records in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	table, err := s.tableName(collection)
	if err != nil {
		return 0, err
	}
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	var n int64
	err = db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	return n, err
}

// Close releases the database handle. The demo keeps its store open for
// the process lifetime; this exists for tests and orderly shutdown.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
