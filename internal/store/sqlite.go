package store

import (
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB

	// writeMu serializes task writes with snapshot publication so
	// that feed subscribers observe mutations in commit order.
	writeMu sync.Mutex

	hub *feedHub
}

// Open opens (or creates) a SQLite database at dbPath, enables WAL
// mode, and runs any pending schema migrations. Each call returns an
// independent store; use Init for the process-wide shared instance.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, hub: newFeedHub()}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

var (
	initMu        sync.Mutex
	initDone      bool
	sharedStore   *SQLiteStore
	sharedInitErr error
)

// Init opens the process-wide shared store at dbPath. It is safe to
// call from multiple call sites concurrently: the first caller performs
// the actual open and every caller shares that single outcome, success
// or failure. Subsequent calls ignore dbPath.
func Init(dbPath string) (*SQLiteStore, error) {
	initMu.Lock()
	defer initMu.Unlock()

	if !initDone {
		sharedStore, sharedInitErr = Open(dbPath)
		initDone = true
	}
	return sharedStore, sharedInitErr
}

// Default returns the shared store opened by Init, or ErrUnavailable
// when initialization has not happened or failed.
func Default() (*SQLiteStore, error) {
	initMu.Lock()
	defer initMu.Unlock()

	if !initDone || sharedInitErr != nil {
		return nil, ErrUnavailable
	}
	return sharedStore, nil
}

// Close tears down the change feed and closes the underlying database
// connection. Active subscriptions are terminated; calling Unsubscribe
// on them afterwards remains safe.
func (s *SQLiteStore) Close() error {
	s.hub.closeAll()
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
