// Package store persists research projects: rosters, questions, choice
// counts and responses. Two backends share one portable schema: a SQLite
// file (default) and a Dolt repository, which versions every import and
// deletion as a commit.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/dolthub/driver"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a research id does not exist.
var ErrNotFound = errors.New("research not found")

// Backend names a storage engine.
type Backend string

const (
	// BackendSQLite stores everything in a single SQLite file.
	BackendSQLite Backend = "sqlite"

	// BackendDolt stores data in a Dolt repository directory.
	BackendDolt Backend = "dolt"
)

// doltDatabase is the database created inside a Dolt repository.
const doltDatabase = "smx"

// Options selects a backend and its location.
type Options struct {
	Backend Backend

	// Path is the SQLite file or the Dolt repository directory.
	Path string
}

// Store manages the research database.
type Store struct {
	db      *sql.DB
	backend Backend
	dbPath  string
}

// Open opens or creates the store described by opts and initializes the
// schema if the database is new.
func Open(opts Options) (*Store, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		return openSQLite(opts.Path)
	case BackendDolt:
		return openDolt(opts.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

func openSQLite(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	return initStore(db, BackendSQLite, path)
}

func openDolt(path string) (*Store, error) {
	// Create the Dolt repo directory if needed
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create dolt directory: %w", err)
	}

	// First, connect without specifying database to create it if needed
	initDSN := fmt.Sprintf("file://%s?commitname=smx&commitemail=smx@local", path)
	initDB, err := sql.Open("dolt", initDSN)
	if err != nil {
		return nil, fmt.Errorf("open dolt for init: %w", err)
	}

	_, err = initDB.Exec("CREATE DATABASE IF NOT EXISTS " + doltDatabase)
	if err != nil {
		initDB.Close()
		return nil, fmt.Errorf("create database: %w", err)
	}
	initDB.Close()

	// Now connect to the specific database
	dsn := fmt.Sprintf("file://%s?commitname=smx&commitemail=smx@local&database=%s", path, doltDatabase)
	db, err := sql.Open("dolt", dsn)
	if err != nil {
		return nil, fmt.Errorf("open dolt db: %w", err)
	}

	return initStore(db, BackendDolt, path)
}

func initStore(db *sql.DB, backend Backend, path string) (*Store, error) {
	s := &Store{db: db, backend: backend, dbPath: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database connection for advanced operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file or repository path.
func (s *Store) Path() string {
	return s.dbPath
}

// Backend returns the storage engine in use.
func (s *Store) Backend() Backend {
	return s.backend
}
