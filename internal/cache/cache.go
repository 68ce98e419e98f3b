// Package cache provides SQLite-backed caching for assembled analysis
// reports. The cache is stored in .smx/cache.db next to the research
// database and can be deleted at any time.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the cache database inside the .smx directory.
const FileName = "cache.db"

// Cache manages the .smx/cache.db SQLite database.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database in the given .smx directory.
// It initializes the schema if the database is new.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	dbPath := filepath.Join(dir, FileName)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// Batch analyses share the cache; one connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	cache := &Cache{db: db, dbPath: dbPath}

	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return cache, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Clear removes every cached report.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM reports"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// DB returns the underlying database connection for advanced operations.
func (c *Cache) DB() *sql.DB {
	return c.db
}

// Stats returns cache statistics.
type Stats struct {
	Reports  int64 `yaml:"reports" json:"reports"`
	Research int64 `yaml:"research" json:"research"`
}

// GetStats returns statistics about the cache contents.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats

	err := c.db.QueryRow("SELECT COUNT(*), COUNT(DISTINCT research_id) FROM reports").
		Scan(&stats.Reports, &stats.Research)
	if err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}

	return &stats, nil
}
