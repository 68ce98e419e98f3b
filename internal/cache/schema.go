package cache

// schemaSQL defines the SQLite schema for the cache database.
// Tables:
//   - reports: assembled analysis reports per research and option set
const schemaSQL = `
CREATE TABLE IF NOT EXISTS reports (
    research_id INTEGER NOT NULL,
    options_key TEXT NOT NULL,
    report_json TEXT NOT NULL,
    computed_at TEXT NOT NULL,
    PRIMARY KEY (research_id, options_key)
);

CREATE INDEX IF NOT EXISTS idx_reports_computed_at ON reports(computed_at DESC);
`

// initSchema creates the database tables and indexes if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}
