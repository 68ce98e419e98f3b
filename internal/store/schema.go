package store

import "fmt"

// schemaStatements define the research schema. The DDL is kept to the
// subset understood by both SQLite and Dolt; ids are assigned by the store.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS research (
    id BIGINT PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    person_count INT NOT NULL DEFAULT 0,
    question_count INT NOT NULL DEFAULT 0,
    created_at VARCHAR(64) NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS participants (
    id BIGINT PRIMARY KEY,
    research_id BIGINT NOT NULL,
    name VARCHAR(100) NOT NULL,
    age INT NOT NULL DEFAULT 0,
    gender VARCHAR(16) NOT NULL,
    description TEXT
)`,

	// questions are shared between research projects and keyed by text
	`CREATE TABLE IF NOT EXISTS questions (
    id BIGINT PRIMARY KEY,
    text VARCHAR(255) NOT NULL UNIQUE
)`,

	`CREATE TABLE IF NOT EXISTS research_questions (
    research_id BIGINT NOT NULL,
    question_id BIGINT NOT NULL,
    choice_count INT NOT NULL,
    PRIMARY KEY (research_id, question_id)
)`,

	`CREATE TABLE IF NOT EXISTS responses (
    research_id BIGINT NOT NULL,
    question_id BIGINT NOT NULL,
    source_id BIGINT NOT NULL,
    target_id BIGINT NOT NULL
)`,
}

// schemaIndex is a secondary index created after the tables.
type schemaIndex struct {
	name    string
	table   string
	columns string
}

var schemaIndexes = []schemaIndex{
	{"idx_participants_research", "participants", "research_id"},
	{"idx_responses_research", "responses", "research_id, question_id"},
	{"idx_research_created", "research", "created_at"},
}

// initSchema creates the database tables and indexes if they don't exist.
// Statements run one at a time. Dolt speaks the MySQL dialect, which has no
// CREATE INDEX IF NOT EXISTS, so existing indexes are looked up first.
func (s *Store) initSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}

	for _, idx := range schemaIndexes {
		if s.backend != BackendDolt {
			stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", idx.name, idx.table, idx.columns)
			if _, err := s.db.Exec(stmt); err != nil {
				return err
			}
			continue
		}

		exists, err := s.doltIndexExists(idx)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) doltIndexExists(idx schemaIndex) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM information_schema.statistics
		WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?`,
		idx.table, idx.name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("look up index %s: %w", idx.name, err)
	}
	return count > 0, nil
}
