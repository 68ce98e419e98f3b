package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnversioned is returned by History on backends without version
// control.
var ErrUnversioned = errors.New("storage backend is not versioned")

// LogEntry is one Dolt commit.
type LogEntry struct {
	CommitHash string `yaml:"commit_hash" json:"commit_hash"`
	Committer  string `yaml:"committer" json:"committer"`
	Email      string `yaml:"email" json:"email"`
	Date       string `yaml:"date" json:"date"`
	Message    string `yaml:"message" json:"message"`
}

// versionCommit records the working set as a Dolt commit. It does nothing
// on SQLite.
func (s *Store) versionCommit(ctx context.Context, message string) error {
	if s.backend != BackendDolt {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "CALL DOLT_COMMIT('-Am', ?)", message); err != nil {
		return fmt.Errorf("dolt commit: %w", err)
	}
	return nil
}

// History returns recent Dolt commits, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]LogEntry, error) {
	if s.backend != BackendDolt {
		return nil, ErrUnversioned
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT commit_hash, committer, email, date, message
		FROM dolt_log
		ORDER BY date DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("dolt log query: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var entry LogEntry
		err := rows.Scan(&entry.CommitHash, &entry.Committer, &entry.Email, &entry.Date, &entry.Message)
		if err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
