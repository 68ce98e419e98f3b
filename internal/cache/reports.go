package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sociometrix/smx/internal/report"
	"github.com/sociometrix/smx/internal/survey"
)

// Key identifies a cached report: the assembler options together with the
// creation time of the research, so a research id reused after deletion
// never matches an older entry.
func Key(research survey.Research, opts report.Options) (string, error) {
	data, err := json.Marshal(struct {
		CreatedAt time.Time      `json:"created_at"`
		Options   report.Options `json:"options"`
	}{research.CreatedAt.UTC(), opts})
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16]), nil
}

// GetReport returns the cached report for research id under key.
// The boolean is false on a miss.
func (c *Cache) GetReport(ctx context.Context, id survey.ResearchID, key string) (*report.Report, bool, error) {
	var data string
	err := c.db.QueryRowContext(ctx,
		"SELECT report_json FROM reports WHERE research_id = ? AND options_key = ?",
		int64(id), key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get report %d: %w", id, err)
	}

	r := &report.Report{}
	if err := json.Unmarshal([]byte(data), r); err != nil {
		return nil, false, fmt.Errorf("decode report %d: %w", id, err)
	}
	return r, true, nil
}

// PutReport stores r for research id under key, replacing an older entry.
func (c *Cache) PutReport(ctx context.Context, id survey.ResearchID, key string, r *report.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report %d: %w", id, err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports (research_id, options_key, report_json, computed_at)
		VALUES (?, ?, ?, ?)`,
		int64(id), key, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save report %d: %w", id, err)
	}
	return nil
}

// Invalidate drops every cached report of research id.
func (c *Cache) Invalidate(ctx context.Context, id survey.ResearchID) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM reports WHERE research_id = ?", int64(id)); err != nil {
		return fmt.Errorf("invalidate research %d: %w", id, err)
	}
	return nil
}
