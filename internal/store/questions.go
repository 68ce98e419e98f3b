package store

import (
	"context"
	"fmt"

	"github.com/sociometrix/smx/internal/survey"
)

// QuestionUsage is a question of the shared bank with the number of
// research projects that ask it.
type QuestionUsage struct {
	ID            survey.QuestionID
	Text          string
	ResearchCount int
}

// ListQuestions returns the question bank ordered by id. Questions left
// behind by deleted research have a zero ResearchCount.
func (s *Store) ListQuestions(ctx context.Context) ([]QuestionUsage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT q.id, q.text, COUNT(rq.research_id)
		FROM questions q
		LEFT JOIN research_questions rq ON rq.question_id = q.id
		GROUP BY q.id, q.text
		ORDER BY q.id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []QuestionUsage
	for rows.Next() {
		var q QuestionUsage
		if err := rows.Scan(&q.ID, &q.Text, &q.ResearchCount); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
