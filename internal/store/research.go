package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sociometrix/smx/internal/survey"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Loaded is everything needed to analyse one research.
type Loaded struct {
	Research  survey.Research
	Roster    survey.Roster
	Responses *survey.ResponseSet
	Questions []survey.ResearchQuestion
}

// SaveDataset imports a validated dataset as a new research and returns it
// with its assigned id. Questions are matched to existing ones by text.
func (s *Store) SaveDataset(ctx context.Context, ds *survey.Dataset) (survey.Research, error) {
	if err := ds.Validate(); err != nil {
		return survey.Research{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return survey.Research{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	researchID, err := nextID(ctx, tx, "research")
	if err != nil {
		return survey.Research{}, err
	}

	research := survey.Research{
		ID:            survey.ResearchID(researchID),
		Name:          ds.Research.Name,
		PersonCount:   len(ds.Participants),
		QuestionCount: len(ds.Questions),
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO research (id, name, person_count, question_count, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		research.ID, research.Name, research.PersonCount, research.QuestionCount,
		research.CreatedAt.Format(timeLayout))
	if err != nil {
		return survey.Research{}, fmt.Errorf("insert research: %w", err)
	}

	participantIDs := make(map[string]survey.ParticipantID, len(ds.Participants))
	nextParticipant, err := nextID(ctx, tx, "participants")
	if err != nil {
		return survey.Research{}, err
	}
	for _, p := range ds.Participants {
		id := survey.ParticipantID(nextParticipant)
		nextParticipant++
		_, err := tx.ExecContext(ctx, `
			INSERT INTO participants (id, research_id, name, age, gender, description)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, research.ID, p.Name, p.Age, p.Gender, p.Description)
		if err != nil {
			return survey.Research{}, fmt.Errorf("insert participant %s: %w", p.Key, err)
		}
		participantIDs[p.Key] = id
	}

	questionIDs := make(map[string]survey.QuestionID, len(ds.Questions))
	for _, q := range ds.Questions {
		id, err := questionID(ctx, tx, q.Text)
		if err != nil {
			return survey.Research{}, err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO research_questions (research_id, question_id, choice_count)
			VALUES (?, ?, ?)`,
			research.ID, id, q.ChoiceCount)
		if err != nil {
			return survey.Research{}, fmt.Errorf("insert research question %s: %w", q.Key, err)
		}
		questionIDs[q.Key] = id
	}

	for _, r := range ds.Responses {
		for _, target := range r.Targets {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO responses (research_id, question_id, source_id, target_id)
				VALUES (?, ?, ?, ?)`,
				research.ID, questionIDs[r.Question], participantIDs[r.Source], participantIDs[target])
			if err != nil {
				return survey.Research{}, fmt.Errorf("insert response: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return survey.Research{}, fmt.Errorf("commit: %w", err)
	}
	if err := s.versionCommit(ctx, fmt.Sprintf("import research %d: %s", research.ID, research.Name)); err != nil {
		return survey.Research{}, err
	}
	return research, nil
}

// ListResearch returns every research, newest first.
func (s *Store) ListResearch(ctx context.Context) ([]survey.Research, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, person_count, question_count, created_at
		FROM research
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list research: %w", err)
	}
	defer rows.Close()

	var out []survey.Research
	for rows.Next() {
		r, err := scanResearch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetResearch returns the research row with the given id.
func (s *Store) GetResearch(ctx context.Context, id survey.ResearchID) (survey.Research, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, person_count, question_count, created_at
		FROM research WHERE id = ?`, id)
	r, err := scanResearch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return survey.Research{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return r, err
}

// LoadResearch reads a research with its roster, questions and responses.
func (s *Store) LoadResearch(ctx context.Context, id survey.ResearchID) (*Loaded, error) {
	research, err := s.GetResearch(ctx, id)
	if err != nil {
		return nil, err
	}

	participants, err := s.participants(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, err := s.researchQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Loaded{
		Research:  research,
		Roster:    survey.NewRoster(participants),
		Responses: survey.NewResponseSet(id, responses),
		Questions: questions,
	}, nil
}

// DeleteResearch removes a research with its participants, question
// bindings and responses. Shared questions are kept.
func (s *Store) DeleteResearch(ctx context.Context, id survey.ResearchID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"responses", "research_questions", "participants"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE research_id = ?", id); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM research WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete research: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return s.versionCommit(ctx, fmt.Sprintf("delete research %d", id))
}

func (s *Store) participants(ctx context.Context, id survey.ResearchID) ([]survey.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, research_id, name, age, gender, description
		FROM participants WHERE research_id = ?
		ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var out []survey.Participant
	for rows.Next() {
		var p survey.Participant
		var description sql.NullString
		if err := rows.Scan(&p.ID, &p.ResearchID, &p.Name, &p.Age, &p.Gender, &description); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		if description.Valid {
			p.Description = description.String
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) researchQuestions(ctx context.Context, id survey.ResearchID) ([]survey.ResearchQuestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rq.research_id, rq.question_id, q.text, rq.choice_count
		FROM research_questions rq
		JOIN questions q ON q.id = rq.question_id
		WHERE rq.research_id = ?
		ORDER BY rq.question_id`, id)
	if err != nil {
		return nil, fmt.Errorf("query research questions: %w", err)
	}
	defer rows.Close()

	var out []survey.ResearchQuestion
	for rows.Next() {
		var rq survey.ResearchQuestion
		if err := rows.Scan(&rq.ResearchID, &rq.QuestionID, &rq.Text, &rq.ChoiceCount); err != nil {
			return nil, fmt.Errorf("scan research question: %w", err)
		}
		out = append(out, rq)
	}
	return out, rows.Err()
}

func (s *Store) responses(ctx context.Context, id survey.ResearchID) ([]survey.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT research_id, question_id, source_id, target_id
		FROM responses WHERE research_id = ?
		ORDER BY question_id, source_id, target_id`, id)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var out []survey.Response
	for rows.Next() {
		var r survey.Response
		if err := rows.Scan(&r.ResearchID, &r.QuestionID, &r.Source, &r.Target); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResearch(row rowScanner) (survey.Research, error) {
	var r survey.Research
	var createdAt string
	if err := row.Scan(&r.ID, &r.Name, &r.PersonCount, &r.QuestionCount, &createdAt); err != nil {
		return survey.Research{}, err
	}
	created, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return survey.Research{}, fmt.Errorf("research %d: created_at: %w", r.ID, err)
	}
	r.CreatedAt = created
	return r, nil
}

// questionID returns the id of the question with text, creating it if
// needed.
func questionID(ctx context.Context, tx *sql.Tx, text string) (survey.QuestionID, error) {
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM questions WHERE text = ?", text).Scan(&id)
	if err == nil {
		return survey.QuestionID(id), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("find question: %w", err)
	}

	id, err = nextID(ctx, tx, "questions")
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO questions (id, text) VALUES (?, ?)", id, text); err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}
	return survey.QuestionID(id), nil
}

// nextID returns the next free id of table.
func nextID(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	var highest int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM "+table).Scan(&highest); err != nil {
		return 0, fmt.Errorf("next %s id: %w", table, err)
	}
	return highest + 1, nil
}
