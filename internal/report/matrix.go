package report

import (
	"github.com/sociometrix/smx/internal/graph"
	"github.com/sociometrix/smx/internal/survey"
)

// Matrix is the nomination matrix of one question. Rows and columns follow
// Participants; Rows[i][j] is true when participant i nominated
// participant j.
type Matrix struct {
	Question     survey.QuestionID `yaml:"question" json:"question"`
	Text         string            `yaml:"text,omitempty" json:"text,omitempty"`
	Participants []ParticipantData `yaml:"participants" json:"participants"`
	Rows         [][]bool          `yaml:"rows" json:"rows"`
}

// Nominated reports whether the participant at row i nominated the one at
// column j.
func (m Matrix) Nominated(i, j int) bool {
	if i < 0 || i >= len(m.Rows) || j < 0 || j >= len(m.Rows[i]) {
		return false
	}
	return m.Rows[i][j]
}

// Matrices builds one matrix per research question, ordered by question id.
// Input checks match Assembler.Assemble.
func Matrices(roster survey.Roster, responses *survey.ResponseSet, researchQuestions []survey.ResearchQuestion) ([]Matrix, error) {
	questions, err := indexQuestions(responses, researchQuestions)
	if err != nil {
		return nil, err
	}

	participants := participantData(roster)
	ids := roster.IDs()

	out := make([]Matrix, 0, len(questions))
	for _, rq := range sortedQuestions(questions) {
		built, err := graph.BuildQuestion(roster, responses, rq.QuestionID)
		if err != nil {
			return nil, err
		}

		rows := make([][]bool, len(ids))
		for i, source := range ids {
			rows[i] = make([]bool, len(ids))
			for j, target := range ids {
				rows[i][j] = built.Adjacency.Has(source, target)
			}
		}

		out = append(out, Matrix{
			Question:     rq.QuestionID,
			Text:         rq.Text,
			Participants: participants,
			Rows:         rows,
		})
	}
	return out, nil
}
