package cmd

import (
	"github.com/spf13/cobra"
)

// questionsCmd represents the questions command
var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the shared question bank",
	Long: `List every stored question with the number of research projects that
ask it.

Questions are shared between research projects by their text. A question
whose research projects were all deleted stays in the bank with a usage
of 0.

Examples:
  smx questions                  # YAML listing
  smx questions --format table   # Terminal table`,
	Args: cobra.NoArgs,
	RunE: runQuestions,
}

func init() {
	rootCmd.AddCommand(questionsCmd)
}

// QuestionEntry is one question of the bank.
type QuestionEntry struct {
	ID       int64  `yaml:"id" json:"id"`
	Text     string `yaml:"text" json:"text"`
	Research int    `yaml:"research" json:"research"`
}

// QuestionsOutput is the full output structure
type QuestionsOutput struct {
	Questions []QuestionEntry `yaml:"questions" json:"questions"`
	Total     int             `yaml:"total" json:"total"`
}

// TableHeader implements output.Tabular.
func (q *QuestionsOutput) TableHeader() []string {
	return []string{"ID", "Text", "Research"}
}

// TableRows implements output.Tabular.
func (q *QuestionsOutput) TableRows() [][]any {
	rows := make([][]any, 0, len(q.Questions))
	for _, e := range q.Questions {
		rows = append(rows, []any{e.ID, e.Text, e.Research})
	}
	return rows
}

func runQuestions(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer closeWorkspace(ws)

	questions, err := ws.Questions(cmd.Context())
	if err != nil {
		return err
	}

	out := &QuestionsOutput{
		Questions: make([]QuestionEntry, 0, len(questions)),
		Total:     len(questions),
	}
	for _, q := range questions {
		out.Questions = append(out.Questions, QuestionEntry{
			ID:       int64(q.ID),
			Text:     q.Text,
			Research: q.ResearchCount,
		})
	}
	return render(cmd, ws, out)
}
