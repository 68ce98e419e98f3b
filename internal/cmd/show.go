package cmd

import (
	"fmt"

	"github.com/sociometrix/smx/internal/survey"
	"github.com/spf13/cobra"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <research-id>",
	Short: "Show the roster and questions of a research project",
	Long: `Show what is stored for one research project: its participants in roster
order, its questions with their required choice counts, and how many
nominations each participant gave and received.

Use 'smx analyze' for relations and indices.

Examples:
  smx show 1
  smx show 1 --format table`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// ResearchDetail is the output of smx show.
type ResearchDetail struct {
	Research     survey.Research           `yaml:"research" json:"research"`
	Questions    []survey.ResearchQuestion `yaml:"questions" json:"questions"`
	Participants []ParticipantDetail       `yaml:"participants" json:"participants"`
	Responses    int                       `yaml:"responses" json:"responses"`
}

// ParticipantDetail is one roster row with nomination counts over all
// questions.
type ParticipantDetail struct {
	survey.Participant `yaml:",inline"`
	Given              int `yaml:"given" json:"given"`
	Received           int `yaml:"received" json:"received"`
}

// TableHeader implements output.Tabular.
func (d *ResearchDetail) TableHeader() []string {
	return []string{"ID", "Name", "Age", "Gender", "Given", "Received"}
}

// TableRows implements output.Tabular.
func (d *ResearchDetail) TableRows() [][]any {
	rows := make([][]any, 0, len(d.Participants))
	for _, p := range d.Participants {
		rows = append(rows, []any{p.ID, p.Name, p.Age, p.Gender, p.Given, p.Received})
	}
	return rows
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseResearchID(args[0])
	if err != nil {
		return err
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer closeWorkspace(ws)

	loaded, err := ws.Store().LoadResearch(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("research %d: %w", id, err)
	}

	given := make(map[survey.ParticipantID]int)
	received := make(map[survey.ParticipantID]int)
	for _, r := range loaded.Responses.All() {
		given[r.Source]++
		received[r.Target]++
	}

	detail := &ResearchDetail{
		Research:  loaded.Research,
		Questions: loaded.Questions,
		Responses: loaded.Responses.Len(),
	}
	for _, p := range loaded.Roster.Participants() {
		detail.Participants = append(detail.Participants, ParticipantDetail{
			Participant: p,
			Given:       given[p.ID],
			Received:    received[p.ID],
		})
	}

	return render(cmd, ws, detail)
}
