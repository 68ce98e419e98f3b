package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a research project from a YAML dataset",
	Long: `Validate a dataset file and store it as a new research project.

The dataset names the research, declares questions with their required
number of choices, lists the participants and records who nominated whom.
Participants and questions are referenced by local keys; ids are assigned
on import. Questions with the same text are shared across research projects.

Validation rejects:
  - question text longer than 255 characters
  - a choice count outside 1..(participants-1)
  - the same question declared twice
  - unknown participants or questions in responses
  - participants nominating themselves

Dataset layout:
  research:
    name: Class 5B, autumn
  questions:
    - {key: desk, text: Who would you share a desk with?, choice_count: 1}
  participants:
    - {key: ann, name: Ann, age: 11, gender: female}
    - {key: bob, name: Bob, age: 12, gender: male}
  responses:
    - {question: desk, source: ann, targets: [bob]}`,
	Example: `  smx import survey.yaml
  smx import -C class survey.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer closeWorkspace(ws)

	research, err := ws.Import(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported research %d (%s): %d participants, %d questions\n",
		research.ID, research.Name, research.PersonCount, research.QuestionCount)
	return nil
}
