package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sociometrix/smx/internal/report"
	"github.com/spf13/cobra"
)

// matrixCmd represents the matrix command
var matrixCmd = &cobra.Command{
	Use:   "matrix <research-id>",
	Short: "Show who nominated whom, one matrix per question",
	Long: `Print the nomination matrix of every question of a research project.

Rows are nominators and columns the nominated, both in roster order. The
table format marks nominations with "x" and adds given and received totals.

Examples:
  smx matrix 1 --format table
  smx matrix 1 --question 2 --format markdown
  smx matrix 1 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runMatrix,
}

var matrixQuestion int64

func init() {
	rootCmd.AddCommand(matrixCmd)

	matrixCmd.Flags().Int64Var(&matrixQuestion, "question", 0, "Only show the matrix of this question id")
}

func runMatrix(cmd *cobra.Command, args []string) error {
	id, err := parseResearchID(args[0])
	if err != nil {
		return err
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer closeWorkspace(ws)

	doc, err := ws.Matrices(cmd.Context(), id, uuid.NewString())
	if err != nil {
		return err
	}

	if matrixQuestion != 0 {
		var kept []report.Matrix
		for _, m := range doc.Matrices {
			if int64(m.Question) == matrixQuestion {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			return fmt.Errorf("question %d is not part of research %d", matrixQuestion, id)
		}
		doc.Matrices = kept
	}

	return render(cmd, ws, doc)
}
