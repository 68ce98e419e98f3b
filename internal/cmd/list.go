package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored research projects",
	Long: `List every stored research project, newest first, with its number of
participants and questions.

Examples:
  smx list                  # YAML listing
  smx list --format table   # Terminal table`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer closeWorkspace(ws)

	doc, err := ws.List(cmd.Context(), uuid.NewString())
	if err != nil {
		return err
	}
	return render(cmd, ws, doc)
}
