package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <research-id>",
	Short: "Delete a research project",
	Long: `Delete a research project together with its participants, question
assignments and responses. Questions stay available to other research.

With the Dolt backend the deletion is committed and can be inspected with
'smx history'.

Examples:
  smx delete 3`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseResearchID(args[0])
	if err != nil {
		return err
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer closeWorkspace(ws)

	if err := ws.Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("research %d: %w", id, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted research %d\n", id)
	return nil
}
