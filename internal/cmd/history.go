package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sociometrix/smx/internal/store"
	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show Dolt commit history of the research database",
	Long: `Display the commit history of a Dolt-backed research database.

Every import and deletion is committed, so the log shows when research
projects were added or removed. Requires storage.backend: dolt.

Flags:
  --limit N      Number of commits to show (default: 10)

Examples:
  smx history                    # Show last 10 commits
  smx history --limit 20         # Show last 20 commits
  smx history --format table     # Tabular output`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of commits to show")
}

// HistoryEntry represents a single commit in the history output
type HistoryEntry struct {
	Commit    string `yaml:"commit" json:"commit"`
	Date      string `yaml:"date" json:"date"`
	Message   string `yaml:"message" json:"message"`
	Committer string `yaml:"committer,omitempty" json:"committer,omitempty"`
}

// HistoryOutput is the full output structure
type HistoryOutput struct {
	Commits []HistoryEntry `yaml:"commits" json:"commits"`
	Total   int            `yaml:"total" json:"total"`
}

// TableHeader implements output.Tabular.
func (h *HistoryOutput) TableHeader() []string {
	return []string{"Commit", "Date", "Committer", "Message"}
}

// TableRows implements output.Tabular.
func (h *HistoryOutput) TableRows() [][]any {
	rows := make([][]any, 0, len(h.Commits))
	for _, c := range h.Commits {
		rows = append(rows, []any{c.Commit, c.Date, c.Committer, c.Message})
	}
	return rows
}

func runHistory(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer closeWorkspace(ws)

	entries, err := ws.History(cmd.Context(), historyLimit)
	if err != nil {
		if errors.Is(err, store.ErrUnversioned) {
			return fmt.Errorf("%w: set storage.backend to dolt in %s", err, ws.Dir)
		}
		return fmt.Errorf("get history: %w", err)
	}

	historyOut := &HistoryOutput{
		Commits: make([]HistoryEntry, 0, len(entries)),
		Total:   len(entries),
	}
	for _, entry := range entries {
		historyOut.Commits = append(historyOut.Commits, HistoryEntry{
			Commit:    shortenHash(entry.CommitHash),
			Date:      entry.Date,
			Message:   strings.TrimSpace(entry.Message),
			Committer: entry.Committer,
		})
	}

	return render(cmd, ws, historyOut)
}

// shortenHash returns first 7 characters of a commit hash
func shortenHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
