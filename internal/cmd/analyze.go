package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sociometrix/smx/internal/report"
	"github.com/sociometrix/smx/internal/survey"
	"github.com/sociometrix/smx/internal/workspace"
	"github.com/spf13/cobra"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <research-id>",
	Short: "Analyze the nomination graph of a research project",
	Long: `Build the nomination graph of a research project and report its structure.

The aggregate section merges all questions:
  - pairs: participants who nominated each other
  - chains: one-directional nomination paths a → b → c
  - stars: participants receiving at least half of the nominations available
    to them
  - cliques: three participants who all nominated each other
  - whether every participant nominated every other

Each question is then analysed on its own, with stars being the participants
who received the most nominations, plus the group indices

  cohesion  = mutual pairs / (k·n/2)
  density   = mutual·s / (unreciprocated·s), s = 1 − k/(n−1)
  isolation = 1 / isolated participants

where n is the roster size and k the required number of choices, and each
participant's status (nominations received / (n−1)) and prestige (PageRank).

A density with mutual pairs but no unreciprocated nominations is reported as
"inf".

Reports are cached in .smx/cache.db per research and option set; importing
never changes a stored research, so a cached report stays valid until the
research is deleted.

Examples:
  smx analyze 1                     # Full YAML report
  smx analyze 1 --question 2        # Only question 2 in the per-question section
  smx analyze 1 --precision -1      # Unrounded indices
  smx analyze 1 --no-cache          # Ignore the cached report
  smx analyze 1 --format table      # Terminal tables`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeQuestion   int64
	analyzePrecision  int
	analyzeNoPrestige bool
	analyzeMaxRoster  int
	analyzeNoCache    bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Int64Var(&analyzeQuestion, "question", 0, "Only report this question id in the per-question section")
	analyzeCmd.Flags().IntVar(&analyzePrecision, "precision", 0, "Decimal places for indices, -1 for full precision (default: from config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoPrestige, "no-prestige", false, "Skip the PageRank prestige index")
	analyzeCmd.Flags().IntVar(&analyzeMaxRoster, "max-participants", 0, "Refuse rosters larger than this (default: from config, 0 = unlimited)")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "Reassemble the report even when a cached one exists")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	id, err := parseResearchID(args[0])
	if err != nil {
		return err
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer closeWorkspace(ws)

	doc, err := ws.Analyze(cmd.Context(), id, analyzeOptions(cmd, ws), analyzeNoCache, uuid.NewString())
	if err != nil {
		return err
	}

	if analyzeQuestion != 0 {
		if err := keepQuestion(doc, survey.QuestionID(analyzeQuestion)); err != nil {
			return err
		}
	}

	return render(cmd, ws, doc)
}

// analyzeOptions applies the analyze flags the user set on top of the
// configured report options.
func analyzeOptions(cmd *cobra.Command, ws *workspace.Workspace) report.Options {
	opts := ws.ReportOptions()
	flags := cmd.Flags()
	if flags.Changed("precision") {
		opts.Precision = analyzePrecision
	}
	if analyzeNoPrestige {
		opts.Prestige = false
	}
	if flags.Changed("max-participants") {
		opts.MaxRosterSize = analyzeMaxRoster
	}
	return opts
}

// keepQuestion drops every per-question report except q.
func keepQuestion(doc *report.AnalysisReportData, q survey.QuestionID) error {
	qr, ok := doc.Analysis.PerQuestion[q]
	if !ok {
		return fmt.Errorf("question %d is not part of research %d", q, doc.Report.ResearchID)
	}
	doc.Analysis.PerQuestion = map[survey.QuestionID]report.QuestionReport{q: qr}
	return nil
}
