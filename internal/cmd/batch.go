package cmd

import (
	"runtime"

	"github.com/google/uuid"
	"github.com/sociometrix/smx/internal/report"
	"github.com/sociometrix/smx/internal/survey"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [research-id...]",
	Short: "Analyze several research projects in parallel",
	Long: `Analyze several research projects concurrently and print the reports
together, in the order the ids were given. Without ids every stored research
is analysed, newest first.

All reports share one run id. The first failing analysis aborts the batch.

Examples:
  smx batch                 # Every stored research
  smx batch 1 3 4           # Selected research
  smx batch --jobs 2        # At most two analyses at a time`,
	RunE: runBatch,
}

var batchJobs int

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchJobs, "jobs", runtime.NumCPU(), "Maximum number of concurrent analyses")
	batchCmd.Flags().IntVar(&analyzePrecision, "precision", 0, "Decimal places for indices, -1 for full precision (default: from config)")
	batchCmd.Flags().BoolVar(&analyzeNoPrestige, "no-prestige", false, "Skip the PageRank prestige index")
	batchCmd.Flags().IntVar(&analyzeMaxRoster, "max-participants", 0, "Refuse rosters larger than this (default: from config, 0 = unlimited)")
	batchCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "Reassemble reports even when cached ones exist")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ids := make([]survey.ResearchID, 0, len(args))
	for _, arg := range args {
		id, err := parseResearchID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer closeWorkspace(ws)

	ctx := cmd.Context()
	if len(ids) == 0 {
		all, err := ws.Store().ListResearch(ctx)
		if err != nil {
			return err
		}
		for _, r := range all {
			ids = append(ids, r.ID)
		}
	}

	runID := uuid.NewString()
	opts := analyzeOptions(cmd, ws)
	results := make([]*report.AnalysisReportData, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	if batchJobs > 0 {
		g.SetLimit(batchJobs)
	}
	for i, id := range ids {
		g.Go(func() error {
			doc, err := ws.Analyze(gctx, id, opts, analyzeNoCache, runID)
			if err != nil {
				return err
			}
			results[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ws.Logger().Info("batch finished",
		zap.String("run_id", runID),
		zap.Int("research", len(ids)),
	)
	return render(cmd, ws, report.NewBatchReport(results, runID))
}
