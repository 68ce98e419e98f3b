package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management commands",
	Long:  `Commands for managing the research database and the report cache in .smx.`,
}

var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show database statistics",
	Long:  `Display the storage backend, the number of stored research projects, and the size and contents of the report cache.`,
	Args:  cobra.NoArgs,
	RunE:  runDbInfo,
}

var dbClearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Drop every cached analysis report",
	Long: `Remove all cached reports from .smx/cache.db. The research database is
not touched; the next analysis of each research assembles its report again.`,
	Args: cobra.NoArgs,
	RunE: runDbClearCache,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInfoCmd)
	dbCmd.AddCommand(dbClearCacheCmd)
}

func runDbInfo(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer closeWorkspace(ws)

	research, err := ws.Store().ListResearch(cmd.Context())
	if err != nil {
		return fmt.Errorf("count research: %w", err)
	}

	stats, err := ws.Cache().GetStats()
	if err != nil {
		return err
	}

	cacheSize := "unknown"
	if fileInfo, err := os.Stat(ws.Cache().Path()); err == nil {
		cacheSize = formatBytes(fileInfo.Size())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database: %s (%s)\n", ws.Store().Path(), ws.Store().Backend())
	fmt.Fprintf(out, "Research: %d\n", len(research))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Cache: %s\n", ws.Cache().Path())
	fmt.Fprintf(out, "Size: %s\n", cacheSize)
	fmt.Fprintf(out, "Cached reports: %d (%d research)\n", stats.Reports, stats.Research)
	return nil
}

func runDbClearCache(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer closeWorkspace(ws)

	stats, err := ws.Cache().GetStats()
	if err != nil {
		return err
	}
	if err := ws.Cache().Clear(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached reports\n", stats.Reports)
	return nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
