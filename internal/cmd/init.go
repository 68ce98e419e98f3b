// Package cmd implements the init command for smx CLI.
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sociometrix/smx/internal/config"
	"github.com/sociometrix/smx/internal/workspace"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .smx directory and database",
	Long: `Initialize the .smx directory in the current directory.

This writes .smx/config.yaml with default settings and creates the research
database it points to (smx.db, a SQLite file), next to the report cache
(cache.db). Edit the config to switch to the Dolt backend, which records
every import and deletion as a commit.

Running init again keeps the existing config and database.

Examples:
  smx init           # Initialize in current directory
  smx init -C class  # Initialize in ./class`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(config.DefaultConfig().Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ws, created, err := workspace.Init(workDir, logger)
	if err != nil {
		return fmt.Errorf("initializing workspace: %w", err)
	}
	defer ws.Close()

	relPath := ws.Dir
	if abs, err := filepath.Abs(workDir); err == nil {
		if rel, err := filepath.Rel(abs, ws.Dir); err == nil {
			relPath = rel
		}
	}

	out := cmd.OutOrStdout()
	if !created {
		fmt.Fprintf(out, "Already initialized at %s\n", relPath)
		return nil
	}

	fmt.Fprintf(out, "Initialized smx workspace at %s\n", relPath)
	fmt.Fprintf(out, "  config:  %s\n", filepath.Join(relPath, config.ConfigFileName))
	fmt.Fprintf(out, "  storage: %s (%s)\n", ws.Config.Storage.Path, ws.Config.Storage.Backend)
	return nil
}
