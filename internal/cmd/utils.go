package cmd

import (
	"fmt"
	"strconv"

	"github.com/sociometrix/smx/internal/config"
	"github.com/sociometrix/smx/internal/logging"
	"github.com/sociometrix/smx/internal/output"
	"github.com/sociometrix/smx/internal/survey"
	"github.com/sociometrix/smx/internal/workspace"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Shared utility functions for command implementations

// openWorkspace locates the workspace, builds the logger from its logging
// settings and opens the store.
func openWorkspace() (*workspace.Workspace, error) {
	dir, cfg, err := workspace.Locate(workDir, configPath)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	ws, err := workspace.OpenConfig(dir, cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	return ws, nil
}

// closeWorkspace flushes the logger and closes the store.
func closeWorkspace(ws *workspace.Workspace) {
	ws.Logger().Sync()
	ws.Close()
}

// newLogger builds the zap logger. --verbose wins over --log-level, which
// wins over the config file.
func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := cfg.Level
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(level, cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	return logger, nil
}

// resolveFormat returns the --format flag or the configured default.
func resolveFormat(cfg *config.Config) (output.Format, error) {
	name := cfg.Output.Format
	if outputFormat != "" {
		name = outputFormat
	}
	return output.ParseFormat(name)
}

// render writes v to the command's output in the resolved format.
func render(cmd *cobra.Command, ws *workspace.Workspace, v interface{}) error {
	format, err := resolveFormat(ws.Config)
	if err != nil {
		return err
	}

	formatter, err := output.GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(cmd.OutOrStdout(), v)
}

// parseResearchID parses a positional research id argument.
func parseResearchID(arg string) (survey.ResearchID, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid research id %q: expected a positive integer", arg)
	}
	return survey.ResearchID(id), nil
}
