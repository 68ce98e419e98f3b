// Package cmd contains all CLI commands for smx.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version is the current version of smx
	Version = "0.1.0"

	// Global flags
	verbose      bool
	configPath   string
	workDir      string
	forAgents    bool
	outputFormat string
	logLevel     string
)

// Environment variables read at startup. A .env file in the working
// directory is loaded first; variables already set in the environment win.
const (
	envConfig   = "SMX_CONFIG"
	envLogLevel = "SMX_LOG_LEVEL"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "smx",
	Short: "Sociometric nomination analysis",
	Long: `smx analyses sociometric surveys: every participant of a group names the
members they would choose for a question ("Who would you sit next to?"), and
smx turns those nominations into a graph.

For every research project it reports mutual pairs, nomination chains, stars,
three-person cliques and whether the group is fully connected, together with
the cohesion, density and isolation indices and each participant's
sociometric status.

Output Format:
  Commands print YAML by default. Use --format to switch to JSON, a terminal
  table or Markdown. The default can be changed in .smx/config.yaml.

Workflow:
  smx init                          # Create .smx/ with config and database
  smx import survey.yaml            # Store a research project
  smx list                          # Show stored research
  smx analyze 1                     # Full analysis of research 1
  smx matrix 1 --format table       # Who nominated whom
  smx sociogram 1 > class.mmd       # Mermaid drawing of the group

See 'smx <command> --help' for command-specific options.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvironment,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true

	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .smx/config.yaml, env SMX_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", ".", "Run as if smx was started in this directory")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "Output format: yaml|json|table|markdown (default: from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error (default: from config, env SMX_LOG_LEVEL)")
	rootCmd.Flags().BoolVar(&forAgents, "for-agents", false, "Output machine-readable capability discovery JSON")

	// Set custom help function to intercept --for-agents flag
	originalHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if forAgents {
			outputAgentHelp(cmd)
			return
		}
		originalHelp(cmd, args)
	})
}

// loadEnvironment reads .env from the working directory and applies the
// SMX_* variables to flags the user did not set.
func loadEnvironment(cmd *cobra.Command, args []string) error {
	envFile := filepath.Join(workDir, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}

	flags := cmd.Flags()
	if v := os.Getenv(envConfig); v != "" && !flags.Changed("config") {
		configPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" && !flags.Changed("log-level") {
		logLevel = v
	}
	return nil
}

// CommandInfo represents a command for agent discovery
type CommandInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Flags       []FlagInfo    `json:"flags,omitempty"`
	Subcommands []CommandInfo `json:"subcommands,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
}

// FlagInfo represents a command flag for agent discovery
type FlagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

// outputAgentHelp outputs machine-readable JSON describing all commands
func outputAgentHelp(cmd *cobra.Command) {
	root := buildCommandInfo(cmd.Root())

	output := map[string]interface{}{
		"version":      Version,
		"commands":     root.Subcommands,
		"global_flags": root.Flags,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

// buildCommandInfo recursively builds command information for agent discovery
func buildCommandInfo(cmd *cobra.Command) CommandInfo {
	info := CommandInfo{
		Name:        cmd.Name(),
		Description: cmd.Short,
		Usage:       cmd.UseLine(),
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		info.Flags = append(info.Flags, FlagInfo{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
		})
	})

	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			info.Subcommands = append(info.Subcommands, buildCommandInfo(sub))
		}
	}

	if cmd.Example != "" {
		for _, line := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" {
				info.Examples = append(info.Examples, trimmed)
			}
		}
	}

	return info
}
