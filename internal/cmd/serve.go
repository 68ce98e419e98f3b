package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sociometrix/smx/internal/mcp"
	"github.com/sociometrix/smx/internal/workspace"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio so agents can list
and analyze research projects through tools instead of spawning CLI
commands. Logs go to stderr; stdout carries the protocol.

Available Tools:
  smx_list      Stored research projects, newest first
  smx_analyze   Relations, group indices and individual status of a research
  smx_matrix    Nomination matrices of a research
  smx_sociogram Mermaid or D2 drawing of the nomination graph

Examples:
  smx serve --mcp                          # Start with all tools
  smx serve --mcp --tools analyze,list     # Start with specific tools only
  smx serve --mcp --timeout 30m            # Auto-stop after 30 minutes idle
  smx serve --status                       # Check if server is running
  smx serve --stop                         # Stop running server
  smx serve --list-tools                   # Show available tools`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveMCP       bool
	serveTools     string
	serveTimeout   string
	serveStatus    bool
	serveStop      bool
	serveListTools bool
)

// pidFileName is written inside the .smx directory while a server runs.
const pidFileName = "serve.pid"

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Start MCP server (stdio transport)")
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: all)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "30m", "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveStatus, "status", false, "Check if server is running")
	serveCmd.Flags().BoolVar(&serveStop, "stop", false, "Stop running server")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if serveListTools {
		fmt.Fprintln(out, "Available MCP tools:")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  smx_list      Stored research projects, newest first")
		fmt.Fprintln(out, "  smx_analyze   Relations, group indices and individual status of a research")
		fmt.Fprintln(out, "  smx_matrix    Nomination matrices of a research")
		fmt.Fprintln(out, "  smx_sociogram Mermaid or D2 drawing of the nomination graph")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Default set: %s\n", strings.Join(mcp.DefaultTools, ", "))
		return nil
	}

	if serveStatus {
		return checkServerStatus(cmd)
	}

	if serveStop {
		return stopServer(cmd)
	}

	if !serveMCP {
		return fmt.Errorf("use --mcp to start the MCP server, or --help for usage")
	}

	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer closeWorkspace(ws)

	server, err := mcp.New(ws, mcp.Config{
		Tools:   parseToolList(serveTools),
		Timeout: timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	logger := ws.Logger()
	pidPath := filepath.Join(ws.Dir, pidFileName)
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		logger.Warn("could not write PID file", zap.String("path", pidPath), zap.Error(err))
	}
	defer os.Remove(pidPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("mcp server shutting down", zap.String("signal", sig.String()))
		os.Remove(pidPath)
		closeWorkspace(ws)
		os.Exit(0)
	}()

	return server.ServeStdio()
}

// parseToolList splits a comma-separated tool list. Short names get the
// smx_ prefix (analyze -> smx_analyze).
func parseToolList(s string) []string {
	var tools []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "smx_") {
			t = "smx_" + t
		}
		tools = append(tools, t)
	}
	return tools
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// readPID returns the recorded server PID and the PID file path.
func readPID() (int, string, error) {
	dir, _, err := workspace.Locate(workDir, configPath)
	if err != nil {
		return 0, "", err
	}
	pidPath := filepath.Join(dir, pidFileName)

	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, pidPath, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, pidPath, fmt.Errorf("invalid PID file %s", pidPath)
	}
	return pid, pidPath, nil
}

func checkServerStatus(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	pid, pidPath, err := readPID()
	if err != nil {
		if pidPath == "" {
			fmt.Fprintln(out, "Status: not running (smx not initialized)")
		} else {
			fmt.Fprintln(out, "Status: not running")
		}
		return nil
	}

	// On Unix, FindProcess always succeeds, so signal 0 checks liveness
	process, err := os.FindProcess(pid)
	if err == nil {
		err = process.Signal(syscall.Signal(0))
	}
	if err != nil {
		fmt.Fprintln(out, "Status: not running (stale PID file)")
		os.Remove(pidPath)
		return nil
	}

	fmt.Fprintf(out, "Status: running (PID %d)\n", pid)
	return nil
}

func stopServer(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	pid, pidPath, err := readPID()
	if err != nil {
		if pidPath == "" {
			return err
		}
		fmt.Fprintln(out, "No server running")
		return nil
	}

	process, err := os.FindProcess(pid)
	if err == nil {
		err = process.Signal(syscall.SIGTERM)
	}
	if err != nil {
		os.Remove(pidPath)
		fmt.Fprintln(out, "Server already stopped")
		return nil
	}

	fmt.Fprintf(out, "Stopped server (PID %d)\n", pid)
	return nil
}
