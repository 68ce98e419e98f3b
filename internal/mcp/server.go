// Package mcp provides an MCP (Model Context Protocol) server for smx.
// Agents query stored research projects through MCP tools instead of
// spawning CLI commands.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sociometrix/smx/internal/graph"
	"github.com/sociometrix/smx/internal/report"
	"github.com/sociometrix/smx/internal/survey"
	"github.com/sociometrix/smx/internal/workspace"
	"go.uber.org/zap"
)

// Server wraps the MCP server with smx-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	ws           *workspace.Workspace
	logger       *zap.Logger
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// DefaultTools is the default set of tools to expose
var DefaultTools = []string{"smx_list", "smx_analyze", "smx_matrix", "smx_sociogram"}

// AllTools lists all available tools
var AllTools = []string{"smx_list", "smx_analyze", "smx_matrix", "smx_sociogram"}

// Version is reported to MCP clients during initialization.
var Version = "0.1.0"

// New creates an MCP server backed by an opened workspace. The server does
// not take ownership of ws.
func New(ws *workspace.Workspace, cfg Config) (*Server, error) {
	mcpServer := server.NewMCPServer(
		"smx",
		Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		ws:           ws,
		logger:       ws.Logger(),
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case "smx_list":
		return s.registerListTool()
	case "smx_analyze":
		return s.registerAnalyzeTool()
	case "smx_matrix":
		return s.registerMatrixTool()
	case "smx_sociogram":
		return s.registerSociogramTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	s.logger.Info("mcp server started",
		zap.Strings("tools", s.ListTools()),
		zap.Duration("timeout", s.timeout),
	)
	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if s.idleFor() > s.timeout {
			s.logger.Info("mcp server stopping after inactivity", zap.Duration("timeout", s.timeout))
			s.logger.Sync()
			os.Exit(0)
		}
	}
}

func (s *Server) idleFor() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastActivity)
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the registered tools in AllTools order
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for _, t := range AllTools {
		if s.tools[t] {
			tools = append(tools, t)
		}
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"smx_list": {
		Name:        "smx_list",
		Description: "List stored research projects, newest first, with participant and question counts.",
		Parameters:  []ParameterSchema{},
	},
	"smx_analyze": {
		Name:        "smx_analyze",
		Description: "Analyze a research project: mutual pairs, chains, stars, cliques, group indices and per-participant status.",
		Parameters: []ParameterSchema{
			{Name: "research_id", Type: "number", Description: "Research id as shown by smx_list", Required: true},
			{Name: "question", Type: "number", Description: "Only include this question id in the per-question section"},
			{Name: "precision", Type: "number", Description: "Decimal places for indices (default: from config, -1 for full precision)"},
		},
	},
	"smx_matrix": {
		Name:        "smx_matrix",
		Description: "Nomination matrices of a research project: one square matrix per question, rows nominate columns.",
		Parameters: []ParameterSchema{
			{Name: "research_id", Type: "number", Description: "Research id as shown by smx_list", Required: true},
			{Name: "question", Type: "number", Description: "Only return the matrix of this question id"},
		},
	},
	"smx_sociogram": {
		Name:        "smx_sociogram",
		Description: "Draw the nomination graph of a research project as Mermaid or D2 source. Stars and isolated participants are styled.",
		Parameters: []ParameterSchema{
			{Name: "research_id", Type: "number", Description: "Research id as shown by smx_list", Required: true},
			{Name: "question", Type: "number", Description: "Draw only this question id (default: all questions merged)"},
			{Name: "diagram", Type: "string", Description: "Diagram language: mermaid (default) or d2"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	names := s.ListTools()
	schemas := make([]ToolSchema, 0, len(names))
	for _, name := range names {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'smx serve --list-tools' to see available tools)", name)
	}

	switch name {
	case "smx_list":
		return s.executeList(ctx)

	case "smx_analyze":
		id, err := researchArg(args)
		if err != nil {
			return "", err
		}
		question := questionArg(args)
		precision := s.ws.ReportOptions().Precision
		if p, ok := args["precision"].(float64); ok {
			precision = int(p)
		}
		return s.executeAnalyze(ctx, id, question, precision)

	case "smx_matrix":
		id, err := researchArg(args)
		if err != nil {
			return "", err
		}
		return s.executeMatrix(ctx, id, questionArg(args))

	case "smx_sociogram":
		id, err := researchArg(args)
		if err != nil {
			return "", err
		}
		diagram, _ := args["diagram"].(string)
		return s.executeSociogram(ctx, id, questionArg(args), diagram)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// registerListTool registers the smx_list tool
func (s *Server) registerListTool() error {
	tool := mcp.NewTool("smx_list",
		mcp.WithDescription("List stored research projects, newest first, with participant and question counts."),
	)

	s.mcpServer.AddTool(tool, s.handleList)
	return nil
}

// registerAnalyzeTool registers the smx_analyze tool
func (s *Server) registerAnalyzeTool() error {
	tool := mcp.NewTool("smx_analyze",
		mcp.WithDescription("Analyze a research project: mutual pairs, chains, stars, cliques, group indices and per-participant status."),
		mcp.WithNumber("research_id",
			mcp.Required(),
			mcp.Description("Research id as shown by smx_list"),
		),
		mcp.WithNumber("question",
			mcp.Description("Only include this question id in the per-question section"),
		),
		mcp.WithNumber("precision",
			mcp.Description("Decimal places for indices (default: from config, -1 for full precision)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleAnalyze)
	return nil
}

// registerMatrixTool registers the smx_matrix tool
func (s *Server) registerMatrixTool() error {
	tool := mcp.NewTool("smx_matrix",
		mcp.WithDescription("Nomination matrices of a research project: one square matrix per question, rows nominate columns."),
		mcp.WithNumber("research_id",
			mcp.Required(),
			mcp.Description("Research id as shown by smx_list"),
		),
		mcp.WithNumber("question",
			mcp.Description("Only return the matrix of this question id"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleMatrix)
	return nil
}

// registerSociogramTool registers the smx_sociogram tool
func (s *Server) registerSociogramTool() error {
	tool := mcp.NewTool("smx_sociogram",
		mcp.WithDescription("Draw the nomination graph of a research project as Mermaid or D2 source. Stars and isolated participants are styled."),
		mcp.WithNumber("research_id",
			mcp.Required(),
			mcp.Description("Research id as shown by smx_list"),
		),
		mcp.WithNumber("question",
			mcp.Description("Draw only this question id (default: all questions merged)"),
		),
		mcp.WithString("diagram",
			mcp.Description("Diagram language: mermaid (default) or d2"),
			mcp.Enum("mermaid", "d2"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleSociogram)
	return nil
}

// Tool handlers

func (s *Server) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	result, err := s.executeList(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	id, err := researchArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	precision := s.ws.ReportOptions().Precision
	if p, ok := args["precision"].(float64); ok {
		precision = int(p)
	}

	result, err := s.executeAnalyze(ctx, id, questionArg(args), precision)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleMatrix(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	id, err := researchArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.executeMatrix(ctx, id, questionArg(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleSociogram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	id, err := researchArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	diagram, _ := args["diagram"].(string)

	result, err := s.executeSociogram(ctx, id, questionArg(args), diagram)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

// Tool implementations

func (s *Server) executeList(ctx context.Context) (string, error) {
	doc, err := s.ws.List(ctx, uuid.NewString())
	if err != nil {
		return "", err
	}
	return toJSON(doc)
}

func (s *Server) executeAnalyze(ctx context.Context, id survey.ResearchID, question *survey.QuestionID, precision int) (string, error) {
	opts := s.ws.ReportOptions()
	opts.Precision = precision

	doc, err := s.ws.Analyze(ctx, id, opts, false, uuid.NewString())
	if err != nil {
		return "", err
	}

	if question != nil {
		qr, ok := doc.Analysis.PerQuestion[*question]
		if !ok {
			return "", fmt.Errorf("question %d is not part of research %d", *question, id)
		}
		doc.Analysis.PerQuestion = map[survey.QuestionID]report.QuestionReport{*question: qr}
	}

	return toJSON(doc)
}

func (s *Server) executeMatrix(ctx context.Context, id survey.ResearchID, question *survey.QuestionID) (string, error) {
	doc, err := s.ws.Matrices(ctx, id, uuid.NewString())
	if err != nil {
		return "", err
	}

	if question != nil {
		var kept []report.Matrix
		for _, m := range doc.Matrices {
			if m.Question == *question {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			return "", fmt.Errorf("question %d is not part of research %d", *question, id)
		}
		doc.Matrices = kept
	}

	return toJSON(doc)
}

func (s *Server) executeSociogram(ctx context.Context, id survey.ResearchID, question *survey.QuestionID, diagram string) (string, error) {
	sg, research, err := s.ws.Sociogram(ctx, id, question)
	if err != nil {
		return "", err
	}

	switch diagram {
	case "", "mermaid":
		opts := graph.DefaultMermaidOptions()
		opts.Title = research.Name
		return sg.Mermaid(opts), nil
	case "d2":
		opts := graph.DefaultD2Options()
		opts.Title = research.Name
		return sg.D2(opts), nil
	default:
		return "", fmt.Errorf("invalid diagram %q: must be mermaid or d2", diagram)
	}
}

// Helper functions

// researchArg reads the required research_id argument. JSON numbers arrive
// as float64.
func researchArg(args map[string]interface{}) (survey.ResearchID, error) {
	v, ok := args["research_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("research_id parameter is required")
	}
	if v <= 0 || v != float64(int64(v)) {
		return 0, fmt.Errorf("research_id must be a positive integer, got %v", v)
	}
	return survey.ResearchID(v), nil
}

func questionArg(args map[string]interface{}) *survey.QuestionID {
	v, ok := args["question"].(float64)
	if !ok {
		return nil
	}
	q := survey.QuestionID(v)
	return &q
}

func toJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
