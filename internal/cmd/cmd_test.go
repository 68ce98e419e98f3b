package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sociometrix/smx/internal/report"
	"github.com/sociometrix/smx/internal/store"
	"github.com/sociometrix/smx/internal/survey"
	"github.com/sociometrix/smx/internal/workspace"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const classroom = "testdata/classroom.yaml"

// resetFlags restores every flag of c and its subcommands to its default,
// since the command tree is shared between test runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(envConfig, "")
	t.Setenv(envLogLevel, "")

	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return buf.String(), err
}

// mustRun is run that fails the test on error.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("smx %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// initialized returns a directory with an initialized workspace holding the
// classroom research as id 1.
func initialized(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mustRun(t, "init", "-C", dir)

	abs, err := filepath.Abs(classroom)
	if err != nil {
		t.Fatal(err)
	}
	mustRun(t, "import", abs, "-C", dir)
	return dir
}

func TestRootCmd_Structure(t *testing.T) {
	expected := []string{"init", "import", "list", "show", "analyze", "matrix", "sociogram", "batch", "delete", "history", "questions", "db", "serve"}

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("missing command: %s", name)
		}
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, "init", "-C", dir)
	if !strings.Contains(out, "Initialized smx workspace at .smx") {
		t.Errorf("unexpected init output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, ".smx", "config.yaml")); err != nil {
		t.Errorf("config file missing: %v", err)
	}

	out = mustRun(t, "init", "-C", dir)
	if !strings.Contains(out, "Already initialized") {
		t.Errorf("second init should report existing workspace:\n%s", out)
	}
}

func TestCommands_NotInitialized(t *testing.T) {
	dir := t.TempDir()

	for _, args := range [][]string{{"list"}, {"analyze", "1"}, {"import", classroom}} {
		_, err := run(t, append(args, "-C", dir)...)
		if !errors.Is(err, workspace.ErrNotInitialized) {
			t.Errorf("smx %v error = %v, expected ErrNotInitialized", args, err)
		}
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, "init", "-C", dir)

	abs, _ := filepath.Abs(classroom)
	out := mustRun(t, "import", abs, "-C", dir)
	if !strings.Contains(out, "Imported research 1 (Class 5B, autumn): 4 participants, 2 questions") {
		t.Errorf("unexpected import output:\n%s", out)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("research: {name: x}\nquestions: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := run(t, "import", bad, "-C", dir)
	if !errors.Is(err, survey.ErrInvalidDataset) {
		t.Errorf("import error = %v, expected ErrInvalidDataset", err)
	}
}

func TestList(t *testing.T) {
	dir := initialized(t)

	out := mustRun(t, "list", "-C", dir)
	var doc report.ResearchListData
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("list output is not YAML: %v\n%s", err, out)
	}
	if len(doc.Research) != 1 || doc.Research[0].Name != "Class 5B, autumn" {
		t.Errorf("list = %+v, expected the classroom research", doc.Research)
	}

	out = mustRun(t, "list", "-C", dir, "--format", "table")
	if !strings.Contains(out, "Class 5B, autumn") || !strings.Contains(out, "Participants") {
		t.Errorf("unexpected table output:\n%s", out)
	}
}

func TestQuestions(t *testing.T) {
	dir := initialized(t)
	abs, _ := filepath.Abs(classroom)
	mustRun(t, "import", abs, "-C", dir)

	out := mustRun(t, "questions", "-C", dir)
	var doc QuestionsOutput
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("questions output is not YAML: %v\n%s", err, out)
	}
	if doc.Total != 2 || len(doc.Questions) != 2 {
		t.Fatalf("questions = %+v, expected the two classroom questions", doc)
	}
	for _, q := range doc.Questions {
		if q.Research != 2 {
			t.Errorf("question %d asked by %d research, expected 2", q.ID, q.Research)
		}
	}

	out = mustRun(t, "questions", "-C", dir, "--format", "table")
	for _, want := range []string{"Research", "Who would you take on a school trip?"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestShow(t *testing.T) {
	dir := initialized(t)

	out := mustRun(t, "show", "1", "-C", dir, "--format", "json")
	var detail ResearchDetail
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatalf("show output is not JSON: %v\n%s", err, out)
	}
	if len(detail.Participants) != 4 || len(detail.Questions) != 2 {
		t.Fatalf("detail = %+v, expected 4 participants and 2 questions", detail)
	}
	if detail.Responses != 9 {
		t.Errorf("Responses = %d, expected 9", detail.Responses)
	}

	// Ann is nominated on the desk question by Bob and Cat and on the trip
	// question by Bob and Cat.
	ann := detail.Participants[0]
	if ann.Name != "Ann" || ann.Given != 3 || ann.Received != 4 {
		t.Errorf("Ann = %+v, expected given 3 and received 4", ann)
	}
	dan := detail.Participants[3]
	if dan.Given != 0 || dan.Received != 0 {
		t.Errorf("Dan = %+v, expected no nominations", dan)
	}

	out = mustRun(t, "show", "1", "-C", dir, "--format", "table")
	if !strings.Contains(out, "Received") || !strings.Contains(out, "Dan") {
		t.Errorf("unexpected table output:\n%s", out)
	}

	if _, err := run(t, "show", "7", "-C", dir); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("show 7 error = %v, expected ErrNotFound", err)
	}
}

func TestAnalyze(t *testing.T) {
	dir := initialized(t)

	out := mustRun(t, "analyze", "1", "-C", dir, "--format", "json")
	var doc report.AnalysisReportData
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("analyze output is not JSON: %v\n%s", err, out)
	}
	if doc.Report.Type != report.ReportTypeAnalysis || doc.Report.RunID == "" {
		t.Errorf("header = %+v, expected an analysis with a run id", doc.Report)
	}
	if got := len(doc.Analysis.PerQuestion); got != 2 {
		t.Fatalf("PerQuestion has %d entries, expected 2", got)
	}

	// Desk question: Ann and Bob are the only mutual pair, k=1, n=4.
	desk := doc.Analysis.PerQuestion[1]
	if len(desk.Relations.Pairs) != 1 {
		t.Errorf("desk pairs = %v, expected one", desk.Relations.Pairs)
	}
	if desk.Group.Cohesion != 0.5 {
		t.Errorf("desk cohesion = %v, expected 0.5", desk.Group.Cohesion)
	}
	if len(desk.Relations.Stars) != 1 || desk.Relations.Stars[0] != 1 {
		t.Errorf("desk stars = %v, expected Ann", desk.Relations.Stars)
	}

	out = mustRun(t, "analyze", "1", "-C", dir, "--format", "json", "--question", "2", "--precision", "-1", "--no-prestige")
	doc = report.AnalysisReportData{}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decoding filtered analysis: %v", err)
	}
	trip, ok := doc.Analysis.PerQuestion[2]
	if !ok || len(doc.Analysis.PerQuestion) != 1 {
		t.Fatalf("expected only question 2, got %v", doc.Analysis.Questions())
	}
	if trip.Individual[0].Prestige != nil {
		t.Error("prestige should be omitted with --no-prestige")
	}
	if len(trip.Relations.Cliques) != 1 {
		t.Errorf("trip cliques = %v, expected Ann, Bob and Cat", trip.Relations.Cliques)
	}

	out = mustRun(t, "analyze", "1", "-C", dir, "--format", "table")
	for _, want := range []string{"Class 5B, autumn", "Cohesion", "Status"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyze_Errors(t *testing.T) {
	dir := initialized(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad id", []string{"analyze", "abc"}, "invalid research id"},
		{"zero id", []string{"analyze", "0"}, "invalid research id"},
		{"missing research", []string{"analyze", "9"}, "research not found"},
		{"unknown question", []string{"analyze", "1", "--question", "9"}, "question 9 is not part of research 1"},
		{"roster limit", []string{"analyze", "1", "--max-participants", "3"}, "roster too large"},
		{"bad format", []string{"analyze", "1", "--format", "xml"}, "invalid format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(tt.args, "-C", dir)...)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, expected it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMatrix(t *testing.T) {
	dir := initialized(t)

	out := mustRun(t, "matrix", "1", "-C", dir, "--format", "json", "--question", "1")
	var doc report.MatrixReportData
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("matrix output is not JSON: %v\n%s", err, out)
	}
	if len(doc.Matrices) != 1 {
		t.Fatalf("expected one matrix, got %d", len(doc.Matrices))
	}
	m := doc.Matrices[0]
	if !m.Nominated(0, 1) || !m.Nominated(2, 0) || m.Nominated(0, 2) {
		t.Errorf("desk matrix = %v", m.Rows)
	}

	out = mustRun(t, "matrix", "1", "-C", dir, "--format", "markdown")
	if !strings.Contains(out, "| ") || !strings.Contains(out, "Received") {
		t.Errorf("unexpected markdown output:\n%s", out)
	}
}

func TestBatch(t *testing.T) {
	dir := initialized(t)
	abs, _ := filepath.Abs(classroom)
	mustRun(t, "import", abs, "-C", dir)

	out := mustRun(t, "batch", "-C", dir, "--format", "json", "--jobs", "2")
	var doc report.BatchReportData
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("batch output is not JSON: %v\n%s", err, out)
	}
	if len(doc.Analyses) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(doc.Analyses))
	}
	// Without ids the newest research comes first.
	if doc.Analyses[0].Report.ResearchID != 2 || doc.Analyses[1].Report.ResearchID != 1 {
		t.Errorf("order = %d, %d, expected 2, 1", doc.Analyses[0].Report.ResearchID, doc.Analyses[1].Report.ResearchID)
	}
	for _, a := range doc.Analyses {
		if a.Report.RunID != doc.Report.RunID {
			t.Errorf("analysis run id %q differs from batch run id %q", a.Report.RunID, doc.Report.RunID)
		}
	}

	out = mustRun(t, "batch", "1", "2", "-C", dir, "--format", "json")
	doc = report.BatchReportData{}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decoding batch: %v", err)
	}
	if doc.Analyses[0].Report.ResearchID != 1 {
		t.Errorf("explicit ids should keep their order, got %d first", doc.Analyses[0].Report.ResearchID)
	}

	if _, err := run(t, "batch", "1", "5", "-C", dir); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("batch with a missing id error = %v, expected ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	dir := initialized(t)

	out := mustRun(t, "delete", "1", "-C", dir)
	if !strings.Contains(out, "Deleted research 1") {
		t.Errorf("unexpected delete output:\n%s", out)
	}

	if _, err := run(t, "delete", "1", "-C", dir); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete error = %v, expected ErrNotFound", err)
	}
}

func TestHistory_SQLite(t *testing.T) {
	dir := initialized(t)

	_, err := run(t, "history", "-C", dir)
	if !errors.Is(err, store.ErrUnversioned) {
		t.Errorf("history error = %v, expected ErrUnversioned", err)
	}
}

func TestForAgents(t *testing.T) {
	out := mustRun(t, "--for-agents")

	var doc struct {
		Version  string        `json:"version"`
		Commands []CommandInfo `json:"commands"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("--for-agents output is not JSON: %v\n%s", err, out)
	}
	if doc.Version != Version {
		t.Errorf("version = %q, expected %q", doc.Version, Version)
	}

	found := false
	for _, c := range doc.Commands {
		if c.Name == "analyze" {
			found = true
			if len(c.Flags) == 0 {
				t.Error("analyze should list its flags")
			}
		}
	}
	if !found {
		t.Error("analyze missing from command list")
	}
}

func TestLoadEnvironment(t *testing.T) {
	dir := initialized(t)

	custom := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(custom, []byte("output:\n  format: json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	env := "SMX_CONFIG=" + custom + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(envConfig) })

	// run sets SMX_CONFIG to an empty value, which godotenv will not
	// override, so clear it first.
	resetFlags(rootCmd)
	os.Unsetenv(envConfig)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"list", "-C", dir, "--log-level", "error"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("list: %v", err)
	}

	if configPath != custom {
		t.Errorf("configPath = %q, expected %q from .env", configPath, custom)
	}
	// The custom config points at an empty store next to it, in JSON.
	var doc report.ResearchListData
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("expected JSON output from the .env config: %v\n%s", err, buf.String())
	}
	if len(doc.Research) != 0 {
		t.Errorf("expected the custom store to be empty, got %d research", len(doc.Research))
	}
}

func TestParseResearchID(t *testing.T) {
	tests := []struct {
		in      string
		want    survey.ResearchID
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"1.5", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := parseResearchID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseResearchID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseResearchID(%q) = %d, expected %d", tt.in, got, tt.want)
		}
	}
}

func TestParseToolList(t *testing.T) {
	got := parseToolList(" analyze, smx_list,,matrix ")
	want := []string{"smx_analyze", "smx_list", "smx_matrix"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("parseToolList() = %v, expected %v", got, want)
	}
	if parseToolList("") != nil {
		t.Error("empty list should give nil")
	}
}

func TestServe_ListTools(t *testing.T) {
	out := mustRun(t, "serve", "--list-tools")
	for _, tool := range []string{"smx_list", "smx_analyze", "smx_matrix", "smx_sociogram"} {
		if !strings.Contains(out, tool) {
			t.Errorf("--list-tools output missing %s:\n%s", tool, out)
		}
	}

	if _, err := run(t, "serve", "-C", t.TempDir()); err == nil {
		t.Error("serve without --mcp should fail")
	}

	out = mustRun(t, "serve", "--status", "-C", t.TempDir())
	if !strings.Contains(out, "not running") {
		t.Errorf("unexpected status output:\n%s", out)
	}
}

func TestDb_InfoAndClearCache(t *testing.T) {
	dir := initialized(t)
	mustRun(t, "analyze", "1", "-C", dir)
	mustRun(t, "analyze", "1", "--precision", "-1", "-C", dir)

	out := mustRun(t, "db", "info", "-C", dir)
	for _, want := range []string{"Research: 1", "Cached reports: 2 (1 research)", "cache.db"} {
		if !strings.Contains(out, want) {
			t.Errorf("db info output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "db", "clear-cache", "-C", dir)
	if !strings.Contains(out, "Cleared 2 cached reports") {
		t.Errorf("unexpected clear-cache output:\n%s", out)
	}
	out = mustRun(t, "db", "info", "-C", dir)
	if !strings.Contains(out, "Cached reports: 0 (0 research)") {
		t.Errorf("cache not cleared:\n%s", out)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSociogram(t *testing.T) {
	dir := initialized(t)

	out := mustRun(t, "sociogram", "1", "-C", dir)
	for _, want := range []string{"title: \"Class 5B, autumn\"", "flowchart LR", "p1 <--> p2", "p1 <--> p3", "p2 <--> p3"} {
		if !strings.Contains(out, want) {
			t.Errorf("sociogram output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "sociogram", "1", "--question", "1", "--diagram", "d2", "--title", "Desk", "-C", dir)
	for _, want := range []string{"direction: right", "label: \"Desk\"", "p1 <-> p2", "p3 -> p1"} {
		if !strings.Contains(out, want) {
			t.Errorf("d2 output missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "sociogram", "1", "--diagram", "svg", "-C", dir); err == nil {
		t.Error("expected an error for an unknown diagram language")
	}
	if _, err := run(t, "sociogram", "1", "--question", "7", "-C", dir); err == nil {
		t.Error("expected an error for an unknown question")
	}
}
