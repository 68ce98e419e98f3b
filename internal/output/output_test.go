package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sociometrix/smx/internal/report"
	"github.com/sociometrix/smx/internal/survey"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"YAML", FormatYAML, false},
		{"json", FormatJSON, false},
		{" table ", FormatTable, false},
		{"markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"cgf", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat_IsTabular(t *testing.T) {
	if FormatYAML.IsTabular() || FormatJSON.IsTabular() {
		t.Error("yaml/json should not be tabular")
	}
	if !FormatTable.IsTabular() || !FormatMarkdown.IsTabular() {
		t.Error("table/markdown should be tabular")
	}
}

func sampleAnalysis(t *testing.T) *report.AnalysisReportData {
	t.Helper()
	roster := survey.NewRoster([]survey.Participant{
		{ID: 1, Name: "Ann"}, {ID: 2, Name: "Bob"}, {ID: 3, Name: "Cat"},
	})
	responses := survey.NewResponseSet(1, []survey.Response{
		{ResearchID: 1, QuestionID: 1, Source: 1, Target: 2},
		{ResearchID: 1, QuestionID: 1, Source: 2, Target: 1},
	})
	questions := []survey.ResearchQuestion{{ResearchID: 1, QuestionID: 1, Text: "Who would you sit with?", ChoiceCount: 1}}

	r, err := report.NewAssembler(report.DefaultOptions()).Assemble(roster, responses, questions)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return report.NewAnalysisReport(survey.Research{ID: 1, Name: "Class 2C"}, r, "run-1")
}

func TestGetFormatter(t *testing.T) {
	for _, f := range []Format{FormatYAML, FormatJSON, FormatTable, FormatMarkdown} {
		if _, err := GetFormatter(f); err != nil {
			t.Errorf("GetFormatter(%s) error = %v", f, err)
		}
	}
	if _, err := GetFormatter(Format("xml")); err == nil {
		t.Error("GetFormatter(xml) expected error")
	}
}

func TestYAMLFormatter_Analysis(t *testing.T) {
	doc := sampleAnalysis(t)

	out, err := NewYAMLFormatter().Format(doc)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, out)
	}
	for _, want := range []string{"type: analysis", "run_id: run-1", "per_question:", "density: inf", "is_fully_connected: false"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONFormatter_Analysis(t *testing.T) {
	doc := sampleAnalysis(t)

	out, err := NewJSONFormatter().Format(doc)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"density": "inf"`) {
		t.Errorf("JSON output missing inf density:\n%s", out)
	}
}

func TestTableFormatter_Analysis(t *testing.T) {
	out, err := NewTableFormatter(ASCII).Format(sampleAnalysis(t))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	for _, want := range []string{"Class 2C", "Ann (1) ↔ Bob (2)", "Cohesion", "inf", "Prestige", "star", "───"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "COHESION") {
		t.Errorf("table header was upper-cased:\n%s", out)
	}
}

func TestNewTable_KeepsHeaderCase(t *testing.T) {
	for _, m := range []Mode{ASCII, Markdown} {
		tb := NewTable(m)
		tb.Header("Participant", "Status")
		tb.Row("Ann", 0.5)
		tb.Footer("Total", 1)
		out := tb.String()

		for _, want := range []string{"Participant", "Status", "Total"} {
			if !strings.Contains(out, want) {
				t.Errorf("mode %d: output missing %q:\n%s", m, want, out)
			}
		}
		if strings.Contains(out, "PARTICIPANT") || strings.Contains(out, "TOTAL") {
			t.Errorf("mode %d: header or footer was upper-cased:\n%s", m, out)
		}
	}
}

func TestTableFormatter_Markdown(t *testing.T) {
	out, err := NewTableFormatter(Markdown).Format(sampleAnalysis(t))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(out, "| Cohesion") {
		t.Errorf("expected markdown header with '| Cohesion':\n%s", out)
	}
}

func TestTableFormatter_Batch(t *testing.T) {
	doc := report.NewBatchReport([]*report.AnalysisReportData{sampleAnalysis(t)}, "run-1")

	out, err := NewTableFormatter(ASCII).Format(doc)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(out, "Research 1: Class 2C") {
		t.Errorf("batch output missing the analysis title:\n%s", out)
	}

	out, err = NewTableFormatter(ASCII).Format(report.NewBatchReport(nil, ""))
	if err != nil {
		t.Fatalf("Format empty batch: %v", err)
	}
	if !strings.Contains(out, "No research analysed") {
		t.Errorf("unexpected empty batch output: %q", out)
	}
}

func TestTableFormatter_Matrix(t *testing.T) {
	matrices := []report.Matrix{{
		Question:     1,
		Participants: []report.ParticipantData{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Bob"}},
		Rows:         [][]bool{{false, true}, {false, false}},
	}}
	doc := report.NewMatrixReport(survey.Research{ID: 4}, matrices, "")

	out, err := NewTableFormatter(ASCII).Format(doc)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	for _, want := range []string{"Nominator", "1 Ann", "Received", "x"} {
		if !strings.Contains(out, want) {
			t.Errorf("matrix output missing %q:\n%s", want, out)
		}
	}
}

func TestTableFormatter_ResearchList(t *testing.T) {
	doc := report.NewResearchList([]survey.Research{
		{ID: 2, Name: "Second", PersonCount: 20, QuestionCount: 3, CreatedAt: time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)},
	}, "")

	out, err := NewTableFormatter(ASCII).Format(doc)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	for _, want := range []string{"Second", "20", "2026-05-04 09:30"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

type rows struct{}

func (rows) TableHeader() []string { return []string{"A", "B"} }
func (rows) TableRows() [][]any    { return [][]any{{"left", 1}} }

func TestTableFormatter_Tabular(t *testing.T) {
	out, err := NewTableFormatter(ASCII).Format(rows{})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(out, "left") {
		t.Errorf("expected row in output:\n%s", out)
	}
}

func TestTableFormatter_Unsupported(t *testing.T) {
	if _, err := NewTableFormatter(ASCII).Format(42); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 2, "ab"},
		{"żółwik żółwik", 8, "żółwi..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
