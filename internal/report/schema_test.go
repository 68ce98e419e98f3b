package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sociometrix/smx/internal/survey"
	"gopkg.in/yaml.v3"
)

func TestReportType_String(t *testing.T) {
	tests := []struct {
		rt   ReportType
		want string
	}{
		{ReportTypeAnalysis, "analysis"},
		{ReportTypeMatrix, "matrix"},
		{ReportTypeResearch, "research"},
		{ReportTypeBatch, "batch"},
	}

	for _, tt := range tests {
		t.Run(string(tt.rt), func(t *testing.T) {
			if got := tt.rt.String(); got != tt.want {
				t.Errorf("ReportType.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseReportType(t *testing.T) {
	tests := []struct {
		input   string
		want    ReportType
		wantErr bool
	}{
		{"analysis", ReportTypeAnalysis, false},
		{"MATRIX", ReportTypeMatrix, false},
		{"  research  ", ReportTypeResearch, false},
		{"batch", ReportTypeBatch, false},
		{"overview", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseReportType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseReportType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseReportType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateReportType(t *testing.T) {
	if !ValidateReportType(ReportTypeAnalysis) {
		t.Error("ValidateReportType(analysis) = false, want true")
	}
	if ValidateReportType(ReportType("feature")) {
		t.Error("ValidateReportType(feature) = true, want false")
	}
}

func TestNewAnalysisReport(t *testing.T) {
	research := survey.Research{ID: 7, Name: "Class 3B"}

	before := time.Now()
	doc := NewAnalysisReport(research, &Report{Research: 7}, "run-1")
	after := time.Now()

	if doc.Report.Type != ReportTypeAnalysis {
		t.Errorf("Report.Type = %v, want %v", doc.Report.Type, ReportTypeAnalysis)
	}
	if doc.Report.GeneratedAt.Before(before) || doc.Report.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt %v not in range [%v, %v]", doc.Report.GeneratedAt, before, after)
	}
	if doc.Report.ResearchID != 7 || doc.Report.Name != "Class 3B" || doc.Report.RunID != "run-1" {
		t.Errorf("Report header = %+v", doc.Report)
	}
}

func TestNewMatrixReport_NilMatrices(t *testing.T) {
	doc := NewMatrixReport(survey.Research{ID: 1}, nil, "")

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"matrices":[]`) {
		t.Errorf("expected empty matrices array, got %s", data)
	}
	if strings.Contains(string(data), "run_id") {
		t.Errorf("expected run_id to be omitted, got %s", data)
	}
}

func TestNewResearchList_KeepsOrder(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	list := NewResearchList([]survey.Research{
		{ID: 3, Name: "newest", PersonCount: 12, QuestionCount: 2, CreatedAt: created},
		{ID: 1, Name: "oldest", PersonCount: 8, QuestionCount: 1, CreatedAt: created.Add(-time.Hour)},
	}, "run")

	if list.Report.Type != ReportTypeResearch {
		t.Errorf("Report.Type = %v, want %v", list.Report.Type, ReportTypeResearch)
	}
	if len(list.Research) != 2 || list.Research[0].ID != 3 || list.Research[1].ID != 1 {
		t.Fatalf("Research = %+v, want ids [3 1]", list.Research)
	}

	out, err := yaml.Marshal(list)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	for _, want := range []string{"type: research", "name: newest", "person_count: 12", "question_count: 2"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("yaml output missing %q:\n%s", want, out)
		}
	}
}

func TestNewBatchReport(t *testing.T) {
	empty := NewBatchReport(nil, "run")
	if empty.Analyses == nil {
		t.Error("Analyses should be an empty slice, not nil")
	}
	if empty.Report.Type != ReportTypeBatch || empty.Report.RunID != "run" {
		t.Errorf("header = %+v, expected batch/run", empty.Report)
	}

	first := NewAnalysisReport(survey.Research{ID: 2, Name: "b"}, &Report{Research: 2}, "run")
	second := NewAnalysisReport(survey.Research{ID: 1, Name: "a"}, &Report{Research: 1}, "run")
	doc := NewBatchReport([]*AnalysisReportData{first, second}, "run")
	if len(doc.Analyses) != 2 || doc.Analyses[0].Report.ResearchID != 2 {
		t.Errorf("analyses reordered: %+v", doc.Analyses)
	}
}
