// Package report assembles sociometric analysis results into the structured
// documents consumed by the CLI and the MCP server.
//
// Assembler.Assemble is pure: it never mutates its inputs and two calls with
// the same inputs return deep-equal reports. Anything time or run dependent
// (generation timestamp, run id) lives in the ReportHeader envelope, which
// callers attach separately.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/sociometrix/smx/internal/survey"
)

// ReportType represents the type of document being generated.
type ReportType string

const (
	// ReportTypeAnalysis is the full relation and metrics report of one
	// research.
	ReportTypeAnalysis ReportType = "analysis"

	// ReportTypeMatrix holds the per-question nomination matrices.
	ReportTypeMatrix ReportType = "matrix"

	// ReportTypeResearch lists stored research projects.
	ReportTypeResearch ReportType = "research"

	// ReportTypeBatch collects analyses of several research projects run
	// together.
	ReportTypeBatch ReportType = "batch"
)

// String returns the string representation of the report type.
func (rt ReportType) String() string {
	return string(rt)
}

// ParseReportType parses a string into a ReportType.
// Returns an error for invalid report type values.
func ParseReportType(s string) (ReportType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "analysis":
		return ReportTypeAnalysis, nil
	case "matrix":
		return ReportTypeMatrix, nil
	case "research":
		return ReportTypeResearch, nil
	case "batch":
		return ReportTypeBatch, nil
	default:
		return "", fmt.Errorf("invalid report type: %q (expected analysis, matrix, research, or batch)", s)
	}
}

// ValidateReportType checks if a report type value is valid.
func ValidateReportType(rt ReportType) bool {
	switch rt {
	case ReportTypeAnalysis, ReportTypeMatrix, ReportTypeResearch, ReportTypeBatch:
		return true
	default:
		return false
	}
}

// ReportHeader contains the common header fields for all report types.
// This structure appears at the top of every document the CLI prints.
type ReportHeader struct {
	// Type identifies the kind of report (analysis, matrix, research).
	Type ReportType `yaml:"type" json:"type"`

	// GeneratedAt is the timestamp when the report was generated.
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at"`

	// RunID identifies one invocation; every document printed by a batch
	// run shares it.
	RunID string `yaml:"run_id,omitempty" json:"run_id,omitempty"`

	// ResearchID is the analysed research. Zero for listings.
	ResearchID survey.ResearchID `yaml:"research_id,omitempty" json:"research_id,omitempty"`

	// Name is the research name.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// NewHeader creates a header of the given type stamped with the current time.
func NewHeader(rt ReportType, runID string) ReportHeader {
	return ReportHeader{
		Type:        rt,
		GeneratedAt: time.Now(),
		RunID:       runID,
	}
}

// ParticipantData identifies a participant in report output.
type ParticipantData struct {
	ID   survey.ParticipantID `yaml:"id" json:"id"`
	Name string               `yaml:"name" json:"name"`
}

// ResearchData is one row of a research listing.
type ResearchData struct {
	ID            survey.ResearchID `yaml:"id" json:"id"`
	Name          string            `yaml:"name" json:"name"`
	PersonCount   int               `yaml:"person_count" json:"person_count"`
	QuestionCount int               `yaml:"question_count" json:"question_count"`
	CreatedAt     time.Time         `yaml:"created_at" json:"created_at"`
}

// AnalysisReportData is the envelope printed by `smx analyze`.
type AnalysisReportData struct {
	Report   ReportHeader `yaml:"report" json:"report"`
	Analysis *Report      `yaml:"analysis" json:"analysis"`
}

// NewAnalysisReport wraps an assembled report with a fresh header.
func NewAnalysisReport(research survey.Research, r *Report, runID string) *AnalysisReportData {
	header := NewHeader(ReportTypeAnalysis, runID)
	header.ResearchID = research.ID
	header.Name = research.Name
	return &AnalysisReportData{
		Report:   header,
		Analysis: r,
	}
}

// MatrixReportData is the envelope printed by `smx matrix`.
type MatrixReportData struct {
	Report   ReportHeader `yaml:"report" json:"report"`
	Matrices []Matrix     `yaml:"matrices" json:"matrices"`
}

// NewMatrixReport wraps nomination matrices with a fresh header.
func NewMatrixReport(research survey.Research, matrices []Matrix, runID string) *MatrixReportData {
	header := NewHeader(ReportTypeMatrix, runID)
	header.ResearchID = research.ID
	header.Name = research.Name
	if matrices == nil {
		matrices = make([]Matrix, 0)
	}
	return &MatrixReportData{
		Report:   header,
		Matrices: matrices,
	}
}

// ResearchListData is the envelope printed by `smx list`.
type ResearchListData struct {
	Report   ReportHeader   `yaml:"report" json:"report"`
	Research []ResearchData `yaml:"research" json:"research"`
}

// NewResearchList converts stored research rows into a listing, keeping
// their order.
func NewResearchList(research []survey.Research, runID string) *ResearchListData {
	rows := make([]ResearchData, 0, len(research))
	for _, r := range research {
		rows = append(rows, ResearchData{
			ID:            r.ID,
			Name:          r.Name,
			PersonCount:   r.PersonCount,
			QuestionCount: r.QuestionCount,
			CreatedAt:     r.CreatedAt,
		})
	}
	return &ResearchListData{
		Report:   NewHeader(ReportTypeResearch, runID),
		Research: rows,
	}
}

// BatchReportData is the envelope printed by `smx batch`. Every analysis
// carries the batch run id.
type BatchReportData struct {
	Report   ReportHeader          `yaml:"report" json:"report"`
	Analyses []*AnalysisReportData `yaml:"analyses" json:"analyses"`
}

// NewBatchReport wraps analyses, keeping their order.
func NewBatchReport(analyses []*AnalysisReportData, runID string) *BatchReportData {
	if analyses == nil {
		analyses = make([]*AnalysisReportData, 0)
	}
	return &BatchReportData{
		Report:   NewHeader(ReportTypeBatch, runID),
		Analyses: analyses,
	}
}
