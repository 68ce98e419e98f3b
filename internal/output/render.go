package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sociometrix/smx/internal/graph"
	"github.com/sociometrix/smx/internal/metrics"
	"github.com/sociometrix/smx/internal/report"
	"github.com/sociometrix/smx/internal/survey"
)

// Tabular is implemented by documents that know their own table layout.
type Tabular interface {
	TableHeader() []string
	TableRows() [][]any
}

// TableFormatter renders smx documents as tables.
type TableFormatter struct {
	mode Mode
}

// NewTableFormatter creates a table formatter rendering in mode.
func NewTableFormatter(mode Mode) *TableFormatter {
	return &TableFormatter{mode: mode}
}

// Format renders v as tables.
func (f *TableFormatter) Format(v interface{}) (string, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatToWriter writes tables for the supported document types.
func (f *TableFormatter) FormatToWriter(w io.Writer, v interface{}) error {
	var sections []string
	switch doc := v.(type) {
	case *report.AnalysisReportData:
		sections = f.analysis(doc)
	case *report.BatchReportData:
		for _, a := range doc.Analyses {
			sections = append(sections, f.analysis(a)...)
		}
		if len(sections) == 0 {
			sections = []string{"No research analysed"}
		}
	case *report.MatrixReportData:
		sections = f.matrices(doc)
	case *report.ResearchListData:
		sections = []string{f.researchList(doc)}
	case Tabular:
		tb := NewTable(f.mode)
		tb.Header(doc.TableHeader()...)
		for _, row := range doc.TableRows() {
			tb.Row(row...)
		}
		sections = []string{tb.String()}
	default:
		return fmt.Errorf("table format does not support type %T", v)
	}

	_, err := io.WriteString(w, strings.Join(sections, "\n\n")+"\n")
	return err
}

func (f *TableFormatter) researchList(doc *report.ResearchListData) string {
	tb := NewTable(f.mode)
	tb.Header("ID", "Name", "Participants", "Questions", "Created")
	for _, r := range doc.Research {
		tb.Row(r.ID, Truncate(r.Name, 40), r.PersonCount, r.QuestionCount, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	tb.Columns(
		ColumnConfig{Number: 1, Align: AlignRight},
		ColumnConfig{Number: 3, Align: AlignRight},
		ColumnConfig{Number: 4, Align: AlignRight},
	)
	return tb.String()
}

func (f *TableFormatter) analysis(doc *report.AnalysisReportData) []string {
	r := doc.Analysis
	if r == nil {
		return []string{fmt.Sprintf("Research %d: no analysis", doc.Report.ResearchID)}
	}
	names := nameIndex(r.Participants)

	summary := NewTable(f.mode)
	summary.Title(fmt.Sprintf("Research %d: %s", doc.Report.ResearchID, doc.Report.Name))
	summary.Header("Participants", "Responses", "Nominations", "Mutual", "Unreciprocated", "Isolated", "Fully connected")
	s := r.Aggregate.Summary
	summary.Row(s.Participants, s.Responses, s.Nominations, s.Mutual, s.Unreciprocated, s.Isolated,
		BoolMark(r.Aggregate.Relations.FullyConnected))

	sections := []string{summary.String(), f.relations("All questions", r.Aggregate.Relations, names)}

	for _, q := range r.Questions() {
		qr := r.PerQuestion[q]
		sections = append(sections, f.questionGroup(qr), f.questionIndividual(qr), f.relations(fmt.Sprintf("Question %d relations", q), qr.Relations, names))
	}
	return sections
}

func (f *TableFormatter) questionGroup(qr report.QuestionReport) string {
	tb := NewTable(f.mode)
	title := fmt.Sprintf("Question %d (choices: %d)", qr.Question, qr.RequiredChoices)
	if qr.Text != "" {
		title = fmt.Sprintf("Question %d: %s (choices: %d)", qr.Question, Truncate(qr.Text, 60), qr.RequiredChoices)
	}
	tb.Title(title)
	tb.Header("Cohesion", "Density", "Isolation", "Mutual", "Unreciprocated", "Isolated")
	g := qr.Group
	tb.Row(g.Cohesion, g.Density, g.Isolation, g.MutualCount, g.UnreciprocatedCount, g.IsolatedCount)
	return tb.String()
}

func (f *TableFormatter) questionIndividual(qr report.QuestionReport) string {
	tb := NewTable(f.mode)
	withPrestige := len(qr.Individual) > 0 && qr.Individual[0].Prestige != nil

	header := []string{"ID", "Participant", "Incoming", "Outgoing", "Status"}
	if withPrestige {
		header = append(header, "Prestige")
	}
	tb.Header(header...)

	for _, ind := range qr.Individual {
		row := []any{ind.Participant, ind.Name, ind.Incoming, ind.Outgoing, ind.Status}
		if withPrestige {
			var p metrics.Index
			if ind.Prestige != nil {
				p = *ind.Prestige
			}
			row = append(row, p)
		}
		tb.Row(row...)
	}
	tb.Columns(
		ColumnConfig{Number: 1, Align: AlignRight},
		ColumnConfig{Number: 3, Align: AlignRight},
		ColumnConfig{Number: 4, Align: AlignRight},
	)
	return tb.String()
}

func (f *TableFormatter) relations(title string, rel graph.RelationReport, names map[survey.ParticipantID]string) string {
	tb := NewTable(f.mode)
	tb.Title(title)
	tb.Header("Relation", "Members")

	for _, p := range rel.Pairs {
		tb.Row("pair", join(names, " ↔ ", p.A, p.B))
	}
	for _, c := range rel.Chains {
		tb.Row("chain", join(names, " → ", c.A, c.B, c.C))
	}
	for _, id := range rel.Stars {
		tb.Row("star", label(names, id))
	}
	for _, c := range rel.Cliques {
		tb.Row("clique", join(names, ", ", c.A, c.B, c.C))
	}
	if len(rel.Pairs)+len(rel.Chains)+len(rel.Stars)+len(rel.Cliques) == 0 {
		tb.Row("none", "")
	}
	tb.Columns(ColumnConfig{Number: 2, MaxWidth: 80})
	return tb.String()
}

func (f *TableFormatter) matrices(doc *report.MatrixReportData) []string {
	if len(doc.Matrices) == 0 {
		return []string{fmt.Sprintf("Research %d: no questions", doc.Report.ResearchID)}
	}

	sections := make([]string, 0, len(doc.Matrices))
	for _, m := range doc.Matrices {
		tb := NewTable(f.mode)
		title := fmt.Sprintf("Question %d", m.Question)
		if m.Text != "" {
			title += ": " + Truncate(m.Text, 60)
		}
		tb.Title(title)

		header := []string{"Nominator"}
		for _, p := range m.Participants {
			header = append(header, fmt.Sprint(p.ID))
		}
		header = append(header, "Given")
		tb.Header(header...)

		received := make([]int, len(m.Participants))
		for i, p := range m.Participants {
			row := []any{fmt.Sprintf("%d %s", p.ID, Truncate(p.Name, 20))}
			given := 0
			for j := range m.Participants {
				mark := ""
				switch {
				case i == j:
					mark = "-"
				case m.Nominated(i, j):
					mark = "x"
					given++
					received[j]++
				}
				row = append(row, mark)
			}
			row = append(row, given)
			tb.Row(row...)
		}

		footer := []any{"Received"}
		for _, n := range received {
			footer = append(footer, n)
		}
		footer = append(footer, "")
		tb.Footer(footer...)

		sections = append(sections, tb.String())
	}
	return sections
}

func nameIndex(participants []report.ParticipantData) map[survey.ParticipantID]string {
	names := make(map[survey.ParticipantID]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}
	return names
}

func label(names map[survey.ParticipantID]string, id survey.ParticipantID) string {
	if n, ok := names[id]; ok && n != "" {
		return fmt.Sprintf("%s (%d)", n, id)
	}
	return fmt.Sprint(id)
}

func join(names map[survey.ParticipantID]string, sep string, ids ...survey.ParticipantID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = label(names, id)
	}
	return strings.Join(parts, sep)
}
