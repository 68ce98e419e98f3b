package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sociometrix/smx/internal/graph"
	"github.com/sociometrix/smx/internal/metrics"
	"github.com/sociometrix/smx/internal/survey"
)

// ErrRosterTooLarge is returned when a roster exceeds Options.MaxRosterSize.
var ErrRosterTooLarge = errors.New("roster too large")

// Options configures an Assembler.
type Options struct {
	// Metrics holds the index formula options.
	Metrics metrics.Options

	// Precision is the number of decimal places kept for every index.
	// Negative keeps full precision. Default: 2
	Precision int

	// MaxRosterSize rejects larger rosters before the cubic clique and
	// chain enumeration runs. Zero means unlimited.
	MaxRosterSize int

	// Prestige adds PageRank prestige to individual metrics.
	Prestige bool

	// PageRank configures the prestige computation.
	PageRank metrics.PageRankConfig
}

// DefaultOptions returns the default assembler options.
func DefaultOptions() Options {
	return Options{
		Metrics:   metrics.DefaultOptions(),
		Precision: 2,
		Prestige:  true,
		PageRank:  metrics.DefaultPageRankConfig(),
	}
}

// Report is the complete analysis of one research.
type Report struct {
	Research     survey.ResearchID                    `yaml:"research_id" json:"research_id"`
	Participants []ParticipantData                    `yaml:"participants" json:"participants"`
	Aggregate    AggregateReport                      `yaml:"aggregate" json:"aggregate"`
	PerQuestion  map[survey.QuestionID]QuestionReport `yaml:"per_question" json:"per_question"`
}

// Questions returns the question ids of PerQuestion in ascending order.
func (r *Report) Questions() []survey.QuestionID {
	ids := make([]survey.QuestionID, 0, len(r.PerQuestion))
	for q := range r.PerQuestion {
		ids = append(ids, q)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AggregateReport covers every question at once: a pair of participants is
// adjacent when any question carries the nomination.
type AggregateReport struct {
	Relations graph.RelationReport `yaml:"relations" json:"relations"`
	Summary   Summary              `yaml:"summary" json:"summary"`
}

// Summary holds structural counts of the aggregate graph.
type Summary struct {
	Participants   int `yaml:"participants" json:"participants"`
	Responses      int `yaml:"responses" json:"responses"`
	Nominations    int `yaml:"nominations" json:"nominations"`
	Mutual         int `yaml:"mutual" json:"mutual"`
	Unreciprocated int `yaml:"unreciprocated" json:"unreciprocated"`
	Isolated       int `yaml:"isolated" json:"isolated"`
}

// QuestionReport is the analysis of a single question.
type QuestionReport struct {
	Question        survey.QuestionID    `yaml:"question" json:"question"`
	Text            string               `yaml:"text,omitempty" json:"text,omitempty"`
	RequiredChoices int                  `yaml:"required_choices" json:"required_choices"`
	Relations       graph.RelationReport `yaml:"relations" json:"relations"`
	Group           metrics.GroupMetrics `yaml:"group" json:"group"`
	Individual      []IndividualMetrics  `yaml:"individual" json:"individual"`
}

// Status returns the individual status of p, or false when p is not part of
// the report.
func (q QuestionReport) Status(p survey.ParticipantID) (metrics.Index, bool) {
	for _, ind := range q.Individual {
		if ind.Participant == p {
			return ind.Status, true
		}
	}
	return 0, false
}

// IndividualMetrics holds the indices of one participant for one question.
// Entries follow roster order.
type IndividualMetrics struct {
	Participant survey.ParticipantID `yaml:"participant" json:"participant"`
	Name        string               `yaml:"name" json:"name"`
	Incoming    int                  `yaml:"incoming" json:"incoming"`
	Outgoing    int                  `yaml:"outgoing" json:"outgoing"`
	Status      metrics.Index        `yaml:"status" json:"status"`
	Prestige    *metrics.Index       `yaml:"prestige,omitempty" json:"prestige,omitempty"`
}

// Assembler builds reports. It holds no state besides its options and is
// safe for concurrent use.
type Assembler struct {
	opts Options
}

// NewAssembler creates an assembler with the given options.
func NewAssembler(opts Options) *Assembler {
	return &Assembler{opts: opts}
}

// Options returns the assembler's options.
func (a *Assembler) Options() Options {
	return a.opts
}

// Assemble analyses responses over roster: once in aggregate across every
// question, and once per research question using that question's required
// choice count.
//
// Every response must reference a roster member and one of
// researchQuestions; otherwise the returned error wraps
// graph.ErrInvalidInput. A question without responses still gets a report.
func (a *Assembler) Assemble(roster survey.Roster, responses *survey.ResponseSet, researchQuestions []survey.ResearchQuestion) (*Report, error) {
	if a.opts.MaxRosterSize > 0 && roster.Len() > a.opts.MaxRosterSize {
		return nil, fmt.Errorf("%w: %d participants, limit is %d", ErrRosterTooLarge, roster.Len(), a.opts.MaxRosterSize)
	}

	questions, err := indexQuestions(responses, researchQuestions)
	if err != nil {
		return nil, err
	}

	all, err := graph.BuildAll(roster, responses)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	report := &Report{
		Research:     responses.Research(),
		Participants: participantData(roster),
		Aggregate: AggregateReport{
			Relations: graph.Analyze(roster, all.Adjacency, graph.StarsByThreshold),
			Summary:   summarize(roster, all, responses.Len()),
		},
		PerQuestion: make(map[survey.QuestionID]QuestionReport, len(questions)),
	}

	for _, rq := range sortedQuestions(questions) {
		qr, err := a.question(roster, responses, rq)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", rq.QuestionID, err)
		}
		report.PerQuestion[rq.QuestionID] = qr
	}

	return report, nil
}

func (a *Assembler) question(roster survey.Roster, responses *survey.ResponseSet, rq survey.ResearchQuestion) (QuestionReport, error) {
	built, err := graph.BuildQuestion(roster, responses, rq.QuestionID)
	if err != nil {
		return QuestionReport{}, err
	}

	result := metrics.Compute(roster, built.Adjacency, built.Incoming, rq.ChoiceCount, a.opts.Metrics)
	if a.opts.Precision >= 0 {
		result = result.Rounded(a.opts.Precision)
	}

	var prestige map[survey.ParticipantID]float64
	if a.opts.Prestige {
		prestige = metrics.ComputePrestige(roster, built.Adjacency, a.opts.PageRank)
	}

	individual := make([]IndividualMetrics, 0, roster.Len())
	for _, p := range roster.Participants() {
		ind := IndividualMetrics{
			Participant: p.ID,
			Name:        p.Name,
			Incoming:    built.Incoming[p.ID],
			Outgoing:    built.Adjacency.OutDegree(p.ID),
			Status:      result.Status[p.ID],
		}
		if prestige != nil {
			score := metrics.Index(prestige[p.ID])
			if a.opts.Precision >= 0 {
				score = score.Round(a.opts.Precision)
			}
			ind.Prestige = &score
		}
		individual = append(individual, ind)
	}

	return QuestionReport{
		Question:        rq.QuestionID,
		Text:            rq.Text,
		RequiredChoices: rq.ChoiceCount,
		Relations:       graph.Analyze(roster, built.Adjacency, graph.StarsByMaximum),
		Group:           result.Group,
		Individual:      individual,
	}, nil
}

// indexQuestions checks that every research question belongs to the
// research of responses and is listed once, and that every response answers
// one of them.
func indexQuestions(responses *survey.ResponseSet, researchQuestions []survey.ResearchQuestion) (map[survey.QuestionID]survey.ResearchQuestion, error) {
	research := responses.Research()
	questions := make(map[survey.QuestionID]survey.ResearchQuestion, len(researchQuestions))
	for _, rq := range researchQuestions {
		if rq.ResearchID != research {
			return nil, graph.QuestionError(rq.QuestionID, fmt.Sprintf("belongs to research %d, not %d", rq.ResearchID, research))
		}
		if _, dup := questions[rq.QuestionID]; dup {
			return nil, graph.QuestionError(rq.QuestionID, "has already been selected")
		}
		questions[rq.QuestionID] = rq
	}
	for _, q := range responses.Questions() {
		if _, ok := questions[q]; !ok {
			return nil, graph.QuestionError(q, "not asked in this research")
		}
	}
	return questions, nil
}

func sortedQuestions(questions map[survey.QuestionID]survey.ResearchQuestion) []survey.ResearchQuestion {
	out := make([]survey.ResearchQuestion, 0, len(questions))
	for _, rq := range questions {
		out = append(out, rq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}

func participantData(roster survey.Roster) []ParticipantData {
	out := make([]ParticipantData, 0, roster.Len())
	for _, p := range roster.Participants() {
		out = append(out, ParticipantData{ID: p.ID, Name: p.Name})
	}
	return out
}

func summarize(roster survey.Roster, all *graph.Built, responses int) Summary {
	isolated := 0
	for _, id := range roster.IDs() {
		if all.Incoming[id] == 0 {
			isolated++
		}
	}
	return Summary{
		Participants:   roster.Len(),
		Responses:      responses,
		Nominations:    all.Adjacency.EdgeCount(),
		Mutual:         len(graph.MutualPairs(roster, all.Adjacency)),
		Unreciprocated: graph.UnreciprocatedCount(roster, all.Adjacency),
		Isolated:       isolated,
	}
}
