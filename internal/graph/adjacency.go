package graph

import (
	"sort"

	"github.com/sociometrix/smx/internal/survey"
)

// Adjacency maps each participant to the set of participants it nominated.
// It is rebuilt per scope and never shared between scopes.
type Adjacency map[survey.ParticipantID]map[survey.ParticipantID]struct{}

// Has reports whether from nominated to.
func (a Adjacency) Has(from, to survey.ParticipantID) bool {
	_, ok := a[from][to]
	return ok
}

// Targets returns the participants nominated by p in ascending id order.
func (a Adjacency) Targets(p survey.ParticipantID) []survey.ParticipantID {
	targets := make([]survey.ParticipantID, 0, len(a[p]))
	for t := range a[p] {
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets
}

// OutDegree returns the number of distinct participants p nominated.
func (a Adjacency) OutDegree(p survey.ParticipantID) int {
	return len(a[p])
}

// EdgeCount returns the number of distinct directed nominations.
func (a Adjacency) EdgeCount() int {
	count := 0
	for _, targets := range a {
		count += len(targets)
	}
	return count
}

func (a Adjacency) add(from, to survey.ParticipantID) {
	targets, ok := a[from]
	if !ok {
		targets = make(map[survey.ParticipantID]struct{})
		a[from] = targets
	}
	targets[to] = struct{}{}
}

// Built is the output of Build for one scope.
type Built struct {
	// Adjacency holds distinct nominations.
	Adjacency Adjacency

	// Incoming counts every response received per participant, duplicates
	// included. Every roster member has an entry.
	Incoming map[survey.ParticipantID]int
}

// Build constructs the adjacency for the given responses. When question is
// non-nil only responses to that question are used; otherwise a pair is
// adjacent if any question carries the nomination. Every response must
// reference roster members.
func Build(roster survey.Roster, responses []survey.Response, question *survey.QuestionID) (*Built, error) {
	b := &Built{
		Adjacency: make(Adjacency),
		Incoming:  make(map[survey.ParticipantID]int, roster.Len()),
	}
	for _, id := range roster.IDs() {
		b.Incoming[id] = 0
	}

	for _, r := range responses {
		if question != nil && r.QuestionID != *question {
			continue
		}
		if !roster.Contains(r.Source) {
			return nil, participantError(r.Source, "nominator is not in the roster")
		}
		if !roster.Contains(r.Target) {
			return nil, participantError(r.Target, "nominee is not in the roster")
		}
		b.Adjacency.add(r.Source, r.Target)
		b.Incoming[r.Target]++
	}

	return b, nil
}

// BuildAll builds the aggregate adjacency across every question.
func BuildAll(roster survey.Roster, responses *survey.ResponseSet) (*Built, error) {
	return Build(roster, responses.All(), nil)
}

// BuildQuestion builds the adjacency for a single question.
func BuildQuestion(roster survey.Roster, responses *survey.ResponseSet, q survey.QuestionID) (*Built, error) {
	return Build(roster, responses.ForQuestion(q), &q)
}

// InDegree counts, for every roster member, how many distinct roster
// members nominated them.
func InDegree(roster survey.Roster, adj Adjacency) map[survey.ParticipantID]int {
	in := make(map[survey.ParticipantID]int, roster.Len())
	for _, id := range roster.IDs() {
		in[id] = 0
	}
	for _, source := range roster.IDs() {
		for target := range adj[source] {
			if _, ok := in[target]; ok {
				in[target]++
			}
		}
	}
	return in
}
