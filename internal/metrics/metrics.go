// Package metrics computes the quantitative sociometric indices of a group:
// cohesion, density, isolation and per-participant status, plus an optional
// PageRank-based prestige score.
package metrics

import (
	"github.com/sociometrix/smx/internal/graph"
	"github.com/sociometrix/smx/internal/survey"
)

// Options holds the configurable parts of the index formulas.
type Options struct {
	// ChoiceFloor replaces a required choice count of zero or less.
	// Default: 1
	ChoiceFloor int
}

// DefaultOptions returns the default index options.
func DefaultOptions() Options {
	return Options{
		ChoiceFloor: 1,
	}
}

// GroupMetrics holds the group-level indices of one question.
type GroupMetrics struct {
	Cohesion  Index `yaml:"cohesion" json:"cohesion"`
	Density   Index `yaml:"density" json:"density"`
	Isolation Index `yaml:"isolation" json:"isolation"`

	RequiredChoices     int `yaml:"required_choices" json:"required_choices"`
	MutualCount         int `yaml:"mutual_count" json:"mutual_count"`
	UnreciprocatedCount int `yaml:"unreciprocated_count" json:"unreciprocated_count"`
	IsolatedCount       int `yaml:"isolated_count" json:"isolated_count"`
}

// Result is the output of Compute.
type Result struct {
	Group GroupMetrics

	// Status maps every roster member to incoming / (n-1).
	Status map[survey.ParticipantID]Index
}

// Compute derives group and individual indices for one scope. incoming must
// hold the response count received by each participant in that scope.
//
// With n participants and k required choices:
//
//	cohesion  = mutual / (k*n/2)
//	density   = mutual*s / (unreciprocated*s), s = 1 - k/(n-1)
//	isolation = 1 / isolated
//	status[p] = incoming[p] / (n-1)
//
// Every division is guarded; a positive density numerator over a zero
// denominator yields Inf.
func Compute(roster survey.Roster, adj graph.Adjacency, incoming map[survey.ParticipantID]int, requiredChoices int, opts Options) Result {
	n := roster.Len()
	k := requiredChoices
	if k <= 0 {
		k = opts.ChoiceFloor
	}

	mutual := len(graph.MutualPairs(roster, adj))
	unreciprocated := graph.UnreciprocatedCount(roster, adj)

	isolated := 0
	for _, p := range roster.IDs() {
		if incoming[p] == 0 {
			isolated++
		}
	}

	group := GroupMetrics{
		Cohesion:            cohesion(mutual, k, n),
		Density:             density(mutual, unreciprocated, k, n),
		Isolation:           isolation(isolated),
		RequiredChoices:     k,
		MutualCount:         mutual,
		UnreciprocatedCount: unreciprocated,
		IsolatedCount:       isolated,
	}

	status := make(map[survey.ParticipantID]Index, n)
	for _, p := range roster.IDs() {
		if n > 1 {
			status[p] = Index(float64(incoming[p]) / float64(n-1))
		} else {
			status[p] = 0
		}
	}

	return Result{Group: group, Status: status}
}

func cohesion(mutual, k, n int) Index {
	maxMutual := float64(k) * float64(n) / 2
	if maxMutual == 0 {
		return 0
	}
	return Index(float64(mutual) / maxMutual)
}

func density(mutual, unreciprocated, k, n int) Index {
	if n <= 1 {
		return 0
	}
	scale := 1 - float64(k)/float64(n-1)
	numerator := float64(mutual) * scale
	denominator := float64(unreciprocated) * scale

	switch {
	case denominator > 0:
		return Index(numerator / denominator)
	case numerator > 0:
		return Inf()
	default:
		return 0
	}
}

func isolation(isolated int) Index {
	if isolated == 0 {
		return 0
	}
	return Index(1 / float64(isolated))
}

// Rounded returns a copy of r with every index rounded to precision
// decimal places.
func (r Result) Rounded(precision int) Result {
	out := Result{Group: r.Group, Status: make(map[survey.ParticipantID]Index, len(r.Status))}
	out.Group.Cohesion = r.Group.Cohesion.Round(precision)
	out.Group.Density = r.Group.Density.Round(precision)
	out.Group.Isolation = r.Group.Isolation.Round(precision)
	for p, s := range r.Status {
		out.Status[p] = s.Round(precision)
	}
	return out
}
