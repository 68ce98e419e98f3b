package graph

import (
	"github.com/sociometrix/smx/internal/survey"
)

// Pair is a mutual nomination; A < B always.
type Pair struct {
	A survey.ParticipantID `yaml:"a" json:"a"`
	B survey.ParticipantID `yaml:"b" json:"b"`
}

// Chain is a one-directional path A -> B -> C with neither link
// reciprocated.
type Chain struct {
	A survey.ParticipantID `yaml:"a" json:"a"`
	B survey.ParticipantID `yaml:"b" json:"b"`
	C survey.ParticipantID `yaml:"c" json:"c"`
}

// Clique is a triangle of participants who all nominate each other;
// A < B < C always.
type Clique struct {
	A survey.ParticipantID `yaml:"a" json:"a"`
	B survey.ParticipantID `yaml:"b" json:"b"`
	C survey.ParticipantID `yaml:"c" json:"c"`
}

// StarRule selects how stars are identified for a scope.
type StarRule string

const (
	// StarsByThreshold is the aggregate rule: incoming >= n/2 and no
	// outgoing nominations.
	StarsByThreshold StarRule = "threshold"

	// StarsByMaximum is the per-question rule: every participant holding
	// the maximum incoming count, when that maximum is positive.
	StarsByMaximum StarRule = "maximum"
)

// RelationReport holds the relation structures of one scope. Every slice is
// ordered by participant id tuples.
type RelationReport struct {
	Pairs          []Pair                 `yaml:"pairs" json:"pairs"`
	Chains         []Chain                `yaml:"chains" json:"chains"`
	Stars          []survey.ParticipantID `yaml:"stars" json:"stars"`
	Cliques        []Clique               `yaml:"cliques" json:"cliques"`
	FullyConnected bool                   `yaml:"is_fully_connected" json:"is_fully_connected"`
}

// Analyze computes every relation structure for adj using the star rule of
// the scope.
func Analyze(roster survey.Roster, adj Adjacency, rule StarRule) RelationReport {
	var stars []survey.ParticipantID
	switch rule {
	case StarsByMaximum:
		stars = QuestionStars(roster, adj)
	default:
		stars = GlobalStars(roster, adj)
	}

	return RelationReport{
		Pairs:          MutualPairs(roster, adj),
		Chains:         Chains(roster, adj),
		Stars:          stars,
		Cliques:        Cliques(roster, adj),
		FullyConnected: IsFullyConnected(roster, adj),
	}
}

// MutualPairs returns each pair of participants who nominated each other,
// once, with the lower id first. Self-nominations never form a pair.
func MutualPairs(roster survey.Roster, adj Adjacency) []Pair {
	pairs := []Pair{}
	for _, a := range roster.IDs() {
		for _, b := range adj.Targets(a) {
			if a < b && adj.Has(b, a) {
				pairs = append(pairs, Pair{A: a, B: b})
			}
		}
	}
	return pairs
}

// Chains returns every triple (a, b, c) of distinct participants where a
// nominated b, b nominated c, and neither nomination was returned.
func Chains(roster survey.Roster, adj Adjacency) []Chain {
	chains := []Chain{}
	for _, a := range roster.IDs() {
		for _, b := range adj.Targets(a) {
			if b == a || adj.Has(b, a) {
				continue
			}
			for _, c := range adj.Targets(b) {
				if c == a || c == b || adj.Has(c, b) {
					continue
				}
				chains = append(chains, Chain{A: a, B: b, C: c})
			}
		}
	}
	return chains
}

// GlobalStars applies the aggregate star rule: a participant nominated by
// at least half the roster (rounded down) who nominated nobody.
func GlobalStars(roster survey.Roster, adj Adjacency) []survey.ParticipantID {
	threshold := roster.Len() / 2
	incoming := InDegree(roster, adj)

	stars := []survey.ParticipantID{}
	for _, p := range roster.IDs() {
		if incoming[p] >= threshold && adj.OutDegree(p) == 0 {
			stars = append(stars, p)
		}
	}
	return stars
}

// QuestionStars applies the per-question star rule: the participants with
// the highest incoming count, ties included, provided that count is
// positive.
func QuestionStars(roster survey.Roster, adj Adjacency) []survey.ParticipantID {
	incoming := InDegree(roster, adj)

	highest := 0
	for _, p := range roster.IDs() {
		if incoming[p] > highest {
			highest = incoming[p]
		}
	}

	stars := []survey.ParticipantID{}
	if highest == 0 {
		return stars
	}
	for _, p := range roster.IDs() {
		if incoming[p] == highest {
			stars = append(stars, p)
		}
	}
	return stars
}

// Cliques enumerates every 3-subset of the roster with all six directed
// nominations present. Cubic in roster size.
func Cliques(roster survey.Roster, adj Adjacency) []Clique {
	ids := roster.IDs()
	cliques := []Clique{}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			if !adj.Has(a, b) || !adj.Has(b, a) {
				continue
			}
			for k := j + 1; k < len(ids); k++ {
				c := ids[k]
				if adj.Has(a, c) && adj.Has(c, a) && adj.Has(b, c) && adj.Has(c, b) {
					cliques = append(cliques, Clique{A: a, B: b, C: c})
				}
			}
		}
	}
	return cliques
}

// IsFullyConnected reports whether every participant nominated every other
// participant. An empty roster is vacuously connected.
func IsFullyConnected(roster survey.Roster, adj Adjacency) bool {
	ids := roster.IDs()
	for _, p1 := range ids {
		for _, p2 := range ids {
			if p1 != p2 && !adj.Has(p1, p2) {
				return false
			}
		}
	}
	return true
}

// UnreciprocatedCount counts ordered pairs (a, b) where a nominated b and b
// did not nominate a.
func UnreciprocatedCount(roster survey.Roster, adj Adjacency) int {
	count := 0
	for _, a := range roster.IDs() {
		for b := range adj[a] {
			if !adj.Has(b, a) {
				count++
			}
		}
	}
	return count
}
