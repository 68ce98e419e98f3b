package metrics

import (
	"math"

	"github.com/sociometrix/smx/internal/graph"
	"github.com/sociometrix/smx/internal/survey"
)

// PageRankConfig holds algorithm parameters for prestige computation.
type PageRankConfig struct {
	// Damping is the probability of following a nomination.
	// Standard value is 0.85.
	Damping float64

	// MaxIterations bounds the power iteration. Default is 100.
	MaxIterations int

	// Tolerance is the convergence threshold on the largest per-participant
	// change. Default is 0.0001.
	Tolerance float64
}

// DefaultPageRankConfig returns the default PageRank configuration.
func DefaultPageRankConfig() PageRankConfig {
	return PageRankConfig{
		Damping:       0.85,
		MaxIterations: 100,
		Tolerance:     0.0001,
	}
}

// PageRankResult contains the prestige computation results.
type PageRankResult struct {
	// Scores maps participants to their PageRank scores; they sum to 1.
	Scores map[survey.ParticipantID]float64

	// Iterations is the number of iterations performed
	Iterations int

	// Converged indicates whether the iteration converged within MaxIterations
	Converged bool

	// FinalDelta is the maximum change in the last iteration
	FinalDelta float64
}

// ComputePrestige returns the PageRank of every roster member over the
// nomination graph: being nominated by well-nominated participants counts
// more than being nominated by isolated ones.
func ComputePrestige(roster survey.Roster, adj graph.Adjacency, config PageRankConfig) map[survey.ParticipantID]float64 {
	return ComputePageRankWithInfo(roster, adj, config).Scores
}

// ComputePageRankWithInfo calculates PageRank and returns detailed results.
// Participants are visited in roster order so repeated runs produce
// identical floating point sums.
func ComputePageRankWithInfo(roster survey.Roster, adj graph.Adjacency, config PageRankConfig) PageRankResult {
	ids := roster.IDs()
	n := len(ids)
	if n == 0 {
		return PageRankResult{
			Scores:     map[survey.ParticipantID]float64{},
			Iterations: 0,
			Converged:  true,
			FinalDelta: 0,
		}
	}

	pr := make(map[survey.ParticipantID]float64, n)
	for _, id := range ids {
		pr[id] = 1.0 / float64(n)
	}

	incomingLinks := buildIncomingLinks(roster, adj)

	result := PageRankResult{
		Scores:     pr,
		Iterations: 0,
		Converged:  false,
		FinalDelta: 1.0,
	}

	for iter := 0; iter < config.MaxIterations; iter++ {
		newPR := make(map[survey.ParticipantID]float64, n)
		maxDelta := 0.0

		// Participants who nominated nobody spread their score evenly
		danglingSum := 0.0
		for _, id := range ids {
			if outDegree(roster, adj, id) == 0 {
				danglingSum += pr[id]
			}
		}
		danglingContribution := config.Damping * danglingSum / float64(n)

		for _, id := range ids {
			newPR[id] = (1.0-config.Damping)/float64(n) + danglingContribution

			for _, in := range incomingLinks[id] {
				newPR[id] += config.Damping * pr[in.source] / float64(in.outDegree)
			}

			delta := math.Abs(newPR[id] - pr[id])
			if delta > maxDelta {
				maxDelta = delta
			}
		}

		pr = newPR
		result.Iterations = iter + 1
		result.FinalDelta = maxDelta

		if maxDelta < config.Tolerance {
			result.Converged = true
			break
		}
	}

	result.Scores = pr
	return result
}

// incomingLink represents a nomination from source with its out-degree
type incomingLink struct {
	source    survey.ParticipantID
	outDegree int
}

// buildIncomingLinks indexes, per participant, who nominated them. Self
// nominations are ignored.
func buildIncomingLinks(roster survey.Roster, adj graph.Adjacency) map[survey.ParticipantID][]incomingLink {
	incoming := make(map[survey.ParticipantID][]incomingLink, roster.Len())
	for _, source := range roster.IDs() {
		out := outDegree(roster, adj, source)
		if out == 0 {
			continue
		}
		for _, target := range adj.Targets(source) {
			if target == source || !roster.Contains(target) {
				continue
			}
			incoming[target] = append(incoming[target], incomingLink{
				source:    source,
				outDegree: out,
			})
		}
	}
	return incoming
}

// outDegree counts nominations of other roster members.
func outDegree(roster survey.Roster, adj graph.Adjacency, p survey.ParticipantID) int {
	count := 0
	for t := range adj[p] {
		if t != p && roster.Contains(t) {
			count++
		}
	}
	return count
}
