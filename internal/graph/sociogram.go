package graph

import (
	"fmt"

	"github.com/sociometrix/smx/internal/survey"
)

// SociogramNode is one participant of a sociogram.
type SociogramNode struct {
	ID   survey.ParticipantID
	Name string
	Role Role
}

// SociogramEdge is a nomination. Mutual edges appear once, From < To.
type SociogramEdge struct {
	From   survey.ParticipantID
	To     survey.ParticipantID
	Mutual bool
}

// Sociogram is the drawable form of one scope: every roster member in
// roster order and every distinct nomination between different members.
type Sociogram struct {
	Nodes []SociogramNode
	Edges []SociogramEdge
}

// NewSociogram lays out adj. Stars follow rule; participants nobody else
// nominated are isolated. A star is never marked isolated.
func NewSociogram(roster survey.Roster, adj Adjacency, rule StarRule) Sociogram {
	var stars []survey.ParticipantID
	if rule == StarsByMaximum {
		stars = QuestionStars(roster, adj)
	} else {
		stars = GlobalStars(roster, adj)
	}
	isStar := make(map[survey.ParticipantID]bool, len(stars))
	for _, s := range stars {
		isStar[s] = true
	}

	received := make(map[survey.ParticipantID]int, roster.Len())
	for _, source := range roster.IDs() {
		for target := range adj[source] {
			if target != source {
				received[target]++
			}
		}
	}

	s := Sociogram{
		Nodes: make([]SociogramNode, 0, roster.Len()),
		Edges: []SociogramEdge{},
	}
	for _, p := range roster.Participants() {
		role := RoleMember
		switch {
		case isStar[p.ID]:
			role = RoleStar
		case received[p.ID] == 0:
			role = RoleIsolated
		}
		s.Nodes = append(s.Nodes, SociogramNode{ID: p.ID, Name: p.Name, Role: role})
	}

	for _, a := range roster.IDs() {
		for _, b := range adj.Targets(a) {
			if a == b || !roster.Contains(b) {
				continue
			}
			mutual := adj.Has(b, a)
			if mutual && b < a {
				continue
			}
			s.Edges = append(s.Edges, SociogramEdge{From: a, To: b, Mutual: mutual})
		}
	}
	return s
}

// nodeID is the diagram identifier of a participant. Participant ids are
// integers, so the prefix keeps it a valid identifier in both languages.
func nodeID(id survey.ParticipantID) string {
	return fmt.Sprintf("p%d", id)
}
