// Package survey defines the sociometric research data model: participants,
// questions, research questions and the nomination responses collected for
// a research project.
package survey

import (
	"sort"
	"time"
)

// ParticipantID identifies a participant. Ordering by id is the canonical
// participant ordering used throughout analysis.
type ParticipantID int64

// QuestionID identifies a question. Questions are reusable across research
// projects.
type QuestionID int64

// ResearchID identifies a research project.
type ResearchID int64

// Gender values accepted for participants.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// MaxQuestionLength is the maximum number of characters in a question text.
const MaxQuestionLength = 255

// Research is a sociometric study owned by a researcher.
type Research struct {
	ID            ResearchID `yaml:"id" json:"id"`
	Name          string     `yaml:"name" json:"name"`
	PersonCount   int        `yaml:"person_count" json:"person_count"`
	QuestionCount int        `yaml:"question_count" json:"question_count"`
	CreatedAt     time.Time  `yaml:"created_at" json:"created_at"`
}

// Participant is one member of a research roster.
type Participant struct {
	ID          ParticipantID `yaml:"id" json:"id"`
	ResearchID  ResearchID    `yaml:"research_id" json:"research_id"`
	Name        string        `yaml:"name" json:"name"`
	Age         int           `yaml:"age" json:"age"`
	Gender      string        `yaml:"gender" json:"gender"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
}

// Question is a nomination prompt ("Who would you sit next to?").
type Question struct {
	ID   QuestionID `yaml:"id" json:"id"`
	Text string     `yaml:"text" json:"text"`
}

// ResearchQuestion binds a question to a research project together with the
// number of nominations each participant is expected to make.
type ResearchQuestion struct {
	ResearchID  ResearchID `yaml:"research_id" json:"research_id"`
	QuestionID  QuestionID `yaml:"question_id" json:"question_id"`
	Text        string     `yaml:"text,omitempty" json:"text,omitempty"`
	ChoiceCount int        `yaml:"choice_count" json:"choice_count"`
}

// Response is a single directed nomination: Source selected Target when
// answering Question.
type Response struct {
	ResearchID ResearchID    `yaml:"research_id" json:"research_id"`
	QuestionID QuestionID    `yaml:"question_id" json:"question_id"`
	Source     ParticipantID `yaml:"source" json:"source"`
	Target     ParticipantID `yaml:"target" json:"target"`
}

// Roster is the fixed, id-ordered set of participants analysed together.
type Roster struct {
	participants []Participant
	index        map[ParticipantID]int
}

// NewRoster builds a roster from participants, sorted by id. The input slice
// is not retained.
func NewRoster(participants []Participant) Roster {
	ps := make([]Participant, len(participants))
	copy(ps, participants)
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })

	index := make(map[ParticipantID]int, len(ps))
	for i, p := range ps {
		index[p.ID] = i
	}
	return Roster{participants: ps, index: index}
}

// Len returns the number of participants.
func (r Roster) Len() int {
	return len(r.participants)
}

// IDs returns participant ids in canonical order.
func (r Roster) IDs() []ParticipantID {
	ids := make([]ParticipantID, len(r.participants))
	for i, p := range r.participants {
		ids[i] = p.ID
	}
	return ids
}

// Participants returns a copy of the roster in canonical order.
func (r Roster) Participants() []Participant {
	ps := make([]Participant, len(r.participants))
	copy(ps, r.participants)
	return ps
}

// Contains reports whether id belongs to the roster.
func (r Roster) Contains(id ParticipantID) bool {
	_, ok := r.index[id]
	return ok
}

// Name returns the display name of a participant, or "" if unknown.
func (r Roster) Name(id ParticipantID) string {
	if i, ok := r.index[id]; ok {
		return r.participants[i].Name
	}
	return ""
}

// Get returns the participant with the given id.
func (r Roster) Get(id ParticipantID) (Participant, bool) {
	if i, ok := r.index[id]; ok {
		return r.participants[i], true
	}
	return Participant{}, false
}
