package survey

import "sort"

// ResponseSet is an immutable collection of nominations for one research
// project.
type ResponseSet struct {
	research  ResearchID
	responses []Response
}

// NewResponseSet builds a response set for research. Responses that belong
// to a different research project are left out.
func NewResponseSet(research ResearchID, responses []Response) *ResponseSet {
	kept := make([]Response, 0, len(responses))
	for _, r := range responses {
		if r.ResearchID == research {
			kept = append(kept, r)
		}
	}
	return &ResponseSet{research: research, responses: kept}
}

// Research returns the research project the set belongs to.
func (s *ResponseSet) Research() ResearchID {
	return s.research
}

// Len returns the number of responses.
func (s *ResponseSet) Len() int {
	return len(s.responses)
}

// All returns a copy of every response in insertion order.
func (s *ResponseSet) All() []Response {
	out := make([]Response, len(s.responses))
	copy(out, s.responses)
	return out
}

// ForQuestion returns the responses given to question q.
func (s *ResponseSet) ForQuestion(q QuestionID) []Response {
	var out []Response
	for _, r := range s.responses {
		if r.QuestionID == q {
			out = append(out, r)
		}
	}
	return out
}

// Questions returns the distinct question ids present in the set, ascending.
func (s *ResponseSet) Questions() []QuestionID {
	seen := make(map[QuestionID]struct{})
	var ids []QuestionID
	for _, r := range s.responses {
		if _, ok := seen[r.QuestionID]; ok {
			continue
		}
		seen[r.QuestionID] = struct{}{}
		ids = append(ids, r.QuestionID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
