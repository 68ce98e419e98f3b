// Package graph builds nomination adjacency from survey responses and
// derives the reciprocal relation structures of a group: mutual pairs,
// chains, stars, cliques and full connectivity.
package graph

import (
	"errors"
	"fmt"

	"github.com/sociometrix/smx/internal/survey"
)

// ErrInvalidInput is the sentinel wrapped by every InvalidInputError.
var ErrInvalidInput = errors.New("invalid input")

// Input kinds reported by InvalidInputError.
const (
	KindParticipant = "participant"
	KindQuestion    = "question"
)

// InvalidInputError reports a response or question that references data
// outside the supplied roster or question set.
type InvalidInputError struct {
	Kind   string
	ID     int64
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %d: %s", e.Kind, e.ID, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

func participantError(id survey.ParticipantID, reason string) error {
	return &InvalidInputError{Kind: KindParticipant, ID: int64(id), Reason: reason}
}

// QuestionError returns an InvalidInputError for question q.
func QuestionError(q survey.QuestionID, reason string) error {
	return &InvalidInputError{Kind: KindQuestion, ID: int64(q), Reason: reason}
}
