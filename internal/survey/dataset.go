package survey

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDataset is returned when an imported dataset breaks a data rule.
var ErrInvalidDataset = errors.New("invalid dataset")

var validate = validator.New()

// Dataset is the YAML interchange document for one complete research
// project. Participants and questions are referenced by their local keys;
// database ids are assigned on import.
type Dataset struct {
	Research     DatasetResearch      `yaml:"research"`
	Questions    []DatasetQuestion    `yaml:"questions" validate:"required,min=1,dive"`
	Participants []DatasetParticipant `yaml:"participants" validate:"required,min=1,dive"`
	Responses    []DatasetResponse    `yaml:"responses" validate:"dive"`
}

// DatasetResearch holds research-level fields.
type DatasetResearch struct {
	Name string `yaml:"name" validate:"required,max=255"`
}

// DatasetQuestion declares a question and its required choice count.
type DatasetQuestion struct {
	Key         string `yaml:"key" validate:"required"`
	Text        string `yaml:"text" validate:"required,max=255"`
	ChoiceCount int    `yaml:"choice_count" validate:"min=1"`
}

// DatasetParticipant declares one roster member.
type DatasetParticipant struct {
	Key         string `yaml:"key" validate:"required"`
	Name        string `yaml:"name" validate:"required,max=100"`
	Age         int    `yaml:"age" validate:"gte=0"`
	Gender      string `yaml:"gender" validate:"required,oneof=male female other"`
	Description string `yaml:"description,omitempty"`
}

// DatasetResponse records every target one source nominated for a question.
type DatasetResponse struct {
	Question string   `yaml:"question" validate:"required"`
	Source   string   `yaml:"source" validate:"required"`
	Targets  []string `yaml:"targets" validate:"required,min=1,dive,required"`
}

// LoadDataset reads and validates a dataset file.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	return ParseDataset(data)
}

// ParseDataset decodes and validates a YAML dataset.
func ParseDataset(data []byte) (*Dataset, error) {
	ds := &Dataset{}
	if err := yaml.Unmarshal(data, ds); err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Validate checks field rules and cross references. The upper bound on a
// question's choice count is the number of other participants.
func (d *Dataset) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDataset, formatValidationError(err))
	}
	return d.validateReferences(len(d.Participants) - 1)
}

func (d *Dataset) validateReferences(maxChoices int) error {
	questions := make(map[string]struct{}, len(d.Questions))
	texts := make(map[string]struct{}, len(d.Questions))
	for _, q := range d.Questions {
		if _, dup := questions[q.Key]; dup {
			return fmt.Errorf("%w: question %q has already been selected", ErrInvalidDataset, q.Key)
		}
		if _, dup := texts[q.Text]; dup {
			return fmt.Errorf("%w: question %q has already been selected", ErrInvalidDataset, q.Text)
		}
		questions[q.Key] = struct{}{}
		texts[q.Text] = struct{}{}
		if q.ChoiceCount > maxChoices {
			return fmt.Errorf("%w: question %q: choice_count %d exceeds max allowed %d",
				ErrInvalidDataset, q.Key, q.ChoiceCount, maxChoices)
		}
	}

	participants := make(map[string]struct{}, len(d.Participants))
	for _, p := range d.Participants {
		if _, dup := participants[p.Key]; dup {
			return fmt.Errorf("%w: duplicate participant key %q", ErrInvalidDataset, p.Key)
		}
		participants[p.Key] = struct{}{}
	}

	for i, r := range d.Responses {
		if _, ok := questions[r.Question]; !ok {
			return fmt.Errorf("%w: responses[%d]: unknown question %q", ErrInvalidDataset, i, r.Question)
		}
		if _, ok := participants[r.Source]; !ok {
			return fmt.Errorf("%w: responses[%d]: unknown participant %q", ErrInvalidDataset, i, r.Source)
		}
		for _, t := range r.Targets {
			if _, ok := participants[t]; !ok {
				return fmt.Errorf("%w: responses[%d]: unknown participant %q", ErrInvalidDataset, i, t)
			}
			if t == r.Source {
				return fmt.Errorf("%w: responses[%d]: %q nominates themselves", ErrInvalidDataset, i, t)
			}
		}
	}
	return nil
}

// formatValidationError renders validator errors as readable field messages.
func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return strings.Join(msgs, "; ")
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Namespace())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
