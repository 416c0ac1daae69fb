package marking

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Document is one submission to be marked. Callers must not mutate it
// while a marking call is in flight.
type Document struct {
	ID          string `json:"id"`
	Text        string `json:"text" validate:"required"`
	StudentName string `json:"student_name,omitempty" validate:"max=200"`
	Assignment  string `json:"assignment,omitempty" validate:"max=200"`
}

// Validate checks the document and assigns an ID when missing.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return newValidationError(err)
	}
	if strings.TrimSpace(d.Text) == "" {
		return &ValidationError{Fields: []string{"text is blank"}, Err: ErrValidation}
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

func (d Document) student() string    { return orUnknown(d.StudentName) }
func (d Document) assignment() string { return orUnknown(d.Assignment) }

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "Unknown"
	}
	return s
}
