package greeting

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when no greeting has the requested id
var ErrNotFound = errors.New("greeting not found")

// Violation is a single failed validation rule
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists every rule an input broke
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, ", ")
}
