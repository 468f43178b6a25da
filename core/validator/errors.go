package validator

import (
	"errors"
	"strings"
)

// ErrInvalidTarget is returned when ValidateStruct is not given a pointer to
// a struct.
var ErrInvalidTarget = errors.New("validator: must pass a pointer to struct")

// ValidationError describes a single failed rule.
type ValidationError struct {
	Field             string
	Message           string
	TranslationKey    string
	TranslationValues map[string]any
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every failed rule of a struct.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, err := range e {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}

// IsEmpty reports whether no rule failed.
func (e ValidationErrors) IsEmpty() bool {
	return len(e) == 0
}

// Add appends err.
func (e *ValidationErrors) Add(err ValidationError) {
	*e = append(*e, err)
}

// Has reports whether field has at least one error.
func (e ValidationErrors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Fields maps each failed field to its first message.
func (e ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, err := range e {
		if _, ok := out[err.Field]; !ok {
			out[err.Field] = err.Message
		}
	}
	return out
}
