// internal/assessment/errors.go
package assessment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by errors.Is for every input validation failure.
var ErrValidation = errors.New("ASSESSMENT_VALIDATION_FAILED")

// Validation codes.
const (
	CodeRequired     = "REQUIRED_FIELD_MISSING"
	CodeInvalidEnum  = "INVALID_ENUM_VALUE"
	CodeNonPositive  = "NON_POSITIVE_VALUE"
	CodeInvalidValue = "INVALID_VALUE"
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidEnum(field, value string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Code:    CodeInvalidEnum,
		Message: fmt.Sprintf("unrecognised value %q", value),
	}
}

// ValidationErrors is returned by Compute when the input is rejected.
// It always holds at least one entry.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(msgs, "; "))
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Fields lists the offending field paths in the order they were found.
func (v ValidationErrors) Fields() []string {
	out := make([]string, len(v))
	for i, e := range v {
		out[i] = e.Field
	}
	return out
}

// WarningDegenerateCycleTimes flags a process whose cycle times were all <= 0.
const WarningDegenerateCycleTimes = "DEGENERATE_CYCLE_TIMES"

// Warning is a non-fatal finding the caller should surface to the user.
type Warning struct {
	Code         string `json:"code"`
	ProcessIndex int    `json:"processIndex"`
	Message      string `json:"message"`
}
