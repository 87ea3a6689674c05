package params

import (
	"fmt"
	"strings"
)

// MissingParameterError is returned when a template references a name that
// the Context does not define.
type MissingParameterError struct {
	// Pipeline is the pipeline whose template was being rendered.
	Pipeline string
	// Placeholder is the first unresolved name.
	Placeholder string
	// Others lists further unresolved names, in order of appearance.
	Others []string
}

// Error implements the error interface.
func (e *MissingParameterError) Error() string {
	msg := fmt.Sprintf("pipeline %q: missing parameter %q", e.Pipeline, e.Placeholder)
	if len(e.Others) > 0 {
		msg += fmt.Sprintf(" (also missing: %s)", strings.Join(e.Others, ", "))
	}
	return msg
}

// InvalidParameterError is returned when a Context cannot be constructed.
type InvalidParameterError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Name, e.Reason)
}
