package pipeline

import (
	"fmt"
	"strings"
)

// UnresolvedDefinitionError reports a requested pipeline with no
// definition. It is a warning: the pipeline is left out of the script.
type UnresolvedDefinitionError struct {
	Pipeline string
	// Searched lists the locations that were tried.
	Searched []string
}

// Warning returns the warning message.
func (e *UnresolvedDefinitionError) Warning() string {
	if len(e.Searched) == 0 {
		return fmt.Sprintf("could not find a definition for pipeline %q, skipping", e.Pipeline)
	}
	return fmt.Sprintf("could not find a definition for pipeline %q (searched %s), skipping",
		e.Pipeline, strings.Join(e.Searched, ", "))
}

// Error implements the error interface.
func (e *UnresolvedDefinitionError) Error() string {
	return e.Warning()
}

// InvalidDefinitionError reports a definition file that exists but cannot
// be used.
type InvalidDefinitionError struct {
	Pipeline string
	Origin   string
	Err      error
}

// Error implements the error interface.
func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("invalid definition for pipeline %q (%s): %v", e.Pipeline, e.Origin, e.Err)
}

// Unwrap returns the underlying error.
func (e *InvalidDefinitionError) Unwrap() error {
	return e.Err
}
