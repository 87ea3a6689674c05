package assemble

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNothingToRun is returned when every requested pipeline was skipped.
var ErrNothingToRun = errors.New("no pipeline could be turned into a rule")

// DuplicatePipelineError reports a pipeline requested more than once.
type DuplicatePipelineError struct {
	Pipelines []string
}

// Error implements the error interface.
func (e *DuplicatePipelineError) Error() string {
	return fmt.Sprintf("pipeline(s) requested more than once: %s", strings.Join(e.Pipelines, ", "))
}

// SkippedPipeline records a requested pipeline that is left out of the
// Snakefile, with the cause.
type SkippedPipeline struct {
	Pipeline string
	Err      error
}

// Warning returns the warning message.
func (s SkippedPipeline) Warning() string {
	if w, ok := s.Err.(interface{ Warning() string }); ok {
		return w.Warning()
	}
	return fmt.Sprintf("skipping pipeline %q: %v", s.Pipeline, s.Err)
}
