package rule

import "fmt"

// EmptyPipelineWarning reports a pipeline whose template produced no
// statements. The rule is still emitted with its cd and banner.
type EmptyPipelineWarning struct {
	Pipeline string
}

// Warning returns the warning message.
func (w *EmptyPipelineWarning) Warning() string {
	return fmt.Sprintf("pipeline %q has no commands besides the methods banner", w.Pipeline)
}

// Error lets the warning travel through error-typed channels.
func (w *EmptyPipelineWarning) Error() string {
	return w.Warning()
}
