package snakefile

import "fmt"

// SynthesisError reports input that cannot be written as valid rule text.
// Any SynthesisError aborts the whole run.
type SynthesisError struct {
	// Pipeline is the rule being written.
	Pipeline string
	// Directive is the offending directive keyword, "shell", or empty for
	// rule-level problems.
	Directive string
	// Value is the offending value, when there is one.
	Value string
	// Reason describes the problem.
	Reason string
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	msg := fmt.Sprintf("rule %q", e.Pipeline)
	if e.Directive != "" {
		msg += fmt.Sprintf(", %s", e.Directive)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(", value %q", e.Value)
	}
	return msg + ": " + e.Reason
}

// Unwrap returns the underlying error.
func (e *SynthesisError) Unwrap() error {
	return e.Err
}
