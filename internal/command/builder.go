// Package command turns a pipeline's raw command template into the ordered
// statements of its rule: a cd into the pipeline's working directory, the
// METHODS banner, then the rendered template split into statements.
package command

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/poretally/internal/banner"
	"github.com/ariel-frischer/poretally/internal/params"
)

// Input is everything needed to build one pipeline's statements.
type Input struct {
	// Pipeline names the pipeline, for error messages.
	Pipeline string
	// Template is the raw multi-line command template.
	Template string
	// Params fills the template placeholders.
	Params *params.Context
	// WorkDir is the pipeline's dedicated output subdirectory.
	WorkDir string
	// Probes and Description feed the METHODS banner.
	Probes      banner.Probes
	Description string
}

// Sequence is the built statement list for one pipeline.
type Sequence struct {
	// Statements is cd, banner, then the template statements.
	Statements []string
	// Rendered is the full rendered template text.
	Rendered string
	// Empty is set when the template rendered to no statements.
	Empty bool
}

// Build renders in.Template and assembles the pipeline's statements.
// It fails with *params.MissingParameterError when a placeholder has no
// value. A template with no statements still yields cd and banner; the
// sequence is flagged Empty.
func Build(in Input) (*Sequence, error) {
	if in.WorkDir == "" {
		return nil, fmt.Errorf("pipeline %q: working directory is empty", in.Pipeline)
	}

	rendered, err := in.Params.Render(in.Pipeline, in.Template)
	if err != nil {
		return nil, err
	}

	body := Split(rendered)
	header := banner.Statements(in.Probes, in.Description)

	stmts := make([]string, 0, 1+len(header)+len(body))
	stmts = append(stmts, ChangeDir(in.WorkDir))
	stmts = append(stmts, header...)
	stmts = append(stmts, body...)

	return &Sequence{
		Statements: stmts,
		Rendered:   rendered,
		Empty:      len(body) == 0,
	}, nil
}

// Split breaks rendered text into statements on line breaks. Trailing
// carriage returns are removed and blank lines dropped.
func Split(rendered string) []string {
	lines := strings.Split(rendered, "\n")
	stmts := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		stmts = append(stmts, line)
	}
	return stmts
}

// ChangeDir returns the statement entering dir.
func ChangeDir(dir string) string {
	return "cd " + dir
}
