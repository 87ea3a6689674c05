// Package executor hands a synthesized Snakefile to an external workflow
// engine. The engine owns scheduling, dependency resolution and process
// supervision; this package only builds its command line and waits for it.
package executor

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Invocation describes one executor run.
type Invocation struct {
	// Snakefile is the path of the workflow file to execute.
	Snakefile string
	// WorkDir is the directory the engine runs in.
	WorkDir string
	// Targets are the rule names to build. Empty means the engine default.
	Targets []string
	// DryRun asks the engine to print the plan without running jobs.
	DryRun bool
	// Stdout and Stderr receive the engine output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// Result reports how an executor run ended.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Executor runs a Snakefile.
type Executor interface {
	Run(ctx context.Context, inv Invocation) (*Result, error)
}

// ExitError is returned when the engine exits with a non-zero status.
type ExitError struct {
	Command  string
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("executor %q exited with status %d", e.Command, e.ExitCode)
}
