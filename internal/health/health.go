// Package health provides dependency health checks for poretally. It validates
// that the external tools a run needs (the Snakemake command, conda, a shell for
// version probes) are available and that pipeline definitions load, returning
// structured reports used by the 'poretally doctor' command.
package health

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	"github.com/ariel-frischer/poretally/internal/pipeline"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
	// Optional checks are reported but do not fail the report.
	Optional bool
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

// Options selects what RunHealthChecks looks at.
type Options struct {
	// ExecutorCommand is the configured engine command template.
	ExecutorCommand string
	// UseConda requires conda when set.
	UseConda bool
	// Source is where pipeline definitions are read from.
	Source pipeline.Source
	// LookPath replaces exec.LookPath in tests.
	LookPath func(file string) (string, error)
}

// RunHealthChecks runs all health checks and returns a report.
func RunHealthChecks(opts Options) *HealthReport {
	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	report := &HealthReport{Passed: true}
	add := func(c CheckResult) {
		report.Checks = append(report.Checks, c)
		if !c.Passed && !c.Optional {
			report.Passed = false
		}
	}

	add(CheckExecutor(opts.ExecutorCommand, lookPath))
	conda := CheckBinary("conda", "conda", lookPath)
	conda.Optional = !opts.UseConda
	add(conda)
	add(CheckBinary("Probe shell", "sh", lookPath))
	if opts.Source != nil {
		add(CheckDefinitions(opts.Source))
	}
	return report
}

// CheckExecutor checks that the first word of the executor command
// template resolves to a program.
func CheckExecutor(command string, lookPath func(string) (string, error)) CheckResult {
	const name = "Snakemake"
	args, err := shlex.Split(command)
	if err != nil {
		return CheckResult{Name: name, Message: fmt.Sprintf("invalid executor command %q: %v", command, err)}
	}
	if len(args) == 0 {
		return CheckResult{Name: name, Message: "executor command is empty"}
	}
	return CheckBinary(name, args[0], lookPath)
}

// CheckBinary checks that file is in PATH.
func CheckBinary(name, file string, lookPath func(string) (string, error)) CheckResult {
	path, err := lookPath(file)
	if err != nil {
		return CheckResult{Name: name, Message: fmt.Sprintf("%s not found in PATH", file)}
	}
	return CheckResult{Name: name, Passed: true, Message: fmt.Sprintf("found %s", path)}
}

// CheckDefinitions loads every definition src lists.
func CheckDefinitions(src pipeline.Source) CheckResult {
	const name = "Pipeline definitions"
	names, err := src.Names()
	if err != nil {
		return CheckResult{Name: name, Message: err.Error()}
	}
	if len(names) == 0 {
		return CheckResult{Name: name, Message: "no definitions found"}
	}

	var broken []string
	for _, n := range names {
		if _, err := src.Lookup(n); err != nil {
			var invalid *pipeline.InvalidDefinitionError
			if errors.As(err, &invalid) {
				broken = append(broken, n)
				continue
			}
			return CheckResult{Name: name, Message: err.Error()}
		}
	}
	if len(broken) > 0 {
		return CheckResult{
			Name:    name,
			Message: fmt.Sprintf("%d of %d invalid: %s", len(broken), len(names), strings.Join(broken, ", ")),
		}
	}
	return CheckResult{Name: name, Passed: true, Message: fmt.Sprintf("%d pipelines load", len(names))}
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var sb strings.Builder
	for _, check := range report.Checks {
		switch {
		case check.Passed:
			fmt.Fprintf(&sb, "✓ %s: %s\n", check.Name, check.Message)
		case check.Optional:
			fmt.Fprintf(&sb, "○ %s: %s\n", check.Name, check.Message)
		default:
			fmt.Fprintf(&sb, "✗ %s: %s\n", check.Name, check.Message)
		}
	}
	return sb.String()
}
