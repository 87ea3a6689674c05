package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/ariel-frischer/poretally/internal/assemble"
	"github.com/ariel-frischer/poretally/internal/executor"
	"github.com/ariel-frischer/poretally/internal/git"
	"github.com/ariel-frischer/poretally/internal/logs"
	"github.com/ariel-frischer/poretally/internal/params"
	"github.com/ariel-frischer/poretally/internal/pipeline"
	"github.com/ariel-frischer/poretally/internal/reads"
	"github.com/ariel-frischer/poretally/internal/snakefile"
	"github.com/ariel-frischer/poretally/internal/userinfo"
)

// NoPipelinesGiven creates an error for a run without pipeline names.
func NoPipelinesGiven(usage string) *CLIError {
	return NewArgumentErrorWithUsage(
		"at least one pipeline is required",
		usage,
		"List the available pipelines with: poretally pipelines list",
	)
}

// InvalidParamFlag creates an error for a malformed --param value.
func InvalidParamFlag(value string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid parameter %q", value),
		"--param NAME=VALUE",
		"Parameter names must match [A-Za-z_][A-Za-z0-9_]*",
		"Example: --param GENOME=ecoli",
	)
}

// Classify converts an error from the core packages into a CLIError with
// remediation. Errors that are already CLIErrors are returned as is;
// unknown errors become runtime errors.
func Classify(err error) *CLIError {
	if err == nil {
		return nil
	}
	if cliErr := AsCLIError(err); cliErr != nil {
		return cliErr
	}

	var (
		missing    *params.MissingParameterError
		invalidPrm *params.InvalidParameterError
		synth      *snakefile.SynthesisError
		unresolved *pipeline.UnresolvedDefinitionError
		invalidDef *pipeline.InvalidDefinitionError
		dup        *assemble.DuplicatePipelineError
		exitErr    *executor.ExitError
		push       *git.PushAccessError
		info       *userinfo.InvalidError
	)

	switch {
	case stderrors.As(err, &missing):
		names := append([]string{missing.Placeholder}, missing.Others...)
		return Wrap(err, Configuration,
			fmt.Sprintf("Pass the value with --param %s=VALUE", strings.Join(names, "=VALUE --param ")),
			"Or remove the placeholder from the pipeline definition",
		)
	case stderrors.As(err, &invalidPrm):
		return Wrap(err, Argument, "Parameter names must match [A-Za-z_][A-Za-z0-9_]*")
	case stderrors.As(err, &synth):
		return Wrap(err, Runtime,
			fmt.Sprintf("Check the definition of pipeline %q", synth.Pipeline),
			"Values may not contain backslashes, line breaks or NUL bytes",
			"Commands may not contain ''' (three single quotes)",
		)
	case stderrors.As(err, &unresolved):
		return Wrap(err, Configuration,
			"List the available pipelines with: poretally pipelines list",
			"Add a <name>.yaml definition to the definitions directory",
		)
	case stderrors.As(err, &invalidDef):
		return Wrap(err, Configuration,
			fmt.Sprintf("Fix the definition file %s", invalidDef.Origin),
			"A definition needs a description and commands",
		)
	case stderrors.As(err, &dup):
		return Wrap(err, Argument, "Name each pipeline once")
	case stderrors.Is(err, assemble.ErrNothingToRun):
		return Wrap(err, Configuration, "Check the warnings above for why each pipeline was skipped")
	case stderrors.Is(err, reads.ErrNoReads):
		return Wrap(err, Prerequisite,
			"Check the --reads locations",
			"Directories are searched with the reads_pattern glob (default *.fastq)",
		)
	case stderrors.Is(err, logs.ErrNoMethods):
		return Wrap(err, Prerequisite, "The pipeline may not have started yet; check the log file path")
	case stderrors.As(err, &exitErr):
		return Wrap(err, Runtime,
			"Inspect the per-pipeline logs under assembler_results/log_files/",
			"Re-run with --dry-run to check the Snakefile without executing it",
		)
	case stderrors.As(err, &push):
		return Wrap(err, Prerequisite,
			"Check that the repository exists and that you may push to it",
			"For HTTPS set GIT_USERNAME and GIT_PASSWORD (or GITHUB_TOKEN); for SSH start ssh-agent",
		)
	case stderrors.As(err, &info):
		return Wrap(err, Argument,
			"A user info file is a YAML mapping with authors, organism, basecaller, flowcell and kit",
			"Check it with: poretally check-info "+info.Path,
		)
	default:
		return Wrap(err, Runtime)
	}
}
