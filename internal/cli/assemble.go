package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/poretally/internal/assemble"
	clierrors "github.com/ariel-frischer/poretally/internal/errors"
	"github.com/ariel-frischer/poretally/internal/executor"
	"github.com/ariel-frischer/poretally/internal/progress"
)

func newAssembleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assemble <pipeline>...",
		Aliases: []string{"run"},
		Short:   "Write the Snakefile for the given pipelines and run it",
		Long: `Write the Snakefile for the given pipelines and run it with Snakemake.

The run writes, under <working-dir>/assembler_results/:
  - command_files/<pipeline>.cmd   rendered commands, for reference
  - conda_files/<pipeline>.yaml    conda environment, when the pipeline has one
  - runs/<run-id>.yaml             run manifest
and the Snakefile itself (Snakefile_assemblies_<timestamp>_<run>) in the
working directory. Reads given with --reads are merged into all_reads.fastq.

Pipelines whose definition cannot be found, or whose commands reference a
parameter that was not given, are skipped with a warning.`,
		Example: `  # Run the built-in canu and flye pipelines
  poretally assemble canu flye --reads ./fastq --ref-size 4600000 --sequenced-size 230000000

  # Write everything but do not start Snakemake
  poretally assemble raven --dry-run

  # Record who sequenced what in the run manifest
  poretally assemble flye --reads ./fastq --user-info user_info.yaml

  # Use your own definitions next to the built-in ones
  poretally assemble my_pipeline --definitions ./pipelines --param GENOME=ecoli`,
		GroupID: GroupRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return a.runAssemble(cmd, args)
		},
	}

	addRunFlags(cmd)
	cmd.Flags().BoolP("dry-run", "n", false, "Write the Snakefile and side files without running Snakemake")
	cmd.Flags().String("user-info", "", "User info YAML (authors, organism, basecaller, flowcell, kit) to record in the manifest")
	return cmd
}

func (a *app) runAssemble(cmd *cobra.Command, args []string) error {
	req, err := a.request(cmd, args)
	if err != nil {
		return err
	}
	req.DryRun, _ = cmd.Flags().GetBool("dry-run")
	if path, _ := cmd.Flags().GetString("user-info"); path != "" {
		if req.UserInfo, err = loadUserInfo(path); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	opts := []assemble.Option{
		assemble.WithLogger(a.logger()),
		assemble.WithOutput(out, cmd.ErrOrStderr()),
	}

	if !req.DryRun {
		snakemake, err := executor.NewSnakemake(executor.Config{
			Command:  a.cfg.Executor.Command,
			Cores:    a.cfg.Executor.Cores,
			UseConda: a.cfg.Executor.UseConda,
			Timeout:  a.cfg.Executor.Timeout,
		})
		if err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Configuration, "invalid executor.command",
				"Set executor.command in the config file, e.g. 'snakemake --keep-going'")
		}
		if err := snakemake.Validate(); err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Prerequisite, "Snakemake is not available",
				"Install it with: conda install -c bioconda snakemake",
				"Or point executor.command at your installation")
		}
		opts = append(opts, assemble.WithExecutor(&indicatedExecutor{
			inner:     snakemake,
			indicator: progress.NewIndicator(cmd.ErrOrStderr(), terminalCapabilities(cmd.ErrOrStderr())),
		}))
	}

	outcome, err := assemble.NewRunner(a.source(cmd), opts...).Run(cmd.Context(), req)
	if outcome != nil && outcome.Plan != nil {
		printRunSummary(out, outcome)
	}
	return err
}

// indicatedExecutor shows a progress indicator while the wrapped executor
// runs.
type indicatedExecutor struct {
	inner     executor.Executor
	indicator *progress.Indicator
}

func (e *indicatedExecutor) Run(ctx context.Context, inv executor.Invocation) (*executor.Result, error) {
	e.indicator.Start(fmt.Sprintf("Running %d pipeline(s)", len(inv.Targets)))
	res, err := e.inner.Run(ctx, inv)
	e.indicator.Stop(err == nil)
	return res, err
}

// terminalCapabilities inspects w when it is a file.
func terminalCapabilities(w io.Writer) progress.TerminalCapabilities {
	f, ok := w.(*os.File)
	if !ok {
		return progress.TerminalCapabilities{}
	}
	return progress.DetectTerminalCapabilities(f)
}

func printRunSummary(w io.Writer, outcome *assemble.Outcome) {
	plan := outcome.Plan
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", bold("Run:"), plan.RunID)
	fmt.Fprintf(w, "%s %s\n", bold("Snakefile:"), plan.SnakefilePath)
	fmt.Fprintf(w, "%s %s\n", bold("Manifest:"), plan.Layout.Manifest(plan.RunID))
	for _, name := range plan.Pipelines() {
		fmt.Fprintf(w, "  %s %s\n", name, dim(plan.Layout.LogFile(name)))
	}
	for _, s := range plan.Skipped {
		fmt.Fprintf(w, "  %s %s\n", yellow("skipped"), s.Pipeline)
	}
	if outcome.Result != nil {
		fmt.Fprintf(w, "%s exit %d after %s\n", bold("Snakemake:"), outcome.Result.ExitCode, outcome.Result.Duration)
	}
}
