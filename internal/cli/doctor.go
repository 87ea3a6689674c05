package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	clierrors "github.com/ariel-frischer/poretally/internal/errors"
	"github.com/ariel-frischer/poretally/internal/health"
)

func newDoctorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the tools a run needs are installed",
		Long: `Check that the tools a run needs are installed:
  - the program named by executor.command (Snakemake)
  - conda, required when executor.use_conda is set
  - sh, used for version probes
  - every pipeline definition loads`,
		GroupID: GroupSetup,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			report := health.RunHealthChecks(health.Options{
				ExecutorCommand: a.cfg.Executor.Command,
				UseConda:        a.cfg.Executor.UseConda,
				Source:          a.source(cmd),
			})
			fmt.Fprint(cmd.OutOrStdout(), health.FormatReport(report))
			if !report.Passed {
				return clierrors.NewPrerequisiteError("some required checks failed",
					"Install Snakemake and conda, e.g. from https://github.com/conda-forge/miniforge",
					"Or adjust executor.command and executor.use_conda in the config")
			}
			return nil
		},
	}
	cmd.Flags().String("definitions", "", "Directory of pipeline definitions (default: definitions_dir from config)")
	return cmd
}
