package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/poretally/internal/assemble"
)

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <pipeline>...",
		Short: "Print the Snakefile for the given pipelines without writing the run",
		Long: `Print the Snakefile for the given pipelines.

Nothing under the working directory is created: no directories, side files,
merged reads or manifest. Paths in the output still point into the working
directory, so the text matches what assemble would write.`,
		Example: `  # Inspect the rule generated for a pipeline
  poretally render flye --ref-size 4600000

  # Save the Snakefile somewhere else
  poretally render canu raven -o /tmp/Snakefile`,
		GroupID: GroupRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return a.runRender(cmd, args)
		},
	}

	addRunFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Write the Snakefile to this file instead of stdout")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, args []string) error {
	req, err := a.request(cmd, args)
	if err != nil {
		return err
	}

	plan, err := assemble.NewRunner(a.source(cmd), assemble.WithLogger(a.logger())).Plan(cmd.Context(), req)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), plan.Script.Text)
		return err
	}
	if err := os.WriteFile(output, []byte(plan.Script.Text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d rules)\n", output, len(plan.Pipelines()))
	return nil
}
