package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/poretally/internal/banner"
	"github.com/ariel-frischer/poretally/internal/params"
	"github.com/ariel-frischer/poretally/internal/pipeline"
)

func newPipelinesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pipelines",
		Aliases: []string{"pl"},
		Short:   "List and inspect pipeline definitions",
		Long: `List and inspect pipeline definitions.

Definitions come from the definitions directory (--definitions or
definitions_dir in the config), which shadows the built-in catalogue.`,
		Example: `  # List every pipeline that can be run
  poretally pipelines list

  # Show a definition and the installed tool versions
  poretally pipelines show flye --probe`,
		GroupID: GroupInspect,
	}
	cmd.PersistentFlags().String("definitions", "", "Directory of pipeline definitions (default: definitions_dir from config)")

	cmd.AddCommand(newPipelinesListCmd(a), newPipelinesShowCmd(a))
	return cmd
}

func newPipelinesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available pipelines",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return listPipelines(cmd.OutOrStdout(), a.source(cmd))
		},
	}
}

func listPipelines(w io.Writer, src pipeline.Source) error {
	names, err := src.Names()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "No pipeline definitions found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range names {
		def, err := src.Lookup(name)
		if err != nil {
			fmt.Fprintf(tw, "%s\t(invalid: %v)\n", name, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, firstLine(def.Description))
	}
	return tw.Flush()
}

func newPipelinesShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <pipeline>",
		Short: "Show a pipeline definition",
		Long: `Show a pipeline definition: its description, version probes, command
template and the parameters the template needs.

With --probe, every version probe is run in a shell and its output shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			def, err := a.source(cmd).Lookup(args[0])
			if err != nil {
				return err
			}
			probe, _ := cmd.Flags().GetBool("probe")
			var resolved []banner.Resolved
			if probe {
				resolved = banner.ResolveAll(cmd.Context(), banner.ShellProber{}, def.Versions)
			}
			return showPipeline(cmd.OutOrStdout(), def, resolved)
		},
	}
	cmd.Flags().Bool("probe", false, "Run the version probes and show the installed versions")
	return cmd
}

func showPipeline(w io.Writer, def *pipeline.Definition, resolved []banner.Resolved) error {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", bold("Pipeline:"), def.Name)
	fmt.Fprintf(w, "%s %s\n", bold("Source:"), dim(def.Origin))
	fmt.Fprintf(w, "%s %s\n", bold("Description:"), strings.TrimSpace(def.Description))

	if len(def.Versions) > 0 {
		fmt.Fprintf(w, "\n%s\n", bold("Versions:"))
		for i, p := range def.Versions {
			switch {
			case resolved == nil:
				fmt.Fprintf(w, "  %s: %s\n", p.Tool, dim(p.Expr))
			case resolved[i].Err != nil:
				fmt.Fprintf(w, "  %s: %s\n", p.Tool, red(resolved[i].Err.Error()))
			default:
				fmt.Fprintf(w, "  %s: %s\n", p.Tool, resolved[i].Version)
			}
		}
	}

	if names := params.Placeholders(def.Commands); len(names) > 0 {
		fmt.Fprintf(w, "\n%s %s\n", bold("Parameters:"), strings.Join(names, ", "))
	}

	fmt.Fprintf(w, "\n%s\n", bold("Commands:"))
	for _, line := range strings.Split(strings.TrimRight(def.Commands, "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}

	env, err := def.Environment()
	if err != nil {
		return err
	}
	if env != nil {
		fmt.Fprintf(w, "\n%s\n", bold("Conda environment:"))
		for _, line := range strings.Split(strings.TrimRight(string(env), "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
