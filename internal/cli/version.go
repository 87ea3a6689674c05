package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/poretally/internal/build"
)

// SourceURL is the project source URL
const SourceURL = "https://github.com/ariel-frischer/poretally"

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Display version information (v)",
		Long:    "Display version, commit, build date, and Go version information for poretally",
		Example: `  # Show version info
  poretally version

  # Plain output (for scripts)
  poretally version --plain`,
		GroupID: GroupSetup,
		Args:    cobra.NoArgs,
		// Version output must not depend on a readable config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			plain, _ := cmd.Flags().GetBool("plain")
			if plain {
				printPlainVersion(cmd.OutOrStdout(), build.Current())
				return
			}
			printPrettyVersion(cmd.OutOrStdout(), build.Current())
		},
	}
	cmd.Flags().Bool("plain", false, "Plain output without formatting")
	return cmd
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(w io.Writer, info build.Info) {
	fmt.Fprintf(w, "poretally %s\n", info.Version)
	fmt.Fprintf(w, "commit: %s\n", info.Commit)
	fmt.Fprintf(w, "built: %s\n", info.BuildDate)
	fmt.Fprintf(w, "go: %s\n", info.GoVersion)
	fmt.Fprintf(w, "platform: %s\n", info.Platform)
}

// printPrettyVersion prints a styled version output
func printPrettyVersion(w io.Writer, info build.Info) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	commit := info.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", cyan("poretally"), dim("assembly pipeline benchmarks"))
	fmt.Fprintln(w)
	rows := []struct {
		label string
		value string
	}{
		{"Version", info.Version},
		{"Commit", commit},
		{"Built", info.BuildDate},
		{"Go", info.GoVersion},
		{"Platform", info.Platform},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %s    %s\n", yellow(fmt.Sprintf("%10s", r.label)), white(r.value))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n\n", dim(SourceURL))
}
