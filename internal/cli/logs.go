package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/poretally/internal/assemble"
	"github.com/ariel-frischer/poretally/internal/logs"
)

func newLogsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs <pipeline|log-file>",
		Short: "Stream or view a pipeline log",
		Long: `Stream or view the log of one pipeline.

The argument is either a pipeline name, resolved to
<working-dir>/assembler_results/log_files/<pipeline>.log, or a path to a
log file. The log file path is printed first.

By default new lines are streamed as Snakemake writes them, tail -f style,
and the command waits for the file if the rule has not started yet. Use
--no-follow to print the current content and exit.`,
		Example: `  # Follow the flye log of the run in the current directory
  poretally logs flye

  # Dump a log file and exit
  poretally logs ./assembler_results/log_files/canu.log --no-follow`,
		GroupID: GroupInspect,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			workDir, _ := cmd.Flags().GetString("working-dir")
			if workDir == "" {
				workDir = a.cfg.WorkingDir
			}
			logPath, err := resolveLogPath(args[0], workDir)
			if err != nil {
				return err
			}

			noFollow, _ := cmd.Flags().GetBool("no-follow")
			printLogHeader(cmd.OutOrStdout(), logPath)
			return streamLogs(cmd.Context(), cmd.OutOrStdout(), logPath, !noFollow)
		},
	}
	cmd.Flags().StringP("working-dir", "w", "", "Run directory used to resolve pipeline names (default: working_dir from config)")
	cmd.Flags().Bool("no-follow", false, "Print log content and exit (no streaming)")
	return cmd
}

// resolveLogPath treats arg as a path when it names an existing file or
// looks like one, and as a pipeline name otherwise.
func resolveLogPath(arg, workDir string) (string, error) {
	if _, err := os.Stat(arg); err == nil || strings.ContainsRune(arg, os.PathSeparator) || strings.HasSuffix(arg, ".log") {
		return arg, nil
	}
	layout, err := assemble.NewLayout(workDir)
	if err != nil {
		return "", err
	}
	return layout.LogFile(arg), nil
}

// printLogHeader prints the log file path header.
func printLogHeader(w io.Writer, logPath string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprint(w, "Log: ")
	fmt.Fprintln(w, logPath)
	fmt.Fprintln(w)
}

// streamLogs copies log lines to w until the log ends (no follow) or ctx
// is done.
func streamLogs(ctx context.Context, w io.Writer, logPath string, follow bool) error {
	tailer, err := logs.NewTailer(logPath)
	if err != nil {
		return fmt.Errorf("creating log tailer: %w", err)
	}
	defer tailer.Close()

	lines, err := tailer.Tail(ctx, follow)
	if err != nil {
		return fmt.Errorf("starting log tail: %w", err)
	}

	for line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}
