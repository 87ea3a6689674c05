package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/poretally/internal/git"
)

func newCheckRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-repo <url>",
		Short: "Check that results can be pushed to a git repository",
		Long: `Check that results can be pushed to a git repository.

A scratch repository is created, a marker commit is pushed to the
poretally_push_test branch, its removal is pushed, and the branch is
deleted again. The scratch repository is always removed.

Credentials: ssh-agent for SSH URLs; GIT_USERNAME and GIT_PASSWORD, or
GITHUB_TOKEN, for HTTPS URLs.`,
		Example: `  # Check a GitHub repository over SSH
  poretally check-repo git@github.com:lab/assembly-benchmarks.git`,
		GroupID: GroupSetup,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			timeout, _ := cmd.Flags().GetDuration("timeout")
			probe := &git.PushProbe{Timeout: timeout}
			if err := probe.Check(cmd.Context(), args[0]); err != nil {
				return err
			}

			green := color.New(color.FgGreen, color.Bold).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s push access to %s\n", green("OK"), args[0])
			return nil
		},
	}
	cmd.Flags().Duration("timeout", git.DefaultPushTimeout, "Give up after this long")
	return cmd
}
