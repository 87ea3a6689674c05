package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	clierrors "github.com/ariel-frischer/poretally/internal/errors"
	"github.com/ariel-frischer/poretally/internal/userinfo"
)

func newCheckInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-info <file>",
		Short: "Check a user info file before publishing results",
		Long: `Check a user info file: a YAML mapping that describes the sample and must
set authors, organism, basecaller, flowcell and kit. Other keys are kept.

Pass the same file to 'poretally assemble --user-info' to record it in the
run manifest.`,
		Example: `  poretally check-info user_info.yaml`,
		GroupID: GroupSetup,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			info, err := loadUserInfo(args[0])
			if err != nil {
				return err
			}
			green := color.New(color.FgGreen, color.Bold).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s by %s (%s, %s, %s)\n", green("OK"), args[0],
				info.Organism, strings.Join(info.Authors, ", "), info.Basecaller, info.Flowcell, info.Kit)
			return nil
		},
	}
}

// loadUserInfo reads the user info file at path. A missing file is an
// argument error; content problems are classified later.
func loadUserInfo(path string) (*userinfo.Info, error) {
	info, err := userinfo.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, clierrors.WrapWithMessage(err, clierrors.Argument,
			fmt.Sprintf("user info file %s does not exist", path),
			"Check the --user-info path")
	}
	return info, err
}
