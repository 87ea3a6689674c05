package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/poretally/internal/logs"
)

func newMethodsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "methods <pipeline|log-file>",
		Short: "Print the tool versions recorded in a pipeline log",
		Long: `Print the METHODS block a pipeline wrote at the start of its log: the
pipeline description and the version of every tool it used.

Logs are appended to on every run; the most recent complete block is used.`,
		Example: `  # Versions used by the last flye run
  poretally methods flye

  # As JSON, for a methods section generator
  poretally methods ./assembler_results/log_files/canu.log --format json`,
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
			format, _ := cmd.Flags().GetString("format")

			f, err := os.Open(logPath)
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
			defer f.Close()

			m, err := logs.ParseMethods(f)
			if err != nil {
				return fmt.Errorf("%s: %w", logPath, err)
			}
			return writeMethods(cmd.OutOrStdout(), m, format)
		},
	}
	cmd.Flags().StringP("working-dir", "w", "", "Run directory used to resolve pipeline names (default: working_dir from config)")
	cmd.Flags().StringP("format", "f", "yaml", "Output format: yaml or json")
	return cmd
}

func writeMethods(w io.Writer, m *logs.Methods, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(methodsNode(m)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}

// methodsNode lays the block out as the log does: description followed by
// a versions mapping in probe order. Versions are always strings, so "2.1"
// is quoted.
func methodsNode(m *logs.Methods) *yaml.Node {
	versions := &yaml.Node{Kind: yaml.MappingNode}
	for _, v := range m.Versions {
		versions.Content = append(versions.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Tool},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Version},
		)
	}
	return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "description"},
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Description},
		{Kind: yaml.ScalarNode, Value: "versions"},
		versions,
	}}
}
