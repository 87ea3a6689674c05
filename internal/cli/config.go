package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/poretally/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage poretally configuration",
		Long: `Manage poretally configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (PORETALLY_*)
  2. --config file, or project config (.poretally/config.yml)
  3. User config (~/.config/poretally/config.yml)
  4. Built-in defaults`,
		Example: `  # Show the effective configuration
  poretally config show

  # Create a commented project config
  poretally config init`,
		GroupID: GroupSetup,
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigInitCmd())
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			format, _ := cmd.Flags().GetString("format")
			return showConfig(cmd.OutOrStdout(), a.cfg, format)
		},
	}
	cmd.Flags().StringP("format", "f", "yaml", "Output format: yaml or json")
	return cmd
}

// configView is the printable form of a Configuration. Durations are
// shown as strings so the output can be pasted back into a config file.
type configView struct {
	WorkingDir     string       `yaml:"working_dir" json:"working_dir"`
	ThreadsPerJob  int          `yaml:"threads_per_job" json:"threads_per_job"`
	DefinitionsDir string       `yaml:"definitions_dir" json:"definitions_dir"`
	ReadsPattern   string       `yaml:"reads_pattern" json:"reads_pattern"`
	Executor       executorView `yaml:"executor" json:"executor"`
	Log            logView      `yaml:"log" json:"log"`
}

type executorView struct {
	Command  string `yaml:"command" json:"command"`
	Cores    int    `yaml:"cores" json:"cores"`
	UseConda bool   `yaml:"use_conda" json:"use_conda"`
	Timeout  string `yaml:"timeout" json:"timeout"`
}

type logView struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

func newConfigView(cfg *config.Configuration) configView {
	return configView{
		WorkingDir:     cfg.WorkingDir,
		ThreadsPerJob:  cfg.ThreadsPerJob,
		DefinitionsDir: cfg.DefinitionsDir,
		ReadsPattern:   cfg.ReadsPattern,
		Executor: executorView{
			Command:  cfg.Executor.Command,
			Cores:    cfg.Executor.Cores,
			UseConda: cfg.Executor.UseConda,
			Timeout:  cfg.Executor.Timeout.String(),
		},
		Log: logView{Level: cfg.Log.Level, Format: cfg.Log.Format},
	}
}

func showConfig(w io.Writer, cfg *config.Configuration, format string) error {
	view := newConfigView(cfg)
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case "yaml":
		if len(cfg.Sources) == 0 {
			fmt.Fprintln(w, "# sources: defaults")
		}
		for _, src := range cfg.Sources {
			fmt.Fprintf(w, "# source (%s): %s\n", src.Source, src.Path)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented config file with the defaults",
		Long: `Write a commented config file with the default values.

By default the project config (.poretally/config.yml) is created. Use
--user for ~/.config/poretally/config.yml. An existing file is left
unchanged unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			user, _ := cmd.Flags().GetBool("user")
			force, _ := cmd.Flags().GetBool("force")

			path := config.ProjectConfigPath()
			if user {
				p, err := config.UserConfigPath()
				if err != nil {
					return fmt.Errorf("locating user config: %w", err)
				}
				path = p
			}
			return initConfig(cmd.OutOrStdout(), path, force)
		},
	}
	cmd.Flags().Bool("user", false, "Create the user config instead of the project config")
	cmd.Flags().Bool("force", false, "Overwrite an existing config file")
	return cmd
}

func initConfig(w io.Writer, path string, force bool) error {
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(w, "%s %s already exists (use --force to overwrite)\n", yellow("!"), path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(w, "%s Created %s\n", green("✓"), path)
	return nil
}
