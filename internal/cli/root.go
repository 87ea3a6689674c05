// Package cli implements the poretally command line.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ariel-frischer/poretally/internal/config"
	clierrors "github.com/ariel-frischer/poretally/internal/errors"
	"github.com/ariel-frischer/poretally/internal/git"
	"github.com/ariel-frischer/poretally/internal/logging"
)

// Command groups shown in help output.
const (
	GroupRun     = "run"
	GroupInspect = "inspect"
	GroupSetup   = "setup"
)

// app carries state shared by every command of one invocation. It is
// filled by the root command's PersistentPreRunE.
type app struct {
	cfg *config.Configuration
	log *zap.Logger
}

// logger returns the configured logger, or a no-op logger before setup.
func (a *app) logger() *zap.Logger {
	if a.log == nil {
		return zap.NewNop()
	}
	return a.log
}

// Execute runs the root command. Errors are printed to stderr before they
// are returned.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

// ExitCode maps an error returned by Execute to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}

func printError(w io.Writer, err error) {
	clierrors.FprintError(w, clierrors.Classify(err))
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "poretally",
		Short: "Benchmark nanopore assembly pipelines with Snakemake",
		Long: `poretally turns pipeline definitions into a Snakemake workflow and runs it.

Each requested pipeline becomes one rule. Its commands are rendered with
the run parameters, prefixed with a METHODS banner that records the tool
versions in the pipeline log, and wrapped so their output lands in that log.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (PORETALLY_*)
  2. --config file, or project config (.poretally/config.yml)
  3. User config (~/.config/poretally/config.yml)
  4. Built-in defaults`,
		Example: `  # Run two built-in pipelines on a directory of reads
  poretally assemble canu flye --reads ./fastq --ref-size 4600000

  # Print the Snakefile without writing anything
  poretally render raven --param GENOME=ecoli

  # Follow a pipeline log while the run is going
  poretally logs flye`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().String("config", "", "Path to a config file (replaces .poretally/config.yml)")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddGroup(
		&cobra.Group{ID: GroupRun, Title: "Run Commands:"},
		&cobra.Group{ID: GroupInspect, Title: "Inspection Commands:"},
		&cobra.Group{ID: GroupSetup, Title: "Setup Commands:"},
	)

	cmd.AddCommand(
		newAssembleCmd(a),
		newRenderCmd(a),
		newPipelinesCmd(a),
		newLogsCmd(a),
		newMethodsCmd(a),
		newCheckRepoCmd(),
		newCheckInfoCmd(),
		newDoctorCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)

	return cmd
}

// setup loads configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(configPath)
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration, "loading configuration failed",
			"Check the config file for syntax errors",
			"Print the effective configuration with: poretally config show")
	}

	log, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Debug:  debug,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration, "configuring logging failed")
	}

	a.cfg = cfg
	a.log = log
	git.SetDebugLogger(logging.Debugf(log))
	log.Debug("configuration loaded", zap.Int("files", len(cfg.Sources)))
	return nil
}
