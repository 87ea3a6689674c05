package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/google/shlex"
)

// DefaultCommand is the command template used when none is configured.
const DefaultCommand = "snakemake"

// Config configures a Snakemake executor.
type Config struct {
	// Command is a shell-like command template, e.g. "snakemake" or
	// "conda run -n snake snakemake --keep-going". Split with shlex.
	Command string
	// Cores is passed as --cores. Zero or less means "all".
	Cores int
	// UseConda adds --use-conda so conda directives are honored.
	UseConda bool
	// Timeout bounds the whole run. Zero means no timeout.
	Timeout time.Duration
	// Env is added to the inherited environment.
	Env map[string]string
}

// Snakemake runs Snakefiles through the snakemake command line.
type Snakemake struct {
	base []string
	cfg  Config
}

// NewSnakemake validates the command template and returns an executor.
func NewSnakemake(cfg Config) (*Snakemake, error) {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	parts, err := shlex.Split(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("executor: invalid command template %q: %w", cfg.Command, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("executor: command template %q produces no command", cfg.Command)
	}
	return &Snakemake{base: parts, cfg: cfg}, nil
}

// Validate checks that the executable can be found.
func (s *Snakemake) Validate() error {
	if _, err := exec.LookPath(s.base[0]); err != nil {
		return fmt.Errorf("executor: command %q not found in PATH", s.base[0])
	}
	return nil
}

// Args returns the full argument vector for inv, command first.
func (s *Snakemake) Args(inv Invocation) []string {
	args := append([]string{}, s.base...)
	args = append(args, "--snakefile", inv.Snakefile)
	if inv.WorkDir != "" {
		args = append(args, "--directory", inv.WorkDir)
	}
	cores := "all"
	if s.cfg.Cores > 0 {
		cores = strconv.Itoa(s.cfg.Cores)
	}
	args = append(args, "--cores", cores)
	if s.cfg.UseConda {
		args = append(args, "--use-conda")
	}
	if inv.DryRun {
		args = append(args, "--dry-run")
	}
	return append(args, inv.Targets...)
}

// Run executes the Snakefile and waits for the engine to exit.
func (s *Snakemake) Run(ctx context.Context, inv Invocation) (*Result, error) {
	if inv.Snakefile == "" {
		return nil, errors.New("executor: no snakefile given")
	}

	ctx, cancel := s.applyTimeout(ctx)
	defer cancel()

	args := s.Args(inv)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = inv.WorkDir
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr
	cmd.Env = os.Environ()
	for k, v := range s.cfg.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting executor: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	start := time.Now()
	var err error
	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return nil, fmt.Errorf("running executor: %w", ctx.Err())
	case err = <-done:
	}

	result := &Result{Duration: time.Since(start)}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running executor: %w", err)
		}
		result.ExitCode = exitErr.ExitCode()
		return result, &ExitError{Command: s.base[0], ExitCode: result.ExitCode}
	}
	return result, nil
}

func (s *Snakemake) applyTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, s.cfg.Timeout)
	}
	return ctx, func() {}
}
