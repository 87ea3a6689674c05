// Package assemble runs a benchmark: it resolves the requested pipelines,
// turns each into a rule, writes the Snakefile with its side files under
// the working directory, and hands the Snakefile to an executor.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ariel-frischer/poretally/internal/command"
	"github.com/ariel-frischer/poretally/internal/executor"
	"github.com/ariel-frischer/poretally/internal/params"
	"github.com/ariel-frischer/poretally/internal/pipeline"
	"github.com/ariel-frischer/poretally/internal/rule"
	"github.com/ariel-frischer/poretally/internal/snakefile"
	"github.com/ariel-frischer/poretally/internal/userinfo"
)

// readsInputKey names the merged reads in every rule's input directive.
const readsInputKey = "fastq"

// Request describes one benchmark run.
type Request struct {
	// Pipelines are the pipeline names, in rule order.
	Pipelines []string
	// WorkDir is the run's working directory.
	WorkDir string
	// Params holds user parameters. WD and NB_THREADS are always set by
	// the runner; COVERAGE is derived when both sizes are known.
	Params *params.Context
	// ThreadsPerJob is reserved for each rule.
	ThreadsPerJob int
	// Reads are merged into the layout's read file on Materialize. Empty
	// leaves an existing read file untouched.
	Reads []string
	// UserInfo describes the sample; it is recorded in the manifest.
	UserInfo *userinfo.Info
	// DryRun writes every file but does not start the executor.
	DryRun bool
}

// Runner plans, writes and executes runs.
type Runner struct {
	source pipeline.Source
	exec   executor.Executor
	log    *zap.Logger
	now    func() time.Time
	newID  func() string
	stdout io.Writer
	stderr io.Writer
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor sets the executor Run hands the Snakefile to.
func WithExecutor(e executor.Executor) Option {
	return func(r *Runner) { r.exec = e }
}

// WithLogger sets the logger warnings are reported to.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithRunID replaces the random run id generator.
func WithRunID(newID func() string) Option {
	return func(r *Runner) { r.newID = newID }
}

// WithOutput sets where executor output goes.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// NewRunner returns a Runner resolving definitions from source.
func NewRunner(source pipeline.Source, opts ...Option) *Runner {
	r := &Runner{
		source: source,
		log:    zap.NewNop(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Outcome is what Run produced.
type Outcome struct {
	Plan *Plan
	// Result is nil for dry runs.
	Result *executor.Result
}

// Run plans req, writes its files and executes the Snakefile. Nothing is
// written when planning fails.
func (r *Runner) Run(ctx context.Context, req Request) (*Outcome, error) {
	plan, err := r.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := r.Materialize(plan); err != nil {
		return &Outcome{Plan: plan}, err
	}
	if req.DryRun {
		r.log.Info("dry run, executor not started", zap.String("snakefile", plan.SnakefilePath))
		return &Outcome{Plan: plan}, nil
	}
	if r.exec == nil {
		return &Outcome{Plan: plan}, errors.New("no executor configured")
	}

	r.log.Info("starting executor",
		zap.String("snakefile", plan.SnakefilePath),
		zap.Strings("targets", plan.Script.Rules))

	res, err := r.exec.Run(ctx, executor.Invocation{
		Snakefile: plan.SnakefilePath,
		WorkDir:   plan.Layout.WorkDir,
		Targets:   plan.Script.Rules,
		Stdout:    r.stdout,
		Stderr:    r.stderr,
	})
	if err != nil {
		return &Outcome{Plan: plan, Result: res}, fmt.Errorf("executing %s: %w", plan.SnakefilePath, err)
	}
	return &Outcome{Plan: plan, Result: res}, nil
}

// Plan resolves and synthesizes req without touching the filesystem
// outside definition lookups.
func (r *Runner) Plan(ctx context.Context, req Request) (*Plan, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	layout, err := NewLayout(req.WorkDir)
	if err != nil {
		return nil, err
	}
	ps, err := runParams(req, layout)
	if err != nil {
		return nil, err
	}

	lookups, err := pipeline.LoadAll(ctx, r.source, req.Pipelines)
	if err != nil {
		return nil, fmt.Errorf("loading pipeline definitions: %w", err)
	}

	runID := r.newID()
	plan := &Plan{
		RunID:     runID,
		CreatedAt: r.now(),
		Layout:    layout,
		Params:    ps,
		Reads:     req.Reads,
		UserInfo:  req.UserInfo,
	}

	for _, lk := range lookups {
		if lk.Err != nil {
			r.skip(plan, lk.Name, lk.Err)
			continue
		}
		desc, files, err := buildRule(lk.Definition, ps, layout, req.ThreadsPerJob)
		if err != nil {
			var missing *params.MissingParameterError
			if errors.As(err, &missing) {
				r.skip(plan, lk.Name, err)
				continue
			}
			return nil, err
		}
		plan.Descriptors = append(plan.Descriptors, desc)
		plan.SideFiles = append(plan.SideFiles, files...)
	}

	if len(plan.Descriptors) == 0 {
		return nil, ErrNothingToRun
	}

	script, err := snakefile.Synthesize(plan.Descriptors)
	if err != nil {
		return nil, err
	}
	plan.Script = script
	for _, w := range script.Warnings {
		var fields []zap.Field
		if empty, ok := w.(*rule.EmptyPipelineWarning); ok {
			fields = append(fields, zap.String("pipeline", empty.Pipeline))
		}
		r.log.Warn(w.Warning(), fields...)
		plan.Warnings = append(plan.Warnings, w.Warning())
	}

	plan.SnakefilePath = layout.WorkDir + snakefileName(plan.CreatedAt, runID)
	return plan, nil
}

func (r *Runner) skip(plan *Plan, name string, err error) {
	s := SkippedPipeline{Pipeline: name, Err: err}
	r.log.Warn(s.Warning(), zap.String("pipeline", name))
	plan.Skipped = append(plan.Skipped, s)
	plan.Warnings = append(plan.Warnings, s.Warning())
}

func checkRequest(req Request) error {
	if len(req.Pipelines) == 0 {
		return errors.New("no pipelines requested")
	}
	if req.ThreadsPerJob < 1 {
		return fmt.Errorf("threads per job must be at least 1, got %d", req.ThreadsPerJob)
	}
	seen := make(map[string]bool, len(req.Pipelines))
	var dups []string
	for _, name := range req.Pipelines {
		if seen[name] {
			dups = append(dups, name)
		}
		seen[name] = true
	}
	if len(dups) > 0 {
		return &DuplicatePipelineError{Pipelines: dups}
	}
	return nil
}

// runParams adds the parameters every run defines to the user's.
func runParams(req Request, layout Layout) (*params.Context, error) {
	ps, err := req.Params.With(params.WorkDir, params.String(layout.WorkDir))
	if err != nil {
		return nil, err
	}
	ps, err = ps.With(params.NbThreads, params.Int(int64(req.ThreadsPerJob)))
	if err != nil {
		return nil, err
	}
	return WithCoverage(ps)
}

// WithCoverage sets COVERAGE to SEQUENCED_SIZE / REFGENOME_SIZE when both
// are numeric and the reference size is not zero. An explicit COVERAGE is
// kept.
func WithCoverage(ps *params.Context) (*params.Context, error) {
	if _, ok := ps.Lookup(params.Coverage); ok {
		return ps, nil
	}
	ref, okRef := ps.Lookup(params.RefGenomeSize)
	seq, okSeq := ps.Lookup(params.SequencedSize)
	if !okRef || !okSeq {
		return ps, nil
	}
	refN, okRef := ref.Number()
	seqN, okSeq := seq.Number()
	if !okRef || !okSeq || refN == 0 {
		return ps, nil
	}
	return ps.With(params.Coverage, params.Float(seqN/refN))
}

// buildRule turns one definition into its descriptor and side files.
func buildRule(def *pipeline.Definition, ps *params.Context, layout Layout, threads int) (*rule.Descriptor, []SideFile, error) {
	seq, err := command.Build(command.Input{
		Pipeline:    def.Name,
		Template:    def.Commands,
		Params:      ps,
		WorkDir:     layout.PipelineDir(def.Name),
		Probes:      def.Versions,
		Description: def.Description,
	})
	if err != nil {
		return nil, nil, err
	}

	desc := &rule.Descriptor{
		Name:       def.Name,
		Inputs:     rule.KeyedPaths{{Key: readsInputKey, Path: layout.Reads}},
		Threads:    rule.Count(threads),
		Outputs:    rule.PathList{layout.Assembly(def.Name)},
		Logs:       rule.PathList{layout.LogFile(def.Name)},
		Benchmarks: rule.PathList{layout.Benchmark(def.Name)},
		Commands:   seq.Statements,
		Empty:      seq.Empty,
	}
	files := []SideFile{{Path: layout.CommandFile(def.Name), Data: []byte(seq.Rendered)}}

	if def.Conda != nil {
		env, err := def.Environment()
		if err != nil {
			return nil, nil, fmt.Errorf("pipeline %q: encoding conda environment: %w", def.Name, err)
		}
		desc.Environment = rule.Path(layout.CondaFile(def.Name))
		files = append(files, SideFile{Path: layout.CondaFile(def.Name), Data: env})
	}
	return desc, files, nil
}

func snakefileName(t time.Time, runID string) string {
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return snakefileTag + t.Format("20060102150405") + "_" + short
}
