package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ariel-frischer/poretally/internal/assemble"
	clierrors "github.com/ariel-frischer/poretally/internal/errors"
	"github.com/ariel-frischer/poretally/internal/params"
	"github.com/ariel-frischer/poretally/internal/pipeline"
	"github.com/ariel-frischer/poretally/internal/reads"
)

const pipelinesUsage = "poretally %s <pipeline>... [flags]"

// addRunFlags registers the flags that describe a run request.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("working-dir", "w", "", "Run output directory (default: working_dir from config)")
	cmd.Flags().StringSliceP("reads", "r", nil, "Read files or directories to merge into all_reads.fastq (repeatable)")
	cmd.Flags().IntP("threads", "t", 0, "Threads per pipeline rule (default: threads_per_job from config)")
	cmd.Flags().StringArrayP("param", "p", nil, "Template parameter as NAME=VALUE (repeatable)")
	cmd.Flags().Int64("ref-size", 0, "Reference genome size in bases (sets REFGENOME_SIZE)")
	cmd.Flags().Int64("sequenced-size", 0, "Total sequenced bases (sets SEQUENCED_SIZE)")
	cmd.Flags().String("fast5-dir", "", "Directory of raw signal files (sets FAST5_DIR)")
	cmd.Flags().String("definitions", "", "Directory of pipeline definitions (default: definitions_dir from config)")
}

// source returns the definition source for cmd: the definitions directory,
// when one is set, shadowing the built-in catalogue.
func (a *app) source(cmd *cobra.Command) pipeline.Source {
	dir, _ := cmd.Flags().GetString("definitions")
	if dir == "" && a.cfg != nil {
		dir = a.cfg.DefinitionsDir
	}
	if dir == "" {
		return pipeline.Embedded()
	}
	return pipeline.Chain{pipeline.Dir(dir), pipeline.Embedded()}
}

// request builds a run request from the positional pipeline names and
// the run flags. Reads are discovered here so missing locations can be
// reported before anything is planned.
func (a *app) request(cmd *cobra.Command, names []string) (assemble.Request, error) {
	if len(names) == 0 {
		return assemble.Request{}, clierrors.NoPipelinesGiven(fmt.Sprintf(pipelinesUsage, cmd.Name()))
	}

	workDir, _ := cmd.Flags().GetString("working-dir")
	if workDir == "" {
		workDir = a.cfg.WorkingDir
	}
	threads, _ := cmd.Flags().GetInt("threads")
	if threads == 0 {
		threads = a.cfg.ThreadsPerJob
	}

	ps, err := paramsFromFlags(cmd)
	if err != nil {
		return assemble.Request{}, err
	}

	req := assemble.Request{
		Pipelines:     names,
		WorkDir:       workDir,
		Params:        ps,
		ThreadsPerJob: threads,
	}

	locations, _ := cmd.Flags().GetStringSlice("reads")
	if len(locations) > 0 {
		found, err := reads.Discover(locations, a.cfg.ReadsPattern)
		if found != nil {
			for _, m := range found.Missing {
				a.logger().Warn("reads location does not exist", zap.String("path", m))
			}
		}
		if err != nil {
			return assemble.Request{}, err
		}
		a.logger().Debug("reads discovered", zap.Int("files", len(found.Files)))
		req.Reads = found.Files
	}
	return req, nil
}

// paramsFromFlags collects --param values and the dedicated size and
// directory flags. --fast5-dir wins over a FAST5_DIR --param.
func paramsFromFlags(cmd *cobra.Command) (*params.Context, error) {
	raw, _ := cmd.Flags().GetStringArray("param")
	values, err := parseParamFlags(raw)
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetInt64("ref-size"); v > 0 {
		values[params.RefGenomeSize] = params.Int(v)
	}
	if v, _ := cmd.Flags().GetInt64("sequenced-size"); v > 0 {
		values[params.SequencedSize] = params.Int(v)
	}
	if v, _ := cmd.Flags().GetString("fast5-dir"); v != "" {
		dir, err := assemble.AbsDir(v)
		if err != nil {
			return nil, fmt.Errorf("resolving --fast5-dir: %w", err)
		}
		values[params.Fast5Dir] = params.String(dir)
	}

	ps, err := params.New(values)
	if err != nil {
		var invalid *params.InvalidParameterError
		if errors.As(err, &invalid) {
			return nil, clierrors.InvalidParamFlag(invalid.Name)
		}
		return nil, err
	}
	return ps, nil
}

// parseParamFlags parses NAME=VALUE pairs. Values that parse as integers
// or finite floats become numbers; anything else stays a string.
func parseParamFlags(raw []string) (map[string]params.Value, error) {
	values := make(map[string]params.Value, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, clierrors.InvalidParamFlag(kv)
		}
		values[name] = inferValue(value)
	}
	return values, nil
}

func inferValue(s string) params.Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return params.Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return params.Float(f)
	}
	return params.String(s)
}
