package assemble

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/poretally/internal/params"
	"github.com/ariel-frischer/poretally/internal/reads"
	"github.com/ariel-frischer/poretally/internal/rule"
	"github.com/ariel-frischer/poretally/internal/snakefile"
	"github.com/ariel-frischer/poretally/internal/userinfo"
)

// SideFile is a file written next to the Snakefile that a rule refers to.
type SideFile struct {
	Path string
	Data []byte
}

// Plan is a fully resolved run, ready to be written.
type Plan struct {
	RunID     string
	CreatedAt time.Time
	Layout    Layout
	Params    *params.Context
	// Descriptors are the rules, in request order minus skipped pipelines.
	Descriptors   []*rule.Descriptor
	Script        *snakefile.Script
	SnakefilePath string
	SideFiles     []SideFile
	Skipped       []SkippedPipeline
	Warnings      []string
	Reads         []string
	UserInfo      *userinfo.Info
}

// Pipelines returns the names of the emitted rules.
func (p *Plan) Pipelines() []string {
	if p.Script == nil {
		return nil
	}
	return p.Script.Rules
}

// Manifest is the on-disk record of a run.
type Manifest struct {
	RunID      string            `yaml:"run_id"`
	CreatedAt  time.Time         `yaml:"created_at"`
	Snakefile  string            `yaml:"snakefile"`
	WorkDir    string            `yaml:"working_dir"`
	Pipelines  []string          `yaml:"pipelines"`
	Skipped    []string          `yaml:"skipped,omitempty"`
	Warnings   []string          `yaml:"warnings,omitempty"`
	Parameters map[string]string `yaml:"parameters"`
	Reads      []string          `yaml:"reads,omitempty"`
	UserInfo   *userinfo.Info    `yaml:"user_info,omitempty"`
}

// Manifest returns the record Materialize writes for p.
func (p *Plan) Manifest() Manifest {
	m := Manifest{
		RunID:      p.RunID,
		CreatedAt:  p.CreatedAt.UTC(),
		Snakefile:  p.SnakefilePath,
		WorkDir:    p.Layout.WorkDir,
		Pipelines:  p.Pipelines(),
		Warnings:   p.Warnings,
		Parameters: p.Params.Strings(),
		Reads:      p.Reads,
		UserInfo:   p.UserInfo,
	}
	for _, s := range p.Skipped {
		m.Skipped = append(m.Skipped, s.Pipeline)
	}
	return m
}

// Materialize writes plan to disk: layout directories, merged reads, side
// files, the Snakefile and the run manifest. Files are replaced atomically.
func (r *Runner) Materialize(plan *Plan) error {
	if plan == nil || plan.Script == nil {
		return fmt.Errorf("materializing: plan is incomplete")
	}
	if err := plan.Layout.Create(plan.Pipelines()...); err != nil {
		return err
	}

	if len(plan.Reads) > 0 {
		n, err := reads.Concatenate(plan.Reads, plan.Layout.Reads)
		if err != nil {
			return fmt.Errorf("merging reads: %w", err)
		}
		r.log.Debug("merged reads",
			zap.Int("files", len(plan.Reads)),
			zap.Int64("bytes", n),
			zap.String("path", plan.Layout.Reads))
	}

	for _, f := range plan.SideFiles {
		if err := atomicWriteToFile(f.Path, f.Data); err != nil {
			return fmt.Errorf("writing %s: %w", f.Path, err)
		}
	}

	if err := atomicWriteToFile(plan.SnakefilePath, []byte(plan.Script.Text)); err != nil {
		return fmt.Errorf("writing Snakefile: %w", err)
	}

	data, err := yaml.Marshal(plan.Manifest())
	if err != nil {
		return fmt.Errorf("encoding run manifest: %w", err)
	}
	if err := atomicWriteToFile(plan.Layout.Manifest(plan.RunID), data); err != nil {
		return fmt.Errorf("writing run manifest: %w", err)
	}

	r.log.Info("wrote Snakefile",
		zap.String("path", plan.SnakefilePath),
		zap.String("run_id", plan.RunID),
		zap.Int("rules", len(plan.Pipelines())))
	return nil
}

// atomicWriteToFile writes data to a temp file then renames it over path.
func atomicWriteToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// LoadManifest reads a run manifest written by Materialize.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing run manifest: %w", err)
	}
	return &m, nil
}
