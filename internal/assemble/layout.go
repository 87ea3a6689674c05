package assemble

import (
	"fmt"
	"os"
	"path/filepath"
)

// Directory and file names under the working directory.
const (
	resultsDir   = "assembler_results"
	readsFile    = "all_reads.fastq"
	snakefileTag = "Snakefile_assemblies_"
)

// Layout is the deterministic directory structure of a run. Every
// directory path is absolute and ends in a slash, so templates can write
// {WD}assembler_results/... without adding separators.
type Layout struct {
	WorkDir    string
	Results    string
	Assemblies string
	Logs       string
	CPU        string
	Conda      string
	Commands   string
	Runs       string
	// Reads is the merged read file shared by every pipeline.
	Reads string
}

// NewLayout derives the layout rooted at workDir.
func NewLayout(workDir string) (Layout, error) {
	if workDir == "" {
		return Layout{}, fmt.Errorf("working directory is empty")
	}
	wd, err := AbsDir(workDir)
	if err != nil {
		return Layout{}, fmt.Errorf("resolving working directory: %w", err)
	}
	results := wd + asDir(resultsDir)
	return Layout{
		WorkDir:    wd,
		Results:    results,
		Assemblies: results + "assemblies/",
		Logs:       results + "log_files/",
		CPU:        results + "cpu_files/",
		Conda:      results + "conda_files/",
		Commands:   results + "command_files/",
		Runs:       results + "runs/",
		Reads:      wd + readsFile,
	}, nil
}

// AbsDir returns p as an absolute directory path ending in a slash. Rule
// commands run from the pipeline directory, so every directory handed to a
// template goes through here.
func AbsDir(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return asDir(abs), nil
}

func asDir(p string) string {
	if p == "/" {
		return p
	}
	return p + "/"
}

// PipelineDir is the private working directory of a pipeline.
func (l Layout) PipelineDir(name string) string { return l.Results + name + "/" }

// Assembly is the assembly a pipeline must produce.
func (l Layout) Assembly(name string) string { return l.Assemblies + name + ".fasta" }

// LogFile receives the pipeline's shell output, METHODS banner included.
func (l Layout) LogFile(name string) string { return l.Logs + name + ".log" }

// Benchmark is the executor's resource record for the pipeline.
func (l Layout) Benchmark(name string) string { return l.CPU + name + ".bm" }

// CondaFile is the resolved environment file of the pipeline.
func (l Layout) CondaFile(name string) string { return l.Conda + name + ".yaml" }

// CommandFile is the dump of the pipeline's rendered command template.
func (l Layout) CommandFile(name string) string { return l.Commands + name + ".cmd" }

// Manifest is the path of the manifest written for runID.
func (l Layout) Manifest(runID string) string { return l.Runs + runID + ".yaml" }

// Dirs lists every directory of the layout, including one per pipeline.
func (l Layout) Dirs(pipelines ...string) []string {
	dirs := []string{l.WorkDir, l.Results, l.Assemblies, l.Logs, l.CPU, l.Conda, l.Commands, l.Runs}
	for _, p := range pipelines {
		dirs = append(dirs, l.PipelineDir(p))
	}
	return dirs
}

// Create makes the layout directories.
func (l Layout) Create(pipelines ...string) error {
	for _, dir := range l.Dirs(pipelines...) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
