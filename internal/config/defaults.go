package config

import "github.com/ariel-frischer/poretally/internal/reads"

// GetDefaultConfigTemplate returns a fully commented config template
func GetDefaultConfigTemplate() string {
	return `# poretally configuration
# Environment overrides use the PORETALLY_ prefix, e.g. PORETALLY_EXECUTOR_CORES=16

working_dir: .                  # Run output goes to <working_dir>/assembler_results/
threads_per_job: 4              # Threads reserved for each pipeline rule
definitions_dir: ""             # Extra pipeline definitions, shadowing the built-in ones
reads_pattern: "*.fastq"        # Glob used when a reads location is a directory

executor:
  command: snakemake            # Engine command template (shell-like quoting)
  cores: 0                      # --cores value; 0 = all
  use_conda: true               # Pass --use-conda so conda environments are built
  timeout: 0s                   # Kill the engine after this long; 0s = never

log:
  level: info                   # debug | info | warn | error
  format: console               # console | json
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"working_dir":     ".",
		"threads_per_job": 4,
		"definitions_dir": "",
		"reads_pattern":   reads.DefaultPattern,
		// executor: definitions ship conda environments, so use them by default.
		"executor": map[string]interface{}{
			"command":   "snakemake",
			"cores":     0,
			"use_conda": true,
			"timeout":   "0s",
		},
		"log": map[string]interface{}{
			"level":  "info",
			"format": "console",
		},
	}
}
