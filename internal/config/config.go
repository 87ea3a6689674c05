// poretally - Snakefile synthesis for nanopore assembly pipeline benchmarks
// Author: Ariel Frischer
// Source: https://github.com/ariel-frischer/poretally

// Package config provides hierarchical configuration management for poretally using koanf.
// Configuration is loaded with priority: environment variables > explicit --config file or
// project config (.poretally/config.yml) > user config (~/.config/poretally/config.yml) > defaults.
// Files ending in .json are read with the JSON parser, everything else as YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "PORETALLY_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceFlag    ConfigSource = "flag"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the poretally configuration
type Configuration struct {
	// WorkingDir is where run output is written. Can be set via PORETALLY_WORKING_DIR.
	WorkingDir string `koanf:"working_dir" yaml:"working_dir"`
	// ThreadsPerJob is reserved for each pipeline rule.
	ThreadsPerJob int `koanf:"threads_per_job" yaml:"threads_per_job" validate:"min=1,max=4096"`
	// DefinitionsDir holds user pipeline definitions that shadow the built-in catalogue.
	DefinitionsDir string `koanf:"definitions_dir" yaml:"definitions_dir"`
	// ReadsPattern selects read files when a reads location is a directory.
	ReadsPattern string `koanf:"reads_pattern" yaml:"reads_pattern" validate:"required"`

	Executor ExecutorConfig `koanf:"executor" yaml:"executor"`
	Log      LogConfig      `koanf:"log" yaml:"log"`

	// Sources lists the files that were loaded, lowest priority first.
	Sources []LoadedFile `koanf:"-" yaml:"-"`
}

// ExecutorConfig configures the workflow engine invocation.
type ExecutorConfig struct {
	// Command is the engine command template, split like a shell would.
	Command  string        `koanf:"command" yaml:"command" validate:"required"`
	Cores    int           `koanf:"cores" yaml:"cores" validate:"min=0"`
	UseConda bool          `koanf:"use_conda" yaml:"use_conda"`
	Timeout  time.Duration `koanf:"timeout" yaml:"timeout" validate:"min=0"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" yaml:"format" validate:"oneof=console json"`
}

// LoadedFile is a configuration file that contributed values.
type LoadedFile struct {
	Path   string
	Source ConfigSource
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ConfigPath replaces the project config. It must exist.
	ConfigPath string
	// ProjectConfigPath overrides the project config path (default: .poretally/config.yml)
	ProjectConfigPath string
	// SkipUserConfig ignores the user config file.
	SkipUserConfig bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(configPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ConfigPath: configPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	loadDefaults(k)

	var sources []LoadedFile

	if !opts.SkipUserConfig {
		if userPath, err := UserConfigPath(); err == nil && fileExists(userPath) {
			if err := loadConfigFile(k, userPath, SourceUser); err != nil {
				return nil, err
			}
			sources = append(sources, LoadedFile{Path: userPath, Source: SourceUser})
		}
	}

	switch {
	case opts.ConfigPath != "":
		if !fileExists(opts.ConfigPath) {
			return nil, fmt.Errorf("config file %s does not exist", opts.ConfigPath)
		}
		if err := loadConfigFile(k, opts.ConfigPath, SourceFlag); err != nil {
			return nil, err
		}
		sources = append(sources, LoadedFile{Path: opts.ConfigPath, Source: SourceFlag})
	default:
		projectPath := ProjectConfigPath()
		if opts.ProjectConfigPath != "" {
			projectPath = opts.ProjectConfigPath
		}
		if fileExists(projectPath) {
			if err := loadConfigFile(k, projectPath, SourceProject); err != nil {
				return nil, err
			}
			sources = append(sources, LoadedFile{Path: projectPath, Source: SourceProject})
		}
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	cfg, err := finalizeConfig(k)
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources
	return cfg, nil
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadConfigFile validates and loads one config file, choosing the parser
// by extension.
func loadConfigFile(k *koanf.Koanf, path string, source ConfigSource) error {
	parser := koanf.Parser(yaml.Parser())
	if strings.EqualFold(filepath.Ext(path), ".json") {
		parser = json.Parser()
	} else if err := checkYAML(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", source, err)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", source, path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := checkValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.WorkingDir = expandHomePath(cfg.WorkingDir)
	cfg.DefinitionsDir = expandHomePath(cfg.DefinitionsDir)
	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// sections are the nested config groups reachable from the environment.
var sections = []string{"executor", "log"}

// envTransform converts environment variable names to config keys.
// Example: PORETALLY_EXECUTOR_USE_CONDA -> executor.use_conda
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
