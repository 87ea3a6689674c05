package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/poretally/internal/assemble"
	clierrors "github.com/ariel-frischer/poretally/internal/errors"
	"github.com/ariel-frischer/poretally/internal/params"
	"github.com/ariel-frischer/poretally/internal/testutil"
)

func TestHelperProcess(t *testing.T) {
	testutil.TestHelperProcess(t)
}

// noConda is a config file that keeps runs independent of conda.
func noConda(t *testing.T) string {
	t.Helper()
	return writeConfigFile(t, map[string]any{"executor": map[string]any{"use_conda": false}})
}

func TestParseParamFlags(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		raw     []string
		want    map[string]params.Value
		wantErr bool
	}{
		"integer": {
			raw:  []string{"GENOME_SIZE=4600000"},
			want: map[string]params.Value{"GENOME_SIZE": params.Int(4600000)},
		},
		"float": {
			raw:  []string{"MIN_IDENTITY=0.85"},
			want: map[string]params.Value{"MIN_IDENTITY": params.Float(0.85)},
		},
		"string keeps later equals signs": {
			raw:  []string{"EXTRA=--opt=1"},
			want: map[string]params.Value{"EXTRA": params.String("--opt=1")},
		},
		"empty value is a string": {
			raw:  []string{"EMPTY="},
			want: map[string]params.Value{"EMPTY": params.String("")},
		},
		"non-finite floats stay strings": {
			raw:  []string{"X=NaN", "Y=Inf"},
			want: map[string]params.Value{"X": params.String("NaN"), "Y": params.String("Inf")},
		},
		"last value wins": {
			raw:  []string{"A=1", "A=2"},
			want: map[string]params.Value{"A": params.Int(2)},
		},
		"missing equals": {
			raw:     []string{"GENOME"},
			wantErr: true,
		},
		"missing name": {
			raw:     []string{"=ecoli"},
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := parseParamFlags(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				cliErr := clierrors.AsCLIError(err)
				require.NotNil(t, cliErr)
				assert.Equal(t, clierrors.Argument, cliErr.Category)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParamsFromFlags(t *testing.T) {
	t.Parallel()

	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := map[string]struct {
		args []string
		tmpl string
		want string
	}{
		"relative fast5 dir is made absolute": {
			args: []string{"--fast5-dir", "fast5"},
			tmpl: "ls {FAST5_DIR}reads_1.fast5",
			want: "ls " + filepath.Join(cwd, "fast5") + "/reads_1.fast5",
		},
		"absolute fast5 dir gains a slash": {
			args: []string{"--fast5-dir", "/data/run1/fast5"},
			tmpl: "ls {FAST5_DIR}",
			want: "ls /data/run1/fast5/",
		},
		"trailing slash is not doubled": {
			args: []string{"--fast5-dir", "/data/run1/fast5/"},
			tmpl: "ls {FAST5_DIR}",
			want: "ls /data/run1/fast5/",
		},
		"flag wins over param": {
			args: []string{"--param", "FAST5_DIR=elsewhere", "--fast5-dir", "/data/fast5"},
			tmpl: "{FAST5_DIR}",
			want: "/data/fast5/",
		},
		"sizes are integers": {
			args: []string{"--ref-size", "4600000", "--sequenced-size", "92000000"},
			tmpl: "{REFGENOME_SIZE} {SEQUENCED_SIZE}",
			want: "4600000 92000000",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cmd := &cobra.Command{Use: "render"}
			addRunFlags(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))

			ps, err := paramsFromFlags(cmd)
			require.NoError(t, err)
			got, err := ps.Render("raven", tt.tmpl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderCmd(t *testing.T) {
	workDir := t.TempDir()

	stdout, _, err := executeCommand(t, "render", "raven", "-w", workDir, "--config", noConda(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "rule raven:\n"), stdout)
	assert.Contains(t, stdout, "START METHODS PRINTING")
	assert.Contains(t, stdout, "\t\tfastq='"+workDir+"/all_reads.fastq',\n")

	_, statErr := os.Stat(filepath.Join(workDir, "assembler_results"))
	assert.True(t, os.IsNotExist(statErr), "render must not create the layout")
}

func TestRenderCmd_OutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "Snakefile")

	stdout, _, err := executeCommand(t, "render", "raven", "-w", t.TempDir(), "-o", out, "--config", noConda(t))
	require.NoError(t, err)
	assert.Contains(t, stdout, "(1 rules)")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rule raven:")
}

func TestRenderCmd_Errors(t *testing.T) {
	tests := map[string]struct {
		args         []string
		wantCategory clierrors.ErrorCategory
		wantIs       error
	}{
		"no pipelines": {
			args:         []string{"render"},
			wantCategory: clierrors.Argument,
		},
		"malformed param": {
			args:         []string{"render", "raven", "--param", "oops"},
			wantCategory: clierrors.Argument,
		},
		"invalid param name": {
			args:         []string{"render", "raven", "--param", "1X=2"},
			wantCategory: clierrors.Argument,
		},
		"unknown pipeline only": {
			args:         []string{"render", "no_such_pipeline"},
			wantCategory: clierrors.Configuration,
			wantIs:       assemble.ErrNothingToRun,
		},
		"duplicate pipelines": {
			args:         []string{"render", "raven", "raven"},
			wantCategory: clierrors.Argument,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			args := append(tt.args, "-w", t.TempDir(), "--config", noConda(t))
			_, _, err := executeCommand(t, args...)
			require.Error(t, err)

			cliErr := clierrors.Classify(err)
			assert.Equal(t, tt.wantCategory, cliErr.Category, cliErr.Message)
			if tt.wantIs != nil {
				assert.True(t, errors.Is(err, tt.wantIs))
			}
		})
	}
}

func TestAssembleCmd_DryRun(t *testing.T) {
	workDir := t.TempDir()
	readsDir := filepath.Join(t.TempDir(), "fastq")
	require.NoError(t, os.MkdirAll(readsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(readsDir, "a.fastq"), []byte("@r1\nACGT\n+\n!!!!\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(readsDir, "notes.txt"), []byte("ignored"), 0o644))

	stdout, _, err := executeCommand(t, "assemble", "raven", "no_such_pipeline",
		"-n", "-w", workDir, "-r", readsDir, "--config", noConda(t))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Run:")
	assert.Contains(t, stdout, "skipped no_such_pipeline")

	snakefiles, err := filepath.Glob(filepath.Join(workDir, "Snakefile_assemblies_*"))
	require.NoError(t, err)
	require.Len(t, snakefiles, 1)

	merged, err := os.ReadFile(filepath.Join(workDir, "all_reads.fastq"))
	require.NoError(t, err)
	assert.Equal(t, "@r1\nACGT\n+\n!!!!\n", string(merged))

	assert.FileExists(t, filepath.Join(workDir, "assembler_results", "command_files", "raven.cmd"))
	assert.FileExists(t, filepath.Join(workDir, "assembler_results", "conda_files", "raven.yaml"))

	manifests, err := filepath.Glob(filepath.Join(workDir, "assembler_results", "runs", "*.yaml"))
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	m, err := assemble.LoadManifest(manifests[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"raven"}, m.Pipelines)
	assert.Equal(t, []string{"no_such_pipeline"}, m.Skipped)
}

func TestAssembleCmd_NoReadsFound(t *testing.T) {
	_, _, err := executeCommand(t, "assemble", "raven", "-n",
		"-w", t.TempDir(), "-r", filepath.Join(t.TempDir(), "missing"), "--config", noConda(t))
	require.Error(t, err)
	assert.Equal(t, clierrors.Prerequisite, clierrors.Classify(err).Category)
}

func TestAssembleCmd_RunsExecutor(t *testing.T) {
	fake := testutil.NewFakeCommand(t, "TestHelperProcess", testutil.HelperProcessConfig{Stdout: "fake snakemake\n"})
	for k, v := range fake.Env {
		t.Setenv(k, v)
	}
	cfg := writeConfigFile(t, map[string]any{
		"threads_per_job": 2,
		"executor":        map[string]any{"command": fake.Command, "use_conda": false, "cores": 8},
	})
	workDir := t.TempDir()

	stdout, stderr, err := executeCommand(t, "assemble", "raven", "-w", workDir, "--config", cfg)
	require.NoError(t, err)

	assert.Contains(t, stdout, "fake snakemake")
	assert.Contains(t, stdout, "Snakemake: exit 0")
	assert.Contains(t, stderr, "Running 1 pipeline(s)")

	args := fake.RecordedArgs(t)
	require.NotEmpty(t, args)
	assert.Equal(t, "--snakefile", args[0])
	assert.True(t, strings.HasPrefix(args[1], workDir+"/Snakefile_assemblies_"), args[1])
	assert.Contains(t, args, "8")
	assert.NotContains(t, args, "--use-conda")
	assert.Equal(t, "raven", args[len(args)-1])
}

func TestAssembleCmd_ExecutorFailure(t *testing.T) {
	fake := testutil.NewFakeCommand(t, "TestHelperProcess", testutil.HelperProcessConfig{ExitCode: 1, Stderr: "MissingInputException\n"})
	for k, v := range fake.Env {
		t.Setenv(k, v)
	}
	cfg := writeConfigFile(t, map[string]any{
		"executor": map[string]any{"command": fake.Command, "use_conda": false},
	})

	stdout, _, err := executeCommand(t, "assemble", "raven", "-w", t.TempDir(), "--config", cfg)
	require.Error(t, err)
	assert.Equal(t, clierrors.Runtime, clierrors.Classify(err).Category)
	assert.Contains(t, stdout, "Snakemake: exit 1")
}

func TestAssembleCmd_MissingExecutor(t *testing.T) {
	cfg := writeConfigFile(t, map[string]any{
		"executor": map[string]any{"command": "poretally-no-such-engine", "use_conda": false},
	})
	workDir := t.TempDir()

	_, _, err := executeCommand(t, "assemble", "raven", "-w", workDir, "--config", cfg)
	require.Error(t, err)
	assert.Equal(t, clierrors.Prerequisite, clierrors.Classify(err).Category)

	_, statErr := os.Stat(filepath.Join(workDir, "assembler_results"))
	assert.True(t, os.IsNotExist(statErr), "nothing is written when the engine is missing")
}

const testUserInfo = `authors: [C. de Lannoy]
organism: Escherichia coli
basecaller: guppy
flowcell: FLO-MIN106
kit: SQK-LSK109
`

func writeUserInfo(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "user_info.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAssembleCmd_RecordsUserInfo(t *testing.T) {
	workDir := t.TempDir()

	_, _, err := executeCommand(t, "assemble", "raven", "-n", "-w", workDir,
		"--user-info", writeUserInfo(t, testUserInfo), "--config", noConda(t))
	require.NoError(t, err)

	manifests, err := filepath.Glob(filepath.Join(workDir, "assembler_results", "runs", "*.yaml"))
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	m, err := assemble.LoadManifest(manifests[0])
	require.NoError(t, err)
	require.NotNil(t, m.UserInfo)
	assert.Equal(t, "FLO-MIN106", m.UserInfo.Flowcell)
}

func TestAssembleCmd_InvalidUserInfo(t *testing.T) {
	tests := map[string]struct {
		path func(t *testing.T) string
	}{
		"missing kit": {
			path: func(t *testing.T) string {
				return writeUserInfo(t, "authors: [a]\norganism: E. coli\nbasecaller: guppy\nflowcell: FLO-MIN106\n")
			},
		},
		"not a mapping": {
			path: func(t *testing.T) string { return writeUserInfo(t, "- authors\n- kit\n") },
		},
		"missing file": {
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.yaml") },
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			workDir := t.TempDir()
			_, _, err := executeCommand(t, "assemble", "raven", "-n", "-w", workDir,
				"--user-info", tt.path(t), "--config", noConda(t))
			require.Error(t, err)
			assert.Equal(t, clierrors.Argument, clierrors.Classify(err).Category)

			_, statErr := os.Stat(filepath.Join(workDir, "assembler_results"))
			assert.True(t, os.IsNotExist(statErr), "nothing is written for an invalid user info file")
		})
	}
}

func TestCheckInfoCmd(t *testing.T) {
	stdout, _, err := executeCommand(t, "check-info", writeUserInfo(t, testUserInfo), "--config", noConda(t))
	require.NoError(t, err)
	assert.Contains(t, stdout, "OK ")
	assert.Contains(t, stdout, "Escherichia coli by C. de Lannoy (guppy, FLO-MIN106, SQK-LSK109)")

	_, _, err = executeCommand(t, "check-info", writeUserInfo(t, "organism: E. coli\n"), "--config", noConda(t))
	require.Error(t, err)
	cliErr := clierrors.Classify(err)
	assert.Equal(t, clierrors.Argument, cliErr.Category)
	assert.Contains(t, cliErr.Message, "authors is required")
	assert.Contains(t, cliErr.Message, "kit is required")
}

func TestPipelinesList(t *testing.T) {
	stdout, _, err := executeCommand(t, "pipelines", "list", "--config", noConda(t))
	require.NoError(t, err)

	for _, name := range []string{"canu", "flye", "minimap2_miniasm", "raven"} {
		assert.Contains(t, stdout, name)
	}
}

func TestPipelinesList_DefinitionsDirShadows(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raven.yaml"),
		[]byte("description: Local raven build\ncommands: raven {WD}all_reads.fastq\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.yaml"),
		[]byte("description: My pipeline\ncommands: echo {WD}\n"), 0o644))

	stdout, _, err := executeCommand(t, "pipelines", "list", "--definitions", dir, "--config", noConda(t))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Local raven build")
	assert.Contains(t, stdout, "My pipeline")
	assert.Contains(t, stdout, "canu")
}

func TestPipelinesShow(t *testing.T) {
	stdout, _, err := executeCommand(t, "pipelines", "show", "raven", "--config", noConda(t))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Pipeline: raven")
	assert.Contains(t, stdout, "raven: raven --version")
	assert.Contains(t, stdout, "Parameters: NB_THREADS, WD")
	assert.Contains(t, stdout, "Conda environment:")
}

func TestPipelinesShow_Unknown(t *testing.T) {
	_, _, err := executeCommand(t, "pipelines", "show", "no_such_pipeline", "--config", noConda(t))
	require.Error(t, err)
	assert.Equal(t, clierrors.Configuration, clierrors.Classify(err).Category)
}

const methodsLog = "START METHODS PRINTING\n" +
	"description: Flye 2.9\n" +
	"versions:\n" +
	"  flye: 2.9.2-b1786\n" +
	"  minimap2: 2.26-r1175\n" +
	"END METHODS PRINTING\n" +
	"[2024-03-01] assembling\n"

func TestLogsCmd_NoFollow(t *testing.T) {
	workDir := t.TempDir()
	logDir := filepath.Join(workDir, "assembler_results", "log_files")
	require.NoError(t, os.MkdirAll(logDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "flye.log"), []byte(methodsLog), 0o644))

	stdout, _, err := executeCommand(t, "logs", "flye", "--no-follow", "-w", workDir, "--config", noConda(t))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Log: "+filepath.Join(logDir, "flye.log"))
	assert.Contains(t, stdout, "[2024-03-01] assembling\n")
}

func TestLogsCmd_MissingNoFollow(t *testing.T) {
	_, _, err := executeCommand(t, "logs", "flye", "--no-follow", "-w", t.TempDir(), "--config", noConda(t))
	require.Error(t, err)
}

func TestResolveLogPath(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	existing := filepath.Join(workDir, "run.txt")
	require.NoError(t, os.WriteFile(existing, nil, 0o644))

	tests := map[string]struct {
		arg  string
		want string
	}{
		"pipeline name": {
			arg:  "canu",
			want: filepath.Join(workDir, "assembler_results", "log_files", "canu.log"),
		},
		"log suffix": {
			arg:  "canu.log",
			want: "canu.log",
		},
		"existing file": {
			arg:  existing,
			want: existing,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveLogPath(tt.arg, workDir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMethodsCmd(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "flye.log")
	require.NoError(t, os.WriteFile(logPath, []byte(methodsLog), 0o644))

	tests := map[string]struct {
		format string
		want   []string
	}{
		"yaml keeps probe order": {
			format: "yaml",
			want:   []string{"description: Flye 2.9\nversions:\n  flye: 2.9.2-b1786\n  minimap2: 2.26-r1175\n"},
		},
		"json": {
			format: "json",
			want:   []string{`"description": "Flye 2.9"`, `"tool": "minimap2"`, `"version": "2.26-r1175"`},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			stdout, _, err := executeCommand(t, "methods", logPath, "--format", tt.format, "--config", noConda(t))
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, stdout, w)
			}
		})
	}
}

func TestMethodsCmd_NoBlock(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "canu.log")
	require.NoError(t, os.WriteFile(logPath, []byte("no banner here\n"), 0o644))

	_, _, err := executeCommand(t, "methods", logPath, "--config", noConda(t))
	require.Error(t, err)
	assert.Equal(t, clierrors.Prerequisite, clierrors.Classify(err).Category)
}

func TestConfigShow(t *testing.T) {
	cfg := writeConfigFile(t, map[string]any{"threads_per_job": 8, "executor": map[string]any{"timeout": "2h"}})

	tests := map[string]struct {
		format string
		want   []string
	}{
		"yaml": {
			format: "yaml",
			want:   []string{"# source (flag): " + cfg, "threads_per_job: 8", "timeout: 2h0m0s"},
		},
		"json": {
			format: "json",
			want:   []string{`"threads_per_job": 8`, `"timeout": "2h0m0s"`},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			stdout, _, err := executeCommand(t, "config", "show", "--format", tt.format, "--config", cfg)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, stdout, w)
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".poretally", "config.yml")

	var out strings.Builder
	require.NoError(t, initConfig(&out, path, false))
	assert.Contains(t, out.String(), "Created")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "threads_per_job: 4")

	require.NoError(t, os.WriteFile(path, []byte("threads_per_job: 9\n"), 0o644))
	out.Reset()
	require.NoError(t, initConfig(&out, path, false))
	assert.Contains(t, out.String(), "already exists")
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "threads_per_job: 9\n", string(data))

	out.Reset()
	require.NoError(t, initConfig(&out, path, true))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "threads_per_job: 4")
}

func TestDoctorCmd_MissingEngine(t *testing.T) {
	cfg := writeConfigFile(t, map[string]any{
		"executor": map[string]any{"command": "poretally-no-such-engine", "use_conda": false},
	})

	stdout, _, err := executeCommand(t, "doctor", "--config", cfg)
	require.Error(t, err)
	assert.Equal(t, clierrors.Prerequisite, clierrors.Classify(err).Category)
	assert.Contains(t, stdout, "✗ Snakemake: poretally-no-such-engine not found in PATH")
	assert.Contains(t, stdout, "✓ Pipeline definitions: 4 pipelines load")
}

func TestCheckRepoCmd(t *testing.T) {
	remote := t.TempDir()
	_, err := gogit.PlainInit(remote, true)
	require.NoError(t, err)

	stdout, _, err := executeCommand(t, "check-repo", remote, "--config", noConda(t))
	require.NoError(t, err)
	assert.Contains(t, stdout, "push access to "+remote)
}

func TestCheckRepoCmd_Unreachable(t *testing.T) {
	_, _, err := executeCommand(t, "check-repo", filepath.Join(t.TempDir(), "missing.git"), "--config", noConda(t))
	require.Error(t, err)
	assert.Equal(t, clierrors.Prerequisite, clierrors.Classify(err).Category)
}
