package assemble

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayout(t *testing.T) {
	t.Parallel()

	wd := t.TempDir()
	l, err := NewLayout(filepath.Join(wd, "run", ".."))
	require.NoError(t, err)

	assert.Equal(t, wd+"/", l.WorkDir)
	assert.Equal(t, wd+"/assembler_results/", l.Results)
	assert.Equal(t, wd+"/assembler_results/assemblies/", l.Assemblies)
	assert.Equal(t, wd+"/assembler_results/log_files/", l.Logs)
	assert.Equal(t, wd+"/assembler_results/cpu_files/", l.CPU)
	assert.Equal(t, wd+"/assembler_results/conda_files/", l.Conda)
	assert.Equal(t, wd+"/assembler_results/command_files/", l.Commands)
	assert.Equal(t, wd+"/all_reads.fastq", l.Reads)

	assert.Equal(t, wd+"/assembler_results/flye/", l.PipelineDir("flye"))
	assert.Equal(t, wd+"/assembler_results/assemblies/flye.fasta", l.Assembly("flye"))
	assert.Equal(t, wd+"/assembler_results/log_files/flye.log", l.LogFile("flye"))
	assert.Equal(t, wd+"/assembler_results/cpu_files/flye.bm", l.Benchmark("flye"))
	assert.Equal(t, wd+"/assembler_results/conda_files/flye.yaml", l.CondaFile("flye"))
	assert.Equal(t, wd+"/assembler_results/command_files/flye.cmd", l.CommandFile("flye"))
	assert.Equal(t, wd+"/assembler_results/runs/abc.yaml", l.Manifest("abc"))
}

func TestNewLayoutRelative(t *testing.T) {
	t.Parallel()

	l, err := NewLayout("rel")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(l.WorkDir))
	assert.Equal(t, "rel/", l.WorkDir[len(l.WorkDir)-4:])

	_, err = NewLayout("")
	assert.Error(t, err)
}

func TestLayoutCreate(t *testing.T) {
	t.Parallel()

	l, err := NewLayout(filepath.Join(t.TempDir(), "wd"))
	require.NoError(t, err)
	require.NoError(t, l.Create("raven"))

	for _, dir := range l.Dirs("raven") {
		assert.DirExists(t, dir)
	}
}
