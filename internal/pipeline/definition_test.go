package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/poretally/internal/banner"
)

func TestParse(t *testing.T) {
	t.Parallel()

	data := []byte(`
description: |
  Minimap2 + miniasm
  layout only
versions:
  minimap2: minimap2 --version
  miniasm: miniasm -V
  awk:
commands: |
  minimap2 -x ava-ont {WD}all_reads.fastq {WD}all_reads.fastq > ovl.paf
  miniasm -f {WD}all_reads.fastq ovl.paf > asm.gfa
conda: {channels: [bioconda], dependencies: [minimap2=2.17, miniasm=0.3]}
`)

	def, err := Parse("minimap2_miniasm", "test.yaml", data)
	require.NoError(t, err)

	assert.Equal(t, "minimap2_miniasm", def.Name)
	assert.Equal(t, "test.yaml", def.Origin)
	assert.Equal(t, "Minimap2 + miniasm\nlayout only", def.Description)
	assert.Equal(t, banner.Probes{
		{Tool: "minimap2", Expr: "minimap2 --version"},
		{Tool: "miniasm", Expr: "miniasm -V"},
		{Tool: "awk", Expr: ""},
	}, def.Versions)
	assert.Contains(t, def.Commands, "miniasm -f {WD}all_reads.fastq")
	require.NotNil(t, def.Conda)

	env, err := def.Environment()
	require.NoError(t, err)
	assert.Equal(t, "channels:\n  - bioconda\ndependencies:\n  - minimap2=2.17\n  - miniasm=0.3\n", string(env))
}

func TestParse_VersionOrderFollowsFile(t *testing.T) {
	t.Parallel()

	data := []byte("description: d\ncommands: echo\nversions:\n  zeta: z\n  alpha: a\n  mid: m\n")
	def, err := Parse("p", "p.yaml", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, def.Versions.Tools())
}

func TestParse_NoConda(t *testing.T) {
	t.Parallel()

	for name, data := range map[string]string{
		"absent": "description: d\ncommands: echo\n",
		"null":   "description: d\ncommands: echo\nconda:\n",
	} {
		def, err := Parse("p", "p.yaml", []byte(data))
		require.NoError(t, err, name)
		assert.Nil(t, def.Conda, name)

		env, err := def.Environment()
		require.NoError(t, err, name)
		assert.Nil(t, env, name)
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data    string
		wantErr string
	}{
		"missing description": {
			data:    "commands: echo hi\n",
			wantErr: "description is required",
		},
		"missing commands": {
			data:    "description: d\n",
			wantErr: "commands is required",
		},
		"empty file": {
			data:    "",
			wantErr: "is required",
		},
		"versions as list": {
			data:    "description: d\ncommands: echo\nversions:\n  - minimap2\n",
			wantErr: "versions must be a mapping",
		},
		"nested version value": {
			data:    "description: d\ncommands: echo\nversions:\n  minimap2:\n    cmd: x\n",
			wantErr: "scalar",
		},
		"duplicate version": {
			data:    "description: d\ncommands: echo\nversions:\n  a: x\n  a: y\n",
			wantErr: "",
		},
		"malformed yaml": {
			data:    "description: [unclosed\n",
			wantErr: "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse("p", "p.yaml", []byte(tt.data))
			require.Error(t, err)

			var invalid *InvalidDefinitionError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, "p", invalid.Pipeline)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvironment_DoesNotMutateDefinition(t *testing.T) {
	t.Parallel()

	def, err := Parse("p", "p.yaml", []byte("description: d\ncommands: echo\nconda: {dependencies: [x]}\n"))
	require.NoError(t, err)

	_, err = def.Environment()
	require.NoError(t, err)
	assert.Equal(t, yaml.FlowStyle, def.Conda.Style&yaml.FlowStyle, "original node keeps its style")
}
