package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedded_Catalogue(t *testing.T) {
	t.Parallel()

	src := Embedded()
	names, err := src.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"canu", "flye", "minimap2_miniasm", "raven"}, names)

	for _, name := range names {
		def, err := src.Lookup(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, def.Description, name)
		assert.NotEmpty(t, def.Versions, name)
		assert.Contains(t, def.Commands, "{WD}assembler_results/assemblies/"+name+".fasta", name)
		assert.NotNil(t, def.Conda, name)
	}
}

func TestFSSource_Lookup(t *testing.T) {
	t.Parallel()

	src := &FSSource{
		Label: "mem",
		FS: fstest.MapFS{
			"good.yaml":   {Data: []byte("description: d\ncommands: echo hi\n")},
			"broken.yaml": {Data: []byte("commands: echo hi\n")},
			"notes.txt":   {Data: []byte("ignored")},
		},
	}

	tests := map[string]struct {
		name           string
		wantUnresolved bool
		wantInvalid    bool
	}{
		"found":          {name: "good"},
		"missing":        {name: "absent", wantUnresolved: true},
		"invalid":        {name: "broken", wantInvalid: true},
		"path traversal": {name: "../good", wantUnresolved: true},
		"empty name":     {name: "", wantUnresolved: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			def, err := src.Lookup(tt.name)
			var unresolved *UnresolvedDefinitionError
			var invalid *InvalidDefinitionError
			switch {
			case tt.wantUnresolved:
				require.True(t, errors.As(err, &unresolved), "got %v", err)
				assert.Equal(t, tt.name, unresolved.Pipeline)
			case tt.wantInvalid:
				require.True(t, errors.As(err, &invalid), "got %v", err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.name, def.Name)
				assert.Equal(t, "mem/good.yaml", def.Origin)
			}
		})
	}

	names, err := src.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"broken", "good"}, names)
}

func TestDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flye.yaml"),
		[]byte("description: local flye\ncommands: flye --version\n"), 0o644))

	chain := Chain{Dir(dir), Embedded()}

	def, err := chain.Lookup("flye")
	require.NoError(t, err)
	assert.Equal(t, "local flye", def.Description, "directory source shadows the catalogue")

	def, err = chain.Lookup("canu")
	require.NoError(t, err)
	assert.Contains(t, def.Origin, "built-in catalogue")

	_, err = chain.Lookup("wtdbg2")
	var unresolved *UnresolvedDefinitionError
	require.True(t, errors.As(err, &unresolved))
	assert.Len(t, unresolved.Searched, 2)
	assert.Contains(t, unresolved.Warning(), "wtdbg2")

	names, err := chain.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"canu", "flye", "minimap2_miniasm", "raven"}, names)
}

func TestDir_Missing(t *testing.T) {
	t.Parallel()

	src := Dir(filepath.Join(t.TempDir(), "nope"))
	names, err := src.Names()
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = src.Lookup("flye")
	var unresolved *UnresolvedDefinitionError
	assert.True(t, errors.As(err, &unresolved))
}

func TestLoadAll(t *testing.T) {
	t.Parallel()

	requested := []string{"raven", "missing", "canu", "flye"}
	results, err := LoadAll(context.Background(), Embedded(), requested)
	require.NoError(t, err)
	require.Len(t, results, len(requested))

	for i, r := range results {
		assert.Equal(t, requested[i], r.Name)
	}
	assert.NotNil(t, results[0].Definition)
	assert.Nil(t, results[1].Definition)
	var unresolved *UnresolvedDefinitionError
	assert.True(t, errors.As(results[1].Err, &unresolved))
	assert.NotNil(t, results[2].Definition)
	assert.NotNil(t, results[3].Definition)
}

func TestLoadAll_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadAll(ctx, Embedded(), []string{"flye"})
	assert.ErrorIs(t, err, context.Canceled)
}
