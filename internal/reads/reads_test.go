package reads

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "run1", "a.fastq"), "@a\n")
	writeFile(t, filepath.Join(dir, "run1", "nested", "b.fastq"), "@b\n")
	writeFile(t, filepath.Join(dir, "run1", "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, "single.fq"), "@s\n")

	tests := map[string]struct {
		locations   []string
		pattern     string
		wantFiles   []string
		wantMissing []string
		wantErr     error
	}{
		"directory with default pattern": {
			locations: []string{filepath.Join(dir, "run1")},
			wantFiles: []string{
				filepath.Join(dir, "run1", "a.fastq"),
				filepath.Join(dir, "run1", "nested", "b.fastq"),
			},
		},
		"explicit file bypasses pattern": {
			locations: []string{filepath.Join(dir, "single.fq")},
			wantFiles: []string{filepath.Join(dir, "single.fq")},
		},
		"custom pattern": {
			locations: []string{dir},
			pattern:   "*.txt",
			wantFiles: []string{filepath.Join(dir, "run1", "notes.txt")},
		},
		"missing location is skipped": {
			locations:   []string{filepath.Join(dir, "nope"), filepath.Join(dir, "single.fq")},
			wantFiles:   []string{filepath.Join(dir, "single.fq")},
			wantMissing: []string{filepath.Join(dir, "nope")},
		},
		"nothing found": {
			locations:   []string{filepath.Join(dir, "nope")},
			wantMissing: []string{filepath.Join(dir, "nope")},
			wantErr:     ErrNoReads,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := Discover(tt.locations, tt.pattern)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantFiles, got.Files)
			assert.Equal(t, tt.wantMissing, got.Missing)
		})
	}
}

func TestDiscoverInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := Discover([]string{t.TempDir()}, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid reads pattern")
}

func TestConcatenate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.fastq")
	b := filepath.Join(dir, "b.fastq")
	writeFile(t, a, "@r1\nACGT\n+\n!!!!\n")
	writeFile(t, b, "@r2\nTT\n+\n!!\n")
	dest := filepath.Join(dir, "out", "all_reads.fastq")
	writeFile(t, dest, "stale")

	n, err := Concatenate([]string{a, b}, dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "@r1\nACGT\n+\n!!!!\n@r2\nTT\n+\n!!\n", string(data))
	assert.EqualValues(t, len(data), n)
	assert.NoFileExists(t, dest+".tmp")
}

func TestConcatenateMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "all_reads.fastq")
	writeFile(t, dest, "previous")

	_, err := Concatenate([]string{filepath.Join(dir, "gone.fastq")}, dest)
	require.Error(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
	assert.NoFileExists(t, dest+".tmp")
}
