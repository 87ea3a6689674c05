package banner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatements(t *testing.T) {
	t.Parallel()

	probes := Probes{
		{Tool: "samtools", Expr: "samtools --version"},
		{Tool: "minimap2", Expr: "minimap2 --version"},
	}

	got := Statements(probes, "test run")

	want := []string{
		`echo "START METHODS PRINTING"`,
		`echo "description: test run"`,
		`echo "versions:"`,
		`echo "  samtools: "$(samtools --version)`,
		`echo "  minimap2: "$(minimap2 --version)`,
		`echo "END METHODS PRINTING"`,
	}
	assert.Equal(t, want, got)
}

func TestStatements_PreservesOrder(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		probes Probes
	}{
		"alphabetical": {probes: Probes{{Tool: "a", Expr: "a -v"}, {Tool: "b", Expr: "b -v"}}},
		"reversed":     {probes: Probes{{Tool: "z", Expr: "z -v"}, {Tool: "m", Expr: "m -v"}, {Tool: "a", Expr: "a -v"}}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			stmts := Statements(tt.probes, "d")
			require.Len(t, stmts, len(tt.probes)+4)
			for i, p := range tt.probes {
				assert.Contains(t, stmts[3+i], `"  `+p.Tool+`: "`)
			}
		})
	}
}

func TestStatements_Description(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		description string
		want        string
	}{
		"plain":            {description: "Canu v1.7", want: `echo "description: Canu v1.7"`},
		"embedded newline": {description: "line one\nline two\n", want: `echo "description: line oneline two"`},
		"crlf":             {description: "windows\r\nstyle", want: `echo "description: windowsstyle"`},
		"empty":            {description: "", want: `echo "description: "`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			stmts := Statements(nil, tt.description)
			assert.Equal(t, tt.want, stmts[1])
			assert.Len(t, stmts, 4)
		})
	}
}

func TestStatements_EmptyExpression(t *testing.T) {
	t.Parallel()

	stmts := Statements(Probes{{Tool: "custom", Expr: ""}}, "d")
	assert.Equal(t, `echo "  custom: "$()`, stmts[3])
}

type fakeProber map[string]string

func (f fakeProber) Probe(_ context.Context, expr string) (string, error) {
	v, ok := f[expr]
	if !ok {
		return "", errors.New("command not found")
	}
	return v, nil
}

func TestResolveAll(t *testing.T) {
	t.Parallel()

	probes := Probes{
		{Tool: "flye", Expr: "flye --version"},
		{Tool: "ghost", Expr: "ghost --version"},
	}
	got := ResolveAll(context.Background(), fakeProber{"flye --version": "2.4.2"}, probes)

	require.Len(t, got, 2)
	assert.Equal(t, "flye", got[0].Tool)
	assert.Equal(t, "2.4.2", got[0].Version)
	assert.NoError(t, got[0].Err)
	assert.Equal(t, "ghost", got[1].Tool)
	assert.Error(t, got[1].Err)
	assert.Equal(t, []string{"flye", "ghost"}, probes.Tools())
}

func TestShellProber(t *testing.T) {
	t.Parallel()

	p := ShellProber{}

	got, err := p.Probe(context.Background(), "echo 1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", got)

	got, err = p.Probe(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = p.Probe(context.Background(), "exit 3")
	assert.Error(t, err)
}
