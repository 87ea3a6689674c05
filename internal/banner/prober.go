package banner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Prober resolves a version probe expression to the version string it
// prints. Synthesis never calls a Prober; it only embeds expressions in the
// banner. Probers back the interactive "pipelines show --probe" output.
type Prober interface {
	Probe(ctx context.Context, expr string) (string, error)
}

// ShellProber runs probe expressions with "sh -c".
type ShellProber struct {
	// Shell is the interpreter (default "sh").
	Shell string
	// Timeout bounds each probe (default 10s).
	Timeout time.Duration
}

// Probe runs expr and returns its trimmed combined output.
func (p ShellProber) Probe(ctx context.Context, expr string) (string, error) {
	if strings.TrimSpace(expr) == "" {
		return "", nil
	}

	shell := p.Shell
	if shell == "" {
		shell = "sh"
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, shell, "-c", expr)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return strings.TrimSpace(out.String()), fmt.Errorf("running probe %q: %w", expr, err)
	}
	return strings.TrimSpace(out.String()), nil
}

// Resolved is a probe together with the version it printed.
type Resolved struct {
	Tool    string
	Version string
	Err     error
}

// ResolveAll runs every probe in order with prober. Failures are recorded
// per tool; version reporting is best effort.
func ResolveAll(ctx context.Context, prober Prober, probes Probes) []Resolved {
	out := make([]Resolved, 0, len(probes))
	for _, p := range probes {
		version, err := prober.Probe(ctx, p.Expr)
		out = append(out, Resolved{Tool: p.Tool, Version: version, Err: err})
	}
	return out
}
