// Package banner assembles the METHODS block printed at the top of every
// pipeline log.
//
// The block is a run of echo statements that, once executed, print a small
// YAML document between two sentinel lines:
//
//	START METHODS PRINTING
//	description: <free text>
//	versions:
//	  <tool>: <probe output>
//	END METHODS PRINTING
//
// Log scrapers locate the block by its sentinels, so the exact text of the
// sentinel lines and the two-space indentation must not change.
package banner

import (
	"fmt"
	"strings"
)

const (
	// StartSentinel marks the first line of the METHODS block.
	StartSentinel = "START METHODS PRINTING"
	// EndSentinel marks the last line of the METHODS block.
	EndSentinel = "END METHODS PRINTING"
)

// Probe pairs a tool label with a shell expression that prints its version.
type Probe struct {
	Tool string
	Expr string
}

// Probes is an ordered list of version probes. Order is significant: it is
// the order the tools appear in the banner.
type Probes []Probe

// Tools returns the tool labels in order.
func (p Probes) Tools() []string {
	tools := make([]string, len(p))
	for i, probe := range p {
		tools[i] = probe.Tool
	}
	return tools
}

// Statements returns the shell statements printing the METHODS block for
// probes and description. Line breaks in description are removed. A probe
// with an empty expression yields an empty capture rather than an error.
func Statements(probes Probes, description string) []string {
	stmts := make([]string, 0, len(probes)+4)
	stmts = append(stmts, echo(StartSentinel))
	stmts = append(stmts, echo("description: "+singleLine(description)))
	stmts = append(stmts, echo("versions:"))
	for _, p := range probes {
		stmts = append(stmts, fmt.Sprintf(`echo "  %s: "$(%s)`, p.Tool, p.Expr))
	}
	stmts = append(stmts, echo(EndSentinel))
	return stmts
}

func echo(text string) string {
	return `echo "` + text + `"`
}

func singleLine(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
