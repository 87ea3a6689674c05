package snakefile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ariel-frischer/poretally/internal/rule"
)

const (
	indentDirective = "\t"
	indentValue     = "\t\t"
	shellFence      = "'''"
	redirectMarker  = " > "
	logRedirect     = " >> {log} 2>&1"
)

// Warning is a non-fatal finding surfaced while synthesizing.
type Warning interface {
	Warning() string
}

// Script is a synthesized Snakefile.
type Script struct {
	// Text is the complete Snakefile content.
	Text string
	// Rules lists the emitted rule names in order.
	Rules []string
	// Warnings holds non-fatal findings, such as empty pipelines.
	Warnings []Warning
}

// Synthesize writes descriptors as Snakemake rules, in the order given.
// It is a pure function: identical input produces identical text.
func Synthesize(descriptors []*rule.Descriptor) (*Script, error) {
	var sb strings.Builder
	script := &Script{}
	seen := make(map[string]bool, len(descriptors))

	for i, d := range descriptors {
		if d == nil {
			return nil, &SynthesisError{Pipeline: fmt.Sprintf("#%d", i), Reason: "descriptor is nil"}
		}
		if err := checkRule(d, seen); err != nil {
			return nil, err
		}
		if err := writeRule(&sb, d); err != nil {
			return nil, err
		}
		seen[d.Name] = true
		script.Rules = append(script.Rules, d.Name)
		if d.Empty {
			script.Warnings = append(script.Warnings, &rule.EmptyPipelineWarning{Pipeline: d.Name})
		}
	}

	script.Text = sb.String()
	return script, nil
}

// IsRedirecting reports whether stmt redirects its own output. This is a
// plain substring test for " > ", not a shell parse: a quoted " > " is
// also treated as a redirect.
func IsRedirecting(stmt string) bool {
	return strings.Contains(stmt, redirectMarker)
}

// WrapStatement appends the log redirect to stmt.
func WrapStatement(stmt string) string {
	if IsRedirecting(stmt) {
		return "echo $(" + stmt + " 2>&1 )" + logRedirect
	}
	return stmt + logRedirect
}

func checkRule(d *rule.Descriptor, seen map[string]bool) error {
	if !rule.IsIdentifier(d.Name) {
		return &SynthesisError{Pipeline: d.Name, Reason: "rule name must be an identifier ([A-Za-z_][A-Za-z0-9_]*)"}
	}
	if seen[d.Name] {
		return &SynthesisError{Pipeline: d.Name, Reason: "duplicate rule name"}
	}
	if countNonEmpty(d.Outputs) == 0 {
		return &SynthesisError{Pipeline: d.Name, Directive: rule.KeywordOutput, Reason: "at least one output is required"}
	}
	if countNonEmpty(d.Logs) == 0 {
		return &SynthesisError{Pipeline: d.Name, Directive: rule.KeywordLog, Reason: "a log file is required for the shell redirects"}
	}
	return nil
}

func writeRule(sb *strings.Builder, d *rule.Descriptor) error {
	var rb strings.Builder
	rb.WriteString("rule " + d.Name + ":\n")

	for _, dir := range d.Directives() {
		lines, err := formatValue(dir.Value)
		if err != nil {
			return directiveError(d.Name, dir.Keyword, err)
		}
		if len(lines) == 0 {
			continue
		}
		rb.WriteString(indentDirective + dir.Keyword + ":\n")
		for _, line := range lines {
			rb.WriteString(indentValue + line + "\n")
		}
	}

	if err := writeShell(&rb, d); err != nil {
		return err
	}

	sb.WriteString(rb.String())
	return nil
}

func writeShell(sb *strings.Builder, d *rule.Descriptor) error {
	sb.WriteString(indentDirective + "shell:\n")
	sb.WriteString(indentValue + shellFence + "\n" + indentValue)
	for _, stmt := range d.Commands {
		if stmt == "" {
			continue
		}
		if strings.Contains(stmt, shellFence) {
			return &SynthesisError{
				Pipeline:  d.Name,
				Directive: "shell",
				Value:     stmt,
				Reason:    "statement contains ''' which would close the shell block",
			}
		}
		sb.WriteString(WrapStatement(stmt) + "\n" + indentValue)
	}
	sb.WriteString(shellFence + "\n\n")
	return nil
}

// formatValue renders one directive value as its indented lines. Empty
// entries are skipped.
func formatValue(v rule.DirectiveValue) ([]string, error) {
	switch v := v.(type) {
	case rule.Path:
		if v == "" {
			return nil, nil
		}
		q, err := rule.Quote(string(v))
		if err != nil {
			return nil, err
		}
		return []string{q}, nil

	case rule.Count:
		if v < 0 {
			return nil, fmt.Errorf("count %d must not be negative", int(v))
		}
		if v == 0 {
			return nil, nil
		}
		return []string{strconv.Itoa(int(v))}, nil

	case rule.PathList:
		lines := make([]string, 0, len(v))
		for _, p := range v {
			if p == "" {
				continue
			}
			q, err := rule.Quote(p)
			if err != nil {
				return nil, err
			}
			lines = append(lines, q)
		}
		return lines, nil

	case rule.KeyedPaths:
		lines := make([]string, 0, len(v))
		for _, kp := range v {
			if kp.Path == "" {
				continue
			}
			if !rule.IsIdentifier(kp.Key) {
				return nil, fmt.Errorf("input name %q must be an identifier", kp.Key)
			}
			q, err := rule.Quote(kp.Path)
			if err != nil {
				return nil, err
			}
			lines = append(lines, kp.Key+"="+q+",")
		}
		return lines, nil

	case nil:
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported directive value %T", v)
	}
}

func directiveError(pipeline, keyword string, err error) error {
	synthErr := &SynthesisError{Pipeline: pipeline, Directive: keyword, Reason: err.Error(), Err: err}
	var unquotable *rule.UnquotableError
	if errors.As(err, &unquotable) {
		synthErr.Value = unquotable.Value
		synthErr.Reason = fmt.Sprintf("contains %q, which the quoting rule cannot escape", unquotable.Char)
	}
	return synthErr
}

func countNonEmpty(paths rule.PathList) int {
	n := 0
	for _, p := range paths {
		if p != "" {
			n++
		}
	}
	return n
}
