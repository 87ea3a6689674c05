package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	// Color functions with auto-detection for terminal support.
	// These fall back gracefully when colors are unavailable.
	errorLabel   = color.New(color.FgRed, color.Bold).SprintFunc()
	errorMsg     = color.New(color.FgRed).SprintFunc()
	warningLabel = color.New(color.FgYellow, color.Bold).SprintFunc()
	fixLabel     = color.New(color.FgGreen, color.Bold).SprintFunc()
	usageLabel   = color.New(color.FgCyan, color.Bold).SprintFunc()
	usageText    = color.New(color.FgCyan).SprintFunc()
	bullet       = color.New(color.FgGreen).SprintFunc()
	categoryFmt  = color.New(color.FgYellow).SprintFunc()
)

// plain maps every colorizer to fmt.Sprint.
func plain(a ...interface{}) string { return fmt.Sprint(a...) }

type palette struct {
	label, msg, category, fix, usageLabel, usage, bullet func(...interface{}) string
}

var (
	colored   = palette{errorLabel, errorMsg, categoryFmt, fixLabel, usageLabel, usageText, bullet}
	uncolored = palette{plain, plain, plain, plain, plain, plain, plain}
)

// FormatError formats a CLIError for display in the terminal.
// Colors are dropped automatically when output is not a terminal.
func FormatError(err *CLIError) string {
	if err == nil {
		return ""
	}
	return formatError(err, colored)
}

// FormatErrorPlain formats a CLIError without colors.
func FormatErrorPlain(err *CLIError) string {
	if err == nil {
		return ""
	}
	return formatError(err, uncolored)
}

func formatError(err *CLIError, p palette) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s [%s]: %s\n", p.label("Error"), p.category(err.Category.String()), p.msg(err.Message))

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s%s\n", p.usageLabel("Usage: "), p.usage(err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", p.fix("To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", p.bullet("•"), step)
		}
	}

	return sb.String()
}

// FprintError prints a formatted CLIError to w.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}

// FprintWarning prints a one-line warning to w.
func FprintWarning(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", warningLabel("Warning:"), msg)
}
