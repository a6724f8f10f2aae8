package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter formats user errors and pass progress for the CLI, in a
// Rust-inspired, fatih/color-backed style — minus the source-excerpt
// machinery, since a UserError here points at a function/node/pass rather
// than a line and column of source text.
type Reporter struct {
	// Color toggles ANSI output; disabled automatically by fatih/color
	// when stdout isn't a terminal, but exposed here so the driver can
	// force it off for stats-file-only runs.
	Color bool
}

// NewReporter creates a reporter with color enabled.
func NewReporter() *Reporter {
	return &Reporter{Color: true}
}

func (r *Reporter) colorize(c color.Attribute, s string) string {
	if !r.Color {
		return s
	}
	return color.New(c, color.Bold).Sprint(s)
}

// FormatUserError renders a UserError as "error[Code]: message (context)".
func (r *Reporter) FormatUserError(err *UserError) string {
	header := r.colorize(color.FgRed, fmt.Sprintf("error[%s]", err.Code))
	if err.Context != "" {
		return fmt.Sprintf("%s: %s\n  %s %s\n", header, err.Message, r.colorize(color.FgBlue, "in"), err.Context)
	}
	return fmt.Sprintf("%s: %s\n", header, err.Message)
}

// FormatInvariant renders an InvariantViolation for the "internal error,
// please report" path (exit code 3).
func (r *Reporter) FormatInvariant(v *InvariantViolation) string {
	header := r.colorize(color.FgRed, "internal error")
	return fmt.Sprintf("%s: %s\n  %s %s:%d\n", header, v.Message, r.colorize(color.FgBlue, "at"), v.File, v.Line)
}

// PassProgress renders one line of pass progress, mirroring an
// optimization pipeline's console output ("  ✓ Name: description" when
// the pass changed the graph, "  - Name: description" when it did not).
func (r *Reporter) PassProgress(name string, changed bool, detail string) string {
	mark := r.colorize(color.FgGreen, "✓")
	if !changed {
		mark = r.colorize(color.FgYellow, "-")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s %s", mark, name)
	if detail != "" {
		fmt.Fprintf(&sb, ": %s", detail)
	}
	return sb.String()
}

// Success renders a final "done" line.
func (r *Reporter) Success(msg string) string {
	return r.colorize(color.FgGreen, "✓ "+msg)
}
