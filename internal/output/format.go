// Package output provides terminal output formatting utilities for the
// buildnotes CLI. Status lines go to stderr so the generated report on
// stdout stays machine-readable.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintSuccess prints a colored success line (green checkmark, cyan message).
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), cyan(message))
}

// PrintWarning prints a colored warning line to the given writer.
func PrintWarning(out io.Writer, message string) {
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", yellow("!"), message)
}

// PrintResolution prints the resolved version range (dim arrow between the
// baseline and target) before the report is written.
func PrintResolution(out io.Writer, from, to string) {
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	if from == "" {
		fmt.Fprintf(out, "%s %s\n", dim("full history up to"), white(to))
		return
	}
	fmt.Fprintf(out, "%s %s %s\n", white(from), dim("→"), white(to))
}
