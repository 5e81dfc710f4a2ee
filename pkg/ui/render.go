// Package ui renders run reports to the terminal, plain text, or JSON,
// and auto-detects which of those fits the output stream.
package ui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/tagfarm/pkg/farm"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "42"})
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"}).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// RenderReport writes the run report to w in the given format. The
// report shape is identical for dry and real runs; dry runs carry a
// notice line instead of different counts.
func RenderReport(w io.Writer, report *farm.Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatTerminal:
		return renderStyled(w, report)
	default:
		return renderPlain(w, report)
	}
}

func renderPlain(w io.Writer, report *farm.Report) error {
	for _, action := range report.Actions {
		fmt.Fprintf(w, "%s\n", action)
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, failure := range report.Failures {
		fmt.Fprintf(w, "failed: %s: %s\n", failure.Path, failure.Err)
	}
	fmt.Fprintf(w, "%s\n", summaryLine(report))
	if report.DryRun {
		fmt.Fprintln(w, "dry run - no changes were made")
	}
	return nil
}

func renderStyled(w io.Writer, report *farm.Report) error {
	for _, action := range report.Actions {
		fmt.Fprintf(w, "  %s %s\n", successStyle.Render("✓"), action)
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "  %s %s\n", warningStyle.Render("!"), warning)
	}
	for _, failure := range report.Failures {
		fmt.Fprintf(w, "  %s %s: %s\n", errorStyle.Render("✗"), failure.Path, failure.Err)
	}

	line := summaryLine(report)
	if report.Failed() {
		fmt.Fprintf(w, "\n%s\n", errorStyle.Render(line))
	} else {
		fmt.Fprintf(w, "\n%s\n", pterm.Bold.Sprint(line))
	}
	if report.DryRun {
		fmt.Fprintf(w, "%s\n", dimStyle.Render("dry run - no changes were made"))
	}
	return nil
}

func summaryLine(report *farm.Report) string {
	return fmt.Sprintf("created %d, replaced %d, removed %d, unchanged %d, warnings %d, failures %d",
		report.Created, report.Replaced, report.Removed, report.Skipped,
		len(report.Warnings), len(report.Failures))
}
