// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"path/filepath"
	"strings"

	"finredact/internal/core"
	"finredact/internal/formatters"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable summary with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(batch *core.BatchResult, options formatters.FormatterOptions) (string, error) {
	var b strings.Builder
	visible := formatters.VisibleBatch(batch, options)

	if len(visible.Reports) == 0 && visible.Failed == 0 {
		return "No PDF documents found.\n", nil
	}

	for i, report := range visible.Reports {
		if i > 0 {
			b.WriteString("\n")
		}
		f.appendReport(&b, report, options)
	}

	if visible.Total > 1 || visible.Failed > 0 {
		b.WriteString("\n")
		f.appendSummary(&b, visible, options)
	}
	return b.String(), nil
}

// paint formats with the named color unless colors are off
func (f *Formatter) paint(options formatters.FormatterOptions, name, format string, args ...any) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

func (f *Formatter) appendReport(b *strings.Builder, r *core.Report, options formatters.FormatterOptions) {
	b.WriteString(f.paint(options, "white", "=== %s ===", filepath.Base(r.Input)))
	b.WriteString("\n")
	fmt.Fprintf(b, "Document type: %s (confidence %.0f%%)\n", f.paint(options, "cyan", "%s", r.DocumentType), r.TypeConfidence*100)
	fmt.Fprintf(b, "Pages: %d   Redactions: %s   Preserved balances: %d\n",
		r.Pages, f.paint(options, "red", "%d", r.TotalRedactions), r.PreservedBalances)
	if r.Output != "" {
		fmt.Fprintf(b, "Output: %s\n", r.Output)
	}
	if r.TextOutput != "" {
		fmt.Fprintf(b, "Text:   %s\n", r.TextOutput)
	}

	if len(r.Counts) > 0 {
		b.WriteString(f.paint(options, "white", "%-18s %5s", "CATEGORY", "COUNT"))
		b.WriteString("\n")
		for _, c := range r.Categories() {
			fmt.Fprintf(b, "%s %5d\n", f.paint(options, "cyan", "%-18s", c), r.Counts[c])
		}
	}

	if options.Verbose && len(r.Redactions) > 0 {
		b.WriteString(f.paint(options, "white", "Redactions:"))
		b.WriteString("\n")
		for _, red := range r.Redactions {
			f.appendRedaction(b, red, options)
		}
	}

	if len(r.Degraded) > 0 {
		b.WriteString(f.paint(options, "yellow", "Degraded detection:"))
		b.WriteString("\n")
		for _, d := range r.Degraded {
			fmt.Fprintf(b, "  %s %s: %s\n", pageLabel(d.Page), d.Category, d.Reason)
		}
	}
	if len(r.SkippedPatterns) > 0 {
		b.WriteString(f.paint(options, "yellow", "Skipped custom patterns:"))
		b.WriteString("\n")
		for _, s := range r.SkippedPatterns {
			fmt.Fprintf(b, "  %s\n", s)
		}
	}
	if len(r.PageErrors) > 0 {
		b.WriteString(f.paint(options, "red", "Page errors:"))
		b.WriteString("\n")
		for _, pe := range r.PageErrors {
			fmt.Fprintf(b, "  %s: %s\n", pageLabel(pe.Page), pe.Error)
		}
	}
}

func (f *Formatter) appendRedaction(b *strings.Builder, r core.Redaction, options formatters.FormatterOptions) {
	level := formatters.ConfidenceLevel(r.Confidence)
	levelColor := "green"
	switch level {
	case "HIGH":
		levelColor = "red"
	case "MEDIUM":
		levelColor = "yellow"
	}

	line := fmt.Sprintf("  %s %s %s %s",
		f.paint(options, levelColor, "[%-6s]", level),
		f.paint(options, "magenta", "%-8s", pageLabel(r.Page)),
		f.paint(options, "cyan", "%-16s", r.Category),
		r.Replacement)
	if options.ShowOriginal {
		line += " <- " + strings.ReplaceAll(r.Original, "\n", " ")
	}
	b.WriteString(line)
	b.WriteString("\n")
}

func (f *Formatter) appendSummary(b *strings.Builder, batch *core.BatchResult, options formatters.FormatterOptions) {
	status := f.paint(options, "green", "%d of %d documents redacted", batch.Processed, batch.Total)
	if batch.Failed > 0 {
		status += ", " + f.paint(options, "red", "%d failed", batch.Failed)
	}
	fmt.Fprintf(b, "Summary: %s in %s\n", status, batch.Duration.Round(1e6))
	for _, e := range batch.Errors {
		fmt.Fprintf(b, "  %s\n", e)
	}
}

// pageLabel names page 0 as the form fields
func pageLabel(page int) string {
	if page == 0 {
		return "form"
	}
	return fmt.Sprintf("page %d", page)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
