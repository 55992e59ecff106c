// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package formatters renders redaction reports. Each output format lives
// in its own subpackage and registers itself with DefaultRegistry.
package formatters

import (
	"fmt"
	"sort"
	"strings"

	"finredact/internal/core"
)

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	ConfidenceLevel map[string]bool // which confidence levels to list; nil lists all
	Verbose         bool            // list every redaction, not just counts
	NoColor         bool            // disable colored output
	ShowOriginal    bool            // include the original sensitive text
}

// Formatter interface defines methods that all output formatters must implement
type Formatter interface {
	// Format renders the outcome of a run
	Format(batch *core.BatchResult, options FormatterOptions) (string, error)

	// Name returns the name of the formatter (e.g., "json", "text")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format
	FileExtension() string
}

// Registry holds all registered formatters
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	formatter, exists := r.formatters[name]
	return formatter, exists
}

// List returns all registered formatter names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry
var DefaultRegistry = NewRegistry()

// Register is a convenience function to register a formatter with the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get is a convenience function to get a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List is a convenience function to list all formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// Export renders batch with the named formatter
func Export(format string, batch *core.BatchResult, options FormatterOptions) (string, error) {
	formatter, exists := Get(format)
	if !exists {
		return "", fmt.Errorf("unsupported format '%s'. Available formats: %s", format, strings.Join(List(), ", "))
	}
	return formatter.Format(batch, options)
}

// ConfidenceLevel buckets a 0-1 confidence as HIGH, MEDIUM or LOW
func ConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return "HIGH"
	case confidence >= 0.6:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// ParseConfidenceLevels converts a comma-separated confidence level string into a map.
// "all" or empty string returns nil, which selects every level.
func ParseConfidenceLevels(levels string) map[string]bool {
	if levels == "all" || levels == "" {
		return nil
	}
	result := map[string]bool{"high": false, "medium": false, "low": false}
	for _, level := range strings.Split(levels, ",") {
		switch l := strings.ToLower(strings.TrimSpace(level)); l {
		case "high", "medium", "low":
			result[l] = true
		}
	}
	return result
}

// Visible returns a copy of report whose redaction list is filtered by
// confidence level, with original texts blanked unless ShowOriginal is set
func Visible(report *core.Report, options FormatterOptions) *core.Report {
	out := *report
	out.Redactions = make([]core.Redaction, 0, len(report.Redactions))
	for _, r := range report.Redactions {
		if options.ConfidenceLevel != nil && !options.ConfidenceLevel[strings.ToLower(ConfidenceLevel(r.Confidence))] {
			continue
		}
		if !options.ShowOriginal {
			r.Original = ""
		}
		out.Redactions = append(out.Redactions, r)
	}
	return &out
}

// VisibleBatch applies Visible to every report of batch
func VisibleBatch(batch *core.BatchResult, options FormatterOptions) *core.BatchResult {
	out := *batch
	out.Reports = make([]*core.Report, 0, len(batch.Reports))
	for _, r := range batch.Reports {
		out.Reports = append(out.Reports, Visible(r, options))
	}
	return &out
}
