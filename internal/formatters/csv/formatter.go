// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"finredact/internal/core"
	"finredact/internal/formatters"
)

// Formatter implements CSV output formatting, one row per redaction
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated redaction log for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(batch *core.BatchResult, options formatters.FormatterOptions) (string, error) {
	headers := []string{"Document", "Document Type", "Page", "Category", "Confidence Level", "Confidence", "Replacement"}
	if options.ShowOriginal {
		headers = append(headers, "Original")
	}
	if options.Verbose {
		headers = append(headers, "Rule")
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(headers); err != nil {
		return "", err
	}

	for _, report := range formatters.VisibleBatch(batch, options).Reports {
		for _, r := range report.Redactions {
			row := []string{
				report.Input,
				string(report.DocumentType),
				strconv.Itoa(r.Page),
				r.Category.String(),
				formatters.ConfidenceLevel(r.Confidence),
				fmt.Sprintf("%.2f", r.Confidence),
				r.Replacement,
			}
			if options.ShowOriginal {
				row = append(row, r.Original)
			}
			if options.Verbose {
				row = append(row, r.Rule)
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("error formatting CSV: %w", err)
	}
	return b.String(), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
