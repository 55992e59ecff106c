// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"sort"
	"time"

	"finredact/internal/category"
	"finredact/internal/detector"
	"finredact/internal/doctype"
	"finredact/internal/resolver"
)

// Redaction is one applied replacement
type Redaction struct {
	Page        int               `json:"page" yaml:"page"`
	Category    category.Category `json:"category" yaml:"category"`
	Original    string            `json:"original" yaml:"original"`
	Replacement string            `json:"replacement" yaml:"replacement"`
	Confidence  float64           `json:"confidence" yaml:"confidence"`
	Rule        string            `json:"rule,omitempty" yaml:"rule,omitempty"`
}

// PageError describes a page that could not be redacted
type PageError struct {
	Page  int    `json:"page" yaml:"page"`
	Error string `json:"error" yaml:"error"`
}

// Report summarizes the redaction of one document
type Report struct {
	RunID          string       `json:"run_id" yaml:"run_id"`
	Input          string       `json:"input" yaml:"input"`
	Output         string       `json:"output,omitempty" yaml:"output,omitempty"`
	TextOutput     string       `json:"text_output,omitempty" yaml:"text_output,omitempty"`
	DocumentType   doctype.Type `json:"document_type" yaml:"document_type"`
	TypeConfidence float64      `json:"type_confidence" yaml:"type_confidence"`
	Pages          int          `json:"pages" yaml:"pages"`

	TotalRedactions int            `json:"total_redactions" yaml:"total_redactions"`
	Counts          map[string]int `json:"counts" yaml:"counts"`
	// PreservedBalances counts currency amounts kept as account balances
	PreservedBalances int         `json:"preserved_balances" yaml:"preserved_balances"`
	Redactions        []Redaction `json:"redactions,omitempty" yaml:"redactions,omitempty"`

	Degraded        []resolver.Degradation `json:"degraded,omitempty" yaml:"degraded,omitempty"`
	SkippedPatterns []string               `json:"skipped_patterns,omitempty" yaml:"skipped_patterns,omitempty"`
	PageErrors      []PageError            `json:"page_errors,omitempty" yaml:"page_errors,omitempty"`

	Duration time.Duration `json:"duration" yaml:"duration"`
}

func newReport(runID, input string) *Report {
	return &Report{RunID: runID, Input: input, Counts: make(map[string]int)}
}

// add records the outcome of one page
func (r *Report) add(res resolver.PageResult) {
	for _, m := range res.Matches {
		r.addMatch(m)
	}
	r.PreservedBalances += len(res.Preserved)
	r.Degraded = append(r.Degraded, res.Degraded...)
}

func (r *Report) addMatch(m detector.Match) {
	r.TotalRedactions++
	r.Counts[m.Category.String()]++
	r.Redactions = append(r.Redactions, Redaction{
		Page:        m.Page,
		Category:    m.Category,
		Original:    m.Text,
		Replacement: m.Replacement,
		Confidence:  m.Confidence,
		Rule:        m.Rule,
	})
}

// finish orders the detail lists by page
func (r *Report) finish(started time.Time) {
	sort.SliceStable(r.Redactions, func(i, j int) bool { return r.Redactions[i].Page < r.Redactions[j].Page })
	sort.SliceStable(r.Degraded, func(i, j int) bool { return r.Degraded[i].Page < r.Degraded[j].Page })
	sort.Slice(r.PageErrors, func(i, j int) bool { return r.PageErrors[i].Page < r.PageErrors[j].Page })
	r.Duration = time.Since(started)
}

// Categories returns the redacted categories sorted by name
func (r *Report) Categories() []string {
	out := make([]string, 0, len(r.Counts))
	for c := range r.Counts {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// DegradedCategories returns each degraded category once, in first-seen order
func (r *Report) DegradedCategories() []category.Category {
	seen := make(map[category.Category]bool)
	var out []category.Category
	for _, d := range r.Degraded {
		if !seen[d.Category] {
			seen[d.Category] = true
			out = append(out, d.Category)
		}
	}
	return out
}

// BatchResult summarizes a folder run
type BatchResult struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Total     int       `json:"total" yaml:"total"`
	Processed int       `json:"processed" yaml:"processed"`
	Failed    int       `json:"failed" yaml:"failed"`
	Reports   []*Report `json:"reports" yaml:"reports"`
	// Errors lists one message per failed document
	Errors   []string      `json:"errors,omitempty" yaml:"errors,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}
