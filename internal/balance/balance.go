// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package balance keeps statement balances readable. Currency amounts
// introduced by a balance label are preserved instead of redacted.
package balance

import (
	"strings"

	"finredact/internal/category"
	"finredact/internal/detector"
)

// DefaultWindow is the number of characters before an amount searched first
const DefaultWindow = 50

// DefaultKeywords are the labels that mark an amount as a balance.
// Matching is case-insensitive; trailing colons and spaces need no entry.
var DefaultKeywords = []string{
	"beginning balance",
	"ending balance",
	"available balance",
	"current balance",
	"account balance",
	"total balance",
	"statement balance",
	"opening balance",
	"closing balance",
}

// Filter decides which currency matches are balances
type Filter struct {
	Window   int
	Keywords []string
}

// NewFilter creates a filter with the default window and keywords
func NewFilter() *Filter {
	return &Filter{Window: DefaultWindow, Keywords: DefaultKeywords}
}

// WithWindow sets the short context window
func (f *Filter) WithWindow(n int) *Filter {
	if n > 0 {
		f.Window = n
	}
	return f
}

// WithKeywords replaces the keyword list. Keywords are lowercased.
func (f *Filter) WithKeywords(keywords []string) *Filter {
	if len(keywords) == 0 {
		return f
	}
	f.Keywords = make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			f.Keywords = append(f.Keywords, k)
		}
	}
	return f
}

// HasKeyword reports whether any balance keyword occurs in text
func (f *Filter) HasKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range f.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// IsPreserved reports whether the amount at start is a balance: a keyword
// occurs earlier on the same line. The window of text just before the
// amount is checked first and then the rest of the line prefix. Neither
// reaches back past the line start.
func (f *Filter) IsPreserved(matchText string, start int, fullText string) bool {
	if start < 0 || start > len(fullText) {
		return false
	}

	lineStart, _ := detector.LineBounds(fullText, start)
	windowStart := max(lineStart, start-f.Window)
	if f.containsKeyword(fullText[windowStart:start]) {
		return true
	}
	if windowStart == lineStart {
		return false
	}
	return f.containsKeyword(fullText[lineStart:start])
}

func (f *Filter) containsKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, k := range f.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Apply splits matches into those to redact and the currency matches that
// are preserved balances. Input order is kept.
func (f *Filter) Apply(matches []detector.Match, fullText string) (kept, preserved []detector.Match) {
	hasCurrency := false
	for _, m := range matches {
		if m.Category == category.Currency {
			hasCurrency = true
			break
		}
	}
	if !hasCurrency || !f.HasKeyword(fullText) {
		return matches, nil
	}

	kept = make([]detector.Match, 0, len(matches))
	for _, m := range matches {
		if m.Category == category.Currency && f.IsPreserved(m.Text, m.Start, fullText) {
			preserved = append(preserved, m)
			continue
		}
		kept = append(kept, m)
	}
	return kept, preserved
}
