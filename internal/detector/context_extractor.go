// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
)

// ContextInfo stores the text surrounding a match
type ContextInfo struct {
	// Text before and after the match, bounded by ContextChars
	BeforeText string
	AfterText  string

	// Line containing the start of the match
	FullLine  string
	LineStart int
}

// Window returns the before text, the matched text and the after text as a
// single string.
func (ci ContextInfo) Window(matchText string) string {
	return ci.BeforeText + matchText + ci.AfterText
}

// ContextExtractor extracts context from page text around a span
type ContextExtractor struct {
	// Number of characters before and after the match to consider
	ContextChars int
}

// NewContextExtractor creates a new context extractor with default settings
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{
		ContextChars: 50, // Look at 50 chars before and after by default
	}
}

// WithContextChars sets the number of context characters
func (ce *ContextExtractor) WithContextChars(chars int) *ContextExtractor {
	ce.ContextChars = chars
	return ce
}

// ExtractContext returns the context around text[start:end]. Out of range
// offsets are clamped to the text.
func (ce *ContextExtractor) ExtractContext(text string, start, end int) ContextInfo {
	start = clamp(start, 0, len(text))
	end = clamp(end, start, len(text))

	info := ContextInfo{
		BeforeText: text[clamp(start-ce.ContextChars, 0, start):start],
		AfterText:  text[end:clamp(end+ce.ContextChars, end, len(text))],
	}

	lineStart, lineEnd := LineBounds(text, start)
	info.FullLine = text[lineStart:lineEnd]
	info.LineStart = lineStart
	return info
}

// LineBounds returns the [start,end) offsets of the line holding pos,
// excluding the newline terminator.
func LineBounds(text string, pos int) (int, int) {
	pos = clamp(pos, 0, len(text))
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	end := strings.IndexByte(text[pos:], '\n')
	if end < 0 {
		return start, len(text)
	}
	return start, pos + end
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
