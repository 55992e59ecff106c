// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package detector holds the types shared by every detection stage: the
// Match produced for a span of page text and helpers for working with
// spans and their surrounding context.
package detector

import (
	"finredact/internal/category"
)

// Source identifies which detector produced a match
type Source int

const (
	SourceRegex Source = iota
	SourceNames
	SourceAddress
	SourceCustom
)

func (s Source) String() string {
	switch s {
	case SourceRegex:
		return "regex"
	case SourceNames:
		return "names"
	case SourceAddress:
		return "address"
	case SourceCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Structured reports whether the source is a multi-stage detector whose
// spans are authoritative and masked before regex categories run.
func (s Source) Structured() bool {
	return s == SourceNames || s == SourceAddress
}

// Match represents a detected span of sensitive data on one page.
// Offsets are byte offsets into the page text and satisfy Start < End.
type Match struct {
	Text        string            `json:"text" yaml:"text"`
	Replacement string            `json:"replacement" yaml:"replacement"`
	Start       int               `json:"start" yaml:"start"`
	End         int               `json:"end" yaml:"end"`
	Category    category.Category `json:"category" yaml:"category"`
	Confidence  float64           `json:"confidence" yaml:"confidence"`
	Source      Source            `json:"-" yaml:"-"`
	Rule        string            `json:"rule,omitempty" yaml:"rule,omitempty"` // pattern or detector that produced it
	Page        int               `json:"page" yaml:"page"`
	Metadata    map[string]any    `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Valid reports whether the match has a non-empty span inside a text of
// the given length.
func (m Match) Valid(textLen int) bool {
	return m.Start >= 0 && m.Start < m.End && m.End <= textLen
}

// Overlaps reports whether two matches share at least one byte
func (m Match) Overlaps(o Match) bool {
	return Overlap(m.Start, m.End, o.Start, o.End)
}

// Overlap reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect.
func Overlap(aStart, aEnd, bStart, bEnd int) bool {
	return !(aEnd <= bStart || aStart >= bEnd)
}

// Span is a half-open byte range of page text
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of bytes covered by the span
func (s Span) Len() int {
	return s.End - s.Start
}
