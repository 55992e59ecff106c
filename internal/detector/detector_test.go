// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlap(t *testing.T) {
	tests := []struct {
		name       string
		a, b       Span
		wantResult bool
	}{
		{"disjoint", Span{0, 5}, Span{6, 9}, false},
		{"touching", Span{0, 5}, Span{5, 9}, false},
		{"contained", Span{0, 10}, Span{2, 4}, true},
		{"partial", Span{3, 8}, Span{0, 4}, true},
		{"identical", Span{1, 2}, Span{1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantResult, Overlap(tt.a.Start, tt.a.End, tt.b.Start, tt.b.End))
			assert.Equal(t, tt.wantResult, Overlap(tt.b.Start, tt.b.End, tt.a.Start, tt.a.End))
		})
	}
}

func TestMatchValid(t *testing.T) {
	assert.True(t, Match{Start: 0, End: 3}.Valid(3))
	assert.False(t, Match{Start: 2, End: 2}.Valid(3))
	assert.False(t, Match{Start: 1, End: 4}.Valid(3))
}

func TestSourceStructured(t *testing.T) {
	assert.True(t, SourceNames.Structured())
	assert.True(t, SourceAddress.Structured())
	assert.False(t, SourceRegex.Structured())
	assert.False(t, SourceCustom.Structured())
}

func TestExtractContext(t *testing.T) {
	text := "Statement\nCurrent Balance: $1,234.56 as of today\nPayment"
	start := len("Statement\nCurrent Balance: ")
	end := start + len("$1,234.56")

	info := NewContextExtractor().WithContextChars(10).ExtractContext(text, start, end)
	assert.Equal(t, "Balance: ", info.BeforeText[1:])
	assert.Equal(t, " as of tod", info.AfterText)
	assert.Equal(t, "Current Balance: $1,234.56 as of today", info.FullLine)
	assert.Equal(t, len("Statement\n"), info.LineStart)
}

func TestLineBounds(t *testing.T) {
	text := "one\ntwo\nthree"
	s, e := LineBounds(text, 5)
	assert.Equal(t, "two", text[s:e])
	s, e = LineBounds(text, len(text))
	assert.Equal(t, "three", text[s:e])
	s, e = LineBounds(text, 0)
	assert.Equal(t, "one", text[s:e])
}
