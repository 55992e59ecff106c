// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finredact/internal/address"
	"finredact/internal/category"
	"finredact/internal/detector"
	"finredact/internal/doctype"
	"finredact/internal/names"
	"finredact/internal/patterns"
	"finredact/internal/recognizer"
	"finredact/internal/replacement"
)

func match(c category.Category, start, end int) detector.Match {
	return detector.Match{Category: c, Start: start, End: end, Text: strings.Repeat("x", end-start)}
}

func assertNoOverlap(t *testing.T, matches []detector.Match) {
	t.Helper()
	for i := range matches {
		for j := i + 1; j < len(matches); j++ {
			a, b := matches[i], matches[j]
			assert.True(t, a.End <= b.Start || b.End <= a.Start, "%v overlaps %v", a, b)
		}
	}
}

func TestResolveNoOverlap(t *testing.T) {
	input := []detector.Match{
		match(category.Currency, 0, 10),
		match(category.Dates, 5, 15),
		match(category.Phone, 8, 20),
		match(category.SSN, 18, 29),
		match(category.Address, 25, 40),
		match(category.Employer, 0, 50),
		match(category.Email, 41, 49),
		match(category.Names, 30, 35),
	}

	got := Resolve(input)
	assertNoOverlap(t, got)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Start, got[i].Start)
	}
}

func TestResolvePriorityRegardlessOfOrder(t *testing.T) {
	ssn := match(category.SSN, 4, 15)
	currency := match(category.Currency, 0, 8)

	for _, input := range [][]detector.Match{{ssn, currency}, {currency, ssn}} {
		got := Resolve(input)
		require.Len(t, got, 1)
		assert.Equal(t, category.SSN, got[0].Category)
	}
}

func TestResolveGreedyKeepsHigherPriority(t *testing.T) {
	// one address blocks two later currency amounts
	input := []detector.Match{
		match(category.Address, 0, 30),
		match(category.Currency, 0, 10),
		match(category.Currency, 20, 30),
	}
	got := Resolve(input)
	require.Len(t, got, 1)
	assert.Equal(t, category.Address, got[0].Category)
}

func TestResolveCustomStringsWin(t *testing.T) {
	got := Resolve([]detector.Match{match(category.SSN, 0, 11), match(category.CustomStrings, 0, 11)})
	require.Len(t, got, 1)
	assert.Equal(t, category.CustomStrings, got[0].Category)
}

func TestDedupe(t *testing.T) {
	a := match(category.Phone, 0, 12)
	got := Dedupe([]detector.Match{a, a, match(category.Phone, 0, 11)})
	assert.Len(t, got, 2)
}

func TestMaskKeepsOffsets(t *testing.T) {
	text := "Dr. Emily Stone 555-123-4567"
	masked := Mask(text, []detector.Match{match(category.Names, 0, 15)})

	require.Len(t, masked, len(text))
	assert.Equal(t, strings.Repeat("\x00", 15), masked[:15])
	assert.Equal(t, text[15:], masked[15:])
}

func TestProcessBalancePreserved(t *testing.T) {
	e := New(Options{})
	repl := replacement.NewResolver(category.ModeGeneric, replacement.DefaultSettings())

	preserved := e.Process(context.Background(), 1, "Current Balance: $1,234.56", doctype.General, repl)
	for _, m := range preserved.Matches {
		assert.NotEqual(t, "$1,234.56", m.Text)
	}
	require.Len(t, preserved.Preserved, 1)
	assert.Equal(t, "$1,234.56", preserved.Preserved[0].Text)

	redacted := e.Process(context.Background(), 1, "Payment: $1,234.56", doctype.General, repl)
	require.Len(t, redacted.Matches, 1)
	assert.Equal(t, "$1,234.56", redacted.Matches[0].Text)
	assert.Equal(t, "$X,XXX.XX", redacted.Matches[0].Replacement)
	assert.Equal(t, 1, redacted.Matches[0].Page)
	assert.Empty(t, redacted.Preserved)
}

func TestProcessCustomStringOverridesCategory(t *testing.T) {
	e := New(Options{CustomStrings: []patterns.CustomString{{Text: "123-45-6789", Replacement: "[ID]"}}})
	repl := replacement.NewResolver(category.ModeRealistic, replacement.DefaultSettings())

	res := e.Process(context.Background(), 1, "SSN 123-45-6789", doctype.General, repl)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, category.CustomStrings, res.Matches[0].Category)
	assert.Equal(t, "[ID]", res.Matches[0].Replacement)
}

func TestProcessRealisticReplacementIsConsistent(t *testing.T) {
	e := New(Options{})
	repl := replacement.NewResolver(category.ModeRealistic, replacement.DefaultSettings())

	res := e.Process(context.Background(), 1, "SSN 123-45-6789 and again 123-45-6789", doctype.General, repl)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, res.Matches[0].Replacement, res.Matches[1].Replacement)
	assert.Regexp(t, `^9\d{2}-\d{2}-\d{4}$`, res.Matches[0].Replacement)
}

func TestProcessStructuredSpansAreMasked(t *testing.T) {
	e := New(Options{Names: names.NewDetector(nil, names.DefaultOptions())})
	text := "Dr. Emily Stone 555-123-4567"

	res := e.Process(context.Background(), 2, text, doctype.General, nil)
	assertNoOverlap(t, res.Matches)

	require.Len(t, res.Degraded, 1)
	assert.Equal(t, category.Names, res.Degraded[0].Category)
	assert.Equal(t, 2, res.Degraded[0].Page)

	var sawName, sawPhone bool
	for _, m := range res.Matches {
		switch m.Category {
		case category.Names:
			sawName = true
			assert.Equal(t, detector.SourceNames, m.Source)
			assert.Contains(t, m.Text, "Emily Stone")
		case category.Phone:
			sawPhone = true
			assert.Equal(t, "555-123-4567", m.Text)
		}
	}
	assert.True(t, sawName)
	assert.True(t, sawPhone)
}

func TestProcessDocumentTypeSubset(t *testing.T) {
	e := New(Options{})
	text := "Routing 021000021 routing number\nDate 01/15/2024"

	res := e.Process(context.Background(), 1, text, doctype.W2, nil)
	for _, m := range res.Matches {
		assert.NotEqual(t, category.RoutingNumber, m.Category)
		assert.NotEqual(t, category.Dates, m.Category)
	}

	res = e.Process(context.Background(), 1, text, doctype.General, nil)
	var cats []category.Category
	for _, m := range res.Matches {
		cats = append(cats, m.Category)
	}
	assert.Contains(t, cats, category.Dates)
}

func TestNewReportsSkippedCustomPatterns(t *testing.T) {
	e := New(Options{CustomPatterns: []patterns.CustomPattern{{Pattern: "("}, {Pattern: `ACCT-\d+`}}})
	require.Len(t, e.Skipped(), 1)
	assert.Equal(t, 0, e.Skipped()[0].Index)
	assert.Equal(t, patterns.KindCustomPattern, e.Skipped()[0].Kind)

	res := e.Process(context.Background(), 1, "ref ACCT-991", doctype.General, nil)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, patterns.DefaultCustomReplacement, res.Matches[0].Replacement)
}

func TestNewTagsSkippedRulesByKind(t *testing.T) {
	e := New(Options{
		CustomStrings:  []patterns.CustomString{{Text: " "}},
		CustomPatterns: []patterns.CustomPattern{{Pattern: "[z-a]"}},
	})
	require.Len(t, e.Skipped(), 2)

	var reasons []string
	for _, pe := range e.Skipped() {
		reasons = append(reasons, pe.Error())
	}
	assert.Contains(t, reasons[0], "custom string 0")
	assert.Contains(t, reasons[1], "custom pattern 0")
}

func TestProcessBalanceLabelDoesNotReachNextLine(t *testing.T) {
	e := New(Options{})
	repl := replacement.NewResolver(category.ModeGeneric, replacement.DefaultSettings())

	res := e.Process(context.Background(), 1, "Current Balance: $1,234.56\nPayment: $99.00", doctype.BankStatement, repl)
	require.Len(t, res.Preserved, 1)
	assert.Equal(t, "$1,234.56", res.Preserved[0].Text)

	var redacted []string
	for _, m := range res.Matches {
		if m.Category == category.Currency {
			redacted = append(redacted, m.Text)
		}
	}
	assert.Equal(t, []string{"$99.00"}, redacted)
}

func TestProcessRedactsEveryAddressLine(t *testing.T) {
	rec := recognizer.NewHeuristic()
	e := New(Options{
		Names:   names.NewDetector(rec, names.DefaultOptions()),
		Address: address.NewDetector(rec, address.DefaultOptions()),
	})
	text := "Statement for John Smith\n123 Main St\nAnytown, CA 90210\n"

	res := e.Process(context.Background(), 1, text, doctype.General, nil)
	assertNoOverlap(t, res.Matches)

	covered := func(s string) bool {
		i := strings.Index(text, s)
		for _, m := range res.Matches {
			if m.Start <= i && i+len(s) <= m.End {
				return true
			}
		}
		return false
	}
	assert.True(t, covered("John Smith"))
	assert.True(t, covered("123 Main St"))
	assert.True(t, covered("Anytown, CA 90210"))
	for _, m := range res.Matches {
		assert.NotContains(t, m.Text, "\n")
	}
}
