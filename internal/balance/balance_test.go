// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package balance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"finredact/internal/category"
	"finredact/internal/detector"
)

func currencyMatch(text, amount string) detector.Match {
	start := strings.Index(text, amount)
	return detector.Match{Text: amount, Start: start, End: start + len(amount), Category: category.Currency}
}

func TestIsPreserved(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"current balance", "Current Balance: $1,234.56", true},
		{"payment", "Payment: $1,234.56", false},
		{"upper case label", "ENDING BALANCE $1,234.56", true},
		{"label far left on same line", "Closing balance" + strings.Repeat(" ", 80) + "$1,234.56", true},
		{"label on previous line beyond window", "Opening balance\n" + strings.Repeat("x", 60) + " $1,234.56", false},
		{"label on previous line within window", "Current Balance: $5.00\nPayment: $1,234.56", false},
		{"label ends the previous line", "Ending balance\n$1,234.56", false},
		{"label after amount", "$1,234.56 " + strings.Repeat(" ", 60) + "current balance", false},
	}

	f := NewFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := currencyMatch(tt.text, "$1,234.56")
			assert.Equal(t, tt.want, f.IsPreserved(m.Text, m.Start, tt.text))
		})
	}
}

func TestApply(t *testing.T) {
	text := "Current Balance: $1,234.56\nPayment: $99.00\nSSN 123-45-6789"
	matches := []detector.Match{
		currencyMatch(text, "$1,234.56"),
		currencyMatch(text, "$99.00"),
		{Text: "123-45-6789", Start: strings.Index(text, "123"), End: len(text), Category: category.SSN},
	}

	kept, preserved := NewFilter().Apply(matches, text)
	assert.Len(t, kept, 2)
	assert.Equal(t, "$99.00", kept[0].Text)
	assert.Equal(t, category.SSN, kept[1].Category)
	assert.Len(t, preserved, 1)
	assert.Equal(t, "$1,234.56", preserved[0].Text)
}

func TestApplyEarlyExit(t *testing.T) {
	text := "Payment: $99.00"
	matches := []detector.Match{currencyMatch(text, "$99.00")}
	kept, preserved := NewFilter().Apply(matches, text)
	assert.Equal(t, matches, kept)
	assert.Empty(t, preserved)
}

func TestWithKeywordsAndWindow(t *testing.T) {
	f := NewFilter().WithKeywords([]string{"  Amount Due ", ""}).WithWindow(20)
	assert.Equal(t, []string{"amount due"}, f.Keywords)
	assert.Equal(t, 20, f.Window)
	assert.True(t, f.IsPreserved("$5.00", len("Amount due: "), "Amount due: $5.00"))
	assert.False(t, f.HasKeyword("current balance"))
}
