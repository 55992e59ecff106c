// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package replacement

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finredact/internal/category"
	"finredact/internal/patterns"
)

func TestRealisticSSNIsDeterministic(t *testing.T) {
	r := NewResolver(category.ModeRealistic, DefaultSettings())

	first := r.Resolve(category.SSN, "123-45-6789", "XXX-XX-XXXX")
	second := r.Resolve(category.SSN, "123-45-6789", "XXX-XX-XXXX")

	assert.Equal(t, first, second)
	assert.Regexp(t, `^9\d{2}-\d{2}-\d{4}$`, first)
	assert.Equal(t, 1, r.Len())
}

func TestGenerateIsPure(t *testing.T) {
	s := DefaultSettings()
	for _, c := range category.Builtin() {
		if !HasGenerator(c) {
			continue
		}
		assert.Equal(t, Generate(c, "seed text", s), Generate(c, "seed text", s), c.String())
	}
}

func TestResolverIsolatedPerDocument(t *testing.T) {
	a := NewResolver(category.ModeRealistic, DefaultSettings())
	b := NewResolver(category.ModeRealistic, DefaultSettings())

	assert.Equal(t, a.Resolve(category.Names, "Grace Chen", "[FULL NAME]"), b.Resolve(category.Names, "Grace Chen", "[FULL NAME]"))

	a.Reset()
	assert.Zero(t, a.Len())
	assert.Equal(t, 1, b.Len())
}

func TestResolveModes(t *testing.T) {
	settings := DefaultSettings()
	settings.CustomReplacements = map[category.Category]string{category.SSN: "[SSN]"}

	tests := []struct {
		name     string
		mode     category.Mode
		category category.Category
		template string
		want     string
	}{
		{"generic uses template", category.ModeGeneric, category.SSN, "XXX-XX-XXXX", "XXX-XX-XXXX"},
		{"custom replaces configured category", category.ModeCustom, category.SSN, "XXX-XX-XXXX", "[SSN]"},
		{"custom falls back to template", category.ModeCustom, category.Phone, "XXX-XXX-XXXX", "XXX-XXX-XXXX"},
		{"custom strings keep their literal", category.ModeRealistic, category.CustomStrings, "[ACCT]", "[ACCT]"},
		{"custom strings ignore custom map", category.ModeCustom, category.CustomStrings, "[ACCT]", "[ACCT]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.mode, settings)
			assert.Equal(t, tt.want, r.Resolve(tt.category, "123-45-6789", tt.template))
		})
	}
}

func TestResolveRealisticMarkerWithoutGenerator(t *testing.T) {
	r := NewResolver(category.ModeRealistic, DefaultSettings())
	got := r.Resolve(category.Unknown, "x", patterns.RealisticMarker(category.Unknown))
	assert.Equal(t, patterns.DefaultCustomReplacement, got)
}

func TestGeneratorShapes(t *testing.T) {
	s := DefaultSettings()
	tests := []struct {
		category category.Category
		original string
		shape    string
	}{
		{category.Phone, "(212) 555-0100", `^\(555\) \d{3}-\d{4}$`},
		{category.AccountNumber, "000123456789", `^\d{10,12}$`},
		{category.RoutingNumber, "021000021", `^(0[1-9]|1[0-2])\d{7}$`},
		{category.CreditCard, "4111 1111 1111 1111", `^(4000|4111|4222|5555)-\d{4}-\d{4}-\d{4}$`},
		{category.TaxID, "12-3456789", `^\d{2}-\d{7}$`},
		{category.Currency, "$1,234.56", `^\$\d{1,3}(,\d{3})*\.\d{2}$`},
		{category.Dates, "01/15/2024", `^\d{2}/\d{2}/\d{4}$`},
		{category.Dates, "2024-01-15", `^\d{2}-\d{2}-\d{4}$`},
		{category.Dates, "January 15, 2024", `^[A-Z][a-z]{2} \d{1,2}, \d{4}$`},
		{category.Email, "someone@bank.com", `^[a-z.]+@example\.(com|org)$`},
		{category.Address, "123 Main Street", `^\d{3,4} [A-Z]+ [A-Z]+$`},
		{category.Address, "Springfield, IL 62704-1234", `^[A-Za-z]+, [A-Z]{2} \d{5}-\d{4}$`},
		{category.Address, "PO Box 1234", `^PO Box \d+$`},
		{category.Employer, "Contoso Ltd", `^(ACME Corp|Globex Inc|Initech LLC)$`},
	}

	for _, tt := range tests {
		t.Run(tt.category.String()+"/"+tt.original, func(t *testing.T) {
			assert.Regexp(t, regexp.MustCompile(tt.shape), Generate(tt.category, tt.original, s))
		})
	}
}

func TestPersonNameKeepsTitleAndLength(t *testing.T) {
	s := DefaultSettings()

	titled := Generate(category.Names, "Dr. Emily Stone", s)
	assert.Regexp(t, `^(Mr|Ms|Mrs|Dr)\. `, titled)

	plain := Generate(category.Names, "Jennifer Williams", s)
	assert.InDelta(t, len("Jennifer Williams"), len(plain), 3)

	middle := Generate(category.Names, "John Q Public", s)
	assert.Regexp(t, `^\S+ [A-M]\. \S+$`, middle)
}

func TestInconsistentModeSkipsCache(t *testing.T) {
	s := DefaultSettings()
	s.Consistent = false
	r := NewResolver(category.ModeRealistic, s)

	got := r.Resolve(category.SSN, "123-45-6789", "XXX-XX-XXXX")
	assert.Regexp(t, `^9\d{2}-\d{2}-\d{4}$`, got)
	assert.Zero(t, r.Len())
}

func TestResolverConcurrentUse(t *testing.T) {
	r := NewResolver(category.ModeRealistic, DefaultSettings())
	want := Generate(category.AccountNumber, "000123456789", DefaultSettings())

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(category.AccountNumber, "000123456789", "XXXXXXXXXXXX")
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Equal(t, want, got)
	}
}
