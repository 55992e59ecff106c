// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package patterns is the single source of truth for the regular
// expressions used to find sensitive data: the per-category rule library,
// the candidate families used by the name and address detectors, and the
// compilation of user supplied patterns and literal strings.
package patterns

import (
	"regexp"

	"finredact/internal/category"
	"finredact/internal/detector"
	"finredact/internal/doctype"
)

// Library maps each category to its ordered alternative rules.
// A Library is immutable once built and safe for concurrent use.
type Library struct {
	rules map[category.Category][]Rule
}

// RealisticMarker is the template placed on rules in realistic mode. The
// replacement resolver swaps it for a generated value.
func RealisticMarker(c category.Category) string {
	return "REALISTIC_" + upper(c.String())
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

var (
	accountFollowedByContext = regexp.MustCompile(`(?i)^[^\n]*(?:\$|balance|savings|statement)`)
	routingFollowedByContext = regexp.MustCompile(`(?i)^[^\n]*routing`)
	currencyFollowedByUnit   = regexp.MustCompile(`(?i)^\s*(?:USD|dollars?)`)
)

func rule(c category.Category, pattern, replacement string) Rule {
	return Rule{
		Category:    c,
		Pattern:     regexp.MustCompile(pattern),
		Replacement: replacement,
		Source:      detector.SourceRegex,
	}
}

func (r Rule) followedBy(after *regexp.Regexp) Rule {
	r.After = after
	return r
}

func (r Rule) group(g int) Rule {
	r.Group = g
	return r
}

func (r Rule) describe(d string) Rule {
	r.Description = d
	return r
}

// Default returns the built-in financial pattern library
func Default() *Library {
	return &Library{rules: map[category.Category][]Rule{
		category.SSN: {
			rule(category.SSN, `\b(?:\d{3}-\d{2}-\d{4}|\d{9})\b`, "XXX-XX-XXXX").describe("SSN with or without dashes"),
		},
		category.Phone: {
			rule(category.Phone, `\(\d{3}\)\s*\d{3}[-.\s]\d{4}`, "(XXX) XXX-XXXX").describe("(555) 123-4567"),
			rule(category.Phone, `\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`, "XXX-XXX-XXXX").describe("555-123-4567"),
			rule(category.Phone, `\b1[-.\s]?\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`, "1-XXX-XXX-XXXX").describe("1-555-123-4567"),
		},
		category.AccountNumber: {
			rule(category.AccountNumber, `(?i)(?:account|acct)\s*#?\s*:?\s*\d{8,17}\b`, "ACCOUNT XXXXXXXXXX").describe("labelled account number"),
			rule(category.AccountNumber, `(?i)(?:account\s+number|account\s+#)\s+\d{8,17}\b`, "ACCOUNT XXXXXXXXXX"),
			rule(category.AccountNumber, `(?i)(?:HIGH YIELD SAVINGS|SAVINGS|CHECKING)\s+\d{10,17}\b`, "ACCOUNT XXXXXXXXXX"),
			rule(category.AccountNumber, `\b\d{4}\s+\d{4}\s+\d{4}\b`, "XXXX XXXX XXXX").describe("spaced 12 digit account"),
			rule(category.AccountNumber, `(?i)(?:banking|savings|checking).*?\b\d{4}\s+\d{4}\s+\d{4}\b`, "ACCOUNT XXXX XXXX XXXX"),
			rule(category.AccountNumber, `\b\d{10,11}\b`, "XXXXXXXXXX").
				followedBy(accountFollowedByContext).describe("bare account number followed by balance context"),
			rule(category.AccountNumber, `\b\d{12,17}\b`, "XXXXXXXXXX").describe("long digit run"),
		},
		category.RoutingNumber: {
			rule(category.RoutingNumber, `\b\d{9}\b`, "XXXXXXXXX").
				followedBy(routingFollowedByContext).describe("nine digits followed by routing on the same line"),
		},
		category.CreditCard: {
			rule(category.CreditCard, `\b(?:\d{4}[-\s]?){3}\d{4}\b`, "XXXX-XXXX-XXXX-XXXX").describe("16 digit card"),
			rule(category.CreditCard, `\b(?:\d{4}[-\s]?)\d{6}[-\s]?\d{5}\b`, "XXXX-XXXXXX-XXXXX").describe("15 digit card"),
		},
		category.TaxID: {
			rule(category.TaxID, `\b\d{2}-\d{7}\b`, "XX-XXXXXXX").describe("EIN"),
		},
		category.Currency: {
			rule(category.Currency, `\$\s*\d{1,3}(?:,\d{3})*(?:\.\d{2})?`, "$X,XXX.XX"),
			rule(category.Currency, `\b\d{1,3}(?:,\d{3})*(?:\.\d{2})?`, "X,XXX.XX").
				followedBy(currencyFollowedByUnit).describe("amount followed by USD or dollars"),
		},
		category.Dates: {
			rule(category.Dates, `\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`, "XX/XX/XXXX"),
			rule(category.Dates, `(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{2,4}\b`, "Month XX, XXXX"),
		},
		category.Email: {
			rule(category.Email, `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`, "user@domain.com"),
		},
		category.Address: {
			rule(category.Address, `\b\d{1,5}\s+[A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)*\s+(?i:STREET|ST|AVENUE|AVE|ROAD|RD|DRIVE|DR|LANE|LN|BOULEVARD|BLVD|WAY|PLACE|PL|CIRCLE|CIR|COURT|CT)\b`, "[STREET ADDRESS]"),
			rule(category.Address, `\b[A-Z][A-Za-z\s]+,?\s+[A-Z]{2}\s+\d{5}(?:-\d{4})?\b`, "[CITY, STATE ZIP]"),
			rule(category.Address, `(?i)P\.?O\.?\s*BOX\s+\d+`, "P.O. BOX [NUMBER]"),
		},
		category.Employer: {
			rule(category.Employer, `\b(?i:employer):?[ \t]*([^\n\r]+)`, "[EMPLOYER NAME]").group(1),
			rule(category.Employer, `\b(?i:company):?[ \t]*([^\n\r]+)`, "[COMPANY NAME]").group(1),
		},
		category.Names: {
			rule(category.Names, `\b(?i:Mr|Mrs|Ms|Dr|Prof)\.?\s+[A-Z][a-z]+(?:\s+[A-Z]\.?)?\s+[A-Z][a-z]+\b`, "[FULL NAME]").describe("titled name"),
			rule(category.Names, `(?i:account\s+holder|customer\s+name|patient\s+name|client\s+name):\s*([A-Z][a-z]+\s+[A-Z][a-z]+)`, "[FULL NAME]").group(1),
			rule(category.Names, `(?i:signature):\s*([A-Z][a-z]+\s+[A-Z][a-z]+)`, "[FULL NAME]").group(1),
		},
	}}
}

// Rules returns the rules of one category in library order
func (l *Library) Rules(c category.Category) []Rule {
	return append([]Rule(nil), l.rules[c]...)
}

// Categories returns the categories present in the library in priority order
func (l *Library) Categories() []category.Category {
	var out []category.Category
	for _, c := range category.All() {
		if len(l.rules[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Patterns returns the library with templates rewritten for mode. In
// realistic mode every template becomes the category's realistic marker.
// In custom mode categories present in custom use that string verbatim and
// all others keep their generic templates. The receiver is not modified.
func (l *Library) Patterns(mode category.Mode, custom map[category.Category]string) map[category.Category][]Rule {
	out := make(map[category.Category][]Rule, len(l.rules))
	for c, rules := range l.rules {
		rewritten := make([]Rule, len(rules))
		for i, r := range rules {
			switch mode {
			case category.ModeRealistic:
				rewritten[i] = r.WithReplacement(RealisticMarker(c))
			case category.ModeCustom:
				if s, ok := custom[c]; ok {
					rewritten[i] = r.WithReplacement(s)
				} else {
					rewritten[i] = r
				}
			default:
				rewritten[i] = r
			}
		}
		out[c] = rewritten
	}
	return out
}

// Resolve returns a new Library whose templates are rewritten for mode
func (l *Library) Resolve(mode category.Mode, custom map[category.Category]string) *Library {
	return &Library{rules: l.Patterns(mode, custom)}
}

// Filter returns a new Library holding only the categories for which
// enabled reports true. Categories missing from enabled stay enabled.
func (l *Library) Filter(enabled map[category.Category]bool) *Library {
	out := make(map[category.Category][]Rule, len(l.rules))
	for c, rules := range l.rules {
		if on, ok := enabled[c]; ok && !on {
			continue
		}
		out[c] = rules
	}
	return &Library{rules: out}
}

// Restrict returns a new Library holding only the given categories
func (l *Library) Restrict(cats []category.Category) *Library {
	out := make(map[category.Category][]Rule, len(cats))
	for _, c := range cats {
		if rules, ok := l.rules[c]; ok {
			out[c] = rules
		}
	}
	return &Library{rules: out}
}

// Has reports whether the library holds rules for c
func (l *Library) Has(c category.Category) bool {
	return len(l.rules[c]) > 0
}

// All returns every rule in category priority order
func (l *Library) All() []Rule {
	var out []Rule
	for _, c := range l.Categories() {
		out = append(out, l.rules[c]...)
	}
	return out
}

// baseCategories are searched in every document type
var baseCategories = []category.Category{category.SSN, category.Phone, category.Email, category.Names}

var documentCategories = map[doctype.Type][]category.Category{
	doctype.BankStatement: {category.AccountNumber, category.RoutingNumber, category.Currency, category.Address},
	doctype.W2:            {category.TaxID, category.Currency, category.Employer, category.Address},
	doctype.TaxReturn:     {category.TaxID, category.Currency, category.Address},
	doctype.PayStub:       {category.Currency, category.Employer, category.Address},
}

// CategoriesForDocumentType returns the categories relevant to a document
// type. General documents and unknown types get every built-in category.
func CategoriesForDocumentType(t doctype.Type) []category.Category {
	extra, ok := documentCategories[t]
	if !ok {
		return category.Builtin()
	}
	return append(append([]category.Category(nil), baseCategories...), extra...)
}

// ForDocumentType returns the rules of the categories relevant to t
func (l *Library) ForDocumentType(t doctype.Type) []Rule {
	var out []Rule
	for _, c := range CategoriesForDocumentType(t) {
		out = append(out, l.rules[c]...)
	}
	return out
}
