// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"finredact/internal/category"
	"finredact/internal/detector"
)

// DefaultCustomReplacement is used for custom strings added without one
const DefaultCustomReplacement = "[REDACTED]"

// ErrInvalidPattern is wrapped by PatternError for rules that fail to compile
var ErrInvalidPattern = errors.New("invalid pattern")

// CustomPattern is a user supplied regular expression
type CustomPattern struct {
	Pattern     string
	Replacement string
	Description string
}

// CustomString is a user supplied literal that is always redacted
type CustomString struct {
	Text        string
	Replacement string
}

// Kinds of user rule named by PatternError
const (
	KindCustomString  = "custom string"
	KindCustomPattern = "custom pattern"
)

// PatternError reports one user rule that was skipped. Index counts
// within the rules of the same Kind.
type PatternError struct {
	Kind    string
	Index   int
	Pattern string
	Cause   error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s %d (%q): %v", e.Kind, e.Index, e.Pattern, e.Cause)
}

func (e *PatternError) Unwrap() error {
	return e.Cause
}

// CompilePattern validates a single user regular expression
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}

// CompileCustomPatterns compiles user patterns into rules. A pattern that
// fails to compile is skipped and reported; the others are still returned.
func CompileCustomPatterns(custom []CustomPattern) ([]Rule, []*PatternError) {
	var rules []Rule
	var errs []*PatternError
	for i, p := range custom {
		re, err := CompilePattern(p.Pattern)
		if err != nil {
			errs = append(errs, &PatternError{Kind: KindCustomPattern, Index: i, Pattern: p.Pattern, Cause: err})
			continue
		}
		replacement := p.Replacement
		if replacement == "" {
			replacement = DefaultCustomReplacement
		}
		rules = append(rules, Rule{
			Category:    category.CustomStrings,
			Pattern:     re,
			Replacement: replacement,
			Source:      detector.SourceCustom,
			Description: p.Description,
		})
	}
	return rules, errs
}

// LiteralPattern returns the expression matching text exactly. A word
// boundary is required on each side that ends in an ASCII letter or digit,
// so "Acme" does not match inside "Acmeville" while "#A-17" still matches.
func LiteralPattern(text string) string {
	return withBoundaries(text, regexp.QuoteMeta(text))
}

// withBoundaries wraps expr in \b on the sides where text ends in a word
// character. RE2 boundaries are ASCII only, so other runes get none.
func withBoundaries(text, expr string) string {
	if text == "" {
		return expr
	}
	if isWordByte(text[0]) {
		expr = `\b` + expr
	}
	if isWordByte(text[len(text)-1]) {
		expr += `\b`
	}
	return expr
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// CompileCustomStrings builds literal rules for user strings. Blank strings
// are skipped and reported.
func CompileCustomStrings(custom []CustomString) ([]Rule, []*PatternError) {
	var rules []Rule
	var errs []*PatternError
	for i, p := range custom {
		if strings.TrimSpace(p.Text) == "" {
			errs = append(errs, &PatternError{Kind: KindCustomString, Index: i, Pattern: p.Text, Cause: fmt.Errorf("%w: empty custom string", ErrInvalidPattern)})
			continue
		}
		replacement := p.Replacement
		if replacement == "" {
			replacement = DefaultCustomReplacement
		}
		rules = append(rules, Rule{
			Category:    category.CustomStrings,
			Pattern:     regexp.MustCompile(LiteralPattern(p.Text)),
			Replacement: replacement,
			Source:      detector.SourceCustom,
			Description: "custom string",
		})
	}
	return rules, errs
}

// DedupeCustomStrings appends additions to existing, skipping texts that
// are already present. Blank texts are dropped.
func DedupeCustomStrings(existing []CustomString, additions []string, replacement string) []CustomString {
	if replacement == "" {
		replacement = DefaultCustomReplacement
	}
	seen := make(map[string]bool, len(existing))
	out := append([]CustomString(nil), existing...)
	for _, cs := range existing {
		seen[cs.Text] = true
	}
	for _, text := range additions {
		text = strings.TrimSpace(text)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, CustomString{Text: text, Replacement: replacement})
	}
	return out
}
