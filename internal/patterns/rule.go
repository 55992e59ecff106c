// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"regexp"

	"finredact/internal/category"
	"finredact/internal/detector"
)

// Rule is one alternative pattern of a category together with the
// replacement template written in place of what it matches.
type Rule struct {
	Category    category.Category
	Pattern     *regexp.Regexp
	Replacement string
	Source      detector.Source

	// Group selects the capture group whose span is redacted. Zero means
	// the whole match.
	Group int

	// After, when set, must match the text that follows the whole match.
	// It stands in for a trailing lookahead.
	After *regexp.Regexp

	Description string
}

// ID returns a stable identifier for the rule, used for dedupe and reports
func (r Rule) ID() string {
	return r.Category.String() + ":" + r.Pattern.String()
}

// WithReplacement returns a copy of the rule using a different template
func (r Rule) WithReplacement(replacement string) Rule {
	r.Replacement = replacement
	return r
}

// FindAll returns every match of the rule in text
func (r Rule) FindAll(text string) []detector.Match {
	var matches []detector.Match
	for _, loc := range r.Pattern.FindAllStringSubmatchIndex(text, -1) {
		if r.After != nil && !r.After.MatchString(text[loc[1]:]) {
			continue
		}

		start, end := loc[0], loc[1]
		if r.Group > 0 {
			if 2*r.Group+1 >= len(loc) {
				continue
			}
			start, end = loc[2*r.Group], loc[2*r.Group+1]
		}
		if start < 0 || start >= end {
			continue
		}

		matches = append(matches, detector.Match{
			Text:        text[start:end],
			Replacement: r.Replacement,
			Start:       start,
			End:         end,
			Category:    r.Category,
			Confidence:  1.0,
			Source:      r.Source,
			Rule:        r.ID(),
		})
	}
	return matches
}
