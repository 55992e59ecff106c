// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"regexp"
	"strings"
)

// Name shapes shared by the name detector and the heuristic recognizer.
var (
	TitledName          = regexp.MustCompile(`\b(?:Mr|Mrs|Ms|Dr|Prof|Rev)\.?\s+[A-Z][a-z]+(?:\s+[A-Z]\.?)?\s+[A-Z][a-z]+\b`)
	FirstInitialLast    = regexp.MustCompile(`\b[A-Z][a-z]{2,}\s+[A-Z]\.\s+[A-Z][a-z]{2,}\b`)
	FirstBareInitial    = regexp.MustCompile(`\b[A-Z][a-z]{2,}\s+[A-Z]\s+[A-Z][a-z]{2,}\b`)
	FirstLast           = regexp.MustCompile(`\b[A-Z][a-z]{2,}\s+[A-Z][a-z]{2,}\b`)
	UpperInitialLast    = regexp.MustCompile(`\b[A-Z]{3,}\s+[A-Z]\.\s+[A-Z]{3,}\b`)
	UpperBareInitial    = regexp.MustCompile(`\b[A-Z]{3,}\s+[A-Z]\s+[A-Z]{3,}\b`)
	UpperFirstLast      = regexp.MustCompile(`\b[A-Z]{3,}\s+[A-Z]{3,}\b`)
	FirstMiddleLast     = regexp.MustCompile(`\b[A-Z][a-z]{2,}\s+[A-Z][a-z]{2,}\s+[A-Z][a-z]{2,}\b`)
	LooseTitledName     = regexp.MustCompile(`\b(?:Mr|Mrs|Ms|Dr|Prof|Rev)\.?\s+[A-Z][a-z]{2,}(?:\s+[A-Z]\.?\s*)?(?:\s+[A-Z][a-z]{2,})?\b`)
	LastCommaFirst      = regexp.MustCompile(`\b[A-Z][a-z]{2,},\s+[A-Z][a-z]{2,}(?:\s+[A-Z]\.?)?\b`)
	UpperLastCommaFirst = regexp.MustCompile(`\b[A-Z]{3,},\s*[A-Z][a-z]{2,}(?:\s+[A-Z])?\b`)

	// LeadingTitle strips an honorific from the front of a name
	LeadingTitle = regexp.MustCompile(`(?i)^(?:Mr|Mrs|Ms|Dr|Prof|Rev)\.?\s+`)
)

// NameCandidates is the ordered candidate family of the name detector
var NameCandidates = []*regexp.Regexp{
	TitledName,
	FirstInitialLast,
	FirstBareInitial,
	FirstLast,
	UpperInitialLast,
	UpperBareInitial,
	UpperFirstLast,
	FirstMiddleLast,
}

// HeuristicNameCandidates is the candidate family scored by the offline
// recognizer. It adds last-name-first forms seen on statements.
var HeuristicNameCandidates = []*regexp.Regexp{
	FirstInitialLast,
	FirstBareInitial,
	FirstLast,
	UpperInitialLast,
	UpperBareInitial,
	UpperFirstLast,
	LooseTitledName,
	LastCommaFirst,
	UpperLastCommaFirst,
}

// StreetTypes lists the street suffixes recognised in addresses. Longer
// forms precede their abbreviations.
var StreetTypes = []string{
	"Street", "St", "Avenue", "Ave", "Road", "Rd", "Drive", "Dr",
	"Lane", "Ln", "Boulevard", "Blvd", "Court", "Ct", "Way",
	"Place", "Pl", "Circle", "Cir", "Parkway", "Pkwy", "Trail", "Trl",
}

// Address candidate families used by the address detector. Line breaks
// separate address blocks, so none of them match across a newline.
var (
	StreetCandidate = regexp.MustCompile(`(?i)\b\d+[ \t]+[A-Z][A-Za-z0-9 \t]*?[ \t]+(?:` + strings.Join(StreetTypes, "|") +
		`)\b(?:[ \t]+(?:Suite|Ste|Apt|Apartment|Unit|#)[ \t]*[A-Za-z0-9-]+)?`)
	POBoxCandidate    = regexp.MustCompile(`(?i)\bP\.?[ \t]*O\.?[ \t]*Box[ \t]+\d+\b`)
	CityStateZipComma = regexp.MustCompile(`\b[A-Z][a-zA-Z ]+,[ \t]*[A-Z]{2}[ \t]+\d{5}(?:-\d{4})?\b`)
	StateZip          = regexp.MustCompile(`\b([A-Z]{2})[ \t]+(\d{5}(?:-\d{4})?)\b`)
	ZipCode           = regexp.MustCompile(`\b(\d{5}(?:-\d{4})?)\b`)
	StateBeforeZip    = regexp.MustCompile(`\b([A-Z]{2})[ \t]+\d{5}`)
)

// FlexibleLiteral returns an expression matching s with any run of
// whitespace between its words, so text reflowed across lines is found.
// Word boundaries apply as in LiteralPattern.
func FlexibleLiteral(s string) *regexp.Regexp {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(withBoundaries(strings.TrimSpace(s), strings.Join(words, `\s+`)))
}
