// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package names finds person names on a page. Regex candidates are
// filtered against financial vocabulary, confirmed with an entity
// recognizer and parsed into first, middle and last components.
package names

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"finredact/internal/detector"
	"finredact/internal/patterns"
	"finredact/internal/recognizer"
)

// ParsedName is a confirmed person name and every place it occurs
type ParsedName struct {
	FullName   string          `json:"full_name" yaml:"full_name"`
	FirstName  string          `json:"first_name" yaml:"first_name"`
	MiddleName string          `json:"middle_name" yaml:"middle_name"`
	LastName   string          `json:"last_name" yaml:"last_name"`
	Confidence float64         `json:"confidence" yaml:"confidence"`
	Positions  []detector.Span `json:"positions" yaml:"positions"`
}

// Result is the outcome of one detection pass. Degraded is set when the
// recognizer could not be used and names come from filtered regex
// candidates only.
type Result struct {
	Names    []ParsedName
	Degraded bool
	Reason   string
}

// Options holds the tunable confidences of the detector
type Options struct {
	MinConfidence          float64
	PersonConfidence       float64
	TitleCaseConfidence    float64
	OrganizationConfidence float64
	FallbackConfidence     float64
	ContextBoost           float64
	MaxConfidence          float64
	ContextChars           int
}

// DefaultOptions returns the tuned defaults
func DefaultOptions() Options {
	return Options{
		MinConfidence:          0.5,
		PersonConfidence:       0.9,
		TitleCaseConfidence:    0.85,
		OrganizationConfidence: 0.8,
		FallbackConfidence:     0.7,
		ContextBoost:           0.05,
		MaxConfidence:          0.98,
		ContextChars:           50,
	}
}

var personalContextMarkers = []string{
	"account holder", "customer name", "signature:", "signed by", "dear ",
	"mr.", "mrs.", "ms.", "dr.",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Detector finds person names. It is safe for concurrent use when the
// recognizer is.
type Detector struct {
	recognizer recognizer.Recognizer
	opts       Options
	context    *detector.ContextExtractor
}

// NewDetector creates a detector. A nil recognizer makes every pass degraded.
func NewDetector(rec recognizer.Recognizer, opts Options) *Detector {
	return &Detector{
		recognizer: rec,
		opts:       opts,
		context:    detector.NewContextExtractor().WithContextChars(opts.ContextChars),
	}
}

// cleanText joins lines so names broken across lines become candidates
func cleanText(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// extractCandidates runs the candidate family over the joined text, which
// finds names broken across lines, and then over each line on its own so a
// match reaching across a line break cannot hide the name that starts the
// next line. The first occurrence of each distinct candidate that passes
// the filter is kept.
func extractCandidates(text string) []string {
	seen := make(map[string]bool)
	var out []string
	scan := func(s string) {
		for _, re := range patterns.NameCandidates {
			for _, c := range re.FindAllString(s, -1) {
				if seen[c] {
					continue
				}
				seen[c] = true
				if isValidCandidate(c) {
					out = append(out, c)
				}
			}
		}
	}

	scan(cleanText(text))
	for _, line := range strings.Split(text, "\n") {
		if line = cleanText(line); line != "" {
			scan(line)
		}
	}
	return out
}

// Locate returns every span of text where name occurs, allowing any
// whitespace between its words.
func Locate(text, name string) []detector.Span {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	var spans []detector.Span
	for _, loc := range patterns.FlexibleLiteral(name).FindAllStringIndex(text, -1) {
		spans = append(spans, detector.Span{Start: loc[0], End: loc[1]})
	}
	return spans
}

func isUpper(s string) bool {
	return strings.ToUpper(s) == s && strings.ToLower(s) != s
}

// titleCaseUpperWords rewrites each all-caps ASCII word of two or more
// letters as Title case. Byte offsets are unchanged.
func titleCaseUpperWords(text string) string {
	b := []byte(text)
	for i := 0; i < len(b); {
		if !isASCIILetter(b[i]) {
			i++
			continue
		}
		j := i
		allUpper := true
		for j < len(b) && isASCIILetter(b[j]) {
			if b[j] >= 'a' {
				allUpper = false
			}
			j++
		}
		if allUpper && j-i >= 2 {
			for k := i + 1; k < j; k++ {
				b[k] += 'a' - 'A'
			}
		}
		i = j
	}
	return string(b)
}

func isASCIILetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// labelledAs reports whether an entity with label covers one of spans
func labelledAs(spans []detector.Span, entities []recognizer.Entity, label recognizer.Label) bool {
	for _, e := range entities {
		if e.Label != label {
			continue
		}
		for _, s := range spans {
			if e.Start <= s.Start && s.End <= e.End {
				return true
			}
		}
	}
	return false
}

func (d *Detector) hasPersonalContext(text string, span detector.Span) bool {
	info := d.context.ExtractContext(text, span.Start, span.End)
	before := strings.ToLower(info.BeforeText)
	for _, m := range personalContextMarkers {
		if strings.Contains(before, m) {
			return true
		}
	}
	return false
}

func (d *Detector) boost(conf float64, text string, spans []detector.Span) float64 {
	if d.hasPersonalContext(text, spans[0]) {
		conf = min(conf+d.opts.ContextBoost, d.opts.MaxConfidence)
	}
	return conf
}

// Detect finds person names in page text. It never fails: recognizer
// errors produce a degraded result built from the filtered candidates.
func (d *Detector) Detect(ctx context.Context, text string) Result {
	candidates := extractCandidates(text)

	if d.recognizer == nil {
		return d.fallback(text, candidates, "no entity recognizer configured")
	}
	entities, err := d.recognizer.Recognize(ctx, text)
	if err != nil {
		return d.fallback(text, candidates, fmt.Sprintf("entity recognizer %s failed: %v", d.recognizer.Name(), err))
	}

	var titled []recognizer.Entity
	if titledText := titleCaseUpperWords(text); titledText != text && anyUpper(candidates) {
		// a failed retry only loses the all-caps boost
		titled, _ = d.recognizer.Recognize(ctx, titledText)
	}

	var out []ParsedName
	accepted := make(map[string]bool)
	for _, c := range candidates {
		spans := Locate(text, c)
		if len(spans) == 0 {
			continue
		}

		conf := 0.0
		switch {
		case labelledAs(spans, entities, recognizer.Person):
			conf = d.opts.PersonConfidence
		case isUpper(c) && labelledAs(spans, titled, recognizer.Person):
			conf = d.opts.TitleCaseConfidence
		case labelledAs(spans, entities, recognizer.Organization) && couldBePersonName(c):
			info := d.context.ExtractContext(text, spans[0].Start, spans[0].End)
			if !IsBusinessName(c, info.Window(c)) {
				conf = d.opts.OrganizationConfidence
			}
		}
		if conf == 0 {
			continue
		}

		conf = d.boost(conf, text, spans)
		if conf < d.opts.MinConfidence {
			continue
		}
		accepted[strings.ToLower(c)] = true
		out = append(out, newParsedName(c, conf, spans))
	}

	// person spans the regex family missed, split per line
	for _, e := range recognizer.Persons(entities) {
		for _, part := range recognizer.SplitLines(e) {
			name := cleanText(part.Text)
			if accepted[strings.ToLower(name)] || !looksLikePersonName(name) || !isValidCandidate(name) {
				continue
			}
			info := d.context.ExtractContext(text, part.Start, part.End)
			if IsBusinessName(name, info.Window(name)) {
				continue
			}
			spans := Locate(text, name)
			if len(spans) == 0 {
				continue
			}
			conf := d.boost(d.opts.PersonConfidence, text, spans)
			if conf < d.opts.MinConfidence {
				continue
			}
			accepted[strings.ToLower(name)] = true
			out = append(out, newParsedName(name, conf, spans))
		}
	}

	sortByPosition(out)
	return Result{Names: out}
}

func (d *Detector) fallback(text string, candidates []string, reason string) Result {
	var out []ParsedName
	for _, c := range candidates {
		spans := Locate(text, c)
		if len(spans) == 0 || d.opts.FallbackConfidence < d.opts.MinConfidence {
			continue
		}
		out = append(out, newParsedName(c, d.opts.FallbackConfidence, spans))
	}
	sortByPosition(out)
	return Result{Names: out, Degraded: true, Reason: reason}
}

func anyUpper(candidates []string) bool {
	for _, c := range candidates {
		if isUpper(c) {
			return true
		}
	}
	return false
}

func sortByPosition(names []ParsedName) {
	sort.SliceStable(names, func(i, j int) bool {
		return names[i].Positions[0].Start < names[j].Positions[0].Start
	})
}

func newParsedName(full string, confidence float64, spans []detector.Span) ParsedName {
	first, middle, last := Parse(full)
	return ParsedName{
		FullName:   full,
		FirstName:  first,
		MiddleName: middle,
		LastName:   last,
		Confidence: confidence,
		Positions:  spans,
	}
}

// Parse splits a name into first, middle and last components after
// removing a leading title. A single word is treated as a last name.
func Parse(name string) (first, middle, last string) {
	words := strings.Fields(patterns.LeadingTitle.ReplaceAllString(strings.TrimSpace(name), ""))
	switch len(words) {
	case 0:
		return "", "", ""
	case 1:
		return "", "", words[0]
	case 2:
		return words[0], "", words[1]
	case 3:
		return words[0], words[1], words[2]
	default:
		return words[0], strings.Join(words[1:len(words)-1], " "), words[len(words)-1]
	}
}

// KnownNames returns the distinct full names of a result, for exclusion
// from address candidates.
func (r Result) KnownNames() []string {
	out := make([]string, 0, len(r.Names))
	for _, n := range r.Names {
		out = append(out, n.FullName)
	}
	return out
}

// Spans returns every position of every name
func (r Result) Spans() []detector.Span {
	var out []detector.Span
	for _, n := range r.Names {
		out = append(out, n.Positions...)
	}
	return out
}
