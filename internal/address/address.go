// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package address finds US postal addresses on a page. It runs after name
// detection so that names printed above or beside an address are removed
// from the candidate instead of being swallowed by it.
package address

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"finredact/internal/detector"
	"finredact/internal/patterns"
	"finredact/internal/recognizer"
)

// ParsedAddress is an accepted address and its components. Any component
// may be empty.
type ParsedAddress struct {
	FullAddress string          `json:"full_address" yaml:"full_address"`
	Street      string          `json:"street" yaml:"street"`
	City        string          `json:"city" yaml:"city"`
	State       string          `json:"state" yaml:"state"`
	Zip         string          `json:"zipcode" yaml:"zipcode"`
	Confidence  float64         `json:"confidence" yaml:"confidence"`
	Positions   []detector.Span `json:"positions" yaml:"positions"`
}

// Result is the outcome of one detection pass. Degraded is set when the
// recognizer failed and only known names were removed from candidates.
type Result struct {
	Addresses []ParsedAddress
	Degraded  bool
	Reason    string
}

// Spans returns every position of every address
func (r Result) Spans() []detector.Span {
	var out []detector.Span
	for _, a := range r.Addresses {
		out = append(out, a.Positions...)
	}
	return out
}

var usStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true, "CT": true, "DE": true, "FL": true, "GA": true,
	"HI": true, "ID": true, "IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true, "ME": true, "MD": true,
	"MA": true, "MI": true, "MN": true, "MS": true, "MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true, "OR": true, "PA": true, "RI": true, "SC": true,
	"SD": true, "TN": true, "TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true, "WI": true, "WY": true,
	"DC": true,
}

// IsState reports whether code is a US state or DC abbreviation
func IsState(code string) bool {
	return usStates[code]
}

// cityStopWords end the backward scan for a city name
var cityStopWords = map[string]bool{
	"ADDRESS": true, "SERVICE": true, "REQUESTED": true, "STATEMENT": true, "ACCOUNT": true,
	"BALANCE": true, "TOTAL": true, "AMOUNT": true, "PAYMENT": true, "DUE": true, "DATE": true,
	"DESCRIPTION": true, "TRANSACTION": true, "SUMMARY": true, "DETAILS": true, "FROM": true,
	"TO": true, "ATTN": true, "ATTENTION": true, "FOR": true, "RE": true, "REF": true,
}

var (
	intraLineSpace = regexp.MustCompile(`[ \t]+`)
	anySpace       = regexp.MustCompile(`\s+`)
	hasDigit       = regexp.MustCompile(`\d`)
	contextTerms   = regexp.MustCompile(`(?i)\b(?:address|mail|send|located|at|street)\b`)
	streetTypeWord = regexp.MustCompile(`(?i)\b(?:` + strings.Join(patterns.StreetTypes, "|") + `)\b`)
	businessTerms  = []string{"bank", "corp", "company", "inc", "llc"}
	financialTerms = []string{"balance", "total", "amount", "account", "payment"}
)

// Options holds the tunable values of the detector
type Options struct {
	MinConfidence float64
	ContextChars  int
}

// DefaultOptions returns the tuned defaults
func DefaultOptions() Options {
	return Options{MinConfidence: 0.6, ContextChars: 100}
}

// Detector finds addresses
type Detector struct {
	recognizer recognizer.Recognizer
	opts       Options
}

// NewDetector creates a detector. The recognizer is optional and only
// used to strip person names from candidates.
func NewDetector(rec recognizer.Recognizer, opts Options) *Detector {
	return &Detector{recognizer: rec, opts: opts}
}

// cleanText collapses whitespace inside lines and keeps line breaks
func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(intraLineSpace.ReplaceAllString(l, " "))
	}
	return strings.Join(lines, "\n")
}

// isUpperWord mirrors the usual all-caps test: at least one letter and no
// lowercase letters.
func isUpperWord(w string) bool {
	hasLetter := false
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// extractCandidates returns distinct candidates in discovery order
func extractCandidates(text string) []string {
	var candidates []string
	seen := make(map[string]bool)
	add := func(c string) {
		c = strings.TrimSpace(c)
		if c != "" && !seen[c] {
			seen[c] = true
			candidates = append(candidates, c)
		}
	}

	for _, m := range patterns.StreetCandidate.FindAllString(text, -1) {
		if len(strings.TrimSpace(m)) > 5 {
			add(m)
		}
	}
	for _, m := range patterns.POBoxCandidate.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range patterns.CityStateZipComma.FindAllString(text, -1) {
		add(m)
	}

	for _, loc := range patterns.StateZip.FindAllStringSubmatchIndex(text, -1) {
		state, zip := text[loc[2]:loc[3]], text[loc[4]:loc[5]]
		if !usStates[state] {
			continue
		}
		lineStart, _ := detector.LineBounds(text, loc[0])
		words := strings.Fields(text[lineStart:loc[0]])

		var city []string
		for i := len(words) - 1; i >= 0; i-- {
			w := words[i]
			if !isUpperWord(w) || len(w) < 2 || cityStopWords[w] {
				break
			}
			city = append([]string{w}, city...)
			if len(city) >= 3 {
				break
			}
		}
		if len(city) > 0 {
			add(strings.Join(city, " ") + " " + state + " " + zip)
		}
	}
	return candidates
}

// removeKnownNames deletes every case-insensitive occurrence of the names
func removeKnownNames(candidate string, known []string) string {
	cleaned := candidate
	for _, name := range known {
		name = strings.TrimSpace(name)
		if name == "" || !strings.Contains(strings.ToUpper(cleaned), strings.ToUpper(name)) {
			continue
		}
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(name))
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	return tidy(cleaned)
}

func tidy(s string) string {
	return strings.Trim(anySpace.ReplaceAllString(s, " "), " ,;:")
}

// removePersons deletes recognizer person spans from the candidate
func (d *Detector) removePersons(ctx context.Context, candidate string) (string, error) {
	if d.recognizer == nil {
		return candidate, nil
	}
	entities, err := d.recognizer.Recognize(ctx, candidate)
	if err != nil {
		return candidate, err
	}
	persons := recognizer.Persons(entities)
	if len(persons) == 0 {
		return candidate, nil
	}

	var b strings.Builder
	last := 0
	for _, p := range persons {
		if p.Start < last || p.End > len(candidate) {
			continue
		}
		b.WriteString(candidate[last:p.Start])
		b.WriteByte(' ')
		last = p.End
	}
	b.WriteString(candidate[last:])
	return tidy(b.String()), nil
}

// Confidence scores an address candidate against nearby context
func Confidence(addr, context string) float64 {
	conf := 0.5
	if hasDigit.MatchString(addr) {
		conf += 0.2
	}
	for _, w := range strings.Fields(addr) {
		if usStates[strings.Trim(w, ",.")] {
			conf += 0.2
			break
		}
	}
	if patterns.ZipCode.MatchString(addr) {
		conf += 0.15
	}
	if streetTypeWord.MatchString(addr) {
		conf += 0.15
	}
	if contextTerms.MatchString(context) {
		conf += 0.1
	}

	lower := strings.ToLower(addr)
	if containsAny(lower, businessTerms) {
		conf -= 0.2
	}
	if containsAny(lower, financialTerms) {
		conf -= 0.3
	}
	return max(0, min(1, conf))
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func (d *Detector) contextOf(cleaned, candidate string) string {
	i := strings.Index(cleaned, candidate)
	if i < 0 {
		return cleaned
	}
	info := detector.NewContextExtractor().WithContextChars(d.opts.ContextChars).ExtractContext(cleaned, i, i+len(candidate))
	return info.Window(candidate)
}

// Detect finds addresses in page text. knownNames are person names
// already detected on the page; they are removed from every candidate.
func (d *Detector) Detect(ctx context.Context, text string, knownNames []string) Result {
	cleaned := cleanText(text)
	var res Result
	accepted := make(map[string]bool)

	for _, candidate := range extractCandidates(cleaned) {
		addr := removeKnownNames(candidate, knownNames)
		if !res.Degraded {
			stripped, err := d.removePersons(ctx, addr)
			if err != nil {
				res.Degraded = true
				res.Reason = fmt.Sprintf("entity recognizer %s failed: %v", d.recognizer.Name(), err)
			} else {
				addr = stripped
			}
		}
		if len(addr) < 5 || accepted[addr] {
			continue
		}

		conf := Confidence(addr, d.contextOf(cleaned, candidate))
		if conf < d.opts.MinConfidence {
			continue
		}
		accepted[addr] = true

		parsed := Parse(addr)
		parsed.Confidence = conf
		for _, loc := range patterns.FlexibleLiteral(addr).FindAllStringIndex(text, -1) {
			parsed.Positions = append(parsed.Positions, detector.Span{Start: loc[0], End: loc[1]})
		}
		res.Addresses = append(res.Addresses, parsed)
	}
	return res
}

// Parse splits an address into street, city, state and zip
func Parse(addr string) ParsedAddress {
	p := ParsedAddress{FullAddress: addr}

	if m := patterns.ZipCode.FindStringSubmatch(addr); m != nil {
		p.Zip = m[1]
	}
	if m := patterns.StateBeforeZip.FindStringSubmatch(addr); m != nil && usStates[m[1]] {
		p.State = m[1]
	}

	if p.State != "" {
		statePos := strings.Index(addr, p.State)
		if loc := regexp.MustCompile(`\b` + p.State + `\b`).FindStringIndex(addr); loc != nil {
			statePos = loc[0]
		}
		beforeState := strings.TrimSpace(addr[:statePos])

		// the street ends at the street type nearest the state
		if locs := streetTypeWord.FindAllStringIndex(beforeState, -1); len(locs) > 0 {
			end := locs[len(locs)-1][1]
			p.Street = strings.TrimSpace(beforeState[:end])
			p.City = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(beforeState[end:]), ", "))
		} else {
			p.City = strings.TrimSpace(strings.TrimRight(beforeState, ", "))
		}
		p.City = strings.TrimRight(p.City, ", ")
	}

	if box := patterns.POBoxCandidate.FindString(addr); box != "" {
		p.Street = box
		if strings.HasPrefix(p.City, box) {
			p.City = strings.TrimSpace(strings.TrimLeft(p.City[len(box):], ", "))
		}
	}
	if p.City == "" && p.State == "" && p.Zip == "" {
		p.Street = addr
	}
	return p
}
