// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognizer

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"finredact/internal/patterns"
)

var titles = set("Mr", "Mrs", "Ms", "Dr", "Prof", "Rev", "Miss")

var commonFirstNames = set(
	"James", "Robert", "John", "Michael", "William", "David", "Richard", "Joseph", "Thomas", "Christopher",
	"Charles", "Daniel", "Matthew", "Anthony", "Mark", "Donald", "Steven", "Paul", "Andrew", "Joshua",
	"Kenneth", "Kevin", "Brian", "George", "Timothy", "Ronald", "Edward", "Jason", "Jeffrey", "Ryan", "Jacob",
	"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara", "Susan", "Jessica", "Sarah", "Karen",
	"Lisa", "Nancy", "Betty", "Helen", "Sandra", "Donna", "Carol", "Ruth", "Sharon", "Michelle",
	"Laura", "Kimberly", "Deborah", "Dorothy", "Alex", "Chris", "Jordan", "Taylor", "Casey", "Riley",
	"Morgan", "Jamie", "Grace", "Emma", "Olivia", "Sophia", "Isabella", "Mia", "Charlotte", "Amelia",
	"Wei", "Li", "Ming", "Xia", "Lin", "Chen", "Wang", "Zhang", "Liu", "Yang", "Qizhi", "Jian", "Lei",
	"Mei", "Jun", "Ling", "Hui", "Ping", "Qing", "Fang",
)

var commonLastNames = set(
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
	"Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson",
	"Walker", "Young", "Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
	"Green", "Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell",
	"Chen", "Wang", "Li", "Zhang", "Liu", "Yang", "Huang", "Zhao", "Wu", "Zhou", "Xu", "Sun", "Ma",
	"Zhu", "Hu", "Guo", "He", "Lin", "Gao", "Luo", "Zheng", "Liang", "Xie", "Tang", "Song", "Deng",
	"Han", "Cao", "Feng", "Peng", "Zeng",
)

var businessIndicators = set(
	"Bank", "Corp", "Corporation", "Inc", "Incorporated", "LLC", "Co", "Company",
	"Group", "Financial", "Services", "Credit", "Union", "Trust", "Fund", "Capital",
	"Investment", "Holdings", "Partners", "Associates", "Solutions", "Technologies",
	"Systems", "Networks", "Communications", "Insurance", "Wells", "Fargo", "Chase",
	"Citibank", "America", "National", "First", "United", "State", "Federal",
	"Regional", "Community", "Central", "Mutual", "Savings", "Loan",
	"Gross", "Pay", "Net", "Wage", "Salary", "Income", "Earnings", "Total",
	"Amount", "Balance", "Deduction", "Tax", "Withholding", "Rate", "Hours",
	"Overtime", "Regular", "Current", "Year", "Date", "Period", "Check",
)

var businessFirstWords = set(
	"Account", "Customer", "Service", "Banking", "Online", "Mobile", "Direct", "Total", "Current",
	"Available", "Wells", "Main", "First", "Second", "Third", "Gross", "Net", "Regular", "Overtime",
)

var businessLastWords = set(
	"Number", "Balance", "Summary", "Statement", "Service", "Banking", "Deposit", "Withdrawal", "Transfer",
	"Street", "Avenue", "Road", "Drive", "Fargo", "Pay", "Wage", "Salary", "Income", "Amount", "Tax",
	"Rate", "Hours", "Period", "Date", "Year",
)

var (
	personalIndicators = []string{
		"account holder:", "customer name:", "dear ", "signature:", "name:",
		"holder:", "client:", "mr.", "mrs.", "ms.", "dr.",
	}
	leadingIndicators = []string{
		"account holder", "customer name", "signed by", "signature", "name:", "dear",
	}
	businessContexts = []string{
		"bank", "corp", "company", "inc", "llc", "financial", "services",
		"credit union", "trust company", "customer service", "representative",
		"institution", "organization", "department",
	}
	nonNameTerms = []string{"number", "balance", "summary", "statement", "service"}
)

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Heuristic is an offline recognizer scoring name-shaped text with common
// name lists, titles and surrounding context. It labels confident
// candidates Person and candidates made of business words Organization.
type Heuristic struct {
	Threshold    float64
	ContextChars int
}

// NewHeuristic creates a heuristic recognizer with default settings
func NewHeuristic() *Heuristic {
	return &Heuristic{Threshold: 0.5, ContextChars: 50}
}

// Name returns the recognizer name
func (h *Heuristic) Name() string {
	return "heuristic"
}

// Recognize scores every name-shaped span in text
func (h *Heuristic) Recognize(ctx context.Context, text string) ([]Entity, error) {
	var persons, orgs []Entity
	for _, re := range patterns.HeuristicNameCandidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, loc := range findAllByLine(re, text) {
			raw := text[loc[0]:loc[1]]
			candidate := strings.TrimSpace(raw)
			start := loc[0] + strings.Index(raw, candidate)
			end := start + len(candidate)

			score, business := h.score(candidate, text, start, end)
			switch {
			case business:
				orgs = append(orgs, Entity{Text: candidate, Start: start, End: end, Label: Organization, Score: 0.5})
			case score > h.Threshold:
				persons = append(persons, Entity{Text: candidate, Start: start, End: end, Label: Person, Score: score})
			}
		}
	}

	out := removeOverlaps(persons)
	for _, o := range orgs {
		if !overlapsAny(o, out) {
			out = append(out, o)
		}
	}
	out = removeOverlaps(out)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

// findAllByLine returns the matches of re over the whole text and then
// the matches within single lines the first pass missed, where a match
// spanning a line break had consumed the start of a name.
func findAllByLine(re *regexp.Regexp, text string) [][]int {
	out := re.FindAllStringIndex(text, -1)
	if !strings.Contains(text, "\n") {
		return out
	}
	seen := make(map[[2]int]bool, len(out))
	for _, loc := range out {
		seen[[2]int{loc[0], loc[1]}] = true
	}

	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		for _, loc := range re.FindAllStringIndex(line, -1) {
			k := [2]int{offset + loc[0], offset + loc[1]}
			if !seen[k] {
				seen[k] = true
				out = append(out, []int{k[0], k[1]})
			}
		}
		offset += len(line)
	}
	return out
}

func titleWord(w string) string {
	w = strings.TrimRight(w, ".,")
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func properCase(w string) bool {
	if len(w) < 2 {
		return false
	}
	rest := w[1:]
	return unicode.IsUpper(rune(w[0])) && strings.ToLower(rest) == rest && strings.ToUpper(rest) != rest
}

// score returns the person confidence of candidate and whether it is made
// of business vocabulary.
func (h *Heuristic) score(candidate, text string, start, end int) (float64, bool) {
	words := strings.Fields(candidate)
	if len(words) > 4 {
		return 0, false
	}
	for _, w := range words {
		if businessIndicators[titleWord(w)] {
			return 0, true
		}
	}

	before := strings.ToLower(text[max(0, start-h.ContextChars):start])
	after := strings.ToLower(text[end:min(len(text), end+h.ContextChars)])
	personal := containsAny(before+after, personalIndicators)

	// business words on a neighbouring line, such as a bank letterhead, do
	// not describe the candidate
	lineBefore := before[strings.LastIndex(before, "\n")+1:]
	lineAfter := after
	if i := strings.Index(after, "\n"); i >= 0 {
		lineAfter = after[:i]
	}
	full := lineBefore + " " + strings.ToLower(candidate) + " " + lineAfter
	if containsAny(full, businessContexts) && !personal {
		return 0.1, false
	}

	hasTitle := false
	for _, w := range words {
		if titles[strings.TrimRight(w, ".")] {
			hasTitle = true
			break
		}
	}

	confidence := 0.0
	switch {
	case hasTitle:
		confidence = 0.95
	case containsAny(before, leadingIndicators):
		if !containsAny(strings.ToLower(candidate), nonNameTerms) {
			confidence = 0.9
		}
	case len(words) == 2:
		first, last := strings.TrimRight(words[0], ","), strings.TrimRight(words[1], ",")
		if businessFirstWords[first] || businessLastWords[last] {
			return 0, false
		}

		firstScore, lastScore := 0.0, 0.0
		if commonFirstNames[titleWord(first)] {
			firstScore = 1.0
		} else if len(first) >= 3 && hasSuffix(first, "son", "er", "ly", "an", "en") {
			firstScore = 0.3
		} else if len(first) >= 4 {
			firstScore = 0.2
		}
		if commonLastNames[titleWord(last)] {
			lastScore = 1.0
		} else if hasSuffix(last, "son", "sen", "ez", "ski", "owski") {
			lastScore = 0.4
		} else if len(last) >= 3 {
			lastScore = 0.2
		}

		confidence = (firstScore + lastScore) / 2
		if properCase(first) && properCase(last) {
			confidence += 0.1
		}
	case len(words) == 3:
		middle := words[1]
		switch {
		case len(middle) == 2 && strings.HasSuffix(middle, "."):
			confidence = 0.8
		case len(middle) == 1 && unicode.IsUpper(rune(middle[0])):
			confidence = 0.75
		}
	}

	if !personal && containsAny(lineBefore+" "+lineAfter, []string{"bank", "corp", "company", "inc"}) {
		confidence *= 0.3
	}
	return min(confidence, 1.0), false
}

func hasSuffix(w string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) {
			return true
		}
	}
	return false
}

func overlapsAny(e Entity, others []Entity) bool {
	for _, o := range others {
		if e.Start < o.End && e.End > o.Start {
			return true
		}
	}
	return false
}

// removeOverlaps keeps the highest scoring entity of each overlapping group
func removeOverlaps(entities []Entity) []Entity {
	sorted := append([]Entity(nil), entities...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Start < sorted[j].Start
	})

	var out []Entity
	for _, e := range sorted {
		if !overlapsAny(e, out) {
			out = append(out, e)
		}
	}
	return out
}
