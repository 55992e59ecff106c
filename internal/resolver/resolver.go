// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resolver reconciles the output of every detector on a page into
// one ranked set of non-overlapping redaction spans.
package resolver

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"finredact/internal/address"
	"finredact/internal/balance"
	"finredact/internal/category"
	"finredact/internal/detector"
	"finredact/internal/doctype"
	"finredact/internal/names"
	"finredact/internal/patterns"
	"finredact/internal/replacement"
)

// Degradation records a detector that fell back to a weaker mode
type Degradation struct {
	Category category.Category `json:"category" yaml:"category"`
	Page     int               `json:"page" yaml:"page"`
	Reason   string            `json:"reason" yaml:"reason"`
}

// PageResult is the resolved outcome for one page
type PageResult struct {
	Page      int
	Matches   []detector.Match
	Preserved []detector.Match
	Degraded  []Degradation
}

// Options configures an Engine
type Options struct {
	// Library holds the enabled categories with their generic templates
	Library        *patterns.Library
	CustomPatterns []patterns.CustomPattern
	CustomStrings  []patterns.CustomString

	// Names and Address are optional; nil disables the detector
	Names   *names.Detector
	Address *address.Detector
	Balance *balance.Filter
	Logger  *zap.Logger
}

// Engine runs detection and resolution for pages. It holds no per-document
// state and is safe for concurrent use.
type Engine struct {
	library *patterns.Library
	custom  []patterns.Rule
	skipped []*patterns.PatternError
	names   *names.Detector
	address *address.Detector
	balance *balance.Filter
	logger  *zap.Logger
}

// New builds an engine. Custom patterns that fail to compile are skipped
// and reported through Skipped.
func New(opts Options) *Engine {
	e := &Engine{
		library: opts.Library,
		names:   opts.Names,
		address: opts.Address,
		balance: opts.Balance,
		logger:  opts.Logger,
	}
	if e.library == nil {
		e.library = patterns.Default()
	}
	if e.balance == nil {
		e.balance = balance.NewFilter()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}

	strs, strErrs := patterns.CompileCustomStrings(opts.CustomStrings)
	pats, patErrs := patterns.CompileCustomPatterns(opts.CustomPatterns)
	e.custom = append(strs, pats...)
	e.skipped = append(strErrs, patErrs...)
	for _, pe := range e.skipped {
		e.logger.Warn("skipping custom rule", zap.String("kind", pe.Kind), zap.Int("index", pe.Index), zap.String("pattern", pe.Pattern), zap.Error(pe.Cause))
	}
	return e
}

// Skipped returns the custom rules that could not be compiled
func (e *Engine) Skipped() []*patterns.PatternError {
	return e.skipped
}

// Library returns the enabled pattern library
func (e *Engine) Library() *patterns.Library {
	return e.library
}

// activeCategories returns the enabled categories relevant to the document type
func (e *Engine) activeCategories(t doctype.Type) map[category.Category]bool {
	active := make(map[category.Category]bool)
	for _, c := range patterns.CategoriesForDocumentType(t) {
		if e.library.Has(c) {
			active[c] = true
		}
	}
	return active
}

func (e *Engine) template(c category.Category, fallback string) string {
	if rules := e.library.Rules(c); len(rules) > 0 {
		return rules[0].Replacement
	}
	return fallback
}

// Process detects and resolves the matches of one page. repl resolves the
// final replacement of every accepted match and should be shared by all
// pages of a document.
func (e *Engine) Process(ctx context.Context, page int, text string, docType doctype.Type, repl *replacement.Resolver) PageResult {
	res := PageResult{Page: page}
	active := e.activeCategories(docType)

	structured, degraded := e.detectStructured(ctx, text, active)
	for i := range degraded {
		degraded[i].Page = page
		e.logger.Warn("detector degraded", zap.Int("page", page), zap.String("category", degraded[i].Category.String()), zap.String("reason", degraded[i].Reason))
	}
	res.Degraded = degraded

	// only spans that survive among the structured detectors are claimed;
	// a losing span stays open to the pattern library
	structured = Resolve(structured)
	masked := Mask(text, structured)

	candidates := append([]detector.Match(nil), structured...)
	for _, r := range e.library.ForDocumentType(docType) {
		if !active[r.Category] {
			continue
		}
		for _, m := range r.FindAll(masked) {
			// a match reaching into a claimed span belongs to the structured detector
			if strings.IndexByte(masked[m.Start:m.End], 0) >= 0 {
				continue
			}
			candidates = append(candidates, m)
		}
	}
	for _, r := range e.custom {
		candidates = append(candidates, r.FindAll(text)...)
	}

	accepted := Resolve(candidates)
	if active[category.Currency] {
		accepted, res.Preserved = e.balance.Apply(accepted, text)
	}

	for i := range accepted {
		m := &accepted[i]
		m.Page = page
		if repl != nil {
			m.Replacement = repl.Resolve(m.Category, m.Text, m.Replacement)
		}
	}
	for i := range res.Preserved {
		res.Preserved[i].Page = page
	}
	res.Matches = accepted
	return res
}

// detectStructured runs the name detector and then the address detector,
// which needs the names to exclude them from its candidates.
func (e *Engine) detectStructured(ctx context.Context, text string, active map[category.Category]bool) ([]detector.Match, []Degradation) {
	var out []detector.Match
	var degraded []Degradation

	var known []string
	if active[category.Names] && e.names != nil {
		res := e.names.Detect(ctx, text)
		if res.Degraded {
			degraded = append(degraded, Degradation{Category: category.Names, Reason: res.Reason})
		}
		tmpl := e.template(category.Names, "[FULL NAME]")
		for _, n := range res.Names {
			for _, s := range n.Positions {
				out = append(out, detector.Match{
					Text:        text[s.Start:s.End],
					Replacement: tmpl,
					Start:       s.Start,
					End:         s.End,
					Category:    category.Names,
					Confidence:  n.Confidence,
					Source:      detector.SourceNames,
					Rule:        "names",
					Metadata:    map[string]any{"first_name": n.FirstName, "middle_name": n.MiddleName, "last_name": n.LastName},
				})
			}
		}
		known = res.KnownNames()
	}

	if active[category.Address] && e.address != nil {
		res := e.address.Detect(ctx, text, known)
		if res.Degraded {
			degraded = append(degraded, Degradation{Category: category.Address, Reason: res.Reason})
		}
		tmpl := e.template(category.Address, "[ADDRESS]")
		for _, a := range res.Addresses {
			for _, s := range a.Positions {
				out = append(out, detector.Match{
					Text:        text[s.Start:s.End],
					Replacement: tmpl,
					Start:       s.Start,
					End:         s.End,
					Category:    category.Address,
					Confidence:  a.Confidence,
					Source:      detector.SourceAddress,
					Rule:        "address",
					Metadata:    map[string]any{"street": a.Street, "city": a.City, "state": a.State, "zipcode": a.Zip},
				})
			}
		}
	}
	return out, degraded
}

// Mask returns text with the span of every match overwritten by NUL
// bytes. Offsets in the masked text equal offsets in text.
func Mask(text string, matches []detector.Match) string {
	if len(matches) == 0 {
		return text
	}
	b := []byte(text)
	for _, m := range matches {
		if !m.Valid(len(b)) {
			continue
		}
		for i := m.Start; i < m.End; i++ {
			b[i] = 0
		}
	}
	return string(b)
}

type dedupeKey struct {
	category   category.Category
	start, end int
	text       string
}

// Dedupe drops exact duplicates, keeping the first occurrence
func Dedupe(matches []detector.Match) []detector.Match {
	seen := make(map[dedupeKey]bool, len(matches))
	out := make([]detector.Match, 0, len(matches))
	for _, m := range matches {
		k := dedupeKey{m.Category, m.Start, m.End, m.Text}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	return out
}

// Resolve returns the non-overlapping subset of matches chosen by category
// priority, ordered by start offset. Matches are taken in order of priority
// and then start offset; each is kept unless it overlaps one already kept.
func Resolve(matches []detector.Match) []detector.Match {
	candidates := Dedupe(matches)
	sort.SliceStable(candidates, func(i, j int) bool {
		pi, pj := candidates[i].Category.Priority(), candidates[j].Category.Priority()
		if pi != pj {
			return pi < pj
		}
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		return candidates[i].End > candidates[j].End
	})

	accepted := make([]detector.Match, 0, len(candidates))
	for _, m := range candidates {
		if m.Start >= m.End {
			continue
		}
		if overlapsAny(m, accepted) {
			continue
		}
		accepted = append(accepted, m)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})
	return accepted
}

func overlapsAny(m detector.Match, accepted []detector.Match) bool {
	for _, a := range accepted {
		if m.Overlaps(a) {
			return true
		}
	}
	return false
}
