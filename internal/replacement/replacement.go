// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package replacement turns a detected value into the text written in its
// place. Generic mode uses the rule template, custom mode looks up a
// per-category string and realistic mode generates a plausible fake value
// seeded by the original text.
package replacement

import (
	"hash/fnv"
	"math/rand/v2"
	"sync"

	"finredact/internal/category"
	"finredact/internal/patterns"
)

// Settings are the value pools and per-category strings used when
// resolving replacements.
type Settings struct {
	AreaCodes          []string
	FirstNames         []string
	LastNames          []string
	EmailNames         []string
	EmailDomains       []string
	Companies          []string
	Streets            []string
	CitiesStates       []string
	CustomReplacements map[category.Category]string

	// Consistent makes a repeated value get the same replacement within
	// one document.
	Consistent bool
}

// DefaultSettings returns the built-in pools
func DefaultSettings() Settings {
	return Settings{
		AreaCodes: []string{"555"},
		FirstNames: []string{
			"John", "Michael", "David", "James", "Robert", "William", "Christopher", "Matthew", "Dan", "Tom", "Sam", "Jim",
			"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara", "Susan", "Jessica", "Ann", "Sue", "Kim", "Amy",
		},
		LastNames: []string{
			"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Lee", "Wu", "Li", "Chen",
		},
		EmailNames:   []string{"john.doe", "jane.smith", "alex.jones"},
		EmailDomains: []string{"example.com", "example.org"},
		Companies:    []string{"ACME Corp", "Globex Inc", "Initech LLC"},
		Streets:      []string{"123 Main St", "456 Oak Ave", "789 Pine Rd", "321 Elm Dr", "555 Maple Way"},
		CitiesStates: []string{"Anytown, CA", "Springfield, IL", "Franklin, TX", "Madison, WI"},
		Consistent:   true,
	}
}

// withDefaults fills empty pools from DefaultSettings
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	fill := func(dst *[]string, src []string) {
		if len(*dst) == 0 {
			*dst = src
		}
	}
	fill(&s.AreaCodes, d.AreaCodes)
	fill(&s.FirstNames, d.FirstNames)
	fill(&s.LastNames, d.LastNames)
	fill(&s.EmailNames, d.EmailNames)
	fill(&s.EmailDomains, d.EmailDomains)
	fill(&s.Companies, d.Companies)
	fill(&s.Streets, d.Streets)
	fill(&s.CitiesStates, d.CitiesStates)
	return s
}

type cacheKey struct {
	category category.Category
	text     string
}

// Resolver resolves replacements for one document. It is safe for
// concurrent use by page workers.
type Resolver struct {
	mode     category.Mode
	settings Settings

	mu    sync.Mutex
	cache map[cacheKey]string
}

// NewResolver creates a resolver for mode
func NewResolver(mode category.Mode, settings Settings) *Resolver {
	return &Resolver{
		mode:     mode,
		settings: settings.withDefaults(),
		cache:    make(map[cacheKey]string),
	}
}

// Mode returns the replacement mode of the resolver
func (r *Resolver) Mode() category.Mode {
	return r.mode
}

// Resolve returns the replacement for matched text of category c. template
// is the replacement carried by the rule that matched. Custom strings
// always keep their own replacement.
func (r *Resolver) Resolve(c category.Category, matchedText, template string) string {
	if c == category.CustomStrings {
		return template
	}

	switch r.mode {
	case category.ModeRealistic:
		if _, ok := generators[c]; !ok {
			if template == patterns.RealisticMarker(c) {
				return patterns.DefaultCustomReplacement
			}
			return template
		}
		return r.realistic(c, matchedText)
	case category.ModeCustom:
		if s, ok := r.settings.CustomReplacements[c]; ok {
			return s
		}
		return template
	default:
		return template
	}
}

func (r *Resolver) realistic(c category.Category, text string) string {
	if !r.settings.Consistent {
		return generate(c, text, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), r.settings)
	}

	key := cacheKey{category: c, text: text}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.cache[key]; ok {
		return v
	}
	v := Generate(c, text, r.settings)
	r.cache[key] = v
	return v
}

// Reset forgets every cached replacement. Call it between documents.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.cache = make(map[cacheKey]string)
	r.mu.Unlock()
}

// Len returns the number of cached replacements
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// Seed derives the generator seed of a value. It depends only on the
// category and the text.
func Seed(c category.Category, text string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(c.String()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return h.Sum64()
}

// Generate returns the realistic value for text. It is a pure function of
// its arguments. Categories without a generator return the generic
// custom replacement.
func Generate(c category.Category, text string, settings Settings) string {
	seed := Seed(c, text)
	return generate(c, text, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), settings.withDefaults())
}

func generate(c category.Category, text string, rng *rand.Rand, s Settings) string {
	gen, ok := generators[c]
	if !ok {
		return patterns.DefaultCustomReplacement
	}
	return gen(rng, text, s)
}
