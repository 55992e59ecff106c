// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package names

import (
	"regexp"
	"strings"
)

// financialTerms are words that never appear in a person name on a
// financial document.
var financialTerms = wordSet(
	"gross", "pay", "net", "wage", "salary", "income", "earnings",
	"total", "amount", "balance", "deduction", "tax", "withholding",
	"rate", "hours", "overtime", "regular", "current", "year", "date",
	"period", "check", "deposit", "withdrawal", "account", "number",
	"summary", "statement", "service", "customer", "banking", "online",
	"mobile", "direct", "street", "avenue", "road", "drive", "lane",
	"main", "bank", "corp", "company", "inc", "llc", "wells", "fargo",
)

var addressWords = wordSet("st", "street", "ave", "avenue", "rd", "road", "dr", "drive", "ca", "tx", "ny", "fl")

var businessTerms = wordSet(
	"bank", "corp", "corporation", "inc", "incorporated", "llc", "ltd",
	"company", "co", "group", "financial", "services", "credit", "union",
	"trust", "fund", "capital", "investment", "holdings", "partners",
	"associates", "solutions", "technologies", "systems", "networks",
	"insurance", "mutual", "savings", "loan", "authority", "agency",
	"deposit", "withdrawal", "transfer", "payment", "transaction",
	"overdraft", "protection", "interest", "earned", "fee", "charge",
	"balance", "available", "current", "pending", "mobile", "online",
	"direct", "automatic", "recurring", "scheduled", "wire", "ach",
)

var serviceNames = []string{
	"doordash", "dashpass", "uber", "lyft", "airbnb", "netflix", "spotify",
	"amazon", "paypal", "venmo", "zelle", "cashapp", "apple", "google",
	"microsoft", "facebook", "instagram", "twitter", "linkedin",
	"starbucks", "mcdonalds", "walmart", "target", "costco", "best buy",
	"home depot", "lowes", "whole foods", "kroger", "safeway",
}

var financialInstitutions = []string{
	"wells fargo", "bank of america", "chase", "citibank", "goldman sachs",
	"morgan stanley", "jpmorgan", "american express", "discover",
	"capital one", "ally", "schwab", "fidelity", "vanguard",
	"first national", "united", "state", "federal", "regional",
	"community", "central", "national",
}

var excludedPairs = map[[2]string]bool{
	{"account", "number"}: true, {"account", "balance"}: true, {"account", "summary"}: true,
	{"customer", "service"}: true, {"customer", "number"}: true, {"main", "street"}: true,
	{"first", "street"}: true, {"second", "avenue"}: true, {"third", "street"}: true,
	{"oak", "avenue"}: true, {"pine", "road"}: true, {"elm", "drive"}: true,
	{"current", "balance"}: true, {"available", "balance"}: true, {"total", "balance"}: true,
	{"online", "banking"}: true, {"mobile", "banking"}: true, {"direct", "deposit"}: true,
	{"wire", "transfer"}: true, {"service", "fee"}: true, {"monthly", "fee"}: true,
}

var personalTransactionMarkers = []string{
	"p2p", "peer to peer", "personal transfer", "person to person",
	"individual", "personal payment", "friend", "family",
}

var businessContexts = []string{
	"customer service", "representative", "agent", "department",
	"division", "branch", "office", "institution", "organization",
	"headquarters", "corporation", "enterprise", "firm",
}

var personNameShape = regexp.MustCompile(`^[A-Za-z\s\-'.]+$`)

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

func lowerWords(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	for i, f := range fields {
		fields[i] = strings.Trim(f, ".,")
	}
	return fields
}

// containsPhrase matches single words against whole words and multi-word
// phrases as substrings of the lowercased text.
func containsPhrase(lower string, words []string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(p, " ") {
			if strings.Contains(lower, p) {
				return true
			}
			continue
		}
		for _, w := range words {
			if w == p {
				return true
			}
		}
	}
	return false
}

// IsBusinessName reports whether name, seen in context, is an
// organization, a merchant or a financial label rather than a person.
func IsBusinessName(name, context string) bool {
	lowerName := strings.ToLower(name)
	lowerContext := strings.ToLower(context)
	words := lowerWords(name)

	for _, m := range personalTransactionMarkers {
		if strings.Contains(lowerContext, m) {
			return false
		}
	}

	for _, w := range words {
		if businessTerms[w] {
			return true
		}
	}
	if containsPhrase(lowerName, words, serviceNames) || containsPhrase(lowerName, words, financialInstitutions) {
		return true
	}
	if len(words) == 2 && excludedPairs[[2]string{words[0], words[1]}] {
		return true
	}

	for _, c := range businessContexts {
		if strings.Contains(lowerContext, c) {
			return true
		}
	}
	return false
}

// couldBePersonName reports whether an organization-labelled span has
// the shape of a person name.
func couldBePersonName(text string) bool {
	words := strings.Fields(text)
	if len(words) > 4 {
		return false
	}
	for _, w := range lowerWords(text) {
		switch w {
		case "corp", "inc", "llc", "ltd", "company", "bank", "group", "services":
			return false
		}
	}
	switch len(words) {
	case 2:
		return true
	case 3:
		return len(words[1]) <= 2
	default:
		return false
	}
}

// looksLikePersonName reports whether text is made only of name-like words
func looksLikePersonName(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) < 2 || !personNameShape.MatchString(text) {
		return false
	}
	words := lowerWords(text)
	if len(words) < 1 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		if addressWords[w] || financialTerms[w] {
			return false
		}
	}
	return true
}

// isValidCandidate filters regex candidates before recognition
func isValidCandidate(candidate string) bool {
	for _, w := range lowerWords(candidate) {
		if financialTerms[w] {
			return false
		}
	}
	if strings.ContainsAny(candidate, "0123456789") {
		return false
	}
	return len(strings.TrimSpace(candidate)) >= 3
}
