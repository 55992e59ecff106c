// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package doctype classifies financial documents by keyword voting
package doctype

import (
	"fmt"
	"strings"
	"sync"
)

// Type is a recognised kind of financial document
type Type string

const (
	BankStatement Type = "bank_statement"
	W2            Type = "w2"
	TaxReturn     Type = "tax_return"
	PayStub       Type = "pay_stub"
	General       Type = "general"
)

// ParseType converts a name to a Type
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case BankStatement, W2, TaxReturn, PayStub, General:
		return t, nil
	default:
		return General, fmt.Errorf("unknown document type '%s'", s)
	}
}

// Rule is the keyword list and hit threshold of one document type
type Rule struct {
	Type      Type
	Keywords  []string
	Threshold int
}

// DefaultRules returns the built-in rules in evaluation order. Order is
// significant: the first type reaching its threshold wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Type: BankStatement,
			Keywords: []string{
				"account summary", "checking account", "savings account", "statement period",
				"beginning balance", "ending balance", "deposits", "withdrawals", "bank",
			},
			Threshold: 3,
		},
		{
			Type: W2,
			Keywords: []string{
				"wage and tax statement", "employer identification number", "ein",
				"federal income tax withheld", "social security wages", "medicare wages",
			},
			Threshold: 2,
		},
		{
			Type: TaxReturn,
			Keywords: []string{
				"form 1040", "adjusted gross income", "taxable income", "tax return",
				"irs", "schedule", "itemized deductions", "standard deduction",
			},
			Threshold: 2,
		},
		{
			Type: PayStub,
			Keywords: []string{
				"pay stub", "payroll", "gross pay", "net pay", "year to date",
				"ytd", "deductions", "hours worked", "pay period",
			},
			Threshold: 2,
		},
	}
}

// Classifier selects a document type from its text
type Classifier struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewClassifier creates a classifier with the default rules
func NewClassifier() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// AddRule registers a rule. A rule for an existing type replaces it in
// place; a new type is evaluated after the existing ones.
func (c *Classifier) AddRule(t Type, keywords []string, threshold int) error {
	if t == "" || t == General {
		return fmt.Errorf("cannot add a rule for document type '%s'", t)
	}
	if len(keywords) == 0 || threshold < 1 {
		return fmt.Errorf("rule for '%s' needs keywords and a positive threshold", t)
	}

	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		lowered = append(lowered, strings.ToLower(k))
	}
	rule := Rule{Type: t, Keywords: lowered, Threshold: threshold}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.rules {
		if c.rules[i].Type == t {
			c.rules[i] = rule
			return nil
		}
	}
	c.rules = append(c.rules, rule)
	return nil
}

// Rules returns a copy of the rules in evaluation order
func (c *Classifier) Rules() []Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Rule(nil), c.rules...)
}

func hits(lower string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			n++
		}
	}
	return n
}

// Classify returns the first type whose keyword hits meet its threshold,
// or General.
func (c *Classifier) Classify(text string) Type {
	lower := strings.ToLower(text)
	for _, r := range c.Rules() {
		if hits(lower, r.Keywords) >= r.Threshold {
			return r.Type
		}
	}
	return General
}

// Confidence returns min(hits/threshold, 1) for every rule type
func (c *Classifier) Confidence(text string) map[Type]float64 {
	lower := strings.ToLower(text)
	scores := make(map[Type]float64)
	for _, r := range c.Rules() {
		scores[r.Type] = min(float64(hits(lower, r.Keywords))/float64(r.Threshold), 1.0)
	}
	return scores
}

// ConfidenceFor returns the confidence of a single type. General scores 1
// when no other type reaches its threshold.
func (c *Classifier) ConfidenceFor(text string, t Type) float64 {
	scores := c.Confidence(text)
	if t == General {
		for _, s := range scores {
			if s >= 1 {
				return 0
			}
		}
		return 1
	}
	return scores[t]
}
