// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package category defines the kinds of sensitive financial data the
// pipeline knows how to find, their overlap priority and the replacement
// modes that decide what each finding is rewritten to.
package category

import (
	"fmt"
	"strings"
)

// Category identifies a class of sensitive data
type Category int

const (
	Unknown Category = iota
	SSN
	Phone
	AccountNumber
	RoutingNumber
	CreditCard
	TaxID
	Currency
	Dates
	Email
	Address
	Employer
	Names
	CustomStrings
)

var categoryNames = map[Category]string{
	SSN:           "ssn",
	Phone:         "phone",
	AccountNumber: "account_number",
	RoutingNumber: "routing_number",
	CreditCard:    "credit_card",
	TaxID:         "tax_id",
	Currency:      "currency",
	Dates:         "dates",
	Email:         "email",
	Address:       "address",
	Employer:      "employer",
	Names:         "names",
	CustomStrings: "custom_strings",
}

// priorities holds the overlap rank of each category, lower wins.
// User supplied literals and patterns outrank every built-in category.
var priorities = map[Category]int{
	CustomStrings: 0,
	SSN:           1,
	CreditCard:    2,
	Phone:         3,
	Email:         4,
	Names:         5,
	TaxID:         6,
	RoutingNumber: 7,
	AccountNumber: 8,
	Address:       9,
	Dates:         10,
	Currency:      11,
	Employer:      12,
}

// unrankedPriority is used for categories missing from the table
const unrankedPriority = 999

// String returns the configuration key of the category
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// Priority returns the overlap rank of the category. Lower values win.
func (c Category) Priority() int {
	if p, ok := priorities[c]; ok {
		return p
	}
	return unrankedPriority
}

// MarshalText implements encoding.TextMarshaler so categories render by name
// in json and yaml reports and can be used as map keys.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse converts a configuration key to a Category. Matching ignores case
// and surrounding whitespace.
func Parse(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for c, name := range categoryNames {
		if name == key {
			return c, nil
		}
	}
	return Unknown, fmt.Errorf("unknown category '%s'", s)
}

// All returns every known category in priority order
func All() []Category {
	return []Category{
		CustomStrings, SSN, CreditCard, Phone, Email, Names, TaxID,
		RoutingNumber, AccountNumber, Address, Dates, Currency, Employer,
	}
}

// Builtin returns the categories backed by the built-in pattern library and
// structured detectors, in priority order.
func Builtin() []Category {
	return All()[1:]
}

// Mode selects how replacement text is produced
type Mode int

const (
	ModeGeneric Mode = iota
	ModeRealistic
	ModeCustom
)

// String returns the configuration key of the mode
func (m Mode) String() string {
	switch m {
	case ModeGeneric:
		return "generic"
	case ModeRealistic:
		return "realistic"
	case ModeCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseMode converts a configuration key to a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "generic":
		return ModeGeneric, nil
	case "realistic":
		return ModeRealistic, nil
	case "custom":
		return ModeCustom, nil
	default:
		return ModeGeneric, fmt.Errorf("invalid replacement mode '%s'. Valid modes: generic, realistic, custom", s)
	}
}
