// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package replacement

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"finredact/internal/category"
)

type generatorFunc func(rng *rand.Rand, original string, s Settings) string

var generators = map[category.Category]generatorFunc{
	category.SSN:           ssn,
	category.Phone:         phone,
	category.AccountNumber: accountNumber,
	category.RoutingNumber: routingNumber,
	category.CreditCard:    creditCard,
	category.TaxID:         taxID,
	category.Currency:      currency,
	category.Dates:         date,
	category.Email:         email,
	category.Address:       address,
	category.Employer:      employer,
	category.Names:         personName,
}

// HasGenerator reports whether realistic values exist for c
func HasGenerator(c category.Category) bool {
	_, ok := generators[c]
	return ok
}

func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.IntN(len(values))]
}

func digits(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rng.IntN(10))
	}
	return string(b)
}

// ssn uses area numbers 900-999, which are never issued
func ssn(rng *rand.Rand, _ string, _ Settings) string {
	return fmt.Sprintf("%d-%d-%d", between(rng, 900, 999), between(rng, 10, 99), between(rng, 1000, 9999))
}

func phone(rng *rand.Rand, _ string, s Settings) string {
	return fmt.Sprintf("(%s) %d-%d", pick(rng, s.AreaCodes), between(rng, 100, 999), between(rng, 1000, 9999))
}

func accountNumber(rng *rand.Rand, _ string, _ Settings) string {
	return digits(rng, between(rng, 10, 12))
}

var routingPrefixes = []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}

func routingNumber(rng *rand.Rand, _ string, _ Settings) string {
	return pick(rng, routingPrefixes) + digits(rng, 7)
}

// test card prefixes only
var cardPrefixes = []string{"4000", "4111", "4222", "5555"}

func creditCard(rng *rand.Rand, _ string, _ Settings) string {
	rest := digits(rng, 12)
	return pick(rng, cardPrefixes) + "-" + rest[:4] + "-" + rest[4:8] + "-" + rest[8:]
}

func taxID(rng *rand.Rand, _ string, _ Settings) string {
	return fmt.Sprintf("%d-%d", between(rng, 10, 99), between(rng, 1000000, 9999999))
}

func currency(rng *rand.Rand, _ string, _ Settings) string {
	cents := between(rng, 1000, 1000000)
	return "$" + groupThousands(cents/100) + fmt.Sprintf(".%02d", cents%100)
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

var monthAbbrev = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// date keeps the separator style of the original
func date(rng *rand.Rand, original string, _ Settings) string {
	month, day, year := between(rng, 1, 12), between(rng, 1, 28), between(rng, 2020, 2024)
	switch {
	case strings.Contains(original, "/"):
		return fmt.Sprintf("%02d/%02d/%d", month, day, year)
	case strings.Contains(original, "-"):
		return fmt.Sprintf("%02d-%02d-%d", month, day, year)
	default:
		return fmt.Sprintf("%s %d, %d", monthAbbrev[month-1], day, year)
	}
}

func email(rng *rand.Rand, _ string, s Settings) string {
	user := strings.ReplaceAll(strings.ToLower(pick(rng, s.EmailNames)), " ", ".")
	return user + "@" + pick(rng, s.EmailDomains)
}

var (
	streetShape    = regexp.MustCompile(`(?i)\b(?:street|st|avenue|ave|road|rd|drive|dr|lane|ln|boulevard|blvd|way|court|ct|place|pl)\b`)
	cityStateShape = regexp.MustCompile(`,\s*[A-Z]{2}\s+\d{5}`)
	poBoxShape     = regexp.MustCompile(`(?i)\bP\.?\s*O\.?\s*Box\b`)
	streetNames    = []string{"MAIN", "OAK", "PINE", "ELM", "MAPLE", "CEDAR", "PARK", "FIRST", "SECOND", "THIRD"}
	streetTypes    = []string{"ST", "AVE", "RD", "DR", "WAY", "LN", "BLVD", "CT", "PL"}
)

// address mirrors the shape of the original: a PO box, a street line or a
// city, state and zip line.
func address(rng *rand.Rand, original string, s Settings) string {
	switch {
	case poBoxShape.MatchString(original):
		return fmt.Sprintf("PO Box %d", between(rng, 100, 9999))
	case !streetShape.MatchString(original) && cityStateShape.MatchString(original):
		zip := strconv.Itoa(between(rng, 10000, 99999))
		if strings.Contains(original, "-") {
			zip += "-" + strconv.Itoa(between(rng, 1000, 9999))
		}
		return pick(rng, s.CitiesStates) + " " + zip
	default:
		return fmt.Sprintf("%d %s %s", between(rng, 100, 9999), pick(rng, streetNames), pick(rng, streetTypes))
	}
}

func employer(rng *rand.Rand, _ string, s Settings) string {
	return pick(rng, s.Companies)
}

var (
	titles      = []string{"Mr.", "Ms.", "Mrs.", "Dr."}
	titleMarker = regexp.MustCompile(`(?i)\b(?:mr|ms|mrs|dr|prof)\.`)
	initials    = "ABCDEFGHJKLM"
)

// personName picks a name close to the original length, keeping a title
// when the original has one.
func personName(rng *rand.Rand, original string, s Settings) string {
	original = strings.TrimSpace(original)
	if original == "" {
		return pick(rng, s.FirstNames) + " " + pick(rng, s.LastNames)
	}

	target := len(original)
	prefix := ""
	if titleMarker.MatchString(original) {
		prefix = pick(rng, titles) + " "
		target -= len(prefix)
	}
	withMiddle := len(strings.Fields(original)) >= 3

	best, bestDiff := "", -1
	for range 50 {
		candidate := pick(rng, s.FirstNames) + " " + pick(rng, s.LastNames)
		if withMiddle {
			first, last, _ := strings.Cut(candidate, " ")
			candidate = first + " " + string(initials[rng.IntN(len(initials))]) + ". " + last
		}
		diff := abs(len(candidate) - target)
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = candidate, diff
		}
		if diff == 0 {
			break
		}
	}

	if bestDiff > 3 {
		switch {
		case target <= 8:
			firsts, lasts := filterLen(s.FirstNames, 0, 4), filterLen(s.LastNames, 0, 5)
			if len(firsts) > 0 && len(lasts) > 0 {
				best = pick(rng, firsts) + " " + pick(rng, lasts)
			}
		case target >= 20:
			firsts, lasts := filterLen(s.FirstNames, 7, 1<<10), filterLen(s.LastNames, 7, 1<<10)
			if len(firsts) > 0 && len(lasts) > 0 {
				best = pick(rng, firsts) + " " + string(initials[rng.IntN(len(initials))]) + ". " + pick(rng, lasts)
			}
		}
	}
	return prefix + best
}

func filterLen(values []string, lo, hi int) []string {
	var out []string
	for _, v := range values {
		if len(v) >= lo && len(v) <= hi {
			out = append(out, v)
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
