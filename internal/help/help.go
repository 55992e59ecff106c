// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"finredact/internal/category"
	"finredact/internal/config"
	"finredact/internal/patterns"
)

// CategoryInfo contains standardized information about a redaction category
type CategoryInfo struct {
	Name        string     // configuration key, e.g. "ssn"
	Summary     string     // short description for the category list
	Description string     // what the category covers
	Priority    int        // overlap rank, lower wins
	Levels      []string   // redaction levels that enable the category
	Rules       []RuleInfo // built-in patterns
	Notes       string
}

// RuleInfo describes one built-in pattern
type RuleInfo struct {
	Description string
	Replacement string
}

var descriptions = map[category.Category]struct{ summary, detail, notes string }{
	category.SSN: {
		"Social Security numbers",
		"Nine digit Social Security numbers written with or without dashes.",
		"",
	},
	category.Phone: {
		"Telephone numbers",
		"US telephone numbers in parenthesized, dashed, dotted and 1- prefixed forms.",
		"",
	},
	category.AccountNumber: {
		"Bank account numbers",
		"Labelled account numbers, spaced twelve digit accounts and long digit runs.",
		"Bare ten or eleven digit numbers only count when balance or statement wording follows on the same line.",
	},
	category.RoutingNumber: {
		"ABA routing numbers",
		"Nine digit numbers followed by the word routing on the same line.",
		"",
	},
	category.CreditCard: {
		"Payment card numbers",
		"Fifteen and sixteen digit card numbers with optional dash or space grouping.",
		"",
	},
	category.TaxID: {
		"Employer identification numbers",
		"Tax identifiers in the NN-NNNNNNN form.",
		"",
	},
	category.Currency: {
		"Dollar amounts",
		"Dollar amounts with a leading $ or a trailing USD/dollars.",
		"Amounts labelled as balances (beginning, ending, available, ...) are kept in place.",
	},
	category.Dates: {
		"Calendar dates",
		"Numeric and month-name dates.",
		"",
	},
	category.Email: {
		"Email addresses",
		"Email addresses of the form user@domain.tld.",
		"",
	},
	category.Address: {
		"Postal addresses",
		"Street lines, city/state/ZIP lines and P.O. boxes. The address detector adds street and unit lines found near address wording.",
		"",
	},
	category.Employer: {
		"Employer and company names",
		"The value following an Employer: or Company: label.",
		"",
	},
	category.Names: {
		"Personal names",
		"Titled names, labelled account holders and signatures, plus people found by the entity recognizer.",
		"Without an entity recognizer only the labelled forms and capitalized candidates near name wording are found.",
	},
}

// Categories returns help for every built-in category in priority order
func Categories() []CategoryInfo {
	lib := patterns.Default()
	levels := []string{config.LevelMinimal, config.LevelStandard, config.LevelAggressive}
	enabled := make(map[string]map[category.Category]bool, len(levels))
	for _, level := range levels {
		cfg := config.Default()
		cfg.RedactionLevel = level
		enabled[level] = cfg.Categories()
	}

	var out []CategoryInfo
	for _, c := range category.Builtin() {
		d := descriptions[c]
		info := CategoryInfo{
			Name:        c.String(),
			Summary:     d.summary,
			Description: d.detail,
			Priority:    c.Priority(),
			Notes:       d.notes,
		}
		for _, level := range levels {
			if enabled[level][c] {
				info.Levels = append(info.Levels, level)
			}
		}
		for _, r := range lib.Rules(c) {
			info.Rules = append(info.Rules, RuleInfo{Description: r.Description, Replacement: r.Replacement})
		}
		out = append(out, info)
	}
	return out
}

// System renders help text
type System struct {
	out    io.Writer
	colors map[string]*color.Color
}

// NewSystem creates a help system writing to out
func NewSystem(out io.Writer, noColor bool) *System {
	h := &System{
		out: out,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"negative": color.New(color.FgRed),
			"warning":  color.New(color.FgYellow),
			"example":  color.New(color.FgMagenta),
		},
	}
	if noColor {
		for _, c := range h.colors {
			c.DisableColor()
		}
	}
	return h
}

// ShowGeneralHelp displays usage, options and examples. formats lists the
// available report formats.
func (h *System) ShowGeneralHelp(formats []string) {
	h.colors["title"].Fprintln(h.out, "finredact - PII redaction for financial PDFs")
	fmt.Fprintln(h.out, "============================================")
	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "USAGE:")
	fmt.Fprintln(h.out, "  finredact --input <file.pdf|dir> [options]")
	fmt.Fprintln(h.out, "  finredact --watch <dir> --output-dir <dir> [options]")
	fmt.Fprintln(h.out)

	h.colors["header"].Fprintln(h.out, "OPTIONS:")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  --input\t<path>\tPDF file or folder of PDFs to redact")
	fmt.Fprintln(w, "  --output\t<path>\tRedacted PDF path (single file only)")
	fmt.Fprintln(w, "  --output-dir\t<path>\tDirectory for redacted files (default: next to the input)")
	fmt.Fprintln(w, "  --watch\t<dir>\tRedact PDFs as they appear in a folder")
	fmt.Fprintln(w, "  --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  --profile\t<name>\tProfile to apply from the config file")
	fmt.Fprintln(w, "  --list-profiles\t\tList available profiles")
	fmt.Fprintln(w, "  --level\t<level>\tRedaction level: minimal, standard, aggressive")
	fmt.Fprintln(w, "  --mode\t<mode>\tReplacement mode: generic, realistic")
	fmt.Fprintln(w, "  --recognizer\t<name>\tEntity recognizer: none, heuristic, comprehend")
	fmt.Fprintf(w, "  --format\t<format>\tReport format: %s (default: text)\n", strings.Join(formats, ", "))
	fmt.Fprintln(w, "  --report\t<path>\tWrite the report to a file instead of stdout")
	fmt.Fprintln(w, "  --confidence\t<levels>\tConfidence levels to list: high,medium,low,all (default: all)")
	fmt.Fprintln(w, "  --verbose\t\tList every redaction")
	fmt.Fprintln(w, "  --show-original\t\tInclude the original text in the report")
	fmt.Fprintln(w, "  --no-text\t\tDo not write the redacted text sidecar")
	fmt.Fprintln(w, "  --estimate-cost\t\tShow the recognizer cost estimate and exit")
	fmt.Fprintln(w, "  --info\t\tShow document details and exit")
	fmt.Fprintln(w, "  --metrics-file\t<path>\tWrite Prometheus metrics in text format")
	fmt.Fprintln(w, "  --debug\t\tEnable debug logging")
	fmt.Fprintln(w, "  --quiet\t\tOnly log errors")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	fmt.Fprintln(w, "  --help\t\tShow this help message")
	fmt.Fprintln(w, "  --help categories\t\tList redaction categories")
	fmt.Fprintln(w, "  --help <category>\t\tShow details for one category")
	w.Flush()

	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "EXAMPLES:")
	h.colors["example"].Fprintln(h.out, "  finredact --input statement.pdf")
	h.colors["example"].Fprintln(h.out, "  finredact --input ./statements --output-dir ./redacted --format json --report report.json")
	h.colors["example"].Fprintln(h.out, "  finredact --input w2.pdf --profile share --verbose")
	h.colors["example"].Fprintln(h.out, "  finredact --input ./statements --recognizer comprehend --estimate-cost")
	h.colors["example"].Fprintln(h.out, "  finredact-custom add-string \"Acme Holdings\" --replacement \"[CLIENT]\"")

	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "CONFIGURATION:")
	fmt.Fprintln(h.out, "  Project config: .finredact.yaml or finredact.yaml (in current directory)")
	fmt.Fprintln(h.out, "  User config: ~/.config/finredact/config.yaml (FINREDACT_CONFIG_DIR overrides the directory)")
	fmt.Fprintln(h.out, "  Environment: FINREDACT_CONFIG, FINREDACT_CONFIG_DIR, FINREDACT_LOG_LEVEL, AWS_REGION")
	fmt.Fprintln(h.out, "  A .env file in the current directory is loaded when present.")
}

// ShowCategoriesHelp lists every category
func (h *System) ShowCategoriesHelp() {
	h.colors["title"].Fprintln(h.out, "Redaction Categories")
	fmt.Fprintln(h.out, "====================")
	fmt.Fprintln(h.out)

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(w, "  CATEGORY\tPRIORITY\tLEVELS\tDESCRIPTION")
	h.colors["header"].Fprintln(w, "  --------\t--------\t------\t-----------")
	for _, info := range Categories() {
		fmt.Fprint(w, "  ")
		h.colors["emphasis"].Fprint(w, info.Name)
		fmt.Fprintf(w, "\t%d\t%s\t%s\n", info.Priority, strings.Join(info.Levels, ","), info.Summary)
	}
	w.Flush()

	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "Custom strings and custom patterns always win overlaps (priority 0).")
	fmt.Fprintln(h.out, "For details on one category, use:")
	h.colors["example"].Fprintln(h.out, "  finredact --help ssn")
}

// ShowCategoryHelp displays detailed help for one category. It returns
// false when the category does not exist.
func (h *System) ShowCategoryHelp(name string) bool {
	c, err := category.Parse(name)
	if err != nil || c == category.CustomStrings {
		h.colors["negative"].Fprintf(h.out, "Error: Category '%s' not found.\n", name)
		fmt.Fprintln(h.out, "Use 'finredact --help categories' to see the available categories.")
		return false
	}

	var info CategoryInfo
	for _, ci := range Categories() {
		if ci.Name == c.String() {
			info = ci
		}
	}

	h.colors["title"].Fprintf(h.out, "%s\n", info.Name)
	fmt.Fprintln(h.out, strings.Repeat("=", len(info.Name)))
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, info.Description)
	fmt.Fprintln(h.out)

	fmt.Fprintf(h.out, "Priority: %d\n", info.Priority)
	levels := "none (enable it with enabled_categories)"
	if len(info.Levels) > 0 {
		levels = strings.Join(info.Levels, ", ")
	}
	fmt.Fprintf(h.out, "Enabled by levels: %s\n", levels)
	fmt.Fprintln(h.out)

	if len(info.Rules) > 0 {
		h.colors["header"].Fprintln(h.out, "PATTERNS:")
		w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
		for _, r := range info.Rules {
			desc := r.Description
			if desc == "" {
				desc = "-"
			}
			fmt.Fprintf(w, "  - %s\t=> %s\n", desc, r.Replacement)
		}
		w.Flush()
		fmt.Fprintln(h.out)
	}

	if info.Notes != "" {
		h.colors["warning"].Fprintln(h.out, "NOTE:")
		fmt.Fprintf(h.out, "  %s\n", info.Notes)
	}
	return true
}
