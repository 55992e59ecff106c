// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"go.uber.org/zap"

	"finredact/internal/address"
	"finredact/internal/balance"
	"finredact/internal/category"
	"finredact/internal/config"
	"finredact/internal/names"
	"finredact/internal/patterns"
	"finredact/internal/recognizer"
	"finredact/internal/replacement"
	"finredact/internal/resolver"
)

// BuildLibrary returns the pattern library for cfg: templates rewritten
// for the replacement mode, disabled categories removed.
func BuildLibrary(cfg *config.Config) *patterns.Library {
	return patterns.Default().
		Resolve(cfg.Mode(), cfg.CustomReplacements()).
		Filter(cfg.Categories())
}

// NameOptions converts the names section of the detection config
func NameOptions(cfg *config.Config) names.Options {
	n := cfg.Detection.Names
	return names.Options{
		MinConfidence:          n.MinConfidence,
		PersonConfidence:       n.PersonConfidence,
		TitleCaseConfidence:    n.TitleCaseConfidence,
		OrganizationConfidence: n.OrganizationConfidence,
		FallbackConfidence:     n.FallbackConfidence,
		ContextBoost:           n.ContextBoost,
		MaxConfidence:          n.MaxConfidence,
		ContextChars:           n.ContextChars,
	}
}

// AddressOptions converts the address section of the detection config
func AddressOptions(cfg *config.Config) address.Options {
	return address.Options{
		MinConfidence: cfg.Detection.Address.MinConfidence,
		ContextChars:  cfg.Detection.Address.ContextChars,
	}
}

// ReplacementSettings converts replacement_settings. Empty pools fall back
// to the built-in ones.
func ReplacementSettings(cfg *config.Config) replacement.Settings {
	rs := cfg.ReplacementSettings
	first := append(append([]string(nil), rs.FirstNamesMale...), rs.FirstNamesFemale...)
	return replacement.Settings{
		AreaCodes:          rs.PhoneAreaCodes,
		FirstNames:         first,
		LastNames:          rs.LastNames,
		EmailNames:         rs.RealisticNames,
		EmailDomains:       rs.EmailDomains,
		Companies:          rs.RealisticCompanies,
		Streets:            rs.RealisticAddresses.Streets,
		CitiesStates:       rs.RealisticAddresses.CitiesStates,
		CustomReplacements: cfg.CustomReplacements(),
		Consistent:         rs.UseConsistentReplacements,
	}
}

// RecognizerOptions converts the recognizer section of the detection config
func RecognizerOptions(cfg *config.Config) recognizer.Options {
	r := cfg.Detection.Recognizer
	return recognizer.Options{Backend: r.Backend, Region: r.Region, CacheSize: r.CacheSize}
}

// BuildEngine wires the detectors enabled in cfg around rec. A nil rec
// makes the name detector run in its degraded regex-only mode.
func BuildEngine(cfg *config.Config, rec recognizer.Recognizer, logger *zap.Logger) *resolver.Engine {
	enabled := cfg.Categories()

	opts := resolver.Options{
		Library:        BuildLibrary(cfg),
		CustomPatterns: cfg.Patterns(),
		CustomStrings:  cfg.Strings(),
		Balance: balance.NewFilter().
			WithWindow(cfg.Detection.BalanceWindow).
			WithKeywords(cfg.Detection.BalanceKeywords),
		Logger: logger,
	}
	if enabled[category.Names] {
		opts.Names = names.NewDetector(rec, NameOptions(cfg))
	}
	if enabled[category.Address] {
		opts.Address = address.NewDetector(rec, AddressOptions(cfg))
	}
	return resolver.New(opts)
}
