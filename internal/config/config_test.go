// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finredact/internal/category"
	"finredact/internal/patterns"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))
	return configPath
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, LevelStandard, cfg.RedactionLevel)
	assert.Equal(t, category.ModeGeneric, cfg.Mode())
	assert.True(t, cfg.ReplacementSettings.UseConsistentReplacements)
	assert.Equal(t, 50, cfg.Detection.BalanceWindow)
	assert.True(t, cfg.Output.WriteText)
	assert.Contains(t, cfg.ListProfiles(), "statements")
}

func TestLoadConfig_MergesOntoDefaults(t *testing.T) {
	configPath := writeConfig(t, `
replacement_mode: realistic
enabled_categories:
  currency: true
replacement_settings:
  phone_area_codes: ["999"]
detection:
  balance_window: 80
`)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, category.ModeRealistic, cfg.Mode())
	assert.Equal(t, []string{"999"}, cfg.ReplacementSettings.PhoneAreaCodes)
	assert.Equal(t, 80, cfg.Detection.BalanceWindow)

	// untouched values keep their defaults
	assert.True(t, cfg.ReplacementSettings.UseConsistentReplacements)
	assert.NotEmpty(t, cfg.ReplacementSettings.LastNames)
	assert.InDelta(t, 0.6, cfg.Detection.Address.MinConfidence, 1e-9)
	assert.Contains(t, cfg.Profiles, "share")

	cats := cfg.Categories()
	assert.True(t, cats[category.Currency])
	assert.True(t, cats[category.SSN])
	assert.False(t, cats[category.Dates])
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, ":::invalid yaml:::"))
	assert.Error(t, err)
}

func TestLoadConfig_RejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{"misspelled top level key", "redaction_levl: minimal\n", "redaction_levl"},
		{"unknown nested key", "detection:\n  balance_windw: 80\n", "balance_windw"},
		{"misspelled settings key", "replacement_settings:\n  use_consistent: false\n", "use_consistent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadConfig_EmptyFileKeepsDefaults(t *testing.T) {
	for _, content := range []string{"", "# only a comment\n"} {
		cfg, err := LoadConfig(writeConfig(t, content))
		require.NoError(t, err)
		assert.Equal(t, LevelStandard, cfg.RedactionLevel)
		assert.Equal(t, 50, cfg.Detection.BalanceWindow)
	}
}

func TestLoadConfig_ValidationCollectsEveryError(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
redaction_level: extreme
replacement_mode: fancy
enabled_categories:
  passport: true
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "redaction_level")
	assert.Contains(t, err.Error(), "replacement_mode")
	assert.Contains(t, err.Error(), "passport")
}

func TestLoadConfigOrDefault_NonexistentFile(t *testing.T) {
	cfg, err := LoadConfigOrDefault("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, LevelStandard, cfg.RedactionLevel)
}

func TestCategoriesByLevel(t *testing.T) {
	tests := []struct {
		level string
		on    []category.Category
		off   []category.Category
	}{
		{LevelMinimal, []category.Category{category.SSN, category.CreditCard, category.AccountNumber, category.RoutingNumber}, []category.Category{category.Names, category.Phone}},
		{LevelStandard, []category.Category{category.Names, category.Address, category.Email}, []category.Category{category.Currency, category.Dates, category.Employer}},
		{LevelAggressive, category.Builtin(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := Default()
			cfg.RedactionLevel = tt.level
			cats := cfg.Categories()
			for _, c := range tt.on {
				assert.True(t, cats[c], c.String())
			}
			for _, c := range tt.off {
				assert.False(t, cats[c], c.String())
			}
		})
	}
}

func TestSaveAndUpdate(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Update(configPath, func(c *Config) error {
		c.SetStrings(patterns.DedupeCustomStrings(c.Strings(), []string{"Project Falcon"}, ""))
		c.CustomPatterns = append(c.CustomPatterns, CustomPattern{Pattern: `EMP-\d{6}`, Replacement: "[EMPLOYEE ID]"})
		return nil
	})
	require.NoError(t, err)
	require.Len(t, cfg.CustomStrings, 1)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, []CustomString{{Text: "Project Falcon", Replacement: patterns.DefaultCustomReplacement}}, reloaded.CustomStrings)
	require.Len(t, reloaded.Patterns(), 1)
	assert.Equal(t, "[EMPLOYEE ID]", reloaded.Patterns()[0].Replacement)
}

func TestApplyProfile(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyProfile("share"))
	assert.Equal(t, LevelAggressive, cfg.RedactionLevel)
	assert.Equal(t, category.ModeRealistic, cfg.Mode())

	assert.Error(t, cfg.ApplyProfile("missing"))
}

func TestCustomReplacements(t *testing.T) {
	cfg := Default()
	cfg.ReplacementSettings.CustomReplacements = map[string]string{"ssn": "[SSN]", "bogus": "x"}

	got := cfg.CustomReplacements()
	assert.Equal(t, map[category.Category]string{category.SSN: "[SSN]"}, got)
	assert.Error(t, cfg.Validate())
}
