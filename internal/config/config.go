// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"finredact/internal/category"
	"finredact/internal/paths"
	"finredact/internal/patterns"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Redaction levels
const (
	LevelMinimal    = "minimal"
	LevelStandard   = "standard"
	LevelAggressive = "aggressive"
)

// Config represents the application configuration
type Config struct {
	RedactionLevel    string          `yaml:"redaction_level"`
	ReplacementMode   string          `yaml:"replacement_mode"`
	EnabledCategories map[string]bool `yaml:"enabled_categories,omitempty"`

	ReplacementSettings ReplacementSettings `yaml:"replacement_settings"`

	CustomPatterns []CustomPattern `yaml:"custom_patterns"`
	CustomStrings  []CustomString  `yaml:"custom_strings"`

	Detection  Detection  `yaml:"detection"`
	Processing Processing `yaml:"processing"`
	Output     Output     `yaml:"output"`
	Logging    Logging    `yaml:"logging"`

	// Profiles for different document sets
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// ReplacementSettings holds the pools used by realistic replacements
type ReplacementSettings struct {
	UseConsistentReplacements bool              `yaml:"use_consistent_replacements"`
	RealisticNames            []string          `yaml:"realistic_names"`
	RealisticCompanies        []string          `yaml:"realistic_companies"`
	RealisticAddresses        RealisticAddress  `yaml:"realistic_addresses"`
	PhoneAreaCodes            []string          `yaml:"phone_area_codes"`
	EmailDomains              []string          `yaml:"email_domains"`
	FirstNamesMale            []string          `yaml:"realistic_first_names_male"`
	FirstNamesFemale          []string          `yaml:"realistic_first_names_female"`
	LastNames                 []string          `yaml:"realistic_last_names"`
	CustomReplacements        map[string]string `yaml:"custom_replacements,omitempty"`
}

// RealisticAddress holds address pools
type RealisticAddress struct {
	Streets      []string `yaml:"streets"`
	CitiesStates []string `yaml:"cities_states"`
}

// CustomPattern is a user regular expression
type CustomPattern struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
	Description string `yaml:"description,omitempty"`
}

// CustomString is a user literal
type CustomString struct {
	Text        string `yaml:"text"`
	Replacement string `yaml:"replacement"`
}

// Detection holds the tunable thresholds of the detectors
type Detection struct {
	BalanceWindow   int      `yaml:"balance_window"`
	BalanceKeywords []string `yaml:"balance_keywords"`

	Names struct {
		MinConfidence          float64 `yaml:"min_confidence"`
		PersonConfidence       float64 `yaml:"person_confidence"`
		TitleCaseConfidence    float64 `yaml:"title_case_confidence"`
		OrganizationConfidence float64 `yaml:"organization_confidence"`
		FallbackConfidence     float64 `yaml:"fallback_confidence"`
		ContextBoost           float64 `yaml:"context_boost"`
		MaxConfidence          float64 `yaml:"max_confidence"`
		ContextChars           int     `yaml:"context_chars"`
	} `yaml:"names"`

	Address struct {
		MinConfidence float64 `yaml:"min_confidence"`
		ContextChars  int     `yaml:"context_chars"`
	} `yaml:"address"`

	Recognizer struct {
		// Backend is none, heuristic or comprehend
		Backend   string `yaml:"backend"`
		Region    string `yaml:"region"`
		CacheSize int    `yaml:"cache_size"`
	} `yaml:"recognizer"`
}

// Processing holds concurrency limits
type Processing struct {
	PageWorkers     int `yaml:"page_workers"`
	DocumentWorkers int `yaml:"document_workers"`
	MaxPages        int `yaml:"max_pages"`
}

// Output holds where and how results are written
type Output struct {
	Dir          string `yaml:"dir"`
	Suffix       string `yaml:"suffix"`
	WriteText    bool   `yaml:"write_text"`
	ReportFormat string `yaml:"report_format"`
	ReportFile   string `yaml:"report_file"`
	MetricsFile  string `yaml:"metrics_file"`
}

// Logging holds logger settings
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Profile represents a named set of overrides
type Profile struct {
	Description       string          `yaml:"description"`
	RedactionLevel    string          `yaml:"redaction_level"`
	ReplacementMode   string          `yaml:"replacement_mode"`
	EnabledCategories map[string]bool `yaml:"enabled_categories"`
	Recognizer        string          `yaml:"recognizer"`
	ReportFormat      string          `yaml:"report_format"`
	OutputDir         string          `yaml:"output_dir"`
}

// Default returns the default configuration
func Default() *Config {
	config := &Config{
		RedactionLevel:  LevelStandard,
		ReplacementMode: category.ModeGeneric.String(),
		Profiles:        make(map[string]Profile),
	}

	config.ReplacementSettings = ReplacementSettings{
		UseConsistentReplacements: true,
		RealisticNames:            []string{"John Smith", "Jane Doe", "Michael Johnson", "Sarah Williams"},
		RealisticCompanies:        []string{"ACME Corp", "Global Industries", "Tech Solutions Inc", "Business Services LLC"},
		RealisticAddresses: RealisticAddress{
			Streets:      []string{"123 Main St", "456 Oak Ave", "789 Pine Rd", "321 Elm Dr"},
			CitiesStates: []string{"Anytown, CA", "Springfield, IL", "Franklin, TX", "Madison, WI"},
		},
		PhoneAreaCodes:   []string{"555", "444", "333"},
		EmailDomains:     []string{"example.com", "test.org", "sample.net"},
		FirstNamesMale:   []string{"John", "Michael", "David", "James", "Robert", "William", "Christopher", "Matthew", "Daniel", "Thomas"},
		FirstNamesFemale: []string{"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara", "Susan", "Jessica", "Sarah", "Karen"},
		LastNames:        []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez"},
	}

	d := &config.Detection
	d.BalanceWindow = 50
	d.Names.MinConfidence = 0.5
	d.Names.PersonConfidence = 0.9
	d.Names.TitleCaseConfidence = 0.85
	d.Names.OrganizationConfidence = 0.8
	d.Names.FallbackConfidence = 0.7
	d.Names.ContextBoost = 0.05
	d.Names.MaxConfidence = 0.98
	d.Names.ContextChars = 50
	d.Address.MinConfidence = 0.6
	d.Address.ContextChars = 100
	d.Recognizer.Backend = "heuristic"
	d.Recognizer.CacheSize = 256

	config.Processing.PageWorkers = 4
	config.Processing.DocumentWorkers = 2

	config.Output.Suffix = paths.DefaultSuffix
	config.Output.WriteText = true
	config.Output.ReportFormat = "text"

	config.Logging.Level = "info"
	config.Logging.Format = "console"

	config.Profiles["statements"] = Profile{
		Description:     "Bank statements: keep balances, hide identifiers and names",
		RedactionLevel:  LevelStandard,
		ReplacementMode: category.ModeGeneric.String(),
	}
	config.Profiles["share"] = Profile{
		Description:     "Aggressive redaction with realistic values for sharing samples",
		RedactionLevel:  LevelAggressive,
		ReplacementMode: category.ModeRealistic.String(),
	}
	return config
}

// LoadConfig loads configuration from the specified file path. Values
// missing from the file keep their defaults. An empty path returns the
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := decodeStrict(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	config.Output.Dir = paths.NormalizePath(config.Output.Dir)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// decodeStrict decodes a YAML mapping onto config, rejecting keys that
// match no field. Absent fields are left untouched and maps are merged
// into. An empty document keeps config as is.
func decodeStrict(data []byte, config *Config) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}
	if len(root.Content) == 0 {
		return nil
	}
	if doc := root.Content[0]; doc.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: configuration must be a mapping", doc.Line)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches
// standard locations when configFile is empty). If loading fails, it
// returns the defaults together with the error.
func LoadConfigOrDefault(configFile string) (*Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return Default(), err
	}
	return cfg, nil
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	for _, name := range []string{".finredact.yaml", ".finredact.yml", "finredact.yaml"} {
		if fileExists(name) {
			return name
		}
	}

	if standard := paths.ConfigFile(); fileExists(standard) {
		return standard
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, ".finredact.yaml")
		if fileExists(homeConfig) {
			return homeConfig
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// SaveConfig writes the configuration as YAML, creating parent
// directories as needed.
func SaveConfig(config *Config, configPath string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	cleanPath := filepath.Clean(configPath)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0750); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := os.WriteFile(cleanPath, data, 0600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Update loads the file at configPath (defaults when it does not exist),
// applies fn and saves the result.
func Update(configPath string, fn func(*Config) error) (*Config, error) {
	config := Default()
	if fileExists(configPath) {
		loaded, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if err := fn(config); err != nil {
		return nil, err
	}
	if err := SaveConfig(config, configPath); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate returns every problem found in the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: configuration cannot be nil", ErrInvalidConfig)
	}

	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if _, ok := levelPresets[c.RedactionLevel]; !ok {
		invalid("redaction_level %q must be one of minimal, standard, aggressive", c.RedactionLevel)
	}
	if _, err := category.ParseMode(c.ReplacementMode); err != nil {
		invalid("replacement_mode: %v", err)
	}
	for _, key := range sortedKeys(c.EnabledCategories) {
		if _, err := category.Parse(key); err != nil {
			invalid("enabled_categories.%s: unknown category", key)
		}
	}
	for _, key := range sortedKeys(c.ReplacementSettings.CustomReplacements) {
		if _, err := category.Parse(key); err != nil {
			invalid("replacement_settings.custom_replacements.%s: unknown category", key)
		}
	}
	for i, p := range c.CustomPatterns {
		if p.Pattern == "" {
			invalid("custom_patterns[%d]: pattern is required", i)
		}
	}
	for i, s := range c.CustomStrings {
		if s.Text == "" {
			invalid("custom_strings[%d]: text is required", i)
		}
	}

	d := c.Detection
	if d.BalanceWindow < 0 {
		invalid("detection.balance_window must not be negative")
	}
	for name, v := range map[string]float64{
		"detection.names.min_confidence":   d.Names.MinConfidence,
		"detection.names.max_confidence":   d.Names.MaxConfidence,
		"detection.address.min_confidence": d.Address.MinConfidence,
	} {
		if v < 0 || v > 1 {
			invalid("%s must be between 0 and 1", name)
		}
	}
	switch d.Recognizer.Backend {
	case "", "none", "heuristic", "comprehend":
	default:
		invalid("detection.recognizer.backend %q must be none, heuristic or comprehend", d.Recognizer.Backend)
	}
	if c.Processing.PageWorkers < 0 || c.Processing.DocumentWorkers < 0 {
		invalid("processing workers must not be negative")
	}
	if err := paths.ValidatePath(c.Output.Dir); err != nil {
		errs = append(errs, fmt.Errorf("%w: output.dir: %v", ErrInvalidConfig, err))
	}

	for _, name := range sortedKeys(c.Profiles) {
		p := c.Profiles[name]
		if p.RedactionLevel != "" {
			if _, ok := levelPresets[p.RedactionLevel]; !ok {
				invalid("profile %q: unknown redaction_level %q", name, p.RedactionLevel)
			}
		}
		if p.ReplacementMode != "" {
			if _, err := category.ParseMode(p.ReplacementMode); err != nil {
				invalid("profile %q: %v", name, err)
			}
		}
	}
	return errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ListProfiles returns the sorted names of available profiles
func (c *Config) ListProfiles() []string {
	return sortedKeys(c.Profiles)
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ApplyProfile overlays the non-empty fields of the named profile
func (c *Config) ApplyProfile(name string) error {
	p := c.GetProfile(name)
	if p == nil {
		return fmt.Errorf("profile %q not found", name)
	}
	if p.RedactionLevel != "" {
		c.RedactionLevel = p.RedactionLevel
	}
	if p.ReplacementMode != "" {
		c.ReplacementMode = p.ReplacementMode
	}
	if len(p.EnabledCategories) > 0 {
		if c.EnabledCategories == nil {
			c.EnabledCategories = make(map[string]bool)
		}
		for k, v := range p.EnabledCategories {
			c.EnabledCategories[k] = v
		}
	}
	if p.Recognizer != "" {
		c.Detection.Recognizer.Backend = p.Recognizer
	}
	if p.ReportFormat != "" {
		c.Output.ReportFormat = p.ReportFormat
	}
	if p.OutputDir != "" {
		c.Output.Dir = paths.NormalizePath(p.OutputDir)
	}
	return c.Validate()
}

// levelPresets list the categories each redaction level turns on
var levelPresets = map[string][]category.Category{
	LevelMinimal: {category.SSN, category.CreditCard, category.AccountNumber, category.RoutingNumber},
	LevelStandard: {
		category.SSN, category.Phone, category.AccountNumber, category.RoutingNumber, category.CreditCard,
		category.TaxID, category.Email, category.Address, category.Names,
	},
	LevelAggressive: category.Builtin(),
}

// Categories returns the enabled state of every built-in category: the
// redaction level preset overlaid with explicit enabled_categories entries.
func (c *Config) Categories() map[category.Category]bool {
	out := make(map[category.Category]bool)
	for _, cat := range category.Builtin() {
		out[cat] = false
	}
	for _, cat := range levelPresets[c.RedactionLevel] {
		out[cat] = true
	}
	for key, on := range c.EnabledCategories {
		if cat, err := category.Parse(key); err == nil {
			out[cat] = on
		}
	}
	return out
}

// Mode returns the parsed replacement mode, generic when invalid
func (c *Config) Mode() category.Mode {
	m, err := category.ParseMode(c.ReplacementMode)
	if err != nil {
		return category.ModeGeneric
	}
	return m
}

// CustomReplacements returns custom_replacements keyed by category
func (c *Config) CustomReplacements() map[category.Category]string {
	out := make(map[category.Category]string)
	for key, v := range c.ReplacementSettings.CustomReplacements {
		if cat, err := category.Parse(key); err == nil {
			out[cat] = v
		}
	}
	return out
}

// Patterns converts custom_patterns for the pattern compiler
func (c *Config) Patterns() []patterns.CustomPattern {
	out := make([]patterns.CustomPattern, 0, len(c.CustomPatterns))
	for _, p := range c.CustomPatterns {
		out = append(out, patterns.CustomPattern{Pattern: p.Pattern, Replacement: p.Replacement, Description: p.Description})
	}
	return out
}

// Strings converts custom_strings for the pattern compiler
func (c *Config) Strings() []patterns.CustomString {
	out := make([]patterns.CustomString, 0, len(c.CustomStrings))
	for _, s := range c.CustomStrings {
		out = append(out, patterns.CustomString{Text: s.Text, Replacement: s.Replacement})
	}
	return out
}

// SetStrings replaces custom_strings
func (c *Config) SetStrings(strs []patterns.CustomString) {
	c.CustomStrings = make([]CustomString, 0, len(strs))
	for _, s := range strs {
		c.CustomStrings = append(c.CustomStrings, CustomString{Text: s.Text, Replacement: s.Replacement})
	}
}
