// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"io"
	"os"

	"finredact/internal/config"
	"finredact/internal/paths"
)

// cliFlags holds command line flag values
type cliFlags struct {
	input      string
	output     string
	outputDir  string
	watch      string
	configFile string
	profile    string
	level      string
	mode       string
	recognizer string
	format     string
	report     string
	confidence string
	metrics    string

	listProfiles bool
	verbose      bool
	showOriginal bool
	noText       bool
	estimateCost bool
	info         bool
	debug        bool
	quiet        bool
	noColor      bool
	showHelp     bool
	showVersion  bool

	// set records the flags given explicitly on the command line
	set map[string]bool
}

// parseFlags parses args into cliFlags
func parseFlags(args []string, stderr io.Writer) (*cliFlags, *flag.FlagSet, error) {
	f := &cliFlags{set: make(map[string]bool)}
	fs := flag.NewFlagSet("finredact", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.input, "input", "", "PDF file or folder of PDFs to redact")
	fs.StringVar(&f.output, "output", "", "Redacted PDF path (single file only)")
	fs.StringVar(&f.outputDir, "output-dir", "", "Directory for redacted files (default: next to the input)")
	fs.StringVar(&f.watch, "watch", "", "Redact PDFs as they appear in this folder")
	fs.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&f.profile, "profile", "", "Profile to apply from the config file")
	fs.StringVar(&f.level, "level", "", "Redaction level: minimal, standard, aggressive")
	fs.StringVar(&f.mode, "mode", "", "Replacement mode: generic, realistic")
	fs.StringVar(&f.recognizer, "recognizer", "", "Entity recognizer: none, heuristic, comprehend")
	fs.StringVar(&f.format, "format", "", "Report format (default: text)")
	fs.StringVar(&f.report, "report", "", "Write the report to a file instead of stdout")
	fs.StringVar(&f.confidence, "confidence", "all", "Confidence levels to list: high, medium, low, or combinations like 'high,medium'")
	fs.StringVar(&f.metrics, "metrics-file", "", "Write Prometheus metrics in text format to this file")

	fs.BoolVar(&f.listProfiles, "list-profiles", false, "List available profiles")
	fs.BoolVar(&f.verbose, "verbose", false, "List every redaction")
	fs.BoolVar(&f.showOriginal, "show-original", false, "Include the original text in the report")
	fs.BoolVar(&f.noText, "no-text", false, "Do not write the redacted text sidecar")
	fs.BoolVar(&f.estimateCost, "estimate-cost", false, "Show the recognizer cost estimate and exit")
	fs.BoolVar(&f.info, "info", false, "Show document details and exit")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.quiet, "quiet", false, "Only log errors")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&f.showHelp, "help", false, "Show help information")
	fs.BoolVar(&f.showVersion, "version", false, "Show version information")
	// the help system replaces the flag package usage text
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, fs, nil
}

// isFlagSet checks if a flag was explicitly set on the command line
func (f *cliFlags) isFlagSet(name string) bool {
	return f.set[name]
}

// configPath picks the configuration file: --config, then
// FINREDACT_CONFIG, then the standard locations. explicit reports whether
// the user named the file.
func (f *cliFlags) configPath() (path string, explicit bool) {
	if f.configFile != "" {
		return f.configFile, true
	}
	if env := os.Getenv("FINREDACT_CONFIG"); env != "" {
		return env, true
	}
	return config.FindConfigFile(), false
}

// resolveConfiguration overlays the profile, environment and command line
// onto cfg, in that order of precedence
func resolveConfiguration(cfg *config.Config, f *cliFlags) error {
	if f.profile != "" {
		if err := cfg.ApplyProfile(f.profile); err != nil {
			return err
		}
	}

	if level := os.Getenv("FINREDACT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if region := os.Getenv("AWS_REGION"); region != "" && cfg.Detection.Recognizer.Region == "" {
		cfg.Detection.Recognizer.Region = region
	}

	if f.isFlagSet("level") {
		cfg.RedactionLevel = f.level
	}
	if f.isFlagSet("mode") {
		cfg.ReplacementMode = f.mode
	}
	if f.isFlagSet("recognizer") {
		cfg.Detection.Recognizer.Backend = f.recognizer
	}
	if f.isFlagSet("output-dir") {
		cfg.Output.Dir = paths.NormalizePath(f.outputDir)
	}
	if f.isFlagSet("format") {
		cfg.Output.ReportFormat = f.format
	}
	if f.isFlagSet("report") {
		cfg.Output.ReportFile = f.report
	}
	if f.isFlagSet("metrics-file") {
		cfg.Output.MetricsFile = f.metrics
	}
	if f.noText {
		cfg.Output.WriteText = false
	}

	switch {
	case f.debug:
		cfg.Logging.Level = "debug"
	case f.quiet:
		cfg.Logging.Level = "error"
	}

	return cfg.Validate()
}
