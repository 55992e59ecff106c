// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// finredact-custom manages the custom strings and patterns stored in the
// finredact configuration file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"finredact/internal/config"
	"finredact/internal/core"
	"finredact/internal/paths"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("finredact-custom", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configFile  = fs.String("config", "", "Path to configuration file (default: project or user config)")
		action      = fs.String("action", "", "Action to perform: list, add-string, clear-strings, add-pattern")
		replacement = fs.String("replacement", "", "Replacement text (default: [REDACTED])")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *action == "" {
		fmt.Fprintln(stderr, "Error: --action is required")
		fmt.Fprintln(stderr, "Usage: finredact-custom --action <list|add-string|clear-strings|add-pattern> [options] [text...]")
		return 2
	}

	configPath := resolveConfigPath(*configFile)
	cfg, err := config.LoadConfigOrDefault(configPath)
	if err != nil && fileExists(configPath) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	// managing rules never needs the entity recognizer
	cfg.Detection.Recognizer.Backend = "none"

	proc, err := core.New(ctx, cfg, core.Options{ConfigPath: configPath})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	switch *action {
	case "list":
		listRules(stdout, proc)
	case "add-string":
		if fs.NArg() == 0 {
			fmt.Fprintln(stderr, "Error: at least one text is required for add-string")
			return 2
		}
		added, err := proc.AddCustomStrings(fs.Args(), *replacement)
		if err != nil {
			fmt.Fprintf(stderr, "Error adding custom strings: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Added %d custom strings (%d already present) to %s\n", added, fs.NArg()-added, configPath)
	case "clear-strings":
		if err := proc.ClearCustomStrings(); err != nil {
			fmt.Fprintf(stderr, "Error clearing custom strings: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Cleared custom strings in %s\n", configPath)
	case "add-pattern":
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "Error: exactly one pattern is required for add-pattern")
			return 2
		}
		if err := proc.AddCustomPattern(fs.Arg(0), *replacement); err != nil {
			fmt.Fprintf(stderr, "Error adding custom pattern: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Added custom pattern to %s\n", configPath)
	default:
		fmt.Fprintf(stderr, "Error: Unknown action '%s'\n", *action)
		fmt.Fprintln(stderr, "Valid actions: list, add-string, clear-strings, add-pattern")
		return 2
	}
	return 0
}

// resolveConfigPath uses the named file, then FINREDACT_CONFIG, then an
// existing config file, then the user config file
func resolveConfigPath(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if env := os.Getenv("FINREDACT_CONFIG"); env != "" {
		return env
	}
	if found := config.FindConfigFile(); found != "" {
		return found
	}
	return paths.ConfigFile()
}

func listRules(w io.Writer, proc *core.Processor) {
	strs := proc.CustomStrings()
	pats := proc.CustomPatterns()
	if len(strs) == 0 && len(pats) == 0 {
		fmt.Fprintln(w, "No custom strings or patterns configured.")
		return
	}

	if len(strs) > 0 {
		fmt.Fprintf(w, "Custom strings (%d):\n", len(strs))
		for _, s := range strs {
			fmt.Fprintf(w, "  %q -> %s\n", s.Text, s.Replacement)
		}
	}
	if len(pats) > 0 {
		fmt.Fprintf(w, "Custom patterns (%d):\n", len(pats))
		for _, p := range pats {
			fmt.Fprintf(w, "  %s -> %s\n", p.Pattern, p.Replacement)
		}
	}
	for _, skipped := range proc.SkippedPatterns() {
		fmt.Fprintf(w, "Warning: %v\n", skipped)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
