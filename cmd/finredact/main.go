// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"finredact/internal/config"
	"finredact/internal/core"
	"finredact/internal/formatters"
	_ "finredact/internal/formatters/csv"
	_ "finredact/internal/formatters/json"
	_ "finredact/internal/formatters/text"
	_ "finredact/internal/formatters/yaml"
	"finredact/internal/help"
	"finredact/internal/logger"
	"finredact/internal/metrics"
	"finredact/internal/observability"
	"finredact/internal/version"
	"finredact/internal/watcher"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1 // a document could not be redacted
	exitUsage   = 2 // bad flags or configuration
)

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			help.NewSystem(stdout, true).ShowGeneralHelp(formatters.List())
			return exitOK
		}
		return exitUsage
	}

	// Auto-detect non-interactive environment
	if !isTerminal(stdout) || os.Getenv("CI") != "" {
		flags.noColor = true
	}
	if flags.noColor {
		color.NoColor = true
	}

	if flags.showVersion {
		fmt.Fprintln(stdout, version.Info())
		return exitOK
	}
	if flags.showHelp {
		return showHelp(stdout, flags, fs.Args())
	}

	configPath, explicit := flags.configPath()
	cfg, err := config.LoadConfigOrDefault(configPath)
	if err != nil {
		if explicit {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitUsage
		}
		fmt.Fprintf(stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintln(stderr, "Using default configuration")
	}

	if flags.listProfiles {
		listProfiles(stdout, cfg)
		return exitOK
	}

	if err := resolveConfiguration(cfg, flags); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
		Output: stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: invalid logging configuration: %v\n", err)
		return exitUsage
	}
	defer func() { _ = log.Sync() }()

	m := metrics.New()
	level := observability.ObservabilityMetrics
	if flags.debug {
		level = observability.ObservabilityDebug
	}
	observer := observability.NewStandardObserver(level, log.Logger).WithRecorder(m)

	proc, err := core.New(ctx, cfg, core.Options{
		Logger:   log.Logger,
		Observer: observer,
		Metrics:  m,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	log = log.WithRunID(proc.RunID())

	code := dispatch(ctx, proc, cfg, flags, log, stdout, stderr)

	if u := proc.Usage(); u.Requests > 0 {
		fmt.Fprintln(stderr, proc.Meter().Estimator().FormatCostSummary(u))
	}
	if cfg.Output.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			log.Error("failed to write metrics", zap.String("path", cfg.Output.MetricsFile), zap.Error(err))
		}
	}
	return code
}

// dispatch runs the selected mode
func dispatch(ctx context.Context, proc *core.Processor, cfg *config.Config, flags *cliFlags, log *logger.Logger, stdout, stderr io.Writer) int {
	options := formatters.FormatterOptions{
		ConfidenceLevel: formatters.ParseConfidenceLevels(flags.confidence),
		Verbose:         flags.verbose,
		NoColor:         flags.noColor,
		ShowOriginal:    flags.showOriginal,
	}

	if flags.watch != "" {
		return watch(ctx, proc, cfg, flags.watch, options, log, stdout)
	}

	if flags.input == "" {
		fmt.Fprintln(stderr, "Error: --input is required")
		fmt.Fprintln(stderr, "Use 'finredact --help' for usage.")
		return exitUsage
	}
	fi, err := os.Stat(flags.input)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	if fi.IsDir() && flags.output != "" {
		fmt.Fprintln(stderr, "Error: --output names a single file; use --output-dir with a folder")
		return exitUsage
	}

	var inputs []string
	if fi.IsDir() {
		if inputs, err = core.ListPDFs(flags.input, cfg.Output.Suffix); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFailure
		}
	} else {
		inputs = []string{flags.input}
	}

	switch {
	case flags.info:
		return showInfo(ctx, proc, inputs, stdout, stderr)
	case flags.estimateCost:
		usage, err := proc.EstimateUsage(ctx, inputs)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFailure
		}
		fmt.Fprintln(stdout, proc.Meter().Estimator().FormatCostSummary(usage))
		return exitOK
	}

	var batch *core.BatchResult
	if fi.IsDir() {
		batch, err = proc.RedactFolder(ctx, flags.input, cfg.Output.Dir)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFailure
		}
	} else {
		report, err := proc.RedactFile(ctx, flags.input, flags.output)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFailure
		}
		batch = &core.BatchResult{
			RunID:     proc.RunID(),
			Total:     1,
			Processed: 1,
			Reports:   []*core.Report{report},
			Duration:  report.Duration,
		}
	}

	if err := writeReport(cfg, batch, options, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	if batch.Failed > 0 {
		return exitFailure
	}
	return exitOK
}

// watch redacts every PDF that settles in dir until ctx is cancelled
func watch(ctx context.Context, proc *core.Processor, cfg *config.Config, dir string, options formatters.FormatterOptions, log *logger.Logger, stdout io.Writer) int {
	handler := func(ctx context.Context, path string) error {
		report, err := proc.RedactFile(ctx, path, "")
		if err != nil {
			return err
		}
		batch := &core.BatchResult{RunID: proc.RunID(), Total: 1, Processed: 1, Reports: []*core.Report{report}}
		return writeReport(cfg, batch, options, stdout)
	}

	w, err := watcher.New(dir, handler, watcher.Options{
		Suffix: cfg.Output.Suffix,
		Logger: log.WithComponent("watcher").Logger,
	})
	if err != nil {
		log.Error("cannot watch folder", zap.String("dir", dir), zap.Error(err))
		return exitFailure
	}
	if err := w.Run(ctx); err != nil {
		log.Error("watch stopped", zap.Error(err))
		return exitFailure
	}
	return exitOK
}

// writeReport renders batch in the configured format to the report file
// or stdout
func writeReport(cfg *config.Config, batch *core.BatchResult, options formatters.FormatterOptions, stdout io.Writer) error {
	format := cfg.Output.ReportFormat
	if format == "" {
		format = "text"
	}
	if cfg.Output.ReportFile != "" {
		options.NoColor = true
	}

	out, err := formatters.Export(format, batch, options)
	if err != nil {
		return err
	}

	if cfg.Output.ReportFile == "" {
		_, err = io.WriteString(stdout, out)
		return err
	}
	dir := filepath.Dir(cfg.Output.ReportFile)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("error creating report directory: %w", err)
	}
	if err := os.WriteFile(cfg.Output.ReportFile, []byte(out), 0600); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	return nil
}

func showInfo(ctx context.Context, proc *core.Processor, inputs []string, stdout, stderr io.Writer) int {
	code := exitOK
	for _, in := range inputs {
		info, err := proc.DocumentInfo(ctx, in)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			code = exitFailure
			continue
		}
		data, err := yaml.Marshal(info)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			code = exitFailure
			continue
		}
		fmt.Fprintf(stdout, "---\n%s", data)
	}
	return code
}

func showHelp(stdout io.Writer, flags *cliFlags, args []string) int {
	h := help.NewSystem(stdout, flags.noColor)
	switch {
	case len(args) == 0:
		h.ShowGeneralHelp(formatters.List())
	case args[0] == "categories":
		h.ShowCategoriesHelp()
	default:
		if !h.ShowCategoryHelp(args[0]) {
			return exitUsage
		}
	}
	return exitOK
}

func listProfiles(stdout io.Writer, cfg *config.Config) {
	names := cfg.ListProfiles()
	if len(names) == 0 {
		fmt.Fprintln(stdout, "No profiles defined.")
		return
	}
	fmt.Fprintln(stdout, "Available profiles:")
	for _, name := range names {
		fmt.Fprintf(stdout, "  %-12s %s\n", name, cfg.Profiles[name].Description)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
