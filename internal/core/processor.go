// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package core runs documents through extraction, detection, resolution
// and output, and manages the user's custom strings and patterns.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finredact/internal/category"
	"finredact/internal/config"
	"finredact/internal/cost"
	"finredact/internal/doctype"
	"finredact/internal/metrics"
	"finredact/internal/observability"
	"finredact/internal/parallel"
	"finredact/internal/paths"
	"finredact/internal/patterns"
	"finredact/internal/pdf"
	"finredact/internal/recognizer"
	"finredact/internal/replacement"
	"finredact/internal/resolver"
)

// withheldPage replaces the text of a page that could not be redacted
const withheldPage = "[PAGE WITHHELD: could not be redacted]"

// Options holds the collaborators of a Processor. Every field is optional.
type Options struct {
	Logger   *zap.Logger
	Observer *observability.StandardObserver
	Metrics  *metrics.Metrics
	Meter    *cost.Meter

	// Recognizer replaces the backend named in the configuration
	Recognizer recognizer.Recognizer

	// ConfigPath is where custom strings and patterns are persisted.
	// Empty keeps changes in memory.
	ConfigPath string
}

// Processor redacts documents according to one configuration. It is safe
// for concurrent use.
type Processor struct {
	runID      string
	logger     *zap.Logger
	observer   *observability.StandardObserver
	metrics    *metrics.Metrics
	meter      *cost.Meter
	recognizer recognizer.Recognizer
	classifier *doctype.Classifier
	extractor  *pdf.Extractor
	writer     *pdf.Writer
	configPath string

	mu     sync.RWMutex
	cfg    *config.Config
	engine *resolver.Engine
}

// New validates cfg and builds a processor. A recognizer backend that
// cannot be built is logged and name detection runs regex-only.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Processor{
		runID:      uuid.NewString(),
		logger:     opts.Logger,
		observer:   opts.Observer,
		metrics:    opts.Metrics,
		meter:      opts.Meter,
		recognizer: opts.Recognizer,
		classifier: doctype.NewClassifier(),
		writer:     pdf.NewWriter(),
		configPath: opts.ConfigPath,
		cfg:        cfg,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.observer == nil {
		p.observer = observability.NewStandardObserver(observability.ObservabilityOff, p.logger)
	}
	if p.meter == nil {
		p.meter = cost.NewMeter(cost.NewEstimator())
	}
	p.logger = p.logger.With(zap.String("run_id", p.runID))
	p.extractor = pdf.NewExtractor(cfg.Processing.MaxPages, p.observer)

	if p.recognizer == nil {
		ropts := RecognizerOptions(cfg)
		ropts.Logger = p.logger
		ropts.Meter = p.meter
		rec, err := recognizer.New(ctx, ropts)
		if err != nil {
			p.logger.Warn("entity recognizer unavailable, names fall back to regex detection",
				zap.Error(newError(KindRecognizer, "", 0, ropts.Backend, err)))
		}
		p.recognizer = rec
	}

	p.rebuild()
	return p, nil
}

// RunID identifies the reports produced by this processor
func (p *Processor) RunID() string {
	return p.runID
}

// Usage returns the recognizer requests metered so far
func (p *Processor) Usage() cost.Usage {
	return p.meter.Usage()
}

// Meter returns the request meter shared with the recognizer
func (p *Processor) Meter() *cost.Meter {
	return p.meter
}

// rebuild recompiles the engine from the current configuration. Callers
// hold mu or own p exclusively.
func (p *Processor) rebuild() {
	p.engine = BuildEngine(p.cfg, p.recognizer, p.logger)
	if skipped := p.engine.Skipped(); len(skipped) > 0 {
		p.metrics.RecordSkippedPatterns(len(skipped))
	}
}

func (p *Processor) snapshot() (*resolver.Engine, *config.Config) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.engine, p.cfg
}

// RedactFile redacts one PDF. An empty out writes next to the input, or
// into the configured output directory, with the configured suffix.
func (p *Processor) RedactFile(ctx context.Context, in, out string) (report *Report, err error) {
	started := time.Now()
	finish := p.observer.StartTiming("core", "redact_file", in)
	defer func() {
		total := 0
		if report != nil {
			total = report.TotalRedactions
		}
		finish(err == nil, map[string]any{"redactions": total})
		p.metrics.RecordDocument(err == nil)
	}()

	engine, cfg := p.snapshot()

	pdfPath, textPath := outputPaths(in, out, cfg)
	if samePath(in, pdfPath) {
		return nil, newError(KindOutput, in, 0, "core", errors.New("refusing to overwrite the input document"))
	}

	doc, err := p.extractor.Extract(ctx, in)
	if err != nil {
		return nil, newError(KindExtraction, in, 0, "pdf", err)
	}

	report = newReport(p.runID, in)
	report.Pages = doc.PageCount

	full := documentText(doc)
	docType := p.classifier.Classify(full)
	report.DocumentType = docType
	report.TypeConfidence = p.classifier.ConfidenceFor(full, docType)
	for _, pe := range engine.Skipped() {
		report.SkippedPatterns = append(report.SkippedPatterns, pe.Error())
	}

	failed := make(map[int]bool, len(doc.FailedPages))
	for _, n := range doc.FailedPages {
		failed[n] = true
		report.PageErrors = append(report.PageErrors, PageError{Page: n, Error: "page text could not be extracted"})
		p.logger.Warn("page text could not be extracted", zap.String("path", in), zap.Int("page", n))
	}

	jobs := append([]pdf.Page(nil), doc.Pages...)
	if len(doc.FormFields) > 0 {
		jobs = append(jobs, pdf.Page{Number: 0, Text: doc.FormText()})
	}

	// one resolver per document keeps repeated values consistent across pages
	repl := replacement.NewResolver(cfg.Mode(), ReplacementSettings(cfg))
	results := parallel.Map[pdf.Page, resolver.PageResult](ctx, "pages", cfg.Processing.PageWorkers, jobs,
		func(ctx context.Context, page pdf.Page) (resolver.PageResult, error) {
			if failed[page.Number] {
				return resolver.PageResult{Page: page.Number}, nil
			}
			return engine.Process(ctx, page.Number, page.Text, docType, repl), nil
		}, p.observer, nil)
	if err := ctx.Err(); err != nil {
		return nil, newError(KindPage, in, 0, "core", err)
	}

	counts := make(map[category.Category]int)
	redacted := make([]pdf.Page, 0, len(results))
	for _, r := range results {
		page := r.Job
		if r.Error != nil {
			report.PageErrors = append(report.PageErrors, PageError{Page: page.Number, Error: r.Error.Error()})
			p.logger.Warn("page could not be redacted", zap.Error(newError(KindPage, in, page.Number, "resolver", r.Error)))
			redacted = append(redacted, pdf.Page{Number: page.Number, Text: withheldPage})
			continue
		}

		report.add(r.Value)
		p.metrics.RecordPage()
		for _, m := range r.Value.Matches {
			counts[m.Category]++
		}
		for _, d := range r.Value.Degraded {
			p.metrics.RecordDegraded(d.Category)
		}
		redacted = append(redacted, pdf.Page{Number: page.Number, Text: pdf.Apply(page.Text, replacements(r.Value))})
	}
	for c, n := range counts {
		p.metrics.RecordRedactions(c, n)
	}

	if err := p.writer.WritePDF(pdfPath, redacted); err != nil {
		return report, newError(KindOutput, pdfPath, 0, "pdf", err)
	}
	report.Output = pdfPath
	if cfg.Output.WriteText {
		if err := p.writer.WriteText(textPath, redacted); err != nil {
			return report, newError(KindOutput, textPath, 0, "pdf", err)
		}
		report.TextOutput = textPath
	}

	report.finish(started)
	p.logger.Info("redacted document",
		zap.String("path", in),
		zap.String("output", pdfPath),
		zap.String("document_type", string(docType)),
		zap.Int("redactions", report.TotalRedactions),
		zap.Int("page_errors", len(report.PageErrors)),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// RedactFolder redacts every PDF directly inside inDir. A document that
// fails is counted and reported; the others still run. An empty outDir
// follows RedactFile.
func (p *Processor) RedactFolder(ctx context.Context, inDir, outDir string) (*BatchResult, error) {
	started := time.Now()
	inputs, err := ListPDFs(inDir, p.suffix())
	if err != nil {
		return nil, err
	}

	_, cfg := p.snapshot()
	batch := &BatchResult{RunID: p.runID, Total: len(inputs)}
	results := parallel.Map[string, *Report](ctx, "documents", cfg.Processing.DocumentWorkers, inputs,
		func(ctx context.Context, in string) (*Report, error) {
			out := ""
			if outDir != "" {
				out, _ = paths.OutputPaths(in, outDir, cfg.Output.Suffix)
			}
			return p.RedactFile(ctx, in, out)
		}, p.observer, func(completed, total int) {
			p.logger.Debug("batch progress", zap.Int("completed", completed), zap.Int("total", total))
		})

	for _, r := range results {
		if r.Error != nil {
			batch.Failed++
			batch.Errors = append(batch.Errors, r.Error.Error())
			p.logger.Error("failed to redact document", zap.String("path", r.Job), zap.Error(r.Error))
			continue
		}
		batch.Processed++
		batch.Reports = append(batch.Reports, r.Value)
	}
	batch.Duration = time.Since(started)

	p.logger.Info("batch finished",
		zap.Int("total", batch.Total),
		zap.Int("processed", batch.Processed),
		zap.Int("failed", batch.Failed))
	return batch, nil
}

// ListPDFs returns the PDFs directly inside dir, sorted, skipping earlier
// outputs that end in suffix and hidden files
func ListPDFs(dir, suffix string) ([]string, error) {
	if suffix == "" {
		suffix = paths.DefaultSuffix
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, newError(KindExtraction, dir, 0, "core", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if e.IsDir() || !paths.IsPDF(name) || strings.HasPrefix(name, ".") || strings.HasSuffix(stem, suffix) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

// DocumentInfo describes a PDF and how it would be classified
type DocumentInfo struct {
	pdf.Info       `yaml:",inline"`
	DocumentType   doctype.Type `json:"document_type" yaml:"document_type"`
	TypeConfidence float64      `json:"type_confidence" yaml:"type_confidence"`
	FormFields     int          `json:"form_fields" yaml:"form_fields"`
}

// DocumentInfo returns page count, size and detected type of path
func (p *Processor) DocumentInfo(ctx context.Context, path string) (*DocumentInfo, error) {
	info, err := p.writer.ReadInfo(path)
	if err != nil {
		return nil, newError(KindExtraction, path, 0, "pdf", err)
	}
	doc, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return nil, newError(KindExtraction, path, 0, "pdf", err)
	}
	full := documentText(doc)
	t := p.classifier.Classify(full)
	return &DocumentInfo{
		Info:           *info,
		DocumentType:   t,
		TypeConfidence: p.classifier.ConfidenceFor(full, t),
		FormFields:     len(doc.FormFields),
	}, nil
}

// EstimateUsage extracts inputs and returns the recognizer usage a run
// over them would be billed for, without calling the recognizer
func (p *Processor) EstimateUsage(ctx context.Context, inputs []string) (cost.Usage, error) {
	var texts []string
	for _, in := range inputs {
		doc, err := p.extractor.Extract(ctx, in)
		if err != nil {
			return cost.Usage{}, newError(KindExtraction, in, 0, "pdf", err)
		}
		for _, page := range doc.Pages {
			texts = append(texts, page.Text)
		}
		if len(doc.FormFields) > 0 {
			texts = append(texts, doc.FormText())
		}
	}
	return p.meter.Estimator().EstimateTexts(texts), nil
}

// AddCustomPattern validates pattern and adds it to the configuration
func (p *Processor) AddCustomPattern(pattern, replacement string) error {
	if _, err := patterns.CompilePattern(pattern); err != nil {
		return newError(KindPattern, p.configPath, 0, "custom_patterns", err)
	}
	if replacement == "" {
		replacement = patterns.DefaultCustomReplacement
	}
	return p.update(func(c *config.Config) error {
		c.CustomPatterns = append(c.CustomPatterns, config.CustomPattern{Pattern: pattern, Replacement: replacement})
		return nil
	})
}

// AddCustomStrings adds texts not already present and returns how many
// were added. An empty replacement uses [REDACTED].
func (p *Processor) AddCustomStrings(texts []string, replacement string) (int, error) {
	before := len(p.CustomStrings())
	err := p.update(func(c *config.Config) error {
		c.SetStrings(patterns.DedupeCustomStrings(c.Strings(), texts, replacement))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(p.CustomStrings()) - before, nil
}

// ClearCustomStrings removes every custom string
func (p *Processor) ClearCustomStrings() error {
	return p.update(func(c *config.Config) error {
		c.CustomStrings = nil
		return nil
	})
}

// CustomStrings returns the configured custom strings
func (p *Processor) CustomStrings() []patterns.CustomString {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Strings()
}

// CustomPatterns returns the configured custom patterns, including ones
// that fail to compile
func (p *Processor) CustomPatterns() []patterns.CustomPattern {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Patterns()
}

// SkippedPatterns returns the custom rules the engine could not compile
func (p *Processor) SkippedPatterns() []*patterns.PatternError {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.engine.Skipped()
}

// update applies fn to the persisted configuration, when there is one,
// and then to the in-memory one, and recompiles the engine
func (p *Processor) update(fn func(*config.Config) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.configPath != "" {
		if _, err := config.Update(p.configPath, fn); err != nil {
			return fmt.Errorf("failed to update %s: %w", p.configPath, err)
		}
	}

	// documents already running keep the configuration they started with
	next := *p.cfg
	next.CustomPatterns = append([]config.CustomPattern(nil), p.cfg.CustomPatterns...)
	next.CustomStrings = append([]config.CustomString(nil), p.cfg.CustomStrings...)
	if err := fn(&next); err != nil {
		return err
	}
	p.cfg = &next
	p.rebuild()
	return nil
}

func (p *Processor) suffix() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Output.Suffix
}

// documentText joins every page and the form fields for classification
func documentText(doc *pdf.Document) string {
	var b strings.Builder
	for _, page := range doc.Pages {
		b.WriteString(page.Text)
		b.WriteString("\n")
	}
	b.WriteString(doc.FormText())
	return b.String()
}

func replacements(res resolver.PageResult) []pdf.Replacement {
	out := make([]pdf.Replacement, 0, len(res.Matches))
	for _, m := range res.Matches {
		out = append(out, pdf.Replacement{Start: m.Start, End: m.End, Text: m.Replacement})
	}
	return out
}

func outputPaths(in, out string, cfg *config.Config) (pdfPath, textPath string) {
	if out == "" {
		return paths.OutputPaths(in, cfg.Output.Dir, cfg.Output.Suffix)
	}
	return out, strings.TrimSuffix(out, filepath.Ext(out)) + ".txt"
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
