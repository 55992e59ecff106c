// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Replacement substitutes Text for the bytes [Start, End) of a page
type Replacement struct {
	Start int
	End   int
	Text  string
}

// Apply returns text with every replacement applied. Replacements must
// not overlap; out-of-range ones are ignored.
func Apply(text string, replacements []Replacement) string {
	sorted := make([]Replacement, 0, len(replacements))
	for _, r := range replacements {
		if r.Start >= 0 && r.End <= len(text) && r.Start < r.End {
			sorted = append(sorted, r)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, r := range sorted {
		if r.Start < last {
			continue
		}
		b.WriteString(text[last:r.Start])
		b.WriteString(r.Text)
		last = r.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// Info describes a PDF without extracting its text
type Info struct {
	Path      string `json:"path" yaml:"path"`
	PageCount int    `json:"page_count" yaml:"page_count"`
	FileSize  int64  `json:"file_size" yaml:"file_size"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	Author    string `json:"author,omitempty" yaml:"author,omitempty"`
	Producer  string `json:"producer,omitempty" yaml:"producer,omitempty"`
}

// Writer produces the redacted outputs of a document
type Writer struct {
	conf *model.Configuration
}

// NewWriter creates a writer with pdfcpu's default configuration
func NewWriter() *Writer {
	return &Writer{conf: model.NewDefaultConfiguration()}
}

// config returns a private copy of the pdfcpu configuration. pdfcpu
// records the running command in it, and documents are written
// concurrently.
func (w *Writer) config() *model.Configuration {
	conf := *w.conf
	return &conf
}

// Validate checks path with pdfcpu
func (w *Writer) Validate(path string) error {
	if err := api.ValidateFile(path, w.config()); err != nil {
		return fmt.Errorf("invalid PDF file: %w", err)
	}
	return nil
}

// ReadInfo returns page count, size and document metadata of path
func (w *Writer) ReadInfo(path string) (*Info, error) {
	if err := CheckPDF(path); err != nil {
		return nil, err
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	info := &Info{Path: path, PageCount: ctx.PageCount, FileSize: stat.Size()}
	readMetadata(path, info)
	return info, nil
}

// readMetadata fills the Info dictionary fields. Unreadable metadata is
// left empty.
func readMetadata(path string, info *Info) {
	defer func() { _ = recover() }()

	f, r, err := ledongthuc.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	meta := r.Trailer().Key("Info")
	info.Title = meta.Key("Title").Text()
	info.Author = meta.Key("Author").Text()
	info.Producer = meta.Key("Producer").Text()
}

// WritePDF renders the redacted page texts into a new PDF at path. The
// source document is never copied, so nothing from its content streams,
// metadata or form fields reaches the output.
func (w *Writer) WritePDF(path string, pages []Page) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".finredact-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temporary PDF: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := create(render(pages), tmp, w.config()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write redacted PDF: %w", err)
	}

	if err := w.Validate(tmp.Name()); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move redacted PDF into place: %w", err)
	}
	return os.Chmod(path, 0600)
}

// WriteText writes the redacted page texts to path, one section per page
func (w *Writer) WriteText(path string, pages []Page) error {
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pageHeader(p.Number))
		b.WriteString("\n")
		b.WriteString(p.Text)
		if !strings.HasSuffix(p.Text, "\n") {
			b.WriteString("\n")
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write redacted text: %w", err)
	}
	return nil
}

func pageHeader(number int) string {
	if number == 0 {
		return "--- Form Fields ---"
	}
	return "--- Page " + strconv.Itoa(number) + " ---"
}
