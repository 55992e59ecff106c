// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pdf reads page text out of PDF statements and writes the
// redacted outputs.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"finredact/internal/observability"
	"finredact/internal/paths"
)

// ErrNotPDF is returned for files that are not PDF documents
var ErrNotPDF = errors.New("not a PDF document")

// Page is the text of one page, lines separated by newlines
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// FormField is a filled AcroForm field
type FormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Document is the extracted text of a PDF
type Document struct {
	Path       string      `json:"path"`
	PageCount  int         `json:"page_count"`
	Pages      []Page      `json:"pages"`
	FormFields []FormField `json:"form_fields,omitempty"`
	// FailedPages lists pages whose text could not be read
	FailedPages []int `json:"failed_pages,omitempty"`
}

// FormText renders the form fields as "name: value" lines
func (d *Document) FormText() string {
	var b strings.Builder
	for _, f := range d.FormFields {
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString("\n")
	}
	return b.String()
}

// Extractor reads page text with ledongthuc/pdf
type Extractor struct {
	maxPages int
	observer *observability.StandardObserver
}

// NewExtractor creates an extractor. maxPages of zero reads every page.
func NewExtractor(maxPages int, observer *observability.StandardObserver) *Extractor {
	return &Extractor{maxPages: maxPages, observer: observer}
}

// CheckPDF returns ErrNotPDF unless path names a file starting with the
// PDF header
func CheckPDF(path string) error {
	if !paths.IsPDF(path) {
		return fmt.Errorf("%w: %s", ErrNotPDF, path)
	}
	// #nosec G304 - path is validated by the caller before extraction
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]byte, 5)
	if _, err := io.ReadFull(f, header); err != nil || !bytes.Equal(header, []byte("%PDF-")) {
		return fmt.Errorf("%w: %s has no PDF header", ErrNotPDF, path)
	}
	return nil
}

// Extract reads every page of path. A page that fails to parse is
// recorded in FailedPages with empty text; a document that cannot be
// opened is an error.
func (e *Extractor) Extract(ctx context.Context, path string) (doc *Document, err error) {
	if e.observer != nil {
		finish := e.observer.StartTiming("pdf", "extract", path)
		defer func() {
			pages := 0
			if doc != nil {
				pages = len(doc.Pages)
			}
			finish(err == nil, map[string]any{"pages": pages})
		}()
	}

	if err := CheckPDF(path); err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	doc = &Document{Path: path, PageCount: r.NumPage()}
	count := doc.PageCount
	if e.maxPages > 0 && count > e.maxPages {
		count = e.maxPages
	}

	for i := 1; i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := pageText(r, i)
		if err != nil {
			doc.FailedPages = append(doc.FailedPages, i)
		}
		doc.Pages = append(doc.Pages, Page{Number: i, Text: cleanTextPreservingStructure(text)})
	}

	doc.FormFields = extractFormFields(r)
	return doc, nil
}

// pageText guards against parser panics on malformed content streams
func pageText(r *pdf.Reader, number int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d: malformed content: %v", number, rec)
		}
	}()

	p := r.Page(number)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d: null page", number)
	}
	return extractTextWithProperSpacing(p)
}

// extractTextWithProperSpacing rebuilds the lines of a page from glyph
// positions. Content follows the whole text state (Td, TD, T*, Tm and cm),
// so lines placed with relative moves keep their own baseline.
func extractTextWithProperSpacing(p pdf.Page) (string, error) {
	if glyphs, ok := contentGlyphs(p); ok {
		if lines := groupLines(glyphs); len(lines) > 0 {
			return joinLines(lines), nil
		}
	}
	return rowText(p)
}

// contentGlyphs returns the positioned glyphs of p, or false when the
// content stream cannot be interpreted
func contentGlyphs(p pdf.Page) (glyphs []pdf.Text, ok bool) {
	defer func() {
		if recover() != nil {
			glyphs, ok = nil, false
		}
	}()
	return p.Content().Text, true
}

// baselineTolerance is how far apart, in points, two glyphs may sit
// vertically and still share a line
const baselineTolerance = 2.0

type textLine struct {
	y      float64
	glyphs []pdf.Text
}

// groupLines buckets glyphs by baseline, top of the page first
func groupLines(glyphs []pdf.Text) []textLine {
	var lines []textLine
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		// TJ arrays end with a newline marker
		if g.S == "\n" {
			g.S = " "
		}
		placed := false
		for i := len(lines) - 1; i >= 0; i-- {
			if math.Abs(lines[i].y-g.Y) <= baselineTolerance {
				lines[i].glyphs = append(lines[i].glyphs, g)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, textLine{y: g.Y, glyphs: []pdf.Text{g}})
		}
	}

	// PDF y grows upwards
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })
	return lines
}

func joinLines(lines []textLine) string {
	var buf bytes.Buffer
	for _, line := range lines {
		text := reconstructRowText(line.glyphs)
		if strings.TrimSpace(text) != "" {
			buf.WriteString(text)
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

// rowText uses the library row grouping, which only follows Tm
func rowText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sortedRows := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sortedRows = append(sortedRows, row)
		}
	}
	sort.SliceStable(sortedRows, func(i, j int) bool {
		return averageY(sortedRows[i].Content) > averageY(sortedRows[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sortedRows {
		rowText := reconstructRowText(row.Content)
		if strings.TrimSpace(rowText) != "" {
			buf.WriteString(rowText)
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

func averageY(elements []pdf.Text) float64 {
	if len(elements) == 0 {
		return 0
	}
	var total float64
	for _, el := range elements {
		total += el.Y
	}
	return total / float64(len(elements))
}

// reconstructRowText joins the glyphs of a row left to right, inserting a
// space where the gap exceeds a fifth of the font size
func reconstructRowText(elements []pdf.Text) string {
	if len(elements) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var buf bytes.Buffer
	for i, el := range sorted {
		buf.WriteString(el.S)
		if i == len(sorted)-1 {
			break
		}

		fontSize := el.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		gap := sorted[i+1].X - (el.X + el.W)
		if gap > fontSize*0.2 && !strings.HasSuffix(el.S, " ") && !strings.HasPrefix(sorted[i+1].S, " ") {
			buf.WriteString(" ")
		}
	}
	return buf.String()
}

// cleanTextPreservingStructure trims lines, drops blank ones and
// collapses runs of spaces, keeping line breaks
func cleanTextPreservingStructure(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\t", " "), "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// extractFormFields reads filled AcroForm fields, descending into field
// kids with dotted names
func extractFormFields(r *pdf.Reader) (fields []FormField) {
	defer func() {
		if recover() != nil {
			fields = nil
		}
	}()

	root := r.Trailer().Key("Root")
	if root.IsNull() {
		return nil
	}
	list := root.Key("AcroForm").Key("Fields")
	if list.Kind() != pdf.Array {
		return nil
	}
	for i := 0; i < list.Len(); i++ {
		fields = collectField(list.Index(i), "", fields, 0)
	}
	return fields
}

func collectField(field pdf.Value, parent string, out []FormField, depth int) []FormField {
	if field.Kind() != pdf.Dict || depth > 16 {
		return out
	}

	name := field.Key("T").Text()
	if parent != "" && name != "" {
		name = parent + "." + name
	} else if name == "" {
		name = parent
	}

	if value := fieldValue(field.Key("V")); value != "" && name != "" {
		out = append(out, FormField{Name: name, Value: value})
	} else if value := fieldValue(field.Key("DV")); value != "" && name != "" {
		out = append(out, FormField{Name: name, Value: value})
	}

	kids := field.Key("Kids")
	if kids.Kind() == pdf.Array {
		for i := 0; i < kids.Len(); i++ {
			out = collectField(kids.Index(i), name, out, depth+1)
		}
	}
	return out
}

func fieldValue(v pdf.Value) string {
	switch v.Kind() {
	case pdf.String:
		return strings.TrimSpace(v.Text())
	case pdf.Name:
		if name := v.Name(); name != "Off" {
			return name
		}
	}
	return ""
}
