// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Layout of rendered pages, in points
const (
	pageHeight   = 792
	margin       = 50
	fontName     = "Helvetica"
	fontSize     = 10
	leading      = 12
	lineCapacity = 90
	linesPerPage = (pageHeight - 2*margin) / leading
)

// layout is the pdfcpu JSON page description of a redacted document
type layout struct {
	Paper  string                `json:"paper"`
	Origin string                `json:"origin"`
	Pages  map[string]layoutPage `json:"pages"`
}

type layoutPage struct {
	Content layoutContent `json:"content"`
}

type layoutContent struct {
	Text []textBox `json:"text"`
}

type textBox struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  textFont   `json:"font"`
}

type textFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// render lays out pages as Helvetica text boxes, one per line. Every
// source page starts a new output page; long pages continue on the next
// one.
func render(pages []Page) *layout {
	var sheets [][]string
	for _, p := range pages {
		var lines []string
		if p.Number == 0 {
			lines = append(lines, pageHeader(0))
		}
		for _, line := range strings.Split(p.Text, "\n") {
			lines = append(lines, wrap(line, lineCapacity)...)
		}
		for len(lines) > linesPerPage {
			sheets = append(sheets, lines[:linesPerPage])
			lines = lines[linesPerPage:]
		}
		sheets = append(sheets, lines)
	}
	if len(sheets) == 0 {
		sheets = [][]string{nil}
	}

	doc := &layout{Paper: "Letter", Origin: "LowerLeft", Pages: make(map[string]layoutPage, len(sheets))}
	for i, lines := range sheets {
		boxes := []textBox{}
		y := pageHeight - margin
		for _, line := range lines {
			if value := sanitize(line); strings.TrimSpace(value) != "" {
				boxes = append(boxes, textBox{
					Value: value,
					Pos:   [2]float64{margin, float64(y)},
					Font:  textFont{Name: fontName, Size: fontSize},
				})
			}
			y -= leading
		}
		doc.Pages[strconv.Itoa(i+1)] = layoutPage{Content: layoutContent{Text: boxes}}
	}
	return doc
}

// create writes the PDF described by doc to w
func create(doc *layout, w io.Writer, conf *model.Configuration) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to describe redacted pages: %w", err)
	}
	if err := api.Create(nil, bytes.NewReader(data), w, conf); err != nil {
		return fmt.Errorf("failed to render redacted PDF: %w", err)
	}
	return nil
}

// wrap splits line into chunks of at most width runes, breaking at the
// last space when there is one
func wrap(line string, width int) []string {
	runes := []rune(line)
	var out []string
	for len(runes) > width {
		cut := width
		for i := width; i > width/2; i-- {
			if runes[i] == ' ' {
				cut = i
				break
			}
		}
		out = append(out, strings.TrimRight(string(runes[:cut]), " "))
		runes = []rune(strings.TrimLeft(string(runes[cut:]), " "))
	}
	return append(out, string(runes))
}

// sanitize keeps the runes the WinAnsi core fonts can show, turning the
// rest into '?', and escapes '%' from pdfcpu's page number and timestamp
// placeholders. A '%' directly before p, P, t or v is followed by a space
// since pdfcpu has no escape for those pairs.
func sanitize(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == '%':
			b.WriteString("%%")
			if i+1 < len(runes) && strings.ContainsRune("pPtv", runes[i+1]) {
				b.WriteByte(' ')
			}
		case r == '\t':
			b.WriteByte(' ')
		case r >= 32 && r <= 126, r >= 160 && r <= 255:
			b.WriteRune(r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
