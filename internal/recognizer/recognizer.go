// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package recognizer provides entity recognition used to confirm person
// names. Implementations are optional collaborators: callers treat any
// error as a reason to degrade, never to abort.
package recognizer

import (
	"context"
	"errors"
	"strings"
)

// Label is the entity type assigned by a recognizer
type Label string

const (
	Person       Label = "PERSON"
	Organization Label = "ORGANIZATION"
	Location     Label = "LOCATION"
	Other        Label = "OTHER"
)

// ErrUnavailable is returned when a recognizer cannot serve requests
var ErrUnavailable = errors.New("entity recognizer unavailable")

// Entity is one recognised span. Start and End are byte offsets into the
// text passed to Recognize.
type Entity struct {
	Text  string  `json:"text"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}

// Recognizer finds named entities in text
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
	Name() string
}

// Persons returns the entities labelled Person
func Persons(entities []Entity) []Entity {
	var out []Entity
	for _, e := range entities {
		if e.Label == Person {
			out = append(out, e)
		}
	}
	return out
}

// SplitLines breaks an entity that spans line breaks into one entity per
// non-blank line, with offsets kept relative to the original text.
func SplitLines(e Entity) []Entity {
	if !strings.Contains(e.Text, "\n") {
		return []Entity{e}
	}

	var out []Entity
	offset := 0
	for _, line := range strings.SplitAfter(e.Text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			lead := strings.Index(line, trimmed)
			start := e.Start + offset + lead
			out = append(out, Entity{
				Text:  trimmed,
				Start: start,
				End:   start + len(trimmed),
				Label: e.Label,
				Score: e.Score,
			})
		}
		offset += len(line)
	}
	return out
}
