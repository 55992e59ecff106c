// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package address

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finredact/internal/recognizer"
)

type stubRecognizer struct {
	persons []string
	err     error
}

func (s *stubRecognizer) Name() string { return "stub" }

func (s *stubRecognizer) Recognize(_ context.Context, text string) ([]recognizer.Entity, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []recognizer.Entity
	for _, p := range s.persons {
		if i := strings.Index(text, p); i >= 0 {
			out = append(out, recognizer.Entity{Text: p, Start: i, End: i + len(p), Label: recognizer.Person, Score: 0.9})
		}
	}
	return out, nil
}

func fullAddresses(r Result) []string {
	var out []string
	for _, a := range r.Addresses {
		out = append(out, a.FullAddress)
	}
	return out
}

func TestDetectExcludesKnownNameBeforeStreet(t *testing.T) {
	text := "Account Holder: John Smith, 123 Main Street"
	res := NewDetector(nil, DefaultOptions()).Detect(context.Background(), text, []string{"John Smith"})

	require.Equal(t, []string{"123 Main Street"}, fullAddresses(res))
	addr := res.Addresses[0]
	assert.Equal(t, "123 Main Street", addr.Street)
	require.Len(t, addr.Positions, 1)
	assert.Equal(t, "123 Main Street", text[addr.Positions[0].Start:addr.Positions[0].End])
	assert.InDelta(t, 0.95, addr.Confidence, 1e-9)
}

func TestDetectRemovesKnownNameInsideCandidate(t *testing.T) {
	text := "JOHN SMITH\nSPRINGFIELD, IL 62704"

	res := NewDetector(nil, DefaultOptions()).Detect(context.Background(), text, []string{"John Smith"})
	require.Equal(t, []string{"SPRINGFIELD, IL 62704"}, fullAddresses(res))

	addr := res.Addresses[0]
	assert.Equal(t, "SPRINGFIELD", addr.City)
	assert.Equal(t, "IL", addr.State)
	assert.Equal(t, "62704", addr.Zip)
	assert.Empty(t, addr.Street)
	assert.InDelta(t, 1.0, addr.Confidence, 1e-9)

	for _, a := range fullAddresses(res) {
		assert.NotContains(t, a, "JOHN")
	}
}

func TestDetectPOBoxAndUpperCaseCity(t *testing.T) {
	text := "Send payments to PO Box 1234\nDENVER CO 80202"
	res := NewDetector(nil, DefaultOptions()).Detect(context.Background(), text, nil)

	got := fullAddresses(res)
	assert.Contains(t, got, "PO Box 1234")
	assert.Contains(t, got, "DENVER CO 80202")
	for _, a := range res.Addresses {
		if a.FullAddress == "PO Box 1234" {
			assert.Equal(t, "PO Box 1234", a.Street)
		}
	}
}

func TestDetectStripsRecognizedPersons(t *testing.T) {
	text := "MARIA LOPEZ\nSPRINGFIELD, IL 62704"
	rec := &stubRecognizer{persons: []string{"MARIA LOPEZ"}}

	res := NewDetector(rec, DefaultOptions()).Detect(context.Background(), text, nil)
	assert.False(t, res.Degraded)
	assert.Equal(t, []string{"SPRINGFIELD, IL 62704"}, fullAddresses(res))
}

func TestDetectRecognizerFailureDegrades(t *testing.T) {
	rec := &stubRecognizer{err: errors.New("throttled")}
	res := NewDetector(rec, DefaultOptions()).Detect(context.Background(), "Mail to 9 Elm Road", nil)

	assert.True(t, res.Degraded)
	assert.Contains(t, res.Reason, "throttled")
	assert.Equal(t, []string{"9 Elm Road"}, fullAddresses(res))
}

func TestDetectFindsEveryOccurrence(t *testing.T) {
	text := "Ship to 77 Pine Lane\nBill to 77 Pine\nLane"
	res := NewDetector(nil, DefaultOptions()).Detect(context.Background(), text, nil)

	require.NotEmpty(t, res.Addresses)
	assert.Equal(t, "77 Pine Lane", res.Addresses[0].FullAddress)
	assert.Len(t, res.Addresses[0].Positions, 2)
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		context string
		want    float64
	}{
		{"street with context", "12 Oak Ave", "mailing address", 0.95},
		{"street without context", "12 Oak Ave", "", 0.85},
		{"full address capped", "12 Oak Ave Springfield IL 62704", "", 1.0},
		{"financial words penalised", "100 Total Amount Way", "", 0.55},
		{"business words penalised", "1 Bank Plaza", "", 0.5},
		{"context needs whole word", "Oak Ave", "that", 0.65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Confidence(tt.addr, tt.context), 1e-9)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		addr                     string
		street, city, state, zip string
	}{
		{"123 Main Street, Springfield, IL 62704", "123 Main Street", "Springfield", "IL", "62704"},
		{"45 Lake Dr Austin TX 73301-0001", "45 Lake Dr", "Austin", "TX", "73301-0001"},
		{"P.O. Box 88, Reno, NV 89501", "P.O. Box 88", "Reno", "NV", "89501"},
		{"9 Elm Road", "9 Elm Road", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			p := Parse(tt.addr)
			assert.Equal(t, tt.street, p.Street)
			assert.Equal(t, tt.city, p.City)
			assert.Equal(t, tt.state, p.State)
			assert.Equal(t, tt.zip, p.Zip)
			assert.Equal(t, tt.addr, p.FullAddress)
		})
	}
}

func TestIsState(t *testing.T) {
	assert.True(t, IsState("DC"))
	assert.True(t, IsState("WY"))
	assert.False(t, IsState("ZZ"))
	assert.False(t, IsState("ca"))
}
