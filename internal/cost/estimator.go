// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package cost meters and estimates Amazon Comprehend charges for the
// cloud entity recognizer.
package cost

import (
	"fmt"
	"sync/atomic"
)

// Usage is an amount of Comprehend work
type Usage struct {
	Requests   int64 `json:"requests" yaml:"requests"`
	Characters int64 `json:"characters" yaml:"characters"`
	Units      int64 `json:"units" yaml:"units"`
}

// Estimator converts Comprehend usage into dollars
type Estimator struct {
	CostPerUnit        float64 // dollars per billing unit
	CharsPerUnit       int     // characters in one unit
	MinUnitsPerRequest int     // each request is billed at least this many units
	RequestChars       int     // largest text sent in one request
}

// NewEstimator creates a new cost estimator with current DetectEntities pricing
func NewEstimator() *Estimator {
	return &Estimator{
		CostPerUnit:        0.0001, // $0.0001 per 100 characters
		CharsPerUnit:       100,
		MinUnitsPerRequest: 3,
		RequestChars:       90 * 1024,
	}
}

// Units returns the billed units for one request carrying chars characters
func (e *Estimator) Units(chars int) int64 {
	if chars <= 0 {
		return 0
	}
	units := int64((chars + e.CharsPerUnit - 1) / e.CharsPerUnit)
	return max(units, int64(e.MinUnitsPerRequest))
}

// Cost returns the dollar cost of u
func (e *Estimator) Cost(u Usage) float64 {
	return float64(u.Units) * e.CostPerUnit
}

// EstimateTexts predicts the usage of sending every text once, split
// into requests the way the recognizer splits them.
func (e *Estimator) EstimateTexts(texts []string) Usage {
	var u Usage
	for _, text := range texts {
		remaining := len(text)
		for remaining > 0 {
			size := min(remaining, e.RequestChars)
			u.Requests++
			u.Characters += int64(size)
			u.Units += e.Units(size)
			remaining -= size
		}
	}
	return u
}

// FormatCostSummary returns a human-readable cost line
func (e *Estimator) FormatCostSummary(u Usage) string {
	if u.Requests == 0 {
		return "Estimated cost: $0.00 (no Comprehend requests)"
	}
	return fmt.Sprintf("Estimated cost: $%.4f (Comprehend: %d requests, %d characters, %d units)",
		e.Cost(u), u.Requests, u.Characters, u.Units)
}

// Meter accumulates the usage of live requests. It is safe for
// concurrent use by page workers.
type Meter struct {
	estimator *Estimator

	requests   atomic.Int64
	characters atomic.Int64
	units      atomic.Int64
}

// NewMeter creates a meter priced by e, or by NewEstimator when e is nil
func NewMeter(e *Estimator) *Meter {
	if e == nil {
		e = NewEstimator()
	}
	return &Meter{estimator: e}
}

// Record adds one request carrying text
func (m *Meter) Record(text string) {
	if m == nil || text == "" {
		return
	}
	m.requests.Add(1)
	m.characters.Add(int64(len(text)))
	m.units.Add(m.estimator.Units(len(text)))
}

// Usage returns the usage so far
func (m *Meter) Usage() Usage {
	if m == nil {
		return Usage{}
	}
	return Usage{
		Requests:   m.requests.Load(),
		Characters: m.characters.Load(),
		Units:      m.units.Load(),
	}
}

// Cost returns the dollar cost so far
func (m *Meter) Cost() float64 {
	if m == nil {
		return 0
	}
	return m.estimator.Cost(m.Usage())
}

// Estimator returns the pricing used by the meter
func (m *Meter) Estimator() *Estimator {
	return m.estimator
}
