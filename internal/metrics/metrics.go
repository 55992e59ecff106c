// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds the Prometheus collectors for redaction runs.
// Batch and watch runs export them with WriteTextfile for the node
// exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"finredact/internal/category"
)

// Metrics is a set of collectors bound to its own registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// finredact_documents_total{status=processed|failed}
	Documents *prometheus.CounterVec
	// finredact_pages_total
	Pages prometheus.Counter
	// finredact_redactions_total{category}
	Redactions *prometheus.CounterVec
	// finredact_degraded_total{category}
	Degraded *prometheus.CounterVec
	// finredact_skipped_patterns_total
	SkippedPatterns prometheus.Counter
	// finredact_operation_seconds{component,operation,outcome}
	OperationLatency *prometheus.HistogramVec
}

// New registers every collector on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Documents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finredact_documents_total",
			Help: "Documents handled, by outcome",
		}, []string{"status"}),
		Pages: factory.NewCounter(prometheus.CounterOpts{
			Name: "finredact_pages_total",
			Help: "Pages scanned for sensitive data",
		}),
		Redactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finredact_redactions_total",
			Help: "Redactions applied, by category",
		}, []string{"category"}),
		Degraded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finredact_degraded_total",
			Help: "Pages where a detector fell back to pattern-only detection",
		}, []string{"category"}),
		SkippedPatterns: factory.NewCounter(prometheus.CounterOpts{
			Name: "finredact_skipped_patterns_total",
			Help: "Custom patterns skipped because they failed to compile",
		}),
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finredact_operation_seconds",
			Help:    "Duration of timed operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"component", "operation", "outcome"}),
	}
}

// Registry exposes the registry, for tests and HTTP handlers
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOperation implements observability.Recorder
func (m *Metrics) ObserveOperation(component, operation string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.OperationLatency.WithLabelValues(component, operation, outcome).Observe(duration.Seconds())
}

// RecordDocument counts one finished document
func (m *Metrics) RecordDocument(success bool) {
	if m == nil {
		return
	}
	if success {
		m.Documents.WithLabelValues("processed").Inc()
	} else {
		m.Documents.WithLabelValues("failed").Inc()
	}
}

// RecordPage counts one scanned page
func (m *Metrics) RecordPage() {
	if m == nil {
		return
	}
	m.Pages.Inc()
}

// RecordRedactions adds n redactions for category c
func (m *Metrics) RecordRedactions(c category.Category, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Redactions.WithLabelValues(c.String()).Add(float64(n))
}

// RecordDegraded counts a detector falling back on one page
func (m *Metrics) RecordDegraded(c category.Category) {
	if m == nil {
		return
	}
	m.Degraded.WithLabelValues(c.String()).Inc()
}

// RecordSkippedPatterns adds n skipped custom patterns
func (m *Metrics) RecordSkippedPatterns(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SkippedPatterns.Add(float64(n))
}

// WriteTextfile writes the current values in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
