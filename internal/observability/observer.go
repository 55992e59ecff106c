// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// Recorder receives the outcome of every timed operation, typically to
// update metrics.
type Recorder interface {
	ObserveOperation(component, operation string, success bool, duration time.Duration)
}

// StandardObserver implements observability for all components
type StandardObserver struct {
	level    ObservabilityLevel
	logger   *zap.Logger
	recorder Recorder
	depth    atomic.Int32
}

// NewStandardObserver creates observability component
func NewStandardObserver(level ObservabilityLevel, logger *zap.Logger) *StandardObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StandardObserver{
		level:  level,
		logger: logger,
	}
}

// WithRecorder attaches a recorder that sees every completed operation
func (o *StandardObserver) WithRecorder(r Recorder) *StandardObserver {
	o.recorder = r
	return o
}

// Level returns the observer level
func (o *StandardObserver) Level() ObservabilityLevel {
	return o.level
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]any) {
	start := time.Now()

	return func(success bool, metadata map[string]any) {
		duration := time.Since(start)
		if o.recorder != nil && o.level != ObservabilityOff {
			o.recorder.ObserveOperation(component, operation, success, duration)
		}

		o.LogOperation(StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: duration.Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o.level == ObservabilityOff {
		return
	}

	data.RequestID = uuid.NewString()

	// Only log in debug mode
	if o.level == ObservabilityDebug {
		o.logger.Debug("operation",
			zap.String("component", data.Component),
			zap.String("operation", data.Operation),
			zap.String("request_id", data.RequestID),
			zap.String("file_path", data.FilePath),
			zap.Int64("duration_ms", data.DurationMs),
			zap.Bool("success", data.Success),
			zap.String("error", data.Error),
			zap.Int("match_count", data.MatchCount),
			zap.Any("metadata", data.Metadata),
		)
	}
}

// StartStep begins a nested processing step. Steps are logged at debug
// level with their nesting depth.
func (o *StandardObserver) StartStep(component, step, filePath string) func(success bool, details string) {
	if o.level != ObservabilityDebug {
		return func(bool, string) {}
	}

	start := time.Now()
	depth := o.depth.Add(1) - 1
	o.logger.Debug("step started", zap.String("component", component), zap.String("step", step),
		zap.String("file_path", filePath), zap.Int32("depth", depth))

	return func(success bool, details string) {
		o.depth.Add(-1)
		o.logger.Debug("step finished", zap.String("component", component), zap.String("step", step),
			zap.Bool("success", success), zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("details", details), zap.Int32("depth", depth))
	}
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component  string         `json:"component"`
	Operation  string         `json:"operation"`
	RequestID  string         `json:"request_id"`
	FilePath   string         `json:"file_path,omitempty"`
	DurationMs int64          `json:"duration_ms,omitempty"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	MatchCount int            `json:"match_count,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
