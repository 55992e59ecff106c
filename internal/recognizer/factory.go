// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognizer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"finredact/internal/cost"
	"finredact/internal/resilience"
)

// Backend names accepted by New
const (
	BackendNone       = "none"
	BackendHeuristic  = "heuristic"
	BackendComprehend = "comprehend"
)

// Options configures New
type Options struct {
	Backend   string
	Region    string
	CacheSize int
	Logger    *zap.Logger
	Meter     *cost.Meter // optional, meters Comprehend requests
}

// New builds the configured recognizer wrapped in an LRU cache. The none
// backend returns a nil Recognizer and no error.
func New(ctx context.Context, opts Options) (Recognizer, error) {
	var base Recognizer
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendNone:
		return nil, nil
	case "", BackendHeuristic:
		base = NewHeuristic()
	case BackendComprehend:
		c, err := NewComprehendFromRegion(ctx, opts.Region)
		if err != nil {
			return nil, err
		}
		base = NewResilient(c.WithMeter(opts.Meter), resilience.DefaultRetryConfig(), newBreaker(BackendComprehend, opts.Logger))
	default:
		return nil, fmt.Errorf("unknown recognizer backend '%s'. Available backends: %s, %s, %s",
			opts.Backend, BackendHeuristic, BackendComprehend, BackendNone)
	}
	cached, err := NewCached(base, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

func newBreaker(name string, logger *zap.Logger) *resilience.CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	config := resilience.DefaultCircuitBreakerConfig(name)
	config.OnStateChange = func(name string, from, to resilience.CircuitBreakerState) {
		logger.Warn("recognizer circuit changed state",
			zap.String("recognizer", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to))
	}
	return resilience.NewCircuitBreaker(config)
}
