// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognizer

import (
	"context"
	"fmt"

	"finredact/internal/resilience"
)

// Resilient retries a remote recognizer with backoff and stops calling it
// while its circuit is open, so a failing service degrades pages quickly.
type Resilient struct {
	next    Recognizer
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewResilient wraps next. A nil breaker disables short-circuiting.
func NewResilient(next Recognizer, retry resilience.RetryConfig, breaker *resilience.CircuitBreaker) *Resilient {
	return &Resilient{next: next, retry: retry, breaker: breaker}
}

// Name returns the wrapped recognizer name
func (r *Resilient) Name() string {
	return r.next.Name()
}

// Recognize calls the wrapped recognizer until it succeeds or fails for
// good
func (r *Resilient) Recognize(ctx context.Context, text string) ([]Entity, error) {
	entities, err := resilience.RetryWithResult(ctx, r.retry, func(ctx context.Context) ([]Entity, error) {
		if r.breaker == nil {
			return r.next.Recognize(ctx, text)
		}
		var out []Entity
		err := r.breaker.Execute(ctx, func(ctx context.Context) error {
			var e error
			out, e = r.next.Recognize(ctx, text)
			return e
		})
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s recognizer failed (%s): %w", r.next.Name(), resilience.Classify(err).Kind, err)
	}
	return entities, nil
}
