// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resilience retries and short-circuits calls to remote entity
// recognition services.
package resilience

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxRetries      int                          // retries after the first attempt
	InitialInterval time.Duration                // delay before the first retry
	MaxInterval     time.Duration                // delay cap
	Multiplier      float64                      // growth per retry
	Jitter          bool                         // add up to 25% random delay
	OnRetry         func(attempt int, err error) // called before each retry
}

// DefaultRetryConfig suits synchronous per-page recognizer calls: a page
// waits for the answer, so the budget is small.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      2,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     8 * time.Second,
		Multiplier:      2.0,
		Jitter:          true,
	}
}

// Delay returns the wait before retry attempt (1-based), without jitter.
func (c RetryConfig) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	delay := float64(c.InitialInterval)
	for i := 1; i < attempt; i++ {
		delay *= c.Multiplier
	}
	if c.MaxInterval > 0 && time.Duration(delay) > c.MaxInterval {
		return c.MaxInterval
	}
	return time.Duration(delay)
}

// RetryWithBackoff runs operation until it succeeds, returns an error
// that is not retryable, or runs out of retries.
func RetryWithBackoff(ctx context.Context, config RetryConfig, operation func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := config.Delay(attempt)
			if config.Jitter {
				delay += time.Duration(float64(delay) * 0.25 * rand.Float64())
			}

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}

			if config.OnRetry != nil {
				config.OnRetry(attempt, lastErr)
			}
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
	}

	return lastErr
}

// RetryWithResult is RetryWithBackoff for operations returning a value.
func RetryWithResult[T any](ctx context.Context, config RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := RetryWithBackoff(ctx, config, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
