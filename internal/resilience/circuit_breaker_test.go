// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerLifecycle(t *testing.T) {
	now := time.Unix(1000, 0)
	var transitions []string

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "comprehend",
		FailureThreshold: 2,
		Cooldown:         time.Minute,
		OnStateChange: func(_ string, from, to CircuitBreakerState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	cb.now = func() time.Time { return now }

	failing := func(context.Context) error { return Transient(errors.New("down")) }
	ok := func(context.Context) error { return nil }
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failing))
	assert.Equal(t, StateClosed, cb.State())
	require.Error(t, cb.Execute(ctx, failing))
	assert.Equal(t, StateOpen, cb.State())

	var open *CircuitOpenError
	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	require.ErrorAs(t, err, &open)
	assert.False(t, called)
	assert.False(t, IsRetryable(err))

	now = now.Add(2 * time.Minute)
	require.Error(t, cb.Execute(ctx, failing))
	assert.Equal(t, StateOpen, cb.State())

	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, StateClosed, cb.State())

	assert.Equal(t, []string{
		"CLOSED->OPEN",
		"OPEN->HALF_OPEN",
		"HALF_OPEN->OPEN",
		"OPEN->HALF_OPEN",
		"HALF_OPEN->CLOSED",
	}, transitions)
}

func TestCircuitBreakerIgnoresPermanentErrors(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "x", FailureThreshold: 1, Cooldown: time.Minute})
	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), func(context.Context) error {
			return Permanent(errors.New("bad input"))
		})
	}
	assert.Equal(t, StateClosed, cb.State())
}
