// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrorKind groups errors by how a caller should react to them
type ErrorKind int

const (
	KindUnknown      ErrorKind = iota
	KindTransient              // network blips, 5xx responses
	KindThrottled              // rate limiting
	KindTimeout                // request or deadline timeouts
	KindPermanent              // credentials, permissions, open circuits
	KindInvalidInput           // requests that can never succeed as sent
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindThrottled:
		return "throttled"
	case KindTimeout:
		return "timeout"
	case KindPermanent:
		return "permanent"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// ClassifiedError wraps an error with its kind
type ClassifiedError struct {
	Err       error
	Kind      ErrorKind
	Retryable bool
}

func (e *ClassifiedError) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " error"
	}
	return e.Err.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Transient marks err as worth retrying
func Transient(err error) *ClassifiedError {
	return &ClassifiedError{Err: err, Kind: KindTransient, Retryable: true}
}

// Permanent marks err as not worth retrying
func Permanent(err error) *ClassifiedError {
	return &ClassifiedError{Err: err, Kind: KindPermanent}
}

// Classify returns the classification of err. Errors already classified
// anywhere in the chain keep their kind; the rest are judged by type and
// then by message.
func Classify(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	var open *CircuitOpenError
	if errors.As(err, &open) || errors.Is(err, context.Canceled) {
		return &ClassifiedError{Err: err, Kind: KindPermanent}
	}
	if isTimeout(err) {
		return &ClassifiedError{Err: err, Kind: KindTimeout, Retryable: true}
	}
	if isNetwork(err) {
		return &ClassifiedError{Err: err, Kind: KindTransient, Retryable: true}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "throttl", "too many requests", "toomanyrequests", "rate exceeded", "rate limit"):
		return &ClassifiedError{Err: err, Kind: KindThrottled, Retryable: true}
	case containsAny(msg, "service unavailable", "internal server error", "internalserver"):
		return &ClassifiedError{Err: err, Kind: KindTransient, Retryable: true}
	case containsAny(msg, "access denied", "accessdenied", "unauthorized", "expired token", "invalid credentials", "forbidden"):
		return &ClassifiedError{Err: err, Kind: KindPermanent}
	case containsAny(msg, "size limit", "invalid request", "malformed", "unsupported language"):
		return &ClassifiedError{Err: err, Kind: KindInvalidInput}
	}
	return &ClassifiedError{Err: err, Kind: KindUnknown}
}

// IsRetryable reports whether err should be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Retryable
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func isNetwork(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}

// CircuitOpenError is returned while a circuit breaker rejects calls
type CircuitOpenError struct {
	Name     string
	Failures int
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit '%s' is open after %d consecutive failures", e.Name, e.Failures)
}
