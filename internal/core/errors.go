// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
)

// ErrorKind classifies a ProcessingError
type ErrorKind int

const (
	// KindExtraction means the document text could not be read. It stops
	// processing of that document only.
	KindExtraction ErrorKind = iota

	// KindPage means one page failed; the rest of the document is kept
	KindPage

	// KindPattern means a custom pattern or string was rejected
	KindPattern

	// KindRecognizer means the entity recognizer could not be built
	KindRecognizer

	// KindOutput means a redacted output could not be written
	KindOutput
)

// String returns the string representation of the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindExtraction:
		return "extraction"
	case KindPage:
		return "page"
	case KindPattern:
		return "pattern"
	case KindRecognizer:
		return "recognizer"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// ProcessingError is returned for failures tied to a document, a page or
// a user rule
type ProcessingError struct {
	Kind      ErrorKind
	Path      string
	Page      int // zero when the error is not about one page
	Component string
	Cause     error
}

// Error implements the error interface
func (e *ProcessingError) Error() string {
	where := e.Path
	if e.Page > 0 {
		where = fmt.Sprintf("%s page %d", e.Path, e.Page)
	}
	if where == "" {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Component, e.Cause)
	}
	return fmt.Sprintf("[%s] %s (component: %s): %v", e.Kind, where, e.Component, e.Cause)
}

// Unwrap returns the underlying error for error unwrapping
func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

func newError(kind ErrorKind, path string, page int, component string, cause error) *ProcessingError {
	return &ProcessingError{Kind: kind, Path: path, Page: page, Component: component, Cause: cause}
}
