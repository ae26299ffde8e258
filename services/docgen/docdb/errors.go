// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package docdb

import (
	"errors"
	"fmt"
)

// Sentinel errors for store operations.
var (
	// ErrDuplicateID indicates a doc with the same ID is already stored.
	ErrDuplicateID = errors.New("duplicate doc ID")

	// ErrInvalidDoc indicates the doc failed validation.
	ErrInvalidDoc = errors.New("invalid doc")

	// ErrMaxDocsExceeded indicates the store's capacity limit was reached.
	ErrMaxDocsExceeded = errors.New("maximum doc count exceeded")

	// ErrNotFound indicates no doc matched the requested ID.
	ErrNotFound = errors.New("doc not found")
)

// BatchError aggregates the individual failures of a batch insert.
//
// Description:
//
//	Collects per-doc errors so a batch operation can report everything that
//	went wrong instead of stopping at the first failure. Supports errors.Is
//	and errors.As through Unwrap.
type BatchError struct {
	Errors []error
}

// Error implements the error interface with a count summary.
func (e *BatchError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("batch insert failed: %v", e.Errors[0])
	}
	return fmt.Sprintf("batch insert failed with %d errors (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap returns the underlying errors for errors.Is/As.
func (e *BatchError) Unwrap() []error {
	return e.Errors
}
