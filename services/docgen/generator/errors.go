// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generator

import (
	"errors"
	"fmt"
)

// Sentinel errors for entry-point validation and run lifecycle. These fail
// immediately regardless of the configured error policy.
var (
	// ErrNilAST is returned when Generate receives a nil syntax tree.
	ErrNilAST = errors.New("ast program is nil")

	// ErrInvalidAST is returned when the root node is not a program.
	ErrInvalidAST = errors.New("ast root is not a program")

	// ErrEmptyFilePath is returned when no source path identifies the module.
	ErrEmptyFilePath = errors.New("file path is empty")

	// ErrNilStore is returned when Generate receives no doc store.
	ErrNilStore = errors.New("doc store is nil")

	// ErrAlreadyReconciled is returned when a run's pending exports are
	// drained a second time. Reconciliation appends description text, so
	// repeating it would corrupt previously written docs.
	ErrAlreadyReconciled = errors.New("pending exports already reconciled")
)

// ErrorPolicy selects how per-node processing faults propagate.
type ErrorPolicy int

const (
	// PolicyLog records the fault in the invalid-code log and continues
	// with the next node. A malformed construct degrades to "undocumented"
	// while the rest of the file still produces output.
	PolicyLog ErrorPolicy = iota

	// PolicyThrow aborts the file's generation on the first fault,
	// including its second pass.
	PolicyThrow
)

// String returns "log" or "throw".
func (p ErrorPolicy) String() string {
	if p == PolicyThrow {
		return "throw"
	}
	return "log"
}

// NodeError wraps a per-node processing fault with its source context.
type NodeError struct {
	FilePath string
	Node     string
	Line     int
	Err      error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("%s:%d: process %s: %v", e.FilePath, e.Line, e.Node, e.Err)
}

// Unwrap returns the underlying fault.
func (e *NodeError) Unwrap() error {
	return e.Err
}
