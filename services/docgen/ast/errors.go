// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"errors"
	"fmt"
)

// Sentinel errors for parse operations. Wrap with %w so callers can use
// errors.Is for classification.
var (
	// ErrFileTooLarge indicates the source exceeds the parser's size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrInvalidContent indicates the source is not valid UTF-8.
	ErrInvalidContent = errors.New("content is not valid UTF-8")

	// ErrParseFailed indicates tree-sitter could not produce a tree.
	ErrParseFailed = errors.New("parse failed")
)

// ParseError is a parse failure with source location context.
//
// Description:
//
//	Wraps an underlying cause (if any) with the file path and position where
//	the failure occurred. Line and Column are 1-based and 0-based
//	respectively; zero values mean the position is unknown.
type ParseError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a ParseError without an underlying cause.
func NewParseError(filePath string, line, column int, message string) *ParseError {
	return &ParseError{
		FilePath: filePath,
		Line:     line,
		Column:   column,
		Message:  message,
	}
}

// WrapParseError creates a ParseError wrapping cause.
func WrapParseError(filePath, message string, cause error) *ParseError {
	return &ParseError{
		FilePath: filePath,
		Message:  message,
		Cause:    cause,
	}
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
