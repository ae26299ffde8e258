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
	"sync"
	"time"

	"github.com/AleutianAI/AleutianDocs/services/docgen/ast"
)

// InvalidNode is one recorded per-node processing fault.
type InvalidNode struct {
	FilePath string    `json:"file_path"`
	Node     string    `json:"node"`
	Line     int       `json:"line"`
	Error    string    `json:"error"`
	LoggedAt time.Time `json:"logged_at"`
}

// InvalidLog collects per-node faults under the log policy. One log is
// typically shared across a whole project run so callers can report every
// construct that failed to document.
//
// Thread Safety: all methods are safe for concurrent use.
type InvalidLog struct {
	mu      sync.Mutex
	entries []InvalidNode
}

// NewInvalidLog creates an empty log.
func NewInvalidLog() *InvalidLog {
	return &InvalidLog{}
}

// Add records a fault. The node is stored as a sanitized one-line summary,
// never a full dump; source trees can be arbitrarily large.
func (l *InvalidLog) Add(filePath string, node *ast.Node, err error) {
	entry := InvalidNode{
		FilePath: filePath,
		Node:     node.Summary(),
		Error:    err.Error(),
		LoggedAt: time.Now().UTC(),
	}
	if node != nil {
		entry.Line = node.Loc.StartLine
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of all recorded faults in insertion order.
func (l *InvalidLog) Entries() []InvalidNode {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]InvalidNode, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded faults.
func (l *InvalidLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear discards all recorded faults.
func (l *InvalidLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
