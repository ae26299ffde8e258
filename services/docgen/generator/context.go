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
	"log/slog"

	"github.com/AleutianAI/AleutianDocs/services/docgen/ast"
	"github.com/AleutianAI/AleutianDocs/services/docgen/doc"
	"github.com/AleutianAI/AleutianDocs/services/docgen/docdb"
)

// runContext is the per-file traversal state. A fresh one is built for
// every Generate call, so concurrent runs on different files never share
// scratch state. Parent chains and visited marks are side-tables keyed by
// node identity; nodes themselves are never written to for bookkeeping.
type runContext struct {
	runID    string
	filePath string
	program  *ast.Node
	db       *docdb.Store
	logger   *slog.Logger
	policy   ErrorPolicy
	invalid  *InvalidLog

	// moduleID is the ID of this file's module doc; every doc produced by
	// the run points back to it.
	moduleID int64

	parents map[*ast.Node]*ast.Node
	visited map[*ast.Node]struct{}

	// processedClasses maps class nodes that produced a ModuleClass doc to
	// that doc. Methods and properties are accepted only when their
	// enclosing class is present here.
	processedClasses map[*ast.Node]*doc.Doc

	// pending holds export nodes deferred to the second pass, in source
	// order. Drained exactly once per run.
	pending []*ast.Node
	drained bool

	produced     int
	invalidCount int
}

// newRunContext builds the context and the node→parent side-table.
func newRunContext(runID, filePath string, program *ast.Node, db *docdb.Store,
	logger *slog.Logger, policy ErrorPolicy, invalid *InvalidLog) *runContext {

	rc := &runContext{
		runID:            runID,
		filePath:         filePath,
		program:          program,
		db:               db,
		logger:           logger,
		policy:           policy,
		invalid:          invalid,
		parents:          make(map[*ast.Node]*ast.Node),
		visited:          make(map[*ast.Node]struct{}),
		processedClasses: make(map[*ast.Node]*doc.Doc),
	}

	ast.Walk(program, func(n, parent *ast.Node) ast.WalkResult {
		if parent != nil {
			rc.parents[n] = parent
		}
		return ast.WalkContinue
	})

	return rc
}

// parentOf returns a node's traversal parent, nil for the root and for
// unknown nodes.
func (rc *runContext) parentOf(n *ast.Node) *ast.Node {
	return rc.parents[n]
}

// adopt registers a fabricated node under the given parent so upward
// searches from it behave like they would from a real sibling.
func (rc *runContext) adopt(n, parent *ast.Node) {
	if n != nil && parent != nil {
		rc.parents[n] = parent
	}
}

// markVisited flags a node as consumed. Idempotent.
func (rc *runContext) markVisited(n *ast.Node) {
	if n != nil {
		rc.visited[n] = struct{}{}
	}
}

// isVisited reports whether a node was already consumed, either by its own
// visit or by a reclassification that absorbed it.
func (rc *runContext) isVisited(n *ast.Node) bool {
	_, ok := rc.visited[n]
	return ok
}

// enclosingClass returns the nearest class node strictly above n, or nil.
func (rc *runContext) enclosingClass(n *ast.Node) *ast.Node {
	for p := rc.parentOf(n); p != nil; p = rc.parentOf(p) {
		if p.IsClass() {
			return p
		}
	}
	return nil
}

// classDoc returns the ModuleClass doc produced for a class node, if the
// class was classified earlier in this run.
func (rc *runContext) classDoc(classNode *ast.Node) (*doc.Doc, bool) {
	d, ok := rc.processedClasses[classNode]
	return d, ok
}

// setProcessedClass records a classified class and its doc.
func (rc *runContext) setProcessedClass(classNode *ast.Node, d *doc.Doc) {
	rc.processedClasses[classNode] = d
}

// isTopLevel reports whether a node is an element of the module's top-level
// statement list, accounting for an export wrapper between the node and the
// program.
func (rc *runContext) isTopLevel(n *ast.Node) bool {
	p := rc.parentOf(n)
	if p == nil {
		return false
	}
	if p == rc.program {
		return true
	}
	return p.IsExportWrapper() && rc.parentOf(p) == rc.program
}

// isLastInBody reports whether n is the final statement of its parent's
// body. Trailing comments are only processed on the last statement so a
// shared trailing comment is not re-emitted once per sibling.
func (rc *runContext) isLastInBody(n *ast.Node) bool {
	p := rc.parentOf(n)
	if p == nil || len(p.Body) == 0 {
		return false
	}
	return p.Body[len(p.Body)-1] == n
}

// insert stores a doc and counts it toward the run's output.
func (rc *runContext) insert(d *doc.Doc) error {
	if err := rc.db.Insert(d); err != nil {
		return err
	}
	rc.produced++
	return nil
}

// recordInvalid captures a per-node fault under the log policy.
func (rc *runContext) recordInvalid(n *ast.Node, err error) {
	rc.invalidCount++
	if rc.invalid != nil {
		rc.invalid.Add(rc.filePath, n, err)
	}
	rc.logger.Warn("node processing failed",
		slog.String("node", n.Summary()),
		slog.String("error", err.Error()),
	)
}
