// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package generator turns one parsed module into doc objects using a
// two-pass algorithm.
//
// # First Pass
//
// A single depth-first walk over the syntax tree. Each node is unwrapped
// from export syntax, associated with its documentation comments, and
// classified into a doc category; the resulting doc object is inserted
// into the store immediately. Export statements whose meaning depends on
// other docs (`export default foo`, `export {a, b}`, instance exports)
// are deferred instead: appended to a pending queue and their subtrees
// skipped.
//
// # Second Pass
//
// After the walk, the pending queue drains in source order. Each deferred
// export looks up the docs it targets and mutates their visibility fields
// in place — the store hands out live references for exactly this reason.
// Implicit instance exports (`export default new Foo()`) synthesize a
// companion variable doc as if the source had declared `let foo = new
// Foo()`.
//
// Both passes run synchronously within one Generate call; a file is an
// atomic unit. Runs on different files may proceed concurrently — all
// per-run state lives in a context built fresh per call, and doc IDs come
// from a process-wide atomic counter.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianDocs/services/docgen/ast"
	"github.com/AleutianAI/AleutianDocs/services/docgen/doc"
	"github.com/AleutianAI/AleutianDocs/services/docgen/docdb"
	"github.com/AleutianAI/AleutianDocs/services/docgen/tags"
)

// Generator produces doc objects from parsed modules. It is stateless
// across runs and safe for concurrent use; all per-run scratch state lives
// in the run context.
type Generator struct {
	logger  *slog.Logger
	policy  ErrorPolicy
	invalid *InvalidLog
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithErrorPolicy selects how per-node faults propagate. Default:
// PolicyLog.
func WithErrorPolicy(policy ErrorPolicy) Option {
	return func(g *Generator) {
		g.policy = policy
	}
}

// WithInvalidLog shares an invalid-code log across generators, so a
// project-wide run can report every failed construct in one place.
func WithInvalidLog(log *InvalidLog) Option {
	return func(g *Generator) {
		if log != nil {
			g.invalid = log
		}
	}
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		logger:  slog.Default(),
		policy:  PolicyLog,
		invalid: NewInvalidLog(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// InvalidLog returns the log collecting per-node faults under PolicyLog.
func (g *Generator) InvalidLog() *InvalidLog {
	return g.invalid
}

// Result summarizes one generation run.
type Result struct {
	RunID        string        `json:"run_id"`
	FilePath     string        `json:"file_path"`
	FileDocID    int64         `json:"file_doc_id"`
	ModuleID     int64         `json:"module_id"`
	DocsProduced int           `json:"docs_produced"`
	Deferred     int           `json:"deferred"`
	InvalidNodes int           `json:"invalid_nodes"`
	Duration     time.Duration `json:"duration"`
}

// Generate documents one parsed module.
//
// Description:
//
//	Validates inputs, anchors the run with file and module docs, then runs
//	the two passes described in the package comment. Under PolicyLog a
//	malformed construct is recorded and skipped; under PolicyThrow the
//	first fault aborts the run, second pass included.
//
// Inputs:
//
//	ctx - Checked at entry. Traversal itself does not suspend, so
//	cancellation mid-walk is not supported; a file is all-or-nothing.
//	program - Root node from the parser adapter. Must be a Program.
//	filePath - Stable path identifying the module in the store.
//	db - Destination doc store.
//
// Outputs:
//
//	*Result - Run summary with the new docs' anchor IDs.
//	error - Validation sentinels, a NodeError under PolicyThrow, or a
//	store failure.
//
// Thread Safety: safe for concurrent calls with distinct file paths.
func (g *Generator) Generate(ctx context.Context, program *ast.Node, filePath string, db *docdb.Store) (*Result, error) {
	switch {
	case program == nil:
		return nil, ErrNilAST
	case program.Kind != ast.KindProgram:
		return nil, fmt.Errorf("%w: got %s", ErrInvalidAST, program.Kind)
	case filePath == "":
		return nil, ErrEmptyFilePath
	case db == nil:
		return nil, ErrNilStore
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()
	ctx, span := startGenerateSpan(ctx, filePath, runID)
	defer span.End()

	logger := g.logger.With(
		slog.String("run_id", runID),
		slog.String("file_path", filePath),
	)
	rc := newRunContext(runID, filePath, program, db, logger, g.policy, g.invalid)

	fileDoc, moduleDoc, err := rc.anchorDocs()
	if err != nil {
		recordGenerate(ctx, time.Since(start), rc.produced, 0, rc.invalidCount, false)
		return nil, err
	}

	var walkErr error
	ast.Walk(program, func(n, parent *ast.Node) ast.WalkResult {
		if n == program {
			return ast.WalkContinue
		}
		if rc.shouldDefer(n) {
			rc.pending = append(rc.pending, n)
			return ast.WalkSkipChildren
		}
		if rc.isVisited(n) {
			return ast.WalkContinue
		}
		rc.markVisited(n)

		if err := g.safeProcessNode(rc, n); err != nil {
			if rc.policy == PolicyThrow {
				walkErr = &NodeError{
					FilePath: rc.filePath,
					Node:     n.Summary(),
					Line:     n.Loc.StartLine,
					Err:      err,
				}
				return ast.WalkStop
			}
			rc.recordInvalid(n, err)
		}
		return ast.WalkContinue
	})
	if walkErr != nil {
		recordGenerate(ctx, time.Since(start), rc.produced, len(rc.pending), rc.invalidCount, false)
		return nil, walkErr
	}

	deferred := len(rc.pending)
	if err := g.reconcileAll(rc); err != nil {
		recordGenerate(ctx, time.Since(start), rc.produced, deferred, rc.invalidCount, false)
		return nil, err
	}

	duration := time.Since(start)
	recordGenerate(ctx, duration, rc.produced, deferred, rc.invalidCount, true)
	logger.Info("documentation generated",
		slog.Int("docs", rc.produced),
		slog.Int("deferred_exports", deferred),
		slog.Int("invalid_nodes", rc.invalidCount),
		slog.Duration("duration", duration),
	)

	return &Result{
		RunID:        runID,
		FilePath:     filePath,
		FileDocID:    fileDoc.ID,
		ModuleID:     moduleDoc.ID,
		DocsProduced: rc.produced,
		Deferred:     deferred,
		InvalidNodes: rc.invalidCount,
		Duration:     duration,
	}, nil
}

// anchorDocs inserts the file and module docs every other doc in the run
// hangs off. IDs are pre-assigned so each doc can point at itself before
// insertion.
func (rc *runContext) anchorDocs() (*doc.Doc, *doc.Doc, error) {
	fileDoc := &doc.Doc{
		ID:       docdb.NextID(),
		Category: doc.CategoryFile,
		Name:     filepath.Base(rc.filePath),
		Longname: rc.filePath,
		FilePath: rc.filePath,
	}
	fileDoc.ModuleID = fileDoc.ID
	if err := rc.insert(fileDoc); err != nil {
		return nil, nil, fmt.Errorf("insert file doc: %w", err)
	}

	moduleDoc := &doc.Doc{
		ID:       docdb.NextID(),
		Category: doc.CategoryModule,
		Name:     moduleName(rc.filePath),
		Longname: rc.filePath,
		FilePath: rc.filePath,
	}
	moduleDoc.ModuleID = moduleDoc.ID
	if err := rc.insert(moduleDoc); err != nil {
		return nil, nil, fmt.Errorf("insert module doc: %w", err)
	}

	rc.moduleID = moduleDoc.ID
	return fileDoc, moduleDoc, nil
}

// moduleName strips the extension: src/lib/parser.js documents as parser.
func moduleName(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// shouldDefer tests the second-pass criteria: default exports of bare
// identifiers and constructor calls always defer; named exports defer when
// they carry specifiers, or when an inline declaration constructs a class
// declared in this module. Deferred subtrees are not traversed at all —
// their contents document only through reconciliation.
func (rc *runContext) shouldDefer(n *ast.Node) bool {
	switch n.Kind {
	case ast.KindExportDefaultDeclaration:
		d := n.Declaration
		return d != nil && (d.Kind == ast.KindIdentifier || d.Kind == ast.KindNewExpression)

	case ast.KindExportNamedDeclaration:
		if len(n.Specifiers) > 0 {
			return true
		}
		d := n.Declaration
		if d == nil || d.Kind != ast.KindVariableDeclaration {
			return false
		}
		for _, dr := range d.Declarations {
			if dr == nil || dr.Init == nil || dr.Init.Kind != ast.KindNewExpression {
				continue
			}
			className := ast.ConstructorName(dr.Init.Callee)
			if className != "" && ast.FindClassDeclaration(rc.program, className) != nil {
				return true
			}
		}
	}
	return false
}

// safeProcessNode guards the per-node boundary: any fault, panics from
// unexpected node shapes included, surfaces as an error for the policy to
// dispatch instead of tearing down the walk.
func (g *Generator) safeProcessNode(rc *runContext, n *ast.Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("node processing panic: %v", r)
		}
	}()
	return g.processNode(rc, n)
}

// processNode runs the per-node pipeline: export unwrapping, decorator
// comment hoisting, comment association, classification, doc construction
// and insertion. Trailing comments are processed only on the last
// statement of a body, so a shared trailing comment is not re-emitted once
// per sibling.
func (g *Generator) processNode(rc *runContext, n *ast.Node) error {
	target := n
	exported := false

	if n.IsExportWrapper() {
		decl := unwrapExport(n)
		if decl == nil {
			// Specifier-only and re-export forms either deferred already
			// or carry nothing to document.
			return nil
		}
		rc.markVisited(decl)
		target = decl
		exported = true
	}

	hoistDecoratorComments(target)

	tagList, err := g.consumeLeadingComments(rc, target)
	if err != nil {
		return err
	}

	if cls, ok := rc.classify(target, tagList); ok {
		if d := rc.buildDoc(cls, tagList, exported); d != nil {
			if err := rc.insert(d); err != nil {
				return err
			}
			if cls.category == doc.CategoryModuleClass {
				rc.setProcessedClass(cls.node, d)
			}
		}
	}

	if rc.isLastInBody(n) {
		for _, c := range trailingDocComments(target) {
			if err := g.classifyCarrier(rc, target, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// consumeLeadingComments classifies every comment but the last against a
// fabricated carrier node and returns the final comment's tag list. Only
// the final comment documents the node's real structure; earlier comments
// are orphaned annotations that may still yield virtual typedef, external
// or test entries.
func (g *Generator) consumeLeadingComments(rc *runContext, target *ast.Node) ([]tags.Tag, error) {
	comments := leadingDocComments(target)
	for _, c := range comments[:len(comments)-1] {
		if err := g.classifyCarrier(rc, target, c); err != nil {
			return nil, err
		}
	}
	return tags.Parse(comments[len(comments)-1]), nil
}

// classifyCarrier runs the tag-only pipeline for a comment that has no
// real node of its own.
func (g *Generator) classifyCarrier(rc *runContext, source *ast.Node, c *ast.Comment) error {
	carrier := rc.commentCarrier(source, c)
	tagList := tags.Parse(c)
	cls, ok := rc.classify(carrier, tagList)
	if !ok {
		return nil
	}
	d := rc.buildDoc(cls, tagList, false)
	if d == nil {
		return nil
	}
	return rc.insert(d)
}
