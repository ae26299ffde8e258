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
	"github.com/AleutianAI/AleutianDocs/services/docgen/tags"
)

// reconcileAll drains the pending export queue in source order, exactly
// once per run.
//
// Description:
//
//	Reconciliation mutates stored docs in place and appends description
//	text, so it is not idempotent; a second drain of the same queue returns
//	ErrAlreadyReconciled before touching anything. Per-export faults follow
//	the run's error policy: logged and skipped, or aborting the run.
func (g *Generator) reconcileAll(rc *runContext) error {
	if rc.drained {
		return ErrAlreadyReconciled
	}
	rc.drained = true

	for _, n := range rc.pending {
		if exportIgnored(n) {
			rc.logger.Debug("export skipped by ignore tag", slog.String("node", n.Summary()))
			continue
		}
		if err := g.reconcile(rc, n); err != nil {
			if rc.policy == PolicyThrow {
				return &NodeError{
					FilePath: rc.filePath,
					Node:     n.Summary(),
					Line:     n.Loc.StartLine,
					Err:      err,
				}
			}
			rc.recordInvalid(n, err)
		}
	}

	rc.pending = nil
	return nil
}

// reconcile resolves one deferred export node against the doc store.
func (g *Generator) reconcile(rc *runContext, n *ast.Node) error {
	switch n.Kind {
	case ast.KindExportDefaultDeclaration:
		d := n.Declaration
		switch {
		case d == nil:
			rc.logger.Warn("default export without a declaration", slog.String("node", n.Summary()))
		case d.Kind == ast.KindNewExpression:
			return g.reconcileDefaultInstance(rc, n, d)
		case d.Kind == ast.KindIdentifier:
			return g.reconcileDefaultIdentifier(rc, n, d)
		default:
			rc.logger.Warn("unrecognized default export shape",
				slog.String("node", d.Summary()),
			)
		}

	case ast.KindExportNamedDeclaration:
		if len(n.Specifiers) > 0 {
			return g.reconcileSpecifiers(rc, n)
		}
		if n.Declaration != nil && n.Declaration.Kind == ast.KindVariableDeclaration {
			return g.reconcileInlineVariables(rc, n, n.Declaration)
		}
		rc.logger.Warn("unrecognized named export shape", slog.String("node", n.Summary()))

	default:
		rc.logger.Warn("unrecognized pending export", slog.String("node", n.Summary()))
	}
	return nil
}

// reconcileDefaultInstance handles `export default new Foo()`: the class
// doc gains export visibility as a pseudo export (no direct import style),
// and a companion variable named after the class stands in for the
// instance.
func (g *Generator) reconcileDefaultInstance(rc *runContext, exportNode, newExpr *ast.Node) error {
	className := ast.ConstructorName(newExpr.Callee)
	if className == "" {
		rc.logger.Warn("cannot resolve constructed class for default export",
			slog.String("node", newExpr.Summary()),
		)
		return nil
	}
	if rc.flagClass(className, "") == nil {
		rc.logger.Warn("default-exported instance of unknown class",
			slog.String("class", className),
		)
		return nil
	}

	varName := instanceName(className)
	return g.reconcileCompanion(rc, exportNode, varName, className, varName)
}

// reconcileDefaultIdentifier handles `export default Foo`: either Foo
// aliases a variable holding a class instance (treated like an instance
// export under the variable's own name), or it directly names a class,
// function or variable doc.
func (g *Generator) reconcileDefaultIdentifier(rc *runContext, exportNode, ident *ast.Node) error {
	name := ident.Name

	if className, ok := rc.resolveInstanceAlias(name); ok {
		if rc.flagClass(className, "") != nil {
			return g.reconcileCompanion(rc, exportNode, name, className, name)
		}
		// The aliased class never documented; fall through so the variable
		// itself still gains export visibility.
	}

	mutated := false
	for _, category := range directExportCategories {
		if d := rc.db.FindOne(docdb.Query{Name: name, FilePath: rc.filePath, Category: category}); d != nil {
			d.Export = true
			d.Ignore = false
			d.ImportStyle = name
			mutated = true
		}
	}
	if !mutated {
		rc.logger.Warn("default export target not found", slog.String("name", name))
	}
	return nil
}

// reconcileInlineVariables handles `export let x = new Foo(), ...`: every
// declarator constructing a known class flags that class as a pseudo
// export and synthesizes/updates the companion variable.
func (g *Generator) reconcileInlineVariables(rc *runContext, exportNode, varDecl *ast.Node) error {
	for _, dr := range varDecl.Declarations {
		if dr == nil || dr.Name == "" || dr.Init == nil || dr.Init.Kind != ast.KindNewExpression {
			continue
		}
		className := ast.ConstructorName(dr.Init.Callee)
		if className == "" {
			continue
		}
		if rc.flagClass(className, "") == nil {
			rc.logger.Warn("named-exported instance of unknown class",
				slog.String("class", className),
			)
			continue
		}
		if err := g.reconcileCompanion(rc, exportNode, dr.Name, className, "{"+dr.Name+"}"); err != nil {
			return err
		}
	}
	return nil
}

// reconcileSpecifiers handles `export {a, b as c}`. A specifier aliasing
// an instance-holding variable updates only that variable (the class doc
// keeps whatever its own tags set); otherwise every doc directly named by
// the specifier gains named-export visibility.
func (g *Generator) reconcileSpecifiers(rc *runContext, exportNode *ast.Node) error {
	for _, spec := range exportNode.Specifiers {
		if spec == nil || spec.Name == "" {
			continue
		}
		local := spec.Name
		exported := spec.Alias
		if exported == "" {
			exported = local
		}
		style := "{" + exported + "}"

		if className, ok := rc.resolveInstanceAlias(local); ok {
			if err := g.reconcileCompanion(rc, exportNode, local, className, style); err != nil {
				return err
			}
			continue
		}

		mutated := false
		for _, category := range directExportCategories {
			if d := rc.db.FindOne(docdb.Query{Name: local, FilePath: rc.filePath, Category: category}); d != nil {
				d.Export = true
				d.Ignore = false
				d.ImportStyle = style
				mutated = true
			}
		}
		if !mutated {
			rc.logger.Warn("export specifier target not found", slog.String("name", local))
		}
	}
	return nil
}

// directExportCategories are the doc kinds a bare exported name can
// resolve to. All are queried; the ones that exist are mutated.
var directExportCategories = []doc.Category{
	doc.CategoryModuleClass,
	doc.CategoryModuleFunction,
	doc.CategoryModuleVariable,
}

// reconcileCompanion applies the shared companion-variable rule: when a
// variable doc with the target name already exists in this file, append
// the synthesized description and overwrite its visibility fields; when
// none exists, insert the freshly synthesized doc.
func (g *Generator) reconcileCompanion(rc *runContext, source *ast.Node, varName, className, importStyle string) error {
	synth, err := g.synthesizeVariableDoc(rc, source, varName, className)
	if err != nil {
		return err
	}
	typeRef := &doc.TypeDesc{Names: []string{doc.ModuleLongname(rc.filePath, className)}}

	if existing := rc.db.FindOne(docdb.Query{
		Name:     varName,
		FilePath: rc.filePath,
		Category: doc.CategoryModuleVariable,
	}); existing != nil {
		existing.Description = joinDescriptions(existing.Description, synth.Description)
		existing.Export = true
		existing.Ignore = false
		existing.ImportStyle = importStyle
		existing.Type = typeRef
		if existing.Undocumented && !synth.Undocumented {
			existing.Undocumented = false
		}
		return nil
	}

	synth.Export = true
	synth.Ignore = false
	synth.ImportStyle = importStyle
	synth.Type = typeRef
	return rc.insert(synth)
}

// synthesizeVariableDoc builds the companion variable doc for an implicit
// instance export. The fabricated `let <name> = new <Class>()` node runs
// through the same comment association as a real declaration, so comments
// on the export statement become the variable's documentation and earlier
// comments still yield their virtual entries.
func (g *Generator) synthesizeVariableDoc(rc *runContext, source *ast.Node, varName, className string) (*doc.Doc, error) {
	vnode := newInstanceVariable(varName, className, source)
	rc.adopt(vnode, rc.program)

	tagList, err := g.consumeLeadingComments(rc, vnode)
	if err != nil {
		return nil, err
	}

	cls := classification{category: doc.CategoryModuleVariable, node: vnode}
	return rc.buildDoc(cls, tagList, false), nil
}

// flagClass marks a class doc as exported. Returns nil when no class with
// that name was documented in this file.
func (rc *runContext) flagClass(className, importStyle string) *doc.Doc {
	d := rc.db.FindOne(docdb.Query{
		Name:     className,
		FilePath: rc.filePath,
		Category: doc.CategoryModuleClass,
	})
	if d == nil {
		return nil
	}
	d.Export = true
	d.Ignore = false
	d.ImportStyle = importStyle
	return d
}

// resolveInstanceAlias reports whether name is a module variable
// initialized with `new <Class>()`, returning the constructed class name.
func (rc *runContext) resolveInstanceAlias(name string) (string, bool) {
	decl := ast.FindVariableDeclaration(rc.program, name)
	if decl == nil {
		return "", false
	}
	dr := findDeclarator(decl, name)
	if dr == nil || dr.Init == nil || dr.Init.Kind != ast.KindNewExpression {
		return "", false
	}
	className := ast.ConstructorName(dr.Init.Callee)
	return className, className != ""
}

// findDeclarator returns the declarator with the given name.
func findDeclarator(decl *ast.Node, name string) *ast.Node {
	for _, d := range decl.Declarations {
		if d != nil && d.Name == name {
			return d
		}
	}
	return nil
}

// exportIgnored reports whether the export statement itself carries an
// @ignore tag. Only the statement's own comments count; the wrapped
// declaration's tags are its own business.
func exportIgnored(n *ast.Node) bool {
	for _, c := range filterDocComments(n.LeadingComments) {
		if tags.Has(tags.Parse(c), tags.TagIgnore) {
			return true
		}
	}
	return false
}

// joinDescriptions appends addition to base, separating two non-empty
// texts with a blank line.
func joinDescriptions(base, addition string) string {
	switch {
	case addition == "":
		return base
	case base == "":
		return addition
	default:
		return base + "\n\n" + addition
	}
}
