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
	"github.com/AleutianAI/AleutianDocs/services/docgen/tags"
)

// classification names the doc category to produce for a node, plus the
// effective node whose shape feeds field extraction. The effective node may
// be an inner node: `let x = class {}` classifies on the class expression,
// not the declaration.
type classification struct {
	category doc.Category

	// node is the effective node.
	node *ast.Node

	// class is the enclosing class's doc for member categories.
	class *doc.Doc

	// ownerName names anonymous functions/classes reclassified out of a
	// variable or assignment form after their own name slot came up empty.
	ownerName string
}

// classify maps a (node, tag list) pair to a doc category.
//
// Description:
//
//	Tag-driven virtual categories are decided first: a linear scan over the
//	tag list where each matching tag unconditionally overwrites the result,
//	so the last @typedef/@external/@test wins. Only when no virtual tag is
//	present does the node's own shape decide. Returns ok=false when the
//	node produces no doc object.
//
//	The only side effect is marking absorbed inner nodes as visited, so the
//	walk does not process them a second time.
func (rc *runContext) classify(n *ast.Node, tagList []tags.Tag) (classification, bool) {
	if n == nil {
		return classification{}, false
	}

	category := doc.CategoryUnknown
	for _, t := range tagList {
		switch t.Name {
		case tags.TagTypedef:
			category = doc.CategoryVirtualTypedef
		case tags.TagExternal:
			category = doc.CategoryVirtualExternal
		case tags.TagTest:
			category = doc.CategoryTest
		}
	}
	if category != doc.CategoryUnknown {
		return classification{category: category, node: n}, true
	}

	switch n.Kind {
	case ast.KindClassDeclaration, ast.KindClassExpression:
		if rc.isTopLevel(n) {
			return classification{category: doc.CategoryModuleClass, node: n}, true
		}

	case ast.KindClassMethod:
		class, ok := rc.acceptMember(n)
		if !ok {
			return classification{}, false
		}
		if n.MethodKind == ast.MethodKindGet || n.MethodKind == ast.MethodKindSet {
			// Accessors document as members, not callable methods.
			return classification{category: doc.CategoryClassMember, node: n, class: class}, true
		}
		return classification{category: doc.CategoryClassMethod, node: n, class: class}, true

	case ast.KindClassProperty:
		class, ok := rc.acceptMember(n)
		if !ok {
			return classification{}, false
		}
		return classification{category: doc.CategoryClassProperty, node: n, class: class}, true

	case ast.KindExpressionStatement:
		return rc.classifyExpressionStatement(n)

	case ast.KindAssignmentExpression:
		// Reached directly only through `export default x = ...` unwrapping;
		// statement-level assignments classify via their statement.
		if rc.isTopLevel(n) {
			return rc.classifyAssignment(n)
		}

	case ast.KindFunctionDeclaration:
		if rc.isTopLevel(n) {
			return classification{category: doc.CategoryModuleFunction, node: n}, true
		}

	case ast.KindFunctionExpression:
		// Bare function expressions surface at top level only through
		// export unwrapping; non-async ones are reached through a variable
		// or assignment form instead and carry no classification here.
		if n.Async && rc.isTopLevel(n) {
			return classification{category: doc.CategoryModuleFunction, node: n}, true
		}

	case ast.KindArrowFunctionExpression:
		if rc.isTopLevel(n) {
			return classification{category: doc.CategoryModuleFunction, node: n}, true
		}

	case ast.KindVariableDeclaration:
		if rc.isTopLevel(n) {
			return rc.classifyVariableDeclaration(n)
		}
	}

	return classification{}, false
}

// acceptMember verifies a method/property sits inside a class this run
// already classified. Stray members are discarded with a warning.
func (rc *runContext) acceptMember(n *ast.Node) (*doc.Doc, bool) {
	class := rc.enclosingClass(n)
	if class == nil {
		rc.logger.Warn("class member outside any class",
			slog.String("node", n.Summary()),
		)
		return nil, false
	}
	d, ok := rc.classDoc(class)
	if !ok {
		rc.logger.Warn("class member inside unclassified class",
			slog.String("node", n.Summary()),
			slog.String("class", class.Summary()),
		)
		return nil, false
	}
	return d, true
}

// classifyExpressionStatement handles the two statement-level expression
// forms that document: `this.member = ...` inside a class, and top-level
// assignments.
func (rc *runContext) classifyExpressionStatement(n *ast.Node) (classification, bool) {
	asn := n.Expression
	if asn == nil || asn.Kind != ast.KindAssignmentExpression {
		return classification{}, false
	}

	if isThisMember(asn.Left) {
		// Outside a classified class this may just be a free function
		// using `this`; discard rather than misfile it at module level.
		class, ok := rc.acceptMember(n)
		if !ok {
			return classification{}, false
		}
		rc.markVisited(asn)
		return classification{category: doc.CategoryClassMember, node: asn, class: class}, true
	}

	if rc.isTopLevel(n) {
		return rc.classifyAssignment(asn)
	}
	return classification{}, false
}

// classifyAssignment applies the right-hand-side reclassification rule:
// function and class values document as ModuleFunction/ModuleClass on the
// inner node, everything else as ModuleAssignment on the assignment itself.
func (rc *runContext) classifyAssignment(asn *ast.Node) (classification, bool) {
	var owner string
	if asn.Left != nil {
		owner = asn.Left.Name
	}

	right := asn.Right
	switch {
	case right.IsFunction():
		rc.markVisited(right)
		return classification{category: doc.CategoryModuleFunction, node: right, ownerName: owner}, true
	case right.IsClass():
		rc.markVisited(right)
		return classification{category: doc.CategoryModuleClass, node: right, ownerName: owner}, true
	default:
		rc.markVisited(asn)
		return classification{category: doc.CategoryModuleAssignment, node: asn, ownerName: owner}, true
	}
}

// classifyVariableDeclaration applies the initializer reclassification
// rule. Only the first declarator decides; additional declarators in one
// statement do not produce doc objects of their own.
func (rc *runContext) classifyVariableDeclaration(n *ast.Node) (classification, bool) {
	if len(n.Declarations) == 0 {
		return classification{}, false
	}
	first := n.Declarations[0]
	if first == nil || first.Init == nil {
		return classification{}, false
	}

	switch {
	case first.Init.IsFunction():
		rc.markVisited(first.Init)
		return classification{category: doc.CategoryModuleFunction, node: first.Init, ownerName: first.Name}, true
	case first.Init.IsClass():
		rc.markVisited(first.Init)
		return classification{category: doc.CategoryModuleClass, node: first.Init, ownerName: first.Name}, true
	default:
		return classification{category: doc.CategoryModuleVariable, node: n, ownerName: first.Name}, true
	}
}

// isThisMember reports whether an assignment target is `this.<member>`.
func isThisMember(left *ast.Node) bool {
	return left != nil && left.Kind == ast.KindMemberExpression &&
		left.Object != nil && left.Object.Kind == ast.KindThisExpression
}
