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
	"unicode"
	"unicode/utf8"

	"github.com/AleutianAI/AleutianDocs/services/docgen/ast"
)

// newInstanceVariable fabricates the `let <name> = new <ClassName>()`
// declaration that stands in for an implicit instance export. Source
// location and leading comments are borrowed from the export node, so the
// comment associator and classifier treat the fabrication exactly like a
// real declaration.
func newInstanceVariable(name, className string, source *ast.Node) *ast.Node {
	loc := ast.Location{}
	var leading []*ast.Comment
	if source != nil {
		loc = source.Loc
		leading = source.LeadingComments
	}

	callee := &ast.Node{
		Kind:    ast.KindIdentifier,
		Name:    className,
		Loc:     loc,
		Virtual: true,
	}
	init := &ast.Node{
		Kind:    ast.KindNewExpression,
		Callee:  callee,
		Loc:     loc,
		Virtual: true,
	}
	declarator := &ast.Node{
		Kind:    ast.KindVariableDeclarator,
		Name:    name,
		Init:    init,
		Loc:     loc,
		Virtual: true,
	}
	return &ast.Node{
		Kind:            ast.KindVariableDeclaration,
		DeclKind:        "let",
		Declarations:    []*ast.Node{declarator},
		Loc:             loc,
		LeadingComments: leading,
		Virtual:         true,
	}
}

// instanceName derives the implicit variable name for an exported instance
// by lower-casing the class name's first rune: `new Foo()` binds as foo.
func instanceName(className string) string {
	if className == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(className)
	return string(unicode.ToLower(r)) + className[size:]
}
