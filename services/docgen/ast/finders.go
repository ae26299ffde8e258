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

// Declaration finders look up top-level declarations by name within one
// module. They see through export wrappers, so `export class Foo {}` is
// found the same way `class Foo {}` is. Lookups never descend into nested
// scopes: only direct elements of the program body are candidates.

// FindClassDeclaration returns the top-level class declaration named name,
// or nil if the program declares no such class.
func FindClassDeclaration(program *Node, name string) *Node {
	if program == nil || name == "" {
		return nil
	}
	for _, stmt := range program.Body {
		candidate := unwrapExported(stmt)
		if candidate == nil {
			continue
		}
		if candidate.Kind == KindClassDeclaration && candidate.Name == name {
			return candidate
		}
	}
	return nil
}

// FindFunctionDeclaration returns the top-level function declaration named
// name, or nil.
func FindFunctionDeclaration(program *Node, name string) *Node {
	if program == nil || name == "" {
		return nil
	}
	for _, stmt := range program.Body {
		candidate := unwrapExported(stmt)
		if candidate == nil {
			continue
		}
		if candidate.Kind == KindFunctionDeclaration && candidate.Name == name {
			return candidate
		}
	}
	return nil
}

// FindVariableDeclaration returns the top-level variable declaration with a
// declarator named name, or nil.
func FindVariableDeclaration(program *Node, name string) *Node {
	if program == nil || name == "" {
		return nil
	}
	for _, stmt := range program.Body {
		candidate := unwrapExported(stmt)
		if candidate == nil || candidate.Kind != KindVariableDeclaration {
			continue
		}
		for _, decl := range candidate.Declarations {
			if decl != nil && decl.Name == name {
				return candidate
			}
		}
	}
	return nil
}

// ConstructorName resolves the class name a new-expression constructs: the
// callee's identifier, or the rightmost property of a member-expression
// callee (`new ns.Foo()` names Foo). Unresolvable callee shapes yield "".
func ConstructorName(callee *Node) string {
	switch {
	case callee == nil:
		return ""
	case callee.Kind == KindIdentifier:
		return callee.Name
	case callee.Kind == KindMemberExpression && callee.Property != nil:
		return callee.Property.Name
	default:
		return ""
	}
}

// unwrapExported returns the declaration behind an export wrapper, or the
// node itself when it is not a wrapper. Wrappers without a declaration
// (re-export and specifier-only forms) yield nil.
func unwrapExported(stmt *Node) *Node {
	if stmt == nil {
		return nil
	}
	if stmt.IsExportWrapper() {
		return stmt.Declaration
	}
	if stmt.Kind == KindExportAllDeclaration {
		return nil
	}
	return stmt
}
