// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package guess infers parameter lists and type descriptors from AST node
// shapes. It is best-effort by design: explicit doc tags always win, and
// the generator only calls in here when a comment supplies nothing.
//
// The unknown type is "*", matching the wildcard used in doc tags.
package guess

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianDocs/services/docgen/ast"
	"github.com/AleutianAI/AleutianDocs/services/docgen/doc"
)

// typeAny is the wildcard type descriptor name.
const typeAny = "*"

// Params derives a parameter list from a function node's formal parameters.
//
// Description:
//
//	Identifiers become required params of type "*". Defaulted params
//	(`x = 5`) become optional with the default's source text and a type
//	guessed from the default value. Rest params (`...rest`) are marked
//	spread. Destructuring patterns become positional "Object" params named
//	param<N>.
//
// Inputs:
//
//	fn - A function-like node. Nil or non-function nodes yield nil.
func Params(fn *ast.Node) []doc.Param {
	if fn == nil || !fn.IsFunction() {
		return nil
	}
	if len(fn.Params) == 0 {
		return nil
	}

	out := make([]doc.Param, 0, len(fn.Params))
	for i, p := range fn.Params {
		if p == nil {
			continue
		}
		out = append(out, guessParam(p, i))
	}
	return out
}

func guessParam(p *ast.Node, index int) doc.Param {
	switch p.Kind {
	case ast.KindIdentifier:
		return doc.Param{Name: p.Name, Types: []string{typeAny}}

	case ast.KindAssignmentPattern:
		param := doc.Param{Optional: true, Types: []string{typeAny}}
		if p.Left != nil {
			param.Name = p.Left.Name
		}
		if param.Name == "" {
			param.Name = positionalName(index)
		}
		if p.Right != nil {
			if p.Right.Kind == ast.KindLiteral {
				param.Default = p.Right.Name
			}
			if t := ExprType(p.Right); t != nil {
				param.Types = t.Names
			}
		}
		return param

	case ast.KindRestElement:
		name := p.Name
		if name == "" {
			name = positionalName(index)
		}
		return doc.Param{Name: name, Spread: true, Types: []string{typeAny}}

	case ast.KindObjectPattern:
		return doc.Param{Name: positionalName(index), Types: []string{"Object"}}

	default:
		return doc.Param{Name: positionalName(index), Types: []string{typeAny}}
	}
}

func positionalName(index int) string {
	return fmt.Sprintf("param%d", index)
}

// ReturnType guesses a function's return type by scanning its body for
// return statements with values. Nested functions and classes are not
// descended into; their returns belong to them.
//
// Outputs:
//
//	*doc.TypeDesc - A single guessed type when every value-bearing return
//	agrees, "*" when they disagree, nil when nothing is returned.
func ReturnType(fn *ast.Node) *doc.TypeDesc {
	if fn == nil || !fn.IsFunction() {
		return nil
	}

	// Expression-bodied arrows (`x => x * 2`) keep the expression as the
	// sole body element.
	if fn.Kind == ast.KindArrowFunctionExpression && len(fn.Body) == 1 &&
		fn.Body[0] != nil && fn.Body[0].Kind != ast.KindReturnStatement &&
		!isStatement(fn.Body[0]) {
		if t := ExprType(fn.Body[0]); t != nil {
			return t
		}
		return &doc.TypeDesc{Names: []string{typeAny}}
	}

	var names []string
	found := false
	for _, stmt := range fn.Body {
		scanReturns(stmt, &names, &found)
	}
	if !found {
		return nil
	}
	if len(names) == 1 {
		return &doc.TypeDesc{Names: names}
	}
	return &doc.TypeDesc{Names: []string{typeAny}}
}

func isStatement(n *ast.Node) bool {
	switch n.Kind {
	case ast.KindExpressionStatement, ast.KindVariableDeclaration,
		ast.KindReturnStatement, ast.KindClassDeclaration,
		ast.KindFunctionDeclaration:
		return true
	}
	return false
}

// scanReturns collects distinct guessed types from value-bearing returns.
func scanReturns(n *ast.Node, names *[]string, found *bool) {
	if n == nil || n.IsFunction() || n.IsClass() {
		return
	}
	if n.Kind == ast.KindReturnStatement {
		if n.Argument != nil {
			*found = true
			guessed := typeAny
			if t := ExprType(n.Argument); t != nil && len(t.Names) == 1 {
				guessed = t.Names[0]
			}
			appendUnique(names, guessed)
		}
		return
	}
	for _, child := range n.ChildNodes() {
		scanReturns(child, names, found)
	}
}

func appendUnique(names *[]string, name string) {
	for _, existing := range *names {
		if existing == name {
			return
		}
	}
	*names = append(*names, name)
}

// ExprType guesses a type descriptor from an expression's shape.
//
// Description:
//
//	Literals are judged by their source text (quotes ⇒ string, true/false
//	⇒ boolean, leading slash ⇒ RegExp, otherwise number). `new Foo()`
//	yields Foo, including dotted constructors (`new ns.Foo()` ⇒ ns.Foo).
//	Function-valued expressions yield "function". Anything else yields nil;
//	callers omit the type rather than record a bare wildcard.
func ExprType(expr *ast.Node) *doc.TypeDesc {
	if expr == nil {
		return nil
	}

	switch expr.Kind {
	case ast.KindLiteral:
		if name := literalTypeName(expr.Name); name != "" {
			return &doc.TypeDesc{Names: []string{name}}
		}
		return nil

	case ast.KindNewExpression:
		if name := calleeName(expr.Callee); name != "" {
			return &doc.TypeDesc{Names: []string{name}}
		}
		return nil

	case ast.KindFunctionExpression, ast.KindArrowFunctionExpression:
		return &doc.TypeDesc{Names: []string{"function"}}

	default:
		return nil
	}
}

// literalTypeName classifies a literal by its raw source text.
func literalTypeName(raw string) string {
	if raw == "" {
		return ""
	}
	switch raw[0] {
	case '"', '\'', '`':
		return "string"
	case '/':
		return "RegExp"
	}
	switch raw {
	case "true", "false":
		return "boolean"
	case "null", "undefined":
		return ""
	}
	// Remaining literal shapes are numeric: 42, 4.2, .5, 0xff, 1e9.
	return "number"
}

// calleeName flattens a constructor expression to a dotted name.
func calleeName(callee *ast.Node) string {
	switch {
	case callee == nil:
		return ""
	case callee.Kind == ast.KindIdentifier:
		return callee.Name
	case callee.Kind == ast.KindMemberExpression:
		object := calleeName(callee.Object)
		property := ""
		if callee.Property != nil {
			property = callee.Property.Name
		}
		if object == "" || property == "" {
			return ""
		}
		return strings.Join([]string{object, property}, ".")
	default:
		return ""
	}
}
