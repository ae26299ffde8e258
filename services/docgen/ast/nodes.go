// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast defines the closed set of syntax-tree node shapes the doc
// generator consumes, plus the parser adapter that produces them from
// tree-sitter and the lookup helpers the generator core depends on.
//
// The node set is deliberately small: it covers exactly the shapes the
// classifier and export reconciler inspect. Everything else a real grammar
// produces is mapped to KindOther with its children preserved, so traversal
// still reaches every documentable construct without the core ever touching
// a concrete parser's node taxonomy.
package ast

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the shape of a Node.
//
// The zero value is KindOther, which carries no shape-specific fields but
// preserves children for traversal.
type Kind int

const (
	// KindOther is any node shape the generator does not classify.
	KindOther Kind = iota

	// KindProgram is the root of one parsed module.
	KindProgram

	// KindClassDeclaration is a `class Foo {}` statement.
	KindClassDeclaration

	// KindClassExpression is a `class {}` or `class Foo {}` used as a value.
	KindClassExpression

	// KindClassMethod is a method definition inside a class body.
	KindClassMethod

	// KindClassProperty is a field definition inside a class body.
	KindClassProperty

	// KindExpressionStatement wraps a bare expression used as a statement.
	KindExpressionStatement

	// KindAssignmentExpression is `left = right`.
	KindAssignmentExpression

	// KindVariableDeclaration is a `var`/`let`/`const` statement.
	KindVariableDeclaration

	// KindVariableDeclarator is one `name = init` entry of a declaration.
	KindVariableDeclarator

	// KindFunctionDeclaration is a `function foo() {}` statement.
	KindFunctionDeclaration

	// KindFunctionExpression is a `function () {}` used as a value.
	KindFunctionExpression

	// KindArrowFunctionExpression is `() => {}`.
	KindArrowFunctionExpression

	// KindNewExpression is `new Callee(...)`.
	KindNewExpression

	// KindCallExpression is `callee(...)`.
	KindCallExpression

	// KindMemberExpression is `object.property`.
	KindMemberExpression

	// KindIdentifier is a bare name reference.
	KindIdentifier

	// KindThisExpression is the `this` keyword.
	KindThisExpression

	// KindLiteral is a string/number/boolean/null/regexp literal.
	KindLiteral

	// KindObjectPattern is a `{a, b}` destructuring target.
	KindObjectPattern

	// KindAssignmentPattern is a `param = default` parameter shape.
	KindAssignmentPattern

	// KindRestElement is a `...rest` parameter shape.
	KindRestElement

	// KindReturnStatement is `return expr;`.
	KindReturnStatement

	// KindExportDefaultDeclaration is `export default ...`.
	KindExportDefaultDeclaration

	// KindExportNamedDeclaration is `export {a, b}` or `export <decl>`.
	KindExportNamedDeclaration

	// KindExportAllDeclaration is `export * from '...'`.
	KindExportAllDeclaration

	// KindExportSpecifier is one `name` or `name as alias` export entry.
	KindExportSpecifier

	// KindDecorator is an `@decorator` annotation.
	KindDecorator
)

// kindNames maps Kind values to their string representations.
var kindNames = map[Kind]string{
	KindOther:                    "Other",
	KindProgram:                  "Program",
	KindClassDeclaration:         "ClassDeclaration",
	KindClassExpression:          "ClassExpression",
	KindClassMethod:              "ClassMethod",
	KindClassProperty:            "ClassProperty",
	KindExpressionStatement:      "ExpressionStatement",
	KindAssignmentExpression:     "AssignmentExpression",
	KindVariableDeclaration:      "VariableDeclaration",
	KindVariableDeclarator:       "VariableDeclarator",
	KindFunctionDeclaration:      "FunctionDeclaration",
	KindFunctionExpression:       "FunctionExpression",
	KindArrowFunctionExpression:  "ArrowFunctionExpression",
	KindNewExpression:            "NewExpression",
	KindCallExpression:           "CallExpression",
	KindMemberExpression:         "MemberExpression",
	KindIdentifier:               "Identifier",
	KindThisExpression:           "ThisExpression",
	KindLiteral:                  "Literal",
	KindObjectPattern:            "ObjectPattern",
	KindAssignmentPattern:        "AssignmentPattern",
	KindRestElement:              "RestElement",
	KindReturnStatement:          "ReturnStatement",
	KindExportDefaultDeclaration: "ExportDefaultDeclaration",
	KindExportNamedDeclaration:   "ExportNamedDeclaration",
	KindExportAllDeclaration:     "ExportAllDeclaration",
	KindExportSpecifier:          "ExportSpecifier",
	KindDecorator:                "Decorator",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalJSON implements json.Marshaler.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for kind, name := range kindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown node kind: %q", s)
}

// MethodKind values for KindClassMethod nodes.
const (
	MethodKindConstructor = "constructor"
	MethodKindMethod      = "method"
	MethodKindGet         = "get"
	MethodKindSet         = "set"
)

// Location is a node's position within its source file.
//
// Lines are 1-based, columns 0-based, matching tree-sitter points shifted
// onto the editor convention the rest of the codebase uses.
type Location struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
}

// CommentKind distinguishes line and block comments.
type CommentKind int

const (
	// CommentLine is a `// ...` comment.
	CommentLine CommentKind = iota

	// CommentBlock is a `/* ... */` comment.
	CommentBlock
)

// String returns "Line" or "Block".
func (k CommentKind) String() string {
	if k == CommentBlock {
		return "Block"
	}
	return "Line"
}

// Comment is one raw source comment attached to a node.
//
// Text includes the comment delimiters exactly as written, so downstream
// doc-comment detection can distinguish `/**` from `/*` and `//`.
type Comment struct {
	Kind CommentKind `json:"kind"`
	Text string      `json:"text"`
	Loc  Location    `json:"loc"`
}

// Node is one syntax-tree node in the closed shape set.
//
// Description:
//
//	Only the fields matching Kind are populated; all others are zero. Child
//	nodes are held exactly once across the shape-specific fields and the
//	generic Children slice, so a traversal visiting ChildNodes() sees every
//	node exactly once.
//
// Thread Safety:
//
//	Nodes are built once by the parser (or the virtual-node synthesizer) and
//	read-only afterwards. Traversal bookkeeping (parents, visited marks)
//	lives in side-tables owned by the caller, never on the node itself.
type Node struct {
	Kind Kind     `json:"kind"`
	Loc  Location `json:"loc"`

	// Name is the node's local name where one exists: identifier text,
	// declared class/function/variable name, method or property key. For
	// computed keys and literals it holds the raw source text.
	Name string `json:"name,omitempty"`

	// Alias is the exported-as name of an ExportSpecifier (`name as alias`).
	Alias string `json:"alias,omitempty"`

	LeadingComments  []*Comment `json:"leading_comments,omitempty"`
	TrailingComments []*Comment `json:"trailing_comments,omitempty"`

	// Shape-specific children.
	Declaration  *Node   `json:"declaration,omitempty"`  // export wrappers
	Specifiers   []*Node `json:"specifiers,omitempty"`   // named exports
	Declarations []*Node `json:"declarations,omitempty"` // variable declarations
	Init         *Node   `json:"init,omitempty"`         // declarator initializer
	Expression   *Node   `json:"expression,omitempty"`   // expression statements
	Left         *Node   `json:"left,omitempty"`         // assignments, patterns
	Right        *Node   `json:"right,omitempty"`        // assignments, patterns
	Object       *Node   `json:"object,omitempty"`       // member expressions
	Property     *Node   `json:"property,omitempty"`     // member expressions
	Callee       *Node   `json:"callee,omitempty"`       // new/call expressions
	Arguments    []*Node `json:"arguments,omitempty"`    // new/call expressions
	Argument     *Node   `json:"argument,omitempty"`     // rest elements, returns
	Params       []*Node `json:"params,omitempty"`       // functions, methods
	SuperClass   *Node   `json:"super_class,omitempty"`  // classes
	Decorators   []*Node `json:"decorators,omitempty"`   // classes, methods, properties
	Body         []*Node `json:"body,omitempty"`         // program/class/function bodies
	Children     []*Node `json:"children,omitempty"`     // untyped children (KindOther)

	// Flags.
	Async     bool `json:"async,omitempty"`
	Generator bool `json:"generator,omitempty"`
	Static    bool `json:"static,omitempty"`
	Computed  bool `json:"computed,omitempty"`

	// MethodKind is one of the MethodKind* constants for KindClassMethod.
	MethodKind string `json:"method_kind,omitempty"`

	// DeclKind is "var", "let" or "const" for KindVariableDeclaration.
	DeclKind string `json:"decl_kind,omitempty"`

	// Virtual marks nodes fabricated by the generator rather than parsed
	// from source.
	Virtual bool `json:"virtual,omitempty"`
}

// ChildNodes returns the node's direct children in a stable order.
//
// The order approximates source order: annotations first, then the
// shape-specific operands, then statement bodies. Traversal semantics in
// this codebase depend only on statement order within Program and class
// bodies, which Body preserves exactly.
func (n *Node) ChildNodes() []*Node {
	if n == nil {
		return nil
	}

	out := make([]*Node, 0, 4)
	appendOne := func(c *Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	appendAll := func(cs []*Node) {
		for _, c := range cs {
			appendOne(c)
		}
	}

	appendAll(n.Decorators)
	appendOne(n.Expression)
	appendOne(n.Left)
	appendOne(n.Right)
	appendOne(n.Object)
	appendOne(n.Property)
	appendOne(n.Callee)
	appendAll(n.Arguments)
	appendAll(n.Declarations)
	appendOne(n.Init)
	appendAll(n.Params)
	appendOne(n.SuperClass)
	appendOne(n.Argument)
	appendOne(n.Declaration)
	appendAll(n.Specifiers)
	appendAll(n.Body)
	appendAll(n.Children)

	return out
}

// IsClass reports whether the node is a class declaration or expression.
func (n *Node) IsClass() bool {
	return n != nil && (n.Kind == KindClassDeclaration || n.Kind == KindClassExpression)
}

// IsFunction reports whether the node is any function-valued shape.
func (n *Node) IsFunction() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindFunctionDeclaration, KindFunctionExpression, KindArrowFunctionExpression:
		return true
	default:
		return false
	}
}

// IsExportWrapper reports whether the node wraps a declaration in export
// syntax that the unwrapper understands.
func (n *Node) IsExportWrapper() bool {
	if n == nil {
		return false
	}
	return n.Kind == KindExportDefaultDeclaration || n.Kind == KindExportNamedDeclaration
}

// Summary returns a short single-line description of the node for warning
// logs. It never follows child pointers, so it is safe on any node shape.
func (n *Node) Summary() string {
	if n == nil {
		return "<nil>"
	}
	if n.Name != "" {
		return fmt.Sprintf("%s(%s) line %d", n.Kind, n.Name, n.Loc.StartLine)
	}
	return fmt.Sprintf("%s line %d", n.Kind, n.Loc.StartLine)
}
