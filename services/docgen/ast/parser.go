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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"go.opentelemetry.io/otel/attribute"
)

// ParseResult is the outcome of parsing one source file.
type ParseResult struct {
	// FilePath is the path the caller supplied, used as the partition key
	// for every doc object derived from this file.
	FilePath string

	// Program is the module root in the closed node set.
	Program *Node

	// Hash is the SHA-256 of the raw content, for change detection.
	Hash string

	// ParsedAtMilli is the parse timestamp in Unix milliseconds.
	ParsedAtMilli int64

	// Errors holds non-fatal notes, e.g. syntax errors tree-sitter
	// recovered from.
	Errors []string
}

// Parser translates JavaScript source into the closed node set.
//
// Description:
//
//	Parser uses tree-sitter to parse JavaScript source and converts the
//	concrete syntax tree into the Node shapes the generator classifies.
//	Comment runs are attached to the statement that follows them; comments
//	after the last statement of a body become that statement's trailing
//	comments. When a statement carries decorators, its leading comments
//	attach to the first decorator instead, matching how doc comments sit in
//	decorated source.
//
// Thread Safety:
//
//	Parser is safe for concurrent use. Each Parse call creates its own
//	tree-sitter parser instance.
//
// Example:
//
//	parser := NewParser()
//	result, err := parser.Parse(ctx, content, "src/app.js")
//	if err != nil {
//	    return fmt.Errorf("parse: %w", err)
//	}
//	ast.Walk(result.Program, visit)
type Parser struct {
	options ParserOptions
}

// ParserOptions configures Parser behavior.
type ParserOptions struct {
	// MaxFileSize is the maximum source size in bytes to parse.
	// Larger inputs return ErrFileTooLarge.
	// Default: 10MB
	MaxFileSize int
}

// DefaultParserOptions returns the default options.
func DefaultParserOptions() ParserOptions {
	return ParserOptions{
		MaxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

// ParserOption is a functional option for configuring Parser.
type ParserOption func(*ParserOptions)

// WithMaxFileSize sets the maximum source size for parsing.
func WithMaxFileSize(size int) ParserOption {
	return func(o *ParserOptions) {
		o.MaxFileSize = size
	}
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...ParserOption) *Parser {
	options := DefaultParserOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Parser{options: options}
}

// Language returns the language name for this parser.
func (p *Parser) Language() string {
	return "javascript"
}

// Extensions returns the file extensions this parser handles.
func (p *Parser) Extensions() []string {
	return []string{".js", ".mjs", ".cjs", ".jsx"}
}

// Parse converts JavaScript source into a ParseResult.
//
// Description:
//
//	Validates the input, parses it with tree-sitter, and converts the tree
//	into the closed node set with comments attached. Syntax errors do not
//	fail the parse; tree-sitter recovers and the result notes them.
//
// Inputs:
//
//	ctx      - Context for cancellation. Checked before and after parsing.
//	content  - Raw JavaScript source bytes. Must be valid UTF-8.
//	filePath - Path of the file, used as the doc partition key.
//
// Outputs:
//
//	*ParseResult - Program root and metadata. Never nil on success.
//	error        - Non-nil only for complete failures (invalid UTF-8,
//	               too large, canceled).
//
// Thread Safety: Safe for concurrent use.
func (p *Parser) Parse(ctx context.Context, content []byte, filePath string) (*ParseResult, error) {
	ctx, span := startParseSpan(ctx, filePath, len(content))
	defer span.End()
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("javascript parse canceled before start: %w", err)
	}

	if len(content) > p.options.MaxFileSize {
		return nil, WrapParseError(filePath, "source too large", ErrFileTooLarge)
	}
	if !utf8.Valid(content) {
		return nil, WrapParseError(filePath, "invalid encoding", ErrInvalidContent)
	}

	hash := sha256.Sum256(content)

	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, WrapParseError(filePath, "tree-sitter parse failed", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("javascript parse canceled after tree-sitter: %w", err)
	}

	conv := &converter{content: content}
	root := tree.RootNode()

	result := &ParseResult{
		FilePath:      filePath,
		Program:       conv.convertProgram(root),
		Hash:          hex.EncodeToString(hash[:]),
		ParsedAtMilli: time.Now().UnixMilli(),
	}
	if root.HasError() {
		result.Errors = append(result.Errors, "source contains syntax errors; partial tree used")
	}

	recordParseMetrics(ctx, time.Since(start), len(content),
		attribute.String("file_path", filePath))

	return result, nil
}

// converter holds the per-parse state for CST conversion.
type converter struct {
	content []byte
}

// text returns the raw source slice for a tree-sitter node.
func (c *converter) text(n *sitter.Node) string {
	return string(c.content[n.StartByte():n.EndByte()])
}

// loc converts tree-sitter points to a Location (1-based lines).
func (c *converter) loc(n *sitter.Node) Location {
	return Location{
		StartLine: int(n.StartPoint().Row) + 1,
		StartCol:  int(n.StartPoint().Column),
		EndLine:   int(n.EndPoint().Row) + 1,
		EndCol:    int(n.EndPoint().Column),
	}
}

// comment converts a tree-sitter comment node.
func (c *converter) comment(n *sitter.Node) *Comment {
	text := c.text(n)
	kind := CommentLine
	if strings.HasPrefix(text, "/*") {
		kind = CommentBlock
	}
	return &Comment{Kind: kind, Text: text, Loc: c.loc(n)}
}

// convertProgram converts the module root.
func (c *converter) convertProgram(root *sitter.Node) *Node {
	return &Node{
		Kind: KindProgram,
		Loc:  c.loc(root),
		Body: c.convertBody(root),
	}
}

// convertBody converts the statement-level children of a container node,
// attaching comment runs to the statement that follows them. Comments after
// the final statement become that statement's trailing comments, which is
// the only position the generator processes trailing comments in.
func (c *converter) convertBody(container *sitter.Node) []*Node {
	var body []*Node
	var pending []*Comment

	for i := 0; i < int(container.NamedChildCount()); i++ {
		child := container.NamedChild(i)
		if child.Type() == tsNodeComment {
			pending = append(pending, c.comment(child))
			continue
		}
		node := c.convert(child)
		if node == nil {
			continue
		}
		if len(pending) > 0 {
			attachLeading(node, pending)
			pending = nil
		}
		body = append(body, node)
	}

	if len(pending) > 0 && len(body) > 0 {
		last := body[len(body)-1]
		last.TrailingComments = append(last.TrailingComments, pending...)
	}

	return body
}

// attachLeading attaches a comment run to node. When the node carries
// decorators the comments sit on the first decorator, since in source they
// precede the decorator, not the declaration keyword. The generator hoists
// them back during comment association.
func attachLeading(node *Node, comments []*Comment) {
	if len(node.Decorators) > 0 {
		first := node.Decorators[0]
		first.LeadingComments = append(first.LeadingComments, comments...)
		return
	}
	node.LeadingComments = append(node.LeadingComments, comments...)
}

// convert maps one tree-sitter node onto the closed shape set. Unknown
// shapes become KindOther with children preserved so traversal stays
// complete. Returns nil only for comment nodes.
func (c *converter) convert(n *sitter.Node) *Node {
	if n == nil {
		return nil
	}

	switch n.Type() {
	case tsNodeComment:
		return nil

	case tsNodeProgram:
		return c.convertProgram(n)

	case tsNodeExportStatement:
		return c.convertExport(n)

	case tsNodeClassDeclaration:
		return c.convertClass(n, KindClassDeclaration)

	case tsNodeClass:
		return c.convertClass(n, KindClassExpression)

	case tsNodeMethodDefinition:
		return c.convertMethod(n)

	case tsNodeFieldDefinition:
		return c.convertField(n)

	case tsNodeFunctionDeclaration:
		return c.convertFunction(n, KindFunctionDeclaration, false)

	case tsNodeGeneratorFunctionDecl:
		return c.convertFunction(n, KindFunctionDeclaration, true)

	case tsNodeFunctionExpression:
		return c.convertFunction(n, KindFunctionExpression, false)

	case tsNodeGeneratorFunction:
		return c.convertFunction(n, KindFunctionExpression, true)

	case tsNodeArrowFunction:
		return c.convertArrowFunction(n)

	case tsNodeLexicalDeclaration, tsNodeVariableDeclaration:
		return c.convertVariableDeclaration(n)

	case tsNodeVariableDeclarator:
		return c.convertDeclarator(n)

	case tsNodeExpressionStatement:
		out := &Node{Kind: KindExpressionStatement, Loc: c.loc(n)}
		if n.NamedChildCount() > 0 {
			out.Expression = c.convert(n.NamedChild(0))
		}
		return out

	case tsNodeAssignmentExpression:
		return &Node{
			Kind:  KindAssignmentExpression,
			Loc:   c.loc(n),
			Left:  c.convert(n.ChildByFieldName("left")),
			Right: c.convert(n.ChildByFieldName("right")),
		}

	case tsNodeNewExpression:
		out := &Node{
			Kind:   KindNewExpression,
			Loc:    c.loc(n),
			Callee: c.convert(n.ChildByFieldName("constructor")),
		}
		out.Arguments = c.convertArguments(n.ChildByFieldName("arguments"))
		return out

	case tsNodeCallExpression:
		out := &Node{
			Kind:   KindCallExpression,
			Loc:    c.loc(n),
			Callee: c.convert(n.ChildByFieldName("function")),
		}
		out.Arguments = c.convertArguments(n.ChildByFieldName("arguments"))
		return out

	case tsNodeMemberExpression:
		obj := c.convert(n.ChildByFieldName("object"))
		prop := c.convert(n.ChildByFieldName("property"))
		out := &Node{Kind: KindMemberExpression, Loc: c.loc(n), Object: obj, Property: prop}
		if prop != nil {
			out.Name = prop.Name
		}
		return out

	case tsNodeParenthesized:
		// See through parentheses: `export default (new Foo())`.
		if n.NamedChildCount() > 0 {
			return c.convert(n.NamedChild(0))
		}
		return &Node{Kind: KindOther, Loc: c.loc(n)}

	case tsNodeIdentifier, tsNodePropertyIdentifier, tsNodePrivatePropertyIdent:
		return &Node{Kind: KindIdentifier, Loc: c.loc(n), Name: c.text(n)}

	case tsNodeThis:
		return &Node{Kind: KindThisExpression, Loc: c.loc(n)}

	case tsNodeString, tsNodeTemplateString, tsNodeNumber, tsNodeTrue,
		tsNodeFalse, tsNodeNull, tsNodeRegex:
		return &Node{Kind: KindLiteral, Loc: c.loc(n), Name: c.text(n)}

	case tsNodeObjectPattern:
		return &Node{Kind: KindObjectPattern, Loc: c.loc(n), Name: c.text(n)}

	case tsNodeAssignmentPattern:
		return &Node{
			Kind:  KindAssignmentPattern,
			Loc:   c.loc(n),
			Left:  c.convert(n.ChildByFieldName("left")),
			Right: c.convert(n.ChildByFieldName("right")),
		}

	case tsNodeRestPattern:
		out := &Node{Kind: KindRestElement, Loc: c.loc(n)}
		if n.NamedChildCount() > 0 {
			out.Argument = c.convert(n.NamedChild(0))
			if out.Argument != nil {
				out.Name = out.Argument.Name
			}
		}
		return out

	case tsNodeReturnStatement:
		out := &Node{Kind: KindReturnStatement, Loc: c.loc(n)}
		if n.NamedChildCount() > 0 {
			out.Argument = c.convert(n.NamedChild(0))
		}
		return out

	case tsNodeDecorator:
		return &Node{Kind: KindDecorator, Loc: c.loc(n), Name: c.text(n)}

	case tsNodeStatementBlock, tsNodeClassBody:
		// Reached only for blocks in expression positions; bodies of known
		// shapes are converted by their owners.
		return &Node{Kind: KindOther, Loc: c.loc(n), Body: c.convertBody(n)}

	default:
		return c.convertOther(n)
	}
}

// convertOther preserves an unclassified node's children for traversal.
func (c *converter) convertOther(n *sitter.Node) *Node {
	out := &Node{Kind: KindOther, Loc: c.loc(n)}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == tsNodeComment {
			continue
		}
		if converted := c.convert(child); converted != nil {
			out.Children = append(out.Children, converted)
		}
	}
	return out
}

// convertArguments converts an arguments list node.
func (c *converter) convertArguments(args *sitter.Node) []*Node {
	if args == nil {
		return nil
	}
	var out []*Node
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child.Type() == tsNodeComment {
			continue
		}
		if converted := c.convert(child); converted != nil {
			out = append(out, converted)
		}
	}
	return out
}

// convertExport maps an export_statement onto one of the three export
// wrapper kinds.
func (c *converter) convertExport(n *sitter.Node) *Node {
	out := &Node{Loc: c.loc(n)}
	isDefault := false
	isStar := false

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case tsNodeDefault:
			isDefault = true
		case tsNodeStar:
			isStar = true
		case tsNodeDecorator:
			out.Decorators = append(out.Decorators, c.convert(child))
		case tsNodeExportClause:
			out.Specifiers = append(out.Specifiers, c.convertExportClause(child)...)
		}
	}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		out.Declaration = c.convert(decl)
	} else if value := n.ChildByFieldName("value"); value != nil {
		out.Declaration = c.convert(value)
	}

	switch {
	case isStar:
		out.Kind = KindExportAllDeclaration
	case isDefault:
		out.Kind = KindExportDefaultDeclaration
	default:
		out.Kind = KindExportNamedDeclaration
	}
	return out
}

// convertExportClause converts `{a, b as c}` into specifier nodes.
func (c *converter) convertExportClause(clause *sitter.Node) []*Node {
	var out []*Node
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		if child.Type() != tsNodeExportSpecifier {
			continue
		}
		spec := &Node{Kind: KindExportSpecifier, Loc: c.loc(child)}
		if name := child.ChildByFieldName("name"); name != nil {
			spec.Name = c.text(name)
		}
		if alias := child.ChildByFieldName("alias"); alias != nil {
			spec.Alias = c.text(alias)
		}
		out = append(out, spec)
	}
	return out
}

// convertClass converts class declarations and expressions.
func (c *converter) convertClass(n *sitter.Node, kind Kind) *Node {
	out := &Node{Kind: kind, Loc: c.loc(n)}

	if name := n.ChildByFieldName("name"); name != nil {
		out.Name = c.text(name)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case tsNodeDecorator:
			out.Decorators = append(out.Decorators, c.convert(child))
		case tsNodeClassHeritage:
			if child.NamedChildCount() > 0 {
				out.SuperClass = c.convert(child.NamedChild(0))
			}
		case tsNodeClassBody:
			out.Body = c.convertClassBody(child)
		}
	}
	return out
}

// convertClassBody converts class members with comment and decorator
// attachment. Decorator nodes that appear as standalone members bind to the
// next method or field.
func (c *converter) convertClassBody(body *sitter.Node) []*Node {
	var members []*Node
	var pendingComments []*Comment
	var pendingDecorators []*Node

	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case tsNodeComment:
			pendingComments = append(pendingComments, c.comment(child))
			continue
		case tsNodeDecorator:
			dec := c.convert(child)
			if len(pendingComments) > 0 && len(pendingDecorators) == 0 {
				dec.LeadingComments = append(dec.LeadingComments, pendingComments...)
				pendingComments = nil
			}
			pendingDecorators = append(pendingDecorators, dec)
			continue
		}

		member := c.convert(child)
		if member == nil {
			continue
		}
		if len(pendingDecorators) > 0 {
			member.Decorators = append(pendingDecorators, member.Decorators...)
			pendingDecorators = nil
		}
		if len(pendingComments) > 0 {
			attachLeading(member, pendingComments)
			pendingComments = nil
		}
		members = append(members, member)
	}

	if len(pendingComments) > 0 && len(members) > 0 {
		last := members[len(members)-1]
		last.TrailingComments = append(last.TrailingComments, pendingComments...)
	}

	return members
}

// convertMethod converts a method_definition into KindClassMethod.
func (c *converter) convertMethod(n *sitter.Node) *Node {
	out := &Node{Kind: KindClassMethod, Loc: c.loc(n), MethodKind: MethodKindMethod}

	if name := n.ChildByFieldName("name"); name != nil {
		out.Name = c.text(name)
		if name.Type() == tsNodeComputedPropertyName {
			out.Computed = true
		}
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case tsNodeStatic:
			out.Static = true
		case tsNodeAsync:
			out.Async = true
		case tsNodeStar:
			out.Generator = true
		case tsNodeGet:
			out.MethodKind = MethodKindGet
		case tsNodeSet:
			out.MethodKind = MethodKindSet
		case tsNodeDecorator:
			out.Decorators = append(out.Decorators, c.convert(child))
		case tsNodeFormalParameters:
			out.Params = c.convertParameters(child)
		case tsNodeStatementBlock:
			out.Body = c.convertBody(child)
		}
	}

	if out.Name == "constructor" && out.MethodKind == MethodKindMethod {
		out.MethodKind = MethodKindConstructor
	}
	return out
}

// convertField converts a field_definition into KindClassProperty.
func (c *converter) convertField(n *sitter.Node) *Node {
	out := &Node{Kind: KindClassProperty, Loc: c.loc(n)}

	if prop := n.ChildByFieldName("property"); prop != nil {
		out.Name = c.text(prop)
		if prop.Type() == tsNodeComputedPropertyName {
			out.Computed = true
		}
	}
	if value := n.ChildByFieldName("value"); value != nil {
		out.Init = c.convert(value)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == tsNodeStatic {
			out.Static = true
		}
	}
	return out
}

// convertFunction converts function declarations and expressions.
func (c *converter) convertFunction(n *sitter.Node, kind Kind, generator bool) *Node {
	out := &Node{Kind: kind, Loc: c.loc(n), Generator: generator}

	if name := n.ChildByFieldName("name"); name != nil {
		out.Name = c.text(name)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case tsNodeAsync:
			out.Async = true
		case tsNodeStar:
			out.Generator = true
		case tsNodeFormalParameters:
			out.Params = c.convertParameters(child)
		case tsNodeStatementBlock:
			out.Body = c.convertBody(child)
		}
	}
	return out
}

// convertArrowFunction converts `(a, b) => ...` including the single-param
// shorthand `a => ...`.
func (c *converter) convertArrowFunction(n *sitter.Node) *Node {
	out := &Node{Kind: KindArrowFunctionExpression, Loc: c.loc(n)}

	if param := n.ChildByFieldName("parameter"); param != nil {
		out.Params = append(out.Params, c.convert(param))
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		out.Params = c.convertParameters(params)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == tsNodeAsync {
			out.Async = true
		}
	}

	if body := n.ChildByFieldName("body"); body != nil {
		if body.Type() == tsNodeStatementBlock {
			out.Body = c.convertBody(body)
		} else if expr := c.convert(body); expr != nil {
			// Expression-bodied arrow: keep the expression reachable.
			out.Body = []*Node{expr}
		}
	}
	return out
}

// convertParameters converts a formal_parameters list.
func (c *converter) convertParameters(params *sitter.Node) []*Node {
	var out []*Node
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		if child.Type() == tsNodeComment {
			continue
		}
		if converted := c.convert(child); converted != nil {
			out = append(out, converted)
		}
	}
	return out
}

// convertVariableDeclaration converts lexical/var declarations.
func (c *converter) convertVariableDeclaration(n *sitter.Node) *Node {
	out := &Node{Kind: KindVariableDeclaration, Loc: c.loc(n), DeclKind: "var"}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case tsNodeLet:
			out.DeclKind = "let"
		case tsNodeConst:
			out.DeclKind = "const"
		case tsNodeVariableDeclarator:
			out.Declarations = append(out.Declarations, c.convertDeclarator(child))
		}
	}
	return out
}

// convertDeclarator converts one `name = init` declarator.
func (c *converter) convertDeclarator(n *sitter.Node) *Node {
	out := &Node{Kind: KindVariableDeclarator, Loc: c.loc(n)}

	if name := n.ChildByFieldName("name"); name != nil {
		out.Name = c.text(name)
	}
	if value := n.ChildByFieldName("value"); value != nil {
		out.Init = c.convert(value)
	}
	return out
}
