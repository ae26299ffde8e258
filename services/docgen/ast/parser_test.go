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
	"errors"
	"strings"
	"testing"
)

func parse(t *testing.T, source string) *ParseResult {
	t.Helper()
	parser := NewParser()
	result, err := parser.Parse(context.Background(), []byte(source), "test.js")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return result
}

func TestParse_EmptyFile(t *testing.T) {
	result := parse(t, "")
	if result.Program == nil || result.Program.Kind != KindProgram {
		t.Fatal("expected a Program root")
	}
	if len(result.Program.Body) != 0 {
		t.Errorf("expected empty body, got %d statements", len(result.Program.Body))
	}
	if result.Hash == "" {
		t.Error("expected content hash to be set")
	}
	if result.FilePath != "test.js" {
		t.Errorf("unexpected file path %q", result.FilePath)
	}
}

func TestParse_TooLarge(t *testing.T) {
	parser := NewParser(WithMaxFileSize(8))
	_, err := parser.Parse(context.Background(), []byte("let x = 1;"), "big.js")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
	if !IsParseError(err) {
		t.Error("expected a ParseError wrapper")
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	parser := NewParser()
	_, err := parser.Parse(context.Background(), []byte{0xff, 0xfe, 0x00}, "bad.js")
	if !errors.Is(err, ErrInvalidContent) {
		t.Errorf("expected ErrInvalidContent, got %v", err)
	}
}

func TestParse_SyntaxErrorRecovers(t *testing.T) {
	result := parse(t, "function broken( {")
	if len(result.Errors) == 0 {
		t.Error("expected a syntax error note")
	}
	if result.Program == nil {
		t.Error("expected a partial tree despite syntax errors")
	}
}

func TestParse_FunctionDeclaration(t *testing.T) {
	result := parse(t, `
/**
 * Adds numbers.
 */
function add(a, b = 1, ...rest) {
    return a + b;
}
`)
	fn := FindFunctionDeclaration(result.Program, "add")
	if fn == nil {
		t.Fatal("expected to find function 'add'")
	}
	if fn.Kind != KindFunctionDeclaration {
		t.Errorf("unexpected kind %v", fn.Kind)
	}
	if len(fn.Params) != 3 {
		t.Fatalf("expected 3 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Kind != KindIdentifier || fn.Params[0].Name != "a" {
		t.Errorf("unexpected first param: %+v", fn.Params[0])
	}
	if fn.Params[1].Kind != KindAssignmentPattern {
		t.Errorf("expected assignment pattern, got %v", fn.Params[1].Kind)
	}
	if fn.Params[2].Kind != KindRestElement || fn.Params[2].Name != "rest" {
		t.Errorf("unexpected rest param: %+v", fn.Params[2])
	}
	if len(fn.LeadingComments) != 1 || !strings.Contains(fn.LeadingComments[0].Text, "Adds numbers") {
		t.Errorf("doc comment not attached: %v", fn.LeadingComments)
	}
}

func TestParse_AsyncGenerator(t *testing.T) {
	result := parse(t, `
async function load() {}
function* ids() {}
`)
	load := FindFunctionDeclaration(result.Program, "load")
	if load == nil || !load.Async {
		t.Error("expected 'load' to be async")
	}
	ids := FindFunctionDeclaration(result.Program, "ids")
	if ids == nil || !ids.Generator {
		t.Error("expected 'ids' to be a generator")
	}
}

func TestParse_ClassShapes(t *testing.T) {
	result := parse(t, `
class Widget extends Base {
    count = 0;

    constructor(name) {
        this.name = name;
    }

    render() {}

    static create() {}

    get size() { return this.count; }

    set size(v) { this.count = v; }
}
`)
	class := FindClassDeclaration(result.Program, "Widget")
	if class == nil {
		t.Fatal("expected to find class 'Widget'")
	}
	if class.SuperClass == nil || class.SuperClass.Name != "Base" {
		t.Error("superclass not captured")
	}

	byName := map[string]*Node{}
	for _, member := range class.Body {
		byName[member.Name+"/"+member.MethodKind] = member
	}

	if f, ok := byName["count/"]; !ok || f.Kind != KindClassProperty {
		t.Error("field 'count' not converted as a class property")
	}
	if m, ok := byName["constructor/constructor"]; !ok || m.Kind != KindClassMethod {
		t.Error("constructor not converted")
	}
	if m, ok := byName["render/method"]; !ok || len(m.Params) != 0 {
		t.Error("method 'render' not converted")
	}
	if m, ok := byName["create/method"]; !ok || !m.Static {
		t.Error("static method 'create' not marked static")
	}
	if _, ok := byName["size/get"]; !ok {
		t.Error("getter not converted")
	}
	if _, ok := byName["size/set"]; !ok {
		t.Error("setter not converted")
	}
}

func TestParse_VariableDeclarations(t *testing.T) {
	result := parse(t, "const a = 1, b = () => 2;\nlet c;")
	if len(result.Program.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(result.Program.Body))
	}

	decl := result.Program.Body[0]
	if decl.Kind != KindVariableDeclaration || decl.DeclKind != "const" {
		t.Fatalf("unexpected declaration: %+v", decl)
	}
	if len(decl.Declarations) != 2 {
		t.Fatalf("expected 2 declarators, got %d", len(decl.Declarations))
	}
	if decl.Declarations[0].Name != "a" || decl.Declarations[0].Init == nil ||
		decl.Declarations[0].Init.Kind != KindLiteral {
		t.Errorf("unexpected first declarator: %+v", decl.Declarations[0])
	}
	if decl.Declarations[1].Init == nil ||
		decl.Declarations[1].Init.Kind != KindArrowFunctionExpression {
		t.Errorf("arrow initializer not converted: %+v", decl.Declarations[1])
	}

	bare := result.Program.Body[1]
	if bare.DeclKind != "let" || bare.Declarations[0].Init != nil {
		t.Errorf("unexpected bare declaration: %+v", bare)
	}
}

func TestParse_ExportForms(t *testing.T) {
	result := parse(t, `
export default class Widget {}
export function helper() {}
export { a, b as c };
export * from './other.js';
`)
	body := result.Program.Body
	if len(body) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(body))
	}

	def := body[0]
	if def.Kind != KindExportDefaultDeclaration {
		t.Fatalf("unexpected kind %v", def.Kind)
	}
	if def.Declaration == nil || !def.Declaration.IsClass() || def.Declaration.Name != "Widget" {
		t.Errorf("default declaration not captured: %+v", def.Declaration)
	}

	named := body[1]
	if named.Kind != KindExportNamedDeclaration || named.Declaration == nil ||
		named.Declaration.Kind != KindFunctionDeclaration {
		t.Errorf("named export declaration not captured: %+v", named)
	}

	specs := body[2]
	if specs.Kind != KindExportNamedDeclaration || len(specs.Specifiers) != 2 {
		t.Fatalf("specifiers not captured: %+v", specs)
	}
	if specs.Specifiers[0].Name != "a" || specs.Specifiers[0].Alias != "" {
		t.Errorf("unexpected first specifier: %+v", specs.Specifiers[0])
	}
	if specs.Specifiers[1].Name != "b" || specs.Specifiers[1].Alias != "c" {
		t.Errorf("unexpected aliased specifier: %+v", specs.Specifiers[1])
	}

	if body[3].Kind != KindExportAllDeclaration {
		t.Errorf("export * not captured: %v", body[3].Kind)
	}
}

func TestParse_ExportDefaultNewExpression(t *testing.T) {
	result := parse(t, "export default new Registry();")
	def := result.Program.Body[0]
	if def.Kind != KindExportDefaultDeclaration {
		t.Fatalf("unexpected kind %v", def.Kind)
	}
	if def.Declaration == nil || def.Declaration.Kind != KindNewExpression {
		t.Fatalf("new expression not captured: %+v", def.Declaration)
	}
	if ConstructorName(def.Declaration.Callee) != "Registry" {
		t.Errorf("unexpected constructor name for %+v", def.Declaration.Callee)
	}
}

func TestParse_CommentRunsAttachToNextStatement(t *testing.T) {
	result := parse(t, `
// stray note
/** Old description. */
/** Current description. */
let value = 1;
`)
	decl := result.Program.Body[0]
	if len(decl.LeadingComments) != 3 {
		t.Fatalf("expected 3 leading comments, got %d", len(decl.LeadingComments))
	}
	last := decl.LeadingComments[2]
	if !strings.Contains(last.Text, "Current description") {
		t.Errorf("comment order lost: %q", last.Text)
	}
	if decl.LeadingComments[0].Kind != CommentLine {
		t.Error("line comment kind not preserved")
	}
}

func TestParse_TrailingCommentsOnLastStatement(t *testing.T) {
	result := parse(t, `
let first = 1;
let last = 2;
/** Afterthought. */
`)
	body := result.Program.Body
	if len(body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(body))
	}
	if len(body[0].TrailingComments) != 0 {
		t.Error("first statement should carry no trailing comments")
	}
	if len(body[1].TrailingComments) != 1 ||
		!strings.Contains(body[1].TrailingComments[0].Text, "Afterthought") {
		t.Errorf("trailing comment not attached: %v", body[1].TrailingComments)
	}
}

func TestParse_DecoratorCarriesLeadingComments(t *testing.T) {
	result := parse(t, `
/** Documented component. */
@register
class Comp {}
`)
	class := FindClassDeclaration(result.Program, "Comp")
	if class == nil {
		t.Fatal("expected to find class 'Comp'")
	}
	if len(class.Decorators) != 1 {
		t.Fatalf("expected 1 decorator, got %d", len(class.Decorators))
	}
	deco := class.Decorators[0]
	if len(deco.LeadingComments) != 1 ||
		!strings.Contains(deco.LeadingComments[0].Text, "Documented component") {
		t.Errorf("doc comment should sit on the decorator: %v", deco.LeadingComments)
	}
	if len(class.LeadingComments) != 0 {
		t.Errorf("class should not also carry the comment: %v", class.LeadingComments)
	}
}

func TestParse_ParenthesizedExpressionUnwrapped(t *testing.T) {
	result := parse(t, "const f = (function () {});")
	decl := result.Program.Body[0]
	init := decl.Declarations[0].Init
	if init == nil || init.Kind != KindFunctionExpression {
		t.Errorf("parenthesized function not seen through: %+v", init)
	}
}

func TestParse_ThisAssignment(t *testing.T) {
	result := parse(t, `
class A {
    constructor() {
        this.ready = true;
    }
}
`)
	class := FindClassDeclaration(result.Program, "A")
	if class == nil {
		t.Fatal("expected class 'A'")
	}
	ctor := class.Body[0]
	stmt := ctor.Body[0]
	if stmt.Kind != KindExpressionStatement || stmt.Expression == nil {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
	assign := stmt.Expression
	if assign.Kind != KindAssignmentExpression {
		t.Fatalf("expected assignment, got %v", assign.Kind)
	}
	if assign.Left == nil || assign.Left.Kind != KindMemberExpression ||
		assign.Left.Object == nil || assign.Left.Object.Kind != KindThisExpression ||
		assign.Left.Property == nil || assign.Left.Property.Name != "ready" {
		t.Errorf("this.ready target not converted: %+v", assign.Left)
	}
}

func TestParse_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	parser := NewParser()
	if _, err := parser.Parse(ctx, []byte("let x = 1;"), "x.js"); err == nil {
		t.Error("expected error for canceled context")
	}
}
