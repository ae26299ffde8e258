// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tags

import (
	"testing"

	"github.com/AleutianAI/AleutianDocs/services/docgen/ast"
)

func blockComment(text string) *ast.Comment {
	return &ast.Comment{Kind: ast.CommentBlock, Text: text}
}

func TestIsDocComment(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"/** doc */", true},
		{"/**\n * multi\n */", true},
		{"/* plain block */", false},
		{"/*** triple star */", false},
		{"// line", false},
		{"/**/", false},
	}
	for _, tc := range cases {
		if got := IsDocComment(tc.text); got != tc.want {
			t.Errorf("IsDocComment(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestCommentValue_StripsGutter(t *testing.T) {
	c := blockComment("/**\n * First line.\n * Second line.\n */")
	value, ok := CommentValue(c)
	if !ok {
		t.Fatal("expected a documentation comment")
	}
	if value != "First line.\nSecond line." {
		t.Errorf("unexpected value: %q", value)
	}
}

func TestCommentValue_RejectsNonDoc(t *testing.T) {
	if _, ok := CommentValue(blockComment("/* nope */")); ok {
		t.Error("plain block comment should not qualify")
	}
	if _, ok := CommentValue(&ast.Comment{Kind: ast.CommentLine, Text: "// x"}); ok {
		t.Error("line comment should not qualify")
	}
	if _, ok := CommentValue(nil); ok {
		t.Error("nil comment should not qualify")
	}
}

func TestParse_DescBecomesTag(t *testing.T) {
	list := Parse(blockComment("/**\n * Parses things.\n * @param {string} input - raw text\n * @returns {number}\n */"))
	if len(list) != 3 {
		t.Fatalf("expected 3 tags, got %d: %v", len(list), list)
	}
	if list[0].Name != TagDesc || list[0].Value != "Parses things." {
		t.Errorf("unexpected desc tag: %+v", list[0])
	}
	if list[1].Name != TagParam {
		t.Errorf("expected @param, got %q", list[1].Name)
	}
	if list[2].Name != TagReturns || list[2].Value != "{number}" {
		t.Errorf("unexpected returns tag: %+v", list[2])
	}
}

func TestParse_InlineLinkDoesNotSplit(t *testing.T) {
	list := Parse(blockComment("/** See {@link Widget} for details. */"))
	if len(list) != 1 {
		t.Fatalf("expected 1 tag, got %d: %v", len(list), list)
	}
	if list[0].Name != TagDesc {
		t.Errorf("expected @desc, got %q", list[0].Name)
	}
	if list[0].Value != "See {@link Widget} for details." {
		t.Errorf("inline link was split: %q", list[0].Value)
	}
}

func TestParse_EmailNotATag(t *testing.T) {
	// An @ glued to preceding text is not a tag boundary.
	list := Parse(blockComment("/** Contact dev@example.com with questions. */"))
	if len(list) != 1 || list[0].Name != TagDesc {
		t.Fatalf("expected single @desc tag, got %v", list)
	}
}

func TestParse_DuplicatesPreserved(t *testing.T) {
	list := Parse(blockComment("/**\n * @param {string} a\n * @param {string} b\n */"))
	if len(list) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(list))
	}
	for _, tag := range list {
		if tag.Name != TagParam {
			t.Errorf("expected @param, got %q", tag.Name)
		}
	}
}

func TestParse_NonDocReturnsNil(t *testing.T) {
	if list := Parse(blockComment("/* @typedef {Object} X */")); list != nil {
		t.Errorf("expected nil for plain block comment, got %v", list)
	}
}

func TestFind_LastWins(t *testing.T) {
	list := []Tag{
		{Name: TagTypedef, Value: "{Object} First"},
		{Name: TagExternal, Value: "Second"},
		{Name: TagTypedef, Value: "{Object} Third"},
	}
	tag, ok := Find(list, TagTypedef)
	if !ok {
		t.Fatal("expected to find @typedef")
	}
	if tag.Value != "{Object} Third" {
		t.Errorf("expected the last @typedef, got %q", tag.Value)
	}
	if !Has(list, TagExternal) {
		t.Error("expected @external to be present")
	}
	if Has(list, TagTest) {
		t.Error("did not expect @test")
	}
}

func TestUndocumentedComment(t *testing.T) {
	list := Parse(UndocumentedComment())
	if len(list) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(list))
	}
	if list[0].Name != TagUndocument {
		t.Errorf("expected %s, got %q", TagUndocument, list[0].Name)
	}
}
