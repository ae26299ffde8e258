// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tags parses documentation comments into ordered tag lists.
//
// A documentation comment is a block comment opening with exactly `/**`.
// Its body is normalized (gutter stars removed) and split into tags; text
// before the first tag becomes a synthetic @desc tag so every comment
// yields a uniform tag list. Tag order always follows source order, and
// duplicate tag names are preserved (multiple @param entries are the norm).
package tags

import (
	"strings"

	"github.com/AleutianAI/AleutianDocs/services/docgen/ast"
)

// Well-known tag names the generator inspects directly.
const (
	// TagDesc holds untagged leading description text.
	TagDesc = "@desc"

	// TagUndocument marks the placeholder comment synthesized for nodes
	// that carry no documentation at all.
	TagUndocument = "@_undocument"

	// TagTypedef declares a virtual type definition.
	TagTypedef = "@typedef"

	// TagExternal declares a virtual external reference.
	TagExternal = "@external"

	// TagTest marks a test block.
	TagTest = "@test"

	// TagIgnore excludes a construct (or an export statement) from
	// visibility reconciliation.
	TagIgnore = "@ignore"

	// TagParam documents one parameter of a callable.
	TagParam = "@param"

	// TagReturn and TagReturns document a callable's return value.
	TagReturn  = "@return"
	TagReturns = "@returns"

	// TagType declares a variable/property/member type explicitly.
	TagType = "@type"

	// TagExport forces export visibility without export syntax.
	TagExport = "@export"

	// TagAsync, TagStatic and TagKind override the flags otherwise read
	// from the node shape.
	TagAsync  = "@async"
	TagStatic = "@static"
	TagKind   = "@kind"
)

// Tag is one parsed `@name value` entry of a documentation comment.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// IsDocComment reports whether raw comment text is a documentation comment.
//
// Only block comments opening with exactly `/**` qualify; `/*`, `//` and
// `/***` openings do not.
func IsDocComment(text string) bool {
	if !strings.HasPrefix(text, "/**") {
		return false
	}
	if strings.HasPrefix(text, "/***") {
		return false
	}
	// `/**/` has no body and is not a doc comment.
	return len(text) > 4 || !strings.HasPrefix(text, "/**/")
}

// CommentValue returns the normalized body of a documentation comment.
//
// Description:
//
//	Strips the `/**` and `*/` delimiters and the ` * ` gutter prefix from
//	every line. Returns ok=false when the comment is not a documentation
//	comment, which callers treat as "no comment at all".
func CommentValue(comment *ast.Comment) (string, bool) {
	if comment == nil || comment.Kind != ast.CommentBlock {
		return "", false
	}
	if !IsDocComment(comment.Text) {
		return "", false
	}

	body := strings.TrimPrefix(comment.Text, "/**")
	body = strings.TrimSuffix(body, "*/")
	body = strings.ReplaceAll(body, "\r\n", "\n")

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		line = strings.TrimLeft(line, " \t")
		if strings.HasPrefix(line, "*") {
			line = strings.TrimPrefix(line, "*")
			line = strings.TrimPrefix(line, " ")
		}
		lines[i] = line
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), true
}

// Parse splits a documentation comment into its ordered tag list.
//
// Description:
//
//	Leading untagged text is emitted as a @desc tag. A new tag starts at an
//	`@` that is preceded by start-of-text or whitespace, followed by a word
//	character, and not nested inside braces — so inline `{@link ...}`
//	references stay inside the surrounding tag's value. Returns nil when
//	the comment is not a documentation comment.
//
// Example:
//
//	/**
//	 * Parses things.
//	 * @param {string} input - the raw text
//	 * @returns {number}
//	 */
//
// yields [{@desc "Parses things."}, {@param "{string} input - the raw text"},
// {@returns "{number}"}].
func Parse(comment *ast.Comment) []Tag {
	value, ok := CommentValue(comment)
	if !ok {
		return nil
	}
	if value == "" {
		return nil
	}
	if value[0] != '@' {
		value = TagDesc + " " + value
	}
	return splitTags(value)
}

// splitTags scans the normalized comment body and cuts it at tag
// boundaries, tracking brace depth so inline tags never split.
func splitTags(value string) []Tag {
	var cuts []int
	depth := 0
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '@':
			if depth > 0 {
				continue
			}
			if i > 0 && !isSpace(value[i-1]) {
				continue
			}
			if i+1 < len(value) && isWordChar(value[i+1]) {
				cuts = append(cuts, i)
			}
		}
	}

	if len(cuts) == 0 || cuts[0] != 0 {
		cuts = append([]int{0}, cuts...)
	}

	out := make([]Tag, 0, len(cuts))
	for i, start := range cuts {
		end := len(value)
		if i+1 < len(cuts) {
			end = cuts[i+1]
		}
		chunk := strings.TrimSpace(value[start:end])
		if chunk == "" {
			continue
		}
		name := chunk
		rest := ""
		if idx := strings.IndexFunc(chunk, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }); idx >= 0 {
			name = chunk[:idx]
			rest = strings.TrimSpace(chunk[idx+1:])
		}
		out = append(out, Tag{Name: name, Value: rest})
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isWordChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// UndocumentedComment fabricates the placeholder comment used when a node
// has no documentation comments at all. Parsing it yields exactly one
// @_undocument tag.
func UndocumentedComment() *ast.Comment {
	return &ast.Comment{
		Kind: ast.CommentBlock,
		Text: "/** " + TagUndocument + " */",
	}
}

// Find returns the last tag with the given name, preserving the
// last-one-wins convention used throughout classification.
func Find(list []Tag, name string) (Tag, bool) {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Name == name {
			return list[i], true
		}
	}
	return Tag{}, false
}

// Has reports whether any tag with the given name is present.
func Has(list []Tag, name string) bool {
	_, ok := Find(list, name)
	return ok
}
