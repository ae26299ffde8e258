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
	"github.com/AleutianAI/AleutianDocs/services/docgen/ast"
	"github.com/AleutianAI/AleutianDocs/services/docgen/tags"
)

// filterDocComments keeps only documentation comments, dropping line
// comments and plain block comments.
func filterDocComments(list []*ast.Comment) []*ast.Comment {
	var out []*ast.Comment
	for _, c := range list {
		if c == nil || c.Kind != ast.CommentBlock {
			continue
		}
		if tags.IsDocComment(c.Text) {
			out = append(out, c)
		}
	}
	return out
}

// leadingDocComments returns the ordered comment list to process for a
// node, guaranteed non-empty: when the node carries no documentation
// comments at all, a single placeholder comment tagged @_undocument stands
// in, so the node still produces exactly one doc object.
func leadingDocComments(n *ast.Node) []*ast.Comment {
	filtered := filterDocComments(n.LeadingComments)
	if len(filtered) == 0 {
		return []*ast.Comment{tags.UndocumentedComment()}
	}
	return filtered
}

// trailingDocComments returns a node's documentation trailing comments.
// No placeholder here: absent trailing comments mean nothing to process.
func trailingDocComments(n *ast.Node) []*ast.Comment {
	return filterDocComments(n.TrailingComments)
}

// hoistDecoratorComments moves a decorated node's comments into place: the
// parser attaches a decorated statement's comments to its first decorator,
// so a node with decorators but no comments of its own documents through
// the decorator's comments.
func hoistDecoratorComments(n *ast.Node) {
	if n == nil || len(n.LeadingComments) > 0 || len(n.Decorators) == 0 {
		return
	}
	first := n.Decorators[0]
	if first != nil && len(first.LeadingComments) > 0 {
		n.LeadingComments = first.LeadingComments
	}
}

// commentCarrier fabricates the zero-content node that non-final and
// trailing comments classify against. It shares the real node's parent so
// tag-driven virtual entries (typedef, external, test) attach to the right
// scope, but has no shape for the classifier to match otherwise.
func (rc *runContext) commentCarrier(source *ast.Node, c *ast.Comment) *ast.Node {
	carrier := &ast.Node{
		Kind:            ast.KindOther,
		Loc:             c.Loc,
		LeadingComments: []*ast.Comment{c},
		Virtual:         true,
	}
	rc.adopt(carrier, rc.parentOf(source))
	return carrier
}
