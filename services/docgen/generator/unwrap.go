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
)

// unwrapExport strips an export wrapper, returning the wrapped declaration
// with comments merged from both nodes.
//
// Description:
//
//	Merged leading order is: the declaration's own comments, then comments
//	attached to its first decorator, then the wrapper's. Trailing comments
//	append wrapper-after-declaration. Specifier-only and re-export forms
//	have no declaration and yield nil. The declaration keeps the wrapper as
//	its traversal parent in the side-table, so last-statement bookkeeping
//	and upward class searches keep working.
func unwrapExport(n *ast.Node) *ast.Node {
	if n == nil || !n.IsExportWrapper() {
		return nil
	}
	decl := n.Declaration
	if decl == nil {
		return nil
	}

	merged := make([]*ast.Comment, 0,
		len(decl.LeadingComments)+len(n.LeadingComments))
	merged = append(merged, decl.LeadingComments...)
	if len(decl.Decorators) > 0 && decl.Decorators[0] != nil {
		merged = append(merged, decl.Decorators[0].LeadingComments...)
	}
	merged = append(merged, n.LeadingComments...)
	decl.LeadingComments = merged

	if len(n.TrailingComments) > 0 {
		decl.TrailingComments = append(decl.TrailingComments, n.TrailingComments...)
	}

	return decl
}
