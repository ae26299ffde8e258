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

// WalkResult tells Walk how to proceed after visiting a node.
type WalkResult int

const (
	// WalkContinue descends into the node's children.
	WalkContinue WalkResult = iota

	// WalkSkipChildren visits the node's next sibling without descending.
	WalkSkipChildren

	// WalkStop abandons the traversal entirely.
	WalkStop
)

// VisitFunc is called once per node during a walk. parent is nil for the
// root. Returning WalkSkipChildren prunes the node's entire subtree;
// returning WalkStop ends the walk.
type VisitFunc func(node, parent *Node) WalkResult

// Walk performs a depth-first pre-order traversal from root.
//
// Description:
//
//	Every reachable node is visited exactly once, parents before children,
//	siblings in ChildNodes order. The walk itself keeps no state between
//	calls; callers that need parent chains or visited sets maintain their
//	own side-tables from the (node, parent) pairs they observe.
//
// Thread Safety:
//
//	Safe for concurrent use on distinct trees. A single tree must not be
//	mutated during a walk.
func Walk(root *Node, visit VisitFunc) {
	if root == nil || visit == nil {
		return
	}
	walk(root, nil, visit)
}

func walk(node, parent *Node, visit VisitFunc) WalkResult {
	switch visit(node, parent) {
	case WalkSkipChildren:
		return WalkContinue
	case WalkStop:
		return WalkStop
	}
	for _, child := range node.ChildNodes() {
		if walk(child, node, visit) == WalkStop {
			return WalkStop
		}
	}
	return WalkContinue
}
