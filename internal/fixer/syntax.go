// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package fixer

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ValidatePython parses source as Python and returns an error describing the
// first syntax problem, or nil when the source parses cleanly. Candidates
// that fail here are rejected before they ever reach the working tree.
func ValidatePython(ctx context.Context, source string) error {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, []byte(source))
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	defer tree.Close()

	if node := firstErrorNode(tree.RootNode(), 0); node != nil {
		point := node.StartPoint()
		if node.IsMissing() {
			return fmt.Errorf("line %d, col %d: missing %s", point.Row+1, point.Column, node.Type())
		}
		return fmt.Errorf("line %d, col %d: syntax error", point.Row+1, point.Column)
	}
	return nil
}

// firstErrorNode walks the tree depth-first for the first ERROR or MISSING
// node. Depth is capped so pathological input cannot blow the stack.
func firstErrorNode(node *sitter.Node, depth int) *sitter.Node {
	if depth > 1000 {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := firstErrorNode(node.Child(i), depth+1); found != nil {
			return found
		}
	}
	return nil
}
