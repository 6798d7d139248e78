// Package testutil provides helper functions for testing oopscan components
package testutil

import (
	"testing"

	"github.com/ludo-technologies/oopscan/internal/parser"
)

// ParsePython parses Python source into the internal AST, failing the test
// on syntax errors
func ParsePython(t *testing.T, source string) *parser.Node {
	t.Helper()
	tree, err := parser.ParseSource("test.py", []byte(source))
	if err != nil {
		t.Fatalf("Failed to parse test code: %v", err)
	}
	return tree
}

// FindFunction finds a function definition by name in the AST
func FindFunction(tree *parser.Node, name string) *parser.Node {
	var found *parser.Node
	tree.Walk(func(n *parser.Node) bool {
		if n.Type == parser.NodeFunctionDef && n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindClass finds a class definition by name in the AST
func FindClass(tree *parser.Node, name string) *parser.Node {
	var found *parser.Node
	tree.Walk(func(n *parser.Node) bool {
		if n.Type == parser.NodeClassDef && n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}
