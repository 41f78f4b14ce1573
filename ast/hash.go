package ast

import (
	"github.com/cnf/structhash"
)

// Hash returns a structural kind+fields hash of a subtree. Spans are
// excluded, so two parses of the same token run hash equally regardless
// of their position in the input.
func Hash(n *Node) string {
	h, err := structhash.Hash(n, 1)
	if err != nil {
		tracer().Errorf("hashing AST node: %v", err)
		return ""
	}
	return h
}

// Equal compares two subtrees structurally.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return Hash(a) == Hash(b)
}
