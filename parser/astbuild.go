package parser

import (
	"github.com/npillmayer/ladon"
	"github.com/npillmayer/ladon/ast"
)

// AST construction. The sorted tree is walked post-order with an explicit
// stack; a node's AST value is created once all its children have one.
// Rule nodes run their attached actions; rules without actions fall back
// to the manipulations (pass-through, cast, unary→binary, Pass capture).

// buildAST synthesizes the AST of the current top-level construct.
func (p *Parser) buildAST() (*ast.Tree, error) {
	tree := ast.NewTree()
	p.builder.SetTree(tree)

	done := make(map[*appealNode]bool)
	stack := []*appealNode{p.root.sortedChildren[0]}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		childrenDone := true
		for _, child := range node.sortedChildren {
			if !done[child] {
				stack = append(stack, child)
				childrenDone = false
				break
			}
		}
		if !childrenDone {
			continue
		}
		must(node.astNode == nil, "appeal node visited twice during AST build")
		sub, err := p.newTreeNode(node)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			node.astNode = sub
			// overwritten until the last one, which is the real root
			tree.Root = sub
		}
		stack = stack[:len(stack)-1]
		done[node] = true
	}

	if tree.Root == nil {
		return nil, &InternalError{Msg: "construct yielded no AST"}
	}
	p.dumpAST(tree)
	return tree, nil
}

// newTreeNode creates the AST value of one appeal node; its children
// already carry theirs. May legitimately return nil (e.g. punctuation,
// or intermediate rules without actions and without child values).
func (p *Parser) newTreeNode(node *appealNode) (*ast.Node, error) {
	if node.isToken() {
		n := p.builder.TokenNode(node.token)
		if n != nil {
			n.Span = ladon.Span{node.start, node.start}
		}
		return n, nil
	}

	t := node.table
	var sub *ast.Node
	for _, action := range t.Actions {
		params := make([]ast.Param, 0, len(action.Elems))
		for _, elem := range action.Elems {
			child := node.sortedChildByIndex(p.grammar, elem)
			param := ast.EmptyParam()
			if child != nil {
				if child.astNode != nil {
					param = ast.NodeParam(child.astNode)
				} else if child.isToken() {
					param = ast.TokenParam(child.token)
				}
			}
			params = append(params, param)
		}
		// With several actions on a rule, one creates the node and the
		// others add attributes to it.
		var err error
		sub, err = p.builder.Build(action.ID, sub, params)
		if err != nil {
			return nil, err
		}
	}
	if sub != nil {
		sub.Span = ladon.Span{node.start, node.finalMatch}
		return sub, nil
	}

	sub = p.manipulate(node)
	if sub != nil {
		sub.Span = ladon.Span{node.start, node.finalMatch}
	}
	return sub, nil
}

// manipulate handles rules without actions: a single child value passes
// through; two child values are tried as a cast and as a unary→binary
// rewrite; otherwise the values ride up in a generic Pass container.
func (p *Parser) manipulate(node *appealNode) *ast.Node {
	var childTrees []*ast.Node
	for _, child := range node.sortedChildren {
		if child.astNode != nil {
			childTrees = append(childTrees, child.astNode)
		}
	}

	if len(childTrees) == 1 {
		return childTrees[0]
	}
	if len(childTrees) == 2 {
		if cast := p.builder.ManipulateCast(childTrees[0], childTrees[1]); cast != nil {
			return cast
		}
		if bin := p.builder.ManipulateBinary(childTrees[0], childTrees[1]); bin != nil {
			return bin
		}
	}
	if len(childTrees) > 0 {
		return p.builder.PassNode(childTrees)
	}
	return nil
}
