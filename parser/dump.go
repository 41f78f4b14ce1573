package parser

import (
	"fmt"

	"github.com/npillmayer/ladon/ast"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"
)

// Tree dumps for debugging, rendered with pterm. Active only at trace
// level Debug.

func dumpEnabled() bool {
	return tracer().GetTraceLevel() >= tracing.LevelDebug
}

// dumpSortOut renders a sorted sub-tree.
func (p *Parser) dumpSortOut(root *appealNode, phase string) {
	if !dumpEnabled() {
		return
	}
	pterm.Println("======= " + phase + " =======")
	ll := appealLeveledList(root, pterm.LeveledList{}, 0)
	node := pterm.NewTreeFromLeveledList(ll)
	pterm.DefaultTree.WithRoot(node).Render()
}

func appealLeveledList(node *appealNode, ll pterm.LeveledList, level int) pterm.LeveledList {
	text := node.String()
	if node.isTable() {
		text = fmt.Sprintf("%s final=%d", text, node.finalMatch)
		if node.simplifiedIndex > 0 {
			text = fmt.Sprintf("%s idx=%d", text, node.simplifiedIndex)
		}
	}
	ll = append(ll, pterm.LeveledListItem{Level: level, Text: text})
	for _, child := range node.sortedChildren {
		ll = appealLeveledList(child, ll, level+1)
	}
	return ll
}

// dumpAST renders a finished AST tree.
func (p *Parser) dumpAST(tree *ast.Tree) {
	if !dumpEnabled() {
		return
	}
	ll := astLeveledList(tree.Root, pterm.LeveledList{}, 0)
	node := pterm.NewTreeFromLeveledList(ll)
	pterm.DefaultTree.WithRoot(node).Render()
}

func astLeveledList(n *ast.Node, ll pterm.LeveledList, level int) pterm.LeveledList {
	if n == nil {
		return ll
	}
	ll = append(ll, pterm.LeveledListItem{Level: level, Text: n.String()})
	for _, link := range []*ast.Node{n.Left, n.Right, n.Opnd, n.Expr, n.DestType,
		n.Cond, n.Init, n.Update, n.Body, n.Else} {
		ll = astLeveledList(link, ll, level+1)
	}
	for _, child := range n.Children {
		ll = astLeveledList(child, ll, level+1)
	}
	return ll
}
