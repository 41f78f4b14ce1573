package ast

import (
	"fmt"

	"github.com/npillmayer/ladon"
)

// NodeKind is the tag of an AST node. The set is closed; front-ends do
// not add kinds.
type NodeKind int8

const (
	KindNA NodeKind = iota
	KindIdentifier
	KindLiteral
	KindUnaryOp
	KindBinOp
	KindParenthesis
	KindCast
	KindBlock
	KindClass
	KindFunction
	KindFor
	KindWhile
	KindDoLoop
	KindSwitch
	KindSwitchCase
	KindSwitchLabel
	KindCall
	KindNew
	KindReturn
	KindBreak
	KindCondBranch
	KindDecl
	KindVarList
	KindPass
)

func (k NodeKind) String() string {
	names := map[NodeKind]string{
		KindIdentifier:  "Identifier",
		KindLiteral:     "Literal",
		KindUnaryOp:     "UnaryOp",
		KindBinOp:       "BinOp",
		KindParenthesis: "Parenthesis",
		KindCast:        "Cast",
		KindBlock:       "Block",
		KindClass:       "Class",
		KindFunction:    "Function",
		KindFor:         "For",
		KindWhile:       "While",
		KindDoLoop:      "DoLoop",
		KindSwitch:      "Switch",
		KindSwitchCase:  "SwitchCase",
		KindSwitchLabel: "SwitchLabel",
		KindCall:        "Call",
		KindNew:         "New",
		KindReturn:      "Return",
		KindBreak:       "Break",
		KindCondBranch:  "CondBranch",
		KindDecl:        "Decl",
		KindVarList:     "VarList",
		KindPass:        "Pass",
	}
	if n, ok := names[k]; ok {
		return n
	}
	return "N.A."
}

// Node is one AST node. Kind selects which fields are meaningful; unused
// fields stay zero. Nodes are created through Tree.NewNode and owned by
// their tree.
type Node struct {
	Kind NodeKind
	Span ladon.Span `hash:"-"` // token extent, informational

	Name string        // identifier, declared name, label
	Lit  ladon.Literal // literal payload
	Opr  OprID         // unary/binary operator

	Left, Right *Node   // binary operands
	Opnd        *Node   // unary operand
	Expr        *Node   // parenthesis/cast/return/switch expression
	DestType    *Node   // cast target type
	Cond        *Node   // condition of CondBranch/For/While/DoLoop
	Init        *Node   // For init
	Update      *Node   // For update
	Body        *Node   // loop/function/class/branch body
	Else        *Node   // CondBranch alternative
	Children    []*Node // ordered payload of containers (Block, Call args, Pass, …)
}

// IsPass returns true for the generic pass-through container.
func (n *Node) IsPass() bool { return n.Kind == KindPass }

// IsParenthesis returns true for a parenthesised expression.
func (n *Node) IsParenthesis() bool { return n.Kind == KindParenthesis }

// IsUnaryOp returns true for a unary operation node.
func (n *Node) IsUnaryOp() bool { return n.Kind == KindUnaryOp }

// AddChild appends a child node, flattening Pass containers: the children
// of a Pass are adopted directly, the Pass wrapper is dropped.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	if child.IsPass() {
		for _, c := range child.Children {
			n.AddChild(c)
		}
		return
	}
	n.Children = append(n.Children, child)
}

func (n *Node) String() string {
	switch n.Kind {
	case KindIdentifier:
		return fmt.Sprintf("Identifier(%s)", n.Name)
	case KindLiteral:
		return fmt.Sprintf("Literal(%v)", n.Lit)
	case KindUnaryOp, KindBinOp:
		return fmt.Sprintf("%s(%s)", n.Kind, n.Opr)
	}
	return n.Kind.String()
}

// Tree owns the AST of one top-level construct. Nodes are allocated from
// the tree's arena and die with it.
type Tree struct {
	Root  *Node
	arena []*Node
}

// NewTree creates an empty AST tree.
func NewTree() *Tree {
	return &Tree{}
}

// NewNode allocates a node of the given kind in the tree's arena.
func (t *Tree) NewNode(kind NodeKind) *Node {
	n := &Node{Kind: kind}
	t.arena = append(t.arena, n)
	return n
}

// NodeCount returns the number of nodes allocated in the tree.
func (t *Tree) NodeCount() int { return len(t.arena) }
