package ast

import (
	"fmt"

	"github.com/npillmayer/ladon"
)

// Param is one parameter of a rule action: either empty (the grammar slot
// had no sorted child), a token, or an AST node.
type Param struct {
	Empty  bool
	IsNode bool
	Node   *Node
	Token  *ladon.Token
}

// TokenParam wraps a token into a parameter.
func TokenParam(t *ladon.Token) Param { return Param{Token: t} }

// NodeParam wraps an AST node into a parameter.
func NodeParam(n *Node) Param { return Param{IsNode: true, Node: n} }

// EmptyParam is the parameter for an absent grammar slot.
func EmptyParam() Param { return Param{Empty: true} }

// ActionError reports a mismatch between an action id and the parameters
// it received. It indicates a grammar/action mismatch — a build-time bug,
// never a user-input bug.
type ActionError struct {
	ID     int
	Reason string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %d: %s", e.ID, e.Reason)
}

func actionErr(id int, format string, args ...interface{}) error {
	return &ActionError{ID: id, Reason: fmt.Sprintf(format, args...)}
}

// ActionFn builds or mutates an AST node from action parameters. A rule
// may carry several actions; typically one creates the node and the
// others add attributes to the node created before (passed as last).
type ActionFn func(b *Builder, last *Node, params []Param) (*Node, error)

// Builder dispatches rule actions by dense id and creates token leaf
// nodes. The dispatch table is language-specific and provided by the
// embedding front-end; the parser only invokes by id.
type Builder struct {
	actions []ActionFn
	tree    *Tree
}

// NewBuilder creates a builder around a static action dispatch table.
func NewBuilder(actions []ActionFn) *Builder {
	return &Builder{actions: actions}
}

// SetTree directs subsequent node allocation into tree. The parser calls
// this once per top-level construct.
func (b *Builder) SetTree(t *Tree) { b.tree = t }

// Tree returns the tree currently being built.
func (b *Builder) Tree() *Tree { return b.tree }

// NewNode allocates a node in the current tree.
func (b *Builder) NewNode(kind NodeKind) *Node { return b.tree.NewNode(kind) }

// Build invokes the action with the given id. last is the node created by
// a preceding action of the same rule, or nil.
func (b *Builder) Build(id int, last *Node, params []Param) (*Node, error) {
	if id < 0 || id >= len(b.actions) || b.actions[id] == nil {
		return nil, actionErr(id, "no such action")
	}
	node, err := b.actions[id](b, last, params)
	if err != nil {
		if ae, ok := err.(*ActionError); ok {
			ae.ID = id
		}
		return nil, err
	}
	return node, nil
}

// TokenNode creates an AST leaf for a token: identifiers and literals get
// nodes, the keyword 'this' becomes a literal, punctuation yields nil.
func (b *Builder) TokenNode(t *ladon.Token) *Node {
	switch {
	case t.IsIdentifier():
		n := b.NewNode(KindIdentifier)
		n.Name = t.Name
		return n
	case t.IsLiteral():
		n := b.NewNode(KindLiteral)
		n.Lit = t.Lit
		return n
	case t.IsKeyword() && t.Name == "this":
		n := b.NewNode(KindLiteral)
		n.Lit = ladon.Literal{Kind: ladon.LitThis}
		return n
	}
	return nil
}

// --- Manipulations ---------------------------------------------------------

// When a rule has no action and leaves exactly two child trees, the
// builder tries a couple of specific rewritings before falling back to a
// Pass container.

// ManipulateCast rewrites a parenthesised type followed by an expression
// into a cast. Returns nil if the shape does not fit.
func (b *Builder) ManipulateCast(childA, childB *Node) *Node {
	if childA.IsParenthesis() {
		n := b.NewNode(KindCast)
		n.DestType = childA.Expr
		n.Expr = childB
		return n
	}
	return nil
}

// ManipulateBinary rewrites an expression followed by a unary operation
// whose operator also has binary semantics into a binary operation.
// Returns nil if the shape does not fit.
func (b *Builder) ManipulateBinary(childA, childB *Node) *Node {
	if childB.IsUnaryOp() {
		prop := OprProperty(childB.Opr)
		if prop&Binary != 0 && prop&Unary != 0 {
			tracer().Debugf("convert unary --> binary %s", childB.Opr)
			return b.BinaryOperation(childA, childB.Opnd, childB.Opr)
		}
	}
	return nil
}

// BinaryOperation builds a binary operation node.
func (b *Builder) BinaryOperation(left, right *Node, id OprID) *Node {
	n := b.NewNode(KindBinOp)
	n.Opr = id
	n.Left = left
	n.Right = right
	return n
}

// PassNode wraps several child trees into a generic container which
// parent constructors see through.
func (b *Builder) PassNode(children []*Node) *Node {
	n := b.NewNode(KindPass)
	for _, c := range children {
		n.AddChild(c)
	}
	return n
}
