package ast

// A standard set of action functions. Front-ends assemble their dispatch
// tables from these (or from their own functions); the ids are positions
// in the table handed to NewBuilder, not fixed constants of this package.

func param(params []Param, i int) Param {
	if i < len(params) {
		return params[i]
	}
	return EmptyParam()
}

func nodeOf(b *Builder, p Param) *Node {
	if p.Empty {
		return nil
	}
	if p.IsNode {
		return p.Node
	}
	return b.TokenNode(p.Token)
}

// BuildIdentifier expects one identifier token or node parameter.
func BuildIdentifier(b *Builder, _ *Node, params []Param) (*Node, error) {
	n := nodeOf(b, param(params, 0))
	if n == nil || n.Kind != KindIdentifier {
		return nil, actionErr(0, "BuildIdentifier expects an identifier, got %v", n)
	}
	return n, nil
}

// BuildLiteral expects one literal token parameter.
func BuildLiteral(b *Builder, _ *Node, params []Param) (*Node, error) {
	n := nodeOf(b, param(params, 0))
	if n == nil || n.Kind != KindLiteral {
		return nil, actionErr(0, "BuildLiteral expects a literal, got %v", n)
	}
	return n, nil
}

// BuildBinary expects (left, operator-token, right).
func BuildBinary(b *Builder, _ *Node, params []Param) (*Node, error) {
	if len(params) != 3 {
		return nil, actionErr(0, "BuildBinary expects 3 parameters, got %d", len(params))
	}
	op := param(params, 1)
	if op.Empty || op.IsNode || op.Token == nil {
		return nil, actionErr(0, "BuildBinary operator slot is not a token")
	}
	opr, ok := OprFromLexeme(op.Token.Name)
	if !ok {
		return nil, actionErr(0, "unknown operator %q", op.Token.Name)
	}
	left := nodeOf(b, param(params, 0))
	right := nodeOf(b, param(params, 2))
	if left == nil || right == nil {
		return nil, actionErr(0, "BuildBinary operand missing")
	}
	return b.BinaryOperation(left, right, opr), nil
}

// BuildUnary expects (operator-token, operand).
func BuildUnary(b *Builder, _ *Node, params []Param) (*Node, error) {
	if len(params) != 2 {
		return nil, actionErr(0, "BuildUnary expects 2 parameters, got %d", len(params))
	}
	op := param(params, 0)
	if op.Empty || op.IsNode || op.Token == nil {
		return nil, actionErr(0, "BuildUnary operator slot is not a token")
	}
	opr, ok := OprFromLexeme(op.Token.Name)
	if !ok {
		return nil, actionErr(0, "unknown operator %q", op.Token.Name)
	}
	opnd := nodeOf(b, param(params, 1))
	if opnd == nil {
		return nil, actionErr(0, "BuildUnary operand missing")
	}
	n := b.NewNode(KindUnaryOp)
	n.Opr = opr
	n.Opnd = opnd
	return n, nil
}

// BuildParenthesis wraps an expression; the slot may be empty.
func BuildParenthesis(b *Builder, _ *Node, params []Param) (*Node, error) {
	n := b.NewNode(KindParenthesis)
	n.Expr = nodeOf(b, param(params, 0))
	return n, nil
}

// BuildBlock collects statement children, flattening Pass containers. An
// empty parameter list yields an empty block.
func BuildBlock(b *Builder, _ *Node, params []Param) (*Node, error) {
	n := b.NewNode(KindBlock)
	for i := range params {
		n.AddChild(nodeOf(b, param(params, i)))
	}
	return n, nil
}

// BuildDecl expects (type-or-name, name) or (name).
func BuildDecl(b *Builder, _ *Node, params []Param) (*Node, error) {
	n := b.NewNode(KindDecl)
	switch len(params) {
	case 1:
		name := nodeOf(b, param(params, 0))
		if name == nil {
			return nil, actionErr(0, "BuildDecl name missing")
		}
		n.Name = name.Name
	case 2:
		n.DestType = nodeOf(b, param(params, 0))
		name := nodeOf(b, param(params, 1))
		if name == nil {
			return nil, actionErr(0, "BuildDecl name missing")
		}
		n.Name = name.Name
	default:
		return nil, actionErr(0, "BuildDecl expects 1 or 2 parameters, got %d", len(params))
	}
	return n, nil
}

// BuildCall expects (callee, arguments...); the argument slots may be
// empty or Pass containers.
func BuildCall(b *Builder, _ *Node, params []Param) (*Node, error) {
	callee := nodeOf(b, param(params, 0))
	if callee == nil {
		return nil, actionErr(0, "BuildCall callee missing")
	}
	n := b.NewNode(KindCall)
	n.Expr = callee
	for i := 1; i < len(params); i++ {
		n.AddChild(nodeOf(b, param(params, i)))
	}
	return n, nil
}

// BuildNew expects (type, arguments...).
func BuildNew(b *Builder, _ *Node, params []Param) (*Node, error) {
	typ := nodeOf(b, param(params, 0))
	if typ == nil {
		return nil, actionErr(0, "BuildNew type missing")
	}
	n := b.NewNode(KindNew)
	n.DestType = typ
	for i := 1; i < len(params); i++ {
		n.AddChild(nodeOf(b, param(params, i)))
	}
	return n, nil
}

// BuildReturn expects an optional expression.
func BuildReturn(b *Builder, _ *Node, params []Param) (*Node, error) {
	n := b.NewNode(KindReturn)
	n.Expr = nodeOf(b, param(params, 0))
	return n, nil
}

// BuildBreak takes no parameters.
func BuildBreak(b *Builder, _ *Node, params []Param) (*Node, error) {
	return b.NewNode(KindBreak), nil
}

// BuildCondBranch expects (condition, then, else?).
func BuildCondBranch(b *Builder, _ *Node, params []Param) (*Node, error) {
	cond := nodeOf(b, param(params, 0))
	if cond == nil {
		return nil, actionErr(0, "BuildCondBranch condition missing")
	}
	n := b.NewNode(KindCondBranch)
	n.Cond = cond
	n.Body = nodeOf(b, param(params, 1))
	n.Else = nodeOf(b, param(params, 2))
	return n, nil
}

// BuildWhile expects (condition, body).
func BuildWhile(b *Builder, _ *Node, params []Param) (*Node, error) {
	cond := nodeOf(b, param(params, 0))
	if cond == nil {
		return nil, actionErr(0, "BuildWhile condition missing")
	}
	n := b.NewNode(KindWhile)
	n.Cond = cond
	n.Body = nodeOf(b, param(params, 1))
	return n, nil
}

// BuildFor expects (init?, condition?, update?, body).
func BuildFor(b *Builder, _ *Node, params []Param) (*Node, error) {
	if len(params) != 4 {
		return nil, actionErr(0, "BuildFor expects 4 parameters, got %d", len(params))
	}
	n := b.NewNode(KindFor)
	n.Init = nodeOf(b, param(params, 0))
	n.Cond = nodeOf(b, param(params, 1))
	n.Update = nodeOf(b, param(params, 2))
	n.Body = nodeOf(b, param(params, 3))
	return n, nil
}

// BuildSwitch expects (expression, cases...); case slots may be Pass
// containers, which are flattened.
func BuildSwitch(b *Builder, _ *Node, params []Param) (*Node, error) {
	expr := nodeOf(b, param(params, 0))
	if expr == nil {
		return nil, actionErr(0, "BuildSwitch expression missing")
	}
	n := b.NewNode(KindSwitch)
	n.Expr = expr
	for i := 1; i < len(params); i++ {
		n.AddChild(nodeOf(b, param(params, i)))
	}
	return n, nil
}

// BuildClass expects (name, body?).
func BuildClass(b *Builder, _ *Node, params []Param) (*Node, error) {
	name := nodeOf(b, param(params, 0))
	if name == nil || name.Kind != KindIdentifier {
		return nil, actionErr(0, "BuildClass expects a name")
	}
	n := b.NewNode(KindClass)
	n.Name = name.Name
	n.Body = nodeOf(b, param(params, 1))
	return n, nil
}

// BuildFunction expects (name, body?).
func BuildFunction(b *Builder, _ *Node, params []Param) (*Node, error) {
	name := nodeOf(b, param(params, 0))
	if name == nil || name.Kind != KindIdentifier {
		return nil, actionErr(0, "BuildFunction expects a name")
	}
	n := b.NewNode(KindFunction)
	n.Name = name.Name
	n.Body = nodeOf(b, param(params, 1))
	return n, nil
}

// AddToBlock is an attribute-style action: it appends the parameter
// node(s) to the block created by a preceding action of the same rule.
func AddToBlock(b *Builder, last *Node, params []Param) (*Node, error) {
	if last == nil || last.Kind != KindBlock {
		return nil, actionErr(0, "AddToBlock without a preceding block")
	}
	for i := range params {
		last.AddChild(nodeOf(b, param(params, i)))
	}
	return last, nil
}
