package parser

import (
	"strings"
	"testing"

	"github.com/npillmayer/ladon"
	"github.com/npillmayer/ladon/ast"
	"github.com/npillmayer/ladon/rules"
	"github.com/npillmayer/ladon/scanner"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// Action ids of the test front-end.
const (
	actBinary = iota
	actUnary
	actParen
	actBlock
)

func makeBuilder() *ast.Builder {
	return ast.NewBuilder([]ast.ActionFn{
		actBinary: ast.BuildBinary,
		actUnary:  ast.BuildUnary,
		actParen:  ast.BuildParenthesis,
		actBlock:  ast.BuildBlock,
	})
}

func makeParser(t *testing.T, g *rules.Grammar, input string) *Parser {
	pool := ladon.NewStringPool()
	tkz := scanner.GoTokenizer("test", strings.NewReader(input), g.Tokens(), pool)
	return New("test", g, tkz, makeBuilder())
}

// parseOne drives a single top-level construct through the pipeline, with
// the sorted-tree invariants checked between the phases.
func parseOne(t *testing.T, p *Parser) *ast.Tree {
	p.resetContext()
	if p.ctx.buf.lexLine(p.ctx.cur) == 0 {
		t.Fatal("no input to parse")
	}
	ok, err := p.matchConstruct()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("input not accepted, farthest token #%d", p.ctx.farthest)
	}
	top := p.root.sortedChildren[0]
	p.patchWasSucc(top)
	checkSortedInvariants(t, p, top)
	p.simplifySortedTree()
	tree, err := p.buildAST()
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

// checkSortedInvariants walks the sorted tree after patching: no failed
// node, no unpatched WasSucc node, contiguous spans below Concat parents,
// distinct starts below ZeroOrMore parents — and cache consistency.
func checkSortedInvariants(t *testing.T, p *Parser, root *appealNode) {
	worklist := []*appealNode{root}
	for len(worklist) > 0 {
		node := worklist[0]
		worklist = worklist[1:]
		if node.isFail() {
			t.Errorf("failed node %v in sorted tree", node)
		}
		if node.status == succWasSucc {
			t.Errorf("unpatched WasSucc node %v in sorted tree", node)
		}
		if node.isSucc() && node.isTable() {
			for _, m := range node.matches {
				if m < node.start-1 || m >= p.ctx.buf.size() {
					t.Errorf("match %d of %v out of range", m, node)
				}
			}
		}
		if node.isTable() && node.table.Kind == rules.Concat && len(node.sortedChildren) > 0 {
			last := node.start - 1
			for _, child := range node.sortedChildren {
				if child.start != last+1 {
					t.Errorf("Concat %v: child %v does not continue at %d", node, child, last+1)
				}
				last = child.finalMatch
			}
			if last != node.finalMatch {
				t.Errorf("Concat %v: children end at %d, not %d", node, last, node.finalMatch)
			}
		}
		if node.isTable() && node.table.Kind == rules.ZeroOrMore {
			seen := make(map[int]bool)
			for _, child := range node.sortedChildren {
				if seen[child.start] {
					t.Errorf("ZeroOrMore %v: duplicate child start %d", node, child.start)
				}
				seen[child.start] = true
			}
		}
		worklist = append(worklist, node.sortedChildren...)
	}
	// success and failure never coexist
	p.grammar.EachTable(func(tab *rules.Table) {
		for start := range p.ctx.failed[tab.Index] {
			if p.succOf(tab).locate(start) != nil {
				t.Errorf("rule %s both failed and succeeded at %d", tab.Name, start)
			}
		}
	})
}

// --- Grammars --------------------------------------------------------------

// Direct left recursion through a OneOf lead:
//
//     Stmt    = Add ';'            (top)
//     Add     = Prim | AddMore
//     AddMore = Add '+' Prim       (action: binary expression)
//     Prim    = Identifier
//
func makeAddGrammar(t *testing.T) *rules.Grammar {
	b := rules.NewGrammarBuilder("Add")
	b.Concat("Stmt").N("Add").T(";").Top().End()
	b.OneOf("Add").N("Prim").N("AddMore").End()
	b.Concat("AddMore").N("Add").T("+").N("Prim").Action(actBinary, 1, 2, 3).End()
	b.Data("Prim").Ident().End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// Indirect left recursion; field accesses nest to the left:
//
//     Stmt        = Primary ';'                    (top)
//     Primary     = 'this' | FieldAccess
//     FieldAccess = Primary '.' Identifier         (action: binary '.')
//
// With leadFirst, FieldAccess is declared first and leads the group as a
// Concatenate node.
func makeFieldGrammar(t *testing.T, leadFirst bool) *rules.Grammar {
	b := rules.NewGrammarBuilder("Field")
	if leadFirst {
		b.Concat("FieldAccess").N("Primary").T(".").Ident().Action(actBinary, 1, 2, 3).End()
		b.OneOf("Primary").T("this").N("FieldAccess").End()
		b.Concat("Stmt").N("Primary").T(";").Top().End()
	} else {
		b.Concat("Stmt").N("Primary").T(";").Top().End()
		b.OneOf("Primary").T("this").N("FieldAccess").End()
		b.Concat("FieldAccess").N("Primary").T(".").Ident().Action(actBinary, 1, 2, 3).End()
	}
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// --- The tests -------------------------------------------------------------

func TestDirectLeftRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeAddGrammar(t)
	p := makeParser(t, g, "a + b + c ;")
	tree := parseOne(t, p)

	// ((a + b) + c), left-associative
	root := tree.Root
	if root.Kind != ast.KindBinOp || root.Opr != ast.OprAdd {
		t.Fatalf("expected BinOp(+) root, got %v", root)
	}
	if root.Right.Kind != ast.KindIdentifier || root.Right.Name != "c" {
		t.Errorf("right operand should be c, got %v", root.Right)
	}
	inner := root.Left
	if inner.Kind != ast.KindBinOp || inner.Left.Name != "a" || inner.Right.Name != "b" {
		t.Errorf("left operand should be (a + b), got %v", inner)
	}
}

func TestIndirectLeftRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeFieldGrammar(t, false)
	p := makeParser(t, g, "this . a . b ;")
	tree := parseOne(t, p)

	// ((this.a).b)
	root := tree.Root
	if root.Kind != ast.KindBinOp || root.Opr != ast.OprDot {
		t.Fatalf("expected BinOp(.) root, got %v", root)
	}
	if root.Right.Name != "b" {
		t.Errorf("outer access should select b, got %v", root.Right)
	}
	inner := root.Left
	if inner.Kind != ast.KindBinOp || inner.Opr != ast.OprDot {
		t.Fatalf("inner access missing, got %v", inner)
	}
	if inner.Left.Kind != ast.KindLiteral || inner.Left.Lit.Kind != ladon.LitThis {
		t.Errorf("innermost receiver should be 'this', got %v", inner.Left)
	}
	if inner.Right.Name != "a" {
		t.Errorf("inner access should select a, got %v", inner.Right)
	}

	// The mistaken failure of FieldAccess at token 0, recorded while the
	// first instance was under way, must have been cleared.
	if p.wasFailed(g.TableNamed("FieldAccess"), 0) {
		t.Error("FieldAccess@0 still marked failed after appeal")
	}
}

func TestConcatenateLeadRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeFieldGrammar(t, true)
	if !g.Recursions().IsLeadNode(g.TableNamed("FieldAccess")) {
		t.Fatal("FieldAccess should lead the group")
	}
	p := makeParser(t, g, "this . a . b ;")
	tree := parseOne(t, p)
	root := tree.Root
	if root.Kind != ast.KindBinOp || root.Right.Name != "b" || root.Left.Kind != ast.KindBinOp {
		t.Fatalf("expected ((this.a).b), got %v", root)
	}
}

func TestIdempotentReparse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeAddGrammar(t)
	t1 := parseOne(t, makeParser(t, g, "a + b + c ;"))
	t2 := parseOne(t, makeParser(t, g, "a + b + c ;"))
	if !ast.Equal(t1.Root, t2.Root) {
		t.Error("two parses of the same tokens should be structurally equal")
	}
}

// With property Single the first matching alternative wins and the rest
// are not tried.
func TestOneOfSingle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	b := rules.NewGrammarBuilder("single")
	b.OneOf("Stmt").N("Short").N("Long").Single().Top().End()
	b.Concat("Short").Ident().T(";").End()
	b.Concat("Long").Ident().T(";").T(";").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	p := makeParser(t, g, "x ;")
	parseOne(t, p)

	// the OneOf attempt is the first child of the pseudo root; edge
	// shrinking does not touch the un-sorted children
	top := p.root.children[0]
	if len(top.children) != 1 {
		t.Errorf("Single OneOf should have tried 1 alternative, tried %d", len(top.children))
	}
}

// Without Single, a top rule reaching two end positions is a fatal
// ambiguity.
func TestAmbiguityDetection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	b := rules.NewGrammarBuilder("ambiguous")
	b.OneOf("Stmt").N("Short").N("Long").Top().End()
	b.Concat("Short").Ident().T(";").End()
	b.Concat("Long").Ident().T(";").T(";").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	p := makeParser(t, g, "x ; ;")
	_, err = p.Parse()
	if err == nil {
		t.Fatal("expected an ambiguity error")
	}
	if _, ok := err.(*AmbiguityError); !ok {
		t.Errorf("expected *AmbiguityError, got %T: %v", err, err)
	}
}

// A switch-block shaped grammar: Concatenate with a ZeroOrMore tail whose
// body is itself built from ZeroOrMore parts.
func makeSwitchGrammar(t *testing.T) *rules.Grammar {
	b := rules.NewGrammarBuilder("switch")
	b.Concat("SwitchBlock").T("{").N("Groups").T("}").Top().Action(actBlock, 2).End()
	b.ZeroOrMore("Groups").N("Group").End()
	b.Concat("Group").N("Stmts").N("Labels").End()
	b.ZeroOrMore("Stmts").N("Stmt").End()
	b.ZeroOrMore("Labels").N("Label").End()
	b.Concat("Stmt").Ident().T(";").End()
	b.Concat("Label").T("case").Ident().T(":").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestZeroOrMoreTailEmpty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeSwitchGrammar(t)
	p := makeParser(t, g, "{ }")
	tree := parseOne(t, p)
	if tree.Root.Kind != ast.KindBlock || len(tree.Root.Children) != 0 {
		t.Errorf("expected an empty block, got %v", tree.Root)
	}
}

func TestZeroOrMoreTailFilled(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeSwitchGrammar(t)
	p := makeParser(t, g, "{ a ; case b : }")
	tree := parseOne(t, p)
	if tree.Root.Kind != ast.KindBlock || len(tree.Root.Children) != 2 {
		t.Fatalf("expected a block with 2 children, got %v", tree.Root)
	}
	if tree.Root.Children[0].Name != "a" || tree.Root.Children[1].Name != "b" {
		t.Errorf("block content wrong: %v", tree.Root.Children)
	}
}

// A Concatenate whose children all may match nothing makes no progress
// when they all do; the rule fails then, even though every child
// "succeeded".
func TestConcatNoProgress(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeSwitchGrammar(t)
	p := makeParser(t, g, "{ case }")
	p.resetContext()
	if p.ctx.buf.lexLine(p.ctx.cur) == 0 {
		t.Fatal("no input")
	}
	ok, err := p.matchConstruct()
	if ok || err != nil {
		t.Fatalf("construct should fail plainly, got ok=%v err=%v", ok, err)
	}
	// Group got past lookahead at token 1 ('case') but matched nothing
	if !p.wasFailed(g.TableNamed("Group"), 1) {
		t.Error("all-zero Group should have failed at token 1 for lack of progress")
	}
}

// A rule satisfied from the cache lands in the chosen parse without a
// sub-tree; patching clones the youngest recorded match below it.
func TestWasSuccPatching(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	b := rules.NewGrammarBuilder("patch")
	b.OneOf("Stmt").N("A").N("B").Top().End()
	b.Concat("A").N("Expr").T(";").T(";").End()
	b.Concat("B").N("Expr").T(";").End()
	b.Data("Expr").Ident().End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	p := makeParser(t, g, "x ;")
	tree := parseOne(t, p) // invariant check asserts no WasSucc remains
	if tree.Root.Kind != ast.KindIdentifier || tree.Root.Name != "x" {
		t.Errorf("expected Identifier(x), got %v", tree.Root)
	}
}

// Expr = Primary UnaryExpr: '(x) y' becomes a cast, 'a + b' — parsed as
// 'a' and '+b' — becomes a binary operation.
func makeFixupGrammar(t *testing.T) *rules.Grammar {
	b := rules.NewGrammarBuilder("fixup")
	b.Concat("Stmt").N("Expr").T(";").Top().End()
	b.Concat("Expr").N("Primary").N("UnaryExpr").End()
	b.OneOf("Primary").N("Paren").Ident().Lit().End()
	b.Concat("Paren").T("(").N("Primary").T(")").Action(actParen, 2).End()
	b.OneOf("UnaryExpr").N("UnaryOp").N("Primary").End()
	b.Concat("UnaryOp").T("+").N("Primary").Action(actUnary, 1, 2).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestCastFixup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeFixupGrammar(t)
	p := makeParser(t, g, "( x ) y ;")
	tree := parseOne(t, p)
	root := tree.Root
	if root.Kind != ast.KindCast {
		t.Fatalf("expected a Cast node, got %v", root)
	}
	if root.DestType.Name != "x" || root.Expr.Name != "y" {
		t.Errorf("cast pieces wrong: type=%v expr=%v", root.DestType, root.Expr)
	}
}

func TestBinaryFixup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeFixupGrammar(t)
	p := makeParser(t, g, "a + b ;")
	tree := parseOne(t, p)
	root := tree.Root
	if root.Kind != ast.KindBinOp || root.Opr != ast.OprAdd {
		t.Fatalf("expected BinOp(+), got %v", root)
	}
	if root.Left.Name != "a" || root.Right.Name != "b" {
		t.Errorf("operands wrong: %v %v", root.Left, root.Right)
	}
}

func TestEmptyInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeAddGrammar(t)
	p := makeParser(t, g, "")
	mod, err := p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if len(mod.Trees()) != 0 {
		t.Errorf("empty input should yield zero trees, got %d", len(mod.Trees()))
	}
}

func TestCommentsOnlyInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeAddGrammar(t)
	p := makeParser(t, g, "// nothing\n\n// more nothing\n")
	mod, err := p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if len(mod.Trees()) != 0 {
		t.Errorf("comments-only input should yield zero trees, got %d", len(mod.Trees()))
	}
}

func TestSyntaxErrorFarthest(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeAddGrammar(t)
	p := makeParser(t, g, "a + b +")
	_, err := p.Parse()
	serr, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
	}
	if serr.Farthest < 3 {
		t.Errorf("matching should have reached token 3, reported %d", serr.Farthest)
	}
}

func TestTwoConstructs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeAddGrammar(t)
	p := makeParser(t, g, "a + b ;\nc + d ;\n")
	mod, err := p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if len(mod.Trees()) != 2 {
		t.Fatalf("expected 2 trees, got %d", len(mod.Trees()))
	}
	for i, names := range [][2]string{{"a", "b"}, {"c", "d"}} {
		root := mod.Trees()[i].Root
		if root.Kind != ast.KindBinOp || root.Left.Name != names[0] || root.Right.Name != names[1] {
			t.Errorf("tree %d should be (%s + %s), got %v", i, names[0], names[1], root)
		}
	}
}

// Nested ZeroOrMore rules terminate through the visited guard; the
// traversal stays within O(rules × tokens²) matcher steps.
func TestMatcherStepBound(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeSwitchGrammar(t)
	p := makeParser(t, g, "{ a ; a ; case b : }")
	parseOne(t, p)
	tokens := p.ctx.buf.size()
	bound := g.TableCount() * tokens * tokens
	if p.StepCount() > bound {
		t.Errorf("matcher took %d steps, bound is %d", p.StepCount(), bound)
	}
}

// Sort-out of a OneOf node whose children lost the final match is an
// engine defect and must surface as an internal error (the reference
// implementation leaves the case unfinished).
func TestSortOutOneOfNoChild(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.parser")
	defer teardown()
	//
	g := makeAddGrammar(t)
	p := makeParser(t, g, "a ;")
	add := g.TableNamed("Add")

	parent := p.newAppealNode()
	parent.table = add
	parent.status = succ
	parent.addMatch(7)
	parent.finalMatch = 7
	parent.sorted = true

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected an internal error panic")
		}
		if _, ok := r.(*InternalError); !ok {
			t.Fatalf("expected *InternalError, got %T", r)
		}
	}()
	p.sortOutOneOf(parent, nil)
}
