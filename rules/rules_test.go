package rules

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// A small expression grammar with a direct left recursion through a
// OneOf lead:
//
//     Stmt    = Add ';'
//     Add     = Prim | AddMore
//     AddMore = Add '+' Prim
//     Prim    = Identifier
//
func makeAddGrammar(t *testing.T) *Grammar {
	b := NewGrammarBuilder("Add")
	b.Concat("Stmt").N("Add").T(";").Top().End()
	b.OneOf("Add").N("Prim").N("AddMore").End()
	b.Concat("AddMore").N("Add").T("+").N("Prim").End()
	b.Data("Prim").Ident().End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestBuilderShape(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.rules")
	defer teardown()
	//
	g := makeAddGrammar(t)
	if g.TableCount() != 6 { // 4 rules + Identifier + Literal
		t.Errorf("expected 6 tables, got %d", g.TableCount())
	}
	if len(g.Tops()) != 1 || g.Tops()[0].Name != "Stmt" {
		t.Errorf("expected top rule Stmt, got %v", g.Tops())
	}
	add := g.TableNamed("Add")
	if add == nil || add.Kind != OneOf || len(add.Children) != 2 {
		t.Errorf("rule Add has unexpected shape: %v", add)
	}
	if g.Tokens().Get("+") == nil || g.Tokens().Get(";") == nil {
		t.Error("system tokens not interned")
	}
	if g.Tokens().Intern("+") != g.Tokens().Get("+") {
		t.Error("system tokens not identical")
	}
}

func TestBuilderUndeclared(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.rules")
	defer teardown()
	//
	b := NewGrammarBuilder("broken")
	b.Concat("Stmt").N("Ghost").Top().End()
	if _, err := b.Grammar(); err == nil {
		t.Error("expected error for undeclared rule reference")
	}
}

func TestMaybeZero(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.rules")
	defer teardown()
	//
	b := NewGrammarBuilder("zero")
	b.Concat("Top").N("Opt").N("Many").Top().End()
	b.ZeroOrOne("Opt").T("a").End()
	b.ZeroOrMore("Many").T("b").End()
	b.Concat("Both").N("Opt").N("Many").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	mz := computeMaybeZero(g)
	for _, name := range []string{"Opt", "Many", "Both", "Top"} {
		if !mz[g.TableNamed(name)] {
			t.Errorf("%s should be maybe-zero", name)
		}
	}
}

func TestRecursionDirect(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.rules")
	defer teardown()
	//
	g := makeAddGrammar(t)
	rs := g.Recursions()
	if rs.GroupCount() != 1 {
		t.Fatalf("expected 1 recursion group, got %d", rs.GroupCount())
	}
	add := g.TableNamed("Add")
	addMore := g.TableNamed("AddMore")
	if !rs.IsLeadNode(add) {
		t.Error("Add should lead its recursion group")
	}
	if rs.IsLeadNode(addMore) {
		t.Error("AddMore should not be a lead node")
	}
	if _, ok := rs.GroupOf(addMore); !ok {
		t.Error("AddMore should be a group member")
	}
	if _, ok := rs.GroupOf(g.TableNamed("Prim")); ok {
		t.Error("Prim is not on any circle")
	}
	rec := rs.RecursionFor(add)
	if len(rec.Circles) != 1 {
		t.Fatalf("expected 1 circle, got %d", len(rec.Circles))
	}
	if len(rec.Nodes) != 2 {
		t.Errorf("expected 2 recursion nodes, got %d", len(rec.Nodes))
	}
	// the non-recursive alternative Prim is a LeadFronNode
	foundPrim := false
	for _, fron := range rec.LeadFronNodes {
		if fron.Kind == FronRule && fron.Rule == g.TableNamed("Prim") {
			foundPrim = true
		}
	}
	if !foundPrim {
		t.Error("Prim should be a LeadFronNode of Add")
	}
}

func TestRecursionIndirect(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.rules")
	defer teardown()
	//
	b := NewGrammarBuilder("field")
	b.Concat("Stmt").N("Primary").T(";").Top().End()
	b.OneOf("Primary").T("this").N("FieldAccess").End()
	b.Concat("FieldAccess").N("Primary").T(".").Ident().End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	rs := g.Recursions()
	if rs.GroupCount() != 1 {
		t.Fatalf("expected 1 recursion group, got %d", rs.GroupCount())
	}
	primary := g.TableNamed("Primary")
	if !rs.IsLeadNode(primary) {
		t.Error("Primary should lead the group (declared first)")
	}
	rec := rs.RecursionFor(primary)
	if len(rec.Circles) != 1 || len(rec.Circles[0]) != 2 {
		t.Errorf("expected one circle of length 2, got %v", rec.Circles)
	}
}

// A Concatenate lead node: FieldAccess is declared first, so it leads the
// group, and its circle entry sits at child 0. FronNode discovery has to
// produce the resume position behind the recursive prefix.
func TestConcatenateLeadFronNodes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.rules")
	defer teardown()
	//
	b := NewGrammarBuilder("field")
	b.Concat("FieldAccess").N("Primary").T(".").Ident().End()
	b.OneOf("Primary").T("this").N("FieldAccess").End()
	b.Concat("Stmt").N("Primary").T(";").Top().End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	rs := g.Recursions()
	fa := g.TableNamed("FieldAccess")
	if !rs.IsLeadNode(fa) {
		t.Fatal("FieldAccess should lead the group")
	}
	rec := rs.RecursionFor(fa)
	foundConcat := false
	for _, fron := range rec.LeadFronNodes {
		if fron.Kind == FronConcat {
			foundConcat = true
			if fron.Start != 1 {
				t.Errorf("Concat LeadFronNode should resume at child 1, got %d", fron.Start)
			}
		}
	}
	if !foundConcat {
		t.Error("expected a Concat LeadFronNode for FieldAccess")
	}
}

func TestLookAheadSets(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.rules")
	defer teardown()
	//
	b := NewGrammarBuilder("la")
	b.Concat("Decl").T("let").Ident().T(";").Top().End()
	b.OneOf("Val").T("nil").Lit().End()
	b.Concat("Opt").N("Maybe").N("Val").End()
	b.ZeroOrOne("Maybe").T("-").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	la := g.LookAheadFor(g.TableNamed("Decl"))
	if len(la) != 1 || la[0].Tok != g.Tokens().Get("let") {
		t.Errorf("Decl lookahead should be {let}, got %v", la)
	}
	la = g.LookAheadFor(g.TableNamed("Val"))
	hasNil, hasLit := false, false
	for _, entry := range la {
		if entry.Tok == g.Tokens().Get("nil") {
			hasNil = true
		}
		if entry.AnyLiteral {
			hasLit = true
		}
	}
	if !hasNil || !hasLit {
		t.Errorf("Val lookahead should cover 'nil' and literals, got %v", la)
	}
	// a maybe-zero prefix widens the first set of the suffix
	la = g.LookAheadFor(g.TableNamed("Opt"))
	hasMinus := false
	for _, entry := range la {
		if entry.Tok == g.Tokens().Get("-") {
			hasMinus = true
		}
	}
	if !hasMinus || len(la) != 3 {
		t.Errorf("Opt lookahead should be {-, nil, literal}, got %v", la)
	}
}

func TestLookAheadSkipsRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.rules")
	defer teardown()
	//
	g := makeAddGrammar(t)
	if la := g.LookAheadFor(g.TableNamed("Add")); len(la) != 0 {
		t.Errorf("recursive rules must not carry lookahead, got %v", la)
	}
	if la := g.LookAheadFor(g.TableNamed("Stmt")); len(la) != 0 {
		t.Errorf("Stmt starts with a recursive rule, lookahead must stay empty, got %v", la)
	}
}
