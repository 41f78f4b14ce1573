package scanner

import (
	"testing"

	"github.com/npillmayer/ladon"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestLMAdapterScan(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.scanner")
	defer teardown()
	//
	tab := ladon.NewTokenTable()
	pool := ladon.NewStringPool()
	adapter, err := NewLMAdapter(nil, []string{"{", "}", ";", "="}, []string{"while", "if"}, tab, pool)
	if err != nil {
		t.Fatal(err)
	}
	tkz, err := adapter.Scanner(`while x { y = 7 ; }`)
	if err != nil {
		t.Fatal(err)
	}
	toks := readAll(tkz)
	if len(toks) != 8 {
		t.Fatalf("expected 8 tokens, got %d: %v", len(toks), toks)
	}
	if toks[0] != tab.Get("while") {
		t.Error("keyword 'while' is not the interned singleton")
	}
	if !toks[1].IsIdentifier() || toks[1].Name != "x" {
		t.Errorf("expected identifier x, got %v", toks[1])
	}
	if toks[2] != tab.Get("{") || toks[7] != tab.Get("}") {
		t.Error("separator tokens are not interned singletons")
	}
	if !toks[5].IsLiteral() || toks[5].Lit.Int != 7 {
		t.Errorf("expected literal 7, got %v", toks[5])
	}
}

func TestLMAdapterLines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.scanner")
	defer teardown()
	//
	tab := ladon.NewTokenTable()
	pool := ladon.NewStringPool()
	adapter, err := NewLMAdapter(nil, []string{";"}, nil, tab, pool)
	if err != nil {
		t.Fatal(err)
	}
	tkz, err := adapter.Scanner("a ;\nb ;")
	if err != nil {
		t.Fatal(err)
	}
	var line1 int
	for !tkz.EndOfLine() {
		if tkz.NextToken() != nil {
			line1++
		}
	}
	if line1 != 2 {
		t.Errorf("expected 2 tokens on line 1, got %d", line1)
	}
	if !tkz.ReadLine() {
		t.Fatal("second line should be available")
	}
	toks := readAll(tkz)
	if len(toks) != 2 {
		t.Errorf("expected 2 tokens on line 2, got %d", len(toks))
	}
}

func TestLMAdapterComments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.scanner")
	defer teardown()
	//
	tab := ladon.NewTokenTable()
	pool := ladon.NewStringPool()
	adapter, err := NewLMAdapter(nil, nil, nil, tab, pool)
	if err != nil {
		t.Fatal(err)
	}
	tkz, err := adapter.Scanner("// just a comment")
	if err != nil {
		t.Fatal(err)
	}
	if toks := readAll(tkz); len(toks) != 0 {
		t.Errorf("expected no tokens, got %v", toks)
	}
}
