package scanner

import (
	"strings"
	"testing"

	"github.com/npillmayer/ladon"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func makeTable(lexemes ...string) *ladon.TokenTable {
	tab := ladon.NewTokenTable()
	for _, l := range lexemes {
		tab.Intern(l)
	}
	return tab
}

func readAll(tkz Tokenizer) []*ladon.Token {
	var toks []*ladon.Token
	for {
		for !tkz.EndOfLine() && !tkz.EndOfFile() {
			if t := tkz.NextToken(); t != nil {
				toks = append(toks, t)
			}
		}
		if tkz.EndOfFile() {
			break
		}
		tkz.ReadLine()
	}
	return toks
}

func TestGoTokenizerClassify(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.scanner")
	defer teardown()
	//
	tab := makeTable("let", "=", ";")
	pool := ladon.NewStringPool()
	tkz := GoTokenizer("classify", strings.NewReader(`let x = 42 ;`), tab, pool)
	toks := readAll(tkz)
	if len(toks) != 5 {
		t.Fatalf("expected 5 tokens, got %d: %v", len(toks), toks)
	}
	if toks[0] != tab.Get("let") {
		t.Error("keyword token is not the interned singleton")
	}
	if !toks[1].IsIdentifier() || toks[1].Name != "x" {
		t.Errorf("expected identifier x, got %v", toks[1])
	}
	if toks[2] != tab.Get("=") {
		t.Error("operator token is not the interned singleton")
	}
	if !toks[3].IsLiteral() || toks[3].Lit.Kind != ladon.LitInt || toks[3].Lit.Int != 42 {
		t.Errorf("expected int literal 42, got %v", toks[3])
	}
	if toks[4] != tab.Get(";") {
		t.Error("separator token is not the interned singleton")
	}
}

func TestGoTokenizerInterning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.scanner")
	defer teardown()
	//
	tab := makeTable()
	pool := ladon.NewStringPool()
	tkz := GoTokenizer("intern", strings.NewReader(`abc abc "s" "s"`), tab, pool)
	toks := readAll(tkz)
	if len(toks) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(toks))
	}
	if toks[0].Name != toks[1].Name {
		t.Error("identifier names should be interned to the same string")
	}
	if toks[2].Lit.Str != toks[3].Lit.Str {
		t.Error("string literals should be interned to the same string")
	}
}

func TestGoTokenizerLines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.scanner")
	defer teardown()
	//
	tab := makeTable(";")
	pool := ladon.NewStringPool()
	tkz := GoTokenizer("lines", strings.NewReader("a ;\nb ;\n"), tab, pool)

	var line1 []*ladon.Token
	for !tkz.EndOfLine() {
		line1 = append(line1, tkz.NextToken())
	}
	if len(line1) != 2 {
		t.Fatalf("expected 2 tokens on line 1, got %d", len(line1))
	}
	if tkz.EndOfFile() {
		t.Fatal("line 2 should still be pending")
	}
	if !tkz.ReadLine() {
		t.Fatal("ReadLine should succeed for line 2")
	}
	var line2 []*ladon.Token
	for !tkz.EndOfLine() {
		line2 = append(line2, tkz.NextToken())
	}
	if len(line2) != 2 {
		t.Fatalf("expected 2 tokens on line 2, got %d", len(line2))
	}
	if tkz.ReadLine() {
		t.Error("ReadLine should report end of input")
	}
	if !tkz.EndOfFile() {
		t.Error("EndOfFile should be true")
	}
}

func TestGoTokenizerCombinedOperator(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.scanner")
	defer teardown()
	//
	tab := makeTable("==", "=")
	pool := ladon.NewStringPool()
	tkz := GoTokenizer("ops", strings.NewReader(`a == b = c`), tab, pool)
	toks := readAll(tkz)
	if len(toks) != 5 {
		t.Fatalf("expected 5 tokens, got %d: %v", len(toks), toks)
	}
	if toks[1] != tab.Get("==") {
		t.Errorf("expected combined operator ==, got %v", toks[1])
	}
	if toks[3] != tab.Get("=") {
		t.Errorf("expected operator =, got %v", toks[3])
	}
}

func TestGoTokenizerCommentsOnly(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ladon.scanner")
	defer teardown()
	//
	tab := makeTable()
	pool := ladon.NewStringPool()
	tkz := GoTokenizer("comments", strings.NewReader("// nothing here\n"), tab, pool)
	if toks := readAll(tkz); len(toks) != 0 {
		t.Errorf("expected no tokens, got %v", toks)
	}
}
