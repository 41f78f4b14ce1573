/*
Package scanner defines the tokenizer interface consumed by the ladon
parser, plus two implementations: (1) a thin wrapper over the Go std lib
'text/scanner', and (2) an adapter for lexmachine.

Tokenizers are line-oriented: the parser pulls one logical line of tokens
at a time and re-reads arbitrarily far back through its token buffer.
Keywords, operators and separators are returned as the interned system
tokens of the grammar's token table, so the parser can compare them by
identity. Identifier names and string literals are interned in a string
pool.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scanner

import (
	"io"
	"strconv"
	"text/scanner"

	"github.com/npillmayer/ladon"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ladon.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("ladon.scanner")
}

// Tokenizer is the lexer interface the parser consumes. NextToken returns
// the next token of the current line, or nil when the line (or the input)
// is exhausted; ReadLine advances to the next line holding tokens and
// returns false only at end of input.
type Tokenizer interface {
	NextToken() *ladon.Token
	ReadLine() bool
	EndOfLine() bool
	EndOfFile() bool
	SetErrorHandler(func(error))
}

// Default error reporting function for scanners.
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// DefaultTokenizer is a default implementation, backed by scanner.Scanner.
// Create one with GoTokenizer.
type DefaultTokenizer struct {
	sc      scanner.Scanner
	tab     *ladon.TokenTable
	pool    *ladon.StringPool
	Error   func(error) // error handler
	pending *ladon.Token
	pendLn  int // line of the pending token
	curLine int
	eof     bool
}

var _ Tokenizer = (*DefaultTokenizer)(nil)

// GoTokenizer creates a tokenizer accepting tokens similar to the Go
// language. System tokens are resolved through the grammar's token table
// tab; identifier names and string payloads are interned in pool.
func GoTokenizer(sourceID string, input io.Reader, tab *ladon.TokenTable, pool *ladon.StringPool) *DefaultTokenizer {
	t := &DefaultTokenizer{tab: tab, pool: pool}
	t.Error = logError
	t.sc.Init(input)
	t.sc.Filename = sourceID
	t.sc.Error = func(_ *scanner.Scanner, msg string) {
		t.Error(scannerError(msg))
	}
	t.fill()
	t.curLine = t.pendLn
	return t
}

type scannerError string

func (e scannerError) Error() string { return string(e) }

// SetErrorHandler sets an error handler for the scanner.
func (t *DefaultTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		t.Error = logError
		return
	}
	t.Error = h
}

// fill scans ahead by one token.
func (t *DefaultTokenizer) fill() {
	if t.pending != nil || t.eof {
		return
	}
	tok := t.sc.Scan()
	if tok == scanner.EOF {
		t.eof = true
		return
	}
	t.pendLn = t.sc.Position.Line
	t.pending = t.classify(tok, t.sc.TokenText())
}

func (t *DefaultTokenizer) classify(tok rune, lexeme string) *ladon.Token {
	switch tok {
	case scanner.Ident:
		if sys := t.tab.Get(lexeme); sys != nil {
			return sys
		}
		switch lexeme {
		case "true", "false":
			return &ladon.Token{Kind: ladon.TokLiteral,
				Lit: ladon.Literal{Kind: ladon.LitBool, Bool: lexeme == "true"}}
		case "null":
			return &ladon.Token{Kind: ladon.TokLiteral, Lit: ladon.Literal{Kind: ladon.LitNull}}
		}
		return &ladon.Token{Kind: ladon.TokIdent, Name: t.pool.Intern(lexeme)}
	case scanner.Int:
		n, err := strconv.ParseInt(lexeme, 0, 64)
		if err != nil {
			t.Error(err)
		}
		return &ladon.Token{Kind: ladon.TokLiteral, Lit: ladon.Literal{Kind: ladon.LitInt, Int: n}}
	case scanner.Float:
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			t.Error(err)
		}
		return &ladon.Token{Kind: ladon.TokLiteral, Lit: ladon.Literal{Kind: ladon.LitFloat, Float: f}}
	case scanner.Char:
		r := []rune(lexeme)
		var c rune
		if len(r) >= 2 {
			c = r[1]
		}
		return &ladon.Token{Kind: ladon.TokLiteral, Lit: ladon.Literal{Kind: ladon.LitChar, Char: c}}
	case scanner.String, scanner.RawString:
		s := lexeme
		if len(s) >= 2 {
			s = s[1 : len(s)-1]
		}
		return &ladon.Token{Kind: ladon.TokLiteral,
			Lit: ladon.Literal{Kind: ladon.LitString, Str: t.pool.Intern(s)}}
	}
	// operator or separator; try to combine two-character operators the
	// grammar knows, e.g. '==' or '&&'
	if combined := t.tab.Get(lexeme + string(t.sc.Peek())); combined != nil {
		t.sc.Next()
		return combined
	}
	if sys := t.tab.Get(lexeme); sys != nil {
		return sys
	}
	tracer().Debugf("token %q is not part of the grammar", lexeme)
	return &ladon.Token{Kind: ladon.LexemeKind(lexeme), Name: lexeme}
}

// NextToken returns the next token of the current line, nil at end of
// line or end of input.
func (t *DefaultTokenizer) NextToken() *ladon.Token {
	t.fill()
	if t.eof && t.pending == nil {
		return nil
	}
	if t.pendLn > t.curLine {
		return nil
	}
	tok := t.pending
	t.pending = nil
	t.fill()
	return tok
}

// EndOfLine returns true when the current line holds no further tokens.
func (t *DefaultTokenizer) EndOfLine() bool {
	t.fill()
	return t.pending == nil || t.pendLn > t.curLine
}

// EndOfFile returns true when the input is exhausted.
func (t *DefaultTokenizer) EndOfFile() bool {
	t.fill()
	return t.eof && t.pending == nil
}

// ReadLine advances to the next line holding a token. Returns false at
// end of input.
func (t *DefaultTokenizer) ReadLine() bool {
	t.fill()
	if t.eof && t.pending == nil {
		return false
	}
	t.curLine = t.pendLn
	return true
}
