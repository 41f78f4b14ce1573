package scanner

import (
	"strconv"
	"strings"

	"github.com/npillmayer/ladon"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// lexmachine adapter

// LMAdapter is a lexmachine adapter to use lexmachine as a scanner. It
// compiles the literal lexemes and keywords of a grammar, together with
// default patterns for identifiers, numbers, strings, whitespace and
// line comments, into a DFA. One adapter per language; Scanner() creates
// a tokenizer per input.
type LMAdapter struct {
	Lexer *lexmachine.Lexer
	tab   *ladon.TokenTable
	pool  *ladon.StringPool
}

// NewLMAdapter creates a new lexmachine adapter. It receives a list of
// literal lexemes ('[', ';', …), a list of keywords ("if", "for", …), the
// grammar's token table and a string pool. init, if non-nil, may add
// custom patterns to the lexer before the defaults are registered.
//
// NewLMAdapter will return an error if compiling the DFA failed.
func NewLMAdapter(init func(*lexmachine.Lexer), literals []string, keywords []string,
	tab *ladon.TokenTable, pool *ladon.StringPool) (*LMAdapter, error) {
	//
	adapter := &LMAdapter{tab: tab, pool: pool}
	adapter.Lexer = lexmachine.NewLexer()
	if init != nil {
		init(adapter.Lexer)
	}
	for _, lit := range literals {
		r := "\\" + strings.Join(strings.Split(lit, ""), "\\")
		adapter.Lexer.Add([]byte(r), makeSystemToken(tab, lit))
	}
	for _, name := range keywords {
		adapter.Lexer.Add([]byte(name), makeSystemToken(tab, name))
	}
	adapter.Lexer.Add([]byte(`"[^"]*"`), adapter.makeString())
	adapter.Lexer.Add([]byte(`[0-9]+`), adapter.makeInt())
	adapter.Lexer.Add([]byte(`[a-zA-Z_][a-zA-Z0-9_]*`), adapter.makeIdent())
	adapter.Lexer.Add([]byte(`( |\t|\n|\r)+`), Skip)
	adapter.Lexer.Add([]byte(`//[^\n]*`), Skip)
	if err := adapter.Lexer.Compile(); err != nil {
		tracer().Errorf("Error compiling DFA: %v", err)
		return nil, err
	}
	return adapter, nil
}

// Scanner creates a tokenizer for a given input.
func (lm *LMAdapter) Scanner(input string) (*LMTokenizer, error) {
	s, err := lm.Lexer.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	t := &LMTokenizer{scanner: s, Error: logError}
	t.fill()
	t.curLine = t.pendLn
	return t, nil
}

// LMTokenizer is a tokenizer for lexmachine scanners, implementing the
// Tokenizer interface.
type LMTokenizer struct {
	scanner *lexmachine.Scanner
	Error   func(error)
	pending *ladon.Token
	pendLn  int
	curLine int
	eof     bool
}

var _ Tokenizer = (*LMTokenizer)(nil)

// SetErrorHandler sets an error handler for the scanner.
func (lms *LMTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		lms.Error = logError
		return
	}
	lms.Error = h
}

func (lms *LMTokenizer) fill() {
	if lms.pending != nil || lms.eof {
		return
	}
	tok, err, eof := lms.scanner.Next()
	for err != nil {
		lms.Error(err)
		if ui, is := err.(*machines.UnconsumedInput); is {
			lms.scanner.TC = ui.FailTC
		}
		tok, err, eof = lms.scanner.Next()
	}
	if eof {
		lms.eof = true
		return
	}
	token := tok.(*lexmachine.Token)
	lms.pending = token.Value.(*ladon.Token)
	lms.pendLn = token.StartLine
}

// NextToken is part of the Tokenizer interface.
func (lms *LMTokenizer) NextToken() *ladon.Token {
	lms.fill()
	if lms.pending == nil || lms.pendLn > lms.curLine {
		return nil
	}
	tok := lms.pending
	lms.pending = nil
	lms.fill()
	return tok
}

// EndOfLine is part of the Tokenizer interface.
func (lms *LMTokenizer) EndOfLine() bool {
	lms.fill()
	return lms.pending == nil || lms.pendLn > lms.curLine
}

// EndOfFile is part of the Tokenizer interface.
func (lms *LMTokenizer) EndOfFile() bool {
	lms.fill()
	return lms.eof && lms.pending == nil
}

// ReadLine is part of the Tokenizer interface.
func (lms *LMTokenizer) ReadLine() bool {
	lms.fill()
	if lms.eof && lms.pending == nil {
		return false
	}
	lms.curLine = lms.pendLn
	return true
}

// ---------------------------------------------------------------------------

// Skip is a pre-defined action which ignores the scanned match.
func Skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// makeSystemToken wraps a match into the interned system token.
func makeSystemToken(tab *ladon.TokenTable, lexeme string) lexmachine.Action {
	tok := tab.Intern(lexeme)
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(0, tok, m), nil
	}
}

func (lm *LMAdapter) makeIdent() lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		name := lm.pool.Intern(string(m.Bytes))
		return s.Token(0, &ladon.Token{Kind: ladon.TokIdent, Name: name}, m), nil
	}
}

func (lm *LMAdapter) makeInt() lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		n, err := strconv.ParseInt(string(m.Bytes), 10, 64)
		if err != nil {
			return nil, err
		}
		tok := &ladon.Token{Kind: ladon.TokLiteral,
			Lit: ladon.Literal{Kind: ladon.LitInt, Int: n}}
		return s.Token(0, tok, m), nil
	}
}

func (lm *LMAdapter) makeString() lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		str := string(m.Bytes)
		if len(str) >= 2 {
			str = str[1 : len(str)-1]
		}
		tok := &ladon.Token{Kind: ladon.TokLiteral,
			Lit: ladon.Literal{Kind: ladon.LitString, Str: lm.pool.Intern(str)}}
		return s.Token(0, tok, m), nil
	}
}
