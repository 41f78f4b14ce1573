package parser

import (
	"github.com/npillmayer/ladon"
	"github.com/npillmayer/ladon/scanner"
)

// tokenBuffer is a lazy, append-only window over the tokenizer's stream.
// It pulls one logical line of tokens at a time, dropping whitespace and
// comments. Tokens are never released during a top-level parse — the
// matcher re-reads arbitrarily far back through active().
type tokenBuffer struct {
	tkz    scanner.Tokenizer
	tokens []*ladon.Token
	eof    bool
}

func newTokenBuffer(tkz scanner.Tokenizer) *tokenBuffer {
	return &tokenBuffer{tkz: tkz}
}

// active returns the token at index i.
func (b *tokenBuffer) active(i int) *ladon.Token {
	must(i >= 0 && i < len(b.tokens), "token buffer access out of bounds (%d of %d)", i, len(b.tokens))
	return b.tokens[i]
}

// size returns the number of buffered tokens.
func (b *tokenBuffer) size() int { return len(b.tokens) }

// lexLine reads tokens until the current line yields at least one
// valuable token, skipping over empty lines. Tokens already buffered
// beyond the cursor count as pending and are reported without lexing.
// Returns the number of available tokens; 0 only at end of input.
func (b *tokenBuffer) lexLine(cur int) int {
	if cur < len(b.tokens) {
		return len(b.tokens) - cur
	}
	if b.eof {
		return 0
	}
	n := 0
	for n == 0 {
		for !b.tkz.EndOfLine() && !b.tkz.EndOfFile() {
			t := b.tkz.NextToken()
			if t == nil {
				break
			}
			if t.IsWhiteSpace() || t.IsComment() {
				continue
			}
			b.tokens = append(b.tokens, t)
			n++
		}
		if n == 0 {
			if b.tkz.EndOfFile() {
				b.eof = true
				break
			}
			b.tkz.ReadLine()
		}
	}
	return n
}

// compact drops the tokens before index from, which have been consumed by
// the previous top-level construct. Pending tokens of the current line
// carry over.
func (b *tokenBuffer) compact(from int) {
	if from <= 0 {
		return
	}
	if from >= len(b.tokens) {
		b.tokens = b.tokens[:0]
		return
	}
	rest := len(b.tokens) - from
	copy(b.tokens, b.tokens[from:])
	b.tokens = b.tokens[:rest]
}
