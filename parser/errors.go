package parser

import (
	"fmt"

	"github.com/npillmayer/ladon"
)

// SyntaxError reports that no top rule matched. The parser stops at the
// first syntactic failure; Farthest is the index of the farthest token
// reached during matching.
type SyntaxError struct {
	Farthest int
	Token    *ladon.Token
}

func (e *SyntaxError) Error() string {
	if e.Token != nil {
		return fmt.Sprintf("syntax error at token #%d (%v)", e.Farthest, e.Token)
	}
	return fmt.Sprintf("syntax error at token #%d", e.Farthest)
}

// AmbiguityError reports that a top rule matched the same input with more
// than one end position.
type AmbiguityError struct {
	Rule string
	Ends []int
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("grammar is ambiguous: top rule %s admits end positions %v", e.Rule, e.Ends)
}

// InternalError reports a violated engine invariant. These are programmer
// errors, never user-input errors.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "internal: " + e.Msg
}

// must panics with an *InternalError unless cond holds. Parser.Parse
// recovers the panic into its error result.
func must(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(&InternalError{Msg: fmt.Sprintf(format, args...)})
	}
}
