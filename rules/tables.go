package rules

import (
	"fmt"

	"github.com/npillmayer/ladon"
)

// Kind determines how the children of a rule table compose.
type Kind int8

const (
	KindNA     Kind = iota
	OneOf           // first-to-last alternatives
	Concat          // ordered sequence
	ZeroOrMore      // Kleene star over a single child
	ZeroOrOne       // optional single child
	Data            // single-child wrapper
)

func (k Kind) String() string {
	switch k {
	case OneOf:
		return "OneOf"
	case Concat:
		return "Concat"
	case ZeroOrMore:
		return "ZeroOrMore"
	case ZeroOrOne:
		return "ZeroOrOne"
	case Data:
		return "Data"
	}
	return "N.A."
}

// Props is the property bit-set of a rule table.
type Props uint8

const (
	// PropSingle marks a OneOf which takes the first matching alternative
	// and does not try the rest.
	PropSingle Props = 1 << iota
	// PropTop marks a start symbol.
	PropTop
)

// Action attaches an AST-building action to a rule table. ID selects a
// builder function in the dispatch table of the embedding front-end. Elems
// are 1-based child positions whose AST values become action parameters.
type Action struct {
	ID    int
	Elems []int
}

// Child is one slot of a rule table: either a reference to another rule
// table or a system token. Exactly one field is set.
type Child struct {
	Sub *Table
	Tok *ladon.Token
}

// IsSub returns true if the child references a rule table.
func (c Child) IsSub() bool { return c.Sub != nil }

// IsToken returns true if the child is a system token.
func (c Child) IsToken() bool { return c.Tok != nil }

func (c Child) String() string {
	if c.Sub != nil {
		return c.Sub.Name
	}
	if c.Tok != nil {
		return "'" + c.Tok.Name + "'"
	}
	return "?"
}

// Table is one grammar node. Tables are immutable after the grammar has
// been built.
type Table struct {
	Index    int // dense, unique across the grammar
	Name     string
	Kind     Kind
	Children []Child
	Props    Props
	Actions  []Action
}

// IsTop returns true if the table is a start symbol.
func (t *Table) IsTop() bool { return t.Props&PropTop != 0 }

// IsSingle returns true for a OneOf taking the first match only.
func (t *Table) IsSingle() bool { return t.Props&PropSingle != 0 }

// IsZero returns true for table kinds which may legitimately match
// nothing.
func (t *Table) IsZero() bool {
	return t.Kind == ZeroOrMore || t.Kind == ZeroOrOne
}

// ActionRefersTo returns true if any action of the table references the
// 1-based child position idx.
func (t *Table) ActionRefersTo(idx int) bool {
	for _, a := range t.Actions {
		for _, e := range a.Elems {
			if e == idx {
				return true
			}
		}
	}
	return false
}

func (t *Table) String() string {
	return fmt.Sprintf("%s[%s #%d]", t.Name, t.Kind, t.Index)
}

// LookAhead is one entry of a lookahead set: a concrete system token, any
// identifier, or any literal.
type LookAhead struct {
	Tok        *ladon.Token
	AnyIdent   bool
	AnyLiteral bool
}

// Matches checks a lookahead entry against a concrete input token.
func (la LookAhead) Matches(tok *ladon.Token) bool {
	switch {
	case la.AnyIdent:
		return tok.IsIdentifier()
	case la.AnyLiteral:
		return tok.IsLiteral()
	case la.Tok != nil:
		return tok == la.Tok
	}
	return false
}

// Grammar owns the rule tables of one source language, its system tokens,
// and the results of the offline analyses. Immutable after Grammar() has
// built it; shared, read-only, between parser instances.
type Grammar struct {
	Name       string
	tables     []*Table // dense by Table.Index
	tops       []*Table
	tokens     *ladon.TokenTable
	lookahead  [][]LookAhead // by Table.Index; empty set = no short-circuit
	identifier *Table        // pseudo leaf, matched by token kind
	literal    *Table        // pseudo leaf, matched by token kind
	recursions *RecursionSet
}

// TableCount returns the number of rule tables, pseudo tables included.
func (g *Grammar) TableCount() int { return len(g.tables) }

// Table returns the rule table with the given dense index.
func (g *Grammar) Table(i int) *Table { return g.tables[i] }

// TableNamed looks a table up by rule name, nil if absent.
func (g *Grammar) TableNamed(name string) *Table {
	for _, t := range g.tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Tops returns the start symbols in declaration order.
func (g *Grammar) Tops() []*Table { return g.tops }

// Tokens returns the grammar's system token table.
func (g *Grammar) Tokens() *ladon.TokenTable { return g.tokens }

// LookAheadFor returns the lookahead set of a table. An empty set means
// matching may not be short-circuited.
func (g *Grammar) LookAheadFor(t *Table) []LookAhead { return g.lookahead[t.Index] }

// Identifier returns the pseudo table matched against identifier tokens.
// It is never descended into.
func (g *Grammar) Identifier() *Table { return g.identifier }

// Literal returns the pseudo table matched against literal tokens.
func (g *Grammar) Literal() *Table { return g.literal }

// Recursions returns the left-recursion descriptors of the grammar.
func (g *Grammar) Recursions() *RecursionSet { return g.recursions }

// EachTable calls f for every rule table, in index order.
func (g *Grammar) EachTable(f func(*Table)) {
	for _, t := range g.tables {
		f(t)
	}
}

// Dump prints the grammar through the package tracer, for debugging.
func (g *Grammar) Dump() {
	for _, t := range g.tables {
		tracer().Debugf("%3d: %-20s %-10s %v", t.Index, t.Name, t.Kind, t.Children)
	}
}
