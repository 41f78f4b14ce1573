package rules

import (
	"fmt"

	"github.com/npillmayer/ladon"
)

// GrammarBuilder assembles a Grammar from rule declarations. Clients
// declare one rule per builder call chain and finally call Grammar(),
// which resolves rule references, assigns dense indices and runs the
// offline analyses.
//
//    b := rules.NewGrammarBuilder("G")
//    b.OneOf("Stmt").N("Assign").N("Call").Single().Top().End()
//    b.Concat("Assign").Ident().T("=").N("Expr").T(";").End()
//    ...
//    g, err := b.Grammar()
//
type GrammarBuilder struct {
	name    string
	tables  map[string]*Table // placeholders created on first reference
	order   []*Table          // declaration order
	defined map[string]bool
	tokens  *ladon.TokenTable
	err     error
}

// NewGrammarBuilder gets a new grammar builder.
func NewGrammarBuilder(name string) *GrammarBuilder {
	return &GrammarBuilder{
		name:    name,
		tables:  make(map[string]*Table),
		defined: make(map[string]bool),
		tokens:  ladon.NewTokenTable(),
	}
}

// table returns the (possibly forward-referenced) table for a rule name.
func (b *GrammarBuilder) table(name string) *Table {
	if t, ok := b.tables[name]; ok {
		return t
	}
	t := &Table{Name: name}
	b.tables[name] = t
	return t
}

func (b *GrammarBuilder) declare(name string, kind Kind) *RuleBuilder {
	t := b.table(name)
	if b.defined[name] {
		b.err = fmt.Errorf("rule %q declared twice", name)
	}
	b.defined[name] = true
	t.Kind = kind
	b.order = append(b.order, t)
	return &RuleBuilder{gb: b, table: t}
}

// OneOf declares an alternatives rule.
func (b *GrammarBuilder) OneOf(name string) *RuleBuilder { return b.declare(name, OneOf) }

// Concat declares a sequence rule.
func (b *GrammarBuilder) Concat(name string) *RuleBuilder { return b.declare(name, Concat) }

// ZeroOrMore declares a Kleene-star rule over a single child.
func (b *GrammarBuilder) ZeroOrMore(name string) *RuleBuilder { return b.declare(name, ZeroOrMore) }

// ZeroOrOne declares an optional rule over a single child.
func (b *GrammarBuilder) ZeroOrOne(name string) *RuleBuilder { return b.declare(name, ZeroOrOne) }

// Data declares a single-child wrapper rule.
func (b *GrammarBuilder) Data(name string) *RuleBuilder { return b.declare(name, Data) }

// RuleBuilder adds children and properties to one rule under construction.
type RuleBuilder struct {
	gb    *GrammarBuilder
	table *Table
}

// N appends a reference to the rule with the given name.
func (rb *RuleBuilder) N(name string) *RuleBuilder {
	rb.table.Children = append(rb.table.Children, Child{Sub: rb.gb.table(name)})
	return rb
}

// T appends a terminal lexeme, interned as a system token.
func (rb *RuleBuilder) T(lexeme string) *RuleBuilder {
	rb.table.Children = append(rb.table.Children, Child{Tok: rb.gb.tokens.Intern(lexeme)})
	return rb
}

// Ident appends a reference to the Identifier pseudo table.
func (rb *RuleBuilder) Ident() *RuleBuilder { return rb.N(identifierRuleName) }

// Lit appends a reference to the Literal pseudo table.
func (rb *RuleBuilder) Lit() *RuleBuilder { return rb.N(literalRuleName) }

// Single sets the first-match-only property (OneOf rules).
func (rb *RuleBuilder) Single() *RuleBuilder {
	rb.table.Props |= PropSingle
	return rb
}

// Top marks the rule as a start symbol.
func (rb *RuleBuilder) Top() *RuleBuilder {
	rb.table.Props |= PropTop
	return rb
}

// Action attaches an AST action. Element positions are 1-based child
// indices selecting the action parameters.
func (rb *RuleBuilder) Action(id int, elems ...int) *RuleBuilder {
	rb.table.Actions = append(rb.table.Actions, Action{ID: id, Elems: elems})
	return rb
}

// End finishes the rule declaration.
func (rb *RuleBuilder) End() *GrammarBuilder {
	t := rb.table
	switch t.Kind {
	case ZeroOrMore, ZeroOrOne, Data:
		if len(t.Children) != 1 {
			rb.gb.err = fmt.Errorf("rule %q: %s must have exactly one child", t.Name, t.Kind)
		}
	default:
		if len(t.Children) == 0 {
			rb.gb.err = fmt.Errorf("rule %q has no children", t.Name)
		}
	}
	return rb.gb
}

const (
	identifierRuleName = "Identifier"
	literalRuleName    = "Literal"
)

// Grammar resolves all rule references and builds the immutable grammar,
// including lookahead sets and recursion descriptors.
func (b *GrammarBuilder) Grammar() (*Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}
	// The pseudo leaves exist in every grammar, whether referenced or not.
	ident := b.table(identifierRuleName)
	ident.Kind = Data
	lit := b.table(literalRuleName)
	lit.Kind = Data
	b.defined[identifierRuleName] = true
	b.defined[literalRuleName] = true

	for name := range b.tables {
		if !b.defined[name] {
			return nil, fmt.Errorf("rule %q referenced but never declared", name)
		}
	}

	g := &Grammar{
		Name:       b.name,
		tokens:     b.tokens,
		identifier: ident,
		literal:    lit,
	}
	for _, t := range b.order {
		t.Index = len(g.tables)
		g.tables = append(g.tables, t)
		if t.IsTop() {
			g.tops = append(g.tops, t)
		}
	}
	ident.Index = len(g.tables)
	g.tables = append(g.tables, ident)
	lit.Index = len(g.tables)
	g.tables = append(g.tables, lit)

	if len(g.tops) == 0 {
		return nil, fmt.Errorf("grammar %q has no top rule", b.name)
	}

	g.recursions = DetectRecursions(g)
	g.lookahead = computeLookAhead(g)
	tracer().Infof("grammar %q: %d tables, %d recursion group(s)",
		g.Name, len(g.tables), g.recursions.GroupCount())
	return g, nil
}
