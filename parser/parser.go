package parser

import (
	"github.com/npillmayer/ladon/ast"
	"github.com/npillmayer/ladon/rules"
	"github.com/npillmayer/ladon/scanner"
)

// parseContext is the per-parse mutable state. One context is created
// per Parser and reset (resetContext) for every top-level construct; one
// construct cannot influence another except through the module's AST
// collection.
type parseContext struct {
	buf      *tokenBuffer
	cur      int // index of the first to-be-matched token
	eof      bool
	succ     []*succMatch  // by rule-table index
	failed   []map[int]bool // by rule-table index: start tokens which failed
	last     []int         // end-set of the most recent successful match
	arena    []*appealNode // owns all appeal nodes of this construct
	recStack []*recTraversal
	farthest int // farthest token reached, for syntax diagnostics
	steps    int // matcher invocations, bounded by rules × tokens²
}

// Parser matches the token stream of one file against a grammar and
// builds the module's ASTs. Single-threaded; one instance per file.
type Parser struct {
	name    string
	grammar *rules.Grammar
	builder *ast.Builder
	module  *ast.Module
	ctx     *parseContext
	root    *appealNode // pseudo root of the appeal tree
}

// New creates a parser for one input. The grammar and the action builder
// are shared, read-only; the tokenizer is consumed.
func New(name string, g *rules.Grammar, tkz scanner.Tokenizer, builder *ast.Builder) *Parser {
	p := &Parser{
		name:    name,
		grammar: g,
		builder: builder,
		module:  ast.NewModule(name),
	}
	p.ctx = &parseContext{buf: newTokenBuffer(tkz)}
	p.resetContext()
	return p
}

// Module returns the module collection; valid after Parse succeeded.
func (p *Parser) Module() *ast.Module { return p.module }

// resetContext resets the per-construct state: match caches, appeal
// arena, recursion stack and the consumed prefix of the token buffer.
func (p *Parser) resetContext() {
	ctx := p.ctx
	ctx.buf.compact(ctx.cur)
	ctx.cur = 0
	n := p.grammar.TableCount()
	if ctx.succ == nil {
		ctx.succ = make([]*succMatch, n)
		ctx.failed = make([]map[int]bool, n)
	}
	for i := 0; i < n; i++ {
		ctx.succ[i] = newSuccMatch()
		ctx.failed[i] = make(map[int]bool)
	}
	ctx.last = nil
	ctx.arena = ctx.arena[:0]
	ctx.recStack = ctx.recStack[:0]
	ctx.farthest = 0
	ctx.steps = 0
	p.root = p.newAppealNode()
}

// newAppealNode allocates a node in the per-construct arena.
func (p *Parser) newAppealNode() *appealNode {
	n := &appealNode{finalMatch: -1}
	p.ctx.arena = append(p.ctx.arena, n)
	return n
}

// Parse processes the whole input, one top-level construct at a time.
// On success the module holds one AST tree per construct; empty input
// yields success with zero trees. Violated engine invariants surface as
// *InternalError.
func (p *Parser) Parse() (mod *ast.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*InternalError); ok {
				err = ie
				return
			}
			panic(r)
		}
	}()
	for {
		more, cerr := p.parseConstruct()
		if cerr != nil {
			return nil, cerr
		}
		if !more {
			break
		}
	}
	tracer().Infof("parsed %q: %d top-level construct(s)", p.name, len(p.module.Trees()))
	return p.module, nil
}

// parseConstruct parses one top-level construct. Returns false when the
// input is exhausted.
func (p *Parser) parseConstruct() (bool, error) {
	p.resetContext()
	if p.ctx.buf.lexLine(p.ctx.cur) == 0 {
		return false, nil // end of file
	}

	ok, err := p.matchConstruct()
	if err != nil {
		return false, err
	}
	if !ok {
		serr := &SyntaxError{Farthest: p.ctx.farthest}
		if p.ctx.farthest < p.ctx.buf.size() {
			serr.Token = p.ctx.buf.active(p.ctx.farthest)
		}
		return false, serr
	}

	top := p.root.sortedChildren[0]
	p.patchWasSucc(top)
	p.simplifySortedTree()
	tree, err := p.buildAST()
	if err != nil {
		return false, err
	}
	p.module.AddTree(tree)
	return true, nil
}

// matchConstruct tries each top rule in order against the current token
// position. The first match wins; its appeal tree is sorted out into a
// single parse tree.
func (p *Parser) matchConstruct() (bool, error) {
	for _, t := range p.grammar.Tops() {
		p.root.children = p.root.children[:0]
		p.ctx.cur = 0
		if !p.matchTable(t, p.root) {
			continue
		}
		must(len(p.root.children) == 1, "top attempt left %d children", len(p.root.children))
		topnode := p.root.children[0]
		must(topnode.isSucc(), "top child not successful")

		// A top rule must yield exactly one end position, else the
		// grammar is ambiguous.
		if topnode.matchCount() != 1 {
			return false, &AmbiguityError{Rule: t.Name, Ends: topnode.matches}
		}
		p.ctx.cur = topnode.matches[0] + 1
		p.root.status = succ
		if err := p.sortOut(); err != nil {
			return false, err
		}
		tracer().Debugf("matched %d token(s) for top rule %s", p.ctx.cur, t.Name)
		return true, nil
	}
	return false, nil
}

// succOf returns the SuccMatch memo of a rule table.
func (p *Parser) succOf(t *rules.Table) *succMatch {
	return p.ctx.succ[t.Index]
}

// --- FailSet ---------------------------------------------------------------

func (p *Parser) addFailed(t *rules.Table, token int) {
	p.ctx.failed[t.Index][token] = true
}

// resetFailed removes a fail record. Used on success and by the appeal
// walk which clears mistaken failures discovered mid-iteration.
func (p *Parser) resetFailed(t *rules.Table, token int) {
	delete(p.ctx.failed[t.Index], token)
}

func (p *Parser) wasFailed(t *rules.Table, token int) bool {
	return p.ctx.failed[t.Index][token]
}

// StepCount returns the number of matcher invocations of the last
// construct, for termination diagnostics.
func (p *Parser) StepCount() int { return p.ctx.steps }
