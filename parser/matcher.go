package parser

import (
	"github.com/npillmayer/ladon"
	"github.com/npillmayer/ladon/rules"
)

// The matcher. matchTable is the per-attempt entry: it consults the
// match caches, applies lookahead, descends by table kind, and records
// the outcome both in the appeal node and in the global caches. On
// success the set of matching end positions is left in ctx.last and the
// cursor is positioned past the longest end; on failure the cursor is
// restored. Callers must continue from ctx.last, not from the cursor.

// moveCur moves the cursor one step, pulling a new line of tokens when
// the buffer runs dry. Returns false at end of input.
func (p *Parser) moveCur() bool {
	ctx := p.ctx
	ctx.cur++
	if ctx.cur > ctx.farthest {
		ctx.farthest = ctx.cur
	}
	if ctx.cur >= ctx.buf.size() {
		if ctx.buf.lexLine(ctx.cur) == 0 {
			ctx.eof = true
			return false
		}
	}
	return true
}

// matchPre consults SuccMatch and FailSet before any descent. A cached
// success is imported into the appeal node (status WasSucc) and the
// cursor advanced past the longest end. Returns true if the cache entry
// is done (frozen).
func (p *Parser) matchPre(appeal *appealNode) bool {
	ctx := p.ctx
	t := appeal.table
	isDone := false

	if e := p.succOf(t).locate(ctx.cur); e != nil {
		// Rules affected by the second appearance of a first instance may
		// later succeed, so success and failure must never coexist.
		must(!p.wasFailed(t, ctx.cur), "rule %s both succeeded and failed at %d", t.Name, ctx.cur)
		isDone = e.done()
		ctx.last = e.matchSlice()
		for _, m := range ctx.last {
			appeal.addMatch(m)
			if m > ctx.cur {
				ctx.cur = m
			}
		}
		// A ZeroOr-entry may hold no real match; the cursor stays put then.
		if len(ctx.last) > 0 {
			p.moveCur()
		}
		appeal.status = succWasSucc
		return isDone
	}
	if p.wasFailed(t, ctx.cur) {
		appeal.status = failWasFailed
	}
	return isDone
}

// lookAheadFail returns true when the rule's lookahead set is non-empty
// and the current token matches none of its entries.
func (p *Parser) lookAheadFail(t *rules.Table, token int) bool {
	la := p.grammar.LookAheadFor(t)
	if len(la) == 0 {
		return false
	}
	if token >= p.ctx.buf.size() {
		return true
	}
	tok := p.ctx.buf.active(token)
	for _, entry := range la {
		if entry.Matches(tok) {
			return false
		}
	}
	return true
}

// matchTable attempts one rule table at the current token.
func (p *Parser) matchTable(t *rules.Table, parent *appealNode) bool {
	ctx := p.ctx
	ctx.steps++
	tracer().Debugf("enter %s @%d", t.Name, ctx.cur)

	appeal := p.newAppealNode()
	appeal.table = t
	appeal.start = ctx.cur
	appeal.parent = parent
	parent.addChild(appeal)

	saved := ctx.cur
	isDone := p.matchPre(appeal)

	recs := p.grammar.Recursions()
	groupID, inGroup := recs.GroupOf(t)

	// A cached failure is final outside recursion groups (or once the
	// group entry is frozen); inside an unfinished group a later
	// iteration may still succeed.
	if appeal.isFail() && (!inGroup || isDone) {
		tracer().Debugf("exit  %s @%d %s", t.Name, ctx.cur, appeal.status)
		ctx.last = nil
		return false
	}

	if p.lookAheadFail(t, saved) && !t.IsZero() {
		appeal.status = failLookAhead
		p.addFailed(t, saved)
		tracer().Debugf("exit  %s @%d %s", t.Name, ctx.cur, appeal.status)
		ctx.last = nil
		return false
	}

	if appeal.isSucc() && (!inGroup || isDone) {
		tracer().Debugf("exit  %s @%d %s %v", t.Name, ctx.cur, appeal.status, ctx.last)
		return true
	}

	var rec *recTraversal
	if inGroup {
		rec = p.findRecStack(groupID, appeal.start)
	}

	// Inside one instance each recursion node is visited at most once at
	// a given position; a second visit returns the current result.
	if rec != nil && !recs.IsLeadNode(t) && rec.nodeVisited(t) {
		tracer().Debugf("exit  %s @%d revisit %s", t.Name, ctx.cur, appeal.status)
		if !appeal.isSucc() {
			ctx.last = nil
		}
		return appeal.isSucc()
	}

	if recs.IsLeadNode(t) {
		if rec == nil {
			// the first lead node hit at this position drives the group's
			// fixed-point iteration
			found := p.matchLeadNode(t, appeal)
			tracer().Debugf("exit  %s @%d %s %v", t.Name, ctx.cur, appeal.status, ctx.last)
			return found
		}
		// Re-entry during an active traversal: connect to the previous
		// instance when one exists.
		if appeal.isSucc() {
			appeal.status = succ
			if rec.connectPrevious(appeal) {
				tracer().Debugf("exit  %s @%d connect-previous %v", t.Name, ctx.cur, ctx.last)
				return true
			}
		}
		// No previous instance: the second appearance inside the first
		// instance. Not a real failure — never recorded in FailSet.
		ctx.cur = saved
		appeal.status = fail2ndOf1stInstance
		rec.addAppealPoint(appeal)
		tracer().Debugf("exit  %s @%d %s", t.Name, ctx.cur, appeal.status)
		ctx.last = nil
		return false
	}

	// Restore the cursor: the pre-pass moved it on a cached success, but
	// re-traversal inside an unfinished group starts over.
	ctx.cur = saved

	matched := p.matchTableRegular(t, appeal)
	if rec != nil {
		rec.visitNode(t)
	}
	// The pseudo leaves carry no SuccMatch; their matching is trivial.
	if !inGroup && matched && t != p.grammar.Identifier() && t != p.grammar.Literal() {
		p.succOf(t).entry(saved).markDone()
	}
	tracer().Debugf("exit  %s @%d %s %v", t.Name, ctx.cur, appeal.status, ctx.last)
	return matched
}

// matchTableRegular descends into a table by kind and does the
// post-result bookkeeping.
func (p *Parser) matchTableRegular(t *rules.Table, appeal *appealNode) bool {
	ctx := p.ctx
	oldPos := ctx.cur
	ctx.last = nil

	wasSucc := appeal.status == succWasSucc || appeal.status == succStillWasSucc
	longestBefore := -1
	if wasSucc && appeal.matchCount() > 0 {
		longestBefore = appeal.longestMatch()
	}

	// The pseudo leaves are matched against the token kind and bypass
	// SuccMatch; a failure is still recorded in the FailSet.
	if t == p.grammar.Identifier() {
		return p.matchIdentifier(t, appeal)
	}
	if t == p.grammar.Literal() {
		return p.matchLiteral(t, appeal)
	}

	var matched bool
	switch t.Kind {
	case rules.OneOf:
		matched = p.matchOneOf(t, appeal)
	case rules.ZeroOrMore:
		matched = p.matchZeroOrMore(t, appeal)
	case rules.ZeroOrOne:
		matched = p.matchZeroOrOne(t, appeal)
	case rules.Concat:
		matched = p.matchConcatFrom(t, appeal, 0)
	case rules.Data:
		matched = p.matchChild(t.Children[0], appeal)
	}

	if matched {
		p.succeedTable(t, appeal, oldPos, wasSucc, longestBefore)
		return true
	}
	appeal.status = failChildrenFailed
	ctx.cur = oldPos
	p.addFailed(t, oldPos)
	return false
}

// succeedTable updates the appeal node and the match cache after a
// successful descent. If the node was already satisfied from cache and
// the new longest end does not exceed the cached longest, the node is
// marked StillWasSucc and the cache stays untouched.
func (p *Parser) succeedTable(t *rules.Table, appeal *appealNode, oldPos int, wasSucc bool, longestBefore int) {
	longest := -1
	for _, m := range p.ctx.last {
		if m > longest {
			longest = m
		}
	}
	if !wasSucc || longest > longestBefore {
		p.updateSucc(oldPos, appeal)
		appeal.status = succ
	} else {
		appeal.status = succStillWasSucc
	}
	p.resetFailed(t, oldPos)
}

// updateSucc records ctx.last for the rule of an appeal node.
func (p *Parser) updateSucc(start int, appeal *appealNode) {
	must(appeal.isTable(), "updateSucc on a token node")
	e := p.succOf(appeal.table).entry(start)
	e.addNode(appeal)
	for _, m := range p.ctx.last {
		appeal.addMatch(m)
		e.addMatch(m)
	}
}

// setDoneGroup freezes the group's entries at a start token once the
// fixed point has been reached.
func (p *Parser) setDoneGroup(groupID int, start int) {
	for _, rt := range p.grammar.Recursions().GroupRules(groupID) {
		if e := p.succOf(rt).locate(start); e != nil {
			e.markDone()
		}
	}
}

// appealPath walks upward from a node toward the recursion root and
// clears mistaken FailChildrenFailed entries from the global cache. The
// appeal tree itself remains marked failed.
func (p *Parser) appealPath(start, root *appealNode) {
	must(root.isSucc(), "appeal root is not successful")
	for node := start.parent; node != nil && node != root; node = node.parent {
		if node.status == failChildrenFailed && node.isTable() {
			tracer().Debugf("appeal: reset fail of %s @%d", node.table.Name, node.start)
			p.resetFailed(node.table, node.start)
		}
	}
}

// --- Leaves ----------------------------------------------------------------

// matchToken matches a system token by identity. The appeal leaf records
// the single end position.
func (p *Parser) matchToken(tok *ladon.Token, parent *appealNode) bool {
	ctx := p.ctx
	if ctx.cur >= ctx.buf.size() {
		return false
	}
	cur := ctx.buf.active(ctx.cur)
	if cur != tok {
		return false
	}
	appeal := p.newAppealNode()
	appeal.setToken(cur)
	appeal.start = ctx.cur
	appeal.status = succ
	appeal.addMatch(ctx.cur)
	appeal.parent = parent
	parent.addChild(appeal)

	ctx.last = []int{ctx.cur}
	p.moveCur()
	return true
}

// matchIdentifier succeeds iff the current token is an identifier. The
// appeal node becomes a token leaf; SuccMatch is bypassed, a failure is
// recorded in the FailSet.
func (p *Parser) matchIdentifier(t *rules.Table, appeal *appealNode) bool {
	if p.ctx.cur >= p.ctx.buf.size() || !p.ctx.buf.active(p.ctx.cur).IsIdentifier() {
		p.failLeaf(t, appeal, failNotIdentifier)
		return false
	}
	p.succeedLeaf(appeal)
	return true
}

// matchLiteral succeeds iff the current token is a literal.
func (p *Parser) matchLiteral(t *rules.Table, appeal *appealNode) bool {
	if p.ctx.cur >= p.ctx.buf.size() || !p.ctx.buf.active(p.ctx.cur).IsLiteral() {
		p.failLeaf(t, appeal, failNotLiteral)
		return false
	}
	p.succeedLeaf(appeal)
	return true
}

func (p *Parser) succeedLeaf(appeal *appealNode) {
	ctx := p.ctx
	cur := ctx.buf.active(ctx.cur)
	appeal.status = succ
	appeal.setToken(cur)
	appeal.start = ctx.cur
	appeal.addMatch(ctx.cur)
	ctx.last = []int{ctx.cur}
	p.moveCur()
}

func (p *Parser) failLeaf(t *rules.Table, appeal *appealNode, st status) {
	p.addFailed(t, p.ctx.cur)
	appeal.status = st
	p.ctx.last = nil
}

// matchChild attempts one child slot: a token or a subtable. The cursor
// is restored when the child fails.
func (p *Parser) matchChild(data rules.Child, parent *appealNode) bool {
	ctx := p.ctx
	oldPos := ctx.cur
	ctx.last = nil
	if data.Tok != nil {
		return p.matchToken(data.Tok, parent)
	}
	found := p.matchTable(data.Sub, parent)
	if !found {
		ctx.cur = oldPos
	}
	return found
}

// --- Descent by kind -------------------------------------------------------

func addUniq(set []int, v int) []int {
	for _, have := range set {
		if have == v {
			return set
		}
	}
	return append(set, v)
}

// matchOneOf tries each alternative in order and collects all distinct
// end positions. A Single table stops at the first success. The cursor is
// repositioned before each alternative; afterwards it sits at the longest
// match.
func (p *Parser) matchOneOf(t *rules.Table, parent *appealNode) bool {
	ctx := p.ctx
	found := false
	var ends []int
	oldPos := ctx.cur
	newPos := ctx.cur

	for _, data := range t.Children {
		if p.matchChild(data, parent) {
			found = true
			for _, m := range ctx.last {
				ends = addUniq(ends, m)
			}
			if ctx.cur > newPos {
				newPos = ctx.cur
			}
			ctx.cur = oldPos
			if t.IsSingle() {
				break
			}
		}
	}
	ctx.last = ends
	ctx.cur = newPos
	return found
}

// matchZeroOrMore loops the sole child over the growing end-set until an
// iteration produces nothing new. A visited-set of starting positions
// keeps degenerate sub-rules (a ZeroOrMore inside a ZeroOrMore) from
// re-entering at the same position forever. Always succeeds; an empty
// result means "matched nothing".
func (p *Parser) matchZeroOrMore(t *rules.Table, parent *appealNode) bool {
	ctx := p.ctx
	saved := ctx.cur
	data := t.Children[0]

	prev := []int{ctx.cur - 1}
	var visited []int
	var final []int

	for {
		foundSub := false
		var subEnds []int
		for _, pe := range prev {
			ctx.cur = pe + 1
			visited = addUniq(visited, pe)
			if p.matchChild(data, parent) {
				foundSub = true
				subEnds = append(subEnds, ctx.last...)
			}
		}
		if !foundSub || len(subEnds) == 0 {
			// a sub-ZeroOr succeeding without real matches is a stop
			break
		}
		prev = prev[:0]
		for _, e := range subEnds {
			final = addUniq(final, e)
			isVisited := false
			for _, v := range visited {
				if v == e {
					isVisited = true
					break
				}
			}
			if !isVisited {
				prev = addUniq(prev, e)
			}
		}
		if len(prev) == 0 {
			break
		}
	}

	ctx.last = final
	ctx.cur = saved
	for _, e := range final {
		if e+1 > ctx.cur {
			ctx.cur = e + 1
		}
	}
	return true
}

// matchZeroOrOne attempts the sole child once. Always succeeds.
func (p *Parser) matchZeroOrOne(t *rules.Table, parent *appealNode) bool {
	ctx := p.ctx
	ctx.last = nil
	if !p.matchChild(t.Children[0], parent) {
		ctx.last = nil
	}
	return true
}

// matchConcatFrom matches the children of a Concat table starting at
// child index from. Every end position of a child is a starting point
// for the next one; ZeroOr children additionally carry the previous ends
// forward, since "match nothing" is a valid outcome for them. The
// non-zero entry point exists for the recursion engine, which resumes a
// Concat lead behind its recursive prefix.
func (p *Parser) matchConcatFrom(t *rules.Table, parent *appealNode, from int) bool {
	ctx := p.ctx
	found := true
	saved := ctx.cur
	lastMatched := ctx.cur - 1

	prev := []int{ctx.cur - 1}
	var final []int

	for i := from; i < len(t.Children); i++ {
		data := t.Children[i]
		isZero := data.Sub != nil && data.Sub.IsZero()

		foundSub := false
		var subEnds []int
		for _, pe := range prev {
			ctx.cur = pe + 1
			if p.matchChild(data, parent) {
				foundSub = true
				dupWithPrev := false
				for _, m := range ctx.last {
					subEnds = append(subEnds, m)
					if m == pe {
						dupWithPrev = true
					}
				}
				// ZeroOr children always succeed; 'zero' is a valid
				// outcome and the previous end stays a starting point.
				if isZero && !dupWithPrev {
					subEnds = append(subEnds, pe)
				}
			}
		}
		if !foundSub {
			found = false
			break
		}
		// A ZeroOr child matching nothing moves the rule forward without
		// moving the cursor.
		if len(subEnds) > 0 {
			final = final[:0]
			prev = prev[:0]
			for _, e := range subEnds {
				final = addUniq(final, e)
				prev = addUniq(prev, e)
			}
		}
	}

	// All children may be ZeroOr-kind and the only survivor the zero
	// match; that is no progress and the concatenation fails.
	if len(final) == 1 && final[0] == lastMatched {
		found = false
	}

	if found {
		ctx.last = final
		ctx.cur = saved
		for _, e := range final {
			if e+1 > ctx.cur {
				ctx.cur = e + 1
			}
		}
	} else {
		ctx.last = nil
		ctx.cur = saved
	}
	return found
}
