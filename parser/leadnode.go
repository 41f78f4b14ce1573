package parser

import (
	"github.com/npillmayer/ladon/rules"
)

// The recursion engine. A rule group containing left-recursive cycles is
// matched by iterating its lead node to a fixed point: the first instance
// matches only the alternatives which do not re-enter the recursion (the
// LeadFronNodes), every further instance re-traverses the lead with the
// recursive edges resolved by "connect to previous instance". Each
// instance grows the lead's match set monotonically; when an instance
// adds no new end position the fixed point is reached and the group's
// cache entries are frozen.

type instanceKind int8

const (
	instanceFirst instanceKind = iota
	instanceRest
)

// recTraversal is the state of one fixed-point iteration, keyed by
// (group, start token). Nested traversals of the same group at other
// positions stack.
type recTraversal struct {
	groupID  int
	start    int
	instance instanceKind
	count    int // instances so far

	visited      map[*rules.Table]bool // recursion nodes visited in the current instance
	prevLead     map[*rules.Table]*appealNode
	appealPoints []*appealNode
	lead         *rules.Table // the lead driving this traversal
}

func newRecTraversal(groupID, start int, lead *rules.Table) *recTraversal {
	return &recTraversal{
		groupID:  groupID,
		start:    start,
		lead:     lead,
		visited:  make(map[*rules.Table]bool),
		prevLead: make(map[*rules.Table]*appealNode),
	}
}

func (rec *recTraversal) nodeVisited(t *rules.Table) bool { return rec.visited[t] }
func (rec *recTraversal) visitNode(t *rules.Table)        { rec.visited[t] = true }

func (rec *recTraversal) addAppealPoint(n *appealNode) {
	rec.appealPoints = append(rec.appealPoints, n)
}

// connectPrevious resolves a lead-node re-entry with the result of the
// previous instance. The previous instance's appeal node is linked as the
// sole child, giving sort-out a connect-only edge. The caller has already
// imported the match set from the cache.
func (rec *recTraversal) connectPrevious(appeal *appealNode) bool {
	prev := rec.prevLead[appeal.table]
	if prev == nil {
		prev = rec.prevLead[rec.lead]
	}
	if prev == nil {
		return false
	}
	appeal.addChild(prev)
	return true
}

// findRecStack returns the active traversal for a group at a start
// token, nil if there is none.
func (p *Parser) findRecStack(groupID, start int) *recTraversal {
	for i := len(p.ctx.recStack) - 1; i >= 0; i-- {
		rec := p.ctx.recStack[i]
		if rec.groupID == groupID && rec.start == start {
			return rec
		}
	}
	return nil
}

// matchLeadNode drives the fixed-point iteration for the lead node of a
// recursion group. appeal is the node of the triggering attempt; each
// instance hangs below it as a same-table child.
func (p *Parser) matchLeadNode(t *rules.Table, appeal *appealNode) bool {
	ctx := p.ctx
	recs := p.grammar.Recursions()
	recursion := recs.RecursionFor(t)
	must(recursion != nil, "%s is not a lead node", t.Name)

	rec := newRecTraversal(recursion.GroupID, appeal.start, t)
	ctx.recStack = append(ctx.recStack, rec)
	defer func() {
		ctx.recStack = ctx.recStack[:len(ctx.recStack)-1]
	}()

	var accumulated []int
	for {
		rec.count++
		rec.visited = make(map[*rules.Table]bool)
		tracer().Debugf("<LR> %s @%d instance %d", t.Name, appeal.start, rec.count)

		inst := p.newAppealNode()
		inst.table = t
		inst.start = appeal.start
		inst.parent = appeal
		appeal.addChild(inst)

		ctx.cur = appeal.start
		var matched bool
		if rec.instance == instanceFirst {
			matched = p.matchLeadFirstInstance(recursion, inst)
		} else {
			matched = p.matchTableRegular(t, inst)
		}

		if !matched {
			if rec.instance == instanceFirst {
				// nothing bootstraps the recursion at this token
				appeal.status = failChildrenFailed
				ctx.cur = appeal.start
				ctx.last = nil
				return false
			}
			// a failed late instance is no failure of the lead itself
			p.resetFailed(t, appeal.start)
			break // fixed point: the last instance added nothing
		}

		grew := false
		for _, m := range inst.matches {
			before := len(accumulated)
			accumulated = addUniq(accumulated, m)
			if len(accumulated) > before {
				grew = true
			}
		}
		rec.prevLead[t] = inst
		rec.instance = instanceRest
		if !grew {
			break // fixed point: no new end positions
		}
	}

	must(len(accumulated) > 0, "lead node %s succeeded without matches", t.Name)
	appeal.status = succ
	ctx.last = append([]int(nil), accumulated...)
	for _, m := range accumulated {
		appeal.addMatch(m)
	}
	// the triggering node carries the final match set, too
	e := p.succOf(t).entry(appeal.start)
	e.addNode(appeal)

	longest := appeal.start
	for _, m := range accumulated {
		if m > longest {
			longest = m
		}
	}
	ctx.cur = longest
	p.moveCur()

	p.setDoneGroup(recursion.GroupID, appeal.start)

	// Clear mistaken failures recorded while the iteration was under way,
	// so later attempts at the same tokens are not short-circuited.
	for _, point := range rec.appealPoints {
		p.appealPath(point, appeal)
	}
	return true
}

// matchLeadFirstInstance matches the lead's alternatives which do not
// re-enter the recursion. For a Concat lead the recursive entry child is
// taken as a zero-length prefix and the remaining children are matched
// (the Concat LeadFronNodes carry the resume index); other kinds traverse
// regularly — the recursive edges fail as second appearances and only the
// non-recursive alternatives survive.
func (p *Parser) matchLeadFirstInstance(recursion *rules.Recursion, inst *appealNode) bool {
	t := recursion.LeadNode
	if t.Kind != rules.Concat {
		return p.matchTableRegular(t, inst)
	}

	ctx := p.ctx
	start := inst.start
	found := false
	var ends []int

	ctx.cur = start
	if p.matchConcatFrom(t, inst, 0) {
		found = true
		for _, m := range ctx.last {
			ends = addUniq(ends, m)
		}
	}
	for _, fron := range recursion.LeadFronNodes {
		if fron.Kind != rules.FronConcat {
			continue
		}
		ctx.cur = start
		if p.matchConcatFrom(t, inst, fron.Start) {
			found = true
			for _, m := range ctx.last {
				ends = addUniq(ends, m)
			}
		}
	}

	if !found {
		inst.status = failChildrenFailed
		ctx.cur = start
		ctx.last = nil
		p.addFailed(t, start)
		return false
	}
	ctx.last = ends
	longest := start
	for _, m := range ends {
		if m > longest {
			longest = m
		}
	}
	ctx.cur = longest
	p.moveCur()
	p.succeedTable(t, inst, start, false, -1)
	return true
}
