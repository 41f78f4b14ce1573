package parser

import (
	"github.com/npillmayer/ladon/rules"
)

// Sort-out. The matcher's appeal tree records every alternative tried,
// including successful ones which are not part of the chosen parse.
// Sort-out reduces this to a single tree by propagating the final match
// downward: starting from the single successful top child, every node
// pins the child(ren) whose end positions compose its own span. Chosen
// nodes become sortedChildren of their parent; the rest stay in the
// arena, detached from the sorted tree.

// sortOut reduces the appeal tree below the pseudo root.
func (p *Parser) sortOut() error {
	for _, n := range p.root.children {
		if !n.isFail() {
			p.root.addSortedChild(n)
		}
	}
	must(len(p.root.sortedChildren) == 1, "top level has %d successful children", len(p.root.sortedChildren))
	root := p.root.sortedChildren[0]

	must(root.isTable(), "top child is not a rule table")
	e := p.succOf(root.table).locate(root.start)
	must(e != nil, "top rule has no recorded match")
	if e.matchCount() != 1 {
		return &AmbiguityError{Rule: root.table.Name, Ends: e.matchSlice()}
	}
	root.finalMatch = e.matchSlice()[0]
	root.sorted = true

	worklist := []*appealNode{root}
	for len(worklist) > 0 {
		node := worklist[0]
		worklist = worklist[1:]
		worklist = p.sortOutNode(node, worklist)
	}
	p.dumpSortOut(root, "main sort-out")
	return nil
}

// sortOutNode dispatches one (already pinned) node by table kind.
func (p *Parser) sortOutNode(node *appealNode, worklist []*appealNode) []*appealNode {
	must(node.sorted, "node is not sorted")
	must(node.isSucc(), "failed node in sort-out")

	// a token's appeal node is a leaf
	if node.isToken() {
		node.finalMatch = node.start
		return worklist
	}

	// Satisfied from cache: no children were created during matching. The
	// patch pass supplies the sub-tree later.
	if node.status == succWasSucc {
		must(len(node.children) == 0, "WasSucc node has children")
		return worklist
	}
	// the last instance of a recursion traversal needs no sort-out
	if node.status == succStillWasSucc {
		return worklist
	}

	t := node.table
	if t == p.grammar.Identifier() || t == p.grammar.Literal() {
		return worklist
	}

	// A recursion lead whose children are all the lead table itself is a
	// connect-only link between instances.
	if p.grammar.Recursions().IsLeadNode(t) && len(node.children) > 0 {
		connectOnly := true
		for _, child := range node.children {
			if !child.isTable() || child.table != t {
				connectOnly = false
				break
			}
		}
		if connectOnly {
			return p.sortOutRecursionHead(node, worklist)
		}
	}

	switch t.Kind {
	case rules.OneOf:
		worklist = p.sortOutOneOf(node, worklist)
	case rules.ZeroOrMore:
		worklist = p.sortOutZeroOrMore(node, worklist)
	case rules.ZeroOrOne:
		worklist = p.sortOutZeroOrOne(node, worklist)
	case rules.Concat:
		worklist = p.sortOutConcat(node, worklist)
	case rules.Data:
		worklist = p.sortOutData(node, worklist)
	}
	return worklist
}

// pin marks a child as chosen with a final match and enqueues it.
func pin(parent, child *appealNode, match int, worklist []*appealNode) []*appealNode {
	child.finalMatch = match
	child.sorted = true
	child.parent = parent
	parent.addSortedChild(child)
	if child.isTable() {
		worklist = append(worklist, child)
	}
	return worklist
}

// sortOutRecursionHead picks the first instance child carrying the
// parent's final match. Parent and children share the same rule table.
func (p *Parser) sortOutRecursionHead(parent *appealNode, worklist []*appealNode) []*appealNode {
	match := parent.finalMatch
	for _, child := range parent.children {
		if child.isFail() {
			continue
		}
		if child.findMatch(match) {
			return pin(parent, child, match, worklist)
		}
	}
	must(false, "no instance of %s carries match %d", parent.table.Name, match)
	return worklist
}

// sortOutOneOf keeps the first successful child whose match set contains
// the parent's final match. The order mirrors the grammar's alternative
// order.
func (p *Parser) sortOutOneOf(parent *appealNode, worklist []*appealNode) []*appealNode {
	if parent.matchCount() == 0 {
		return worklist // matched nothing (all alternatives ZeroOr-kind)
	}
	match := parent.finalMatch
	for _, child := range parent.children {
		if child.isFail() {
			continue
		}
		if child.isToken() {
			if child.start == match {
				child.finalMatch = match
				child.sorted = true
				child.parent = parent
				parent.addSortedChild(child)
				return worklist
			}
			continue
		}
		if child.findMatch(match) {
			return pin(parent, child, match, worklist)
		}
	}
	// No direct child carries the final match. The reference
	// implementation trails off here; treat as an engine defect.
	must(false, "OneOf %s: no child carries final match %d", parent.table.Name, match)
	return worklist
}

// sortOutZeroOrMore pins children backwards: from the child matching the
// final match towards the parent's start, chaining on start-1 of the
// pinned child.
func (p *Parser) sortOutZeroOrMore(parent *appealNode, worklist []*appealNode) []*appealNode {
	if parent.matchCount() == 0 {
		return worklist // matched nothing
	}
	start := parent.start
	lastMatch := parent.finalMatch

	var sorted []*appealNode
	for {
		var good *appealNode
		for _, child := range parent.children {
			if containsNode(sorted, child) {
				continue
			}
			if child.isSucc() && child.findMatch(lastMatch) {
				good = child
				break
			}
		}
		must(good != nil, "ZeroOrMore %s: no child matches %d", parent.table.Name, lastMatch)

		sorted = append(sorted, good)
		good.finalMatch = lastMatch
		good.parent = parent
		good.sorted = true
		lastMatch = good.start - 1

		if good.start == start {
			break
		}
	}
	must(lastMatch+1 == parent.start, "ZeroOrMore children do not cover the span")

	for i := len(sorted) - 1; i >= 0; i-- {
		child := sorted[i]
		parent.addSortedChild(child)
		if child.isTable() {
			worklist = append(worklist, child)
		}
	}
	return worklist
}

func containsNode(nodes []*appealNode, n *appealNode) bool {
	for _, have := range nodes {
		if have == n {
			return true
		}
	}
	return false
}

// sortOutZeroOrOne verifies the sole child against the parent's final
// match, if the child succeeded at all.
func (p *Parser) sortOutZeroOrOne(parent *appealNode, worklist []*appealNode) []*appealNode {
	if parent.matchCount() == 0 {
		return worklist
	}
	match := parent.finalMatch
	must(len(parent.children) == 1, "ZeroOrOne %s has %d children", parent.table.Name, len(parent.children))
	child := parent.children[0]
	if child.isFail() {
		return worklist
	}
	must(parent.start == child.start, "ZeroOrOne parent and child start apart")

	if child.isToken() {
		must(match == child.start, "token match differs from its position")
		child.finalMatch = child.start
		child.sorted = true
	} else {
		must(child.findMatch(match), "the only child has no match %d", match)
		child.finalMatch = match
		child.sorted = true
		worklist = append(worklist, child)
	}
	parent.addSortedChild(child)
	child.parent = parent
	return worklist
}

// sortOutConcat walks the grammar's children right-to-left, pinning per
// slot the appeal child which ends at the running last match. ZeroOr
// slots may have no child. At completion the pinned children cover the
// parent's span contiguously.
func (p *Parser) sortOutConcat(parent *appealNode, worklist []*appealNode) []*appealNode {
	if parent.matchCount() == 0 {
		return worklist
	}
	t := parent.table
	lastMatch := parent.finalMatch

	var sorted []*appealNode
	for i := len(t.Children) - 1; i >= 0; i-- {
		data := t.Children[i]
		child := parent.findSpecChild(p.grammar, data, lastMatch)
		if child == nil {
			zeroSlot := data.Sub != nil && data.Sub.IsZero()
			must(zeroSlot, "Concat %s: slot %d has no matching child", t.Name, i+1)
			continue
		}
		sorted = append(sorted, child)
		child.finalMatch = lastMatch
		child.parent = parent
		child.sorted = true
		lastMatch = child.start - 1
	}
	must(lastMatch+1 == parent.start, "Concat children do not cover the span")

	for i := len(sorted) - 1; i >= 0; i-- {
		child := sorted[i]
		parent.addSortedChild(child)
		if child.isTable() {
			worklist = append(worklist, child)
		}
	}
	return worklist
}

// sortOutData passes the final match through the single-child wrapper.
func (p *Parser) sortOutData(parent *appealNode, worklist []*appealNode) []*appealNode {
	t := parent.table
	data := t.Children[0]
	must(len(parent.children) >= 1, "Data %s without children", t.Name)
	child := parent.children[0]
	if data.Tok != nil {
		child.finalMatch = child.start
		parent.addSortedChild(child)
		child.parent = parent
		return worklist
	}
	child.finalMatch = parent.finalMatch
	child.sorted = true
	parent.addSortedChild(child)
	child.parent = parent
	return append(worklist, child)
}
