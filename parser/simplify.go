package parser

// WasSucc patching and edge shrinking. A node satisfied from the match
// cache has no children; before AST construction it receives a clone of
// the sorted sub-tree of the "youngest" appeal node which achieved the
// same final match. Afterwards, edges whose parent has a single sorted
// child and no action on that slot are collapsed.

// findWasSucc collects the cache-satisfied nodes of the sorted tree.
func (p *Parser) findWasSucc(root *appealNode) []*appealNode {
	var wasSucc []*appealNode
	worklist := []*appealNode{root}
	for len(worklist) > 0 {
		node := worklist[0]
		worklist = worklist[1:]
		if node.status == succWasSucc {
			wasSucc = append(wasSucc, node)
		} else {
			worklist = append(worklist, node.sortedChildren...)
		}
	}
	return wasSucc
}

// findPatchingNode returns the appeal node whose sub-tree patches a
// WasSucc node: among the recorded nodes with the same final match, the
// youngest descendant — the one with the smallest sub-tree.
func (p *Parser) findPatchingNode(wasSucc *appealNode) *appealNode {
	must(wasSucc.sorted, "WasSucc node is not sorted")
	match := wasSucc.finalMatch

	e := p.succOf(wasSucc.table).locate(wasSucc.start)
	must(e != nil, "WasSucc rule %s has no match entry", wasSucc.table.Name)

	var youngest *appealNode
	for _, node := range e.nodes {
		if node == wasSucc || !node.findMatch(match) {
			continue
		}
		if youngest == nil || node.descendantOf(youngest) {
			youngest = node
		}
	}
	must(youngest != nil, "no patch for WasSucc %s @%d", wasSucc.table.Name, wasSucc.start)
	return youngest
}

// supplementalSortOut sorts the patch sub-tree against the final match of
// the WasSucc node it will replace.
func (p *Parser) supplementalSortOut(root, reference *appealNode) {
	must(len(root.sortedChildren) == 0, "patch root is already sorted")
	must(root.isTable(), "patch root is not a rule table")
	must(reference.sorted, "reference is not sorted")

	root.finalMatch = reference.finalMatch
	root.sorted = true

	worklist := []*appealNode{root}
	for len(worklist) > 0 {
		node := worklist[0]
		worklist = worklist[1:]
		worklist = p.sortOutNode(node, worklist)
	}
	p.dumpSortOut(root, "supplemental sort-out")
}

// patchWasSucc fills in sub-trees below cache-satisfied nodes until none
// remains. Patching may surface further WasSucc nodes, hence the rounds.
func (p *Parser) patchWasSucc(root *appealNode) {
	rounds := 0
	for {
		rounds++
		wasSucc := p.findWasSucc(root)
		if len(wasSucc) == 0 {
			break
		}
		tracer().Debugf("patching round %d: %d WasSucc node(s)", rounds, len(wasSucc))
		for _, ws := range wasSucc {
			patch := p.findPatchingNode(ws)
			if len(patch.sortedChildren) == 0 {
				p.supplementalSortOut(patch, ws)
			} else {
				must(patch.finalMatch == ws.finalMatch,
					"patch for %s was sorted towards %d, need %d", ws.table.Name, patch.finalMatch, ws.finalMatch)
			}
			ws.status = succ
			// Only sorted nodes may be copied; the original children stay
			// with the original tree.
			for _, c := range patch.sortedChildren {
				ws.addSortedChild(c)
			}
		}
	}
	p.dumpSortOut(root, "patch-was-succ")
}

// simplifySortedTree shrinks chainless edges over the whole sorted tree.
func (p *Parser) simplifySortedTree() {
	worklist := []*appealNode{p.root.sortedChildren[0]}
	for len(worklist) > 0 {
		node := worklist[0]
		worklist = worklist[1:]
		must(node.isSucc(), "sorted node is not successful")
		if node.isToken() {
			continue
		}
		node = p.shrinkEdges(node)
		worklist = append(worklist, node.sortedChildren...)
	}
	p.dumpSortOut(p.root.sortedChildren[0], "simplified")
}

// shrinkEdges collapses the chain below node: an edge is redundant when
// the parent has exactly one sorted child and no rule action references
// that child slot. Within a recursion group a parent and child with the
// same rule table are always shrunk. The first ancestor records the
// child's original slot index, so AST actions still know which grammar
// position the surviving node represents.
func (p *Parser) shrinkEdges(node *appealNode) *appealNode {
	index := 0
	for {
		if len(node.sortedChildren) != 1 {
			break
		}
		child := node.sortedChildren[0]

		childIndex, found := node.sortedChildIndex(p.grammar, child)
		if !found {
			// Connect-link between recursion instances: both nodes carry
			// the lead table, one of them has to go.
			must(node.isTable() && child.isTable() && node.table == child.table,
				"unindexed child is no recursion link")
			must(p.grammar.Recursions().IsLeadNode(node.table),
				"same-table link outside a recursion group")
		} else if node.table.ActionRefersTo(childIndex) {
			break
		}

		parent := node.parent
		parent.replaceSortedChild(node, child)

		if parent != p.root && index == 0 {
			idx, ok := parent.sortedChildIndex(p.grammar, node)
			must(ok, "could not find child index while shrinking")
			index = idx
		}
		child.simplifiedIndex = index
		node = child
	}
	return node
}
