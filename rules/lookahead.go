package rules

// Lookahead computation. For each rule table we collect the set of tokens
// which may begin a match of the rule. The matcher short-circuits to
// failure when the set is non-empty and the current token matches none of
// its entries. The computation is conservative: whenever a rule's first
// set would have to cross a left-recursive edge, or is otherwise not
// cleanly determined, the set is left empty and the rule is matched
// without short-circuit.

const lookAheadLimit = 64

// computeLookAhead fills the per-table lookahead sets of g.
func computeLookAhead(g *Grammar) [][]LookAhead {
	la := make([][]LookAhead, g.TableCount())
	mz := computeMaybeZero(g)
	for i := range la {
		t := g.Table(i)
		if _, recursive := g.recursions.GroupOf(t); recursive {
			continue // fixed-point rules are never short-circuited
		}
		c := &laCollector{g: g, mz: mz, visiting: make(map[*Table]bool)}
		if c.collect(t) {
			la[i] = c.set
		}
	}
	return la
}

type laCollector struct {
	g        *Grammar
	mz       map[*Table]bool
	visiting map[*Table]bool
	set      []LookAhead
}

func (c *laCollector) add(entry LookAhead) bool {
	for _, have := range c.set {
		if have == entry {
			return true
		}
	}
	if len(c.set) >= lookAheadLimit {
		return false
	}
	c.set = append(c.set, entry)
	return true
}

// collect gathers the first set of t into c.set. Returns false when the
// set is not cleanly determined and lookahead must be skipped.
func (c *laCollector) collect(t *Table) bool {
	if t == c.g.identifier {
		return c.add(LookAhead{AnyIdent: true})
	}
	if t == c.g.literal {
		return c.add(LookAhead{AnyLiteral: true})
	}
	if c.visiting[t] {
		return false // cycle without recursion descriptor; be conservative
	}
	if _, recursive := c.g.recursions.GroupOf(t); recursive {
		return false
	}
	c.visiting[t] = true
	defer delete(c.visiting, t)

	switch t.Kind {
	case OneOf:
		for _, child := range t.Children {
			if !c.collectChild(child) {
				return false
			}
		}
	case Concat:
		for _, child := range t.Children {
			if !c.collectChild(child) {
				return false
			}
			if child.Tok != nil || !c.mz[child.Sub] {
				return true // first non-zero child ends the first set
			}
		}
	case ZeroOrMore, ZeroOrOne, Data:
		return c.collectChild(t.Children[0])
	default:
		return false
	}
	return true
}

func (c *laCollector) collectChild(child Child) bool {
	if child.Tok != nil {
		return c.add(LookAhead{Tok: child.Tok})
	}
	return c.collect(child.Sub)
}
