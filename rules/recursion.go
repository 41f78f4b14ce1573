package rules

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/

// Left-recursion analysis. The parser cannot descend into a rule which
// reaches itself again at the same token without consuming input; such
// rules are parsed by fixed-point iteration instead (see the parser
// package). This file finds the rule groups containing left-recursive
// cycles and precomputes, per group, the descriptors the recursion engine
// feeds on: the lead node, the rules on the cycles, the FronNodes of each
// circle and the LeadFronNodes.

// FronKind tags a FronNode.
type FronKind int8

const (
	FronRule   FronKind = iota // a rule table off the circle
	FronToken                  // a token child off the circle
	FronConcat                 // resume position inside a Concat circle node
)

// FronNode is a node reachable in one step from a circle node but not on
// any circle itself. FronNodes are where a recursion instance makes real
// progress. For a Concat circle node the FronNode is the run of children
// following the circle edge, identified by the resume child index.
type FronNode struct {
	Kind  FronKind
	Pos   int // position on the circle, 1 = first node after the lead; 0 for LeadFronNodes
	Rule  *Table
	Tok   *Child
	Start int // FronConcat: child index at which matching resumes
}

// Recursion describes one left-recursive rule group: the designated lead
// rule, the circles (as child-index paths starting and ending at the
// lead), the rules on the circles, and the Fron analysis.
type Recursion struct {
	LeadNode      *Table
	GroupID       int
	Circles       [][]int     // each: child indices, last edge returns to LeadNode
	Nodes         []*Table    // rules on the circles, LeadNode first
	LeadFronNodes []FronNode
	FronNodes     [][]FronNode // per circle
}

// IsRecursionNode returns true if rt lies on one of the circles.
func (r *Recursion) IsRecursionNode(rt *Table) bool {
	for _, n := range r.Nodes {
		if n == rt {
			return true
		}
	}
	return false
}

// childAt resolves the index-th child edge of a circle node. Only rule and
// token children occur on circles; FronConcat is handled by the callers.
func childAt(parent *Table, index int) Child {
	switch parent.Kind {
	case Concat, OneOf:
		return parent.Children[index]
	default:
		return parent.Children[0]
	}
}

// findRecursionNodes collects all rules on the circles of r.
func (r *Recursion) findRecursionNodes() {
	r.Nodes = append(r.Nodes, r.LeadNode)
	for _, circle := range r.Circles {
		prev := r.LeadNode
		for j, childIndex := range circle {
			c := childAt(prev, childIndex)
			rt := c.Sub
			if j == len(circle)-1 {
				// the last edge is the back edge
				if rt != r.LeadNode {
					tracer().Errorf("circle of %s does not close", r.LeadNode.Name)
				}
			} else if !r.IsRecursionNode(rt) {
				r.Nodes = append(r.Nodes, rt)
			}
			prev = rt
		}
	}
}

// findLeadFronNodes computes the FronNodes of the lead node itself: the
// children of the lead which are not circle entries. For a Concat lead,
// each circle contributes the run of children following its entry edge.
func (r *Recursion) findLeadFronNodes() {
	lead := r.LeadNode
	switch lead.Kind {
	case OneOf:
		onCircle := make(map[int]bool)
		for _, circle := range r.Circles {
			onCircle[circle[0]] = true
		}
		for i := range lead.Children {
			data := &lead.Children[i]
			if data.Tok != nil {
				r.LeadFronNodes = append(r.LeadFronNodes, FronNode{Kind: FronToken, Tok: data})
			} else if data.Sub != nil {
				if !onCircle[i] {
					r.LeadFronNodes = append(r.LeadFronNodes,
						FronNode{Kind: FronRule, Rule: data.Sub})
				}
			}
		}
	case Concat:
		for _, circle := range r.Circles {
			entry := circle[0]
			if entry < len(lead.Children)-1 {
				r.LeadFronNodes = append(r.LeadFronNodes,
					FronNode{Kind: FronConcat, Start: entry + 1})
			}
		}
	case ZeroOrMore, ZeroOrOne, Data:
		// the single child is on the circle; nothing off it
	}
}

// findFronNodes walks one circle and collects, per circle node, the
// children directly reachable but not on any circle.
func (r *Recursion) findFronNodes(circleIndex int) {
	circle := r.Circles[circleIndex]
	prev := r.LeadNode
	var frons []FronNode
	for j, childIndex := range circle {
		next := childAt(prev, childIndex).Sub
		if j == 0 {
			// children of the lead are LeadFronNodes, handled separately
			prev = next
			continue
		}
		switch prev.Kind {
		case OneOf:
			for i := range prev.Children {
				data := &prev.Children[i]
				if data.Tok != nil {
					frons = append(frons, FronNode{Kind: FronToken, Pos: j, Tok: data})
				} else if data.Sub != nil {
					if !r.IsRecursionNode(data.Sub) && data.Sub != next {
						frons = append(frons, FronNode{Kind: FronRule, Pos: j, Rule: data.Sub})
					}
				}
			}
		case Concat:
			if childIndex < len(prev.Children)-1 {
				frons = append(frons, FronNode{Kind: FronConcat, Pos: j, Start: childIndex + 1})
			}
		case ZeroOrMore, ZeroOrOne, Data:
			// single child, on the circle; no FronNode
		}
		prev = next
	}
	r.FronNodes[circleIndex] = frons
}

// RecursionSet holds the recursion descriptors of a grammar plus the
// group-membership mapping.
type RecursionSet struct {
	recursions []*Recursion
	byLead     map[*Table]*Recursion
	groups     [][]*Table
	groupOf    map[*Table]int
}

// GroupCount returns the number of left-recursive rule groups.
func (rs *RecursionSet) GroupCount() int { return len(rs.groups) }

// IsLeadNode returns true if rt is the lead of a recursion group.
func (rs *RecursionSet) IsLeadNode(rt *Table) bool {
	_, ok := rs.byLead[rt]
	return ok
}

// RecursionFor returns the recursion descriptor rt leads, or nil.
func (rs *RecursionSet) RecursionFor(rt *Table) *Recursion { return rs.byLead[rt] }

// GroupOf returns the recursion group a rule belongs to.
func (rs *RecursionSet) GroupOf(rt *Table) (int, bool) {
	id, ok := rs.groupOf[rt]
	return id, ok
}

// GroupRules returns the member rules of a group.
func (rs *RecursionSet) GroupRules(id int) []*Table { return rs.groups[id] }

// Recursions returns all recursion descriptors.
func (rs *RecursionSet) Recursions() []*Recursion { return rs.recursions }

// DetectRecursions analyses the grammar graph for left-recursive cycles
// and computes the recursion descriptors. Corresponds to the offline
// recursion detector; the parser consumes the result read-only.
func DetectRecursions(g *Grammar) *RecursionSet {
	rs := &RecursionSet{
		byLead:  make(map[*Table]*Recursion),
		groupOf: make(map[*Table]int),
	}
	mz := computeMaybeZero(g)

	// Strongly connected components over left edges (Tarjan).
	scc := newSCCFinder(g, mz)
	for _, comp := range scc.components() {
		if len(comp) == 1 && !hasLeftEdge(comp[0], comp[0], mz) {
			continue // trivial component, no self loop
		}
		id := len(rs.groups)
		group := make([]*Table, len(comp))
		copy(group, comp)
		rs.groups = append(rs.groups, group)
		lead := group[0]
		for _, t := range group {
			rs.groupOf[t] = id
			if t.Index < lead.Index {
				lead = t
			}
		}
		rec := &Recursion{LeadNode: lead, GroupID: id}
		inGroup := make(map[*Table]bool, len(group))
		for _, t := range group {
			inGroup[t] = true
		}
		rec.Circles = findCircles(lead, inGroup, mz)
		if len(rec.Circles) == 0 {
			tracer().Errorf("recursion group of %s has no circle", lead.Name)
			continue
		}
		rec.FronNodes = make([][]FronNode, len(rec.Circles))
		rec.findRecursionNodes()
		rec.findLeadFronNodes()
		for i := range rec.Circles {
			rec.findFronNodes(i)
		}
		rs.recursions = append(rs.recursions, rec)
		rs.byLead[lead] = rec
		tracer().Debugf("recursion group %d: lead %s, %d circle(s), %d rule(s)",
			id, lead.Name, len(rec.Circles), len(group))
	}
	return rs
}

// leftEdges returns the child indices of t which the matcher may reach
// without consuming a token: all alternatives of a OneOf, the single child
// of ZeroOr*/Data wrappers, and every Concat child whose preceding
// children may all match nothing.
func leftEdges(t *Table, mz map[*Table]bool) []int {
	var edges []int
	switch t.Kind {
	case OneOf:
		for i, c := range t.Children {
			if c.Sub != nil {
				edges = append(edges, i)
			}
		}
	case Concat:
		for i, c := range t.Children {
			if c.Sub != nil {
				edges = append(edges, i)
			}
			if c.Tok != nil || !mz[c.Sub] {
				return edges
			}
		}
	case ZeroOrMore, ZeroOrOne, Data:
		if len(t.Children) == 1 && t.Children[0].Sub != nil {
			edges = append(edges, 0)
		}
	}
	return edges
}

func hasLeftEdge(from, to *Table, mz map[*Table]bool) bool {
	for _, i := range leftEdges(from, mz) {
		if from.Children[i].Sub == to {
			return true
		}
	}
	return false
}

// findCircles enumerates the simple cycles through lead, staying inside
// the recursion group. Each circle is recorded as the child-index path
// from the lead back to itself.
func findCircles(lead *Table, inGroup map[*Table]bool, mz map[*Table]bool) [][]int {
	var circles [][]int
	onPath := map[*Table]bool{lead: true}
	var path []int
	var walk func(t *Table)
	walk = func(t *Table) {
		for _, i := range leftEdges(t, mz) {
			next := t.Children[i].Sub
			if next == lead {
				circle := make([]int, len(path)+1)
				copy(circle, path)
				circle[len(path)] = i
				circles = append(circles, circle)
				continue
			}
			if !inGroup[next] || onPath[next] {
				continue
			}
			onPath[next] = true
			path = append(path, i)
			walk(next)
			path = path[:len(path)-1]
			onPath[next] = false
		}
	}
	walk(lead)
	return circles
}

// computeMaybeZero determines, to a fixed point, which rules may match
// the empty token run.
func computeMaybeZero(g *Grammar) map[*Table]bool {
	mz := make(map[*Table]bool, g.TableCount())
	changed := true
	for changed {
		changed = false
		g.EachTable(func(t *Table) {
			if mz[t] {
				return
			}
			zero := false
			switch t.Kind {
			case ZeroOrMore, ZeroOrOne:
				zero = true
			case Data:
				zero = len(t.Children) == 1 && t.Children[0].Sub != nil && mz[t.Children[0].Sub]
			case OneOf:
				for _, c := range t.Children {
					if c.Sub != nil && mz[c.Sub] {
						zero = true
						break
					}
				}
			case Concat:
				zero = true
				for _, c := range t.Children {
					if c.Tok != nil || !mz[c.Sub] {
						zero = false
						break
					}
				}
			}
			if zero {
				mz[t] = true
				changed = true
			}
		})
	}
	return mz
}

// --- SCC -------------------------------------------------------------------

// Tarjan's strongly connected components over the left-edge graph.
type sccFinder struct {
	g       *Grammar
	mz      map[*Table]bool
	index   map[*Table]int
	lowlink map[*Table]int
	onStack map[*Table]bool
	stack   []*Table
	counter int
	comps   [][]*Table
}

func newSCCFinder(g *Grammar, mz map[*Table]bool) *sccFinder {
	return &sccFinder{
		g:       g,
		mz:      mz,
		index:   make(map[*Table]int),
		lowlink: make(map[*Table]int),
		onStack: make(map[*Table]bool),
	}
}

func (s *sccFinder) components() [][]*Table {
	s.g.EachTable(func(t *Table) {
		if _, seen := s.index[t]; !seen {
			s.connect(t)
		}
	})
	return s.comps
}

func (s *sccFinder) connect(t *Table) {
	s.index[t] = s.counter
	s.lowlink[t] = s.counter
	s.counter++
	s.stack = append(s.stack, t)
	s.onStack[t] = true

	for _, i := range leftEdges(t, s.mz) {
		next := t.Children[i].Sub
		if _, seen := s.index[next]; !seen {
			s.connect(next)
			if s.lowlink[next] < s.lowlink[t] {
				s.lowlink[t] = s.lowlink[next]
			}
		} else if s.onStack[next] && s.index[next] < s.lowlink[t] {
			s.lowlink[t] = s.index[next]
		}
	}

	if s.lowlink[t] == s.index[t] {
		var comp []*Table
		for {
			n := len(s.stack) - 1
			w := s.stack[n]
			s.stack = s.stack[:n]
			s.onStack[w] = false
			comp = append(comp, w)
			if w == t {
				break
			}
		}
		s.comps = append(s.comps, comp)
	}
}
